// Package version holds build information set with -ldflags.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set at build time, e.g.
//
//	go build -ldflags "-X github.com/longkey1/chatpad/internal/version.Version=v1.0.0"
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Short returns the version number only.
func Short() string {
	return resolved().version
}

// Info returns the version, commit, build time and Go version.
func Info() string {
	r := resolved()
	return fmt.Sprintf("chatpad %s\n  commit:     %s\n  built:      %s\n  go version: %s\n  platform:   %s/%s",
		r.version, r.commit, BuildTime, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

type info struct {
	version string
	commit  string
}

// resolved falls back to module build info for binaries built with go install.
func resolved() info {
	r := info{version: Version, commit: Commit}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return r
	}
	if r.version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		r.version = bi.Main.Version
	}
	if r.commit == "unknown" {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" {
				r.commit = s.Value
			}
		}
	}
	return r
}
