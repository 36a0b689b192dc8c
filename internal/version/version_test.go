package version

import (
	"strings"
	"testing"
)

func TestInfo(t *testing.T) {
	Version, Commit, BuildTime = "v1.2.3", "abc123", "2025-01-01T00:00:00Z"
	t.Cleanup(func() { Version, Commit, BuildTime = "dev", "unknown", "unknown" })

	if got := Short(); got != "v1.2.3" {
		t.Errorf("Short() = %q, want v1.2.3", got)
	}
	info := Info()
	for _, want := range []string{"v1.2.3", "abc123", "2025-01-01T00:00:00Z", "go version"} {
		if !strings.Contains(info, want) {
			t.Errorf("Info() = %q, missing %q", info, want)
		}
	}
}
