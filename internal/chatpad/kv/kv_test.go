package kv

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func TestStores(t *testing.T) {
	stores := []struct {
		name string
		new  func(t *testing.T) Store
	}{
		{
			name: "memory",
			new:  func(t *testing.T) Store { return NewMemory() },
		},
		{
			name: "dir",
			new:  func(t *testing.T) Store { return NewDir(filepath.Join(t.TempDir(), "store")) },
		},
	}

	for _, st := range stores {
		t.Run(st.name, func(t *testing.T) {
			t.Run("get missing", func(t *testing.T) {
				s := st.new(t)
				if _, err := s.Get(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
					t.Errorf("Get() error = %v, want ErrNotFound", err)
				}
			})

			t.Run("put then get", func(t *testing.T) {
				s := st.new(t)
				ctx := context.Background()
				if err := s.Put(ctx, "a", []byte(`{"v":1}`)); err != nil {
					t.Fatalf("Put() error = %v", err)
				}
				got, err := s.Get(ctx, "a")
				if err != nil {
					t.Fatalf("Get() error = %v", err)
				}
				if string(got) != `{"v":1}` {
					t.Errorf("Get() = %s, want {\"v\":1}", got)
				}
			})

			t.Run("put overwrites", func(t *testing.T) {
				s := st.new(t)
				ctx := context.Background()
				s.Put(ctx, "a", []byte("one"))
				s.Put(ctx, "a", []byte("two"))
				got, _ := s.Get(ctx, "a")
				if string(got) != "two" {
					t.Errorf("Get() = %s, want two", got)
				}
			})

			t.Run("delete", func(t *testing.T) {
				s := st.new(t)
				ctx := context.Background()
				s.Put(ctx, "a", []byte("one"))
				if err := s.Delete(ctx, "a"); err != nil {
					t.Fatalf("Delete() error = %v", err)
				}
				if _, err := s.Get(ctx, "a"); !errors.Is(err, ErrNotFound) {
					t.Errorf("Get() after Delete error = %v, want ErrNotFound", err)
				}
				if err := s.Delete(ctx, "a"); !errors.Is(err, ErrNotFound) {
					t.Errorf("second Delete() error = %v, want ErrNotFound", err)
				}
			})

			t.Run("list", func(t *testing.T) {
				s := st.new(t)
				ctx := context.Background()
				keys, err := s.List(ctx)
				if err != nil {
					t.Fatalf("List() on empty store error = %v", err)
				}
				if len(keys) != 0 {
					t.Errorf("List() on empty store = %v", keys)
				}

				for _, k := range []string{"b", "a", "c"} {
					s.Put(ctx, k, []byte(k))
				}
				s.Delete(ctx, "c")

				keys, err = s.List(ctx)
				if err != nil {
					t.Fatalf("List() error = %v", err)
				}
				sort.Strings(keys)
				if len(keys) != 2 || keys[0] != "a" || keys[1] != "b" {
					t.Errorf("List() = %v, want [a b]", keys)
				}
			})

			t.Run("cancelled context", func(t *testing.T) {
				s := st.new(t)
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				if err := s.Put(ctx, "a", []byte("one")); !errors.Is(err, context.Canceled) {
					t.Errorf("Put() error = %v, want context.Canceled", err)
				}
			})
		})
	}
}

func TestMemoryCopiesValues(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	value := []byte("abc")
	s.Put(ctx, "k", value)
	value[0] = 'z'

	got, _ := s.Get(ctx, "k")
	if string(got) != "abc" {
		t.Errorf("Get() = %s, want abc", got)
	}
}

func TestDirRejectsPathKeys(t *testing.T) {
	s := NewDir(t.TempDir())
	for _, key := range []string{"", "../escape", "a/b", ".hidden"} {
		if err := s.Put(context.Background(), key, []byte("x")); err == nil {
			t.Errorf("Put(%q) succeeded, want error", key)
		}
	}
}

func TestDirIgnoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	s := NewDir(dir)
	ctx := context.Background()
	s.Put(ctx, "conv", []byte("{}"))
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644)
	os.Mkdir(filepath.Join(dir, "sub.json"), 0755)

	keys, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(keys) != 1 || keys[0] != "conv" {
		t.Errorf("List() = %v, want [conv]", keys)
	}
}
