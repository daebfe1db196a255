package prefs

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"

	"github.com/matzehuels/gridboard/pkg/config"
	errs "github.com/matzehuels/gridboard/pkg/errors"
)

// testStore runs the behaviour every versioned backend must share.
func testStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("new user is empty", func(t *testing.T) {
		doc, err := s.Get(ctx, "fresh")
		if err != nil {
			t.Fatalf("Get error: %v", err)
		}
		if doc.Version != 0 || len(doc.Preferences) != 0 {
			t.Errorf("Get() = %+v, want empty document at version 0", doc)
		}
	})

	t.Run("replace patch delete", func(t *testing.T) {
		user := "alice"
		doc, err := s.Replace(ctx, user, map[string]any{
			"dashboard": map[string]any{"theme": "dark"},
		}, nil)
		if err != nil {
			t.Fatalf("Replace error: %v", err)
		}
		if doc.Version != 1 {
			t.Errorf("Replace() version = %d, want 1", doc.Version)
		}

		doc, err = s.Patch(ctx, user, map[string]any{
			"dashboard": map[string]any{"cols": 12},
		}, Version(1))
		if err != nil {
			t.Fatalf("Patch error: %v", err)
		}
		want := map[string]any{"dashboard": map[string]any{"theme": "dark", "cols": float64(12)}}
		if !reflect.DeepEqual(doc.Preferences, want) {
			t.Errorf("Patch() prefs = %v, want %v", doc.Preferences, want)
		}
		if doc.Version != 2 {
			t.Errorf("Patch() version = %d, want 2", doc.Version)
		}

		doc, err = s.Delete(ctx, user, "dashboard.theme", "missing.key")
		if err != nil {
			t.Fatalf("Delete error: %v", err)
		}
		want = map[string]any{"dashboard": map[string]any{"cols": float64(12)}}
		if !reflect.DeepEqual(doc.Preferences, want) {
			t.Errorf("Delete() prefs = %v, want %v", doc.Preferences, want)
		}

		got, err := s.Get(ctx, user)
		if err != nil {
			t.Fatalf("Get error: %v", err)
		}
		if got.Version != 3 || !reflect.DeepEqual(got.Preferences, want) {
			t.Errorf("Get() = %+v, want version 3 with %v", got, want)
		}
	})

	t.Run("stale version conflicts", func(t *testing.T) {
		user := "bob"
		if _, err := s.Replace(ctx, user, map[string]any{"a": 1}, nil); err != nil {
			t.Fatalf("Replace error: %v", err)
		}
		_, err := s.Replace(ctx, user, map[string]any{"a": 2}, Version(0))
		if !errs.IsConflict(err) {
			t.Fatalf("Replace() error = %v, want version conflict", err)
		}
		_, err = s.Patch(ctx, user, map[string]any{"a": 3}, Version(7))
		if !errs.IsConflict(err) {
			t.Fatalf("Patch() error = %v, want version conflict", err)
		}

		doc, _ := s.Get(ctx, user)
		if doc.Version != 1 || doc.Preferences["a"] != float64(1) {
			t.Errorf("rejected write changed document: %+v", doc)
		}
	})

	t.Run("returned documents are copies", func(t *testing.T) {
		user := "carol"
		doc, err := s.Replace(ctx, user, map[string]any{"nested": map[string]any{"k": "v"}}, nil)
		if err != nil {
			t.Fatalf("Replace error: %v", err)
		}
		doc.Preferences["nested"].(map[string]any)["k"] = "changed"

		got, _ := s.Get(ctx, user)
		if v, _ := GetPath(got.Preferences, "nested.k"); v != "v" {
			t.Errorf("stored value = %v, want v", v)
		}
	})

	t.Run("invalid input", func(t *testing.T) {
		if _, err := s.Get(ctx, ""); !errs.Is(err, errs.ErrCodeInvalidInput) {
			t.Errorf("Get(\"\") error = %v, want INVALID_INPUT", err)
		}
		if _, err := s.Delete(ctx, "dave"); !errs.Is(err, errs.ErrCodeInvalidKey) {
			t.Errorf("Delete() with no keys error = %v, want INVALID_KEY", err)
		}
		if _, err := s.Delete(ctx, "dave", "a..b"); !errs.Is(err, errs.ErrCodeInvalidKey) {
			t.Errorf("Delete(a..b) error = %v, want INVALID_KEY", err)
		}
		if _, err := s.Replace(ctx, "dave", map[string]any{"ch": make(chan int)}, nil); !errs.Is(err, errs.ErrCodeInvalidInput) {
			t.Errorf("Replace(chan) error = %v, want INVALID_INPUT", err)
		}
	})

	t.Run("concurrent patches are not lost", func(t *testing.T) {
		user := "erin"
		const n = 10
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				key := string(rune('a' + i))
				if _, err := s.Patch(ctx, user, map[string]any{key: i}, nil); err != nil {
					t.Errorf("Patch error: %v", err)
				}
			}(i)
		}
		wg.Wait()

		doc, _ := s.Get(ctx, user)
		if doc.Version != n || len(doc.Preferences) != n {
			t.Errorf("after %d patches: version %d, %d keys", n, doc.Version, len(doc.Preferences))
		}
	})
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	if s.Name() != "memory" {
		t.Errorf("Name() = %q, want memory", s.Name())
	}
	testStore(t, s)
}

func TestFileStore(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore error: %v", err)
	}
	defer s.Close()
	if s.Path() != dir {
		t.Errorf("Path() = %q, want %q", s.Path(), dir)
	}
	testStore(t, s)

	// A second store over the same directory sees the same documents.
	s2, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore error: %v", err)
	}
	doc, err := s2.Get(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if doc.Version != 3 {
		t.Errorf("reopened Get() version = %d, want 3", doc.Version)
	}

	// No temp files are left behind.
	leftovers, _ := filepath.Glob(filepath.Join(dir, ".prefs-*"))
	if len(leftovers) != 0 {
		t.Errorf("temp files left: %v", leftovers)
	}
}

func TestFileStoreCorruptFile(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore error: %v", err)
	}
	if err := os.WriteFile(s.path("broken"), []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(context.Background(), "broken"); err == nil {
		t.Error("Get() on corrupt file should fail")
	}
}

func TestNullStore(t *testing.T) {
	ctx := context.Background()
	s := NewNullStore()
	defer s.Close()

	if _, err := s.Replace(ctx, "u", map[string]any{"a": 1}, nil); err != nil {
		t.Errorf("Replace error: %v", err)
	}
	doc, err := s.Get(ctx, "u")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if doc.Version != 0 || len(doc.Preferences) != 0 {
		t.Errorf("NullStore should not store data, got %+v", doc)
	}
	if s.Name() != "none" {
		t.Errorf("Name() = %q, want none", s.Name())
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		backend string
		want    string
		wantErr bool
	}{
		{backend: "", want: "memory"},
		{backend: "memory", want: "memory"},
		{backend: "none", want: "none"},
		{backend: "file", want: "file"},
		{backend: "etcd", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			cfg := config.Store{Backend: tt.backend, Path: t.TempDir()}
			s, err := Open(ctx, cfg)
			if tt.wantErr {
				if !errs.Is(err, errs.ErrCodeUnsupported) {
					t.Errorf("Open(%q) error = %v, want UNSUPPORTED", tt.backend, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Open(%q) error: %v", tt.backend, err)
			}
			defer s.Close()
			if s.Name() != tt.want {
				t.Errorf("Open(%q).Name() = %q, want %q", tt.backend, s.Name(), tt.want)
			}
		})
	}
}
