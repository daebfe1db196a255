package prefs

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileStore keeps one JSON file per user in a directory. Writes go through a
// temporary file and a rename so a crash never leaves a torn document.
type FileStore struct {
	mu  sync.Mutex
	dir string
}

// NewFileStore creates a file store in dir, creating it if needed.
// If dir is empty, defaults to ~/.config/gridboard/preferences/
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		dir = filepath.Join(home, ".config", "gridboard", "preferences")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create preferences dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// path hashes the user ID so any ID maps to a safe file name.
func (s *FileStore) path(user string) string {
	sum := sha256.Sum256([]byte(user))
	return filepath.Join(s.dir, hex.EncodeToString(sum[:])+".json")
}

func (s *FileStore) Get(ctx context.Context, user string) (Document, error) {
	if err := validateUser(user); err != nil {
		return Document{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(user)
}

func (s *FileStore) load(user string) (Document, error) {
	data, err := os.ReadFile(s.path(user))
	if os.IsNotExist(err) {
		return emptyDocument(), nil
	}
	if err != nil {
		return Document{}, fmt.Errorf("read preferences file: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("parse preferences file: %w", err)
	}
	if doc.Preferences == nil {
		doc.Preferences = map[string]any{}
	}
	return doc, nil
}

func (s *FileStore) Replace(ctx context.Context, user string, prefs map[string]any, expected *int64) (Document, error) {
	return s.update(user, expected, replaceWith(prefs))
}

func (s *FileStore) Patch(ctx context.Context, user string, updates map[string]any, expected *int64) (Document, error) {
	return s.update(user, expected, mergeWith(updates))
}

func (s *FileStore) Delete(ctx context.Context, user string, keys ...string) (Document, error) {
	if err := validateKeys(keys); err != nil {
		return Document{}, err
	}
	return s.update(user, nil, deleteKeys(keys))
}

func (s *FileStore) update(user string, expected *int64, m mutation) (Document, error) {
	if err := validateUser(user); err != nil {
		return Document{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, err := s.load(user)
	if err != nil {
		return Document{}, err
	}
	next, err := apply(cur, expected, m, time.Now())
	if err != nil {
		return Document{}, err
	}

	data, err := json.MarshalIndent(next, "", "  ")
	if err != nil {
		return Document{}, fmt.Errorf("marshal preferences: %w", err)
	}
	tmp, err := os.CreateTemp(s.dir, ".prefs-*")
	if err != nil {
		return Document{}, fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return Document{}, fmt.Errorf("write preferences file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return Document{}, fmt.Errorf("close preferences file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(user)); err != nil {
		os.Remove(tmp.Name())
		return Document{}, fmt.Errorf("replace preferences file: %w", err)
	}
	return next, nil
}

func (s *FileStore) Name() string { return "file" }

func (s *FileStore) Close() error { return nil }

// Path returns the directory holding preference files.
func (s *FileStore) Path() string {
	return s.dir
}

var _ Store = (*FileStore)(nil)
