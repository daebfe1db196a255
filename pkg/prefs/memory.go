package prefs

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps documents in process memory. It is safe for concurrent
// use.
type MemoryStore struct {
	mu   sync.Mutex
	docs map[string]Document
	now  func() time.Time
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]Document), now: time.Now}
}

func (s *MemoryStore) Get(ctx context.Context, user string) (Document, error) {
	if err := validateUser(user); err != nil {
		return Document{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[user]
	if !ok {
		return emptyDocument(), nil
	}
	doc.Preferences = Clone(doc.Preferences)
	return doc, nil
}

func (s *MemoryStore) Replace(ctx context.Context, user string, prefs map[string]any, expected *int64) (Document, error) {
	return s.update(user, expected, replaceWith(prefs))
}

func (s *MemoryStore) Patch(ctx context.Context, user string, updates map[string]any, expected *int64) (Document, error) {
	return s.update(user, expected, mergeWith(updates))
}

func (s *MemoryStore) Delete(ctx context.Context, user string, keys ...string) (Document, error) {
	if err := validateKeys(keys); err != nil {
		return Document{}, err
	}
	return s.update(user, nil, deleteKeys(keys))
}

func (s *MemoryStore) update(user string, expected *int64, m mutation) (Document, error) {
	if err := validateUser(user); err != nil {
		return Document{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.docs[user]
	if !ok {
		cur = emptyDocument()
	}
	next, err := apply(cur, expected, m, s.now())
	if err != nil {
		return Document{}, err
	}
	s.docs[user] = next
	next.Preferences = Clone(next.Preferences)
	return next, nil
}

func (s *MemoryStore) Name() string { return "memory" }

func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
