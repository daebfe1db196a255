package prefs

import "context"

// NullStore discards every write and always returns an empty document.
// Useful when persistence should be disabled.
type NullStore struct{}

// NewNullStore creates a null store.
func NewNullStore() Store {
	return &NullStore{}
}

// Get always returns an empty document.
func (NullStore) Get(ctx context.Context, user string) (Document, error) {
	return emptyDocument(), nil
}

// Replace does nothing.
func (NullStore) Replace(ctx context.Context, user string, prefs map[string]any, expected *int64) (Document, error) {
	return emptyDocument(), nil
}

// Patch does nothing.
func (NullStore) Patch(ctx context.Context, user string, updates map[string]any, expected *int64) (Document, error) {
	return emptyDocument(), nil
}

// Delete does nothing.
func (NullStore) Delete(ctx context.Context, user string, keys ...string) (Document, error) {
	return emptyDocument(), nil
}

func (NullStore) Name() string { return "none" }

// Close does nothing.
func (NullStore) Close() error { return nil }

var _ Store = (*NullStore)(nil)
