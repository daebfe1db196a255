// Package prefs stores versioned per-user preferences.
//
// A [Document] is a free-form JSON object plus a version that increases by
// one on every successful write. Replace and Patch accept an expected
// version; when it does not match the stored one the write is rejected with
// an [errs.ConflictError] so the caller can refetch and retry. Delete
// removes dot-notation keys such as "dashboard.layout" and never conflicts.
//
// # Backends
//
//   - [MemoryStore]: process-local, for tests and single-instance servers
//   - [FileStore]: one JSON file per user, for the CLI
//   - [RedisStore]: WATCH/MULTI optimistic transactions
//   - [MongoStore]: version-filtered replace
//   - [NullStore]: discards writes
//
// # Broadcast
//
// [Service] wraps a Store with a [Hub] and publishes every successful write
// as a [Change], tagged with the session that made it so that session can
// skip its own echo.
package prefs

import (
	"context"
	"time"

	errs "github.com/matzehuels/gridboard/pkg/errors"
)

// Document is one user's preferences.
type Document struct {
	Preferences map[string]any `json:"preferences" bson:"preferences"`
	Version     int64          `json:"version" bson:"version"`
	UpdatedAt   time.Time      `json:"updated_at" bson:"updated_at"`
}

// Store persists preference documents.
type Store interface {
	// Get returns the user's document. A user with no document gets an
	// empty one at version 0.
	Get(ctx context.Context, user string) (Document, error)

	// Replace overwrites all preferences. A non-nil expected version must
	// match the stored version.
	Replace(ctx context.Context, user string, prefs map[string]any, expected *int64) (Document, error)

	// Patch deep-merges updates into the stored preferences. A non-nil
	// expected version must match the stored version.
	Patch(ctx context.Context, user string, updates map[string]any, expected *int64) (Document, error)

	// Delete removes the given dot-notation keys. Missing keys are ignored.
	Delete(ctx context.Context, user string, keys ...string) (Document, error)

	// Name identifies the backend in logs and metrics.
	Name() string

	Close() error
}

// mutation derives new preferences from a private copy of the current ones.
type mutation func(current map[string]any) (map[string]any, error)

func replaceWith(prefs map[string]any) mutation {
	return func(map[string]any) (map[string]any, error) {
		return Normalize(prefs)
	}
}

func mergeWith(updates map[string]any) mutation {
	return func(current map[string]any) (map[string]any, error) {
		norm, err := Normalize(updates)
		if err != nil {
			return nil, err
		}
		return Merge(current, norm), nil
	}
}

func deleteKeys(keys []string) mutation {
	return func(current map[string]any) (map[string]any, error) {
		for _, k := range keys {
			DeletePath(current, k)
		}
		return current, nil
	}
}

func validateKeys(keys []string) error {
	if len(keys) == 0 {
		return errs.New(errs.ErrCodeInvalidKey, "at least one preference key is required")
	}
	for _, k := range keys {
		if err := errs.ValidatePreferenceKey(k); err != nil {
			return err
		}
	}
	return nil
}

func validateUser(user string) error {
	if user == "" {
		return errs.New(errs.ErrCodeInvalidInput, "user id cannot be empty")
	}
	return nil
}

// apply checks the expected version and runs m against doc, producing the
// next document.
func apply(doc Document, expected *int64, m mutation, now time.Time) (Document, error) {
	if expected != nil && *expected != doc.Version {
		return Document{}, &errs.ConflictError{Expected: *expected, Actual: doc.Version}
	}
	next, err := m(Clone(doc.Preferences))
	if err != nil {
		return Document{}, err
	}
	if next == nil {
		next = map[string]any{}
	}
	return Document{Preferences: next, Version: doc.Version + 1, UpdatedAt: now.UTC()}, nil
}

func emptyDocument() Document {
	return Document{Preferences: map[string]any{}}
}

// Version returns a pointer to v, for the expected-version arguments.
func Version(v int64) *int64 { return &v }
