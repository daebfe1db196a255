package prefs

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gridboard/pkg/config"
	errs "github.com/matzehuels/gridboard/pkg/errors"
	"github.com/matzehuels/gridboard/pkg/observability"
)

// Open builds the backend named in cfg.
func Open(ctx context.Context, cfg config.Store) (Store, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewMemoryStore(), nil
	case "file":
		return NewFileStore(cfg.Path)
	case "redis":
		return OpenRedisStore(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	case "mongo":
		return OpenMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase)
	case "none":
		return NewNullStore(), nil
	}
	return nil, errs.New(errs.ErrCodeUnsupported, "unknown store backend %q", cfg.Backend)
}

// ServiceOptions configures a [Service].
type ServiceOptions struct {
	// Hub receives every successful write. Defaults to a new hub.
	Hub *Hub

	// Hooks observes reads, writes and conflicts. Defaults to the
	// registered store hooks.
	Hooks observability.StoreHooks

	// Logger defaults to a discard logger.
	Logger *log.Logger
}

// SetDefaults fills unset options.
func (o *ServiceOptions) SetDefaults() {
	if o.Hub == nil {
		o.Hub = NewHub()
	}
	if o.Hooks == nil {
		o.Hooks = observability.Store()
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Service is the preferences API used by the server and the board: a
// [Store] whose writes are observed and broadcast on a [Hub].
type Service struct {
	store  Store
	hub    *Hub
	hooks  observability.StoreHooks
	logger *log.Logger
}

// NewService wraps store.
func NewService(store Store, opts ServiceOptions) *Service {
	opts.SetDefaults()
	return &Service{store: store, hub: opts.Hub, hooks: opts.Hooks, logger: opts.Logger}
}

// Hub returns the hub changes are published on.
func (s *Service) Hub() *Hub { return s.hub }

// Backend names the underlying store.
func (s *Service) Backend() string { return s.store.Name() }

// Get returns user's preferences.
func (s *Service) Get(ctx context.Context, user string) (Document, error) {
	start := time.Now()
	doc, err := s.store.Get(ctx, user)
	s.hooks.OnRead(ctx, s.store.Name(), time.Since(start), err)
	return doc, err
}

// Replace overwrites user's preferences on behalf of session.
func (s *Service) Replace(ctx context.Context, user, session string, prefs map[string]any, expected *int64) (Document, error) {
	return s.write(ctx, user, session, func() (Document, error) {
		return s.store.Replace(ctx, user, prefs, expected)
	})
}

// Patch deep-merges updates into user's preferences on behalf of session.
func (s *Service) Patch(ctx context.Context, user, session string, updates map[string]any, expected *int64) (Document, error) {
	return s.write(ctx, user, session, func() (Document, error) {
		return s.store.Patch(ctx, user, updates, expected)
	})
}

// Delete removes dot-notation keys from user's preferences on behalf of
// session.
func (s *Service) Delete(ctx context.Context, user, session string, keys ...string) (Document, error) {
	return s.write(ctx, user, session, func() (Document, error) {
		return s.store.Delete(ctx, user, keys...)
	})
}

func (s *Service) write(ctx context.Context, user, session string, op func() (Document, error)) (Document, error) {
	start := time.Now()
	doc, err := op()
	s.hooks.OnWrite(ctx, s.store.Name(), doc.Version, time.Since(start), err)
	if err != nil {
		if errs.IsConflict(err) {
			s.hooks.OnConflict(ctx, s.store.Name())
			s.logger.Debug("preferences conflict", "user", user, "session", session, "err", err)
		}
		return doc, err
	}

	n := s.hub.Publish(Change{
		User:          user,
		Preferences:   doc.Preferences,
		Version:       doc.Version,
		OriginSession: session,
	})
	s.logger.Debug("preferences updated", "user", user, "version", doc.Version, "notified", n)
	return doc, nil
}

// Close closes the hub and the store.
func (s *Service) Close() error {
	s.hub.Close()
	return s.store.Close()
}
