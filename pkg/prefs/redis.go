package prefs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	errs "github.com/matzehuels/gridboard/pkg/errors"
)

// DefaultRedisPrefix namespaces preference keys in Redis.
const DefaultRedisPrefix = "gridboard:prefs:"

// maxTxRetries bounds optimistic transaction retries when another client
// touches the same key between WATCH and EXEC.
const maxTxRetries = 8

// RedisStore keeps each document as a JSON string under prefix+user. Writes
// run in a WATCH/MULTI transaction, so concurrent writers never lose updates.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	owned  bool
}

// NewRedisStore wraps an existing client. The caller keeps ownership of the
// client; Close does not close it.
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

// OpenRedisStore connects to a single Redis server and verifies the
// connection. Close releases the client.
func OpenRedisStore(ctx context.Context, addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errs.Wrap(errs.ErrCodeStore, err, "connect to redis at %s", addr)
	}
	s := NewRedisStore(client, "")
	s.owned = true
	return s, nil
}

func (s *RedisStore) key(user string) string {
	return s.prefix + user
}

// getter is the read side shared by the client and a transaction.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (s *RedisStore) load(ctx context.Context, g getter, key string) (Document, error) {
	data, err := g.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return emptyDocument(), nil
	}
	if err != nil {
		return Document{}, errs.Wrap(errs.ErrCodeStore, err, "redis get")
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, errs.Wrap(errs.ErrCodeStore, err, "decode stored preferences")
	}
	if doc.Preferences == nil {
		doc.Preferences = map[string]any{}
	}
	return doc, nil
}

func (s *RedisStore) Get(ctx context.Context, user string) (Document, error) {
	if err := validateUser(user); err != nil {
		return Document{}, err
	}
	return s.load(ctx, s.client, s.key(user))
}

func (s *RedisStore) Replace(ctx context.Context, user string, prefs map[string]any, expected *int64) (Document, error) {
	return s.update(ctx, user, expected, replaceWith(prefs))
}

func (s *RedisStore) Patch(ctx context.Context, user string, updates map[string]any, expected *int64) (Document, error) {
	return s.update(ctx, user, expected, mergeWith(updates))
}

func (s *RedisStore) Delete(ctx context.Context, user string, keys ...string) (Document, error) {
	if err := validateKeys(keys); err != nil {
		return Document{}, err
	}
	return s.update(ctx, user, nil, deleteKeys(keys))
}

func (s *RedisStore) update(ctx context.Context, user string, expected *int64, m mutation) (Document, error) {
	if err := validateUser(user); err != nil {
		return Document{}, err
	}
	key := s.key(user)

	for attempt := 0; attempt < maxTxRetries; attempt++ {
		var next Document
		err := s.client.Watch(ctx, func(tx *redis.Tx) error {
			cur, err := s.load(ctx, tx, key)
			if err != nil {
				return err
			}
			next, err = apply(cur, expected, m, time.Now())
			if err != nil {
				return err
			}
			data, err := json.Marshal(next)
			if err != nil {
				return fmt.Errorf("marshal preferences: %w", err)
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, data, 0)
				return nil
			})
			return err
		}, key)

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return Document{}, err
		}
		return next, nil
	}
	return Document{}, errs.New(errs.ErrCodeStore, "preferences for %q changed concurrently %d times", user, maxTxRetries)
}

func (s *RedisStore) Name() string { return "redis" }

// Close releases the client if the store opened it.
func (s *RedisStore) Close() error {
	if s.owned {
		return s.client.Close()
	}
	return nil
}

var _ Store = (*RedisStore)(nil)
