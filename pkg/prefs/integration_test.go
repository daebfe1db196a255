//go:build integration

package prefs

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Run with: GRIDBOARD_REDIS_ADDR=localhost:6379 go test -tags integration ./pkg/prefs
func TestRedisStore_Integration(t *testing.T) {
	addr := os.Getenv("GRIDBOARD_REDIS_ADDR")
	if addr == "" {
		t.Skip("GRIDBOARD_REDIS_ADDR not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis unavailable: %v", err)
	}

	prefix := "gridboard-test:" + uuid.NewString() + ":"
	s := NewRedisStore(client, prefix)
	t.Cleanup(func() {
		keys, _ := client.Keys(context.Background(), prefix+"*").Result()
		if len(keys) > 0 {
			client.Del(context.Background(), keys...)
		}
	})
	testStore(t, s)
}

// Run with: GRIDBOARD_MONGO_URI=mongodb://localhost:27017 go test -tags integration ./pkg/prefs
func TestMongoStore_Integration(t *testing.T) {
	uri := os.Getenv("GRIDBOARD_MONGO_URI")
	if uri == "" {
		t.Skip("GRIDBOARD_MONGO_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Skipf("mongo unavailable: %v", err)
	}
	defer client.Disconnect(context.Background())
	if err := client.Ping(ctx, nil); err != nil {
		t.Skipf("mongo unavailable: %v", err)
	}

	db := client.Database("gridboard_test_" + uuid.NewString()[:8])
	t.Cleanup(func() { db.Drop(context.Background()) })
	testStore(t, NewMongoStore(db.Collection(DefaultMongoCollection)))
}
