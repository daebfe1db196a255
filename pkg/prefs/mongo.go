package prefs

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	errs "github.com/matzehuels/gridboard/pkg/errors"
)

// DefaultMongoCollection holds preference documents.
const DefaultMongoCollection = "preferences"

// mongoDoc is the stored shape, keyed by user ID.
type mongoDoc struct {
	User        string         `bson:"_id"`
	Preferences map[string]any `bson:"preferences"`
	Version     int64          `bson:"version"`
	UpdatedAt   time.Time      `bson:"updated_at"`
}

// MongoStore keeps one document per user. Updates replace the document only
// if its version is unchanged since it was read, and retry otherwise.
type MongoStore struct {
	coll   *mongo.Collection
	client *mongo.Client
}

// NewMongoStore uses an existing collection. Close does not disconnect.
func NewMongoStore(coll *mongo.Collection) *MongoStore {
	return &MongoStore{coll: coll}
}

// OpenMongoStore connects to uri and uses the preferences collection of
// database. Close disconnects the client.
func OpenMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeStore, err, "connect to mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errs.Wrap(errs.ErrCodeStore, err, "ping mongo")
	}
	return &MongoStore{
		coll:   client.Database(database).Collection(DefaultMongoCollection),
		client: client,
	}, nil
}

func (s *MongoStore) Get(ctx context.Context, user string) (Document, error) {
	if err := validateUser(user); err != nil {
		return Document{}, err
	}
	var d mongoDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": user}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return emptyDocument(), nil
	}
	if err != nil {
		return Document{}, errs.Wrap(errs.ErrCodeStore, err, "mongo find")
	}
	// Nested documents decode as bson types; store the plain JSON shape.
	prefs, err := Normalize(d.Preferences)
	if err != nil {
		return Document{}, errs.Wrap(errs.ErrCodeStore, err, "decode stored preferences")
	}
	return Document{Preferences: prefs, Version: d.Version, UpdatedAt: d.UpdatedAt}, nil
}

func (s *MongoStore) Replace(ctx context.Context, user string, prefs map[string]any, expected *int64) (Document, error) {
	return s.update(ctx, user, expected, replaceWith(prefs))
}

func (s *MongoStore) Patch(ctx context.Context, user string, updates map[string]any, expected *int64) (Document, error) {
	return s.update(ctx, user, expected, mergeWith(updates))
}

func (s *MongoStore) Delete(ctx context.Context, user string, keys ...string) (Document, error) {
	if err := validateKeys(keys); err != nil {
		return Document{}, err
	}
	return s.update(ctx, user, nil, deleteKeys(keys))
}

func (s *MongoStore) update(ctx context.Context, user string, expected *int64, m mutation) (Document, error) {
	for attempt := 0; attempt < maxTxRetries; attempt++ {
		cur, err := s.Get(ctx, user)
		if err != nil {
			return Document{}, err
		}
		next, err := apply(cur, expected, m, time.Now())
		if err != nil {
			return Document{}, err
		}
		d := mongoDoc{User: user, Preferences: next.Preferences, Version: next.Version, UpdatedAt: next.UpdatedAt}

		if cur.Version == 0 {
			_, err = s.coll.InsertOne(ctx, d)
			if mongo.IsDuplicateKeyError(err) {
				continue
			}
		} else {
			var res *mongo.UpdateResult
			res, err = s.coll.ReplaceOne(ctx, bson.M{"_id": user, "version": cur.Version}, d)
			if err == nil && res.MatchedCount == 0 {
				continue
			}
		}
		if err != nil {
			return Document{}, errs.Wrap(errs.ErrCodeStore, err, "mongo write")
		}
		return next, nil
	}
	return Document{}, errs.New(errs.ErrCodeStore, "preferences for %q changed concurrently %d times", user, maxTxRetries)
}

func (s *MongoStore) Name() string { return "mongo" }

// Close disconnects the client if the store opened it.
func (s *MongoStore) Close() error {
	if s.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
