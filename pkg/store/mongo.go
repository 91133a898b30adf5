package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/distmeta/pkg/descriptor"
)

// Collection is the MongoDB collection releases are stored in.
const Collection = "descriptors"

// MongoConfig holds MongoDB connection configuration.
type MongoConfig struct {
	URI      string
	Database string
	Timeout  time.Duration // connect and ping timeout; 0 means 10s
}

// MongoStore keeps releases in a MongoDB collection with a unique
// (name, version) index.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects, pings and ensures the release index exists.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	s := NewMongoStoreFromClient(client, cfg.Database)
	if err := s.ensureIndex(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

// NewMongoStoreFromClient wraps an existing client.
func NewMongoStoreFromClient(client *mongo.Client, database string) *MongoStore {
	return &MongoStore{client: client, coll: client.Database(database).Collection(Collection)}
}

func (s *MongoStore) ensureIndex(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}, {Key: "version", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("mongo index: %w", err)
	}
	return nil
}

// Put implements [Store]. An existing release keeps its ID.
func (s *MongoStore) Put(ctx context.Context, d *descriptor.Descriptor) (*Record, error) {
	rec, err := newRecord(d)
	if err != nil {
		return nil, err
	}
	filter := bson.D{{Key: "name", Value: rec.Name}, {Key: "version", Value: rec.Version}}
	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "descriptor", Value: rec.Descriptor},
			{Key: "published_at", Value: rec.PublishedAt},
		}},
		{Key: "$setOnInsert", Value: bson.D{{Key: "_id", Value: rec.ID}}},
	}
	if _, err := s.coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
		return nil, fmt.Errorf("mongo put %s %s: %w", rec.Name, rec.Version, err)
	}
	return s.Get(ctx, rec.Name, rec.Version)
}

// Get implements [Store].
func (s *MongoStore) Get(ctx context.Context, name, version string) (*Record, error) {
	var rec Record
	err := s.coll.FindOne(ctx, bson.D{{Key: "name", Value: Key(name)}, {Key: "version", Value: version}}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(name, version)
	}
	if err != nil {
		return nil, fmt.Errorf("mongo get %s %s: %w", name, version, err)
	}
	return &rec, nil
}

// Latest implements [Store].
func (s *MongoStore) Latest(ctx context.Context, name string) (*Record, error) {
	return latest(ctx, s, name)
}

// Versions implements [Store].
func (s *MongoStore) Versions(ctx context.Context, name string) ([]string, error) {
	opts := options.Find().SetProjection(bson.D{{Key: "version", Value: 1}})
	cur, err := s.coll.Find(ctx, bson.D{{Key: "name", Value: Key(name)}}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo versions %s: %w", name, err)
	}
	var rows []struct {
		Version string `bson:"version"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("mongo versions %s: %w", name, err)
	}
	versions := make([]string, len(rows))
	for i, r := range rows {
		versions[i] = r.Version
	}
	SortVersions(versions)
	return versions, nil
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
