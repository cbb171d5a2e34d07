package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/pangraph/pkg/cache"
	errs "github.com/matzehuels/pangraph/pkg/errors"
)

// MongoOptions configures [NewMongo].
type MongoOptions struct {
	URI        string
	Database   string // default "pangraph"
	Collection string // default "marginals"
}

// Mongo stores records in a MongoDB collection.
type Mongo struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongo connects to MongoDB, verifies the connection and ensures the
// source_hash index exists.
func NewMongo(ctx context.Context, opts MongoOptions) (*Mongo, error) {
	if opts.Database == "" {
		opts.Database = "pangraph"
	}
	if opts.Collection == "" {
		opts.Collection = "marginals"
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.URI))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	coll := client.Database(opts.Database).Collection(opts.Collection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "source_hash", Value: 1}, {Key: "created_at", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo index: %w", err)
	}
	return &Mongo{client: client, coll: coll}, nil
}

// Save implements Store.
func (m *Mongo) Save(ctx context.Context, r Record) error {
	_, err := m.coll.ReplaceOne(ctx, bson.M{"_id": r.ID}, r, options.Replace().SetUpsert(true))
	return classify(err)
}

// Get implements Store.
func (m *Mongo) Get(ctx context.Context, id string) (Record, error) {
	var r Record
	err := m.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&r)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Record{}, errs.Wrap(errs.ErrCodeNotFound, ErrNotFound, "record %s", id)
	}
	if err != nil {
		return Record{}, classify(err)
	}
	return r, nil
}

// BySource implements Store.
func (m *Mongo) BySource(ctx context.Context, sourceHash string) ([]Record, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})
	cur, err := m.coll.Find(ctx, bson.M{"source_hash": sourceHash}, opts)
	if err != nil {
		return nil, classify(err)
	}
	var out []Record
	if err := cur.All(ctx, &out); err != nil {
		return nil, classify(err)
	}
	return out, nil
}

// Close disconnects the client.
func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// classify marks network failures and timeouts as retryable.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return cache.Retryable(fmt.Errorf("%w: %w", cache.ErrNetwork, err))
	}
	return err
}

var _ Store = (*Mongo)(nil)
