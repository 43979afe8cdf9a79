// Package mongo implements the repository interfaces on MongoDB, the document
// store the service was designed around.
//
// Birds and sightings are two collections with no server-side link between
// them. Ids are xid strings assigned client-side; xids sort by creation time,
// so ordering by _id returns records in insertion order.
package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	birdsCollection     = "birds"
	sightingsCollection = "sightings"
)

// DB holds the client and database handle. Birds() and Sightings() return
// the per-collection stores.
type DB struct {
	client *mongo.Client
	db     *mongo.Database
}

// New connects to uri, verifies the connection and ensures the query indexes
// exist on both collections.
func New(ctx context.Context, uri, database string) (*DB, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo: connecting: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo: pinging: %w", err)
	}

	db := &DB{client: client, db: client.Database(database)}
	if err := db.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo: creating indexes: %w", err)
	}
	return db, nil
}

func (db *DB) Close(ctx context.Context) error {
	return db.client.Disconnect(ctx)
}

// Drop removes both collections. Used by tests to reset state.
func (db *DB) Drop(ctx context.Context) error {
	for _, name := range []string{birdsCollection, sightingsCollection} {
		if err := db.db.Collection(name).Drop(ctx); err != nil {
			return fmt.Errorf("mongo: dropping %s: %w", name, err)
		}
	}
	return db.ensureIndexes(ctx)
}

func (db *DB) ensureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		birdsCollection: {
			{Keys: bson.D{{Key: "name", Value: 1}}},
			{Keys: bson.D{{Key: "color", Value: 1}}},
		},
		sightingsCollection: {
			{Keys: bson.D{{Key: "bird_id", Value: 1}}},
			{Keys: bson.D{{Key: "location", Value: 1}}},
			{Keys: bson.D{{Key: "date_time", Value: 1}}},
		},
	}
	for name, models := range indexes {
		if _, err := db.db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

func (db *DB) Birds() *BirdStore {
	return &BirdStore{coll: db.db.Collection(birdsCollection)}
}

func (db *DB) Sightings() *SightingStore {
	return &SightingStore{coll: db.db.Collection(sightingsCollection)}
}

var byInsertion = options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})

// findAll drains a cursor into a non-nil slice.
func findAll[T any](ctx context.Context, coll *mongo.Collection, filter bson.M) ([]T, error) {
	cur, err := coll.Find(ctx, filter, byInsertion)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]T, 0)
	for cur.Next(ctx) {
		var v T
		if err := cur.Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}
