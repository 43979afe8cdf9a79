package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/xid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/sakif/birdwatch/internal/apperror"
	"github.com/sakif/birdwatch/internal/model"
	"github.com/sakif/birdwatch/internal/repository"
)

type SightingStore struct {
	coll *mongo.Collection
}

var _ repository.SightingRepository = (*SightingStore)(nil)

func (s *SightingStore) Create(ctx context.Context, sighting *model.Sighting) error {
	sighting.ID = xid.New().String()
	if _, err := s.coll.InsertOne(ctx, sighting); err != nil {
		return fmt.Errorf("mongo: creating sighting: %w", err)
	}
	return nil
}

func (s *SightingStore) GetByID(ctx context.Context, id string) (*model.Sighting, error) {
	var v model.Sighting
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&v); err != nil {
		if isNoDocuments(err) {
			return nil, apperror.SightingNotFound()
		}
		return nil, fmt.Errorf("mongo: getting sighting %s: %w", id, err)
	}
	return &v, nil
}

// Update replaces the whole document, so a nil DateTime removes the field.
func (s *SightingStore) Update(ctx context.Context, sighting *model.Sighting) error {
	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": sighting.ID}, sighting)
	if err != nil {
		return fmt.Errorf("mongo: updating sighting %s: %w", sighting.ID, err)
	}
	if res.MatchedCount == 0 {
		return apperror.SightingNotFound()
	}
	return nil
}

func (s *SightingStore) Delete(ctx context.Context, id string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("mongo: deleting sighting %s: %w", id, err)
	}
	return nil
}

func (s *SightingStore) DeleteMany(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := s.coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}}); err != nil {
		return fmt.Errorf("mongo: deleting %d sightings: %w", len(ids), err)
	}
	return nil
}

func (s *SightingStore) List(ctx context.Context) ([]model.Sighting, error) {
	return s.find(ctx, "listing sightings", bson.M{})
}

func (s *SightingStore) FindIDsByBirdID(ctx context.Context, birdID string) ([]string, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cur, err := s.coll.Find(ctx, bson.M{"bird_id": birdID}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo: finding sighting ids for bird %s: %w", birdID, err)
	}
	defer cur.Close(ctx)

	ids := make([]string, 0)
	for cur.Next(ctx) {
		var doc struct {
			ID string `bson:"_id"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("mongo: decoding sighting id: %w", err)
		}
		ids = append(ids, doc.ID)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("mongo: iterating sighting ids: %w", err)
	}
	return ids, nil
}

func (s *SightingStore) FindByBirdID(ctx context.Context, birdID string) ([]model.Sighting, error) {
	return s.find(ctx, "finding sightings by bird", bson.M{"bird_id": birdID})
}

func (s *SightingStore) FindByLocation(ctx context.Context, location string) ([]model.Sighting, error) {
	return s.find(ctx, "finding sightings by location", bson.M{"location": location})
}

// FindByDateTimeBetween uses $gte/$lte; documents without date_time never
// match a comparison operator.
func (s *SightingStore) FindByDateTimeBetween(ctx context.Context, start, end time.Time) ([]model.Sighting, error) {
	return s.find(ctx, "finding sightings by date-time", bson.M{
		"date_time": bson.M{"$gte": start.UTC(), "$lte": end.UTC()},
	})
}

func (s *SightingStore) find(ctx context.Context, action string, filter bson.M) ([]model.Sighting, error) {
	sightings, err := findAll[model.Sighting](ctx, s.coll, filter)
	if err != nil {
		return nil, fmt.Errorf("mongo: %s: %w", action, err)
	}
	return sightings, nil
}
