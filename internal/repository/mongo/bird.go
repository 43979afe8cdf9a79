package mongo

import (
	"context"
	"fmt"

	"github.com/rs/xid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/sakif/birdwatch/internal/apperror"
	"github.com/sakif/birdwatch/internal/model"
	"github.com/sakif/birdwatch/internal/repository"
)

type BirdStore struct {
	coll *mongo.Collection
}

var _ repository.BirdRepository = (*BirdStore)(nil)

func (s *BirdStore) Create(ctx context.Context, bird *model.Bird) error {
	bird.ID = xid.New().String()
	if _, err := s.coll.InsertOne(ctx, bird); err != nil {
		return fmt.Errorf("mongo: creating bird: %w", err)
	}
	return nil
}

func (s *BirdStore) GetByID(ctx context.Context, id string) (*model.Bird, error) {
	var b model.Bird
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&b); err != nil {
		if isNoDocuments(err) {
			return nil, apperror.BirdNotFound()
		}
		return nil, fmt.Errorf("mongo: getting bird %s: %w", id, err)
	}
	return &b, nil
}

func (s *BirdStore) Update(ctx context.Context, bird *model.Bird) error {
	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": bird.ID}, bird)
	if err != nil {
		return fmt.Errorf("mongo: updating bird %s: %w", bird.ID, err)
	}
	if res.MatchedCount == 0 {
		return apperror.BirdNotFound()
	}
	return nil
}

func (s *BirdStore) Delete(ctx context.Context, id string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("mongo: deleting bird %s: %w", id, err)
	}
	return nil
}

func (s *BirdStore) List(ctx context.Context) ([]model.Bird, error) {
	birds, err := findAll[model.Bird](ctx, s.coll, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("mongo: listing birds: %w", err)
	}
	return birds, nil
}

func (s *BirdStore) FindByName(ctx context.Context, name string) ([]model.Bird, error) {
	birds, err := findAll[model.Bird](ctx, s.coll, bson.M{"name": name})
	if err != nil {
		return nil, fmt.Errorf("mongo: finding birds by name: %w", err)
	}
	return birds, nil
}

func (s *BirdStore) FindByColor(ctx context.Context, color string) ([]model.Bird, error) {
	birds, err := findAll[model.Bird](ctx, s.coll, bson.M{"color": color})
	if err != nil {
		return nil, fmt.Errorf("mongo: finding birds by color: %w", err)
	}
	return birds, nil
}
