package storage

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"instagram-agent-platform/models"
)

const updateMaxRetries = 5

type configDocument struct {
	ID      string             `bson:"_id"`
	Version int64              `bson:"version"`
	Config  models.AgentConfig `bson:"config"`
}

// MongoStorage keeps the singleton config in a single document and
// serializes writers with a version check: a replace only succeeds when
// the version it read is still current, otherwise the mutator is re-run
// against the fresh document.
type MongoStorage struct {
	collection *mongo.Collection
}

func NewMongoStorage(db *mongo.Database) *MongoStorage {
	return &MongoStorage{
		collection: db.Collection("agent_config"),
	}
}

func (s *MongoStorage) Get(ctx context.Context) (models.AgentConfig, error) {
	doc, err := s.load(ctx)
	if err != nil {
		return models.AgentConfig{}, err
	}
	return doc.Config, nil
}

func (s *MongoStorage) Update(ctx context.Context, mutate Mutator) (models.AgentConfig, error) {
	for attempt := 0; attempt < updateMaxRetries; attempt++ {
		doc, err := s.load(ctx)
		if err != nil {
			return models.AgentConfig{}, err
		}

		next := configDocument{
			ID:      models.AgentConfigID,
			Version: doc.Version + 1,
			Config:  mutate(doc.Config),
		}

		res, err := s.collection.ReplaceOne(ctx,
			bson.M{"_id": models.AgentConfigID, "version": doc.Version},
			next,
		)
		if err != nil {
			return models.AgentConfig{}, fmt.Errorf("failed to persist config: %w", err)
		}
		if res.ModifiedCount == 1 {
			return next.Config, nil
		}
		// Version moved underneath us; re-read and reapply.
	}

	return models.AgentConfig{}, ErrUpdateConflict
}

// load fetches the singleton document, seeding it with defaults on first
// access. The upsert with $setOnInsert keeps concurrent first reads from
// both inserting.
func (s *MongoStorage) load(ctx context.Context) (configDocument, error) {
	var doc configDocument
	err := s.collection.FindOne(ctx, bson.M{"_id": models.AgentConfigID}).Decode(&doc)
	if err == nil {
		return doc, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return configDocument{}, fmt.Errorf("failed to read config: %w", err)
	}

	seed := bson.M{
		"version": int64(1),
		"config":  models.DefaultAgentConfig(),
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)
	err = s.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": models.AgentConfigID},
		bson.M{"$setOnInsert": seed},
		opts,
	).Decode(&doc)
	if err != nil {
		return configDocument{}, fmt.Errorf("failed to initialize config: %w", err)
	}
	return doc, nil
}
