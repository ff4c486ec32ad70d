package database

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionIndexes lists the indexes backing the report match stages, keyed by collection name
func CollectionIndexes(segmentsCollection string, externalSegmentsCollection string, providersCollection string) map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		segmentsCollection: {
			{
				Keys: bson.D{{Key: "origin", Value: 1}, {Key: "destination", Value: 1}, {Key: "year_month", Value: 1}},
			},
		},
		externalSegmentsCollection: {
			{
				Keys: bson.D{{Key: "origin", Value: 1}, {Key: "destination", Value: 1}, {Key: "year_month", Value: 1}},
			},
			{
				Keys: bson.D{{Key: "year_month", Value: 1}},
			},
			{
				Keys: bson.D{{Key: "provider", Value: 1}},
			},
		},
		providersCollection: {
			{
				Keys: bson.D{{Key: "provider", Value: 1}},
			},
		},
	}
}

func CreateIndexes(ctx context.Context, indexes map[string][]mongo.IndexModel) error {
	if MongoGlobalInstance == nil {
		return ErrNotConnected
	}

	for collectionName, collectionIndexes := range indexes {
		collection := GetCollection(collectionName)

		opts := options.CreateIndexes()
		names, err := collection.Indexes().CreateMany(ctx, collectionIndexes, opts)
		if err != nil {
			return fmt.Errorf("creating indexes on %s: %w", collectionName, err)
		}

		log.Info().Str("collection", collectionName).Strs("indexes", names).Msg("Created indexes")
	}

	return nil
}
