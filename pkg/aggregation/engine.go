package aggregation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Engine runs a Query and returns one row per group, the group key under _id.
// Source identifies the data queried, two engines with the same source see the same records.
type Engine interface {
	Name() string
	Source() string
	Aggregate(ctx context.Context, query Query) ([]bson.M, error)
}

type MongoEngine struct {
	Database *mongo.Database
	Hosts    []string
}

func NewMongoEngine(database *mongo.Database, hosts ...string) *MongoEngine {
	return &MongoEngine{Database: database, Hosts: hosts}
}

func (e *MongoEngine) Name() string {
	return "mongodb"
}

// Source is <host,...>/<database>
func (e *MongoEngine) Source() string {
	return fmt.Sprintf("%s/%s", strings.Join(e.Hosts, ","), e.Database.Name())
}

func (e *MongoEngine) Aggregate(ctx context.Context, query Query) ([]bson.M, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	startTime := time.Now()
	pipeline := query.Pipeline()

	log.Debug().Str("query", query.Name).Str("collection", query.Collection).Interface("pipeline", pipeline).Msg("Running aggregation")

	cursor, err := e.Database.Collection(query.Collection).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate %s: %w", query.Name, err)
	}

	rows := []bson.M{}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("read %s results: %w", query.Name, err)
	}

	log.Debug().Str("query", query.Name).Int("rows", len(rows)).Dur("took", time.Since(startTime)).Msg("Aggregation complete")

	return rows, nil
}
