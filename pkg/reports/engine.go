package reports

import (
	"context"

	"github.com/optimode/paxstats/pkg/aggregation"
	"github.com/optimode/paxstats/pkg/cache"
	"github.com/optimode/paxstats/pkg/database"
	"github.com/optimode/paxstats/pkg/redis_client"
	"github.com/rs/zerolog/log"
)

// OpenEngine loads the fixtures directory into memory when given, otherwise connects to MongoDB.
// Results are cached in redis when PAXSTATS_REDIS_ADDRESS is set.
func OpenEngine(ctx context.Context, fixtures string) (aggregation.Engine, func(), error) {
	var engine aggregation.Engine
	closers := []func(){}

	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if fixtures != "" {
		memoryEngine, err := aggregation.NewMemoryEngineFromDirectory(fixtures)
		if err != nil {
			return nil, nil, err
		}
		engine = memoryEngine
	} else {
		if err := database.Connect(); err != nil {
			return nil, nil, err
		}
		closers = append(closers, func() {
			if err := database.Disconnect(context.Background()); err != nil {
				log.Error().Err(err).Msg("Failed to disconnect from MongoDB")
			}
		})

		mongoDatabase, err := database.GetDatabase()
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		engine = aggregation.NewMongoEngine(mongoDatabase, database.MongoGlobalInstance.Hosts...)
	}

	if redis_client.Configured() {
		if err := redis_client.Connect(ctx); err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, running without result cache")
		} else {
			closers = append(closers, func() { redis_client.Close() })

			engine = &cache.CachedEngine{
				Engine: engine,
				Cache:  cache.NewResultCache(redis_client.Client, cache.DefaultExpiration),
			}
		}
	}

	return engine, closeAll, nil
}
