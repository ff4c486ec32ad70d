package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	redisstore "github.com/eko/gocache/store/redis/v4"
	"github.com/optimode/paxstats/pkg/aggregation"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
)

const DefaultExpiration = 90 * time.Minute

type ResultCache struct {
	Cache *cache.Cache[string]
}

func NewResultCache(client *redis.Client, expiration time.Duration) *ResultCache {
	redisStore := redisstore.NewRedis(client, store.WithExpiration(expiration))

	return &ResultCache{
		Cache: cache.New[string](redisStore),
	}
}

// Key identifies a query by the engine, the data source and the full query definition
func Key(engine aggregation.Engine, query aggregation.Query) string {
	hash := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%#v", engine.Name(), engine.Source(), query)))

	return fmt.Sprintf("cachedresults/paxstats/%s/%s", query.Name, hex.EncodeToString(hash[:12]))
}

type cachedRows struct {
	Rows []bson.M `bson:"rows"`
}

// Get returns ok false on a miss, other errors are returned as is
func (c *ResultCache) Get(ctx context.Context, key string) ([]bson.M, bool, error) {
	value, err := c.Cache.Get(ctx, key)
	if err != nil {
		if errors.Is(err, store.NotFound{}) || errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var cached cachedRows
	if err := bson.UnmarshalExtJSON([]byte(value), true, &cached); err != nil {
		return nil, false, err
	}

	if cached.Rows == nil {
		cached.Rows = []bson.M{}
	}

	return cached.Rows, true, nil
}

func (c *ResultCache) Set(ctx context.Context, key string, rows []bson.M) error {
	value, err := bson.MarshalExtJSON(cachedRows{Rows: rows}, true, false)
	if err != nil {
		return err
	}

	return c.Cache.Set(ctx, key, string(value))
}

// CachedEngine serves repeated queries from the cache until expiry
type CachedEngine struct {
	Engine aggregation.Engine
	Cache  *ResultCache
}

func (e *CachedEngine) Name() string {
	return e.Engine.Name()
}

func (e *CachedEngine) Source() string {
	return e.Engine.Source()
}

func (e *CachedEngine) Aggregate(ctx context.Context, query aggregation.Query) ([]bson.M, error) {
	key := Key(e.Engine, query)

	rows, found, err := e.Cache.Get(ctx, key)
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("Failed to read cached results")
	} else if found {
		log.Debug().Str("query", query.Name).Str("key", key).Msg("Serving cached results")
		return rows, nil
	}

	rows, err = e.Engine.Aggregate(ctx, query)
	if err != nil {
		return nil, err
	}

	if err := e.Cache.Set(ctx, key, rows); err != nil {
		log.Error().Err(err).Str("key", key).Msg("Failed to cache results")
	}

	return rows, nil
}
