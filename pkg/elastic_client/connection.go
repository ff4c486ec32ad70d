package elastic_client

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esutil"
	"github.com/optimode/paxstats/pkg/util"
	"github.com/rs/zerolog/log"
)

var Client *elasticsearch.Client
var bulkIndexer esutil.BulkIndexer

var ErrNotConfigured = errors.New("elasticsearch configuration not set")

// Connect sets up the client and bulk indexer from PAXSTATS_ELASTICSEARCH_*, without an address it is skipped unless required
func Connect(required bool) error {
	env := util.GetEnvironmentVariables()

	address := util.GetEnvironmentVariable(env, "ELASTICSEARCH_ADDRESS", "")
	if address == "" {
		if required {
			return ErrNotConfigured
		}

		log.Debug().Msg("Skipping Elasticsearch setup")
		return nil
	}

	retryBackoff := backoff.NewExponentialBackOff()

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{address},
		Username:  util.GetEnvironmentVariable(env, "ELASTICSEARCH_USERNAME", ""),
		Password:  util.GetEnvironmentVariable(env, "ELASTICSEARCH_PASSWORD", ""),

		RetryOnStatus: []int{502, 503, 504, 429},

		RetryBackoff: func(i int) time.Duration {
			if i == 1 {
				retryBackoff.Reset()
			}
			return retryBackoff.NextBackOff()
		},
		MaxRetries: 5,
	})
	if err != nil {
		return err
	}

	_, err = es.Info()
	if err != nil {
		return err
	}

	Client = es

	bulkIndexer, err = esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Client:        es,
		FlushInterval: 15 * time.Second,
	})
	if err != nil {
		return err
	}

	log.Info().Msgf("Elasticsearch client setup for %s", address)

	return nil
}

func IndexRequest(indexName string, document io.ReadSeeker) {
	if Client == nil {
		return
	}

	err := bulkIndexer.Add(
		context.Background(),
		esutil.BulkIndexerItem{
			Index:  indexName,
			Action: "index",
			Body:   document,
			OnFailure: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
				if err != nil {
					log.Error().Err(err).Str("indexName", indexName).Msg("Failed to index document")
				} else {
					log.Error().Str("type", res.Error.Type).Str("reason", res.Error.Reason).Msg("Failed to index document")
				}
			},
		},
	)
	if err != nil {
		log.Error().Err(err).Str("indexName", indexName).Msg("Failed to queue document")
	}
}

// WaitUntilQueueEmpty flushes the pending documents and closes the indexer
func WaitUntilQueueEmpty() error {
	if bulkIndexer == nil {
		return nil
	}

	err := bulkIndexer.Close(context.Background())

	stats := bulkIndexer.Stats()
	log.Info().Uint64("indexed", stats.NumIndexed).Uint64("failed", stats.NumFailed).Msg("Elasticsearch bulk indexer closed")

	bulkIndexer = nil
	Client = nil

	return err
}
