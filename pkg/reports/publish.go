package reports

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"github.com/optimode/paxstats/pkg/elastic_client"
	"github.com/rs/zerolog/log"
)

type indexedRow struct {
	Report      string
	Engine      string
	GeneratedAt time.Time
	Parameters  Parameters

	Row any
}

func IndexName(report string) string {
	return fmt.Sprintf("paxstats-%s", report)
}

// Publish queues every row of the result for indexing, a no-op when Elasticsearch is not configured
func Publish(result *Result) error {
	if elastic_client.Client == nil {
		return nil
	}

	rows := reflect.ValueOf(result.Data.Rows())
	if rows.Kind() != reflect.Slice {
		return fmt.Errorf("report %s rows are not a slice", result.Report)
	}

	indexName := IndexName(result.Report)

	for i := 0; i < rows.Len(); i++ {
		document, err := json.Marshal(indexedRow{
			Report:      result.Report,
			Engine:      result.Engine,
			GeneratedAt: result.GeneratedAt,
			Parameters:  result.Parameters,
			Row:         rows.Index(i).Interface(),
		})
		if err != nil {
			return err
		}

		elastic_client.IndexRequest(indexName, bytes.NewReader(document))
	}

	log.Info().Str("report", result.Report).Str("index", indexName).Int("rows", rows.Len()).Msg("Queued report rows for indexing")

	return nil
}
