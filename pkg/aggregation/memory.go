package aggregation

import (
	"context"
	"iter"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
)

// MemoryEngine reproduces the aggregation stages with an in-memory fold over loaded documents.
// Unknown collections behave like empty ones.
type MemoryEngine struct {
	collections map[string][]bson.M
	source      string
	mutex       sync.RWMutex
}

func NewMemoryEngine() *MemoryEngine {
	return &MemoryEngine{
		collections: map[string][]bson.M{},
	}
}

func (e *MemoryEngine) Name() string {
	return "memory"
}

// Source is the fixtures directory the engine was loaded from, empty when built by hand
func (e *MemoryEngine) Source() string {
	return e.source
}

// Insert appends documents to a collection, mostly for fixtures
func (e *MemoryEngine) Insert(collection string, documents ...bson.M) {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	e.collections[collection] = append(e.collections[collection], documents...)
}

func (e *MemoryEngine) Collections() []string {
	e.mutex.RLock()
	defer e.mutex.RUnlock()

	names := make([]string, 0, len(e.collections))
	for name := range e.collections {
		names = append(names, name)
	}

	return names
}

func (e *MemoryEngine) documents(collection string) []bson.M {
	e.mutex.RLock()
	defer e.mutex.RUnlock()

	documents := e.collections[collection]
	return documents[:len(documents):len(documents)]
}

func (e *MemoryEngine) Aggregate(ctx context.Context, query Query) ([]bson.M, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	startTime := time.Now()

	records := Scan(e.documents(query.Collection))
	for _, field := range query.Unwind {
		records = Unwind(records, field)
	}
	records = Match(records, query.Match)

	rows, err := Group(ctx, records, query)
	if err != nil {
		return nil, err
	}

	log.Debug().Str("query", query.Name).Str("collection", query.Collection).Int("rows", len(rows)).Dur("took", time.Since(startTime)).Msg("In-memory aggregation complete")

	return rows, nil
}

func Scan(documents []bson.M) iter.Seq[bson.M] {
	return func(yield func(bson.M) bool) {
		for _, document := range documents {
			if !yield(document) {
				return
			}
		}
	}
}

// Unwind yields one record per value of the array at field, every other field unchanged.
// Records where the field is missing, null or an empty array are dropped, scalar values pass through.
func Unwind(records iter.Seq[bson.M], field string) iter.Seq[bson.M] {
	return func(yield func(bson.M) bool) {
		for record := range records {
			value, ok := lookupPath(record, field)
			if !ok || value == nil {
				continue
			}

			array, isArray := asArray(value)
			if !isArray {
				if !yield(record) {
					return
				}
				continue
			}

			for _, item := range array {
				if !yield(withPath(record, field, item)) {
					return
				}
			}
		}
	}
}

func Match(records iter.Seq[bson.M], filters []Filter) iter.Seq[bson.M] {
	if len(filters) == 0 {
		return records
	}

	return func(yield func(bson.M) bool) {
		for record := range records {
			if matchesFilters(record, filters) && !yield(record) {
				return
			}
		}
	}
}

func matchesFilters(record bson.M, filters []Filter) bool {
	for _, filter := range filters {
		fieldValue, _ := lookupPath(record, filter.Field)

		matched := false
		for _, expected := range filter.Values {
			if matchesValue(fieldValue, expected) {
				matched = true
				break
			}
		}

		if !matched {
			return false
		}
	}

	return true
}

// Group folds the records into one row per distinct group key, rows in order of first appearance
func Group(ctx context.Context, records iter.Seq[bson.M], query Query) ([]bson.M, error) {
	groups := map[string]*groupState{}
	order := []string{}

	scanned := 0
	for record := range records {
		scanned++
		if scanned%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		key, _ := lookupPath(record, query.GroupBy)
		groupKey := valueKey(key)

		group, exists := groups[groupKey]
		if !exists {
			group = newGroupState(key, query.Accumulators)
			groups[groupKey] = group
			order = append(order, groupKey)
		}

		group.add(record)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows := make([]bson.M, 0, len(order))
	for _, groupKey := range order {
		row := groups[groupKey].result()

		for _, name := range query.FlattenSets {
			row[name] = flattenSet(row[name])
		}

		rows = append(rows, row)
	}

	return rows, nil
}
