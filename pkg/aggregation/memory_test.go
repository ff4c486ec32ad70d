package aggregation

import (
	"context"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func rowsByKey(rows []bson.M) map[any]bson.M {
	byKey := map[any]bson.M{}
	for _, row := range rows {
		byKey[row[GroupKeyField]] = row
	}
	return byKey
}

func TestUnwind(t *testing.T) {
	documents := []bson.M{
		{"id": 1, "airline": bson.A{"AA", "BA"}, "total_pax": 10},
		{"id": 2, "airline": "DL", "total_pax": 5},
		{"id": 3, "total_pax": 7},
		{"id": 4, "airline": bson.A{}, "total_pax": 7},
		{"id": 5, "airline": nil, "total_pax": 7},
	}

	expanded := slices.Collect(Unwind(Scan(documents), "airline"))

	require.Len(t, expanded, 3)
	assert.Equal(t, bson.M{"id": 1, "airline": "AA", "total_pax": 10}, expanded[0])
	assert.Equal(t, bson.M{"id": 1, "airline": "BA", "total_pax": 10}, expanded[1])
	assert.Equal(t, bson.M{"id": 2, "airline": "DL", "total_pax": 5}, expanded[2])

	// Source documents are left untouched
	assert.Equal(t, bson.A{"AA", "BA"}, documents[0]["airline"])
}

func TestUnwindNestedPath(t *testing.T) {
	documents := []bson.M{
		{"raw_rec": bson.M{"carriers": bson.A{"AA", "BA"}, "ORIGIN_COUNTRY_NAME": "France"}},
	}

	expanded := slices.Collect(Unwind(Scan(documents), "raw_rec.carriers"))

	require.Len(t, expanded, 2)
	assert.Equal(t, bson.M{"carriers": "BA", "ORIGIN_COUNTRY_NAME": "France"}, expanded[1]["raw_rec"])
}

func TestUnwindStopsEarly(t *testing.T) {
	documents := []bson.M{{"airline": bson.A{"AA", "BA", "DL"}}}

	count := 0
	for range Unwind(Scan(documents), "airline") {
		count++
		break
	}

	assert.Equal(t, 1, count)
}

func TestMatch(t *testing.T) {
	documents := []bson.M{
		{"year_month": "2016-01", "raw_rec": bson.M{"ORIGIN_COUNTRY_NAME": "United States"}},
		{"year_month": "2016-02", "raw_rec": bson.M{"ORIGIN_COUNTRY_NAME": "United States"}},
		{"year_month": bson.A{"2015-12", "2016-01"}, "raw_rec": bson.M{"ORIGIN_COUNTRY_NAME": "United States"}},
		{"year_month": "2016-01", "raw_rec": bson.M{"ORIGIN_COUNTRY_NAME": "Brazil"}},
		{"year_month": "2016-01"},
	}

	matched := slices.Collect(Match(Scan(documents), []Filter{
		Equals("year_month", "2016-01"),
		Equals("raw_rec.ORIGIN_COUNTRY_NAME", "United States"),
	}))

	assert.Len(t, matched, 2)

	numeric := slices.Collect(Match(Scan([]bson.M{{"n": int32(3)}, {"n": 3.0}, {"n": "3"}}), []Filter{Equals("n", int64(3))}))
	assert.Len(t, numeric, 2)

	in := slices.Collect(Match(Scan(documents), []Filter{In("year_month", "2016-02", "2015-12")}))
	assert.Len(t, in, 2)
}

func TestMemoryEngineAccumulators(t *testing.T) {
	engine := NewMemoryEngine()
	engine.Insert("segments",
		bson.M{"provider": "RITA", "year_month": bson.A{"2016-02", "2016-01"}, "airline": bson.A{"AA", "DL"}, "total_pax": int32(10)},
		bson.M{"provider": "RITA", "year_month": "2016-03", "airline": "AA", "total_pax": int64(5)},
		bson.M{"provider": "ANAC", "year_month": "2016-01", "airline": "G3", "total_pax": 2.5},
		bson.M{"provider": "ANAC", "year_month": "2016-01", "airline": "G3", "total_pax": "n/a"},
	)

	rows, err := engine.Aggregate(context.Background(), Query{
		Name:       "summary",
		Collection: "segments",
		Unwind:     []string{"year_month"},
		GroupBy:    "provider",
		Accumulators: []Accumulator{
			{Name: "from", Operator: OperatorMin, Field: "year_month"},
			{Name: "to", Operator: OperatorMax, Field: "year_month"},
			{Name: "nb_airlines", Operator: OperatorAddToSet, Field: "airline"},
			{Name: "segments", Operator: OperatorCount},
			{Name: "pax", Operator: OperatorSum, Field: "total_pax"},
		},
		FlattenSets: []string{"nb_airlines"},
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byKey := rowsByKey(rows)

	rita := byKey["RITA"]
	assert.Equal(t, "2016-01", rita["from"])
	assert.Equal(t, "2016-03", rita["to"])
	assert.ElementsMatch(t, bson.A{"AA", "DL"}, rita["nb_airlines"])
	assert.Equal(t, int64(3), rita["segments"])
	assert.Equal(t, int64(25), rita["pax"])

	anac := byKey["ANAC"]
	assert.Equal(t, bson.A{"G3"}, anac["nb_airlines"])
	assert.Equal(t, int64(2), anac["segments"])
	assert.Equal(t, 2.5, anac["pax"])
}

func TestMemoryEngineMissingValues(t *testing.T) {
	engine := NewMemoryEngine()
	engine.Insert("segments",
		bson.M{"airline": "AA"},
		bson.M{"airline": "AA", "year_month": nil},
		bson.M{"year_month": "2016-01"},
	)

	rows, err := engine.Aggregate(context.Background(), Query{
		Name:       "missing",
		Collection: "segments",
		GroupBy:    "airline",
		Accumulators: []Accumulator{
			{Name: "from", Operator: OperatorMin, Field: "year_month"},
			{Name: "months", Operator: OperatorAddToSet, Field: "year_month"},
			{Name: "pax", Operator: OperatorSum, Field: "total_pax"},
		},
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byKey := rowsByKey(rows)

	assert.Nil(t, byKey["AA"]["from"])
	assert.Equal(t, bson.A{nil}, byKey["AA"]["months"])
	assert.Equal(t, int64(0), byKey["AA"]["pax"])

	assert.Equal(t, "2016-01", byKey[nil]["from"])
}

func TestMemoryEngineEmpty(t *testing.T) {
	engine := NewMemoryEngine()
	engine.Insert("segments", bson.M{"year_month": "2015-01", "airline": "AA", "total_pax": 1})

	query := Query{
		Name:         "empty",
		Collection:   "segments",
		Match:        []Filter{Equals("year_month", "2016-01")},
		GroupBy:      "airline",
		Accumulators: []Accumulator{{Name: "pax", Operator: OperatorSum, Field: "total_pax"}},
	}

	rows, err := engine.Aggregate(context.Background(), query)
	require.NoError(t, err)
	assert.Empty(t, rows)

	query.Collection = "no_such_collection"
	rows, err = engine.Aggregate(context.Background(), query)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestMemoryEngineIdempotent(t *testing.T) {
	engine := NewMemoryEngine()
	engine.Insert("segments",
		bson.M{"airline": bson.A{"AA", "BA"}, "total_pax": 10},
		bson.M{"airline": "BA", "total_pax": 1},
	)

	query := Query{
		Name:         "idempotent",
		Collection:   "segments",
		Unwind:       []string{"airline"},
		GroupBy:      "airline",
		Accumulators: []Accumulator{{Name: "pax", Operator: OperatorSum, Field: "total_pax"}},
	}

	first, err := engine.Aggregate(context.Background(), query)
	require.NoError(t, err)
	second, err := engine.Aggregate(context.Background(), query)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(11), rowsByKey(first)["BA"]["pax"])
}

func TestMemoryEngineCancelled(t *testing.T) {
	engine := NewMemoryEngine()
	engine.Insert("segments", bson.M{"airline": "AA"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.Aggregate(ctx, Query{Name: "cancelled", Collection: "segments", GroupBy: "airline"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryEngineRejectsInvalidQuery(t *testing.T) {
	_, err := NewMemoryEngine().Aggregate(context.Background(), Query{Name: "invalid"})
	assert.ErrorIs(t, err, ErrInvalidQuery)
}

func TestMemoryEngineKeepsArrayKeysApart(t *testing.T) {
	engine := NewMemoryEngine()
	engine.Insert("external",
		bson.M{"airline": bson.A{"BA LA"}, "provider": "India - domestic", "total_pax": 1},
		bson.M{"airline": bson.A{"BA", "LA"}, "provider": "India", "total_pax": 2},
		bson.M{"airline": bson.A{"BA", "LA"}, "provider": "domestic", "total_pax": 4},
	)

	rows, err := engine.Aggregate(context.Background(), Query{
		Name:       "raw airline",
		Collection: "external",
		GroupBy:    "airline",
		Accumulators: []Accumulator{
			{Name: "pax", Operator: OperatorSum, Field: "total_pax"},
			{Name: "providers", Operator: OperatorAddToSet, Field: "provider"},
		},
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	for _, row := range rows {
		airlines, ok := asArray(row[GroupKeyField])
		require.True(t, ok)

		switch len(airlines) {
		case 1:
			assert.Equal(t, int64(1), row["pax"])
			assert.Equal(t, bson.A{"India - domestic"}, row["providers"])
		case 2:
			assert.Equal(t, int64(6), row["pax"])
			assert.ElementsMatch(t, bson.A{"India", "domestic"}, row["providers"])
		default:
			t.Fatalf("unexpected group %v", row[GroupKeyField])
		}
	}
}

func TestValueKey(t *testing.T) {
	assert.NotEqual(t, valueKey(bson.A{"BA LA"}), valueKey(bson.A{"BA", "LA"}))
	assert.NotEqual(t, valueKey("1"), valueKey(1))
	assert.Equal(t, valueKey(int32(1)), valueKey(1.0))
	assert.Equal(t, valueKey(bson.M{"a": 1, "b": "x"}), valueKey(bson.D{{Key: "b", Value: "x"}, {Key: "a", Value: int64(1)}}))
	assert.Equal(t, valueKey(nil), valueKey(nil))
}

func TestMemoryEngineSumKeepsLargeIntegersExact(t *testing.T) {
	engine := NewMemoryEngine()
	engine.Insert("segments",
		bson.M{"airline": "AA", "total_pax": int64(1) << 53},
		bson.M{"airline": "AA", "total_pax": int64(1)},
	)

	rows, err := engine.Aggregate(context.Background(), Query{
		Name:         "large",
		Collection:   "segments",
		GroupBy:      "airline",
		Accumulators: []Accumulator{{Name: "pax", Operator: OperatorSum, Field: "total_pax"}},
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, int64(1)<<53+1, rows[0]["pax"])
}
