package reports

import (
	"testing"

	"github.com/optimode/paxstats/pkg/aggregation"
	"github.com/optimode/paxstats/pkg/segments"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func toDocument(t *testing.T, record any) bson.M {
	t.Helper()

	data, err := bson.Marshal(record)
	require.NoError(t, err)

	var document bson.M
	require.NoError(t, bson.Unmarshal(data, &document))

	return document
}

var unitedStates = segments.RawRecord{OriginCountryName: "United States", DestCountryName: "United States"}
var ukToBrazil = segments.RawRecord{OriginCountryName: "United Kingdom", DestCountryName: "Brazil"}

func externalSegments() []segments.ExternalSegment {
	return []segments.ExternalSegment{
		{Provider: "RITA", YearMonth: segments.StringList{"2016-01"}, Origin: "JFK", Destination: "LAX", Airline: segments.StringList{"AA", "DL"}, TotalPax: 100, RawRec: unitedStates},
		{Provider: "RITA", YearMonth: segments.StringList{"2016-01"}, Origin: "JFK", Destination: "SFO", Airline: segments.StringList{"AA"}, TotalPax: 50, RawRec: unitedStates},
		{Provider: "RITA", YearMonth: segments.StringList{"2016-02"}, Origin: "ORD", Destination: "LAX", Airline: segments.StringList{"UA"}, TotalPax: 30, RawRec: unitedStates},
		{Provider: "RITA", YearMonth: segments.StringList{"2016-01"}, Origin: "LHR", Destination: "JFK", Airline: segments.StringList{"BA"}, TotalPax: 70, RawRec: segments.RawRecord{OriginCountryName: "United Kingdom", DestCountryName: "United States"}},
		{Provider: "ANAC", YearMonth: segments.StringList{"2016-01", "2016-02", "2016-03"}, Origin: "LHR", Destination: "GIG", Airline: segments.StringList{"BA"}, TotalPax: 40, RawRec: ukToBrazil},
		{Provider: "ANAC", YearMonth: segments.StringList{"2016-01"}, Origin: "LHR", Destination: "GIG", Airline: segments.StringList{"BA", "LA"}, TotalPax: 20, RawRec: ukToBrazil},
		{Provider: "ANAC", YearMonth: segments.StringList{"2016-02"}, Origin: "LHR", Destination: "GIG", Airline: segments.StringList{"BA"}, TotalPax: 99, RawRec: ukToBrazil},
	}
}

func primarySegments() []segments.SegmentInitialData {
	return []segments.SegmentInitialData{
		{YearMonth: "2016-01", Origin: "LHR", Destination: "GIG", OperatingAirline: "BA", Passengers: 10},
		{YearMonth: "2016-01", Origin: "LHR", Destination: "GIG", OperatingAirline: "BA", Passengers: 15},
		{YearMonth: "2016-01", Origin: "LHR", Destination: "GIG", OperatingAirline: "LA", Passengers: 5},
		{YearMonth: "2016-02", Origin: "LHR", Destination: "GIG", OperatingAirline: "BA", Passengers: 100},
		{YearMonth: "2016-01", Origin: "LHR", Destination: "CDG", OperatingAirline: "BA", Passengers: 7},
	}
}

func providers() []segments.Provider {
	return []segments.Provider{
		{Provider: "RITA", LatestYMAvailable: "2016-02", ImportProcess: true},
		{Provider: "ANAC", LatestYMAvailable: "2016-04", ImportProcess: false},
		{Provider: "CRK", LatestYMAvailable: "2016-01", ImportProcess: true},
	}
}

func fixtureDocuments(t *testing.T, p Parameters) map[string][]bson.M {
	documents := map[string][]bson.M{}

	for _, segment := range externalSegments() {
		documents[p.ExternalSegmentsCollection] = append(documents[p.ExternalSegmentsCollection], toDocument(t, segment))
	}
	for _, segment := range primarySegments() {
		documents[p.SegmentsCollection] = append(documents[p.SegmentsCollection], toDocument(t, segment))
	}
	for _, provider := range providers() {
		documents[p.ProvidersCollection] = append(documents[p.ProvidersCollection], toDocument(t, provider))
	}

	return documents
}

func fixtureEngine(t *testing.T) *aggregation.MemoryEngine {
	engine := aggregation.NewMemoryEngine()

	for collection, documents := range fixtureDocuments(t, DefaultParameters()) {
		engine.Insert(collection, documents...)
	}

	return engine
}
