package reports

import (
	"github.com/optimode/paxstats/pkg/aggregation"
)

func stringValues(values []string) []any {
	converted := make([]any, len(values))
	for i, value := range values {
		converted[i] = value
	}
	return converted
}

// PaxByAirlineQuery sums total_pax per airline for domestic segments of one month,
// a segment with several airlines counts fully for each of them
func PaxByAirlineQuery(p Parameters) aggregation.Query {
	return aggregation.Query{
		Name:       "pax-by-airline",
		Collection: p.ExternalSegmentsCollection,
		Unwind:     []string{"airline"},
		Match: []aggregation.Filter{
			aggregation.Equals("year_month", p.YearMonth),
			aggregation.Equals("raw_rec.ORIGIN_COUNTRY_NAME", p.OriginCountry),
			aggregation.Equals("raw_rec.DEST_COUNTRY_NAME", p.DestinationCountry),
		},
		GroupBy: "airline",
		Accumulators: []aggregation.Accumulator{
			{Name: "pax", Operator: aggregation.OperatorSum, Field: "total_pax"},
		},
	}
}

func routeFilters(p Parameters) []aggregation.Filter {
	return []aggregation.Filter{
		aggregation.Equals("origin", p.Origin),
		aggregation.Equals("destination", p.Destination),
		aggregation.Equals("year_month", p.YearMonth),
	}
}

func RouteSegmentsQuery(p Parameters) aggregation.Query {
	return aggregation.Query{
		Name:       "route-by-company/segments",
		Collection: p.SegmentsCollection,
		Match:      routeFilters(p),
		GroupBy:    "operating_airline",
		Accumulators: []aggregation.Accumulator{
			{Name: "pax", Operator: aggregation.OperatorSum, Field: "passengers"},
		},
	}
}

func RouteExternalQuery(p Parameters) aggregation.Query {
	return aggregation.Query{
		Name:       "route-by-company/external",
		Collection: p.ExternalSegmentsCollection,
		Match:      routeFilters(p),
		GroupBy:    "airline",
		Accumulators: []aggregation.Accumulator{
			{Name: "pax", Operator: aggregation.OperatorSum, Field: "total_pax"},
		},
	}
}

func ProviderSummaryQuery(p Parameters) aggregation.Query {
	query := aggregation.Query{
		Name:       "provider-summary",
		Collection: p.ExternalSegmentsCollection,
		Unwind:     []string{"year_month"},
		GroupBy:    "provider",
		Accumulators: []aggregation.Accumulator{
			{Name: "from", Operator: aggregation.OperatorMin, Field: "year_month"},
			{Name: "to", Operator: aggregation.OperatorMax, Field: "year_month"},
			{Name: "nb_airlines", Operator: aggregation.OperatorAddToSet, Field: "airline"},
			{Name: "segments", Operator: aggregation.OperatorCount},
			{Name: "pax", Operator: aggregation.OperatorSum, Field: "total_pax"},
		},
		FlattenSets: []string{"nb_airlines"},
	}

	if len(p.Providers) > 0 {
		query.Match = []aggregation.Filter{aggregation.In("provider", stringValues(p.Providers)...)}
	}

	return query
}

// ProvidersQuery reads the provider table, one row per provider with its latest available month
func ProvidersQuery(p Parameters) aggregation.Query {
	query := aggregation.Query{
		Name:       "provider-freshness/providers",
		Collection: p.ProvidersCollection,
		GroupBy:    "provider",
		Accumulators: []aggregation.Accumulator{
			{Name: "latest_available", Operator: aggregation.OperatorMax, Field: "latest_ym_available"},
		},
	}

	if p.ToProcess {
		query.Match = append(query.Match, aggregation.Equals("import_process", true))
	}
	if len(p.Providers) > 0 {
		query.Match = append(query.Match, aggregation.In("provider", stringValues(p.Providers)...))
	}

	return query
}

func LatestDownloadedQuery(p Parameters, providers []string) aggregation.Query {
	return aggregation.Query{
		Name:       "provider-freshness/downloaded",
		Collection: p.ExternalSegmentsCollection,
		Unwind:     []string{"year_month"},
		Match: []aggregation.Filter{
			aggregation.In("provider", stringValues(providers)...),
		},
		GroupBy: "provider",
		Accumulators: []aggregation.Accumulator{
			{Name: "latest_downloaded", Operator: aggregation.OperatorMax, Field: "year_month"},
		},
	}
}
