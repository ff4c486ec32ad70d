package reports

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/optimode/paxstats/pkg/aggregation"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
	"golang.org/x/exp/slices"
)

var ErrUnknownReport = errors.New("unknown report")
var ErrInvalidParameters = errors.New("invalid report parameters")

type Report struct {
	Name        string
	Description string
	Run         func(ctx context.Context, engine aggregation.Engine, p Parameters) (Data, error)
}

var registry = []Report{
	{
		Name:        "pax-by-airline",
		Description: "passengers per airline for domestic segments of a month",
		Run: func(ctx context.Context, engine aggregation.Engine, p Parameters) (Data, error) {
			return PaxByAirline(ctx, engine, p)
		},
	},
	{
		Name:        "route-by-company",
		Description: "passengers per company on a route, primary and external stores side by side",
		Run: func(ctx context.Context, engine aggregation.Engine, p Parameters) (Data, error) {
			return RouteByCompany(ctx, engine, p)
		},
	},
	{
		Name:        "provider-summary",
		Description: "months, airlines, segments and passengers stored per data provider",
		Run: func(ctx context.Context, engine aggregation.Engine, p Parameters) (Data, error) {
			return ProviderSummary(ctx, engine, p)
		},
	},
	{
		Name:        "provider-freshness",
		Description: "latest downloaded month per provider against the latest month it publishes",
		Run: func(ctx context.Context, engine aggregation.Engine, p Parameters) (Data, error) {
			return ProviderFreshness(ctx, engine, p)
		},
	},
}

func Reports() []Report {
	return slices.Clone(registry)
}

func ReportNames() []string {
	names := make([]string, len(registry))
	for i, report := range registry {
		names[i] = report.Name
	}
	return names
}

func GetReport(name string) (Report, error) {
	for _, report := range registry {
		if report.Name == name {
			return report, nil
		}
	}

	return Report{}, fmt.Errorf("%w %q, expected one of %s", ErrUnknownReport, name, strings.Join(ReportNames(), ", "))
}

func PaxByAirline(ctx context.Context, engine aggregation.Engine, p Parameters) (AirlinePaxRows, error) {
	rows, err := engine.Aggregate(ctx, PaxByAirlineQuery(p))
	if err != nil {
		return nil, err
	}

	result, err := decodeRows[AirlinePax](rows)
	if err != nil {
		return nil, fmt.Errorf("decode pax-by-airline: %w", err)
	}
	sortAirlinePax(result)

	return result, nil
}

// RouteByCompany queries both stores concurrently, a failure of either fails the report
func RouteByCompany(ctx context.Context, engine aggregation.Engine, p Parameters) (*RouteComparison, error) {
	comparison := &RouteComparison{
		Origin:      p.Origin,
		Destination: p.Destination,
		YearMonth:   p.YearMonth,
	}

	run := func(query aggregation.Query, target *AirlinePaxRows) func(context.Context) error {
		return func(ctx context.Context) error {
			rows, err := engine.Aggregate(ctx, query)
			if err != nil {
				return err
			}

			decoded, err := decodeRows[AirlinePax](rows)
			if err != nil {
				return fmt.Errorf("decode %s: %w", query.Name, err)
			}
			sortAirlinePax(decoded)

			*target = decoded
			return nil
		}
	}

	queryPool := pool.New().WithContext(ctx).WithCancelOnError().WithFirstError()
	queryPool.Go(run(RouteSegmentsQuery(p), &comparison.Segments))
	queryPool.Go(run(RouteExternalQuery(p), &comparison.External))

	if err := queryPool.Wait(); err != nil {
		return nil, err
	}

	return comparison, nil
}

func ProviderSummary(ctx context.Context, engine aggregation.Engine, p Parameters) (ProviderSummaryRows, error) {
	rows, err := engine.Aggregate(ctx, ProviderSummaryQuery(p))
	if err != nil {
		return nil, err
	}

	result, err := decodeRows[ProviderSummaryRow](rows)
	if err != nil {
		return nil, fmt.Errorf("decode provider-summary: %w", err)
	}

	for i := range result {
		slices.Sort(result[i].Airlines)
	}
	slices.SortFunc(result, func(a, b ProviderSummaryRow) int {
		return strings.Compare(a.Provider, b.Provider)
	})

	return result, nil
}

// ProviderFreshness compares the latest month downloaded for each provider against provider.latest_ym_available
func ProviderFreshness(ctx context.Context, engine aggregation.Engine, p Parameters) (ProviderFreshnessRows, error) {
	providerRows, err := engine.Aggregate(ctx, ProvidersQuery(p))
	if err != nil {
		return nil, err
	}

	available, err := decodeRows[struct {
		Provider        string `bson:"_id"`
		LatestAvailable string `bson:"latest_available"`
	}](providerRows)
	if err != nil {
		return nil, fmt.Errorf("decode providers: %w", err)
	}

	result := ProviderFreshnessRows{}
	if len(available) == 0 {
		return result, nil
	}

	providers := make([]string, len(available))
	for i, provider := range available {
		providers[i] = provider.Provider
	}

	downloadedRows, err := engine.Aggregate(ctx, LatestDownloadedQuery(p, providers))
	if err != nil {
		return nil, err
	}

	downloaded, err := decodeRows[struct {
		Provider         string `bson:"_id"`
		LatestDownloaded string `bson:"latest_downloaded"`
	}](downloadedRows)
	if err != nil {
		return nil, fmt.Errorf("decode latest downloaded: %w", err)
	}

	latestDownloaded := map[string]string{}
	for _, row := range downloaded {
		latestDownloaded[row.Provider] = row.LatestDownloaded
	}

	for _, provider := range available {
		row := ProviderFreshnessRow{
			Provider:         provider.Provider,
			LatestAvailable:  provider.LatestAvailable,
			LatestDownloaded: latestDownloaded[provider.Provider],
		}
		row.Status = freshnessStatus(row.LatestAvailable, row.LatestDownloaded)

		if row.Status != FreshnessOK {
			log.Debug().Str("provider", row.Provider).Str("available", row.LatestAvailable).Str("downloaded", row.LatestDownloaded).Msg("Provider not up to date")
		}

		result = append(result, row)
	}

	slices.SortFunc(result, func(a, b ProviderFreshnessRow) int {
		return strings.Compare(a.Provider, b.Provider)
	})

	return result, nil
}

// freshnessStatus compares YYYY-MM strings, which order lexically
func freshnessStatus(available string, downloaded string) string {
	switch {
	case downloaded == "":
		return FreshnessNotDownloaded
	case available == "":
		return FreshnessUnknown
	case downloaded == available:
		return FreshnessOK
	case downloaded < available:
		return FreshnessBehind
	}

	return FreshnessAhead
}

type Runner struct {
	Engine aggregation.Engine
	Now    func() time.Time
}

func NewRunner(engine aggregation.Engine) *Runner {
	return &Runner{
		Engine: engine,
		Now:    time.Now,
	}
}

func (r *Runner) Run(ctx context.Context, name string, p Parameters) (*Result, error) {
	report, err := GetReport(name)
	if err != nil {
		return nil, err
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	startTime := time.Now()

	data, err := report.Run(ctx, r.Engine, p)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	log.Info().Str("report", name).Str("engine", r.Engine.Name()).Int("rows", data.Len()).Dur("took", time.Since(startTime)).Msg("Report complete")

	return &Result{
		Report:      name,
		Engine:      r.Engine.Name(),
		GeneratedAt: r.Now(),
		Parameters:  p,
		Data:        data,
	}, nil
}

// RunAll runs every report concurrently, results come back in registry order
func (r *Runner) RunAll(ctx context.Context, p Parameters) ([]*Result, error) {
	results := make([]*Result, len(registry))

	runPool := pool.New().WithContext(ctx).WithCancelOnError().WithFirstError()
	for i, report := range registry {
		runPool.Go(func(ctx context.Context) error {
			result, err := r.Run(ctx, report.Name, p)
			if err != nil {
				return err
			}

			results[i] = result
			return nil
		})
	}

	if err := runPool.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}
