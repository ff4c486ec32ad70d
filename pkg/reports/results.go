package reports

import (
	"strings"
	"time"

	"github.com/optimode/paxstats/pkg/segments"
	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/exp/slices"
)

type Result struct {
	Report      string     `json:"report"`
	Engine      string     `json:"engine"`
	GeneratedAt time.Time  `json:"generated_at"`
	Parameters  Parameters `json:"parameters"`

	Data Data `json:"data"`
}

// Data is the body of a report, Rows returns a slice of flat structs
type Data interface {
	Rows() any
	Len() int
}

type AirlinePax struct {
	Airline segments.StringList `bson:"_id" json:"airline" csv:"airline"`
	Pax     float64             `bson:"pax" json:"pax" csv:"pax"`
}

type AirlinePaxRows []AirlinePax

func (r AirlinePaxRows) Rows() any { return r }
func (r AirlinePaxRows) Len() int  { return len(r) }

const (
	StoreSegments         = "segments"
	StoreExternalSegments = "external_segments"
)

// RouteComparison holds the two stores side by side, they are never merged
type RouteComparison struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	YearMonth   string `json:"year_month"`

	Segments AirlinePaxRows `json:"segments"`
	External AirlinePaxRows `json:"external"`
}

type RouteCompanyRow struct {
	Store   string              `json:"store" csv:"store"`
	Airline segments.StringList `json:"airline" csv:"airline"`
	Pax     float64             `json:"pax" csv:"pax"`
}

func (r *RouteComparison) Rows() any {
	rows := make([]RouteCompanyRow, 0, r.Len())

	for _, row := range r.Segments {
		rows = append(rows, RouteCompanyRow{Store: StoreSegments, Airline: row.Airline, Pax: row.Pax})
	}
	for _, row := range r.External {
		rows = append(rows, RouteCompanyRow{Store: StoreExternalSegments, Airline: row.Airline, Pax: row.Pax})
	}

	return rows
}

func (r *RouteComparison) Len() int {
	return len(r.Segments) + len(r.External)
}

// AirlineSet is the distinct airlines of a provider
type AirlineSet []string

func (s AirlineSet) MarshalCSV() (string, error) {
	return strings.Join(s, "|"), nil
}

type ProviderSummaryRow struct {
	Provider string     `bson:"_id" json:"provider" csv:"provider"`
	From     string     `bson:"from" json:"from" csv:"from"`
	To       string     `bson:"to" json:"to" csv:"to"`
	Airlines AirlineSet `bson:"nb_airlines" json:"airlines" csv:"airlines"`
	Segments int64      `bson:"segments" json:"segments" csv:"segments"`
	Pax      float64    `bson:"pax" json:"pax" csv:"pax"`
}

type ProviderSummaryRows []ProviderSummaryRow

func (r ProviderSummaryRows) Rows() any { return r }
func (r ProviderSummaryRows) Len() int  { return len(r) }

const (
	FreshnessOK            = "OK"
	FreshnessBehind        = "BEHIND"
	FreshnessAhead         = "AHEAD"
	FreshnessNotDownloaded = "NOT_DOWNLOADED"
	FreshnessUnknown       = "UNKNOWN"
)

type ProviderFreshnessRow struct {
	Provider         string `json:"provider" csv:"provider"`
	LatestAvailable  string `json:"latest_available" csv:"latest_available"`
	LatestDownloaded string `json:"latest_downloaded" csv:"latest_downloaded"`
	Status           string `json:"status" csv:"status"`
}

type ProviderFreshnessRows []ProviderFreshnessRow

func (r ProviderFreshnessRows) Rows() any { return r }
func (r ProviderFreshnessRows) Len() int  { return len(r) }

func decodeRows[T any](rows []bson.M) ([]T, error) {
	decoded := make([]T, 0, len(rows))

	for _, row := range rows {
		data, err := bson.Marshal(row)
		if err != nil {
			return nil, err
		}

		var value T
		if err := bson.Unmarshal(data, &value); err != nil {
			return nil, err
		}

		decoded = append(decoded, value)
	}

	return decoded, nil
}

// sortAirlinePax orders by passengers descending, ties by airline
func sortAirlinePax(rows []AirlinePax) {
	slices.SortFunc(rows, func(a, b AirlinePax) int {
		switch {
		case a.Pax > b.Pax:
			return -1
		case a.Pax < b.Pax:
			return 1
		}
		return strings.Compare(a.Airline.String(), b.Airline.String())
	})
}
