package reports

import (
	"fmt"
	"os"

	"github.com/optimode/paxstats/pkg/segments"
	"gopkg.in/yaml.v3"
)

// Parameters are the filter values and collection names the reports run with
type Parameters struct {
	SegmentsCollection         string `yaml:"segments_collection" json:"segments_collection"`
	ExternalSegmentsCollection string `yaml:"external_segments_collection" json:"external_segments_collection"`
	ProvidersCollection        string `yaml:"providers_collection" json:"providers_collection"`

	YearMonth          string `yaml:"year_month" json:"year_month"`
	OriginCountry      string `yaml:"origin_country" json:"origin_country"`
	DestinationCountry string `yaml:"destination_country" json:"destination_country"`
	Origin             string `yaml:"origin" json:"origin"`
	Destination        string `yaml:"destination" json:"destination"`

	// Providers restricts provider-summary and provider-freshness, empty means every provider
	Providers []string `yaml:"providers" json:"providers,omitempty"`
	// ToProcess restricts provider-freshness to providers flagged for import
	ToProcess bool `yaml:"to_process" json:"to_process"`
}

func DefaultParameters() Parameters {
	return Parameters{
		SegmentsCollection:         "segment_initial_data",
		ExternalSegmentsCollection: "external_segment_laurent_tests",
		ProvidersCollection:        "provider",

		YearMonth:          "2016-01",
		OriginCountry:      "United States",
		DestinationCountry: "United States",
		Origin:             "LHR",
		Destination:        "GIG",
	}
}

// LoadParameters reads a YAML file on top of the defaults, unset keys keep their default
func LoadParameters(path string) (Parameters, error) {
	parameters := DefaultParameters()

	contents, err := os.ReadFile(path)
	if err != nil {
		return parameters, err
	}

	if err := yaml.Unmarshal(contents, &parameters); err != nil {
		return parameters, fmt.Errorf("parse %s: %w", path, err)
	}

	return parameters, parameters.Validate()
}

func (p Parameters) Validate() error {
	if p.SegmentsCollection == "" || p.ExternalSegmentsCollection == "" || p.ProvidersCollection == "" {
		return fmt.Errorf("%w: collection names must be set", ErrInvalidParameters)
	}

	if !segments.IsYearMonth(p.YearMonth) {
		return fmt.Errorf("%w: year month %q is not in YYYY-MM form", ErrInvalidParameters, p.YearMonth)
	}

	return nil
}
