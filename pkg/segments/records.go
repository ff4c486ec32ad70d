package segments

// SegmentInitialData is a flight segment of the primary store
type SegmentInitialData struct {
	YearMonth        string  `bson:"year_month" json:"year_month"`
	Origin           string  `bson:"origin" json:"origin"`
	Destination      string  `bson:"destination" json:"destination"`
	OperatingAirline string  `bson:"operating_airline" json:"operating_airline"`
	Passengers       float64 `bson:"passengers" json:"passengers"`
}

// ExternalSegment is a segment imported from an external data provider.
// Airline and YearMonth are stored either as a single value or as an array.
type ExternalSegment struct {
	Provider    string     `bson:"provider" json:"provider"`
	YearMonth   StringList `bson:"year_month" json:"year_month"`
	Origin      string     `bson:"origin" json:"origin"`
	Destination string     `bson:"destination" json:"destination"`
	Airline     StringList `bson:"airline" json:"airline"`
	TotalPax    float64    `bson:"total_pax" json:"total_pax"`

	RawRec RawRecord `bson:"raw_rec" json:"raw_rec"`
}

// RawRecord keeps the provider columns as they were imported
type RawRecord struct {
	OriginCountryName string `bson:"ORIGIN_COUNTRY_NAME,omitempty" json:"ORIGIN_COUNTRY_NAME,omitempty"`
	DestCountryName   string `bson:"DEST_COUNTRY_NAME,omitempty" json:"DEST_COUNTRY_NAME,omitempty"`
}

type Provider struct {
	Provider          string `bson:"provider" json:"provider"`
	LatestYMAvailable string `bson:"latest_ym_available" json:"latest_ym_available"`
	ImportProcess     bool   `bson:"import_process" json:"import_process"`
}
