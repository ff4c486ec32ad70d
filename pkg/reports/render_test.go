package reports

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runFixtureReport(t *testing.T, name string) *Result {
	runner := NewRunner(fixtureEngine(t))
	runner.Now = func() time.Time { return time.Date(2016, 4, 1, 0, 0, 0, 0, time.UTC) }

	result, err := runner.Run(context.Background(), name, DefaultParameters())
	require.NoError(t, err)

	return result
}

func TestRenderJSON(t *testing.T) {
	var output bytes.Buffer
	require.NoError(t, Render(&output, FormatJSON, runFixtureReport(t, "pax-by-airline")))

	var decoded struct {
		Report string `json:"report"`
		Data   []struct {
			Airline string  `json:"airline"`
			Pax     float64 `json:"pax"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(output.Bytes(), &decoded))

	assert.Equal(t, "pax-by-airline", decoded.Report)
	require.Len(t, decoded.Data, 2)
	assert.Equal(t, "AA", decoded.Data[0].Airline)
	assert.Equal(t, 150.0, decoded.Data[0].Pax)
}

func TestRenderJSONRouteComparison(t *testing.T) {
	var output bytes.Buffer
	require.NoError(t, Render(&output, FormatJSON, runFixtureReport(t, "route-by-company")))

	assert.Contains(t, output.String(), `"segments"`)
	assert.Contains(t, output.String(), `"external"`)
	assert.Contains(t, output.String(), `"BA",`)
}

func TestRenderCSV(t *testing.T) {
	var output bytes.Buffer
	require.NoError(t, Render(&output, FormatCSV, runFixtureReport(t, "pax-by-airline")))

	assert.Equal(t, "airline,pax\nAA,150\nDL,100\n", output.String())
}

func TestRenderCSVMultipleReports(t *testing.T) {
	var output bytes.Buffer
	require.NoError(t, Render(&output, FormatCSV, runFixtureReport(t, "provider-summary"), runFixtureReport(t, "route-by-company")))

	assert.Equal(t, "# provider-summary\n"+
		"provider,from,to,airlines,segments,pax\n"+
		"ANAC,2016-01,2016-03,BA|LA,5,239\n"+
		"RITA,2016-01,2016-02,AA|BA|DL|UA,4,250\n"+
		"\n"+
		"# route-by-company\n"+
		"store,airline,pax\n"+
		"segments,BA,25\n"+
		"segments,LA,5\n"+
		"external_segments,BA,40\n"+
		"external_segments,BA|LA,20\n", output.String())
}

func TestRenderPretty(t *testing.T) {
	var output bytes.Buffer
	require.NoError(t, Render(&output, FormatPretty, runFixtureReport(t, "provider-freshness")))

	assert.Contains(t, output.String(), "NOT_DOWNLOADED")
}

func TestRenderUnknownFormat(t *testing.T) {
	assert.Error(t, Render(&bytes.Buffer{}, "xml", runFixtureReport(t, "pax-by-airline")))
}

func TestPublishWithoutElasticsearch(t *testing.T) {
	assert.NoError(t, Publish(runFixtureReport(t, "pax-by-airline")))
	assert.Equal(t, "paxstats-pax-by-airline", IndexName("pax-by-airline"))
}
