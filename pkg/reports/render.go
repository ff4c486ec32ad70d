package reports

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
	"github.com/kr/pretty"
)

const (
	FormatJSON   = "json"
	FormatCSV    = "csv"
	FormatPretty = "pretty"
)

var Formats = []string{FormatJSON, FormatCSV, FormatPretty}

func Render(w io.Writer, format string, results ...*Result) error {
	switch format {
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")

		if len(results) == 1 {
			return encoder.Encode(results[0])
		}
		return encoder.Encode(results)
	case FormatCSV:
		for i, result := range results {
			if len(results) > 1 {
				if i > 0 {
					fmt.Fprintln(w)
				}
				fmt.Fprintf(w, "# %s\n", result.Report)
			}

			csv, err := gocsv.MarshalBytes(result.Data.Rows())
			if err != nil {
				return fmt.Errorf("render %s as csv: %w", result.Report, err)
			}

			if _, err := w.Write(csv); err != nil {
				return err
			}
		}
		return nil
	case FormatPretty:
		for _, result := range results {
			if _, err := pretty.Fprintf(w, "%# v\n", result); err != nil {
				return err
			}
		}
		return nil
	}

	return fmt.Errorf("unknown output format %q", format)
}
