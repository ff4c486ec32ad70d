package segments

import "time"

const YearMonthLayout = "2006-01"

// IsYearMonth reports whether s is a well formed reporting month such as 2016-01
func IsYearMonth(s string) bool {
	if len(s) != len(YearMonthLayout) {
		return false
	}

	_, err := time.Parse(YearMonthLayout, s)
	return err == nil
}
