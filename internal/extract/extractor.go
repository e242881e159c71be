// Package extract converts spreadsheet-shaped tables into chronologically ordered series.
package extract

import (
	"math"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/yourusername/arr-forecast/internal/models"
	"github.com/yourusername/arr-forecast/internal/period"
)

// Column synonyms tried after the configured hint, in priority order
var (
	TimeSynonyms  = []string{"quarter", "period", "date", "fiscal_quarter", "month", "year"}
	ValueSynonyms = []string{"arr_usd", "arr", "value", "revenue", "amount"}
)

var valueStripper = strings.NewReplacer(
	"$", "",
	"€", "",
	"£", "",
	"¥", "",
	"USD", "",
	"usd", "",
	" ", "",
	"\u00a0", "",
)

// FindColumn returns the index of the first header containing the hint or, failing that,
// one of the synonyms. Matching is case-insensitive substring containment.
func FindColumn(header []string, role, hint string, synonyms []string) (int, error) {
	candidates := make([]string, 0, len(synonyms)+1)
	for _, c := range append([]string{hint}, synonyms...) {
		c = strings.ToLower(strings.TrimSpace(c))
		if c != "" {
			candidates = append(candidates, c)
		}
	}

	normalized := make([]string, len(header))
	for i, h := range header {
		normalized[i] = strings.ToLower(strings.TrimSpace(h))
	}

	for _, candidate := range candidates {
		for i, h := range normalized {
			if strings.Contains(h, candidate) {
				return i, nil
			}
		}
	}

	return -1, &models.ColumnNotFoundError{
		Role:       role,
		Candidates: candidates,
		Header:     append([]string(nil), header...),
	}
}

// ParseValue converts a raw cell into a non-negative number, ignoring thousands
// separators and currency symbols. Commas are only accepted as thousands separators
// in front of three-digit groups; decimal-comma cells such as "1.000,50" are rejected.
func ParseValue(cell string) (float64, bool) {
	cleaned := valueStripper.Replace(strings.TrimSpace(cell))
	if cleaned == "" || !validGrouping(cleaned) {
		return 0, false
	}
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, false
	}
	v := d.InexactFloat64()
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, false
	}
	return v, true
}

// validGrouping reports whether every comma in s separates three-digit groups of the
// integer part
func validGrouping(s string) bool {
	if !strings.Contains(s, ",") {
		return true
	}
	integer := s
	if dot := strings.LastIndex(s, "."); dot >= 0 {
		if strings.Contains(s[dot:], ",") {
			return false
		}
		integer = s[:dot]
	}
	groups := strings.Split(integer, ",")
	if len(groups[0]) == 0 {
		return false
	}
	for _, g := range groups[1:] {
		if len(g) != 3 {
			return false
		}
	}
	return true
}

// Extract locates the time and value columns and returns the usable rows as a
// chronologically sorted series
func Extract(table models.Table, cfg models.ForecastConfig) ([]models.TimePoint, error) {
	timeIdx, err := FindColumn(table.Header, "time", cfg.TimeColumn, TimeSynonyms)
	if err != nil {
		return nil, err
	}
	valueIdx, err := FindColumn(table.Header, "value", cfg.TargetColumn, ValueSynonyms)
	if err != nil {
		return nil, err
	}

	series := make([]models.TimePoint, 0, len(table.Rows))
	for row := range table.Rows {
		label := strings.TrimSpace(table.Cell(row, timeIdx))
		raw := strings.TrimSpace(table.Cell(row, valueIdx))
		if label == "" || raw == "" {
			continue
		}
		value, ok := ParseValue(raw)
		if !ok {
			continue
		}

		point := models.TimePoint{Period: label, Value: value}
		if date, ok := period.Resolve(label); ok {
			d := date
			point.Date = &d
		}
		series = append(series, point)
	}

	assignQuarterCycles(series)
	SortChronologically(series)
	return series, nil
}

// assignQuarterCycles dates year-less quarter labels that repeat ("Q1".."Q4","Q1"..) in row
// order, starting a new year whenever the quarter does not advance. Series without repeats
// keep the reference year.
func assignQuarterCycles(series []models.TimePoint) {
	seen := make(map[int]bool, 4)
	repeated := false
	for _, p := range series {
		if q, ok := period.YearlessQuarter(p.Period); ok {
			if seen[q] {
				repeated = true
				break
			}
			seen[q] = true
		}
	}
	if !repeated {
		return
	}

	year, prev := period.ReferenceYear, 0
	for i := range series {
		q, ok := period.YearlessQuarter(series[i].Period)
		if !ok {
			continue
		}
		if prev != 0 && q <= prev {
			year++
		}
		prev = q
		d := period.QuarterStart(year, q)
		series[i].Date = &d
	}
}

// SortChronologically orders a series by resolved date when every point has one,
// otherwise by period label. The sort is stable.
func SortChronologically(series []models.TimePoint) {
	allDated := true
	for _, p := range series {
		if !p.HasDate() {
			allDated = false
			break
		}
	}

	sort.SliceStable(series, func(i, j int) bool {
		a, b := series[i], series[j]
		if allDated && !a.Date.Equal(*b.Date) {
			return a.Date.Before(*b.Date)
		}
		return period.Less(a.Period, b.Period)
	})
}
