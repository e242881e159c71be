package models

import "time"

// TimePoint represents one historical or forecast observation
type TimePoint struct {
	Period string     `json:"period"`
	Value  float64    `json:"value"`
	Date   *time.Time `json:"date,omitempty"`
}

// HasDate reports whether the period label resolved to a calendar date
func (p TimePoint) HasDate() bool {
	return p.Date != nil
}

// Values returns the numeric values of a series in index order
func Values(series []TimePoint) []float64 {
	values := make([]float64, len(series))
	for i, p := range series {
		values[i] = p.Value
	}
	return values
}

// Table is a spreadsheet-shaped dataset: a header row followed by data rows
type Table struct {
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// Cell returns the raw cell at the given position, or "" when the row is short
func (t Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][col]
}
