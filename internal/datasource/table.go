package datasource

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/yourusername/arr-forecast/internal/models"
)

// Table formats understood by the sources
const (
	FormatCSV        = "csv"
	FormatSheetsJSON = "sheets_json"
)

// ParseCSV reads a CSV document whose first record is the header row.
// Rows may be ragged; short rows are kept and read as empty cells.
func ParseCSV(r io.Reader) (models.Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return models.Table{}, ErrEmptyTable
	}
	if err != nil {
		return models.Table{}, fmt.Errorf("failed to read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	table := models.Table{Header: header}
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return models.Table{}, fmt.Errorf("failed to read row: %w", err)
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// sheetsValueRange is the Google Sheets API v4 spreadsheets.values response
type sheetsValueRange struct {
	Range          string          `json:"range"`
	MajorDimension string          `json:"majorDimension"`
	Values         [][]interface{} `json:"values"`
}

// ParseSheetsJSON decodes a Sheets API values response; the first row is the header
func ParseSheetsJSON(r io.Reader) (models.Table, error) {
	var payload sheetsValueRange
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return models.Table{}, fmt.Errorf("failed to decode sheets response: %w", err)
	}
	if len(payload.Values) == 0 {
		return models.Table{}, ErrEmptyTable
	}

	table := models.Table{Header: cellsToStrings(payload.Values[0])}
	for _, row := range payload.Values[1:] {
		table.Rows = append(table.Rows, cellsToStrings(row))
	}
	return table, nil
}

func cellsToStrings(cells []interface{}) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		switch v := c.(type) {
		case nil:
			out[i] = ""
		case string:
			out[i] = v
		default:
			out[i] = fmt.Sprint(v)
		}
	}
	return out
}

func parseTable(format string, r io.Reader) (models.Table, error) {
	switch format {
	case "", FormatCSV:
		return ParseCSV(r)
	case FormatSheetsJSON:
		return ParseSheetsJSON(r)
	default:
		return models.Table{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}
