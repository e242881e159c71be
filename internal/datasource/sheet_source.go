package datasource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/yourusername/arr-forecast/internal/models"
)

// HTTPSheetSource fetches a table from a spreadsheet CSV export or the Sheets values API
type HTTPSheetSource struct {
	httpClient *RateLimitedHTTPClient
	name       string
	url        string
	format     string
	apiKey     string
}

// NewHTTPSheetSource creates a new remote spreadsheet source
func NewHTTPSheetSource(httpClient *RateLimitedHTTPClient, name, rawURL, format, apiKey string) *HTTPSheetSource {
	if format == "" {
		format = FormatCSV
	}
	return &HTTPSheetSource{
		httpClient: httpClient,
		name:       name,
		url:        rawURL,
		format:     format,
		apiKey:     apiKey,
	}
}

// Name returns the data source name
func (s *HTTPSheetSource) Name() string {
	return s.name
}

// FetchTable downloads and parses the spreadsheet
func (s *HTTPSheetSource) FetchTable(ctx context.Context) (models.Table, error) {
	target, err := s.requestURL()
	if err != nil {
		return models.Table{}, NewDataSourceError(s.name, ErrCodeInvalidData, "invalid source url", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return models.Table{}, NewDataSourceError(s.name, ErrCodeNetworkError, "failed to create request", err)
	}
	if s.format == FormatSheetsJSON {
		req.Header.Set("Accept", "application/json")
	} else {
		req.Header.Set("Accept", "text/csv")
	}

	resp, err := s.httpClient.Do(ctx, req)
	if err != nil {
		return models.Table{}, NewDataSourceError(s.name, ErrCodeNetworkError, "failed to fetch table", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return models.Table{}, NewDataSourceError(s.name, ErrCodeAuthenticationFailed, "access to spreadsheet denied", nil)
	case resp.StatusCode == http.StatusNotFound:
		return models.Table{}, NewDataSourceError(s.name, ErrCodeNotFound, "spreadsheet not found", nil)
	case resp.StatusCode == http.StatusTooManyRequests:
		return models.Table{}, NewDataSourceError(s.name, ErrCodeRateLimitExceeded, "rate limit exceeded", nil)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return models.Table{}, NewDataSourceError(s.name, ErrCodeServerError, fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)), nil)
	}

	table, err := parseTable(s.format, resp.Body)
	if err != nil {
		return models.Table{}, NewDataSourceError(s.name, ErrCodeInvalidData, "failed to parse response", err)
	}
	return table, nil
}

func (s *HTTPSheetSource) requestURL() (string, error) {
	u, err := url.Parse(s.url)
	if err != nil {
		return "", err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if s.apiKey != "" {
		q := u.Query()
		q.Set("key", s.apiKey)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}
