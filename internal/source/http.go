// Package source provides implementations of the scraping collaborator
// consumed by the ingestion runner.  The heavy scraping machinery
// (browser automation against the reporting portal) runs out of
// process; this package only fetches its already-extracted weekly
// export.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// weeklyExport is the wire shape of one weekly export: the reporting
// window plus the raw rows with their source-specific column names.
// Rows stay untyped here; field-alias resolution belongs to ingestion.
type weeklyExport struct {
	PeriodStart string           `json:"period_start"`
	PeriodEnd   string           `json:"period_end"`
	Rows        []map[string]any `json:"rows"`
}

// HTTPSource fetches the weekly export from an HTTP endpoint.
type HTTPSource struct {
	url    string
	client *http.Client
}

// NewHTTPSource builds a source for the given export endpoint.
func NewHTTPSource(url string) *HTTPSource {
	return &HTTPSource{url: url, client: &http.Client{}}
}

// FetchWeekly downloads and decodes one weekly export.  The context
// deadline set by the runner bounds the whole fetch; any failure is a
// batch-level SourceUnavailable condition, safe to retry later because
// ingestion is idempotent per period.
func (s *HTTPSource) FetchWeekly(ctx context.Context) ([]map[string]any, time.Time, time.Time, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, time.Time{}, time.Time{}, fmt.Errorf("build request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, time.Time{}, time.Time{}, fmt.Errorf("fetch weekly export: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, time.Time{}, time.Time{}, fmt.Errorf("fetch weekly export: unexpected status %d", resp.StatusCode)
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber() // keep large revenue figures exact
	var export weeklyExport
	if err := dec.Decode(&export); err != nil {
		return nil, time.Time{}, time.Time{}, fmt.Errorf("decode weekly export: %w", err)
	}

	start, err := time.Parse("2006-01-02", export.PeriodStart)
	if err != nil {
		return nil, time.Time{}, time.Time{}, fmt.Errorf("parse period start %q: %w", export.PeriodStart, err)
	}
	end, err := time.Parse("2006-01-02", export.PeriodEnd)
	if err != nil {
		return nil, time.Time{}, time.Time{}, fmt.Errorf("parse period end %q: %w", export.PeriodEnd, err)
	}
	return export.Rows, start, end, nil
}
