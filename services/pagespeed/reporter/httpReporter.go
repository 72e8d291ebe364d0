package reporter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/iulianpascalau/pagespeed-monitoring/services/pagespeed/common"
	logger "github.com/multiversx/mx-chain-logger-go"
)

var log = logger.GetOrCreate("reporter")

type httpReporter struct {
	endpoint string
	apiKey   string
	source   string
	client   *http.Client
}

// NewHTTPReporter creates a new reporter that pushes every run report to the configured endpoint
func NewHTTPReporter(endpoint, apiKey, source string, timeout time.Duration) (*httpReporter, error) {
	if len(endpoint) == 0 {
		return nil, errors.New("empty report endpoint")
	}

	return &httpReporter{
		endpoint: endpoint,
		apiKey:   apiKey,
		source:   source,
		client: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// Report sends the run report as JSON. Failures are not retried.
func (r *httpReporter) Report(ctx context.Context, report *common.RunReport) error {
	if report == nil {
		return errors.New("nil run report")
	}

	payload := common.ReportPayload{
		Source: r.source,
		Report: report,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal report payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create report request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", r.apiKey)

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("network error sending report: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("server rejected report with status code: %d", resp.StatusCode)
	}

	log.Debug("successfully sent run report", "endpoint", r.endpoint, "run", report.ID,
		"averaged", len(report.Averaged))

	return nil
}

// IsInterfaceNil returns true if the value under the interface is nil
func (r *httpReporter) IsInterfaceNil() bool {
	return r == nil
}
