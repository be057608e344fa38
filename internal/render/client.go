// Package render is the request/response contract with the external
// rendering service. The client is a thin wrapper: no retries, no
// progress streaming; completion is signaled only by the HTTP response.
package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const maxErrorBody = 4096

// ServiceError is a non-2xx answer from the render service. Body holds
// the service's response text verbatim; the export pipeline surfaces it
// in the job-fatal error.
type ServiceError struct {
	StatusCode int
	Body       string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("render service: HTTP %d: %s", e.StatusCode, e.Body)
}

// Renderer issues one render call for one segment.
type Renderer interface {
	Render(ctx context.Context, req Request) (*Response, error)
}

// HTTPClient talks to the render service over HTTP POST + JSON.
type HTTPClient struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewHTTPClient builds a client for the given render endpoint URL.
// A zero timeout means none; renders routinely run for minutes and any
// failure is treated as job-fatal by the caller rather than retried.
func NewHTTPClient(url string, timeout time.Duration, logger *slog.Logger) *HTTPClient {
	return &HTTPClient{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

func (c *HTTPClient) Render(ctx context.Context, renderReq Request) (*Response, error) {
	body, err := json.Marshal(renderReq)
	if err != nil {
		return nil, fmt.Errorf("marshal render request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Info("render request",
		"url", c.url,
		"out_file", renderReq.Settings.OutFile,
		"segment_start", renderReq.Variables.SegmentStart,
		"segment_end", renderReq.Variables.SegmentEnd,
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("render request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &ServiceError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var result Response
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode render response: %w", err)
	}

	c.logger.Info("render completed", "output_file", result.OutputFile)
	return &result, nil
}
