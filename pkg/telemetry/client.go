/*
 * Copyright (C) 2025-2026, OpenKCloud. All rights reserved.
 * See LICENSE for license information.
 */

package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"k8s.io/klog/v2"
)

// ErrTelemetryUnavailable wraps transport errors and non-2xx responses
// from the metrics backend. A cycle hitting it is retried on the next
// tick; the client itself never retries.
var ErrTelemetryUnavailable = errors.New("telemetry unavailable")

// RawSample is one series returned by the metrics backend. Only the
// label set matters to the sync loop.
type RawSample struct {
	Labels map[string]string
}

type queryResponse struct {
	Status string `json:"status"`
	Data   struct {
		ResultType string        `json:"resultType"`
		Result     []queryResult `json:"result"`
	} `json:"data"`
}

type queryResult struct {
	Metric map[string]string `json:"metric"`
	Value  []interface{}     `json:"value"`
}

// Client queries one instant-vector metric from a Prometheus endpoint.
type Client struct {
	endpoint string
	metric   string
	httpCli  *http.Client
}

func NewClient(endpoint, metric string) *Client {
	return &Client{
		endpoint: endpoint,
		metric:   metric,
		httpCli:  &http.Client{Timeout: 30 * time.Second},
	}
}

// QueryMigModeMetric fetches the configured GPU occupancy metric and
// returns one RawSample per series.
func (c *Client) QueryMigModeMetric(ctx context.Context) ([]RawSample, error) {
	queryUrl, err := url.Parse(fmt.Sprintf("%s/api/v1/query", c.endpoint))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid endpoint %s: %v", ErrTelemetryUnavailable, c.endpoint, err)
	}
	query := queryUrl.Query()
	query.Set("query", c.metric)
	queryUrl.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, queryUrl.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpCli.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTelemetryUnavailable, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			klog.Errorf("failed to close telemetry response body: %v", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status code %d", ErrTelemetryUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response body: %v", ErrTelemetryUnavailable, err)
	}

	var decoded queryResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal response: %v", ErrTelemetryUnavailable, err)
	}

	samples := make([]RawSample, 0, len(decoded.Data.Result))
	for _, result := range decoded.Data.Result {
		samples = append(samples, RawSample{Labels: result.Metric})
	}
	return samples, nil
}
