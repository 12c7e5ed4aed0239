/*
 * Copyright (C) 2025-2026, OpenKCloud. All rights reserved.
 * See LICENSE for license information.
 */

package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryMigModeMetric(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/query", r.URL.Path)
		assert.Equal(t, "DCGM_FI_DEV_MIG_MODE", r.URL.Query().Get("query"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "success",
			"data": {
				"resultType": "vector",
				"result": [
					{"metric": {"Hostname": "node1", "gpu": "0", "modelName": "NVIDIA A100"}, "value": [1700000000, "0"]},
					{"metric": {"Hostname": "node1", "gpu": "1", "modelName": "NVIDIA A100", "exported_pod": "dev-pod"}, "value": [1700000000, "0"]}
				]
			}
		}`))
	}))
	defer srv.Close()

	cli := NewClient(srv.URL, "DCGM_FI_DEV_MIG_MODE")
	samples, err := cli.QueryMigModeMetric(context.Background())
	require.NoError(t, err)
	require.Len(t, samples, 2)
	assert.Equal(t, "node1", samples[0].Labels["Hostname"])
	assert.Equal(t, "dev-pod", samples[1].Labels["exported_pod"])
}

func TestQueryMigModeMetric_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	cli := NewClient(srv.URL, "DCGM_FI_DEV_MIG_MODE")
	_, err := cli.QueryMigModeMetric(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTelemetryUnavailable)
}

func TestQueryMigModeMetric_Unreachable(t *testing.T) {
	cli := NewClient("http://127.0.0.1:1", "DCGM_FI_DEV_MIG_MODE")
	_, err := cli.QueryMigModeMetric(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTelemetryUnavailable)
}

func TestQueryMigModeMetric_BadBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	cli := NewClient(srv.URL, "DCGM_FI_DEV_MIG_MODE")
	_, err := cli.QueryMigModeMetric(context.Background())
	assert.ErrorIs(t, err, ErrTelemetryUnavailable)
}
