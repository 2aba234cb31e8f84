package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nazeru/retail-mock-api/internal/config"
	"github.com/nazeru/retail-mock-api/internal/httpapi"
	"github.com/nazeru/retail-mock-api/internal/retail"
)

func newAPI(t *testing.T) *httptest.Server {
	t.Helper()
	h, err := httpapi.NewHandler(config.FrameworkChi, httpapi.NewAPI(retail.New(retail.Options{}), nil), httpapi.Options{})
	require.NoError(t, err)
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func TestBuildOperations(t *testing.T) {
	for scenario, want := range map[string]int{"place": 1, "lifecycle": 4, "read": 3, "all": 7} {
		ops, err := buildOperations(scenario)
		require.NoError(t, err, scenario)
		assert.Len(t, ops, want, scenario)
	}
	_, err := buildOperations("twopc")
	assert.Error(t, err)
}

func TestRun_LifecycleDeliversEveryOrder(t *testing.T) {
	srv := newAPI(t)
	ops, err := buildOperations("lifecycle")
	require.NoError(t, err)
	cfg := runConfig{
		baseURL:       srv.URL,
		timeout:       5 * time.Second,
		awaitFinal:    true,
		finalTimeout:  time.Second,
		finalInterval: 10 * time.Millisecond,
		finals:        parseFinalStatuses("delivered"),
		customers:     []int{1, 3},
	}

	m, _ := run(cfg, ops, 20, 4, srv.Client())

	assert.Equal(t, 20, m.success)
	assert.Zero(t, m.errors)
	assert.Equal(t, 20, m.statusCounts["201"])
	assert.Equal(t, 60, m.statusCounts["200"])
	assert.Len(t, m.finalMs, 20)
	assert.Zero(t, m.finalTimeout)
}

func TestRunTransaction_RecordsRejections(t *testing.T) {
	srv := newAPI(t)
	cfg := runConfig{baseURL: srv.URL, timeout: 5 * time.Second}
	m := newMetrics()

	_, err := runTransaction(cfg, []operation{{name: "cancel", method: http.MethodPost, path: fixed("/api/orders/ORD-2024-001/cancel")}}, 1, srv.Client(), m)

	require.Error(t, err)
	assert.Equal(t, 1, m.statusCounts["400"])
	assert.Equal(t, 1, m.errorClasses["business_rejected"])
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		status int
		body   string
		want   string
	}{
		{429, `{"error":"Too many requests"}`, "rate_limited"},
		{400, `{"error":"Order not found or cannot be cancelled"}`, "business_rejected"},
		{404, `{"error":"Order not found or cannot be advanced"}`, "business_rejected"},
		{400, `{"error":"Missing required fields: customerId, items"}`, "http_4xx"},
		{500, `oops`, "http_5xx"},
		{200, ``, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, classifyError(tt.status, tt.body), "%d %s", tt.status, tt.body)
	}
}

func TestParseCustomers(t *testing.T) {
	ids, err := parseCustomers(" 1, 2,,5 ")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 5}, ids)

	_, err = parseCustomers("1,x")
	assert.Error(t, err)
	_, err = parseCustomers(" , ")
	assert.Error(t, err)
}

func TestParseOrderBody(t *testing.T) {
	id, status := parseOrderBody(`{"id":"ORD-2026-001","status":"pending"}`)
	assert.Equal(t, "ORD-2026-001", id)
	assert.Equal(t, "pending", status)

	id, status = parseOrderBody(`[{"id":"x"}]`)
	assert.Empty(t, id)
	assert.Empty(t, status)
}

func TestPercentile(t *testing.T) {
	values := []float64{5, 1, 4, 2, 3, 10, 9, 8, 7, 6}
	p50, p90, p95, p99 := calcPercentiles(values)
	assert.Equal(t, 5.0, p50)
	assert.Equal(t, 9.0, p90)
	assert.Equal(t, 10.0, p95)
	assert.Equal(t, 10.0, p99)
	assert.Zero(t, percentile(nil, 0.5))

	avg, _, _, _, _ := calcFinalPercentiles([]float64{1, 2, 3})
	assert.Equal(t, 2.0, avg)
}
