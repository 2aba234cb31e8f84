package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type benchResult struct {
	Timestamp          string         `json:"timestamp"`
	BaseURL            string         `json:"base_url"`
	Scenario           string         `json:"scenario"`
	Transactions       int            `json:"transactions"`
	Concurrency        int            `json:"concurrency"`
	OperationsPerTx    int            `json:"operations_per_transaction"`
	TotalOperations    int            `json:"total_operations"`
	SuccessfulRequests int            `json:"successful_requests"`
	ErrorRequests      int            `json:"error_requests"`
	DurationSeconds    float64        `json:"duration_seconds"`
	AvgLatencyMs       float64        `json:"avg_latency_ms"`
	MinLatencyMs       float64        `json:"min_latency_ms"`
	MaxLatencyMs       float64        `json:"max_latency_ms"`
	P50LatencyMs       float64        `json:"p50_latency_ms"`
	P90LatencyMs       float64        `json:"p90_latency_ms"`
	P95LatencyMs       float64        `json:"p95_latency_ms"`
	P99LatencyMs       float64        `json:"p99_latency_ms"`
	ThroughputRPS      float64        `json:"throughput_rps"`
	StatusCounts       map[string]int `json:"status_counts"`
	ErrorClasses       map[string]int `json:"error_classes"`
	FirstError         string         `json:"first_error"`
	FinalizedRequests  int            `json:"finalized_requests"`
	FinalTimeouts      int            `json:"final_timeouts"`
	FinalAvgLatencyMs  float64        `json:"final_avg_latency_ms"`
	FinalP50LatencyMs  float64        `json:"final_p50_latency_ms"`
	FinalP90LatencyMs  float64        `json:"final_p90_latency_ms"`
	FinalP95LatencyMs  float64        `json:"final_p95_latency_ms"`
	FinalP99LatencyMs  float64        `json:"final_p99_latency_ms"`
}

// operation is one HTTP call in a transaction. path receives the order id
// captured from the most recent place call.
type operation struct {
	name    string
	method  string
	path    func(orderID string) string
	payload func(customerID int) any
}

type metrics struct {
	mu           sync.Mutex
	success      int
	errors       int
	total        time.Duration
	minLatency   time.Duration
	maxLatency   time.Duration
	latenciesMs  []float64
	finalMs      []float64
	finalTimeout int
	statusCounts map[string]int
	errorClasses map[string]int
	firstError   string
}

func newMetrics() *metrics {
	return &metrics{
		statusCounts: make(map[string]int),
		errorClasses: make(map[string]int),
	}
}

func (m *metrics) recordTransaction(latency time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.errors++
		return
	}
	m.success++
	m.total += latency
	if m.minLatency == 0 || latency < m.minLatency {
		m.minLatency = latency
	}
	if latency > m.maxLatency {
		m.maxLatency = latency
	}
	m.latenciesMs = append(m.latenciesMs, float64(latency.Milliseconds()))
}

func (m *metrics) recordFinal(latency time.Duration, reached bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !reached {
		m.finalTimeout++
		return
	}
	m.finalMs = append(m.finalMs, float64(latency.Milliseconds()))
}

func (m *metrics) recordStatus(status int, err error, class string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statusCounts[strconv.Itoa(status)]++
	if class != "" {
		m.errorClasses[class]++
	}
	if err != nil && m.firstError == "" {
		m.firstError = err.Error()
	}
}

type runConfig struct {
	baseURL       string
	timeout       time.Duration
	awaitFinal    bool
	finalTimeout  time.Duration
	finalInterval time.Duration
	finals        map[string]struct{}
	customers     []int
}

func main() {
	baseURL := flag.String("base-url", getenv("RETAIL_BASE_URL", "http://localhost:3000"), "retail API base URL")
	scenario := flag.String("scenario", "place", "scenario to run: place|lifecycle|read|all")
	total := flag.Int("total", 1000, "total number of transactions")
	concurrency := flag.Int("concurrency", 10, "number of concurrent workers")
	timeout := flag.Duration("timeout", 10*time.Second, "per-request timeout")
	customers := flag.String("customers", "1,2,3,4,5", "comma-separated customer ids to place orders for")
	awaitFinal := flag.Bool("await-final", false, "poll each placed order until it reaches a final status")
	finalTimeout := flag.Duration("final-timeout", 30*time.Second, "timeout for final status polling")
	finalInterval := flag.Duration("final-interval", 500*time.Millisecond, "poll interval for final status")
	finalStatuses := flag.String("final-statuses", "delivered,cancelled", "comma-separated list of final order statuses")
	output := flag.String("output", "", "optional output path for JSON result")
	flag.Parse()

	if *total <= 0 {
		fmt.Fprintln(os.Stderr, "total must be > 0")
		os.Exit(1)
	}
	if *concurrency <= 0 {
		fmt.Fprintln(os.Stderr, "concurrency must be > 0")
		os.Exit(1)
	}
	ops, err := buildOperations(*scenario)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
	ids, err := parseCustomers(*customers)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	cfg := runConfig{
		baseURL:       strings.TrimRight(*baseURL, "/"),
		timeout:       *timeout,
		awaitFinal:    *awaitFinal,
		finalTimeout:  *finalTimeout,
		finalInterval: *finalInterval,
		finals:        parseFinalStatuses(*finalStatuses),
		customers:     ids,
	}
	m, duration := run(cfg, ops, *total, *concurrency, &http.Client{})
	result := summarize(m, duration)
	result.BaseURL = cfg.baseURL
	result.Scenario = *scenario
	result.Transactions = *total
	result.Concurrency = *concurrency
	result.OperationsPerTx = len(ops)
	result.TotalOperations = *total * len(ops)

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		fmt.Fprintf(os.Stderr, "failed to encode result: %v\n", err)
		os.Exit(1)
	}

	if *output != "" {
		if err := writeJSON(*output, result); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write output: %v\n", err)
			os.Exit(1)
		}
	}
}

func run(cfg runConfig, ops []operation, total, concurrency int, client *http.Client) (*metrics, time.Duration) {
	tasks := make(chan struct{})
	var wg sync.WaitGroup
	m := newMetrics()

	start := time.Now()
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range tasks {
				customerID := cfg.customers[rand.IntN(len(cfg.customers))]
				latency, err := runTransaction(cfg, ops, customerID, client, m)
				m.recordTransaction(latency, err)
			}
		}()
	}
	for i := 0; i < total; i++ {
		tasks <- struct{}{}
	}
	close(tasks)
	wg.Wait()
	return m, time.Since(start)
}

func summarize(m *metrics, duration time.Duration) benchResult {
	avgLatency := 0.0
	minLatency := 0.0
	maxLatency := 0.0
	if m.success > 0 {
		avgLatency = float64(m.total.Milliseconds()) / float64(m.success)
		minLatency = float64(m.minLatency.Milliseconds())
		maxLatency = float64(m.maxLatency.Milliseconds())
	}
	p50, p90, p95, p99 := calcPercentiles(m.latenciesMs)
	finalAvg, finalP50, finalP90, finalP95, finalP99 := calcFinalPercentiles(m.finalMs)

	return benchResult{
		Timestamp:          time.Now().UTC().Format(time.RFC3339),
		SuccessfulRequests: m.success,
		ErrorRequests:      m.errors,
		DurationSeconds:    duration.Seconds(),
		AvgLatencyMs:       avgLatency,
		MinLatencyMs:       minLatency,
		MaxLatencyMs:       maxLatency,
		P50LatencyMs:       p50,
		P90LatencyMs:       p90,
		P95LatencyMs:       p95,
		P99LatencyMs:       p99,
		ThroughputRPS:      float64(m.success) / duration.Seconds(),
		StatusCounts:       m.statusCounts,
		ErrorClasses:       m.errorClasses,
		FirstError:         m.firstError,
		FinalizedRequests:  len(m.finalMs),
		FinalTimeouts:      m.finalTimeout,
		FinalAvgLatencyMs:  finalAvg,
		FinalP50LatencyMs:  finalP50,
		FinalP90LatencyMs:  finalP90,
		FinalP95LatencyMs:  finalP95,
		FinalP99LatencyMs:  finalP99,
	}
}

var sampleItems = []map[string]any{
	{"productId": "P001", "qty": 1},
	{"productId": "P006", "qty": 2},
}

func fixed(p string) func(string) string { return func(string) string { return p } }

func buildOperations(scenario string) ([]operation, error) {
	place := operation{
		name:   "place",
		method: http.MethodPost,
		path:   fixed("/api/orders"),
		payload: func(customerID int) any {
			return map[string]any{"customerId": customerID, "items": sampleItems}
		},
	}
	advance := operation{
		name:   "advance",
		method: http.MethodPatch,
		path:   func(id string) string { return "/api/orders/" + id + "/advance" },
	}
	reads := []operation{
		{name: "revenue", method: http.MethodGet, path: fixed("/api/orders/revenue")},
		{name: "summaries", method: http.MethodGet, path: fixed("/api/orders?view=summary")},
		{name: "inventory", method: http.MethodGet, path: fixed("/api/products/inventory-value")},
	}

	switch scenario {
	case "place":
		return []operation{place}, nil
	case "lifecycle":
		return []operation{place, advance, advance, advance}, nil
	case "read":
		return reads, nil
	case "all":
		return append([]operation{place, advance, advance, advance}, reads...), nil
	}
	return nil, fmt.Errorf("unknown scenario: %s", scenario)
}

func runTransaction(cfg runConfig, ops []operation, customerID int, client *http.Client, m *metrics) (time.Duration, error) {
	start := time.Now()
	var orderID, orderStatus string
	for _, op := range ops {
		var payload any
		if op.payload != nil {
			payload = op.payload(customerID)
		}
		info, class, err := doRequest(client, cfg.timeout, op.method, cfg.baseURL+op.path(orderID), payload)
		m.recordStatus(info.StatusCode, err, class)
		if err != nil {
			return time.Since(start), fmt.Errorf("%s: %w", op.name, err)
		}
		if op.name == "place" {
			orderID = info.OrderID
		}
		if info.OrderStatus != "" {
			orderStatus = info.OrderStatus
		}
	}
	if cfg.awaitFinal && orderID != "" {
		finalLatency, reached := waitForFinalStatus(client, cfg.baseURL, orderID, orderStatus, cfg.finals, cfg.finalTimeout, cfg.finalInterval)
		m.recordFinal(finalLatency, reached)
	}
	return time.Since(start), nil
}

type responseInfo struct {
	StatusCode  int
	Body        string
	OrderID     string
	OrderStatus string
}

func doRequest(client *http.Client, timeout time.Duration, method, url string, payload any) (responseInfo, string, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return responseInfo{}, "encode", err
		}
		body = bytes.NewReader(data)
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return responseInfo{}, "transport", err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Idempotency-Key", uuid.NewString())
	}
	resp, err := client.Do(req)
	if err != nil {
		return responseInfo{StatusCode: 0}, "transport", err
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	bodyStr := strings.TrimSpace(string(raw))
	orderID, status := parseOrderBody(bodyStr)
	info := responseInfo{
		StatusCode:  resp.StatusCode,
		Body:        bodyStr,
		OrderID:     orderID,
		OrderStatus: status,
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return info, classifyError(resp.StatusCode, bodyStr), fmt.Errorf("status %d: %s", resp.StatusCode, bodyStr)
	}
	return info, "", nil
}

func writeJSON(path string, result benchResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func getenv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func classifyError(status int, body string) string {
	switch {
	case status == http.StatusTooManyRequests:
		return "rate_limited"
	case isBusinessRejection(status, body):
		return "business_rejected"
	case status >= 500:
		return "http_5xx"
	case status >= 400:
		return "http_4xx"
	default:
		return ""
	}
}

// isBusinessRejection spots the API refusing a state change, as opposed to a
// malformed request.
func isBusinessRejection(status int, body string) bool {
	if status != http.StatusBadRequest && status != http.StatusNotFound {
		return false
	}
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return false
	}
	return strings.Contains(payload.Error, "cannot be")
}

func parseOrderBody(body string) (string, string) {
	if body == "" || body[0] != '{' {
		return "", ""
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return "", ""
	}
	orderID, _ := payload["id"].(string)
	status, _ := payload["status"].(string)
	return orderID, status
}

func parseCustomers(input string) ([]int, error) {
	var ids []int
	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid customer id %q", part)
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("at least one customer id is required")
	}
	return ids, nil
}

func parseFinalStatuses(input string) map[string]struct{} {
	result := map[string]struct{}{}
	for _, part := range strings.Split(input, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		if name == "" {
			continue
		}
		result[name] = struct{}{}
	}
	return result
}

func waitForFinalStatus(client *http.Client, baseURL, orderID, initialStatus string, finals map[string]struct{}, timeout, interval time.Duration) (time.Duration, bool) {
	start := time.Now()
	initialStatus = strings.ToLower(strings.TrimSpace(initialStatus))
	if _, ok := finals[initialStatus]; ok {
		return time.Since(start), true
	}
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		status, err := fetchOrderStatus(client, baseURL, orderID)
		if err == nil {
			if _, ok := finals[strings.ToLower(status)]; ok {
				return time.Since(start), true
			}
		}
		time.Sleep(interval)
	}
	return time.Since(start), false
}

func fetchOrderStatus(client *http.Client, baseURL, orderID string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/orders/"+orderID, nil)
	if err != nil {
		return "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	_, status := parseOrderBody(strings.TrimSpace(string(body)))
	return status, nil
}

func calcPercentiles(values []float64) (float64, float64, float64, float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}
	sort.Float64s(values)
	return percentile(values, 0.50), percentile(values, 0.90), percentile(values, 0.95), percentile(values, 0.99)
}

func calcFinalPercentiles(values []float64) (float64, float64, float64, float64, float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0, 0
	}
	sort.Float64s(values)
	avg := 0.0
	for _, v := range values {
		avg += v
	}
	avg = avg / float64(len(values))
	return avg, percentile(values, 0.50), percentile(values, 0.90), percentile(values, 0.95), percentile(values, 0.99)
}

func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[len(sorted)-1]
	}
	rank := int(math.Ceil(p*float64(len(sorted)))) - 1
	if rank < 0 {
		rank = 0
	}
	if rank >= len(sorted) {
		rank = len(sorted) - 1
	}
	return sorted[rank]
}
