package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
)

type scenario struct {
	Name        string
	Description string
}

type model struct {
	baseURL     string
	customers   []int
	scenarios   []scenario
	selectedCus int
	selectedScn int
	lastOrder   string
	status      string
	detail      string
	busy        bool
}

func initialModel(baseURL string) model {
	return model{
		baseURL:   baseURL,
		customers: []int{1, 2, 3, 4, 5},
		scenarios: []scenario{
			{"place", "Place an order"},
			{"advance", "Advance the last order"},
			{"cancel", "Cancel the last order"},
			{"revenue", "Revenue summary"},
			{"inventory", "Inventory value and low stock"},
			{"bench", "Run benchmark"},
		},
		status: "Ready",
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "up":
			if m.selectedCus > 0 {
				m.selectedCus--
			}
		case "down":
			if m.selectedCus < len(m.customers)-1 {
				m.selectedCus++
			}
		case "left":
			if m.selectedScn > 0 {
				m.selectedScn--
			}
		case "right":
			if m.selectedScn < len(m.scenarios)-1 {
				m.selectedScn++
			}
		case "enter":
			if m.busy {
				return m, nil
			}
			m.busy = true
			m.status = "Running..."
			return m, runScenarioCmd(m.baseURL, m.customers[m.selectedCus], m.scenarios[m.selectedScn].Name, m.lastOrder)
		}
	case scenarioResult:
		m.busy = false
		m.status = msg.status
		m.detail = msg.detail
		if msg.orderID != "" {
			m.lastOrder = msg.orderID
		}
	}
	return m, nil
}

func (m model) View() string {
	b := &strings.Builder{}
	fmt.Fprintf(b, "retail-mock-api CLI (%s)\n", m.baseURL)
	fmt.Fprintln(b, "")
	fmt.Fprintln(b, "Customers:")
	for i, id := range m.customers {
		marker := " "
		if i == m.selectedCus {
			marker = ">"
		}
		fmt.Fprintf(b, " %s %d\n", marker, id)
	}
	fmt.Fprintln(b, "")
	fmt.Fprintln(b, "Scenarios (use left/right):")
	for i, scn := range m.scenarios {
		marker := " "
		if i == m.selectedScn {
			marker = "*"
		}
		fmt.Fprintf(b, " %s %s - %s\n", marker, scn.Name, scn.Description)
	}
	fmt.Fprintln(b, "")
	if m.lastOrder != "" {
		fmt.Fprintf(b, "Last order: %s\n", m.lastOrder)
	}
	fmt.Fprintf(b, "Status: %s\n", m.status)
	if m.detail != "" {
		fmt.Fprintf(b, "%s\n", m.detail)
	}
	fmt.Fprintln(b, "\nControls: up/down select customer, left/right select scenario, enter to run, q to quit")
	return b.String()
}

type scenarioResult struct {
	status  string
	detail  string
	orderID string
}

var sampleItems = []map[string]any{
	{"productId": "P001", "qty": 1},
	{"productId": "P006", "qty": 2},
}

func runScenarioCmd(baseURL string, customerID int, scn, lastOrder string) tea.Cmd {
	return func() tea.Msg {
		switch scn {
		case "bench":
			return scenarioResult{status: "Benchmark finished", detail: runBenchmark(baseURL, customerID)}
		case "advance", "cancel":
			if lastOrder == "" {
				return scenarioResult{status: "Place an order first"}
			}
			method, path := http.MethodPatch, "/api/orders/"+lastOrder+"/advance"
			if scn == "cancel" {
				method, path = http.MethodPost, "/api/orders/"+lastOrder+"/cancel"
			}
			body, err := call(baseURL, method, path, nil, "")
			if err != nil {
				return scenarioResult{status: fmt.Sprintf("%s failed: %v", scn, err)}
			}
			return scenarioResult{status: fmt.Sprintf("%s OK", scn), detail: body}
		case "revenue":
			body, err := call(baseURL, http.MethodGet, "/api/orders/revenue", nil, "")
			if err != nil {
				return scenarioResult{status: fmt.Sprintf("Revenue failed: %v", err)}
			}
			return scenarioResult{status: "Revenue", detail: body}
		case "inventory":
			value, err := call(baseURL, http.MethodGet, "/api/products/inventory-value", nil, "")
			if err != nil {
				return scenarioResult{status: fmt.Sprintf("Inventory failed: %v", err)}
			}
			low, err := call(baseURL, http.MethodGet, "/api/products/low-stock", nil, "")
			if err != nil {
				return scenarioResult{status: fmt.Sprintf("Low stock failed: %v", err)}
			}
			return scenarioResult{status: "Inventory " + value, detail: "Low stock: " + low}
		default:
			body, err := placeOrder(baseURL, customerID, uuid.NewString())
			if err != nil {
				return scenarioResult{status: fmt.Sprintf("Place failed: %v", err)}
			}
			var placed struct {
				ID string `json:"id"`
			}
			_ = json.Unmarshal([]byte(body), &placed)
			return scenarioResult{status: "Placed " + placed.ID, detail: body, orderID: placed.ID}
		}
	}
}

func placeOrder(baseURL string, customerID int, idemKey string) (string, error) {
	return call(baseURL, http.MethodPost, "/api/orders", map[string]any{
		"customerId": customerID,
		"items":      sampleItems,
	}, idemKey)
}

func call(baseURL, method, path string, payload any, idemKey string) (string, error) {
	var rd io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return "", err
		}
		rd = bytes.NewReader(data)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(baseURL, "/")+path, rd)
	if err != nil {
		return "", err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if idemKey != "" {
		req.Header.Set("Idempotency-Key", idemKey)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return strings.TrimSpace(string(body)), nil
}

func runBenchmark(baseURL string, customerID int) string {
	duration := 5 * time.Second
	vus := 5
	var mu sync.Mutex
	var total time.Duration
	var count int
	var errors int
	ctx, cancel := context.WithTimeout(context.Background(), duration)
	defer cancel()

	var wg sync.WaitGroup
	for i := 0; i < vus; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				default:
					start := time.Now()
					_, err := placeOrder(baseURL, customerID, uuid.NewString())
					mu.Lock()
					if err != nil {
						errors++
					} else {
						count++
						total += time.Since(start)
					}
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()

	avg := time.Duration(0)
	if count > 0 {
		avg = total / time.Duration(count)
	}
	throughput := float64(count) / duration.Seconds()
	return fmt.Sprintf("count=%d errors=%d avg=%s throughput=%.2f orders/s", count, errors, avg, throughput)
}

func main() {
	runCmd := flag.String("run", "", "run scenario: place|advance|cancel|revenue|inventory|bench")
	customerID := flag.Int("customer", 1, "customer id for place and bench")
	order := flag.String("order", "", "order id for advance and cancel")
	baseURL := flag.String("url", getenv("RETAIL_BASE_URL", "http://localhost:3000"), "retail API base URL")
	flag.Parse()

	if *runCmd != "" {
		res := runScenarioCmd(*baseURL, *customerID, *runCmd, *order)().(scenarioResult)
		fmt.Println(res.status)
		if res.detail != "" {
			fmt.Println(res.detail)
		}
		return
	}

	p := tea.NewProgram(initialModel(*baseURL))
	if _, err := p.Run(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func getenv(k, def string) string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	return v
}
