package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "retail"

type ServerMetrics struct {
	Requests  *prometheus.CounterVec
	LatencyMS *prometheus.HistogramVec
}

// NewServerMetrics registers on reg, or on the default registry when reg is nil.
func NewServerMetrics(service string, reg prometheus.Registerer) *ServerMetrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: service,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"handler", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: service,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
	}, []string{"handler"})

	registerer(reg).MustRegister(requests, latency)
	return &ServerMetrics{Requests: requests, LatencyMS: latency}
}

// Observe records one finished request. handler is the route pattern, not the
// raw path, to keep label cardinality bounded.
func (m *ServerMetrics) Observe(handler string, status int, elapsed time.Duration) {
	m.Requests.WithLabelValues(handler, strconv.Itoa(status)).Inc()
	m.LatencyMS.WithLabelValues(handler).Observe(float64(elapsed.Microseconds()) / 1000)
}

// DomainMetrics tracks store mutations and derived figures.
type DomainMetrics struct {
	Operations     *prometheus.CounterVec
	Events         *prometheus.CounterVec
	InventoryValue prometheus.Gauge
	Orders         *prometheus.GaugeVec
}

func NewDomainMetrics(reg prometheus.Registerer) *DomainMetrics {
	ops := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "operations_total",
		Help:      "Domain operations by name and outcome.",
	}, []string{"operation", "outcome"})
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_total",
		Help:      "Domain events by type and delivery result.",
	}, []string{"type", "result"})
	inventory := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "inventory_value",
		Help:      "Sum of price times stock over active products.",
	})
	orders := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "orders",
		Help:      "Orders by current status.",
	}, []string{"status"})

	registerer(reg).MustRegister(ops, events, inventory, orders)
	return &DomainMetrics{Operations: ops, Events: events, InventoryValue: inventory, Orders: orders}
}

// ConsumerMetrics is the event consumer's view: it sees events, not stores.
type ConsumerMetrics struct {
	Events *prometheus.CounterVec
}

func NewConsumerMetrics(reg prometheus.Registerer) *ConsumerMetrics {
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "consumed_events_total",
		Help:      "Consumed domain events by type and outcome.",
	}, []string{"type", "outcome"})

	registerer(reg).MustRegister(events)
	return &ConsumerMetrics{Events: events}
}

func (m *DomainMetrics) Op(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "rejected"
	}
	m.Operations.WithLabelValues(operation, outcome).Inc()
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func registerer(reg prometheus.Registerer) prometheus.Registerer {
	if reg == nil {
		return prometheus.DefaultRegisterer
	}
	return reg
}
