package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/nazeru/retail-mock-api/internal/config"
	"github.com/nazeru/retail-mock-api/pkg/logging"
	"github.com/nazeru/retail-mock-api/pkg/metrics"
)

const (
	RequestIDHeader = "X-Request-ID"
	unmatched       = "unmatched"
	maxLimiters     = 10000
)

type Options struct {
	Log            *logging.Logger
	Metrics        *metrics.ServerMetrics
	MetricsHandler http.Handler
	RequestTimeout time.Duration
	RateLimit      *RateLimiter
}

// NewHandler builds the router for framework ("chi" or "gin") over the same
// route table.
func NewHandler(framework string, a *API, o Options) (http.Handler, error) {
	if o.Log == nil {
		o.Log = logging.Nop()
	}
	switch framework {
	case config.FrameworkChi:
		return newChi(a, o), nil
	case config.FrameworkGin:
		return newGin(a, o), nil
	}
	return nil, fmt.Errorf("unknown http framework %q", framework)
}

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(rps),
		burst:    burst,
	}
}

func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	l, ok := rl.limiters[key]
	if !ok {
		if len(rl.limiters) >= maxLimiters {
			rl.limiters = make(map[string]*rate.Limiter)
		}
		l = rate.NewLimiter(rl.rate, rl.burst)
		rl.limiters[key] = l
	}
	return l.Allow()
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// requestID reuses the caller's id when it sent one.
func requestID(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(RequestIDHeader)); id != "" {
		return id
	}
	return uuid.NewString()
}

// observe is the access log and metrics hook shared by both routers.
func (o Options) observe(reqID, method, pattern string, status int, start time.Time) {
	if pattern == "" {
		pattern = unmatched
	}
	if status == 0 {
		status = http.StatusOK
	}
	elapsed := time.Since(start)
	if o.Metrics != nil {
		o.Metrics.Observe(pattern, status, elapsed)
	}
	o.Log.Log(logging.Fields{
		RequestID:  reqID,
		Step:       method + " " + pattern,
		Status:     strconv.Itoa(status),
		DurationMS: elapsed.Milliseconds(),
		Message:    "http request",
	})
}

func toRequest(r *http.Request, param func(string) string) request {
	return request{
		ctx:    r.Context(),
		param:  param,
		query:  r.URL.Query(),
		header: r.Header,
		body:   r.Body,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func write(w http.ResponseWriter, resp response) {
	switch {
	case resp.html != "":
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(resp.status)
		_, _ = io.WriteString(w, resp.html)
	case resp.body == nil:
		w.WriteHeader(resp.status)
	default:
		writeJSON(w, resp.status, resp.body)
	}
}

var (
	notFound = errorBody{Error: "Not found"}
	tooMany  = errorBody{Error: "Too many requests"}
	timedOut = errorBody{Error: "Request timed out"}
)
