package idempotency

import (
	"net/http"
	"strings"
	"sync"
)

const Header = "Idempotency-Key"

func Key(r *http.Request) string {
	return FromHeader(r.Header)
}

func FromHeader(h http.Header) string {
	return strings.TrimSpace(h.Get(Header))
}

// Registry maps idempotency keys to the id of the resource the first request
// created. Keys live for the life of the process.
type Registry struct {
	mu   sync.Mutex
	keys map[string]string
}

func NewRegistry() *Registry {
	return &Registry{keys: make(map[string]string)}
}

func (r *Registry) Lookup(key string) (string, bool) {
	if key == "" {
		return "", false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.keys[key]
	return id, ok
}

// Remember keeps the first id stored for key.
func (r *Registry) Remember(key, id string) {
	if key == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.keys[key]; !ok {
		r.keys[key] = id
	}
}
