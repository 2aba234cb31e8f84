package idempotency

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	r := httptest.NewRequest("POST", "/api/orders", nil)
	assert.Empty(t, Key(r))

	r.Header.Set(Header, "  checkout-42 ")
	assert.Equal(t, "checkout-42", Key(r))
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()

	_, ok := reg.Lookup("k1")
	assert.False(t, ok)

	reg.Remember("k1", "ORD-2026-001")
	reg.Remember("k1", "ORD-2026-002")
	reg.Remember("", "ORD-2026-003")

	id, ok := reg.Lookup("k1")
	assert.True(t, ok)
	assert.Equal(t, "ORD-2026-001", id)
	_, ok = reg.Lookup("")
	assert.False(t, ok)
}
