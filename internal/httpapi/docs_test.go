package httpapi

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDocs_CoversEveryPublicRoute(t *testing.T) {
	d, err := LoadDocs()
	require.NoError(t, err)

	a := NewAPI(nil, d)
	for _, rt := range a.routes() {
		if rt.group == "" {
			continue
		}
		item, ok := d.Paths[rt.path].(map[string]any)
		require.True(t, ok, "missing path %s", rt.path)
		assert.Contains(t, item, strings.ToLower(rt.method), rt.path)
	}
}

func TestLoadDocs_MarshalsToJSON(t *testing.T) {
	d, err := LoadDocs()
	require.NoError(t, err)
	_, err = json.Marshal(d)
	require.NoError(t, err)
}

func TestParseDocs(t *testing.T) {
	_, err := parseDocs([]byte("openapi: [unterminated"))
	assert.Error(t, err)

	_, err = parseDocs([]byte("openapi: 3.0.0\ninfo: {title: x}\n"))
	assert.ErrorContains(t, err, "no paths")

	d, err := parseDocs([]byte("openapi: 3.0.0\ninfo: {title: x}\npaths: {/a: {}}\n"))
	require.NoError(t, err)
	assert.NotNil(t, d.Components)
}

func TestSubset(t *testing.T) {
	d := &Docs{
		OpenAPI: "3.0.0",
		Info:    map[string]any{"title": "Shop", "version": "1"},
		Paths: map[string]any{
			"/api/products":      1,
			"/api/products/{id}": 2,
			"/api/productsX":     3,
			"/api/orders":        4,
		},
	}
	sub := d.Subset("products")
	assert.Equal(t, map[string]any{"/api/products": 1, "/api/products/{id}": 2}, sub.Paths)
	assert.Equal(t, "Shop - Products", sub.Info["title"])
	assert.Equal(t, "1", sub.Info["version"])
	assert.Equal(t, "Shop", d.Info["title"])
}
