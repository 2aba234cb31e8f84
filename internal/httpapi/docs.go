package httpapi

import (
	_ "embed"
	"fmt"
	"net/http"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed openapi.yaml
var openapiYAML []byte

const docsPage = `<!DOCTYPE html>
<html>
  <head><title>API Docs</title></head>
  <body>
    <h1>Mock Retail API - OpenAPI docs</h1>
    <p>Full document (JSON): <a href="/api-docs/spec">openapi</a></p>
    <p>Specs (JSON): <a href="/api-docs/spec/products">products</a>, <a href="/api-docs/spec/orders">orders</a>, <a href="/api-docs/spec/customers">customers</a></p>
    <p>API is available at <a href="/api">/api</a>.</p>
  </body>
</html>
`

// Docs is the parsed OpenAPI document.
type Docs struct {
	OpenAPI    string         `yaml:"openapi" json:"openapi"`
	Info       map[string]any `yaml:"info" json:"info"`
	Servers    []any          `yaml:"servers" json:"servers"`
	Tags       []any          `yaml:"tags,omitempty" json:"tags,omitempty"`
	Paths      map[string]any `yaml:"paths" json:"paths"`
	Components map[string]any `yaml:"components" json:"components"`
}

func LoadDocs() (*Docs, error) {
	return parseDocs(openapiYAML)
}

func parseDocs(src []byte) (*Docs, error) {
	var d Docs
	if err := yaml.Unmarshal(src, &d); err != nil {
		return nil, fmt.Errorf("parse openapi: %w", err)
	}
	if d.Paths == nil {
		return nil, fmt.Errorf("parse openapi: no paths")
	}
	if d.Components == nil {
		d.Components = map[string]any{}
	}
	return &d, nil
}

// Subset returns a copy holding only the paths under /api/<resource>.
func (d *Docs) Subset(resource string) *Docs {
	prefix := "/api/" + resource
	paths := make(map[string]any)
	for p, v := range d.Paths {
		if p == prefix || strings.HasPrefix(p, prefix+"/") {
			paths[p] = v
		}
	}
	info := make(map[string]any, len(d.Info)+1)
	for k, v := range d.Info {
		info[k] = v
	}
	title, _ := d.Info["title"].(string)
	info["title"] = title + " - " + strings.ToUpper(resource[:1]) + resource[1:]
	return &Docs{
		OpenAPI:    d.OpenAPI,
		Info:       info,
		Servers:    d.Servers,
		Paths:      paths,
		Components: d.Components,
	}
}

func (a *API) docsIndex(request) response {
	return response{status: http.StatusOK, html: docsPage}
}

func (a *API) docsFull(request) response {
	if a.docs == nil {
		return fail(http.StatusNotFound, "OpenAPI document not loaded")
	}
	return ok(a.docs)
}

func (a *API) docsResource(r request) response {
	resource := r.param("resource")
	known := false
	for _, g := range groups {
		known = known || g == resource
	}
	if !known || a.docs == nil {
		return fail(http.StatusNotFound, "Unknown spec")
	}
	return ok(a.docs.Subset(resource))
}
