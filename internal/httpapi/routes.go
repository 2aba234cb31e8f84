package httpapi

import (
	"net/http"
	"strings"
)

type route struct {
	method string
	// path uses {name} placeholders; ginPath converts them.
	path string
	// group is the /api catalogue section; empty hides the route there.
	group   string
	summary string
	handle  func(request) response
}

func (rt route) ginPath() string {
	return strings.NewReplacer("{", ":", "}", "").Replace(rt.path)
}

var groups = []string{"products", "orders", "customers"}

func (a *API) routes() []route {
	return []route{
		{http.MethodGet, "/", "", "", a.root},
		{http.MethodGet, "/api", "", "", a.catalogue},
		{http.MethodGet, "/health", "", "", a.health},
		{http.MethodGet, "/api-docs", "", "", a.docsIndex},
		{http.MethodGet, "/api-docs/index", "", "", a.docsIndex},
		{http.MethodGet, "/api-docs/spec", "", "", a.docsFull},
		{http.MethodGet, "/api-docs/spec/{resource}", "", "", a.docsResource},

		{http.MethodGet, "/api/products", "products", "List all products (query: onlyActive=true)", a.listProducts},
		{http.MethodGet, "/api/products/low-stock", "products", "Low stock alerts (query: threshold=50)", a.lowStock},
		{http.MethodGet, "/api/products/inventory-value", "products", "Total inventory value", a.inventoryValue},
		{http.MethodGet, "/api/products/by-category", "products", "Products grouped by category", a.productsByCategory},
		{http.MethodGet, "/api/products/{id}", "products", "Get product by id", a.getProduct},
		{http.MethodPost, "/api/products", "products", "Add product (body: name, category, price, stock, sku)", a.addProduct},
		{http.MethodPatch, "/api/products/{id}/stock", "products", "Update stock (body: qty)", a.updateStock},
		{http.MethodPost, "/api/products/bulk-discount", "products", "Bulk discount (body: category, discountPct)", a.bulkDiscount},

		{http.MethodGet, "/api/orders", "orders", "List all orders (query: view=summary)", a.listOrders},
		{http.MethodGet, "/api/orders/revenue", "orders", "Revenue summary", a.revenue},
		{http.MethodGet, "/api/orders/customer/{customerId}", "orders", "Orders by customer", a.ordersByCustomer},
		{http.MethodGet, "/api/orders/{id}", "orders", "Get order by id", a.getOrder},
		{http.MethodPost, "/api/orders", "orders", "Place order (body: customerId, items; header: Idempotency-Key)", a.placeOrder},
		{http.MethodPatch, "/api/orders/{id}/advance", "orders", "Advance order status", a.advanceOrder},
		{http.MethodPost, "/api/orders/{id}/cancel", "orders", "Cancel order", a.cancelOrder},

		{http.MethodGet, "/api/customers", "customers", "List all customers", a.listCustomers},
		{http.MethodGet, "/api/customers/stats", "customers", "Customer stats", a.customerStats},
		{http.MethodGet, "/api/customers/tier/{tier}", "customers", "Customers by tier", a.customersByTier},
		{http.MethodGet, "/api/customers/country/{country}", "customers", "Customers by country", a.customersByCountry},
		{http.MethodGet, "/api/customers/{id}", "customers", "Get customer by id", a.getCustomer},
		{http.MethodPost, "/api/customers", "customers", "Add customer (body: name, email, country, tier)", a.addCustomer},
		{http.MethodPatch, "/api/customers/{id}", "customers", "Update customer (body: updates)", a.updateCustomer},
		{http.MethodDelete, "/api/customers/{id}", "customers", "Delete customer", a.deleteCustomer},
	}
}

func (a *API) root(request) response {
	endpoints := make(orderedObject, 0, len(groups))
	for _, g := range groups {
		endpoints = append(endpoints, field{Key: g, Value: "/api/" + g})
	}
	return ok(orderedObject{
		{Key: "name", Value: "Mock Retail API"},
		{Key: "endpoints", Value: endpoints},
	})
}

// catalogue lists every public route by group, keyed "METHOD /path/:param".
func (a *API) catalogue(request) response {
	byGroup := make(map[string]orderedObject, len(groups))
	for _, rt := range a.routes() {
		if rt.group == "" {
			continue
		}
		byGroup[rt.group] = append(byGroup[rt.group], field{Key: rt.method + " " + rt.ginPath(), Value: rt.summary})
	}
	out := make(orderedObject, 0, len(groups))
	for _, g := range groups {
		out = append(out, field{Key: g, Value: byGroup[g]})
	}
	return ok(out)
}

func (a *API) health(request) response {
	return ok(map[string]string{"status": "ok"})
}
