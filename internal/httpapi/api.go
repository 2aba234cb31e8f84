package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nazeru/retail-mock-api/internal/catalog"
	"github.com/nazeru/retail-mock-api/internal/customer"
	"github.com/nazeru/retail-mock-api/internal/order"
	"github.com/nazeru/retail-mock-api/internal/order/domain"
	"github.com/nazeru/retail-mock-api/internal/retail"
	"github.com/nazeru/retail-mock-api/pkg/idempotency"
)

const maxBodyBytes = 1 << 20

// request is what a handler sees, independent of the router serving it.
type request struct {
	ctx    context.Context
	param  func(name string) string
	query  url.Values
	header http.Header
	body   io.Reader
}

type response struct {
	status int
	body   any
	html   string
}

func ok(body any) response { return response{status: http.StatusOK, body: body} }

func fail(status int, msg string) response {
	return response{status: status, body: errorBody{Error: msg}}
}

// API holds the handlers for every route in routes().
type API struct {
	svc  *retail.Service
	docs *Docs
}

func NewAPI(svc *retail.Service, docs *Docs) *API {
	return &API{svc: svc, docs: docs}
}

// decode reads a JSON object into v. An empty body leaves v untouched.
func decode(r request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// products

func (a *API) listProducts(r request) response {
	return ok(toProducts(a.svc.Products(r.query.Get("onlyActive") == "true")))
}

func (a *API) lowStock(r request) response {
	threshold, err := strconv.Atoi(r.query.Get("threshold"))
	if err != nil || threshold == 0 {
		threshold = catalog.DefaultLowStockThreshold
	}
	return ok(toProducts(a.svc.LowStock(threshold)))
}

func (a *API) inventoryValue(request) response {
	return ok(map[string]float64{"total": a.svc.InventoryValue().InexactFloat64()})
}

func (a *API) productsByCategory(request) response {
	return ok(toCategoryGroups(a.svc.ProductsByCategory()))
}

func (a *API) getProduct(r request) response {
	p, err := a.svc.Product(r.param("id"))
	if err != nil {
		return fail(http.StatusNotFound, "Product not found")
	}
	return ok(toProduct(p))
}

type newProductBody struct {
	Name     *string          `json:"name"`
	Category *string          `json:"category"`
	Price    *decimal.Decimal `json:"price"`
	Stock    *int             `json:"stock"`
	SKU      *string          `json:"sku"`
	Active   *bool            `json:"active"`
}

func (a *API) addProduct(r request) response {
	const missing = "Missing required fields: name, category, price, stock, sku"
	var b newProductBody
	if err := decode(r, &b); err != nil {
		return fail(http.StatusBadRequest, missing)
	}
	if empty(b.Name) || empty(b.Category) || b.Price == nil || b.Stock == nil || empty(b.SKU) {
		return fail(http.StatusBadRequest, missing)
	}
	p, err := a.svc.AddProduct(r.ctx, catalog.NewProduct{
		Name:     *b.Name,
		Category: *b.Category,
		Price:    *b.Price,
		Stock:    *b.Stock,
		SKU:      *b.SKU,
		Active:   b.Active,
	})
	if errors.Is(err, catalog.ErrDuplicateSKU) {
		return fail(http.StatusConflict, "SKU already exists")
	}
	if err != nil {
		return fail(http.StatusInternalServerError, err.Error())
	}
	return response{status: http.StatusCreated, body: toProduct(p)}
}

func (a *API) updateStock(r request) response {
	const missing = "Body must include numeric qty"
	var b struct {
		Qty *int `json:"qty"`
	}
	if err := decode(r, &b); err != nil || b.Qty == nil {
		return fail(http.StatusBadRequest, missing)
	}
	p, err := a.svc.UpdateStock(r.ctx, r.param("id"), *b.Qty)
	if err != nil {
		return fail(http.StatusNotFound, "Product not found")
	}
	return ok(toProduct(p))
}

func (a *API) bulkDiscount(r request) response {
	const missing = "Missing required fields: category, discountPct"
	var b struct {
		Category    *string          `json:"category"`
		DiscountPct *decimal.Decimal `json:"discountPct"`
	}
	if err := decode(r, &b); err != nil || empty(b.Category) || b.DiscountPct == nil {
		return fail(http.StatusBadRequest, missing)
	}
	return ok(toProducts(a.svc.BulkDiscount(r.ctx, *b.Category, *b.DiscountPct)))
}

// orders

func (a *API) listOrders(r request) response {
	if r.query.Get("view") == "summary" {
		return ok(toSummaries(a.svc.OrderSummaries()))
	}
	return ok(toOrders(a.svc.Orders()))
}

func (a *API) revenue(request) response {
	return ok(toRevenue(a.svc.Revenue()))
}

func (a *API) ordersByCustomer(r request) response {
	id, err := strconv.Atoi(r.param("customerId"))
	if err != nil {
		return fail(http.StatusBadRequest, "Invalid customerId")
	}
	return ok(toPricedOrders(a.svc.OrdersByCustomer(id)))
}

func (a *API) getOrder(r request) response {
	o, err := a.svc.Order(domain.OrderID(r.param("id")))
	if err != nil {
		return fail(http.StatusNotFound, "Order not found")
	}
	return ok(toEnriched(o))
}

func (a *API) placeOrder(r request) response {
	const missing = "Missing required fields: customerId, items"
	var b struct {
		CustomerID *int            `json:"customerId"`
		Items      *[]orderItemDTO `json:"items"`
	}
	if err := decode(r, &b); err != nil || b.CustomerID == nil || b.Items == nil {
		return fail(http.StatusBadRequest, missing)
	}
	items := make([]domain.OrderItem, 0, len(*b.Items))
	for _, it := range *b.Items {
		items = append(items, domain.OrderItem{ProductID: domain.ProductID(it.ProductID), Quantity: it.Qty})
	}
	key := idempotency.FromHeader(r.header)
	o, replayed, err := a.svc.PlaceOrder(r.ctx, key, *b.CustomerID, items)
	switch {
	case errors.Is(err, order.ErrUnknownCustomer):
		return fail(http.StatusNotFound, "Customer not found")
	case err != nil:
		return fail(http.StatusInternalServerError, err.Error())
	case replayed:
		return ok(toOrder(o))
	}
	return response{status: http.StatusCreated, body: toOrder(o)}
}

func (a *API) advanceOrder(r request) response {
	o, err := a.svc.AdvanceOrder(r.ctx, domain.OrderID(r.param("id")))
	if err != nil {
		return fail(http.StatusNotFound, "Order not found or cannot be advanced")
	}
	return ok(toOrder(o))
}

func (a *API) cancelOrder(r request) response {
	if err := a.svc.CancelOrder(r.ctx, domain.OrderID(r.param("id"))); err != nil {
		return fail(http.StatusBadRequest, "Order not found or cannot be cancelled")
	}
	return ok(map[string]bool{"cancelled": true})
}

// customers

func (a *API) listCustomers(request) response {
	return ok(toCustomers(a.svc.Customers()))
}

func (a *API) customerStats(request) response {
	return ok(toStats(a.svc.CustomerStats()))
}

func (a *API) customersByTier(r request) response {
	return ok(toCustomers(a.svc.CustomersByTier(customer.Tier(r.param("tier")))))
}

func (a *API) customersByCountry(r request) response {
	return ok(toCustomers(a.svc.CustomersByCountry(r.param("country"))))
}

func (a *API) getCustomer(r request) response {
	id, err := strconv.Atoi(r.param("id"))
	if err != nil {
		return fail(http.StatusBadRequest, "Invalid customer id")
	}
	c, err := a.svc.Customer(id)
	if err != nil {
		return fail(http.StatusNotFound, "Customer not found")
	}
	return ok(toCustomer(c))
}

type customerBody struct {
	Name      *string `json:"name"`
	Email     *string `json:"email"`
	Country   *string `json:"country"`
	Tier      *string `json:"tier"`
	CreatedAt *string `json:"createdAt"`
}

func (b customerBody) createdAt() (*time.Time, error) {
	if b.CreatedAt == nil {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, *b.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (a *API) addCustomer(r request) response {
	const missing = "Missing required fields: name, email, country, tier"
	var b customerBody
	if err := decode(r, &b); err != nil {
		return fail(http.StatusBadRequest, missing)
	}
	if empty(b.Name) || empty(b.Email) || empty(b.Country) || empty(b.Tier) {
		return fail(http.StatusBadRequest, missing)
	}
	created, err := b.createdAt()
	if err != nil {
		return fail(http.StatusBadRequest, "Invalid createdAt, expected YYYY-MM-DD")
	}
	c := customer.Customer{Name: *b.Name, Email: *b.Email, Country: *b.Country, Tier: customer.Tier(*b.Tier)}
	if created != nil {
		c.CreatedAt = *created
	}
	return response{status: http.StatusCreated, body: toCustomer(a.svc.AddCustomer(r.ctx, c))}
}

func (a *API) updateCustomer(r request) response {
	id, err := strconv.Atoi(r.param("id"))
	if err != nil {
		return fail(http.StatusBadRequest, "Invalid customer id")
	}
	var b customerBody
	if err := decode(r, &b); err != nil {
		return fail(http.StatusBadRequest, "Body must be a JSON object")
	}
	created, err := b.createdAt()
	if err != nil {
		return fail(http.StatusBadRequest, "Invalid createdAt, expected YYYY-MM-DD")
	}
	p := customer.Patch{Name: b.Name, Email: b.Email, Country: b.Country, CreatedAt: created}
	if b.Tier != nil {
		tier := customer.Tier(*b.Tier)
		p.Tier = &tier
	}
	c, err := a.svc.UpdateCustomer(r.ctx, id, p)
	if err != nil {
		return fail(http.StatusNotFound, "Customer not found")
	}
	return ok(toCustomer(c))
}

func (a *API) deleteCustomer(r request) response {
	id, err := strconv.Atoi(r.param("id"))
	if err != nil {
		return fail(http.StatusBadRequest, "Invalid customer id")
	}
	if err := a.svc.DeleteCustomer(r.ctx, id); err != nil {
		return fail(http.StatusNotFound, "Customer not found")
	}
	return response{status: http.StatusNoContent}
}

func empty(s *string) bool {
	return s == nil || *s == ""
}
