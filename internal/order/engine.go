package order

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nazeru/retail-mock-api/internal/order/domain"
)

var (
	ErrNotFound        = errors.New("order not found")
	ErrUnknownCustomer = errors.New("customer not found")
	ErrNotAdvanceable  = errors.New("order cannot be advanced")
	ErrNotCancellable  = errors.New("order cannot be cancelled")
)

// CustomerDirectory is the read-only view of customers the engine needs.
type CustomerDirectory interface {
	Profile(id int) (name, country string, ok bool)
}

// PriceBook resolves current catalog prices. Totals are always computed
// against it at read time, so repricing a product changes the totals of
// orders placed before the change.
type PriceBook interface {
	Listing(id string) (name string, unitPrice decimal.Decimal, ok bool)
}

type StatusCount struct {
	Status domain.OrderStatus
	Count  int
}

type Revenue struct {
	// Total sums delivered orders only.
	Total decimal.Decimal
	// ByStatus counts every order, in first-seen status order.
	ByStatus []StatusCount
}

// Engine owns the order list. It is not safe for concurrent use; callers
// serialize access together with the customer and product stores it reads.
type Engine struct {
	orders    []domain.Order
	seq       map[int]int
	customers CustomerDirectory
	prices    PriceBook
	now       func() time.Time
}

func NewEngine(seed []domain.Order, customers CustomerDirectory, prices PriceBook, now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	e := &Engine{
		orders:    make([]domain.Order, 0, len(seed)),
		seq:       make(map[int]int),
		customers: customers,
		prices:    prices,
		now:       now,
	}
	for _, o := range seed {
		e.orders = append(e.orders, o.Clone())
		if year, n, ok := parseID(o.ID); ok && n > e.seq[year] {
			e.seq[year] = n
		}
	}
	return e
}

func (e *Engine) GetAll() []domain.Order {
	out := make([]domain.Order, 0, len(e.orders))
	for _, o := range e.orders {
		out = append(out, o.Clone())
	}
	return out
}

// Get returns the raw order.
func (e *Engine) Get(id domain.OrderID) (domain.Order, error) {
	i := e.indexOf(id)
	if i < 0 {
		return domain.Order{}, ErrNotFound
	}
	return e.orders[i].Clone(), nil
}

// GetByID returns the order joined with customer and product data.
func (e *Engine) GetByID(id domain.OrderID) (Enriched, error) {
	i := e.indexOf(id)
	if i < 0 {
		return Enriched{}, ErrNotFound
	}
	return e.Enrich(e.orders[i]), nil
}

// Place records a pending order for an existing customer. Items are stored
// as given; product ids are not checked against the catalog.
func (e *Engine) Place(customerID int, items []domain.OrderItem) (domain.Order, error) {
	if _, _, ok := e.customers.Profile(customerID); !ok {
		return domain.Order{}, fmt.Errorf("%w: #%d", ErrUnknownCustomer, customerID)
	}
	now := e.now().UTC()
	year := now.Year()
	e.seq[year]++
	o := domain.Order{
		ID:         domain.OrderID(fmt.Sprintf("ORD-%d-%03d", year, e.seq[year])),
		CustomerID: customerID,
		Status:     domain.OrderStatusPending,
		Items:      append([]domain.OrderItem(nil), items...),
		CreatedAt:  time.Date(year, now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
	}
	e.orders = append(e.orders, o)
	return o.Clone(), nil
}

// Advance moves the order one step along domain.StatusFlow. A delivered
// order is returned unchanged with a nil error.
func (e *Engine) Advance(id domain.OrderID) (domain.Order, error) {
	i := e.indexOf(id)
	if i < 0 {
		return domain.Order{}, ErrNotFound
	}
	o := &e.orders[i]
	if o.Status == domain.OrderStatusCancelled {
		return domain.Order{}, fmt.Errorf("%w: status %s", ErrNotAdvanceable, o.Status)
	}
	next, terminal, ok := o.Status.Next()
	if !ok {
		return domain.Order{}, fmt.Errorf("%w: status %s", ErrNotAdvanceable, o.Status)
	}
	if !terminal {
		o.Status = next
	}
	return o.Clone(), nil
}

func (e *Engine) Cancel(id domain.OrderID) error {
	i := e.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	if !e.orders[i].Status.Cancellable() {
		return fmt.Errorf("%w: already %s", ErrNotCancellable, e.orders[i].Status)
	}
	e.orders[i].Status = domain.OrderStatusCancelled
	return nil
}

func (e *Engine) ListByCustomer(customerID int) []domain.Order {
	out := []domain.Order{}
	for _, o := range e.orders {
		if o.CustomerID == customerID {
			out = append(out, o.Clone())
		}
	}
	return out
}

func (e *Engine) RevenueSummary() Revenue {
	rev := Revenue{Total: decimal.Zero}
	pos := make(map[domain.OrderStatus]int)
	for _, o := range e.orders {
		if o.Status == domain.OrderStatusDelivered {
			rev.Total = rev.Total.Add(e.ComputeTotal(o.Items))
		}
		i, ok := pos[o.Status]
		if !ok {
			i = len(rev.ByStatus)
			pos[o.Status] = i
			rev.ByStatus = append(rev.ByStatus, StatusCount{Status: o.Status})
		}
		rev.ByStatus[i].Count++
	}
	return rev
}

// ComputeTotal prices items at current catalog prices. Unknown products
// contribute zero.
func (e *Engine) ComputeTotal(items []domain.OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(e.lineTotal(it))
	}
	return total
}

func (e *Engine) lineTotal(it domain.OrderItem) decimal.Decimal {
	_, price, ok := e.prices.Listing(string(it.ProductID))
	if !ok {
		return decimal.Zero
	}
	return price.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

func (e *Engine) indexOf(id domain.OrderID) int {
	for i := range e.orders {
		if e.orders[i].ID == id {
			return i
		}
	}
	return -1
}

func parseID(id domain.OrderID) (year, seq int, ok bool) {
	s, found := strings.CutPrefix(string(id), "ORD-")
	if !found {
		return 0, 0, false
	}
	if _, err := fmt.Sscanf(s, "%d-%d", &year, &seq); err != nil {
		return 0, 0, false
	}
	return year, seq, true
}
