package order

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/nazeru/retail-mock-api/internal/order/domain"
)

const (
	unknownName    = "Unknown"
	unknownCountry = "??"
)

type EnrichedItem struct {
	ProductID domain.ProductID
	Product   string
	Qty       int
	LineTotal string
}

// Enriched is the display projection of an order.
type Enriched struct {
	ID         domain.OrderID
	CustomerID int
	Status     domain.OrderStatus
	CreatedAt  time.Time
	Customer   string
	Country    string
	Items      []EnrichedItem
	Total      string
}

// Summary is the one-line listing view of an order.
type Summary struct {
	ID        domain.OrderID
	Customer  string
	Status    domain.OrderStatus
	Items     int
	Total     string
	CreatedAt time.Time
}

func (e *Engine) Enrich(o domain.Order) Enriched {
	out := Enriched{
		ID:         o.ID,
		CustomerID: o.CustomerID,
		Status:     o.Status,
		CreatedAt:  o.CreatedAt,
		Customer:   unknownName,
		Country:    unknownCountry,
		Items:      make([]EnrichedItem, 0, len(o.Items)),
		Total:      FormatMoney(e.ComputeTotal(o.Items)),
	}
	if name, country, ok := e.customers.Profile(o.CustomerID); ok {
		out.Customer, out.Country = name, country
	}
	for _, it := range o.Items {
		name, _, ok := e.prices.Listing(string(it.ProductID))
		if !ok {
			name = unknownName
		}
		out.Items = append(out.Items, EnrichedItem{
			ProductID: it.ProductID,
			Product:   name,
			Qty:       it.Quantity,
			LineTotal: FormatMoney(e.lineTotal(it)),
		})
	}
	return out
}

func (e *Engine) Summaries() []Summary {
	out := make([]Summary, 0, len(e.orders))
	for _, o := range e.orders {
		name, _, ok := e.customers.Profile(o.CustomerID)
		if !ok {
			name = unknownName
		}
		out = append(out, Summary{
			ID:        o.ID,
			Customer:  name,
			Status:    o.Status,
			Items:     len(o.Items),
			Total:     FormatMoney(e.ComputeTotal(o.Items)),
			CreatedAt: o.CreatedAt,
		})
	}
	return out
}

func FormatMoney(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}
