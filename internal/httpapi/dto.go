package httpapi

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/nazeru/retail-mock-api/internal/catalog"
	"github.com/nazeru/retail-mock-api/internal/customer"
	"github.com/nazeru/retail-mock-api/internal/order"
	"github.com/nazeru/retail-mock-api/internal/order/domain"
	"github.com/nazeru/retail-mock-api/internal/retail"
)

type errorBody struct {
	Error string `json:"error"`
}

type productDTO struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	Stock    int     `json:"stock"`
	SKU      string  `json:"sku"`
	Active   bool    `json:"active"`
}

type customerDTO struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Country   string `json:"country"`
	Tier      string `json:"tier"`
	CreatedAt string `json:"createdAt"`
}

type orderItemDTO struct {
	ProductID string `json:"productId"`
	Qty       int    `json:"qty"`
}

type orderDTO struct {
	ID         string         `json:"id"`
	CustomerID int            `json:"customerId"`
	Status     string         `json:"status"`
	CreatedAt  string         `json:"createdAt"`
	Items      []orderItemDTO `json:"items"`
	Total      string         `json:"total,omitempty"`
}

type enrichedItemDTO struct {
	ProductID string `json:"productId"`
	Product   string `json:"product"`
	Qty       int    `json:"qty"`
	LineTotal string `json:"lineTotal"`
}

type enrichedOrderDTO struct {
	ID         string            `json:"id"`
	CustomerID int               `json:"customerId"`
	Status     string            `json:"status"`
	CreatedAt  string            `json:"createdAt"`
	Items      []enrichedItemDTO `json:"items"`
	Customer   string            `json:"customer"`
	Country    string            `json:"country"`
	Total      string            `json:"total"`
}

type orderSummaryDTO struct {
	ID       string `json:"id"`
	Customer string `json:"customer"`
	Status   string `json:"status"`
	Items    int    `json:"items"`
	Total    string `json:"total"`
	Date     string `json:"date"`
}

type revenueDTO struct {
	Total    float64       `json:"total"`
	ByStatus orderedObject `json:"byStatus"`
}

type statsDTO struct {
	Total  int           `json:"total"`
	ByTier orderedObject `json:"byTier"`
}

func day(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.DateOnly)
}

func toProduct(p catalog.Product) productDTO {
	return productDTO{
		ID:       p.ID,
		Name:     p.Name,
		Category: p.Category,
		Price:    p.Price.InexactFloat64(),
		Stock:    p.Stock,
		SKU:      p.SKU,
		Active:   p.Active,
	}
}

func toProducts(ps []catalog.Product) []productDTO {
	out := make([]productDTO, 0, len(ps))
	for _, p := range ps {
		out = append(out, toProduct(p))
	}
	return out
}

func toCustomer(c customer.Customer) customerDTO {
	return customerDTO{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Country:   c.Country,
		Tier:      string(c.Tier),
		CreatedAt: day(c.CreatedAt),
	}
}

func toCustomers(cs []customer.Customer) []customerDTO {
	out := make([]customerDTO, 0, len(cs))
	for _, c := range cs {
		out = append(out, toCustomer(c))
	}
	return out
}

func toOrder(o domain.Order) orderDTO {
	items := make([]orderItemDTO, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orderItemDTO{ProductID: string(it.ProductID), Qty: it.Quantity})
	}
	return orderDTO{
		ID:         string(o.ID),
		CustomerID: o.CustomerID,
		Status:     string(o.Status),
		CreatedAt:  day(o.CreatedAt),
		Items:      items,
	}
}

func toOrders(list []domain.Order) []orderDTO {
	out := make([]orderDTO, 0, len(list))
	for _, o := range list {
		out = append(out, toOrder(o))
	}
	return out
}

func toPricedOrders(ps []retail.PricedOrder) []orderDTO {
	out := make([]orderDTO, 0, len(ps))
	for _, p := range ps {
		dto := toOrder(p.Order)
		dto.Total = order.FormatMoney(p.Total)
		out = append(out, dto)
	}
	return out
}

func toEnriched(e order.Enriched) enrichedOrderDTO {
	items := make([]enrichedItemDTO, 0, len(e.Items))
	for _, it := range e.Items {
		items = append(items, enrichedItemDTO{
			ProductID: string(it.ProductID),
			Product:   it.Product,
			Qty:       it.Qty,
			LineTotal: it.LineTotal,
		})
	}
	return enrichedOrderDTO{
		ID:         string(e.ID),
		CustomerID: e.CustomerID,
		Status:     string(e.Status),
		CreatedAt:  day(e.CreatedAt),
		Items:      items,
		Customer:   e.Customer,
		Country:    e.Country,
		Total:      e.Total,
	}
}

func toSummaries(ss []order.Summary) []orderSummaryDTO {
	out := make([]orderSummaryDTO, 0, len(ss))
	for _, s := range ss {
		out = append(out, orderSummaryDTO{
			ID:       string(s.ID),
			Customer: s.Customer,
			Status:   string(s.Status),
			Items:    s.Items,
			Total:    s.Total,
			Date:     day(s.CreatedAt),
		})
	}
	return out
}

func toRevenue(r order.Revenue) revenueDTO {
	by := make(orderedObject, 0, len(r.ByStatus))
	for _, sc := range r.ByStatus {
		by = append(by, field{Key: string(sc.Status), Value: sc.Count})
	}
	return revenueDTO{Total: r.Total.InexactFloat64(), ByStatus: by}
}

func toStats(s customer.Stats) statsDTO {
	by := make(orderedObject, 0, len(s.ByTier))
	for _, tc := range s.ByTier {
		by = append(by, field{Key: string(tc.Tier), Value: tc.Count})
	}
	return statsDTO{Total: s.Total, ByTier: by}
}

func toCategoryGroups(gs []catalog.CategoryGroup) orderedObject {
	out := make(orderedObject, 0, len(gs))
	for _, g := range gs {
		out = append(out, field{Key: g.Category, Value: g.Names})
	}
	return out
}

type field struct {
	Key   string
	Value any
}

// orderedObject is a JSON object that keeps its keys in slice order.
type orderedObject []field

func (o orderedObject) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
