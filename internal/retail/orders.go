package retail

import (
	"context"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/nazeru/retail-mock-api/internal/order"
	"github.com/nazeru/retail-mock-api/internal/order/domain"
	"github.com/nazeru/retail-mock-api/pkg/contracts"
	"github.com/nazeru/retail-mock-api/pkg/logging"
)

// PricedOrder is a raw order with its total at current prices.
type PricedOrder struct {
	domain.Order
	Total decimal.Decimal
}

func (s *Service) Orders() []domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orders.GetAll()
}

func (s *Service) OrderSummaries() []order.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orders.Summaries()
}

func (s *Service) Order(id domain.OrderID) (order.Enriched, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orders.GetByID(id)
}

func (s *Service) OrdersByCustomer(customerID int) []PricedOrder {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw := s.orders.ListByCustomer(customerID)
	out := make([]PricedOrder, 0, len(raw))
	for _, o := range raw {
		out = append(out, PricedOrder{Order: o, Total: s.orders.ComputeTotal(o.Items)})
	}
	return out
}

func (s *Service) Revenue() order.Revenue {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orders.RevenueSummary()
}

// PlaceOrder creates a pending order. A non-empty key that was seen before
// returns the order created for it with replayed set, and nothing is placed.
func (s *Service) PlaceOrder(ctx context.Context, key string, customerID int, items []domain.OrderItem) (o domain.Order, replayed bool, err error) {
	ctx, done := s.op(ctx, "order.place", attribute.Int("customer.id", customerID), attribute.Int("order.items", len(items)))
	s.mu.Lock()
	if id, ok := s.idem.Lookup(key); ok {
		o, err = s.orders.Get(domain.OrderID(id))
		s.mu.Unlock()
		done(logging.Fields{OrderID: id, CustomerID: customerID, Status: "replayed", Message: "order replayed"}, err)
		return o, err == nil, err
	}
	o, err = s.orders.Place(customerID, items)
	if err == nil {
		s.idem.Remember(key, string(o.ID))
		s.refreshGauges()
		s.emit(ctx, placedEvent(o, s.orders.ComputeTotal(o.Items)))
	}
	s.mu.Unlock()
	done(logging.Fields{OrderID: string(o.ID), CustomerID: customerID, Message: "order place"}, err)
	if err != nil {
		return domain.Order{}, false, err
	}
	return o, false, nil
}

func placedEvent(o domain.Order, total decimal.Decimal) contracts.Event {
	lines := make([]map[string]any, 0, len(o.Items))
	for _, it := range o.Items {
		lines = append(lines, map[string]any{"productId": string(it.ProductID), "qty": it.Quantity})
	}
	return contracts.NewEvent(contracts.EventOrderPlaced, string(o.ID), map[string]any{
		"id":         string(o.ID),
		"customerId": o.CustomerID,
		"items":      lines,
		"total":      total.StringFixed(2),
	})
}

func (s *Service) AdvanceOrder(ctx context.Context, id domain.OrderID) (domain.Order, error) {
	ctx, done := s.op(ctx, "order.advance", attribute.String("order.id", string(id)))
	s.mu.Lock()
	o, err := s.advance(ctx, id)
	s.mu.Unlock()
	done(logging.Fields{OrderID: string(id), Status: string(o.Status), Message: "order advance"}, err)
	return o, err
}

// advance must be called with s.mu held. A delivered order comes back
// unchanged and emits nothing.
func (s *Service) advance(ctx context.Context, id domain.OrderID) (domain.Order, error) {
	before, err := s.orders.Get(id)
	if err != nil {
		return domain.Order{}, err
	}
	o, err := s.orders.Advance(id)
	if err != nil {
		return domain.Order{}, err
	}
	s.refreshGauges()
	if before.Status != o.Status {
		s.emit(ctx, contracts.NewEvent(contracts.EventOrderAdvanced, string(id), map[string]any{
			"id":   string(id),
			"from": string(before.Status),
			"to":   string(o.Status),
		}))
	}
	return o, nil
}

func (s *Service) CancelOrder(ctx context.Context, id domain.OrderID) error {
	ctx, done := s.op(ctx, "order.cancel", attribute.String("order.id", string(id)))
	s.mu.Lock()
	err := s.cancel(ctx, id)
	s.mu.Unlock()
	done(logging.Fields{OrderID: string(id), Message: "order cancel"}, err)
	return err
}

// cancel must be called with s.mu held.
func (s *Service) cancel(ctx context.Context, id domain.OrderID) error {
	before, err := s.orders.Get(id)
	if err != nil {
		return err
	}
	if err := s.orders.Cancel(id); err != nil {
		return err
	}
	s.refreshGauges()
	s.emit(ctx, contracts.NewEvent(contracts.EventOrderCancelled, string(id), map[string]any{
		"id":   string(id),
		"from": string(before.Status),
	}))
	return nil
}
