package retail

import (
	"context"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/nazeru/retail-mock-api/internal/catalog"
	"github.com/nazeru/retail-mock-api/pkg/contracts"
	"github.com/nazeru/retail-mock-api/pkg/logging"
)

func (s *Service) Products(onlyActive bool) []catalog.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog.GetAll(onlyActive)
}

func (s *Service) Product(id string) (catalog.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog.GetByID(id)
}

func (s *Service) LowStock(threshold int) []catalog.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog.LowStockAlerts(threshold)
}

func (s *Service) InventoryValue() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog.InventoryValue()
}

func (s *Service) ProductsByCategory() []catalog.CategoryGroup {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog.GroupByCategory()
}

func (s *Service) AddProduct(ctx context.Context, np catalog.NewProduct) (catalog.Product, error) {
	ctx, done := s.op(ctx, "product.add", attribute.String("product.sku", np.SKU))
	s.mu.Lock()
	p, err := s.catalog.Add(np)
	if err == nil {
		s.refreshGauges()
		s.emit(ctx, contracts.NewEvent(contracts.EventProductCreated, p.ID, map[string]any{
			"id":       p.ID,
			"name":     p.Name,
			"category": p.Category,
			"price":    p.Price.StringFixed(2),
			"stock":    p.Stock,
			"sku":      p.SKU,
			"active":   p.Active,
		}))
	}
	s.mu.Unlock()
	done(logging.Fields{ProductID: p.ID, Message: "product add"}, err)
	if err != nil {
		return catalog.Product{}, err
	}
	return p, nil
}

func (s *Service) UpdateStock(ctx context.Context, id string, delta int) (catalog.Product, error) {
	ctx, done := s.op(ctx, "product.update_stock", attribute.String("product.id", id), attribute.Int("product.delta", delta))
	s.mu.Lock()
	p, err := s.catalog.UpdateStock(id, delta)
	if err == nil {
		s.refreshGauges()
		s.emit(ctx, contracts.NewEvent(contracts.EventProductStockUpdated, p.ID, map[string]any{
			"id":    p.ID,
			"delta": delta,
			"stock": p.Stock,
		}))
	}
	s.mu.Unlock()
	done(logging.Fields{ProductID: id, Message: "stock update"}, err)
	if err != nil {
		return catalog.Product{}, err
	}
	return p, nil
}

// BulkDiscount reprices the active products of category. Totals of existing
// orders follow the new prices.
func (s *Service) BulkDiscount(ctx context.Context, category string, pct decimal.Decimal) []catalog.Product {
	ctx, done := s.op(ctx, "product.bulk_discount", attribute.String("product.category", category), attribute.String("discount.pct", pct.String()))
	s.mu.Lock()
	affected := s.catalog.ApplyBulkDiscount(category, pct)
	s.refreshGauges()
	if len(affected) > 0 {
		ids := make([]string, 0, len(affected))
		for _, p := range affected {
			ids = append(ids, p.ID)
		}
		s.emit(ctx, contracts.NewEvent(contracts.EventProductDiscounted, category, map[string]any{
			"category":    category,
			"discountPct": pct.String(),
			"products":    ids,
		}))
	}
	s.mu.Unlock()
	done(logging.Fields{Message: "bulk discount applied on " + category}, nil)
	return affected
}
