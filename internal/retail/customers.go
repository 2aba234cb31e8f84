package retail

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/nazeru/retail-mock-api/internal/customer"
	"github.com/nazeru/retail-mock-api/pkg/contracts"
	"github.com/nazeru/retail-mock-api/pkg/logging"
)

func (s *Service) Customers() []customer.Customer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.customers.GetAll()
}

func (s *Service) Customer(id int) (customer.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.customers.GetByID(id)
}

func (s *Service) CustomersByTier(tier customer.Tier) []customer.Customer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.customers.ListByTier(tier)
}

func (s *Service) CustomersByCountry(country string) []customer.Customer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.customers.ListByCountry(country)
}

func (s *Service) CustomerStats() customer.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.customers.Stats()
}

func (s *Service) AddCustomer(ctx context.Context, c customer.Customer) customer.Customer {
	ctx, done := s.op(ctx, "customer.add")
	s.mu.Lock()
	added := s.customers.Add(c)
	s.emit(ctx, contracts.NewEvent(contracts.EventCustomerCreated, customerSubject(added.ID), customerPayload(added)))
	s.mu.Unlock()
	done(logging.Fields{CustomerID: added.ID, Message: "customer added"}, nil)
	return added
}

func (s *Service) UpdateCustomer(ctx context.Context, id int, p customer.Patch) (customer.Customer, error) {
	ctx, done := s.op(ctx, "customer.update", attribute.Int("customer.id", id))
	s.mu.Lock()
	updated, err := s.customers.Update(id, p)
	if err == nil {
		s.emit(ctx, contracts.NewEvent(contracts.EventCustomerUpdated, customerSubject(id), customerPayload(updated)))
	}
	s.mu.Unlock()
	done(logging.Fields{CustomerID: id, Message: "customer update"}, err)
	if err != nil {
		return customer.Customer{}, err
	}
	return updated, nil
}

// DeleteCustomer leaves the customer's orders in place; they enrich with
// placeholder names afterwards.
func (s *Service) DeleteCustomer(ctx context.Context, id int) error {
	ctx, done := s.op(ctx, "customer.delete", attribute.Int("customer.id", id))
	s.mu.Lock()
	err := s.customers.Delete(id)
	if err == nil {
		s.emit(ctx, contracts.NewEvent(contracts.EventCustomerDeleted, customerSubject(id), map[string]any{"id": id}))
	}
	s.mu.Unlock()
	done(logging.Fields{CustomerID: id, Message: "customer delete"}, err)
	return err
}

func customerSubject(id int) string {
	return "customer-" + strconv.Itoa(id)
}

func customerPayload(c customer.Customer) map[string]any {
	return map[string]any{
		"id":        c.ID,
		"name":      c.Name,
		"email":     c.Email,
		"country":   c.Country,
		"tier":      string(c.Tier),
		"createdAt": c.CreatedAt.Format(time.DateOnly),
	}
}
