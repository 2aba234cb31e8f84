package order

import (
	"time"

	"github.com/nazeru/retail-mock-api/internal/order/domain"
)

func Seed() []domain.Order {
	return []domain.Order{
		{
			ID: "ORD-2024-001", CustomerID: 1, Status: domain.OrderStatusDelivered,
			CreatedAt: date(2024, time.February, 10),
			Items:     []domain.OrderItem{{ProductID: "P001", Quantity: 1}, {ProductID: "P004", Quantity: 1}, {ProductID: "P003", Quantity: 2}},
		},
		{
			ID: "ORD-2024-002", CustomerID: 2, Status: domain.OrderStatusShipped,
			CreatedAt: date(2024, time.April, 22),
			Items:     []domain.OrderItem{{ProductID: "P005", Quantity: 1}, {ProductID: "P007", Quantity: 1}},
		},
		{
			ID: "ORD-2024-003", CustomerID: 3, Status: domain.OrderStatusPending,
			CreatedAt: date(2024, time.June, 15),
			Items:     []domain.OrderItem{{ProductID: "P002", Quantity: 2}, {ProductID: "P009", Quantity: 1}, {ProductID: "P006", Quantity: 3}},
		},
		{
			ID: "ORD-2024-004", CustomerID: 4, Status: domain.OrderStatusCancelled,
			CreatedAt: date(2024, time.August, 30),
			Items:     []domain.OrderItem{{ProductID: "P008", Quantity: 4}, {ProductID: "P003", Quantity: 1}},
		},
		{
			ID: "ORD-2025-001", CustomerID: 1, Status: domain.OrderStatusPending,
			CreatedAt: date(2025, time.January, 5),
			Items:     []domain.OrderItem{{ProductID: "P005", Quantity: 1}, {ProductID: "P002", Quantity: 1}, {ProductID: "P008", Quantity: 2}},
		},
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
