package domain

import "time"

type OrderID string
type ProductID string

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// StatusFlow is the forward lifecycle. Cancellation is a side exit and is not
// part of it.
var StatusFlow = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusShipped,
	OrderStatusDelivered,
}

// Next returns the status after s in StatusFlow. ok is false when s is not in
// the flow; terminal reports that s is the last step.
func (s OrderStatus) Next() (next OrderStatus, terminal, ok bool) {
	for i, st := range StatusFlow {
		if st != s {
			continue
		}
		if i == len(StatusFlow)-1 {
			return s, true, true
		}
		return StatusFlow[i+1], false, true
	}
	return s, false, false
}

// Cancellable reports whether the order may move to cancelled. Only pending
// and confirmed orders can.
func (s OrderStatus) Cancellable() bool {
	return s == OrderStatusPending || s == OrderStatusConfirmed
}

type OrderItem struct {
	ProductID ProductID
	Quantity  int
}

type Order struct {
	ID         OrderID
	CustomerID int
	Status     OrderStatus
	Items      []OrderItem

	CreatedAt time.Time
}

// Clone returns a copy that shares no item storage with o.
func (o Order) Clone() Order {
	o.Items = append([]OrderItem(nil), o.Items...)
	return o
}
