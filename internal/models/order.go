// internal/models/order.go
package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Order is the normalized record of an order and the source of truth for
// its status and placement date.
type Order struct {
	BaseModel
	AccountID   uuid.UUID   `json:"userId" gorm:"type:uuid;not null;index"`
	ClientID    uuid.UUID   `json:"clientId" gorm:"type:uuid;not null;index"`
	Products    OrderLines  `json:"products" gorm:"type:jsonb;not null"`
	TotalAmount float64     `json:"totalAmount" gorm:"type:decimal(12,2);not null"`
	Status      OrderStatus `json:"orderStatus" gorm:"type:varchar(20);default:'Pending';not null;index"`
	PlacedAt    time.Time   `json:"dateOfOrder" gorm:"not null"`
}

// AccountOrder is the per-account projection of an order used for listing.
// It carries no status or date; those live on Order.
type AccountOrder struct {
	ID        uuid.UUID  `json:"-" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	AccountID uuid.UUID  `json:"-" gorm:"type:uuid;not null;uniqueIndex:idx_account_orders_account_order"`
	OrderID   uuid.UUID  `json:"orderId" gorm:"type:uuid;not null;uniqueIndex:idx_account_orders_account_order"`
	ClientID  uuid.UUID  `json:"clientId" gorm:"type:uuid;not null"`
	Products  OrderLines `json:"products" gorm:"type:jsonb;not null"`
	CreatedAt time.Time  `json:"-" gorm:"index"`
}

var orderStatusNext = map[OrderStatus]OrderStatus{
	OrderStatusPending: OrderStatusShipped,
	OrderStatusShipped: OrderStatusDelivered,
}

func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusShipped, OrderStatusDelivered:
		return true
	}
	return false
}

// Next returns the status that follows s, or false when s is terminal.
func (s OrderStatus) Next() (OrderStatus, bool) {
	next, ok := orderStatusNext[s]
	return next, ok
}

// CanTransitionTo reports whether next is the single forward step from s.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	want, ok := s.Next()
	return ok && want == next
}

// TransitionTo moves the order one step forward in its lifecycle.
func (o *Order) TransitionTo(next OrderStatus) error {
	if !next.IsValid() {
		return fmt.Errorf("unknown order status %q", next)
	}
	if !o.Status.CanTransitionTo(next) {
		return fmt.Errorf("cannot move order from %s to %s", o.Status, next)
	}
	o.Status = next
	return nil
}
