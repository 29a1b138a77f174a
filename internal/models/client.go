// internal/models/client.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type Client struct {
	BaseModel
	AccountID uuid.UUID `json:"userId" gorm:"type:uuid;not null;index"`
	Name      string    `json:"name" gorm:"size:255;not null"`
	Address   string    `json:"address" gorm:"type:text;not null"`
	PhoneNo   string    `json:"phoneNo" gorm:"size:32;not null"`

	// Back-references to orders placed for this client
	Orders []ClientOrderRef `json:"orders" gorm:"foreignKey:ClientID"`
}

// ClientOrderRef links a client to a normalized order.
type ClientOrderRef struct {
	ID        uuid.UUID `json:"-" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ClientID  uuid.UUID `json:"-" gorm:"type:uuid;not null;uniqueIndex:idx_client_orders_client_order"`
	AccountID uuid.UUID `json:"-" gorm:"type:uuid;not null;index"`
	OrderID   uuid.UUID `json:"orderId" gorm:"type:uuid;not null;uniqueIndex:idx_client_orders_client_order;index"`
	CreatedAt time.Time `json:"-"`
}

func (ClientOrderRef) TableName() string {
	return "client_orders"
}

// ClientSnapshot is the display subset of a client embedded in order views.
type ClientSnapshot struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	PhoneNo string `json:"phoneNo"`
}

func (c *Client) Snapshot() *ClientSnapshot {
	return &ClientSnapshot{Name: c.Name, Address: c.Address, PhoneNo: c.PhoneNo}
}
