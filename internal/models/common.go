// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// BeforeCreate assigns an id client-side so the id is known before the
// row is written (the memory store relies on this too).
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// OrderLine is one resolved product/quantity pair inside an order.
type OrderLine struct {
	ProductID uuid.UUID `json:"productId"`
	Name      string    `json:"product_name"`
	Quantity  int       `json:"product_quantity"`
	UnitPrice float64   `json:"product_price"`
	LineTotal float64   `json:"totalPrice"`
	Pictures  []string  `json:"product_pictures"`
}

// OrderLines is stored as a JSONB array.
type OrderLines []OrderLine

func (l OrderLines) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

func (l *OrderLines) Scan(value interface{}) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into OrderLines", value)
	}
	return json.Unmarshal(data, l)
}

// Total sums the line totals.
func (l OrderLines) Total() float64 {
	var total float64
	for _, line := range l {
		total += line.LineTotal
	}
	return total
}

// Clone returns a deep copy of the lines.
func (l OrderLines) Clone() OrderLines {
	if l == nil {
		return nil
	}
	out := make(OrderLines, len(l))
	for i, line := range l {
		line.Pictures = append([]string(nil), line.Pictures...)
		out[i] = line
	}
	return out
}

// Enums
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "Pending"
	OrderStatusShipped   OrderStatus = "Shipped"
	OrderStatusDelivered OrderStatus = "Delivered"
)

type PaymentMethod string

const (
	PaymentMethodOnline PaymentMethod = "Online"
	PaymentMethodCOD    PaymentMethod = "COD"
)

type InvoiceStatus string

const (
	InvoiceStatusToBeDelivered InvoiceStatus = "To be Delivered"
	InvoiceStatusDelivered     InvoiceStatus = "Delivered"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "Pending"
	PaymentStatusPaid    PaymentStatus = "Paid"
)
