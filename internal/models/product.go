// internal/models/product.go
package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Product is a catalog entry; Quantity is the available stock and never goes negative.
type Product struct {
	BaseModel
	AccountID uuid.UUID      `json:"userId" gorm:"type:uuid;not null;index"`
	Name      string         `json:"product_name" gorm:"size:255;not null"`
	Price     float64        `json:"product_price" gorm:"type:decimal(12,2);not null"`
	Quantity  int            `json:"product_quantity" gorm:"not null;check:quantity >= 0"`
	Pictures  pq.StringArray `json:"product_pictures" gorm:"type:text[]"`
}
