// internal/models/invoice.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type Invoice struct {
	BaseModel
	AccountID        uuid.UUID     `json:"userId" gorm:"type:uuid;not null;index"`
	OrderID          uuid.UUID     `json:"orderId" gorm:"type:uuid;not null;index"`
	InvoiceNum       string        `json:"invoiceNum" gorm:"size:32;uniqueIndex;not null"`
	ClientID         uuid.UUID     `json:"clientId" gorm:"type:uuid;not null"`
	ClientName       string        `json:"clientName" gorm:"size:255"`
	ClientAddress    string        `json:"clientAddress" gorm:"type:text"`
	Products         OrderLines    `json:"products" gorm:"type:jsonb;not null"`
	TotalAmount      float64       `json:"totalAmount" gorm:"type:decimal(12,2);not null"`
	IssuedAt         time.Time     `json:"dateOfIssuance" gorm:"not null"`
	PaymentMethod    PaymentMethod `json:"paymentMethod" gorm:"type:varchar(10);default:'COD';not null"`
	Status           InvoiceStatus `json:"status" gorm:"type:varchar(20);default:'To be Delivered'"`
	PaymentStatus    PaymentStatus `json:"paymentStatus" gorm:"type:varchar(10);default:'Pending';index"`
	PaymentReference string        `json:"paymentReference,omitempty" gorm:"size:255"`
}

func (m PaymentMethod) IsValid() bool {
	return m == PaymentMethodOnline || m == PaymentMethodCOD
}
