// internal/models/account.go
package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Account is the single tenant that owns clients, products, orders and invoices.
type Account struct {
	BaseModel
	Email        string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string     `json:"-" gorm:"size:255;not null"`
	LastLoginAt  *time.Time `json:"lastLoginAt"`

	// Relationships
	Clients  []Client       `json:"clients,omitempty" gorm:"foreignKey:AccountID"`
	Products []Product      `json:"products,omitempty" gorm:"foreignKey:AccountID"`
	Orders   []AccountOrder `json:"orders,omitempty" gorm:"foreignKey:AccountID"`
	Invoices []Invoice      `json:"invoices,omitempty" gorm:"foreignKey:AccountID"`
}

func (a *Account) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.PasswordHash = string(hashedPassword)
	return nil
}

func (a *Account) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password))
}
