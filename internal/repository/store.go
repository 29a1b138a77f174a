// Package repository defines the data store used by the services and its
// PostgreSQL (GORM) and in-memory implementations.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/javajoker/readify-backend/internal/models"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicate      = errors.New("duplicate record")
)

type AccountRepository interface {
	CreateAccount(ctx context.Context, account *models.Account) error
	GetAccount(ctx context.Context, id uuid.UUID) (*models.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*models.Account, error)
	// LockAccount loads the account and holds a write lock on it until the
	// surrounding transaction ends.
	LockAccount(ctx context.Context, id uuid.UUID) (*models.Account, error)
	TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type ClientRepository interface {
	CreateClient(ctx context.Context, client *models.Client) error
	// ListClients returns the account's clients with their order references.
	ListClients(ctx context.Context, accountID uuid.UUID) ([]models.Client, error)
	GetClient(ctx context.Context, accountID, clientID uuid.UUID) (*models.Client, error)
	// DeleteClient removes the client and its order references.
	DeleteClient(ctx context.Context, accountID, clientID uuid.UUID) error
	AddClientOrderRef(ctx context.Context, ref *models.ClientOrderRef) error
	ListClientOrderRefs(ctx context.Context, accountID uuid.UUID) ([]models.ClientOrderRef, error)
	RemoveClientOrderRefs(ctx context.Context, accountID, orderID uuid.UUID) (int64, error)
}

type ProductRepository interface {
	CreateProduct(ctx context.Context, product *models.Product) error
	ListProducts(ctx context.Context, accountID uuid.UUID) ([]models.Product, error)
	GetProduct(ctx context.Context, accountID, productID uuid.UUID) (*models.Product, error)
	SaveProduct(ctx context.Context, product *models.Product) error
	DeleteProduct(ctx context.Context, accountID, productID uuid.UUID) error
	// DecrementStock subtracts qty only if at least qty units are available.
	// It reports whether the decrement happened.
	DecrementStock(ctx context.Context, accountID, productID uuid.UUID, qty int) (bool, error)
}

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindOrders(ctx context.Context, ids []uuid.UUID) ([]models.Order, error)
	DeleteOrder(ctx context.Context, id uuid.UUID) error
	// UpdateOrderStatus moves the order from one status to another and
	// reports false when the order was not in the expected status.
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, from, to models.OrderStatus) (bool, error)

	CreateAccountOrder(ctx context.Context, entry *models.AccountOrder) error
	ListAccountOrders(ctx context.Context, accountID uuid.UUID) ([]models.AccountOrder, error)
	DeleteAccountOrder(ctx context.Context, accountID, orderID uuid.UUID) (int64, error)
}

type InvoiceRepository interface {
	CreateInvoice(ctx context.Context, invoice *models.Invoice) error
	ListInvoices(ctx context.Context, accountID uuid.UUID) ([]models.Invoice, error)
	GetInvoice(ctx context.Context, accountID, invoiceID uuid.UUID) (*models.Invoice, error)
	GetInvoiceByOrder(ctx context.Context, accountID, orderID uuid.UUID) (*models.Invoice, error)
	SaveInvoice(ctx context.Context, invoice *models.Invoice) error
}

type AuditRepository interface {
	CreateAuditLog(ctx context.Context, entry *models.AuditLog) error
}

// Store is the full data store. Transaction runs fn against a Store bound to
// a single transaction; returning an error rolls every write back.
type Store interface {
	AccountRepository
	ClientRepository
	ProductRepository
	OrderRepository
	InvoiceRepository
	AuditRepository

	Transaction(ctx context.Context, fn func(tx Store) error) error
}
