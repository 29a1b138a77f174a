// internal/repository/gorm_store.go
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/javajoker/readify-backend/internal/models"
)

// GormStore is the PostgreSQL-backed Store.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// translate maps driver errors onto the repository sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrRecordNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	}
	return err
}

func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

// Accounts

func (s *GormStore) CreateAccount(ctx context.Context, account *models.Account) error {
	return translate(s.conn(ctx).Create(account).Error)
}

func (s *GormStore) GetAccount(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	var account models.Account
	if err := s.conn(ctx).First(&account, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &account, nil
}

func (s *GormStore) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	var account models.Account
	if err := s.conn(ctx).Where("email = ?", email).First(&account).Error; err != nil {
		return nil, translate(err)
	}
	return &account, nil
}

func (s *GormStore) LockAccount(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	var account models.Account
	err := s.conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&account, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &account, nil
}

func (s *GormStore) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return translate(s.conn(ctx).Model(&models.Account{}).
		Where("id = ?", id).
		Update("last_login_at", at).Error)
}

// Clients

func (s *GormStore) CreateClient(ctx context.Context, client *models.Client) error {
	return translate(s.conn(ctx).Omit("Orders").Create(client).Error)
}

func (s *GormStore) ListClients(ctx context.Context, accountID uuid.UUID) ([]models.Client, error) {
	var clients []models.Client
	err := s.conn(ctx).
		Preload("Orders", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Where("account_id = ?", accountID).
		Order("created_at ASC").
		Find(&clients).Error
	if err != nil {
		return nil, translate(err)
	}
	return clients, nil
}

func (s *GormStore) GetClient(ctx context.Context, accountID, clientID uuid.UUID) (*models.Client, error) {
	var client models.Client
	err := s.conn(ctx).
		Preload("Orders").
		Where("id = ? AND account_id = ?", clientID, accountID).
		First(&client).Error
	if err != nil {
		return nil, translate(err)
	}
	return &client, nil
}

func (s *GormStore) DeleteClient(ctx context.Context, accountID, clientID uuid.UUID) error {
	db := s.conn(ctx)
	if err := db.Where("client_id = ? AND account_id = ?", clientID, accountID).
		Delete(&models.ClientOrderRef{}).Error; err != nil {
		return translate(err)
	}

	result := db.Where("id = ? AND account_id = ?", clientID, accountID).Delete(&models.Client{})
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (s *GormStore) AddClientOrderRef(ctx context.Context, ref *models.ClientOrderRef) error {
	if ref.ID == uuid.Nil {
		ref.ID = uuid.New()
	}
	return translate(s.conn(ctx).Create(ref).Error)
}

func (s *GormStore) ListClientOrderRefs(ctx context.Context, accountID uuid.UUID) ([]models.ClientOrderRef, error) {
	var refs []models.ClientOrderRef
	if err := s.conn(ctx).Where("account_id = ?", accountID).Find(&refs).Error; err != nil {
		return nil, translate(err)
	}
	return refs, nil
}

func (s *GormStore) RemoveClientOrderRefs(ctx context.Context, accountID, orderID uuid.UUID) (int64, error) {
	result := s.conn(ctx).
		Where("account_id = ? AND order_id = ?", accountID, orderID).
		Delete(&models.ClientOrderRef{})
	return result.RowsAffected, translate(result.Error)
}

// Products

func (s *GormStore) CreateProduct(ctx context.Context, product *models.Product) error {
	return translate(s.conn(ctx).Create(product).Error)
}

func (s *GormStore) ListProducts(ctx context.Context, accountID uuid.UUID) ([]models.Product, error) {
	var products []models.Product
	err := s.conn(ctx).
		Where("account_id = ?", accountID).
		Order("created_at ASC").
		Find(&products).Error
	if err != nil {
		return nil, translate(err)
	}
	return products, nil
}

func (s *GormStore) GetProduct(ctx context.Context, accountID, productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := s.conn(ctx).
		Where("id = ? AND account_id = ?", productID, accountID).
		First(&product).Error
	if err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

func (s *GormStore) SaveProduct(ctx context.Context, product *models.Product) error {
	return translate(s.conn(ctx).Save(product).Error)
}

func (s *GormStore) DeleteProduct(ctx context.Context, accountID, productID uuid.UUID) error {
	result := s.conn(ctx).
		Where("id = ? AND account_id = ?", productID, accountID).
		Delete(&models.Product{})
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (s *GormStore) DecrementStock(ctx context.Context, accountID, productID uuid.UUID, qty int) (bool, error) {
	result := s.conn(ctx).Model(&models.Product{}).
		Where("id = ? AND account_id = ? AND quantity >= ?", productID, accountID, qty).
		UpdateColumn("quantity", gorm.Expr("quantity - ?", qty))
	if result.Error != nil {
		return false, translate(result.Error)
	}
	return result.RowsAffected == 1, nil
}

// Orders

func (s *GormStore) CreateOrder(ctx context.Context, order *models.Order) error {
	return translate(s.conn(ctx).Create(order).Error)
}

func (s *GormStore) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := s.conn(ctx).First(&order, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

func (s *GormStore) FindOrders(ctx context.Context, ids []uuid.UUID) ([]models.Order, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var orders []models.Order
	if err := s.conn(ctx).Where("id IN ?", ids).Find(&orders).Error; err != nil {
		return nil, translate(err)
	}
	return orders, nil
}

func (s *GormStore) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	result := s.conn(ctx).Delete(&models.Order{}, "id = ?", id)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (s *GormStore) UpdateOrderStatus(ctx context.Context, id uuid.UUID, from, to models.OrderStatus) (bool, error) {
	result := s.conn(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return false, translate(result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (s *GormStore) CreateAccountOrder(ctx context.Context, entry *models.AccountOrder) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	return translate(s.conn(ctx).Create(entry).Error)
}

func (s *GormStore) ListAccountOrders(ctx context.Context, accountID uuid.UUID) ([]models.AccountOrder, error) {
	var entries []models.AccountOrder
	err := s.conn(ctx).
		Where("account_id = ?", accountID).
		Order("created_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, translate(err)
	}
	return entries, nil
}

func (s *GormStore) DeleteAccountOrder(ctx context.Context, accountID, orderID uuid.UUID) (int64, error) {
	result := s.conn(ctx).
		Where("account_id = ? AND order_id = ?", accountID, orderID).
		Delete(&models.AccountOrder{})
	return result.RowsAffected, translate(result.Error)
}

// Invoices

func (s *GormStore) CreateInvoice(ctx context.Context, invoice *models.Invoice) error {
	return translate(s.conn(ctx).Create(invoice).Error)
}

func (s *GormStore) ListInvoices(ctx context.Context, accountID uuid.UUID) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := s.conn(ctx).
		Where("account_id = ?", accountID).
		Order("issued_at DESC").
		Find(&invoices).Error
	if err != nil {
		return nil, translate(err)
	}
	return invoices, nil
}

func (s *GormStore) GetInvoice(ctx context.Context, accountID, invoiceID uuid.UUID) (*models.Invoice, error) {
	var invoice models.Invoice
	err := s.conn(ctx).
		Where("id = ? AND account_id = ?", invoiceID, accountID).
		First(&invoice).Error
	if err != nil {
		return nil, translate(err)
	}
	return &invoice, nil
}

func (s *GormStore) GetInvoiceByOrder(ctx context.Context, accountID, orderID uuid.UUID) (*models.Invoice, error) {
	var invoice models.Invoice
	err := s.conn(ctx).
		Where("order_id = ? AND account_id = ?", orderID, accountID).
		First(&invoice).Error
	if err != nil {
		return nil, translate(err)
	}
	return &invoice, nil
}

func (s *GormStore) SaveInvoice(ctx context.Context, invoice *models.Invoice) error {
	return translate(s.conn(ctx).Save(invoice).Error)
}

// Audit

func (s *GormStore) CreateAuditLog(ctx context.Context, entry *models.AuditLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	return translate(s.conn(ctx).Create(entry).Error)
}
