// internal/repository/memory_store.go
package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/javajoker/readify-backend/internal/models"
)

// MemoryStore is an in-process Store. A transaction holds the store-wide
// lock and works on the live data; on error the pre-transaction snapshot is
// restored.
type MemoryStore struct {
	mu   sync.Mutex
	data *memoryData
}

type memoryData struct {
	accounts      []models.Account
	clients       []models.Client
	clientRefs    []models.ClientOrderRef
	products      []models.Product
	orders        []models.Order
	accountOrders []models.AccountOrder
	invoices      []models.Invoice
	auditLogs     []models.AuditLog
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: &memoryData{}}
}

func (s *MemoryStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	if err := fn(&memoryTx{data: s.data}); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

func (s *MemoryStore) run(fn func(tx *memoryTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&memoryTx{data: s.data})
}

func (d *memoryData) clone() *memoryData {
	out := &memoryData{
		accounts:      append([]models.Account(nil), d.accounts...),
		clientRefs:    append([]models.ClientOrderRef(nil), d.clientRefs...),
		auditLogs:     append([]models.AuditLog(nil), d.auditLogs...),
		clients:       make([]models.Client, len(d.clients)),
		products:      make([]models.Product, len(d.products)),
		orders:        make([]models.Order, len(d.orders)),
		accountOrders: make([]models.AccountOrder, len(d.accountOrders)),
		invoices:      make([]models.Invoice, len(d.invoices)),
	}
	copy(out.clients, d.clients)
	for i, p := range d.products {
		out.products[i] = copyProduct(p)
	}
	for i, o := range d.orders {
		out.orders[i] = copyOrder(o)
	}
	for i, e := range d.accountOrders {
		e.Products = e.Products.Clone()
		out.accountOrders[i] = e
	}
	for i, inv := range d.invoices {
		inv.Products = inv.Products.Clone()
		out.invoices[i] = inv
	}
	return out
}

func copyProduct(p models.Product) models.Product {
	if p.Pictures != nil {
		p.Pictures = append([]string(nil), p.Pictures...)
	}
	return p
}

func copyOrder(o models.Order) models.Order {
	o.Products = o.Products.Clone()
	return o
}

func stamp(base *models.BaseModel) {
	now := time.Now()
	if base.ID == uuid.Nil {
		base.ID = uuid.New()
	}
	if base.CreatedAt.IsZero() {
		base.CreatedAt = now
	}
	base.UpdatedAt = now
}

// memoryTx runs against the live data with the store lock already held.
type memoryTx struct {
	data *memoryData
}

func (t *memoryTx) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return fn(t)
}

func (t *memoryTx) CreateAccount(ctx context.Context, account *models.Account) error {
	for _, a := range t.data.accounts {
		if strings.EqualFold(a.Email, account.Email) {
			return ErrDuplicate
		}
	}
	stamp(&account.BaseModel)
	stored := *account
	stored.Clients, stored.Products, stored.Orders, stored.Invoices = nil, nil, nil, nil
	t.data.accounts = append(t.data.accounts, stored)
	return nil
}

func (t *memoryTx) GetAccount(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	for _, a := range t.data.accounts {
		if a.ID == id {
			account := a
			return &account, nil
		}
	}
	return nil, ErrRecordNotFound
}

func (t *memoryTx) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	for _, a := range t.data.accounts {
		if a.Email == email {
			account := a
			return &account, nil
		}
	}
	return nil, ErrRecordNotFound
}

func (t *memoryTx) LockAccount(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	return t.GetAccount(ctx, id)
}

func (t *memoryTx) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	for i := range t.data.accounts {
		if t.data.accounts[i].ID == id {
			t.data.accounts[i].LastLoginAt = &at
			return nil
		}
	}
	return ErrRecordNotFound
}

func (t *memoryTx) CreateClient(ctx context.Context, client *models.Client) error {
	stamp(&client.BaseModel)
	stored := *client
	stored.Orders = nil
	t.data.clients = append(t.data.clients, stored)
	return nil
}

func (t *memoryTx) clientWithRefs(c models.Client) models.Client {
	c.Orders = []models.ClientOrderRef{}
	for _, ref := range t.data.clientRefs {
		if ref.ClientID == c.ID {
			c.Orders = append(c.Orders, ref)
		}
	}
	return c
}

func (t *memoryTx) ListClients(ctx context.Context, accountID uuid.UUID) ([]models.Client, error) {
	var clients []models.Client
	for _, c := range t.data.clients {
		if c.AccountID == accountID {
			clients = append(clients, t.clientWithRefs(c))
		}
	}
	return clients, nil
}

func (t *memoryTx) GetClient(ctx context.Context, accountID, clientID uuid.UUID) (*models.Client, error) {
	for _, c := range t.data.clients {
		if c.ID == clientID && c.AccountID == accountID {
			client := t.clientWithRefs(c)
			return &client, nil
		}
	}
	return nil, ErrRecordNotFound
}

func (t *memoryTx) DeleteClient(ctx context.Context, accountID, clientID uuid.UUID) error {
	idx := -1
	for i, c := range t.data.clients {
		if c.ID == clientID && c.AccountID == accountID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrRecordNotFound
	}
	t.data.clients = append(t.data.clients[:idx:idx], t.data.clients[idx+1:]...)

	refs := t.data.clientRefs[:0:0]
	for _, ref := range t.data.clientRefs {
		if ref.ClientID != clientID {
			refs = append(refs, ref)
		}
	}
	t.data.clientRefs = refs
	return nil
}

func (t *memoryTx) AddClientOrderRef(ctx context.Context, ref *models.ClientOrderRef) error {
	for _, r := range t.data.clientRefs {
		if r.ClientID == ref.ClientID && r.OrderID == ref.OrderID {
			return ErrDuplicate
		}
	}
	if ref.ID == uuid.Nil {
		ref.ID = uuid.New()
	}
	if ref.CreatedAt.IsZero() {
		ref.CreatedAt = time.Now()
	}
	t.data.clientRefs = append(t.data.clientRefs, *ref)
	return nil
}

func (t *memoryTx) ListClientOrderRefs(ctx context.Context, accountID uuid.UUID) ([]models.ClientOrderRef, error) {
	var refs []models.ClientOrderRef
	for _, ref := range t.data.clientRefs {
		if ref.AccountID == accountID {
			refs = append(refs, ref)
		}
	}
	return refs, nil
}

func (t *memoryTx) RemoveClientOrderRefs(ctx context.Context, accountID, orderID uuid.UUID) (int64, error) {
	var removed int64
	refs := t.data.clientRefs[:0:0]
	for _, ref := range t.data.clientRefs {
		if ref.AccountID == accountID && ref.OrderID == orderID {
			removed++
			continue
		}
		refs = append(refs, ref)
	}
	t.data.clientRefs = refs
	return removed, nil
}

func (t *memoryTx) CreateProduct(ctx context.Context, product *models.Product) error {
	stamp(&product.BaseModel)
	t.data.products = append(t.data.products, copyProduct(*product))
	return nil
}

func (t *memoryTx) ListProducts(ctx context.Context, accountID uuid.UUID) ([]models.Product, error) {
	var products []models.Product
	for _, p := range t.data.products {
		if p.AccountID == accountID {
			products = append(products, copyProduct(p))
		}
	}
	return products, nil
}

func (t *memoryTx) productIndex(accountID, productID uuid.UUID) int {
	for i, p := range t.data.products {
		if p.ID == productID && p.AccountID == accountID {
			return i
		}
	}
	return -1
}

func (t *memoryTx) GetProduct(ctx context.Context, accountID, productID uuid.UUID) (*models.Product, error) {
	idx := t.productIndex(accountID, productID)
	if idx < 0 {
		return nil, ErrRecordNotFound
	}
	product := copyProduct(t.data.products[idx])
	return &product, nil
}

func (t *memoryTx) SaveProduct(ctx context.Context, product *models.Product) error {
	idx := t.productIndex(product.AccountID, product.ID)
	if idx < 0 {
		return ErrRecordNotFound
	}
	product.UpdatedAt = time.Now()
	t.data.products[idx] = copyProduct(*product)
	return nil
}

func (t *memoryTx) DeleteProduct(ctx context.Context, accountID, productID uuid.UUID) error {
	idx := t.productIndex(accountID, productID)
	if idx < 0 {
		return ErrRecordNotFound
	}
	t.data.products = append(t.data.products[:idx:idx], t.data.products[idx+1:]...)
	return nil
}

func (t *memoryTx) DecrementStock(ctx context.Context, accountID, productID uuid.UUID, qty int) (bool, error) {
	idx := t.productIndex(accountID, productID)
	if idx < 0 || t.data.products[idx].Quantity < qty {
		return false, nil
	}
	t.data.products[idx].Quantity -= qty
	t.data.products[idx].UpdatedAt = time.Now()
	return true, nil
}

func (t *memoryTx) CreateOrder(ctx context.Context, order *models.Order) error {
	stamp(&order.BaseModel)
	t.data.orders = append(t.data.orders, copyOrder(*order))
	return nil
}

func (t *memoryTx) orderIndex(id uuid.UUID) int {
	for i, o := range t.data.orders {
		if o.ID == id {
			return i
		}
	}
	return -1
}

func (t *memoryTx) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	idx := t.orderIndex(id)
	if idx < 0 {
		return nil, ErrRecordNotFound
	}
	order := copyOrder(t.data.orders[idx])
	return &order, nil
}

func (t *memoryTx) FindOrders(ctx context.Context, ids []uuid.UUID) ([]models.Order, error) {
	wanted := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	var orders []models.Order
	for _, o := range t.data.orders {
		if _, ok := wanted[o.ID]; ok {
			orders = append(orders, copyOrder(o))
		}
	}
	return orders, nil
}

func (t *memoryTx) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	idx := t.orderIndex(id)
	if idx < 0 {
		return ErrRecordNotFound
	}
	t.data.orders = append(t.data.orders[:idx:idx], t.data.orders[idx+1:]...)
	return nil
}

func (t *memoryTx) UpdateOrderStatus(ctx context.Context, id uuid.UUID, from, to models.OrderStatus) (bool, error) {
	idx := t.orderIndex(id)
	if idx < 0 || t.data.orders[idx].Status != from {
		return false, nil
	}
	t.data.orders[idx].Status = to
	t.data.orders[idx].UpdatedAt = time.Now()
	return true, nil
}

func (t *memoryTx) CreateAccountOrder(ctx context.Context, entry *models.AccountOrder) error {
	for _, e := range t.data.accountOrders {
		if e.AccountID == entry.AccountID && e.OrderID == entry.OrderID {
			return ErrDuplicate
		}
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	stored := *entry
	stored.Products = stored.Products.Clone()
	t.data.accountOrders = append(t.data.accountOrders, stored)
	return nil
}

func (t *memoryTx) ListAccountOrders(ctx context.Context, accountID uuid.UUID) ([]models.AccountOrder, error) {
	var entries []models.AccountOrder
	for _, e := range t.data.accountOrders {
		if e.AccountID == accountID {
			e.Products = e.Products.Clone()
			entries = append(entries, e)
		}
	}
	return entries, nil
}

func (t *memoryTx) DeleteAccountOrder(ctx context.Context, accountID, orderID uuid.UUID) (int64, error) {
	var removed int64
	entries := t.data.accountOrders[:0:0]
	for _, e := range t.data.accountOrders {
		if e.AccountID == accountID && e.OrderID == orderID {
			removed++
			continue
		}
		entries = append(entries, e)
	}
	t.data.accountOrders = entries
	return removed, nil
}

func (t *memoryTx) CreateInvoice(ctx context.Context, invoice *models.Invoice) error {
	for _, inv := range t.data.invoices {
		if inv.InvoiceNum == invoice.InvoiceNum {
			return ErrDuplicate
		}
	}
	stamp(&invoice.BaseModel)
	stored := *invoice
	stored.Products = stored.Products.Clone()
	t.data.invoices = append(t.data.invoices, stored)
	return nil
}

func (t *memoryTx) ListInvoices(ctx context.Context, accountID uuid.UUID) ([]models.Invoice, error) {
	var invoices []models.Invoice
	for _, inv := range t.data.invoices {
		if inv.AccountID == accountID {
			inv.Products = inv.Products.Clone()
			invoices = append(invoices, inv)
		}
	}
	sort.SliceStable(invoices, func(i, j int) bool {
		return invoices[i].IssuedAt.After(invoices[j].IssuedAt)
	})
	return invoices, nil
}

func (t *memoryTx) findInvoice(match func(models.Invoice) bool) (*models.Invoice, error) {
	for _, inv := range t.data.invoices {
		if match(inv) {
			inv.Products = inv.Products.Clone()
			return &inv, nil
		}
	}
	return nil, ErrRecordNotFound
}

func (t *memoryTx) GetInvoice(ctx context.Context, accountID, invoiceID uuid.UUID) (*models.Invoice, error) {
	return t.findInvoice(func(inv models.Invoice) bool {
		return inv.ID == invoiceID && inv.AccountID == accountID
	})
}

func (t *memoryTx) GetInvoiceByOrder(ctx context.Context, accountID, orderID uuid.UUID) (*models.Invoice, error) {
	return t.findInvoice(func(inv models.Invoice) bool {
		return inv.OrderID == orderID && inv.AccountID == accountID
	})
}

func (t *memoryTx) SaveInvoice(ctx context.Context, invoice *models.Invoice) error {
	for i, inv := range t.data.invoices {
		if inv.ID == invoice.ID && inv.AccountID == invoice.AccountID {
			invoice.UpdatedAt = time.Now()
			stored := *invoice
			stored.Products = stored.Products.Clone()
			t.data.invoices[i] = stored
			return nil
		}
	}
	return ErrRecordNotFound
}

func (t *memoryTx) CreateAuditLog(ctx context.Context, entry *models.AuditLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	t.data.auditLogs = append(t.data.auditLogs, *entry)
	return nil
}

// AuditLogs returns the recorded audit entries.
func (s *MemoryStore) AuditLogs() []models.AuditLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.AuditLog(nil), s.data.auditLogs...)
}

// Non-transactional entry points take the store lock per call.

func (s *MemoryStore) CreateAccount(ctx context.Context, account *models.Account) error {
	return s.run(func(tx *memoryTx) error { return tx.CreateAccount(ctx, account) })
}

func (s *MemoryStore) GetAccount(ctx context.Context, id uuid.UUID) (account *models.Account, err error) {
	err = s.run(func(tx *memoryTx) error {
		account, err = tx.GetAccount(ctx, id)
		return err
	})
	return account, err
}

func (s *MemoryStore) GetAccountByEmail(ctx context.Context, email string) (account *models.Account, err error) {
	err = s.run(func(tx *memoryTx) error {
		account, err = tx.GetAccountByEmail(ctx, email)
		return err
	})
	return account, err
}

func (s *MemoryStore) LockAccount(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	return s.GetAccount(ctx, id)
}

func (s *MemoryStore) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return s.run(func(tx *memoryTx) error { return tx.TouchLastLogin(ctx, id, at) })
}

func (s *MemoryStore) CreateClient(ctx context.Context, client *models.Client) error {
	return s.run(func(tx *memoryTx) error { return tx.CreateClient(ctx, client) })
}

func (s *MemoryStore) ListClients(ctx context.Context, accountID uuid.UUID) (clients []models.Client, err error) {
	err = s.run(func(tx *memoryTx) error {
		clients, err = tx.ListClients(ctx, accountID)
		return err
	})
	return clients, err
}

func (s *MemoryStore) GetClient(ctx context.Context, accountID, clientID uuid.UUID) (client *models.Client, err error) {
	err = s.run(func(tx *memoryTx) error {
		client, err = tx.GetClient(ctx, accountID, clientID)
		return err
	})
	return client, err
}

func (s *MemoryStore) DeleteClient(ctx context.Context, accountID, clientID uuid.UUID) error {
	return s.run(func(tx *memoryTx) error { return tx.DeleteClient(ctx, accountID, clientID) })
}

func (s *MemoryStore) AddClientOrderRef(ctx context.Context, ref *models.ClientOrderRef) error {
	return s.run(func(tx *memoryTx) error { return tx.AddClientOrderRef(ctx, ref) })
}

func (s *MemoryStore) ListClientOrderRefs(ctx context.Context, accountID uuid.UUID) (refs []models.ClientOrderRef, err error) {
	err = s.run(func(tx *memoryTx) error {
		refs, err = tx.ListClientOrderRefs(ctx, accountID)
		return err
	})
	return refs, err
}

func (s *MemoryStore) RemoveClientOrderRefs(ctx context.Context, accountID, orderID uuid.UUID) (n int64, err error) {
	err = s.run(func(tx *memoryTx) error {
		n, err = tx.RemoveClientOrderRefs(ctx, accountID, orderID)
		return err
	})
	return n, err
}

func (s *MemoryStore) CreateProduct(ctx context.Context, product *models.Product) error {
	return s.run(func(tx *memoryTx) error { return tx.CreateProduct(ctx, product) })
}

func (s *MemoryStore) ListProducts(ctx context.Context, accountID uuid.UUID) (products []models.Product, err error) {
	err = s.run(func(tx *memoryTx) error {
		products, err = tx.ListProducts(ctx, accountID)
		return err
	})
	return products, err
}

func (s *MemoryStore) GetProduct(ctx context.Context, accountID, productID uuid.UUID) (product *models.Product, err error) {
	err = s.run(func(tx *memoryTx) error {
		product, err = tx.GetProduct(ctx, accountID, productID)
		return err
	})
	return product, err
}

func (s *MemoryStore) SaveProduct(ctx context.Context, product *models.Product) error {
	return s.run(func(tx *memoryTx) error { return tx.SaveProduct(ctx, product) })
}

func (s *MemoryStore) DeleteProduct(ctx context.Context, accountID, productID uuid.UUID) error {
	return s.run(func(tx *memoryTx) error { return tx.DeleteProduct(ctx, accountID, productID) })
}

func (s *MemoryStore) DecrementStock(ctx context.Context, accountID, productID uuid.UUID, qty int) (ok bool, err error) {
	err = s.run(func(tx *memoryTx) error {
		ok, err = tx.DecrementStock(ctx, accountID, productID, qty)
		return err
	})
	return ok, err
}

func (s *MemoryStore) CreateOrder(ctx context.Context, order *models.Order) error {
	return s.run(func(tx *memoryTx) error { return tx.CreateOrder(ctx, order) })
}

func (s *MemoryStore) GetOrder(ctx context.Context, id uuid.UUID) (order *models.Order, err error) {
	err = s.run(func(tx *memoryTx) error {
		order, err = tx.GetOrder(ctx, id)
		return err
	})
	return order, err
}

func (s *MemoryStore) FindOrders(ctx context.Context, ids []uuid.UUID) (orders []models.Order, err error) {
	err = s.run(func(tx *memoryTx) error {
		orders, err = tx.FindOrders(ctx, ids)
		return err
	})
	return orders, err
}

func (s *MemoryStore) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	return s.run(func(tx *memoryTx) error { return tx.DeleteOrder(ctx, id) })
}

func (s *MemoryStore) UpdateOrderStatus(ctx context.Context, id uuid.UUID, from, to models.OrderStatus) (ok bool, err error) {
	err = s.run(func(tx *memoryTx) error {
		ok, err = tx.UpdateOrderStatus(ctx, id, from, to)
		return err
	})
	return ok, err
}

func (s *MemoryStore) CreateAccountOrder(ctx context.Context, entry *models.AccountOrder) error {
	return s.run(func(tx *memoryTx) error { return tx.CreateAccountOrder(ctx, entry) })
}

func (s *MemoryStore) ListAccountOrders(ctx context.Context, accountID uuid.UUID) (entries []models.AccountOrder, err error) {
	err = s.run(func(tx *memoryTx) error {
		entries, err = tx.ListAccountOrders(ctx, accountID)
		return err
	})
	return entries, err
}

func (s *MemoryStore) DeleteAccountOrder(ctx context.Context, accountID, orderID uuid.UUID) (n int64, err error) {
	err = s.run(func(tx *memoryTx) error {
		n, err = tx.DeleteAccountOrder(ctx, accountID, orderID)
		return err
	})
	return n, err
}

func (s *MemoryStore) CreateInvoice(ctx context.Context, invoice *models.Invoice) error {
	return s.run(func(tx *memoryTx) error { return tx.CreateInvoice(ctx, invoice) })
}

func (s *MemoryStore) ListInvoices(ctx context.Context, accountID uuid.UUID) (invoices []models.Invoice, err error) {
	err = s.run(func(tx *memoryTx) error {
		invoices, err = tx.ListInvoices(ctx, accountID)
		return err
	})
	return invoices, err
}

func (s *MemoryStore) GetInvoice(ctx context.Context, accountID, invoiceID uuid.UUID) (invoice *models.Invoice, err error) {
	err = s.run(func(tx *memoryTx) error {
		invoice, err = tx.GetInvoice(ctx, accountID, invoiceID)
		return err
	})
	return invoice, err
}

func (s *MemoryStore) GetInvoiceByOrder(ctx context.Context, accountID, orderID uuid.UUID) (invoice *models.Invoice, err error) {
	err = s.run(func(tx *memoryTx) error {
		invoice, err = tx.GetInvoiceByOrder(ctx, accountID, orderID)
		return err
	})
	return invoice, err
}

func (s *MemoryStore) SaveInvoice(ctx context.Context, invoice *models.Invoice) error {
	return s.run(func(tx *memoryTx) error { return tx.SaveInvoice(ctx, invoice) })
}

func (s *MemoryStore) CreateAuditLog(ctx context.Context, entry *models.AuditLog) error {
	return s.run(func(tx *memoryTx) error { return tx.CreateAuditLog(ctx, entry) })
}

var (
	_ Store = (*GormStore)(nil)
	_ Store = (*MemoryStore)(nil)
	_ Store = (*memoryTx)(nil)
)
