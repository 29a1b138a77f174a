package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/readify-backend/internal/models"
)

func seedProduct(t *testing.T, store Store, accountID uuid.UUID, qty int) *models.Product {
	t.Helper()
	product := &models.Product{AccountID: accountID, Name: "Pen", Price: 10, Quantity: qty, Pictures: []string{"pen.png"}}
	require.NoError(t, store.CreateProduct(context.Background(), product))
	return product
}

func TestMemoryStore_TransactionRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	accountID := uuid.New()
	product := seedProduct(t, store, accountID, 5)

	boom := errors.New("boom")
	err := store.Transaction(ctx, func(tx Store) error {
		ok, err := tx.DecrementStock(ctx, accountID, product.ID, 3)
		require.NoError(t, err)
		require.True(t, ok)
		require.NoError(t, tx.CreateOrder(ctx, &models.Order{AccountID: accountID}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := store.GetProduct(ctx, accountID, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Quantity)

	entries, err := store.ListAccountOrders(ctx, accountID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestMemoryStore_TransactionCommits(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	accountID := uuid.New()
	product := seedProduct(t, store, accountID, 5)

	err := store.Transaction(ctx, func(tx Store) error {
		_, err := tx.DecrementStock(ctx, accountID, product.ID, 2)
		return err
	})
	require.NoError(t, err)

	got, err := store.GetProduct(ctx, accountID, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Quantity)
}

func TestMemoryStore_DecrementStockNeverGoesNegative(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	accountID := uuid.New()
	product := seedProduct(t, store, accountID, 2)

	ok, err := store.DecrementStock(ctx, accountID, product.ID, 3)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.DecrementStock(ctx, accountID, product.ID, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.DecrementStock(ctx, accountID, product.ID, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	// another account's product is invisible
	ok, err = store.DecrementStock(ctx, uuid.New(), product.ID, 0)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	accountID := uuid.New()
	product := seedProduct(t, store, accountID, 2)

	got, err := store.GetProduct(ctx, accountID, product.ID)
	require.NoError(t, err)
	got.Quantity = 100
	got.Pictures[0] = "changed.png"

	again, err := store.GetProduct(ctx, accountID, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, again.Quantity)
	assert.Equal(t, "pen.png", again.Pictures[0])
}

func TestMemoryStore_DeleteClientDropsRefsOnly(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	accountID := uuid.New()

	client := &models.Client{AccountID: accountID, Name: "Acme", Address: "1 Road", PhoneNo: "555"}
	require.NoError(t, store.CreateClient(ctx, client))

	order := &models.Order{AccountID: accountID, ClientID: client.ID, Status: models.OrderStatusPending}
	require.NoError(t, store.CreateOrder(ctx, order))
	require.NoError(t, store.AddClientOrderRef(ctx, &models.ClientOrderRef{
		ClientID: client.ID, AccountID: accountID, OrderID: order.ID,
	}))

	got, err := store.GetClient(ctx, accountID, client.ID)
	require.NoError(t, err)
	require.Len(t, got.Orders, 1)
	assert.Equal(t, order.ID, got.Orders[0].OrderID)

	require.NoError(t, store.DeleteClient(ctx, accountID, client.ID))
	_, err = store.GetClient(ctx, accountID, client.ID)
	assert.ErrorIs(t, err, ErrRecordNotFound)

	refs, err := store.ListClientOrderRefs(ctx, accountID)
	require.NoError(t, err)
	assert.Empty(t, refs)

	_, err = store.GetOrder(ctx, order.ID)
	assert.NoError(t, err)

	assert.ErrorIs(t, store.DeleteClient(ctx, accountID, client.ID), ErrRecordNotFound)
}

func TestMemoryStore_UpdateOrderStatusIsConditional(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	order := &models.Order{AccountID: uuid.New(), Status: models.OrderStatusPending}
	require.NoError(t, store.CreateOrder(ctx, order))

	ok, err := store.UpdateOrderStatus(ctx, order.ID, models.OrderStatusShipped, models.OrderStatusDelivered)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.UpdateOrderStatus(ctx, order.ID, models.OrderStatusPending, models.OrderStatusShipped)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := store.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipped, got.Status)
}

func TestMemoryStore_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.CreateAccount(ctx, &models.Account{Email: "a@example.com"}))
	err := store.CreateAccount(ctx, &models.Account{Email: "a@example.com"})
	assert.ErrorIs(t, err, ErrDuplicate)
}
