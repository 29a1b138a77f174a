// internal/services/order_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/readify-backend/internal/cache"
	"github.com/javajoker/readify-backend/internal/models"
	"github.com/javajoker/readify-backend/internal/repository"
	"github.com/javajoker/readify-backend/internal/utils"
)

// boundaryTimeout bounds calls to collaborators outside the database.
const boundaryTimeout = 3 * time.Second

type OrderService struct {
	store          repository.Store
	idempotency    cache.IdempotencyStore
	idempotencyTTL time.Duration
}

type OrderItemRequest struct {
	ProductID  uuid.UUID `json:"productId" validate:"required"`
	Name       string    `json:"product_name,omitempty"`
	Quantity   int       `json:"quantity" validate:"min=1"`
	Price      float64   `json:"price,omitempty" validate:"gte=0"`
	TotalPrice float64   `json:"totalPrice,omitempty" validate:"gte=0"`
}

type PlaceOrderRequest struct {
	ClientID    uuid.UUID          `json:"clientId" validate:"required"`
	Products    []OrderItemRequest `json:"products" validate:"required,min=1,dive"`
	TotalAmount float64            `json:"totalAmount" validate:"gte=0"`
}

type UpdateOrderStatusRequest struct {
	Status models.OrderStatus `json:"orderStatus" validate:"required"`
}

// OrderView is an order as listed to the account owner. Client is nil once
// the client has been deleted.
type OrderView struct {
	OrderID     uuid.UUID              `json:"orderId"`
	ClientID    uuid.UUID              `json:"clientId"`
	Client      *models.ClientSnapshot `json:"client"`
	Products    models.OrderLines      `json:"products"`
	TotalAmount float64                `json:"totalAmount"`
	OrderStatus models.OrderStatus     `json:"orderStatus"`
	DateOfOrder time.Time              `json:"dateOfOrder"`
}

type ReconcileReport struct {
	ProjectionsRemoved int64 `json:"projectionsRemoved"`
	ClientRefsRemoved  int64 `json:"clientRefsRemoved"`
}

func NewOrderService(store repository.Store, idempotency cache.IdempotencyStore, idempotencyTTL time.Duration) *OrderService {
	return &OrderService{
		store:          store,
		idempotency:    idempotency,
		idempotencyTTL: idempotencyTTL,
	}
}

// PlaceOrder deducts stock for every line item and records the order with
// its account projection and client back-reference in one transaction.
// A non-empty idempotencyKey makes retries of the same request return the
// order created by the first attempt.
func (s *OrderService) PlaceOrder(ctx context.Context, accountID uuid.UUID, req *PlaceOrderRequest, idempotencyKey string) (*models.Order, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, validationError(err)
	}

	if idempotencyKey == "" || s.idempotency == nil {
		return s.placeOrder(ctx, accountID, req)
	}

	key := utils.HashString(accountID.String() + ":" + idempotencyKey)

	reserveCtx, cancel := context.WithTimeout(ctx, boundaryTimeout)
	existing, reserved, err := s.idempotency.Reserve(reserveCtx, key, s.idempotencyTTL)
	cancel()
	if errors.Is(err, cache.ErrInFlight) {
		return nil, ErrOrderInFlight
	}
	if err != nil {
		return nil, fmt.Errorf("failed to reserve idempotency key: %w", err)
	}

	if !reserved {
		return s.replayOrder(ctx, accountID, existing)
	}

	order, err := s.placeOrder(ctx, accountID, req)

	boundaryCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), boundaryTimeout)
	defer cancel()

	if err != nil {
		if relErr := s.idempotency.Release(boundaryCtx, key); relErr != nil {
			logrus.WithError(relErr).WithField("account_id", accountID).Warn("Failed to release idempotency key")
		}
		return nil, err
	}

	if err := s.idempotency.Complete(boundaryCtx, key, order.ID.String(), s.idempotencyTTL); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"account_id": accountID,
			"order_id":   order.ID,
		}).Warn("Failed to record idempotency key")
	}

	return order, nil
}

func (s *OrderService) replayOrder(ctx context.Context, accountID uuid.UUID, storedID string) (*models.Order, error) {
	orderID, err := uuid.Parse(storedID)
	if err != nil {
		return nil, fmt.Errorf("corrupt idempotency record %q: %w", storedID, err)
	}

	order, err := s.getOwnedOrder(ctx, s.store, accountID, orderID)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"account_id": accountID,
		"order_id":   order.ID,
	}).Info("Replayed order for idempotency key")
	return order, nil
}

func (s *OrderService) placeOrder(ctx context.Context, accountID uuid.UUID, req *PlaceOrderRequest) (*models.Order, error) {
	var order *models.Order

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if _, err := tx.LockAccount(ctx, accountID); err != nil {
			if errors.Is(err, repository.ErrRecordNotFound) {
				return ErrAccountNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		// Line items are checked and deducted in request order, so a
		// repeated product sees the quantity left by its earlier line.
		lines := make(models.OrderLines, 0, len(req.Products))
		for _, item := range req.Products {
			product, err := tx.GetProduct(ctx, accountID, item.ProductID)
			if err != nil {
				if errors.Is(err, repository.ErrRecordNotFound) {
					return &InsufficientStockError{ProductID: item.ProductID.String(), Requested: item.Quantity}
				}
				return fmt.Errorf("database error: %w", err)
			}

			if product.Quantity < item.Quantity {
				return &InsufficientStockError{
					ProductID: product.ID.String(),
					Requested: item.Quantity,
					Available: product.Quantity,
				}
			}

			ok, err := tx.DecrementStock(ctx, accountID, product.ID, item.Quantity)
			if err != nil {
				return fmt.Errorf("failed to deduct stock: %w", err)
			}
			if !ok {
				return &InsufficientStockError{
					ProductID: product.ID.String(),
					Requested: item.Quantity,
					Available: product.Quantity,
				}
			}

			lines = append(lines, resolveLine(product, item))
		}

		totalAmount := req.TotalAmount
		if totalAmount <= 0 {
			totalAmount = lines.Total()
		}

		order = &models.Order{
			AccountID:   accountID,
			ClientID:    req.ClientID,
			Products:    lines,
			TotalAmount: totalAmount,
			Status:      models.OrderStatusPending,
			PlacedAt:    time.Now(),
		}
		if err := tx.CreateOrder(ctx, order); err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		// The back-reference is only written when the client exists.
		if _, err := tx.GetClient(ctx, accountID, req.ClientID); err == nil {
			ref := &models.ClientOrderRef{ClientID: req.ClientID, AccountID: accountID, OrderID: order.ID}
			if err := tx.AddClientOrderRef(ctx, ref); err != nil {
				return fmt.Errorf("failed to link order to client: %w", err)
			}
		} else if !errors.Is(err, repository.ErrRecordNotFound) {
			return fmt.Errorf("database error: %w", err)
		}

		projection := &models.AccountOrder{
			AccountID: accountID,
			OrderID:   order.ID,
			ClientID:  req.ClientID,
			Products:  lines.Clone(),
		}
		if err := tx.CreateAccountOrder(ctx, projection); err != nil {
			return fmt.Errorf("failed to record account order: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"account_id":   accountID,
		"order_id":     order.ID,
		"client_id":    order.ClientID,
		"line_items":   len(order.Products),
		"total_amount": order.TotalAmount,
	}).Info("Order placed")

	return order, nil
}

// resolveLine fills a line from the catalog. Caller-supplied prices, when
// positive, override the catalog price and computed line total.
func resolveLine(product *models.Product, item OrderItemRequest) models.OrderLine {
	unitPrice := product.Price
	if item.Price > 0 {
		unitPrice = item.Price
	}

	lineTotal := unitPrice * float64(item.Quantity)
	if item.TotalPrice > 0 {
		lineTotal = item.TotalPrice
	}

	return models.OrderLine{
		ProductID: product.ID,
		Name:      product.Name,
		Quantity:  item.Quantity,
		UnitPrice: unitPrice,
		LineTotal: lineTotal,
		Pictures:  append([]string{}, product.Pictures...),
	}
}

// DeleteOrder removes the order, its account projection and every client
// back-reference. Deducted stock is not restored.
func (s *OrderService) DeleteOrder(ctx context.Context, accountID, orderID uuid.UUID) error {
	return s.store.Transaction(ctx, func(tx repository.Store) error {
		order, err := s.getOwnedOrder(ctx, tx, accountID, orderID)
		if err != nil {
			return err
		}

		if _, err := tx.LockAccount(ctx, order.AccountID); err != nil {
			if errors.Is(err, repository.ErrRecordNotFound) {
				return ErrAccountNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		removed, err := tx.DeleteAccountOrder(ctx, order.AccountID, orderID)
		if err != nil {
			return fmt.Errorf("failed to remove account order: %w", err)
		}
		if removed == 0 {
			logrus.WithFields(logrus.Fields{
				"account_id": order.AccountID,
				"order_id":   orderID,
			}).Warn("Order had no account projection")
		}

		if _, err := tx.RemoveClientOrderRefs(ctx, order.AccountID, orderID); err != nil {
			return fmt.Errorf("failed to remove client order references: %w", err)
		}

		if err := tx.DeleteOrder(ctx, orderID); err != nil {
			if errors.Is(err, repository.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return fmt.Errorf("failed to delete order: %w", err)
		}

		logrus.WithFields(logrus.Fields{
			"account_id": order.AccountID,
			"order_id":   orderID,
		}).Info("Order deleted")
		return nil
	})
}

// ListOrders joins every account projection with its order and client.
// Projections whose order no longer exists are skipped and logged.
func (s *OrderService) ListOrders(ctx context.Context, accountID uuid.UUID) ([]OrderView, error) {
	if _, err := requireAccount(ctx, s.store, accountID); err != nil {
		return nil, err
	}

	entries, err := s.store.ListAccountOrders(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list account orders: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(entries))
	for _, entry := range entries {
		ids = append(ids, entry.OrderID)
	}

	orders, err := s.store.FindOrders(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}
	ordersByID := make(map[uuid.UUID]models.Order, len(orders))
	for _, order := range orders {
		ordersByID[order.ID] = order
	}

	clients, err := s.store.ListClients(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load clients: %w", err)
	}
	clientsByID := make(map[uuid.UUID]*models.Client, len(clients))
	for i := range clients {
		clientsByID[clients[i].ID] = &clients[i]
	}

	views := make([]OrderView, 0, len(entries))
	for _, entry := range entries {
		order, ok := ordersByID[entry.OrderID]
		if !ok {
			logrus.WithFields(logrus.Fields{
				"account_id": accountID,
				"order_id":   entry.OrderID,
			}).Warn("Skipping orphaned order projection")
			continue
		}

		views = append(views, OrderView{
			OrderID:     order.ID,
			ClientID:    entry.ClientID,
			Client:      snapshotOf(clientsByID[entry.ClientID]),
			Products:    entry.Products,
			TotalAmount: entry.Products.Total(),
			OrderStatus: order.Status,
			DateOfOrder: order.PlacedAt,
		})
	}

	return views, nil
}

// GetOrderView returns a single order of the account in listing form.
func (s *OrderService) GetOrderView(ctx context.Context, accountID, orderID uuid.UUID) (*OrderView, error) {
	order, err := s.getOwnedOrder(ctx, s.store, accountID, orderID)
	if err != nil {
		return nil, err
	}

	var client *models.Client
	if c, err := s.store.GetClient(ctx, accountID, order.ClientID); err == nil {
		client = c
	} else if !errors.Is(err, repository.ErrRecordNotFound) {
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &OrderView{
		OrderID:     order.ID,
		ClientID:    order.ClientID,
		Client:      snapshotOf(client),
		Products:    order.Products,
		TotalAmount: order.Products.Total(),
		OrderStatus: order.Status,
		DateOfOrder: order.PlacedAt,
	}, nil
}

// UpdateOrderStatus moves an order one step along Pending, Shipped, Delivered.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, accountID, orderID uuid.UUID, next models.OrderStatus) (*models.Order, error) {
	var order *models.Order

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		current, err := s.getOwnedOrder(ctx, tx, accountID, orderID)
		if err != nil {
			return err
		}

		previous := current.Status
		if err := current.TransitionTo(next); err != nil {
			return validationError(err)
		}

		ok, err := tx.UpdateOrderStatus(ctx, orderID, previous, next)
		if err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}
		if !ok {
			return fmt.Errorf("%w: order status changed concurrently", ErrConflict)
		}

		order = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"account_id": accountID,
		"order_id":   orderID,
		"status":     order.Status,
	}).Info("Order status updated")

	return order, nil
}

// ReconcileOrders removes account projections and client back-references
// that point at orders which no longer exist.
func (s *OrderService) ReconcileOrders(ctx context.Context, accountID uuid.UUID) (*ReconcileReport, error) {
	report := &ReconcileReport{}

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if _, err := tx.LockAccount(ctx, accountID); err != nil {
			if errors.Is(err, repository.ErrRecordNotFound) {
				return ErrAccountNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		entries, err := tx.ListAccountOrders(ctx, accountID)
		if err != nil {
			return fmt.Errorf("failed to list account orders: %w", err)
		}
		refs, err := tx.ListClientOrderRefs(ctx, accountID)
		if err != nil {
			return fmt.Errorf("failed to list client order references: %w", err)
		}

		referenced := make(map[uuid.UUID]struct{})
		for _, entry := range entries {
			referenced[entry.OrderID] = struct{}{}
		}
		for _, ref := range refs {
			referenced[ref.OrderID] = struct{}{}
		}

		ids := make([]uuid.UUID, 0, len(referenced))
		for id := range referenced {
			ids = append(ids, id)
		}
		orders, err := tx.FindOrders(ctx, ids)
		if err != nil {
			return fmt.Errorf("failed to load orders: %w", err)
		}
		live := make(map[uuid.UUID]struct{}, len(orders))
		for _, order := range orders {
			live[order.ID] = struct{}{}
		}

		for id := range referenced {
			if _, ok := live[id]; ok {
				continue
			}

			removed, err := tx.DeleteAccountOrder(ctx, accountID, id)
			if err != nil {
				return fmt.Errorf("failed to remove account order: %w", err)
			}
			report.ProjectionsRemoved += removed

			removed, err = tx.RemoveClientOrderRefs(ctx, accountID, id)
			if err != nil {
				return fmt.Errorf("failed to remove client order references: %w", err)
			}
			report.ClientRefsRemoved += removed
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if report.ProjectionsRemoved > 0 || report.ClientRefsRemoved > 0 {
		logrus.WithFields(logrus.Fields{
			"account_id":          accountID,
			"projections_removed": report.ProjectionsRemoved,
			"client_refs_removed": report.ClientRefsRemoved,
		}).Warn("Removed orphaned order references")
	}

	return report, nil
}

func (s *OrderService) getOwnedOrder(ctx context.Context, store repository.OrderRepository, accountID, orderID uuid.UUID) (*models.Order, error) {
	order, err := store.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	// Orders of other accounts are reported as missing.
	if order.AccountID != accountID {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func snapshotOf(client *models.Client) *models.ClientSnapshot {
	if client == nil {
		return nil
	}
	return client.Snapshot()
}
