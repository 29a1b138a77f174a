// internal/services/invoice_service.go
package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/readify-backend/internal/config"
	"github.com/javajoker/readify-backend/internal/models"
	"github.com/javajoker/readify-backend/internal/repository"
	"github.com/javajoker/readify-backend/internal/utils"
)

// invoiceNumberAttempts bounds retries when a generated number collides.
const invoiceNumberAttempts = 3

type InvoiceService struct {
	store         repository.Store
	orders        *OrderService
	notifications *NotificationService
	renderer      *InvoiceRenderer
}

type GenerateInvoiceRequest struct {
	OrderID       uuid.UUID            `json:"orderId" validate:"required"`
	PaymentMethod models.PaymentMethod `json:"paymentMethod" validate:"omitempty,oneof=Online COD"`
}

func NewInvoiceService(store repository.Store, orders *OrderService, notifications *NotificationService, cfg *config.Config) *InvoiceService {
	return &InvoiceService{
		store:         store,
		orders:        orders,
		notifications: notifications,
		renderer:      NewInvoiceRenderer(cfg.Invoice.CompanyName, cfg.Invoice.CurrencySymbol),
	}
}

// GenerateInvoice issues the invoice for an order. An order has at most one
// invoice.
func (s *InvoiceService) GenerateInvoice(ctx context.Context, accountID uuid.UUID, req *GenerateInvoiceRequest) (*models.Invoice, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, validationError(err)
	}

	paymentMethod := req.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = models.PaymentMethodCOD
	}

	view, err := s.orders.GetOrderView(ctx, accountID, req.OrderID)
	if err != nil {
		return nil, err
	}

	status := models.InvoiceStatusToBeDelivered
	if view.OrderStatus == models.OrderStatusDelivered {
		status = models.InvoiceStatusDelivered
	}

	invoice := &models.Invoice{
		AccountID:     accountID,
		OrderID:       view.OrderID,
		ClientID:      view.ClientID,
		Products:      view.Products.Clone(),
		TotalAmount:   view.TotalAmount,
		PaymentMethod: paymentMethod,
		Status:        status,
		PaymentStatus: models.PaymentStatusPending,
	}
	if view.Client != nil {
		invoice.ClientName = view.Client.Name
		invoice.ClientAddress = view.Client.Address
	}

	var account *models.Account
	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		locked, err := tx.LockAccount(ctx, accountID)
		if err != nil {
			if errors.Is(err, repository.ErrRecordNotFound) {
				return ErrAccountNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}
		account = locked

		if _, err := tx.GetInvoiceByOrder(ctx, accountID, view.OrderID); err == nil {
			return fmt.Errorf("%w: %s", ErrInvoiceExists, view.OrderID)
		} else if !errors.Is(err, repository.ErrRecordNotFound) {
			return fmt.Errorf("database error: %w", err)
		}

		for attempt := 1; ; attempt++ {
			invoice.IssuedAt = time.Now()
			num, err := utils.GenerateInvoiceNumber(invoice.IssuedAt)
			if err != nil {
				return fmt.Errorf("failed to generate invoice number: %w", err)
			}
			invoice.InvoiceNum = num

			// a savepoint keeps a number collision from aborting the transaction
			err = tx.Transaction(ctx, func(sp repository.Store) error {
				return sp.CreateInvoice(ctx, invoice)
			})
			if err == nil {
				return nil
			}
			if !errors.Is(err, repository.ErrDuplicate) || attempt == invoiceNumberAttempts {
				return fmt.Errorf("failed to create invoice: %w", err)
			}
		}
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"account_id":  accountID,
		"order_id":    invoice.OrderID,
		"invoice_num": invoice.InvoiceNum,
	}).Info("Invoice generated")

	if s.notifications != nil {
		issued := *invoice
		s.notifications.NotifyAsync("invoice_issued", func() error {
			return s.notifications.SendInvoiceIssuedEmail(account, &issued)
		})
	}

	return invoice, nil
}

func (s *InvoiceService) ListInvoices(ctx context.Context, accountID uuid.UUID, params utils.PaginationParams) ([]models.Invoice, int64, error) {
	if _, err := requireAccount(ctx, s.store, accountID); err != nil {
		return nil, 0, err
	}

	invoices, err := s.store.ListInvoices(ctx, accountID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list invoices: %w", err)
	}

	return utils.Paginate(invoices, params), int64(len(invoices)), nil
}

func (s *InvoiceService) GetInvoice(ctx context.Context, accountID, invoiceID uuid.UUID) (*models.Invoice, error) {
	invoice, err := s.store.GetInvoice(ctx, accountID, invoiceID)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return invoice, nil
}

// MarkInvoiceDelivered records delivery. Cash-on-delivery invoices are
// settled at the same time.
func (s *InvoiceService) MarkInvoiceDelivered(ctx context.Context, accountID, invoiceID uuid.UUID) (*models.Invoice, error) {
	invoice, err := s.GetInvoice(ctx, accountID, invoiceID)
	if err != nil {
		return nil, err
	}

	if invoice.Status == models.InvoiceStatusDelivered {
		return invoice, nil
	}

	invoice.Status = models.InvoiceStatusDelivered
	if invoice.PaymentMethod == models.PaymentMethodCOD {
		invoice.PaymentStatus = models.PaymentStatusPaid
	}

	if err := s.store.SaveInvoice(ctx, invoice); err != nil {
		return nil, fmt.Errorf("failed to update invoice: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"account_id":  accountID,
		"invoice_num": invoice.InvoiceNum,
	}).Info("Invoice delivered")

	return invoice, nil
}

// RenderOrderInvoicePDF renders the order as a PDF invoice. The invoice
// number and payment details are included when an invoice was issued.
func (s *InvoiceService) RenderOrderInvoicePDF(ctx context.Context, accountID, orderID uuid.UUID) ([]byte, string, error) {
	view, err := s.orders.GetOrderView(ctx, accountID, orderID)
	if err != nil {
		return nil, "", err
	}

	doc := &InvoiceDocument{View: view}
	if invoice, err := s.store.GetInvoiceByOrder(ctx, accountID, orderID); err == nil {
		doc.InvoiceNum = invoice.InvoiceNum
		doc.IssuedAt = invoice.IssuedAt
		doc.PaymentMethod = string(invoice.PaymentMethod)
		doc.PaymentStatus = string(invoice.PaymentStatus)
	} else if !errors.Is(err, repository.ErrRecordNotFound) {
		return nil, "", fmt.Errorf("database error: %w", err)
	}

	var buf bytes.Buffer
	if err := s.renderer.Render(&buf, doc); err != nil {
		return nil, "", fmt.Errorf("failed to render invoice: %w", err)
	}

	filename := fmt.Sprintf("invoice-%s.pdf", orderID)
	if doc.InvoiceNum != "" {
		filename = doc.InvoiceNum + ".pdf"
	}
	return buf.Bytes(), filename, nil
}
