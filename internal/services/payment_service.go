// internal/services/payment_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"

	"github.com/javajoker/readify-backend/internal/config"
	"github.com/javajoker/readify-backend/internal/models"
	"github.com/javajoker/readify-backend/internal/repository"
)

const paymentTimeout = 10 * time.Second

// ErrPaymentsUnavailable is returned when no payment gateway is configured.
var ErrPaymentsUnavailable = fmt.Errorf("%w: online payments are not configured", ErrValidation)

// PaymentIntent is the gateway-neutral view of a card payment.
type PaymentIntent struct {
	ID           string
	ClientSecret string
	Status       string
}

// PaymentGateway creates and inspects payment intents.
type PaymentGateway interface {
	CreatePaymentIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (*PaymentIntent, error)
	GetPaymentIntent(ctx context.Context, id string) (*PaymentIntent, error)
}

// StripeGateway talks to Stripe PaymentIntents.
type StripeGateway struct{}

func NewStripeGateway(secretKey string) *StripeGateway {
	// Initialize Stripe
	stripe.Key = secretKey
	return &StripeGateway{}
}

func (g *StripeGateway) CreatePaymentIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (*PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountMinor),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx

	// Add metadata
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	return &PaymentIntent{ID: pi.ID, ClientSecret: pi.ClientSecret, Status: string(pi.Status)}, nil
}

func (g *StripeGateway) GetPaymentIntent(ctx context.Context, id string) (*PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := paymentintent.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment intent: %w", err)
	}

	return &PaymentIntent{ID: pi.ID, ClientSecret: pi.ClientSecret, Status: string(pi.Status)}, nil
}

type PaymentService struct {
	store    repository.Store
	gateway  PaymentGateway
	currency string
}

type PaymentIntentResponse struct {
	ClientSecret string  `json:"clientSecret"`
	PaymentID    string  `json:"paymentId"`
	Status       string  `json:"status"`
	Amount       float64 `json:"amount"`
	Currency     string  `json:"currency"`
}

type PaymentConfirmation struct {
	Invoice *models.Invoice `json:"invoice"`
	Status  string          `json:"status"`
}

// NewPaymentService builds the service; gateway may be nil when online
// payments are disabled.
func NewPaymentService(store repository.Store, gateway PaymentGateway, cfg *config.Config) *PaymentService {
	currency := cfg.Payment.Currency
	if currency == "" {
		currency = "inr"
	}

	return &PaymentService{
		store:    store,
		gateway:  gateway,
		currency: currency,
	}
}

// CreateInvoicePayment starts a card payment for an Online invoice.
func (s *PaymentService) CreateInvoicePayment(ctx context.Context, accountID, invoiceID uuid.UUID) (*PaymentIntentResponse, error) {
	if s.gateway == nil {
		return nil, ErrPaymentsUnavailable
	}

	invoice, err := s.getInvoice(ctx, accountID, invoiceID)
	if err != nil {
		return nil, err
	}

	if invoice.PaymentMethod != models.PaymentMethodOnline {
		return nil, invalid("invoice %s is payable %s, not online", invoice.InvoiceNum, invoice.PaymentMethod)
	}
	if invoice.PaymentStatus == models.PaymentStatusPaid {
		return nil, fmt.Errorf("%w: invoice %s is already paid", ErrConflict, invoice.InvoiceNum)
	}

	// Convert amount to minor units for Stripe
	amountMinor := int64(math.Round(invoice.TotalAmount * 100))
	if amountMinor <= 0 {
		return nil, invalid("invoice %s has no amount to pay", invoice.InvoiceNum)
	}

	gatewayCtx, cancel := context.WithTimeout(ctx, paymentTimeout)
	defer cancel()

	intent, err := s.gateway.CreatePaymentIntent(gatewayCtx, amountMinor, s.currency, map[string]string{
		"account_id":  accountID.String(),
		"invoice_id":  invoice.ID.String(),
		"invoice_num": invoice.InvoiceNum,
	})
	if err != nil {
		return nil, err
	}

	invoice.PaymentReference = intent.ID
	if err := s.store.SaveInvoice(ctx, invoice); err != nil {
		return nil, fmt.Errorf("failed to update invoice: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"account_id": accountID,
		"invoice_id": invoice.ID,
		"payment_id": intent.ID,
	}).Info("Payment intent created")

	return &PaymentIntentResponse{
		ClientSecret: intent.ClientSecret,
		PaymentID:    intent.ID,
		Status:       intent.Status,
		Amount:       invoice.TotalAmount,
		Currency:     s.currency,
	}, nil
}

// ConfirmInvoicePayment checks the gateway and marks the invoice Paid once
// the payment has succeeded.
func (s *PaymentService) ConfirmInvoicePayment(ctx context.Context, accountID, invoiceID uuid.UUID) (*PaymentConfirmation, error) {
	if s.gateway == nil {
		return nil, ErrPaymentsUnavailable
	}

	invoice, err := s.getInvoice(ctx, accountID, invoiceID)
	if err != nil {
		return nil, err
	}

	if invoice.PaymentStatus == models.PaymentStatusPaid {
		return &PaymentConfirmation{Invoice: invoice, Status: string(stripe.PaymentIntentStatusSucceeded)}, nil
	}
	if invoice.PaymentReference == "" {
		return nil, invalid("no payment has been started for invoice %s", invoice.InvoiceNum)
	}

	gatewayCtx, cancel := context.WithTimeout(ctx, paymentTimeout)
	defer cancel()

	intent, err := s.gateway.GetPaymentIntent(gatewayCtx, invoice.PaymentReference)
	if err != nil {
		return nil, err
	}

	// Update invoice based on payment status
	switch stripe.PaymentIntentStatus(intent.Status) {
	case stripe.PaymentIntentStatusSucceeded:
		invoice.PaymentStatus = models.PaymentStatusPaid
		if err := s.store.SaveInvoice(ctx, invoice); err != nil {
			return nil, fmt.Errorf("failed to update invoice: %w", err)
		}

		logrus.WithFields(logrus.Fields{
			"account_id": accountID,
			"invoice_id": invoice.ID,
			"payment_id": intent.ID,
		}).Info("Invoice paid")

	case stripe.PaymentIntentStatusCanceled:
		invoice.PaymentReference = ""
		if err := s.store.SaveInvoice(ctx, invoice); err != nil {
			return nil, fmt.Errorf("failed to update invoice: %w", err)
		}
	}

	return &PaymentConfirmation{Invoice: invoice, Status: intent.Status}, nil
}

func (s *PaymentService) getInvoice(ctx context.Context, accountID, invoiceID uuid.UUID) (*models.Invoice, error) {
	invoice, err := s.store.GetInvoice(ctx, accountID, invoiceID)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return invoice, nil
}
