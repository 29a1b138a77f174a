// internal/services/account_services_test.go
package services

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/readify-backend/internal/models"
	"github.com/javajoker/readify-backend/internal/repository"
	"github.com/javajoker/readify-backend/internal/utils"
)

func newAuthService(t *testing.T) (*AuthService, *repository.MemoryStore) {
	t.Helper()
	cfg := testConfig()
	utils.SetJWTSecret(cfg.JWT.SecretKey)
	store := repository.NewMemoryStore()
	return NewAuthService(store, cfg, nil), store
}

func TestAuthService_SignupAndLogin(t *testing.T) {
	ctx := context.Background()
	auth, store := newAuthService(t)

	signup, err := auth.Signup(ctx, &SignupRequest{Email: "  Owner@Readify.Local ", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, "owner@readify.local", signup.Email)
	assert.Equal(t, "Bearer", signup.TokenType)
	assert.Equal(t, 3600, signup.ExpiresIn)

	claims, err := utils.ValidateJWT(signup.Token)
	require.NoError(t, err)
	assert.Equal(t, signup.UserID.String(), claims.UserID)

	login, err := auth.Login(ctx, &LoginRequest{Email: "owner@readify.local", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, signup.UserID, login.UserID)

	account, err := store.GetAccount(ctx, signup.UserID)
	require.NoError(t, err)
	assert.NotNil(t, account.LastLoginAt)
	assert.NotEqual(t, "secret123", account.PasswordHash)
}

func TestAuthService_Failures(t *testing.T) {
	ctx := context.Background()
	auth, _ := newAuthService(t)

	_, err := auth.Signup(ctx, &SignupRequest{Email: "owner@readify.local", Password: "secret123"})
	require.NoError(t, err)

	_, err = auth.Signup(ctx, &SignupRequest{Email: "OWNER@readify.local", Password: "another1"})
	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = auth.Login(ctx, &LoginRequest{Email: "owner@readify.local", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrIncorrectPassword)
	assert.ErrorIs(t, err, ErrAuth)

	_, err = auth.Login(ctx, &LoginRequest{Email: "nobody@readify.local", Password: "secret123"})
	assert.ErrorIs(t, err, ErrUnknownEmail)

	_, err = auth.Signup(ctx, &SignupRequest{Email: "not-an-email", Password: "secret123"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = auth.Signup(ctx, &SignupRequest{Email: "short@readify.local", Password: "123"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = auth.GetAccount(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestClientService_Validation(t *testing.T) {
	ctx := context.Background()
	auth, store := newAuthService(t)
	clients := NewClientService(store)

	resp, err := auth.Signup(ctx, &SignupRequest{Email: "owner@readify.local", Password: "secret123"})
	require.NoError(t, err)

	_, err = clients.AddClient(ctx, resp.UserID, &CreateClientRequest{Name: "Asha", Address: "Pune", PhoneNo: "call me"})
	assert.ErrorIs(t, err, ErrValidation)

	var validation *ValidationError
	require.True(t, errors.As(err, &validation))
	details := utils.GetValidationErrors(validation.Cause)
	require.Len(t, details, 1)
	assert.Equal(t, "phoneNo", details[0].Field)

	_, err = clients.AddClient(ctx, resp.UserID, &CreateClientRequest{Name: "   ", Address: "Pune", PhoneNo: "+91 98765 43210"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = clients.AddClient(ctx, uuid.New(), &CreateClientRequest{Name: "Asha", Address: "Pune", PhoneNo: "+91 98765 43210"})
	assert.ErrorIs(t, err, ErrAccountNotFound)

	list, err := clients.ListClients(ctx, resp.UserID)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	err = clients.DeleteClient(ctx, uuid.New(), uuid.New())
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestProductService_CRUD(t *testing.T) {
	ctx := context.Background()
	auth, store := newAuthService(t)
	products := NewProductService(store)

	owner, err := auth.Signup(ctx, &SignupRequest{Email: "owner@readify.local", Password: "secret123"})
	require.NoError(t, err)
	other, err := auth.Signup(ctx, &SignupRequest{Email: "other@readify.local", Password: "secret123"})
	require.NoError(t, err)

	_, err = products.AddProduct(ctx, owner.UserID, &CreateProductRequest{Name: "pen", Price: 2, Quantity: 1})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = products.AddProduct(ctx, uuid.New(), &CreateProductRequest{
		Name: "pen", Price: 2, Quantity: 1, Pictures: []string{"https://cdn.readify.local/pen.png"},
	})
	assert.ErrorIs(t, err, ErrAccountNotFound)

	product, err := products.AddProduct(ctx, owner.UserID, &CreateProductRequest{
		Name: " pen ", Price: 2, Quantity: 10, Pictures: []string{"https://cdn.readify.local/pen.png"},
	})
	require.NoError(t, err)
	assert.Equal(t, "pen", product.Name)

	price := 2.5
	updated, err := products.UpdateProduct(ctx, owner.UserID, product.ID, &UpdateProductRequest{Price: &price})
	require.NoError(t, err)
	assert.InDelta(t, 2.5, updated.Price, 0.001)
	assert.Equal(t, 10, updated.Quantity)
	assert.Equal(t, []string{"https://cdn.readify.local/pen.png"}, []string(updated.Pictures))

	negative := -1
	_, err = products.UpdateProduct(ctx, owner.UserID, product.ID, &UpdateProductRequest{Quantity: &negative})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = products.UpdateProduct(ctx, other.UserID, product.ID, &UpdateProductRequest{Price: &price})
	assert.ErrorIs(t, err, ErrProductNotFound)

	err = products.DeleteProduct(ctx, other.UserID, product.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)

	list, err := products.ListProducts(ctx, owner.UserID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, products.DeleteProduct(ctx, owner.UserID, product.ID))
	err = products.DeleteProduct(ctx, owner.UserID, product.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)

	list, err = products.ListProducts(ctx, owner.UserID)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func (suite *OrderWorkflowTestSuite) TestInvoiceLifecycle() {
	product := suite.addProduct("notebook", 10, 5)
	client := suite.addClient("Asha")
	order, err := suite.place(client.ID, OrderItemRequest{ProductID: product.ID, Quantity: 2})
	suite.Require().NoError(err)

	invoice, err := suite.invoices.GenerateInvoice(suite.ctx, suite.accountID, &GenerateInvoiceRequest{OrderID: order.ID})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.PaymentMethodCOD, invoice.PaymentMethod)
	assert.Equal(suite.T(), models.InvoiceStatusToBeDelivered, invoice.Status)
	assert.Equal(suite.T(), models.PaymentStatusPending, invoice.PaymentStatus)
	assert.Equal(suite.T(), "Asha", invoice.ClientName)
	assert.InDelta(suite.T(), 20, invoice.TotalAmount, 0.001)
	assert.Regexp(suite.T(), `^INV-\d{8}-[A-Z0-9]{6}$`, invoice.InvoiceNum)

	_, err = suite.invoices.GenerateInvoice(suite.ctx, suite.accountID, &GenerateInvoiceRequest{OrderID: order.ID})
	assert.ErrorIs(suite.T(), err, ErrConflict)

	_, err = suite.invoices.GenerateInvoice(suite.ctx, suite.accountID, &GenerateInvoiceRequest{OrderID: order.ID, PaymentMethod: "Cheque"})
	assert.ErrorIs(suite.T(), err, ErrValidation)

	_, err = suite.invoices.GenerateInvoice(suite.ctx, suite.accountID, &GenerateInvoiceRequest{OrderID: uuid.New()})
	assert.ErrorIs(suite.T(), err, ErrOrderNotFound)

	delivered, err := suite.invoices.MarkInvoiceDelivered(suite.ctx, suite.accountID, invoice.ID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.InvoiceStatusDelivered, delivered.Status)
	assert.Equal(suite.T(), models.PaymentStatusPaid, delivered.PaymentStatus)

	invoices, total, err := suite.invoices.ListInvoices(suite.ctx, suite.accountID, utils.PaginationParams{Page: 1, Limit: 10})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), int64(1), total)
	suite.Require().Len(invoices, 1)
	assert.Equal(suite.T(), invoice.InvoiceNum, invoices[0].InvoiceNum)

	pdf, filename, err := suite.invoices.RenderOrderInvoicePDF(suite.ctx, suite.accountID, order.ID)
	suite.Require().NoError(err)
	assert.True(suite.T(), bytes.HasPrefix(pdf, []byte("%PDF")))
	assert.Equal(suite.T(), invoice.InvoiceNum+".pdf", filename)
}

func (suite *OrderWorkflowTestSuite) TestInvoicePDFForDeletedClient() {
	product := suite.addProduct("notebook", 10, 5)
	client := suite.addClient("Asha")
	order, err := suite.place(client.ID, OrderItemRequest{ProductID: product.ID, Quantity: 1})
	suite.Require().NoError(err)

	suite.Require().NoError(suite.clients.DeleteClient(suite.ctx, suite.accountID, client.ID))

	pdf, filename, err := suite.invoices.RenderOrderInvoicePDF(suite.ctx, suite.accountID, order.ID)
	suite.Require().NoError(err)
	assert.True(suite.T(), bytes.HasPrefix(pdf, []byte("%PDF")))
	assert.Equal(suite.T(), "invoice-"+order.ID.String()+".pdf", filename)

	invoice, err := suite.invoices.GenerateInvoice(suite.ctx, suite.accountID, &GenerateInvoiceRequest{
		OrderID:       order.ID,
		PaymentMethod: models.PaymentMethodOnline,
	})
	suite.Require().NoError(err)
	assert.Empty(suite.T(), invoice.ClientName)

	delivered, err := suite.invoices.MarkInvoiceDelivered(suite.ctx, suite.accountID, invoice.ID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.PaymentStatusPending, delivered.PaymentStatus)
}

type fakeGateway struct {
	created     []int64
	status      string
	createErr   error
	lastMetaKey string
}

func (g *fakeGateway) CreatePaymentIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (*PaymentIntent, error) {
	if g.createErr != nil {
		return nil, g.createErr
	}
	g.created = append(g.created, amountMinor)
	g.lastMetaKey = metadata["invoice_num"]
	return &PaymentIntent{ID: "pi_test_1", ClientSecret: "pi_test_1_secret", Status: "requires_payment_method"}, nil
}

func (g *fakeGateway) GetPaymentIntent(ctx context.Context, id string) (*PaymentIntent, error) {
	return &PaymentIntent{ID: id, Status: g.status}, nil
}

func (suite *OrderWorkflowTestSuite) TestInvoicePayment() {
	product := suite.addProduct("notebook", 12.5, 5)
	order, err := suite.place(uuid.New(), OrderItemRequest{ProductID: product.ID, Quantity: 2})
	suite.Require().NoError(err)
	codOrder, err := suite.place(uuid.New(), OrderItemRequest{ProductID: product.ID, Quantity: 1})
	suite.Require().NoError(err)

	online, err := suite.invoices.GenerateInvoice(suite.ctx, suite.accountID, &GenerateInvoiceRequest{
		OrderID:       order.ID,
		PaymentMethod: models.PaymentMethodOnline,
	})
	suite.Require().NoError(err)
	cod, err := suite.invoices.GenerateInvoice(suite.ctx, suite.accountID, &GenerateInvoiceRequest{OrderID: codOrder.ID})
	suite.Require().NoError(err)

	disabled := NewPaymentService(suite.store, nil, testConfig())
	_, err = disabled.CreateInvoicePayment(suite.ctx, suite.accountID, online.ID)
	assert.ErrorIs(suite.T(), err, ErrPaymentsUnavailable)

	gateway := &fakeGateway{status: "processing"}
	payments := NewPaymentService(suite.store, gateway, testConfig())

	_, err = payments.CreateInvoicePayment(suite.ctx, suite.accountID, cod.ID)
	assert.ErrorIs(suite.T(), err, ErrValidation)

	_, err = payments.ConfirmInvoicePayment(suite.ctx, suite.accountID, online.ID)
	assert.ErrorIs(suite.T(), err, ErrValidation)

	intent, err := payments.CreateInvoicePayment(suite.ctx, suite.accountID, online.ID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), "pi_test_1_secret", intent.ClientSecret)
	assert.Equal(suite.T(), []int64{2500}, gateway.created)
	assert.Equal(suite.T(), online.InvoiceNum, gateway.lastMetaKey)
	assert.Equal(suite.T(), "inr", intent.Currency)

	confirmation, err := payments.ConfirmInvoicePayment(suite.ctx, suite.accountID, online.ID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.PaymentStatusPending, confirmation.Invoice.PaymentStatus)

	gateway.status = "succeeded"
	confirmation, err = payments.ConfirmInvoicePayment(suite.ctx, suite.accountID, online.ID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.PaymentStatusPaid, confirmation.Invoice.PaymentStatus)
	assert.Equal(suite.T(), "pi_test_1", confirmation.Invoice.PaymentReference)

	_, err = payments.CreateInvoicePayment(suite.ctx, suite.accountID, online.ID)
	assert.ErrorIs(suite.T(), err, ErrConflict)

	_, err = payments.CreateInvoicePayment(suite.ctx, suite.accountID, uuid.New())
	assert.ErrorIs(suite.T(), err, ErrInvoiceNotFound)
}

func (suite *OrderWorkflowTestSuite) TestNotificationsOnSignupAndInvoice() {
	cfg := testConfig()
	sent := make(chan string, 4)
	notifications := NewNotificationService(cfg)
	notifications.send = func(to, subject, body string) error {
		sent <- to + "|" + subject
		return nil
	}

	auth := NewAuthService(suite.store, cfg, notifications)
	invoices := NewInvoiceService(suite.store, suite.orders, notifications, cfg)

	resp, err := auth.Signup(suite.ctx, &SignupRequest{Email: "new@readify.local", Password: "secret123"})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), "new@readify.local|Welcome to Readify", waitForMessage(suite.T(), sent))

	product := suite.addProduct("notebook", 10, 5)
	order, err := suite.place(uuid.New(), OrderItemRequest{ProductID: product.ID, Quantity: 1})
	suite.Require().NoError(err)

	invoice, err := invoices.GenerateInvoice(suite.ctx, suite.accountID, &GenerateInvoiceRequest{OrderID: order.ID})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), "owner@readify.local|Invoice "+invoice.InvoiceNum+" issued", waitForMessage(suite.T(), sent))
	assert.NotEqual(suite.T(), uuid.Nil, resp.UserID)
}

func waitForMessage(t *testing.T, sent <-chan string) string {
	t.Helper()
	select {
	case msg := <-sent:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("notification was not sent")
		return ""
	}
}

func TestNotificationService_InvoiceTemplate(t *testing.T) {
	var body string
	notifications := NewNotificationService(testConfig())
	notifications.send = func(to, subject, b string) error {
		body = b
		return nil
	}

	account := &models.Account{Email: "owner@readify.local"}
	invoice := &models.Invoice{InvoiceNum: "INV-20260101-ABCDEF", TotalAmount: 42, PaymentMethod: models.PaymentMethodCOD}

	require.NoError(t, notifications.SendInvoiceIssuedEmail(account, invoice))
	assert.Contains(t, body, "INV-20260101-ABCDEF")
	assert.Contains(t, body, "a former client")
	assert.Contains(t, body, "Rs 42.00")

	// Delivery is skipped without an SMTP host.
	plain := NewNotificationService(testConfig())
	assert.NoError(t, plain.SendWelcomeEmail(account))
}

func multipartFiles(t *testing.T, files map[string][]byte) []*multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for name, data := range files {
		part, err := writer.CreateFormFile("images", name)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	form, err := multipart.NewReader(&body, writer.Boundary()).ReadForm(10 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })
	return form.File["images"]
}

var pngHeader = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}

func TestStorageService_LocalUpload(t *testing.T) {
	cfg := testConfig()
	cfg.Storage.LocalDir = t.TempDir()
	cfg.Storage.PublicBaseURL = "http://localhost:5000/"
	cfg.Storage.MaxImageSize = 1024

	storage, err := NewStorageService(cfg)
	require.NoError(t, err)
	assert.Equal(t, cfg.Storage.LocalDir, storage.LocalDir())

	accountID := uuid.New()
	results, err := storage.UploadProductImages(context.Background(), accountID, multipartFiles(t, map[string][]byte{
		"cover.png": pngHeader,
	}))
	require.NoError(t, err)
	require.Len(t, results, 1)

	result := results[0]
	assert.True(t, strings.HasPrefix(result.URL, "http://localhost:5000/uploads/products/"+accountID.String()+"/"))
	assert.True(t, strings.HasSuffix(result.Key, ".png"))
	assert.Equal(t, int64(len(pngHeader)), result.Size)

	stored, err := os.ReadFile(filepath.Join(cfg.Storage.LocalDir, filepath.FromSlash(result.Key)))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, stored)

	require.NoError(t, storage.DeleteFile(context.Background(), result.Key))
	_, err = os.Stat(filepath.Join(cfg.Storage.LocalDir, filepath.FromSlash(result.Key)))
	assert.True(t, os.IsNotExist(err))
}

func TestStorageService_RejectsInvalidFiles(t *testing.T) {
	cfg := testConfig()
	cfg.Storage.LocalDir = t.TempDir()
	cfg.Storage.MaxImageSize = 1024

	storage, err := NewStorageService(cfg)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = storage.UploadProductImages(ctx, uuid.New(), nil)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = storage.UploadProductImages(ctx, uuid.New(), multipartFiles(t, map[string][]byte{
		"cover.png": pngHeader,
		"notes.txt": []byte("plain text"),
	}))
	assert.ErrorIs(t, err, ErrValidation)

	_, err = storage.UploadProductImages(ctx, uuid.New(), multipartFiles(t, map[string][]byte{
		"fake.png": []byte("not really a png"),
	}))
	assert.ErrorIs(t, err, ErrValidation)

	_, err = storage.UploadProductImages(ctx, uuid.New(), multipartFiles(t, map[string][]byte{
		"huge.png": append(append([]byte{}, pngHeader...), make([]byte, 2048)...),
	}))
	assert.ErrorIs(t, err, ErrValidation)

	entries, err := os.ReadDir(cfg.Storage.LocalDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestIsValidImageType(t *testing.T) {
	assert.True(t, isValidImageType([]byte{0xFF, 0xD8, 0xFF, 0xE0}))
	assert.True(t, isValidImageType(pngHeader))
	assert.True(t, isValidImageType([]byte("GIF89a......")))
	assert.True(t, isValidImageType([]byte("RIFF\x00\x00\x00\x00WEBPVP8 ")))
	assert.False(t, isValidImageType([]byte("GIF")))
	assert.False(t, isValidImageType([]byte("hello world!")))
}
