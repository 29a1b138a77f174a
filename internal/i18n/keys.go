// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess       = "success"
	KeyError         = "error"
	KeyInternalError = "internal_error"
	KeyForbidden     = "forbidden"
	KeyRateLimited   = "rate_limited"

	// Authentication
	KeyAuthRequired        = "auth.required"
	KeyAuthInvalidToken    = "auth.invalid_token"
	KeyAuthUserNotFound    = "auth.user_not_found"
	KeyAuthUserExists      = "auth.user_exists"
	KeyAuthWrongPassword   = "auth.incorrect_password"
	KeyAuthLoginSuccess    = "auth.login_success"
	KeyAuthRegisterSuccess = "auth.register_success"

	// Accounts
	KeyAccountNotFound = "account.not_found"

	// Clients
	KeyClientCreated  = "client.created"
	KeyClientDeleted  = "client.deleted"
	KeyClientNotFound = "client.not_found"

	// Products
	KeyProductCreated  = "product.created"
	KeyProductUpdated  = "product.updated"
	KeyProductDeleted  = "product.deleted"
	KeyProductNotFound = "product.not_found"

	// Orders
	KeyOrderPlaced            = "order.placed"
	KeyOrderDeleted           = "order.deleted"
	KeyOrderNotFound          = "order.not_found"
	KeyOrderStatusUpdated     = "order.status_updated"
	KeyOrderInsufficientStock = "order.insufficient_stock"
	KeyOrderInFlight          = "order.in_flight"

	// Invoices
	KeyInvoiceCreated   = "invoice.created"
	KeyInvoiceNotFound  = "invoice.not_found"
	KeyInvoiceExists    = "invoice.exists"
	KeyInvoiceDelivered = "invoice.delivered"

	// Payments
	KeyPaymentSuccess     = "payment.success"
	KeyPaymentFailed      = "payment.failed"
	KeyPaymentPending     = "payment.pending"
	KeyPaymentUnavailable = "payment.unavailable"

	// Validation
	KeyValidationRequired = "validation.required"
	KeyValidationInvalid  = "validation.invalid"

	// File Upload
	KeyFileUploadSuccess = "file.upload_success"
	KeyFileUploadFailed  = "file.upload_failed"
	KeyFileInvalidType   = "file.invalid_type"
	KeyFileTooLarge      = "file.too_large"
)
