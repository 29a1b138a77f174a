// internal/handlers/errors.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/readify-backend/internal/i18n"
	"github.com/javajoker/readify-backend/internal/services"
	"github.com/javajoker/readify-backend/internal/utils"
)

// statusOverrides replaces the default status code of an error category on
// routes whose clients expect a different code.
type statusOverrides map[error]int

// messageKeys maps refined service errors to translation keys; checked in
// order so refined errors win over their category.
var messageKeys = []struct {
	err error
	key string
}{
	{services.ErrAccountNotFound, i18n.KeyAccountNotFound},
	{services.ErrClientNotFound, i18n.KeyClientNotFound},
	{services.ErrProductNotFound, i18n.KeyProductNotFound},
	{services.ErrOrderNotFound, i18n.KeyOrderNotFound},
	{services.ErrInvoiceNotFound, i18n.KeyInvoiceNotFound},
	{services.ErrUnknownEmail, i18n.KeyAuthUserNotFound},
	{services.ErrIncorrectPassword, i18n.KeyAuthWrongPassword},
	{services.ErrEmailTaken, i18n.KeyAuthUserExists},
	{services.ErrOrderInFlight, i18n.KeyOrderInFlight},
	{services.ErrInvoiceExists, i18n.KeyInvoiceExists},
	{services.ErrPaymentsUnavailable, i18n.KeyPaymentUnavailable},
	{services.ErrInsufficientStock, i18n.KeyOrderInsufficientStock},
}

// respondError writes the envelope for a service error.
func respondError(c *gin.Context, err error, overrides statusOverrides) {
	lang := utils.GetLangFromContext(c)

	status, code := classify(err)
	for target, override := range overrides {
		if errors.Is(err, target) {
			status = override
			break
		}
	}

	message := err.Error()
	for _, mk := range messageKeys {
		if errors.Is(err, mk.err) {
			message = i18n.T(lang, mk.key)
			break
		}
	}

	var details interface{}
	var validationErr *services.ValidationError
	var stockErr *services.InsufficientStockError
	switch {
	case errors.As(err, &validationErr):
		var fieldErrs validator.ValidationErrors
		if errors.As(validationErr.Cause, &fieldErrs) {
			details = utils.GetValidationErrors(fieldErrs)
			message = i18n.T(lang, i18n.KeyValidationInvalid, "input")
		} else {
			message = validationErr.Cause.Error()
		}
	case errors.As(err, &stockErr):
		details = gin.H{
			"productId": stockErr.ProductID,
			"requested": stockErr.Requested,
			"available": stockErr.Available,
		}
	}

	if status >= http.StatusInternalServerError {
		logrus.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).Error("Request failed")
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.ErrorResponse(c, status, code, message, details)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrPaymentsUnavailable):
		return http.StatusServiceUnavailable, "PAYMENTS_UNAVAILABLE"
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest, "VALIDATION_ERROR"
	case errors.Is(err, services.ErrInsufficientStock):
		return http.StatusUnauthorized, "INSUFFICIENT_STOCK"
	case errors.Is(err, services.ErrEmailTaken):
		return http.StatusBadRequest, "USER_EXISTS"
	case errors.Is(err, services.ErrConflict):
		return http.StatusConflict, "CONFLICT"
	case errors.Is(err, services.ErrAuth):
		return http.StatusBadRequest, "AUTH_FAILED"
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

// bindJSON decodes the request body and answers 400 on malformed input.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		lang := utils.GetLangFromContext(c)
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return false
	}
	return true
}

// currentAccount returns the authenticated account id.
func currentAccount(c *gin.Context) (uuid.UUID, bool) {
	accountID, ok := utils.GetAccountIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return uuid.Nil, false
	}
	return accountID, true
}

// matchAccount checks a caller-supplied account id against the token. An
// empty value means the caller relies on the token alone.
func matchAccount(c *gin.Context, raw string, field string) bool {
	if raw == "" {
		return true
	}

	accountID, ok := currentAccount(c)
	if !ok {
		return false
	}

	claimed, err := uuid.Parse(raw)
	if err != nil {
		lang := utils.GetLangFromContext(c)
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, field), nil)
		return false
	}
	if claimed != accountID {
		utils.ForbiddenResponse(c, "")
		return false
	}
	return true
}

// parseUUIDParam reads a path parameter as a uuid and answers 404 when it is
// malformed, since no such resource can exist.
func parseUUIDParam(c *gin.Context, name, resource string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.NotFoundResponse(c, resource)
		return uuid.Nil, false
	}
	return id, true
}

func parseUUIDParamStatus(c *gin.Context, name, resource string, status int) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.StatusNotFoundResponse(c, status, resource)
		return uuid.Nil, false
	}
	return id, true
}
