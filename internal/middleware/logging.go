// internal/middleware/logging.go
package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/readify-backend/internal/models"
	"github.com/javajoker/readify-backend/internal/repository"
	"github.com/javajoker/readify-backend/internal/utils"
)

const (
	requestIDHeader = "X-Request-ID"
	auditTimeout    = 5 * time.Second
	maxAuditBody    = 64 << 10
)

var redactedFields = map[string]struct{}{
	"password": {},
	"token":    {},
}

// RequestLogger tags every request with a request id and logs it once the
// handler chain has finished.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Header(requestIDHeader, requestID)

		start := time.Now()
		c.Next()

		fields := logrus.Fields{
			"request_id": requestID,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"duration":   time.Since(start).Milliseconds(),
			"ip":         c.ClientIP(),
			"user_agent": c.Request.UserAgent(),
		}
		if accountID, ok := utils.GetAccountIDFromContext(c); ok {
			fields["account_id"] = accountID
		}

		entry := logrus.WithFields(fields)
		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			entry.Error("Request failed")
		case status >= http.StatusBadRequest:
			entry.Warn("Request rejected")
		default:
			entry.Info("Request processed")
		}
	}
}

// AuditLogMiddleware records every mutating request of an authenticated
// account. basePath is stripped before the resource type is derived.
func AuditLogMiddleware(store repository.AuditRepository, basePath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Skip logging for reads and health checks
		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodOptions ||
			strings.HasSuffix(c.Request.URL.Path, "/health") {
			c.Next()
			return
		}

		// Read request body
		var requestBody []byte
		if c.Request.Body != nil && isJSON(c.ContentType()) {
			requestBody, _ = io.ReadAll(io.LimitReader(c.Request.Body, maxAuditBody))
			c.Request.Body = io.NopCloser(io.MultiReader(bytes.NewReader(requestBody), c.Request.Body))
		}

		c.Next()

		path := strings.TrimPrefix(c.Request.URL.Path, basePath)
		auditLog := &models.AuditLog{
			Action:       c.Request.Method + " " + c.FullPath(),
			ResourceType: extractResourceType(path),
			Status:       c.Writer.Status(),
			IPAddress:    c.ClientIP(),
			UserAgent:    c.Request.UserAgent(),
			NewValues:    redact(requestBody),
		}
		if c.FullPath() == "" {
			auditLog.Action = c.Request.Method + " " + path
		}
		if accountID, ok := utils.GetAccountIDFromContext(c); ok {
			auditLog.AccountID = &accountID
		}

		// Extract resource ID from URL if present
		if resourceID := extractResourceID(path); resourceID != uuid.Nil {
			auditLog.ResourceID = &resourceID
		}

		// Save audit log asynchronously
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), auditTimeout)
			defer cancel()

			if err := store.CreateAuditLog(ctx, auditLog); err != nil {
				logrus.WithError(err).Error("Failed to create audit log")
			}
		}()
	}
}

func isJSON(contentType string) bool {
	return contentType == "" || strings.HasSuffix(contentType, "json")
}

func redact(body []byte) models.JSONB {
	if len(body) == 0 {
		return nil
	}

	var data map[string]interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return nil
	}
	for key := range data {
		if _, ok := redactedFields[strings.ToLower(key)]; ok {
			data[key] = "[REDACTED]"
		}
	}
	return models.JSONB(data)
}

func extractResourceType(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		return "unknown"
	}

	switch parts[0] {
	case "addOrder", "deleteOrder", "orders":
		return "orders"
	}
	return parts[0]
}

func extractResourceID(path string) uuid.UUID {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	for _, part := range parts {
		if id, err := uuid.Parse(part); err == nil {
			return id
		}
	}
	return uuid.Nil
}
