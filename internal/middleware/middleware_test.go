// internal/middleware/middleware_test.go
package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/javajoker/readify-backend/internal/config"
	"github.com/javajoker/readify-backend/internal/repository"
	"github.com/javajoker/readify-backend/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestAuthRequired(t *testing.T) {
	utils.SetJWTSecret("middleware-secret")

	router := gin.New()
	router.GET("/me", AuthRequired(), func(c *gin.Context) {
		accountID, ok := utils.GetAccountIDFromContext(c)
		require.True(t, ok)
		email, _ := utils.GetEmailFromContext(c)
		c.String(http.StatusOK, accountID.String()+" "+email)
	})

	accountID := uuid.New()
	token, err := utils.GenerateJWT(accountID, "owner@readify.local", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-token", http.StatusUnauthorized},
		{"valid token", "Bearer " + token, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, accountID.String()+" owner@readify.local", w.Body.String())
			}
		})
	}
}

func TestParseLanguage(t *testing.T) {
	assert.Equal(t, "en", parseLanguage(""))
	assert.Equal(t, "zh_TW", parseLanguage("zh-TW,zh;q=0.9,en;q=0.8"))
	assert.Equal(t, "en", parseLanguage("en-GB"))
	assert.Equal(t, "en", parseLanguage("fr-FR"))
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(rate.Every(time.Hour), 2)

	router := gin.New()
	router.GET("/", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	now := time.Now()
	rl.now = func() time.Time { return now.Add(10 * time.Minute) }
	rl.evict(3 * time.Minute)
	assert.Empty(t, rl.visitors)
}

func TestRateLimitsDisabled(t *testing.T) {
	limits := NewRateLimits(config.RateLimitConfig{Enabled: false, AuthPerMinute: 1})

	router := gin.New()
	router.POST("/login", limits.Auth(), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestAuditLogMiddleware(t *testing.T) {
	store := repository.NewMemoryStore()
	accountID := uuid.New()
	clientID := uuid.New()

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("account_id", accountID)
		c.Next()
	})
	router.Use(AuditLogMiddleware(store, "/api"))
	router.DELETE("/api/clients/:clientId", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.POST("/api/auth/login", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/api/clients/:userId", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/clients/"+clientID.String(), nil))
	require.Equal(t, http.StatusOK, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"a@b.c","password":"secret"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(httptest.NewRecorder(), req)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/clients/"+accountID.String(), nil))

	require.Eventually(t, func() bool { return len(store.AuditLogs()) == 2 }, 2*time.Second, 10*time.Millisecond)

	var deleted, login bool
	for _, entry := range store.AuditLogs() {
		switch entry.ResourceType {
		case "clients":
			deleted = true
			assert.Equal(t, "DELETE /api/clients/:clientId", entry.Action)
			require.NotNil(t, entry.ResourceID)
			assert.Equal(t, clientID, *entry.ResourceID)
			require.NotNil(t, entry.AccountID)
			assert.Equal(t, accountID, *entry.AccountID)
		case "auth":
			login = true
			assert.Equal(t, "[REDACTED]", entry.NewValues["password"])
			assert.Equal(t, "a@b.c", entry.NewValues["email"])
		}
	}
	assert.True(t, deleted)
	assert.True(t, login)
}

func TestExtractResourceType(t *testing.T) {
	assert.Equal(t, "orders", extractResourceType("/addOrder"))
	assert.Equal(t, "orders", extractResourceType("/deleteOrder/123"))
	assert.Equal(t, "products", extractResourceType("/products/abc"))
	assert.Equal(t, "unknown", extractResourceType("/"))
}
