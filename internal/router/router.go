// internal/router/router.go
package router

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/readify-backend/internal/cache"
	"github.com/javajoker/readify-backend/internal/config"
	"github.com/javajoker/readify-backend/internal/handlers"
	"github.com/javajoker/readify-backend/internal/middleware"
	"github.com/javajoker/readify-backend/internal/repository"
	"github.com/javajoker/readify-backend/internal/services"
	"github.com/javajoker/readify-backend/internal/utils"
)

const version = "1.0.0"

// Dependencies are the collaborators the HTTP surface is built on.
type Dependencies struct {
	Store       repository.Store
	Idempotency cache.IdempotencyStore
	// PaymentGateway is nil when online payments are disabled.
	PaymentGateway services.PaymentGateway
	// Done stops background maintenance such as rate limiter cleanup.
	Done <-chan struct{}
}

func Initialize(deps Dependencies, cfg *config.Config) (*gin.Engine, error) {
	// Initialize services
	notificationService := services.NewNotificationService(cfg)
	storageService, err := services.NewStorageService(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	idempotencyTTL := time.Duration(cfg.Redis.IdempotencyTTL) * time.Minute
	authService := services.NewAuthService(deps.Store, cfg, notificationService)
	clientService := services.NewClientService(deps.Store)
	productService := services.NewProductService(deps.Store)
	orderService := services.NewOrderService(deps.Store, deps.Idempotency, idempotencyTTL)
	invoiceService := services.NewInvoiceService(deps.Store, orderService, notificationService, cfg)
	paymentService := services.NewPaymentService(deps.Store, deps.PaymentGateway, cfg)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	clientHandler := handlers.NewClientHandler(clientService)
	productHandler := handlers.NewProductHandler(productService, storageService)
	orderHandler := handlers.NewOrderHandler(orderService)
	invoiceHandler := handlers.NewInvoiceHandler(invoiceService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	limits := middleware.NewRateLimits(cfg.RateLimit)
	if deps.Done != nil {
		limits.Start(deps.Done)
	}

	// Initialize Gin router
	r := gin.New()
	r.MaxMultipartMemory = 32 << 20

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.I18nMiddleware())
	r.Use(limits.General())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": version,
		})
	})

	// Locally stored product images
	if dir := storageService.LocalDir(); dir != "" {
		r.Static("/uploads", dir)
	}

	api := r.Group(cfg.Server.BasePath)
	api.Use(middleware.AuditLogMiddleware(deps.Store, cfg.Server.BasePath))
	{
		// Authentication routes
		auth := api.Group("/auth")
		auth.Use(limits.Auth())
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
		}

		protected := api.Group("")
		protected.Use(middleware.AuthRequired())
		{
			protected.GET("/auth/me", authHandler.Me)

			// Client routes
			protected.POST("/clients", clientHandler.AddClient)
			protected.GET("/clients/:userId", clientHandler.ListClients)
			protected.DELETE("/clients/:clientId", clientHandler.DeleteClient)
			protected.GET("/getClients/:userId", clientHandler.ListClientsLegacy)

			// Product routes
			protected.POST("/products", productHandler.CreateProduct)
			protected.GET("/products", productHandler.GetProducts)
			protected.GET("/products/:id", productHandler.GetProduct)
			protected.PUT("/products/:id", productHandler.UpdateProduct)
			protected.DELETE("/products/:id", productHandler.DeleteProduct)
			protected.POST("/products/upload-images", limits.Upload(), productHandler.UploadImages)
			protected.GET("/getProducts/:userId", productHandler.GetProductsByAccount)

			// Order routes
			protected.POST("/addOrder", orderHandler.PlaceOrder)
			protected.GET("/orders/:userId", orderHandler.ListOrders)
			protected.DELETE("/deleteOrder/:orderId", orderHandler.DeleteOrder)
			protected.PATCH("/orders/:orderId/status", orderHandler.UpdateOrderStatus)
			protected.POST("/orders/reconcile", orderHandler.ReconcileOrders)
			protected.GET("/orderInvoice/:orderId", invoiceHandler.DownloadOrderInvoice)

			// Invoice routes
			protected.POST("/invoices", invoiceHandler.GenerateInvoice)
			protected.GET("/invoices", invoiceHandler.ListInvoices)
			protected.GET("/invoices/:id", invoiceHandler.GetInvoice)
			protected.PUT("/invoices/:id/delivered", invoiceHandler.MarkDelivered)
			protected.POST("/invoices/:id/payment", paymentHandler.CreateInvoicePayment)
			protected.POST("/invoices/:id/payment/confirm", paymentHandler.ConfirmInvoicePayment)
		}
	}

	return r, nil
}
