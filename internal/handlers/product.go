// internal/handlers/product.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/readify-backend/internal/i18n"
	"github.com/javajoker/readify-backend/internal/services"
	"github.com/javajoker/readify-backend/internal/utils"
)

type ProductHandler struct {
	productService *services.ProductService
	storageService *services.StorageService
}

func NewProductHandler(productService *services.ProductService, storageService *services.StorageService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		storageService: storageService,
	}
}

type addProductRequest struct {
	UserID string `json:"userId"`
	services.CreateProductRequest
}

// POST /products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req addProductRequest
	if !bindJSON(c, &req) {
		return
	}
	if !matchAccount(c, req.UserID, "userId") {
		return
	}
	accountID, ok := currentAccount(c)
	if !ok {
		return
	}

	product, err := h.productService.AddProduct(c.Request.Context(), accountID, &req.CreateProductRequest)
	if err != nil {
		respondError(c, err, statusOverrides{services.ErrAccountNotFound: http.StatusMethodNotAllowed})
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyProductCreated),
		"product": product,
	})
}

// GET /products?userId=
func (h *ProductHandler) GetProducts(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID := c.Query("userId")
	if userID == "" {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationRequired, "userId"), nil)
		return
	}
	h.listProducts(c, userID)
}

// GET /getProducts/:userId
func (h *ProductHandler) GetProductsByAccount(c *gin.Context) {
	h.listProducts(c, c.Param("userId"))
}

func (h *ProductHandler) listProducts(c *gin.Context, userID string) {
	if !matchAccount(c, userID, "userId") {
		return
	}
	accountID, ok := currentAccount(c)
	if !ok {
		return
	}

	products, err := h.productService.ListProducts(c.Request.Context(), accountID)
	if err != nil {
		respondError(c, err, nil)
		return
	}

	utils.SuccessResponse(c, gin.H{"products": products})
}

// GET /products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	accountID, ok := currentAccount(c)
	if !ok {
		return
	}
	productID, ok := parseUUIDParam(c, "id", "product")
	if !ok {
		return
	}

	product, err := h.productService.GetProduct(c.Request.Context(), accountID, productID)
	if err != nil {
		respondError(c, err, nil)
		return
	}

	utils.SuccessResponse(c, gin.H{"product": product})
}

// PUT /products/:id
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	accountID, ok := currentAccount(c)
	if !ok {
		return
	}
	productID, ok := parseUUIDParam(c, "id", "product")
	if !ok {
		return
	}

	var req services.UpdateProductRequest
	if !bindJSON(c, &req) {
		return
	}

	product, err := h.productService.UpdateProduct(c.Request.Context(), accountID, productID, &req)
	if err != nil {
		respondError(c, err, nil)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyProductUpdated),
		"product": product,
	})
}

// DELETE /products/:id
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	accountID, ok := currentAccount(c)
	if !ok {
		return
	}
	productID, ok := parseUUIDParam(c, "id", "product")
	if !ok {
		return
	}

	if err := h.productService.DeleteProduct(c.Request.Context(), accountID, productID); err != nil {
		respondError(c, err, nil)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyProductDeleted),
	})
}

// POST /products/upload-images
func (h *ProductHandler) UploadImages(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	accountID, ok := currentAccount(c)
	if !ok {
		return
	}

	// Parse multipart form
	form, err := c.MultipartForm()
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyFileUploadFailed), err.Error())
		return
	}

	results, err := h.storageService.UploadProductImages(c.Request.Context(), accountID, form.File["images"])
	if err != nil {
		respondError(c, err, nil)
		return
	}

	urls := make([]string, 0, len(results))
	for _, result := range results {
		urls = append(urls, result.URL)
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyFileUploadSuccess),
		"urls":    urls,
		"files":   results,
	})
}
