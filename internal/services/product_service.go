// internal/services/product_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/readify-backend/internal/models"
	"github.com/javajoker/readify-backend/internal/repository"
	"github.com/javajoker/readify-backend/internal/utils"
)

type ProductService struct {
	store repository.Store
}

type CreateProductRequest struct {
	Name     string   `json:"product_name" validate:"required,notblank,max=255"`
	Price    float64  `json:"product_price" validate:"gte=0"`
	Quantity int      `json:"product_quantity" validate:"gte=0"`
	Pictures []string `json:"images" validate:"required,min=1,dive,url"`
}

// UpdateProductRequest is a partial update; nil fields are left unchanged.
type UpdateProductRequest struct {
	Name     *string  `json:"product_name,omitempty" validate:"omitempty,notblank,max=255"`
	Price    *float64 `json:"product_price,omitempty" validate:"omitempty,gte=0"`
	Quantity *int     `json:"product_quantity,omitempty" validate:"omitempty,gte=0"`
	Pictures []string `json:"images,omitempty" validate:"omitempty,min=1,dive,url"`
}

func NewProductService(store repository.Store) *ProductService {
	return &ProductService{store: store}
}

func (s *ProductService) AddProduct(ctx context.Context, accountID uuid.UUID, req *CreateProductRequest) (*models.Product, error) {
	req.Name = strings.TrimSpace(req.Name)

	if err := utils.ValidateStruct(req); err != nil {
		return nil, validationError(err)
	}

	if _, err := requireAccount(ctx, s.store, accountID); err != nil {
		return nil, err
	}

	product := &models.Product{
		AccountID: accountID,
		Name:      req.Name,
		Price:     req.Price,
		Quantity:  req.Quantity,
		Pictures:  req.Pictures,
	}

	if err := s.store.CreateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"account_id": accountID,
		"product_id": product.ID,
		"quantity":   product.Quantity,
	}).Info("Product added")

	return product, nil
}

func (s *ProductService) ListProducts(ctx context.Context, accountID uuid.UUID) ([]models.Product, error) {
	if _, err := requireAccount(ctx, s.store, accountID); err != nil {
		return nil, err
	}

	products, err := s.store.ListProducts(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	if products == nil {
		products = []models.Product{}
	}
	return products, nil
}

func (s *ProductService) GetProduct(ctx context.Context, accountID, productID uuid.UUID) (*models.Product, error) {
	product, err := s.store.GetProduct(ctx, accountID, productID)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return product, nil
}

// UpdateProduct applies a partial update to a product owned by the account.
func (s *ProductService) UpdateProduct(ctx context.Context, accountID, productID uuid.UUID, req *UpdateProductRequest) (*models.Product, error) {
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		req.Name = &trimmed
	}

	if err := utils.ValidateStruct(req); err != nil {
		return nil, validationError(err)
	}

	var product *models.Product
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if _, err := tx.LockAccount(ctx, accountID); err != nil {
			if errors.Is(err, repository.ErrRecordNotFound) {
				return ErrAccountNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		current, err := tx.GetProduct(ctx, accountID, productID)
		if err != nil {
			if errors.Is(err, repository.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		// Update fields
		if req.Name != nil {
			current.Name = *req.Name
		}
		if req.Price != nil {
			current.Price = *req.Price
		}
		if req.Quantity != nil {
			current.Quantity = *req.Quantity
		}
		if len(req.Pictures) > 0 {
			current.Pictures = req.Pictures
		}

		if err := tx.SaveProduct(ctx, current); err != nil {
			return fmt.Errorf("failed to update product: %w", err)
		}
		product = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	return product, nil
}

func (s *ProductService) DeleteProduct(ctx context.Context, accountID, productID uuid.UUID) error {
	if err := s.store.DeleteProduct(ctx, accountID, productID); err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"account_id": accountID,
		"product_id": productID,
	}).Info("Product deleted")
	return nil
}
