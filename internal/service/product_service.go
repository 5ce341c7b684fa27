package service

import (
	"context"
	"fmt"
	"time"

	"listing-review/internal/domain"
	"listing-review/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProductService is the Product Store
type ProductService interface {
	List(ctx context.Context) ([]*domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, details domain.ProductDetails) (*domain.Product, error)
	Update(ctx context.Context, id string, details domain.ProductDetails) (*domain.Product, error)
}

type productService struct {
	products repository.ProductRepository
	logger   *zap.Logger
	now      func() time.Time
}

func NewProductService(products repository.ProductRepository, logger *zap.Logger) ProductService {
	return &productService{products: products, logger: logger, now: time.Now}
}

func (s *productService) List(ctx context.Context) ([]*domain.Product, error) {
	return s.products.List(ctx)
}

func (s *productService) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.products.FindByID(ctx, id)
}

func (s *productService) Create(ctx context.Context, details domain.ProductDetails) (*domain.Product, error) {
	now := s.now()
	product := &domain.Product{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	product.Apply(details)

	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info("Product created", zap.String("product_id", product.ID))
	return product, nil
}

// Update overwrites the reviewable fields of product id
func (s *productService) Update(ctx context.Context, id string, details domain.ProductDetails) (*domain.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if details.ID != "" && details.ID != id {
		return nil, fmt.Errorf("%w: details belong to product %s, not %s", domain.ErrConflict, details.ID, id)
	}

	product.Apply(details)
	product.UpdatedAt = s.now()

	if err := s.products.Update(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info("Product updated", zap.String("product_id", id))
	return product, nil
}
