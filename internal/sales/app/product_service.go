package app

import (
	"context"
	"fmt"

	"github.com/dejobratic/sales/internal/sales/domain"
	"github.com/dejobratic/sales/internal/sales/ports"
)

// ProductService enforces product invariants in front of the repository.
type ProductService struct {
	products ports.ProductRepository
}

// NewProductService wires the required repository.
func NewProductService(products ports.ProductRepository) *ProductService {
	return &ProductService{products: products}
}

// CreateProduct validates and persists a product. Negative prices are
// rejected before anything is written; a zero price is allowed.
func (s *ProductService) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if product == nil {
		return nil, domain.ErrUnitPriceNegative
	}
	if err := product.Validate(); err != nil {
		return nil, err
	}

	saved, err := s.products.Save(ctx, product)
	if err != nil {
		return nil, fmt.Errorf("save product: %w", err)
	}
	return saved, nil
}

// GetProduct returns the product, or (nil, nil) when the SKU is unknown.
func (s *ProductService) GetProduct(ctx context.Context, sku string) (*domain.Product, error) {
	return s.products.FindByID(ctx, sku)
}

// ListProducts returns all products in insertion order.
func (s *ProductService) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	return s.products.FindAll(ctx)
}
