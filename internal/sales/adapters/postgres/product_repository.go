package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/dejobratic/sales/internal/sales/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProductRepository persists products in Postgres, keyed by SKU.
type ProductRepository struct {
	pool *pgxpool.Pool
}

func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

func (r *ProductRepository) Save(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	query := `
		INSERT INTO products (sku, name, unit_price)
		VALUES ($1, $2, $3)
		ON CONFLICT (sku) DO UPDATE SET name = EXCLUDED.name, unit_price = EXCLUDED.unit_price
	`

	_, err := r.pool.Exec(ctx, query, product.SKU, product.Name, product.UnitPrice)
	if err != nil {
		return nil, fmt.Errorf("upsert product: %w", err)
	}

	return product, nil
}

func (r *ProductRepository) FindByID(ctx context.Context, sku string) (*domain.Product, error) {
	query := `
		SELECT sku, name, unit_price
		FROM products
		WHERE sku = $1
	`

	var product domain.Product
	err := r.pool.QueryRow(ctx, query, sku).Scan(&product.SKU, &product.Name, &product.UnitPrice)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select product: %w", err)
	}

	return &product, nil
}

func (r *ProductRepository) FindAll(ctx context.Context) ([]*domain.Product, error) {
	query := `
		SELECT sku, name, unit_price
		FROM products
		ORDER BY seq
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		var product domain.Product
		if err := rows.Scan(&product.SKU, &product.Name, &product.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, &product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return products, nil
}

func (r *ProductRepository) DeleteByID(ctx context.Context, sku string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM products WHERE sku = $1`, sku)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}
