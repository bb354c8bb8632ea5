package ports

import (
	"context"

	"github.com/dejobratic/sales/internal/sales/domain"
)

// Repository is the storage contract shared by every aggregate, generic over
// the entity type and its natural key. Implementations decide the backing
// store; the application layer never sees the difference.
//
// Absence is not an error: FindByID returns (nil, nil) for a missing key and
// DeleteByID is a no-op for one. Errors are reserved for backend failures.
type Repository[T any, ID comparable] interface {
	// Save inserts or overwrites the entity under its natural key and
	// returns the stored entity.
	Save(ctx context.Context, entity *T) (*T, error)
	// FindByID returns the entity, or (nil, nil) when the key is absent.
	FindByID(ctx context.Context, id ID) (*T, error)
	// FindAll returns all stored entities in insertion order.
	FindAll(ctx context.Context) ([]*T, error)
	// DeleteByID removes the entity if present.
	DeleteByID(ctx context.Context, id ID) error
}

// Typed instantiations used by the application layer.
type (
	CustomerRepository = Repository[domain.Customer, string]
	ProductRepository  = Repository[domain.Product, string]
	OrderRepository    = Repository[domain.Order, string]
)
