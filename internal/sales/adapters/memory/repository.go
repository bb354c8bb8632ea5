package memory

import (
	"context"
	"sync"

	"github.com/dejobratic/sales/internal/sales/domain"
)

// Repository is an insertion-ordered in-memory implementation of
// ports.Repository, useful for local development and tests. Entities are
// stored by reference, so a product mutated by its owner is observed by
// every order line sharing it.
type Repository[T any, ID comparable] struct {
	mu    sync.RWMutex
	key   func(*T) ID
	items map[ID]*T
	order []ID
}

// NewRepository constructs a repository keyed by the given extractor.
func NewRepository[T any, ID comparable](key func(*T) ID) *Repository[T, ID] {
	return &Repository[T, ID]{
		key:   key,
		items: make(map[ID]*T),
	}
}

// NewCustomerRepository returns an in-memory customer store keyed by ID.
func NewCustomerRepository() *Repository[domain.Customer, string] {
	return NewRepository(func(c *domain.Customer) string { return c.ID })
}

// NewProductRepository returns an in-memory product store keyed by SKU.
func NewProductRepository() *Repository[domain.Product, string] {
	return NewRepository(func(p *domain.Product) string { return p.SKU })
}

// NewOrderRepository returns an in-memory order store keyed by order ID.
func NewOrderRepository() *Repository[domain.Order, string] {
	return NewRepository(func(o *domain.Order) string { return o.ID() })
}

// Save inserts or overwrites the entity under its natural key. Overwriting
// keeps the original insertion position.
func (r *Repository[T, ID]) Save(_ context.Context, entity *T) (*T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.key(entity)
	if _, exists := r.items[id]; !exists {
		r.order = append(r.order, id)
	}
	r.items[id] = entity
	return entity, nil
}

// FindByID returns the stored entity, or (nil, nil) when the key is absent.
func (r *Repository[T, ID]) FindByID(_ context.Context, id ID) (*T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.items[id], nil
}

// FindAll returns stored entities in insertion order.
func (r *Repository[T, ID]) FindAll(_ context.Context) ([]*T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*T, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, r.items[id])
	}
	return result, nil
}

// DeleteByID removes the entity if present; deleting a missing key is a no-op.
func (r *Repository[T, ID]) DeleteByID(_ context.Context, id ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[id]; !exists {
		return nil
	}
	delete(r.items, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}
