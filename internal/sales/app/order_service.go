package app

import (
	"context"
	"fmt"

	"github.com/dejobratic/sales/internal/sales/domain"
	"github.com/dejobratic/sales/internal/sales/ports"
	"github.com/google/uuid"
)

// OrderAPI is the order-facing surface of the application layer. The
// observable decorator and the HTTP adapter both program against it.
type OrderAPI interface {
	CreateOrder(ctx context.Context, customerID string) (*domain.Order, error)
	AddLine(ctx context.Context, orderID, sku string, quantity int) (*domain.Order, error)
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	ListOrders(ctx context.Context) ([]*domain.Order, error)
}

// OrderService coordinates the order, customer, and product repositories.
// All lookups happen before any mutation, so a failed precondition never
// leaves partial state behind.
type OrderService struct {
	orders    ports.OrderRepository
	customers ports.CustomerRepository
	products  ports.ProductRepository
	events    ports.EventBus
}

// NewOrderService wires the required repositories and event bus.
func NewOrderService(
	orders ports.OrderRepository,
	customers ports.CustomerRepository,
	products ports.ProductRepository,
	events ports.EventBus,
) *OrderService {
	return &OrderService{
		orders:    orders,
		customers: customers,
		products:  products,
		events:    events,
	}
}

// CreateOrder opens an empty order for an existing customer. The order ID is
// generated here; callers never supply one.
func (s *OrderService) CreateOrder(ctx context.Context, customerID string) (*domain.Order, error) {
	customer, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("look up customer: %w", err)
	}
	if customer == nil {
		return nil, domain.ErrCustomerNotFound
	}

	order := domain.NewOrder(uuid.NewString(), customer)

	saved, err := s.orders.Save(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("save order: %w", err)
	}

	if err := s.events.PublishOrderCreated(ctx, saved.ID()); err != nil {
		return saved, fmt.Errorf("order saved but failed to publish event: %w", err)
	}

	return saved, nil
}

// AddLine appends a product line to an existing order and re-persists it.
// Both lookups and the quantity check run before the order is touched.
func (s *OrderService) AddLine(ctx context.Context, orderID, sku string, quantity int) (*domain.Order, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("look up order: %w", err)
	}
	if order == nil {
		return nil, domain.ErrOrderNotFound
	}

	product, err := s.products.FindByID(ctx, sku)
	if err != nil {
		return nil, fmt.Errorf("look up product: %w", err)
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}

	line, err := domain.NewOrderLine(product, quantity)
	if err != nil {
		return nil, err
	}
	order.AddLine(line)

	saved, err := s.orders.Save(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("save order: %w", err)
	}

	if err := s.events.PublishOrderLineAdded(ctx, saved.ID(), sku, quantity); err != nil {
		return saved, fmt.Errorf("order saved but failed to publish event: %w", err)
	}

	return saved, nil
}

// GetOrder returns the order, or (nil, nil) when the ID is unknown.
func (s *OrderService) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	return s.orders.FindByID(ctx, id)
}

// ListOrders returns all orders in insertion order.
func (s *OrderService) ListOrders(ctx context.Context) ([]*domain.Order, error) {
	return s.orders.FindAll(ctx)
}
