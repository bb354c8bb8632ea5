package app

import (
	"context"
	"fmt"

	"github.com/dejobratic/sales/internal/sales/domain"
	"github.com/dejobratic/sales/internal/sales/ports"
)

// CustomerService enforces customer invariants in front of the repository.
type CustomerService struct {
	customers ports.CustomerRepository
}

// NewCustomerService wires the required repository.
func NewCustomerService(customers ports.CustomerRepository) *CustomerService {
	return &CustomerService{customers: customers}
}

// CreateCustomer validates and persists a customer. A blank name is rejected
// before anything is written.
func (s *CustomerService) CreateCustomer(ctx context.Context, customer *domain.Customer) (*domain.Customer, error) {
	if customer == nil {
		return nil, domain.ErrCustomerNameRequired
	}
	if err := customer.Validate(); err != nil {
		return nil, err
	}

	saved, err := s.customers.Save(ctx, customer)
	if err != nil {
		return nil, fmt.Errorf("save customer: %w", err)
	}
	return saved, nil
}

// GetCustomer returns the customer, or (nil, nil) when the ID is unknown.
func (s *CustomerService) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	return s.customers.FindByID(ctx, id)
}

// ListCustomers returns all customers in insertion order.
func (s *CustomerService) ListCustomers(ctx context.Context) ([]*domain.Customer, error) {
	return s.customers.FindAll(ctx)
}
