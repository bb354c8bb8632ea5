package domain

import "errors"

var (
	// ErrCustomerNameRequired rejects customers created without a display name.
	ErrCustomerNameRequired = errors.New("customer name is required")
	// ErrUnitPriceNegative rejects products priced below zero.
	ErrUnitPriceNegative = errors.New("unit price must be non-negative")
	// ErrQuantityInvalid rejects order lines with a non-positive quantity.
	ErrQuantityInvalid = errors.New("quantity must be greater than zero")

	// ErrCustomerNotFound is returned when a referenced customer does not exist.
	ErrCustomerNotFound = errors.New("customer not found")
	// ErrProductNotFound is returned when a referenced product does not exist.
	ErrProductNotFound = errors.New("product not found")
	// ErrOrderNotFound is returned when a referenced order does not exist.
	ErrOrderNotFound = errors.New("order not found")
)

// IsValidation reports whether err is a precondition violation. Validation
// failures reject the mutation at the point of violation; no partial state is
// left behind.
func IsValidation(err error) bool {
	return errors.Is(err, ErrCustomerNameRequired) ||
		errors.Is(err, ErrUnitPriceNegative) ||
		errors.Is(err, ErrQuantityInvalid)
}

// IsNotFound reports whether err marks a missing referenced entity.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrCustomerNotFound) ||
		errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrOrderNotFound)
}
