package domain

import "strings"

// Customer is a buyer identified by a caller-supplied opaque ID. Name and
// Email are mutable; identity never changes.
type Customer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Validate ensures the customer adheres to business constraints.
func (c *Customer) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrCustomerNameRequired
	}
	return nil
}

// Equal reports identity-based equality: two customers are the same entity
// when their IDs match, regardless of mutable fields.
func (c *Customer) Equal(other *Customer) bool {
	return other != nil && c.ID == other.ID
}
