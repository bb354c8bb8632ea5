package domain

// Product is a sellable item keyed by SKU. Name and UnitPrice are mutable;
// order lines referencing the product observe price changes immediately.
type Product struct {
	SKU       string  `json:"sku"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
}

// Validate ensures the product adheres to business constraints. A zero price
// is allowed.
func (p *Product) Validate() error {
	if p.UnitPrice < 0 {
		return ErrUnitPriceNegative
	}
	return nil
}

// Equal reports identity-based equality keyed on SKU alone.
func (p *Product) Equal(other *Product) bool {
	return other != nil && p.SKU == other.SKU
}
