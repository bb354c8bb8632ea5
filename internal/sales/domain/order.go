package domain

import (
	"encoding/json"
	"time"
)

// OrderLine couples a product reference with an immutable quantity. The line
// does not own the product: the subtotal is computed from the product's
// current price, so repricing a product reprices every line that holds it.
type OrderLine struct {
	product  *Product
	quantity int
}

// NewOrderLine constructs a line, rejecting non-positive quantities.
func NewOrderLine(product *Product, quantity int) (OrderLine, error) {
	if quantity <= 0 {
		return OrderLine{}, ErrQuantityInvalid
	}
	return OrderLine{product: product, quantity: quantity}, nil
}

// Product returns the referenced product.
func (l OrderLine) Product() *Product { return l.product }

// Quantity returns the line quantity.
func (l OrderLine) Quantity() int { return l.quantity }

// Subtotal is the product's current unit price times the quantity.
func (l OrderLine) Subtotal() float64 {
	return l.product.UnitPrice * float64(l.quantity)
}

// Order is the aggregate root grouping lines for a single customer. The
// identifier, customer reference, and creation time are fixed at creation;
// lines are append-only and only reachable through a copying accessor.
type Order struct {
	id        string
	customer  *Customer
	createdAt time.Time
	lines     []OrderLine
}

// NewOrder creates an empty order for the given customer, stamped with the
// current time.
func NewOrder(id string, customer *Customer) *Order {
	return &Order{
		id:        id,
		customer:  customer,
		createdAt: time.Now().UTC(),
	}
}

// RehydrateOrder rebuilds an order from persisted state. Intended for
// repository implementations; it performs no validation.
func RehydrateOrder(id string, customer *Customer, createdAt time.Time, lines []OrderLine) *Order {
	return &Order{
		id:        id,
		customer:  customer,
		createdAt: createdAt,
		lines:     append([]OrderLine(nil), lines...),
	}
}

// ID returns the order identifier.
func (o *Order) ID() string { return o.id }

// Customer returns the customer the order was placed for.
func (o *Order) Customer() *Customer { return o.customer }

// CreatedAt returns the creation timestamp.
func (o *Order) CreatedAt() time.Time { return o.createdAt }

// Lines returns a copy of the line sequence in append order. Mutating the
// returned slice does not affect the order.
func (o *Order) Lines() []OrderLine {
	return append([]OrderLine(nil), o.lines...)
}

// AddLine appends a line to the order. Lines cannot be edited or removed.
func (o *Order) AddLine(line OrderLine) {
	o.lines = append(o.lines, line)
}

// Total sums the subtotals of all lines, recomputed from current product
// prices on every call.
func (o *Order) Total() float64 {
	var total float64
	for _, line := range o.lines {
		total += line.Subtotal()
	}
	return total
}

// Equal reports identity-based equality keyed on the order ID alone.
func (o *Order) Equal(other *Order) bool {
	return other != nil && o.id == other.id
}

type orderLineJSON struct {
	SKU         string  `json:"sku"`
	ProductName string  `json:"product_name"`
	UnitPrice   float64 `json:"unit_price"`
	Quantity    int     `json:"quantity"`
	Subtotal    float64 `json:"subtotal"`
}

type orderJSON struct {
	ID        string          `json:"id"`
	Customer  *Customer       `json:"customer"`
	CreatedAt time.Time       `json:"created_at"`
	Lines     []orderLineJSON `json:"lines"`
	Total     float64         `json:"total"`
}

// MarshalJSON renders the order as a snapshot with per-line subtotals and the
// computed total.
func (o *Order) MarshalJSON() ([]byte, error) {
	lines := make([]orderLineJSON, 0, len(o.lines))
	for _, line := range o.lines {
		lines = append(lines, orderLineJSON{
			SKU:         line.product.SKU,
			ProductName: line.product.Name,
			UnitPrice:   line.product.UnitPrice,
			Quantity:    line.quantity,
			Subtotal:    line.Subtotal(),
		})
	}
	return json.Marshal(orderJSON{
		ID:        o.id,
		Customer:  o.customer,
		CreatedAt: o.createdAt,
		Lines:     lines,
		Total:     o.Total(),
	})
}
