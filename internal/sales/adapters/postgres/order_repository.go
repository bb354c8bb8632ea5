package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dejobratic/sales/internal/sales/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// OrderRepository persists the order aggregate: the order row plus its lines
// in a child table, written together in one transaction. Lines store the SKU
// only; reads join the products table, so totals always reflect the current
// price.
type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

func (r *OrderRepository) Save(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin order save: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Identity fields never change, so a re-save only rewrites the lines.
	insertOrder := `
		INSERT INTO orders (id, customer_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING
	`
	if _, err := tx.Exec(ctx, insertOrder, order.ID(), order.Customer().ID, order.CreatedAt()); err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM order_lines WHERE order_id = $1`, order.ID()); err != nil {
		return nil, fmt.Errorf("clear order lines: %w", err)
	}

	insertLine := `
		INSERT INTO order_lines (order_id, position, product_sku, quantity)
		VALUES ($1, $2, $3, $4)
	`
	for i, line := range order.Lines() {
		if _, err := tx.Exec(ctx, insertLine, order.ID(), i, line.Product().SKU, line.Quantity()); err != nil {
			return nil, fmt.Errorf("insert order line: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit order save: %w", err)
	}

	return order, nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `
		SELECT o.id, o.created_at, c.id, c.name, c.email
		FROM orders o
		JOIN customers c ON c.id = o.customer_id
		WHERE o.id = $1
	`

	var (
		orderID   string
		createdAt time.Time
		customer  domain.Customer
	)
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&orderID,
		&createdAt,
		&customer.ID,
		&customer.Name,
		&customer.Email,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select order: %w", err)
	}

	lines, err := r.loadLines(ctx, orderID)
	if err != nil {
		return nil, err
	}

	return domain.RehydrateOrder(orderID, &customer, createdAt, lines), nil
}

func (r *OrderRepository) FindAll(ctx context.Context) ([]*domain.Order, error) {
	query := `
		SELECT o.id, o.created_at, c.id, c.name, c.email
		FROM orders o
		JOIN customers c ON c.id = o.customer_id
		ORDER BY o.seq
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	type orderRow struct {
		id        string
		createdAt time.Time
		customer  *domain.Customer
	}

	var heads []orderRow
	for rows.Next() {
		var (
			head     orderRow
			customer domain.Customer
		)
		if err := rows.Scan(&head.id, &head.createdAt, &customer.ID, &customer.Name, &customer.Email); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		head.customer = &customer
		heads = append(heads, head)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}

	orders := make([]*domain.Order, 0, len(heads))
	for _, head := range heads {
		lines, err := r.loadLines(ctx, head.id)
		if err != nil {
			return nil, err
		}
		orders = append(orders, domain.RehydrateOrder(head.id, head.customer, head.createdAt, lines))
	}

	return orders, nil
}

func (r *OrderRepository) DeleteByID(ctx context.Context, id string) error {
	// Lines go with the order via ON DELETE CASCADE.
	_, err := r.pool.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	return nil
}

func (r *OrderRepository) loadLines(ctx context.Context, orderID string) ([]domain.OrderLine, error) {
	query := `
		SELECT p.sku, p.name, p.unit_price, l.quantity
		FROM order_lines l
		JOIN products p ON p.sku = l.product_sku
		WHERE l.order_id = $1
		ORDER BY l.position
	`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("query order lines: %w", err)
	}
	defer rows.Close()

	var lines []domain.OrderLine
	for rows.Next() {
		var (
			product  domain.Product
			quantity int
		)
		if err := rows.Scan(&product.SKU, &product.Name, &product.UnitPrice, &quantity); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}

		line, err := domain.NewOrderLine(&product, quantity)
		if err != nil {
			return nil, fmt.Errorf("rebuild order line: %w", err)
		}
		lines = append(lines, line)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order lines: %w", err)
	}

	return lines, nil
}
