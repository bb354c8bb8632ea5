//go:build integration

package postgres_test

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/dejobratic/sales/internal/database"
	"github.com/dejobratic/sales/internal/sales/adapters/postgres"
	"github.com/dejobratic/sales/internal/sales/domain"
	"github.com/jackc/pgx/v5/pgxpool"
	testpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := testpostgres.Run(ctx,
		"postgres:16-alpine",
		testpostgres.WithDatabase("test"),
		testpostgres.WithUsername("test"),
		testpostgres.WithPassword("test"),
		testpostgres.BasicWaitStrategies(),
		testpostgres.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").WithOccurrence(2)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	projectRoot := findProjectRoot(t)
	migrationsPath := filepath.Join(projectRoot, "migrations")

	if err := database.RunMigrations(connStr, migrationsPath); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	pool, err := database.NewPool(ctx, connStr)
	if err != nil {
		t.Fatalf("failed to create pool: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
	})

	return pool
}

func findProjectRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

func TestCustomerRepositoryRoundTrip(t *testing.T) {
	pool := setupTestDB(t)
	repo := postgres.NewCustomerRepository(pool)
	ctx := context.Background()

	customer := &domain.Customer{ID: "cli-001", Name: "Joao Silva", Email: "joao@example.com"}
	if _, err := repo.Save(ctx, customer); err != nil {
		t.Fatalf("failed to save customer: %v", err)
	}

	retrieved, err := repo.FindByID(ctx, "cli-001")
	if err != nil {
		t.Fatalf("failed to retrieve customer: %v", err)
	}
	if retrieved == nil {
		t.Fatal("expected customer, got nil")
	}
	if retrieved.Name != customer.Name || retrieved.Email != customer.Email {
		t.Errorf("retrieved %+v, want %+v", retrieved, customer)
	}
}

func TestCustomerRepositoryFindByID_Absent(t *testing.T) {
	pool := setupTestDB(t)
	repo := postgres.NewCustomerRepository(pool)

	retrieved, err := repo.FindByID(context.Background(), "nonexistent")
	if err != nil {
		t.Fatalf("absent key should not fail: %v", err)
	}
	if retrieved != nil {
		t.Errorf("expected nil for absent key, got %+v", retrieved)
	}
}

func TestProductRepositorySaveOverwrites(t *testing.T) {
	pool := setupTestDB(t)
	repo := postgres.NewProductRepository(pool)
	ctx := context.Background()

	if _, err := repo.Save(ctx, &domain.Product{SKU: "sku-001", Name: "Coffee Maker", UnitPrice: 199.90}); err != nil {
		t.Fatalf("failed to save product: %v", err)
	}
	if _, err := repo.Save(ctx, &domain.Product{SKU: "sku-001", Name: "Coffee Maker Deluxe", UnitPrice: 249.90}); err != nil {
		t.Fatalf("failed to overwrite product: %v", err)
	}

	all, err := repo.FindAll(ctx)
	if err != nil {
		t.Fatalf("failed to list products: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected a single product after overwrite, got %d", len(all))
	}
	if all[0].Name != "Coffee Maker Deluxe" || all[0].UnitPrice != 249.90 {
		t.Errorf("expected latest values, got %+v", all[0])
	}
}

func TestProductRepositoryFindAllInsertionOrder(t *testing.T) {
	pool := setupTestDB(t)
	repo := postgres.NewProductRepository(pool)
	ctx := context.Background()

	skus := []string{"sku-003", "sku-001", "sku-002"}
	for _, sku := range skus {
		if _, err := repo.Save(ctx, &domain.Product{SKU: sku, Name: sku, UnitPrice: 1}); err != nil {
			t.Fatalf("failed to save product: %v", err)
		}
	}

	all, err := repo.FindAll(ctx)
	if err != nil {
		t.Fatalf("failed to list products: %v", err)
	}
	if len(all) != len(skus) {
		t.Fatalf("expected %d products, got %d", len(skus), len(all))
	}
	for i, sku := range skus {
		if all[i].SKU != sku {
			t.Errorf("position %d: expected %q, got %q", i, sku, all[i].SKU)
		}
	}
}

func TestOrderRepositoryRoundTrip(t *testing.T) {
	pool := setupTestDB(t)
	customers := postgres.NewCustomerRepository(pool)
	products := postgres.NewProductRepository(pool)
	orders := postgres.NewOrderRepository(pool)
	ctx := context.Background()

	customer := &domain.Customer{ID: "cli-001", Name: "Teste", Email: "t@t.com"}
	if _, err := customers.Save(ctx, customer); err != nil {
		t.Fatalf("failed to save customer: %v", err)
	}
	coffeeMaker := &domain.Product{SKU: "sku-001", Name: "Coffee Maker", UnitPrice: 199.90}
	mug := &domain.Product{SKU: "sku-002", Name: "Mug", UnitPrice: 9.90}
	for _, p := range []*domain.Product{coffeeMaker, mug} {
		if _, err := products.Save(ctx, p); err != nil {
			t.Fatalf("failed to save product: %v", err)
		}
	}

	order := domain.NewOrder("order-1", customer)
	for _, item := range []struct {
		product  *domain.Product
		quantity int
	}{{coffeeMaker, 1}, {mug, 4}} {
		line, err := domain.NewOrderLine(item.product, item.quantity)
		if err != nil {
			t.Fatalf("failed to build line: %v", err)
		}
		order.AddLine(line)
	}

	if _, err := orders.Save(ctx, order); err != nil {
		t.Fatalf("failed to save order: %v", err)
	}

	retrieved, err := orders.FindByID(ctx, "order-1")
	if err != nil {
		t.Fatalf("failed to retrieve order: %v", err)
	}
	if retrieved == nil {
		t.Fatal("expected order, got nil")
	}
	if !retrieved.Customer().Equal(customer) {
		t.Error("retrieved order lost its customer reference")
	}
	if got := len(retrieved.Lines()); got != 2 {
		t.Fatalf("expected 2 lines, got %d", got)
	}
	if got, want := retrieved.Total(), 239.50; math.Abs(got-want) > 1e-4 {
		t.Errorf("total = %.4f, want %.4f", got, want)
	}
	if !retrieved.CreatedAt().Equal(order.CreatedAt()) {
		t.Errorf("created_at drifted: %v vs %v", retrieved.CreatedAt(), order.CreatedAt())
	}
}

func TestOrderRepositoryResaveReplacesLines(t *testing.T) {
	pool := setupTestDB(t)
	customers := postgres.NewCustomerRepository(pool)
	products := postgres.NewProductRepository(pool)
	orders := postgres.NewOrderRepository(pool)
	ctx := context.Background()

	customer := &domain.Customer{ID: "cli-001", Name: "Teste"}
	if _, err := customers.Save(ctx, customer); err != nil {
		t.Fatalf("failed to save customer: %v", err)
	}
	product := &domain.Product{SKU: "sku-001", Name: "Produto Teste", UnitPrice: 10.0}
	if _, err := products.Save(ctx, product); err != nil {
		t.Fatalf("failed to save product: %v", err)
	}

	order := domain.NewOrder("order-1", customer)
	if _, err := orders.Save(ctx, order); err != nil {
		t.Fatalf("failed to save empty order: %v", err)
	}

	line, err := domain.NewOrderLine(product, 3)
	if err != nil {
		t.Fatalf("failed to build line: %v", err)
	}
	order.AddLine(line)
	if _, err := orders.Save(ctx, order); err != nil {
		t.Fatalf("failed to re-save order: %v", err)
	}

	retrieved, err := orders.FindByID(ctx, "order-1")
	if err != nil {
		t.Fatalf("failed to retrieve order: %v", err)
	}
	if got := len(retrieved.Lines()); got != 1 {
		t.Fatalf("expected 1 line after re-save, got %d", got)
	}
	if got, want := retrieved.Total(), 30.0; math.Abs(got-want) > 1e-4 {
		t.Errorf("total = %.4f, want %.4f", got, want)
	}
}

func TestOrderRepositoryLivePricing(t *testing.T) {
	pool := setupTestDB(t)
	customers := postgres.NewCustomerRepository(pool)
	products := postgres.NewProductRepository(pool)
	orders := postgres.NewOrderRepository(pool)
	ctx := context.Background()

	customer := &domain.Customer{ID: "cli-001", Name: "Teste"}
	if _, err := customers.Save(ctx, customer); err != nil {
		t.Fatalf("failed to save customer: %v", err)
	}
	product := &domain.Product{SKU: "sku-001", Name: "Produto Teste", UnitPrice: 10.0}
	if _, err := products.Save(ctx, product); err != nil {
		t.Fatalf("failed to save product: %v", err)
	}

	order := domain.NewOrder("order-1", customer)
	line, err := domain.NewOrderLine(product, 2)
	if err != nil {
		t.Fatalf("failed to build line: %v", err)
	}
	order.AddLine(line)
	if _, err := orders.Save(ctx, order); err != nil {
		t.Fatalf("failed to save order: %v", err)
	}

	// Reprice the product; a fresh read of the order must see the new price.
	product.UnitPrice = 25.0
	if _, err := products.Save(ctx, product); err != nil {
		t.Fatalf("failed to reprice product: %v", err)
	}

	retrieved, err := orders.FindByID(ctx, "order-1")
	if err != nil {
		t.Fatalf("failed to retrieve order: %v", err)
	}
	if got, want := retrieved.Total(), 50.0; math.Abs(got-want) > 1e-4 {
		t.Errorf("total after reprice = %.4f, want %.4f", got, want)
	}
}

func TestOrderRepositoryDeleteByID(t *testing.T) {
	pool := setupTestDB(t)
	customers := postgres.NewCustomerRepository(pool)
	orders := postgres.NewOrderRepository(pool)
	ctx := context.Background()

	customer := &domain.Customer{ID: "cli-001", Name: "Teste"}
	if _, err := customers.Save(ctx, customer); err != nil {
		t.Fatalf("failed to save customer: %v", err)
	}
	if _, err := orders.Save(ctx, domain.NewOrder("order-1", customer)); err != nil {
		t.Fatalf("failed to save order: %v", err)
	}

	if err := orders.DeleteByID(ctx, "order-1"); err != nil {
		t.Fatalf("failed to delete order: %v", err)
	}

	retrieved, err := orders.FindByID(ctx, "order-1")
	if err != nil {
		t.Fatalf("FindByID after delete failed: %v", err)
	}
	if retrieved != nil {
		t.Error("order still present after delete")
	}

	// Deleting an absent key is a no-op.
	if err := orders.DeleteByID(ctx, "order-1"); err != nil {
		t.Errorf("deleting an absent key should not fail: %v", err)
	}
}
