package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/marketplace/internal/domain"
)

func TestProductRepository_PostgresFindAllByIDAndUpdateQuantity(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewProductRepository(store)
	ctx := context.Background()

	first, err := repo.Create(ctx, domain.Product{Name: "Keyboard", Price: decimal.RequireFromString("10.50"), Quantity: 5})
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	second, err := repo.Create(ctx, domain.Product{Name: "Mouse", Price: decimal.RequireFromString("2.25"), Quantity: 3})
	if err != nil {
		t.Fatalf("create second: %v", err)
	}

	found, err := repo.FindAllByID(ctx, []string{second.ID, "missing", first.ID, second.ID})
	if err != nil {
		t.Fatalf("find all by id: %v", err)
	}
	if len(found) != 2 || found[0].ID != second.ID || found[1].ID != first.ID {
		t.Fatalf("unexpected products: %+v", found)
	}
	if !found[1].Price.Equal(decimal.RequireFromString("10.5")) {
		t.Fatalf("unexpected price: %s", found[1].Price)
	}

	empty, err := repo.FindAllByID(ctx, nil)
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected empty result for no ids, got %v %v", empty, err)
	}

	if err := repo.UpdateQuantity(ctx, []domain.ProductQuantity{{ID: first.ID, Quantity: 3}, {ID: second.ID, Quantity: 0}}); err != nil {
		t.Fatalf("update quantity: %v", err)
	}
	updated, err := repo.FindAllByID(ctx, []string{first.ID, second.ID})
	if err != nil {
		t.Fatalf("find updated: %v", err)
	}
	if updated[0].Quantity != 3 || updated[1].Quantity != 0 {
		t.Fatalf("unexpected quantities: %+v", updated)
	}
}

func TestProductRepository_PostgresUpdateQuantityIsAllOrNothing(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewProductRepository(store)
	ctx := context.Background()

	product, err := repo.Create(ctx, domain.Product{Name: "Keyboard", Price: decimal.NewFromInt(10), Quantity: 5})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	err = repo.UpdateQuantity(ctx, []domain.ProductQuantity{{ID: product.ID, Quantity: 1}, {ID: "missing", Quantity: 1}})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	found, err := repo.FindAllByID(ctx, []string{product.ID})
	if err != nil {
		t.Fatalf("find product: %v", err)
	}
	if found[0].Quantity != 5 {
		t.Fatalf("expected quantity to stay 5, got %d", found[0].Quantity)
	}
}

func TestProductRepository_PostgresNameConflictAndLookup(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewProductRepository(store)
	ctx := context.Background()

	if _, err := repo.FindByName(ctx, "Keyboard"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := repo.Create(ctx, domain.Product{Name: "Keyboard", Price: decimal.NewFromInt(10), Quantity: 1}); err != nil {
		t.Fatalf("create product: %v", err)
	}
	if _, err := repo.FindByName(ctx, "keyboard"); err != nil {
		t.Fatalf("find by name: %v", err)
	}
	if _, err := repo.Create(ctx, domain.Product{Name: "KEYBOARD", Price: decimal.NewFromInt(10), Quantity: 1}); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}
