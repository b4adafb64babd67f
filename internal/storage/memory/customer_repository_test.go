package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/vladislavdragonenkov/marketplace/internal/domain"
	"github.com/vladislavdragonenkov/marketplace/internal/storage/memory"
)

func TestCustomerRepository_CreateFind(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewCustomerRepository()

	created, err := repo.Create(ctx, domain.Customer{Name: "Ada", Email: "ada@example.com"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.ID == "" || created.CreatedAt.IsZero() {
		t.Fatalf("expected generated id and timestamps, got %+v", created)
	}

	byID, err := repo.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("find by id failed: %v", err)
	}
	if byID.Email != "ada@example.com" {
		t.Fatalf("unexpected email %s", byID.Email)
	}

	byEmail, err := repo.FindByEmail(ctx, "ADA@example.com")
	if err != nil {
		t.Fatalf("find by email failed: %v", err)
	}
	if byEmail.ID != created.ID {
		t.Fatalf("expected %s, got %s", created.ID, byEmail.ID)
	}
}

func TestCustomerRepository_Errors(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewCustomerRepository()

	if _, err := repo.FindByID(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if _, err := repo.Create(ctx, domain.Customer{Name: "Ada", Email: "ada@example.com"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := repo.Create(ctx, domain.Customer{Name: "Other", Email: "ada@example.com"}); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}
