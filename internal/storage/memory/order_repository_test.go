package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/marketplace/internal/domain"
	"github.com/vladislavdragonenkov/marketplace/internal/storage/memory"
)

func newOrderData() domain.CreateOrderData {
	return domain.CreateOrderData{
		Customer: domain.Customer{ID: "customer-1", Name: "Ada", Email: "ada@example.com"},
		Products: []domain.OrderProductInput{
			{ProductID: "p1", Quantity: 2, Price: decimal.NewFromInt(10)},
			{ProductID: "p2", Quantity: 1, Price: decimal.RequireFromString("4.99")},
		},
	}
}

func TestOrderRepository_CreateFind(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewOrderRepository()

	order, err := repo.Create(ctx, newOrderData())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if order.ID == "" {
		t.Fatal("expected generated order id")
	}
	if order.CustomerID != "customer-1" {
		t.Fatalf("unexpected customer id %s", order.CustomerID)
	}
	if len(order.OrderProducts) != 2 {
		t.Fatalf("expected 2 order products, got %d", len(order.OrderProducts))
	}
	for _, line := range order.OrderProducts {
		if line.ID == "" || line.OrderID != order.ID {
			t.Fatalf("order product is not linked to the order: %+v", line)
		}
	}

	stored, err := repo.FindByID(ctx, order.ID)
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if !stored.OrderProducts[1].Price.Equal(decimal.RequireFromString("4.99")) {
		t.Fatalf("unexpected stored price %s", stored.OrderProducts[1].Price)
	}
}

func TestOrderRepository_StoredCopyIsIsolated(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewOrderRepository()

	order, err := repo.Create(ctx, newOrderData())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	order.OrderProducts[0].Quantity = 100

	stored, err := repo.FindByID(ctx, order.ID)
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if stored.OrderProducts[0].Quantity != 2 {
		t.Fatalf("stored order was mutated through returned value: %d", stored.OrderProducts[0].Quantity)
	}
}

func TestOrderRepository_FindMissing(t *testing.T) {
	repo := memory.NewOrderRepository()

	if _, err := repo.FindByID(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
