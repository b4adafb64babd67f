package memory_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/marketplace/internal/domain"
	"github.com/vladislavdragonenkov/marketplace/internal/storage/memory"
)

func TestTransactor_RollbackOnError(t *testing.T) {
	ctx := context.Background()
	products := memory.NewProductRepository()
	orders := memory.NewOrderRepository()
	outbox := memory.NewOutboxRepository()
	tx := memory.NewTransactor()
	p := seedProduct(t, products, "Keyboard", "10", 5)

	boom := errors.New("boom")
	err := tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := orders.Create(ctx, domain.CreateOrderData{
			Customer: domain.Customer{ID: "c1"},
			Products: []domain.OrderProductInput{{ProductID: p.ID, Quantity: 1, Price: decimal.NewFromInt(10)}},
		}); err != nil {
			return err
		}
		if err := products.UpdateQuantity(ctx, []domain.ProductQuantity{{ID: p.ID, Quantity: 4}}); err != nil {
			return err
		}
		if _, err := outbox.Enqueue(ctx, domain.OutboxMessage{AggregateType: "order"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	if orders.Count() != 0 {
		t.Fatalf("expected order to be rolled back, got %d orders", orders.Count())
	}
	found, _ := products.FindAllByID(ctx, []string{p.ID})
	if found[0].Quantity != 5 {
		t.Fatalf("expected quantity to be rolled back to 5, got %d", found[0].Quantity)
	}
	pending, _ := outbox.PullPending(ctx, 10)
	if len(pending) != 0 {
		t.Fatalf("expected outbox to be rolled back, got %d messages", len(pending))
	}
}

func TestTransactor_NestedCallReusesTransaction(t *testing.T) {
	tx := memory.NewTransactor()

	calls := 0
	err := tx.WithinTx(context.Background(), func(ctx context.Context) error {
		return tx.WithinTx(ctx, func(context.Context) error {
			calls++
			return nil
		})
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected nested fn to run once, got %d", calls)
	}
}

func TestTransactor_SerializesTransactions(t *testing.T) {
	tx := memory.NewTransactor()

	var (
		mu      sync.Mutex
		active  int
		overlap bool
		wg      sync.WaitGroup
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = tx.WithinTx(context.Background(), func(context.Context) error {
				mu.Lock()
				active++
				if active > 1 {
					overlap = true
				}
				mu.Unlock()

				mu.Lock()
				active--
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()

	if overlap {
		t.Fatal("expected transactions to run one at a time")
	}
}

func TestTransactor_RollbackKeepsWritesOutsideTransaction(t *testing.T) {
	ctx := context.Background()
	products := memory.NewProductRepository()
	outbox := memory.NewOutboxRepository()
	tx := memory.NewTransactor()
	p := seedProduct(t, products, "Keyboard", "10", 5)

	published, err := outbox.Enqueue(ctx, domain.OutboxMessage{AggregateType: "order", AggregateID: "o1"})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	var outside domain.Product
	boom := errors.New("boom")
	err = tx.WithinTx(ctx, func(txCtx context.Context) error {
		if err := products.UpdateQuantity(txCtx, []domain.ProductQuantity{{ID: p.ID, Quantity: 1}}); err != nil {
			return err
		}
		// Параллельные записи без транзакции: создание товара и отметка публикации.
		created, err := products.Create(ctx, domain.Product{Name: "Mouse", Price: decimal.NewFromInt(3), Quantity: 7})
		if err != nil {
			return err
		}
		outside = created
		if err := outbox.MarkSent(ctx, published.ID); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	found, _ := products.FindAllByID(ctx, []string{p.ID, outside.ID})
	if len(found) != 2 {
		t.Fatalf("expected product created outside the transaction to survive, got %+v", found)
	}
	if found[0].Quantity != 5 {
		t.Fatalf("expected in-transaction quantity update to be rolled back, got %d", found[0].Quantity)
	}
	if found[1].Quantity != 7 {
		t.Fatalf("unexpected quantity of outside product: %d", found[1].Quantity)
	}

	stats, _ := outbox.Stats(ctx)
	if stats.PendingCount != 0 {
		t.Fatalf("expected sent message to stay sent, got %d pending", stats.PendingCount)
	}
}

func TestTransactor_RollbackRestoresMarkedMessage(t *testing.T) {
	ctx := context.Background()
	outbox := memory.NewOutboxRepository()
	tx := memory.NewTransactor()

	msg, err := outbox.Enqueue(ctx, domain.OutboxMessage{AggregateType: "order", AggregateID: "o1"})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	boom := errors.New("boom")
	err = tx.WithinTx(ctx, func(txCtx context.Context) error {
		if err := outbox.MarkFailed(txCtx, msg.ID); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	pending, _ := outbox.PullPending(ctx, 10)
	if len(pending) != 1 || pending[0].ID != msg.ID {
		t.Fatalf("expected message to be pending again, got %+v", pending)
	}
}

func TestTransactor_CommitKeepsWrites(t *testing.T) {
	ctx := context.Background()
	orders := memory.NewOrderRepository()
	tx := memory.NewTransactor()

	err := tx.WithinTx(ctx, func(txCtx context.Context) error {
		_, err := orders.Create(txCtx, domain.CreateOrderData{Customer: domain.Customer{ID: "c1"}})
		return err
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if orders.Count() != 1 {
		t.Fatalf("expected committed order, got %d", orders.Count())
	}

	// Следующая неудачная транзакция не трогает уже зафиксированные данные.
	_ = tx.WithinTx(ctx, func(context.Context) error { return errors.New("rejected") })
	if orders.Count() != 1 {
		t.Fatalf("expected committed order to survive a later rollback, got %d", orders.Count())
	}
}
