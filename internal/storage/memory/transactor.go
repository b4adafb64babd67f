package memory

import (
	"context"
	"sync"

	"github.com/vladislavdragonenkov/marketplace/internal/domain"
)

type txKey struct{}

// undoJournal копит обратные операции для записей, сделанных внутри одной транзакции.
type undoJournal struct {
	mu    sync.Mutex
	steps []func()
}

func (j *undoJournal) record(step func()) {
	j.mu.Lock()
	j.steps = append(j.steps, step)
	j.mu.Unlock()
}

func (j *undoJournal) rollback() {
	j.mu.Lock()
	steps := j.steps
	j.steps = nil
	j.mu.Unlock()

	for i := len(steps) - 1; i >= 0; i-- {
		steps[i]()
	}
}

// recordUndo регистрирует откат записи, если ctx несёт транзакцию.
// Вызывается репозиториями под их собственной блокировкой; step берёт её заново при откате.
func recordUndo(ctx context.Context, step func()) {
	if j, ok := ctx.Value(txKey{}).(*undoJournal); ok {
		j.record(step)
	}
}

// Transactor сериализует транзакции in-memory хранилища. При ошибке fn
// откатываются только ключи, записанные внутри транзакции: записи, сделанные
// параллельно без транзакции, сохраняются.
type Transactor struct {
	mu sync.Mutex
}

// NewTransactor создаёт транзакционную границу для in-memory репозиториев.
func NewTransactor() *Transactor {
	return &Transactor{}
}

// WithinTx выполняет fn эксклюзивно. Вложенный вызов переиспользует внешнюю транзакцию.
func (t *Transactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, nested := ctx.Value(txKey{}).(*undoJournal); nested {
		return fn(ctx)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	journal := &undoJournal{}
	if err := fn(context.WithValue(ctx, txKey{}, journal)); err != nil {
		journal.rollback()
		return err
	}
	return nil
}

var _ domain.Transactor = (*Transactor)(nil)
