package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/marketplace/internal/domain"
)

const productColumns = `id, name, price, quantity, created_at, updated_at`

type productRepository struct {
	store *Store
}

// NewProductRepository создаёт PostgreSQL-реализацию ProductRepository.
func NewProductRepository(store *Store) domain.ProductRepository {
	return &productRepository{store: store}
}

func (r *productRepository) Create(ctx context.Context, product domain.Product) (domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if product.ID == "" {
		product.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now

	_, err := r.store.conn(ctx).ExecContext(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, product.ID, product.Name, product.Price, product.Quantity, product.CreatedAt, product.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Product{}, domain.ErrConflict
		}
		return domain.Product{}, fmt.Errorf("insert product: %w", err)
	}

	return product, nil
}

func (r *productRepository) FindByName(ctx context.Context, name string) (domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var product domain.Product
	err := scanProduct(r.store.conn(ctx).QueryRowContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE LOWER(name) = LOWER($1)
	`, name), &product)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, domain.ErrNotFound
		}
		return domain.Product{}, fmt.Errorf("select product by name: %w", err)
	}

	return product, nil
}

// FindAllByID внутри транзакции блокирует найденные строки до её завершения,
// поэтому параллельные заказы одного товара выполняются последовательно.
func (r *productRepository) FindAllByID(ctx context.Context, ids []string) ([]domain.Product, error) {
	if len(ids) == 0 {
		return []domain.Product{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = ANY($1)
		ORDER BY id
	`
	if inTx(ctx) {
		query += " FOR UPDATE"
	}

	rows, err := r.store.conn(ctx).QueryContext(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]domain.Product, len(ids))
	for rows.Next() {
		var product domain.Product
		if err := scanProduct(rows, &product); err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		byID[product.ID] = product
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}

	// Порядок результата повторяет порядок запроса.
	result := make([]domain.Product, 0, len(byID))
	for _, id := range ids {
		if product, ok := byID[id]; ok {
			result = append(result, product)
			delete(byID, id)
		}
	}

	return result, nil
}

func (r *productRepository) UpdateQuantity(ctx context.Context, quantities []domain.ProductQuantity) error {
	if len(quantities) == 0 {
		return nil
	}

	return r.store.WithinTx(ctx, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, opTimeout)
		defer cancel()

		now := time.Now().UTC()
		for _, q := range quantities {
			res, err := r.store.conn(ctx).ExecContext(ctx, `
				UPDATE products
				SET quantity = $2,
				    updated_at = $3
				WHERE id = $1
			`, q.ID, q.Quantity, now)
			if err != nil {
				return fmt.Errorf("update product %s quantity: %w", q.ID, err)
			}
			affected, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("rows affected for product %s: %w", q.ID, err)
			}
			if affected == 0 {
				return fmt.Errorf("update product %s quantity: %w", q.ID, domain.ErrNotFound)
			}
		}
		return nil
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner, product *domain.Product) error {
	return row.Scan(
		&product.ID,
		&product.Name,
		&product.Price,
		&product.Quantity,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
}

var _ domain.ProductRepository = (*productRepository)(nil)
