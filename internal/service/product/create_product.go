// Package product содержит сценарии ведения каталога.
package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/marketplace/internal/domain"
)

// CreateProductRequest — данные нового товара каталога.
type CreateProductRequest struct {
	Name     string
	Price    decimal.Decimal
	Quantity int
}

// CreateProductService добавляет товар в каталог.
type CreateProductService struct {
	products domain.ProductRepository
	logger   *log.Entry
}

// NewCreateProductService конструирует сервис; nil logger заменяется стандартным.
func NewCreateProductService(products domain.ProductRepository, logger *log.Entry) *CreateProductService {
	if logger == nil {
		logger = log.WithField("component", "create-product")
	}
	return &CreateProductService{products: products, logger: logger}
}

// Execute проверяет цену, остаток и уникальность названия, затем сохраняет товар.
func (s *CreateProductService) Execute(ctx context.Context, req CreateProductRequest) (domain.Product, error) {
	product := domain.Product{
		Name:     strings.TrimSpace(req.Name),
		Price:    req.Price,
		Quantity: req.Quantity,
	}
	if err := domain.JoinValidationErrors(product.Validate()); err != nil {
		return domain.Product{}, err
	}

	_, err := s.products.FindByName(ctx, product.Name)
	switch {
	case err == nil:
		return domain.Product{}, domain.ErrProductNameInUse
	case !errors.Is(err, domain.ErrNotFound):
		return domain.Product{}, fmt.Errorf("find product by name: %w", err)
	}

	created, err := s.products.Create(ctx, product)
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return domain.Product{}, domain.ErrProductNameInUse
		}
		return domain.Product{}, fmt.Errorf("create product: %w", err)
	}

	s.logger.WithFields(log.Fields{
		"product_id": created.ID,
		"quantity":   created.Quantity,
	}).Info("product added to catalog")
	return created, nil
}
