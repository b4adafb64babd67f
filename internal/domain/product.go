package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PriceScale — число знаков после запятой, которое хранится для цены товара.
const PriceScale = 2

// maxPrice — верхняя граница цены, совпадает с колонкой NUMERIC(14, 2).
var maxPrice = decimal.New(1, 12)

// Product — товар каталога с ценой и доступным остатком.
type Product struct {
	ID        string
	Name      string
	Price     decimal.Decimal
	Quantity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProductQuantity — новое абсолютное значение остатка для товара.
type ProductQuantity struct {
	ID       string
	Quantity int
}

// Validate проверяет инварианты товара: непустое имя, неотрицательный остаток
// и цену не больше чем с двумя знаками после запятой.
func (p *Product) Validate() []error {
	var errs []error

	if strings.TrimSpace(p.Name) == "" {
		errs = append(errs, NewValidationError("product name is required"))
	}
	if p.Price.IsNegative() {
		errs = append(errs, NewValidationError("product price must be non-negative"))
	}
	if !p.Price.Equal(p.Price.Round(PriceScale)) {
		errs = append(errs, NewValidationError("product price must have at most 2 decimal places"))
	}
	if p.Price.GreaterThanOrEqual(maxPrice) {
		errs = append(errs, NewValidationError("product price is too large"))
	}
	if p.Quantity < 0 {
		errs = append(errs, NewValidationError("product quantity must be non-negative"))
	}

	return errs
}
