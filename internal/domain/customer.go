package domain

import (
	"net/mail"
	"strings"
	"time"
)

// Customer — покупатель маркетплейса.
type Customer struct {
	ID        string
	Name      string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate проверяет обязательные поля клиента перед сохранением.
func (c *Customer) Validate() []error {
	var errs []error

	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, NewValidationError("customer name is required"))
	}
	if strings.TrimSpace(c.Email) == "" {
		errs = append(errs, NewValidationError("customer email is required"))
	} else if _, err := mail.ParseAddress(c.Email); err != nil {
		errs = append(errs, NewValidationError("customer email is invalid"))
	}

	return errs
}
