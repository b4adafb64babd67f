// Package customer содержит сценарии регистрации покупателей.
package customer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/marketplace/internal/domain"
)

// CreateCustomerRequest — данные регистрации покупателя.
type CreateCustomerRequest struct {
	Name  string
	Email string
}

// CreateCustomerService регистрирует покупателя с уникальным email.
type CreateCustomerService struct {
	customers domain.CustomerRepository
	logger    *log.Entry
}

// NewCreateCustomerService конструирует сервис; nil logger заменяется стандартным.
func NewCreateCustomerService(customers domain.CustomerRepository, logger *log.Entry) *CreateCustomerService {
	if logger == nil {
		logger = log.WithField("component", "create-customer")
	}
	return &CreateCustomerService{customers: customers, logger: logger}
}

// Execute валидирует данные, проверяет уникальность email и сохраняет покупателя.
func (s *CreateCustomerService) Execute(ctx context.Context, req CreateCustomerRequest) (domain.Customer, error) {
	customer := domain.Customer{
		Name:  strings.TrimSpace(req.Name),
		Email: strings.ToLower(strings.TrimSpace(req.Email)),
	}
	if err := domain.JoinValidationErrors(customer.Validate()); err != nil {
		return domain.Customer{}, err
	}

	_, err := s.customers.FindByEmail(ctx, customer.Email)
	switch {
	case err == nil:
		return domain.Customer{}, domain.ErrEmailInUse
	case !errors.Is(err, domain.ErrNotFound):
		return domain.Customer{}, fmt.Errorf("find customer by email: %w", err)
	}

	created, err := s.customers.Create(ctx, customer)
	if err != nil {
		// Гонка между проверкой и вставкой решается уникальным индексом.
		if errors.Is(err, domain.ErrConflict) {
			return domain.Customer{}, domain.ErrEmailInUse
		}
		return domain.Customer{}, fmt.Errorf("create customer: %w", err)
	}

	s.logger.WithField("customer_id", created.ID).Info("customer registered")
	return created, nil
}
