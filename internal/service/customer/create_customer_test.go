package customer_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/marketplace/internal/domain"
	"github.com/vladislavdragonenkov/marketplace/internal/service/customer"
	"github.com/vladislavdragonenkov/marketplace/internal/storage/memory"
)

type conflictingCustomers struct {
	*memory.CustomerRepository
}

func (conflictingCustomers) Create(context.Context, domain.Customer) (domain.Customer, error) {
	return domain.Customer{}, domain.ErrConflict
}

type brokenCustomers struct {
	*memory.CustomerRepository
	err error
}

func (b brokenCustomers) FindByEmail(context.Context, string) (domain.Customer, error) {
	return domain.Customer{}, b.err
}

func TestCreateCustomer_Success(t *testing.T) {
	repo := memory.NewCustomerRepository()
	svc := customer.NewCreateCustomerService(repo, nil)

	created, err := svc.Execute(context.Background(), customer.CreateCustomerRequest{
		Name:  "  Ada Lovelace ",
		Email: "Ada@Example.com",
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.Equal(t, "Ada Lovelace", created.Name)
	require.Equal(t, "ada@example.com", created.Email)

	stored, err := repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, created.Email, stored.Email)
}

func TestCreateCustomer_EmailInUse(t *testing.T) {
	repo := memory.NewCustomerRepository()
	svc := customer.NewCreateCustomerService(repo, nil)

	_, err := svc.Execute(context.Background(), customer.CreateCustomerRequest{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)

	_, err = svc.Execute(context.Background(), customer.CreateCustomerRequest{Name: "Other", Email: "ADA@example.com"})
	require.ErrorIs(t, err, domain.ErrEmailInUse)
	require.Equal(t, 400, domain.StatusCode(err))
}

func TestCreateCustomer_ConflictOnInsertMapsToEmailInUse(t *testing.T) {
	svc := customer.NewCreateCustomerService(conflictingCustomers{memory.NewCustomerRepository()}, nil)

	_, err := svc.Execute(context.Background(), customer.CreateCustomerRequest{Name: "Ada", Email: "ada@example.com"})
	require.ErrorIs(t, err, domain.ErrEmailInUse)
}

func TestCreateCustomer_Validation(t *testing.T) {
	svc := customer.NewCreateCustomerService(memory.NewCustomerRepository(), nil)

	tests := []struct {
		name string
		req  customer.CreateCustomerRequest
	}{
		{name: "empty name", req: customer.CreateCustomerRequest{Name: " ", Email: "ada@example.com"}},
		{name: "empty email", req: customer.CreateCustomerRequest{Name: "Ada"}},
		{name: "malformed email", req: customer.CreateCustomerRequest{Name: "Ada", Email: "not-an-email"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Execute(context.Background(), tt.req)
			require.ErrorIs(t, err, domain.NewValidationError(""))
			require.Equal(t, 400, domain.StatusCode(err))
		})
	}
}

func TestCreateCustomer_StorageError(t *testing.T) {
	storageErr := errors.New("connection refused")
	svc := customer.NewCreateCustomerService(brokenCustomers{memory.NewCustomerRepository(), storageErr}, nil)

	_, err := svc.Execute(context.Background(), customer.CreateCustomerRequest{Name: "Ada", Email: "ada@example.com"})
	require.ErrorIs(t, err, storageErr)
	require.Equal(t, 500, domain.StatusCode(err))
}
