package service

import (
	"context"
	"fmt"
	"time"

	"game-rental/internal/domain"
	"game-rental/internal/repository"

	"github.com/google/uuid"
)

// CustomerInput carries the editable fields of a customer
type CustomerInput struct {
	Name     string
	Phone    string
	CPF      string
	Birthday domain.Date
}

// CustomerService defines the interface for customer business logic
type CustomerService interface {
	Create(ctx context.Context, input CustomerInput) (*domain.Customer, error)
	Update(ctx context.Context, id uuid.UUID, input CustomerInput) (*domain.Customer, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error)
	List(ctx context.Context, cpfPrefix string) ([]*domain.Customer, error)
}

type customerService struct {
	store repository.Store
	catalogConfig
}

// NewCustomerService creates a new instance of CustomerService
func NewCustomerService(store repository.Store, opts ...CatalogOption) CustomerService {
	return &customerService{store: store, catalogConfig: newCatalogConfig(opts)}
}

// Create registers a customer; a cpf already on file is a conflict
func (s *customerService) Create(ctx context.Context, input CustomerInput) (*domain.Customer, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	customer := &domain.Customer{
		ID:        uuid.New(),
		Name:      input.Name,
		Phone:     input.Phone,
		CPF:       input.CPF,
		Birthday:  input.Birthday,
		CreatedAt: time.Now(),
	}

	if err := s.store.Customers().Create(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// Update replaces a customer's data; the cpf may stay the same but cannot
// collide with another customer's
func (s *customerService) Update(ctx context.Context, id uuid.UUID, input CustomerInput) (*domain.Customer, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	customer, err := s.store.Customers().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	customer.Name = input.Name
	customer.Phone = input.Phone
	customer.CPF = input.CPF
	customer.Birthday = input.Birthday

	if err := s.store.Customers().Update(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *customerService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return s.store.Customers().FindByID(ctx, id)
}

func (s *customerService) List(ctx context.Context, cpfPrefix string) ([]*domain.Customer, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	customers, err := s.store.Customers().List(ctx, cpfPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	return customers, nil
}
