package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"game-rental/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrCustomerNotFound = errors.New("customer not found")
	ErrCustomerCPFTaken = errors.New("customer with this cpf already exists")
)

// CustomerRepository defines the interface for customer data access
type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) error
	Update(ctx context.Context, customer *domain.Customer) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error)
	// List returns all customers, or those whose cpf starts with cpfPrefix.
	List(ctx context.Context, cpfPrefix string) ([]*domain.Customer, error)
}

type customerRepository struct {
	db DBTX
}

// NewCustomerRepository creates a new instance of CustomerRepository
func NewCustomerRepository(db DBTX) CustomerRepository {
	return &customerRepository{db: db}
}

// Create inserts a new customer; the cpf unique constraint yields ErrCustomerCPFTaken
func (r *customerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	query := `
		INSERT INTO customers (id, name, phone, cpf, birthday, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		customer.ID,
		customer.Name,
		customer.Phone,
		customer.CPF,
		customer.Birthday,
		customer.CreatedAt,
	)

	if err != nil {
		if isUniqueViolation(err, "customers_cpf_key") {
			return ErrCustomerCPFTaken
		}
		return storeError("failed to create customer", err)
	}

	return nil
}

// Update replaces the personal data of an existing customer
func (r *customerRepository) Update(ctx context.Context, customer *domain.Customer) error {
	query := `
		UPDATE customers
		SET name = $2, phone = $3, cpf = $4, birthday = $5
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		customer.ID,
		customer.Name,
		customer.Phone,
		customer.CPF,
		customer.Birthday,
	)

	if err != nil {
		if isUniqueViolation(err, "customers_cpf_key") {
			return ErrCustomerCPFTaken
		}
		return storeError("failed to update customer", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return storeError("failed to get rows affected", err)
	}

	if rowsAffected == 0 {
		return ErrCustomerNotFound
	}

	return nil
}

// FindByID retrieves a customer by ID
func (r *customerRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	query := `
		SELECT id, name, phone, cpf, birthday, created_at
		FROM customers
		WHERE id = $1
	`

	customer, err := scanCustomer(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		return nil, storeError("failed to find customer by ID", err)
	}

	return customer, nil
}

// List retrieves customers, optionally filtered by a cpf prefix
func (r *customerRepository) List(ctx context.Context, cpfPrefix string) ([]*domain.Customer, error) {
	whereClause := ""
	args := []interface{}{}

	if prefix := strings.TrimSpace(cpfPrefix); prefix != "" {
		whereClause = "WHERE cpf LIKE $1"
		args = append(args, escapeLike(prefix)+"%")
	}

	query := fmt.Sprintf(`
		SELECT id, name, phone, cpf, birthday, created_at
		FROM customers
		%s
		ORDER BY name ASC
	`, whereClause)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeError("failed to list customers", err)
	}
	defer rows.Close()

	customers := []*domain.Customer{}
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, storeError("failed to scan customer", err)
		}
		customers = append(customers, customer)
	}

	if err = rows.Err(); err != nil {
		return nil, storeError("error iterating customers", err)
	}

	return customers, nil
}

func scanCustomer(row rowScanner) (*domain.Customer, error) {
	customer := &domain.Customer{}
	err := row.Scan(
		&customer.ID,
		&customer.Name,
		&customer.Phone,
		&customer.CPF,
		&customer.Birthday,
		&customer.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return customer, nil
}
