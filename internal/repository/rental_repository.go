package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"game-rental/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrRentalNotFound        = errors.New("rental not found")
	ErrRentalAlreadyReturned = errors.New("rental has already been returned")
)

// RentalFilter narrows List; nil fields are ignored
type RentalFilter struct {
	CustomerID *uuid.UUID
	GameID     *uuid.UUID
}

// RentalRepository defines the interface for rental data access
type RentalRepository interface {
	Create(ctx context.Context, rental *domain.Rental) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Rental, error)
	// FindByIDForUpdate reads the rental and locks its row until the
	// surrounding transaction ends.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Rental, error)
	List(ctx context.Context, filter RentalFilter) ([]*domain.Rental, error)
	// ListOpenByGame returns the rentals of a game that have not been returned.
	ListOpenByGame(ctx context.Context, gameID uuid.UUID) ([]*domain.Rental, error)
	// MarkReturned closes an open rental, writing the return date and delay
	// fee together. It fails with ErrRentalAlreadyReturned if the rental was
	// closed in the meantime.
	MarkReturned(ctx context.Context, id uuid.UUID, returnDate domain.Date, delayFee decimal.Decimal) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type rentalRepository struct {
	db DBTX
}

// NewRentalRepository creates a new instance of RentalRepository
func NewRentalRepository(db DBTX) RentalRepository {
	return &rentalRepository{db: db}
}

const rentalColumns = `id, customer_id, game_id, rent_date, days_rented, return_date, original_price, delay_fee, created_at`

// Create inserts a new open rental using parameterized queries
func (r *rentalRepository) Create(ctx context.Context, rental *domain.Rental) error {
	query := `
		INSERT INTO rentals (id, customer_id, game_id, rent_date, days_rented, return_date, original_price, delay_fee, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		rental.ID,
		rental.CustomerID,
		rental.GameID,
		rental.RentDate,
		rental.DaysRented,
		rental.ReturnDate,
		rental.OriginalPrice.Round(2),
		rental.DelayFee,
		rental.CreatedAt,
	)

	if err != nil {
		switch {
		case isForeignKeyViolation(err, "fk_rentals_customer"):
			return ErrCustomerNotFound
		case isForeignKeyViolation(err, "fk_rentals_game"):
			return ErrGameNotFound
		}
		return storeError("failed to create rental", err)
	}

	return nil
}

// FindByID retrieves a rental by ID
func (r *rentalRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE id = $1`
	return r.findOne(ctx, query, id, "failed to find rental by ID")
}

func (r *rentalRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE id = $1 FOR UPDATE`
	return r.findOne(ctx, query, id, "failed to lock rental")
}

func (r *rentalRepository) findOne(ctx context.Context, query string, id uuid.UUID, msg string) (*domain.Rental, error) {
	rental, err := scanRental(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRentalNotFound
		}
		return nil, storeError(msg, err)
	}
	return rental, nil
}

// List retrieves rentals, optionally filtered by customer and/or game
func (r *rentalRepository) List(ctx context.Context, filter RentalFilter) ([]*domain.Rental, error) {
	whereClause := "WHERE TRUE"
	args := []interface{}{}
	argIndex := 1

	if filter.CustomerID != nil {
		whereClause += fmt.Sprintf(" AND customer_id = $%d", argIndex)
		args = append(args, *filter.CustomerID)
		argIndex++
	}

	if filter.GameID != nil {
		whereClause += fmt.Sprintf(" AND game_id = $%d", argIndex)
		args = append(args, *filter.GameID)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM rentals
		%s
		ORDER BY rent_date DESC, created_at DESC
	`, rentalColumns, whereClause)

	return r.list(ctx, "failed to list rentals", query, args...)
}

func (r *rentalRepository) ListOpenByGame(ctx context.Context, gameID uuid.UUID) ([]*domain.Rental, error) {
	query := `
		SELECT ` + rentalColumns + `
		FROM rentals
		WHERE game_id = $1 AND return_date IS NULL
		ORDER BY rent_date ASC
	`

	return r.list(ctx, "failed to list open rentals", query, gameID)
}

func (r *rentalRepository) list(ctx context.Context, msg, query string, args ...interface{}) ([]*domain.Rental, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeError(msg, err)
	}
	defer rows.Close()

	rentals := []*domain.Rental{}
	for rows.Next() {
		rental, err := scanRental(rows)
		if err != nil {
			return nil, storeError("failed to scan rental", err)
		}
		rentals = append(rentals, rental)
	}

	if err = rows.Err(); err != nil {
		return nil, storeError("error iterating rentals", err)
	}

	return rentals, nil
}

func (r *rentalRepository) MarkReturned(ctx context.Context, id uuid.UUID, returnDate domain.Date, delayFee decimal.Decimal) error {
	query := `
		UPDATE rentals
		SET return_date = $2, delay_fee = $3
		WHERE id = $1 AND return_date IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, id, returnDate, delayFee.Round(2))
	if err != nil {
		return storeError("failed to mark rental returned", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return storeError("failed to get rows affected", err)
	}

	if rowsAffected == 0 {
		// Either the rental vanished or someone else closed it first.
		if _, err := r.FindByID(ctx, id); err != nil {
			return err
		}
		return ErrRentalAlreadyReturned
	}

	return nil
}

// Delete removes a rental from the database using parameterized queries
func (r *rentalRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM rentals WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return storeError("failed to delete rental", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return storeError("failed to get rows affected", err)
	}

	if rowsAffected == 0 {
		return ErrRentalNotFound
	}

	return nil
}

func scanRental(row rowScanner) (*domain.Rental, error) {
	rental := &domain.Rental{}
	err := row.Scan(
		&rental.ID,
		&rental.CustomerID,
		&rental.GameID,
		&rental.RentDate,
		&rental.DaysRented,
		&rental.ReturnDate,
		&rental.OriginalPrice,
		&rental.DelayFee,
		&rental.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return rental, nil
}
