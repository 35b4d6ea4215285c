package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrStoreUnavailable marks transient infrastructure failures. Callers may retry.
var ErrStoreUnavailable = errors.New("store unavailable")

// DBTX is the subset of *sql.DB and *sql.Tx the repositories need
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Store gives access to every repository and runs units of work atomically
type Store interface {
	Categories() CategoryRepository
	Games() GameRepository
	Customers() CustomerRepository
	Rentals() RentalRepository

	// WithinTx runs fn in a database transaction. Repositories obtained from
	// the Store passed to fn share that transaction; row locks taken through
	// them are held until fn returns. The transaction commits when fn returns
	// nil and rolls back otherwise. Nested calls join the outer transaction.
	WithinTx(ctx context.Context, fn func(tx Store) error) error
}

type store struct {
	db   *sql.DB
	conn DBTX
}

// NewStore creates a Store over a connection pool
func NewStore(db *sql.DB) Store {
	return &store{db: db, conn: db}
}

func (s *store) Categories() CategoryRepository { return &categoryRepository{db: s.conn} }
func (s *store) Games() GameRepository           { return &gameRepository{db: s.conn} }
func (s *store) Customers() CustomerRepository   { return &customerRepository{db: s.conn} }
func (s *store) Rentals() RentalRepository       { return &rentalRepository{db: s.conn} }

func (s *store) WithinTx(ctx context.Context, fn func(tx Store) error) error {
	if _, inTx := s.conn.(*sql.Tx); inTx {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storeError("failed to begin transaction", err)
	}

	if err := fn(&store{db: s.db, conn: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(err, storeError("failed to roll back transaction", rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return storeError("failed to commit transaction", err)
	}
	return nil
}

// storeError wraps a driver error, tagging it with ErrStoreUnavailable when
// the failure is about reaching the database rather than the statement itself.
func storeError(msg string, err error) error {
	if isUnavailable(err) {
		return fmt.Errorf("%s: %w: %w", msg, ErrStoreUnavailable, err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func isUnavailable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) {
		return true
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgerrcode.IsConnectionException(pgErr.Code) ||
			pgerrcode.IsOperatorIntervention(pgErr.Code) ||
			pgerrcode.IsInsufficientResources(pgErr.Code) ||
			pgErr.Code == pgerrcode.SerializationFailure ||
			pgErr.Code == pgerrcode.DeadlockDetected
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	return pgconn.SafeToRetry(err)
}

// isUniqueViolation reports whether err violates the named unique constraint
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) &&
		pgErr.Code == pgerrcode.UniqueViolation &&
		pgErr.ConstraintName == constraint
}

// isForeignKeyViolation reports whether err violates the named foreign key
func isForeignKeyViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) &&
		pgErr.Code == pgerrcode.ForeignKeyViolation &&
		pgErr.ConstraintName == constraint
}
