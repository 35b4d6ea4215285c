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
	ErrGameNotFound      = errors.New("game not found")
	ErrGameAlreadyExists = errors.New("game with this name already exists")
	ErrGameCategory      = errors.New("game references an unknown category")
)

// GameRepository defines the interface for game data access
type GameRepository interface {
	Create(ctx context.Context, game *domain.Game) error
	Update(ctx context.Context, game *domain.Game) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Game, error)
	// FindByIDForUpdate reads the game and locks its row until the
	// surrounding transaction ends. Outside WithinTx it behaves like FindByID.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Game, error)
	// List returns games with their category name, optionally restricted to
	// names starting with namePrefix (case-insensitive).
	List(ctx context.Context, namePrefix string) ([]*domain.Game, error)
}

type gameRepository struct {
	db DBTX
}

// NewGameRepository creates a new instance of GameRepository
func NewGameRepository(db DBTX) GameRepository {
	return &gameRepository{db: db}
}

// Create inserts a new game using parameterized queries
func (r *gameRepository) Create(ctx context.Context, game *domain.Game) error {
	query := `
		INSERT INTO games (id, name, image, stock_total, category_id, price_per_day, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		game.ID,
		game.Name,
		game.Image,
		game.StockTotal,
		game.CategoryID,
		game.PricePerDay.Round(2),
		game.CreatedAt,
	)

	if err != nil {
		return r.writeError("failed to create game", err)
	}

	return nil
}

// Update overwrites the catalog fields of an existing game. Rentals keep the
// price they were created with.
func (r *gameRepository) Update(ctx context.Context, game *domain.Game) error {
	query := `
		UPDATE games
		SET name = $2, image = $3, stock_total = $4, category_id = $5, price_per_day = $6
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		game.ID,
		game.Name,
		game.Image,
		game.StockTotal,
		game.CategoryID,
		game.PricePerDay.Round(2),
	)

	if err != nil {
		return r.writeError("failed to update game", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return storeError("failed to get rows affected", err)
	}

	if rowsAffected == 0 {
		return ErrGameNotFound
	}

	return nil
}

func (r *gameRepository) writeError(msg string, err error) error {
	switch {
	case isUniqueViolation(err, "games_name_key"):
		return ErrGameAlreadyExists
	case isForeignKeyViolation(err, "fk_games_category"):
		return ErrGameCategory
	default:
		return storeError(msg, err)
	}
}

// FindByID retrieves a game and its category name
func (r *gameRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Game, error) {
	query := `
		SELECT g.id, g.name, g.image, g.stock_total, g.category_id, c.name, g.price_per_day, g.created_at
		FROM games g
		JOIN categories c ON c.id = g.category_id
		WHERE g.id = $1
	`

	game, err := scanGame(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGameNotFound
		}
		return nil, storeError("failed to find game by ID", err)
	}

	return game, nil
}

// FindByIDForUpdate locks only the game row, so the category is left unjoined
func (r *gameRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Game, error) {
	query := `
		SELECT id, name, image, stock_total, category_id, '', price_per_day, created_at
		FROM games
		WHERE id = $1
		FOR UPDATE
	`

	game, err := scanGame(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGameNotFound
		}
		return nil, storeError("failed to lock game", err)
	}

	return game, nil
}

// List retrieves games, optionally filtered by a name prefix
func (r *gameRepository) List(ctx context.Context, namePrefix string) ([]*domain.Game, error) {
	whereClause := ""
	args := []interface{}{}

	if prefix := strings.TrimSpace(namePrefix); prefix != "" {
		whereClause = "WHERE g.name ILIKE $1"
		args = append(args, escapeLike(prefix)+"%")
	}

	query := fmt.Sprintf(`
		SELECT g.id, g.name, g.image, g.stock_total, g.category_id, c.name, g.price_per_day, g.created_at
		FROM games g
		JOIN categories c ON c.id = g.category_id
		%s
		ORDER BY g.name ASC
	`, whereClause)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeError("failed to list games", err)
	}
	defer rows.Close()

	games := []*domain.Game{}
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, storeError("failed to scan game", err)
		}
		games = append(games, game)
	}

	if err = rows.Err(); err != nil {
		return nil, storeError("error iterating games", err)
	}

	return games, nil
}

// rowScanner is implemented by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanGame(row rowScanner) (*domain.Game, error) {
	game := &domain.Game{}
	err := row.Scan(
		&game.ID,
		&game.Name,
		&game.Image,
		&game.StockTotal,
		&game.CategoryID,
		&game.CategoryName,
		&game.PricePerDay,
		&game.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return game, nil
}

// escapeLike neutralises LIKE wildcards in user supplied prefixes
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
