package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"game-rental/internal/domain"
	"game-rental/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GameInput carries the editable fields of a game
type GameInput struct {
	Name        string
	Image       string
	StockTotal  int
	CategoryID  uuid.UUID
	PricePerDay decimal.Decimal
}

// GameService defines the interface for game catalog logic
type GameService interface {
	Create(ctx context.Context, input GameInput) (*domain.Game, error)
	Update(ctx context.Context, id uuid.UUID, input GameInput) (*domain.Game, error)
	List(ctx context.Context, namePrefix string) ([]*domain.Game, error)
}

type gameService struct {
	store repository.Store
	catalogConfig
}

// NewGameService creates a new instance of GameService
func NewGameService(store repository.Store, opts ...CatalogOption) GameService {
	return &gameService{store: store, catalogConfig: newCatalogConfig(opts)}
}

func (s *gameService) Create(ctx context.Context, input GameInput) (*domain.Game, error) {
	if input.StockTotal < 1 {
		return nil, ErrInvalidStock
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	game := &domain.Game{
		ID:        uuid.New(),
		CreatedAt: time.Now(),
	}
	if err := s.apply(ctx, s.store, game, input); err != nil {
		return nil, err
	}

	if err := s.store.Games().Create(ctx, game); err != nil {
		return nil, translateGameError(err)
	}
	return game, nil
}

// Update changes catalog data only; existing rentals keep their frozen price.
// The stock may shrink, but never below the days its open rentals have booked.
func (s *gameService) Update(ctx context.Context, id uuid.UUID, input GameInput) (*domain.Game, error) {
	if input.StockTotal < 0 {
		return nil, ErrInvalidStock
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var game *domain.Game
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		var err error
		game, err = tx.Games().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}

		open, err := tx.Rentals().ListOpenByGame(ctx, id)
		if err != nil {
			return err
		}
		if booked := BookedDays(id, open); input.StockTotal < booked {
			return fmt.Errorf("%w: %d days booked, stock total %d", ErrStockBelowBooked, booked, input.StockTotal)
		}

		if err := s.apply(ctx, tx, game, input); err != nil {
			return err
		}
		return translateGameError(tx.Games().Update(ctx, game))
	})
	if err != nil {
		return nil, err
	}
	return game, nil
}

func (s *gameService) List(ctx context.Context, namePrefix string) ([]*domain.Game, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	games, err := s.store.Games().List(ctx, namePrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	return games, nil
}

// apply validates input against the catalog and copies it onto game
func (s *gameService) apply(ctx context.Context, store repository.Store, game *domain.Game, input GameInput) error {
	// Checked at the stored precision, so 0.004 is not a price.
	price := input.PricePerDay.Round(2)
	if !price.IsPositive() {
		return ErrInvalidPrice
	}

	category, err := store.Categories().FindByID(ctx, input.CategoryID)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return ErrUnknownCategory
		}
		return err
	}

	game.Name = input.Name
	game.Image = input.Image
	game.StockTotal = input.StockTotal
	game.CategoryID = category.ID
	game.CategoryName = category.Name
	game.PricePerDay = price
	return nil
}

func translateGameError(err error) error {
	if errors.Is(err, repository.ErrGameCategory) {
		return ErrUnknownCategory
	}
	return err
}
