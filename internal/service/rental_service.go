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
	"go.uber.org/zap"
)

// DefaultStoreTimeout bounds every rental operation's use of the store
const DefaultStoreTimeout = 5 * time.Second

// Clock returns the current instant. It is sampled once per operation.
type Clock func() time.Time

// RentalService is the rental lifecycle: admission, pricing, return and removal
type RentalService interface {
	Create(ctx context.Context, customerID, gameID uuid.UUID, daysRented int) (*domain.Rental, error)
	Return(ctx context.Context, rentalID uuid.UUID) (*domain.Rental, error)
	Delete(ctx context.Context, rentalID uuid.UUID) error
	GetByID(ctx context.Context, rentalID uuid.UUID) (*domain.Rental, error)
	List(ctx context.Context, filter repository.RentalFilter) ([]*domain.Rental, error)
}

// RentalOption customises a RentalService
type RentalOption func(*rentalService)

// WithClock replaces time.Now, mainly for tests
func WithClock(clock Clock) RentalOption {
	return func(s *rentalService) { s.clock = clock }
}

// WithLocation sets the time zone that decides which calendar day it is
func WithLocation(loc *time.Location) RentalOption {
	return func(s *rentalService) { s.location = loc }
}

// WithStoreTimeout bounds each operation; zero or negative disables the bound
func WithStoreTimeout(timeout time.Duration) RentalOption {
	return func(s *rentalService) { s.timeout = timeout }
}

type rentalService struct {
	store    repository.Store
	logger   *zap.Logger
	clock    Clock
	location *time.Location
	timeout  time.Duration
}

// NewRentalService creates a new instance of RentalService
func NewRentalService(store repository.Store, logger *zap.Logger, opts ...RentalOption) RentalService {
	s := &rentalService{
		store:    store,
		logger:   logger,
		clock:    time.Now,
		location: time.UTC,
		timeout:  DefaultStoreTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create admits a rental if the game has enough stock, freezing its price.
// The stock check and the insert run in one transaction holding the game's
// row lock, so concurrent requests for the same game cannot oversubscribe it.
func (s *rentalService) Create(ctx context.Context, customerID, gameID uuid.UUID, daysRented int) (*domain.Rental, error) {
	if daysRented < 1 {
		return nil, ErrInvalidQuantity
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	now := s.clock()
	var rental *domain.Rental

	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		if _, err := tx.Customers().FindByID(ctx, customerID); err != nil {
			if errors.Is(err, repository.ErrCustomerNotFound) {
				return ErrUnknownCustomer
			}
			return err
		}

		game, err := tx.Games().FindByIDForUpdate(ctx, gameID)
		if err != nil {
			if errors.Is(err, repository.ErrGameNotFound) {
				return ErrUnknownGame
			}
			return err
		}

		open, err := tx.Rentals().ListOpenByGame(ctx, gameID)
		if err != nil {
			return err
		}

		if err := CheckAvailability(game, open, daysRented); err != nil {
			s.logger.Debug("Rental rejected",
				zap.String("game_id", gameID.String()),
				zap.Int("stock_total", game.StockTotal),
				zap.Int("available", AvailableStock(game, open)),
				zap.Int("days_rented", daysRented),
			)
			return err
		}

		rental = &domain.Rental{
			ID:            uuid.New(),
			CustomerID:    customerID,
			GameID:        gameID,
			RentDate:      s.dateOf(now),
			DaysRented:    daysRented,
			OriginalPrice: RentalPrice(game.PricePerDay, daysRented),
			CreatedAt:     now.UTC(),
		}

		if err := tx.Rentals().Create(ctx, rental); err != nil {
			switch {
			case errors.Is(err, repository.ErrCustomerNotFound):
				return ErrUnknownCustomer
			case errors.Is(err, repository.ErrGameNotFound):
				return ErrUnknownGame
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Rental created",
		zap.String("rental_id", rental.ID.String()),
		zap.String("game_id", gameID.String()),
		zap.String("customer_id", customerID.String()),
		zap.Int("days_rented", daysRented),
		zap.String("original_price", rental.OriginalPrice.StringFixed(2)),
	)
	return rental, nil
}

// Return closes an open rental as of today and charges any delay fee.
// The rental row stays locked from the "still open" check to the update.
func (s *rentalService) Return(ctx context.Context, rentalID uuid.UUID) (*domain.Rental, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	returnDate := s.dateOf(s.clock())
	var rental *domain.Rental

	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		var err error
		rental, err = tx.Rentals().FindByIDForUpdate(ctx, rentalID)
		if err != nil {
			return err
		}

		if !rental.IsOpen() {
			return ErrAlreadyReturned
		}

		game, err := tx.Games().FindByID(ctx, rental.GameID)
		if err != nil {
			if errors.Is(err, repository.ErrGameNotFound) {
				return fmt.Errorf("%w: rental %s references missing game %s", ErrComputation, rental.ID, rental.GameID)
			}
			return err
		}

		fee, err := DelayFee(rental, returnDate, game.PricePerDay)
		if err != nil {
			return err
		}

		if err := tx.Rentals().MarkReturned(ctx, rental.ID, returnDate, fee); err != nil {
			return err
		}

		rental.ReturnDate = &returnDate
		rental.DelayFee = decimal.NewNullDecimal(fee)
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrComputation) {
			s.logger.Error("Rental return computation failed",
				zap.String("rental_id", rentalID.String()),
				zap.Error(err),
			)
		}
		return nil, err
	}

	s.logger.Info("Rental returned",
		zap.String("rental_id", rental.ID.String()),
		zap.String("return_date", returnDate.String()),
		zap.String("delay_fee", rental.DelayFee.Decimal.StringFixed(2)),
	)
	return rental, nil
}

// Delete removes a rental, but only once it has been returned
func (s *rentalService) Delete(ctx context.Context, rentalID uuid.UUID) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		rental, err := tx.Rentals().FindByIDForUpdate(ctx, rentalID)
		if err != nil {
			return err
		}

		if rental.IsOpen() {
			return ErrOpenRental
		}

		return tx.Rentals().Delete(ctx, rentalID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Rental deleted", zap.String("rental_id", rentalID.String()))
	return nil
}

func (s *rentalService) GetByID(ctx context.Context, rentalID uuid.UUID) (*domain.Rental, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return s.store.Rentals().FindByID(ctx, rentalID)
}

func (s *rentalService) List(ctx context.Context, filter repository.RentalFilter) ([]*domain.Rental, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rentals, err := s.store.Rentals().List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list rentals: %w", err)
	}
	return rentals, nil
}

func (s *rentalService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return boundContext(ctx, s.timeout)
}

// boundContext applies a store timeout; zero or negative means unbounded
func boundContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// dateOf is the calendar day of t in the shop's time zone
func (s *rentalService) dateOf(t time.Time) domain.Date {
	return domain.DateOf(t.In(s.location))
}
