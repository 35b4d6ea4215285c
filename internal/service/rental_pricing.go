package service

import (
	"fmt"

	"game-rental/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AvailableStock is the game's nominal stock minus the days booked by its
// open rentals. Closed rentals in open are ignored.
func AvailableStock(game *domain.Game, open []*domain.Rental) int {
	return game.StockTotal - BookedDays(game.ID, open)
}

// BookedDays sums daysRented over the open rentals of a game.
func BookedDays(gameID uuid.UUID, rentals []*domain.Rental) int {
	booked := 0
	for _, rental := range rentals {
		if rental.IsOpen() && rental.GameID == gameID {
			booked += rental.DaysRented
		}
	}
	return booked
}

// CheckAvailability admits a new rental of daysRented only if the stock
// stays non-negative once it is counted.
func CheckAvailability(game *domain.Game, open []*domain.Rental, daysRented int) error {
	if daysRented < 1 {
		return ErrInvalidQuantity
	}
	if AvailableStock(game, open)-daysRented < 0 {
		return ErrInsufficientStock
	}
	return nil
}

// RentalPrice is daysRented times the daily price, at currency precision.
func RentalPrice(pricePerDay decimal.Decimal, daysRented int) decimal.Decimal {
	return pricePerDay.Mul(decimal.NewFromInt(int64(daysRented))).Round(2)
}

// DelayFee charges the daily price for every day past the booked period.
func DelayFee(rental *domain.Rental, returnDate domain.Date, pricePerDay decimal.Decimal) (decimal.Decimal, error) {
	if rental.RentDate.IsZero() {
		return decimal.Zero, fmt.Errorf("%w: rental %s has no rent date", ErrComputation, rental.ID)
	}
	if rental.DaysRented < 1 {
		return decimal.Zero, fmt.Errorf("%w: rental %s has %d days rented", ErrComputation, rental.ID, rental.DaysRented)
	}

	elapsed := returnDate.DaysSince(rental.RentDate)
	if elapsed < 0 {
		return decimal.Zero, fmt.Errorf("%w: rental %s returned on %s before its rent date %s",
			ErrComputation, rental.ID, returnDate, rental.RentDate)
	}

	late := elapsed - rental.DaysRented
	if late <= 0 {
		return decimal.Zero, nil
	}
	return pricePerDay.Mul(decimal.NewFromInt(int64(late))).Round(2), nil
}
