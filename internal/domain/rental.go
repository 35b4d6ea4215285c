package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Rental is a single game rented by a customer. It is open while
// ReturnDate is nil and closed once it is set.
type Rental struct {
	ID            uuid.UUID           `json:"id" db:"id"`
	CustomerID    uuid.UUID           `json:"customerId" db:"customer_id"`
	GameID        uuid.UUID           `json:"gameId" db:"game_id"`
	RentDate      Date                `json:"rentDate" db:"rent_date"`
	DaysRented    int                 `json:"daysRented" db:"days_rented"`
	ReturnDate    *Date               `json:"returnDate" db:"return_date"`
	OriginalPrice decimal.Decimal     `json:"originalPrice" db:"original_price"`
	DelayFee      decimal.NullDecimal `json:"delayFee" db:"delay_fee"`
	CreatedAt     time.Time           `json:"createdAt" db:"created_at"`
}

// IsOpen reports whether the game has not been returned yet.
func (r *Rental) IsOpen() bool {
	return r.ReturnDate == nil
}
