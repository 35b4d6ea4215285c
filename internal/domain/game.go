package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Game represents a board game title owned by the shop.
// StockTotal is the nominal number of owned copies; availability is derived
// from open rentals and never stored.
type Game struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	Name         string          `json:"name" db:"name"`
	Image        string          `json:"image" db:"image"`
	StockTotal   int             `json:"stockTotal" db:"stock_total"`
	CategoryID   uuid.UUID       `json:"categoryId" db:"category_id"`
	CategoryName string          `json:"categoryName,omitempty" db:"category_name"`
	PricePerDay  decimal.Decimal `json:"pricePerDay" db:"price_per_day"`
	CreatedAt    time.Time       `json:"createdAt" db:"created_at"`
}
