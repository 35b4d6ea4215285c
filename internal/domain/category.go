package domain

import (
	"time"

	"github.com/google/uuid"
)

// Category groups games in the catalog
type Category struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
