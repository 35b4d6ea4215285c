package domain

import (
	"time"

	"github.com/google/uuid"
)

// Customer represents a person allowed to rent games
type Customer struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Phone     string    `json:"phone" db:"phone"`
	CPF       string    `json:"cpf" db:"cpf"`
	Birthday  Date      `json:"birthday" db:"birthday"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
