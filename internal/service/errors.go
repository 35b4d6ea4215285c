package service

import (
	"errors"

	"game-rental/internal/repository"
)

var (
	ErrInvalidQuantity   = errors.New("days rented must be at least 1")
	ErrInsufficientStock = errors.New("not enough copies of this game are available")
	ErrUnknownCustomer   = errors.New("customer does not exist")
	ErrUnknownGame       = errors.New("game does not exist")
	ErrUnknownCategory   = errors.New("category does not exist")
	ErrOpenRental        = errors.New("rental has not been returned yet")
	ErrComputation       = errors.New("rental data is inconsistent")
	ErrInvalidPrice      = errors.New("price per day must be greater than zero")
	ErrInvalidStock      = errors.New("stock total is out of range")
	ErrStockBelowBooked  = errors.New("stock total is below the days booked by open rentals")

	// Re-exported so handlers only depend on this package.
	ErrRentalNotFound   = repository.ErrRentalNotFound
	ErrAlreadyReturned  = repository.ErrRentalAlreadyReturned
	ErrCustomerNotFound = repository.ErrCustomerNotFound
	ErrGameNotFound     = repository.ErrGameNotFound
	ErrStoreUnavailable = repository.ErrStoreUnavailable
)

// Kind groups errors by who is at fault and whether a retry can help.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindUnavailable:
		return "unavailable"
	default:
		return "internal"
	}
}

var kinds = []struct {
	kind Kind
	errs []error
}{
	{KindUnavailable, []error{repository.ErrStoreUnavailable}},
	{KindValidation, []error{
		ErrInvalidQuantity,
		ErrInsufficientStock,
		ErrUnknownCustomer,
		ErrUnknownGame,
		ErrUnknownCategory,
		ErrOpenRental,
		ErrInvalidPrice,
		ErrInvalidStock,
	}},
	{KindConflict, []error{
		ErrStockBelowBooked,
		repository.ErrRentalAlreadyReturned,
		repository.ErrCategoryAlreadyExists,
		repository.ErrGameAlreadyExists,
		repository.ErrCustomerCPFTaken,
	}},
	{KindNotFound, []error{
		repository.ErrRentalNotFound,
		repository.ErrCustomerNotFound,
		repository.ErrGameNotFound,
		repository.ErrCategoryNotFound,
	}},
}

// KindOf classifies err. Anything unrecognised, ErrComputation included, is
// KindInternal.
func KindOf(err error) Kind {
	for _, group := range kinds {
		for _, target := range group.errs {
			if errors.Is(err, target) {
				return group.kind
			}
		}
	}
	return KindInternal
}
