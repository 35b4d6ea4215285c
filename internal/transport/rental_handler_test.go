package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"game-rental/internal/domain"
	"game-rental/internal/middleware"
	"game-rental/internal/repository"
	"game-rental/internal/service"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRental(customerID, gameID uuid.UUID, days int) *domain.Rental {
	return &domain.Rental{
		ID:            uuid.New(),
		CustomerID:    customerID,
		GameID:        gameID,
		RentDate:      domain.NewDate(2024, time.January, 1),
		DaysRented:    days,
		OriginalPrice: decimal.NewFromInt(int64(days) * 10),
	}
}

func TestRentalHandler_Create(t *testing.T) {
	customerID, gameID := uuid.New(), uuid.New()
	var gotDays int
	h := NewRentalHandler(&fakeRentalService{
		create: func(c, g uuid.UUID, days int) (*domain.Rental, error) {
			gotDays = days
			return sampleRental(c, g, days), nil
		},
	}, nopLogger)

	body := fmt.Sprintf(`{"customerId":%q,"gameId":%q,"daysRented":3}`, customerID, gameID)
	w := serve(t, h, http.MethodPost, "/rentals", body)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, 3, gotDays)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, customerID.String(), got["customerId"])
	assert.Equal(t, "2024-01-01", got["rentDate"])
	assert.Nil(t, got["returnDate"])
	assert.Nil(t, got["delayFee"])
}

func TestRentalHandler_CreateRejectsMissingIDs(t *testing.T) {
	h := NewRentalHandler(&fakeRentalService{}, nopLogger)

	w := serve(t, h, http.MethodPost, "/rentals", `{"daysRented":3}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(t, h, http.MethodPost, "/rentals", `{"customerId":"not-a-uuid"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRentalHandler_ErrorStatus(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"invalid quantity", service.ErrInvalidQuantity, http.StatusBadRequest, service.ErrInvalidQuantity.Error()},
		{"insufficient stock", service.ErrInsufficientStock, http.StatusBadRequest, service.ErrInsufficientStock.Error()},
		{"unknown customer", service.ErrUnknownCustomer, http.StatusBadRequest, service.ErrUnknownCustomer.Error()},
		{"unavailable", fmt.Errorf("failed to lock game: %w: %w", service.ErrStoreUnavailable, errors.New("dial tcp")), http.StatusServiceUnavailable, "service temporarily unavailable"},
		{"unexpected", errors.New("syntax error at or near"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewRentalHandler(&fakeRentalService{
				create: func(uuid.UUID, uuid.UUID, int) (*domain.Rental, error) { return nil, tt.err },
			}, nopLogger)

			body := fmt.Sprintf(`{"customerId":%q,"gameId":%q,"daysRented":0}`, uuid.New(), uuid.New())
			w := serve(t, h, http.MethodPost, "/rentals", body)

			assert.Equal(t, tt.status, w.Code)
			var response middleware.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, tt.message, response.Error.Message)
		})
	}
}

func TestRentalHandler_Return(t *testing.T) {
	id := uuid.New()
	h := NewRentalHandler(&fakeRentalService{
		ret: func(got uuid.UUID) (*domain.Rental, error) {
			if got != id {
				return nil, service.ErrRentalNotFound
			}
			rental := sampleRental(uuid.New(), uuid.New(), 3)
			returned := domain.NewDate(2024, time.January, 6)
			rental.ReturnDate = &returned
			rental.DelayFee = decimal.NewNullDecimal(decimal.NewFromInt(20))
			return rental, nil
		},
	}, nopLogger)

	w := serve(t, h, http.MethodPut, "/rentals/"+id.String()+"/return", "")
	require.Equal(t, http.StatusOK, w.Code)
	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "2024-01-06", got["returnDate"])

	w = serve(t, h, http.MethodPut, "/rentals/"+uuid.NewString()+"/return", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = serve(t, h, http.MethodPut, "/rentals/42/return", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRentalHandler_ReturnTwice(t *testing.T) {
	h := NewRentalHandler(&fakeRentalService{
		ret: func(uuid.UUID) (*domain.Rental, error) { return nil, service.ErrAlreadyReturned },
	}, nopLogger)

	w := serve(t, h, http.MethodPut, "/rentals/"+uuid.NewString()+"/return", "")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRentalHandler_Delete(t *testing.T) {
	open, closed := uuid.New(), uuid.New()
	h := NewRentalHandler(&fakeRentalService{
		del: func(id uuid.UUID) error {
			switch id {
			case open:
				return service.ErrOpenRental
			case closed:
				return nil
			}
			return service.ErrRentalNotFound
		},
	}, nopLogger)

	assert.Equal(t, http.StatusBadRequest, serve(t, h, http.MethodDelete, "/rentals/"+open.String(), "").Code)
	assert.Equal(t, http.StatusOK, serve(t, h, http.MethodDelete, "/rentals/"+closed.String(), "").Code)
	assert.Equal(t, http.StatusNotFound, serve(t, h, http.MethodDelete, "/rentals/"+uuid.NewString(), "").Code)
}

func TestRentalHandler_ListFilters(t *testing.T) {
	customerID := uuid.New()
	var got repository.RentalFilter
	h := NewRentalHandler(&fakeRentalService{
		list: func(filter repository.RentalFilter) ([]*domain.Rental, error) {
			got = filter
			return []*domain.Rental{}, nil
		},
	}, nopLogger)

	w := serve(t, h, http.MethodGet, "/rentals?customerId="+customerID.String(), "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, got.CustomerID)
	assert.Equal(t, customerID, *got.CustomerID)
	assert.Nil(t, got.GameID)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = serve(t, h, http.MethodGet, "/rentals?gameId=abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// Validates that every classified error maps to one fixed status
func TestProperty_ServiceErrorsMapToStatus(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{service.ErrInvalidQuantity, http.StatusBadRequest},
		{service.ErrInsufficientStock, http.StatusBadRequest},
		{service.ErrOpenRental, http.StatusBadRequest},
		{service.ErrUnknownGame, http.StatusBadRequest},
		{service.ErrAlreadyReturned, http.StatusConflict},
		{repository.ErrCustomerCPFTaken, http.StatusConflict},
		{service.ErrRentalNotFound, http.StatusNotFound},
		{service.ErrCustomerNotFound, http.StatusNotFound},
		{service.ErrStoreUnavailable, http.StatusServiceUnavailable},
		{service.ErrComputation, http.StatusInternalServerError},
	}

	properties := gopter.NewProperties(nil)

	properties.Property("wrapping does not change the status", prop.ForAll(
		func(pick int, depth int) bool {
			c := cases[pick%len(cases)]
			err := c.err
			for i := 0; i < depth; i++ {
				err = fmt.Errorf("layer %d: %w", i, err)
			}
			return statusFor(service.KindOf(err)) == c.status
		},
		gen.IntRange(0, 1000),
		gen.IntRange(0, 4),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
