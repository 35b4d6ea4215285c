package transport

import (
	"net/http"

	"game-rental/internal/middleware"
	"game-rental/internal/repository"
	"game-rental/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateRentalRequest is the payload for renting a game. daysRented is
// checked by the rental service so that a non-positive value is reported
// the same way however the service is reached.
type CreateRentalRequest struct {
	CustomerID uuid.UUID `json:"customerId" validate:"required"`
	GameID     uuid.UUID `json:"gameId" validate:"required"`
	DaysRented int       `json:"daysRented"`
}

// RentalHandler handles HTTP requests for rentals
type RentalHandler struct {
	rentalService service.RentalService
	logger        *zap.Logger
}

// NewRentalHandler creates a new RentalHandler
func NewRentalHandler(rentalService service.RentalService, logger *zap.Logger) *RentalHandler {
	return &RentalHandler{
		rentalService: rentalService,
		logger:        logger,
	}
}

// RegisterRoutes registers the rental routes; writes go through
// writeMiddleware
func (h *RentalHandler) RegisterRoutes(r chi.Router, writeMiddleware ...func(http.Handler) http.Handler) {
	r.Route("/rentals", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
		r.Group(func(r chi.Router) {
			r.Use(writeMiddleware...)
			r.Post("/", h.Create)
			r.Put("/{id}/return", h.Return)
			r.Delete("/{id}", h.Delete)
		})
	})
}

// List handles GET /rentals?customerId=&gameId=
func (h *RentalHandler) List(w http.ResponseWriter, r *http.Request) {
	var filter repository.RentalFilter
	var err error

	if filter.CustomerID, err = optionalUUIDQuery(r, "customerId"); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid customerId")
		return
	}
	if filter.GameID, err = optionalUUIDQuery(r, "gameId"); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid gameId")
		return
	}

	rentals, err := h.rentalService.List(r.Context(), filter)
	if err != nil {
		respondWithServiceError(w, h.logger, "List rentals", err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, rentals)
}

// Get handles GET /rentals/{id}
func (h *RentalHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	rental, err := h.rentalService.GetByID(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, h.logger, "Get rental", err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, rental)
}

// Create handles POST /rentals
func (h *RentalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRentalRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	rental, err := h.rentalService.Create(r.Context(), req.CustomerID, req.GameID, req.DaysRented)
	if err != nil {
		respondWithServiceError(w, h.logger, "Create rental", err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusCreated, rental)
}

// Return handles PUT /rentals/{id}/return
func (h *RentalHandler) Return(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	rental, err := h.rentalService.Return(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, h.logger, "Return rental", err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, rental)
}

// Delete handles DELETE /rentals/{id}
func (h *RentalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	if err := h.rentalService.Delete(r.Context(), id); err != nil {
		respondWithServiceError(w, h.logger, "Delete rental", err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
