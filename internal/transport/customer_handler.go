package transport

import (
	"net/http"

	"game-rental/internal/domain"
	"game-rental/internal/middleware"
	"game-rental/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CustomerRequest is the payload for creating or updating a customer
type CustomerRequest struct {
	Name     string      `json:"name" validate:"required,max=200"`
	Phone    string      `json:"phone" validate:"required,digits,min=10,max=11"`
	CPF      string      `json:"cpf" validate:"required,digits,len=11"`
	Birthday domain.Date `json:"birthday" validate:"required"`
}

func (r *CustomerRequest) Sanitize() {
	r.Name = middleware.StripMarkup(r.Name)
	r.Phone = middleware.StripMarkup(r.Phone)
	r.CPF = middleware.StripMarkup(r.CPF)
}

func (r *CustomerRequest) input() service.CustomerInput {
	return service.CustomerInput{
		Name:     r.Name,
		Phone:    r.Phone,
		CPF:      r.CPF,
		Birthday: r.Birthday,
	}
}

// CustomerHandler handles HTTP requests for customers
type CustomerHandler struct {
	customerService service.CustomerService
	logger          *zap.Logger
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(customerService service.CustomerService, logger *zap.Logger) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
		logger:          logger,
	}
}

// RegisterRoutes registers the customer routes; writes go through
// writeMiddleware
func (h *CustomerHandler) RegisterRoutes(r chi.Router, writeMiddleware ...func(http.Handler) http.Handler) {
	r.Route("/customers", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
		r.With(writeMiddleware...).Post("/", h.Create)
		r.With(writeMiddleware...).Put("/{id}", h.Update)
	})
}

// List handles GET /customers?cpf=prefix
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	customers, err := h.customerService.List(r.Context(), r.URL.Query().Get("cpf"))
	if err != nil {
		respondWithServiceError(w, h.logger, "List customers", err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, customers)
}

// Get handles GET /customers/{id}
func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	customer, err := h.customerService.GetByID(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, h.logger, "Get customer", err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, customer)
}

// Create handles POST /customers
func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CustomerRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	customer, err := h.customerService.Create(r.Context(), req.input())
	if err != nil {
		respondWithServiceError(w, h.logger, "Create customer", err)
		return
	}

	h.logger.Info("Customer created", zap.String("customer_id", customer.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, customer)
}

// Update handles PUT /customers/{id}
func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	var req CustomerRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	customer, err := h.customerService.Update(r.Context(), id, req.input())
	if err != nil {
		respondWithServiceError(w, h.logger, "Update customer", err)
		return
	}

	h.logger.Info("Customer updated", zap.String("customer_id", customer.ID.String()))
	middleware.RespondWithJSON(w, http.StatusOK, customer)
}
