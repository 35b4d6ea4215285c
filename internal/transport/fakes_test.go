package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"game-rental/internal/domain"
	"game-rental/internal/repository"
	"game-rental/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type fakeCategoryService struct {
	create func(name string) (*domain.Category, error)
	list   func() ([]*domain.Category, error)
}

func (f *fakeCategoryService) Create(_ context.Context, name string) (*domain.Category, error) {
	return f.create(name)
}

func (f *fakeCategoryService) List(context.Context) ([]*domain.Category, error) {
	return f.list()
}

type fakeGameService struct {
	create func(in service.GameInput) (*domain.Game, error)
	update func(id uuid.UUID, in service.GameInput) (*domain.Game, error)
	list   func(prefix string) ([]*domain.Game, error)
}

func (f *fakeGameService) Create(_ context.Context, in service.GameInput) (*domain.Game, error) {
	return f.create(in)
}

func (f *fakeGameService) Update(_ context.Context, id uuid.UUID, in service.GameInput) (*domain.Game, error) {
	return f.update(id, in)
}

func (f *fakeGameService) List(_ context.Context, prefix string) ([]*domain.Game, error) {
	return f.list(prefix)
}

type fakeCustomerService struct {
	create func(in service.CustomerInput) (*domain.Customer, error)
	update func(id uuid.UUID, in service.CustomerInput) (*domain.Customer, error)
	get    func(id uuid.UUID) (*domain.Customer, error)
	list   func(prefix string) ([]*domain.Customer, error)
}

func (f *fakeCustomerService) Create(_ context.Context, in service.CustomerInput) (*domain.Customer, error) {
	return f.create(in)
}

func (f *fakeCustomerService) Update(_ context.Context, id uuid.UUID, in service.CustomerInput) (*domain.Customer, error) {
	return f.update(id, in)
}

func (f *fakeCustomerService) GetByID(_ context.Context, id uuid.UUID) (*domain.Customer, error) {
	return f.get(id)
}

func (f *fakeCustomerService) List(_ context.Context, prefix string) ([]*domain.Customer, error) {
	return f.list(prefix)
}

type fakeRentalService struct {
	create func(customerID, gameID uuid.UUID, days int) (*domain.Rental, error)
	ret    func(id uuid.UUID) (*domain.Rental, error)
	del    func(id uuid.UUID) error
	get    func(id uuid.UUID) (*domain.Rental, error)
	list   func(filter repository.RentalFilter) ([]*domain.Rental, error)
}

func (f *fakeRentalService) Create(_ context.Context, customerID, gameID uuid.UUID, days int) (*domain.Rental, error) {
	return f.create(customerID, gameID, days)
}

func (f *fakeRentalService) Return(_ context.Context, id uuid.UUID) (*domain.Rental, error) {
	return f.ret(id)
}

func (f *fakeRentalService) Delete(_ context.Context, id uuid.UUID) error {
	return f.del(id)
}

func (f *fakeRentalService) GetByID(_ context.Context, id uuid.UUID) (*domain.Rental, error) {
	return f.get(id)
}

func (f *fakeRentalService) List(_ context.Context, filter repository.RentalFilter) ([]*domain.Rental, error) {
	return f.list(filter)
}

type registrar interface {
	RegisterRoutes(r chi.Router, writeMiddleware ...func(http.Handler) http.Handler)
}

func serve(t *testing.T, h registrar, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	router := chi.NewRouter()
	h.RegisterRoutes(router)

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

var nopLogger = zap.NewNop()
