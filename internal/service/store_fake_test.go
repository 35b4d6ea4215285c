package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"game-rental/internal/domain"
	"game-rental/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// memStore is an in-memory repository.Store. WithinTx runs units of work one
// at a time, which is the same guarantee the row locks give on Postgres.
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	categories map[uuid.UUID]*domain.Category
	games      map[uuid.UUID]*domain.Game
	customers  map[uuid.UUID]*domain.Customer
	rentals    map[uuid.UUID]*domain.Rental

	// fail, when set, is returned by every repository call
	fail error
	// delay holds every repository call back, like a stalled database
	delay time.Duration
	calls atomic.Int64
}

func newMemStore() *memStore {
	return &memStore{
		categories: make(map[uuid.UUID]*domain.Category),
		games:      make(map[uuid.UUID]*domain.Game),
		customers:  make(map[uuid.UUID]*domain.Customer),
		rentals:    make(map[uuid.UUID]*domain.Rental),
	}
}

func (m *memStore) Categories() repository.CategoryRepository { return memCategories{m} }
func (m *memStore) Games() repository.GameRepository           { return memGames{m} }
func (m *memStore) Customers() repository.CustomerRepository   { return memCustomers{m} }
func (m *memStore) Rentals() repository.RentalRepository       { return memRentals{m} }

func (m *memStore) WithinTx(ctx context.Context, fn func(tx repository.Store) error) error {
	if err := m.enter(ctx); err != nil {
		return err
	}
	m.txMu.Lock()
	defer m.txMu.Unlock()
	return fn(m)
}

// enter counts a store access and reports injected or context failures
func (m *memStore) enter(ctx context.Context) error {
	m.calls.Add(1)
	if m.fail != nil {
		return m.fail
	}
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
		}
	}
	if err := ctx.Err(); err != nil {
		return errors.Join(repository.ErrStoreUnavailable, err)
	}
	return nil
}

func (m *memStore) addCategory(name string) *domain.Category {
	c := &domain.Category{ID: uuid.New(), Name: name}
	m.categories[c.ID] = c
	return c
}

func (m *memStore) addGame(stock int, price string) *domain.Game {
	g := &domain.Game{
		ID:          uuid.New(),
		Name:        "game-" + uuid.NewString(),
		StockTotal:  stock,
		PricePerDay: decimal.RequireFromString(price),
	}
	m.games[g.ID] = g
	return g
}

func (m *memStore) addCustomer() *domain.Customer {
	c := &domain.Customer{ID: uuid.New(), Name: "Ana", Phone: "21999990000", CPF: "12345678901"}
	m.customers[c.ID] = c
	return c
}

func (m *memStore) openDays(gameID uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, r := range m.rentals {
		if r.GameID == gameID && r.IsOpen() {
			total += r.DaysRented
		}
	}
	return total
}

type memCategories struct{ m *memStore }

func (r memCategories) Create(ctx context.Context, category *domain.Category) error {
	if err := r.m.enter(ctx); err != nil {
		return err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, c := range r.m.categories {
		if c.Name == category.Name {
			return repository.ErrCategoryAlreadyExists
		}
	}
	cp := *category
	r.m.categories[category.ID] = &cp
	return nil
}

func (r memCategories) List(ctx context.Context) ([]*domain.Category, error) {
	if err := r.m.enter(ctx); err != nil {
		return nil, err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make([]*domain.Category, 0, len(r.m.categories))
	for _, c := range r.m.categories {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r memCategories) FindByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	if err := r.m.enter(ctx); err != nil {
		return nil, err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	c, ok := r.m.categories[id]
	if !ok {
		return nil, repository.ErrCategoryNotFound
	}
	cp := *c
	return &cp, nil
}

type memGames struct{ m *memStore }

func (r memGames) save(ctx context.Context, game *domain.Game, mustExist bool) error {
	if err := r.m.enter(ctx); err != nil {
		return err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.games[game.ID]; mustExist && !ok {
		return repository.ErrGameNotFound
	}
	for _, g := range r.m.games {
		if g.ID != game.ID && g.Name == game.Name {
			return repository.ErrGameAlreadyExists
		}
	}
	if _, ok := r.m.categories[game.CategoryID]; !ok {
		return repository.ErrGameCategory
	}
	cp := *game
	r.m.games[game.ID] = &cp
	return nil
}

func (r memGames) Create(ctx context.Context, game *domain.Game) error {
	return r.save(ctx, game, false)
}

func (r memGames) Update(ctx context.Context, game *domain.Game) error {
	return r.save(ctx, game, true)
}

func (r memGames) FindByID(ctx context.Context, id uuid.UUID) (*domain.Game, error) {
	if err := r.m.enter(ctx); err != nil {
		return nil, err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	g, ok := r.m.games[id]
	if !ok {
		return nil, repository.ErrGameNotFound
	}
	cp := *g
	return &cp, nil
}

func (r memGames) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Game, error) {
	return r.FindByID(ctx, id)
}

func (r memGames) List(ctx context.Context, namePrefix string) ([]*domain.Game, error) {
	if err := r.m.enter(ctx); err != nil {
		return nil, err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*domain.Game
	for _, g := range r.m.games {
		if strings.HasPrefix(strings.ToLower(g.Name), strings.ToLower(namePrefix)) {
			cp := *g
			out = append(out, &cp)
		}
	}
	return out, nil
}

type memCustomers struct{ m *memStore }

func (r memCustomers) cpfTaken(customer *domain.Customer) bool {
	for _, c := range r.m.customers {
		if c.ID != customer.ID && c.CPF == customer.CPF {
			return true
		}
	}
	return false
}

func (r memCustomers) Create(ctx context.Context, customer *domain.Customer) error {
	if err := r.m.enter(ctx); err != nil {
		return err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.cpfTaken(customer) {
		return repository.ErrCustomerCPFTaken
	}
	cp := *customer
	r.m.customers[customer.ID] = &cp
	return nil
}

func (r memCustomers) Update(ctx context.Context, customer *domain.Customer) error {
	if err := r.m.enter(ctx); err != nil {
		return err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.cpfTaken(customer) {
		return repository.ErrCustomerCPFTaken
	}
	if _, ok := r.m.customers[customer.ID]; !ok {
		return repository.ErrCustomerNotFound
	}
	cp := *customer
	r.m.customers[customer.ID] = &cp
	return nil
}

func (r memCustomers) FindByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	if err := r.m.enter(ctx); err != nil {
		return nil, err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	c, ok := r.m.customers[id]
	if !ok {
		return nil, repository.ErrCustomerNotFound
	}
	cp := *c
	return &cp, nil
}

func (r memCustomers) List(ctx context.Context, cpfPrefix string) ([]*domain.Customer, error) {
	if err := r.m.enter(ctx); err != nil {
		return nil, err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*domain.Customer
	for _, c := range r.m.customers {
		if strings.HasPrefix(c.CPF, cpfPrefix) {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

type memRentals struct{ m *memStore }

func (r memRentals) Create(ctx context.Context, rental *domain.Rental) error {
	if err := r.m.enter(ctx); err != nil {
		return err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.customers[rental.CustomerID]; !ok {
		return repository.ErrCustomerNotFound
	}
	if _, ok := r.m.games[rental.GameID]; !ok {
		return repository.ErrGameNotFound
	}
	cp := *rental
	r.m.rentals[rental.ID] = &cp
	return nil
}

func (r memRentals) FindByID(ctx context.Context, id uuid.UUID) (*domain.Rental, error) {
	if err := r.m.enter(ctx); err != nil {
		return nil, err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	rental, ok := r.m.rentals[id]
	if !ok {
		return nil, repository.ErrRentalNotFound
	}
	cp := *rental
	return &cp, nil
}

func (r memRentals) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Rental, error) {
	return r.FindByID(ctx, id)
}

func (r memRentals) List(ctx context.Context, filter repository.RentalFilter) ([]*domain.Rental, error) {
	if err := r.m.enter(ctx); err != nil {
		return nil, err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*domain.Rental
	for _, rental := range r.m.rentals {
		if filter.CustomerID != nil && rental.CustomerID != *filter.CustomerID {
			continue
		}
		if filter.GameID != nil && rental.GameID != *filter.GameID {
			continue
		}
		cp := *rental
		out = append(out, &cp)
	}
	return out, nil
}

func (r memRentals) ListOpenByGame(ctx context.Context, gameID uuid.UUID) ([]*domain.Rental, error) {
	if err := r.m.enter(ctx); err != nil {
		return nil, err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*domain.Rental
	for _, rental := range r.m.rentals {
		if rental.GameID == gameID && rental.IsOpen() {
			cp := *rental
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r memRentals) MarkReturned(ctx context.Context, id uuid.UUID, returnDate domain.Date, delayFee decimal.Decimal) error {
	if err := r.m.enter(ctx); err != nil {
		return err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	rental, ok := r.m.rentals[id]
	if !ok {
		return repository.ErrRentalNotFound
	}
	if !rental.IsOpen() {
		return repository.ErrRentalAlreadyReturned
	}
	rd := returnDate
	rental.ReturnDate = &rd
	rental.DelayFee = decimal.NewNullDecimal(delayFee)
	return nil
}

func (r memRentals) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.m.enter(ctx); err != nil {
		return err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.rentals[id]; !ok {
		return repository.ErrRentalNotFound
	}
	delete(r.m.rentals, id)
	return nil
}
