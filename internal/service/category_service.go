package service

import (
	"context"
	"fmt"
	"time"

	"game-rental/internal/domain"
	"game-rental/internal/repository"

	"github.com/google/uuid"
)

// CatalogOption customises the category, game and customer services
type CatalogOption func(*catalogConfig)

type catalogConfig struct {
	timeout time.Duration
}

// WithCatalogStoreTimeout bounds each catalog operation; zero or negative
// disables the bound
func WithCatalogStoreTimeout(timeout time.Duration) CatalogOption {
	return func(c *catalogConfig) { c.timeout = timeout }
}

func newCatalogConfig(opts []CatalogOption) catalogConfig {
	c := catalogConfig{timeout: DefaultStoreTimeout}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func (c catalogConfig) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return boundContext(ctx, c.timeout)
}

// CategoryService defines the interface for category business logic
type CategoryService interface {
	Create(ctx context.Context, name string) (*domain.Category, error)
	List(ctx context.Context) ([]*domain.Category, error)
}

type categoryService struct {
	store repository.Store
	catalogConfig
}

// NewCategoryService creates a new instance of CategoryService
func NewCategoryService(store repository.Store, opts ...CatalogOption) CategoryService {
	return &categoryService{store: store, catalogConfig: newCatalogConfig(opts)}
}

func (s *categoryService) Create(ctx context.Context, name string) (*domain.Category, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	category := &domain.Category{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: time.Now(),
	}

	if err := s.store.Categories().Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *categoryService) List(ctx context.Context) ([]*domain.Category, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	categories, err := s.store.Categories().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}
