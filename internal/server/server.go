package server

import (
	"fmt"
	"net/http"
	"time"

	"game-rental/internal/config"
	"game-rental/internal/database"
	custommiddleware "game-rental/internal/middleware"
	"game-rental/internal/repository"
	"game-rental/internal/service"
	"game-rental/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     database.Service
	redis  *redis.Client
}

// NewServer wires repositories, services and handlers behind one router.
// redisClient may be nil, in which case write endpoints are not rate limited.
func NewServer(cfg *config.Config, logger *zap.Logger, db database.Service, redisClient *redis.Client, opts ...service.RentalOption) *Server {
	store := repository.NewStore(db.DB())

	rentalOpts := append([]service.RentalOption{service.WithStoreTimeout(cfg.Database.QueryTimeout)}, opts...)

	catalogTimeout := service.WithCatalogStoreTimeout(cfg.Database.QueryTimeout)

	categoryHandler := transport.NewCategoryHandler(service.NewCategoryService(store, catalogTimeout), logger)
	gameHandler := transport.NewGameHandler(service.NewGameService(store, catalogTimeout), logger)
	customerHandler := transport.NewCustomerHandler(service.NewCustomerService(store, catalogTimeout), logger)
	rentalHandler := transport.NewRentalHandler(service.NewRentalService(store, logger, rentalOpts...), logger)

	router := chi.NewRouter()
	router.Use(custommiddleware.DefaultMiddlewareStack()...)
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.IsDevelopment()))

	var writeMiddleware []func(http.Handler) http.Handler
	if redisClient != nil && cfg.RateLimit.Enabled {
		writeMiddleware = append(writeMiddleware, custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
			RequestsPerWindow: cfg.RateLimit.Requests,
			Window:            cfg.RateLimit.Window,
			KeyPrefix:         "game_rental:writes",
		}, logger))
	}

	router.Get("/health", healthHandler(db))

	categoryHandler.RegisterRoutes(router, writeMiddleware...)
	gameHandler.RegisterRoutes(router, writeMiddleware...)
	customerHandler.RegisterRoutes(router, writeMiddleware...)
	rentalHandler.RegisterRoutes(router, writeMiddleware...)

	return &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		db:     db,
		redis:  redisClient,
	}
}

// healthHandler reports 200 while the database answers pings and 503 otherwise
func healthHandler(db database.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dbHealth := db.Health(r.Context())

		status := http.StatusOK
		overall := "ok"
		if dbHealth["status"] != "up" {
			status = http.StatusServiceUnavailable
			overall = "degraded"
		}

		custommiddleware.RespondWithJSON(w, status, map[string]interface{}{
			"status":   overall,
			"database": dbHealth,
		})
	}
}

// Close releases the database pool and the Redis client
func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis client", zap.Error(err))
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
			return err
		}
	}

	return nil
}
