package transport

import (
	"net/http"

	"game-rental/internal/middleware"
	"game-rental/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// GameRequest is the payload for creating or updating a game. The upper
// bounds keep stock times price inside the NUMERIC(12,2) rental columns.
type GameRequest struct {
	Name        string          `json:"name" validate:"required,max=200"`
	Image       string          `json:"image" validate:"required,http_url,max=500"`
	StockTotal  *int            `json:"stockTotal" validate:"required,gte=0,lte=100000"`
	CategoryID  uuid.UUID       `json:"categoryId" validate:"required"`
	PricePerDay decimal.Decimal `json:"pricePerDay" validate:"gt=0,lte=10000"`
}

func (r *GameRequest) Sanitize() {
	r.Name = middleware.StripMarkup(r.Name)
	r.Image = middleware.StripMarkup(r.Image)
}

func (r *GameRequest) input() service.GameInput {
	return service.GameInput{
		Name:        r.Name,
		Image:       r.Image,
		StockTotal:  *r.StockTotal,
		CategoryID:  r.CategoryID,
		PricePerDay: r.PricePerDay,
	}
}

// GameHandler handles HTTP requests for the game catalog
type GameHandler struct {
	gameService service.GameService
	logger      *zap.Logger
}

// NewGameHandler creates a new GameHandler
func NewGameHandler(gameService service.GameService, logger *zap.Logger) *GameHandler {
	return &GameHandler{
		gameService: gameService,
		logger:      logger,
	}
}

// RegisterRoutes registers the game routes; writes go through writeMiddleware
func (h *GameHandler) RegisterRoutes(r chi.Router, writeMiddleware ...func(http.Handler) http.Handler) {
	r.Route("/games", func(r chi.Router) {
		r.Get("/", h.List)
		r.With(writeMiddleware...).Post("/", h.Create)
		r.With(writeMiddleware...).Put("/{id}", h.Update)
	})
}

// List handles GET /games?name=prefix
func (h *GameHandler) List(w http.ResponseWriter, r *http.Request) {
	games, err := h.gameService.List(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		respondWithServiceError(w, h.logger, "List games", err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, games)
}

// Create handles POST /games
func (h *GameHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req GameRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	game, err := h.gameService.Create(r.Context(), req.input())
	if err != nil {
		respondWithServiceError(w, h.logger, "Create game", err)
		return
	}

	h.logger.Info("Game created", zap.String("game_id", game.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, game)
}

// Update handles PUT /games/{id}
func (h *GameHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	var req GameRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	game, err := h.gameService.Update(r.Context(), id, req.input())
	if err != nil {
		respondWithServiceError(w, h.logger, "Update game", err)
		return
	}

	h.logger.Info("Game updated", zap.String("game_id", game.ID.String()))
	middleware.RespondWithJSON(w, http.StatusOK, game)
}
