package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"connect4ai/internal/board"
	"connect4ai/internal/models"
	"connect4ai/internal/services"
	"connect4ai/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Pinger reports backend health. *database.Database implements it.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HTTPHandler struct {
	gameService  *services.GameService
	statsService *services.StatsService
	db           Pinger
}

func NewHTTPHandler(gameService *services.GameService, statsService *services.StatsService, db Pinger) *HTTPHandler {
	return &HTTPHandler{
		gameService:  gameService,
		statsService: statsService,
		db:           db,
	}
}

// POST /api/games
func (h *HTTPHandler) NewGame(c *gin.Context) {
	var req models.NewGameRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
			return
		}
	}
	playerFirst := req.PlayerFirst == nil || *req.PlayerFirst

	game, err := h.gameService.NewGame(c.Request.Context(), playerFirst)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusCreated, game)
}

// GET /api/games/:id
func (h *HTTPHandler) GetGame(c *gin.Context) {
	gameID, ok := parseGameID(c)
	if !ok {
		return
	}
	game, err := h.gameService.GetGame(gameID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, game)
}

// POST /api/games/:id/moves
func (h *HTTPHandler) MakeMove(c *gin.Context) {
	gameID, ok := parseGameID(c)
	if !ok {
		return
	}
	var req models.MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Column == nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "INVALID_REQUEST", "column is required")
		return
	}

	result, err := h.gameService.MakeMove(c.Request.Context(), gameID, *req.Column)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, result)
}

// POST /api/games/:id/reset
func (h *HTTPHandler) ResetGame(c *gin.Context) {
	gameID, ok := parseGameID(c)
	if !ok {
		return
	}
	game, err := h.gameService.ResetGame(c.Request.Context(), gameID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, gin.H{
		"game":    game,
		"message": "Game has been reset.",
	})
}

// DELETE /api/games/:id
func (h *HTTPHandler) DeleteGame(c *gin.Context) {
	gameID, ok := parseGameID(c)
	if !ok {
		return
	}
	if err := h.gameService.DeleteGame(gameID); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /api/analyze
func (h *HTTPHandler) Analyze(c *gin.Context) {
	var req models.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "INVALID_REQUEST", "board is required")
		return
	}
	resp, err := h.gameService.Analyze(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, resp)
}

// GET /api/stats
func (h *HTTPHandler) GetStats(c *gin.Context) {
	if !h.statsService.Enabled() {
		utils.ErrorResponse(c, http.StatusServiceUnavailable, "STATS_DISABLED", "Statistics require a database")
		return
	}
	stats, err := h.statsService.GetStats(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		utils.ErrorResponse(c, http.StatusInternalServerError, "STATS_ERROR", "Failed to fetch statistics")
		return
	}
	utils.SuccessResponse(c, http.StatusOK, stats)
}

// GET /api/health
func (h *HTTPHandler) GetHealth(c *gin.Context) {
	status := gin.H{
		"status":       "ok",
		"active_games": h.gameService.ActiveGames(),
		"database":     "disabled",
	}
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			status["status"] = "unhealthy"
			status["database"] = "disconnected"
			c.JSON(http.StatusServiceUnavailable, status)
			return
		}
		status["database"] = "connected"
	}
	c.JSON(http.StatusOK, status)
}

func parseGameID(c *gin.Context) (uuid.UUID, bool) {
	gameID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "INVALID_GAME_ID", "Invalid game id")
		return uuid.Nil, false
	}
	return gameID, true
}

func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrGameNotFound):
		utils.ErrorResponse(c, http.StatusNotFound, "GAME_NOT_FOUND", "Game not found")
	case errors.Is(err, board.ErrInvalidMove):
		utils.ErrorResponse(c, http.StatusBadRequest, "INVALID_MOVE", "Invalid move. Try another column.")
	case errors.Is(err, services.ErrGameOver):
		utils.ErrorResponse(c, http.StatusConflict, "GAME_OVER", "Game is over. Start a new game.")
	case errors.Is(err, services.ErrNotYourTurn):
		utils.ErrorResponse(c, http.StatusConflict, "NOT_YOUR_TURN", "Wait for the AI to move.")
	case errors.Is(err, services.ErrBadRequest):
		utils.ErrorResponse(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
	default:
		_ = c.Error(err)
		utils.ErrorResponse(c, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
