package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"connect4ai/internal/board"
	"connect4ai/internal/models"
	"connect4ai/internal/services"
	"connect4ai/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSHandler plays games over a websocket. Each connection only writes from
// its own read loop, so no write lock is needed.
type WSHandler struct {
	gameService *services.GameService
}

func NewWSHandler(gameService *services.GameService) *WSHandler {
	return &WSHandler{gameService: gameService}
}

func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Log.Error("Failed to upgrade connection", zap.Error(err))
		return
	}
	defer conn.Close()

	socketID := uuid.New().String()
	logger.Log.Debug("WebSocket connected", zap.String("socket_id", socketID))

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Log.Warn("WebSocket closed unexpectedly", zap.String("socket_id", socketID), zap.Error(err))
			}
			return
		}

		var wsMsg struct {
			Type    models.WSMessageType `json:"type"`
			Payload json.RawMessage      `json:"payload"`
		}
		if err := json.Unmarshal(message, &wsMsg); err != nil {
			h.sendError(conn, "INVALID_MESSAGE", "Invalid message format")
			continue
		}

		switch wsMsg.Type {
		case models.WSNewGame:
			h.handleNewGame(c, conn, wsMsg.Payload)
		case models.WSMakeMove:
			h.handleMakeMove(c, conn, wsMsg.Payload)
		case models.WSResetGame:
			h.handleResetGame(c, conn, wsMsg.Payload)
		default:
			h.sendError(conn, "UNKNOWN_TYPE", "Unknown message type")
		}
	}
}

func (h *WSHandler) handleNewGame(c *gin.Context, conn *websocket.Conn, payload json.RawMessage) {
	var req models.WSGamePayload
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &req); err != nil {
			h.sendError(conn, "INVALID_REQUEST", "Invalid new game payload")
			return
		}
	}
	playerFirst := req.PlayerFirst == nil || *req.PlayerFirst

	game, err := h.gameService.NewGame(c.Request.Context(), playerFirst)
	if err != nil {
		h.sendServiceError(conn, err)
		return
	}
	h.sendMessage(conn, models.WSMessage{Type: models.WSGameState, Payload: game})
}

func (h *WSHandler) handleMakeMove(c *gin.Context, conn *websocket.Conn, payload json.RawMessage) {
	var req models.WSMovePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		h.sendError(conn, "INVALID_REQUEST", "Invalid move payload")
		return
	}

	result, err := h.gameService.MakeMove(c.Request.Context(), req.GameID, req.Column)
	if err != nil {
		h.sendServiceError(conn, err)
		return
	}

	h.sendMessage(conn, models.WSMessage{Type: models.WSMoveResult, Payload: result})
	if result.GameOver {
		h.sendMessage(conn, models.WSMessage{
			Type: models.WSGameOver,
			Payload: map[string]interface{}{
				"game_id":          result.GameID,
				"winner":           result.Winner,
				"message":          result.Message,
				"board":            result.BoardAfterAI,
				"duration_seconds": result.DurationSeconds,
			},
		})
	}
}

func (h *WSHandler) handleResetGame(c *gin.Context, conn *websocket.Conn, payload json.RawMessage) {
	var req models.WSGamePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		h.sendError(conn, "INVALID_REQUEST", "Invalid reset payload")
		return
	}
	game, err := h.gameService.ResetGame(c.Request.Context(), req.GameID)
	if err != nil {
		h.sendServiceError(conn, err)
		return
	}
	h.sendMessage(conn, models.WSMessage{Type: models.WSGameState, Payload: game})
}

func (h *WSHandler) sendServiceError(conn *websocket.Conn, err error) {
	switch {
	case errors.Is(err, services.ErrGameNotFound):
		h.sendError(conn, "GAME_NOT_FOUND", "Game not found")
	case errors.Is(err, board.ErrInvalidMove):
		h.sendError(conn, "INVALID_MOVE", "Invalid move. Try another column.")
	case errors.Is(err, services.ErrGameOver):
		h.sendError(conn, "GAME_OVER", "Game is over. Start a new game.")
	case errors.Is(err, services.ErrNotYourTurn):
		h.sendError(conn, "NOT_YOUR_TURN", "Wait for the AI to move.")
	default:
		logger.Log.Error("WebSocket request failed", zap.Error(err))
		h.sendError(conn, "INTERNAL_ERROR", "An internal error occurred")
	}
}

func (h *WSHandler) sendMessage(conn *websocket.Conn, msg models.WSMessage) {
	if err := conn.WriteJSON(msg); err != nil {
		logger.Log.Error("Failed to send message", zap.Error(err))
	}
}

func (h *WSHandler) sendError(conn *websocket.Conn, code, message string) {
	h.sendMessage(conn, models.WSMessage{
		Type:    models.WSError,
		Payload: models.ErrorPayload{Message: message, Code: code},
	})
}
