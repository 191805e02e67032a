package models

import (
	"time"

	"connect4ai/internal/board"

	"github.com/google/uuid"
)

type GameStatus string

const (
	GameStatusActive    GameStatus = "active"
	GameStatusCompleted GameStatus = "completed"
	GameStatusDraw      GameStatus = "draw"
)

// Winner values reported once a game is over.
const (
	WinnerPlayer = "player"
	WinnerAI     = "ai"
	WinnerTie    = "tie"
)

type Turn string

const (
	TurnPlayer Turn = "player"
	TurnAI     Turn = "ai"
)

// GameState is one live game. The service owns it; handlers only see copies.
type GameState struct {
	GameID      uuid.UUID   `json:"game_id"`
	Board       board.Board `json:"board"`
	PlayerPiece board.Piece `json:"player_piece"`
	AIPiece     board.Piece `json:"ai_piece"`
	Turn        Turn        `json:"turn"`
	Status      GameStatus  `json:"status"`
	GameOver    bool        `json:"game_over"`
	Winner      string      `json:"winner,omitempty"`
	MoveCount   int         `json:"move_count"`
	ValidCols   []int       `json:"valid_cols"`
	StartedAt   time.Time   `json:"started_at"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
}

// MoveResult is the outcome of a player move and the AI reply to it.
type MoveResult struct {
	GameID          uuid.UUID   `json:"game_id"`
	PlayerMove      int         `json:"player_move"`
	PlayerRow       int         `json:"player_row"`
	BoardBeforeAI   board.Board `json:"board_before_ai"`
	BoardAfterAI    board.Board `json:"board_after_ai"`
	AIMove          *int        `json:"ai_move"`
	AIRow           *int        `json:"ai_row,omitempty"`
	AIScore         *string     `json:"ai_score,omitempty"`
	Turn            Turn        `json:"turn"`
	GameOver        bool        `json:"game_over"`
	Winner          string      `json:"winner,omitempty"`
	Message         string      `json:"message,omitempty"`
	ValidCols       []int       `json:"valid_cols"`
	MoveCount       int         `json:"move_count"`
	DurationSeconds int         `json:"duration_seconds,omitempty"`
}

type NewGameRequest struct {
	// PlayerFirst defaults to true when omitted.
	PlayerFirst *bool `json:"player_first"`
}

type MoveRequest struct {
	Column *int `json:"column" binding:"required"`
}

type AnalyzeRequest struct {
	Board   [][]int `json:"board" binding:"required"`
	Depth   *int    `json:"depth"`
	AIPiece int     `json:"ai_piece"`
	// Perspective is "maximizer" or "mover"; empty uses the server default.
	Perspective string `json:"perspective"`
}

type AnalyzeResponse struct {
	Column   *int   `json:"column"`
	Score    string `json:"score"`
	Depth    int    `json:"depth"`
	AIPiece  int    `json:"ai_piece"`
	Terminal bool   `json:"terminal"`
}

type Stats struct {
	TotalGames  int     `json:"total_games"`
	PlayerWins  int     `json:"player_wins"`
	AIWins      int     `json:"ai_wins"`
	Ties        int     `json:"ties"`
	AIWinRate   float64 `json:"ai_win_rate"`
	AvgMoves    float64 `json:"avg_moves"`
	AvgDuration float64 `json:"avg_duration_seconds"`
}

type WSMessageType string

const (
	WSNewGame    WSMessageType = "new-game"
	WSMakeMove   WSMessageType = "make-move"
	WSResetGame  WSMessageType = "reset-game"
	WSGameState  WSMessageType = "game-state"
	WSMoveResult WSMessageType = "move-result"
	WSGameOver   WSMessageType = "game-over"
	WSError      WSMessageType = "error"
)

type WSMessage struct {
	Type    WSMessageType `json:"type"`
	Payload interface{}   `json:"payload"`
}

type WSMovePayload struct {
	GameID uuid.UUID `json:"game_id"`
	Column int       `json:"column"`
}

type WSGamePayload struct {
	GameID      uuid.UUID `json:"game_id"`
	PlayerFirst *bool     `json:"player_first,omitempty"`
}

type ErrorPayload struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type KafkaEventType string

const (
	EventGameStarted   KafkaEventType = "GAME_STARTED"
	EventMoveMade      KafkaEventType = "MOVE_MADE"
	EventGameCompleted KafkaEventType = "GAME_COMPLETED"
)

type GameStartedEvent struct {
	Type        KafkaEventType `json:"type"`
	GameID      uuid.UUID      `json:"game_id"`
	PlayerFirst bool           `json:"player_first"`
	SearchDepth int            `json:"search_depth"`
	Timestamp   time.Time      `json:"timestamp"`
}

type MoveMadeEvent struct {
	Type       KafkaEventType `json:"type"`
	GameID     uuid.UUID      `json:"game_id"`
	Mover      Turn           `json:"mover"`
	Column     int            `json:"column"`
	Row        int            `json:"row"`
	MoveNumber int            `json:"move_number"`
	Timestamp  time.Time      `json:"timestamp"`
}

type GameCompletedEvent struct {
	Type            KafkaEventType `json:"type"`
	GameID          uuid.UUID      `json:"game_id"`
	Winner          string         `json:"winner"`
	TotalMoves      int            `json:"total_moves"`
	DurationSeconds int            `json:"duration_seconds"`
	Timestamp       time.Time      `json:"timestamp"`
}
