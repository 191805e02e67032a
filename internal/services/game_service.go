package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"connect4ai/internal/board"
	"connect4ai/internal/bot"
	"connect4ai/internal/cache"
	"connect4ai/internal/models"
	"connect4ai/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MaxAnalyzeDepth bounds the depth a caller may request from Analyze.
const MaxAnalyzeDepth = 8

var (
	ErrGameNotFound = errors.New("game not found")
	ErrGameOver     = errors.New("game is over")
	ErrNotYourTurn  = errors.New("not your turn")
	ErrBadRequest   = errors.New("bad request")
	ErrAIMove       = errors.New("AI could not choose a move")
)

// Engine picks moves for the AI side. *bot.Bot implements it.
type Engine interface {
	BestMove(ctx context.Context, bd board.Board) (bot.Result, error)
	Piece() board.Piece
	Depth() int
	Perspective() bot.Perspective
}

// Recorder persists games. *database.Database implements it.
type Recorder interface {
	CreateGame(ctx context.Context, game *models.GameState, playerFirst bool, depth int) error
	SaveGameMove(ctx context.Context, gameID uuid.UUID, mover models.Turn, column, row, moveNumber int) error
	ClearMoves(ctx context.Context, gameID uuid.UUID) error
	CompleteGame(ctx context.Context, game *models.GameState) error
}

// EventPublisher streams game events. *KafkaProducer implements it.
type EventPublisher interface {
	PublishGameStarted(ctx context.Context, event models.GameStartedEvent) error
	PublishMoveMade(ctx context.Context, event models.MoveMadeEvent) error
	PublishGameCompleted(ctx context.Context, event models.GameCompletedEvent) error
}

// MoveCache remembers search results. *cache.MoveCache implements it.
type MoveCache interface {
	Get(ctx context.Context, key string) (bot.Result, bool, error)
	Set(ctx context.Context, key string, res bot.Result) error
}

type session struct {
	mu          sync.Mutex
	state       models.GameState
	playerFirst bool
}

// GameService owns every live board. Each game is a separate handle created
// by NewGame, cleared by ResetGame and dropped by DeleteGame; there is no
// shared default game.
type GameService struct {
	engine    Engine
	recorder  Recorder
	publisher EventPublisher
	cache     MoveCache

	games      map[uuid.UUID]*session
	gamesMutex sync.RWMutex
}

// NewGameService wires the optional collaborators; any of recorder,
// publisher and cache may be nil. The engine must search at least
// bot.MinPlayDepth plies, since a shallower search never picks a column.
func NewGameService(engine Engine, recorder Recorder, publisher EventPublisher, moveCache MoveCache) (*GameService, error) {
	if engine == nil {
		return nil, fmt.Errorf("%w: no engine", bot.ErrInvalidConfig)
	}
	if engine.Depth() < bot.MinPlayDepth {
		return nil, fmt.Errorf("%w: live play needs depth >= %d, got %d", bot.ErrInvalidConfig, bot.MinPlayDepth, engine.Depth())
	}
	return &GameService{
		engine:    engine,
		recorder:  recorder,
		publisher: publisher,
		cache:     moveCache,
		games:     make(map[uuid.UUID]*session),
	}, nil
}

func (gs *GameService) NewGame(ctx context.Context, playerFirst bool) (*models.GameState, error) {
	s := &session{playerFirst: playerFirst}
	s.state.GameID = uuid.New()

	s.mu.Lock()
	defer s.mu.Unlock()

	o, err := gs.prepare(ctx, s)
	if err != nil {
		return nil, err
	}
	gs.commit(ctx, s, o)

	gs.gamesMutex.Lock()
	gs.games[s.state.GameID] = s
	gs.gamesMutex.Unlock()

	logger.Log.Info("Game created",
		zap.String("game_id", s.state.GameID.String()),
		zap.Bool("player_first", playerFirst),
		zap.Int("depth", gs.engine.Depth()),
	)
	return snapshot(&s.state), nil
}

// opening is a fresh game state plus the AI's first move when it opens.
type opening struct {
	state models.GameState
	move  *bot.Result
}

// prepare builds the new game for s without changing it. A failed opening
// search is returned here, before anything is committed.
func (gs *GameService) prepare(ctx context.Context, s *session) (opening, error) {
	aiPiece := gs.engine.Piece()
	o := opening{state: models.GameState{
		GameID:      s.state.GameID,
		Board:       board.New(),
		PlayerPiece: aiPiece.Opponent(),
		AIPiece:     aiPiece,
		Turn:        models.TurnPlayer,
		Status:      models.GameStatusActive,
		StartedAt:   time.Now(),
	}}
	if !s.playerFirst {
		res, err := gs.aiReply(ctx, o.state.Board)
		if err != nil {
			return o, err
		}
		o.move = &res
	}
	return o, nil
}

// commit installs o as the state of s. The caller holds s.mu.
func (gs *GameService) commit(ctx context.Context, s *session, o opening) {
	s.state = o.state
	if gs.recorder != nil {
		if err := gs.recorder.CreateGame(ctx, &s.state, s.playerFirst, gs.engine.Depth()); err != nil {
			logger.Log.Warn("Failed to record game", zap.Error(err))
		}
	}
	gs.publishStarted(ctx, &s.state, s.playerFirst)

	if o.move != nil {
		gs.applyAI(ctx, &s.state, *o.move)
	}
	s.state.ValidCols = s.state.Board.ValidMoves()
}

func (gs *GameService) lookup(gameID uuid.UUID) (*session, error) {
	gs.gamesMutex.RLock()
	defer gs.gamesMutex.RUnlock()
	s, exists := gs.games[gameID]
	if !exists {
		return nil, ErrGameNotFound
	}
	return s, nil
}

func (gs *GameService) GetGame(gameID uuid.UUID) (*models.GameState, error) {
	s, err := gs.lookup(gameID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot(&s.state), nil
}

// ResetGame starts the game over on an empty board under the same ID.
func (gs *GameService) ResetGame(ctx context.Context, gameID uuid.UUID) (*models.GameState, error) {
	s, err := gs.lookup(gameID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	o, err := gs.prepare(ctx, s)
	if err != nil {
		return nil, err
	}
	if gs.recorder != nil {
		if err := gs.recorder.ClearMoves(ctx, gameID); err != nil {
			logger.Log.Warn("Failed to clear moves", zap.Error(err))
		}
	}
	gs.commit(ctx, s, o)
	logger.Log.Info("Game reset", zap.String("game_id", gameID.String()))
	return snapshot(&s.state), nil
}

func (gs *GameService) DeleteGame(gameID uuid.UUID) error {
	gs.gamesMutex.Lock()
	defer gs.gamesMutex.Unlock()
	if _, exists := gs.games[gameID]; !exists {
		return ErrGameNotFound
	}
	delete(gs.games, gameID)
	return nil
}

func (gs *GameService) ActiveGames() int {
	gs.gamesMutex.RLock()
	defer gs.gamesMutex.RUnlock()
	return len(gs.games)
}

// MakeMove applies the player's column and, unless that ends the game,
// the AI's reply. Both moves are worked out on a copy first: a rejected
// column or a failed reply leaves the game untouched.
func (gs *GameService) MakeMove(ctx context.Context, gameID uuid.UUID, column int) (*models.MoveResult, error) {
	s, err := gs.lookup(gameID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	game := &s.state
	if game.GameOver {
		return nil, ErrGameOver
	}
	if game.Turn != models.TurnPlayer {
		return nil, ErrNotYourTurn
	}

	next := game.Board
	row, err := next.Drop(column, game.PlayerPiece)
	if err != nil {
		return nil, err
	}
	playerWon := bot.HasWon(&next, game.PlayerPiece)

	var reply bot.Result
	if !playerWon && !next.IsFull() {
		if reply, err = gs.aiReply(ctx, next); err != nil {
			logger.Log.Error("AI reply failed, move rejected",
				zap.String("game_id", gameID.String()),
				zap.Error(err),
			)
			return nil, err
		}
	}

	game.Board = next
	game.MoveCount++
	gs.recordMove(ctx, game, models.TurnPlayer, column, row)

	result := &models.MoveResult{
		GameID:     game.GameID,
		PlayerMove: column,
		PlayerRow:  row,
	}

	if playerWon {
		gs.finish(ctx, game, models.WinnerPlayer)
		return gs.fill(result, game, game.Board), nil
	}
	if game.Board.IsFull() {
		gs.finish(ctx, game, models.WinnerTie)
		return gs.fill(result, game, game.Board), nil
	}

	beforeAI := game.Board
	aiRow := gs.applyAI(ctx, game, reply)
	aiCol := reply.Column
	score := bot.FormatScore(reply.Score)
	result.AIMove = &aiCol
	result.AIRow = &aiRow
	result.AIScore = &score

	return gs.fill(result, game, beforeAI), nil
}

// aiReply searches bd and checks that the answer is playable there. It does
// not touch any game.
func (gs *GameService) aiReply(ctx context.Context, bd board.Board) (bot.Result, error) {
	res, err := gs.chooseMove(ctx, gs.engine, bd)
	if err != nil {
		return res, fmt.Errorf("%w: %w", ErrAIMove, err)
	}
	if !bd.IsValidMove(res.Column) {
		return res, fmt.Errorf("%w: unplayable column %d", ErrAIMove, res.Column)
	}
	return res, nil
}

// applyAI plays a reply already checked by aiReply and returns its row.
func (gs *GameService) applyAI(ctx context.Context, game *models.GameState, res bot.Result) int {
	row, _ := game.Board.NextOpenRow(res.Column)
	game.Board.Place(row, res.Column, game.AIPiece)
	game.MoveCount++
	gs.recordMove(ctx, game, models.TurnAI, res.Column, row)

	switch {
	case bot.HasWon(&game.Board, game.AIPiece):
		gs.finish(ctx, game, models.WinnerAI)
	case game.Board.IsFull():
		gs.finish(ctx, game, models.WinnerTie)
	default:
		game.Turn = models.TurnPlayer
	}
	return row
}

// chooseMove consults the cache before running the search.
func (gs *GameService) chooseMove(ctx context.Context, e Engine, bd board.Board) (bot.Result, error) {
	if gs.cache == nil {
		return e.BestMove(ctx, bd)
	}

	key := cache.Key(bd, e.Depth(), e.Piece(), e.Perspective())
	if res, ok, err := gs.cache.Get(ctx, key); err != nil {
		logger.Log.Warn("Move cache read failed", zap.Error(err))
	} else if ok {
		return res, nil
	}

	res, err := e.BestMove(ctx, bd)
	if err != nil {
		return res, err
	}
	if err := gs.cache.Set(ctx, key, res); err != nil {
		logger.Log.Warn("Move cache write failed", zap.Error(err))
	}
	return res, nil
}

func (gs *GameService) finish(ctx context.Context, game *models.GameState, winner string) {
	completedAt := time.Now()
	game.CompletedAt = &completedAt
	game.GameOver = true
	game.Winner = winner
	game.Turn = ""
	game.Status = models.GameStatusCompleted
	if winner == models.WinnerTie {
		game.Status = models.GameStatusDraw
	}

	if gs.recorder != nil {
		if err := gs.recorder.CompleteGame(ctx, game); err != nil {
			logger.Log.Warn("Failed to record game result", zap.Error(err))
		}
	}
	if gs.publisher != nil {
		event := models.GameCompletedEvent{
			Type:            models.EventGameCompleted,
			GameID:          game.GameID,
			Winner:          winner,
			TotalMoves:      game.MoveCount,
			DurationSeconds: int(completedAt.Sub(game.StartedAt).Seconds()),
			Timestamp:       completedAt,
		}
		if err := gs.publisher.PublishGameCompleted(ctx, event); err != nil {
			logger.Log.Warn("Failed to publish game completed", zap.Error(err))
		}
	}

	logger.Log.Info("Game over",
		zap.String("game_id", game.GameID.String()),
		zap.String("winner", winner),
		zap.Int("moves", game.MoveCount),
	)
}

func (gs *GameService) recordMove(ctx context.Context, game *models.GameState, mover models.Turn, column, row int) {
	if gs.recorder != nil {
		if err := gs.recorder.SaveGameMove(ctx, game.GameID, mover, column, row, game.MoveCount); err != nil {
			logger.Log.Warn("Failed to record move", zap.Error(err))
		}
	}
	if gs.publisher != nil {
		event := models.MoveMadeEvent{
			Type:       models.EventMoveMade,
			GameID:     game.GameID,
			Mover:      mover,
			Column:     column,
			Row:        row,
			MoveNumber: game.MoveCount,
			Timestamp:  time.Now(),
		}
		if err := gs.publisher.PublishMoveMade(ctx, event); err != nil {
			logger.Log.Warn("Failed to publish move", zap.Error(err))
		}
	}
}

func (gs *GameService) publishStarted(ctx context.Context, game *models.GameState, playerFirst bool) {
	if gs.publisher == nil {
		return
	}
	event := models.GameStartedEvent{
		Type:        models.EventGameStarted,
		GameID:      game.GameID,
		PlayerFirst: playerFirst,
		SearchDepth: gs.engine.Depth(),
		Timestamp:   game.StartedAt,
	}
	if err := gs.publisher.PublishGameStarted(ctx, event); err != nil {
		logger.Log.Warn("Failed to publish game started", zap.Error(err))
	}
}

func (gs *GameService) fill(result *models.MoveResult, game *models.GameState, beforeAI board.Board) *models.MoveResult {
	result.BoardBeforeAI = beforeAI
	result.BoardAfterAI = game.Board
	result.Turn = game.Turn
	result.GameOver = game.GameOver
	result.Winner = game.Winner
	result.ValidCols = game.Board.ValidMoves()
	result.MoveCount = game.MoveCount
	game.ValidCols = result.ValidCols

	if game.GameOver {
		result.DurationSeconds = int(game.CompletedAt.Sub(game.StartedAt).Seconds())
		switch game.Winner {
		case models.WinnerPlayer:
			result.Message = "You win!"
		case models.WinnerAI:
			result.Message = "AI wins!"
		default:
			result.Message = "It's a tie!"
		}
	}
	return result
}

// Analyze searches an arbitrary position without touching any live game.
// Nil depth, zero piece and empty perspective fall back to the service engine.
// Depth 0 is allowed here and reports the static evaluation.
func (gs *GameService) Analyze(ctx context.Context, req models.AnalyzeRequest) (*models.AnalyzeResponse, error) {
	bd, err := board.FromGrid(req.Board)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}

	opts := bot.Options{
		Depth:       gs.engine.Depth(),
		Piece:       gs.engine.Piece(),
		Perspective: gs.engine.Perspective(),
	}
	if req.Depth != nil {
		opts.Depth = *req.Depth
	}
	if opts.Depth > MaxAnalyzeDepth {
		return nil, fmt.Errorf("%w: depth %d exceeds %d", ErrBadRequest, opts.Depth, MaxAnalyzeDepth)
	}
	if req.AIPiece != 0 {
		opts.Piece = board.Piece(req.AIPiece)
	}
	if req.Perspective != "" {
		if opts.Perspective, err = bot.ParsePerspective(req.Perspective); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBadRequest, err)
		}
	}

	analyzer, err := bot.New(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}

	res, err := gs.chooseMove(ctx, analyzer, bd)
	if err != nil {
		return nil, err
	}
	resp := &models.AnalyzeResponse{
		Score:    bot.FormatScore(res.Score),
		Depth:    opts.Depth,
		AIPiece:  int(opts.Piece),
		Terminal: bot.IsTerminal(&bd),
	}
	if res.Column != bot.NoMove {
		col := res.Column
		resp.Column = &col
	}
	return resp, nil
}

func snapshot(game *models.GameState) *models.GameState {
	out := *game
	out.ValidCols = game.Board.ValidMoves()
	if game.CompletedAt != nil {
		t := *game.CompletedAt
		out.CompletedAt = &t
	}
	return &out
}
