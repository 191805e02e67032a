package bot

import (
	"fmt"
	"math"
	"strconv"

	"connect4ai/internal/board"
)

// NoMove is the column reported when a position has no move to choose.
const NoMove = -1

// Perspective selects which piece the heuristic scores at the depth cut-off.
type Perspective int

const (
	// PerspectiveMaximizer always scores cut-off positions for the maximizer.
	PerspectiveMaximizer Perspective = iota
	// PerspectiveMover scores for the maximizer on maximizing plies and for
	// the minimizer on minimizing plies.
	PerspectiveMover
)

func ParsePerspective(s string) (Perspective, error) {
	switch s {
	case "", "maximizer":
		return PerspectiveMaximizer, nil
	case "mover":
		return PerspectiveMover, nil
	}
	return 0, fmt.Errorf("unknown cut-off perspective %q", s)
}

func (p Perspective) String() string {
	if p == PerspectiveMover {
		return "mover"
	}
	return "maximizer"
}

// Result is a chosen column and its evaluation. Column is NoMove for
// terminal and cut-off positions. Infinite scores mean a forced win or loss,
// zero from a terminal position means a draw.
type Result struct {
	Column int
	Score  float64
}

// FormatScore renders a score for JSON and logs, where infinities have no
// number literal: "+Inf", "-Inf", "0", "15".
func FormatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}

// Searcher runs depth-limited minimax with alpha-beta pruning. It holds no
// state between calls.
type Searcher struct {
	Maximizer   board.Piece
	Minimizer   board.Piece
	Perspective Perspective
}

func NewSearcher(maximizer board.Piece, perspective Perspective) Searcher {
	return Searcher{
		Maximizer:   maximizer,
		Minimizer:   maximizer.Opponent(),
		Perspective: perspective,
	}
}

// Search evaluates b to the given depth. b is a snapshot owned by the call;
// every explored move is played on a fresh copy.
func (s Searcher) Search(b board.Board, depth int, maximizing bool, alpha, beta float64) Result {
	if HasWon(&b, s.Maximizer) {
		return Result{Column: NoMove, Score: math.Inf(1)}
	}
	if HasWon(&b, s.Minimizer) {
		return Result{Column: NoMove, Score: math.Inf(-1)}
	}
	moves := b.ValidMoves()
	if len(moves) == 0 {
		return Result{Column: NoMove, Score: 0}
	}
	if depth <= 0 {
		return Result{Column: NoMove, Score: Score(&b, s.cutoffPiece(maximizing))}
	}

	if maximizing {
		best := Result{Column: moves[0], Score: math.Inf(-1)}
		for _, col := range moves {
			child := s.child(b, col, s.Maximizer)
			score := s.Search(child, depth-1, false, alpha, beta).Score
			if score > best.Score {
				best = Result{Column: col, Score: score}
			}
			alpha = math.Max(alpha, score)
			if beta <= alpha {
				break
			}
		}
		return best
	}

	best := Result{Column: moves[0], Score: math.Inf(1)}
	for _, col := range moves {
		child := s.child(b, col, s.Minimizer)
		score := s.Search(child, depth-1, true, alpha, beta).Score
		if score < best.Score {
			best = Result{Column: col, Score: score}
		}
		beta = math.Min(beta, score)
		if beta <= alpha {
			break
		}
	}
	return best
}

func (s Searcher) child(b board.Board, col int, piece board.Piece) board.Board {
	row, _ := b.NextOpenRow(col)
	next := b.Copy()
	next.Place(row, col, piece)
	return next
}

func (s Searcher) cutoffPiece(maximizing bool) board.Piece {
	if s.Perspective == PerspectiveMover && !maximizing {
		return s.Minimizer
	}
	return s.Maximizer
}
