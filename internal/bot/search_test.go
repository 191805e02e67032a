package bot

import (
	"math"
	"math/rand"
	"testing"

	"connect4ai/internal/board"
)

var (
	negInf = math.Inf(-1)
	posInf = math.Inf(1)
)

// fullMinimax is the unpruned reference: same terminal, cut-off and
// tie-breaking rules as Searcher.Search, without alpha-beta.
func fullMinimax(s Searcher, b board.Board, depth int, maximizing bool) Result {
	if HasWon(&b, s.Maximizer) {
		return Result{Column: NoMove, Score: posInf}
	}
	if HasWon(&b, s.Minimizer) {
		return Result{Column: NoMove, Score: negInf}
	}
	moves := b.ValidMoves()
	if len(moves) == 0 {
		return Result{Column: NoMove}
	}
	if depth <= 0 {
		return Result{Column: NoMove, Score: Score(&b, s.cutoffPiece(maximizing))}
	}

	piece, best := s.Minimizer, Result{Column: moves[0], Score: posInf}
	if maximizing {
		piece, best = s.Maximizer, Result{Column: moves[0], Score: negInf}
	}
	for _, col := range moves {
		score := fullMinimax(s, s.child(b, col, piece), depth-1, !maximizing).Score
		if (maximizing && score > best.Score) || (!maximizing && score < best.Score) {
			best = Result{Column: col, Score: score}
		}
	}
	return best
}

// randomBoards plays uniformly random legal moves from the empty board and
// stops early once someone has won.
func randomBoards(seed int64, n, maxPlies int) []board.Board {
	rng := rand.New(rand.NewSource(seed))
	boards := make([]board.Board, 0, n)
	for i := 0; i < n; i++ {
		b := board.New()
		piece := board.One
		plies := rng.Intn(maxPlies + 1)
		for p := 0; p < plies && !IsTerminal(&b); p++ {
			moves := b.ValidMoves()
			_, _ = b.Drop(moves[rng.Intn(len(moves))], piece)
			piece = piece.Opponent()
		}
		boards = append(boards, b)
	}
	return boards
}

func TestSearchMatchesUnprunedMinimax(t *testing.T) {
	boards := randomBoards(7, 60, 30)
	perspectives := []Perspective{PerspectiveMaximizer, PerspectiveMover}
	pieces := []board.Piece{board.One, board.Two}

	for i, b := range boards {
		for depth := 0; depth <= 4; depth++ {
			for _, maximizing := range []bool{true, false} {
				for _, persp := range perspectives {
					for _, piece := range pieces {
						s := NewSearcher(piece, persp)
						got := s.Search(b, depth, maximizing, negInf, posInf)
						want := fullMinimax(s, b, depth, maximizing)
						if got != want {
							t.Fatalf("board %d depth %d max=%v %s piece %d: pruned %+v, full %+v\n%s",
								i, depth, maximizing, persp, piece, got, want, b.String())
						}
					}
				}
			}
		}
	}
}

func TestSearchDoesNotMutateInput(t *testing.T) {
	b := randomBoards(3, 1, 10)[0]
	before := b
	s := NewSearcher(board.Two, PerspectiveMaximizer)
	s.Search(b, 4, true, negInf, posInf)
	if b != before {
		t.Fatalf("search mutated the caller's board")
	}
}

func TestTerminalPrecedence(t *testing.T) {
	s := NewSearcher(board.Two, PerspectiveMaximizer)

	won := board.New()
	place(&won, board.Two, [2]int{0, 0}, [2]int{0, 1}, [2]int{0, 2}, [2]int{0, 3})
	place(&won, board.One, [2]int{1, 0}, [2]int{1, 1}, [2]int{1, 2})

	lost := board.New()
	place(&lost, board.One, [2]int{0, 6}, [2]int{1, 6}, [2]int{2, 6}, [2]int{3, 6})
	place(&lost, board.Two, [2]int{0, 0}, [2]int{0, 1}, [2]int{0, 2})

	for depth := 0; depth <= 3; depth++ {
		for _, maximizing := range []bool{true, false} {
			if got := s.Search(won, depth, maximizing, negInf, posInf); got != (Result{NoMove, posInf}) {
				t.Fatalf("won board depth %d: %+v", depth, got)
			}
			if got := s.Search(lost, depth, maximizing, negInf, posInf); got != (Result{NoMove, negInf}) {
				t.Fatalf("lost board depth %d: %+v", depth, got)
			}
		}
	}
}

func TestDrawReturnsZero(t *testing.T) {
	s := NewSearcher(board.Two, PerspectiveMaximizer)
	draw := drawBoard()
	for depth := 0; depth <= 3; depth++ {
		got := s.Search(draw, depth, true, negInf, posInf)
		if got.Column != NoMove || got.Score != 0 {
			t.Fatalf("depth %d: got %+v, want no move and 0", depth, got)
		}
	}
}

func TestDepthZeroScoresHeuristic(t *testing.T) {
	b := board.New()
	place(&b, board.One, [2]int{0, 0}, [2]int{0, 1}, [2]int{0, 2})

	maxSide := NewSearcher(board.Two, PerspectiveMaximizer)
	if got := maxSide.Search(b, 0, false, negInf, posInf); got.Score != Score(&b, board.Two) {
		t.Fatalf("maximizer perspective scored %v", got.Score)
	}

	mover := NewSearcher(board.Two, PerspectiveMover)
	if got := mover.Search(b, 0, false, negInf, posInf); got.Score != Score(&b, board.One) {
		t.Fatalf("mover perspective on a minimizing ply scored %v", got.Score)
	}
	if got := mover.Search(b, 0, true, negInf, posInf); got.Score != Score(&b, board.Two) {
		t.Fatalf("mover perspective on a maximizing ply scored %v", got.Score)
	}
}

func TestSearchScenarios(t *testing.T) {
	block := board.New()
	place(&block, board.One, [2]int{0, 0}, [2]int{0, 1}, [2]int{0, 2})
	place(&block, board.Two, [2]int{1, 0}, [2]int{1, 1})

	win := board.New()
	place(&win, board.Two, [2]int{0, 0}, [2]int{0, 1}, [2]int{0, 2})
	place(&win, board.One, [2]int{1, 0}, [2]int{1, 1})

	// One threatens row 1 at columns 0 and 4; dropping into either hands
	// One the square above.
	trap := board.New()
	place(&trap, board.Two, [2]int{0, 1}, [2]int{0, 2}, [2]int{0, 5}, [2]int{0, 6})
	place(&trap, board.One, [2]int{0, 3}, [2]int{1, 1}, [2]int{1, 2}, [2]int{1, 3})

	tests := []struct {
		name      string
		board     board.Board
		depth     int
		want      int
		wantScore float64
		avoid     []int
	}{
		{name: "opening prefers center", board: board.New(), depth: 4, want: 3, wantScore: 10},
		{name: "blocks three in a row", board: block, depth: 4, want: 3},
		{name: "takes immediate win", board: win, depth: 1, want: 3, wantScore: posInf},
		{name: "takes win at depth", board: win, depth: 4, want: 3, wantScore: posInf},
		{name: "does not hand over a win", board: trap, depth: 4, want: NoMove, avoid: []int{0, 4}},
	}

	for _, tt := range tests {
		for _, persp := range []Perspective{PerspectiveMaximizer, PerspectiveMover} {
			t.Run(tt.name+"/"+persp.String(), func(t *testing.T) {
				s := NewSearcher(board.Two, persp)
				got := s.Search(tt.board, tt.depth, true, negInf, posInf)
				if tt.want != NoMove && got.Column != tt.want {
					t.Fatalf("column = %d, want %d (score %v)", got.Column, tt.want, got.Score)
				}
				if tt.wantScore != 0 && got.Score != tt.wantScore {
					t.Fatalf("score = %v, want %v", got.Score, tt.wantScore)
				}
				for _, col := range tt.avoid {
					if got.Column == col {
						t.Fatalf("picked losing column %d (score %v)", col, got.Score)
					}
				}
				if math.IsInf(got.Score, -1) {
					t.Fatalf("a safe column existed but search reported a forced loss")
				}
			})
		}
	}
}

func TestParsePerspective(t *testing.T) {
	for in, want := range map[string]Perspective{"": PerspectiveMaximizer, "maximizer": PerspectiveMaximizer, "mover": PerspectiveMover} {
		got, err := ParsePerspective(in)
		if err != nil || got != want {
			t.Fatalf("ParsePerspective(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParsePerspective("minimizer"); err == nil {
		t.Fatalf("expected error for unknown perspective")
	}
}

func TestFormatScore(t *testing.T) {
	for score, want := range map[float64]string{posInf: "+Inf", negInf: "-Inf", 0: "0", -80: "-80", 12.5: "12.5"} {
		if got := FormatScore(score); got != want {
			t.Fatalf("FormatScore(%v) = %q, want %q", score, got, want)
		}
	}
}
