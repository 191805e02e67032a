package bot

import "connect4ai/internal/board"

const (
	centerWeight = 5
	fourWeight   = 100
	threeWeight  = 10
	twoWeight    = 5
	threatWeight = -80
)

// Score is the cut-off heuristic for piece: a center column bonus plus the
// sum of windowScore over every window.
func Score(b *board.Board, piece board.Piece) float64 {
	score := 0.0

	for row := 0; row < board.Rows; row++ {
		if b[row][board.Center] == piece {
			score += centerWeight
		}
	}

	for _, w := range windows {
		score += windowScore(w.pieces(b), piece)
	}
	return score
}

// windowScore counts the friendly pattern and the opposing threat
// independently and sums both.
func windowScore(cells [windowLen]board.Piece, piece board.Piece) float64 {
	opponent := piece.Opponent()
	own, opp, empty := 0, 0, 0
	for _, c := range cells {
		switch c {
		case piece:
			own++
		case opponent:
			opp++
		case board.Empty:
			empty++
		}
	}

	score := 0.0
	if own == 4 {
		score += fourWeight
	} else if own == 3 && empty == 1 {
		score += threeWeight
	} else if own == 2 && empty == 2 {
		score += twoWeight
	}
	if opp == 3 && empty == 1 {
		score += threatWeight
	}
	return score
}
