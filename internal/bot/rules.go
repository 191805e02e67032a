package bot

import "connect4ai/internal/board"

const windowLen = 4

type cell struct {
	row, col int
}

// window is four aligned cells along one orientation.
type window [windowLen]cell

// windows holds every horizontal, vertical and diagonal run of four cells.
// The win detector and the evaluator walk the same list.
var windows = buildWindows()

func buildWindows() []window {
	directions := [][2]int{
		{0, 1},  // horizontal
		{1, 0},  // vertical
		{1, 1},  // diagonal ascending
		{-1, 1}, // diagonal descending
	}

	var ws []window
	for _, dir := range directions {
		dRow, dCol := dir[0], dir[1]
		for row := 0; row < board.Rows; row++ {
			for col := 0; col < board.Columns; col++ {
				endRow := row + dRow*(windowLen-1)
				endCol := col + dCol*(windowLen-1)
				if endRow < 0 || endRow >= board.Rows || endCol >= board.Columns {
					continue
				}
				var w window
				for i := 0; i < windowLen; i++ {
					w[i] = cell{row + dRow*i, col + dCol*i}
				}
				ws = append(ws, w)
			}
		}
	}
	return ws
}

func (w window) pieces(b *board.Board) [windowLen]board.Piece {
	var out [windowLen]board.Piece
	for i, c := range w {
		out[i] = b[c.row][c.col]
	}
	return out
}

// HasWon reports whether piece occupies all four cells of any window.
// Empty never wins.
func HasWon(b *board.Board, piece board.Piece) bool {
	if piece == board.Empty {
		return false
	}
	for _, w := range windows {
		if b[w[0].row][w[0].col] == piece &&
			b[w[1].row][w[1].col] == piece &&
			b[w[2].row][w[2].col] == piece &&
			b[w[3].row][w[3].col] == piece {
			return true
		}
	}
	return false
}

func IsTerminal(b *board.Board) bool {
	return HasWon(b, board.One) || HasWon(b, board.Two) || len(b.ValidMoves()) == 0
}
