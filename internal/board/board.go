package board

import (
	"errors"
	"fmt"
	"strings"
)

const (
	Rows    = 6
	Columns = 7
	// Center is the middle column index.
	Center = Columns / 2
)

type Piece int

const (
	Empty Piece = 0
	One   Piece = 1
	Two   Piece = 2
)

var (
	ErrInvalidMove    = errors.New("invalid move")
	ErrColumnFull     = errors.New("column is full")
	ErrMalformedBoard = errors.New("malformed board")
)

// Valid reports whether p is one of the three cell states.
func (p Piece) Valid() bool {
	return p == Empty || p == One || p == Two
}

// Opponent returns the other player's piece. Empty has no opponent.
func (p Piece) Opponent() Piece {
	switch p {
	case One:
		return Two
	case Two:
		return One
	}
	return Empty
}

// Board holds piece occupancy. Row 0 is the floor, so a column fills
// upward from index 0. Board is a value type: assigning it copies every cell.
type Board [Rows][Columns]Piece

func New() Board {
	return Board{}
}

// FromGrid builds a Board from a row-major grid whose first row is the floor.
// Anything that is not 6x7 with values in {0,1,2}, or that has a piece
// floating above an empty cell, is rejected with ErrMalformedBoard.
func FromGrid(grid [][]int) (Board, error) {
	var b Board
	if len(grid) != Rows {
		return b, fmt.Errorf("%w: want %d rows, got %d", ErrMalformedBoard, Rows, len(grid))
	}
	for row := range grid {
		if len(grid[row]) != Columns {
			return b, fmt.Errorf("%w: row %d has %d columns, want %d", ErrMalformedBoard, row, len(grid[row]), Columns)
		}
		for col, v := range grid[row] {
			p := Piece(v)
			if !p.Valid() {
				return b, fmt.Errorf("%w: cell (%d,%d) holds %d", ErrMalformedBoard, row, col, v)
			}
			b[row][col] = p
		}
	}
	for col := 0; col < Columns; col++ {
		for row := 1; row < Rows; row++ {
			if b[row][col] != Empty && b[row-1][col] == Empty {
				return b, fmt.Errorf("%w: floating piece at (%d,%d)", ErrMalformedBoard, row, col)
			}
		}
	}
	return b, nil
}

func (b Board) Grid() [][]int {
	grid := make([][]int, Rows)
	for row := range grid {
		grid[row] = make([]int, Columns)
		for col := range grid[row] {
			grid[row][col] = int(b[row][col])
		}
	}
	return grid
}

// IsValidMove is recomputed from occupancy on every call.
func (b Board) IsValidMove(column int) bool {
	if column < 0 || column >= Columns {
		return false
	}
	return b[Rows-1][column] == Empty
}

// NextOpenRow returns the lowest empty row of column, or false when the
// column is full or out of range.
func (b Board) NextOpenRow(column int) (int, bool) {
	if column < 0 || column >= Columns {
		return -1, false
	}
	for row := 0; row < Rows; row++ {
		if b[row][column] == Empty {
			return row, true
		}
	}
	return -1, false
}

// Place writes piece into the cell without any bounds or gravity checks.
// Callers get row from NextOpenRow.
func (b *Board) Place(row, column int, piece Piece) {
	b[row][column] = piece
}

// Drop validates column and places piece at its next open row. A rejected
// move leaves the board untouched.
func (b *Board) Drop(column int, piece Piece) (int, error) {
	if column < 0 || column >= Columns {
		return -1, fmt.Errorf("%w: column %d out of range", ErrInvalidMove, column)
	}
	row, ok := b.NextOpenRow(column)
	if !ok {
		return -1, fmt.Errorf("%w: %w", ErrInvalidMove, ErrColumnFull)
	}
	b.Place(row, column, piece)
	return row, nil
}

// Copy returns an independent board.
func (b Board) Copy() Board {
	return b
}

// ValidMoves lists playable columns in ascending order.
func (b Board) ValidMoves() []int {
	moves := make([]int, 0, Columns)
	for col := 0; col < Columns; col++ {
		if b.IsValidMove(col) {
			moves = append(moves, col)
		}
	}
	return moves
}

func (b Board) IsFull() bool {
	for col := 0; col < Columns; col++ {
		if b[Rows-1][col] == Empty {
			return false
		}
	}
	return true
}

// Count returns how many cells hold piece.
func (b Board) Count(piece Piece) int {
	n := 0
	for row := 0; row < Rows; row++ {
		for col := 0; col < Columns; col++ {
			if b[row][col] == piece {
				n++
			}
		}
	}
	return n
}

// String renders the board top row first with column indexes underneath.
func (b Board) String() string {
	var sb strings.Builder
	for row := Rows - 1; row >= 0; row-- {
		sb.WriteByte('|')
		for col := 0; col < Columns; col++ {
			switch b[row][col] {
			case One:
				sb.WriteString(" X")
			case Two:
				sb.WriteString(" O")
			default:
				sb.WriteString(" .")
			}
		}
		sb.WriteString(" |\n")
	}
	sb.WriteByte(' ')
	for col := 0; col < Columns; col++ {
		fmt.Fprintf(&sb, " %d", col)
	}
	sb.WriteByte('\n')
	return sb.String()
}
