package entity

import (
	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
)

// BoardSize is the side length of the square board.
const BoardSize = 15

// winLength stones in a row win the game.
const winLength = 5

type Color string

const (
	Black Color = "black"
	White Color = "white"

	EmptyCell Color = ""
)

// directions holds the four line orientations to scan for a win:
// horizontal, vertical and the two diagonals.
var directions = [4][2]int{
	{0, 1},
	{1, 0},
	{1, 1},
	{1, -1},
}

func (that Color) Opponent() Color {
	if that == Black {
		return White
	}
	return Black
}

// Game is the state of one board: stones placed so far, whose move is
// awaited and whether a terminal result has been reached.
type Game struct {
	Board     [BoardSize][BoardSize]Color
	Turn      Color
	MoveCount int
	Over      bool
	Winner    Color
}

func NewGame() *Game {
	return &Game{
		Turn: Black,
	}
}

// ValidateMove - checks whether placing a stone at (row, col) is legal
// for the given color. It does not mutate the game.
func (that *Game) ValidateMove(row, col int, color Color) error {
	if that.Over {
		return apperror.ErrGameFinished
	}

	if color != that.Turn {
		return apperror.ErrNotYourTurn
	}

	if row < 0 || row >= BoardSize || col < 0 || col >= BoardSize {
		return apperror.ErrOutOfBounds
	}

	if that.Board[row][col] != EmptyCell {
		return apperror.ErrCellOccupied
	}

	return nil
}

// PlaceStone - writes the stone and advances the game. The caller must
// have validated the move first. Returns true when the move ended the
// game, either by a win or by filling the board.
func (that *Game) PlaceStone(row, col int, color Color) bool {
	that.Board[row][col] = color
	that.MoveCount++

	if that.checkWin(row, col) {
		that.Over = true
		that.Winner = color
		return true
	}

	if that.MoveCount == BoardSize*BoardSize {
		that.Over = true
		return true
	}

	that.Turn = color.Opponent()

	return false
}

// Finish - applies a terminal result from outside the board, e.g. a turn
// timeout or a disconnect forfeit. Does nothing if the game is already over,
// so a terminal result is applied at most once no matter who races to it.
func (that *Game) Finish(winner Color) {
	if that.Over {
		return
	}

	that.Over = true
	that.Winner = winner
}

// checkWin - scans the four orientations through the just-placed stone,
// counting contiguous same-color stones at most winLength-1 cells each way.
func (that *Game) checkWin(row, col int) bool {
	color := that.Board[row][col]

	for _, dir := range directions {
		count := 1

		count += that.countRun(row, col, dir[0], dir[1], color)
		count += that.countRun(row, col, -dir[0], -dir[1], color)

		if count >= winLength {
			return true
		}
	}

	return false
}

func (that *Game) countRun(row, col, dRow, dCol int, color Color) int {
	count := 0

	for i := 1; i < winLength; i++ {
		r, c := row+dRow*i, col+dCol*i
		if r < 0 || r >= BoardSize || c < 0 || c >= BoardSize {
			break
		}

		if that.Board[r][c] != color {
			break
		}

		count++
	}

	return count
}

// BoardRows - copies the board into a row-major slice for state resync.
func (that *Game) BoardRows() [][]Color {
	rows := make([][]Color, BoardSize)
	for i := range that.Board {
		rows[i] = make([]Color, BoardSize)
		copy(rows[i], that.Board[i][:])
	}

	return rows
}
