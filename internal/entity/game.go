package entity

import (
	"fmt"

	"github.com/rocketscienceinc/disappearing-tictactoe/internal/apperror"
)

type Mark string

const (
	MarkEmpty Mark = ""
	MarkX     Mark = "X"
	MarkO     Mark = "O"
)

type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusWin        Status = "win"
	StatusDraw       Status = "draw"
)

const (
	BoardSize = 9

	// marks a player keeps on the board once the disappearing rule is active
	activeMarks = 3
	// moves placed before the first eviction
	evictionThreshold = 2 * activeMarks

	TitleClassic      = "Tic Tac Toe"
	TitleDisappearing = "Disappearing Tic Tac Toe"
)

var WinCombos = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Board is a 3x3 grid stored row-major: index = row*3+col.
type Board [BoardSize]Mark

// Game is the disappearing tic-tac-toe state machine.
type Game struct {
	ID       string `json:"id"`
	Board    Board  `json:"board"`
	Turn     Mark   `json:"turn"`
	Moves    int    `json:"moves"`
	HistoryX []int  `json:"history_x"`
	HistoryO []int  `json:"history_o"`
	Status   Status `json:"status"`
	Winner   Mark   `json:"winner,omitempty"`
}

// MoveResult describes what a single accepted move changed.
type MoveResult struct {
	Cell   int  `json:"cell"`
	Mark   Mark `json:"mark"`
	// Evicted is the cell cleared by the disappearing rule, nil when nothing was cleared.
	Evicted *int `json:"evicted,omitempty"`
	// Disappearing is set only on the move that first triggers an eviction.
	Disappearing bool   `json:"disappearing,omitempty"`
	Status       Status `json:"status"`
	Winner       Mark   `json:"winner,omitempty"`
}

func NewGame(id string) *Game {
	game := &Game{ID: id}
	game.Start()

	return game
}

// Start resets the round. It may be called at any time and supersedes the current round.
func (that *Game) Start() {
	that.Board = Board{}
	that.Turn = MarkX
	that.Moves = 0
	that.HistoryX = []int{}
	that.HistoryO = []int{}
	that.Status = StatusInProgress
	that.Winner = MarkEmpty
}

// ApplyMove places the current player's mark on cell. A rejected move returns an error
// wrapping apperror.ErrInvalidMove and leaves the game untouched.
func (that *Game) ApplyMove(cell int) (*MoveResult, error) {
	if err := that.validateMove(cell); err != nil {
		return nil, fmt.Errorf("%w: %w", apperror.ErrInvalidMove, err)
	}

	player := that.Turn
	result := &MoveResult{Cell: cell, Mark: player}

	that.Board[cell] = player
	that.Moves++
	history := that.history(player)
	*history = append(*history, cell)

	if that.Moves > evictionThreshold && len(*history) > 0 {
		oldest := (*history)[0]
		that.Board[oldest] = MarkEmpty
		*history = (*history)[1:]

		result.Evicted = &oldest
		result.Disappearing = that.Moves == evictionThreshold+1
	}

	switch {
	case that.HasWon(player):
		that.Status = StatusWin
		that.Winner = player
	case that.Board.IsFull():
		that.Status = StatusDraw
	default:
		that.Turn = Opponent(player)
	}

	result.Status = that.Status
	result.Winner = that.Winner

	return result, nil
}

func (that *Game) validateMove(cell int) error {
	if that.IsFinished() {
		return apperror.ErrGameFinished
	}

	if cell < 0 || cell >= BoardSize {
		return fmt.Errorf("%w: cell %d", apperror.ErrInvalidCell, cell)
	}

	if that.Board[cell] != MarkEmpty {
		return apperror.ErrCellOccupied
	}

	return nil
}

func (that *Game) history(player Mark) *[]int {
	if player == MarkO {
		return &that.HistoryO
	}

	return &that.HistoryX
}

// HasWon reports whether player holds all three cells of any winning combination.
func (that *Game) HasWon(player Mark) bool {
	for _, combo := range WinCombos {
		if that.Board[combo[0]] == player && that.Board[combo[1]] == player && that.Board[combo[2]] == player {
			return true
		}
	}

	return false
}

// History returns a copy of player's active marks, oldest first.
func (that *Game) History(player Mark) []int {
	return append([]int(nil), *that.history(player)...)
}

func (that *Game) IsFinished() bool {
	return that.Status == StatusWin || that.Status == StatusDraw
}

func (that *Game) IsInProgress() bool {
	return that.Status == StatusInProgress
}

// IsDisappearing reports whether the eviction rule is active for the current round.
func (that *Game) IsDisappearing() bool {
	return that.Moves > evictionThreshold
}

// NextEviction returns the cell the current player loses on their next move.
func (that *Game) NextEviction() (int, bool) {
	if !that.IsInProgress() || that.Moves < evictionThreshold {
		return 0, false
	}

	history := that.History(that.Turn)
	if len(history) == 0 {
		return 0, false
	}

	return history[0], true
}

// Message is the status line shown to the players.
func (that *Game) Message() string {
	switch that.Status {
	case StatusWin:
		return fmt.Sprintf("Player %s wins!", that.Winner)
	case StatusDraw:
		return "Draw..."
	default:
		return fmt.Sprintf("Player %s's Turn", that.Turn)
	}
}

// Clone returns a deep copy of the game.
func (that *Game) Clone() *Game {
	clone := *that
	clone.HistoryX = append([]int{}, that.HistoryX...)
	clone.HistoryO = append([]int{}, that.HistoryO...)

	return &clone
}

func (that Board) IsFull() bool {
	for _, cell := range that {
		if cell == MarkEmpty {
			return false
		}
	}

	return true
}

// count returns how many cells hold player's mark.
func (that Board) count(player Mark) int {
	count := 0
	for _, cell := range that {
		if cell == player {
			count++
		}
	}

	return count
}

func Opponent(player Mark) Mark {
	if player == MarkX {
		return MarkO
	}

	return MarkX
}
