package entity

import (
	"testing"

	"github.com/rocketscienceinc/disappearing-tictactoe/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func playMoves(t *testing.T, game *Game, cells ...int) []*MoveResult {
	t.Helper()

	results := make([]*MoveResult, 0, len(cells))
	for _, cell := range cells {
		result, err := game.ApplyMove(cell)
		require.NoError(t, err, "move at cell %d", cell)
		results = append(results, result)
	}

	return results
}

func TestNewGame(t *testing.T) {
	// When: a new game is created
	game := NewGame("123")

	// Then: the game should be in its initial state
	expectedGame := &Game{
		ID:       "123",
		Board:    Board{},
		Turn:     MarkX,
		Moves:    0,
		HistoryX: []int{},
		HistoryO: []int{},
		Status:   StatusInProgress,
	}

	require.Equal(t, expectedGame, game)
	assert.Equal(t, "Player X's Turn", game.Message())
}

func TestGame_ApplyMove(t *testing.T) {
	t.Run("Successful move flips the turn", func(t *testing.T) {
		// Given: a new game
		game := NewGame("123")

		// When: player X marks the center
		result, err := game.ApplyMove(4)
		require.NoError(t, err)

		// Then: the mark is placed and it is O's turn
		assert.Equal(t, &MoveResult{Cell: 4, Mark: MarkX, Status: StatusInProgress}, result)
		assert.Equal(t, MarkX, game.Board[4])
		assert.Equal(t, MarkO, game.Turn)
		assert.Equal(t, 1, game.Moves)
		assert.Equal(t, []int{4}, game.HistoryX)
		assert.Empty(t, game.HistoryO)
	})

	t.Run("Turns alternate on every non-terminal move", func(t *testing.T) {
		// Given: a new game
		game := NewGame("123")

		// When: a sequence of moves is played that never wins
		for i, cell := range []int{0, 1, 2, 4, 3, 5, 7, 6, 8} {
			mover := game.Turn
			result, err := game.ApplyMove(cell)
			require.NoError(t, err, "move %d", i)
			require.Equal(t, StatusInProgress, result.Status)

			// Then: the next player is always the opponent of the mover
			assert.Equal(t, Opponent(mover), game.Turn)
		}
	})

	t.Run("Error on cell already occupied", func(t *testing.T) {
		// Given: a game where cell 0 is marked by X
		game := NewGame("123")
		playMoves(t, game, 0)
		before := game.Clone()

		// When: O tries to mark the same cell
		result, err := game.ApplyMove(0)

		// Then: the move is rejected and nothing changes
		require.ErrorIs(t, err, apperror.ErrInvalidMove)
		require.ErrorIs(t, err, apperror.ErrCellOccupied)
		assert.Nil(t, result)
		assert.Equal(t, before, game)
	})

	t.Run("Applying the same cell twice marks it once", func(t *testing.T) {
		// Given: a new game
		game := NewGame("123")

		// When: the same cell is submitted twice
		_, err := game.ApplyMove(5)
		require.NoError(t, err)
		_, err = game.ApplyMove(5)

		// Then: the second call is a no-op
		require.ErrorIs(t, err, apperror.ErrInvalidMove)
		assert.Equal(t, 1, game.Moves)
		assert.Equal(t, MarkO, game.Turn)
		assert.Equal(t, 1, game.Board.count(MarkX))
		assert.Equal(t, 0, game.Board.count(MarkO))
	})

	t.Run("Error on invalid cell index", func(t *testing.T) {
		for _, cell := range []int{-1, 9, 20} {
			// Given: a new game
			game := NewGame("123")

			// When: a move outside the board is submitted
			_, err := game.ApplyMove(cell)

			// Then: it is rejected as an invalid move
			require.ErrorIs(t, err, apperror.ErrInvalidMove)
			require.ErrorIs(t, err, apperror.ErrInvalidCell)
			assert.Equal(t, NewGame("123"), game)
		}
	})
}

func TestGame_Eviction(t *testing.T) {
	t.Run("Seventh move clears the mover's first mark and fires the notification", func(t *testing.T) {
		// Given: X holds 0,2,6 and O holds 3,4,8 with no winner
		game := NewGame("123")
		results := playMoves(t, game, 0, 3, 2, 4, 6, 8)
		for _, result := range results {
			assert.Nil(t, result.Evicted)
			assert.False(t, result.Disappearing)
		}
		assert.False(t, game.IsDisappearing())
		next, ok := game.NextEviction()
		require.True(t, ok)
		assert.Equal(t, 0, next)

		// When: X places its fourth mark on cell 7
		result, err := game.ApplyMove(7)
		require.NoError(t, err)

		// Then: cell 0 is cleared and the notification fires once
		require.NotNil(t, result.Evicted)
		assert.Equal(t, 0, *result.Evicted)
		assert.True(t, result.Disappearing)
		assert.True(t, game.IsDisappearing())
		assert.Equal(t, MarkEmpty, game.Board[0])
		assert.Equal(t, MarkX, game.Board[7])
		assert.Equal(t, []int{2, 6, 7}, game.HistoryX)
		assert.Equal(t, StatusInProgress, game.Status)
		assert.Equal(t, MarkO, game.Turn)

		next, ok = game.NextEviction()
		require.True(t, ok)
		assert.Equal(t, 3, next)
	})

	t.Run("Later evictions take the mover's own oldest mark without renotifying", func(t *testing.T) {
		// Given: the game right after the first eviction
		game := NewGame("123")
		playMoves(t, game, 0, 3, 2, 4, 6, 8, 7)

		// When: O places its fourth mark
		result, err := game.ApplyMove(1)
		require.NoError(t, err)

		// Then: O's first mark (cell 3) disappears, X is untouched
		require.NotNil(t, result.Evicted)
		assert.Equal(t, 3, *result.Evicted)
		assert.False(t, result.Disappearing)
		assert.Equal(t, MarkEmpty, game.Board[3])
		assert.Equal(t, []int{4, 8, 1}, game.HistoryO)
		assert.Equal(t, []int{2, 6, 7}, game.HistoryX)
	})

	t.Run("Each player keeps at most three marks", func(t *testing.T) {
		// Given: a new game
		game := NewGame("123")

		// When: many moves are played, always taking the first empty cell that does not win
		for move := 1; move <= 40 && game.IsInProgress(); move++ {
			cell := firstSafeCell(game)
			if cell < 0 {
				break
			}

			mover := game.Turn
			expectedEvicted := -1
			if move > 6 {
				expectedEvicted = game.History(mover)[0]
			}

			result, err := game.ApplyMove(cell)
			require.NoError(t, err)

			// Then: the evicted cell is the mover's least recent active mark
			if expectedEvicted >= 0 {
				require.NotNil(t, result.Evicted)
				assert.Equal(t, expectedEvicted, *result.Evicted)
			}
			assert.LessOrEqual(t, game.Board.count(MarkX), 3)
			assert.LessOrEqual(t, game.Board.count(MarkO), 3)
			assert.LessOrEqual(t, len(game.HistoryX), 3)
			assert.LessOrEqual(t, len(game.HistoryO), 3)
			assert.Equal(t, move, game.Moves)
		}

		assert.GreaterOrEqual(t, game.Moves, 8)
	})

	t.Run("A line broken by eviction does not win", func(t *testing.T) {
		// Given: X holds 0,1 and 8 with 0 as its oldest mark
		game := NewGame("123")
		playMoves(t, game, 0, 3, 1, 4, 8, 6)

		// When: X completes 0,1,2 while 0 disappears
		result, err := game.ApplyMove(2)
		require.NoError(t, err)

		// Then: there is no winner
		assert.Equal(t, StatusInProgress, result.Status)
		assert.Equal(t, MarkEmpty, game.Board[0])
	})
}

// firstSafeCell picks the first empty cell that does not finish the round.
func firstSafeCell(game *Game) int {
	for cell := range BoardSize {
		if game.Board[cell] != MarkEmpty {
			continue
		}

		probe := game.Clone()
		result, err := probe.ApplyMove(cell)
		if err == nil && result.Status == StatusInProgress {
			return cell
		}
	}

	return -1
}

func TestGame_Win(t *testing.T) {
	t.Run("Top row scenario", func(t *testing.T) {
		// Given: a new game
		game := NewGame("123")

		// When: X plays 0,1,2 while O plays 4,3
		results := playMoves(t, game, 0, 4, 1, 3, 2)

		// Then: X wins on the fifth move and the turn stays with X
		for _, result := range results[:4] {
			assert.Equal(t, StatusInProgress, result.Status)
		}
		assert.Equal(t, StatusWin, results[4].Status)
		assert.Equal(t, MarkX, results[4].Winner)
		assert.Equal(t, MarkX, game.Turn)
		assert.True(t, game.IsFinished())
		assert.Equal(t, "Player X wins!", game.Message())
	})

	t.Run("Every winning combination is detected on the completing move", func(t *testing.T) {
		for _, combo := range WinCombos {
			// Given: a new game and O moves that avoid the combination
			game := NewGame("123")
			fillers := make([]int, 0, 2)
			for cell := range BoardSize {
				if cell != combo[0] && cell != combo[1] && cell != combo[2] && len(fillers) < 2 {
					if !completesLine(append(fillers, cell)) {
						fillers = append(fillers, cell)
					}
				}
			}
			require.Len(t, fillers, 2)

			// When: X plays the three cells of the combination
			playMoves(t, game, combo[0], fillers[0], combo[1], fillers[1])
			assert.Equal(t, StatusInProgress, game.Status, "combo %v", combo)

			result, err := game.ApplyMove(combo[2])
			require.NoError(t, err)

			// Then: X wins immediately
			assert.Equal(t, StatusWin, result.Status, "combo %v", combo)
			assert.Equal(t, MarkX, game.Winner)
		}
	})

	t.Run("O can win", func(t *testing.T) {
		// Given: a new game
		game := NewGame("123")

		// When: O completes the anti-diagonal
		playMoves(t, game, 0, 2, 1, 4, 8, 6)

		// Then: O wins
		assert.Equal(t, StatusWin, game.Status)
		assert.Equal(t, MarkO, game.Winner)
		assert.Equal(t, "Player O wins!", game.Message())
	})
}

func completesLine(cells []int) bool {
	game := &Game{}
	for _, cell := range cells {
		game.Board[cell] = MarkO
	}

	return game.HasWon(MarkO)
}

func TestGame_Draw(t *testing.T) {
	t.Run("Filling the last cell without a line is a draw", func(t *testing.T) {
		// Given: a game with eight cells occupied and no line
		game := &Game{
			ID: "123",
			Board: Board{
				MarkX, MarkO, MarkX,
				MarkX, MarkO, MarkO,
				MarkO, MarkX, MarkEmpty,
			},
			Turn:     MarkX,
			Moves:    2,
			HistoryX: []int{},
			HistoryO: []int{},
			Status:   StatusInProgress,
		}

		// When: X fills the last cell
		result, err := game.ApplyMove(8)
		require.NoError(t, err)

		// Then: the round is a draw
		assert.Equal(t, StatusDraw, result.Status)
		assert.Equal(t, MarkEmpty, result.Winner)
		assert.Equal(t, "Draw...", game.Message())
		assert.True(t, game.IsFinished())
	})

	t.Run("A full board with a line is a win, not a draw", func(t *testing.T) {
		// Given: a game where the last cell completes X's column
		game := &Game{
			Board: Board{
				MarkX, MarkO, MarkO,
				MarkX, MarkO, MarkX,
				MarkEmpty, MarkX, MarkO,
			},
			Turn:   MarkX,
			Status: StatusInProgress,
		}

		// When: X fills the last cell
		result, err := game.ApplyMove(6)
		require.NoError(t, err)

		// Then: X wins
		assert.Equal(t, StatusWin, result.Status)
	})
}

func TestGame_TerminalImmutability(t *testing.T) {
	// Given: a game won by X
	game := NewGame("123")
	playMoves(t, game, 0, 4, 1, 3, 2)
	before := game.Clone()

	// When: further moves are submitted
	for cell := range BoardSize {
		_, err := game.ApplyMove(cell)

		// Then: every move is rejected and nothing changes
		require.ErrorIs(t, err, apperror.ErrInvalidMove)
		require.ErrorIs(t, err, apperror.ErrGameFinished)
	}
	assert.Equal(t, before, game)
}

func TestGame_NextEviction(t *testing.T) {
	t.Run("Nothing fades before the board holds six marks", func(t *testing.T) {
		// Given: a game with five marks
		game := NewGame("123")
		playMoves(t, game, 0, 3, 2, 4, 6)

		// When: asking which cell fades next
		_, ok := game.NextEviction()

		// Then: there is none
		assert.False(t, ok)
	})

	t.Run("Nothing fades once the game is over", func(t *testing.T) {
		// Given: X has won the top row
		game := NewGame("123")
		playMoves(t, game, 0, 4, 1, 3, 2)

		// When: asking which cell fades next
		_, ok := game.NextEviction()

		// Then: there is none
		assert.False(t, ok)
	})
}

func TestGame_Start(t *testing.T) {
	// Given: a game in the disappearing phase
	game := NewGame("123")
	playMoves(t, game, 0, 3, 2, 4, 6, 8, 7, 1)

	// When: the game is restarted
	game.Start()

	// Then: everything is reset
	assert.Equal(t, NewGame("123"), game)
	assert.Equal(t, Board{}, game.Board)
	assert.Equal(t, StatusInProgress, game.Status)
	assert.Equal(t, 0, game.Moves)
	assert.Equal(t, MarkX, game.Turn)
}
