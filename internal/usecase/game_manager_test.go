package usecase

import (
	"context"
	"io"
	"log/slog"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/rocketscienceinc/tictactoe-tally/internal/entity"
	"github.com/rocketscienceinc/tictactoe-tally/internal/tictactoe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const computerDelay = 2 * time.Second

type memoryScores struct {
	score entity.Score
	saves int
}

func (that *memoryScores) Load(context.Context) entity.Score {
	return that.score
}

func (that *memoryScores) Save(_ context.Context, score entity.Score) {
	that.score = score
	that.saves++
}

type manualScheduler struct {
	delays  []time.Duration
	pending []func()
}

func (that *manualScheduler) AfterFunc(d time.Duration, f func()) {
	that.delays = append(that.delays, d)
	that.pending = append(that.pending, f)
}

// fire - runs every pending callback in scheduling order.
func (that *manualScheduler) fire() {
	pending := that.pending
	that.pending = nil

	for _, f := range pending {
		f()
	}
}

type recordingNotifier struct {
	mu        sync.Mutex
	snapshots []entity.Snapshot
}

func (that *recordingNotifier) Publish(snapshot entity.Snapshot) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.snapshots = append(that.snapshots, snapshot)
}

type fixture struct {
	manager   *GameManager
	scores    *memoryScores
	scheduler *manualScheduler
	notifier  *recordingNotifier
}

func newFixture(t *testing.T, mode entity.Mode) *fixture {
	t.Helper()

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	scores := &memoryScores{}
	controller := tictactoe.NewGameController(context.Background(), scores,
		tictactoe.WithMode(mode),
		tictactoe.WithRand(rand.New(rand.NewSource(7))), //nolint: gosec // deterministic tests
	)

	scheduler := &manualScheduler{}
	notifier := &recordingNotifier{}

	return &fixture{
		manager:   NewGameManager(logger, controller, scheduler, computerDelay, notifier),
		scores:    scores,
		scheduler: scheduler,
		notifier:  notifier,
	}
}

func TestGameManager_ClickCell(t *testing.T) {
	ctx := context.Background()

	t.Run("Two player clicks alternate marks", func(t *testing.T) {
		// Given: a two player table
		f := newFixture(t, entity.ModeTwoPlayer)

		// When: two cells are clicked
		f.manager.ClickCell(ctx, 0)
		snapshot := f.manager.ClickCell(ctx, 4)

		// Then: X and O were placed in order, no computer turn was scheduled
		assert.Equal(t, entity.PlayerX, snapshot.Board[0])
		assert.Equal(t, entity.PlayerO, snapshot.Board[4])
		assert.Equal(t, entity.PlayerX, snapshot.Turn)
		assert.Empty(t, f.scheduler.pending)
		assert.Len(t, f.notifier.snapshots, 2)
	})

	t.Run("Rejected click publishes nothing", func(t *testing.T) {
		f := newFixture(t, entity.ModeTwoPlayer)
		f.manager.ClickCell(ctx, 0)

		snapshot := f.manager.ClickCell(ctx, 0)

		assert.Equal(t, entity.PlayerO, snapshot.Turn)
		assert.Len(t, f.notifier.snapshots, 1)
	})

	t.Run("Win is recorded and persisted", func(t *testing.T) {
		f := newFixture(t, entity.ModeTwoPlayer)

		var snapshot entity.Snapshot
		for _, cell := range []int{0, 1, 3, 4, 6} {
			snapshot = f.manager.ClickCell(ctx, cell)
		}

		assert.Equal(t, entity.OutcomeXWon, snapshot.Outcome)
		assert.Equal(t, entity.Score{XWins: 1}, f.scores.score)
		assert.Equal(t, 1, f.scores.saves)
	})
}

func TestGameManager_ComputerTurn(t *testing.T) {
	ctx := context.Background()

	t.Run("Computer replies after the delay", func(t *testing.T) {
		// Given: a vs-computer table
		f := newFixture(t, entity.ModeVsComputer)

		// When: the human plays the center
		snapshot := f.manager.ClickCell(ctx, 4)

		// Then: the computer is thinking and a reply is scheduled with the configured delay
		assert.True(t, snapshot.ComputerThinking)
		assert.Equal(t, entity.PlayerO, snapshot.Turn)
		require.Len(t, f.scheduler.pending, 1)
		assert.Equal(t, computerDelay, f.scheduler.delays[0])

		// When: the delay elapses
		f.scheduler.fire()

		// Then: O has been placed and the human is to move
		state := f.manager.State()
		assert.False(t, state.ComputerThinking)
		assert.Equal(t, entity.PlayerX, state.Turn)
		assert.Len(t, state.Board.EmptyCells(), 7)
		assert.Equal(t, state, f.notifier.snapshots[len(f.notifier.snapshots)-1])
	})

	t.Run("Clicks while the computer thinks are ignored", func(t *testing.T) {
		f := newFixture(t, entity.ModeVsComputer)
		f.manager.ClickCell(ctx, 4)

		snapshot := f.manager.ClickCell(ctx, 0)

		assert.Equal(t, entity.EmptyCell, snapshot.Board[0])
		assert.Len(t, f.scheduler.pending, 1)
	})

	t.Run("Reset during the delay aborts the reply", func(t *testing.T) {
		// Given: a pending computer reply
		f := newFixture(t, entity.ModeVsComputer)
		f.manager.ClickCell(ctx, 4)

		// When: the board is reset before the delay elapses
		reset := f.manager.ResetBoard()
		published := len(f.notifier.snapshots)
		f.scheduler.fire()

		// Then: the stale callback changes nothing and publishes nothing
		assert.Equal(t, reset, f.manager.State())
		assert.Equal(t, entity.Board{}, reset.Board)
		assert.False(t, reset.ComputerThinking)
		assert.Len(t, f.notifier.snapshots, published)
	})

	t.Run("Mode switch during the delay aborts the reply", func(t *testing.T) {
		f := newFixture(t, entity.ModeVsComputer)
		f.manager.ClickCell(ctx, 4)

		f.manager.SetMode(entity.ModeTwoPlayer)
		f.scheduler.fire()

		state := f.manager.State()
		assert.Equal(t, entity.ModeTwoPlayer, state.Mode)
		assert.Equal(t, entity.Board{}, state.Board)
	})

	t.Run("A full vs-computer game always terminates with one score update", func(t *testing.T) {
		f := newFixture(t, entity.ModeVsComputer)

		for i := 0; i < 9 && !f.manager.State().Outcome.IsTerminal(); i++ {
			empty := f.manager.State().Board.EmptyCells()
			require.NotEmpty(t, empty)
			f.manager.ClickCell(ctx, empty[0])
			f.scheduler.fire()
		}

		state := f.manager.State()
		require.True(t, state.Outcome.IsTerminal())
		assert.Equal(t, 1, f.scores.saves)
		assert.Equal(t, 1, state.Score.XWins+state.Score.OWins+state.Score.Draws)
	})
}

func TestGameManager_ResetScore(t *testing.T) {
	// Given: a table with a recorded win
	f := newFixture(t, entity.ModeTwoPlayer)
	for _, cell := range []int{0, 1, 3, 4, 6} {
		f.manager.ClickCell(context.Background(), cell)
	}

	// When: the score is reset
	snapshot := f.manager.ResetScore(context.Background())

	// Then: the tally is zero and persisted, the finished board stays
	assert.Equal(t, entity.Score{}, snapshot.Score)
	assert.Equal(t, entity.Score{}, f.scores.score)
	assert.Equal(t, entity.OutcomeXWon, snapshot.Outcome)
}

func TestGameManager_ConcurrentClicks(t *testing.T) {
	// Given: a two player table hit by many concurrent clicks on every cell
	f := newFixture(t, entity.ModeTwoPlayer)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		for cell := 0; cell < entity.BoardSize; cell++ {
			wg.Add(1)
			go func(cell int) {
				defer wg.Done()
				f.manager.ClickCell(context.Background(), cell)
			}(cell)
		}
	}
	wg.Wait()

	// Then: every accepted move was applied atomically, so the game ended exactly once
	state := f.manager.State()
	assert.True(t, state.Outcome.IsTerminal())
	assert.Equal(t, 1, f.scores.saves)
}
