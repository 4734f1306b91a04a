package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/rocketscienceinc/tictactoe-tally/internal/entity"
	"github.com/rocketscienceinc/tictactoe-tally/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

var errRedisDown = errors.New("redis down")

type mockScoreRepo struct {
	mock.Mock
}

func (m *mockScoreRepo) Get(ctx context.Context) (entity.Score, error) {
	args := m.Called(ctx)
	return args.Get(0).(entity.Score), args.Error(1)
}

func (m *mockScoreRepo) Set(ctx context.Context, score entity.Score) error {
	return m.Called(ctx, score).Error(0)
}

func newScoreService(t *testing.T) (ScoreService, *mockScoreRepo) {
	t.Helper()

	repo := &mockScoreRepo{}
	t.Cleanup(func() {
		repo.AssertExpectations(t)
	})

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	return NewScoreService(logger, repo, time.Second), repo
}

func TestScoreService_Load(t *testing.T) {
	ctx := context.Background()

	t.Run("Returns the stored score", func(t *testing.T) {
		// Given: a repository holding a score
		scores, repo := newScoreService(t)
		repo.On("Get", mock.Anything).Return(entity.Score{XWins: 2, Draws: 1}, nil).Once()

		// When: the score is loaded
		score := scores.Load(ctx)

		// Then: it is returned as stored
		assert.Equal(t, entity.Score{XWins: 2, Draws: 1}, score)
	})

	t.Run("Missing score falls back to zero", func(t *testing.T) {
		scores, repo := newScoreService(t)
		repo.On("Get", mock.Anything).Return(entity.Score{}, repository.ErrScoreNotFound).Once()

		assert.Equal(t, entity.Score{}, scores.Load(ctx))
	})

	t.Run("Corrupt score falls back to zero", func(t *testing.T) {
		scores, repo := newScoreService(t)
		repo.On("Get", mock.Anything).Return(entity.Score{XWins: 9}, repository.ErrCorruptScore).Once()

		assert.Equal(t, entity.Score{}, scores.Load(ctx))
	})

	t.Run("Backend failure falls back to zero", func(t *testing.T) {
		scores, repo := newScoreService(t)
		repo.On("Get", mock.Anything).Return(entity.Score{}, errRedisDown).Once()

		assert.Equal(t, entity.Score{}, scores.Load(ctx))
	})

	t.Run("Negative counters fall back to zero", func(t *testing.T) {
		scores, repo := newScoreService(t)
		repo.On("Get", mock.Anything).Return(entity.Score{OWins: -3}, nil).Once()

		assert.Equal(t, entity.Score{}, scores.Load(ctx))
	})
}

func TestScoreService_Save(t *testing.T) {
	ctx := context.Background()

	t.Run("Writes through to the repository", func(t *testing.T) {
		scores, repo := newScoreService(t)
		repo.On("Set", mock.Anything, entity.Score{OWins: 1}).Return(nil).Once()

		scores.Save(ctx, entity.Score{OWins: 1})
	})

	t.Run("Write failure is swallowed", func(t *testing.T) {
		scores, repo := newScoreService(t)
		repo.On("Set", mock.Anything, entity.Score{Draws: 2}).Return(errRedisDown).Once()

		assert.NotPanics(t, func() {
			scores.Save(ctx, entity.Score{Draws: 2})
		})
	})

	t.Run("Repository call carries a deadline", func(t *testing.T) {
		scores, repo := newScoreService(t)
		repo.On("Set", mock.MatchedBy(func(ctx context.Context) bool {
			_, ok := ctx.Deadline()
			return ok
		}), entity.Score{}).Return(nil).Once()

		scores.Save(ctx, entity.Score{})
	})

	t.Run("Write survives a cancelled caller", func(t *testing.T) {
		// Given: the request that finished the game is already gone
		scores, repo := newScoreService(t)
		requestCtx, cancel := context.WithCancel(ctx)
		cancel()

		repo.On("Set", mock.MatchedBy(func(ctx context.Context) bool {
			_, ok := ctx.Deadline()
			return ok && ctx.Err() == nil
		}), entity.Score{XWins: 1}).Return(nil).Once()

		// When: the score is saved
		scores.Save(requestCtx, entity.Score{XWins: 1})

		// Then: the repository sees a live context with its own deadline
	})
}
