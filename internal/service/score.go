package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/rocketscienceinc/tictactoe-tally/internal/entity"
	"github.com/rocketscienceinc/tictactoe-tally/internal/repository"
)

// ScoreService - persistence adapter for the tally. Failures never reach the caller.
type ScoreService interface {
	Load(ctx context.Context) entity.Score
	Save(ctx context.Context, score entity.Score)
}

type scoreRepo interface {
	Get(ctx context.Context) (entity.Score, error)
	Set(ctx context.Context, score entity.Score) error
}

type scoreService struct {
	logger  *slog.Logger
	repo    scoreRepo
	timeout time.Duration
}

func NewScoreService(logger *slog.Logger, repo scoreRepo, timeout time.Duration) ScoreService {
	return &scoreService{
		logger:  logger.With("component", "score"),
		repo:    repo,
		timeout: timeout,
	}
}

// Load - returns the persisted score, or the zero score when it is absent or unreadable.
func (that *scoreService) Load(ctx context.Context) entity.Score {
	log := that.logger.With("method", "Load")

	ctx, cancel := that.withTimeout(ctx)
	defer cancel()

	score, err := that.repo.Get(ctx)
	switch {
	case errors.Is(err, repository.ErrScoreNotFound):
		log.Debug("no stored score, starting from zero")
		return entity.Score{}
	case err != nil:
		log.Warn("could not load score, starting from zero", "error", err)
		return entity.Score{}
	case !score.IsValid():
		log.Warn("stored score has negative counters, starting from zero", "score", score)
		return entity.Score{}
	}

	return score
}

// Save - best effort write; errors are logged and dropped.
// The write ignores cancellation of ctx; only the store timeout bounds it.
func (that *scoreService) Save(ctx context.Context, score entity.Score) {
	ctx, cancel := that.withTimeout(context.WithoutCancel(ctx))
	defer cancel()

	if err := that.repo.Set(ctx, score); err != nil {
		that.logger.Error("could not save score", "method", "Save", "score", score, "error", err)
	}
}

func (that *scoreService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if that.timeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, that.timeout)
}
