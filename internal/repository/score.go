package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/tictactoe-tally/internal/entity"
)

// ScoreKey - the single storage key the tally lives under.
const ScoreKey = "ttt_score_v1"

var (
	ErrScoreNotFound = errors.New("score not found")
	ErrCorruptScore  = errors.New("stored score is corrupt")
)

type ScoreRepository interface {
	Get(ctx context.Context) (entity.Score, error)
	Set(ctx context.Context, score entity.Score) error
}

type dbScore struct {
	client *redis.Client
}

func NewRedisScoreRepository(client *redis.Client) ScoreRepository {
	return &dbScore{
		client: client,
	}
}

func (that *dbScore) Set(ctx context.Context, score entity.Score) error {
	scoreJSON, err := json.Marshal(score)
	if err != nil {
		return fmt.Errorf("could not marshal score: %w", err)
	}

	if err = that.client.Set(ctx, ScoreKey, scoreJSON, 0).Err(); err != nil {
		return fmt.Errorf("failed to set score: %w", err)
	}

	return nil
}

func (that *dbScore) Get(ctx context.Context) (entity.Score, error) {
	response, err := that.client.Get(ctx, ScoreKey).Bytes()

	if errors.Is(err, redis.Nil) {
		return entity.Score{}, ErrScoreNotFound
	}

	if err != nil {
		return entity.Score{}, fmt.Errorf("failed to get score: %w", err)
	}

	return decodeScore(response)
}

// decodeScore - strict JSON decoding; unknown fields and negative counters are treated as corruption.
func decodeScore(raw []byte) (entity.Score, error) {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.DisallowUnknownFields()

	var score entity.Score
	if err := decoder.Decode(&score); err != nil {
		return entity.Score{}, fmt.Errorf("%w: %w", ErrCorruptScore, err)
	}

	if !score.IsValid() {
		return entity.Score{}, fmt.Errorf("%w: negative counter in %+v", ErrCorruptScore, score)
	}

	return score, nil
}
