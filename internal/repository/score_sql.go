package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-tally/internal/entity"
)

// Dialect - placeholder flavour of the SQL backend.
type Dialect struct {
	Name        string
	selectQuery string
	upsertQuery string
}

var (
	SQLiteDialect = Dialect{
		Name:        "sqlite3",
		selectQuery: `SELECT x_wins, o_wins, draws FROM scores WHERE name = ?`,
		upsertQuery: `INSERT INTO scores (name, x_wins, o_wins, draws) VALUES (?, ?, ?, ?)
			ON CONFLICT (name) DO UPDATE SET x_wins = excluded.x_wins, o_wins = excluded.o_wins, draws = excluded.draws`,
	}

	PostgresDialect = Dialect{
		Name:        "postgres",
		selectQuery: `SELECT x_wins, o_wins, draws FROM scores WHERE name = $1`,
		upsertQuery: `INSERT INTO scores (name, x_wins, o_wins, draws) VALUES ($1, $2, $3, $4)
			ON CONFLICT (name) DO UPDATE SET x_wins = excluded.x_wins, o_wins = excluded.o_wins, draws = excluded.draws`,
	}
)

type sqlScore struct {
	conn    *sql.DB
	dialect Dialect
}

func NewSQLScoreRepository(conn *sql.DB, dialect Dialect) ScoreRepository {
	return &sqlScore{
		conn:    conn,
		dialect: dialect,
	}
}

func (that *sqlScore) Set(ctx context.Context, score entity.Score) error {
	_, err := that.conn.ExecContext(ctx, that.dialect.upsertQuery, ScoreKey, score.XWins, score.OWins, score.Draws)
	if err != nil {
		return fmt.Errorf("can't save score: %w", err)
	}

	return nil
}

func (that *sqlScore) Get(ctx context.Context) (entity.Score, error) {
	var score entity.Score

	err := that.conn.QueryRowContext(ctx, that.dialect.selectQuery, ScoreKey).Scan(&score.XWins, &score.OWins, &score.Draws)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Score{}, ErrScoreNotFound
	}
	if err != nil {
		return entity.Score{}, fmt.Errorf("can't find score: %w", err)
	}

	if !score.IsValid() {
		return entity.Score{}, fmt.Errorf("%w: negative counter in %+v", ErrCorruptScore, score)
	}

	return score, nil
}
