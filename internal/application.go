package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/tictactoe-tally/internal/config"
	"github.com/rocketscienceinc/tictactoe-tally/internal/repository"
	"github.com/rocketscienceinc/tictactoe-tally/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-tally/internal/service"
	"github.com/rocketscienceinc/tictactoe-tally/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe-tally/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-tally/transport/rest"
	"github.com/rocketscienceinc/tictactoe-tally/transport/websocket"
)

var (
	ErrAddrNotFound = errors.New("redis host is empty")
	ErrDSNNotFound  = errors.New("postgres dsn is empty")
)

// RunApp - runs the application until SIGINT or SIGTERM.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)
	go func() {
		select {
		case sig := <-sigs:
			log.Info("Received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	return Run(ctx, logger, conf)
}

// Run - serves until ctx is cancelled. It returns only after the HTTP server has shut down
// and the score storage is closed.
func Run(ctx context.Context, logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	scoreRepo, closeRepo, err := OpenScoreRepository(ctx, conf)
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := closeRepo(); closeErr != nil {
			log.Error("could not close score storage", "error", closeErr)
		}
	}()

	log.Info("Score storage ready", "backend", conf.Score.Backend)

	scoreService := service.NewScoreService(logger, scoreRepo, conf.Score.Timeout)
	gameController := tictactoe.NewGameController(ctx, scoreService)

	hub := websocket.NewHub(logger)
	gameManager := usecase.NewGameManager(logger, gameController, usecase.NewTimerScheduler(), conf.ComputerDelay, hub)

	wsServer := websocket.New(logger, hub, gameManager)
	httpServer := rest.New(logger, gameManager, wsServer)

	// Start's result is always sent, so shutdown can wait for it.
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		httpErrCh <- httpServer.Start(ctx, conf.HTTPPort)
	}()

	select {
	case err = <-httpErrCh:
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		err = <-httpErrCh
	}

	if err != nil {
		log.Error("HTTP server error", "error", err)
		return fmt.Errorf("HTTP server error: %w", err)
	}

	log.Info("HTTP server stopped")

	return nil
}

// OpenScoreRepository - connects to the configured score backend. The returned func releases it.
func OpenScoreRepository(ctx context.Context, conf *config.Config) (repository.ScoreRepository, func() error, error) {
	switch conf.Score.Backend {
	case config.BackendRedis:
		if conf.Redis.Host == "" {
			return nil, nil, ErrAddrNotFound
		}

		redisStorage, err := storage.NewRedisStorage(ctx, storage.RedisOptions{
			Addr:     conf.Redis.GetRedisAddr(),
			Password: conf.Redis.Password,
			DB:       conf.Redis.DB,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
		}

		return repository.NewRedisScoreRepository(redisStorage.Connection), redisStorage.Close, nil

	case config.BackendPostgres:
		if conf.Postgres.DSN == "" {
			return nil, nil, ErrDSNNotFound
		}

		sqlStorage, err := storage.NewPostgresStorage(conf.Postgres.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("could not connect to postgres storage: %w", err)
		}

		return openSQL(ctx, sqlStorage, repository.PostgresDialect)

	case config.BackendSQLite:
		sqlStorage, err := storage.NewSQLiteStorage(conf.SQLiteStoragePath)
		if err != nil {
			return nil, nil, fmt.Errorf("could not open sqlite storage: %w", err)
		}

		return openSQL(ctx, sqlStorage, repository.SQLiteDialect)

	default:
		return nil, nil, fmt.Errorf("%w: %q", config.ErrUnknownBackend, conf.Score.Backend)
	}
}

func openSQL(ctx context.Context, sqlStorage *storage.Storage, dialect repository.Dialect) (repository.ScoreRepository, func() error, error) {
	if err := sqlStorage.Init(ctx); err != nil {
		_ = sqlStorage.Close()
		return nil, nil, fmt.Errorf("could not init %s storage: %w", dialect.Name, err)
	}

	return repository.NewSQLScoreRepository(sqlStorage.Connection, dialect), sqlStorage.Close, nil
}
