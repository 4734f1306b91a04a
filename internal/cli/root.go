package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/rocketscienceinc/tictactoe-tally/internal/config"
)

const defaultConfigPath = "./config.yml"

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	LogLevel   string
}

// NewRootCommand creates the root command for the tictactoe CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "tictactoe",
		Short: "Tic-tac-toe with a persistent tally",
		Long: `Tic-tac-toe for two players at one screen or against the computer.
Wins and draws are tallied and survive restarts.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", defaultConfigPath, "path to the yaml config file")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "overrides log-level from the config (debug|info|warn|error)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewScoreCommand(opts))

	return cmd
}

// loadConfig reads the config file, or the environment alone when the file does not exist.
func loadConfig(opts *RootOptions) (*config.Config, error) {
	var (
		conf *config.Config
		err  error
	)

	if _, statErr := os.Stat(opts.ConfigPath); errors.Is(statErr, os.ErrNotExist) {
		conf, err = config.LoadEnv()
	} else {
		conf, err = config.Load(opts.ConfigPath)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if opts.LogLevel != "" {
		conf.LogLevel = opts.LogLevel
	}

	return conf, nil
}

// initialize logger.
func initLogger(conf *config.Config, w io.Writer) *slog.Logger {
	var level slog.Level

	switch conf.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}
