package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	app "github.com/rocketscienceinc/tictactoe-tally/internal"
	"github.com/rocketscienceinc/tictactoe-tally/internal/entity"
	"github.com/rocketscienceinc/tictactoe-tally/internal/service"
)

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewScoreCommand creates the score command group.
func NewScoreCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Inspect or clear the persisted tally",
	}

	cmd.AddCommand(newScoreShowCommand(rootOpts))
	cmd.AddCommand(newScoreResetCommand(rootOpts))

	return cmd
}

func newScoreShowCommand(rootOpts *RootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the persisted tally",
		Args:  cobra.NoArgs,
		PreRunE: func(_ *cobra.Command, _ []string) error {
			if !isValidFormat(format) {
				return fmt.Errorf("invalid format %q: must be one of %v", format, ValidFormats)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withScoreService(cmd, rootOpts, func(ctx context.Context, scores service.ScoreService) error {
				return printScore(cmd.OutOrStdout(), format, scores.Load(ctx))
			})
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "output format (json|text)")

	return cmd
}

func newScoreResetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Set every counter of the tally back to zero",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := loadConfig(rootOpts)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			repo, closeRepo, err := app.OpenScoreRepository(ctx, conf)
			if err != nil {
				return err
			}
			defer func() {
				_ = closeRepo()
			}()

			// the CLI reports the failure, unlike the game which keeps playing
			if err = repo.Set(ctx, entity.Score{}); err != nil {
				return fmt.Errorf("failed to reset score: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), "score reset")

			return err
		},
	}
}

func withScoreService(cmd *cobra.Command, rootOpts *RootOptions, fn func(ctx context.Context, scores service.ScoreService) error) error {
	conf, err := loadConfig(rootOpts)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	repo, closeRepo, err := app.OpenScoreRepository(ctx, conf)
	if err != nil {
		return err
	}
	defer func() {
		_ = closeRepo()
	}()

	logger := initLogger(conf, cmd.ErrOrStderr())

	return fn(ctx, service.NewScoreService(logger, repo, conf.Score.Timeout))
}

func printScore(w io.Writer, format string, score entity.Score) error {
	if format == "json" {
		return json.NewEncoder(w).Encode(score)
	}

	_, err := fmt.Fprintf(w, "X: %d\nO: %d\nDraws: %d\n", score.XWins, score.OWins, score.Draws)

	return err
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
