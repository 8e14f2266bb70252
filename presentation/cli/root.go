// Package cli is the uitest command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"site_uitest/infrastructure/config"
)

// errTestsFailed makes the process exit non-zero without an extra message;
// the report already says what failed
var errTestsFailed = errors.New("tests failed")

type envKey struct{}

// env is what PersistentPreRunE prepares for every subcommand
type env struct {
	cfg    *config.Config
	logger *logrus.Logger
}

func fromContext(ctx context.Context) env {
	e, _ := ctx.Value(envKey{}).(env)
	return e
}

// RootCommand - the uitest command with all subcommands bound
func RootCommand() *cobra.Command {
	var envFile, logLevel string

	cmd := &cobra.Command{
		Use:           "uitest [command] [flags]",
		Short:         "Browser UI tests for the Bitsight marketing site",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(envFile)
			if err != nil {
				return err
			}
			if logLevel != "" {
				lvl, err := logrus.ParseLevel(logLevel)
				if err != nil {
					return fmt.Errorf("--log-level: %w", err)
				}
				cfg.LogLevel = lvl
			}
			logger := config.NewLogger(cfg.LogLevel, cmd.ErrOrStderr())
			logger.WithFields(logrus.Fields{
				"base_url": cfg.BaseURL,
				"browser":  cfg.Browser,
				"driver":   cfg.Driver,
			}).Debug("Configuration loaded")

			cmd.SetContext(context.WithValue(cmd.Context(), envKey{}, env{cfg: cfg, logger: logger}))
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file to load (default ./.env when present)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (overrides UITEST_LOG_LEVEL)")

	cmd.AddCommand(
		extractCommand(),
		registryCommand(),
		runCommand(),
	)
	return cmd
}

// Execute - runs the command line and returns the process exit code
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := RootCommand()
	if err := cmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errTestsFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}
