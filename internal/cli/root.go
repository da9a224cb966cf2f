// Package cli holds the ledger command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"ledger-service/internal/config"
	"ledger-service/internal/ledger"
	"ledger-service/internal/logger"
)

var version = "1.0.0"

// Stock moved from the command line is attributed to the nil user.
var cliActor = uuid.Nil

var (
	cfg     *config.Config
	cfgErr  error
	jsonOut bool
)

var rootCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Commerce ledger for a small retail shop",
	Long: `Ledger keeps the catalog, the stock, the sales and the customer debts of
a small retail shop.

Run "ledger serve" for the HTTP API or use the subcommands to work on the
configured store directly. Configuration is read from the environment and
from a .env file in the working directory.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the command line. loadErr is the configuration error, if
// any; it only fails the commands that need the store.
func Execute(c *config.Config, loadErr error) {
	log := logger.WithComponent("cmd")
	cfg, cfgErr = c, loadErr

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Print results as JSON")
}

func loadedConfig() (*config.Config, error) {
	if cfgErr != nil {
		return nil, fmt.Errorf("configuration: %w", cfgErr)
	}
	if cfg == nil {
		return nil, errors.New("configuration not loaded")
	}
	return cfg, nil
}

// withLedger opens the configured store, runs fn and flushes on the way out.
func withLedger(cmd *cobra.Command, fn func(ctx context.Context, l *ledger.Ledger) error) error {
	c, err := loadedConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	l, err := ledger.Open(ctx, c)
	if err != nil {
		return err
	}

	runErr := fn(ctx, l)

	log := logger.WithComponent("cmd")
	for _, w := range l.Warnings() {
		log.Warn().Err(w).Msg("store write failed during command")
	}
	if err := l.Close(context.WithoutCancel(ctx)); err != nil {
		runErr = errors.Join(runErr, fmt.Errorf("failed to close store: %w", err))
	}
	return runErr
}

func parseUUIDArg(what, s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s id %q: %w", what, s, err)
	}
	return id, nil
}
