package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"fliptrack/internal/cli"
	"fliptrack/internal/log"
)

type rootOptions struct {
	backend string
	json    bool
	debug   bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "fliptrack",
		Short:         "Track renovation project rooms, expenses and budgets",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.backend, "backend", "", "backend to use: cli or memory (overrides FLIPTRACK_BACKEND)")
	flags.BoolVar(&opts.json, "json", false, "print JSON instead of tables")
	flags.BoolVar(&opts.debug, "debug", false, "enable debug logging")

	cmd.AddCommand(
		newProjectsCmd(opts),
		newRoomsCmd(opts),
		newExpensesCmd(opts),
		newBudgetCmd(opts),
		newAddExpenseCmd(opts),
		newDeleteExpenseCmd(opts),
		newHistoryCmd(opts),
	)
	return cmd
}

// run loads configuration, starts the app for one command and releases it
// afterwards.
func (o *rootOptions) run(cmd *cobra.Command, fn func(ctx context.Context, app *cli.App, out *printer) error) error {
	cfg, err := cli.LoadAndValidateConfig(o.backend)
	if err != nil {
		return err
	}
	if o.debug {
		cfg.Debug = true
	}
	logger := cli.SetupLogger(cfg, cmd.ErrOrStderr())

	app, err := cli.Start(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("Failed to release resources", log.FieldError, err)
		}
	}()

	return fn(cmd.Context(), app, newPrinter(cmd.OutOrStdout(), o.json))
}

func parseID(kind, s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q: must be a positive integer", kind, s)
	}
	return id, nil
}
