package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"pcbwatch/internal/history"
	"pcbwatch/internal/logging"
	"pcbwatch/internal/processor"
)

func newProcessCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "process",
		Short: "Run a single processing pass without the daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}

			// The daemon serializes its own passes; a one-shot pass must
			// not interleave with a running instance.
			lock := flock.New(filepath.Join(cfg.Paths.LogDir, "pcbwatchd.lock"))
			held, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire lock: %w", err)
			}
			if !held {
				return errors.New("pcbwatchd is running; stop it before running a manual pass")
			}
			defer lock.Unlock() //nolint:errcheck

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return err
			}

			ledger, err := history.Open(cfg)
			if err != nil {
				logger.Error("open history ledger, continuing without it", logging.Args(logging.Error(err))...)
				ledger = nil
			}
			if ledger != nil {
				defer ledger.Close()
			}

			proc, err := processor.New(cfg, logger, ledger)
			if err != nil {
				return err
			}

			report := proc.Process(cmd.Context())
			fmt.Fprintf(cmd.OutOrStdout(), "outcome: %s\n", report.Outcome)
			fmt.Fprintf(cmd.OutOrStdout(), "matches: %d, new: %d, total: %d\n",
				report.Matches, report.NewIdentifiers, report.TotalIdentifiers)
			return nil
		},
	}
}
