package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"pcbwatch/internal/history"
	"pcbwatch/internal/identset"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the running total and artifact locations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			set, err := identset.Load(cfg.IdentifierStorePath())
			if err != nil {
				return err
			}

			rows := [][]string{
				{"Total identifiers", strconv.Itoa(set.Len())},
				{"Source log", describePath(cfg.Paths.SourceLog)},
				{"Count file", describePath(cfg.CountFilePath())},
				{"Identifier store", describePath(cfg.IdentifierStorePath())},
				{"Diagnostic lines", describePath(cfg.DiagnosticLinesPath())},
				{"History database", describePath(cfg.HistoryDBPath())},
			}

			if last := lastPass(cmd, ctx); last != nil {
				rows = append(rows,
					[]string{"Last pass", last.FinishedAt.Local().Format(time.RFC3339)},
					[]string{"Last outcome", last.Outcome},
					[]string{"Last new identifiers", strconv.Itoa(last.NewIdentifiers)},
				)
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Field", "Value"},
				rows,
				[]columnAlignment{alignLeft, alignLeft},
			))
			return nil
		},
	}
}

func describePath(path string) string {
	if _, err := os.Stat(path); err != nil {
		return path + " (missing)"
	}
	return path
}

// lastPass fetches the newest ledger row, tolerating a missing or
// unreadable database since status must still render without it.
func lastPass(cmd *cobra.Command, ctx *commandContext) *history.PassRecord {
	cfg := ctx.cfg
	if cfg == nil {
		return nil
	}
	if _, err := os.Stat(cfg.HistoryDBPath()); err != nil {
		return nil
	}

	ledger, err := history.Open(cfg)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning: "+strings.TrimSpace(err.Error()))
		return nil
	}
	defer ledger.Close()

	last, err := ledger.Last(cmd.Context())
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning: "+strings.TrimSpace(err.Error()))
		return nil
	}
	return last
}
