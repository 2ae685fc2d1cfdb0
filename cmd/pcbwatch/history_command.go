package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"pcbwatch/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent processing passes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			ledger, err := history.Open(cfg)
			if err != nil {
				return err
			}
			defer ledger.Close()

			records, err := ledger.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no passes recorded yet")
				return nil
			}

			rows := make([][]string, 0, len(records))
			for _, rec := range records {
				encoding := rec.Encoding
				if rec.UsedFallback && encoding != "" {
					encoding += " (fallback)"
				}
				rows = append(rows, []string{
					rec.FinishedAt.Local().Format(time.RFC3339),
					rec.Outcome,
					encoding,
					strconv.Itoa(rec.Matches),
					strconv.Itoa(rec.NewIdentifiers),
					strconv.Itoa(rec.TotalIdentifiers),
				})
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Finished", "Outcome", "Encoding", "Matches", "New", "Total"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Number of passes to show")
	return cmd
}
