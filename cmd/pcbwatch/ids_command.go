package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pcbwatch/internal/identset"
)

func newIDsCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "ids",
		Short: "List observed PCB identifiers in numeric order",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			set, err := identset.Load(cfg.IdentifierStorePath())
			if err != nil {
				return err
			}

			sorted := set.Sorted()
			if limit > 0 && limit < len(sorted) {
				sorted = sorted[len(sorted)-limit:]
			}
			for _, id := range sorted {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "total: %d\n", set.Len())
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Show only the N highest identifiers (0 = all)")
	return cmd
}
