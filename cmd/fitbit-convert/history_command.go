package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"fitbitconvert/internal/catalog"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded conversion runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := catalog.Open(cfg.Paths.CatalogPath)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No conversions recorded yet.")
				return nil
			}

			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				status := run.Status
				if run.FailureKind != "" {
					status += " (" + run.FailureKind + ")"
				}
				rows = append(rows, []string{
					run.StartedAt.Local().Format("2006-01-02 15:04:05"),
					status,
					run.DateRange,
					strconv.Itoa(run.OximetryFiles),
					strconv.Itoa(run.SleepSessions),
					strconv.Itoa(run.SkippedRecords),
					run.ExportPath,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Started", "Status", "Range", "Oximetry", "Sleep", "Skipped", "Export"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show (0 for all)")
	return cmd
}
