package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"fitbitconvert/internal/takeout"
)

func newInspectCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <fitbit_path>",
		Short: "Show what a Takeout export contains without converting it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := ctx.ensureConfig(); err != nil {
				return err
			}
			logger, cleanup, err := ctx.buildLogger()
			if err != nil {
				return err
			}
			defer cleanup()

			export, err := takeout.Open(args[0], logger)
			if err != nil {
				return err
			}
			sources, err := export.Discover()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Fitbit data: %s\n", export.Root)
			fmt.Fprintf(out, "Timezone:    %s\n\n", export.Timezone)

			rows := [][]string{
				{"SpO2 readings", strconv.Itoa(len(sources.SpO2)), firstBase(sources.SpO2)},
				{"Heart rate", strconv.Itoa(len(sources.HeartRate)), firstBase(sources.HeartRate)},
				{"Sleep sessions", strconv.Itoa(len(sources.Sleep)), firstBase(sources.Sleep)},
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Source", "Files", "First file"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignLeft},
			))

			if !sources.HasOximetry() {
				fmt.Fprintln(out, "Note: oximetry export needs both SpO2 and heart rate files.")
			}
			return nil
		},
	}
}

func firstBase(paths []string) string {
	if len(paths) == 0 {
		return "-"
	}
	return filepath.Base(paths[0])
}
