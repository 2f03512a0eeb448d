package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var startFlag string
	var endFlag string
	var logFileFlag string
	var verbosity int

	ctx := newCommandContext(&configFlag, &logFileFlag, &verbosity)

	rootCmd := &cobra.Command{
		Use:   "fitbit-convert [flags] <fitbit_path> [export_path]",
		Short: "Convert Fitbit Takeout data into OSCAR-importable files",
		Long: `fitbit-convert reads a Google Takeout export of a Fitbit account and
writes the oximetry nights as Viatom-style .bin files and the sleep
sessions as a Dreem-style sleep.csv, both of which OSCAR can import.`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, ctx, args, startFlag, endFlag)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVarP(&logFileFlag, "logfile", "l", "", "Append logs to this file instead of stderr")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbosity", "v", "Increase log verbosity (-v info, -vv debug)")
	rootCmd.Flags().StringVarP(&startFlag, "start-date", "s", "", "Ignore data before this date (YYYY-M-D, inclusive)")
	rootCmd.Flags().StringVarP(&endFlag, "end-date", "e", "", "Ignore data after this date (YYYY-M-D, inclusive)")

	rootCmd.AddCommand(newInspectCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))
	rootCmd.AddCommand(newWatchCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
