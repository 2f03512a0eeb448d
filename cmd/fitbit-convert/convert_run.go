package main

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"fitbitconvert/internal/catalog"
	"fitbitconvert/internal/convert"
	"fitbitconvert/internal/daterange"
)

func runConvert(cmd *cobra.Command, ctx *commandContext, args []string, startFlag, endFlag string) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	rng, err := daterange.New(startFlag, endFlag)
	if err != nil {
		return err
	}
	logger, cleanup, err := ctx.buildLogger()
	if err != nil {
		return err
	}
	defer cleanup()

	exportPath := cfg.Paths.ExportDir
	if len(args) > 1 {
		exportPath = args[1]
	}

	store, err := catalog.Open(cfg.Paths.CatalogPath)
	if err != nil {
		logger.Warn("run history unavailable", slog.Any("error", err))
		store = nil
	} else {
		defer store.Close()
	}

	converter := convert.New(cfg, logger, store, rng, args[0], exportPath)
	summary, err := converter.Run(cmd.Context())
	if err != nil {
		return err
	}

	printSummary(cmd, summary, exportPath)
	return nil
}

func printSummary(cmd *cobra.Command, summary convert.Summary, exportPath string) {
	out := cmd.OutOrStdout()

	heading := successColor()
	if summary.Partial() {
		heading = warnColor()
	}
	heading.Fprintf(out, "Converted Fitbit data into %s\n", exportPath)

	if summary.Timezone != "" {
		fmt.Fprintf(out, "  Timezone:   %s\n", summary.Timezone)
	}
	fmt.Fprintf(out, "  Date range: %s\n", summary.Range)
	for _, s := range summary.Sessions {
		fmt.Fprintf(out, "  Session:    %s - %s\n",
			s.Start.Format("2006-01-02 15:04:05"), s.End.Format("2006-01-02 15:04:05"))
	}
	fmt.Fprintf(out, "  Oximetry:   %d file(s)\n", len(summary.OximetryFiles))
	if summary.SleepFile != "" {
		fmt.Fprintf(out, "  Sleep:      %d session(s) in %s\n",
			summary.SleepSessions, filepath.Base(summary.SleepFile))
	} else {
		fmt.Fprintln(out, "  Sleep:      nothing exported")
	}
	if summary.Partial() {
		fmt.Fprintf(out, "  Skipped:    %d record(s), %d file(s)\n",
			summary.SkippedRecords, summary.SkippedFiles)
	}
}
