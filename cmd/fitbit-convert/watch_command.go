package main

import (
	"fmt"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"fitbitconvert/internal/catalog"
	"fitbitconvert/internal/convert"
	"fitbitconvert/internal/daterange"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var schedule string

	cmd := &cobra.Command{
		Use:   "watch <fitbit_path> [export_path]",
		Short: "Re-run the conversion on a schedule until interrupted",
		Long: `watch converts immediately, then re-runs on the configured cron schedule.
Useful when the Takeout directory is synced from elsewhere and new data
keeps arriving.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, cleanup, err := ctx.buildLogger()
			if err != nil {
				return err
			}
			defer cleanup()

			spec := strings.TrimSpace(schedule)
			if spec == "" {
				spec = cfg.Watch.Schedule
			}

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

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			runOnce := func() {
				converter := convert.New(cfg, logger, store, daterange.Range{}, args[0], exportPath)
				if converter.UpToDate(runCtx) {
					logger.Info("export unchanged since last run, skipping")
					return
				}
				summary, err := converter.Run(runCtx)
				if err != nil {
					logger.Error("scheduled conversion failed", slog.Any("error", err))
					return
				}
				logger.Info("scheduled conversion finished", slog.String("summary", summary.Describe()))
			}

			scheduler := cron.New()
			if _, err := scheduler.AddFunc(spec, runOnce); err != nil {
				return fmt.Errorf("invalid schedule %q: %w", spec, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (schedule %s), press Ctrl-C to stop\n", args[0], spec)
			runOnce()
			scheduler.Start()
			<-runCtx.Done()
			<-scheduler.Stop().Done()
			return nil
		},
	}

	cmd.Flags().StringVar(&schedule, "schedule", "", "Cron schedule (defaults to [watch].schedule)")
	return cmd
}
