// Package convert orchestrates one conversion run: discover the Takeout
// sources, align and resample the oximetry streams, render the sleep staging
// rows, and write the export files.
package convert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"fitbitconvert/internal/catalog"
	"fitbitconvert/internal/config"
	"fitbitconvert/internal/daterange"
	"fitbitconvert/internal/dreem"
	"fitbitconvert/internal/faults"
	"fitbitconvert/internal/fileutil"
	"fitbitconvert/internal/logging"
	"fitbitconvert/internal/sleep"
	"fitbitconvert/internal/spo2"
	"fitbitconvert/internal/takeout"
	"fitbitconvert/internal/viatom"
)

// lockFileName guards an export directory against concurrent runs.
const lockFileName = ".fitbit-convert.lock"

// Summary reports what one run produced.
type Summary struct {
	Timezone       string
	Range          string
	Sessions       []spo2.Session
	OximetryFiles  []string
	SleepFile      string
	SleepSessions  int
	SkippedRecords int
	SkippedFiles   int
}

// Partial reports whether the run dropped any records or files on the way.
func (s Summary) Partial() bool {
	return s.SkippedRecords > 0 || s.SkippedFiles > 0
}

// Converter runs conversions. Catalog is optional; when present every run is
// recorded there.
type Converter struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *catalog.Store
	rng     daterange.Range
	fitbit  string
	export  string
	started time.Time
}

// New constructs a Converter for one fitbit path / export directory pair.
func New(cfg *config.Config, logger *slog.Logger, store *catalog.Store, rng daterange.Range, fitbitPath, exportPath string) *Converter {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Converter{
		cfg:    cfg,
		logger: logger.With(slog.String(logging.FieldComponent, "convert")),
		store:  store,
		rng:    rng,
		fitbit: fitbitPath,
		export: exportPath,
	}
}

// UpToDate reports whether the catalog already holds a successful run for
// this fitbit path / export directory pair that is newer than every file in
// the Takeout tree. Watch mode skips a tick when it returns true. Any doubt,
// a missing catalog included, means a run.
func (c *Converter) UpToDate(ctx context.Context) bool {
	if c.store == nil {
		return false
	}
	last, err := c.store.LastRun(ctx)
	if err != nil || last == nil {
		return false
	}
	if last.Status == catalog.StatusFailed {
		return false
	}
	if last.FitbitPath != c.fitbit || last.ExportPath != c.export {
		return false
	}
	latest, err := takeout.LatestModTime(c.fitbit)
	if err != nil {
		return false
	}
	return latest.Before(last.FinishedAt)
}

// Run executes the conversion. Source validation happens before the export
// directory is created, so a bad fitbit path leaves no trace on disk.
func (c *Converter) Run(ctx context.Context) (Summary, error) {
	c.started = time.Now().UTC()
	summary := Summary{Range: c.rng.String()}

	export, err := takeout.Open(c.fitbit, c.logger)
	if err != nil {
		return summary, c.finish(ctx, summary, err)
	}
	summary.Timezone = export.Timezone
	c.logger.Info("opened Fitbit export",
		slog.String("root", export.Root),
		slog.String("timezone", export.Timezone))

	sources, err := export.Discover()
	if err != nil {
		return summary, c.finish(ctx, summary, err)
	}

	if err := fileutil.EnsureDir(c.export); err != nil {
		return summary, c.finish(ctx, summary,
			faults.Wrap(faults.ErrIO, "convert", "export-dir", c.export, err))
	}
	if !fileutil.IsWritableDir(c.export) {
		return summary, c.finish(ctx, summary,
			faults.Wrap(faults.ErrIO, "convert", "export-dir",
				c.export+" is not writable", nil))
	}
	lock := flock.New(filepath.Join(c.export, lockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return summary, c.finish(ctx, summary,
			faults.Wrap(faults.ErrIO, "convert", "lock", c.export, err))
	}
	if !locked {
		return summary, c.finish(ctx, summary,
			faults.Wrap(faults.ErrValidation, "convert", "lock",
				"another conversion is already writing to "+c.export, nil))
	}
	defer func() {
		_ = lock.Unlock()
		_ = os.Remove(lock.Path())
	}()

	if sources.HasOximetry() {
		if err := c.runOximetry(ctx, export, sources, &summary); err != nil {
			return summary, c.finish(ctx, summary, err)
		}
	} else {
		c.logger.Warn("no oximetry data found, skipping .bin export")
	}

	if err := ctx.Err(); err != nil {
		return summary, c.finish(ctx, summary, err)
	}

	if sources.HasSleep() {
		if err := c.runSleep(ctx, export, sources, &summary); err != nil {
			return summary, c.finish(ctx, summary, err)
		}
	} else {
		c.logger.Warn("no sleep data found, skipping sleep.csv export")
	}

	return summary, c.finish(ctx, summary, nil)
}

func (c *Converter) runOximetry(ctx context.Context, export *takeout.Export, sources takeout.Sources, summary *Summary) error {
	limits := takeout.ValueLimits{
		Min: c.cfg.SpO2.MinValidPercent,
		Max: c.cfg.SpO2.MaxValidPercent,
	}

	var saturation []takeout.SpO2Sample
	for _, path := range sources.SpO2 {
		if err := ctx.Err(); err != nil {
			return err
		}
		samples, skipped, err := export.ParseSpO2File(path, limits)
		if err != nil {
			summary.SkippedFiles++
			c.logger.Warn("skipping unreadable SpO2 file",
				slog.String("file", path), slog.Any("error", err))
			continue
		}
		summary.SkippedRecords += skipped
		saturation = append(saturation, samples...)
	}
	saturation = filterSamples(saturation, c.rng)

	var heart []takeout.HeartRateSample
	for _, path := range sources.HeartRate {
		if err := ctx.Err(); err != nil {
			return err
		}
		samples, skipped, err := export.ParseHeartRateFile(path)
		if err != nil {
			summary.SkippedFiles++
			c.logger.Warn("skipping unreadable heart rate file",
				slog.String("file", path), slog.Any("error", err))
			continue
		}
		summary.SkippedRecords += skipped
		heart = append(heart, samples...)
	}

	aligner := spo2.NewAligner(
		c.cfg.SpO2.SessionGapMinutes,
		c.cfg.SpO2.SampleIntervalSeconds,
		c.cfg.SpO2.MaxChunkRecords,
		c.cfg.SpO2.MinValidPercent,
		c.logger,
	)
	sessions, chunks, err := aligner.Align(saturation, heart)
	if err != nil {
		if errors.Is(err, faults.ErrNotFound) {
			c.logger.Warn("no exportable oximetry sessions", slog.Any("error", err))
			return nil
		}
		return err
	}
	summary.Sessions = sessions
	for _, s := range sessions {
		c.logger.Info("detected oximetry session",
			slog.Time("start", s.Start), slog.Time("end", s.End))
	}

	writer := viatom.NewWriter(c.export, c.cfg.SpO2.MaxValidPercent, c.cfg.SpO2.SampleIntervalSeconds, c.logger)
	for _, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return err
		}
		path, err := writer.WriteChunk(chunk)
		if err != nil {
			return err
		}
		summary.OximetryFiles = append(summary.OximetryFiles, path)
	}
	return nil
}

func (c *Converter) runSleep(ctx context.Context, export *takeout.Export, sources takeout.Sources, summary *Summary) error {
	builder := sleep.NewBuilder(c.cfg.Sleep.EpochSeconds, c.logger)

	var rows []sleep.Row
	for _, path := range sources.Sleep {
		if err := ctx.Err(); err != nil {
			return err
		}
		sessions, skipped, err := export.ParseSleepFile(path)
		if err != nil {
			summary.SkippedFiles++
			c.logger.Warn("skipping unreadable sleep file",
				slog.String("file", path), slog.Any("error", err))
			continue
		}
		summary.SkippedRecords += skipped
		for _, session := range sessions {
			if !builder.Convertible(session) {
				c.logger.Debug("skipping classic sleep session",
					slog.String("start", session.StartRaw))
				continue
			}
			if !c.rng.Contains(session.Start) {
				continue
			}
			c.logger.Info("exporting sleep session",
				slog.String("start", session.StartRaw),
				slog.String("end", session.EndRaw))
			rows = append(rows, builder.Render(session))
		}
	}
	if len(rows) == 0 {
		c.logger.Warn("no stages sleep sessions to export")
		return nil
	}

	writer := dreem.NewWriter(c.export, c.cfg.Sleep.OutputName, c.logger)
	path, err := writer.Write(rows)
	if err != nil {
		return err
	}
	summary.SleepFile = path
	summary.SleepSessions = len(rows)
	return nil
}

// finish records the run in the catalog and passes the error through. The
// catalog write uses a fresh context so a cancelled run is still recorded.
func (c *Converter) finish(_ context.Context, summary Summary, runErr error) error {
	if c.store != nil {
		run := catalog.Run{
			StartedAt:      c.started,
			FinishedAt:     time.Now().UTC(),
			FitbitPath:     c.fitbit,
			ExportPath:     c.export,
			DateRange:      summary.Range,
			Status:         runStatus(summary, runErr),
			StageTable:     sleep.TableVersion(),
			SpO2Sessions:   len(summary.Sessions),
			OximetryFiles:  len(summary.OximetryFiles),
			SleepSessions:  summary.SleepSessions,
			SkippedRecords: summary.SkippedRecords,
			Files:          summaryFiles(summary),
		}
		if runErr != nil {
			run.FailureKind = faults.Kind(runErr)
		}
		if _, err := c.store.RecordRun(context.Background(), run); err != nil {
			c.logger.Warn("failed to record run in catalog", slog.Any("error", err))
		}
	}
	return runErr
}

func runStatus(summary Summary, runErr error) string {
	switch {
	case runErr != nil:
		return catalog.StatusFailed
	case summary.Partial():
		return catalog.StatusPartial
	default:
		return catalog.StatusCompleted
	}
}

func summaryFiles(summary Summary) []catalog.File {
	var files []catalog.File
	for _, path := range summary.OximetryFiles {
		files = append(files, catalog.File{Path: path, Kind: catalog.FileOximetry, Bytes: fileSize(path)})
	}
	if summary.SleepFile != "" {
		files = append(files, catalog.File{Path: summary.SleepFile, Kind: catalog.FileSleep, Bytes: fileSize(summary.SleepFile)})
	}
	return files
}

func fileSize(path string) int64 {
	if info, err := os.Stat(path); err == nil {
		return info.Size()
	}
	return 0
}

func filterSamples(samples []takeout.SpO2Sample, rng daterange.Range) []takeout.SpO2Sample {
	if rng.Unbounded() {
		return samples
	}
	filtered := samples[:0]
	for _, s := range samples {
		if rng.Contains(s.Time) {
			filtered = append(filtered, s)
		}
	}
	return filtered
}

// Describe renders a short human-readable account of the run for the CLI
// summary block.
func (s Summary) Describe() string {
	return fmt.Sprintf("%d oximetry files, %d sleep sessions (%s, skipped %d records)",
		len(s.OximetryFiles), s.SleepSessions, s.Range, s.SkippedRecords)
}
