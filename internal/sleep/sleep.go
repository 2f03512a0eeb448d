// Package sleep turns Fitbit sleep sessions into the rows of the staging
// export: canonical stage labels, per-stage durations, and a fixed-epoch
// hypnogram. Everything here is a pure function of the input session and the
// stage table, so identical sessions always render identically.
package sleep

import (
	"log/slog"
	"strings"

	"fitbitconvert/internal/logging"
	"fitbitconvert/internal/takeout"
)

// Row is one rendered staging-export line.
type Row struct {
	StartTime    string
	StopTime     string
	OnsetHMS     string
	LightHMS     string
	DeepHMS      string
	RemHMS       string
	WakeHMS      string
	Awakenings   int
	Efficiency   int
	Hypnogram    []Stage
	UnknownCount int
}

// Builder renders sleep sessions into rows. The epoch length controls
// hypnogram resolution (30 seconds for the Dreem layout).
type Builder struct {
	EpochSeconds int

	logger     *slog.Logger
	warnedOnce map[string]struct{}
}

// NewBuilder constructs a Builder logging through the provided logger.
func NewBuilder(epochSeconds int, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Builder{
		EpochSeconds: epochSeconds,
		logger:       logger.With(slog.String(logging.FieldComponent, "sleep")),
		warnedOnce:   make(map[string]struct{}),
	}
}

// Convertible reports whether the session can be rendered: only stages
// sessions carry the summary the export needs.
func (b *Builder) Convertible(session takeout.SleepSession) bool {
	return session.HasStages()
}

// Render converts one stages session into an export row.
func (b *Builder) Render(session takeout.SleepSession) Row {
	hypnogram, unknown := b.hypnogram(session.Levels)
	return Row{
		StartTime:    session.StartRaw,
		StopTime:     session.EndRaw,
		OnsetHMS:     MinutesToHMS(float64(session.DurationMS) / 60000),
		LightHMS:     MinutesToHMS(summaryMinutes(session.Summary, "light")),
		DeepHMS:      MinutesToHMS(summaryMinutes(session.Summary, "deep")),
		RemHMS:       MinutesToHMS(summaryMinutes(session.Summary, "rem")),
		WakeHMS:      MinutesToHMS(session.MinutesAwake),
		Awakenings:   summaryCount(session.Summary, "wake"),
		Efficiency:   session.Efficiency,
		Hypnogram:    hypnogram,
		UnknownCount: unknown,
	}
}

// hypnogram expands level spans into fixed-length epochs. Unknown labels are
// logged once per label and skipped, matching the converter's
// partial-failure policy.
func (b *Builder) hypnogram(levels []takeout.LevelSpan) ([]Stage, int) {
	var stages []Stage
	unknown := 0
	for _, span := range levels {
		stage, ok := Normalize(span.Level)
		if !ok {
			unknown++
			if _, seen := b.warnedOnce[span.Level]; !seen {
				b.warnedOnce[span.Level] = struct{}{}
				b.logger.Warn("sleep stage is not recognized", slog.String("level", span.Level))
			}
			continue
		}
		epochs := span.Seconds / b.EpochSeconds
		for i := 0; i < epochs; i++ {
			stages = append(stages, stage)
		}
	}
	return stages, unknown
}

func summaryMinutes(summary map[string]takeout.StageSummary, key string) float64 {
	if entry, ok := lookupFold(summary, key); ok {
		return entry.Minutes
	}
	return 0
}

func summaryCount(summary map[string]takeout.StageSummary, key string) int {
	if entry, ok := lookupFold(summary, key); ok {
		return entry.Count
	}
	return 0
}

func lookupFold(summary map[string]takeout.StageSummary, key string) (takeout.StageSummary, bool) {
	if entry, ok := summary[key]; ok {
		return entry, true
	}
	for k, entry := range summary {
		if strings.EqualFold(k, key) {
			return entry, true
		}
	}
	return takeout.StageSummary{}, false
}
