package takeout

import (
	"encoding/json"
	"log/slog"
	"os"
	"strings"
	"time"

	"fitbitconvert/internal/faults"
)

// sleepLayout matches Fitbit's local-time sleep stamps ("2023-01-03T23:58:30.000").
const sleepLayout = "2006-01-02T15:04:05.000"

type sleepEntry struct {
	StartTime    string  `json:"startTime"`
	EndTime      string  `json:"endTime"`
	Duration     int64   `json:"duration"`
	MinutesAwake float64 `json:"minutesAwake"`
	Efficiency   int     `json:"efficiency"`
	Levels       struct {
		Summary map[string]StageSummary `json:"summary"`
		Data    []LevelSpan             `json:"data"`
	} `json:"levels"`
}

// ParseSleepFile decodes one sleep-*.json into sessions. Sleep stamps carry
// no zone marker; they are interpreted in the profile timezone. Individual
// malformed sessions are skipped with a warning and counted.
func (e *Export) ParseSleepFile(path string) ([]SleepSession, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, faults.Wrap(faults.ErrParse, "sleep", "open", path, err)
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, 0, faults.Wrap(faults.ErrParse, "sleep", "decode", path, err)
	}

	sessions := make([]SleepSession, 0, len(entries))
	skipped := 0
	for i, raw := range entries {
		var entry sleepEntry
		if err := json.Unmarshal(raw, &entry); err != nil {
			skipped++
			e.logger.Warn("skipping malformed sleep session",
				slog.String("file", path), slog.Int("index", i), slog.Any("error", err))
			continue
		}
		start, err := parseSleepTime(entry.StartTime, e.Location)
		if err != nil {
			skipped++
			e.logger.Warn("skipping sleep session with bad start time",
				slog.String("file", path), slog.Int("index", i), slog.Any("error", err))
			continue
		}
		end, err := parseSleepTime(entry.EndTime, e.Location)
		if err != nil {
			skipped++
			e.logger.Warn("skipping sleep session with bad end time",
				slog.String("file", path), slog.Int("index", i), slog.Any("error", err))
			continue
		}
		sessions = append(sessions, SleepSession{
			StartRaw:     entry.StartTime,
			EndRaw:       entry.EndTime,
			Start:        start,
			End:          end,
			DurationMS:   entry.Duration,
			MinutesAwake: entry.MinutesAwake,
			Efficiency:   entry.Efficiency,
			Summary:      entry.Levels.Summary,
			Levels:       entry.Levels.Data,
		})
	}
	return sessions, skipped, nil
}

func parseSleepTime(value string, loc *time.Location) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	ts, err := time.ParseInLocation(sleepLayout, trimmed, loc)
	if err == nil {
		return ts, nil
	}
	// Older exports omit the millisecond suffix.
	ts, fallbackErr := time.ParseInLocation("2006-01-02T15:04:05", trimmed, loc)
	if fallbackErr == nil {
		return ts, nil
	}
	return time.Time{}, faults.Wrap(faults.ErrParse, "sleep", "timestamp", value, err)
}
