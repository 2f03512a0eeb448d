package takeout

import (
	"encoding/json"
	"log/slog"
	"os"
	"strings"
	"time"

	"fitbitconvert/internal/faults"
)

// heartRateLayout matches Fitbit's US-style month/day/two-digit-year stamps.
const heartRateLayout = "01/02/06 15:04:05"

type heartRateEntry struct {
	DateTime string `json:"dateTime"`
	Value    struct {
		BPM        int `json:"bpm"`
		Confidence int `json:"confidence"`
	} `json:"value"`
}

// ParseHeartRateFile decodes one heart_rate-*.json into samples in the
// profile timezone. Individual malformed entries are skipped with a warning
// and counted; a file that is not a JSON array is a parse fault.
func (e *Export) ParseHeartRateFile(path string) ([]HeartRateSample, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, faults.Wrap(faults.ErrParse, "heartrate", "open", path, err)
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, 0, faults.Wrap(faults.ErrParse, "heartrate", "decode", path, err)
	}

	samples := make([]HeartRateSample, 0, len(entries))
	skipped := 0
	for i, raw := range entries {
		var entry heartRateEntry
		if err := json.Unmarshal(raw, &entry); err != nil {
			skipped++
			e.logger.Warn("skipping malformed heart rate entry",
				slog.String("file", path), slog.Int("index", i), slog.Any("error", err))
			continue
		}
		ts, err := time.ParseInLocation(heartRateLayout, strings.TrimSpace(entry.DateTime), time.UTC)
		if err != nil {
			skipped++
			e.logger.Warn("skipping heart rate entry with bad timestamp",
				slog.String("file", path), slog.Int("index", i), slog.Any("error", err))
			continue
		}
		samples = append(samples, HeartRateSample{Time: ts.In(e.Location), BPM: entry.Value.BPM})
	}
	return samples, skipped, nil
}
