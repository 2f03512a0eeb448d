package takeout

import (
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"fitbitconvert/internal/faults"
)

// ValueLimits bounds acceptable SpO2 percentages. Readings below Min are
// sensor noise and dropped; readings above Max are clamped to it.
type ValueLimits struct {
	Min int
	Max int
}

// ParseSpO2File decodes one "Minute SpO2" CSV into samples in the profile
// timezone. Malformed rows are skipped with a warning and counted; a file
// without the expected columns is a parse fault.
func (e *Export) ParseSpO2File(path string, limits ValueLimits) ([]SpO2Sample, int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, faults.Wrap(faults.ErrParse, "spo2", "open", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, 0, faults.Wrap(faults.ErrParse, "spo2", "header", path, err)
	}
	tsCol, valCol := columnIndex(header, "timestamp"), columnIndex(header, "value")
	if tsCol == -1 || valCol == -1 {
		return nil, 0, faults.Wrap(faults.ErrParse, "spo2", "header",
			path+" is missing timestamp/value columns", nil)
	}

	var samples []SpO2Sample
	skipped := 0
	line := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			skipped++
			e.logger.Warn("skipping malformed SpO2 row",
				slog.String("file", path), slog.Int("line", line), slog.Any("error", err))
			continue
		}
		if tsCol >= len(row) || valCol >= len(row) {
			skipped++
			e.logger.Warn("skipping short SpO2 row",
				slog.String("file", path), slog.Int("line", line))
			continue
		}

		ts, err := time.Parse(time.RFC3339, strings.TrimSpace(row[tsCol]))
		if err != nil {
			skipped++
			e.logger.Warn("skipping SpO2 row with bad timestamp",
				slog.String("file", path), slog.Int("line", line), slog.Any("error", err))
			continue
		}
		raw, err := strconv.ParseFloat(strings.TrimSpace(row[valCol]), 64)
		if err != nil {
			skipped++
			e.logger.Warn("skipping SpO2 row with bad value",
				slog.String("file", path), slog.Int("line", line), slog.Any("error", err))
			continue
		}

		value := int(math.Round(raw))
		if value < limits.Min {
			continue
		}
		if value > limits.Max {
			value = limits.Max
		}
		samples = append(samples, SpO2Sample{Time: ts.In(e.Location), Percent: value})
	}
	return samples, skipped, nil
}

func columnIndex(header []string, name string) int {
	for i, col := range header {
		if strings.EqualFold(strings.TrimSpace(col), name) {
			return i
		}
	}
	return -1
}
