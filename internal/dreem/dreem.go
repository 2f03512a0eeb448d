// Package dreem renders sleep rows into the semicolon-separated CSV layout
// sleep-staging imports expect.
package dreem

import (
	"bytes"
	"encoding/csv"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"fitbitconvert/internal/faults"
	"fitbitconvert/internal/fileutil"
	"fitbitconvert/internal/logging"
	"fitbitconvert/internal/sleep"
)

// header is the fixed column set of the staging CSV. Importers match on the
// exact strings.
var header = []string{
	"Start Time",
	"Stop Time",
	"Sleep Onset Duration",
	"Light Sleep Duration",
	"Deep Sleep Duration",
	"REM Duration",
	"Wake After Sleep Onset Duration",
	"Number of awakenings",
	"Sleep efficiency",
	"Hypnogram",
}

// Writer emits one staging CSV per run into Dir.
type Writer struct {
	Dir      string
	FileName string

	logger *slog.Logger
}

// NewWriter constructs a Writer emitting dir/fileName.
func NewWriter(dir, fileName string, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Writer{
		Dir:      dir,
		FileName: fileName,
		logger:   logger.With(slog.String(logging.FieldComponent, "dreem")),
	}
}

// Write renders all rows into a single CSV and writes it atomically. It
// returns the written path. An empty row set still produces the header so an
// importer sees a well-formed file.
func (w *Writer) Write(rows []sleep.Row) (string, error) {
	data, err := Encode(rows)
	if err != nil {
		return "", err
	}
	path := filepath.Join(w.Dir, w.FileName)
	if err := fileutil.WriteFileAtomic(path, data); err != nil {
		return "", faults.Wrap(faults.ErrIO, "dreem", "write", path, err)
	}
	w.logger.Info("wrote sleep staging file",
		slog.String("file", path), slog.Int("sessions", len(rows)))
	return path, nil
}

// Encode renders rows into CSV bytes.
func Encode(rows []sleep.Row) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	writer.Comma = ';'

	if err := writer.Write(header); err != nil {
		return nil, faults.Wrap(faults.ErrIO, "dreem", "encode", "header", err)
	}
	for _, row := range rows {
		record := []string{
			row.StartTime,
			row.StopTime,
			row.OnsetHMS,
			row.LightHMS,
			row.DeepHMS,
			row.RemHMS,
			row.WakeHMS,
			strconv.Itoa(row.Awakenings),
			strconv.Itoa(row.Efficiency),
			FormatHypnogram(row.Hypnogram),
		}
		if err := writer.Write(record); err != nil {
			return nil, faults.Wrap(faults.ErrIO, "dreem", "encode", row.StartTime, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, faults.Wrap(faults.ErrIO, "dreem", "encode", "flush", err)
	}
	return buf.Bytes(), nil
}

// FormatHypnogram renders the stage sequence as "[WAKE,Light,...]".
func FormatHypnogram(stages []sleep.Stage) string {
	parts := make([]string, len(stages))
	for i, stage := range stages {
		parts[i] = string(stage)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
