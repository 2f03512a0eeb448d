// Package viatom encodes resampled oximetry chunks into the binary file
// layout pulse-oximeter imports expect: a 40-byte little-endian header
// followed by one 5-byte record per tick.
package viatom

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"fitbitconvert/internal/faults"
	"fitbitconvert/internal/fileutil"
	"fitbitconvert/internal/logging"
	"fitbitconvert/internal/spo2"
)

const (
	headerSize = 40
	recordSize = 5

	// MaxRecords is the hard per-file cap of the format: the duration field
	// is sixteen bits of seconds at four seconds per record.
	MaxRecords = 4095
)

// Writer emits one .bin file per chunk into Dir.
type Writer struct {
	Dir string

	// MaxPercent clamps saturation values the format cannot represent.
	MaxPercent int
	// TickSeconds is the record spacing used for the duration field.
	TickSeconds int

	logger *slog.Logger
}

// NewWriter constructs a Writer emitting into dir.
func NewWriter(dir string, maxPercent, tickSeconds int, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Writer{
		Dir:         dir,
		MaxPercent:  maxPercent,
		TickSeconds: tickSeconds,
		logger:      logger.With(slog.String(logging.FieldComponent, "viatom")),
	}
}

// FileName derives the output name from the chunk's first tick.
func FileName(start time.Time) string {
	return start.Format("20060102150405") + ".bin"
}

// WriteChunk encodes one chunk and writes it atomically. It returns the
// written path.
func (w *Writer) WriteChunk(chunk spo2.Chunk) (string, error) {
	if len(chunk.Records) == 0 {
		return "", faults.Wrap(faults.ErrValidation, "viatom", "encode",
			"chunk has no records", nil)
	}
	if len(chunk.Records) > MaxRecords {
		return "", faults.Wrap(faults.ErrValidation, "viatom", "encode",
			fmt.Sprintf("chunk starting %s has %d records, format caps at %d",
				chunk.Start().Format(time.RFC3339), len(chunk.Records), MaxRecords), nil)
	}

	data, err := Encode(chunk, w.MaxPercent, w.TickSeconds)
	if err != nil {
		return "", err
	}

	path := filepath.Join(w.Dir, FileName(chunk.Start()))
	if err := fileutil.WriteFileAtomic(path, data); err != nil {
		return "", faults.Wrap(faults.ErrIO, "viatom", "write", path, err)
	}
	w.logger.Info("wrote oximetry file",
		slog.String("file", path),
		slog.Int("records", len(chunk.Records)),
		slog.Int("bytes", len(data)))
	return path, nil
}

// Encode renders a chunk into the on-disk byte layout.
func Encode(chunk spo2.Chunk, maxPercent, tickSeconds int) ([]byte, error) {
	n := len(chunk.Records)
	buf := bytes.NewBuffer(make([]byte, 0, headerSize+n*recordSize))
	start := chunk.Start()

	buf.Write([]byte{0x05, 0x00})
	if err := binary.Write(buf, binary.LittleEndian, uint16(start.Year())); err != nil {
		return nil, faults.Wrap(faults.ErrIO, "viatom", "encode", "header", err)
	}
	buf.Write([]byte{
		byte(start.Month()),
		byte(start.Day()),
		byte(start.Hour()),
		byte(start.Minute()),
		byte(start.Second()),
	})
	if err := binary.Write(buf, binary.LittleEndian, uint32(n*recordSize+headerSize)); err != nil {
		return nil, faults.Wrap(faults.ErrIO, "viatom", "encode", "header", err)
	}
	if err := binary.Write(buf, binary.LittleEndian, uint16(n*tickSeconds)); err != nil {
		return nil, faults.Wrap(faults.ErrIO, "viatom", "encode", "header", err)
	}
	buf.Write(make([]byte, 25))

	for _, r := range chunk.Records {
		if !r.Valid {
			buf.Write([]byte{0xFF, byte(r.BPM), 0xFF, 0x00, 0x00})
			continue
		}
		value := r.SpO2
		if value > maxPercent {
			value = maxPercent
		}
		buf.Write([]byte{byte(value), byte(r.BPM), 0x00, 0x00, 0x00})
	}
	return buf.Bytes(), nil
}
