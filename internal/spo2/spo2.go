// Package spo2 aligns per-minute oxygen saturation readings with heart-rate
// samples and resamples them onto the fixed tick grid the oximetry writer
// records. All functions are pure so a rerun over the same export produces
// byte-identical output.
package spo2

import (
	"log/slog"
	"sort"
	"time"

	"fitbitconvert/internal/faults"
	"fitbitconvert/internal/logging"
	"fitbitconvert/internal/takeout"
)

// Record is one resampled tick: the oxygen saturation and pulse rate in
// effect at that instant. Valid is false when no saturation reading has been
// seen yet or the reading sits at the noise floor.
type Record struct {
	Time  time.Time
	SpO2  int
	BPM   int
	Valid bool
}

// Session is one contiguous recording window detected from the saturation
// stream.
type Session struct {
	Start time.Time
	End   time.Time
}

// Chunk is a run of records destined for a single output file. Chunks never
// span sessions.
type Chunk struct {
	Records []Record
}

// Start is the timestamp of the first record, which also names the output
// file.
func (c Chunk) Start() time.Time {
	return c.Records[0].Time
}

// Aligner holds the alignment knobs. GapMinutes splits sessions,
// IntervalSeconds is the resampling tick, MaxChunkRecords caps one output
// file, and NoiseFloor is the saturation value at or below which a record is
// marked invalid.
type Aligner struct {
	GapMinutes      int
	IntervalSeconds int
	MaxChunkRecords int
	NoiseFloor      int

	logger *slog.Logger
}

// NewAligner constructs an Aligner logging through the provided logger.
func NewAligner(gapMinutes, intervalSeconds, maxChunkRecords, noiseFloor int, logger *slog.Logger) *Aligner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Aligner{
		GapMinutes:      gapMinutes,
		IntervalSeconds: intervalSeconds,
		MaxChunkRecords: maxChunkRecords,
		NoiseFloor:      noiseFloor,
		logger:          logger.With(slog.String(logging.FieldComponent, "spo2")),
	}
}

// Sessions splits the saturation stream into recording windows wherever
// consecutive samples are more than GapMinutes apart. The input need not be
// sorted.
func (a *Aligner) Sessions(samples []takeout.SpO2Sample) []Session {
	if len(samples) == 0 {
		return nil
	}
	times := make([]time.Time, len(samples))
	for i, s := range samples {
		times[i] = s.Time
	}
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })

	gap := time.Duration(a.GapMinutes) * time.Minute
	sessions := []Session{{Start: times[0], End: times[0]}}
	for _, t := range times[1:] {
		last := &sessions[len(sessions)-1]
		if t.Sub(last.End) > gap {
			sessions = append(sessions, Session{Start: t, End: t})
			continue
		}
		last.End = t
	}
	return sessions
}

// Align detects sessions, drops the ones the heart-rate stream cannot cover,
// and resamples each surviving session onto the tick grid, carrying the
// latest saturation and pulse values forward between samples. It returns the
// surviving sessions and the output chunks.
func (a *Aligner) Align(saturation []takeout.SpO2Sample, heart []takeout.HeartRateSample) ([]Session, []Chunk, error) {
	if len(saturation) == 0 {
		return nil, nil, faults.Wrap(faults.ErrNotFound, "align", "sessions",
			"no SpO2 night sessions detected", nil)
	}
	if len(heart) == 0 {
		return nil, nil, faults.Wrap(faults.ErrNotFound, "align", "heartrate",
			"no heart rate data detected", nil)
	}

	sessions := a.Sessions(saturation)
	points := mergeSamples(saturation, heart)

	lastHeart := heart[0].Time
	for _, h := range heart[1:] {
		if h.Time.After(lastHeart) {
			lastHeart = h.Time
		}
	}

	// A session the heart-rate stream ends inside would resample stale pulse
	// values, so only sessions that finish before the last reading survive.
	kept := sessions[:0]
	for _, s := range sessions {
		if s.End.Before(lastHeart) {
			kept = append(kept, s)
			continue
		}
		a.logger.Debug("dropping session past heart rate coverage",
			slog.Time("start", s.Start), slog.Time("end", s.End))
	}
	if len(kept) == 0 {
		return nil, nil, faults.Wrap(faults.ErrNotFound, "align", "sessions",
			"no sessions covered by heart rate data", nil)
	}

	var chunks []Chunk
	for _, s := range kept {
		chunks = append(chunks, a.resample(s, points)...)
	}
	return kept, chunks, nil
}

// point is one instant on the merged timeline. Later files overwrite earlier
// readings for the same instant.
type point struct {
	t    time.Time
	spo2 int
	bpm  int
	has  [2]bool // saturation, pulse
}

func mergeSamples(saturation []takeout.SpO2Sample, heart []takeout.HeartRateSample) []point {
	merged := make(map[int64]*point, len(saturation)+len(heart))
	at := func(t time.Time) *point {
		key := t.UnixNano()
		p, ok := merged[key]
		if !ok {
			p = &point{t: t}
			merged[key] = p
		}
		return p
	}
	for _, s := range saturation {
		p := at(s.Time)
		p.spo2 = s.Percent
		p.has[0] = true
	}
	for _, h := range heart {
		p := at(h.Time)
		p.bpm = h.BPM
		p.has[1] = true
	}

	points := make([]point, 0, len(merged))
	for _, p := range merged {
		points = append(points, *p)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].t.Before(points[j].t) })
	return points
}

// resample walks the session on the tick grid. Each tick records the latest
// saturation and pulse values at or before it; chunks are cut at
// MaxChunkRecords and at the session boundary.
func (a *Aligner) resample(s Session, points []point) []Chunk {
	interval := time.Duration(a.IntervalSeconds) * time.Second

	var spo2, bpm int
	haveSpO2 := false
	idx := 0

	var chunks []Chunk
	var records []Record
	flush := func() {
		if len(records) > 0 {
			chunks = append(chunks, Chunk{Records: records})
			records = nil
		}
	}

	for tick := s.Start; !tick.After(s.End); tick = tick.Add(interval) {
		for idx < len(points) && !points[idx].t.After(tick) {
			if points[idx].has[0] {
				spo2 = points[idx].spo2
				haveSpO2 = true
			}
			if points[idx].has[1] {
				bpm = points[idx].bpm
			}
			idx++
		}
		if len(records) >= a.MaxChunkRecords {
			flush()
		}
		records = append(records, Record{
			Time:  tick,
			SpO2:  spo2,
			BPM:   bpm,
			Valid: haveSpO2 && spo2 > a.NoiseFloor,
		})
	}
	flush()
	return chunks
}
