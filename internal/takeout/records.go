package takeout

import (
	"strings"
	"time"
)

// SpO2Sample is one per-minute oxygen saturation reading, already shifted
// into the profile timezone.
type SpO2Sample struct {
	Time    time.Time
	Percent int
}

// HeartRateSample is one heart-rate reading, already shifted into the
// profile timezone.
type HeartRateSample struct {
	Time time.Time
	BPM  int
}

// StageSummary is the per-stage rollup inside a sleep session.
type StageSummary struct {
	Count   int     `json:"count"`
	Minutes float64 `json:"minutes"`
}

// LevelSpan is one contiguous stretch of a single sleep level.
type LevelSpan struct {
	DateTime string `json:"dateTime"`
	Level    string `json:"level"`
	Seconds  int    `json:"seconds"`
}

// SleepSession is one recorded sleep, stages or classic. Raw start/stop
// strings are preserved so the staging export reproduces Fitbit's own
// rendering byte for byte.
type SleepSession struct {
	StartRaw     string
	EndRaw       string
	Start        time.Time
	End          time.Time
	DurationMS   int64
	MinutesAwake float64
	Efficiency   int
	Summary      map[string]StageSummary
	Levels       []LevelSpan
}

// HasStages reports whether the session carries the granular stage summary
// (wake/light/deep/rem) rather than the classic asleep/restless/awake one.
// Only stages sessions can produce a hypnogram.
func (s SleepSession) HasStages() bool {
	for key := range s.Summary {
		if strings.EqualFold(key, "light") {
			return true
		}
	}
	return false
}
