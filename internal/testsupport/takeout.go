package testsupport

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TakeoutBuilder assembles a synthetic Fitbit Takeout directory tree for
// tests.
type TakeoutBuilder struct {
	t    testing.TB
	root string
}

// NewTakeout creates an empty Fitbit directory with the given profile
// timezone.
func NewTakeout(t testing.TB, timezone string) *TakeoutBuilder {
	t.Helper()
	b := &TakeoutBuilder{t: t, root: t.TempDir()}
	b.write(filepath.Join("Your Profile", "Profile.csv"),
		"first_name,timezone,height\nTest,"+timezone+",170\n")
	return b
}

// Root reports the Fitbit directory path.
func (b *TakeoutBuilder) Root() string {
	return b.root
}

// AddSpO2 writes one Minute SpO2 CSV named after day, with one reading per
// minute starting at start (UTC, RFC3339 rendering).
func (b *TakeoutBuilder) AddSpO2(day string, start time.Time, percents ...float64) *TakeoutBuilder {
	b.t.Helper()
	var sb strings.Builder
	sb.WriteString("timestamp,value\n")
	for i, p := range percents {
		ts := start.UTC().Add(time.Duration(i) * time.Minute)
		fmt.Fprintf(&sb, "%s,%g\n", ts.Format("2006-01-02T15:04:05Z"), p)
	}
	b.write(filepath.Join("Oxygen Saturation (SpO2)", "Minute SpO2 - "+day+".csv"), sb.String())
	return b
}

// AddHeartRate writes one heart_rate JSON named after day, with readings at
// the given step starting at start (UTC).
func (b *TakeoutBuilder) AddHeartRate(day string, start time.Time, step time.Duration, bpms ...int) *TakeoutBuilder {
	b.t.Helper()
	type value struct {
		BPM        int `json:"bpm"`
		Confidence int `json:"confidence"`
	}
	type entry struct {
		DateTime string `json:"dateTime"`
		Value    value  `json:"value"`
	}
	entries := make([]entry, len(bpms))
	for i, bpm := range bpms {
		ts := start.UTC().Add(time.Duration(i) * step)
		entries[i] = entry{DateTime: ts.Format("01/02/06 15:04:05"), Value: value{BPM: bpm, Confidence: 2}}
	}
	b.writeJSON(filepath.Join("Global Export Data", "heart_rate-"+day+".json"), entries)
	return b
}

// SleepSession describes one session for AddSleep. Stage minute counts feed
// the summary; Spans feed the hypnogram.
type SleepSession struct {
	Start        time.Time
	End          time.Time
	MinutesAwake float64
	Efficiency   int
	Classic      bool
	LightMinutes float64
	DeepMinutes  float64
	RemMinutes   float64
	WakeCount    int
	Spans        []SleepSpan
}

// SleepSpan is one hypnogram level stretch.
type SleepSpan struct {
	Level   string
	Seconds int
}

// AddSleep writes one sleep JSON named after day containing the given
// sessions. Timestamps are rendered in Fitbit's local millisecond layout.
func (b *TakeoutBuilder) AddSleep(day string, sessions ...SleepSession) *TakeoutBuilder {
	b.t.Helper()
	entries := make([]map[string]any, len(sessions))
	for i, s := range sessions {
		summary := map[string]any{}
		if s.Classic {
			summary["asleep"] = map[string]any{"count": 1, "minutes": s.LightMinutes}
			summary["restless"] = map[string]any{"count": 2, "minutes": 10}
			summary["awake"] = map[string]any{"count": 1, "minutes": s.MinutesAwake}
		} else {
			summary["light"] = map[string]any{"count": 20, "minutes": s.LightMinutes}
			summary["deep"] = map[string]any{"count": 4, "minutes": s.DeepMinutes}
			summary["rem"] = map[string]any{"count": 9, "minutes": s.RemMinutes}
			summary["wake"] = map[string]any{"count": s.WakeCount, "minutes": s.MinutesAwake}
		}
		spans := make([]map[string]any, len(s.Spans))
		cursor := s.Start
		for j, span := range s.Spans {
			spans[j] = map[string]any{
				"dateTime": cursor.Format("2006-01-02T15:04:05.000"),
				"level":    span.Level,
				"seconds":  span.Seconds,
			}
			cursor = cursor.Add(time.Duration(span.Seconds) * time.Second)
		}
		entries[i] = map[string]any{
			"startTime":    s.Start.Format("2006-01-02T15:04:05.000"),
			"endTime":      s.End.Format("2006-01-02T15:04:05.000"),
			"duration":     s.End.Sub(s.Start).Milliseconds(),
			"minutesAwake": s.MinutesAwake,
			"efficiency":   s.Efficiency,
			"levels":       map[string]any{"summary": summary, "data": spans},
		}
	}
	b.writeJSON(filepath.Join("Global Export Data", "sleep-"+day+".json"), entries)
	return b
}

func (b *TakeoutBuilder) write(rel, content string) {
	b.t.Helper()
	path := filepath.Join(b.root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		b.t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		b.t.Fatalf("write %s: %v", path, err)
	}
}

func (b *TakeoutBuilder) writeJSON(rel string, value any) {
	b.t.Helper()
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		b.t.Fatalf("marshal %s: %v", rel, err)
	}
	b.write(rel, string(data))
}
