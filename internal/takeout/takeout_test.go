package takeout_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"fitbitconvert/internal/faults"
	"fitbitconvert/internal/takeout"
)

func writeFixture(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func newFitbitDir(t *testing.T, timezone string) string {
	t.Helper()
	root := t.TempDir()
	writeFixture(t, root, "Your Profile/Profile.csv",
		"first_name,timezone,height\nAda,"+timezone+",170\n")
	return root
}

func TestResolveRootVariants(t *testing.T) {
	direct := newFitbitDir(t, "Europe/Warsaw")
	if got, err := takeout.ResolveRoot(direct); err != nil || got != direct {
		t.Fatalf("direct: got %q, %v", got, err)
	}

	parent := t.TempDir()
	nested := filepath.Join(parent, "Fitbit")
	writeFixture(t, nested, "Your Profile/Profile.csv", "timezone\nUTC\n")
	if got, err := takeout.ResolveRoot(parent); err != nil || got != nested {
		t.Fatalf("parent: got %q, %v", got, err)
	}

	archive := t.TempDir()
	deep := filepath.Join(archive, "Takeout", "Fitbit")
	writeFixture(t, deep, "Global Export Data/heart_rate-2023-01-03.json", "[]")
	if got, err := takeout.ResolveRoot(archive); err != nil || got != deep {
		t.Fatalf("takeout: got %q, %v", got, err)
	}
}

func TestLatestModTime(t *testing.T) {
	root := newFitbitDir(t, "UTC")
	profile := filepath.Join(root, "Your Profile", "Profile.csv")
	spo2 := writeFixture(t, root, "Oxygen Saturation (SpO2)/spo2-2023-01-03.csv",
		"timestamp,value\n")

	old := time.Date(2023, 1, 3, 10, 0, 0, 0, time.UTC)
	newer := old.Add(48 * time.Hour)
	if err := os.Chtimes(profile, old, old); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	if err := os.Chtimes(spo2, newer, newer); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	latest, err := takeout.LatestModTime(root)
	if err != nil {
		t.Fatalf("LatestModTime: %v", err)
	}
	if !latest.Equal(newer) {
		t.Fatalf("latest = %v, want %v", latest, newer)
	}

	if _, err := takeout.LatestModTime(filepath.Join(t.TempDir(), "nope")); !errors.Is(err, faults.ErrNotFound) {
		t.Fatalf("missing path: got %v, want not-found", err)
	}
}

func TestResolveRootRejectsMissingAndUnrelated(t *testing.T) {
	if _, err := takeout.ResolveRoot(filepath.Join(t.TempDir(), "nope")); !errors.Is(err, faults.ErrNotFound) {
		t.Fatalf("missing path: got %v, want not-found", err)
	}
	if _, err := takeout.ResolveRoot(t.TempDir()); !errors.Is(err, faults.ErrNotFound) {
		t.Fatal("empty directory must not resolve")
	}
}

func TestOpenReadsProfileTimezone(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "Your Profile/Profile.csv",
		"first_name,timezone\nAda,America/New_York\nAda,Europe/Warsaw\n")

	export, err := takeout.Open(root, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if export.Timezone != "Europe/Warsaw" {
		t.Fatalf("last profile row must win, got %q", export.Timezone)
	}
	if export.Location.String() != "Europe/Warsaw" {
		t.Fatalf("location = %q", export.Location)
	}
}

func TestOpenProfileFaults(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "Global Export Data/sleep-2023-01-03.json", "[]")
	if _, err := takeout.Open(root, nil); !errors.Is(err, faults.ErrNotFound) {
		t.Fatalf("missing profile: got %v", err)
	}

	writeFixture(t, root, "Your Profile/Profile.csv", "first_name,height\nAda,170\n")
	if _, err := takeout.Open(root, nil); !errors.Is(err, faults.ErrParse) {
		t.Fatalf("missing timezone column: got %v", err)
	}

	writeFixture(t, root, "Your Profile/Profile.csv", "timezone\nAtlantis/Nowhere\n")
	if _, err := takeout.Open(root, nil); !errors.Is(err, faults.ErrParse) {
		t.Fatalf("unknown timezone: got %v", err)
	}
}

func TestDiscoverSortsAndClassifies(t *testing.T) {
	root := newFitbitDir(t, "UTC")
	writeFixture(t, root, "Oxygen Saturation (SpO2)/Minute SpO2 - 2023-01-04.csv", "timestamp,value\n")
	writeFixture(t, root, "Oxygen Saturation (SpO2)/Minute SpO2 - 2023-01-03.csv", "timestamp,value\n")
	writeFixture(t, root, "Global Export Data/heart_rate-2023-01-03.json", "[]")
	writeFixture(t, root, "Global Export Data/sleep-2023-01-03.json", "[]")
	writeFixture(t, root, "Global Export Data/steps-2023-01-03.json", "[]")

	export, err := takeout.Open(root, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	src, err := export.Discover()
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(src.SpO2) != 2 || filepath.Base(src.SpO2[0]) != "Minute SpO2 - 2023-01-03.csv" {
		t.Fatalf("SpO2 files = %v", src.SpO2)
	}
	if len(src.HeartRate) != 1 || len(src.Sleep) != 1 {
		t.Fatalf("heart rate/sleep files = %v / %v", src.HeartRate, src.Sleep)
	}
	if !src.HasOximetry() || !src.HasSleep() {
		t.Fatal("both exports should be available")
	}
}

func TestDiscoverNothingConvertible(t *testing.T) {
	export, err := takeout.Open(newFitbitDir(t, "UTC"), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := export.Discover(); !errors.Is(err, faults.ErrNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestParseSpO2File(t *testing.T) {
	root := newFitbitDir(t, "Europe/Warsaw")
	path := writeFixture(t, root, "Oxygen Saturation (SpO2)/Minute SpO2 - 2023-01-03.csv",
		"timestamp,value\n"+
			"2023-01-03T21:00:00Z,95.4\n"+
			"2023-01-03T21:01:00Z,100\n"+ // clamped to max
			"2023-01-03T21:02:00Z,55.0\n"+ // below min, dropped
			"not a timestamp,96\n"+ // malformed, skipped
			"2023-01-03T21:03:00Z,96.6\n")

	export, err := takeout.Open(root, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	samples, skipped, err := export.ParseSpO2File(path, takeout.ValueLimits{Min: 61, Max: 99})
	if err != nil {
		t.Fatalf("ParseSpO2File: %v", err)
	}
	if skipped != 1 {
		t.Fatalf("skipped = %d, want 1", skipped)
	}
	if len(samples) != 3 {
		t.Fatalf("samples = %d, want 3", len(samples))
	}
	if samples[0].Percent != 95 || samples[1].Percent != 99 || samples[2].Percent != 97 {
		t.Fatalf("values = %d/%d/%d", samples[0].Percent, samples[1].Percent, samples[2].Percent)
	}
	// 21:00 UTC is 22:00 in Warsaw during winter.
	if samples[0].Time.Hour() != 22 || samples[0].Time.Location().String() != "Europe/Warsaw" {
		t.Fatalf("timestamp not shifted into profile timezone: %v", samples[0].Time)
	}
}

func TestParseSpO2FileMissingColumns(t *testing.T) {
	root := newFitbitDir(t, "UTC")
	path := writeFixture(t, root, "Oxygen Saturation (SpO2)/Minute SpO2 - 2023-01-03.csv",
		"when,reading\n2023-01-03T21:00:00Z,95\n")
	export, err := takeout.Open(root, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, _, err := export.ParseSpO2File(path, takeout.ValueLimits{Min: 61, Max: 99}); !errors.Is(err, faults.ErrParse) {
		t.Fatalf("expected parse fault, got %v", err)
	}
}

func TestParseHeartRateFile(t *testing.T) {
	root := newFitbitDir(t, "Europe/Warsaw")
	path := writeFixture(t, root, "Global Export Data/heart_rate-2023-01-03.json", `[
  {"dateTime":"01/03/23 21:00:05","value":{"bpm":62,"confidence":3}},
  {"dateTime":"garbage","value":{"bpm":0}},
  {"dateTime":"01/03/23 21:00:10","value":{"bpm":63,"confidence":2}}
]`)

	export, err := takeout.Open(root, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	samples, skipped, err := export.ParseHeartRateFile(path)
	if err != nil {
		t.Fatalf("ParseHeartRateFile: %v", err)
	}
	if skipped != 1 || len(samples) != 2 {
		t.Fatalf("samples/skipped = %d/%d", len(samples), skipped)
	}
	want := time.Date(2023, 1, 3, 21, 0, 5, 0, time.UTC)
	if !samples[0].Time.Equal(want) || samples[0].BPM != 62 {
		t.Fatalf("first sample = %v %d", samples[0].Time, samples[0].BPM)
	}
}

func TestParseHeartRateFileNotAnArray(t *testing.T) {
	root := newFitbitDir(t, "UTC")
	path := writeFixture(t, root, "Global Export Data/heart_rate-2023-01-03.json", `{"oops":true}`)
	export, err := takeout.Open(root, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, _, err := export.ParseHeartRateFile(path); !errors.Is(err, faults.ErrParse) {
		t.Fatalf("expected parse fault, got %v", err)
	}
}

func TestParseSleepFile(t *testing.T) {
	root := newFitbitDir(t, "Europe/Warsaw")
	path := writeFixture(t, root, "Global Export Data/sleep-2023-01-03.json", `[
  {
    "startTime":"2023-01-03T23:58:30.000","endTime":"2023-01-04T07:53:30.000",
    "duration":28440000,"minutesAwake":52,"efficiency":93,
    "levels":{
      "summary":{"light":{"count":29,"minutes":275},"deep":{"count":4,"minutes":64},
                 "rem":{"count":11,"minutes":84},"wake":{"count":28,"minutes":52}},
      "data":[{"dateTime":"2023-01-03T23:58:30.000","level":"wake","seconds":90}]
    }
  },
  {
    "startTime":"2023-01-01T01:00:00","endTime":"2023-01-01T08:00:00",
    "duration":25200000,"minutesAwake":30,"efficiency":90,
    "levels":{"summary":{"asleep":{"count":1,"minutes":390}},"data":[]}
  },
  {"startTime":"whenever","endTime":"2023-01-02T08:00:00.000","duration":1}
]`)

	export, err := takeout.Open(root, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	sessions, skipped, err := export.ParseSleepFile(path)
	if err != nil {
		t.Fatalf("ParseSleepFile: %v", err)
	}
	if skipped != 1 || len(sessions) != 2 {
		t.Fatalf("sessions/skipped = %d/%d", len(sessions), skipped)
	}

	first := sessions[0]
	if first.StartRaw != "2023-01-03T23:58:30.000" {
		t.Fatalf("raw start = %q", first.StartRaw)
	}
	wantStart := time.Date(2023, 1, 3, 23, 58, 30, 0, first.Start.Location())
	if !first.Start.Equal(wantStart) || first.Start.Location().String() != "Europe/Warsaw" {
		t.Fatalf("parsed start = %v", first.Start)
	}
	if !first.HasStages() {
		t.Fatal("stages session must report HasStages")
	}
	if sessions[1].HasStages() {
		t.Fatal("classic session must not report HasStages")
	}
	// Second session uses the no-millisecond stamp variant.
	if sessions[1].Start.Hour() != 1 {
		t.Fatalf("no-millis stamp parsed as %v", sessions[1].Start)
	}
}
