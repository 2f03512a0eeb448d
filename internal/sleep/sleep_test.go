package sleep_test

import (
	"testing"

	"fitbitconvert/internal/sleep"
	"fitbitconvert/internal/takeout"
)

func TestNormalizeKnownLabels(t *testing.T) {
	cases := map[string]sleep.Stage{
		"wake":     sleep.StageWake,
		"Wake":     sleep.StageWake,
		"awake":    sleep.StageWake,
		"restless": sleep.StageWake,
		"short":    sleep.StageWake,
		"rem":      sleep.StageREM,
		"light":    sleep.StageLight,
		"asleep":   sleep.StageLight,
		"deep":     sleep.StageDeep,
	}
	for label, want := range cases {
		got, ok := sleep.Normalize(label)
		if !ok {
			t.Fatalf("Normalize(%q) unexpectedly unknown", label)
		}
		if got != want {
			t.Fatalf("Normalize(%q) = %q, want %q", label, got, want)
		}
	}
}

func TestNormalizeUnknownLabel(t *testing.T) {
	if _, ok := sleep.Normalize("lucid"); ok {
		t.Fatal("expected lucid to be unknown")
	}
}

func TestMinutesToHMS(t *testing.T) {
	cases := []struct {
		minutes float64
		expect  string
	}{
		{0, "00:00:00"},
		{1, "00:01:00"},
		{0.5, "00:00:30"},
		{61, "01:01:00"},
		{423.5, "07:03:30"},
		{480, "08:00:00"},
	}
	for _, tc := range cases {
		if got := sleep.MinutesToHMS(tc.minutes); got != tc.expect {
			t.Fatalf("MinutesToHMS(%v) = %q, want %q", tc.minutes, got, tc.expect)
		}
	}
}

func stagesSession() takeout.SleepSession {
	return takeout.SleepSession{
		StartRaw:     "2023-01-03T23:58:30.000",
		EndRaw:       "2023-01-04T07:53:30.000",
		DurationMS:   28500000, // 475 minutes
		MinutesAwake: 52,
		Efficiency:   93,
		Summary: map[string]takeout.StageSummary{
			"light": {Count: 29, Minutes: 275},
			"deep":  {Count: 4, Minutes: 64},
			"rem":   {Count: 11, Minutes: 84},
			"wake":  {Count: 28, Minutes: 52},
		},
		Levels: []takeout.LevelSpan{
			{DateTime: "2023-01-03T23:58:30.000", Level: "wake", Seconds: 90},
			{DateTime: "2023-01-04T00:00:00.000", Level: "light", Seconds: 120},
			{DateTime: "2023-01-04T00:02:00.000", Level: "deep", Seconds: 60},
			{DateTime: "2023-01-04T00:03:00.000", Level: "rem", Seconds: 30},
		},
	}
}

func TestRenderStagesSession(t *testing.T) {
	builder := sleep.NewBuilder(30, nil)
	session := stagesSession()
	if !builder.Convertible(session) {
		t.Fatal("stages session should be convertible")
	}

	row := builder.Render(session)
	if row.StartTime != "2023-01-03T23:58:30.000" || row.StopTime != "2023-01-04T07:53:30.000" {
		t.Fatalf("raw timestamps must pass through, got %q/%q", row.StartTime, row.StopTime)
	}
	if row.OnsetHMS != "07:55:00" {
		t.Fatalf("onset duration = %q", row.OnsetHMS)
	}
	if row.LightHMS != "04:35:00" || row.DeepHMS != "01:04:00" || row.RemHMS != "01:24:00" {
		t.Fatalf("stage durations = %q/%q/%q", row.LightHMS, row.DeepHMS, row.RemHMS)
	}
	if row.WakeHMS != "00:52:00" {
		t.Fatalf("wake duration = %q", row.WakeHMS)
	}
	if row.Awakenings != 28 || row.Efficiency != 93 {
		t.Fatalf("awakenings/efficiency = %d/%d", row.Awakenings, row.Efficiency)
	}

	// 90s wake = 3 epochs, 120s light = 4, 60s deep = 2, 30s rem = 1.
	want := []sleep.Stage{
		sleep.StageWake, sleep.StageWake, sleep.StageWake,
		sleep.StageLight, sleep.StageLight, sleep.StageLight, sleep.StageLight,
		sleep.StageDeep, sleep.StageDeep,
		sleep.StageREM,
	}
	if len(row.Hypnogram) != len(want) {
		t.Fatalf("hypnogram length = %d, want %d", len(row.Hypnogram), len(want))
	}
	for i, stage := range want {
		if row.Hypnogram[i] != stage {
			t.Fatalf("hypnogram[%d] = %q, want %q", i, row.Hypnogram[i], stage)
		}
	}
}

func TestRenderSkipsUnknownLevels(t *testing.T) {
	builder := sleep.NewBuilder(30, nil)
	session := stagesSession()
	session.Levels = append(session.Levels, takeout.LevelSpan{Level: "lucid", Seconds: 300})

	row := builder.Render(session)
	if row.UnknownCount != 1 {
		t.Fatalf("unknown count = %d, want 1", row.UnknownCount)
	}
	for _, stage := range row.Hypnogram {
		if stage == "" {
			t.Fatal("hypnogram contains empty stage")
		}
	}
}

func TestClassicSessionNotConvertible(t *testing.T) {
	builder := sleep.NewBuilder(30, nil)
	session := takeout.SleepSession{
		Summary: map[string]takeout.StageSummary{
			"asleep":   {Minutes: 400},
			"restless": {Minutes: 20},
			"awake":    {Minutes: 10},
		},
	}
	if builder.Convertible(session) {
		t.Fatal("classic session must not be convertible")
	}
}

func TestPartialEpochTruncates(t *testing.T) {
	builder := sleep.NewBuilder(30, nil)
	session := stagesSession()
	session.Levels = []takeout.LevelSpan{{Level: "light", Seconds: 89}}

	row := builder.Render(session)
	if len(row.Hypnogram) != 2 {
		t.Fatalf("89s at 30s epochs should yield 2 entries, got %d", len(row.Hypnogram))
	}
}
