package dreem_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fitbitconvert/internal/dreem"
	"fitbitconvert/internal/sleep"
)

func sampleRow() sleep.Row {
	return sleep.Row{
		StartTime:  "2023-01-03T23:58:30.000",
		StopTime:   "2023-01-04T07:53:30.000",
		OnsetHMS:   "07:54:00",
		LightHMS:   "04:35:00",
		DeepHMS:    "01:04:00",
		RemHMS:     "01:24:00",
		WakeHMS:    "00:52:00",
		Awakenings: 28,
		Efficiency: 93,
		Hypnogram:  []sleep.Stage{sleep.StageWake, sleep.StageLight, sleep.StageDeep, sleep.StageREM},
	}
}

func TestEncode(t *testing.T) {
	data, err := dreem.Encode([]sleep.Row{sampleRow()})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d: %q", len(lines), lines)
	}
	wantHeader := "Start Time;Stop Time;Sleep Onset Duration;Light Sleep Duration;Deep Sleep Duration;" +
		"REM Duration;Wake After Sleep Onset Duration;Number of awakenings;Sleep efficiency;Hypnogram"
	if lines[0] != wantHeader {
		t.Fatalf("header = %q", lines[0])
	}
	wantRow := "2023-01-03T23:58:30.000;2023-01-04T07:53:30.000;07:54:00;04:35:00;01:04:00;" +
		"01:24:00;00:52:00;28;93;[WAKE,Light,Deep,REM]"
	if lines[1] != wantRow {
		t.Fatalf("row = %q", lines[1])
	}
}

func TestEncodeEmptyKeepsHeader(t *testing.T) {
	data, err := dreem.Encode(nil)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !strings.HasPrefix(string(data), "Start Time;") {
		t.Fatalf("empty encoding = %q", data)
	}
	if strings.Count(string(data), "\n") != 1 {
		t.Fatal("empty encoding must be the header line only")
	}
}

func TestFormatHypnogram(t *testing.T) {
	if got := dreem.FormatHypnogram(nil); got != "[]" {
		t.Fatalf("empty hypnogram = %q", got)
	}
	got := dreem.FormatHypnogram([]sleep.Stage{sleep.StageLight, sleep.StageLight, sleep.StageWake})
	if got != "[Light,Light,WAKE]" {
		t.Fatalf("hypnogram = %q", got)
	}
}

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	w := dreem.NewWriter(dir, "sleep.csv", nil)

	path, err := w.Write([]sleep.Row{sampleRow()})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if path != filepath.Join(dir, "sleep.csv") {
		t.Fatalf("path = %q", path)
	}
	onDisk, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	encoded, _ := dreem.Encode([]sleep.Row{sampleRow()})
	if string(onDisk) != string(encoded) {
		t.Fatal("file content differs from encoding")
	}
}
