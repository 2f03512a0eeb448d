package takeout

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fitbitconvert/internal/faults"
	"fitbitconvert/internal/logging"
)

// Takeout layout landmarks. Google ships the Fitbit folder either at the
// archive root or nested under Takeout/.
const (
	fitbitDirName       = "Fitbit"
	takeoutDirName      = "Takeout"
	profileDirName      = "Your Profile"
	profileFileName     = "Profile.csv"
	spo2DirName         = "Oxygen Saturation (SpO2)"
	globalExportDirName = "Global Export Data"
)

// Export is an opened Fitbit Takeout export: the resolved data root plus the
// profile timezone every timestamp is rendered in.
type Export struct {
	Root     string
	Timezone string
	Location *time.Location

	logger *slog.Logger
}

// Open resolves path to the Fitbit data directory, reads the profile
// timezone, and returns a handle for discovery and parsing.
func Open(path string, logger *slog.Logger) (*Export, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	root, err := ResolveRoot(path)
	if err != nil {
		return nil, err
	}
	zone, err := readProfileTimezone(root)
	if err != nil {
		return nil, err
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, faults.Wrap(faults.ErrParse, "profile", "timezone",
			fmt.Sprintf("unknown timezone %q", zone), err)
	}
	return &Export{
		Root:     root,
		Timezone: zone,
		Location: loc,
		logger:   logger.With(slog.String(logging.FieldComponent, "takeout")),
	}, nil
}

// ResolveRoot locates the Fitbit data directory given the Takeout root, a
// folder containing Fitbit/, or the Fitbit folder itself.
func ResolveRoot(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", faults.Wrap(faults.ErrValidation, "discovery", "resolve",
			fmt.Sprintf("invalid path %q", path), err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", faults.Wrap(faults.ErrNotFound, "discovery", "resolve",
				fmt.Sprintf("%s is not a valid directory", abs), nil)
		}
		return "", faults.Wrap(faults.ErrIO, "discovery", "resolve", abs, err)
	}
	if !info.IsDir() {
		return "", faults.Wrap(faults.ErrNotFound, "discovery", "resolve",
			fmt.Sprintf("%s is not a directory", abs), nil)
	}

	for _, candidate := range []string{
		abs,
		filepath.Join(abs, fitbitDirName),
		filepath.Join(abs, takeoutDirName, fitbitDirName),
	} {
		if looksLikeFitbitDir(candidate) {
			return candidate, nil
		}
	}
	return "", faults.Wrap(faults.ErrNotFound, "discovery", "resolve",
		fmt.Sprintf("%s does not contain a Takeout/Fitbit directory", abs), nil)
}

// LatestModTime reports the newest file modification time under the Fitbit
// data directory that path resolves to. Watch mode uses it to decide whether
// the export changed since the last recorded run.
func LatestModTime(path string) (time.Time, error) {
	root, err := ResolveRoot(path)
	if err != nil {
		return time.Time{}, err
	}
	var latest time.Time
	err = filepath.WalkDir(root, func(_ string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		info, err := entry.Info()
		if err != nil {
			return err
		}
		if info.ModTime().After(latest) {
			latest = info.ModTime()
		}
		return nil
	})
	if err != nil {
		return time.Time{}, faults.Wrap(faults.ErrIO, "discovery", "scan", root, err)
	}
	return latest, nil
}

func looksLikeFitbitDir(dir string) bool {
	for _, landmark := range []string{profileDirName, globalExportDirName, spo2DirName} {
		if info, err := os.Stat(filepath.Join(dir, landmark)); err == nil && info.IsDir() {
			return true
		}
	}
	return false
}

// readProfileTimezone extracts the timezone column from Your
// Profile/Profile.csv. The last data row wins, matching the export layout of
// accounts that re-exported after a profile change.
func readProfileTimezone(root string) (string, error) {
	path := filepath.Join(root, profileDirName, profileFileName)
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", faults.Wrap(faults.ErrNotFound, "profile", "read",
				"profile not detected", nil)
		}
		return "", faults.Wrap(faults.ErrIO, "profile", "read", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return "", faults.Wrap(faults.ErrParse, "profile", "read",
			fmt.Sprintf("%s has no header row", path), err)
	}
	zoneColumn := -1
	for i, name := range header {
		if strings.EqualFold(strings.TrimSpace(name), "timezone") {
			zoneColumn = i
			break
		}
	}
	if zoneColumn == -1 {
		return "", faults.Wrap(faults.ErrParse, "profile", "read",
			fmt.Sprintf("%s has no timezone column", path), nil)
	}

	var zone string
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", faults.Wrap(faults.ErrParse, "profile", "read", path, err)
		}
		if zoneColumn < len(row) && strings.TrimSpace(row[zoneColumn]) != "" {
			zone = strings.TrimSpace(row[zoneColumn])
		}
	}
	if zone == "" {
		return "", faults.Wrap(faults.ErrNotFound, "profile", "read",
			"profile not detected", nil)
	}
	return zone, nil
}
