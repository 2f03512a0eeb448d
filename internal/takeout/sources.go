package takeout

import (
	"path/filepath"
	"sort"

	"fitbitconvert/internal/faults"
)

// Sources enumerates the data files relevant to conversion, sorted for a
// deterministic processing order.
type Sources struct {
	SpO2      []string
	HeartRate []string
	Sleep     []string
}

// HasOximetry reports whether both inputs of the oximetry export are present.
func (s Sources) HasOximetry() bool {
	return len(s.SpO2) > 0 && len(s.HeartRate) > 0
}

// HasSleep reports whether the sleep staging export has input.
func (s Sources) HasSleep() bool {
	return len(s.Sleep) > 0
}

// Empty reports whether nothing convertible was found.
func (s Sources) Empty() bool {
	return len(s.SpO2) == 0 && len(s.HeartRate) == 0 && len(s.Sleep) == 0
}

// Discover enumerates the source files under the export root.
func (e *Export) Discover() (Sources, error) {
	var src Sources
	var err error

	if src.SpO2, err = globSorted(filepath.Join(e.Root, spo2DirName, "Minute SpO2*.csv")); err != nil {
		return Sources{}, err
	}
	if src.HeartRate, err = globSorted(filepath.Join(e.Root, globalExportDirName, "heart_rate-*.json")); err != nil {
		return Sources{}, err
	}
	if src.Sleep, err = globSorted(filepath.Join(e.Root, globalExportDirName, "sleep-*.json")); err != nil {
		return Sources{}, err
	}

	if src.Empty() {
		return Sources{}, faults.Wrap(faults.ErrNotFound, "discovery", "enumerate",
			"no convertible Fitbit data found under "+e.Root, nil)
	}
	return src, nil
}

func globSorted(pattern string) ([]string, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, faults.Wrap(faults.ErrValidation, "discovery", "glob", pattern, err)
	}
	sort.Strings(matches)
	return matches, nil
}
