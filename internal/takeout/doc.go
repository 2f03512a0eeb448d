// Package takeout resolves and reads a Fitbit Google-Takeout export.
//
// It locates the Fitbit data directory from any of the layouts Google ships,
// reads the profile timezone that anchors every timestamp, enumerates the
// source files relevant to conversion, and decodes them into typed records.
// Parsing is partial-failure tolerant: a malformed row or entry is skipped
// with a warning so one bad record never aborts a run.
package takeout
