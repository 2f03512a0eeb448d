// Package logging assembles the structured slog loggers used across the
// converter pipeline.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and maps the CLI verbosity count onto log levels. The logger is
// built once in the command layer and passed into each pipeline stage; no
// stage reaches for a global.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits lines with the same shape.
package logging
