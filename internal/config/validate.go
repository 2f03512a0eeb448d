package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateSpO2(); err != nil {
		return err
	}
	if err := c.validateSleep(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.ExportDir) == "" {
		return errors.New("paths.export_dir must be set")
	}
	return nil
}

func (c *Config) validateSpO2() error {
	if c.SpO2.SessionGapMinutes < 1 {
		return errors.New("spo2.session_gap_minutes must be at least 1")
	}
	if c.SpO2.SampleIntervalSeconds < 1 {
		return errors.New("spo2.sample_interval_seconds must be at least 1")
	}
	// The Viatom file layout caps a single file at 4095 records.
	if c.SpO2.MaxChunkRecords < 1 || c.SpO2.MaxChunkRecords > 4095 {
		return errors.New("spo2.max_chunk_records must be between 1 and 4095")
	}
	// The file header stores the duration as a sixteen-bit second count.
	if c.SpO2.MaxChunkRecords*c.SpO2.SampleIntervalSeconds > 65535 {
		return fmt.Errorf("spo2.max_chunk_records * spo2.sample_interval_seconds (%d) must not exceed 65535",
			c.SpO2.MaxChunkRecords*c.SpO2.SampleIntervalSeconds)
	}
	if c.SpO2.MinValidPercent < 0 || c.SpO2.MinValidPercent > 100 {
		return errors.New("spo2.min_valid_percent must be between 0 and 100")
	}
	if c.SpO2.MaxValidPercent < 0 || c.SpO2.MaxValidPercent > 100 {
		return errors.New("spo2.max_valid_percent must be between 0 and 100")
	}
	if c.SpO2.MinValidPercent >= c.SpO2.MaxValidPercent {
		return fmt.Errorf("spo2.min_valid_percent (%d) must be below spo2.max_valid_percent (%d)",
			c.SpO2.MinValidPercent, c.SpO2.MaxValidPercent)
	}
	return nil
}

func (c *Config) validateSleep() error {
	if c.Sleep.EpochSeconds < 1 {
		return errors.New("sleep.epoch_seconds must be at least 1")
	}
	if strings.ContainsAny(c.Sleep.OutputName, `/\`) {
		return fmt.Errorf("sleep.output_name %q must be a bare file name", c.Sleep.OutputName)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
