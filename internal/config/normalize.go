package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeSleep()
	c.normalizeLogging()
	c.normalizeWatch()
	return nil
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv("FITBIT_CONVERT_EXPORT_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.ExportDir = value
	}
	if value, ok := os.LookupEnv("FITBIT_CONVERT_CATALOG"); ok && strings.TrimSpace(value) != "" {
		c.Paths.CatalogPath = value
	}

	var err error
	if c.Paths.ExportDir, err = expandPath(c.Paths.ExportDir); err != nil {
		return fmt.Errorf("paths.export_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.CatalogPath) == "" {
		c.Paths.CatalogPath = defaultCatalogPath
	}
	if c.Paths.CatalogPath, err = expandPath(c.Paths.CatalogPath); err != nil {
		return fmt.Errorf("paths.catalog_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeSleep() {
	c.Sleep.OutputName = strings.TrimSpace(c.Sleep.OutputName)
	if c.Sleep.OutputName == "" {
		c.Sleep.OutputName = defaultSleepOutputName
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.File = strings.TrimSpace(c.Logging.File)
}

func (c *Config) normalizeWatch() {
	c.Watch.Schedule = strings.TrimSpace(c.Watch.Schedule)
	if c.Watch.Schedule == "" {
		c.Watch.Schedule = defaultWatchSchedule
	}
}
