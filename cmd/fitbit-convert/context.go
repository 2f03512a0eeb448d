package main

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"fitbitconvert/internal/config"
	"fitbitconvert/internal/logging"
)

type commandContext struct {
	configFlag  *string
	logFileFlag *string
	verbosity   *int

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag, logFileFlag *string, verbosity *int) *commandContext {
	return &commandContext{
		configFlag:  configFlag,
		logFileFlag: logFileFlag,
		verbosity:   verbosity,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// buildLogger assembles the run logger from config and flags. Verbosity
// flags override the configured level; a log file target redirects output
// and pins at least the info level so the file is worth reading.
func (c *commandContext) buildLogger() (*slog.Logger, func(), error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}

	level := cfg.Logging.Level
	verbosity := 0
	if c.verbosity != nil {
		verbosity = *c.verbosity
	}
	if verbosity > 0 {
		level = logging.VerbosityLevel(verbosity)
	}

	logFile := cfg.Logging.File
	if c.logFileFlag != nil && strings.TrimSpace(*c.logFileFlag) != "" {
		logFile = strings.TrimSpace(*c.logFileFlag)
	}

	var output io.Writer = os.Stderr
	cleanup := func() {}
	if logFile != "" {
		file, err := logging.OpenLogFile(logFile)
		if err != nil {
			return nil, nil, err
		}
		output = file
		cleanup = func() { _ = file.Close() }
		// A log file pins at least the info level; -vv can still raise it.
		if level == "warn" || level == "error" {
			level = "info"
		}
	}

	logger, err := logging.New(logging.Options{
		Level:  level,
		Format: cfg.Logging.Format,
		Output: output,
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return logger, cleanup, nil
}
