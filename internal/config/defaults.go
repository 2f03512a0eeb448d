package config

const (
	defaultExportDir             = "export"
	defaultLogDir                = "~/.local/share/fitbit-convert/logs"
	defaultCatalogPath           = "~/.local/share/fitbit-convert/history.db"
	defaultSessionGapMinutes     = 5
	defaultSampleIntervalSeconds = 4
	defaultMaxChunkRecords       = 4095
	defaultMinValidPercent       = 61
	defaultMaxValidPercent       = 99
	defaultSleepEpochSeconds     = 30
	defaultSleepOutputName       = "sleep.csv"
	defaultLogFormat             = "console"
	defaultLogLevel              = "warn"
	defaultWatchSchedule         = "@hourly"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			ExportDir:   defaultExportDir,
			LogDir:      defaultLogDir,
			CatalogPath: defaultCatalogPath,
		},
		SpO2: SpO2{
			SessionGapMinutes:     defaultSessionGapMinutes,
			SampleIntervalSeconds: defaultSampleIntervalSeconds,
			MaxChunkRecords:       defaultMaxChunkRecords,
			MinValidPercent:       defaultMinValidPercent,
			MaxValidPercent:       defaultMaxValidPercent,
		},
		Sleep: Sleep{
			EpochSeconds: defaultSleepEpochSeconds,
			OutputName:   defaultSleepOutputName,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Watch: Watch{
			Schedule: defaultWatchSchedule,
		},
	}
}
