package logger

// SetupLogger installs the process-wide logger. Unknown levels fall back to info.
func SetupLogger(logLevel string, logJSON, logSource bool) {
	Init(setupConfig(logLevel, logJSON, logSource))
}

func setupConfig(logLevel string, logJSON, logSource bool) *Config {
	level := LogLevel(logLevel)
	switch level {
	case DebugLevel, InfoLevel, WarnLevel, ErrorLevel, DisabledLevel:
	default:
		level = InfoLevel
	}
	return &Config{
		Level:      level,
		JSON:       logJSON,
		AddSource:  logSource,
		TimeFormat: "15:04:05",
	}
}
