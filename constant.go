package logsink

// Severity levels, ordered by importance
const (
	LevelInfo    Severity = 0
	LevelWarning Severity = 4
	LevelError   Severity = 8
)

// Config file keys
const (
	keyLevel   = "level"
	keyLogFile = "logfile"
	keyMaxSize = "maxsize"
)

const (
	// DefaultConfigPath is read by Instance on first use
	DefaultConfigPath = "logger_config.txt"
	// Size multiplier for maxsize, given in KiB
	sizeMultiplier = 1024
	// Extension used for archives when the active file has none
	defaultArchiveExt = ".log"
	// TOML table holding the sink keys
	tomlPrefix = "sink."
)
