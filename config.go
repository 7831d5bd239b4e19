package logsink

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/lixenwraith/config"
)

// Config holds all sink configuration values
type Config struct {
	Level         Severity // Minimum severity written
	LogFile       string   // Path of the active log file
	MaxSizeBytes  int64    // Rotation threshold, 0 disables rotation
	EnableConsole bool     // Mirror accepted records to stdout/stderr
	Origin        string   // Origin identifier used by the sink's own methods
}

// fileConfig is the on-disk shape of the TOML [sink] table
type fileConfig struct {
	Level   string `toml:"level"`
	LogFile string `toml:"logfile"`
	MaxSize int64  `toml:"maxsize"` // KiB
}

// defaultConfig is the single source for all configurable default values
var defaultConfig = Config{
	Level:         LevelInfo,
	LogFile:       "app.log",
	MaxSizeBytes:  1024 * sizeMultiplier, // 1 MiB
	EnableConsole: true,
	Origin:        "main",
}

// DefaultConfig returns a copy of the default configuration
func DefaultConfig() *Config {
	copiedConfig := defaultConfig
	return &copiedConfig
}

// LoadConfig reads the config file at path and never fails.
// Any problem is reported as a warning on stderr and the defaults are returned.
func LoadConfig(path string) *Config {
	cfg, err := ParseConfig(path)
	if err != nil {
		internalLog(os.Stderr, "%v; using defaults", err)
	}
	return cfg
}

// ParseConfig reads the config file at path.
// Files ending in .toml are read from a [sink] table, everything else as
// key=value lines. On any error the full defaults are returned together with
// an error wrapping ErrConfigLoad.
func ParseConfig(path string) (*Config, error) {
	var cfg *Config
	var err error
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		cfg, err = parseTOMLConfig(path)
	} else {
		cfg, err = parsePlainConfig(path)
	}
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		return DefaultConfig(), fmtErrorf("%w: %s: %w", ErrConfigLoad, path, err)
	}
	return cfg, nil
}

// parsePlainConfig reads key=value lines; blank lines, comments, lines
// without '=' and unknown keys are skipped
func parsePlainConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	for i, raw := range strings.Split(string(data), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, err := parseKeyValue(line)
		if err != nil {
			continue
		}
		if err := applyConfigField(cfg, key, value); err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
	}
	return cfg, nil
}

// parseTOMLConfig reads the [sink] table through lixenwraith/config
func parseTOMLConfig(path string) (*Config, error) {
	defaults := fileConfig{
		Level:   defaultConfig.Level.String(),
		LogFile: defaultConfig.LogFile,
		MaxSize: defaultConfig.MaxSizeBytes / sizeMultiplier,
	}

	loader := config.New()
	if err := loader.RegisterStruct(tomlPrefix, defaults); err != nil {
		return nil, fmt.Errorf("failed to register config struct: %w", err)
	}
	if err := loader.Load(path, nil); err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			return nil, fmt.Errorf("%w: %s", os.ErrNotExist, path)
		}
		return nil, err
	}

	fc := defaults
	if err := extractConfig(loader, tomlPrefix, &fc); err != nil {
		return nil, fmt.Errorf("failed to extract config values: %w", err)
	}

	cfg := DefaultConfig()
	fields := [][2]string{
		{keyLevel, fc.Level},
		{keyLogFile, fc.LogFile},
		{keyMaxSize, strconv.FormatInt(fc.MaxSize, 10)},
	}
	for _, kv := range fields {
		if err := applyConfigField(cfg, kv[0], kv[1]); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// applyConfigField applies a single key-value pair to a Config.
// Unknown keys are ignored.
func applyConfigField(cfg *Config, key, value string) error {
	switch strings.ToLower(key) {
	case keyLevel:
		sev, err := severityFromTag(value)
		if err != nil {
			return err
		}
		cfg.Level = sev
	case keyLogFile:
		if value == "" {
			return fmt.Errorf("logfile cannot be empty")
		}
		cfg.LogFile = value
	case keyMaxSize:
		kib, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer value for maxsize '%s': %w", value, err)
		}
		if kib < 0 {
			return fmt.Errorf("maxsize cannot be negative: %d", kib)
		}
		cfg.MaxSizeBytes = kib * sizeMultiplier
	}
	return nil
}

// extractConfig copies registered values from the loader into target's toml-tagged fields
func extractConfig(loader *config.Config, prefix string, target any) error {
	v := reflect.ValueOf(target).Elem()
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tomlTag := field.Tag.Get("toml")
		if tomlTag == "" {
			continue
		}

		val, found := loader.Get(prefix + tomlTag)
		if !found {
			continue
		}

		if err := setFieldValue(v.Field(i), val); err != nil {
			return fmt.Errorf("failed to set field %s: %w", field.Name, err)
		}
	}

	return nil
}

// setFieldValue sets a reflect.Value with proper type conversion
func setFieldValue(field reflect.Value, value any) error {
	switch field.Kind() {
	case reflect.String:
		strVal, ok := value.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", value)
		}
		field.SetString(strVal)

	case reflect.Int64:
		switch v := value.(type) {
		case int64:
			field.SetInt(v)
		case int:
			field.SetInt(int64(v))
		case float64:
			if v != float64(int64(v)) {
				return fmt.Errorf("expected integer, got %v", v)
			}
			field.SetInt(int64(v))
		default:
			return fmt.Errorf("expected int64, got %T", value)
		}

	default:
		return fmt.Errorf("unsupported field type: %v", field.Kind())
	}

	return nil
}

// Validate performs validation on the configuration
func (c *Config) Validate() error {
	switch c.Level {
	case LevelInfo, LevelWarning, LevelError:
	default:
		return fmt.Errorf("%w: %d", ErrInvalidSeverity, c.Level)
	}

	if strings.TrimSpace(c.LogFile) == "" {
		return fmt.Errorf("logfile cannot be empty")
	}

	if c.MaxSizeBytes < 0 {
		return fmt.Errorf("rotation threshold cannot be negative: %d", c.MaxSizeBytes)
	}

	if strings.TrimSpace(c.Origin) == "" {
		return fmt.Errorf("origin cannot be empty")
	}

	return nil
}

// Clone creates a copy of the configuration
func (c *Config) Clone() *Config {
	copiedConfig := *c
	return &copiedConfig
}
