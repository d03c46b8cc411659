package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Backend names.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// EnvPrefix is the prefix for environment overrides (e.g. TIMECAPSULE_PORT).
const EnvPrefix = "TIMECAPSULE"

// Config holds application configuration.
type Config struct {
	// DataFile is the durable store location. Relative paths resolve against the
	// working directory.
	DataFile string `json:"data_file,omitempty"`

	// Backend selects the durable store format: "json" (flat file) or "sqlite".
	Backend string `json:"backend,omitempty"`

	// Bind and Port are the HTTP listen address.
	Bind string `json:"bind,omitempty"`
	Port int    `json:"port,omitempty"`

	// AllowedOrigins is the CORS allowlist. "*" allows any origin.
	// Unlike other lists, an overlay replaces rather than extends it.
	AllowedOrigins []string `json:"allowed_origins,omitempty"`

	// MessageMaxChars caps capsule message length in runes. 0 means unlimited.
	MessageMaxChars int `json:"message_max_chars,omitempty"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level,omitempty"`

	// LogFormat is "text" or "json".
	LogFormat string `json:"log_format,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections
	// (sqlite backend only). 0 means use sql.DB default.
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	// 0 means use sql.DB default. Typically set equal to DBMaxOpenConns.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		DataFile:       "Capsules.json",
		Backend:        BackendJSON,
		Bind:           "127.0.0.1",
		Port:           8000,
		AllowedOrigins: []string{"*"},
		LogLevel:       "info",
		LogFormat:      "text",
	}
}

// LoadWithRepo loads configuration from both global (~/.timecapsule) and repo
// (.timecapsule) directories, then applies environment overrides and finally
// overrides (typically command-line flags; may be nil).
// Repo config is found by walking upward from startDir to find the nearest
// .timecapsule/config.json. Either or both configs may be missing.
// Only the fully merged result is validated.
func LoadWithRepo(globalDir, startDir string, overrides *Config) (*Config, error) {
	global, err := loadFileRaw(filepath.Join(globalDir, "config.json"))
	if err != nil {
		return nil, err
	}

	repo, err := loadFileRaw(FindRepoConfig(startDir))
	if err != nil {
		return nil, err
	}

	if overrides == nil {
		overrides = &Config{}
	}

	// Apply defaults, then global, then repo, then environment, then overrides
	cfg := Merge(DefaultConfig(), global)
	for _, overlay := range []*Config{repo, loadEnv(), overrides} {
		cfg = Merge(cfg, overlay)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FindRepoConfig walks upward from startDir to find the nearest .timecapsule/config.json.
// Returns the path if found, or empty string if not found.
func FindRepoConfig(startDir string) string {
	dir := startDir
	for {
		configPath := filepath.Join(dir, ".timecapsule", "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	if configPath == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", configPath, err)
	}

	return cfg, nil
}

// loadEnv reads TIMECAPSULE_* overrides. Unset variables yield zero values.
func loadEnv() *Config {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	cfg := &Config{
		DataFile:        v.GetString("data_file"),
		Backend:         v.GetString("backend"),
		Bind:            v.GetString("bind"),
		Port:            v.GetInt("port"),
		MessageMaxChars: v.GetInt("message_max_chars"),
		LogLevel:        v.GetString("log_level"),
		LogFormat:       v.GetString("log_format"),
		DBMaxOpenConns:  v.GetInt("db_max_open_conns"),
		DBMaxIdleConns:  v.GetInt("db_max_idle_conns"),
	}
	if origins := v.GetString("allowed_origins"); origins != "" {
		cfg.AllowedOrigins = mergeStringSlice(strings.Split(origins, ","), nil)
	}
	return cfg
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars and for AllowedOrigins.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.DataFile = overlayString(base.DataFile, overlay.DataFile)
	result.Backend = overlayString(base.Backend, overlay.Backend)
	result.Bind = overlayString(base.Bind, overlay.Bind)
	result.LogLevel = overlayString(base.LogLevel, overlay.LogLevel)
	result.LogFormat = overlayString(base.LogFormat, overlay.LogFormat)

	result.Port = overlayInt(base.Port, overlay.Port)
	result.MessageMaxChars = overlayInt(base.MessageMaxChars, overlay.MessageMaxChars)
	result.DBMaxOpenConns = overlayInt(base.DBMaxOpenConns, overlay.DBMaxOpenConns)
	result.DBMaxIdleConns = overlayInt(base.DBMaxIdleConns, overlay.DBMaxIdleConns)

	result.AllowedOrigins = mergeStringSlice(base.AllowedOrigins, nil)
	if origins := mergeStringSlice(overlay.AllowedOrigins, nil); origins != nil {
		result.AllowedOrigins = origins
	}

	return result
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DataFile) == "" {
		return fmt.Errorf("config: data_file is required")
	}
	switch c.Backend {
	case BackendJSON, BackendSQLite:
	default:
		return fmt.Errorf("config: backend %q is invalid (must be json or sqlite)", c.Backend)
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config: port %d is out of range", c.Port)
	}
	if c.MessageMaxChars < 0 {
		return fmt.Errorf("config: message_max_chars must be non-negative")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("config: log_format %q is invalid (must be text or json)", c.LogFormat)
	}
	return nil
}

// ParseLevel converts a log level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("config: log_level %q is invalid", s)
	}
	return level, nil
}

func overlayString(base, overlay string) string {
	if overlay != "" {
		return overlay
	}
	return base
}

func overlayInt(base, overlay int) int {
	if overlay != 0 {
		return overlay
	}
	return base
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range a {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	for _, s := range b {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
