package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

// writeConfig writes content to dir/config.json, creating dir.
func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0700); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(content), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func TestLoadWithRepo_GlobalDefaultWhenMissing(t *testing.T) {
	cfg, err := LoadWithRepo(t.TempDir(), t.TempDir(), nil)
	if err != nil {
		t.Fatalf("LoadWithRepo() error = %v", err)
	}
	def := DefaultConfig()
	if cfg.DataFile != def.DataFile || cfg.Port != def.Port || cfg.Backend != def.Backend {
		t.Fatalf("cfg = %+v, want defaults %+v", cfg, def)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "*" {
		t.Errorf("AllowedOrigins = %v, want [*]", cfg.AllowedOrigins)
	}
}

func TestLoadWithRepo_GlobalOverridesFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, `{"port": 9090, "backend": "sqlite", "data_file": "caps.db"}`)

	cfg, err := LoadWithRepo(tmpDir, t.TempDir(), nil)
	if err != nil {
		t.Fatalf("LoadWithRepo() error = %v", err)
	}
	if cfg.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Port)
	}
	if cfg.Backend != BackendSQLite {
		t.Errorf("Backend = %q, want %q", cfg.Backend, BackendSQLite)
	}
	if cfg.DataFile != "caps.db" {
		t.Errorf("DataFile = %q, want %q", cfg.DataFile, "caps.db")
	}
	if cfg.Bind != "127.0.0.1" {
		t.Errorf("Bind = %q, want default", cfg.Bind)
	}
}

func TestLoadWithRepo_GlobalInvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, `{not json}`)

	if _, err := LoadWithRepo(tmpDir, t.TempDir(), nil); err == nil {
		t.Fatalf("LoadWithRepo() expected error, got nil")
	}
}

func TestLoadWithRepo_GlobalInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown backend", `{"backend": "redis"}`},
		{"port out of range", `{"port": 70000}`},
		{"negative max chars", `{"message_max_chars": -1}`},
		{"bad log level", `{"log_level": "chatty"}`},
		{"bad log format", `{"log_format": "xml"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			writeConfig(t, tmpDir, tt.content)
			if _, err := LoadWithRepo(tmpDir, t.TempDir(), nil); err == nil {
				t.Errorf("LoadWithRepo() expected error for %s", tt.content)
			}
		})
	}
}

func TestLoadWithRepo_EnvOverridesFile(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, `{"port": 9090, "log_level": "debug"}`)

	t.Setenv("TIMECAPSULE_PORT", "7070")
	t.Setenv("TIMECAPSULE_DATA_FILE", "/var/lib/timecapsule/Capsules.json")
	t.Setenv("TIMECAPSULE_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := LoadWithRepo(tmpDir, t.TempDir(), nil)
	if err != nil {
		t.Fatalf("LoadWithRepo() error = %v", err)
	}
	if cfg.Port != 7070 {
		t.Errorf("Port = %d, want 7070 (env wins)", cfg.Port)
	}
	if cfg.DataFile != "/var/lib/timecapsule/Capsules.json" {
		t.Errorf("DataFile = %q", cfg.DataFile)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug (file value kept)", cfg.LogLevel)
	}
	want := []string{"https://a.example", "https://b.example"}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[0] != want[0] || cfg.AllowedOrigins[1] != want[1] {
		t.Errorf("AllowedOrigins = %v, want %v", cfg.AllowedOrigins, want)
	}
}

func TestLoadWithRepo_BothPresent(t *testing.T) {
	globalDir := t.TempDir()
	repoRoot := t.TempDir()

	writeConfig(t, globalDir, `{"port": 9000, "log_format": "json"}`)
	writeConfig(t, filepath.Join(repoRoot, ".timecapsule"), `{"port": 9100, "message_max_chars": 280}`)

	cfg, err := LoadWithRepo(globalDir, repoRoot, nil)
	if err != nil {
		t.Fatalf("LoadWithRepo() error = %v", err)
	}
	if cfg.Port != 9100 {
		t.Errorf("Port = %d, want 9100 (repo wins)", cfg.Port)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat = %q, want json (from global)", cfg.LogFormat)
	}
	if cfg.MessageMaxChars != 280 {
		t.Errorf("MessageMaxChars = %d, want 280", cfg.MessageMaxChars)
	}
}

func TestLoadWithRepo_NeitherPresent(t *testing.T) {
	cfg, err := LoadWithRepo(t.TempDir(), t.TempDir(), nil)
	if err != nil {
		t.Fatalf("LoadWithRepo() error = %v", err)
	}
	if cfg.Port != DefaultConfig().Port {
		t.Errorf("Port = %d, want default", cfg.Port)
	}
}

func TestLoadWithRepo_WalksUpward(t *testing.T) {
	repoRoot := t.TempDir()
	writeConfig(t, filepath.Join(repoRoot, ".timecapsule"), `{"backend": "sqlite"}`)

	deep := filepath.Join(repoRoot, "a", "b", "c")
	if err := os.MkdirAll(deep, 0700); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}

	cfg, err := LoadWithRepo(t.TempDir(), deep, nil)
	if err != nil {
		t.Fatalf("LoadWithRepo() error = %v", err)
	}
	if cfg.Backend != BackendSQLite {
		t.Errorf("Backend = %q, want sqlite", cfg.Backend)
	}
}

func TestLoadWithRepo_OverridesWin(t *testing.T) {
	globalDir := t.TempDir()
	writeConfig(t, globalDir, `{"port": 9000, "log_level": "debug"}`)
	t.Setenv("TIMECAPSULE_DATA_FILE", "env.json")

	cfg, err := LoadWithRepo(globalDir, t.TempDir(), &Config{DataFile: "flag.db", Backend: BackendSQLite})
	if err != nil {
		t.Fatalf("LoadWithRepo() error = %v", err)
	}
	if cfg.DataFile != "flag.db" || cfg.Backend != BackendSQLite {
		t.Errorf("DataFile, Backend = %q, %q, want flag values", cfg.DataFile, cfg.Backend)
	}
	if cfg.Port != 9000 || cfg.LogLevel != "debug" {
		t.Errorf("Port, LogLevel = %d, %q, want file values", cfg.Port, cfg.LogLevel)
	}
}

func TestLoadWithRepo_OverrideRepairsInvalidValue(t *testing.T) {
	globalDir := t.TempDir()
	writeConfig(t, globalDir, `{"log_format": "xml"}`)
	t.Setenv("TIMECAPSULE_BACKEND", "redis")

	if _, err := LoadWithRepo(globalDir, t.TempDir(), nil); err == nil {
		t.Fatal("LoadWithRepo() expected error without overrides")
	}

	cfg, err := LoadWithRepo(globalDir, t.TempDir(), &Config{Backend: BackendJSON, LogFormat: "json"})
	if err != nil {
		t.Fatalf("LoadWithRepo() error = %v", err)
	}
	if cfg.Backend != BackendJSON || cfg.LogFormat != "json" {
		t.Errorf("Backend, LogFormat = %q, %q, want json, json", cfg.Backend, cfg.LogFormat)
	}
}

func TestMerge_ScalarOverride(t *testing.T) {
	base := &Config{Port: 8000, Bind: "127.0.0.1"}
	overlay := &Config{Port: 9000}

	result := Merge(base, overlay)
	if result.Port != 9000 {
		t.Errorf("Port = %d, want 9000", result.Port)
	}
	if result.Bind != "127.0.0.1" {
		t.Errorf("Bind = %q, want base value", result.Bind)
	}
}

func TestMerge_AllowedOriginsReplace(t *testing.T) {
	base := &Config{AllowedOrigins: []string{"*"}}
	overlay := &Config{AllowedOrigins: []string{" https://a.example ", "https://a.example"}}

	result := Merge(base, overlay)
	if len(result.AllowedOrigins) != 1 || result.AllowedOrigins[0] != "https://a.example" {
		t.Errorf("AllowedOrigins = %v, want [https://a.example]", result.AllowedOrigins)
	}

	result = Merge(base, &Config{})
	if len(result.AllowedOrigins) != 1 || result.AllowedOrigins[0] != "*" {
		t.Errorf("AllowedOrigins = %v, want base [*]", result.AllowedOrigins)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if err != nil {
			t.Errorf("ParseLevel(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
