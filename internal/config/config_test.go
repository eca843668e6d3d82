package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pelletier/go-toml/v2"

	"titlemark/internal/config"
	"titlemark/internal/markers"
	"titlemark/internal/testsupport"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("XDG_STATE_HOME", "")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved != filepath.Join(tempHome, ".config", "titlemark", "config.toml") {
		t.Fatalf("unexpected resolved path %q", resolved)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantState := filepath.Join(tempHome, ".local", "state", "titlemark")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if cfg.Paths.LogDir != filepath.Join(wantState, "logs") {
		t.Fatalf("unexpected log dir: %q", cfg.Paths.LogDir)
	}
	if cfg.HistoryPath() != filepath.Join(wantState, "history.db") {
		t.Fatalf("unexpected history path: %q", cfg.HistoryPath())
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
	if cfg.Check.Workers < 1 {
		t.Fatalf("expected positive default workers, got %d", cfg.Check.Workers)
	}
	if diff := cmp.Diff([]string{".osu"}, cfg.Check.Extensions); diff != "" {
		t.Fatalf("extensions mismatch (-want +got):\n%s", diff)
	}
	if !cfg.History.Enabled || cfg.History.KeepRuns != 200 {
		t.Fatalf("unexpected history defaults: %+v", cfg.History)
	}
}

func TestLoadCustomConfigFile(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	dir := t.TempDir()
	path := filepath.Join(dir, "custom.toml")
	content := `
[paths]
state_dir = "~/state"
log_dir = ""

[logging]
format = "JSON"
level = " Debug "

[check]
workers = 3
extensions = ["OSU", ".osu", "txt"]
disabled_markers = ["cut_version", " tv-size "]

[history]
enabled = false
keep_runs = 0
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected custom path to be used, got %q exists=%v", resolved, exists)
	}
	if cfg.Paths.StateDir != filepath.Join(tempHome, "state") {
		t.Fatalf("unexpected state dir %q", cfg.Paths.StateDir)
	}
	if cfg.Paths.LogDir != "" {
		t.Fatalf("expected empty log dir, got %q", cfg.Paths.LogDir)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging %+v", cfg.Logging)
	}
	if cfg.Check.Workers != 3 {
		t.Fatalf("unexpected workers %d", cfg.Check.Workers)
	}
	if diff := cmp.Diff([]string{".osu", ".txt"}, cfg.Check.Extensions); diff != "" {
		t.Fatalf("extensions mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]markers.Kind{markers.KindCutVersion, markers.KindTVSize}, cfg.DisabledKinds()); diff != "" {
		t.Fatalf("disabled kinds mismatch (-want +got):\n%s", diff)
	}
	if cfg.History.Enabled || cfg.History.KeepRuns != 0 {
		t.Fatalf("unexpected history %+v", cfg.History)
	}
}

func TestLogLevelEnvOverride(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("TITLEMARK_LOG_LEVEL", "WARN")

	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Logging.Level != "warn" {
		t.Fatalf("expected env override, got %q", cfg.Logging.Level)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{name: "format", mutate: func(c *config.Config) { c.Logging.Format = "xml" }, want: "logging.format"},
		{name: "level", mutate: func(c *config.Config) { c.Logging.Level = "trace" }, want: "logging.level"},
		{name: "workers", mutate: func(c *config.Config) { c.Check.Workers = 0 }, want: "check.workers"},
		{name: "marker", mutate: func(c *config.Config) { c.Check.DisabledMarkers = []string{"extended"} }, want: "check.disabled_markers"},
		{name: "keep runs", mutate: func(c *config.Config) { c.History.KeepRuns = -1 }, want: "history.keep_runs"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Validate() = %v, want error mentioning %q", err, tt.want)
			}
		})
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[check]\nworkerz = 2\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected unknown key to fail parsing")
	}
}

func TestCreateSampleProducesLoadableConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		t.Fatalf("sample config is not valid TOML: %v", err)
	}
	for _, section := range []string{"paths", "logging", "check", "history"} {
		if _, ok := raw[section]; !ok {
			t.Fatalf("sample config missing [%s]", section)
		}
	}

	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample config failed to load: %v", err)
	}
}

func TestEnsureDirectories(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories returned error: %v", err)
	}
	for _, dir := range []string{cfg.Paths.StateDir, cfg.Paths.LogDir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s: %v", dir, err)
		}
	}
	if got, want := cfg.HistoryPath(), filepath.Join(testsupport.BaseDir(cfg), "state", "history.db"); got != want {
		t.Fatalf("HistoryPath = %q, want %q", got, want)
	}
}

func TestDisabledKinds(t *testing.T) {
	cfg := testsupport.NewConfig(t,
		testsupport.WithDisabledMarkers("cut_version", "TV-Size"),
		testsupport.WithHistory(false),
	)
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	want := []markers.Kind{markers.KindCutVersion, markers.KindTVSize}
	if diff := cmp.Diff(want, cfg.DisabledKinds()); diff != "" {
		t.Fatalf("DisabledKinds mismatch (-want +got):\n%s", diff)
	}

	bad := testsupport.NewConfig(t, testsupport.WithDisabledMarkers("extended-version"))
	if err := bad.Validate(); err == nil {
		t.Fatal("expected unknown marker name to fail validation")
	}
}
