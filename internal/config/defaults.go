package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const (
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
	defaultExtension      = ".osu"
	defaultHistoryEnabled = true
	defaultKeepRuns       = 200
	maxDefaultWorkers     = 8
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir(),
			LogDir:   filepath.Join(defaultStateDir(), "logs"),
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Check: Check{
			Workers:    defaultWorkers(),
			Extensions: []string{defaultExtension},
		},
		History: History{
			Enabled:  defaultHistoryEnabled,
			KeepRuns: defaultKeepRuns,
		},
	}
}

func defaultWorkers() int {
	return min(runtime.NumCPU(), maxDefaultWorkers)
}

func defaultStateDir() string {
	if base, ok := os.LookupEnv("XDG_STATE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "titlemark")
	}
	return "~/.local/state/titlemark"
}
