// Package platform resolves per-user file locations.
package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// DefaultAppName names the per-user directories.
const DefaultAppName = "tavla"

// Paths lists the per-user locations the client reads and writes.
type Paths struct {
	ConfigPath string
	DataDir    string
	DBPath     string
	LogDir     string
}

// Options defines optional settings for path resolution.
type Options struct {
	AppName string
	DevMode bool
}

// DevLogPath is the dev-mode log file for appName.
func (p Paths) DevLogPath(appName string) string {
	return filepath.Join(p.LogDir, appNameOrDefault(appName)+".log")
}

// envOverrides names the variables that replace the base dirs on one OS.
type envOverrides struct {
	config string
	data   string
	state  string
}

var overridesByOS = map[string]envOverrides{
	"linux":   {config: "XDG_CONFIG_HOME", data: "XDG_DATA_HOME", state: "XDG_STATE_HOME"},
	"windows": {config: "APPDATA", data: "LOCALAPPDATA"},
}

// DefaultPathsWithOptions resolves paths for the running platform.
func DefaultPathsWithOptions(opts Options) (Paths, error) {
	appName := appNameOrDefault(opts.AppName)
	if opts.DevMode {
		appName += "-dev"
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		return Paths{}, fmt.Errorf("user config dir: %w", err)
	}
	dataDir, err := userDataDir(configDir)
	if err != nil {
		return Paths{}, err
	}

	env := map[string]string{}
	if keys, ok := overridesByOS[runtime.GOOS]; ok {
		for _, key := range []string{keys.config, keys.data, keys.state} {
			if key != "" {
				env[key] = os.Getenv(key)
			}
		}
	}
	return PathsFor(runtime.GOOS, env, configDir, dataDir, appName)
}

// userDataDir picks the base for data files; only linux separates it from
// the config dir.
func userDataDir(configDir string) (string, error) {
	if runtime.GOOS != "linux" {
		return configDir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("user home dir: %w", err)
	}
	return filepath.Join(home, ".local", "share"), nil
}

// PathsFor resolves paths from explicit inputs.
func PathsFor(goos string, env map[string]string, userConfigDir, userDataDir, appName string) (Paths, error) {
	if userConfigDir == "" || userDataDir == "" {
		return Paths{}, errors.New("empty base dirs")
	}
	appName = strings.TrimSpace(appName)
	if appName == "" {
		return Paths{}, errors.New("empty app name")
	}

	keys := overridesByOS[goos]
	configBase := override(env, keys.config, userConfigDir)
	dataDir := filepath.Join(override(env, keys.data, userDataDir), appName)

	logDir := filepath.Join(dataDir, "logs")
	if state := override(env, keys.state, ""); state != "" {
		logDir = filepath.Join(state, appName, "logs")
	}
	return Paths{
		ConfigPath: filepath.Join(configBase, appName, "config.toml"),
		DataDir:    dataDir,
		DBPath:     filepath.Join(dataDir, appName+".db"),
		LogDir:     logDir,
	}, nil
}

func override(env map[string]string, key, fallback string) string {
	if key == "" {
		return fallback
	}
	if v := strings.TrimSpace(env[key]); v != "" {
		return v
	}
	return fallback
}

func appNameOrDefault(appName string) string {
	if appName = strings.TrimSpace(appName); appName != "" {
		return appName
	}
	return DefaultAppName
}
