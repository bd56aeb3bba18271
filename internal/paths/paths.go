// Package paths resolves the shelf configuration and data directories.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// Project-local directory names, looked up in the working directory.
const (
	LocalConfigDirName = ".shelf"
	LocalDataDirName   = ".shelf-db"
)

// ConfigFileName is the viper config file inside the config directory.
const ConfigFileName = "config.yaml"

// appDirName is the per-user directory name under the platform base dirs.
const appDirName = "shelf"

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "SHELF_CONFIG_DIR"
	EnvDataDir   = "SHELF_DATA_DIR"
)

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
	getwd         func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
	getwd:         os.Getwd,
}

// DefaultConfigDir returns the per-user configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/shelf (fallback ~/.config/shelf)
// macOS:   ~/Library/Application Support/shelf
// Windows: %APPDATA%/shelf
func DefaultConfigDir() (string, error) {
	return platformPath("XDG_CONFIG_HOME", ".config")
}

// DefaultDataDir returns the per-user data directory.
//
// Linux:   $XDG_DATA_HOME/shelf (fallback ~/.local/share/shelf)
// macOS:   ~/Library/Application Support/shelf/data
// Windows: %APPDATA%/shelf/data
func DefaultDataDir() (string, error) {
	if runtime.GOOS != "linux" {
		dir, err := platformPath("", "")
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, "data"), nil
	}
	return platformPath("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

func platformPath(xdgVar, homeRel string) (string, error) {
	if runtime.GOOS == "linux" {
		if xdg := os.Getenv(xdgVar); xdgVar != "" && xdg != "" {
			return filepath.Join(xdg, appDirName), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, homeRel, appDirName), nil
	}
	dir, err := platformDir.userConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appDirName), nil
}

// ResolveConfigDir returns the configuration directory following the
// precedence chain: flag > SHELF_CONFIG_DIR > ./.shelf when it exists >
// DefaultConfigDir().
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	cwd, err := platformDir.getwd()
	if err != nil {
		return "", err
	}
	local := filepath.Join(cwd, LocalConfigDirName)
	if info, err := os.Stat(local); err == nil && info.IsDir() {
		return local, nil
	}
	return DefaultConfigDir()
}

// ResolveDataDir returns the data directory following the precedence chain:
// flag > SHELF_DATA_DIR > configured > <configDir>/../.shelf-db for a
// project-local config > DefaultDataDir().
//
// A relative configured value is resolved against configDir so config.yaml
// can name a directory beside itself.
func ResolveDataDir(flag, configured, configDir string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvDataDir); env != "" {
		return filepath.Abs(env)
	}
	if configured != "" {
		if filepath.IsAbs(configured) || configDir == "" {
			return filepath.Abs(configured)
		}
		return filepath.Join(configDir, configured), nil
	}
	if configDir != "" && filepath.Base(configDir) == LocalConfigDirName {
		return filepath.Join(filepath.Dir(configDir), LocalDataDirName), nil
	}
	return DefaultDataDir()
}

// ConfigFile returns the path of config.yaml inside configDir.
func ConfigFile(configDir string) string {
	return filepath.Join(configDir, ConfigFileName)
}
