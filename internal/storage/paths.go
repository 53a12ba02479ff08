// Package storage persists evaluation results and game sessions in BadgerDB.
package storage

import (
	"os"
	"path/filepath"
	"runtime"
)

const appName = "voidchess"

// GetDataDir returns the platform-specific data directory for the application.
// - macOS: ~/Library/Application Support/voidchess/
// - Linux: $XDG_DATA_HOME/voidchess/ or ~/.local/share/voidchess/
// - Windows: %APPDATA%/voidchess/
func GetDataDir() (string, error) {
	var baseDir string

	switch runtime.GOOS {
	case "darwin":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		baseDir = filepath.Join(homeDir, "Library", "Application Support")

	case "windows":
		baseDir = os.Getenv("APPDATA")
		if baseDir == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			baseDir = filepath.Join(homeDir, "AppData", "Roaming")
		}

	default:
		baseDir = os.Getenv("XDG_DATA_HOME")
		if baseDir == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			baseDir = filepath.Join(homeDir, ".local", "share")
		}
	}

	dataDir := filepath.Join(baseDir, appName)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}
	return dataDir, nil
}

// GetDatabaseDir returns the BadgerDB directory. An empty dir selects the
// "db" directory below GetDataDir.
func GetDatabaseDir(dir string) (string, error) {
	if dir == "" {
		dataDir, err := GetDataDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(dataDir, "db")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}
