package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// DataDirectory returns the per-user data directory.
//
// Locations:
//   - Windows: %LOCALAPPDATA%\checking
//   - Unix: ~/.local/share/checking (or $XDG_DATA_HOME/checking)
func DataDirectory() string {
	if runtime.GOOS == "windows" {
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return filepath.Join(os.TempDir(), "checking")
			}
			localAppData = filepath.Join(homeDir, "AppData", "Local")
		}
		return filepath.Join(localAppData, "checking")
	}

	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "checking")
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "checking")
	}
	return filepath.Join(homeDir, ".local", "share", "checking")
}

// ArchiveDirectory returns the local archive directory, falling back to
// DataDirectory()/archive when output.archive_dir is unset.
func (c *Config) ArchiveDirectory() string {
	if c.Output.ArchiveDir != "" {
		return c.Output.ArchiveDir
	}
	return filepath.Join(DataDirectory(), "archive")
}
