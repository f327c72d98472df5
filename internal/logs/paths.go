package logs

import (
	"os"
	"path/filepath"
	"runtime"
)

// DefaultLogDir returns the standard log directory for the current OS:
// %LOCALAPPDATA%\secretsctl\logs on Windows, ~/Library/Logs/secretsctl on
// macOS, ~/.local/var/log/secretsctl elsewhere.
func DefaultLogDir() (string, error) {
	switch runtime.GOOS {
	case "windows":
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			return filepath.Join(localAppData, "secretsctl", "logs"), nil
		}
	case "darwin":
		if homeDir, err := os.UserHomeDir(); err == nil {
			return filepath.Join(homeDir, "Library", "Logs", "secretsctl"), nil
		}
	default:
		if homeDir, err := os.UserHomeDir(); err == nil {
			return filepath.Join(homeDir, ".local", "var", "log", "secretsctl"), nil
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".secretsctl", "logs"), nil
}
