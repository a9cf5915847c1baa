package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Version: Version,
		Preset: PresetConfig{
			Title:       "",
			Placeholder: "",
			MaxTextLen:  128,
			MultiLine:   false,
			Numeric:     false,
			Type:        "default",
			EnterLabel:  "default",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// ConfigPath returns the platform-specific default config file path.
func ConfigPath() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "imeshim", "config.toml")
	case "windows":
		appData := os.Getenv("APPDATA")
		return filepath.Join(appData, "imeshim", "config.toml")
	default: // Linux and other Unix
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "imeshim", "config.toml")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "imeshim", "config.toml")
	}
}
