package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imeshim/internal/dialog"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "zero max text len",
			mutate:  func(c *Config) { c.Preset.MaxTextLen = 0 },
			wantErr: "max_text_len",
		},
		{
			name:    "max text len past cap",
			mutate:  func(c *Config) { c.Preset.MaxTextLen = dialog.MaxTextLenCap + 1 },
			wantErr: "max_text_len",
		},
		{
			name:    "unknown type",
			mutate:  func(c *Config) { c.Preset.Type = "telepathy" },
			wantErr: "preset.type",
		},
		{
			name:    "unknown enter label",
			mutate:  func(c *Config) { c.Preset.EnterLabel = "launch" },
			wantErr: "enter_label",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "loud" },
			wantErr: "logging.level",
		},
		{
			name:    "bad log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: "logging.format",
		},
		{
			name:    "unsupported version",
			mutate:  func(c *Config) { c.Version = Version + 1 },
			wantErr: "version",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("IMESHIM_TITLE", "Sign In")
	t.Setenv("IMESHIM_MAX_TEXT_LEN", "32")
	t.Setenv("IMESHIM_NUMERIC", "true")
	t.Setenv("IMESHIM_LOG_LEVEL", "debug")

	cfg := DefaultConfig()
	cfg.ApplyEnvOverrides()

	assert.Equal(t, "Sign In", cfg.Preset.Title)
	assert.Equal(t, 32, cfg.Preset.MaxTextLen)
	assert.True(t, cfg.Preset.Numeric)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestDialogConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Preset.Title = "Enter name"
	cfg.Preset.Placeholder = "name"
	cfg.Preset.MaxTextLen = 16
	cfg.Preset.Type = "mail"
	cfg.Preset.EnterLabel = "send"

	dc, err := cfg.DialogConfig()
	require.NoError(t, err)

	assert.Equal(t, "Enter name", dc.Title)
	assert.Equal(t, "name", dc.Placeholder)
	assert.Equal(t, 16, dc.MaxTextLen)
	assert.Equal(t, dialog.TypeMail, dc.Type)
	assert.Equal(t, dialog.EnterSend, dc.EnterLabel)

	cfg.Preset.Type = "nope"
	_, err = cfg.DialogConfig()
	require.Error(t, err)
}

func TestLoggingSetup(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Logging.Level = "warn"
	cfg.Logging.Format = "json"

	lc, err := cfg.LoggingSetup()
	require.NoError(t, err)
	assert.Equal(t, "stderr", lc.Output)
}
