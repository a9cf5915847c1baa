// Package config handles dialog preset loading, validation, and
// management for imeshim. A preset carries the host-side defaults for a
// dialog session: title, placeholder, length bound, input flags, and
// display hints.
package config

import (
	"fmt"
	"os"
	"strconv"

	"imeshim/internal/dialog"
	"imeshim/internal/logging"
)

// Version is the current configuration schema version.
const Version = 1

// Config holds the complete imeshim configuration.
type Config struct {
	// Version is the configuration schema version.
	Version int `toml:"version" json:"version" yaml:"version"`

	// Preset holds the dialog session defaults.
	Preset PresetConfig `toml:"preset" json:"preset" yaml:"preset"`

	// Logging configuration.
	Logging LoggingConfig `toml:"logging" json:"logging" yaml:"logging"`
}

// PresetConfig holds the defaults applied to a dialog session.
type PresetConfig struct {
	// Title is the dialog title; empty means no title.
	Title string `toml:"title" json:"title" yaml:"title"`

	// Placeholder is shown while the text is empty.
	Placeholder string `toml:"placeholder" json:"placeholder" yaml:"placeholder"`

	// MaxTextLen is the maximum text length in native code units.
	MaxTextLen int `toml:"max_text_len" json:"max_text_len" yaml:"max_text_len"`

	// MultiLine allows line breaks in the text.
	MultiLine bool `toml:"multi_line" json:"multi_line" yaml:"multi_line"`

	// Numeric restricts the text to ASCII digits.
	Numeric bool `toml:"numeric" json:"numeric" yaml:"numeric"`

	// Type is the dialog input type hint:
	// "default", "basic-latin", "url", "mail", or "number".
	Type string `toml:"type" json:"type" yaml:"type"`

	// EnterLabel is the confirm-key label hint:
	// "default", "send", "search", or "go".
	EnterLabel string `toml:"enter_label" json:"enter_label" yaml:"enter_label"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `toml:"level" json:"level" yaml:"level"`

	// Format is "text" or "json".
	Format string `toml:"format" json:"format" yaml:"format"`

	// Output is "stdout" or "stderr".
	Output string `toml:"output" json:"output" yaml:"output"`
}

var dialogTypes = map[string]dialog.Type{
	"default":     dialog.TypeDefault,
	"basic-latin": dialog.TypeBasicLatin,
	"url":         dialog.TypeURL,
	"mail":        dialog.TypeMail,
	"number":      dialog.TypeNumber,
}

var enterLabels = map[string]dialog.EnterLabel{
	"default": dialog.EnterDefault,
	"send":    dialog.EnterSend,
	"search":  dialog.EnterSearch,
	"go":      dialog.EnterGo,
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Version <= 0 || c.Version > Version {
		return fmt.Errorf("unsupported config version %d", c.Version)
	}
	p := &c.Preset
	if p.MaxTextLen <= 0 || p.MaxTextLen > dialog.MaxTextLenCap {
		return fmt.Errorf("preset.max_text_len must be in 1..%d, got %d", dialog.MaxTextLenCap, p.MaxTextLen)
	}
	if _, ok := dialogTypes[p.Type]; !ok {
		return fmt.Errorf("unknown preset.type %q", p.Type)
	}
	if _, ok := enterLabels[p.EnterLabel]; !ok {
		return fmt.Errorf("unknown preset.enter_label %q", p.EnterLabel)
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	if _, err := logging.ParseFormat(c.Logging.Format); err != nil {
		return fmt.Errorf("logging.format: %w", err)
	}
	return nil
}

// ApplyEnvOverrides applies IMESHIM_* environment variables over the
// loaded values.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("IMESHIM_TITLE"); v != "" {
		c.Preset.Title = v
	}
	if v := os.Getenv("IMESHIM_PLACEHOLDER"); v != "" {
		c.Preset.Placeholder = v
	}
	if v := os.Getenv("IMESHIM_MAX_TEXT_LEN"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Preset.MaxTextLen = n
		}
	}
	if v := os.Getenv("IMESHIM_MULTI_LINE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Preset.MultiLine = b
		}
	}
	if v := os.Getenv("IMESHIM_NUMERIC"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Preset.Numeric = b
		}
	}
	if v := os.Getenv("IMESHIM_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("IMESHIM_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
}

// DialogConfig builds a dialog.Config from the preset. Filter callbacks
// are supplied per session by the caller, not by configuration.
func (c *Config) DialogConfig() (dialog.Config, error) {
	if err := c.Validate(); err != nil {
		return dialog.Config{}, err
	}
	return dialog.Config{
		MultiLine:   c.Preset.MultiLine,
		Numeric:     c.Preset.Numeric,
		Type:        dialogTypes[c.Preset.Type],
		EnterLabel:  enterLabels[c.Preset.EnterLabel],
		Title:       c.Preset.Title,
		Placeholder: c.Preset.Placeholder,
		MaxTextLen:  c.Preset.MaxTextLen,
	}, nil
}

// LoggingSetup builds a logging.Config from the logging section.
func (c *Config) LoggingSetup() (*logging.Config, error) {
	level, err := logging.ParseLevel(c.Logging.Level)
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseFormat(c.Logging.Format)
	if err != nil {
		return nil, err
	}
	return &logging.Config{
		Level:     level,
		Format:    format,
		Output:    c.Logging.Output,
		Component: "imeshim",
	}, nil
}
