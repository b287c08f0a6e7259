package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

type SettingsConfig interface {
	GetSettingsFile() string
}

type Settings struct{}

var _ SettingsConfig = Settings{}

func (Settings) GetSettingsFile() string {
	return GetEnv("SETTINGS_FILE", "./config/settings.yaml")
}

// AdvancedSettings are the registration policies that can be changed while the server runs
type AdvancedSettings struct {
	AllowRegister     bool   `yaml:"allow_register"`
	UniqueEmail       bool   `yaml:"unique_email"`
	EmailConfirmation bool   `yaml:"email_confirmation"`
	DefaultRole       string `yaml:"default_role"`
}

func DefaultAdvancedSettings() AdvancedSettings {
	return AdvancedSettings{
		AllowRegister:     true,
		UniqueEmail:       true,
		EmailConfirmation: false,
		DefaultRole:       "authenticated",
	}
}

type SettingsProvider interface {
	Advanced(ctx context.Context) (AdvancedSettings, error)
}

// FileSettings reads the YAML file on every call so edits apply to the next request
type FileSettings struct {
	path string
}

var _ SettingsProvider = (*FileSettings)(nil)

func NewFileSettings(path string) *FileSettings {
	return &FileSettings{path: path}
}

func (f *FileSettings) Advanced(_ context.Context) (AdvancedSettings, error) {
	settings := DefaultAdvancedSettings()
	if f.path == "" {
		return settings, nil
	}

	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return settings, nil
	}
	if err != nil {
		return AdvancedSettings{}, fmt.Errorf("reading settings file: %w", err)
	}

	var doc struct {
		Advanced AdvancedSettings `yaml:"advanced"`
	}
	doc.Advanced = settings
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return AdvancedSettings{}, fmt.Errorf("parsing settings file: %w", err)
	}
	return doc.Advanced, nil
}

// StaticSettings always returns the same settings
type StaticSettings AdvancedSettings

func (s StaticSettings) Advanced(_ context.Context) (AdvancedSettings, error) {
	return AdvancedSettings(s), nil
}
