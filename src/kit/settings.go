package kit

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Settings is the small per-user state that survives restarts. One-shot
// defaults to on, matching the sampler's out-of-the-box behavior.
type Settings struct {
	LastKit    string `yaml:"lastKit"`
	OneShot    bool   `yaml:"oneShot"`
	MidiPrefix string `yaml:"midiPrefix"`
}

func defaultSettings() *Settings {
	return &Settings{OneShot: true}
}

// LoadSettings reads the settings file; a missing file yields defaults.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultSettings(), nil
		}
		return nil, fmt.Errorf("reading settings: %w", err)
	}
	s := defaultSettings()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parsing settings: %w", err)
	}
	return s, nil
}

// Save writes the settings file, creating its directory if needed.
func (s *Settings) Save(path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating settings directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}
	return nil
}
