package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	configDirName    = ".zoomtype"
	settingsFileName = "settings.yaml"
	settingsVersion  = 1
)

type settingsFile struct {
	Version int               `yaml:"version"`
	Bool    map[string]bool   `yaml:"bool,omitempty"`
	Long    map[string]int64  `yaml:"long,omitempty"`
	String  map[string]string `yaml:"string,omitempty"`
}

// GetConfigDir returns the per-user configuration directory.
func GetConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return configDirName
	}
	return filepath.Join(home, configDirName)
}

// DefaultSettingsPath returns the settings file inside GetConfigDir.
func DefaultSettingsPath() string {
	return filepath.Join(GetConfigDir(), settingsFileName)
}

// DefaultTrainingDir returns where user training text is kept.
func DefaultTrainingDir() string {
	return filepath.Join(GetConfigDir(), "training")
}

// GetModelCachePath returns the GOB snapshot path for an alphabet's model.
func GetModelCachePath(alphabetID string) string {
	return filepath.Join(GetConfigDir(), "models", sanitizeFileName(alphabetID)+".gob")
}

func sanitizeFileName(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}

// Load reads settings from path on top of the defaults. A missing file is
// not an error; the returned store remembers path for Save.
func Load(path string) (*Store, error) {
	s := NewStore()
	s.path = path
	if s.GetString(StringUserLoc) == "" {
		s.SetString(StringUserLoc, DefaultTrainingDir())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}

	var f settingsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse settings %s: %w", path, err)
	}
	s.apply(f)
	return s, nil
}

func (s *Store) apply(f settingsFile) {
	// Unknown keys and kind mismatches are skipped so older files still load.
	for k, v := range f.Bool {
		if p, ok := Lookup(k); ok && p.Persistent() {
			s.SetBool(p, v)
		}
	}
	for k, v := range f.Long {
		if p, ok := Lookup(k); ok && p.Persistent() {
			s.SetLong(p, v)
		}
	}
	for k, v := range f.String {
		if p, ok := Lookup(k); ok && p.Persistent() {
			s.SetString(p, v)
		}
	}
}

// Path returns the file the store was loaded from, if any.
func (s *Store) Path() string {
	return s.path
}

// Save writes persistent parameters to the path given to Load.
func (s *Store) Save() error {
	if s.path == "" {
		return fmt.Errorf("settings path not set")
	}
	return s.SaveTo(s.path)
}

// SaveTo writes persistent parameters to path.
func (s *Store) SaveTo(path string) error {
	f := settingsFile{
		Version: settingsVersion,
		Bool:    make(map[string]bool),
		Long:    make(map[string]int64),
		String:  make(map[string]string),
	}
	for _, p := range Params() {
		if !p.Persistent() {
			continue
		}
		switch p.Kind() {
		case KindBool:
			f.Bool[p.Key()] = s.GetBool(p)
		case KindLong:
			f.Long[p.Key()] = s.GetLong(p)
		case KindString:
			f.String[p.Key()] = s.GetString(p)
		}
	}

	data, err := yaml.Marshal(&f)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}
