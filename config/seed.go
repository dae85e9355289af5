package config

import (
	"fmt"
	"os"

	"ruzznotes/internal/note/model"

	"gopkg.in/yaml.v3"
)

type seedFile struct {
	Notes []model.Fields `yaml:"notes"`
}

// LoadSeed reads demo notes from a YAML file with a top-level "notes" list.
// Entries are listed oldest first.
func LoadSeed(path string) ([]model.Fields, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	return f.Notes, nil
}
