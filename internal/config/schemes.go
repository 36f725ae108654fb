package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/schemegpt/scheme-assistant/internal/core/domain"
)

type schemesFile struct {
	Schemes []domain.SchemeDefinition `yaml:"schemes"`
}

// LoadSchemeTable builds the scheme table used for detection, enrichment and
// filtering. With an empty path the built-in table is returned; otherwise the
// YAML file at path replaces it entirely. File order is preserved because it
// is the detection priority.
func LoadSchemeTable(path string) (*domain.SchemeTable, error) {
	if path == "" {
		return domain.DefaultSchemeTable(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.WrapError(domain.ErrConfiguration, "read schemes file", err)
	}

	var file schemesFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, domain.WrapError(domain.ErrConfiguration, "parse schemes file", err)
	}

	table, err := domain.NewSchemeTable(file.Schemes)
	if err != nil {
		return nil, fmt.Errorf("schemes file %s: %w", path, err)
	}
	return table, nil
}
