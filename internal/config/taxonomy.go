package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fairyhunter13/job-matcher/internal/skills"
)

// LoadSkillTaxonomy reads the taxonomy at path, or returns the built-in one when path is empty.
func LoadSkillTaxonomy(path string) (*skills.Taxonomy, error) {
	if path == "" {
		return skills.DefaultTaxonomy(), nil
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("op=config.LoadSkillTaxonomy: failed to get absolute path: %w", err)
	}
	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("op=config.LoadSkillTaxonomy: taxonomy file not found: %s", absPath)
	}
	// #nosec G304 -- path comes from operator configuration
	content, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("op=config.LoadSkillTaxonomy: failed to read taxonomy file: %w", err)
	}
	tax, err := skills.ParseTaxonomy(content)
	if err != nil {
		return nil, fmt.Errorf("op=config.LoadSkillTaxonomy: %w", err)
	}
	return tax, nil
}
