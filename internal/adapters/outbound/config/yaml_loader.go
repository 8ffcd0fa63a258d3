package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/abdidvp/fixie2nunit/internal/domain"
)

// FileName is the configuration file looked up next to the descriptor.
const FileName = ".fixie2nunit.yaml"

// YAMLLoader implements domain.ConfigLoader by reading .fixie2nunit.yaml.
type YAMLLoader struct{}

// New creates a YAMLLoader.
func New() *YAMLLoader { return &YAMLLoader{} }

// Load reads .fixie2nunit.yaml from rootPath.
// Returns DefaultConfig if the file does not exist.
func (l *YAMLLoader) Load(rootPath string) (domain.ProjectConfig, error) {
	data, err := os.ReadFile(filepath.Join(rootPath, FileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.DefaultConfig(), nil
		}
		return domain.ProjectConfig{}, err
	}

	var cfg domain.ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.ProjectConfig{}, fmt.Errorf("parsing %s: %w", FileName, err)
	}

	// Validate the raw input so typos are not hidden by defaults.
	if err := cfg.Validate(); err != nil {
		return domain.ProjectConfig{}, fmt.Errorf("invalid %s: %w", FileName, err)
	}

	return mergeConfig(domain.DefaultConfigForTarget(cfg.Target), cfg), nil
}

// mergeConfig overlays explicit overrides on top of target defaults.
// Explicit (non-zero) values always win.
func mergeConfig(base, override domain.ProjectConfig) domain.ProjectConfig {
	result := base

	result.Overrides = override.Overrides

	if override.TestProjectSegment != "" {
		result.TestProjectSegment = override.TestProjectSegment
	}
	if override.MethodScope != "" {
		result.MethodScope = override.MethodScope
	}
	if len(override.ExcludePaths) > 0 {
		result.ExcludePaths = override.ExcludePaths
	}

	result.Formatter = override.Formatter

	return result
}
