package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abdidvp/fixie2nunit/internal/domain/migrate"
	"github.com/abdidvp/fixie2nunit/internal/domain/syntax"
)

// Target identifies the test framework the sources are migrated to.
type Target string

const (
	TargetNUnit  Target = "nunit"
	TargetMSTest Target = "mstest"
)

// ValidTargets enumerates all recognized targets.
var ValidTargets = []Target{TargetNUnit, TargetMSTest}

// DefaultTestProjectSegment is the project name segment that marks a test
// project in solution mode.
const DefaultTestProjectSegment = "Tests"

// ProjectConfig holds configuration loaded from .fixie2nunit.yaml.
type ProjectConfig struct {
	Target             Target              `yaml:"target"               json:"target,omitempty"`
	Overrides          ConventionOverrides `yaml:"conventions"          json:"conventions,omitempty"`
	TestProjectSegment string              `yaml:"test_project_segment" json:"test_project_segment,omitempty"`
	MethodScope        migrate.Scope       `yaml:"method_scope"         json:"method_scope,omitempty"`
	ExcludePaths       []string            `yaml:"exclude_paths"        json:"exclude_paths,omitempty"`
	Formatter          FormatterConfig     `yaml:"formatter"            json:"formatter,omitempty"`
}

// ConventionOverrides replaces individual tokens of the target preset.
// Empty fields keep the preset value.
type ConventionOverrides struct {
	ClassSuffix      string `yaml:"class_suffix,omitempty"      json:"class_suffix,omitempty"`
	FixtureAttribute string `yaml:"fixture_attribute,omitempty" json:"fixture_attribute,omitempty"`
	TestAttribute    string `yaml:"test_attribute,omitempty"    json:"test_attribute,omitempty"`
	Namespace        string `yaml:"namespace,omitempty"         json:"namespace,omitempty"`
	TaskMarker       string `yaml:"task_marker,omitempty"       json:"task_marker,omitempty"`
}

// FormatterConfig controls the formatting pass.
type FormatterConfig struct {
	Disabled bool `yaml:"disabled" json:"disabled,omitempty"`
	// Command, when set, is run with the source on stdin and must print the
	// formatted source on stdout. The built-in whitespace formatter is used otherwise.
	Command []string `yaml:"command" json:"command,omitempty"`
}

// DefaultConfig returns the NUnit configuration.
func DefaultConfig() ProjectConfig {
	return DefaultConfigForTarget(TargetNUnit)
}

// DefaultConfigForTarget returns the defaults for a target.
func DefaultConfigForTarget(t Target) ProjectConfig {
	if t == "" {
		t = TargetNUnit
	}
	return ProjectConfig{
		Target:             t,
		TestProjectSegment: DefaultTestProjectSegment,
		MethodScope:        migrate.ScopeFixtures,
	}
}

// Validate checks user-supplied values before defaults are merged in.
func (c ProjectConfig) Validate() error {
	if c.Target != "" {
		valid := false
		for _, t := range ValidTargets {
			if c.Target == t {
				valid = true
				break
			}
		}
		if !valid {
			return fmt.Errorf("unknown target %q (valid: nunit, mstest)", c.Target)
		}
	}

	switch c.MethodScope {
	case "", migrate.ScopeFixtures, migrate.ScopeAll:
	default:
		return fmt.Errorf("unknown method_scope %q (valid: fixtures, all)", c.MethodScope)
	}

	if strings.ContainsAny(c.TestProjectSegment, ". ") {
		return fmt.Errorf("test_project_segment %q must be a single name segment", c.TestProjectSegment)
	}

	idents := map[string]string{
		"conventions.class_suffix":      c.Overrides.ClassSuffix,
		"conventions.fixture_attribute": c.Overrides.FixtureAttribute,
		"conventions.test_attribute":    c.Overrides.TestAttribute,
		"conventions.task_marker":       c.Overrides.TaskMarker,
	}
	for name, v := range idents {
		if v != "" && !isIdentifier(v) {
			return fmt.Errorf("%s %q is not an identifier", name, v)
		}
	}
	if ns := c.Overrides.Namespace; ns != "" {
		for _, seg := range strings.Split(ns, ".") {
			if !isIdentifier(seg) {
				return fmt.Errorf("conventions.namespace %q is not a dotted name", ns)
			}
		}
	}

	if c.Formatter.Disabled && len(c.Formatter.Command) > 0 {
		return fmt.Errorf("formatter.command is set but formatter.disabled is true")
	}

	return nil
}

// Conventions resolves the rule tokens: target preset first, then overrides.
func (c ProjectConfig) Conventions() migrate.Conventions {
	conv := migrate.NUnitConventions()
	if c.Target == TargetMSTest {
		conv = migrate.MSTestConventions()
	}

	o := c.Overrides
	if o.ClassSuffix != "" {
		conv.ClassSuffix = o.ClassSuffix
	}
	if o.FixtureAttribute != "" {
		conv.FixtureAttribute = o.FixtureAttribute
	}
	if o.TestAttribute != "" {
		conv.TestAttribute = o.TestAttribute
	}
	if o.Namespace != "" {
		conv.Namespace = syntax.ParseQualifiedName(o.Namespace)
	}
	if o.TaskMarker != "" {
		conv.TaskMarker = o.TaskMarker
	}
	if c.MethodScope != "" {
		conv.Scope = c.MethodScope
	}
	return conv
}

// Fingerprint identifies the settings that decide a file's final content.
// Cached results are only reused under an equal fingerprint.
func (c ProjectConfig) Fingerprint() string {
	data, _ := json.Marshal(struct {
		Conventions migrate.Conventions `json:"conventions"`
		Formatter   FormatterConfig     `json:"formatter"`
	}{c.Conventions(), c.Formatter})
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// IsTestProject reports whether a project name has the test segment, e.g.
// "Shop.Orders.Tests" or "Shop.Tests.Integration".
func (c ProjectConfig) IsTestProject(name string) bool {
	segment := c.TestProjectSegment
	if segment == "" {
		segment = DefaultTestProjectSegment
	}
	for _, part := range strings.Split(name, ".") {
		if part == segment {
			return true
		}
	}
	return false
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
