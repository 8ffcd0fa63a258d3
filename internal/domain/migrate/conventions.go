// Package migrate holds the rewrite rules that turn name-discovered test
// classes into attribute-marked ones.
package migrate

import "github.com/abdidvp/fixie2nunit/internal/domain/syntax"

// Scope decides which methods the method rule may touch.
type Scope string

const (
	// ScopeFixtures limits the method rule to classes that match the naming
	// convention, including classes nested inside them.
	ScopeFixtures Scope = "fixtures"
	// ScopeAll applies the method rule to every class in the unit.
	ScopeAll Scope = "all"
)

// Conventions names the tokens the rules match on and emit.
type Conventions struct {
	ClassSuffix      string
	FixtureAttribute string
	TestAttribute    string
	Namespace        syntax.QualifiedName
	PublicModifier   string
	AsyncModifier    string
	VoidType         string
	TaskMarker       string
	Scope            Scope
}

// NUnitConventions migrates to NUnit.
func NUnitConventions() Conventions {
	return Conventions{
		ClassSuffix:      "Tests",
		FixtureAttribute: "TestFixture",
		TestAttribute:    "Test",
		Namespace:        syntax.QualifiedName{"NUnit", "Framework"},
		PublicModifier:   "public",
		AsyncModifier:    "async",
		VoidType:         "void",
		TaskMarker:       "Task",
		Scope:            ScopeFixtures,
	}
}

// MSTestConventions migrates to MSTest.
func MSTestConventions() Conventions {
	c := NUnitConventions()
	c.FixtureAttribute = "TestClass"
	c.TestAttribute = "TestMethod"
	c.Namespace = syntax.QualifiedName{"Microsoft", "VisualStudio", "TestTools", "UnitTesting"}
	return c
}
