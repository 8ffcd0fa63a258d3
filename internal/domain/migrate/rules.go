package migrate

import (
	"strings"

	"github.com/abdidvp/fixie2nunit/internal/domain/syntax"
)

// IsTestCandidate reports whether m looks like a test method. The checks run
// in a fixed order and the first failing one decides.
func IsTestCandidate(m *syntax.MethodDecl, conv Conventions) bool {
	if !syntax.HasModifier(m.Modifiers, conv.PublicModifier) {
		return false
	}
	if !returnsVoidOrTask(m, conv) {
		return false
	}
	if len(m.Parameters) > 0 {
		return false
	}
	return !syntax.HasAttributes(m.Attributes)
}

// returnsVoidOrTask matches on the written type text only, so any type whose
// name contains the task marker passes for an async method.
func returnsVoidOrTask(m *syntax.MethodDecl, conv Conventions) bool {
	ret := strings.TrimSpace(m.ReturnType.Text)
	if ret == conv.VoidType {
		return true
	}
	return syntax.HasModifier(m.Modifiers, conv.AsyncModifier) && strings.Contains(ret, conv.TaskMarker)
}

// ClassifyMethod adds the test attribute to a test candidate. Any other
// method is returned as is.
func ClassifyMethod(m *syntax.MethodDecl, conv Conventions) *syntax.MethodDecl {
	if !IsTestCandidate(m, conv) {
		return m
	}
	return m.WithAttributes(syntax.NewAttributeList(conv.TestAttribute))
}

// IsFixture reports whether the class follows the test class naming convention.
func IsFixture(c *syntax.ClassDecl, conv Conventions) bool {
	return strings.HasSuffix(c.Name, conv.ClassSuffix)
}

// ClassifyClass marks a fixture class and classifies every method below it,
// nested classes included. A class that already carries an attribute keeps its
// attributes, but its methods are still classified.
func ClassifyClass(c *syntax.ClassDecl, conv Conventions) *syntax.ClassDecl {
	if !IsFixture(c, conv) {
		return c
	}
	out := c
	if !syntax.HasAttributes(c.Attributes) {
		out = c.WithAttributes(syntax.NewAttributeList(conv.FixtureAttribute))
	}
	return syntax.Transform(out, methodRule(conv)).(*syntax.ClassDecl)
}

// Classify runs the class rule over every class in u, innermost first. The
// returned unit is u itself when no rule fired.
func Classify(u *syntax.CompilationUnit, conv Conventions) *syntax.CompilationUnit {
	classify := methodRule(conv)
	return syntax.TransformUnit(u, func(n syntax.Node) syntax.Node {
		switch n := n.(type) {
		case *syntax.ClassDecl:
			return ClassifyClass(n, conv)
		case *syntax.MethodDecl:
			if conv.Scope == ScopeAll {
				return classify(n)
			}
		}
		return n
	})
}

func methodRule(conv Conventions) syntax.PostFunc {
	return func(n syntax.Node) syntax.Node {
		if m, ok := n.(*syntax.MethodDecl); ok {
			return ClassifyMethod(m, conv)
		}
		return n
	}
}

// HasUsing reports whether u imports ns at file level or inside any
// namespace declaration.
func HasUsing(u *syntax.CompilationUnit, ns syntax.QualifiedName) bool {
	found := false
	syntax.Inspect(u, func(n syntax.Node) bool {
		if found {
			return false
		}
		switch n := n.(type) {
		case *syntax.UsingDirective:
			found = n.Imports(ns)
		case *syntax.ClassDecl, *syntax.TypeDecl, *syntax.MethodDecl:
			return false
		}
		return true
	})
	return found
}

// EnsureUsing appends a using directive for ns unless u already imports it.
// The boolean reports whether a directive was added.
func EnsureUsing(u *syntax.CompilationUnit, ns syntax.QualifiedName) (*syntax.CompilationUnit, bool) {
	if HasUsing(u, ns) {
		return u, false
	}
	return u.WithUsings(syntax.NewUsingDirective(ns)), true
}
