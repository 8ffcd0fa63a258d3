package migrate

import (
	"strings"

	"github.com/abdidvp/fixie2nunit/internal/domain/syntax"
)

// ChangeKind names what a rule added.
type ChangeKind string

const (
	ChangeFixture ChangeKind = "fixture"
	ChangeTest    ChangeKind = "test"
	ChangeUsing   ChangeKind = "using"
)

// Change is one attribute or directive added by the rules.
type Change struct {
	Kind      ChangeKind `json:"kind"`
	Class     string     `json:"class,omitempty"`
	Method    string     `json:"method,omitempty"`
	Attribute string     `json:"attribute,omitempty"`
	Line      int        `json:"line,omitempty"`
}

// Changes lists the synthetic nodes of u in source order. Class names of
// nested classes are joined with dots.
func Changes(u *syntax.CompilationUnit) []Change {
	var out []Change
	for _, d := range u.Usings {
		if !d.Span().IsValid() {
			out = append(out, Change{Kind: ChangeUsing, Attribute: d.Namespace.String()})
		}
	}
	collectChanges(u, u.Members, nil, &out)
	return out
}

func collectChanges(u *syntax.CompilationUnit, members []syntax.Node, classes []string, out *[]Change) {
	for _, m := range members {
		switch m := m.(type) {
		case *syntax.NamespaceDecl:
			collectChanges(u, m.Members, classes, out)
		case *syntax.ClassDecl:
			path := append(append([]string(nil), classes...), m.Name)
			for _, name := range syntheticAttributes(m.Attributes) {
				*out = append(*out, Change{
					Kind:      ChangeFixture,
					Class:     strings.Join(path, "."),
					Attribute: name,
					Line:      u.Line(m.Span().Start),
				})
			}
			collectChanges(u, m.Members, path, out)
		case *syntax.TypeDecl:
			collectChanges(u, m.Members, append(append([]string(nil), classes...), m.Name), out)
		case *syntax.MethodDecl:
			for _, name := range syntheticAttributes(m.Attributes) {
				*out = append(*out, Change{
					Kind:      ChangeTest,
					Class:     strings.Join(classes, "."),
					Method:    m.Name,
					Attribute: name,
					Line:      u.Line(m.Span().Start),
				})
			}
		}
	}
}

func syntheticAttributes(lists []*syntax.AttributeList) []string {
	var names []string
	for _, l := range lists {
		if l.Span().IsValid() {
			continue
		}
		for _, a := range l.Attributes {
			names = append(names, a.Name.String())
		}
	}
	return names
}
