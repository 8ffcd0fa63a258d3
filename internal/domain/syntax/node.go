// Package syntax is the immutable tree model of a parsed C# source file.
//
// Only the declaration shapes the migration rules care about are modelled in
// detail: using directives, namespaces, classes, methods and their attribute
// lists. Structs, records and interfaces are kept as TypeDecl nodes so that
// declarations nested in their bodies are still reached. Every other member is
// kept as an Opaque node so that member order is preserved. Nodes produced by the parser carry the byte span they were read
// from; nodes built by rewrite rules are synthetic and have no span. Printing a
// tree reproduces the original bytes and inserts the synthetic nodes.
package syntax

import (
	"bytes"
	"strings"
)

// Span is a half-open byte range into CompilationUnit.Source.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// NoSpan marks a synthetic node.
var NoSpan = Span{Start: -1, End: -1}

// IsValid reports whether the span points into the original source. Parsed
// nodes are never empty, so a zero Span is not valid either.
func (s Span) IsValid() bool {
	return s.Start >= 0 && s.End > s.Start
}

// Node is implemented by every tree node kind.
type Node interface {
	Span() Span
	node()
}

// CompilationUnit is the tree of one source file.
type CompilationUnit struct {
	Path    string
	Source  []byte
	BOM     bool
	Usings  []*UsingDirective
	Members []Node

	// UsingAnchor is where a using directive goes when the unit has none.
	UsingAnchor int
	// Literals are multi-line string literals whose content must not be reformatted.
	Literals []Span
}

// UsingDirective is a using/import directive.
type UsingDirective struct {
	Global    bool
	Static    bool
	Alias     string
	Namespace QualifiedName
	span      Span
}

// NamespaceDecl is a block or file-scoped namespace declaration.
type NamespaceDecl struct {
	Name       QualifiedName
	FileScoped bool
	Usings     []*UsingDirective
	Members    []Node
	span       Span
}

// ClassDecl is a class declaration.
type ClassDecl struct {
	Name       string
	Modifiers  []string
	Attributes []*AttributeList
	Members    []Node
	span       Span
}

// TypeDecl is a struct, record or interface declaration. Kind is the
// declaration keyword as written, e.g. "struct" or "record struct".
type TypeDecl struct {
	Kind    string
	Name    string
	Members []Node
	span    Span
}

// MethodDecl is a method declaration.
type MethodDecl struct {
	Name       string
	Modifiers  []string
	ReturnType TypeRef
	Parameters []Parameter
	Attributes []*AttributeList
	span       Span
}

// AttributeList is one bracketed attribute section, e.g. [Test] or [assembly: X, Y].
type AttributeList struct {
	Target     string
	Attributes []Attribute
	span       Span
}

// Opaque is any member the rules never look into.
type Opaque struct {
	Kind string
	span Span
}

// Attribute is a single attribute reference inside a list.
type Attribute struct {
	Name    QualifiedName
	HasArgs bool
}

// Parameter is a single formal parameter.
type Parameter struct {
	Type string
	Name string
}

// TypeRef is the textual form of a type as written in source.
type TypeRef struct {
	Text string
}

func (u *CompilationUnit) Span() Span { return Span{Start: 0, End: len(u.Source)} }
func (u *UsingDirective) Span() Span  { return u.span }
func (n *NamespaceDecl) Span() Span   { return n.span }
func (c *ClassDecl) Span() Span       { return c.span }
func (t *TypeDecl) Span() Span        { return t.span }
func (m *MethodDecl) Span() Span      { return m.span }
func (a *AttributeList) Span() Span   { return a.span }
func (o *Opaque) Span() Span          { return o.span }

func (*CompilationUnit) node() {}
func (*UsingDirective) node()  {}
func (*NamespaceDecl) node()   {}
func (*ClassDecl) node()       {}
func (*TypeDecl) node()        {}
func (*MethodDecl) node()      {}
func (*AttributeList) node()   {}
func (*Opaque) node()          {}

// NewUsingDirective returns a synthetic plain using directive for ns.
func NewUsingDirective(ns QualifiedName) *UsingDirective {
	return &UsingDirective{Namespace: ns, span: NoSpan}
}

// NewAttributeList returns a synthetic list holding argument-less attributes.
func NewAttributeList(names ...string) *AttributeList {
	l := &AttributeList{span: NoSpan}
	for _, n := range names {
		l.Attributes = append(l.Attributes, Attribute{Name: ParseQualifiedName(n)})
	}
	return l
}

// ParsedUsing builds a using directive read from source at span.
func ParsedUsing(u UsingDirective, span Span) *UsingDirective {
	u.span = span
	return &u
}

// ParsedNamespace builds a namespace declaration read from source at span.
func ParsedNamespace(n NamespaceDecl, span Span) *NamespaceDecl {
	n.span = span
	return &n
}

// ParsedClass builds a class declaration read from source at span.
func ParsedClass(c ClassDecl, span Span) *ClassDecl {
	c.span = span
	return &c
}

// ParsedType builds a struct, record or interface declaration read from source at span.
func ParsedType(t TypeDecl, span Span) *TypeDecl {
	t.span = span
	return &t
}

// ParsedMethod builds a method declaration read from source at span.
func ParsedMethod(m MethodDecl, span Span) *MethodDecl {
	m.span = span
	return &m
}

// ParsedAttributeList builds an attribute list read from source at span.
func ParsedAttributeList(l AttributeList, span Span) *AttributeList {
	l.span = span
	return &l
}

// ParsedOpaque builds an opaque member read from source at span.
func ParsedOpaque(kind string, span Span) *Opaque {
	return &Opaque{Kind: kind, span: span}
}

// String renders the directive as C# source.
func (u *UsingDirective) String() string {
	var b strings.Builder
	if u.Global {
		b.WriteString("global ")
	}
	b.WriteString("using ")
	if u.Static {
		b.WriteString("static ")
	}
	if u.Alias != "" {
		b.WriteString(u.Alias)
		b.WriteString(" = ")
	}
	b.WriteString(u.Namespace.String())
	b.WriteString(";")
	return b.String()
}

// Imports reports whether the directive brings the namespace ns into scope.
// Aliased and static usings import a single name, not the namespace.
func (u *UsingDirective) Imports(ns QualifiedName) bool {
	return !u.Static && u.Alias == "" && u.Namespace.Equal(ns)
}

// String renders the list as C# source.
func (a *AttributeList) String() string {
	var b strings.Builder
	b.WriteByte('[')
	if a.Target != "" {
		b.WriteString(a.Target)
		b.WriteString(": ")
	}
	for i, attr := range a.Attributes {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(attr.Name.String())
	}
	b.WriteByte(']')
	return b.String()
}

// HasAttributes reports whether any list in lists holds at least one attribute.
func HasAttributes(lists []*AttributeList) bool {
	for _, l := range lists {
		if len(l.Attributes) > 0 {
			return true
		}
	}
	return false
}

// HasModifier reports whether mods contains mod.
func HasModifier(mods []string, mod string) bool {
	for _, m := range mods {
		if m == mod {
			return true
		}
	}
	return false
}

// WithAttributes returns a copy of c with lists appended after its own.
func (c *ClassDecl) WithAttributes(lists ...*AttributeList) *ClassDecl {
	out := *c
	out.Attributes = appendCopy(c.Attributes, lists...)
	return &out
}

// WithAttributes returns a copy of m with lists appended after its own.
func (m *MethodDecl) WithAttributes(lists ...*AttributeList) *MethodDecl {
	out := *m
	out.Attributes = appendCopy(m.Attributes, lists...)
	return &out
}

// WithUsings returns a copy of u with directives appended after its own.
func (u *CompilationUnit) WithUsings(directives ...*UsingDirective) *CompilationUnit {
	out := *u
	out.Usings = appendCopy(u.Usings, directives...)
	return &out
}

// Line returns the 1-based line number of byte offset off.
func (u *CompilationUnit) Line(off int) int {
	if off < 0 {
		return 0
	}
	if off > len(u.Source) {
		off = len(u.Source)
	}
	return bytes.Count(u.Source[:off], []byte{'\n'}) + 1
}

func appendCopy[T any](base []T, extra ...T) []T {
	out := make([]T, 0, len(base)+len(extra))
	out = append(out, base...)
	return append(out, extra...)
}
