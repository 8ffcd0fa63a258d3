package parser

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/csharp"

	"github.com/abdidvp/fixie2nunit/internal/domain"
	"github.com/abdidvp/fixie2nunit/internal/domain/syntax"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSharpParser implements domain.SourceParser using tree-sitter.
type CSharpParser struct{}

func New() *CSharpParser {
	return &CSharpParser{}
}

// Parse builds the syntax tree of src. Files with syntax errors are rejected
// so that a partial tree is never rewritten.
func (p *CSharpParser) Parse(ctx context.Context, path string, src []byte) (*syntax.CompilationUnit, error) {
	bom := bytes.HasPrefix(src, utf8BOM)
	if bom {
		src = src[len(utf8BOM):]
	}

	// A parser is not safe for concurrent use, so every call gets its own.
	sp := sitter.NewParser()
	sp.SetLanguage(csharp.GetLanguage())

	tree, err := sp.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return nil, fmt.Errorf("parsing %s: empty tree", path)
	}
	if root.HasError() {
		return nil, fmt.Errorf("%w in %s near line %d", domain.ErrSyntax, path, firstErrorLine(root))
	}

	b := &builder{src: src}
	unit := &syntax.CompilationUnit{
		Path:   path,
		Source: src,
		BOM:    bom,
	}
	unit.Usings, unit.Members = b.scope(root, nil)
	unit.UsingAnchor = b.usingAnchor(root)
	unit.Literals = b.literals(root, nil)
	return unit, nil
}

type builder struct {
	src []byte
}

func (b *builder) text(n *sitter.Node) string {
	return n.Content(b.src)
}

func span(n *sitter.Node) syntax.Span {
	return syntax.Span{Start: int(n.StartByte()), End: int(n.EndByte())}
}

func sameNode(a, b *sitter.Node) bool {
	return a != nil && b != nil &&
		a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Type() == b.Type()
}

// scope collects the usings and members declared directly in n. skip is the
// name node of a file-scoped namespace, which is a child of the node itself.
func (b *builder) scope(n *sitter.Node, skip *sitter.Node) ([]*syntax.UsingDirective, []syntax.Node) {
	var (
		usings  []*syntax.UsingDirective
		members []syntax.Node
	)
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if sameNode(child, skip) {
			continue
		}
		switch child.Type() {
		case "comment":
		case "using_directive":
			usings = append(usings, b.using(child))
		case "namespace_declaration", "file_scoped_namespace_declaration":
			members = append(members, b.namespace(child))
		default:
			members = append(members, b.member(child))
		}
	}
	return usings, members
}

// member converts a declaration that may appear in a type body.
func (b *builder) member(n *sitter.Node) syntax.Node {
	switch n.Type() {
	case "class_declaration":
		return b.class(n)
	case "struct_declaration", "record_declaration", "record_struct_declaration", "interface_declaration":
		return b.typeDecl(n)
	case "method_declaration":
		return b.method(n)
	default:
		return syntax.ParsedOpaque(n.Type(), span(n))
	}
}

func (b *builder) namespace(n *sitter.Node) *syntax.NamespaceDecl {
	decl := syntax.NamespaceDecl{
		FileScoped: n.Type() == "file_scoped_namespace_declaration",
	}
	name := n.ChildByFieldName("name")
	if name == nil {
		name = firstNamedOfType(n, "identifier", "qualified_name")
	}
	if name != nil {
		decl.Name = syntax.ParseQualifiedName(b.text(name))
	}

	if decl.FileScoped {
		decl.Usings, decl.Members = b.scope(n, name)
	} else if body := bodyOf(n); body != nil {
		decl.Usings, decl.Members = b.scope(body, nil)
	}
	return syntax.ParsedNamespace(decl, span(n))
}

func (b *builder) class(n *sitter.Node) *syntax.ClassDecl {
	decl := syntax.ClassDecl{}
	if name := n.ChildByFieldName("name"); name != nil {
		decl.Name = b.text(name)
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "attribute_list":
			decl.Attributes = append(decl.Attributes, b.attributeList(child))
		case "modifier":
			decl.Modifiers = append(decl.Modifiers, strings.TrimSpace(b.text(child)))
		}
	}
	decl.Members = b.body(n)
	return syntax.ParsedClass(decl, span(n))
}

// typeDecl keeps a struct, record or interface only as a container, so the
// rules can reach classes and methods declared inside it.
func (b *builder) typeDecl(n *sitter.Node) *syntax.TypeDecl {
	decl := syntax.TypeDecl{Kind: declKeyword(n)}
	if name := n.ChildByFieldName("name"); name != nil {
		decl.Name = b.text(name)
	} else if id := firstNamedOfType(n, "identifier"); id != nil {
		decl.Name = b.text(id)
	}
	decl.Members = b.body(n)
	return syntax.ParsedType(decl, span(n))
}

// body converts the members of a type body. Positional records without a
// body have none.
func (b *builder) body(n *sitter.Node) []syntax.Node {
	body := bodyOf(n)
	if body == nil {
		return nil
	}
	var members []syntax.Node
	for i := 0; i < int(body.NamedChildCount()); i++ {
		child := body.NamedChild(i)
		if child.Type() == "comment" {
			continue
		}
		members = append(members, b.member(child))
	}
	return members
}

// declKeyword joins the keyword tokens of the declaration, e.g. "struct" or
// "record struct". Attribute arguments are nested deeper and never match.
func declKeyword(n *sitter.Node) string {
	var words []string
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child.IsNamed() {
			continue
		}
		switch child.Type() {
		case "struct", "interface", "record", "class":
			words = append(words, child.Type())
		}
	}
	if len(words) == 0 {
		return strings.TrimSuffix(n.Type(), "_declaration")
	}
	return strings.Join(words, " ")
}

func (b *builder) method(n *sitter.Node) *syntax.MethodDecl {
	decl := syntax.MethodDecl{}
	name := n.ChildByFieldName("name")
	if name != nil {
		decl.Name = b.text(name)
	}

	ret := n.ChildByFieldName("returns")
	if ret == nil {
		ret = n.ChildByFieldName("type")
	}

	var beforeName *sitter.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "attribute_list":
			decl.Attributes = append(decl.Attributes, b.attributeList(child))
		case "modifier":
			decl.Modifiers = append(decl.Modifiers, strings.TrimSpace(b.text(child)))
		case "parameter_list":
			decl.Parameters = b.parameters(child)
		case "comment":
		default:
			if name != nil && child.StartByte() < name.StartByte() {
				beforeName = child
			}
		}
	}
	if ret == nil {
		// Older grammars expose the return type only by position.
		ret = beforeName
	}
	if ret != nil {
		decl.ReturnType = syntax.TypeRef{Text: b.text(ret)}
	}
	return syntax.ParsedMethod(decl, span(n))
}

func (b *builder) parameters(n *sitter.Node) []syntax.Parameter {
	var params []syntax.Parameter
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() == "comment" {
			continue
		}
		p := syntax.Parameter{}
		if t := child.ChildByFieldName("type"); t != nil {
			p.Type = b.text(t)
		}
		if id := child.ChildByFieldName("name"); id != nil {
			p.Name = b.text(id)
		} else {
			p.Name = b.text(child)
		}
		params = append(params, p)
	}
	return params
}

func (b *builder) attributeList(n *sitter.Node) *syntax.AttributeList {
	list := syntax.AttributeList{}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "attribute_target_specifier":
			list.Target = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(b.text(child)), ":"))
		case "attribute":
			list.Attributes = append(list.Attributes, b.attribute(child))
		}
	}
	return syntax.ParsedAttributeList(list, span(n))
}

func (b *builder) attribute(n *sitter.Node) syntax.Attribute {
	attr := syntax.Attribute{}
	name := n.ChildByFieldName("name")
	if name == nil && n.NamedChildCount() > 0 {
		name = n.NamedChild(0)
	}
	if name != nil {
		attr.Name = syntax.ParseQualifiedName(b.text(name))
	}
	attr.HasArgs = firstNamedOfType(n, "attribute_argument_list") != nil
	return attr
}

// using reads the directive from its text, which stays stable across grammar
// revisions that reshaped the alias and static forms.
func (b *builder) using(n *sitter.Node) *syntax.UsingDirective {
	return syntax.ParsedUsing(parseUsing(b.text(n)), span(n))
}

func parseUsing(text string) syntax.UsingDirective {
	var d syntax.UsingDirective
	rest := strings.TrimSpace(text)
	rest = strings.TrimSpace(strings.TrimSuffix(rest, ";"))

	if r, ok := cutWord(rest, "global"); ok {
		d.Global, rest = true, r
	}
	rest, _ = cutWord(rest, "using")
	if r, ok := cutWord(rest, "static"); ok {
		d.Static, rest = true, r
	}
	if r, ok := cutWord(rest, "unsafe"); ok {
		rest = r
	}
	if alias, target, ok := strings.Cut(rest, "="); ok {
		d.Alias = strings.TrimSpace(alias)
		rest = target
	}
	d.Namespace = syntax.ParseQualifiedName(rest)
	return d
}

// cutWord removes a leading keyword followed by whitespace.
func cutWord(s, word string) (string, bool) {
	if !strings.HasPrefix(s, word) {
		return s, false
	}
	rest := s[len(word):]
	if rest == "" || (rest[0] != ' ' && rest[0] != '\t' && rest[0] != '\n' && rest[0] != '\r') {
		return s, false
	}
	return strings.TrimSpace(rest), true
}

// usingAnchor is the start of the first declaration, moved up over comments
// attached to it. Extern aliases stay above the anchor.
func (b *builder) usingAnchor(root *sitter.Node) int {
	count := int(root.NamedChildCount())
	first := -1
	for i := 0; i < count; i++ {
		switch root.NamedChild(i).Type() {
		case "comment", "extern_alias_directive":
			continue
		}
		first = i
		break
	}
	if first < 0 {
		return len(b.src)
	}

	anchor := root.NamedChild(first)
	for i := first - 1; i >= 0; i-- {
		prev := root.NamedChild(i)
		if prev.Type() != "comment" || prev.EndPoint().Row+1 < anchor.StartPoint().Row {
			break
		}
		anchor = prev
	}
	return int(anchor.StartByte())
}

// literals collects string literals that span several lines.
func (b *builder) literals(n *sitter.Node, acc []syntax.Span) []syntax.Span {
	switch n.Type() {
	case "verbatim_string_literal", "raw_string_literal", "interpolated_string_expression", "string_literal":
		if n.StartPoint().Row != n.EndPoint().Row {
			acc = append(acc, span(n))
		}
		return acc
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		acc = b.literals(n.Child(i), acc)
	}
	return acc
}

func bodyOf(n *sitter.Node) *sitter.Node {
	if body := n.ChildByFieldName("body"); body != nil {
		return body
	}
	return firstNamedOfType(n, "declaration_list")
}

func firstNamedOfType(n *sitter.Node, types ...string) *sitter.Node {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		for _, t := range types {
			if child.Type() == t {
				return child
			}
		}
	}
	return nil
}

func firstErrorLine(n *sitter.Node) int {
	if n.Type() == "ERROR" || n.IsMissing() {
		return int(n.StartPoint().Row) + 1
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if !child.HasError() && !child.IsMissing() {
			continue
		}
		if line := firstErrorLine(child); line > 0 {
			return line
		}
	}
	return 0
}
