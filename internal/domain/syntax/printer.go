package syntax

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ErrUnplaceable is returned by Print for a synthetic node it has no
// insertion rule for.
var ErrUnplaceable = errors.New("synthetic node cannot be placed")

// Print serializes u. Text covered by parsed nodes is copied byte for byte
// from u.Source; synthetic using directives and attribute lists are inserted
// next to their parsed siblings, using the file's indentation and newline style.
func Print(u *CompilationUnit) ([]byte, error) {
	p := &printer{src: u.Source, nl: newlineOf(u.Source)}
	if err := p.unit(u); err != nil {
		return nil, err
	}

	var out bytes.Buffer
	out.Grow(len(u.Source) + 64)
	if u.BOM {
		out.Write(utf8BOM)
	}
	out.Write(p.apply())
	return out.Bytes(), nil
}

type insertion struct {
	pos  int
	seq  int
	text string
}

type printer struct {
	src   []byte
	nl    string
	edits []insertion
}

func (p *printer) insert(pos int, text string) {
	p.edits = append(p.edits, insertion{pos: pos, seq: len(p.edits), text: text})
}

// apply splices all insertions into the source. Insertions at the same
// offset keep the order they were queued in.
func (p *printer) apply() []byte {
	if len(p.edits) == 0 {
		return append([]byte(nil), p.src...)
	}
	sort.SliceStable(p.edits, func(i, j int) bool {
		if p.edits[i].pos != p.edits[j].pos {
			return p.edits[i].pos < p.edits[j].pos
		}
		return p.edits[i].seq < p.edits[j].seq
	})
	var b bytes.Buffer
	last := 0
	for _, e := range p.edits {
		b.Write(p.src[last:e.pos])
		b.WriteString(e.text)
		last = e.pos
	}
	b.Write(p.src[last:])
	return b.Bytes()
}

func (p *printer) unit(u *CompilationUnit) error {
	if err := p.usings(u.Usings, u.UsingAnchor); err != nil {
		return err
	}
	return p.members(u.Members)
}

func (p *printer) members(members []Node) error {
	for _, m := range members {
		if !m.Span().IsValid() {
			return fmt.Errorf("%w: member %T", ErrUnplaceable, m)
		}
		var err error
		switch m := m.(type) {
		case *NamespaceDecl:
			err = p.namespace(m)
		case *ClassDecl:
			err = p.class(m)
		case *TypeDecl:
			err = p.members(m.Members)
		case *MethodDecl:
			err = p.attributes(m.Attributes, m.span.Start)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (p *printer) namespace(n *NamespaceDecl) error {
	for _, u := range n.Usings {
		if !u.span.IsValid() {
			return fmt.Errorf("%w: using %s inside namespace %s", ErrUnplaceable, u.Namespace, n.Name)
		}
	}
	return p.members(n.Members)
}

func (p *printer) class(c *ClassDecl) error {
	if err := p.attributes(c.Attributes, c.span.Start); err != nil {
		return err
	}
	return p.members(c.Members)
}

// usings places synthetic directives after the last parsed one, or at the
// anchor when the unit has none.
func (p *printer) usings(list []*UsingDirective, anchor int) error {
	last, lastStart := -1, -1
	for _, u := range list {
		if u.span.IsValid() {
			last, lastStart = u.span.End, u.span.Start
			continue
		}
		if last >= 0 {
			indent, _ := p.indentAt(lastStart)
			p.insert(last, p.nl+indent+u.String())
			continue
		}
		if anchor < 0 || anchor > len(p.src) {
			return fmt.Errorf("%w: using %s", ErrUnplaceable, u.Namespace)
		}
		p.insert(anchor, u.String()+p.nl+p.nl)
	}
	return nil
}

// attributes places synthetic lists of the declaration starting at declStart.
func (p *printer) attributes(lists []*AttributeList, declStart int) error {
	last := -1
	for _, l := range lists {
		if l.span.IsValid() {
			last = l.span.End
			continue
		}
		if len(l.Attributes) == 0 {
			return fmt.Errorf("%w: empty attribute list", ErrUnplaceable)
		}
		indent, atLineStart := p.indentAt(declStart)
		switch {
		case last >= 0 && atLineStart:
			p.insert(last, p.nl+indent+l.String())
		case last >= 0:
			p.insert(last, " "+l.String())
		case atLineStart:
			p.insert(declStart, l.String()+p.nl+indent)
		default:
			p.insert(declStart, l.String()+" ")
		}
	}
	return nil
}

// indentAt returns the whitespace between the start of the line and off, and
// whether off is the first non-blank position on its line.
func (p *printer) indentAt(off int) (string, bool) {
	start := lineStartOf(p.src, off)
	for i := start; i < off; i++ {
		if c := p.src[i]; c != ' ' && c != '\t' {
			return "", false
		}
	}
	return string(p.src[start:off]), true
}

func lineStartOf(src []byte, off int) int {
	if off > len(src) {
		off = len(src)
	}
	return bytes.LastIndexByte(src[:off], '\n') + 1
}

func newlineOf(src []byte) string {
	if i := bytes.IndexByte(src, '\n'); i > 0 && src[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}
