// Package formatter normalizes the layout of migrated C# sources.
package formatter

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/abdidvp/fixie2nunit/internal/domain"
	"github.com/abdidvp/fixie2nunit/internal/domain/syntax"
)

// Formatter implements domain.Formatter. Without a configured command it
// trims trailing whitespace, unifies line endings and ends the file with a
// single newline. Multi-line string literals are left untouched.
type Formatter struct{}

func New() *Formatter {
	return &Formatter{}
}

func (f *Formatter) Format(ctx context.Context, unit *syntax.CompilationUnit, cfg domain.FormatterConfig) ([]byte, error) {
	if len(cfg.Command) > 0 {
		return runCommand(ctx, unit, cfg.Command)
	}
	out := Whitespace(unit.Source, unit.Literals)
	if unit.BOM {
		out = append([]byte{0xEF, 0xBB, 0xBF}, out...)
	}
	return out, nil
}

// Whitespace applies the built-in layout rules to src. Bytes inside the
// protected spans are copied as they are.
func Whitespace(src []byte, protected []syntax.Span) []byte {
	if len(src) == 0 {
		return src
	}
	nl := dominantNewline(src)
	inside := func(pos int) bool {
		for _, s := range protected {
			if pos >= s.Start && pos < s.End {
				return true
			}
		}
		return false
	}

	var out bytes.Buffer
	out.Grow(len(src))
	lineStart := 0
	for lineStart < len(src) {
		end := bytes.IndexByte(src[lineStart:], '\n')
		if end < 0 {
			end = len(src)
		} else {
			end += lineStart
		}

		content := end
		if content > lineStart && src[content-1] == '\r' {
			content--
		}
		trimmed := content
		for trimmed > lineStart && (src[trimmed-1] == ' ' || src[trimmed-1] == '\t') && !inside(trimmed-1) {
			trimmed--
		}
		out.Write(src[lineStart:trimmed])

		if end < len(src) {
			if inside(end) {
				out.Write(src[content : end+1])
			} else {
				out.WriteString(nl)
			}
		}
		lineStart = end + 1
	}

	return ensureFinalNewline(out.Bytes(), nl)
}

func ensureFinalNewline(b []byte, nl string) []byte {
	trimmed := bytes.TrimRight(b, "\r\n")
	if len(trimmed) == 0 {
		return []byte{}
	}
	return append(trimmed[:len(trimmed):len(trimmed)], nl...)
}

// dominantNewline returns "\r\n" when most line breaks in src are CRLF.
func dominantNewline(src []byte) string {
	crlf := bytes.Count(src, []byte("\r\n"))
	lf := bytes.Count(src, []byte("\n")) - crlf
	if crlf > lf {
		return "\r\n"
	}
	return "\n"
}

// runCommand pipes the printed unit through an external formatter.
func runCommand(ctx context.Context, unit *syntax.CompilationUnit, command []string) ([]byte, error) {
	input, err := syntax.Print(unit)
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, command[0], command[1:]...)
	cmd.Stdin = bytes.NewReader(input)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("formatter %s: %w: %s", command[0], err, msg)
		}
		return nil, fmt.Errorf("formatter %s: %w", command[0], err)
	}
	if stdout.Len() == 0 && len(input) > 0 {
		return nil, fmt.Errorf("formatter %s: empty output", command[0])
	}
	return stdout.Bytes(), nil
}
