package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/abdidvp/fixie2nunit/internal/domain"
	"github.com/abdidvp/fixie2nunit/internal/domain/migrate"
)

var (
	sectionHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	addedLineStyle     = lipgloss.NewStyle().Foreground(success)
	removedLineStyle   = lipgloss.NewStyle().Foreground(danger)
	hunkStyle          = lipgloss.NewStyle().Foreground(info)
	hintStyle          = lipgloss.NewStyle().Foreground(dim).Italic(true)
)

// RenderPreview renders the pass-1 result of a single file.
func RenderPreview(res *domain.SourceResult) string {
	var b strings.Builder

	status := dimStyle.Render("no changes")
	if res.Changed {
		status = passStyle.Render(plural(len(res.Changes), "change"))
	}
	b.WriteString(boxStyle.Render(titleStyle.Render(shortenPath(res.Path)) + "  " + status))
	b.WriteString("\n")

	if len(res.Changes) > 0 {
		b.WriteString("\n")
		fmt.Fprintf(&b, "  %s %s\n",
			sectionHeaderStyle.Render("Changes"),
			dimStyle.Render(fmt.Sprintf("(%d)", len(res.Changes))),
		)
		for _, c := range res.Changes {
			b.WriteString(renderChange(c) + "\n")
		}
	}

	if res.Diff != "" {
		b.WriteString("\n")
		b.WriteString(RenderDiff(res.Diff))
	}

	if !res.Changed {
		b.WriteString("\n")
		b.WriteString("  " + hintStyle.Render("Nothing matches the test naming conventions."))
		b.WriteString("\n")
	}

	return b.String()
}

func renderChange(c migrate.Change) string {
	line := fmt.Sprintf("    %s ", warnStyle.Render("●"))
	switch c.Kind {
	case migrate.ChangeUsing:
		return line + "using " + c.Attribute
	case migrate.ChangeFixture:
		line += fmt.Sprintf("[%s] %s", c.Attribute, c.Class)
	default:
		line += fmt.Sprintf("[%s] %s.%s", c.Attribute, c.Class, c.Method)
	}
	if c.Line > 0 {
		line += "  " + faintStyle.Render(fmt.Sprintf("line %d", c.Line))
	}
	return line
}

// RenderDiff colors a unified diff line by line.
func RenderDiff(diff string) string {
	var b strings.Builder
	for _, line := range strings.SplitAfter(diff, "\n") {
		if line == "" {
			continue
		}
		text := strings.TrimRight(line, "\r\n")
		switch {
		case strings.HasPrefix(text, "+++"), strings.HasPrefix(text, "---"):
			b.WriteString("  " + fileStyle.Render(text))
		case strings.HasPrefix(text, "@@"):
			b.WriteString("  " + hunkStyle.Render(text))
		case strings.HasPrefix(text, "+"):
			b.WriteString("  " + addedLineStyle.Render(text))
		case strings.HasPrefix(text, "-"):
			b.WriteString("  " + removedLineStyle.Render(text))
		default:
			b.WriteString("  " + faintStyle.Render(text))
		}
		b.WriteString("\n")
	}
	return b.String()
}
