package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/abdidvp/fixie2nunit/internal/domain"
	"github.com/abdidvp/fixie2nunit/internal/domain/migrate"
)

// ── Warm palette ──
var (
	accent    = lipgloss.Color("#D97706") // amber
	fg        = lipgloss.Color("#E8E6E3") // warm light gray
	dim       = lipgloss.Color("#6B7280") // muted gray
	faint     = lipgloss.Color("#3F3F46") // very dim
	success   = lipgloss.Color("#22C55E") // green
	danger    = lipgloss.Color("#EF4444") // red
	warning   = lipgloss.Color("#F59E0B") // amber-yellow
	info      = lipgloss.Color("#8B949E") // soft blue-gray
	skipColor = lipgloss.Color("#4B5563") // dark gray
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			Align(lipgloss.Center)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 4).
			Align(lipgloss.Center).
			Width(68)

	dimStyle      = lipgloss.NewStyle().Foreground(dim)
	faintStyle    = lipgloss.NewStyle().Foreground(faint)
	passStyle     = lipgloss.NewStyle().Foreground(success)
	failStyle     = lipgloss.NewStyle().Foreground(danger)
	warnStyle     = lipgloss.NewStyle().Foreground(warning)
	skipStyle     = lipgloss.NewStyle().Foreground(skipColor)
	errorTagStyle = lipgloss.NewStyle().Foreground(danger).Bold(true)
	warnTagStyle  = lipgloss.NewStyle().Foreground(warning).Bold(true)
	infoTagStyle  = lipgloss.NewStyle().Foreground(info)
	fileStyle     = lipgloss.NewStyle().Foreground(dim)
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(fg)
	separatorLine = faintStyle.Render(strings.Repeat("─", 64))
)

// RenderReport formats a migration report for terminal output.
func RenderReport(report *domain.MigrationReport) string {
	var b strings.Builder

	// ── Header ──
	title := headerStyle.Render("fixie2nunit")
	subtitle := dimStyle.Render(fmt.Sprintf("%s → %s", kindLabel(report.Kind), report.Target))
	if report.DryRun {
		subtitle += "  " + warnTagStyle.Render("dry run")
	}
	counts := fmt.Sprintf("%d files  ·  %s  ·  %s",
		report.Summary.Files,
		passStyle.Render(fmt.Sprintf("%d changed", report.Summary.Changed)),
		failureLabel(report.Summary.Failed),
	)
	b.WriteString(boxStyle.Render(title + "\n" + subtitle + "\n\n" + counts))
	b.WriteString("\n\n")

	// ── Projects ──
	if len(report.Projects) == 0 {
		b.WriteString("  " + warnStyle.Render("No test projects matched.") + "\n")
	} else {
		b.WriteString("  " + titleStyle.Render("Projects") + "  " + dimStyle.Render(strings.Join(report.Projects, ", ")) + "\n")
	}
	for _, d := range report.Diagnostics {
		fmt.Fprintf(&b, "    %s %s\n", warnTagStyle.Render("warn "), fileStyle.Render(shortenPath(d.Path)))
		fmt.Fprintf(&b, "         %s\n", dimStyle.Render(d.Message))
	}
	b.WriteString("\n")

	// ── Files ──
	for _, f := range report.Files {
		renderFile(&b, f)
	}

	b.WriteString("\n")
	b.WriteString("  " + separatorLine)
	b.WriteString("\n\n")

	// ── Totals ──
	s := report.Summary
	fmt.Fprintf(&b, "  %s %s  %s  %s  %s\n",
		titleStyle.Render("Added"),
		passStyle.Render(fmt.Sprintf("%d fixtures", s.Fixtures)),
		passStyle.Render(fmt.Sprintf("%d tests", s.Tests)),
		infoTagStyle.Render(fmt.Sprintf("%d formatted", s.Formatted)),
		skipStyle.Render(fmt.Sprintf("%d cached", s.Cached)),
	)
	if report.Summary.Failed > 0 {
		b.WriteString("  " + failStyle.Render("Some files could not be migrated; they were left as they were.") + "\n")
	}

	for _, f := range report.Files {
		if f.Diff != "" {
			b.WriteString("\n")
			b.WriteString(RenderDiff(f.Diff))
		}
	}

	b.WriteString("\n")
	return b.String()
}

func renderFile(b *strings.Builder, f domain.FileResult) {
	name := padRight(shortenPath(f.Path), 44)

	switch f.Status {
	case domain.StatusFailed:
		fmt.Fprintf(b, "    %s %s\n", errorTagStyle.Render("✗"), fileStyle.Render(name))
		fmt.Fprintf(b, "         %s\n", dimStyle.Render(f.Error))
	case domain.StatusCached:
		fmt.Fprintf(b, "    %s %s %s\n", skipStyle.Render("○"), skipStyle.Render(name), skipStyle.Render("cached"))
	case domain.StatusChanged:
		fmt.Fprintf(b, "    %s %s %s\n", passStyle.Render("●"), name, dimStyle.Render(changeDetail(f)))
	default:
		fmt.Fprintf(b, "    %s %s\n", faintStyle.Render("·"), faintStyle.Render(name))
	}
}

// changeDetail summarizes what happened to a changed file.
func changeDetail(f domain.FileResult) string {
	var parts []string
	fixtures, tests := 0, 0
	for _, c := range f.Changes {
		switch c.Kind {
		case migrate.ChangeFixture:
			fixtures++
		case migrate.ChangeTest:
			tests++
		}
	}
	if fixtures > 0 {
		parts = append(parts, plural(fixtures, "fixture"))
	}
	if tests > 0 {
		parts = append(parts, plural(tests, "test"))
	}
	if f.UsingAdded {
		parts = append(parts, "using")
	}
	if f.Formatted {
		parts = append(parts, "formatted")
	}
	return strings.Join(parts, " · ")
}

func failureLabel(n int) string {
	if n == 0 {
		return dimStyle.Render("0 failed")
	}
	return failStyle.Render(fmt.Sprintf("%d failed", n))
}

func kindLabel(k domain.DescriptorKind) string {
	if k == "" {
		return "workspace"
	}
	return string(k)
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

func shortenPath(path string) string {
	parts := strings.Split(filepath.ToSlash(path), "/")
	if len(parts) > 3 {
		return ".../" + strings.Join(parts[len(parts)-3:], "/")
	}
	return filepath.ToSlash(path)
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// RenderHistory formats run history for terminal output.
func RenderHistory(entries []domain.RunEntry) string {
	if len(entries) == 0 {
		return "  " + dimStyle.Render("No migration history found.") + "\n"
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("  " + titleStyle.Render("Migration History") + "\n")
	b.WriteString("  " + faintStyle.Render(strings.Repeat("─", 50)) + "\n\n")

	for _, e := range entries {
		hash := e.CommitHash
		if len(hash) > 7 {
			hash = hash[:7]
		}
		if hash == "" {
			hash = "·······"
		}
		date := e.Timestamp
		if len(date) > 10 {
			date = date[:10]
		}

		line := fmt.Sprintf("  %s  %s  %s  %s  %s",
			dimStyle.Render(date),
			faintStyle.Render(hash),
			infoTagStyle.Render(padRight(string(e.Target), 6)),
			passStyle.Render(fmt.Sprintf("%d changed", e.Changed)),
			dimStyle.Render(fmt.Sprintf("%d formatted", e.Formatted)),
		)
		if e.Failed > 0 {
			line += "  " + failStyle.Render(fmt.Sprintf("%d failed", e.Failed))
		}
		if e.DryRun {
			line += "  " + warnStyle.Render("dry run")
		}

		b.WriteString(line)
		b.WriteString("\n")
	}

	return b.String()
}
