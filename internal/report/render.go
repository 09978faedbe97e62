package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/newhook/swecheck/internal/universe"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("247"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("42"))

	problemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	skippedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))
)

// DefaultWidth is the render width used when the caller passes zero.
const DefaultWidth = 100

// examplesShown is how many examples per check Render prints.
const examplesShown = 5

// Render writes a human readable summary of the report to w.
func Render(w io.Writer, r *AnalysisReport, width int) error {
	if width <= 0 {
		width = DefaultWidth
	}
	titleCase := cases.Title(language.English)

	var b strings.Builder
	title := "Analysis"
	if r.Instance != "" {
		title += " " + r.Instance
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString(dimStyle.Render(" (" + r.RunID + ")"))
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "%s %d F2P, %d P2P, %d total\n",
		labelStyle.Render("Tests:"), r.Counts.F2P, r.Counts.P2P, r.Counts.Universe)
	for _, stage := range universe.Stages {
		c, ok := r.DebugLogCounts[stage]
		if !ok {
			continue
		}
		line := fmt.Sprintf("%-7s %-16s %d passed, %d failed, %d ignored",
			titleCase.String(string(stage))+":", c.Format, c.Passed, c.Failed, c.Ignored)
		b.WriteString(labelStyle.Render(truncate.StringWithTail(line, uint(width), "...")))
		b.WriteString("\n")
	}
	if r.ReportError != "" {
		b.WriteString(problemStyle.Render("Report data: " + r.ReportError))
		b.WriteString("\n")
	}
	if r.AgentError != "" {
		b.WriteString(problemStyle.Render("Agent log: " + r.AgentError))
		b.WriteString("\n")
	}
	if r.DiffError != "" {
		b.WriteString(problemStyle.Render("Diffs: " + r.DiffError))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(sectionStyle.Render("Checks"))
	b.WriteString("\n")
	for _, e := range r.RuleChecks.Entries() {
		name := titleCase.String(e.Title)
		switch {
		case !e.Evaluated:
			b.WriteString(skippedStyle.Render("  - " + name + " (not evaluated)"))
		case e.Outcome.HasProblem:
			b.WriteString(problemStyle.Render("  ✗ " + name))
		default:
			b.WriteString(okStyle.Render("  ✓ " + name))
		}
		b.WriteString("\n")

		for i, ex := range e.Outcome.Examples {
			if i == examplesShown {
				b.WriteString(dimStyle.Render(fmt.Sprintf("      ... %d more", len(e.Outcome.Examples)-examplesShown)))
				b.WriteString("\n")
				break
			}
			b.WriteString(dimStyle.Render("      " + truncate.StringWithTail(ex, uint(max(width-6, 10)), "...")))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(sectionStyle.Render("Acceptance"))
	b.WriteString("\n")
	rr := r.RejectionReason
	if r.RejectionSatisfied {
		msg := "  REJECTED"
		if rr.Message != "" {
			msg += ": " + rr.Message
		}
		b.WriteString(problemStyle.Render(msg))
	} else {
		b.WriteString(okStyle.Render("  ACCEPTED"))
	}
	b.WriteString("\n")
	writeList(&b, "P2P rejected", rr.P2PRejected, width)
	writeList(&b, "F2P rejected", rr.F2PRejected, width)
	fmt.Fprintf(&b, "%s %d P2P, %d F2P\n", labelStyle.Render("  Ignored:"), len(rr.P2PIgnored), len(rr.F2PIgnored))
	fmt.Fprintf(&b, "%s %d P2P, %d F2P\n", labelStyle.Render("  Considered ok:"), len(rr.P2POK), len(rr.F2POK))

	_, err := io.WriteString(w, b.String())
	return err
}

func writeList(b *strings.Builder, label string, names []string, width int) {
	if len(names) == 0 {
		return
	}
	b.WriteString(labelStyle.Render(fmt.Sprintf("  %s (%d):", label, len(names))))
	b.WriteString("\n")
	wrapped := wordwrap.String(strings.Join(names, ", "), max(width-4, 20))
	for _, line := range strings.Split(wrapped, "\n") {
		b.WriteString("    " + line + "\n")
	}
}
