// Package present renders search outcomes and history for terminals.
// The CLI and the TUI both use it, with full or plain styles.
package present

import (
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/sitesearch-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sitesearch-cli/internal/core/domain"
	"github.com/custodia-labs/sitesearch-cli/internal/normalisers/html"
)

// TimeLayout is how timestamps are shown.
const TimeLayout = "2006-01-02 15:04"

// Highlight renders a snippet, applying the highlight style to every span
// the service wrapped in <mark> tags. Other markup is dropped.
func Highlight(st *styles.Styles, text string) string {
	var b strings.Builder
	for _, seg := range html.Snippet(text) {
		if seg.Marked {
			b.WriteString(st.Highlight.Render(seg.Text))
		} else {
			b.WriteString(st.Normal.Render(seg.Text))
		}
	}
	return b.String()
}

// StripMarks returns a snippet as plain text.
func StripMarks(text string) string {
	return html.Text(text)
}

// ResumeNotice returns the line shown before a resumed search's results,
// or "" for a fresh search or when nothing was skipped.
func ResumeNotice(o *domain.SearchOutcome) string {
	if !o.IsResume || o.SkippedCount == 0 {
		return ""
	}
	return fmt.Sprintf("Resumed search: skipped %d already-searched %s.", o.SkippedCount, plural(o.SkippedCount, "URL", "URLs"))
}

// Stats returns the statistics line of an outcome.
func Stats(o *domain.SearchOutcome) string {
	return fmt.Sprintf(
		"Searched %d %s this run, skipped %d, %d considered in total, %d with matches.",
		o.NewlyVisitedCount, plural(o.NewlyVisitedCount, "page", "pages"),
		o.SkippedCount, o.TotalVisitedCount, o.MatchCount,
	)
}

// Outcome renders every matching page of an outcome grouped by depth,
// followed by the statistics line.
func Outcome(st *styles.Styles, o *domain.SearchOutcome) string {
	var b strings.Builder

	if notice := ResumeNotice(o); notice != "" {
		b.WriteString(st.Warning.Render(notice))
		b.WriteString("\n\n")
	}

	if o.MatchCount == 0 {
		b.WriteString(st.Muted.Render("No matches found."))
		b.WriteString("\n")
	}

	for _, group := range o.Groups {
		pages := matching(group.Results)
		if len(pages) == 0 {
			continue
		}

		b.WriteString(st.Depth.Render(fmt.Sprintf("Depth %d", group.Depth)))
		b.WriteString(st.Muted.Render(fmt.Sprintf(" (%d)", len(pages))))
		b.WriteString("\n")
		for i := range pages {
			writePage(&b, st, &pages[i])
		}
		b.WriteString("\n")
	}

	b.WriteString(st.Muted.Render(Stats(o)))
	b.WriteString("\n")
	return b.String()
}

func matching(results []domain.PageResult) []domain.PageResult {
	out := make([]domain.PageResult, 0, len(results))
	for i := range results {
		if results[i].HasMatches() {
			out = append(out, results[i])
		}
	}
	return out
}

func writePage(b *strings.Builder, st *styles.Styles, p *domain.PageResult) {
	b.WriteString("  ")
	b.WriteString(st.Title.Render(html.Text(p.DisplayTitle())))
	b.WriteString("\n  ")
	b.WriteString(st.URL.Render(p.URL))
	b.WriteString("\n")

	for _, m := range p.Matches.BodyMatches {
		writeMatch(b, st, "body", Highlight(st, m))
	}
	for _, m := range p.Matches.HeadMatches {
		writeMatch(b, st, "head", Highlight(st, m))
	}
	for _, h := range p.Matches.HrefMatches {
		writeMatch(b, st, "link", Highlight(st, h.Label())+st.Muted.Render(" -> ")+st.URL.Render(h.Target()))
	}
}

func writeMatch(b *strings.Builder, st *styles.Styles, label, text string) {
	b.WriteString("    ")
	b.WriteString(st.Muted.Render(label + ":"))
	b.WriteString(" ")
	b.WriteString(text)
	b.WriteString("\n")
}

// SummaryLine renders one history entry on a single line.
func SummaryLine(st *styles.Styles, s domain.SessionSummary) string {
	return fmt.Sprintf("%s %s %s",
		st.Title.Render(fmt.Sprintf("%q", s.Key.SearchText)),
		st.URL.Render(s.Key.BaseURL),
		st.Muted.Render(SummaryDetail(s)),
	)
}

// SummaryDetail describes a history entry's counts and age.
func SummaryDetail(s domain.SessionSummary) string {
	return fmt.Sprintf("%d %s, %d %s considered, updated %s",
		s.TotalResults, plural(s.TotalResults, "result", "results"),
		s.TotalPagesConsidered, plural(s.TotalPagesConsidered, "page", "pages"),
		FormatTime(s.LastUpdated),
	)
}

// FormatTime formats t in local time, or "never" for the zero time.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Local().Format(TimeLayout)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
