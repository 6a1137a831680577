// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render turns term lists and study records into terminal text,
// JSON, YAML and HTML fragments. Every renderer shows the same empty-state
// messages, so the CLI, terminal UI and web UI read alike.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pdiddy/neurosynth-explorer/internal/studies"
)

// Empty-state messages.
const (
	EmptyTerms   = "No data"
	EmptyRelated = "No related terms"
	EmptyStudies = "No results"
)

// ErrorHint follows every rendered error.
const ErrorHint = "Possible causes: network, proxy, or server error."

// Palette.
var (
	colorAccent  = lipgloss.Color("#2196F3")
	colorMuted   = lipgloss.Color("#9E9E9E")
	colorWarning = lipgloss.Color("#FFC107")
	colorError   = lipgloss.Color("#E53935")
	colorTag     = lipgloss.Color("#E1E4E8")
)

// Styles are the lipgloss styles used for terminal output.
type Styles struct {
	Header lipgloss.Style
	Muted  lipgloss.Style
	Notice lipgloss.Style
	Error  lipgloss.Style
	Tag    lipgloss.Style
	Title  lipgloss.Style
}

// DefaultStyles returns the standard terminal styles.
func DefaultStyles() Styles {
	return Styles{
		Header: lipgloss.NewStyle().Bold(true).Foreground(colorAccent),
		Muted:  lipgloss.NewStyle().Foreground(colorMuted),
		Notice: lipgloss.NewStyle().Foreground(colorWarning),
		Error:  lipgloss.NewStyle().Foreground(colorError),
		Tag:    lipgloss.NewStyle().Background(colorTag).Foreground(lipgloss.Color("#101F38")).Padding(0, 1),
		Title:  lipgloss.NewStyle().Bold(true),
	}
}

// PlainStyles returns styles that add no formatting.
func PlainStyles() Styles {
	p := lipgloss.NewStyle()
	return Styles{Header: p, Muted: p, Notice: p, Error: p, Tag: p, Title: p}
}

// TermList renders terms one per line.
func (s Styles) TermList(terms []string) string {
	if len(terms) == 0 {
		return s.Muted.Render(EmptyTerms)
	}
	return strings.Join(terms, "\n")
}

// RelatedTags renders related terms as a row of tags, numbered so they
// can be referred to by position.
func (s Styles) RelatedTags(terms []string) string {
	if len(terms) == 0 {
		return s.Muted.Render(EmptyRelated)
	}
	tags := make([]string, len(terms))
	for i, t := range terms {
		tags[i] = s.Tag.Render(fmt.Sprintf("%d %s", i+1, t))
	}
	return strings.Join(tags, " ")
}

// StudyTable renders studies as a fixed-width table headed by the count of
// studies shown. total is the number fetched before filtering.
func (s Styles) StudyTable(shown []studies.Record, total int) string {
	if len(shown) == 0 {
		return s.Muted.Render(EmptyStudies)
	}
	var b strings.Builder
	count := fmt.Sprintf("Count: %d", len(shown))
	if total > len(shown) {
		count += fmt.Sprintf(" (of %d)", total)
	}
	b.WriteString(s.Muted.Render(count))
	b.WriteString("\n\n")

	header := fmt.Sprintf("%-4s  %-4s  %-60s  %-24s  %s", "#", "Year", "Title", "Authors", "Journal")
	b.WriteString(s.Header.Render(header))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("-", 120))
	b.WriteString("\n")

	for _, sum := range studies.SummarizeAll(shown) {
		fmt.Fprintf(&b, "%-4d  %-4s  %-60s  %-24s  %s\n",
			sum.Index,
			truncate(sum.Year, 4),
			truncate(sum.Title, 60),
			truncate(sum.Authors, 24),
			truncate(sum.Journal, 30))
	}
	return strings.TrimRight(b.String(), "\n")
}

// NoticeText renders an informational message such as "Enter a term".
func (s Styles) NoticeText(msg string) string {
	return s.Notice.Render(msg)
}

// ErrorText renders err as an error box heading, the message and a hint.
func (s Styles) ErrorText(err error) string {
	return s.Error.Render("Error") + "\n" + err.Error() + "\n" + s.Muted.Render(ErrorHint)
}

// truncate shortens s to max runes, marking the cut with "...".
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
