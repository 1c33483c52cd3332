// Package artifact implements the Artifact Store (AS): read-only access to
// pre-computed tabular artifacts and their textual summaries, keyed by
// product identifier.
package artifact

import (
	"fmt"
	"strings"
	"time"
)

// Artifact holds the concrete rows backing a Product.
type Artifact struct {
	ProductID      string
	Columns        []string
	Rows           [][]string
	RowFilterValue string
}

// Summary is a text rendering of an Artifact prepared for LLM consumption.
type Summary struct {
	ProductID         string
	GeneratedAt       time.Time
	DescriptionHeader string
	Shape             [2]int
	Columns           []string
	PreviewRows       [][]string
	TotalRows         int
	Truncated         bool
	// Raw holds a precomputed summary file's exact text, when the Summary
	// came from disk rather than being generated from an Artifact. When
	// set, Render returns it verbatim (after budget truncation).
	Raw string
}

// Render produces the textual form handed to the Analyzer, with clear
// section markers so multiple Summaries can be concatenated unambiguously.
func (s *Summary) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "=== SUMMARY: %s ===\n", s.ProductID)
	if s.DescriptionHeader != "" {
		fmt.Fprintf(&b, "%s\n", s.DescriptionHeader)
	}

	if s.Raw != "" {
		b.WriteString(s.Raw)
		return b.String()
	}

	fmt.Fprintf(&b, "Shape: (%d rows, %d columns)\n", s.Shape[0], s.Shape[1])
	fmt.Fprintf(&b, "Columns: %s\n\n", strings.Join(s.Columns, ", "))
	b.WriteString(strings.Join(s.Columns, "\t"))
	b.WriteString("\n")
	for _, row := range s.PreviewRows {
		b.WriteString(strings.Join(row, "\t"))
		b.WriteString("\n")
	}
	if s.Truncated {
		fmt.Fprintf(&b, "... (of %d total)\n", s.TotalRows)
	}
	return b.String()
}

// TruncateToBudget clamps text to at most budgetChars characters, appending
// an explicit "(of N total)" marker (approximated by newline count) when it
// had to cut. Applied to summaries loaded verbatim from a precomputed file,
// since AS cannot recompute their exact row count without reparsing.
func TruncateToBudget(text string, budgetChars int) string {
	if len(text) <= budgetChars || budgetChars <= 0 {
		return text
	}
	totalLines := strings.Count(strings.TrimSuffix(text, "\n"), "\n") + 1
	cut := text[:budgetChars]
	if idx := strings.LastIndexByte(cut, '\n'); idx > 0 {
		cut = cut[:idx]
	}
	return fmt.Sprintf("%s\n... (of %d total)\n", cut, totalLines)
}
