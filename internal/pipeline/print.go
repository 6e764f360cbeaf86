package pipeline

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

const (
	HeaderSummary    = "=== SUMMARY ==="
	HeaderStructured = "=== STRUCTURED SUMMARY ==="
	HeaderFakeNews   = "=== FAKE NEWS ==="
)

var headerColor = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"}

// Print writes the labelled result blocks to w. Headers are styled only when
// w is a color-capable terminal.
func Print(w io.Writer, r *Result) error {
	header := lipgloss.NewRenderer(w).NewStyle().Bold(true).Foreground(headerColor)

	blocks := []struct {
		title string
		body  string
	}{
		{HeaderSummary, r.Summary},
		{HeaderStructured, r.Structured.String()},
		{HeaderFakeNews, r.FakeNews},
	}
	for _, b := range blocks {
		if _, err := fmt.Fprintf(w, "%s\n%s\n\n", header.Render(b.title), b.body); err != nil {
			return err
		}
	}
	return nil
}
