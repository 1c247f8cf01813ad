package format

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
)

// Lane is one titled column of rows in text output (a template group or the ungrouped pool).
type Lane struct {
	Title string
	Note  string
	Rows  []Row
}

type Row struct {
	ID    string
	Title string
	Note  string
}

var (
	laneTitleStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "240", Dark: "245"})
)

// ApplyColorProfile picks the Lip Gloss color profile for CLI text output. NO_COLOR and
// CLICOLOR are honored.
func ApplyColorProfile() {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}
	lipgloss.SetColorProfile(termenv.EnvColorProfile())
}

// WriteLanes renders lanes as numbered lists. Rows wider than width are truncated; width <= 0
// disables truncation.
func WriteLanes(w io.Writer, lanes []Lane, width int) error {
	var b strings.Builder
	for i, l := range lanes {
		if i > 0 {
			b.WriteByte('\n')
		}
		head := laneTitleStyle.Render(l.Title)
		if l.Note != "" {
			head += " " + mutedStyle.Render(l.Note)
		}
		b.WriteString(head)
		b.WriteByte('\n')
		if len(l.Rows) == 0 {
			b.WriteString(mutedStyle.Render("  (empty)"))
			b.WriteByte('\n')
			continue
		}
		for n, r := range l.Rows {
			line := fmt.Sprintf("  %d. %s  %s", n+1, r.Title, mutedStyle.Render(r.ID))
			if r.Note != "" {
				line += " " + mutedStyle.Render(r.Note)
			}
			if width > 0 && xansi.StringWidth(line) > width {
				line = xansi.Truncate(line, width, "…")
			}
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
