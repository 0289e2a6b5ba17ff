package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"notepane/internal/ui"
)

// HelpEntry is one key binding line in the help overlay.
type HelpEntry struct {
	Key     string
	Desc    string
	Section string
}

// Section display order for the help overlay. Unknown sections sort last,
// in first-seen order.
var sectionOrder = []string{"Navigate", "Open", "Select", "Search", "Notes", "General"}

// RenderHelp renders the full-screen help overlay.
func RenderHelp(s ui.Styles, width, height int, entries []HelpEntry) string {
	bySection := make(map[string][]HelpEntry)
	var order []string
	seen := make(map[string]bool)
	for _, sec := range sectionOrder {
		seen[sec] = true
		order = append(order, sec)
	}
	for _, e := range entries {
		sec := e.Section
		if sec == "" {
			sec = "General"
		}
		if !seen[sec] {
			seen[sec] = true
			order = append(order, sec)
		}
		bySection[sec] = append(bySection[sec], e)
	}

	keyWidth := 0
	for _, e := range entries {
		if w := lipgloss.Width(e.Key); w > keyWidth {
			keyWidth = w
		}
	}

	var cols []string
	var col strings.Builder
	lines := 0
	maxLines := height - 6
	if maxLines < 4 {
		maxLines = 4
	}

	flush := func() {
		if col.Len() > 0 {
			cols = append(cols, strings.TrimRight(col.String(), "\n"))
			col.Reset()
			lines = 0
		}
	}

	for _, sec := range order {
		es := bySection[sec]
		if len(es) == 0 {
			continue
		}
		need := len(es) + 2
		if lines > 0 && lines+need > maxLines {
			flush()
		}
		col.WriteString(s.Subtitle.Render(sec) + "\n")
		lines++
		for _, e := range es {
			col.WriteString(s.KeyBind.Render(ui.PadRight(e.Key, keyWidth)) + "  " + s.KeyDesc.Render(e.Desc) + "\n")
			lines++
		}
		col.WriteString("\n")
		lines++
	}
	flush()

	body := lipgloss.JoinHorizontal(lipgloss.Top, joinWithGap(cols, 4)...)
	box := s.Panel.Render(s.Title.Render("Help") + "\n\n" + body + "\n" + s.Muted.Render("press ? or esc to close"))
	return ui.PlaceCentre(width, height, box)
}

func joinWithGap(cols []string, gap int) []string {
	if len(cols) <= 1 {
		return cols
	}
	out := make([]string, 0, len(cols)*2-1)
	pad := strings.Repeat(" ", gap)
	for i, c := range cols {
		if i > 0 {
			out = append(out, pad)
		}
		out = append(out, c)
	}
	return out
}
