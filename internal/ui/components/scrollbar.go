package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"notepane/internal/ui"
)

// RenderScrollbar renders a vertical scrollbar track of the given height.
// contentSize and offset are in the same units (cells); returns an empty
// string when everything fits.
func RenderScrollbar(s ui.Styles, height, contentSize, viewSize, offset int) string {
	if height <= 0 || contentSize <= viewSize {
		return ""
	}

	thumb := height * viewSize / contentSize
	if thumb < 1 {
		thumb = 1
	}
	maxOffset := contentSize - viewSize
	top := 0
	if maxOffset > 0 {
		top = (height - thumb) * offset / maxOffset
	}
	if top+thumb > height {
		top = height - thumb
	}

	trackStyle := lipgloss.NewStyle().Foreground(s.Theme.Border)
	thumbStyle := lipgloss.NewStyle().Foreground(s.Theme.TextMuted)

	var b strings.Builder
	for i := 0; i < height; i++ {
		if i > 0 {
			b.WriteByte('\n')
		}
		if i >= top && i < top+thumb {
			b.WriteString(thumbStyle.Render("┃"))
		} else {
			b.WriteString(trackStyle.Render("│"))
		}
	}
	return b.String()
}
