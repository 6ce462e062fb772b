// Package render draws aligned conversation entries as terminal chat bubbles.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/MikeSquared-Agency/chatview/internal/grouping"
)

const (
	minWidth     = 40
	defaultWidth = 80
)

// Renderer lays out bubbles within a fixed terminal width.
type Renderer struct {
	width int
}

// New returns a Renderer for the given width. Widths below 40 columns are
// raised to 40; zero means 80.
func New(width int) *Renderer {
	if width == 0 {
		width = defaultWidth
	}
	if width < minWidth {
		width = minWidth
	}
	return &Renderer{width: width}
}

// Render draws the title bar, the bubbles, and a footer describing the window.
func (r *Renderer) Render(title string, entries []grouping.Entry, w grouping.Window, total int) string {
	var b strings.Builder

	b.WriteString(titleStyle.Width(r.width).Render(title))
	b.WriteString("\n")

	if len(entries) == 0 {
		b.WriteString("\n  No messages found.\n")
		return b.String()
	}

	for _, e := range entries {
		if !e.Alignment.Continued {
			b.WriteString("\n")
		}
		b.WriteString(r.bubble(e))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(footer(w, total)))
	b.WriteString("\n")
	return b.String()
}

func (r *Renderer) bubble(e grouping.Entry) string {
	var header string
	if e.Alignment.Continued {
		header = timestampStyle.Render(e.Message.Timestamp)
	} else {
		header = senderStyle.Render(e.Message.Sender) + "  " + timestampStyle.Render(e.Message.Timestamp)
	}
	body := header + "\n" + e.Message.Content

	style := leftBubbleStyle
	pos := lipgloss.Left
	if e.Alignment.Side == grouping.Right {
		style = rightBubbleStyle
		pos = lipgloss.Right
	}

	maxBubble := r.width * 2 / 3
	if lipgloss.Width(body)+4 > maxBubble {
		style = style.Width(maxBubble - 2)
	}
	return lipgloss.PlaceHorizontal(r.width, pos, style.Render(body))
}

func footer(w grouping.Window, total int) string {
	shown := w.Clamp(total)
	s := fmt.Sprintf("messages %d-%d of %d", shown.Start+1, shown.End, total)
	if shown.HasMore(total) {
		s += "  (--more to load more)"
	}
	return s
}
