package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"
)

// Scroll shows a window of pre-rendered lines and moves it with the
// arrow, page and home/end keys.
type Scroll struct {
	lines  []string
	offset int
}

// SetContent replaces the scrolled text, keeping the offset when possible.
func (s *Scroll) SetContent(content string) {
	s.lines = strings.Split(strings.TrimRight(content, "\n"), "\n")
}

// Offset returns the first visible line.
func (s *Scroll) Offset() int {
	return s.offset
}

// Update moves the window for a viewport of height lines. It reports
// whether the key was a scroll key.
func (s *Scroll) Update(msg tea.Msg, height int) bool {
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return false
	}
	switch kmsg.String() {
	case "up", "k":
		s.offset--
	case "down", "j":
		s.offset++
	case "pgup", "b":
		s.offset -= max(height-1, 1)
	case "pgdown", "space", " ":
		s.offset += max(height-1, 1)
	case "home", "g":
		s.offset = 0
	case "end", "G":
		s.offset = len(s.lines)
	default:
		return false
	}
	s.clamp(height)
	return true
}

func (s *Scroll) clamp(height int) {
	s.offset = min(s.offset, max(len(s.lines)-height, 0))
	s.offset = max(s.offset, 0)
}

// View renders the visible window.
func (s *Scroll) View(height int) string {
	s.clamp(height)
	end := min(s.offset+height, len(s.lines))
	return strings.Join(s.lines[s.offset:end], "\n")
}

// Scrollable reports whether the content is taller than height.
func (s *Scroll) Scrollable(height int) bool {
	return len(s.lines) > height
}
