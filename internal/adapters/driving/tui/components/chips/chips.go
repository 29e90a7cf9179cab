// Package chips provides the facet chip row used to toggle filters.
package chips

import (
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/publicintelligence/datahub/internal/adapters/driving/tui/styles"
)

// Colour picks the active background for a chip value.
type Colour func(value string) lipgloss.Color

// Row is a horizontal set of toggleable chips.
type Row struct {
	styles   *styles.Styles
	label    string
	values   []string
	selected []string
	cursor   int
	focused  bool
	width    int
	colour   Colour
}

// NewRow creates a chip row. colour may be nil to use the brand colour.
func NewRow(s *styles.Styles, label string, colour Colour) *Row {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if colour == nil {
		colour = func(string) lipgloss.Color { return s.Theme().Primary }
	}
	return &Row{
		styles: s,
		label:  label,
		colour: colour,
		width:  80,
	}
}

// Init initialises the row.
func (r *Row) Init() tea.Cmd {
	return nil
}

// Update moves the cursor. Toggling is handled by the owner so it can
// update the shared filter state.
func (r *Row) Update(msg tea.Msg) (*Row, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "left", "h":
			r.MoveLeft()
		case "right", "l":
			r.MoveRight()
		}
	}
	return r, nil
}

// View renders the row, wrapping chips onto further lines when needed.
func (r *Row) View() string {
	labelStyle := r.styles.Muted
	if r.focused {
		labelStyle = r.styles.Subtitle
	}
	label := labelStyle.Render(r.label + ": ")
	if len(r.values) == 0 {
		return label + r.styles.Muted.Render("-")
	}

	indent := strings.Repeat(" ", lipgloss.Width(label))
	var lines []string
	line := label
	for i, v := range r.values {
		chip := r.renderChip(i, v)
		if lipgloss.Width(line)+lipgloss.Width(chip) > r.width && line != label && line != indent {
			lines = append(lines, line)
			line = indent
		}
		line += chip + " "
	}
	lines = append(lines, strings.TrimRight(line, " "))
	return strings.Join(lines, "\n")
}

func (r *Row) renderChip(index int, value string) string {
	style := r.styles.Chip
	if r.IsSelected(value) {
		style = r.styles.ChipActive.Background(r.colour(value))
	}
	text := value
	if r.focused && index == r.cursor {
		text = "[" + value + "]"
	}
	return style.Render(text)
}

// SetValues replaces the available chips and the current selection.
// The cursor is clamped to the new range.
func (r *Row) SetValues(values, selected []string) {
	r.values = values
	r.selected = selected
	if r.cursor >= len(values) {
		r.cursor = max(len(values)-1, 0)
	}
}

// Values returns the available chip values.
func (r *Row) Values() []string {
	return r.values
}

// IsSelected reports whether value is an active selection.
func (r *Row) IsSelected(value string) bool {
	return slices.Contains(r.selected, value)
}

// Current returns the value under the cursor, or "" for an empty row.
func (r *Row) Current() string {
	if r.cursor < 0 || r.cursor >= len(r.values) {
		return ""
	}
	return r.values[r.cursor]
}

// Cursor returns the cursor index.
func (r *Row) Cursor() int {
	return r.cursor
}

// MoveLeft moves the cursor left.
func (r *Row) MoveLeft() {
	if r.cursor > 0 {
		r.cursor--
	}
}

// MoveRight moves the cursor right.
func (r *Row) MoveRight() {
	if r.cursor < len(r.values)-1 {
		r.cursor++
	}
}

// SetFocused sets whether the row receives key input.
func (r *Row) SetFocused(focused bool) {
	r.focused = focused
}

// Focused returns whether the row is focused.
func (r *Row) Focused() bool {
	return r.focused
}

// SetWidth sets the wrapping width.
func (r *Row) SetWidth(width int) {
	r.width = width
}
