// Package status provides status bar components for the TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/publicintelligence/datahub/internal/adapters/driving/tui/keymap"
	"github.com/publicintelligence/datahub/internal/adapters/driving/tui/styles"
	"github.com/publicintelligence/datahub/internal/core/domain"
)

// LoadErrorPrefix precedes transport failures shown to the user.
const LoadErrorPrefix = "ไม่สามารถโหลดข้อมูลได้: "

// State represents the current application state for display.
type State string

const (
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateError   State = "error"
)

// Bar displays provenance, record counts, load state and keybinding hints.
type Bar struct {
	styles     *styles.Styles
	keymap     *keymap.KeyMap
	spinner    spinner.Model
	state      State
	message    string
	provenance domain.Provenance
	stats      domain.Stats
	shown      int
	width      int
	resultsKey bool
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(s.Theme().Primary)

	return &Bar{
		styles:  s,
		keymap:  km,
		spinner: sp,
		state:   StateLoading,
		width:   80,
	}
}

// Init starts the spinner.
func (s *Bar) Init() tea.Cmd {
	return s.spinner.Tick
}

// Update advances the spinner while loading.
func (s *Bar) Update(msg tea.Msg) (*Bar, tea.Cmd) {
	if tick, ok := msg.(spinner.TickMsg); ok {
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(tick)
		return s, cmd
	}
	return s, nil
}

// View renders the status bar.
func (s *Bar) View() string {
	left := s.renderLeft()
	right := s.renderRight()

	// Width includes the horizontal padding of the bar style.
	inner := s.width - 2
	if maxLeft := inner - lipgloss.Width(right) - 1; lipgloss.Width(left) > maxLeft {
		left = ansi.Truncate(left, max(maxLeft, 0), "…")
	}
	padding := max(inner-lipgloss.Width(left)-lipgloss.Width(right), 1)

	return s.styles.StatusBar.Width(s.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

func (s *Bar) renderLeft() string {
	var parts []string

	switch s.state {
	case StateLoading:
		parts = append(parts, s.spinner.View()+s.styles.Muted.Render("กำลังโหลด..."))
	case StateError:
		parts = append(parts, s.styles.Error.Render(LoadErrorPrefix+s.message))
	case StateReady:
	}

	if s.provenance != "" {
		parts = append(parts, s.renderProvenance())
		parts = append(parts, s.styles.Normal.Render(fmt.Sprintf(
			"%d/%d datasets · %d featured · %d external",
			s.shown, s.stats.Total, s.stats.Featured, s.stats.External,
		)))
	}
	return strings.Join(parts, "  ")
}

func (s *Bar) renderProvenance() string {
	if s.provenance == domain.ProvenanceFallback {
		return s.styles.Warning.Render("● " + s.provenance.Description())
	}
	return s.styles.Success.Render("● " + s.provenance.Description())
}

func (s *Bar) renderRight() string {
	var bindings []key.Binding
	if s.resultsKey {
		bindings = s.keymap.ResultsHelp()
	} else {
		bindings = s.keymap.ShortHelp()
	}

	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return s.styles.Muted.Render(strings.Join(hints, " | "))
}

// SetLoading shows the spinner. The returned command keeps it animating.
func (s *Bar) SetLoading() tea.Cmd {
	s.state = StateLoading
	return s.spinner.Tick
}

// SetLoaded records a completed load. A nil snapshot keeps the previous
// figures. A non-nil err is shown with LoadErrorPrefix.
func (s *Bar) SetLoaded(snapshot *domain.Snapshot, err error) {
	if snapshot != nil {
		s.provenance = snapshot.Provenance
		s.stats = snapshot.Stats
	}
	if err != nil {
		s.state = StateError
		s.message = err.Error()
		return
	}
	s.state = StateReady
	s.message = ""
}

// SetShown sets how many datasets match the current filter.
func (s *Bar) SetShown(n int) {
	s.shown = n
}

// SetResultsFocused switches the hints to the result list bindings.
func (s *Bar) SetResultsFocused(focused bool) {
	s.resultsKey = focused
}

// State returns the current state.
func (s *Bar) State() State {
	return s.state
}

// Message returns the current error message.
func (s *Bar) Message() string {
	return s.message
}

// Provenance returns the provenance of the last loaded record set.
func (s *Bar) Provenance() domain.Provenance {
	return s.provenance
}

// SetWidth sets the status bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
}

// Width returns the current width.
func (s *Bar) Width() int {
	return s.width
}
