package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/publicintelligence/datahub/internal/adapters/driving/tui/components/chips"
	"github.com/publicintelligence/datahub/internal/adapters/driving/tui/components/input"
	"github.com/publicintelligence/datahub/internal/adapters/driving/tui/components/list"
	"github.com/publicintelligence/datahub/internal/adapters/driving/tui/components/status"
	"github.com/publicintelligence/datahub/internal/adapters/driving/tui/keymap"
	"github.com/publicintelligence/datahub/internal/adapters/driving/tui/messages"
	"github.com/publicintelligence/datahub/internal/adapters/driving/tui/styles"
	"github.com/publicintelligence/datahub/internal/core/domain"
	"github.com/publicintelligence/datahub/internal/core/ports/driving"
	"github.com/publicintelligence/datahub/internal/logger"
)

const appTitle = "Thai Open Data Catalog"

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap

	input     *input.SearchInput
	typeChips *chips.Row
	tagChips  *chips.Row
	list      *list.DatasetList
	status    *status.Bar
	help      help.Model

	// filter is the session-local query and chip selection.
	filter domain.FilterState

	focus    messages.Focus
	detail   bool
	showHelp bool

	// err holds the last transport failure.
	err error

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:     ports,
		ctx:       context.Background(),
		styles:    s,
		keymap:    km,
		input:     input.NewSearchInput(s),
		typeChips: chips.NewRow(s, "Type", s.FileTypeColor),
		tagChips:  chips.NewRow(s, "Tags", nil),
		list:      list.NewDatasetList(s),
		status:    status.NewBar(s, km),
		help:      help.New(),
		focus:     messages.FocusSearch,
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// SetScheduler attaches a refresh scheduler. It must be called before the
// program starts.
func (a *App) SetScheduler(scheduler driving.RefreshScheduler) {
	a.ports.Scheduler = scheduler
}

// Init implements tea.Model. Without a scheduler the app performs the
// initial load itself.
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.SetWindowTitle("datahub - " + appTitle),
		a.input.Init(),
		a.status.Init(),
	}
	if a.ports.Scheduler == nil {
		cmds = append(cmds, a.loadCmd(false))
	}
	return tea.Batch(cmds...)
}

// loadCmd loads the catalog off the event loop.
func (a *App) loadCmd(force bool) tea.Cmd {
	return func() tea.Msg {
		snap, err := a.ports.Catalog.Load(a.ctx, force)
		return messages.Loaded{Snapshot: snap, Err: err}
	}
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.FocusMsg:
		if a.ports.Scheduler != nil {
			a.ports.Scheduler.SetVisible(true)
		}
		return a, nil

	case tea.BlurMsg:
		if a.ports.Scheduler != nil {
			a.ports.Scheduler.SetVisible(false)
		}
		return a, nil

	case messages.Loaded:
		return a, a.handleLoaded(msg)

	case messages.QueryChanged:
		a.filter.Query = msg.Query
		a.apply()
		return a, nil

	case spinner.TickMsg:
		if a.status.State() != status.StateLoading {
			return a, nil
		}
		var cmd tea.Cmd
		a.status, cmd = a.status.Update(msg)
		return a, cmd

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	// Cursor blink and other input internals.
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a *App) handleLoaded(msg messages.Loaded) tea.Cmd {
	// A concurrent load will report its own outcome.
	if errors.Is(msg.Err, domain.ErrRefreshInProgress) {
		return nil
	}
	if msg.Err != nil {
		logger.Warn("catalog load: %v", msg.Err)
	}
	a.err = msg.Err
	a.status.SetLoaded(msg.Snapshot, msg.Err)
	a.apply()
	return nil
}

// apply re-evaluates the filter against the current snapshot. Selections
// that disappeared with a reload are pruned first.
func (a *App) apply() {
	snap := a.ports.Catalog.Snapshot()
	if snap.IsEmpty() {
		return
	}

	a.filter = a.ports.Catalog.Prune(a.filter)
	results := a.ports.Catalog.Query(a.filter)

	a.list.SetDatasets(results, snap.Stats.Total)
	a.typeChips.SetValues(snap.Facets.FileTypes, a.filter.FileTypes)
	a.tagChips.SetValues(snap.Facets.Tags, a.filter.Tags)
	a.status.SetShown(len(results))
}

//nolint:gocyclo // central key handler
func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	km := a.keymap
	k := msg.String()

	if k == "ctrl+c" {
		return a, tea.Quit
	}

	if a.showHelp {
		if keymap.Matches(k, km.Quit) {
			return a, tea.Quit
		}
		a.showHelp = false
		return a, nil
	}

	if a.detail {
		switch {
		case keymap.Matches(k, km.Quit):
			return a, tea.Quit
		case keymap.Matches(k, km.Back), keymap.Matches(k, km.Select):
			a.detail = false
		}
		return a, nil
	}

	switch {
	case keymap.Matches(k, km.NextFocus):
		return a, a.setFocus(a.focus.Next())
	case keymap.Matches(k, km.PrevFocus):
		return a, a.setFocus(a.focus.Prev())
	case keymap.Matches(k, km.Back):
		return a, a.setFocus(messages.FocusSearch)
	case k == "ctrl+r":
		return a, a.refresh()
	case k == "ctrl+l":
		a.clear()
		return a, nil
	}

	if a.focus == messages.FocusSearch {
		if k == "down" {
			return a, a.setFocus(messages.FocusResults)
		}
		var cmd tea.Cmd
		a.input, cmd = a.input.Update(msg)
		return a, cmd
	}

	switch {
	case keymap.Matches(k, km.Quit):
		return a, tea.Quit
	case keymap.Matches(k, km.Help):
		a.showHelp = true
		return a, nil
	case keymap.Matches(k, km.Refresh):
		return a, a.refresh()
	case keymap.Matches(k, km.Clear):
		a.clear()
		return a, nil
	}

	switch a.focus {
	case messages.FocusFileTypes:
		a.handleChips(a.typeChips, msg, domain.FilterState.ToggleFileType)
	case messages.FocusTags:
		a.handleChips(a.tagChips, msg, domain.FilterState.ToggleTag)
	case messages.FocusResults:
		if keymap.Matches(k, km.Select) {
			a.detail = a.list.SelectedDataset() != nil
			return a, nil
		}
		a.list, _ = a.list.Update(msg)
	case messages.FocusSearch:
	}
	return a, nil
}

func (a *App) handleChips(row *chips.Row, msg tea.KeyMsg, toggle func(domain.FilterState, string) domain.FilterState) {
	if keymap.Matches(msg.String(), a.keymap.Toggle) {
		if v := row.Current(); v != "" {
			a.filter = toggle(a.filter, v)
			a.apply()
		}
		return
	}
	row.Update(msg)
}

// refresh requests a reload that bypasses caches.
func (a *App) refresh() tea.Cmd {
	spin := a.status.SetLoading()
	if a.ports.Scheduler != nil {
		a.ports.Scheduler.Trigger()
		return spin
	}
	return tea.Batch(spin, a.loadCmd(true))
}

func (a *App) clear() {
	a.filter = a.filter.Clear()
	a.input.Reset()
	a.apply()
}

func (a *App) setFocus(f messages.Focus) tea.Cmd {
	a.focus = f
	a.typeChips.SetFocused(f == messages.FocusFileTypes)
	a.tagChips.SetFocused(f == messages.FocusTags)
	a.status.SetResultsFocused(f == messages.FocusResults)
	if f == messages.FocusSearch {
		return a.input.Focus()
	}
	a.input.Blur()
	return nil
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}
	if a.showHelp {
		return a.viewHelp()
	}

	header := lipgloss.JoinVertical(lipgloss.Left,
		a.styles.Title.Render(appTitle),
		a.input.View(),
		a.typeChips.View(),
		a.tagChips.View(),
		"",
	)
	footer := a.status.View()

	bodyHeight := max(a.height-lipgloss.Height(header)-lipgloss.Height(footer), 3)
	var body string
	if a.detail {
		body = a.viewDetail()
	} else {
		a.list.SetDimensions(a.width, bodyHeight)
		body = a.list.View()
	}
	body = lipgloss.NewStyle().Height(bodyHeight).MaxHeight(bodyHeight).Render(body)

	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

// viewDetail renders every field of the selected dataset.
func (a *App) viewDetail() string {
	d := a.list.SelectedDataset()
	if d == nil {
		return ""
	}

	field := func(label, value string) string {
		return a.styles.Muted.Render(fmt.Sprintf("%-14s", label)) + a.styles.Normal.Render(value)
	}
	source := d.SourceName
	if d.IsFeatured() {
		source = a.styles.Featured.Render("★ " + source)
	}

	lines := []string{
		a.styles.Subtitle.Render(d.Title),
		"",
		a.styles.Normal.Render(d.Description),
		"",
		field("Project", d.Project),
		field("Source", source),
		field("Link", a.styles.Link.Render(d.SourceLink)),
		field("Type", a.styles.FileTypeBadge(d.FileType)),
		field("Acquired", d.DateAcquired),
		field("Updated", d.DateUpdated),
		field("License", d.License),
		field("Tags", strings.Join(d.Tags, ", ")),
		"",
		a.styles.Help.Render("[esc] back"),
	}
	return a.styles.Border.Width(max(a.width-4, 20)).Padding(0, 1).Render(strings.Join(lines, "\n"))
}

// viewHelp renders the full keybinding help.
func (a *App) viewHelp() string {
	a.help.ShowAll = true
	a.help.Width = a.width
	return lipgloss.JoinVertical(lipgloss.Left,
		a.styles.Title.Render("Help"),
		"",
		a.help.View(a.keymap),
		"",
		a.styles.Muted.Render("Typing in the search box filters live. ctrl+r refreshes and ctrl+l clears from anywhere."),
		a.styles.Help.Render("[any key] close"),
	)
}

// Program builds the Bubbletea program for the app. Focus reporting is
// enabled so automatic refresh pauses while the terminal is in the background.
func (a *App) Program(opts ...tea.ProgramOption) *tea.Program {
	opts = append([]tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithReportFocus(),
		tea.WithContext(a.ctx),
	}, opts...)
	return tea.NewProgram(a, opts...)
}

// Run starts the TUI application.
func (a *App) Run() error {
	_, err := a.Program().Run()
	if errors.Is(err, tea.ErrProgramKilled) && a.ctx.Err() != nil {
		return nil
	}
	return err
}

// Filter returns the current filter state.
func (a *App) Filter() domain.FilterState {
	return a.filter
}

// Datasets returns the datasets currently listed.
func (a *App) Datasets() []domain.Dataset {
	return a.list.Datasets()
}

// Focus returns the focused pane.
func (a *App) Focus() messages.Focus {
	return a.focus
}

// DetailOpen reports whether the detail pane is shown.
func (a *App) DetailOpen() bool {
	return a.detail
}

// HelpOpen reports whether the help screen is shown.
func (a *App) HelpOpen() bool {
	return a.showHelp
}

// Err returns the last load failure.
func (a *App) Err() error {
	return a.err
}

// Status returns the status bar state.
func (a *App) Status() status.State {
	return a.status.State()
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.input.SetWidth(width)
	a.typeChips.SetWidth(width)
	a.tagChips.SetWidth(width)
	a.status.SetWidth(width)
	a.list.SetDimensions(width, height)
}
