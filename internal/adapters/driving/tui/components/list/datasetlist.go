// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/publicintelligence/datahub/internal/adapters/driving/tui/styles"
	"github.com/publicintelligence/datahub/internal/core/domain"
)

// linesPerItem is the rendered height of one dataset.
const linesPerItem = 3

// DatasetList displays query results in a navigable list.
type DatasetList struct {
	datasets []domain.Dataset
	selected int
	total    int
	styles   *styles.Styles
	width    int
	height   int
}

// NewDatasetList creates a new dataset list component.
func NewDatasetList(s *styles.Styles) *DatasetList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &DatasetList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the dataset list.
func (r *DatasetList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (r *DatasetList) Update(msg tea.Msg) (*DatasetList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			r.MoveUp()
		case "down", "j":
			r.MoveDown()
		case "home", "g":
			r.selected = 0
		case "end", "G":
			if len(r.datasets) > 0 {
				r.selected = len(r.datasets) - 1
			}
		}
	}
	return r, nil
}

// View renders the dataset list.
func (r *DatasetList) View() string {
	header := r.styles.Subtitle.Render(fmt.Sprintf("Datasets (%d of %d)", len(r.datasets), r.total))
	if len(r.datasets) == 0 {
		return header + "\n\n" + r.styles.Muted.Render("ไม่พบชุดข้อมูลที่ตรงกับเงื่อนไข")
	}

	lines := make([]string, 0, len(r.datasets)*linesPerItem+2)
	lines = append(lines, header, "")

	visibleCount := (r.height - 2) / linesPerItem
	if visibleCount < 1 {
		visibleCount = 1
	}

	start := 0
	if r.selected >= visibleCount {
		start = r.selected - visibleCount + 1
	}
	end := min(start+visibleCount, len(r.datasets))

	for i := start; i < end; i++ {
		lines = append(lines, r.renderDataset(i, &r.datasets[i]))
	}

	return strings.Join(lines, "\n")
}

// renderDataset formats a single dataset as title, source and tag lines.
func (r *DatasetList) renderDataset(index int, d *domain.Dataset) string {
	indicator := "  "
	if index == r.selected {
		indicator = "> "
	}

	maxTitle := max(r.width-24, 10)
	title := ansi.Truncate(d.Title, maxTitle, "…")
	if d.IsFeatured() {
		title = "★ " + title
	}

	var titleLine string
	if index == r.selected {
		titleLine = r.styles.Selected.Render(indicator+title) + "  " + r.styles.FileTypeBadge(d.FileType)
	} else {
		titleLine = r.styles.Normal.Render(indicator+title) + "  " + r.styles.FileTypeBadge(d.FileType)
	}

	sourceStyle := r.styles.Muted
	if d.IsFeatured() {
		sourceStyle = r.styles.Featured
	}
	sourceLine := sourceStyle.Render(fmt.Sprintf("    %s · updated %s", d.SourceName, d.DateUpdated))

	detail := ansi.Truncate(d.Description, max(r.width-6, 20), "…")
	if len(d.Tags) > 0 {
		detail = ansi.Truncate("#"+strings.Join(d.Tags, " #"), max(r.width-6, 20), "…")
	}
	detailLine := r.styles.Muted.Render("    " + detail)

	return titleLine + "\n" + sourceLine + "\n" + detailLine
}

// SetDatasets replaces the list contents. total is the size of the whole
// record set. The selection follows the previously selected dataset when
// it is still present.
func (r *DatasetList) SetDatasets(datasets []domain.Dataset, total int) {
	var keepID string
	if d := r.SelectedDataset(); d != nil {
		keepID = d.ID
	}

	r.datasets = datasets
	r.total = total
	r.selected = 0
	for i := range datasets {
		if datasets[i].ID == keepID {
			r.selected = i
			break
		}
	}
}

// Datasets returns the current datasets.
func (r *DatasetList) Datasets() []domain.Dataset {
	return r.datasets
}

// Total returns the size of the whole record set.
func (r *DatasetList) Total() int {
	return r.total
}

// Selected returns the index of the selected dataset.
func (r *DatasetList) Selected() int {
	return r.selected
}

// SetSelected sets the selected index.
func (r *DatasetList) SetSelected(index int) {
	if index >= 0 && index < len(r.datasets) {
		r.selected = index
	}
}

// SelectedDataset returns the currently selected dataset, or nil if none.
func (r *DatasetList) SelectedDataset() *domain.Dataset {
	if r.selected < 0 || r.selected >= len(r.datasets) {
		return nil
	}
	return &r.datasets[r.selected]
}

// MoveUp moves selection up.
func (r *DatasetList) MoveUp() {
	if r.selected > 0 {
		r.selected--
	}
}

// MoveDown moves selection down.
func (r *DatasetList) MoveDown() {
	if r.selected < len(r.datasets)-1 {
		r.selected++
	}
}

// SetDimensions sets the component dimensions.
func (r *DatasetList) SetDimensions(width, height int) {
	r.width = width
	r.height = height
}

// Width returns the current width.
func (r *DatasetList) Width() int {
	return r.width
}

// Height returns the current height.
func (r *DatasetList) Height() int {
	return r.height
}

// Count returns the number of datasets shown.
func (r *DatasetList) Count() int {
	return len(r.datasets)
}

// IsEmpty returns whether the list is empty.
func (r *DatasetList) IsEmpty() bool {
	return len(r.datasets) == 0
}
