package list

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/publicintelligence/datahub/internal/core/domain"
)

func testDatasets() []domain.Dataset {
	return []domain.Dataset{
		{
			ID: "a", Title: "งบประมาณรายจ่ายประจำปี", SourceName: domain.FeaturedSource,
			FileType: "CSV", DateUpdated: "2024-03-01", Tags: []string{"budget", "finance"},
		},
		{
			ID: "b", Title: "Air Quality Index", SourceName: "Pollution Control Department",
			FileType: "API", DateUpdated: "2024-02-01", Description: "Hourly PM2.5 readings",
		},
		{
			ID: "c", Title: "Population Census", SourceName: "NSO",
			FileType: "Excel", DateUpdated: "2023-12-01",
		},
	}
}

func TestNewDatasetList(t *testing.T) {
	l := NewDatasetList(nil)

	require.NotNil(t, l)
	assert.NotNil(t, l.styles)
	assert.True(t, l.IsEmpty())
	assert.Nil(t, l.SelectedDataset())
	assert.Equal(t, 80, l.Width())
	assert.Equal(t, 10, l.Height())
}

func TestDatasetList_View_Empty(t *testing.T) {
	l := NewDatasetList(nil)
	l.SetDatasets(nil, 5)

	view := l.View()

	assert.Contains(t, view, "0 of 5")
	assert.Contains(t, view, "ไม่พบชุดข้อมูล")
}

func TestDatasetList_View_RendersDatasets(t *testing.T) {
	l := NewDatasetList(nil)
	l.SetDimensions(100, 30)
	l.SetDatasets(testDatasets(), 3)

	view := l.View()

	assert.Contains(t, view, "3 of 3")
	assert.Contains(t, view, "★ งบประมาณรายจ่ายประจำปี")
	assert.Contains(t, view, "Air Quality Index")
	assert.Contains(t, view, "#budget #finance")
	assert.Contains(t, view, "Hourly PM2.5 readings")
	assert.Contains(t, view, "updated 2023-12-01")
}

func TestDatasetList_View_ScrollsToSelection(t *testing.T) {
	l := NewDatasetList(nil)
	l.SetDimensions(100, 5) // room for one item
	l.SetDatasets(testDatasets(), 3)
	l.SetSelected(2)

	view := l.View()

	assert.Contains(t, view, "Population Census")
	assert.NotContains(t, view, "Air Quality Index")
}

func TestDatasetList_Navigation(t *testing.T) {
	l := NewDatasetList(nil)
	l.SetDatasets(testDatasets(), 3)

	l.MoveUp()
	assert.Equal(t, 0, l.Selected())

	l.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, l.Selected())

	l.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	l.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	assert.Equal(t, 2, l.Selected())

	l.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	assert.Equal(t, 1, l.Selected())

	l.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'G'}})
	assert.Equal(t, 2, l.Selected())

	l.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'g'}})
	assert.Equal(t, 0, l.Selected())
}

func TestDatasetList_SetSelected_OutOfRange(t *testing.T) {
	l := NewDatasetList(nil)
	l.SetDatasets(testDatasets(), 3)

	l.SetSelected(10)
	assert.Equal(t, 0, l.Selected())

	l.SetSelected(-1)
	assert.Equal(t, 0, l.Selected())
}

func TestDatasetList_SetDatasets_KeepsSelection(t *testing.T) {
	l := NewDatasetList(nil)
	all := testDatasets()
	l.SetDatasets(all, 3)
	l.SetSelected(2)

	l.SetDatasets([]domain.Dataset{all[2], all[0]}, 3)

	require.NotNil(t, l.SelectedDataset())
	assert.Equal(t, "c", l.SelectedDataset().ID)
	assert.Equal(t, 0, l.Selected())
}

func TestDatasetList_SetDatasets_ResetsWhenGone(t *testing.T) {
	l := NewDatasetList(nil)
	all := testDatasets()
	l.SetDatasets(all, 3)
	l.SetSelected(1)

	l.SetDatasets([]domain.Dataset{all[0], all[2]}, 3)

	assert.Equal(t, 0, l.Selected())
	assert.Equal(t, 2, l.Count())
	assert.Equal(t, 3, l.Total())
}
