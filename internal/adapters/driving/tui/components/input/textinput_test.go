package input

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/publicintelligence/datahub/internal/adapters/driving/tui/messages"
)

// collect runs a command and flattens any batch into its messages.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		return []tea.Msg{msg}
	}
	var out []tea.Msg
	for _, c := range batch {
		out = append(out, collect(c)...)
	}
	return out
}

func TestNewSearchInput(t *testing.T) {
	input := NewSearchInput(nil)

	require.NotNil(t, input)
	assert.NotNil(t, input.styles)
	assert.Equal(t, "", input.Value())
	assert.True(t, input.Focused())
	assert.Equal(t, 50, input.Width())
}

func TestSearchInput_Init(t *testing.T) {
	assert.NotNil(t, NewSearchInput(nil).Init())
}

func TestSearchInput_Update_EmitsQueryChanged(t *testing.T) {
	input := NewSearchInput(nil)

	_, cmd := input.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("ข")})

	assert.Equal(t, "ข", input.Value())
	assert.Contains(t, collect(cmd), messages.QueryChanged{Query: "ข"})
}

func TestSearchInput_Update_NoChangeNoMessage(t *testing.T) {
	input := NewSearchInput(nil)

	_, cmd := input.Update(tea.KeyMsg{Type: tea.KeyLeft})

	for _, msg := range collect(cmd) {
		_, isQuery := msg.(messages.QueryChanged)
		assert.False(t, isQuery)
	}
}

func TestSearchInput_Update_Backspace(t *testing.T) {
	input := NewSearchInput(nil)
	input.SetValue("test")

	_, cmd := input.Update(tea.KeyMsg{Type: tea.KeyBackspace})

	assert.Equal(t, "tes", input.Value())
	assert.Contains(t, collect(cmd), messages.QueryChanged{Query: "tes"})
}

func TestSearchInput_View(t *testing.T) {
	view := NewSearchInput(nil).View()

	assert.Contains(t, view, "Search")
}

func TestSearchInput_FocusBlur(t *testing.T) {
	input := NewSearchInput(nil)

	input.Blur()
	assert.False(t, input.Focused())

	assert.NotNil(t, input.Focus())
	assert.True(t, input.Focused())
}

func TestSearchInput_SetWidth(t *testing.T) {
	input := NewSearchInput(nil)

	input.SetWidth(100)
	assert.Equal(t, 100, input.Width())

	input.SetWidth(10)
	assert.Equal(t, 10, input.Width())
}

func TestSearchInput_Reset(t *testing.T) {
	input := NewSearchInput(nil)
	input.SetValue("some text")

	input.Reset()

	assert.Equal(t, "", input.Value())
}
