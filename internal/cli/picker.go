package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	errs "github.com/matzehuels/pangraph/pkg/errors"
	"github.com/matzehuels/pangraph/pkg/graph"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
	headerStyle  = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// =============================================================================
// StrainPickerModel - Interactive strain selection
// =============================================================================

// StrainItem is one row of the strain picker.
type StrainItem struct {
	Name     string
	Length   int
	Circular bool
}

// StrainPickerModel is the bubbletea model for interactive strain selection.
type StrainPickerModel struct {
	Items     []StrainItem
	Chosen    map[int]bool
	Cursor    int
	Offset    int
	Height    int
	Confirmed bool
}

// NewStrainPickerModel creates a picker with nothing selected.
func NewStrainPickerModel(items []StrainItem) StrainPickerModel {
	return StrainPickerModel{
		Items:  items,
		Chosen: make(map[int]bool, len(items)),
		Height: 15,
	}
}

// strainItems lists the strains of g in name order.
func strainItems(g *graph.Graph) []StrainItem {
	paths := g.Paths()
	items := make([]StrainItem, len(paths))
	for i, p := range paths {
		items[i] = StrainItem{Name: p.Name, Length: p.Length, Circular: p.Circular}
	}
	return items
}

// Selected returns the chosen strain names in list order.
func (m StrainPickerModel) Selected() []string {
	var out []string
	for i, it := range m.Items {
		if m.Chosen[i] {
			out = append(out, it.Name)
		}
	}
	return out
}

func (m StrainPickerModel) Init() tea.Cmd {
	return nil
}

func (m StrainPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Items)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case " ", "x":
			if len(m.Items) > 0 {
				m.Chosen[m.Cursor] = !m.Chosen[m.Cursor]
			}
		case "a":
			all := len(m.Selected()) < len(m.Items)
			for i := range m.Items {
				m.Chosen[i] = all
			}
		case "enter":
			if len(m.Selected()) == 0 {
				return m, nil
			}
			m.Confirmed = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
	}
	return m, nil
}

func (m StrainPickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Strains"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  space toggle  a all  ⏎ confirm  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Items))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		it := m.Items[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		mark := "[ ]"
		if m.Chosen[i] {
			mark = "[x]"
		}
		topology := "linear"
		if it.Circular {
			topology = "circular"
		}
		rows = append(rows, []string{cursor + mark, it.Name, fmt.Sprintf("%d bp", it.Length), topology})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Strain", "Length", "Topology").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			base := lipgloss.NewStyle()
			if col >= 2 {
				base = base.Foreground(colorDim)
			}
			switch {
			case idx == m.Cursor && m.Chosen[idx]:
				return base.Foreground(colorGreen).Bold(true)
			case idx == m.Cursor:
				return base.Bold(true)
			case m.Chosen[idx]:
				return base.Foreground(colorGreen)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  %d of %d selected", len(m.Selected()), len(m.Items))))

	return b.String()
}

// pickStrains runs the picker over the strains of g.
func pickStrains(ctx context.Context, g *graph.Graph) ([]string, error) {
	final, err := tea.NewProgram(NewStrainPickerModel(strainItems(g)), tea.WithContext(ctx)).Run()
	if err != nil {
		return nil, err
	}
	m, ok := final.(StrainPickerModel)
	if !ok || !m.Confirmed {
		return nil, errs.New(errs.ErrCodeInvalidStrainSet, "no strains selected")
	}
	return m.Selected(), nil
}
