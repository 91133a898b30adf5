package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/distmeta/pkg/descriptor"
)

var (
	tabActiveStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan).Underline(true)
	tabInactiveStyle = lipgloss.NewStyle().Foreground(colorGray)
	listDimStyle     = lipgloss.NewStyle().Foreground(colorDim)
)

var showTabs = []string{"Overview", "Requirements", "Packages", "Description"}

// ShowModel is the bubbletea model behind `show --interactive`: one tab per
// part of the descriptor, each scrollable.
type ShowModel struct {
	Descriptor *descriptor.Descriptor
	Tab        int
	Offset     int
	Height     int

	lines [][]string // rendered lines per tab
}

// NewShowModel creates a viewer for d.
func NewShowModel(d *descriptor.Descriptor) ShowModel {
	m := ShowModel{Descriptor: d, Height: 20}
	m.lines = [][]string{
		overviewLines(d),
		requirementLines(d),
		orEmpty(packageLines(d), "no packages"),
		strings.Split(strings.TrimRight(d.LongDescription, "\n"), "\n"),
	}
	return m
}

func (m ShowModel) Init() tea.Cmd {
	return nil
}

func (m ShowModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "right", "l", "tab":
			m.Tab = (m.Tab + 1) % len(showTabs)
			m.Offset = 0
		case "left", "h", "shift+tab":
			m.Tab = (m.Tab + len(showTabs) - 1) % len(showTabs)
			m.Offset = 0
		case "up", "k":
			if m.Offset > 0 {
				m.Offset--
			}
		case "down", "j":
			if m.Offset < m.maxOffset() {
				m.Offset++
			}
		case "pgdown", " ":
			m.Offset = min(m.Offset+m.Height, m.maxOffset())
		case "pgup":
			m.Offset = max(m.Offset-m.Height, 0)
		case "1", "2", "3", "4":
			m.Tab = int(msg.String()[0] - '1')
			m.Offset = 0
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-7, 5)
		m.Offset = min(m.Offset, m.maxOffset())
	}
	return m, nil
}

func (m ShowModel) maxOffset() int {
	return max(len(m.lines[m.Tab])-m.Height, 0)
}

func (m ShowModel) View() string {
	var b strings.Builder

	d := m.Descriptor
	b.WriteString(StyleTitle.Render(d.Name + " " + d.Version))
	b.WriteString("\n")

	tabs := make([]string, len(showTabs))
	for i, name := range showTabs {
		label := fmt.Sprintf("%d %s", i+1, name)
		if i == m.Tab {
			tabs[i] = tabActiveStyle.Render(label)
		} else {
			tabs[i] = tabInactiveStyle.Render(label)
		}
	}
	b.WriteString(strings.Join(tabs, "   "))
	b.WriteString("\n\n")

	lines := m.lines[m.Tab]
	end := min(m.Offset+m.Height, len(lines))
	for _, line := range lines[m.Offset:end] {
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	footer := "←/→ tab  ↑/↓ scroll  q quit"
	if len(lines) > m.Height {
		footer += fmt.Sprintf("  [%d-%d/%d]", m.Offset+1, end, len(lines))
	}
	b.WriteString(listDimStyle.Render(footer))
	return b.String()
}

func overviewLines(d *descriptor.Descriptor) []string {
	var lines []string
	if d.Description != "" {
		lines = append(lines, StyleDim.Render(d.Description), "")
	}
	for _, kv := range overviewFields(d) {
		lines = append(lines, styleKey.Render(kv[0])+" "+StyleValue.Render(kv[1]))
	}
	return lines
}

func requirementLines(d *descriptor.Descriptor) []string {
	if len(d.InstallRequires) == 0 {
		return []string{listDimStyle.Render("no install requirements")}
	}
	rows := make([][]string, 0, len(d.InstallRequires))
	for _, r := range d.InstallRequires {
		rows = append(rows, []string{r.Name, orDash(r.Constraint())})
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Requirement", "Constraint").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return lipgloss.NewStyle().Foreground(colorGray).Bold(true).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	return strings.Split(t.Render(), "\n")
}

func orEmpty(lines []string, placeholder string) []string {
	if len(lines) == 0 {
		return []string{listDimStyle.Render(placeholder)}
	}
	return lines
}
