package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/gdbind/class"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	classStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	tagStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	detailStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type modelState int

const (
	stateBrowse modelState = iota
	stateDetail
)

type interactiveModel struct {
	reg      *class.Registry
	source   string
	all      []*class.Descriptor
	visible  []*class.Descriptor
	filter   textinput.Model
	detail   string
	selected int
	state    modelState
}

func newInteractiveModel(reg *class.Registry, apiFile string) *interactiveModel {
	all := reg.Classes()
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })

	ti := textinput.New()
	ti.Placeholder = "class name"
	ti.Prompt = "filter: "
	ti.Width = 40
	ti.Focus()

	source := "built-in classes"
	if apiFile != "" {
		source = apiFile
	}
	m := &interactiveModel{
		reg:    reg,
		source: source,
		all:    all,
		filter: ti,
		state:  stateBrowse,
	}
	m.applyFilter()
	return m
}

func (m *interactiveModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *interactiveModel) applyFilter() {
	q := strings.ToLower(strings.TrimSpace(m.filter.Value()))
	m.visible = m.visible[:0]
	for _, d := range m.all {
		if q == "" || strings.Contains(strings.ToLower(d.Name), q) {
			m.visible = append(m.visible, d)
		}
	}
	if m.selected >= len(m.visible) {
		m.selected = max(len(m.visible)-1, 0)
	}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "up":
			if m.state == stateBrowse && m.selected > 0 {
				m.selected--
			}
			return m, nil

		case "down":
			if m.state == stateBrowse && m.selected < len(m.visible)-1 {
				m.selected++
			}
			return m, nil

		case "enter":
			switch m.state {
			case stateBrowse:
				if len(m.visible) > 0 {
					var b strings.Builder
					printClass(&b, m.reg, m.visible[m.selected].Name)
					m.detail = b.String()
					m.state = stateDetail
				}
			case stateDetail:
				m.state = stateBrowse
			}
			return m, nil

		case "esc":
			switch m.state {
			case stateBrowse:
				if m.filter.Value() == "" {
					return m, tea.Quit
				}
				m.filter.SetValue("")
				m.applyFilter()
			case stateDetail:
				m.state = stateBrowse
			}
			return m, nil

		case "q":
			if m.state == stateDetail {
				return m, tea.Quit
			}
		}
	}

	if m.state != stateBrowse {
		return m, nil
	}
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.applyFilter()
	return m, cmd
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Class Inspector"))
	b.WriteString(" ")
	b.WriteString(m.source)
	b.WriteString("\n\n")

	switch m.state {
	case stateBrowse:
		b.WriteString(m.filter.View())
		b.WriteString("\n\n")
		if len(m.visible) == 0 {
			b.WriteString(errorStyle.Render("No matching classes"))
			b.WriteString("\n")
		}
		for i, d := range m.visible {
			line := classStyle.Render(d.Name) + " " + tagStyle.Render(describe(d))
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + d.Name + " " + describe(d)))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render(fmt.Sprintf("↑/↓ select • enter details • esc clear • %d/%d classes", len(m.visible), len(m.all))))

	case stateDetail:
		b.WriteString(detailStyle.Render(m.detail))
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("enter back • q quit"))
	}

	return b.String()
}

func runInteractive(reg *class.Registry, apiFile string) error {
	p := tea.NewProgram(newInteractiveModel(reg, apiFile), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
