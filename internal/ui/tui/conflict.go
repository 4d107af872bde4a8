// Package tui provides interactive terminal UI components using BubbleTea.
package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/klauern/notesync/internal/resolve"
)

// ErrCancelled is returned when the user quits without choosing.
var ErrCancelled = errors.New("conflict resolution cancelled")

// pane identifies which version is shown in the viewport.
type pane int

const (
	paneLocal pane = iota
	paneRemote
)

// conflictKeyMap defines the key bindings for conflict resolution.
type conflictKeyMap struct {
	Local  key.Binding
	Remote key.Binding
	Merge  key.Binding
	Edit   key.Binding
	Switch key.Binding
	Help   key.Binding
	Quit   key.Binding
}

func defaultConflictKeyMap() conflictKeyMap {
	return conflictKeyMap{
		Local: key.NewBinding(
			key.WithKeys("l", "1"),
			key.WithHelp("l/1", "keep local"),
		),
		Remote: key.NewBinding(
			key.WithKeys("r", "2"),
			key.WithHelp("r/2", "keep remote"),
		),
		Merge: key.NewBinding(
			key.WithKeys("m", "3"),
			key.WithHelp("m/3", "merge"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e", "4"),
			key.WithHelp("e/4", "edit then re-read"),
		),
		Switch: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "switch version"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "cancel"),
		),
	}
}

// Styles for the conflict viewer.
var conflictStyles = struct {
	Title       lipgloss.Style
	Help        lipgloss.Style
	Status      lipgloss.Style
	PaneLabel   lipgloss.Style
	ActivePane  lipgloss.Style
	LineNumber  lipgloss.Style
	LocalLines  lipgloss.Style
	RemoteLines lipgloss.Style
	Chosen      lipgloss.Style
}{
	Title:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6")).Padding(0, 1),
	Help:        lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	Status:      lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Padding(0, 1),
	PaneLabel:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	ActivePane:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4")),
	LineNumber:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	LocalLines:  lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	RemoteLines: lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
	Chosen:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("3")).Padding(0, 1),
}

// titler renders pane names for display.
var titler = cases.Title(language.English)

// ConflictModel is the BubbleTea model for resolving one note conflict.
type ConflictModel struct {
	path   string
	local  string
	remote string

	viewport viewport.Model
	keys     conflictKeyMap
	active   pane

	choice    resolve.Choice
	chosen    bool
	cancelled bool
	showHelp  bool
	ready     bool
	width     int
	height    int
}

// NewConflictModel creates a model for the given conflicting note.
func NewConflictModel(path, localContent, remoteContent string) ConflictModel {
	return ConflictModel{
		path:   path,
		local:  localContent,
		remote: remoteContent,
		keys:   defaultConflictKeyMap(),
		active: paneLocal,
	}
}

// Init implements tea.Model.
func (m ConflictModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m ConflictModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		viewportHeight := max(msg.Height-7, 5)
		if !m.ready {
			m.viewport = viewport.New(msg.Width-2, viewportHeight)
			m.viewport.SetContent(m.paneContent())
			m.ready = true
		} else {
			m.viewport.Width = msg.Width - 2
			m.viewport.Height = viewportHeight
		}

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.cancelled = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
			return m, nil

		case key.Matches(msg, m.keys.Switch):
			if m.active == paneLocal {
				m.active = paneRemote
			} else {
				m.active = paneLocal
			}
			if m.ready {
				m.viewport.SetContent(m.paneContent())
				m.viewport.GotoTop()
			}
			return m, nil

		case key.Matches(msg, m.keys.Local):
			return m.choose(resolve.ChoiceLocal)

		case key.Matches(msg, m.keys.Remote):
			return m.choose(resolve.ChoiceRemote)

		case key.Matches(msg, m.keys.Merge):
			return m.choose(resolve.ChoiceMerge)

		case key.Matches(msg, m.keys.Edit):
			return m.choose(resolve.ChoiceEdit)
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m ConflictModel) choose(c resolve.Choice) (tea.Model, tea.Cmd) {
	m.choice = c
	m.chosen = true
	return m, tea.Quit
}

func (m ConflictModel) paneContent() string {
	content := m.local
	style := conflictStyles.LocalLines
	if m.active == paneRemote {
		content = m.remote
		style = conflictStyles.RemoteLines
	}

	lines := strings.Split(content, "\n")
	var b strings.Builder
	for i, line := range lines {
		b.WriteString(conflictStyles.LineNumber.Render(fmt.Sprintf("%4d │ ", i+1)))
		b.WriteString(style.Render(line))
		if i < len(lines)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m ConflictModel) paneTabs() string {
	var tabs []string
	for _, p := range []pane{paneLocal, paneRemote} {
		label := titler.String(paneName(p))
		if p == m.active {
			tabs = append(tabs, conflictStyles.ActivePane.Render("["+label+"]"))
		} else {
			tabs = append(tabs, conflictStyles.PaneLabel.Render(" "+label+" "))
		}
	}
	return strings.Join(tabs, " ")
}

func paneName(p pane) string {
	if p == paneRemote {
		return "remote"
	}
	return "local"
}

// View implements tea.Model.
func (m ConflictModel) View() string {
	if m.chosen || m.cancelled {
		return ""
	}

	var b strings.Builder

	b.WriteString(conflictStyles.Title.Render("Conflict: " + m.path))
	b.WriteString("\n\n")
	b.WriteString(m.paneTabs())
	b.WriteString("\n")

	if m.ready {
		b.WriteString(m.viewport.View())
		b.WriteString("\n")
		scroll := int(m.viewport.ScrollPercent() * 100)
		b.WriteString(conflictStyles.Status.Render(fmt.Sprintf("Scroll: %d%%", scroll)))
		b.WriteString("\n")
	} else {
		b.WriteString("Loading...\n")
	}

	if m.showHelp {
		b.WriteString("\n")
		b.WriteString(m.renderFullHelp())
	} else {
		b.WriteString(m.renderShortHelp())
	}

	return b.String()
}

func (m ConflictModel) renderShortHelp() string {
	keys := []string{
		"tab switch",
		"l local",
		"r remote",
		"m merge",
		"e edit",
		"? help",
		"q cancel",
	}
	return conflictStyles.Help.Render(strings.Join(keys, " · "))
}

func (m ConflictModel) renderFullHelp() string {
	help := `Navigation:
  ↑/k      Scroll up
  ↓/j      Scroll down
  Tab      Switch between local and remote version

Resolution:
  l/1      Keep the local version
  r/2      Keep the remote version
  m/3      Merge both versions
  e/4      Open your editor, then re-read the local file

General:
  ?        Toggle full help
  q/Esc    Cancel (falls back to the configured strategy)`
	return conflictStyles.Help.Render(help)
}

// Choice returns the user's decision. ok is false when cancelled.
func (m ConflictModel) Choice() (choice resolve.Choice, ok bool) {
	return m.choice, m.chosen
}

// RunConflict runs the interactive viewer and returns the decision.
func RunConflict(path, localContent, remoteContent string) (resolve.Choice, error) {
	mdl := NewConflictModel(path, localContent, remoteContent)
	finalModel, err := tea.NewProgram(mdl, tea.WithAltScreen()).Run()
	if err != nil {
		return 0, err
	}

	if m, ok := finalModel.(ConflictModel); ok {
		if choice, chosen := m.Choice(); chosen {
			return choice, nil
		}
	}
	return 0, ErrCancelled
}

// Prompt adapts the viewer to the resolver's prompt capability.
type Prompt struct{}

// Choose implements resolve.Prompter.
func (Prompt) Choose(path, localContent, remoteContent string) (resolve.Choice, error) {
	return RunConflict(path, localContent, remoteContent)
}
