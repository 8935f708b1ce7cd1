package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

const statusWidth = 10

type progressModel struct {
	title      string
	events     <-chan Event
	spinner    spinner.Model
	bar        progress.Model
	items      []fixtureItem
	index      map[string]int
	stageLabel string
	width      int
	done       bool
}

type fixtureItem struct {
	path   string
	status string
	stage  Stage
	failed bool
}

type eventMsg Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model listing each fixture with its
// current stage above an overall progress bar. The model quits once events
// is closed.
func NewProgressModel(title string, files []string, events <-chan Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 76

	items := make([]fixtureItem, 0, len(files))
	index := make(map[string]int, len(files))
	for i, file := range files {
		items = append(items, fixtureItem{path: file, status: string(StatusQueued)})
		index[file] = i
	}
	return &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		bar:     bar,
		items:   items,
		index:   index,
		width:   80,
	}
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listen())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.apply(Event(msg))
		return m, tea.Batch(cmd, m.listen())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.bar.Width = msg.Width - 4
		}
		return m, nil
	case progress.FrameMsg:
		next, cmd := m.bar.Update(msg)
		m.bar = next.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	if len(m.items) == 0 {
		return ""
	}
	header := m.title
	if m.stageLabel != "" {
		header = fmt.Sprintf("%s (%s)", header, m.stageLabel)
	}
	if m.done {
		header = "done: " + header
	} else {
		header = m.spinner.View() + " " + header
	}

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(header))
	b.WriteString("\n\n")

	nameWidth := max(20, m.width-statusWidth-4)
	for _, item := range m.items {
		status := styleStatus(item.status).Render(fmt.Sprintf("%*s", statusWidth, item.status))
		b.WriteString("  " + status + " " + truncate(item.path, nameWidth) + "\n")
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(m.bar.ViewAs(1.0))
	} else {
		b.WriteString(m.bar.View())
	}
	b.WriteString("\n")
	return b.String()
}

func (m *progressModel) listen() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) apply(ev Event) tea.Cmd {
	label := statusLabel(ev.Stage, ev.Status)
	if ev.File == "" {
		if label != "" {
			m.stageLabel = label
		}
		return nil
	}
	idx, ok := m.index[ev.File]
	if !ok || label == "" {
		return nil
	}
	item := &m.items[idx]
	// an error sticks even if a later stage reports done
	if item.failed {
		return nil
	}
	item.status = label
	item.stage = ev.Stage
	item.failed = ev.Status == StatusError
	return m.bar.SetPercent(m.fraction())
}

// fraction is the share of work finished across all fixtures.
func (m *progressModel) fraction() float64 {
	total := 0.0
	for _, item := range m.items {
		switch item.status {
		case string(StatusDone), string(StatusError):
			total += 1.0
		default:
			total += progressFromStage(item.stage)
		}
	}
	return total / float64(len(m.items))
}

func progressFromStage(stage Stage) float64 {
	switch stage {
	case StageLoad:
		return 0.2
	case StageLayout:
		return 0.6
	case StageEmit:
		return 0.85
	default:
		return 0.0
	}
}

func statusLabel(stage Stage, status Status) string {
	switch status {
	case StatusQueued, StatusDone, StatusError:
		return string(status)
	case StatusWorking:
		return stageLabel(stage)
	default:
		return ""
	}
}

func stageLabel(stage Stage) string {
	switch stage {
	case StageLoad:
		return "loading"
	case StageLayout:
		return "checking"
	case StageEmit:
		return "emitting"
	default:
		return ""
	}
}

func styleStatus(status string) lipgloss.Style {
	switch status {
	case string(StatusDone):
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case string(StatusError):
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case "loading", "checking", "emitting":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	}
}

func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}
