package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/prismwm/prism/internal/ipc"
)

// pollInterval is how often the monitor queries the daemon.
const pollInterval = 500 * time.Millisecond

type tickMsg time.Time

type statusMsg struct {
	status  *ipc.Status
	windows []ipc.WindowInfo
	err     error
}

// MonitorModel is the live stats view over a running compositor.
type MonitorModel struct {
	socketPath string
	status     *ipc.Status
	windows    table.Model
	err        error
	width      int
	height     int
}

// NewMonitorModel creates the monitor view. socketPath may be empty for
// the default control socket.
func NewMonitorModel(socketPath string) *MonitorModel {
	cols := []table.Column{
		{Title: "ID", Width: 5},
		{Title: "Title", Width: 22},
		{Title: "Geometry", Width: 18},
		{Title: "State", Width: 11},
		{Title: "Focus", Width: 5},
	}
	t := table.New(
		table.WithColumns(cols),
		table.WithHeight(10),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Bold(true).Foreground(ColorPrimary)
	styles.Selected = styles.Selected.Foreground(ColorText)
	t.SetStyles(styles)

	return &MonitorModel{socketPath: socketPath, windows: t}
}

func (m *MonitorModel) Init() tea.Cmd {
	return tea.Batch(m.poll, tick())
}

func tick() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// poll queries the daemon once for status and window list.
func (m *MonitorModel) poll() tea.Msg {
	client, err := ipc.Dial(m.socketPath)
	if err != nil {
		return statusMsg{err: err}
	}
	defer client.Close()

	statusReply, err := client.Send(&ipc.Message{Type: ipc.TypeStatus})
	if err != nil {
		return statusMsg{err: err}
	}
	windowsReply, err := client.Send(&ipc.Message{Type: ipc.TypeWindows})
	if err != nil {
		return statusMsg{err: err}
	}
	return statusMsg{status: statusReply.Status, windows: windowsReply.Windows}
}

func (m *MonitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.windows, cmd = m.windows.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		return m, tea.Batch(m.poll, tick())

	case statusMsg:
		m.err = msg.err
		if msg.err == nil {
			m.status = msg.status
			rows := make([]table.Row, 0, len(msg.windows))
			for _, w := range msg.windows {
				focus := ""
				if w.Focused {
					focus = "*"
				}
				rows = append(rows, table.Row{
					fmt.Sprintf("%d", w.ID),
					w.Title,
					fmt.Sprintf("%dx%d @%d,%d", w.Width, w.Height, w.X, w.Y),
					w.State,
					focus,
				})
			}
			m.windows.SetRows(rows)
		}
	}
	return m, nil
}

func (m *MonitorModel) View() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("Prism Monitor"))
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(ErrorStyle.Render(fmt.Sprintf("✗ %v", m.err)))
		b.WriteString(FooterStyle.Render("\n[q] Quit"))
		return b.String()
	}
	if m.status == nil {
		return b.String() + "Connecting..."
	}

	st := m.status
	stat := func(label, value string) string {
		return lipgloss.JoinHorizontal(lipgloss.Top,
			LabelStyle.Render(label), StatStyle.Render(value)) + "\n"
	}
	b.WriteString(stat("FPS", fmt.Sprintf("%.1f", st.CurrentFPS)))
	b.WriteString(stat("Frame time", st.AverageFrameTime.String()))
	b.WriteString(stat("Frames", fmt.Sprintf("%d", st.FrameCount)))
	b.WriteString(stat("Draw calls", fmt.Sprintf("%d", st.DrawCalls)))
	if st.SkippedWindows > 0 {
		b.WriteString(WarnStyle.Render(fmt.Sprintf("%d windows skipped last frame", st.SkippedWindows)))
		b.WriteString("\n")
	}
	for _, e := range st.Effects {
		if e.Unsupported {
			b.WriteString(WarnStyle.Render(fmt.Sprintf("effect %s enabled but not implemented", e.Name)))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(m.windows.View())
	b.WriteString(FooterStyle.Render("\n[q] Quit"))
	return b.String()
}
