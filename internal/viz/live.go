package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/stabkit/stabsel/internal/stabsel"
)

const (
	graphWidth  = 72
	graphHeight = 14
)

type TickMsg time.Time

// Model replays a convergence trajectory replicate by replicate.
type Model struct {
	traj     []stabsel.TrajectoryPoint
	selected []stabsel.Frequency
	lambda   float64
	rule     stabsel.Rule
	playHead int
	running  bool
	showHelp bool
	fps      int
}

func NewModel(conv *stabsel.ConvergenceCurve, fps int) Model {
	if fps < 1 {
		fps = 15
	}
	return Model{
		traj:     conv.Trajectory,
		selected: conv.Selected,
		lambda:   conv.Lambda,
		rule:     conv.Rule,
		playHead: 0,
		running:  true,
		fps:      fps,
	}
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.playHead = 0
			m.running = true
		case "[":
			m.running = false
			if m.playHead > 0 {
				m.playHead--
			}
		case "]":
			m.running = false
			if m.playHead < len(m.traj)-1 {
				m.playHead++
			}
		case "g":
			m.running = false
			m.playHead = len(m.traj) - 1
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			if m.playHead < len(m.traj)-1 {
				m.playHead++
			} else {
				m.running = false
			}
		}
		return m, m.tick()
	}
	return m, nil
}

func (m Model) View() string {
	if len(m.traj) == 0 {
		return Subtle.Render("no trajectory to replay") + "\n"
	}

	var s strings.Builder
	s.WriteString(HeaderStyle.Render("STABILITY CONVERGENCE") + "\n")

	graph := ConvergencePlot(m.traj[:m.playHead+1], graphWidth, graphHeight)

	stats := m.statsPanel()
	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, graph, statsStyle.Render(stats)))
	s.WriteString("\n")

	done := float64(m.playHead+1) / float64(len(m.traj))
	s.WriteString(FrequencyBar(done, graphWidth) + "\n")

	if m.showHelp {
		s.WriteString(KeyHint.Render("space pause/resume  [ ] scrub  r restart  g end  q quit") + "\n")
	} else {
		s.WriteString(KeyHint.Render("? help  q quit") + "\n")
	}
	return s.String()
}

func (m Model) statsPanel() string {
	pt := m.traj[m.playHead]
	current, ok := lastFinite(m.traj, m.playHead)

	var sb strings.Builder
	status := StatusRunning.Render("PLAYING")
	if !m.running {
		status = StatusPaused.Render("PAUSED")
	}
	sb.WriteString(status + "\n\n")

	sb.WriteString(MetricLabel.Render("penalty") + MetricValue.Render(fmt.Sprintf("%.6g", m.lambda)) + "\n")
	sb.WriteString(MetricLabel.Render("rule") + MetricValue.Render(string(m.rule)) + "\n")
	sb.WriteString(MetricLabel.Render("replicates") + MetricValue.Render(fmt.Sprintf("%d", pt.Replicates)) + "\n")

	if ok {
		sb.WriteString(MetricLabel.Render("stability") + MetricValue.Render(fmt.Sprintf("%.4f", current.Stability)) + "\n")
		sb.WriteString(MetricLabel.Render("interval") + MetricValue.Render(fmt.Sprintf("[%.4f, %.4f]", current.Lower, current.Upper)) + "\n")
	} else {
		sb.WriteString(MetricLabel.Render("stability") + Subtle.Render("undefined") + "\n")
	}

	sb.WriteString("\n" + Subtle.Render(fmt.Sprintf("%d predictors selected", len(m.selected))))
	return sb.String()
}
