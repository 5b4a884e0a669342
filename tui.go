package main

import (
	"fmt"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"livecap/transcriber"
)

// TUI message types
type TranscriptMsg struct {
	Render string // styled lines, oldest first
	Plain  string
}
type ModeLineMsg struct{ Text string } // "[text | en | 2 lines]"
type SessionDoneMsg struct {
	Result transcriber.SessionResult
	Err    error
}
type statusClearMsg struct{ seq int }
type tickMsg time.Time

const (
	hPad          = 2
	statusTimeout = 2 * time.Second
)

// layoutControl is the part of the pipeline the TUI drives.
type layoutControl interface {
	Resize(width int)
	RequestBreak()
}

type tuiModel struct {
	ctl        layoutControl
	copyFn     func(string) error
	fixedWidth bool // width comes from the config file, ignore the window

	frame         int
	width, height int
	render        string
	plain         string
	modeLine      string
	status        string
	statusSeq     int
	done          bool
	result        transcriber.SessionResult
	err           error
}

var (
	tuiProgram *tea.Program
	tuiMu      sync.Mutex
)

var (
	spinnerFrames = []string{"◐", "◓", "◑", "◒"}
	liveStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	doneStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	frameStyle    = lipgloss.NewStyle().Padding(1, hPad)
)

func newTUIModel(ctl layoutControl, copyFn func(string) error, fixedWidth bool) tuiModel {
	return tuiModel{ctl: ctl, copyFn: copyFn, fixedWidth: fixedWidth}
}

func tuiTick() tea.Cmd {
	return tea.Tick(120*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m tuiModel) Init() tea.Cmd {
	return tuiTick()
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.fixedWidth {
			m.ctl.Resize(max(msg.Width-2*hPad, 1))
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "y":
			text := copyText(m.plain)
			if text == "" {
				return m.setStatus("nothing to copy")
			}
			if err := m.copyFn(text); err != nil {
				return m.setStatus(fmt.Sprintf("copy failed: %v", err))
			}
			return m.setStatus("copied")
		case "b":
			m.ctl.RequestBreak()
			return m.setStatus("new line")
		}

	case tickMsg:
		if m.done {
			return m, nil
		}
		m.frame++
		return m, tuiTick()

	case statusClearMsg:
		if msg.seq == m.statusSeq {
			m.status = ""
		}

	case TranscriptMsg:
		m.render = msg.Render
		m.plain = msg.Plain

	case ModeLineMsg:
		m.modeLine = msg.Text

	case SessionDoneMsg:
		m.done = true
		m.result = msg.Result
		m.err = msg.Err
	}
	return m, nil
}

func (m tuiModel) setStatus(text string) (tea.Model, tea.Cmd) {
	m.status = text
	m.statusSeq++
	seq := m.statusSeq
	return m, tea.Tick(statusTimeout, func(time.Time) tea.Msg {
		return statusClearMsg{seq: seq}
	})
}

func (m tuiModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var header string
	switch {
	case m.err != nil:
		header = errorStyle.Render("✗ " + m.err.Error())
	case m.done:
		header = doneStyle.Render(fmt.Sprintf("■ done  %d updates, %d final", m.result.Hypotheses, m.result.Finals))
	default:
		header = liveStyle.Render(spinnerFrames[m.frame%len(spinnerFrames)] + " live")
	}
	if m.modeLine != "" {
		header += "  " + dimStyle.Render(m.modeLine)
	}

	lines := []string{header, "", m.render, ""}
	if m.status != "" {
		lines = append(lines, statusStyle.Render(m.status))
	}
	lines = append(lines, dimStyle.Render("y copy · b new line · q quit"))
	return frameStyle.Render(strings.Join(lines, "\n"))
}

// copyText turns the plain projection into clipboard text: one line per
// display line without the leading word space, blank lines dropped.
func copyText(plain string) string {
	var out []string
	for _, line := range strings.Split(plain, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

func sendToTUI(msg tea.Msg) {
	tuiMu.Lock()
	p := tuiProgram
	tuiMu.Unlock()

	if p != nil {
		p.Send(msg)
	}
}

// tuiSink forwards pipeline events to the running program.
type tuiSink struct{}

func (tuiSink) Transcript(render, plain string) {
	sendToTUI(TranscriptMsg{Render: render, Plain: plain})
}

func (tuiSink) ModeLine(text string) { sendToTUI(ModeLineMsg{Text: text}) }

func (tuiSink) SessionDone(res transcriber.SessionResult, err error) {
	sendToTUI(SessionDoneMsg{Result: res, Err: err})
}
