// Package tui is the watch client: a terminal view onto a bridged session.
// It renders the event feed, sends typed prompts into the session, and
// answers pending tool confirmations.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"sessionbridge/internal/bridge"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("160"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	thoughtStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("105")).Italic(true)
	toolStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("37"))
	confirmStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	stderrStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("167"))
)

type eventMsg struct{ ev bridge.Event }

type disconnectedMsg struct{ err error }

type pendingConfirmation struct {
	ToolCallID string
	ToolName   string
	Summary    string
}

type model struct {
	client *Client
	addr   string

	width  int
	height int
	ready  bool

	feed     viewport.Model
	lines    []string
	input    textinput.Model
	keys     keyMap
	help     help.Model
	pending  []pendingConfirmation
	taskID   string
	errMsg   string
	closed   bool
}

// Run connects to addr and drives the watch UI until quit.
func Run(addr string) error {
	client, err := Dial(addr)
	if err != nil {
		return err
	}
	defer client.Close()

	input := textinput.New()
	input.Placeholder = "type a prompt and press enter"
	input.Focus()

	m := model{
		client: client,
		addr:   addr,
		input:  input,
		keys:   defaultKeyMap,
		help:   help.New(),
	}

	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.waitForEvent(), textinput.Blink)
}

func (m model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.client.Events()
		if !ok {
			select {
			case err := <-m.client.Errs():
				return disconnectedMsg{err: err}
			default:
				return disconnectedMsg{}
			}
		}
		return eventMsg{ev: ev}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.input.Width = msg.Width - 4
		feedHeight := msg.Height - 4
		if feedHeight < 3 {
			feedHeight = 3
		}
		if !m.ready {
			m.feed = viewport.New(msg.Width, feedHeight)
			m.ready = true
		} else {
			m.feed.Width = msg.Width
			m.feed.Height = feedHeight
		}
		m.refreshFeed()

	case eventMsg:
		m.apply(msg.ev)
		m.refreshFeed()
		cmds = append(cmds, m.waitForEvent())

	case disconnectedMsg:
		m.closed = true
		if msg.err != nil {
			m.errMsg = msg.err.Error()
		}

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Approve):
			m.answer(bridge.OptionProceedOnce)
		case key.Matches(msg, m.keys.Deny):
			m.answer(bridge.OptionCancel)
		case msg.Type == tea.KeyEnter:
			text := strings.TrimSpace(m.input.Value())
			if text != "" && !m.closed {
				if err := m.client.SendPrompt(text); err != nil {
					m.errMsg = err.Error()
				} else {
					m.lines = append(m.lines, dimStyle.Render("» "+text))
					m.refreshFeed()
				}
				m.input.SetValue("")
			}
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.feed, cmd = m.feed.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// answer resolves the oldest pending confirmation.
func (m *model) answer(optionID string) {
	if len(m.pending) == 0 || m.closed {
		return
	}
	p := m.pending[0]
	if err := m.client.SendConfirmation(p.ToolCallID, optionID); err != nil {
		m.errMsg = err.Error()
		return
	}
	m.pending = m.pending[1:]
	m.lines = append(m.lines, dimStyle.Render(fmt.Sprintf("answered %s: %s", p.ToolName, optionID)))
	m.refreshFeed()
}

// apply folds one bridge event into the feed.
func (m *model) apply(ev bridge.Event) {
	if m.taskID == "" {
		m.taskID = ev.TaskID
	}

	switch ev.Kind {
	case bridge.KindThought:
		m.lines = append(m.lines, thoughtStyle.Render("✳ "+ev.Subject+" — "+ev.Description))
	case bridge.KindTextContent:
		text := ansi.Strip(ev.Text)
		style := lipgloss.NewStyle()
		if ev.IsStderr {
			style = stderrStyle
		}
		for _, line := range strings.Split(strings.TrimRight(text, "\r\n"), "\n") {
			m.lines = append(m.lines, style.Render(strings.TrimRight(line, "\r")))
		}
	case bridge.KindToolCallUpdate:
		m.applyToolCall(ev)
	case bridge.KindConsoleLog:
		m.lines = append(m.lines, dimStyle.Render(fmt.Sprintf("[%s] %s", ev.LogType, ev.Content)))
	case bridge.KindHook:
		m.lines = append(m.lines, dimStyle.Render(fmt.Sprintf("hook %s %s", ev.HookName, ev.Phase)))
	}
}

func (m *model) applyToolCall(ev bridge.Event) {
	line := fmt.Sprintf("⚒ %s [%s]", ev.ToolName, ev.Status)
	switch {
	case ev.Confirmation != nil:
		summary := confirmationSummary(ev.Confirmation)
		m.pending = append(m.pending, pendingConfirmation{
			ToolCallID: ev.ToolCallID,
			ToolName:   ev.ToolName,
			Summary:    summary,
		})
		m.lines = append(m.lines, confirmStyle.Render(line+" — "+summary))
	case ev.Result != nil && ev.Result.Output != nil:
		m.lines = append(m.lines, toolStyle.Render(line+": "+firstLine(ev.Result.Output.Text)))
	case ev.Result != nil && ev.Result.Error != nil:
		m.lines = append(m.lines, errStyle.Render(line+": "+firstLine(ev.Result.Error.Message)))
	default:
		m.lines = append(m.lines, toolStyle.Render(line))
	}
}

func confirmationSummary(req *bridge.ConfirmationRequest) string {
	switch {
	case req.Details.Execute != nil:
		return "run: " + req.Details.Execute.Command
	case req.Details.FileEdit != nil:
		return "edit: " + req.Details.FileEdit.FilePath
	case req.Details.MCP != nil:
		return "mcp: " + req.Details.MCP.ServerName + "/" + req.Details.MCP.ToolName
	case req.Details.Generic != nil:
		return req.Details.Generic.Description
	default:
		return "confirmation required"
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func (m *model) refreshFeed() {
	if !m.ready {
		return
	}
	wrapWidth := m.feed.Width
	if wrapWidth <= 0 {
		wrapWidth = 80
	}
	wrapped := make([]string, 0, len(m.lines))
	for _, line := range m.lines {
		wrapped = append(wrapped, ansi.Wrap(line, wrapWidth, ""))
	}
	atBottom := m.feed.AtBottom()
	m.feed.SetContent(strings.Join(wrapped, "\n"))
	if atBottom {
		m.feed.GotoBottom()
	}
}

func (m model) View() string {
	if !m.ready {
		return "connecting to " + m.addr + "..."
	}

	header := headerStyle.Render("session bridge")
	if m.taskID != "" {
		header += dimStyle.Render("  task " + m.taskID)
	}
	if m.closed {
		header += errStyle.Render("  [disconnected]")
	}
	if len(m.pending) > 0 {
		header += "  " + confirmStyle.Render(fmt.Sprintf("%d confirmation(s) pending — ctrl+y allow, ctrl+n cancel", len(m.pending)))
	}

	footer := m.help.View(m.keys)
	if m.errMsg != "" {
		footer = errStyle.Render(m.errMsg) + "  " + footer
	}

	return strings.Join([]string{
		header,
		m.feed.View(),
		m.input.View(),
		footerStyle.Render(footer),
	}, "\n")
}
