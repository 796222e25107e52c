package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/folio/internal/conversation"
	"github.com/diogo/folio/internal/models"
	"github.com/diogo/folio/internal/prompts"
	"github.com/diogo/folio/internal/render"
	"github.com/diogo/folio/internal/textstats"
	"github.com/diogo/folio/internal/transcript"
)

// Message types for tea.Cmd
type (
	replyMsg struct {
		turn    *conversation.Turn
		content string
		err     error
	}
	animationTickMsg time.Time
)

// Options configures the chat model
type Options struct {
	Prompts         []prompts.Prompt
	Render          render.Options
	Endpoint        string // Shown in the header and written to transcripts
	ExportDir       string
	CopyToClipboard bool // Copy every reply as it arrives
}

// Model represents the chat TUI state
type Model struct {
	ctrl *conversation.Controller
	ctx  context.Context
	opts Options

	// Components
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	// State
	snap           conversation.Snapshot
	notice         string // Transient status line, e.g. "Copied reply"
	ready          bool
	width          int
	height         int
	animationFrame int

	// Clipboard writer, replaced in tests
	writeClipboard func(string) error
}

// NewChatModel creates a new chat model driving ctrl
func NewChatModel(ctrl *conversation.Controller, opts Options) Model {
	ta := textarea.New()
	ta.Placeholder = "Ask about projects, stack, experience..."
	ta.Focus()
	ta.CharLimit = 4000
	ta.SetWidth(60)
	ta.SetHeight(2)
	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline.SetEnabled(false)
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle()
	ta.BlurredStyle.Base = lipgloss.NewStyle()

	sp := spinner.New()
	sp.Spinner = spinner.Points
	sp.Style = loadingStyle

	if opts.Prompts == nil {
		opts.Prompts = prompts.Defaults()
	}

	return Model{
		ctrl:           ctrl,
		ctx:            context.Background(),
		opts:           opts,
		textarea:       ta,
		spinner:        sp,
		snap:           ctrl.Snapshot(),
		writeClipboard: clipboard.WriteAll,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
	)
}

// animationTick returns a command that ticks the animation
func animationTick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return animationTickMsg(t)
	})
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 4 // Header panel with border
		inputHeight := 6  // Input panel with border
		statusHeight := 1 // Status bar
		padding := 2      // Extra spacing

		vpHeight := m.height - headerHeight - inputHeight - statusHeight - padding
		if vpHeight < 5 {
			vpHeight = 5
		}

		contentWidth := m.width - 4

		if !m.ready {
			m.viewport = viewport.New(contentWidth, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = contentWidth
			m.viewport.Height = vpHeight
		}
		m.textarea.SetWidth(contentWidth - 4)
		m.updateViewport()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "ctrl+l":
			m.clear()
			return m, nil

		case "ctrl+y":
			m.copyLastReply()
			return m, nil

		case "enter":
			input := strings.TrimSpace(m.textarea.Value())
			if input == "" || m.snap.Submitting {
				return m, nil
			}
			m.textarea.Reset()
			return m.handleInput(input)

		case "1", "2", "3", "4", "5", "6", "7", "8", "9":
			if m.showingPrompts() && m.textarea.Value() == "" {
				n, _ := strconv.Atoi(msg.String())
				if p, ok := prompts.Pick(m.opts.Prompts, n); ok {
					return m.submit(p.Text)
				}
			}
		}

	case replyMsg:
		outcome := m.ctrl.Complete(msg.turn, msg.content, msg.err)
		m.refresh()
		if outcome == conversation.OutcomeFulfilled && m.opts.CopyToClipboard {
			m.copyLastReply()
		}

	case spinner.TickMsg:
		if m.snap.Submitting {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case animationTickMsg:
		if m.snap.Submitting {
			m.animationFrame++
			m.updateViewport()
			cmds = append(cmds, animationTick())
		}
	}

	// Only pass KeyMsg to textarea to prevent escape sequence leaks
	if !m.snap.Submitting {
		if _, ok := msg.(tea.KeyMsg); ok {
			m.textarea, cmd = m.textarea.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// handleInput dispatches slash commands or submits input as a chat turn
func (m Model) handleInput(input string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(input)
	switch strings.ToLower(fields[0]) {
	case "exit", "quit", "/exit", "/quit":
		return m, tea.Quit
	case "/clear":
		m.clear()
		return m, nil
	case "/copy":
		m.copyLastReply()
		return m, nil
	case "/export":
		path := ""
		if len(fields) > 1 {
			path = strings.Join(fields[1:], " ")
		}
		m.export(path)
		return m, nil
	}
	return m.submit(input)
}

// submit starts a turn and returns the command that completes it
func (m Model) submit(text string) (tea.Model, tea.Cmd) {
	turn, ok := m.ctrl.Begin(m.ctx, text)
	if !ok {
		return m, nil
	}

	m.notice = ""
	m.animationFrame = 0
	m.refresh()

	return m, tea.Batch(
		m.sendTurn(turn),
		m.spinner.Tick,
		animationTick(),
	)
}

// sendTurn runs the transport call off the event loop
func (m Model) sendTurn(turn *conversation.Turn) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		content, err := ctrl.Run(turn)
		return replyMsg{turn: turn, content: content, err: err}
	}
}

func (m *Model) clear() {
	m.ctrl.Clear()
	m.notice = ""
	m.refresh()
}

func (m *Model) copyLastReply() {
	reply, ok := m.snap.LastReply()
	if !ok {
		m.notice = "Nothing to copy yet"
		return
	}
	if err := m.writeClipboard(reply); err != nil {
		m.notice = fmt.Sprintf("Copy failed: %v", err)
		return
	}
	m.notice = "Copied reply to clipboard"
}

func (m *Model) export(path string) {
	t := transcript.New(m.snap.Messages, m.opts.Endpoint)
	written, err := t.Write(path, m.opts.ExportDir)
	if err != nil {
		m.notice = fmt.Sprintf("Export failed: %v", err)
		return
	}
	m.notice = "Saved transcript to " + written
}

// refresh pulls a fresh snapshot from the controller and redraws
func (m *Model) refresh() {
	m.snap = m.ctrl.Snapshot()
	m.updateViewport()
	m.viewport.GotoBottom()
}

func (m Model) showingPrompts() bool {
	return len(m.snap.Messages) == 0 && !m.snap.Submitting && len(m.opts.Prompts) > 0
}

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	var sections []string
	contentWidth := m.width - 4

	// Header
	headerParts := []string{titleStyle.Render("✦ Folio")}
	if m.opts.Endpoint != "" {
		headerParts = append(headerParts,
			hintStyle.Render("  •  "),
			subtitleStyle.Render(m.opts.Endpoint),
		)
	}
	headerContent := lipgloss.JoinHorizontal(lipgloss.Center, headerParts...)
	sections = append(sections, headerStyle.Width(contentWidth).Render(headerContent))

	// Messages
	var messagesContent string
	if len(m.snap.Messages) == 0 {
		messagesContent = m.renderWelcome()
	} else {
		messagesContent = m.viewport.View()
	}
	messagesPanel := messagesAreaStyle.
		Width(contentWidth).
		Height(m.viewport.Height).
		Render(messagesContent)
	sections = append(sections, messagesPanel)

	// Input
	var inputContent string
	if m.snap.Submitting {
		inputContent = m.renderLoadingAnimation()
	} else {
		inputContent = lipgloss.JoinVertical(
			lipgloss.Left,
			inputLabelStyle.Render("You"),
			m.textarea.View(),
		)
	}
	sections = append(sections, inputPanelStyle.Width(contentWidth).Render(inputContent))

	sections = append(sections, m.renderStatusBar(contentWidth))

	if m.notice != "" {
		sections = append(sections, noticeStyle.Render("  "+m.notice))
	}

	if m.snap.HasError() {
		sections = append(sections, bannerStyle.Width(contentWidth).Render("⚠ "+m.snap.Error))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderWelcome renders the welcome screen with the suggested prompts
func (m Model) renderWelcome() string {
	width := m.viewport.Width - 4
	height := m.viewport.Height

	lines := []string{
		"",
		welcomeIconStyle.Width(width).Render("✦"),
		"",
		welcomeTitleStyle.Width(width).Render("Ask me about this portfolio"),
		"",
	}

	if len(m.opts.Prompts) > 0 {
		lines = append(lines, hintStyle.Width(width).Align(lipgloss.Center).Render("Press a number or type your own question"), "")
		var list []string
		for i, p := range m.opts.Prompts {
			if i >= 9 {
				break
			}
			list = append(list, promptKeyStyle.Render(fmt.Sprintf("[%d] ", i+1))+promptTextStyle.Render(textstats.Truncate(p.Title(), width-8)))
		}
		block := lipgloss.JoinVertical(lipgloss.Left, list...)
		lines = append(lines, lipgloss.PlaceHorizontal(width, lipgloss.Center, block))
	}

	content := lipgloss.JoinVertical(lipgloss.Center, lines...)

	// Center vertically
	topPadding := (height - lipgloss.Height(content)) / 2
	if topPadding < 0 {
		topPadding = 0
	}

	return strings.Repeat("\n", topPadding) + content
}

// renderLoadingAnimation renders the animated "thinking" indicator
func (m Model) renderLoadingAnimation() string {
	chars := []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}
	barChars := []string{"█", "█", "█", "█", "█", "█", "█", "█", "▓", "▒", "░"}

	frame := m.animationFrame

	spinIdx := frame % len(chars)
	spinColor := gradientColors[frame%len(gradientColors)]
	spin := lipgloss.NewStyle().Foreground(spinColor).Bold(true).Render(chars[spinIdx])

	barWidth := 20
	var bar strings.Builder
	for i := 0; i < barWidth; i++ {
		colorIdx := (i + frame) % len(gradientColors)
		charIdx := (i + frame/2) % len(barChars)

		style := lipgloss.NewStyle().Foreground(gradientColors[colorIdx])
		bar.WriteString(style.Render(barChars[charIdx]))
	}

	var dots strings.Builder
	numDots := (frame / 3) % 4
	for i := 0; i < numDots; i++ {
		dotColor := gradientColors[(frame+i)%len(gradientColors)]
		dots.WriteString(lipgloss.NewStyle().Foreground(dotColor).Render("●"))
	}
	for i := numDots; i < 3; i++ {
		dots.WriteString(lipgloss.NewStyle().Foreground(colorTextMute).Render("○"))
	}

	text := lipgloss.NewStyle().Foreground(colorText).Render(" Thinking ")

	return fmt.Sprintf("%s %s %s %s", spin, bar.String(), text, dots.String())
}

// renderStatusBar renders the bottom status bar with shortcuts
func (m Model) renderStatusBar(width int) string {
	shortcuts := []struct {
		key  string
		desc string
	}{
		{"Enter", "Send"},
		{"Ctrl+L", "Clear"},
		{"Ctrl+Y", "Copy"},
		{"/export", "Save"},
		{"Esc", "Quit"},
		{"↑↓", "Scroll"},
	}

	var items []string
	for _, s := range shortcuts {
		item := lipgloss.JoinHorizontal(
			lipgloss.Center,
			statusKeyStyle.Render(s.key),
			statusDescStyle.Render(" "+s.desc),
		)
		items = append(items, item)
	}

	bar := lipgloss.JoinHorizontal(lipgloss.Center, strings.Join(items, "  │  "))
	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(bar)
}

// updateViewport renders the message log into the viewport
func (m *Model) updateViewport() {
	if !m.ready {
		return
	}

	var content strings.Builder
	bubbleWidth := m.viewport.Width - 8
	if bubbleWidth < 20 {
		bubbleWidth = 20
	}

	for i, msg := range m.snap.Messages {
		if i > 0 {
			content.WriteString("\n")
		}
		content.WriteString(m.renderMessage(msg, bubbleWidth))
		content.WriteString("\n")
	}

	m.viewport.SetContent(content.String())
}

func (m Model) renderMessage(msg models.Message, width int) string {
	switch {
	case msg.Role == models.RoleUser:
		label := userLabelStyle.Render("▶ You")
		bubble := userBubbleStyle.Width(width).Render(msg.Content)
		return lipgloss.JoinVertical(lipgloss.Left, label, bubble)

	case msg.IsPending():
		label := assistantLabelStyle.Render("✦ Assistant")
		bubble := assistantBubbleStyle.Width(width).Render(m.renderLoadingAnimation())
		return lipgloss.JoinVertical(lipgloss.Left, label, bubble)

	case msg.Failed:
		label := assistantLabelStyle.Render("✦ Assistant")
		bubble := fallbackBubbleStyle.Width(width).Render(msg.Content)
		return lipgloss.JoinVertical(lipgloss.Left, label, bubble)

	default:
		label := assistantLabelStyle.Render("✦ Assistant")
		rendered := render.Reply(msg.Content, m.opts.Render.WithWidth(width-4))
		bubble := assistantBubbleStyle.Width(width).Render(rendered)
		return lipgloss.JoinVertical(lipgloss.Left, label, bubble)
	}
}

// RunChat starts the interactive chat TUI
func RunChat(ctrl *conversation.Controller, opts Options) error {
	p := tea.NewProgram(NewChatModel(ctrl, opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
