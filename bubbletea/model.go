package bubbletea

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/wayfare"
	"github.com/fwojciec/wayfare/goldmark"
	"github.com/mattn/go-runewidth"
)

var _ tea.Model = Model{}

// Model is the Bubble Tea model for the itinerary refinement TUI.
type Model struct {
	// Input is the refinement prompt. Exported for test access.
	Input textinput.Model
	// Viewport is the scrollable itinerary area. Exported for test access.
	Viewport viewport.Model

	planner Planner
	theme   wayfare.Theme
	styles  Styles

	itinerary string
	requests  []string // accepted refinement requests, oldest first

	running bool
	cancel  context.CancelFunc
	err     error
	ready   bool
	width   int
}

// New creates a TUI Model showing the planner's current itinerary.
func New(planner Planner, theme wayfare.Theme) Model {
	ti := textinput.New()
	ti.Placeholder = "Ask for a change, e.g. make day 2 less busy"
	ti.Prompt = "› "
	ti.Focus()
	ti.CharLimit = 0

	return Model{
		Input:     ti,
		planner:   planner,
		theme:     theme,
		styles:    NewStyles(theme),
		itinerary: planner.Itinerary(),
	}
}

// Running returns whether a refinement is in flight.
func (m Model) Running() bool { return m.running }

// Err returns the last refinement error, if any.
func (m Model) Err() error { return m.err }

// Itinerary returns the itinerary currently on screen.
func (m Model) Itinerary() string { return m.itinerary }

// Revisions returns the number of refinements applied in this TUI.
func (m Model) Revisions() int { return len(m.requests) }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case RefineDoneMsg:
		return m.handleRefineDone(msg)
	}

	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	cmds = append(cmds, cmd)

	if !m.running {
		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder
	b.WriteString(m.Viewport.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.Input.View())
	return b.String()
}

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) Model {
	inputH := 1
	statusHeight := 1
	borderHeight := 2 // newlines between sections
	vpHeight := max(msg.Height-inputH-statusHeight-borderHeight, 1)

	if !m.ready {
		m.Viewport = viewport.New(msg.Width, vpHeight)
		m.ready = true
	} else {
		m.Viewport.Width = msg.Width
		m.Viewport.Height = vpHeight
	}
	m.width = msg.Width
	m.Input.Width = msg.Width - runewidth.StringWidth(m.Input.Prompt) - 1
	m.Viewport.SetContent(m.renderContent())
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		if m.running {
			if m.cancel != nil {
				m.cancel()
			}
			return m, nil
		}
		m.planner.Terminate()
		return m, tea.Quit

	case tea.KeyEnter:
		if m.running {
			return m, nil
		}
		text := strings.TrimSpace(m.Input.Value())
		if text == "" {
			return m, nil
		}
		return m.submit(text)
	}

	if m.running {
		return m, nil
	}

	// Forward only non-character keys to the viewport so typing j/k does
	// not scroll.
	var cmd tea.Cmd
	var cmds []tea.Cmd
	if msg.Type != tea.KeyRunes {
		m.Viewport, cmd = m.Viewport.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.Input, cmd = m.Input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) submit(text string) (tea.Model, tea.Cmd) {
	m.Input.SetValue("")
	m.err = nil

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.running = true
	m.Input.Blur()

	return m, refine(ctx, m.planner, text)
}

func (m Model) handleRefineDone(msg RefineDoneMsg) (tea.Model, tea.Cmd) {
	if m.cancel != nil {
		m.cancel()
	}
	m.running = false
	m.cancel = nil

	switch {
	case errors.Is(msg.Err, wayfare.ErrTerminated):
		return m, tea.Quit
	case errors.Is(msg.Err, context.Canceled):
	case msg.Err != nil:
		m.err = msg.Err
	case m.planner.State() == wayfare.StateTerminated:
		m.itinerary = msg.Itinerary
		return m, tea.Quit
	default:
		m.itinerary = msg.Itinerary
		m.requests = append(m.requests, msg.Request)
		m.Viewport.SetContent(m.renderContent())
		m.Viewport.GotoTop()
	}
	return m, m.Input.Focus()
}

func (m Model) renderContent() string {
	var b strings.Builder
	b.WriteString(m.styles.Header.Render("Itinerary"))
	if n := len(m.requests); n > 0 {
		b.WriteString(m.styles.Muted.Render(fmt.Sprintf(" (revision %d)", n)))
		b.WriteString("\n")
		b.WriteString(m.styles.UserMsg.Width(m.Viewport.Width).Render("› " + m.requests[n-1]))
	}
	b.WriteString("\n\n")
	b.WriteString(goldmark.Render(m.itinerary, m.Viewport.Width, m.theme))
	return b.String()
}

func (m Model) statusLine() string {
	style := m.styles.Muted
	var text string
	switch {
	case m.err != nil:
		style = m.styles.Error
		text = "Error: " + strings.Join(strings.Fields(m.err.Error()), " ")
	case m.running:
		text = "Refining itinerary..."
	default:
		text = "Enter to refine, type done to finish, Ctrl+C to quit"
	}
	if m.width > 0 {
		text = runewidth.Truncate(text, m.width, "…")
	}
	return style.Render(text)
}

// refine applies text through the planner off the UI goroutine.
func refine(ctx context.Context, p Planner, text string) tea.Cmd {
	return func() tea.Msg {
		itinerary, err := p.Refine(ctx, text)
		return RefineDoneMsg{Request: text, Itinerary: itinerary, Err: err}
	}
}
