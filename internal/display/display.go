// Package display provides the terminal UI using Bubble Tea.
//
// The [UI] type renders the cooking page or the mini-player bar above an
// input prompt at the bottom of the terminal. All other output is
// printed above the rendered area via Program.Println / Printf, so
// concurrent writes never garble the display.
package display

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hammamikhairi/stepchef/internal/domain"
	"github.com/hammamikhairi/stepchef/internal/engine"
)

// ToggleCommand is sent on the input channel when space is pressed on an
// empty prompt.
const ToggleCommand = "toggle"

const promptText = "chef> "

// ── UI ───────────────────────────────────────────────────────────

// UI manages the terminal through Bubble Tea.
//
// Call [NewUI] then [UI.Run] (blocking).  Other goroutines may
// safely call [UI.Println], [UI.Printf], and read from
// [UI.InputChan] at any time after [UI.WaitReady] returns.
type UI struct {
	program atomic.Pointer[tea.Program] // set by Run, read from any goroutine
	source  domain.SessionSource
	inputCh chan string
	readyCh chan struct{}
	quitCh  chan struct{}
	done    atomic.Bool
}

// NewUI creates the display over a session source. Call Run() to start.
func NewUI(source domain.SessionSource) *UI {
	return &UI{
		source:  source,
		inputCh: make(chan string, 16),
		readyCh: make(chan struct{}),
		quitCh:  make(chan struct{}),
	}
}

// Println prints a line above the prompt. Thread-safe.
// If the program hasn't started yet, falls back to fmt.Println.
func (u *UI) Println(a ...interface{}) {
	if p := u.running(); p != nil {
		p.Println(a...)
	} else {
		fmt.Println(a...)
	}
}

// Printf prints formatted text above the prompt on its own line. Thread-safe.
func (u *UI) Printf(format string, a ...interface{}) {
	if p := u.running(); p != nil {
		p.Printf(format, a...)
	} else {
		fmt.Printf(format+"\n", a...)
	}
}

// InputChan returns completed user-input lines.
func (u *UI) InputChan() <-chan string { return u.inputCh }

// PrintChat prints a conversational line.
func (u *UI) PrintChat(text string) {
	u.Println(chatStyle.Render("  " + text))
}

// PrintHint prints a secondary/dimmed line.
func (u *UI) PrintHint(text string) {
	u.Println(secondaryStyle.Render("  " + text))
}

// PrintUrgent prints an urgent/error line.
func (u *UI) PrintUrgent(text string) {
	u.Println(urgentOutputStyle.Render("  " + text))
}

// PrintUserInput echoes the user's typed command into the scrollback.
func (u *UI) PrintUserInput(text string) {
	u.Println(promptStyle.Render("chef") + secondaryStyle.Render("> ") + userInputEchoStyle.Render(text))
}

// ShowPage switches to the cooking page.
func (u *UI) ShowPage() { u.send(viewMsg{page: true}) }

// ToggleView flips between the cooking page and the mini-player.
func (u *UI) ToggleView() { u.send(viewMsg{toggle: true}) }

func (u *UI) send(msg tea.Msg) {
	if p := u.running(); p != nil {
		p.Send(msg)
	}
}

// running returns the live program, or nil before Run and after it returns.
func (u *UI) running() *tea.Program {
	p := u.program.Load()
	if p == nil || u.done.Load() {
		return nil
	}
	return p
}

// WaitReady blocks until the Bubble Tea event loop is running.
func (u *UI) WaitReady() { <-u.readyCh }

// Quit tells Bubble Tea to exit.
func (u *UI) Quit() {
	if p := u.program.Load(); p != nil {
		p.Quit()
	}
}

// QuitChan is closed when Run returns.
func (u *UI) QuitChan() <-chan struct{} { return u.quitCh }

// Run starts the Bubble Tea event loop.  Blocks until quit.
func (u *UI) Run() error {
	states, cancel := u.source.Subscribe()
	defer cancel()

	m := newModel(u.source, states, u.inputCh, u.readyCh)
	m.echoFn = u.PrintUserInput

	p := tea.NewProgram(m)
	u.program.Store(p)
	_, err := p.Run()
	u.done.Store(true)
	close(u.quitCh)
	return err
}

// ── Bubble Tea model ─────────────────────────────────────────────

type model struct {
	source  domain.SessionSource
	states  <-chan domain.SessionState
	state   domain.SessionState
	input   textinput.Model
	bar     progress.Model
	inputCh chan<- string
	readyCh chan struct{}
	echoFn  func(string) // prints user input into scrollback
	width   int

	// showPage selects the cooking page over the mini-player.
	showPage bool
}

// Messages.
type (
	stateMsg  domain.SessionState
	closedMsg struct{}
	viewMsg   struct{ page, toggle bool }
)

func newModel(source domain.SessionSource, states <-chan domain.SessionState, inputCh chan<- string, readyCh chan struct{}) model {
	ti := textinput.New()
	// Plain-text prompt so the textinput width math stays correct.
	ti.Prompt = promptText
	ti.PromptStyle = promptStyle
	ti.TextStyle = userInputEchoStyle
	ti.Cursor.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#94a3b8"))
	ti.Focus()
	ti.CharLimit = 200
	ti.Width = 60 // updated on first WindowSizeMsg

	return model{
		source:   source,
		states:   states,
		input:    ti,
		bar:      progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		inputCh:  inputCh,
		readyCh:  readyCh,
		echoFn:   func(string) {},
		width:    80,
		showPage: true,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		signalReady(m.readyCh),
		waitForState(m.states),
		tea.SetWindowTitle("StepChef"),
	)
}

func signalReady(ch chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if ch != nil {
			close(ch)
		}
		return nil
	}
}

func waitForState(ch <-chan domain.SessionState) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return closedMsg{}
		}
		return stateMsg(s)
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyTab:
			m.showPage = !m.showPage
			return m, nil
		case tea.KeySpace:
			if m.input.Value() == "" {
				m.submit(ToggleCommand)
				return m, nil
			}
		case tea.KeyEnter:
			v := m.input.Value()
			m.input.Reset()
			if strings.TrimSpace(v) != "" {
				m.submit(v)
				// Echo runs outside Update so it won't deadlock on msgs.
				echoFn := m.echoFn
				return m, func() tea.Msg {
					echoFn(v)
					return nil
				}
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		if msg.Width > len(promptText) {
			m.input.Width = msg.Width - len(promptText)
		}
		return m, nil

	case stateMsg:
		m.state = domain.SessionState(msg)
		return m, tea.Batch(waitForState(m.states), tea.SetWindowTitle(m.titleStr()))

	case closedMsg:
		m.state = domain.SessionState{}
		return m, nil

	case viewMsg:
		if msg.toggle {
			m.showPage = !m.showPage
		} else {
			m.showPage = msg.page
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit hands a command to the controller without blocking the event loop.
func (m model) submit(v string) {
	select {
	case m.inputCh <- v:
	default:
	}
}

// current resolves the active session against its recipe snapshot.
func (m model) current() (engine.Progress, *domain.Recipe, *domain.SessionEntry, bool) {
	entry, ok := m.state.Active()
	if !ok {
		return engine.Progress{}, nil, nil, false
	}
	r, ok := m.source.Recipe(m.state.ActiveRecipeID)
	if !ok || len(r.Steps) == 0 {
		return engine.Progress{}, nil, nil, false
	}
	return engine.ProgressOf(r, entry), r, &entry, true
}

// miniVisible reports whether the mini-player bar is drawn. It hides while
// the cooking page for the active recipe is on screen.
func (m model) miniVisible() bool {
	_, ok := m.state.Active()
	return ok && !m.showPage
}

func (m model) titleStr() string {
	p, _, _, ok := m.current()
	if !ok {
		return "StepChef"
	}
	state := fmtDuration(p.StepRemaining)
	if p.Status == domain.SessionPaused {
		state = "paused"
	}
	return fmt.Sprintf("StepChef | %s %d/%d %s", p.Title, p.StepIndex+1, p.StepCount, state)
}

func (m model) View() string {
	var b strings.Builder

	p, r, entry, ok := m.current()
	switch {
	case ok && m.showPage:
		b.WriteString(renderPage(p, r, engine.Timeline(r, entry), m.bar, m.width))
		b.WriteByte('\n')
	case ok && m.miniVisible():
		b.WriteString(renderMini(p, m.width))
		b.WriteByte('\n')
	case m.showPage:
		b.WriteString(secondaryStyle.Render("  Nothing cooking. Type list, then cook <number>."))
		b.WriteByte('\n')
	}

	// Blank line before prompt for visual separation.
	b.WriteByte('\n')
	b.WriteString(m.input.View())
	return b.String()
}
