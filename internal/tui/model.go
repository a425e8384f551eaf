// Package tui is the Bubble Tea interface for playing at a table. The
// model owns the hand log, a seats sidebar and a command input; the
// engine talks to it through an Agent that sends prompt messages into
// the UI loop and blocks until the player's decision comes back.
package tui

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/lox/holdem/internal/game"
)

// EventMsg delivers a game event to the UI loop.
type EventMsg struct {
	Event game.GameEvent
}

// PromptMsg asks the UI for the player's next decision.
type PromptMsg struct {
	State game.TableState
	Valid []game.ValidAction
}

// SessionEndMsg carries the final standings once the engine stops.
type SessionEndMsg struct {
	Result *game.SessionResult
}

const (
	paneLog = iota
	paneInput
)

const (
	actingPlaceholder  = "fold, check, call, raise <amount>, allin"
	waitingPlaceholder = "waiting for the action to reach you"
)

// Model is the Bubble Tea model for an interactive table.
type Model struct {
	name   string
	logger *log.Logger

	logView viewport.Model
	input   textinput.Model

	lines   []string
	players []playerRow
	pot     int
	bet     int

	prompt *PromptMsg

	decisions chan game.Decision
	quit      chan struct{}
	quitOnce  sync.Once

	width, height int
	sized         bool
	focused       int
	done          bool
	quitting      bool
}

type playerRow struct {
	name   string
	chips  int
	marker string // D, SB or BB
}

// NewModel creates the table UI for the named player.
func NewModel(name string, logger *log.Logger) *Model {
	vp := viewport.New(10, 5)

	ti := textinput.New()
	ti.Placeholder = waitingPlaceholder
	ti.Prompt = "> "
	ti.PromptStyle = lipgloss.NewStyle().Foreground(focusedBorder).Bold(true)
	ti.CharLimit = 64
	ti.Focus()

	return &Model{
		name:      name,
		logger:    logger.WithPrefix("tui"),
		logView:   vp,
		input:     ti,
		decisions: make(chan game.Decision, 1),
		quit:      make(chan struct{}),
		focused:   paneInput,
	}
}

// Decisions is the channel the player's accepted actions arrive on.
func (m *Model) Decisions() <-chan game.Decision {
	return m.decisions
}

// Quitting is closed when the player leaves the table.
func (m *Model) Quitting() <-chan struct{} {
	return m.quit
}

// Lines returns a copy of the hand log.
func (m *Model) Lines() []string {
	out := make([]string, len(m.lines))
	copy(out, m.lines)
	return out
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case EventMsg:
		m.applyEvent(msg.Event)

	case PromptMsg:
		prompt := msg
		m.prompt = &prompt
		m.pot = msg.State.Pot
		m.bet = msg.State.CurrentBet
		m.refreshSeats(msg.State.Players, msg.State.Button)
		m.input.Placeholder = actingPlaceholder

	case SessionEndMsg:
		m.done = true
		m.prompt = nil
		m.appendLines(RenderSessionEnd(msg.Result))
		m.input.Placeholder = "q to exit"

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m.quitNow()
		case "q":
			if m.done && m.input.Value() == "" {
				return m.quitNow()
			}
		case "tab":
			if m.focused == paneLog {
				m.focused = paneInput
				m.input.Focus()
			} else {
				m.focused = paneLog
				m.input.Blur()
			}
		case "enter":
			if m.focused == paneInput {
				if cmd := m.submit(); cmd != nil {
					return m, cmd
				}
			}
		case "up", "k":
			if m.focused == paneLog {
				m.logView.ScrollUp(1)
			}
		case "down", "j":
			if m.focused == paneLog {
				m.logView.ScrollDown(1)
			}
		case "pgup":
			if m.focused == paneLog {
				m.logView.HalfPageUp()
			}
		case "pgdown":
			if m.focused == paneLog {
				m.logView.HalfPageDown()
			}
		case "home", "g":
			if m.focused == paneLog {
				m.logView.GotoTop()
			}
		case "end", "G":
			if m.focused == paneLog {
				m.logView.GotoBottom()
			}
		}
	}

	var cmd tea.Cmd
	if m.focused == paneInput {
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.logView, cmd = m.logView.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *Model) quitNow() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.prompt = nil
	m.SignalQuit()
	return m, tea.Quit
}

// SignalQuit marks the player as gone so a blocked agent falls back to
// check-or-fold. Safe to call more than once, from any goroutine.
func (m *Model) SignalQuit() {
	m.quitOnce.Do(func() { close(m.quit) })
}

// submit handles a line of input. It returns a command only when the
// input ends the program.
func (m *Model) submit() tea.Cmd {
	raw := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")
	if raw == "" {
		return nil
	}

	switch strings.ToLower(strings.Fields(raw)[0]) {
	case "help", "?":
		m.appendLines(helpLines)
		return nil
	case "quit", "exit":
		_, cmd := m.quitNow()
		return cmd
	}

	if m.done {
		return nil
	}
	if m.prompt == nil {
		m.appendLines([]string{"Error: it isn't your turn"})
		return nil
	}

	d, err := parseDecision(raw, m.prompt.Valid)
	if err != nil {
		m.appendLines([]string{"Error: " + err.Error()})
		return nil
	}

	select {
	case m.decisions <- d:
		m.prompt = nil
		m.input.Placeholder = waitingPlaceholder
	default:
		m.logger.Warn("decision dropped, previous one still queued")
	}
	return nil
}

func (m *Model) applyEvent(ev game.GameEvent) {
	m.appendLines(RenderEvent(ev, m.name))

	switch e := ev.(type) {
	case game.HandStartEvent:
		posted := 0
		for _, p := range e.Players {
			posted += p.Bet
		}
		m.pot = posted
		m.bet = e.BigBlind
		m.refreshSeats(e.Players, e.Button)
	case game.PlayerActionEvent:
		m.pot = e.Pot
		if e.To > m.bet {
			m.bet = e.To
		}
	case game.StreetChangeEvent:
		m.pot = potTotal(e.Pots)
		m.bet = 0
	case game.HandEndEvent:
		m.pot = 0
		m.bet = 0
	}
}

func (m *Model) refreshSeats(players []game.PlayerState, button int) {
	sb, bb := game.BlindSeats(button, len(players))
	rows := make([]playerRow, len(players))
	for i, p := range players {
		marker := ""
		switch i {
		case button:
			marker = "D"
		case sb:
			marker = "SB"
		case bb:
			marker = "BB"
		}
		rows[i] = playerRow{name: p.Name, chips: p.Chips, marker: marker}
	}
	m.players = rows
}

func (m *Model) appendLines(lines []string) {
	if len(lines) == 0 {
		return
	}
	m.lines = append(m.lines, lines...)
	m.logView.SetContent(strings.Join(m.lines, "\n"))
	if m.logView.Height > 0 && m.logView.Width > 0 {
		m.logView.GotoBottom()
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	actionPane := paneStyle(m.focused == paneInput).
		Width(max(m.width-2, 1)).
		Render(m.renderActionPane())
	actionHeight := lipgloss.Height(actionPane)

	sidebarContent := m.renderSidebar()
	sidebarWidth := max(lipgloss.Width(sidebarContent), 24)
	topHeight := max(m.height-actionHeight-2, 1)

	m.logView.Width = max(m.width-sidebarWidth-4, 1)
	m.logView.Height = topHeight
	m.logView.SetContent(strings.Join(m.lines, "\n"))
	if !m.sized {
		m.logView.GotoBottom()
		m.sized = true
	}

	logPane := paneStyle(m.focused == paneLog).
		Width(m.logView.Width).
		Height(topHeight).
		Render(m.logView.View())
	sidebarPane := paneStyle(false).
		Width(sidebarWidth).
		Height(topHeight).
		Render(sidebarContent)

	top := lipgloss.JoinHorizontal(lipgloss.Top, logPane, sidebarPane)
	return lipgloss.JoinVertical(lipgloss.Left, top, actionPane)
}

func (m *Model) renderActionPane() string {
	var b strings.Builder

	switch {
	case m.done:
		b.WriteString(HandInfoStyle.Render("Session over."))
		b.WriteString("\n")
	case m.prompt != nil:
		hero := m.prompt.State.Hero()
		info := fmt.Sprintf("Hand: %s  Pot: $%d", formatCards(hero.HoleCards), m.prompt.State.Pot)
		if toCall := m.prompt.State.ToCall(); toCall > 0 {
			info += fmt.Sprintf("  To call: $%d", toCall)
		}
		b.WriteString(HandInfoStyle.Render(info))
		b.WriteString("\n")
		b.WriteString(m.renderValidActions())
		b.WriteString("\n")
	default:
		b.WriteString(HandInfoStyle.Render("Waiting..."))
		b.WriteString("\n")
	}

	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.helpLine())
	return b.String()
}

func (m *Model) renderValidActions() string {
	var actions []string
	for _, va := range m.prompt.Valid {
		switch va.Action {
		case game.Fold:
			actions = append(actions, ErrorStyle.Render("[fold]"))
		case game.Check:
			actions = append(actions, SuccessStyle.Render("[check]"))
		case game.Call:
			actions = append(actions, SuccessStyle.Render(fmt.Sprintf("[call $%d]", va.MinAmount)))
		case game.Raise:
			actions = append(actions, WarningStyle.Render(fmt.Sprintf("[raise $%d-$%d]", va.MinAmount, va.MaxAmount)))
		case game.AllIn:
			actions = append(actions, WarningStyle.Render(fmt.Sprintf("[allin $%d]", va.MinAmount)))
		}
	}
	return ActionsStyle.Render("Actions: ") + strings.Join(actions, " ")
}

func (m *Model) helpLine() string {
	if m.focused == paneLog {
		return InfoStyle.Render("log: ↑/↓ scroll • pgup/pgdn page • tab back to input")
	}
	if m.prompt == nil {
		return InfoStyle.Render("tab to scroll log • ctrl+c to quit")
	}
	return InfoStyle.Render("enter to act • 'help' for commands • ctrl+c to quit")
}

func (m *Model) renderSidebar() string {
	var b strings.Builder

	b.WriteString(WarningStyle.Render(fmt.Sprintf("Pot: $%d", m.pot)))
	if m.bet > 0 {
		b.WriteString(" | ")
		b.WriteString(WarningStyle.Render(fmt.Sprintf("Bet: $%d", m.bet)))
	}
	b.WriteString("\n\n")

	if len(m.players) > 0 {
		b.WriteString(InfoStyle.Render("Seats"))
		b.WriteString("\n")
		for _, p := range m.players {
			name := p.name
			if p.name == m.name {
				name += " (you)"
			}
			b.WriteString(fmt.Sprintf("%-2s %s: $%d\n", p.marker, name, p.chips))
		}
	}
	return b.String()
}

var helpLines = []string{
	"",
	"Commands:",
	"  fold              give up the hand",
	"  check             pass when there is nothing to call",
	"  call              match the current bet",
	"  raise <amount>    raise the street bet to a total",
	"  allin             push your whole stack",
	"  help              show this help",
	"  quit              leave the table",
	"",
}

// parseDecision turns typed input into a decision, checked against the
// actions currently on offer. Raise amounts are raise-to totals.
func parseDecision(input string, valid []game.ValidAction) (game.Decision, error) {
	fields := strings.Fields(strings.ToLower(input))
	verb, args := fields[0], fields[1:]

	switch verb {
	case "fold", "f":
		return game.Decision{Action: game.Fold}, nil

	case "check", "k":
		if _, ok := findValid(valid, game.Check); !ok {
			return game.Decision{}, fmt.Errorf("can't check facing a bet; call, raise or fold")
		}
		return game.Decision{Action: game.Check}, nil

	case "call", "c":
		if _, ok := findValid(valid, game.Call); !ok {
			return game.Decision{}, fmt.Errorf("nothing to call; check instead")
		}
		return game.Decision{Action: game.Call}, nil

	case "raise", "r":
		rv, ok := findValid(valid, game.Raise)
		if !ok {
			return game.Decision{}, fmt.Errorf("raising is not an option right now")
		}
		if len(args) > 0 && args[0] == "to" {
			args = args[1:]
		}
		if len(args) == 0 {
			return game.Decision{}, fmt.Errorf("raise needs an amount, e.g. 'raise %d'", rv.MinAmount)
		}
		amount, err := strconv.Atoi(args[0])
		if err != nil {
			return game.Decision{}, fmt.Errorf("bad raise amount %q", args[0])
		}
		if amount < rv.MinAmount || amount > rv.MaxAmount {
			return game.Decision{}, fmt.Errorf("raise to between $%d and $%d", rv.MinAmount, rv.MaxAmount)
		}
		return game.Decision{Action: game.Raise, Amount: amount}, nil

	case "allin", "all-in", "all", "a":
		if _, ok := findValid(valid, game.AllIn); !ok {
			return game.Decision{}, fmt.Errorf("all-in is not an option right now")
		}
		return game.Decision{Action: game.AllIn}, nil
	}

	return game.Decision{}, fmt.Errorf("unknown command %q; type 'help'", verb)
}

func findValid(valid []game.ValidAction, action game.Action) (game.ValidAction, bool) {
	for _, va := range valid {
		if va.Action == action {
			return va, true
		}
	}
	return game.ValidAction{}, false
}
