package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jwebster45206/lotus-events/pkg/dice"
	"github.com/jwebster45206/lotus-events/pkg/engine"
	"github.com/jwebster45206/lotus-events/pkg/event"
	"github.com/jwebster45206/lotus-events/pkg/player"
)

const maxChoiceKeys = 9

// Session is the local player's state. The console owns it exclusively.
type Session struct {
	Seed    uint64
	Player  player.State
	History *player.History
	Dice    dice.Source
}

// entry is one line item in the story log.
type entry struct {
	issued     *engine.Issued
	resolution *engine.Resolution
	choice     string
	notice     string
}

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	engine  *engine.Engine
	session Session
	copy    func(string) error

	current *engine.Issued
	story   []entry
	turns   int
	status  string

	storyViewport viewport.Model
	metaViewport  viewport.Model
	ready         bool
	width         int
	height        int

	showQuitModal bool
}

var (
	storyPanelStyle = lipgloss.NewStyle().
			PaddingTop(1).
			PaddingLeft(3)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(1).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	optionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)
)

var separatorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")) // dark grey

func NewConsoleUI(eng *engine.Engine, sess Session, copyFn func(string) error) ConsoleUI {
	storyVp := viewport.New(60, 20)
	storyVp.MouseWheelEnabled = true

	return ConsoleUI{
		engine:        eng,
		session:       sess,
		copy:          copyFn,
		storyViewport: storyVp,
		metaViewport:  viewport.New(24, 20),
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	return nil
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var vpCmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		storyWidth, metaWidth := m.panelWidths()
		m.storyViewport.Width = storyWidth - 2
		m.storyViewport.Height = m.height - 4
		m.metaViewport.Width = metaWidth - 2
		m.metaViewport.Height = m.height - 2
		m.ready = true
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		}

		switch key := msg.String(); key {
		case "n", " ":
			m.nextEvent()
		case "+":
			m.review(1)
		case "-":
			m.review(-1)
		case "s":
			m.advanceStage()
		case "c":
			m.copyCurrent()
		case "1", "2", "3", "4", "5", "6", "7", "8", "9":
			m.choose(int(key[0] - '1'))
		default:
			m.storyViewport, vpCmd = m.storyViewport.Update(msg)
			return m, vpCmd
		}
		m.refresh()
		return m, nil
	}

	m.storyViewport, vpCmd = m.storyViewport.Update(msg)
	return m, vpCmd
}

// nextEvent draws a new event. An event with no options left can be skipped.
func (m *ConsoleUI) nextEvent() {
	if m.current != nil && len(m.current.Event.Options) > 0 {
		m.status = "Choose an option first."
		return
	}
	issued := m.engine.NextEvent(m.session.Player, m.session.History, m.session.Dice)
	m.current = &issued
	m.story = append(m.story, entry{issued: &issued})
	m.status = ""
}

func (m *ConsoleUI) choose(i int) {
	if m.current == nil {
		m.status = "Press n to draw an event."
		return
	}
	options := m.current.Event.Options
	if i < 0 || i >= len(options) {
		m.status = fmt.Sprintf("There is no option %d.", i+1)
		return
	}

	res := m.engine.Choose(&m.session.Player, options[i], m.session.Dice)
	m.story = append(m.story, entry{resolution: &res, choice: options[i].Text})
	m.current = nil
	m.turns++
	m.status = ""
}

// review moves the player one tier up or down, as an SCS review would.
func (m *ConsoleUI) review(delta int) {
	if m.current != nil {
		m.status = "Finish the current event first."
		return
	}
	tier := min(max(m.session.Player.Tier+delta, player.MinTier), player.MaxTier)
	if tier == m.session.Player.Tier {
		m.status = "Tier cannot move further."
		return
	}
	m.session.Player.Tier = tier
	m.story = append(m.story, entry{notice: "SCS review: you are now tier " + player.TierName(tier) + "."})
}

func (m *ConsoleUI) advanceStage() {
	if m.current != nil {
		m.status = "Finish the current event first."
		return
	}
	if m.session.Player.LifeStage >= player.MaxLifeStage {
		m.status = "This is the last life stage."
		return
	}
	m.session.Player.LifeStage++
	m.story = append(m.story, entry{notice: fmt.Sprintf("You enter life stage %d.", m.session.Player.LifeStage)})
}

func (m *ConsoleUI) copyCurrent() {
	if m.current == nil {
		m.status = "Nothing to copy."
		return
	}
	if err := m.copy(plainEvent(m.current.Event)); err != nil {
		m.status = "Copy failed: " + err.Error()
		return
	}
	m.status = "Event copied to clipboard."
}

// plainEvent renders an event without styling, for the clipboard.
func plainEvent(ev event.EventData) string {
	var b strings.Builder
	b.WriteString(ev.Title + "\n\n" + ev.Description + "\n")
	for i, opt := range ev.Options {
		fmt.Fprintf(&b, "%d. %s\n", i+1, opt.Text)
	}
	return b.String()
}

func (m *ConsoleUI) refresh() {
	m.storyViewport.SetContent(m.writeStory(m.storyViewport.Width - 4))
	m.storyViewport.GotoBottom()
	m.metaViewport.SetContent(m.writeMetadata())
}

func (m ConsoleUI) writeStory(width int) string {
	if width < 20 {
		width = 20
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render("LOTUS") + "\n\n")
	content.WriteString(wordwrap.String("Press n to draw an event and 1-9 to choose. Press + or - for an SCS review and s to move to the next life stage.", width) + "\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", width)) + "\n\n")

	for _, e := range m.story {
		switch {
		case e.issued != nil:
			content.WriteString(formatEvent(e.issued, width, e.issued == m.current))
		case e.resolution != nil:
			content.WriteString(formatResolution(e.choice, *e.resolution, width))
		case e.notice != "":
			content.WriteString(noticeStyle.Render(wordwrap.String(e.notice, width)) + "\n\n")
		}
	}

	if m.status != "" {
		content.WriteString(promptStyle.Render(m.status) + "\n")
	}
	return content.String()
}

func formatEvent(issued *engine.Issued, width int, active bool) string {
	var b strings.Builder
	ev := issued.Event

	b.WriteString(titleStyle.Render(ev.Title))
	if issued.Origin != engine.OriginProcedural {
		b.WriteString(promptStyle.Render(" (" + string(issued.Origin) + ")"))
	}
	b.WriteString("\n")
	b.WriteString(wordwrap.String(ev.Description, width) + "\n\n")

	if !active {
		return b.String()
	}
	if len(ev.Options) == 0 {
		b.WriteString(promptStyle.Render("You have no options here. Press n to move on.") + "\n\n")
		return b.String()
	}
	for i, opt := range ev.Options {
		if i >= maxChoiceKeys {
			break
		}
		line := fmt.Sprintf("[%d] %s", i+1, opt.Text)
		if opt.RiskChance > 0 {
			line += fmt.Sprintf(" (risk %d%%)", opt.RiskChance)
		}
		b.WriteString(optionStyle.Render(wordwrap.String(line, width)) + "\n")
	}
	b.WriteString("\n")
	return b.String()
}

func formatResolution(choice string, res engine.Resolution, width int) string {
	var b strings.Builder
	b.WriteString(promptStyle.Render("You: ") + wordwrap.String(choice, width-5) + "\n")

	style := successStyle
	if res.Failed {
		style = errorStyle
	}
	if res.Text != "" {
		b.WriteString(style.Render(wordwrap.String(res.Text, width)) + "\n")
	}
	if !res.Outcome.IsZero() {
		b.WriteString(promptStyle.Render(describeOutcome(res.Outcome)) + "\n")
	}
	b.WriteString("\n")
	return b.String()
}

// describeOutcome lists the non-zero deltas, e.g. "SCS +12, Finances -40".
func describeOutcome(o event.EventOutcome) string {
	var parts []string
	for _, d := range []struct {
		name  string
		value int
	}{
		{"SCS", o.SCSChange},
		{"Finances", o.FinanceChange},
		{"Career", o.CareerLevelChange},
		{"Family", o.GuanxiFamilyChange},
		{"Network", o.GuanxiNetworkChange},
		{"Party", o.GuanxiPartyChange},
	} {
		if d.value != 0 {
			parts = append(parts, fmt.Sprintf("%s %+d", d.name, d.value))
		}
	}
	return strings.Join(parts, ", ")
}

func (m ConsoleUI) writeMetadata() string {
	p := m.session.Player
	var content strings.Builder
	content.WriteString(titleStyle.Render("PLAYER") + "\n\n")

	fmt.Fprintf(&content, "Tier:\n%s\n\n", player.TierName(p.Tier))
	fmt.Fprintf(&content, "Life stage:\n%d\n\n", p.LifeStage)
	fmt.Fprintf(&content, "Social credit:\n%d\n\n", p.SocialCredit)
	fmt.Fprintf(&content, "Finances:\n%d\n\n", p.Finances)
	fmt.Fprintf(&content, "Career level:\n%d\n\n", p.CareerLevel)
	content.WriteString("Guanxi:\n")
	fmt.Fprintf(&content, "• Family: %d\n• Network: %d\n• Party: %d\n\n", p.GuanxiFamily, p.GuanxiNetwork, p.GuanxiParty)

	content.WriteString("Recent domains:\n")
	recent := m.session.History.Recent(player.DefaultHistorySize)
	if len(recent) == 0 {
		content.WriteString("None\n\n")
	} else {
		for _, d := range recent {
			content.WriteString("• " + d.Label() + "\n")
		}
		content.WriteString("\n")
	}

	fmt.Fprintf(&content, "Turns: %d\n", m.turns)
	fmt.Fprintf(&content, "Seed: %d\n\n", m.session.Seed)

	content.WriteString("Keys:\n")
	content.WriteString("• n: Next event\n")
	content.WriteString("• 1-9: Choose\n")
	content.WriteString("• +/-: SCS review\n")
	content.WriteString("• s: Next stage\n")
	content.WriteString("• c: Copy event\n")
	content.WriteString("• Esc: Quit\n")
	return content.String()
}

func (m ConsoleUI) panelWidths() (story, meta int) {
	story = int(float64(m.width)*0.70) - 4
	meta = m.width - story - 6
	return story, meta
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				return m, nil
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit Game?"))
	content.WriteString("\n\n")
	content.WriteString("Your progress is not saved.")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	storyWidth, metaWidth := m.panelWidths()

	storyPanel := storyPanelStyle.Width(storyWidth).Height(m.height - 2).Render(
		m.storyViewport.View(),
	)
	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, storyPanel, metaPanel)
}
