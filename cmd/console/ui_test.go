package main

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/lotus-events/pkg/dice"
	"github.com/jwebster45206/lotus-events/pkg/engine"
	"github.com/jwebster45206/lotus-events/pkg/event"
	"github.com/jwebster45206/lotus-events/pkg/handcrafted"
	"github.com/jwebster45206/lotus-events/pkg/player"
)

func newTestUI(t *testing.T, events []event.EventData, copyFn func(string) error) ConsoleUI {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	eng := engine.New(nil, handcrafted.NewResolver(events, log), log)
	if copyFn == nil {
		copyFn = func(string) error { return nil }
	}
	ui := NewConsoleUI(eng, Session{
		Seed:    7,
		Player:  player.Default(),
		History: player.NewHistory(player.DefaultHistorySize),
		Dice:    dice.New(7),
	}, copyFn)

	model, _ := ui.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return model.(ConsoleUI)
}

func press(t *testing.T, ui ConsoleUI, key string) (ConsoleUI, tea.Cmd) {
	t.Helper()
	var msg tea.KeyMsg
	switch key {
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	model, cmd := ui.Update(msg)
	return model.(ConsoleUI), cmd
}

func schoolEvent() event.EventData {
	return event.EventData{
		Title:       "First Day of School",
		Description: "Your parents walk you to the gate.",
		MinTier:     0,
		MaxTier:     4,
		LifeStage:   1,
		IsGeneric:   true,
		Options: []event.EventOption{
			{Text: "Sit in the front row.", SuccessOutcome: event.EventOutcome{SCSChange: 5}, SuccessResult: "The principal approves."},
			{Text: "Ask the party secretary for a seat.", Requirements: event.Requirements{player.StatGuanxiParty: 5}},
		},
	}
}

func TestConsoleUI_PlayTurn(t *testing.T) {
	ui := newTestUI(t, []event.EventData{schoolEvent()}, nil)
	require.True(t, ui.ready)

	ui, _ = press(t, ui, "n")
	require.NotNil(t, ui.current)
	assert.Equal(t, engine.OriginHandcrafted, ui.current.Origin)
	assert.Len(t, ui.current.Event.Options, 1, "party option should be filtered")

	ui, _ = press(t, ui, "n")
	assert.Equal(t, "Choose an option first.", ui.status)

	ui, _ = press(t, ui, "2")
	assert.Equal(t, "There is no option 2.", ui.status)

	ui, _ = press(t, ui, "1")
	assert.Nil(t, ui.current)
	assert.Equal(t, 1, ui.turns)
	assert.Equal(t, player.Default().SocialCredit+5, ui.session.Player.SocialCredit)
	assert.Contains(t, ui.storyViewport.View(), "The principal approves.")
}

func TestConsoleUI_ChooseWithoutEvent(t *testing.T) {
	ui := newTestUI(t, nil, nil)
	ui, _ = press(t, ui, "1")
	assert.Equal(t, "Press n to draw an event.", ui.status)
}

func TestConsoleUI_SkipsEventWithoutOptions(t *testing.T) {
	ev := schoolEvent()
	ev.Options = ev.Options[1:]
	ui := newTestUI(t, []event.EventData{ev}, nil)

	ui, _ = press(t, ui, "n")
	require.NotNil(t, ui.current)
	assert.Empty(t, ui.current.Event.Options)

	ui, _ = press(t, ui, "n")
	assert.Empty(t, ui.status)
	assert.Len(t, ui.story, 2)
}

func TestConsoleUI_Placeholder(t *testing.T) {
	ui := newTestUI(t, nil, nil)
	ui, _ = press(t, ui, "n")
	require.NotNil(t, ui.current)
	assert.Equal(t, engine.OriginPlaceholder, ui.current.Origin)
	assert.Equal(t, handcrafted.NoEventTitle, ui.current.Event.Title)
}

func TestConsoleUI_ReviewAndStage(t *testing.T) {
	ui := newTestUI(t, nil, nil)

	ui, _ = press(t, ui, "+")
	assert.Equal(t, 3, ui.session.Player.Tier)
	ui, _ = press(t, ui, "+")
	ui, _ = press(t, ui, "+")
	assert.Equal(t, player.MaxTier, ui.session.Player.Tier)
	assert.Equal(t, "Tier cannot move further.", ui.status)

	ui, _ = press(t, ui, "-")
	assert.Equal(t, player.MaxTier-1, ui.session.Player.Tier)

	for range player.MaxLifeStage {
		ui, _ = press(t, ui, "s")
	}
	assert.Equal(t, player.MaxLifeStage, ui.session.Player.LifeStage)
	assert.Equal(t, "This is the last life stage.", ui.status)
}

func TestConsoleUI_ReviewBlockedDuringEvent(t *testing.T) {
	ui := newTestUI(t, []event.EventData{schoolEvent()}, nil)
	ui, _ = press(t, ui, "n")

	ui, _ = press(t, ui, "+")
	assert.Equal(t, "Finish the current event first.", ui.status)
	assert.Equal(t, player.Default().Tier, ui.session.Player.Tier)
}

func TestConsoleUI_Copy(t *testing.T) {
	var copied string
	ui := newTestUI(t, []event.EventData{schoolEvent()}, func(s string) error {
		copied = s
		return nil
	})

	ui, _ = press(t, ui, "c")
	assert.Equal(t, "Nothing to copy.", ui.status)

	ui, _ = press(t, ui, "n")
	ui, _ = press(t, ui, "c")
	assert.Equal(t, "Event copied to clipboard.", ui.status)
	assert.Contains(t, copied, "First Day of School")
	assert.Contains(t, copied, "1. Sit in the front row.")
}

func TestConsoleUI_CopyError(t *testing.T) {
	ui := newTestUI(t, []event.EventData{schoolEvent()}, func(string) error {
		return errors.New("no clipboard")
	})
	ui, _ = press(t, ui, "n")
	ui, _ = press(t, ui, "c")
	assert.Equal(t, "Copy failed: no clipboard", ui.status)
}

func TestConsoleUI_QuitModal(t *testing.T) {
	ui := newTestUI(t, nil, nil)

	ui, _ = press(t, ui, "esc")
	assert.True(t, ui.showQuitModal)
	assert.Contains(t, ui.View(), "Quit Game?")

	ui, cmd := press(t, ui, "n")
	assert.False(t, ui.showQuitModal)
	assert.Nil(t, cmd)
	assert.Nil(t, ui.current, "n in the modal should not draw an event")

	ui, _ = press(t, ui, "esc")
	_, cmd = press(t, ui, "y")
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestDescribeOutcome(t *testing.T) {
	assert.Empty(t, describeOutcome(event.EventOutcome{}))
	assert.Equal(t, "SCS +12, Finances -40", describeOutcome(event.EventOutcome{SCSChange: 12, FinanceChange: -40}))
}

func TestFormatResolution_SkipsEmptyOutcome(t *testing.T) {
	quiet := formatResolution("Stay home.", engine.Resolution{Text: "Nothing happens."}, 80)
	assert.Contains(t, quiet, "Nothing happens.")
	assert.NotContains(t, quiet, "SCS")

	changed := formatResolution("Report it.", engine.Resolution{Outcome: event.EventOutcome{SCSChange: 5}}, 80)
	assert.Contains(t, changed, "SCS +5")
}
