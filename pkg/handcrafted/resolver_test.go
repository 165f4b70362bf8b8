package handcrafted

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/lotus-events/pkg/dice"
	"github.com/jwebster45206/lotus-events/pkg/event"
	"github.com/jwebster45206/lotus-events/pkg/player"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testEvent(title string, stage, minTier, maxTier int, generic bool) event.EventData {
	return event.EventData{
		Title:       title,
		Description: title + " happens.",
		MinTier:     minTier,
		MaxTier:     maxTier,
		IsGeneric:   generic,
		LifeStage:   stage,
		Options: []event.EventOption{
			{Text: "Accept.", SuccessOutcome: event.EventOutcome{SCSChange: 5}},
		},
	}
}

func playerAt(tier, stage int) player.State {
	p := player.Default()
	p.Tier = tier
	p.LifeStage = stage
	return p
}

func TestBuildIndex(t *testing.T) {
	events := []event.EventData{
		testEvent("ranged", 2, 1, 3, false),
		testEvent("generic", 2, 2, 2, true),
		testEvent("inverted", 2, 3, 1, false),
	}
	ix := BuildIndex(events)

	assert.Equal(t, 3, ix.Len())
	for tier := 1; tier <= 3; tier++ {
		assert.Equal(t, []int{0}, ix.Lookup(2, tier).TierSpecific, "tier %d", tier)
	}
	assert.Equal(t, []int{1}, ix.Lookup(2, 2).Generic)
	assert.Empty(t, ix.Lookup(2, 1).Generic)
	assert.Empty(t, ix.Lookup(1, 2).TierSpecific)
	assert.Empty(t, ix.Lookup(2, 4).TierSpecific)

	var nilIndex *Index
	assert.Equal(t, Bucket{}, nilIndex.Lookup(1, 1))
	assert.Equal(t, 0, nilIndex.Len())
}

func TestResolve_Order(t *testing.T) {
	tests := []struct {
		name   string
		events []event.EventData
		player player.State
		want   []string
	}{
		{
			name: "tier specific before generic",
			events: []event.EventData{
				testEvent("specific", 2, 2, 2, false),
				testEvent("generic", 2, 2, 2, true),
			},
			player: playerAt(2, 2),
			want:   []string{"specific"},
		},
		{
			name: "generic when nothing tier specific",
			events: []event.EventData{
				testEvent("generic", 2, 0, 4, true),
				testEvent("other tier", 2, 3, 3, false),
			},
			player: playerAt(2, 2),
			want:   []string{"generic"},
		},
		{
			name: "most recent earlier stage wins",
			events: []event.EventData{
				testEvent("stage one", 1, 2, 2, true),
				testEvent("stage two a", 2, 2, 2, true),
				testEvent("stage two b", 2, 2, 2, true),
				testEvent("stage two specific", 2, 2, 2, false),
			},
			player: playerAt(2, 3),
			want:   []string{"stage two a", "stage two b"},
		},
		{
			name: "skips empty stages",
			events: []event.EventData{
				testEvent("stage one", 1, 2, 2, true),
			},
			player: playerAt(2, 4),
			want:   []string{"stage one"},
		},
		{
			name: "diagnostic when nothing matches",
			events: []event.EventData{
				testEvent("later stage", 3, 2, 2, true),
				testEvent("other tier", 1, 1, 1, true),
			},
			player: playerAt(2, 2),
			want:   []string{NoEventTitle},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver(tt.events, testLogger())
			for seed := uint64(0); seed < 50; seed++ {
				got, found := r.Resolve(tt.player, dice.New(seed))
				assert.Contains(t, tt.want, got.Title)
				assert.Equal(t, got.Title != NoEventTitle, found)
			}
		})
	}
}

func TestResolve_EarlierStagesNeverPlaceholder(t *testing.T) {
	for stage := 2; stage <= player.MaxLifeStage; stage++ {
		for tier := player.MinTier; tier <= player.MaxTier; tier++ {
			events := []event.EventData{
				testEvent("earlier", stage-1, tier, tier, true),
				testEvent("same stage other tier", stage, (tier+1)%5, (tier+1)%5, true),
				testEvent("later", stage+1, tier, tier, true),
			}
			r := NewResolver(events, testLogger())
			for seed := uint64(0); seed < 20; seed++ {
				got, found := r.Resolve(playerAt(tier, stage), dice.New(seed))
				assert.True(t, found)
				assert.Equal(t, "earlier", got.Title, "stage %d tier %d", stage, tier)
			}
		}
	}
}

func TestResolve_FiltersOptions(t *testing.T) {
	ev := testEvent("gated", 1, 2, 2, false)
	ev.Options = []event.EventOption{
		{Text: "Call in a favour.", Requirements: event.Requirements{player.StatGuanxiParty: 3}},
		{Text: "Ask family.", Requirements: event.Requirements{player.StatGuanxiFamily: 1}},
	}
	r := NewResolver([]event.EventData{ev}, testLogger())

	got, _ := r.Resolve(playerAt(2, 1), &dice.MockSource{})
	require.Len(t, got.Options, 1)
	assert.Equal(t, "Ask family.", got.Options[0].Text)

	// the stored event is untouched
	assert.Len(t, ev.Options, 2)
	connected := playerAt(2, 1)
	connected.GuanxiParty = 5
	again, _ := r.Resolve(connected, &dice.MockSource{})
	assert.Len(t, again.Options, 2)
}

func TestResolve_ReturnsEventWithNoAffordableOptions(t *testing.T) {
	ev := testEvent("locked", 1, 2, 2, false)
	ev.Options = []event.EventOption{
		{Text: "Call in a favour.", Requirements: event.Requirements{player.StatGuanxiParty: 9}},
	}
	r := NewResolver([]event.EventData{ev}, testLogger())

	got, _ := r.Resolve(playerAt(2, 1), &dice.MockSource{})
	assert.Equal(t, "locked", got.Title)
	assert.Empty(t, got.Options)
}

func TestNoEventFound(t *testing.T) {
	p := playerAt(3, 2)
	ev := NoEventFound(p)

	assert.Equal(t, NoEventTitle, ev.Title)
	assert.Contains(t, ev.Description, "life stage 2")
	assert.Contains(t, ev.Description, player.TierName(3))
	require.Len(t, ev.Options, 1)
	assert.True(t, ev.Options[0].SuccessOutcome.IsZero())
	assert.Zero(t, ev.Options[0].RiskChance)
	assert.Nil(t, ev.Options[0].FailureOutcome)
	assert.False(t, ev.IsProcedural())
}

func TestResolve_EmptyDatabase(t *testing.T) {
	r := NewResolver(nil, nil)
	assert.Equal(t, 0, r.Len())
	got, found := r.Resolve(player.Default(), dice.New(1))
	assert.False(t, found)
	assert.Equal(t, NoEventTitle, got.Title)
}
