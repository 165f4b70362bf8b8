package handcrafted

import (
	"fmt"
	"log/slog"

	"github.com/jwebster45206/lotus-events/pkg/dice"
	"github.com/jwebster45206/lotus-events/pkg/event"
	"github.com/jwebster45206/lotus-events/pkg/player"
)

// NoEventTitle is the title of the diagnostic event returned when no
// handcrafted content exists for the player.
const NoEventTitle = "No Event Found!"

// lookup is one step of the fallback chain. It returns candidate positions
// into the event list and a short name for logging.
type lookup struct {
	name string
	find func(ix *Index, p player.State) []int
}

// chain is tried in order and stops at the first step with candidates.
var chain = []lookup{
	{
		name: "tier_specific",
		find: func(ix *Index, p player.State) []int {
			return ix.Lookup(p.LifeStage, p.Tier).TierSpecific
		},
	},
	{
		name: "generic",
		find: func(ix *Index, p player.State) []int {
			return ix.Lookup(p.LifeStage, p.Tier).Generic
		},
	},
	{
		name: "earlier_stage_generic",
		find: func(ix *Index, p player.State) []int {
			for stage := p.LifeStage - 1; stage >= 0; stage-- {
				if generic := ix.Lookup(stage, p.Tier).Generic; len(generic) > 0 {
					return generic
				}
			}
			return nil
		},
	},
}

// Resolver picks handcrafted events when procedural generation has nothing.
// It is read-only after construction and safe to share.
type Resolver struct {
	events []event.EventData
	index  *Index
	logger *slog.Logger
}

// NewResolver indexes events and returns a resolver over them.
func NewResolver(events []event.EventData, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		events: events,
		index:  BuildIndex(events),
		logger: logger,
	}
}

// Len returns the number of handcrafted events.
func (r *Resolver) Len() int {
	return len(r.events)
}

// Resolve always returns an event. Tier-specific events for the player's
// stage and tier come first, then generic ones, then generic events from
// earlier stages (most recent first), and finally the diagnostic event.
// Options the player cannot afford are removed; the event is returned even
// if that leaves none. found is false only for the diagnostic event.
func (r *Resolver) Resolve(p player.State, src dice.Source) (ev event.EventData, found bool) {
	for _, step := range chain {
		candidates := step.find(r.index, p)
		pos, ok := dice.Pick(src, candidates)
		if !ok {
			continue
		}

		r.logger.Info("Resolved handcrafted event",
			"step", step.name,
			"candidates", len(candidates),
			"title", r.events[pos].Title,
			"tier", p.Tier,
			"life_stage", p.LifeStage)

		ev = r.events[pos]
		ev.Options = p.FilterOptions(ev.Options)
		return ev, true
	}

	r.logger.Warn("No handcrafted event for player", "tier", p.Tier, "life_stage", p.LifeStage)
	return NoEventFound(p), false
}

// NoEventFound is the terminal fallback. It always has one selectable option.
func NoEventFound(p player.State) event.EventData {
	return event.EventData{
		Title: NoEventTitle,
		Description: fmt.Sprintf("No event exists for life stage %d at tier %s. This is a gap in the event content.",
			p.LifeStage, player.TierName(p.Tier)),
		Options: []event.EventOption{
			{
				Text:          "Continue.",
				SuccessResult: "Nothing happens.",
			},
		},
		MinTier:   p.Tier,
		MaxTier:   p.Tier,
		IsGeneric: true,
		LifeStage: p.LifeStage,
	}
}
