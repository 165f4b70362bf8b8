// Package engine is the entry point for event generation. It tries the
// procedural generator first and falls back to handcrafted content, so a
// request for an event always produces one.
package engine

import (
	"log/slog"

	"github.com/jwebster45206/lotus-events/pkg/dice"
	"github.com/jwebster45206/lotus-events/pkg/event"
	"github.com/jwebster45206/lotus-events/pkg/handcrafted"
	"github.com/jwebster45206/lotus-events/pkg/player"
	"github.com/jwebster45206/lotus-events/pkg/procedural"
)

// Origin says where an issued event came from.
type Origin string

const (
	OriginProcedural  Origin = "procedural"
	OriginHandcrafted Origin = "handcrafted"
	OriginPlaceholder Origin = "placeholder"
)

// Issued is an event handed to a player.
type Issued struct {
	Event  event.EventData `json:"event"`
	Origin Origin          `json:"origin"`
}

// Resolution is the result of picking an option.
type Resolution struct {
	Failed  bool               `json:"failed"`
	Outcome event.EventOutcome `json:"outcome"`
	Text    string             `json:"text,omitempty"`
}

// Engine is shared between sessions. Per-player state is passed in on every call.
type Engine struct {
	generator *procedural.Generator
	fallback  *handcrafted.Resolver
	logger    *slog.Logger
}

// New returns an engine over a procedural generator and a handcrafted resolver.
// Either may be nil.
func New(generator *procedural.Generator, fallback *handcrafted.Resolver, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if fallback == nil {
		fallback = handcrafted.NewResolver(nil, logger)
	}
	return &Engine{
		generator: generator,
		fallback:  fallback,
		logger:    logger,
	}
}

// NextEvent returns the next event for the player. Procedural events are
// recorded in h so the same situation is not drawn again this session.
func (e *Engine) NextEvent(p player.State, h *player.History, src dice.Source) Issued {
	if e.generator != nil {
		if ev, ok := e.generator.Generate(p, h, src); ok {
			if h != nil {
				h.RecordEvent(ev)
			}
			return Issued{Event: ev, Origin: OriginProcedural}
		}
		e.logger.Info("Procedural generation missed, using handcrafted events",
			"tier", p.Tier, "life_stage", p.LifeStage)
	}

	ev, found := e.fallback.Resolve(p, src)
	if !found {
		return Issued{Event: ev, Origin: OriginPlaceholder}
	}
	return Issued{Event: ev, Origin: OriginHandcrafted}
}

// Resolve rolls an option's risk. The failure outcome applies when the roll
// lands under RiskChance and the option has one; otherwise success applies.
// No roll is made for options without risk.
func (e *Engine) Resolve(opt event.EventOption, src dice.Source) Resolution {
	if opt.RiskChance > 0 && src.IntN(100) < opt.RiskChance && opt.FailureOutcome != nil {
		e.logger.Debug("Option failed", "text", opt.Text, "risk", opt.RiskChance)
		return Resolution{
			Failed:  true,
			Outcome: *opt.FailureOutcome,
			Text:    opt.FailureResult,
		}
	}
	return Resolution{Outcome: opt.SuccessOutcome, Text: opt.SuccessResult}
}

// Choose resolves opt and applies the outcome to p.
func (e *Engine) Choose(p *player.State, opt event.EventOption, src dice.Source) Resolution {
	res := e.Resolve(opt, src)
	p.Apply(res.Outcome)
	return res
}
