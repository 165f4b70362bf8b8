package procedural

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/jwebster45206/lotus-events/pkg/dice"
	"github.com/jwebster45206/lotus-events/pkg/event"
	"github.com/jwebster45206/lotus-events/pkg/player"
)

const (
	// DefaultWildcardChance is the probability that a call ignores the recent-domain filter.
	DefaultWildcardChance = 0.10
	// recentDomainWindow is how many recent domains a situation must avoid.
	recentDomainWindow = 2

	exactTierBonus  = 2.0
	exactStageBonus = 2.0
)

// FilterReport counts why candidates were rejected during filtering.
type FilterReport struct {
	Total       int
	Tier        int
	LifeStage   int
	Encountered int
	Domain      int
	Remaining   int
}

// Generator draws procedural events from a Library. A Generator holds no
// per-player state and may be shared between sessions.
type Generator struct {
	library        *Library
	logger         *slog.Logger
	wildcardChance float64
}

// Option configures a Generator.
type Option func(*Generator)

// WithWildcardChance overrides the probability of a wildcard draw.
func WithWildcardChance(p float64) Option {
	return func(g *Generator) {
		g.wildcardChance = p
	}
}

// NewGenerator creates a generator over lib.
func NewGenerator(lib *Library, logger *slog.Logger, opts ...Option) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	g := &Generator{
		library:        lib,
		logger:         logger,
		wildcardChance: DefaultWildcardChance,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate tries to build a procedural event for the player. ok is false when
// nothing qualifies right now, which callers treat as a cue to fall back.
// Generate never mutates history; recording the drawn situation is up to the caller.
func (g *Generator) Generate(p player.State, h *player.History, src dice.Source) (event.EventData, bool) {
	allowWildcard := src.Bool(g.wildcardChance)
	if allowWildcard {
		g.logger.Debug("Wildcard draw, ignoring recent domains")
	}

	candidates, report := FilterSituations(g.library.Situations(), p, h, allowWildcard)
	g.logger.Info("Situation filtering complete",
		"total", report.Total,
		"tier_filtered", report.Tier,
		"stage_filtered", report.LifeStage,
		"encountered_filtered", report.Encountered,
		"domain_filtered", report.Domain,
		"remaining", report.Remaining)

	if len(candidates) == 0 {
		g.logger.Info("No procedural candidates, falling back", "tier", p.Tier, "life_stage", p.LifeStage)
		return event.EventData{}, false
	}

	weights := make([]float64, len(candidates))
	for i, s := range candidates {
		weights[i] = SelectionWeight(s, p)
	}
	idx, err := dice.Weighted(src, weights)
	if err != nil {
		g.logger.Info("Weighted selection failed, falling back", "error", err)
		return event.EventData{}, false
	}
	situation := candidates[idx]

	g.logger.Debug("Selected situation",
		"id", situation.ID,
		"domain", situation.Domain,
		"tier_min", situation.TierMin,
		"tier_max", situation.TierMax,
		"stage_min", situation.LifeStageMin,
		"stage_max", situation.LifeStageMax)

	description := AssembleDescription(situation.Fragments, g.library.Variables, p.Tier, src)
	title := fmt.Sprintf("%s - %s Severity", situation.Domain.Label(), situation.Severity.Label())

	available := make([]ChoiceArchetype, 0, len(situation.Choices))
	for _, c := range situation.Choices {
		if p.MeetsRequirements(c.Requirements) {
			available = append(available, c)
			continue
		}
		g.logger.Debug("Choice filtered by requirements", "situation", situation.ID, "archetype", c.Archetype, "requirements", c.Requirements)
	}
	if len(available) == 0 {
		g.logger.Info("No available choices, falling back",
			"situation", situation.ID,
			"choices", len(situation.Choices),
			"career_level", p.CareerLevel,
			"guanxi_family", p.GuanxiFamily,
			"guanxi_network", p.GuanxiNetwork,
			"guanxi_party", p.GuanxiParty)
		return event.EventData{}, false
	}

	options := make([]event.EventOption, 0, len(available))
	for _, c := range available {
		options = append(options, buildOption(situation, c, p, src))
	}

	g.logger.Info("Procedural event generated", "situation", situation.ID, "domain", situation.Domain, "options", len(options))

	return event.EventData{
		Title:            title,
		Description:      description,
		Options:          options,
		MinTier:          situation.TierMin,
		MaxTier:          situation.TierMax,
		IsGeneric:        false,
		LifeStage:        p.LifeStage,
		ProceduralID:     situation.ID,
		ProceduralDomain: situation.Domain,
	}, true
}

func buildOption(s *SituationTemplate, c ChoiceArchetype, p player.State, src dice.Source) event.EventOption {
	text := AssembleChoiceText(c.TextFragments, src)
	success := CalculateStats(c.BaseStats, p.Tier, s.Severity, src)
	failure := CalculateFailureStats(success).Outcome()

	return event.EventOption{
		Text:           text,
		Requirements:   maps.Clone(c.Requirements),
		RiskChance:     CalculateRisk(s.BaseRisk, c.RiskModifier, c.Requirements, p),
		SuccessOutcome: success.Outcome(),
		SuccessResult:  SuccessResult(c.Archetype, success),
		FailureOutcome: &failure,
		FailureResult:  FailureResult(c.Archetype),
	}
}

// SuccessResult is the text shown when a choice succeeds.
func SuccessResult(a Archetype, success StatProfile) string {
	if success.SCSChange > 0 {
		return fmt.Sprintf("You chose to %s. Things went well.", a)
	}
	return fmt.Sprintf("You chose to %s. There were consequences.", a)
}

// FailureResult is the text shown when a choice backfires.
func FailureResult(a Archetype) string {
	return fmt.Sprintf("You chose to %s, but it backfired. Things didn't go as planned.", a)
}

// FilterSituations keeps the situations eligible for the player. A situation
// qualifies when its tier range touches the player's tier +/- 1, its life
// stage range touches the current or previous stage, it has not been drawn
// this session, and (unless allowWildcard) its domain is not one of the two
// most recent.
func FilterSituations(situations []*SituationTemplate, p player.State, h *player.History, allowWildcard bool) ([]*SituationTemplate, FilterReport) {
	report := FilterReport{Total: len(situations)}

	tierLow := max(p.Tier-1, 0)
	tierHigh := p.Tier + 1
	stageLow := max(p.LifeStage-1, 1)
	recent := h.Recent(recentDomainWindow)

	var out []*SituationTemplate
	for _, s := range situations {
		switch {
		case s.TierMin > tierHigh || s.TierMax < tierLow:
			report.Tier++
		case s.LifeStageMin > p.LifeStage || s.LifeStageMax < stageLow:
			report.LifeStage++
		case h.HasEncountered(s.ID):
			report.Encountered++
		case !allowWildcard && slices.Contains(recent, s.Domain):
			report.Domain++
		default:
			out = append(out, s)
		}
	}

	report.Remaining = len(out)
	return out, report
}

// SelectionWeight favors situations that match the player exactly: x2 when
// the tier is inside the range, x2 again when the life stage is.
func SelectionWeight(s *SituationTemplate, p player.State) float64 {
	weight := 1.0
	if s.TierMin <= p.Tier && p.Tier <= s.TierMax {
		weight *= exactTierBonus
	}
	if s.LifeStageMin <= p.LifeStage && p.LifeStage <= s.LifeStageMax {
		weight *= exactStageBonus
	}
	return weight
}
