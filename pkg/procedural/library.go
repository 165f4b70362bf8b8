package procedural

import (
	"errors"
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jwebster45206/lotus-events/pkg/event"
)

var (
	ErrEmptyFragments  = errors.New("narrative fragment list is empty")
	ErrEmptyChoiceText = errors.New("choice has no text fragments")
	ErrInvalidRange    = errors.New("invalid range")
	ErrDuplicateID     = errors.New("duplicate situation id")
	ErrInvalidEnum     = errors.New("invalid enumerated value")
)

// Severity scales the magnitude of stat outcomes.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Multiplier returns the outcome scaling for the severity.
func (s Severity) Multiplier() float64 {
	switch s {
	case SeverityLow:
		return 0.5
	case SeverityHigh:
		return 2.0
	default:
		return 1.0
	}
}

// Label returns the display name of the severity, e.g. "Medium".
func (s Severity) Label() string {
	return cases.Title(language.English).String(string(s))
}

func (s Severity) valid() bool {
	return s == SeverityLow || s == SeverityMedium || s == SeverityHigh
}

// Archetype is the behavioral flavor of a choice. It only affects result text.
type Archetype string

const (
	ArchetypeConform    Archetype = "conform"
	ArchetypeResist     Archetype = "resist"
	ArchetypeManipulate Archetype = "manipulate"
	ArchetypeIgnore     Archetype = "ignore"
)

func (a Archetype) valid() bool {
	switch a {
	case ArchetypeConform, ArchetypeResist, ArchetypeManipulate, ArchetypeIgnore:
		return true
	}
	return false
}

// StatProfile is a set of six signed stat deltas.
type StatProfile struct {
	SCSChange           int `json:"scs_change,omitempty" yaml:"scs_change,omitempty"`
	FinanceChange       int `json:"finance_change,omitempty" yaml:"finance_change,omitempty"`
	CareerLevelChange   int `json:"career_level_change,omitempty" yaml:"career_level_change,omitempty"`
	GuanxiFamilyChange  int `json:"guanxi_family_change,omitempty" yaml:"guanxi_family_change,omitempty"`
	GuanxiNetworkChange int `json:"guanxi_network_change,omitempty" yaml:"guanxi_network_change,omitempty"`
	GuanxiPartyChange   int `json:"guanxi_party_change,omitempty" yaml:"guanxi_party_change,omitempty"`
}

// Outcome converts the profile into an event outcome.
func (p StatProfile) Outcome() event.EventOutcome {
	return event.EventOutcome{
		SCSChange:           p.SCSChange,
		FinanceChange:       p.FinanceChange,
		CareerLevelChange:   p.CareerLevelChange,
		GuanxiFamilyChange:  p.GuanxiFamilyChange,
		GuanxiNetworkChange: p.GuanxiNetworkChange,
		GuanxiPartyChange:   p.GuanxiPartyChange,
	}
}

// NarrativeFragments are the pieces a situation description is built from,
// always in opening, conflict, stakes order.
type NarrativeFragments struct {
	Openings  []string `json:"openings" yaml:"openings"`
	Conflicts []string `json:"conflicts" yaml:"conflicts"`
	Stakes    []string `json:"stakes" yaml:"stakes"`
}

// ChoiceArchetype is one templated choice within a situation.
type ChoiceArchetype struct {
	Archetype     Archetype          `json:"archetype" yaml:"archetype"`
	TextFragments []string           `json:"text_fragments" yaml:"text_fragments"`
	BaseStats     StatProfile        `json:"base_stats" yaml:"base_stats"`
	RiskModifier  int                `json:"risk_modifier,omitempty" yaml:"risk_modifier,omitempty"`
	Requirements  event.Requirements `json:"requirements,omitempty" yaml:"requirements,omitempty"`
}

// SituationTemplate is an authored content unit. Templates are immutable once loaded.
type SituationTemplate struct {
	ID           string             `json:"id" yaml:"id"`
	Domain       event.Domain       `json:"domain" yaml:"domain"`
	TierMin      int                `json:"tier_min" yaml:"tier_min"`
	TierMax      int                `json:"tier_max" yaml:"tier_max"`
	LifeStageMin int                `json:"life_stage_min" yaml:"life_stage_min"`
	LifeStageMax int                `json:"life_stage_max" yaml:"life_stage_max"`
	Severity     Severity           `json:"severity" yaml:"severity"`
	BaseRisk     int                `json:"base_risk" yaml:"base_risk"`
	Fragments    NarrativeFragments `json:"fragments" yaml:"fragments"`
	Choices      []ChoiceArchetype  `json:"choices" yaml:"choices"`
}

// Validate checks the load-time invariants of a single template.
func (s *SituationTemplate) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("situation id is required")
	}
	if !s.Domain.Valid() {
		return fmt.Errorf("situation %s: %w: domain %q", s.ID, ErrInvalidEnum, s.Domain)
	}
	if !s.Severity.valid() {
		return fmt.Errorf("situation %s: %w: severity %q", s.ID, ErrInvalidEnum, s.Severity)
	}
	if s.TierMin < 0 || s.TierMin > s.TierMax {
		return fmt.Errorf("situation %s: %w: tier %d-%d", s.ID, ErrInvalidRange, s.TierMin, s.TierMax)
	}
	if s.LifeStageMin < 0 || s.LifeStageMin > s.LifeStageMax {
		return fmt.Errorf("situation %s: %w: life stage %d-%d", s.ID, ErrInvalidRange, s.LifeStageMin, s.LifeStageMax)
	}
	if s.BaseRisk < 0 || s.BaseRisk > 100 {
		return fmt.Errorf("situation %s: %w: base risk %d", s.ID, ErrInvalidRange, s.BaseRisk)
	}

	switch {
	case len(s.Fragments.Openings) == 0:
		return fmt.Errorf("situation %s: %w: openings", s.ID, ErrEmptyFragments)
	case len(s.Fragments.Conflicts) == 0:
		return fmt.Errorf("situation %s: %w: conflicts", s.ID, ErrEmptyFragments)
	case len(s.Fragments.Stakes) == 0:
		return fmt.Errorf("situation %s: %w: stakes", s.ID, ErrEmptyFragments)
	}

	for i, c := range s.Choices {
		if !c.Archetype.valid() {
			return fmt.Errorf("situation %s choice %d: %w: archetype %q", s.ID, i, ErrInvalidEnum, c.Archetype)
		}
		if len(c.TextFragments) == 0 {
			return fmt.Errorf("situation %s choice %d: %w", s.ID, i, ErrEmptyChoiceText)
		}
	}
	return nil
}

// DefaultDescriptorTier is used when colleague descriptors have no list for the player's tier.
const DefaultDescriptorTier = "2"

// VariableLibraries holds the word lists used for {placeholder} substitution.
type VariableLibraries struct {
	// ColleagueDescriptors is keyed by tier ("0".."4").
	ColleagueDescriptors map[string][]string `json:"colleague_descriptors" yaml:"colleague_descriptors"`
	Lists                map[string][]string `json:"lists" yaml:",inline"`
}

// Library is the immutable catalog of situations and word lists.
// It is safe to share between goroutines once loaded.
type Library struct {
	ByDomain  map[event.Domain][]SituationTemplate `json:"by_domain"`
	Variables VariableLibraries                    `json:"variables"`
}

// NewLibrary groups situations by domain and validates them.
func NewLibrary(situations []SituationTemplate, vars VariableLibraries) (*Library, error) {
	lib := &Library{
		ByDomain:  make(map[event.Domain][]SituationTemplate),
		Variables: vars,
	}
	for _, s := range situations {
		lib.ByDomain[s.Domain] = append(lib.ByDomain[s.Domain], s)
	}
	if err := lib.Validate(); err != nil {
		return nil, err
	}
	return lib, nil
}

// Validate checks every template and that ids are unique across domains.
func (l *Library) Validate() error {
	seen := make(map[string]bool)
	for _, s := range l.Situations() {
		if err := s.Validate(); err != nil {
			return err
		}
		if seen[s.ID] {
			return fmt.Errorf("%w: %s", ErrDuplicateID, s.ID)
		}
		seen[s.ID] = true
	}
	return nil
}

// Situations flattens the library into a single pool. Domains are visited in
// a fixed order so the pool, and therefore seeded generation, is reproducible.
func (l *Library) Situations() []*SituationTemplate {
	if l == nil {
		return nil
	}

	var all []*SituationTemplate
	for _, d := range event.Domains {
		list := l.ByDomain[d]
		for i := range list {
			all = append(all, &list[i])
		}
	}
	// Templates filed under an unknown domain still need to reach Validate.
	for d, list := range l.ByDomain {
		if d.Valid() {
			continue
		}
		for i := range list {
			all = append(all, &list[i])
		}
	}
	return all
}

// Len returns the number of situations in the library.
func (l *Library) Len() int {
	n := 0
	for _, list := range l.ByDomain {
		n += len(list)
	}
	return n
}
