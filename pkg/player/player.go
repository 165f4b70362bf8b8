package player

import "github.com/jwebster45206/lotus-events/pkg/event"

const (
	MinTier      = 0
	MaxTier      = 4
	MinLifeStage = 1
	MaxLifeStage = 4
)

// Stat names accepted as option requirements.
const (
	StatCareerLevel   = "career_level"
	StatGuanxiFamily  = "guanxi_family"
	StatGuanxiNetwork = "guanxi_network"
	StatGuanxiParty   = "guanxi_party"
)

var tierNames = []string{"D (Blacklisted)", "C (Warning)", "B (Standard)", "A (Trusted)", "A+ (Exemplary)"}

// TierName returns the social credit label for a tier, or "?" when out of range.
func TierName(tier int) string {
	if tier < MinTier || tier > MaxTier {
		return "?"
	}
	return tierNames[tier]
}

// State is a snapshot of the player used to generate and gate events.
type State struct {
	Tier          int `json:"tier"`
	LifeStage     int `json:"life_stage"`
	SocialCredit  int `json:"social_credit_score"`
	Finances      int `json:"finances"`
	CareerLevel   int `json:"career_level"`
	GuanxiFamily  int `json:"guanxi_family"`
	GuanxiNetwork int `json:"guanxi_network"`
	GuanxiParty   int `json:"guanxi_party"`
}

// Default returns the starting state of a new player (tier B, first life stage).
func Default() State {
	return State{
		Tier:          2,
		LifeStage:     1,
		SocialCredit:  550,
		Finances:      1000,
		CareerLevel:   1,
		GuanxiFamily:  1,
		GuanxiNetwork: 1,
		GuanxiParty:   0,
	}
}

// Stat looks up a requirement stat by name. ok is false for names that are
// not requirement stats.
func (s State) Stat(name string) (value int, ok bool) {
	switch name {
	case StatCareerLevel:
		return s.CareerLevel, true
	case StatGuanxiFamily:
		return s.GuanxiFamily, true
	case StatGuanxiNetwork:
		return s.GuanxiNetwork, true
	case StatGuanxiParty:
		return s.GuanxiParty, true
	}
	return 0, false
}

// MeetsRequirements reports whether the player matches or exceeds every
// recognized requirement. Unknown stat names never block.
func (s State) MeetsRequirements(req event.Requirements) bool {
	for name, required := range req {
		value, ok := s.Stat(name)
		if !ok {
			continue
		}
		if value < required {
			return false
		}
	}
	return true
}

// FilterOptions returns the options whose requirements the player meets, in order.
func (s State) FilterOptions(options []event.EventOption) []event.EventOption {
	available := make([]event.EventOption, 0, len(options))
	for _, opt := range options {
		if s.MeetsRequirements(opt.Requirements) {
			available = append(available, opt)
		}
	}
	return available
}

// Apply adds the outcome deltas to the player's stats. Career level and
// guanxi never drop below zero.
func (s *State) Apply(o event.EventOutcome) {
	s.SocialCredit += o.SCSChange
	s.Finances += o.FinanceChange
	s.CareerLevel = max(s.CareerLevel+o.CareerLevelChange, 0)
	s.GuanxiFamily = max(s.GuanxiFamily+o.GuanxiFamilyChange, 0)
	s.GuanxiNetwork = max(s.GuanxiNetwork+o.GuanxiNetworkChange, 0)
	s.GuanxiParty = max(s.GuanxiParty+o.GuanxiPartyChange, 0)
}
