package event

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Domain is the thematic category of a procedural situation.
type Domain string

const (
	DomainFamily Domain = "family"
	DomainWork   Domain = "work"
	DomainPublic Domain = "public"
	DomainParty  Domain = "party"
)

// Domains lists every domain in a stable order.
var Domains = []Domain{DomainFamily, DomainWork, DomainPublic, DomainParty}

// Valid reports whether d is one of the known domains.
func (d Domain) Valid() bool {
	switch d {
	case DomainFamily, DomainWork, DomainPublic, DomainParty:
		return true
	}
	return false
}

// Requirements maps a player stat name to the minimum value needed to see an option.
type Requirements map[string]int

// EventOutcome holds the stat deltas applied when an option resolves.
// All fields are changes, not absolute values.
type EventOutcome struct {
	SCSChange           int `json:"scs_change"`
	FinanceChange       int `json:"finance_change"`
	CareerLevelChange   int `json:"career_level_change"`
	GuanxiFamilyChange  int `json:"guanxi_family_change"`
	GuanxiNetworkChange int `json:"guanxi_network_change"`
	GuanxiPartyChange   int `json:"guanxi_party_change"`
}

// IsZero reports whether the outcome changes nothing.
func (o EventOutcome) IsZero() bool {
	return o == EventOutcome{}
}

// EventOption is a single choice a player can make in an event.
type EventOption struct {
	Text           string        `json:"text"`
	Requirements   Requirements  `json:"requirements,omitempty"`
	RiskChance     int           `json:"risk_chance"` // 0-100 chance the failure outcome applies
	SuccessOutcome EventOutcome  `json:"success_outcome"`
	SuccessResult  string        `json:"success_result,omitempty"`
	FailureOutcome *EventOutcome `json:"failure_outcome,omitempty"`
	FailureResult  string        `json:"failure_result,omitempty"`
}

// EventData is a fully resolved event ready for display.
type EventData struct {
	Title            string        `json:"title"`
	Description      string        `json:"description"`
	Options          []EventOption `json:"options"`
	MinTier          int           `json:"min_tier"`
	MaxTier          int           `json:"max_tier"`
	IsGeneric        bool          `json:"is_generic"`
	LifeStage        int           `json:"life_stage"`
	ProceduralID     string        `json:"procedural_id,omitempty"`     // situation id when generated
	ProceduralDomain Domain        `json:"procedural_domain,omitempty"` // situation domain when generated
}

// IsProcedural reports whether the event came from the procedural generator
// rather than the handcrafted database.
func (e EventData) IsProcedural() bool {
	return e.ProceduralID != ""
}

// Label returns the display name of the domain, e.g. "Work".
func (d Domain) Label() string {
	// Casers carry state, so each call gets its own.
	return cases.Title(language.English).String(string(d))
}
