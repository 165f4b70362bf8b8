package procedural

import (
	"testing"

	"github.com/jwebster45206/lotus-events/pkg/dice"
	"github.com/stretchr/testify/assert"
)

func TestAssembleDescription_FixedOrder(t *testing.T) {
	f := NarrativeFragments{
		Openings:  []string{"Opening A.", "Opening B."},
		Conflicts: []string{"Conflict A.", "Conflict B."},
		Stakes:    []string{"Stakes A.", "Stakes B."},
	}
	src := &dice.MockSource{IntNFunc: func(n int) int { return 1 }}

	got := AssembleDescription(f, VariableLibraries{}, 2, src)

	assert.Equal(t, "Opening B. Conflict B. Stakes B.", got)
	assert.Equal(t, []int{2, 2, 2}, src.IntNCalls, "no draws for text without placeholders")
}

func TestAssembleDescription_SkipsEmptyLists(t *testing.T) {
	f := NarrativeFragments{Openings: []string{"Only this."}}
	got := AssembleDescription(f, VariableLibraries{}, 2, dice.New(1))
	assert.Equal(t, "Only this.", got)
}

func TestAssembleChoiceText(t *testing.T) {
	src := &dice.MockSource{IntNFunc: func(n int) int { return 2 }}
	got := AssembleChoiceText([]string{"a", "b", "Report {party_official}."}, src)
	assert.Equal(t, "Report {party_official}.", got, "choice text is not substituted")

	assert.Equal(t, "", AssembleChoiceText(nil, src))
}

func TestSubstituteVariables(t *testing.T) {
	vars := VariableLibraries{
		ColleagueDescriptors: map[string][]string{
			"1": {"nervous intern"},
			"2": {"ordinary coworker"},
		},
		Lists: map[string][]string{
			"excuse_library":     {"a sick relative"},
			"relationship_types": {"cousin"},
			"public_place":       {"the market"},
			"empty_list":         {},
		},
	}

	tests := []struct {
		name string
		text string
		tier int
		want string
	}{
		{name: "no placeholders", text: "Plain text.", tier: 2, want: "Plain text."},
		{name: "named list", text: "At {public_place}.", tier: 2, want: "At the market."},
		{name: "aliased excuse list", text: "Blame {excuse}.", tier: 2, want: "Blame a sick relative."},
		{name: "aliased relationship list", text: "Your {relationship_type} calls.", tier: 2, want: "Your cousin calls."},
		{name: "tier specific descriptor", text: "A {colleague_descriptor}.", tier: 1, want: "A nervous intern."},
		{name: "descriptor falls back to tier 2", text: "A {colleague_descriptor}.", tier: 4, want: "A ordinary coworker."},
		{name: "every occurrence replaced", text: "{public_place}, then {public_place}.", tier: 2, want: "the market, then the market."},
		{name: "unknown list left unresolved", text: "Meet {party_elite}.", tier: 2, want: "Meet {party_elite}."},
		{name: "empty list left unresolved", text: "See {empty_list}.", tier: 2, want: "See {empty_list}."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SubstituteVariables(tt.text, vars, tt.tier, dice.New(5)))
		})
	}
}

func TestSubstituteVariables_MissingDescriptorsTolerated(t *testing.T) {
	got := SubstituteVariables("A {colleague_descriptor}.", VariableLibraries{}, 3, dice.New(1))
	assert.Equal(t, "A {colleague_descriptor}.", got)
}

func TestSubstituteVariables_DrawsOnlyForPresentTokens(t *testing.T) {
	vars := VariableLibraries{Lists: map[string][]string{
		"public_place": {"the market", "the station"},
		"day_time":     {"dawn", "dusk"},
	}}
	src := &dice.MockSource{}

	SubstituteVariables("At {public_place}, twice {public_place}.", vars, 2, src)

	assert.Equal(t, []int{2}, src.IntNCalls, "one draw per distinct placeholder present")
}
