package procedural

import (
	"io"
	"log/slog"

	"github.com/jwebster45206/lotus-events/pkg/event"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testSituation(id string, domain event.Domain, tierMin, tierMax, stageMin, stageMax int) SituationTemplate {
	return SituationTemplate{
		ID:           id,
		Domain:       domain,
		TierMin:      tierMin,
		TierMax:      tierMax,
		LifeStageMin: stageMin,
		LifeStageMax: stageMax,
		Severity:     SeverityMedium,
		BaseRisk:     20,
		Fragments: NarrativeFragments{
			Openings:  []string{"A {colleague_descriptor} approaches."},
			Conflicts: []string{"They offer {excuse}."},
			Stakes:    []string{"Your standing is at risk."},
		},
		Choices: []ChoiceArchetype{
			{
				Archetype:     ArchetypeConform,
				TextFragments: []string{"Go along with it."},
				BaseStats:     StatProfile{SCSChange: 5, GuanxiNetworkChange: 1},
			},
			{
				Archetype:     ArchetypeResist,
				TextFragments: []string{"Refuse politely."},
				BaseStats:     StatProfile{SCSChange: -5},
				RiskModifier:  10,
			},
		},
	}
}

func testVariables() VariableLibraries {
	return VariableLibraries{
		ColleagueDescriptors: map[string][]string{
			"0": {"disgraced clerk"},
			"2": {"ordinary coworker"},
			"4": {"rising cadre"},
		},
		Lists: map[string][]string{
			"excuse_library": {"a sick relative"},
		},
	}
}

func mustLibrary(situations ...SituationTemplate) *Library {
	lib, err := NewLibrary(situations, testVariables())
	if err != nil {
		panic(err)
	}
	return lib
}
