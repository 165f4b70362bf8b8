package procedural

import (
	"github.com/jwebster45206/lotus-events/pkg/event"
	"github.com/jwebster45206/lotus-events/pkg/player"
)

const (
	// MaxRisk keeps every choice winnable.
	MaxRisk = 95
	// riskPerGapPoint is added for each point the player falls short of a requirement.
	riskPerGapPoint = 5
)

// CalculateRisk returns the failure chance (0-95) of a choice. Each point the
// player falls short of a requirement adds 5; exceeding a requirement never
// lowers risk below the situation's base. Unknown requirement stats are ignored.
func CalculateRisk(baseRisk, riskModifier int, req event.Requirements, p player.State) int {
	risk := baseRisk

	for name, required := range req {
		value, ok := p.Stat(name)
		if !ok {
			continue
		}
		if gap := required - value; gap > 0 {
			risk += gap * riskPerGapPoint
		}
	}

	risk += riskModifier

	return min(max(risk, 0), MaxRisk)
}
