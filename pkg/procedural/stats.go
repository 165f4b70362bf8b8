package procedural

import "github.com/jwebster45206/lotus-events/pkg/dice"

const (
	minVariance = 0.8
	maxVariance = 1.2
)

// TierMultiplier scales outcomes with standing: (tier+1) * 1.5.
func TierMultiplier(tier int) float64 {
	return float64(tier+1) * 1.5
}

// StatMultiplier combines tier, severity and a variance draw into one factor.
func StatMultiplier(tier int, severity Severity, variance float64) float64 {
	return TierMultiplier(tier) * severity.Multiplier() * variance
}

// CalculateStats synthesizes a concrete outcome from a base profile. One
// variance draw is shared by all six stats so they scale together.
func CalculateStats(base StatProfile, tier int, severity Severity, src dice.Source) StatProfile {
	variance := dice.Range(src, minVariance, maxVariance)
	return ScaleStats(base, StatMultiplier(tier, severity, variance))
}

// ScaleStats multiplies every field by m, truncating toward zero.
func ScaleStats(base StatProfile, m float64) StatProfile {
	scale := func(v int) int { return int(float64(v) * m) }
	return StatProfile{
		SCSChange:           scale(base.SCSChange),
		FinanceChange:       scale(base.FinanceChange),
		CareerLevelChange:   scale(base.CareerLevelChange),
		GuanxiFamilyChange:  scale(base.GuanxiFamilyChange),
		GuanxiNetworkChange: scale(base.GuanxiNetworkChange),
		GuanxiPartyChange:   scale(base.GuanxiPartyChange),
	}
}

// CalculateFailureStats derives the penalty for a failed choice: every field
// is flipped and amplified by 3/2 using integer division.
func CalculateFailureStats(success StatProfile) StatProfile {
	fail := func(v int) int { return -v * 3 / 2 }
	return StatProfile{
		SCSChange:           fail(success.SCSChange),
		FinanceChange:       fail(success.FinanceChange),
		CareerLevelChange:   fail(success.CareerLevelChange),
		GuanxiFamilyChange:  fail(success.GuanxiFamilyChange),
		GuanxiNetworkChange: fail(success.GuanxiNetworkChange),
		GuanxiPartyChange:   fail(success.GuanxiPartyChange),
	}
}
