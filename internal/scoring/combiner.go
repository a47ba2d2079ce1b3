// Package scoring turns raw signal outcomes and a risk profile into the
// final evaluation result.
package scoring

import (
	"solana-token-qualifier/internal/config"
	"solana-token-qualifier/internal/domain"
	"solana-token-qualifier/internal/registry"
)

// directCategories are the signal categories that feed the weighted base
// score. The remaining categories (deep-holder, social, technical-pattern)
// are supplementary: they show up in payloads and detection paths but their
// confidence never enters the base score.
var directCategories = []string{
	"smart-wallet",
	"liquidity-pool",
	"holder-velocity",
	"transaction-pattern",
	"market-context",
}

// Combiner computes final scores from module outcomes.
type Combiner struct {
	cfg     config.Scoring
	weights map[string]float64 // normalized category name -> weight
}

// NewCombiner creates a combiner from the scoring constants and the module
// registration list (weights are looked up by normalized name).
func NewCombiner(cfg config.Scoring, modules []config.ModuleConfig) *Combiner {
	weights := make(map[string]float64, len(modules))
	for _, m := range modules {
		weights[registry.Normalize(m.Name)] = m.Weight
	}
	return &Combiner{cfg: cfg, weights: weights}
}

// Combine produces the final result for one evaluation. Outcomes are keyed
// by normalized module name; missing or failed modules contribute zero
// confidence while their weight still sits in the denominator.
func (c *Combiner) Combine(
	address string,
	track domain.Track,
	ageMinutes float64,
	profile *domain.RiskProfile,
	outcomes map[string]*domain.SignalOutcome,
) *domain.EvaluationResult {
	base := c.weightedBase(outcomes)

	normalizedVolume := profile.Volume24h * ageNormalization(ageMinutes)
	volumeMult := c.volumeMultiplier(normalizedVolume)
	ageMult := c.ageMultiplier(ageMinutes)

	finalScore := base * volumeMult * ageMult
	if finalScore > c.cfg.ScoreCap {
		finalScore = c.cfg.ScoreCap
	}
	finalScore -= profile.ConfidencePenalty
	if finalScore < 0 {
		finalScore = 0
	}

	threshold := c.cfg.SlowTrackThreshold
	if track == domain.TrackFast {
		threshold = c.cfg.FastTrackThreshold
	}

	expectedReturn := c.expectedReturn(finalScore)

	return &domain.EvaluationResult{
		TokenAddress:   address,
		FinalScore:     finalScore,
		Confidence:     finalScore * 100,
		Track:          track,
		IsQualified:    finalScore >= threshold,
		PrimarySignal:  primarySignal(outcomes),
		DetectionPaths: c.detectionPaths(outcomes),
		Outcomes:       outcomes,
		ExpectedReturn: expectedReturn,
		RiskScore:      c.riskScore(finalScore, track, profile),
		PositionSize:   c.kellyFraction(finalScore, expectedReturn),
		Method:         domain.MethodSignals,
	}
}

func (c *Combiner) weightedBase(outcomes map[string]*domain.SignalOutcome) float64 {
	var weighted, totalWeight float64
	for _, cat := range directCategories {
		weight := c.weights[cat]
		totalWeight += weight
		if o, ok := outcomes[cat]; ok && o.Success {
			weighted += o.Confidence / 100 * weight
		}
	}
	if totalWeight == 0 {
		return 0
	}
	return weighted / totalWeight
}

// ageNormalization discounts volume for very young tokens so that a few
// minutes of activity is not extrapolated to a full day.
func ageNormalization(ageMinutes float64) float64 {
	f := ageMinutes / 15
	if f > 1 {
		f = 1
	}
	if f < 0.5 {
		f = 0.5
	}
	return f
}

func (c *Combiner) volumeMultiplier(volume float64) float64 {
	for _, tier := range c.cfg.VolumeTiers {
		if volume >= tier.MinVolume {
			return tier.Multiplier
		}
	}
	return c.cfg.VolumeFloorMultiplier
}

func (c *Combiner) ageMultiplier(ageMinutes float64) float64 {
	for _, tier := range c.cfg.AgeTiers {
		if ageMinutes <= tier.MaxAgeMinutes {
			return tier.Multiplier
		}
	}
	return c.cfg.AgeFloorMultiplier
}

func (c *Combiner) expectedReturn(score float64) float64 {
	for _, tier := range c.cfg.ReturnTiers {
		if score >= tier.MinScore {
			return tier.ExpectedReturn
		}
	}
	return c.cfg.ReturnFloor
}

func (c *Combiner) riskScore(finalScore float64, track domain.Track, profile *domain.RiskProfile) float64 {
	risk := 1 - finalScore
	if track == domain.TrackFast {
		risk += c.cfg.FastTrackPenalty
	}
	if profile.LiquidityUSD < c.cfg.ThinLiquidityUSD {
		risk += c.cfg.ThinLiquidityPenalty
	}
	if profile.HolderConcentration > c.cfg.TopHolderMaxPct {
		risk += c.cfg.TopHolderPenalty
	}
	if !profile.MintDisabled {
		risk += c.cfg.MintEnabledPenalty
	}
	if risk < 0 {
		risk = 0
	}
	if risk > 1 {
		risk = 1
	}
	return risk
}

// kellyFraction sizes a position with the Kelly criterion, using the final
// score as the win rate and the bucketed expected return as the average win.
func (c *Combiner) kellyFraction(finalScore, expectedReturn float64) float64 {
	if expectedReturn <= 0 {
		return 0
	}
	winRate := finalScore
	kelly := (winRate*expectedReturn - (1-winRate)*c.cfg.KellyAvgLoss) / expectedReturn
	if kelly < 0 {
		return 0
	}
	if kelly > c.cfg.KellyMaxFraction {
		return c.cfg.KellyMaxFraction
	}
	return kelly
}

func primarySignal(outcomes map[string]*domain.SignalOutcome) string {
	var best string
	bestConf := -1.0
	for _, cat := range allCategories() {
		o, ok := outcomes[cat]
		if !ok || !o.Success {
			continue
		}
		if o.Confidence > bestConf {
			bestConf = o.Confidence
			best = cat
		}
	}
	return best
}

func (c *Combiner) detectionPaths(outcomes map[string]*domain.SignalOutcome) []string {
	var paths []string
	for _, cat := range allCategories() {
		if o, ok := outcomes[cat]; ok && o.Success && o.Confidence > c.cfg.DetectionPathCutoff {
			paths = append(paths, cat)
		}
	}
	return paths
}

// allCategories lists every known category in a stable order so that
// primary signal selection and detection paths are deterministic.
func allCategories() []string {
	return []string{
		"smart-wallet",
		"liquidity-pool",
		"holder-velocity",
		"transaction-pattern",
		"deep-holder",
		"social",
		"technical-pattern",
		"market-context",
	}
}
