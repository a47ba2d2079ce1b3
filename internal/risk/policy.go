package risk

import (
	"fmt"

	"solana-token-qualifier/internal/domain"
)

// Decision is the veto policy's verdict over a feature profile.
type Decision struct {
	Passed            bool
	RejectionReasons  []string
	Warnings          []string
	ConfidencePenalty float64 // 0-1
}

// VetoPolicy decides pass/fail over an assembled feature profile.
// Implementations must not mutate the profile.
type VetoPolicy interface {
	Evaluate(profile *domain.RiskProfile) Decision
}

// ThresholdPolicyConfig holds the cutoffs for ThresholdPolicy.
type ThresholdPolicyConfig struct {
	MinLiquidityUSD     float64
	MinTxCount          int
	MaxConcentrationPct float64

	WarnLiquidityUSD     float64
	WarnConcentrationPct float64
}

// DefaultThresholdPolicyConfig returns the production cutoffs.
func DefaultThresholdPolicyConfig() ThresholdPolicyConfig {
	return ThresholdPolicyConfig{
		MinLiquidityUSD:      500,
		MinTxCount:           3,
		MaxConcentrationPct:  90,
		WarnLiquidityUSD:     5000,
		WarnConcentrationPct: 60,
	}
}

// ThresholdPolicy vetoes tokens that fail hard cutoffs and accumulates a
// confidence penalty for soft concerns.
type ThresholdPolicy struct {
	cfg ThresholdPolicyConfig
}

// NewThresholdPolicy creates a threshold-based veto policy.
func NewThresholdPolicy(cfg ThresholdPolicyConfig) *ThresholdPolicy {
	return &ThresholdPolicy{cfg: cfg}
}

// Compile-time interface check.
var _ VetoPolicy = (*ThresholdPolicy)(nil)

// Evaluate applies the cutoffs in order. Rejection reasons keep the order
// in which checks ran.
func (p *ThresholdPolicy) Evaluate(profile *domain.RiskProfile) Decision {
	var d Decision
	d.Passed = true

	if profile.LiquidityUSD < p.cfg.MinLiquidityUSD {
		d.Passed = false
		d.RejectionReasons = append(d.RejectionReasons,
			fmt.Sprintf("liquidity $%.0f below minimum $%.0f", profile.LiquidityUSD, p.cfg.MinLiquidityUSD))
	}

	if profile.TxCountEstimate < p.cfg.MinTxCount {
		d.Passed = false
		d.RejectionReasons = append(d.RejectionReasons,
			fmt.Sprintf("estimated %d real transactions, need %d", profile.TxCountEstimate, p.cfg.MinTxCount))
	}

	if profile.HolderConcentration > p.cfg.MaxConcentrationPct {
		d.Passed = false
		d.RejectionReasons = append(d.RejectionReasons,
			fmt.Sprintf("holder concentration %.1f%% above %.1f%%", profile.HolderConcentration, p.cfg.MaxConcentrationPct))
	}

	if !d.Passed {
		return d
	}

	if profile.LiquidityUSD < p.cfg.WarnLiquidityUSD {
		d.Warnings = append(d.Warnings, "thin liquidity")
		d.ConfidencePenalty += 0.05
	}
	if profile.HolderConcentration > p.cfg.WarnConcentrationPct {
		d.Warnings = append(d.Warnings, "concentrated holders")
		d.ConfidencePenalty += 0.05
	}
	if profile.LiquidityEstimated {
		d.Warnings = append(d.Warnings, "liquidity estimate is non-authoritative")
		d.ConfidencePenalty += 0.05
	}
	if !profile.MetadataVerified {
		d.Warnings = append(d.Warnings, "token metadata not verified")
	}

	if d.ConfidencePenalty > 1 {
		d.ConfidencePenalty = 1
	}

	return d
}
