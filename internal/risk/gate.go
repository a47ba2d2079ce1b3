// Package risk derives liquidity/volume/holder/transaction features from
// chain data and applies a veto policy before any signal module runs.
package risk

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"solana-token-qualifier/internal/config"
	"solana-token-qualifier/internal/domain"
	"solana-token-qualifier/internal/liquidity"
	"solana-token-qualifier/internal/solana"
)

// Gate assembles a RiskProfile for a token and runs the veto policy on it.
type Gate struct {
	provider solana.RPCClient
	policy   VetoPolicy
	cache    *liquidity.Cache
	cfg      config.Risk
	logger   zerolog.Logger
	clock    func() time.Time
}

// NewGate creates a risk assessment gate. The cache may be nil; the
// liquidity estimator then skips its cache path.
func NewGate(provider solana.RPCClient, policy VetoPolicy, cache *liquidity.Cache, cfg config.Risk, logger zerolog.Logger) *Gate {
	return &Gate{
		provider: provider,
		policy:   policy,
		cache:    cache,
		cfg:      cfg,
		logger:   logger.With().Str("component", "risk_gate").Logger(),
		clock:    time.Now,
	}
}

// WithClock sets a custom clock, for deterministic tests.
func (g *Gate) WithClock(clock func() time.Time) *Gate {
	g.clock = clock
	return g
}

// Assess builds the feature profile and applies the veto policy.
//
// Transient provider failures never veto: every estimator falls back to a
// heuristic, and an unexpected panic anywhere in the gate converts to a
// fail-open profile with a warning. Only a genuine policy rejection fails.
func (g *Gate) Assess(ctx context.Context, address string, price, ageMinutes float64) (profile *domain.RiskProfile) {
	defer func() {
		if r := recover(); r != nil {
			g.logger.Error().Str("token", address).Interface("panic", r).Msg("gate failed, passing fail-open")
			profile = &domain.RiskProfile{
				Address:           address,
				AgeMinutes:        ageMinutes,
				Passed:            true,
				ConfidencePenalty: g.cfg.FailOpenPenalty,
				Warnings:          []string{fmt.Sprintf("risk assessment failed: %v", r)},
			}
		}
	}()

	sigs := g.fetchSignatures(ctx, address)

	profile = &domain.RiskProfile{
		Address:    address,
		AgeMinutes: ageMinutes,
	}

	profile.Volume24h = g.estimateVolume(ctx, address, sigs)
	profile.LiquidityUSD, profile.LiquidityEstimated = g.estimateLiquidity(ctx, address, price)
	profile.HolderConcentration = g.estimateHolderConcentration(ctx, address)
	profile.TxCountEstimate = g.estimateRealTxCount(ctx, sigs)
	profile.MintDisabled = g.checkMintDisabled(ctx, address)
	profile.MetadataVerified = g.verifyMetadata(ctx, address)

	decision := g.policy.Evaluate(profile)
	profile.Passed = decision.Passed
	profile.RejectionReasons = decision.RejectionReasons
	profile.Warnings = append(profile.Warnings, decision.Warnings...)
	profile.ConfidencePenalty = decision.ConfidencePenalty

	g.logger.Debug().
		Str("token", address).
		Bool("passed", profile.Passed).
		Float64("volume_24h", profile.Volume24h).
		Float64("liquidity_usd", profile.LiquidityUSD).
		Float64("holder_concentration", profile.HolderConcentration).
		Int("tx_count", profile.TxCountEstimate).
		Msg("risk assessment")

	return profile
}
