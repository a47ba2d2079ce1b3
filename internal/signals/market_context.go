package signals

import (
	"context"
	"time"

	"solana-token-qualifier/internal/registry"
)

// MarketContextModule scores the environment rather than the token: how many
// pools launched recently (market heat from the liquidity cache) and whether
// this token's own volume keeps up with that backdrop.
type MarketContextModule struct {
	heatWindow time.Duration
}

// NewMarketContextModule creates the module with production defaults.
func NewMarketContextModule() *MarketContextModule {
	return &MarketContextModule{heatWindow: 15 * time.Minute}
}

// Name implements registry.Module.
func (m *MarketContextModule) Name() string { return NameMarketContext }

// Execute implements registry.Module.
func (m *MarketContextModule) Execute(_ context.Context, ec *registry.EvaluationContext) (*registry.Result, error) {
	launches := 0
	if ec.Cache != nil {
		launches = len(ec.Cache.GetAll())
	}

	heat := marketHeatConfidence(launches)

	// Relative volume: does this token stand out against the backdrop.
	relative := 0.0
	switch {
	case ec.Volume24h >= 50_000:
		relative = 30
	case ec.Volume24h >= 10_000:
		relative = 20
	case ec.Volume24h >= 2_000:
		relative = 10
	}

	return &registry.Result{
		Confidence: clampConfidence(heat + relative),
		Payload: map[string]any{
			"recent_launches": launches,
			"volume_24h":      ec.Volume24h,
		},
	}, nil
}

// marketHeatConfidence maps recent launch count to a base confidence. A dead
// market and an oversaturated one both score low.
func marketHeatConfidence(launches int) float64 {
	switch {
	case launches == 0:
		return 15
	case launches <= 5:
		return 40
	case launches <= 20:
		return 55
	case launches <= 50:
		return 45
	default:
		return 25
	}
}
