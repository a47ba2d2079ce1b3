package signals

import (
	"context"

	"solana-token-qualifier/internal/discovery"
	"solana-token-qualifier/internal/registry"
	"solana-token-qualifier/internal/solana"
)

// LiquidityPoolModule scores pool depth. A fresh creation event in the
// liquidity cache is the strongest evidence; otherwise it scans the known
// DEX programs directly.
type LiquidityPoolModule struct {
	solPriceUSD float64
}

// NewLiquidityPoolModule creates the module with production defaults.
func NewLiquidityPoolModule() *LiquidityPoolModule {
	return &LiquidityPoolModule{solPriceUSD: 150}
}

// Name implements registry.Module.
func (m *LiquidityPoolModule) Name() string { return NameLiquidityPool }

// Execute implements registry.Module.
func (m *LiquidityPoolModule) Execute(ctx context.Context, ec *registry.EvaluationContext) (*registry.Result, error) {
	if ec.Cache != nil {
		if cached, ok := ec.Cache.Get(ec.TokenAddress); ok {
			return &registry.Result{
				Confidence: clampConfidence(poolValueConfidence(cached.Event.PoolValueUSD) + 10), // fresh event bonus
				Payload: map[string]any{
					"pool_usd": cached.Event.PoolValueUSD,
					"dex":      cached.Event.DEX,
					"source":   "event_cache",
				},
			}, nil
		}
	}

	if usd, ok := m.scanPools(ctx, ec); ok {
		return &registry.Result{
			Confidence: poolValueConfidence(usd),
			Payload:    map[string]any{"pool_usd": usd, "source": "program_scan"},
		}, nil
	}

	return &registry.Result{
		Confidence: seededConfidence(ec.TokenAddress, "liquidity-pool", 10, 30),
		Payload:    map[string]any{"estimated": true},
	}, nil
}

func (m *LiquidityPoolModule) scanPools(ctx context.Context, ec *registry.EvaluationContext) (float64, bool) {
	scans := []struct {
		program string
		offset  int
	}{
		{discovery.RaydiumAMMV4, discovery.RaydiumBaseMintOffset},
		{discovery.PumpFun, discovery.PumpFunMintOffset},
	}
	for _, s := range scans {
		accounts, err := ec.Provider.GetProgramAccounts(ctx, s.program, &solana.ProgramAccountsFilter{
			MemcmpOffset: s.offset,
			MemcmpBytes:  ec.TokenAddress,
		})
		if err != nil || len(accounts) == 0 {
			continue
		}
		var best float64
		for _, acc := range accounts {
			usd := 2 * float64(acc.Account.Lamports) / 1e9 * m.solPriceUSD
			if usd > best {
				best = usd
			}
		}
		if best > 0 {
			return best, true
		}
	}
	return 0, false
}

// poolValueConfidence maps pool USD value to confidence in [0, 90].
func poolValueConfidence(usd float64) float64 {
	switch {
	case usd >= 100_000:
		return 90
	case usd >= 50_000:
		return 80
	case usd >= 20_000:
		return 70
	case usd >= 10_000:
		return 60
	case usd >= 5_000:
		return 45
	case usd >= 1_000:
		return 30
	default:
		return 15
	}
}
