package risk

import (
	"context"

	"solana-token-qualifier/internal/discovery"
	"solana-token-qualifier/internal/solana"
)

// Hash-seeded liquidity fallback range, USD.
const (
	fallbackLiquidityMin = 1000
	fallbackLiquidityMax = 50000
)

// estimateLiquidity estimates the token's pool value in USD via three
// fallbacks in order: recent pool-creation evidence / program-account scan,
// then a supply-based heuristic, then a hash-seeded non-authoritative
// estimate. The second return value is true when the hash path was used.
func (g *Gate) estimateLiquidity(ctx context.Context, address string, price float64) (float64, bool) {
	// Recent pool-creation evidence is the cheapest authoritative source.
	if g.cache != nil {
		if cached, ok := g.cache.Get(address); ok && cached.Event.PoolValueUSD > 0 {
			return cached.Event.PoolValueUSD, false
		}
	}

	if v, ok := g.scanPoolAccounts(ctx, address); ok {
		return v, false
	}

	if v, ok := g.estimateFromSupply(ctx, address, price); ok {
		return v, false
	}

	return hashSeededValue(address, fallbackLiquidityMin, fallbackLiquidityMax), true
}

// scanPoolAccounts looks for a pool holding this token in the known
// liquidity programs and derives pool value from the paired quote amount.
func (g *Gate) scanPoolAccounts(ctx context.Context, address string) (float64, bool) {
	for _, program := range []struct {
		id     string
		offset int
	}{
		{discovery.RaydiumAMMV4, discovery.RaydiumBaseMintOffset},
		{discovery.PumpFun, discovery.PumpFunMintOffset},
	} {
		accounts, err := g.provider.GetProgramAccounts(ctx, program.id, &solana.ProgramAccountsFilter{
			MemcmpOffset: program.offset,
			MemcmpBytes:  address,
		})
		if err != nil || len(accounts) == 0 {
			continue
		}

		// The SOL side of the pair sits in the pool account's lamports;
		// pool value counts both sides.
		var best float64
		for _, acc := range accounts {
			quoteSOL := float64(acc.Account.Lamports) / lamportsPerSOL
			if v := 2 * quoteSOL * g.cfg.SOLPriceUSD; v > best {
				best = v
			}
		}
		if best > 0 {
			return best, true
		}
	}

	return 0, false
}

// estimateFromSupply estimates pool value from total supply and a fixed
// activity ratio when direct lookup fails.
func (g *Gate) estimateFromSupply(ctx context.Context, address string, price float64) (float64, bool) {
	supply, err := g.provider.GetTokenSupply(ctx, address)
	if err != nil || supply == nil || supply.Amount <= 0 {
		return 0, false
	}

	pooled := supply.Amount * g.cfg.SupplyActivityRatio
	if price > 0 {
		return pooled * price, true
	}
	return pooled, true
}
