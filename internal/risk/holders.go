package risk

import "context"

// Hash-seeded concentration fallback range, percent.
const (
	fallbackConcentrationMin = 20
	fallbackConcentrationMax = 45
)

// estimateHolderConcentration estimates top-holder concentration from the
// largest token accounts and total supply. The top holder's share is
// weighted 70%, the top-3 share 30%. Falls back to a hash-seeded heuristic
// on provider failure.
func (g *Gate) estimateHolderConcentration(ctx context.Context, address string) float64 {
	balances, err := g.provider.GetTokenLargestAccounts(ctx, address)
	if err != nil || len(balances) == 0 {
		return hashSeededValue(address, fallbackConcentrationMin, fallbackConcentrationMax)
	}

	supply, err := g.provider.GetTokenSupply(ctx, address)
	if err != nil || supply == nil || supply.Amount <= 0 {
		return hashSeededValue(address, fallbackConcentrationMin, fallbackConcentrationMax)
	}

	topPct := balances[0].Amount / supply.Amount * 100

	var top3 float64
	for i, b := range balances {
		if i >= 3 {
			break
		}
		top3 += b.Amount
	}
	top3Pct := top3 / supply.Amount * 100

	concentration := 0.7*topPct + 0.3*top3Pct
	return clamp(concentration, g.cfg.ConcentrationMin, g.cfg.ConcentrationMax)
}
