// Package signals provides the default set of signal modules registered by
// the evaluation orchestrator. Each module is a small data-driven heuristic
// over the chain provider and the liquidity event cache; every module
// degrades to a conservative estimate instead of failing hard when chain
// data is unavailable.
package signals

import (
	"context"
	"crypto/sha256"
	"encoding/binary"

	"solana-token-qualifier/internal/registry"
	"solana-token-qualifier/internal/solana"
)

// Canonical module names. Registration and score combination key on the
// normalized form of these.
const (
	NameSmartWallet        = "smart-wallet"
	NameLiquidityPool      = "liquidity-pool"
	NameHolderVelocity     = "holder-velocity"
	NameTransactionPattern = "transaction-pattern"
	NameDeepHolder         = "deep-holder"
	NameSocial             = "social"
	NameTechnicalPattern   = "technical-pattern"
	NameMarketContext      = "market-context"
)

var (
	_ registry.Module = (*SmartWalletModule)(nil)
	_ registry.Module = (*LiquidityPoolModule)(nil)
	_ registry.Module = (*HolderVelocityModule)(nil)
	_ registry.Module = (*TransactionPatternModule)(nil)
	_ registry.Module = (*DeepHolderModule)(nil)
	_ registry.Module = (*SocialModule)(nil)
	_ registry.Module = (*TechnicalPatternModule)(nil)
	_ registry.Module = (*MarketContextModule)(nil)
)

// Defaults returns the default module set keyed by canonical name.
func Defaults() map[string]registry.Module {
	return map[string]registry.Module{
		NameSmartWallet:        NewSmartWalletModule(),
		NameLiquidityPool:      NewLiquidityPoolModule(),
		NameHolderVelocity:     NewHolderVelocityModule(),
		NameTransactionPattern: NewTransactionPatternModule(),
		NameDeepHolder:         NewDeepHolderModule(),
		NameSocial:             NewSocialModule(),
		NameTechnicalPattern:   NewTechnicalPatternModule(),
		NameMarketContext:      NewMarketContextModule(),
	}
}

// seededConfidence derives a deterministic value in [lo, hi) from the token
// address. Used only as a last-resort estimate when no chain data is
// reachable, so repeated evaluations of the same token stay stable.
func seededConfidence(address, salt string, lo, hi float64) float64 {
	sum := sha256.Sum256([]byte(salt + ":" + address))
	n := binary.BigEndian.Uint64(sum[:8]) % 10000
	return lo + (hi-lo)*float64(n)/10000
}

// recentSignatures fetches up to limit recent signatures for the token,
// returning nil on any provider error.
func recentSignatures(ctx context.Context, provider solana.RPCClient, address string, limit int) []solana.SignatureInfo {
	sigs, err := provider.GetSignaturesForAddress(ctx, address, &solana.SignaturesOpts{Limit: limit})
	if err != nil {
		return nil
	}
	return sigs
}

func clampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
