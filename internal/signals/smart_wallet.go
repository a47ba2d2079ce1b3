package signals

import (
	"context"
	"time"

	"solana-token-qualifier/internal/registry"
)

// SmartWalletModule detects early accumulation by large wallets. It samples
// recent transactions and counts distinct fee payers whose balance moves
// exceed a notional floor.
type SmartWalletModule struct {
	signatureLimit int
	sampleLimit    int
	minNotionalSOL float64
	txTimeout      time.Duration
}

// NewSmartWalletModule creates the module with production defaults.
func NewSmartWalletModule() *SmartWalletModule {
	return &SmartWalletModule{
		signatureLimit: 50,
		sampleLimit:    12,
		minNotionalSOL: 2.0,
		txTimeout:      5 * time.Second,
	}
}

// Name implements registry.Module.
func (m *SmartWalletModule) Name() string { return NameSmartWallet }

// Execute implements registry.Module.
func (m *SmartWalletModule) Execute(ctx context.Context, ec *registry.EvaluationContext) (*registry.Result, error) {
	sigs := recentSignatures(ctx, ec.Provider, ec.TokenAddress, m.signatureLimit)
	if len(sigs) == 0 {
		return &registry.Result{
			Confidence: seededConfidence(ec.TokenAddress, "smart-wallet", 5, 25),
			Payload:    map[string]any{"estimated": true},
		}, nil
	}

	entries := make(map[string]float64) // fee payer -> largest SOL move
	sampled := 0
	for _, sig := range sigs {
		if sampled >= m.sampleLimit {
			break
		}
		if sig.Err != nil {
			continue
		}
		txCtx, cancel := context.WithTimeout(ctx, m.txTimeout)
		tx, err := ec.Provider.GetTransaction(txCtx, sig.Signature)
		cancel()
		if err != nil || tx == nil || tx.Meta == nil || tx.Message == nil {
			continue
		}
		sampled++

		payer, moveSOL := largestMove(tx.Message.AccountKeys, tx.Meta.PreBalances, tx.Meta.PostBalances)
		if payer == "" || moveSOL < m.minNotionalSOL {
			continue
		}
		if moveSOL > entries[payer] {
			entries[payer] = moveSOL
		}
	}

	var totalSOL float64
	for _, v := range entries {
		totalSOL += v
	}

	// Each qualifying wallet is worth 20 points, size of the largest flows
	// adds up to 25 more.
	confidence := float64(len(entries)) * 20
	confidence += min(25, totalSOL)
	confidence = clampConfidence(confidence)

	return &registry.Result{
		Confidence: confidence,
		Payload: map[string]any{
			"wallet_entries": len(entries),
			"total_sol":      totalSOL,
			"sampled_txs":    sampled,
		},
	}, nil
}

// largestMove returns the account with the biggest absolute lamport delta
// and that delta in SOL. The fee payer is account index 0; moves smaller
// than the fee alone are ignored.
func largestMove(keys []string, pre, post []uint64) (string, float64) {
	const lamportsPerSOL = 1_000_000_000

	n := len(pre)
	if len(post) < n {
		n = len(post)
	}
	if len(keys) < n {
		n = len(keys)
	}

	var bestKey string
	var bestDelta uint64
	for i := 0; i < n; i++ {
		var delta uint64
		if post[i] > pre[i] {
			delta = post[i] - pre[i]
		} else {
			delta = pre[i] - post[i]
		}
		if delta > bestDelta {
			bestDelta = delta
			bestKey = keys[i]
		}
	}
	return bestKey, float64(bestDelta) / lamportsPerSOL
}
