package risk

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"solana-token-qualifier/internal/solana"
)

const lamportsPerSOL = 1_000_000_000

// linearBackOff yields step, 2*step, 3*step... between attempts.
type linearBackOff struct {
	step    time.Duration
	attempt int
}

func (b *linearBackOff) NextBackOff() time.Duration {
	b.attempt++
	return time.Duration(b.attempt) * b.step
}

func (b *linearBackOff) Reset() {
	b.attempt = 0
}

// fetchSignatures retrieves recent signatures with bounded retries.
// On exhaustion it returns an empty set; the caller proceeds fail-open.
func (g *Gate) fetchSignatures(ctx context.Context, address string) []solana.SignatureInfo {
	var sigs []solana.SignatureInfo

	op := func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, g.cfg.SignatureFetchTimeout)
		defer cancel()

		result, err := g.provider.GetSignaturesForAddress(attemptCtx, address, &solana.SignaturesOpts{
			Limit: g.cfg.SignatureLimit,
		})
		if err != nil {
			return err
		}
		sigs = result
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(&linearBackOff{step: g.cfg.RetryStep}, uint64(g.cfg.SignatureRetries)),
		ctx,
	)
	if err := backoff.Retry(op, policy); err != nil {
		g.logger.Warn().Str("token", address).Err(err).Msg("signature fetch exhausted, proceeding with empty set")
		return nil
	}

	return sigs
}

// estimateVolume estimates 24h USD volume from a sample of recent
// transactions, extrapolated across the full recent signature set.
func (g *Gate) estimateVolume(ctx context.Context, address string, sigs []solana.SignatureInfo) float64 {
	nowUnix := g.clock().Unix()

	var recent []solana.SignatureInfo
	for _, s := range sigs {
		if s.BlockTime != nil && nowUnix-*s.BlockTime <= g.cfg.VolumeWindowSeconds {
			recent = append(recent, s)
		}
	}

	if len(recent) == 0 {
		// Stale signatures carry no volume evidence; only in-window
		// activity counts toward the per-signature fallback.
		return g.fallbackVolume(0)
	}

	sample := recent
	if len(sample) > g.cfg.VolumeSampleLimit {
		sample = sample[:g.cfg.VolumeSampleLimit]
	}

	var total float64
	analyzed := 0
	for _, s := range sample {
		notional, ok := g.analyzeTransfer(ctx, s.Signature)
		if !ok {
			continue // best-effort, individual failures are skipped
		}
		total += notional
		analyzed++
	}

	if analyzed == 0 {
		return g.fallbackVolume(len(recent))
	}

	avg := total / float64(analyzed)
	estimate := avg * float64(len(recent))
	return clamp(estimate, g.cfg.VolumeClampMin, g.cfg.VolumeClampMax)
}

// fallbackVolume is the deterministic minimum-volume heuristic used when no
// transaction could be analyzed.
func (g *Gate) fallbackVolume(recentCount int) float64 {
	v := float64(recentCount) * g.cfg.VolumePerSignature
	if v < g.cfg.MinVolumeFallback {
		v = g.cfg.MinVolumeFallback
	}
	return v
}

// analyzeTransfer fetches one transaction and extracts a notional transfer
// amount in USD from its lamport balance deltas.
func (g *Gate) analyzeTransfer(ctx context.Context, signature string) (float64, bool) {
	txCtx, cancel := context.WithTimeout(ctx, g.cfg.TxFetchTimeout)
	defer cancel()

	tx, err := g.provider.GetTransaction(txCtx, signature)
	if err != nil || tx == nil || tx.Meta == nil {
		return 0, false
	}
	if tx.Meta.Err != nil {
		return 0, false
	}

	delta := maxBalanceDelta(tx.Meta)
	if delta == 0 {
		return 0, false
	}

	sol := float64(delta) / lamportsPerSOL
	return sol * g.cfg.SOLPriceUSD, true
}

// maxBalanceDelta returns the largest positive lamport delta across the
// transaction's accounts, net of the fee account's movement.
func maxBalanceDelta(meta *solana.TransactionMeta) uint64 {
	n := len(meta.PreBalances)
	if len(meta.PostBalances) < n {
		n = len(meta.PostBalances)
	}

	var max uint64
	for i := 0; i < n; i++ {
		if meta.PostBalances[i] > meta.PreBalances[i] {
			d := meta.PostBalances[i] - meta.PreBalances[i]
			if d > max {
				max = d
			}
		}
	}
	return max
}

// estimateRealTxCount samples signatures for genuine transfer activity and
// extrapolates the hit-rate across the full set.
func (g *Gate) estimateRealTxCount(ctx context.Context, sigs []solana.SignatureInfo) int {
	if len(sigs) == 0 {
		return 0
	}

	sample := sigs
	if len(sample) > g.cfg.TxCountSampleLimit {
		sample = sample[:g.cfg.TxCountSampleLimit]
	}

	sampled, hits := 0, 0
	for _, s := range sample {
		txCtx, cancel := context.WithTimeout(ctx, g.cfg.TxFetchTimeout)
		tx, err := g.provider.GetTransaction(txCtx, s.Signature)
		cancel()
		if err != nil {
			continue
		}
		sampled++
		if tx != nil && tx.Meta != nil && tx.Meta.Err == nil && maxBalanceDelta(tx.Meta) > 0 {
			hits++
		}
	}

	if sampled == 0 {
		return int(float64(len(sigs)) * g.cfg.TxCountFallbackRatio)
	}

	hitRate := float64(hits) / float64(sampled)
	return int(hitRate * float64(len(sigs)))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
