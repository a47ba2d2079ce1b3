package signals

import (
	"context"
	"sort"

	"solana-token-qualifier/internal/registry"
)

// TransactionPatternModule inspects the shape of recent activity: a steady
// cadence with a low failure ratio reads as organic demand, a single dense
// burst or a high failure ratio reads as bot churn.
type TransactionPatternModule struct {
	signatureLimit int
}

// NewTransactionPatternModule creates the module with production defaults.
func NewTransactionPatternModule() *TransactionPatternModule {
	return &TransactionPatternModule{signatureLimit: 100}
}

// Name implements registry.Module.
func (m *TransactionPatternModule) Name() string { return NameTransactionPattern }

// Execute implements registry.Module.
func (m *TransactionPatternModule) Execute(ctx context.Context, ec *registry.EvaluationContext) (*registry.Result, error) {
	sigs := recentSignatures(ctx, ec.Provider, ec.TokenAddress, m.signatureLimit)
	if len(sigs) == 0 {
		return &registry.Result{
			Confidence: seededConfidence(ec.TokenAddress, "transaction-pattern", 5, 20),
			Payload:    map[string]any{"estimated": true},
		}, nil
	}

	failed := 0
	var times []int64
	for _, sig := range sigs {
		if sig.Err != nil {
			failed++
		}
		if sig.BlockTime != nil {
			times = append(times, *sig.BlockTime)
		}
	}
	failureRatio := float64(failed) / float64(len(sigs))

	spread := spreadScore(times)

	// Start from the cadence spread, then discount failures hard: failed
	// swaps on a new token are nearly always sniping bots.
	confidence := spread * (1 - failureRatio*1.5)
	confidence = clampConfidence(confidence)

	return &registry.Result{
		Confidence: confidence,
		Payload: map[string]any{
			"signatures":    len(sigs),
			"failed":        failed,
			"failure_ratio": failureRatio,
		},
	}, nil
}

// spreadScore rewards activity spread over many distinct seconds and
// penalizes a single burst. Returns a value in [10, 85].
func spreadScore(times []int64) float64 {
	if len(times) < 2 {
		return 25
	}
	sort.Slice(times, func(i, j int) bool { return times[i] < times[j] })

	distinct := 1
	for i := 1; i < len(times); i++ {
		if times[i] != times[i-1] {
			distinct++
		}
	}
	ratio := float64(distinct) / float64(len(times))

	window := times[len(times)-1] - times[0]
	score := 10 + ratio*60
	if window >= 300 { // activity sustained past five minutes
		score += 15
	}
	if score > 85 {
		score = 85
	}
	return score
}
