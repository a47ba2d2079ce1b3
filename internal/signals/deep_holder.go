package signals

import (
	"context"

	"solana-token-qualifier/internal/registry"
)

// DeepHolderModule measures distribution depth below the top holder. Wide
// ownership past the first wallet is a dump-resistance signal that the raw
// concentration estimate in the risk gate does not capture.
type DeepHolderModule struct{}

// NewDeepHolderModule creates the module.
func NewDeepHolderModule() *DeepHolderModule { return &DeepHolderModule{} }

// Name implements registry.Module.
func (m *DeepHolderModule) Name() string { return NameDeepHolder }

// Execute implements registry.Module.
func (m *DeepHolderModule) Execute(ctx context.Context, ec *registry.EvaluationContext) (*registry.Result, error) {
	accounts, err := ec.Provider.GetTokenLargestAccounts(ctx, ec.TokenAddress)
	if err != nil || len(accounts) == 0 {
		return &registry.Result{
			Confidence: seededConfidence(ec.TokenAddress, "deep-holder", 10, 35),
			Payload:    map[string]any{"estimated": true},
		}, nil
	}

	var total, top1, tail float64
	for i, acc := range accounts {
		total += acc.Amount
		if i == 0 {
			top1 = acc.Amount
		} else {
			tail = tail + acc.Amount
		}
	}
	if total <= 0 {
		return &registry.Result{Confidence: 0, Payload: map[string]any{"holders": 0}}, nil
	}

	top1Pct := top1 / total * 100
	tailPct := tail / total * 100

	// Depth is the share held outside the top wallet, discounted when the
	// top wallet alone dominates.
	confidence := tailPct
	if top1Pct > 60 {
		confidence *= 0.5
	}
	confidence = clampConfidence(confidence)

	return &registry.Result{
		Confidence: confidence,
		Payload: map[string]any{
			"holders_sampled": len(accounts),
			"top1_pct":        top1Pct,
			"tail_pct":        tailPct,
		},
	}, nil
}
