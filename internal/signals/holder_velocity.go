package signals

import (
	"context"

	"solana-token-qualifier/internal/registry"
)

// HolderVelocityModule approximates how fast the holder base is growing by
// relating recent transaction cadence to token age.
type HolderVelocityModule struct {
	signatureLimit int
}

// NewHolderVelocityModule creates the module with production defaults.
func NewHolderVelocityModule() *HolderVelocityModule {
	return &HolderVelocityModule{signatureLimit: 100}
}

// Name implements registry.Module.
func (m *HolderVelocityModule) Name() string { return NameHolderVelocity }

// Execute implements registry.Module.
func (m *HolderVelocityModule) Execute(ctx context.Context, ec *registry.EvaluationContext) (*registry.Result, error) {
	sigs := recentSignatures(ctx, ec.Provider, ec.TokenAddress, m.signatureLimit)
	if len(sigs) == 0 {
		return &registry.Result{
			Confidence: seededConfidence(ec.TokenAddress, "holder-velocity", 5, 20),
			Payload:    map[string]any{"estimated": true},
		}, nil
	}

	age := ec.AgeMinutes
	if age < 1 {
		age = 1
	}
	txPerMinute := float64(len(sigs)) / age

	holders, holdersKnown := m.countLargestHolders(ctx, ec)

	// Transaction cadence carries the signal; a visible holder base on top
	// confirms the activity is not a single wallet churning.
	confidence := cadenceConfidence(txPerMinute)
	if holdersKnown {
		confidence += min(20, float64(holders)*2)
	}
	confidence = clampConfidence(confidence)

	payload := map[string]any{
		"tx_per_minute": txPerMinute,
		"signatures":    len(sigs),
	}
	if holdersKnown {
		payload["holders_sampled"] = holders
	}
	return &registry.Result{Confidence: confidence, Payload: payload}, nil
}

func (m *HolderVelocityModule) countLargestHolders(ctx context.Context, ec *registry.EvaluationContext) (int, bool) {
	accounts, err := ec.Provider.GetTokenLargestAccounts(ctx, ec.TokenAddress)
	if err != nil {
		return 0, false
	}
	holders := 0
	for _, acc := range accounts {
		if acc.Amount > 0 {
			holders++
		}
	}
	return holders, true
}

func cadenceConfidence(txPerMinute float64) float64 {
	switch {
	case txPerMinute >= 10:
		return 80
	case txPerMinute >= 5:
		return 65
	case txPerMinute >= 2:
		return 50
	case txPerMinute >= 1:
		return 35
	case txPerMinute >= 0.2:
		return 20
	default:
		return 10
	}
}
