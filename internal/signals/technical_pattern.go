package signals

import (
	"context"
	"time"

	"solana-token-qualifier/internal/registry"
)

// TechnicalPatternModule looks for accelerating activity: transaction count
// in the most recent window compared against the window before it.
// Supplementary category, never scored directly.
type TechnicalPatternModule struct {
	signatureLimit int
	window         time.Duration
}

// NewTechnicalPatternModule creates the module with production defaults.
func NewTechnicalPatternModule() *TechnicalPatternModule {
	return &TechnicalPatternModule{
		signatureLimit: 100,
		window:         5 * time.Minute,
	}
}

// Name implements registry.Module.
func (m *TechnicalPatternModule) Name() string { return NameTechnicalPattern }

// Execute implements registry.Module.
func (m *TechnicalPatternModule) Execute(ctx context.Context, ec *registry.EvaluationContext) (*registry.Result, error) {
	sigs := recentSignatures(ctx, ec.Provider, ec.TokenAddress, m.signatureLimit)
	if len(sigs) == 0 {
		return &registry.Result{
			Confidence: seededConfidence(ec.TokenAddress, "technical-pattern", 5, 25),
			Payload:    map[string]any{"estimated": true},
		}, nil
	}

	now := time.Now().Unix()
	windowSec := int64(m.window / time.Second)

	recent, prior := 0, 0
	for _, sig := range sigs {
		if sig.BlockTime == nil {
			continue
		}
		delta := now - *sig.BlockTime
		switch {
		case delta <= windowSec:
			recent++
		case delta <= 2*windowSec:
			prior++
		}
	}

	momentum := momentumConfidence(recent, prior)

	return &registry.Result{
		Confidence: momentum,
		Payload: map[string]any{
			"recent_window": recent,
			"prior_window":  prior,
		},
	}, nil
}

func momentumConfidence(recent, prior int) float64 {
	if recent == 0 {
		return 5
	}
	if prior == 0 {
		// All activity is brand new; decent momentum but no trend yet.
		return clampConfidence(30 + float64(recent)*2)
	}
	ratio := float64(recent) / float64(prior)
	switch {
	case ratio >= 3:
		return 85
	case ratio >= 2:
		return 70
	case ratio >= 1.2:
		return 55
	case ratio >= 0.8:
		return 40
	default:
		return 20
	}
}
