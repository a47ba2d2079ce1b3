package registry

import (
	"context"

	"github.com/rs/zerolog"

	"solana-token-qualifier/internal/domain"
	"solana-token-qualifier/internal/liquidity"
	"solana-token-qualifier/internal/solana"
)

// Module is the capability interface every signal module implements.
type Module interface {
	// Name returns the module's stable identifier.
	Name() string

	// Execute evaluates one dimension of the token and returns a
	// confidence in [0, 100] with an optional payload.
	Execute(ctx context.Context, ec *EvaluationContext) (*Result, error)
}

// Result is a module's raw output before the executor wraps it into a
// domain.SignalOutcome.
type Result struct {
	Confidence float64 // 0-100
	Payload    map[string]any
}

// EvaluationContext carries everything a module may consult during one
// evaluation. Immutable for the duration of the call.
type EvaluationContext struct {
	TokenAddress string
	Track        domain.Track
	AgeMinutes   float64
	Price        float64
	Volume24h    float64 // risk-gate volume estimate
	Provider     solana.RPCClient
	Cache        *liquidity.Cache
	Logger       zerolog.Logger
}
