// Package evaluator orchestrates token evaluation: risk gating, concurrent
// signal module execution and score combination.
package evaluator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"solana-token-qualifier/internal/config"
	"solana-token-qualifier/internal/domain"
	"solana-token-qualifier/internal/liquidity"
	"solana-token-qualifier/internal/observability"
	"solana-token-qualifier/internal/registry"
	"solana-token-qualifier/internal/risk"
	"solana-token-qualifier/internal/scoring"
	"solana-token-qualifier/internal/signals"
	"solana-token-qualifier/internal/solana"
)

// FallbackCalculator scores a token when no signal module applies to its
// track. An escape hatch for legacy callers, not part of the signal path.
type FallbackCalculator interface {
	Calculate(ctx context.Context, address string, price, ageMinutes float64) (*domain.EvaluationResult, error)
}

// Orchestrator runs the full evaluation pipeline for one token at a time.
// Safe for concurrent use.
type Orchestrator struct {
	cfg      *config.Config
	gate     *risk.Gate
	provider solana.RPCClient
	cache    *liquidity.Cache
	fallback FallbackCalculator
	logger   zerolog.Logger

	initOnce sync.Once
	initErr  error
	registry *registry.Registry
	combiner *scoring.Combiner
	exec     *executor
}

// New creates an orchestrator. The registry is built lazily on the first
// evaluation. fallback may be nil; evaluation of a track with no applicable
// modules then fails instead of delegating.
func New(cfg *config.Config, gate *risk.Gate, provider solana.RPCClient, cache *liquidity.Cache, fallback FallbackCalculator, logger zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		cfg:      cfg,
		gate:     gate,
		provider: provider,
		cache:    cache,
		fallback: fallback,
		logger:   logger.With().Str("component", "evaluator").Logger(),
	}
}

// init builds the registry and registers the default module set. Memoized:
// concurrent first callers block on the same initialization instead of
// re-running it.
func (o *Orchestrator) init() error {
	o.initOnce.Do(func() {
		reg := registry.New()
		defaults := signals.Defaults()
		for _, mc := range o.cfg.Modules {
			module, ok := defaults[registry.Normalize(mc.Name)]
			if !ok {
				o.initErr = fmt.Errorf("unknown default module %q", mc.Name)
				return
			}
			if err := reg.Register(registry.Descriptor{
				Name:     mc.Name,
				Enabled:  true,
				Weight:   mc.Weight,
				Priority: mc.Priority,
				Module:   module,
			}); err != nil {
				o.initErr = fmt.Errorf("register %s: %w", mc.Name, err)
				return
			}
		}
		o.registry = reg
		o.combiner = scoring.NewCombiner(o.cfg.Scoring, o.cfg.Modules)
		o.exec = &executor{
			moduleTimeout: o.cfg.Execution.ModuleTimeout,
			groupTimeout:  o.cfg.Execution.GroupTimeout,
			logger:        o.logger,
		}
		o.logger.Info().Int("modules", len(o.cfg.Modules)).Msg("module registry initialized")
	})
	return o.initErr
}

// Registry exposes the module registry for runtime reconfiguration (A/B
// tests, disabling a module). Initializes on first use.
func (o *Orchestrator) Registry() (*registry.Registry, error) {
	if err := o.init(); err != nil {
		return nil, err
	}
	return o.registry, nil
}

// EvaluateToken runs the full pipeline for one token.
func (o *Orchestrator) EvaluateToken(ctx context.Context, address string, price, ageMinutes float64) (*domain.EvaluationResult, error) {
	if err := o.init(); err != nil {
		return nil, err
	}

	start := time.Now()
	track := domain.ClassifyTrack(ageMinutes)
	logger := o.logger.With().Str("token", address).Str("track", string(track)).Logger()

	profile := o.gate.Assess(ctx, address, price, ageMinutes)
	if !profile.Passed {
		logger.Info().Strs("reasons", profile.RejectionReasons).Msg("token vetoed by risk gate")
		observability.RecordRiskVeto(profile.RejectionReasons)
		observability.RecordEvaluation(domain.MethodRiskVeto, string(track), time.Since(start).Seconds(), 0, false)
		return vetoResult(address, track, profile), nil
	}

	descriptors := o.registry.ModulesForTrack(track)
	if len(descriptors) == 0 {
		if o.fallback == nil {
			return nil, fmt.Errorf("no modules applicable to track %s and no fallback configured", track)
		}
		logger.Warn().Msg("no applicable modules, delegating to fallback calculator")
		result, err := o.fallback.Calculate(ctx, address, price, ageMinutes)
		if err != nil {
			return nil, fmt.Errorf("fallback calculation: %w", err)
		}
		result.Method = domain.MethodFallback
		return result, nil
	}

	ec := &registry.EvaluationContext{
		TokenAddress: address,
		Track:        track,
		AgeMinutes:   ageMinutes,
		Price:        price,
		Volume24h:    profile.Volume24h,
		Provider:     o.provider,
		Cache:        o.cache,
		Logger:       logger,
	}

	outcomes, stats := o.exec.run(ctx, descriptors, ec)

	result := o.combiner.Combine(address, track, ageMinutes, profile, outcomes)
	result.Reasons = profile.Warnings
	result.EvaluatedAt = time.Now().UnixMilli()
	result.ModuleStats = stats

	observability.RecordEvaluation(result.Method, string(track), time.Since(start).Seconds(), result.FinalScore, result.IsQualified)
	logger.Info().
		Float64("score", result.FinalScore).
		Bool("qualified", result.IsQualified).
		Str("primary", result.PrimarySignal).
		Msg("evaluation complete")
	return result, nil
}

// vetoResult builds the zero-score result returned when the risk gate
// rejects a token. No signal modules run.
func vetoResult(address string, track domain.Track, profile *domain.RiskProfile) *domain.EvaluationResult {
	return &domain.EvaluationResult{
		TokenAddress: address,
		FinalScore:   0,
		Confidence:   0,
		Track:        track,
		IsQualified:  false,
		Outcomes:     map[string]*domain.SignalOutcome{},
		RiskScore:    1,
		Reasons:      profile.RejectionReasons,
		EvaluatedAt:  time.Now().UnixMilli(),
		Method:       domain.MethodRiskVeto,
	}
}
