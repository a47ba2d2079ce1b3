package evaluator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"solana-token-qualifier/internal/domain"
	"solana-token-qualifier/internal/observability"
	"solana-token-qualifier/internal/registry"
)

// executor runs a selected set of signal modules concurrently under a
// per-module timeout and a group ceiling.
type executor struct {
	moduleTimeout time.Duration
	groupTimeout  time.Duration
	logger        zerolog.Logger
}

type moduleOutcome struct {
	key     string
	outcome *domain.SignalOutcome
}

// run executes all descriptors and returns outcomes keyed by normalized
// module name plus per-module stats. A module that exceeds its timeout is
// recorded as failed; when the group ceiling is hit, outstanding modules are
// abandoned and whatever completed is returned.
func (e *executor) run(ctx context.Context, descriptors []*registry.Descriptor, ec *registry.EvaluationContext) (map[string]*domain.SignalOutcome, []domain.ModuleStat) {
	groupCtx, cancel := context.WithTimeout(ctx, e.groupTimeout)
	defer cancel()

	results := make(chan moduleOutcome, len(descriptors))
	for _, d := range descriptors {
		go func(d *registry.Descriptor) {
			results <- moduleOutcome{
				key:     d.NormalizedName(),
				outcome: e.runOne(groupCtx, d, ec),
			}
		}(d)
	}

	outcomes := make(map[string]*domain.SignalOutcome, len(descriptors))
	for range descriptors {
		select {
		case r := <-results:
			// Variants share a normalized key; the first completion wins.
			if _, exists := outcomes[r.key]; !exists {
				outcomes[r.key] = r.outcome
			}
		case <-groupCtx.Done():
			e.logger.Warn().
				Int("completed", len(outcomes)).
				Int("selected", len(descriptors)).
				Msg("module group ceiling reached, abandoning outstanding modules")
			return outcomes, statsFromOutcomes(outcomes)
		}
	}
	return outcomes, statsFromOutcomes(outcomes)
}

func (e *executor) runOne(ctx context.Context, d *registry.Descriptor, ec *registry.EvaluationContext) *domain.SignalOutcome {
	modCtx, cancel := context.WithTimeout(ctx, e.moduleTimeout)
	defer cancel()

	start := time.Now()

	type execResult struct {
		result *registry.Result
		err    error
	}
	done := make(chan execResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- execResult{err: fmt.Errorf("module panic: %v", r)}
			}
		}()
		result, err := d.Module.Execute(modCtx, ec)
		done <- execResult{result: result, err: err}
	}()

	select {
	case r := <-done:
		duration := time.Since(start)
		if r.err == nil && r.result == nil {
			r.err = errors.New("module returned no result")
		}
		if r.err != nil {
			e.logger.Debug().
				Str("module", d.NormalizedName()).
				Err(r.err).
				Msg("module failed")
			observability.RecordModuleExecution(d.NormalizedName(), duration.Seconds(), false)
			return &domain.SignalOutcome{
				Success:    false,
				DurationMs: duration.Milliseconds(),
				Error:      r.err.Error(),
			}
		}
		observability.RecordModuleExecution(d.NormalizedName(), duration.Seconds(), true)
		return &domain.SignalOutcome{
			Success:    true,
			DurationMs: duration.Milliseconds(),
			Confidence: r.result.Confidence,
			Payload:    r.result.Payload,
		}
	case <-modCtx.Done():
		duration := time.Since(start)
		e.logger.Warn().
			Str("module", d.NormalizedName()).
			Dur("timeout", e.moduleTimeout).
			Msg("module timed out")
		observability.RecordModuleTimeout(d.NormalizedName())
		observability.RecordModuleExecution(d.NormalizedName(), duration.Seconds(), false)
		return &domain.SignalOutcome{
			Success:    false,
			DurationMs: duration.Milliseconds(),
			Error:      modCtx.Err().Error(),
		}
	}
}

func statsFromOutcomes(outcomes map[string]*domain.SignalOutcome) []domain.ModuleStat {
	stats := make([]domain.ModuleStat, 0, len(outcomes))
	for name, o := range outcomes {
		stats = append(stats, domain.ModuleStat{
			Name:       name,
			DurationMs: o.DurationMs,
			Success:    o.Success,
		})
	}
	return stats
}
