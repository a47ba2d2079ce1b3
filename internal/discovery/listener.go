package discovery

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"solana-token-qualifier/internal/liquidity"
	"solana-token-qualifier/internal/observability"
	"solana-token-qualifier/internal/solana"
)

// Listener subscribes to DEX program logs over WebSocket, parses pool
// creations and stores them into the liquidity cache.
type Listener struct {
	ws     solana.WSClient
	parser *PoolCreationParser
	cache  *liquidity.Cache
	logger zerolog.Logger

	programs []string
}

// NewListener creates a pool-creation listener.
func NewListener(ws solana.WSClient, parser *PoolCreationParser, cache *liquidity.Cache, programs []string, logger zerolog.Logger) *Listener {
	return &Listener{
		ws:       ws,
		parser:   parser,
		cache:    cache,
		programs: programs,
		logger:   logger.With().Str("component", "pool_listener").Logger(),
	}
}

// Run subscribes and processes notifications until the context is cancelled
// or the notification channel closes.
func (l *Listener) Run(ctx context.Context) error {
	ch, err := l.ws.SubscribeLogs(ctx, solana.LogsFilter{Mentions: l.programs})
	if err != nil {
		return fmt.Errorf("subscribe logs: %w", err)
	}

	l.logger.Info().Strs("programs", l.programs).Msg("listening for pool creations")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case notif, ok := <-ch:
			if !ok {
				return nil
			}
			l.handle(notif)
		}
	}
}

func (l *Listener) handle(notif solana.LogNotification) {
	if notif.Err != nil {
		return // failed transaction
	}

	event, ok := l.parser.Parse(notif.Logs, notif.Signature, time.Now().Unix(), nil)
	if !ok {
		return
	}
	observability.RecordPoolEventParsed()

	accepted := l.cache.Store(*event)
	observability.RecordCacheStore(accepted)
	if accepted {
		observability.UpdateCacheEntries(l.cache.GetStats().Entries)
		l.logger.Info().
			Str("token", event.TokenAddress).
			Str("dex", event.DEX).
			Float64("pool_usd", event.PoolValueUSD).
			Msg("pool creation cached")
	}
}
