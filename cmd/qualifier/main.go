// Package main runs the token qualification service: a liquidity feed that
// caches pool creations, an evaluation pipeline for newly discovered tokens
// and a lifecycle loop that reevaluates and reclassifies stored tokens.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"solana-token-qualifier/internal/config"
	"solana-token-qualifier/internal/discovery"
	"solana-token-qualifier/internal/domain"
	"solana-token-qualifier/internal/evaluator"
	"solana-token-qualifier/internal/lifecycle"
	"solana-token-qualifier/internal/liquidity"
	"solana-token-qualifier/internal/observability"
	"solana-token-qualifier/internal/risk"
	"solana-token-qualifier/internal/solana"
	"solana-token-qualifier/internal/storage"
	"solana-token-qualifier/internal/storage/memory"
	"solana-token-qualifier/internal/storage/migrations"
	pgstore "solana-token-qualifier/internal/storage/postgres"
)

// DEX program aliases mapped to program IDs.
var dexAliases = map[string]string{
	"raydium": discovery.RaydiumAMMV4,
	"pumpfun": discovery.PumpFun,
}

func main() {
	loadEnvFile()

	rpcEndpoint := flag.String("rpc-endpoint", os.Getenv("SOLANA_RPC_ENDPOINT"), "Solana RPC HTTP endpoint")
	wsEndpoint := flag.String("ws-endpoint", os.Getenv("SOLANA_WS_ENDPOINT"), "Solana WebSocket endpoint")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL")
	configPath := flag.String("config", os.Getenv("QUALIFIER_CONFIG"), "Path to YAML config (optional)")
	programs := flag.String("programs", "", "Comma-separated DEX program IDs to monitor")
	dex := flag.String("dex", "raydium,pumpfun", "Comma-separated DEX aliases (raydium, pumpfun)")
	reevalInterval := flag.Duration("reeval-interval", 10*time.Minute, "Reevaluation loop interval")
	reevalWindow := flag.Duration("reeval-window", 30*time.Minute, "Reevaluate tokens not visited within this window")
	retentionInterval := flag.Duration("retention-interval", 6*time.Hour, "Rejected-record purge interval")
	metricsAddr := flag.String("metrics-addr", ":9090", "Prometheus metrics HTTP address")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	logger := newLogger(*logLevel)

	if *rpcEndpoint == "" {
		logger.Fatal().Msg("--rpc-endpoint is required")
	}
	if *wsEndpoint == "" {
		logger.Fatal().Msg("--ws-endpoint is required")
	}
	if !*useMemory && *postgresDSN == "" {
		logger.Fatal().Msg("--postgres-dsn is required (use --use-memory for in-memory storage)")
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			logger.Fatal().Err(err).Str("path", *configPath).Msg("failed to load config")
		}
	}

	programList := resolvePrograms(*programs, *dex)
	if len(programList) == 0 {
		logger.Fatal().Msg("no DEX programs specified, use --programs or --dex")
	}
	logger.Info().Strs("programs", programList).Msg("monitoring DEX programs")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, cleanup, err := createStore(ctx, *postgresDSN, *useMemory, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create store")
	}
	defer cleanup()

	server := &server{
		cfg:               cfg,
		rpcEndpoint:       *rpcEndpoint,
		wsEndpoint:        *wsEndpoint,
		programs:          programList,
		store:             store,
		reevalInterval:    *reevalInterval,
		reevalWindow:      *reevalWindow,
		retentionInterval: *retentionInterval,
		logger:            logger,
	}

	done := make(chan error, 1)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Info().Str("signal", sig.String()).Msg("initiating graceful shutdown")
		cancel()

		select {
		case sig := <-sigCh:
			logger.Warn().Str("signal", sig.String()).Msg("forcing immediate shutdown")
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Warn().Msg("graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
		}
	}()

	go startHTTPServer(*metricsAddr, logger)

	err = server.run(ctx)
	done <- err
	cancel()

	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("server error")
	}
	logger.Info().Msg("shutdown complete")
}

// server wires all components together for one process.
type server struct {
	cfg               *config.Config
	rpcEndpoint       string
	wsEndpoint        string
	programs          []string
	store             storage.ClassificationStore
	reevalInterval    time.Duration
	reevalWindow      time.Duration
	retentionInterval time.Duration
	logger            zerolog.Logger
}

func (s *server) run(ctx context.Context) error {
	rpc := solana.NewHTTPClient(s.rpcEndpoint)

	cache := liquidity.NewCache(s.cfg.Cache, s.logger)
	cache.Start()
	defer cache.Stop()

	gate := risk.NewGate(rpc, risk.NewThresholdPolicy(risk.DefaultThresholdPolicyConfig()), cache, s.cfg.Risk, s.logger)
	orch := evaluator.New(s.cfg, gate, rpc, cache, nil, s.logger)
	manager := lifecycle.NewManager(s.store, s.cfg.Lifecycle, s.logger)

	errCh := make(chan error, 3)

	go func() {
		if err := s.runLiquidityFeed(ctx, cache); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- fmt.Errorf("liquidity feed: %w", err)
		}
	}()

	go func() {
		if err := s.runEvaluationLoop(ctx, orch, manager, cache); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- fmt.Errorf("evaluation loop: %w", err)
		}
	}()

	go func() {
		if err := s.runRetentionLoop(ctx, manager); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- fmt.Errorf("retention loop: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// runLiquidityFeed subscribes to DEX program logs and feeds parsed pool
// creations into the cache. Reconnects are handled inside the WS client;
// a dead subscription channel restarts the listener.
func (s *server) runLiquidityFeed(ctx context.Context, cache *liquidity.Cache) error {
	parser := discovery.NewPoolCreationParser(s.cfg.Risk.SOLPriceUSD)

	for {
		ws, err := solana.NewWSClient(ctx, s.wsEndpoint, nil)
		if err != nil {
			s.logger.Error().Err(err).Msg("websocket connect failed, retrying")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(5 * time.Second):
				continue
			}
		}

		listener := discovery.NewListener(ws, parser, cache, s.programs, s.logger)
		err = listener.Run(ctx)
		ws.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.logger.Warn().Err(err).Msg("liquidity feed stopped, restarting")
	}
}

// runEvaluationLoop evaluates freshly cached tokens and periodically
// reevaluates stored ones.
func (s *server) runEvaluationLoop(ctx context.Context, orch *evaluator.Orchestrator, manager *lifecycle.Manager, cache *liquidity.Cache) error {
	ticker := time.NewTicker(s.reevalInterval)
	defer ticker.Stop()

	seen := make(map[string]struct{})

	poll := time.NewTicker(5 * time.Second)
	defer poll.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-poll.C:
			for _, cached := range cache.GetAll() {
				if _, ok := seen[cached.Event.TokenAddress]; ok {
					continue
				}
				seen[cached.Event.TokenAddress] = struct{}{}
				ageMinutes := time.Since(time.Unix(cached.Event.Timestamp, 0)).Minutes()
				s.evaluateAndClassify(ctx, orch, manager, cached.Event.TokenAddress, 0, ageMinutes)
			}
		case <-ticker.C:
			records, err := manager.GetTokensForReevaluation(ctx, s.reevalWindow)
			if err != nil {
				s.logger.Error().Err(err).Msg("reevaluation query failed")
				continue
			}
			for _, r := range records {
				s.reevaluate(ctx, orch, manager, r)
			}
		}
	}
}

func (s *server) evaluateAndClassify(ctx context.Context, orch *evaluator.Orchestrator, manager *lifecycle.Manager, address string, price, ageMinutes float64) {
	result, err := orch.EvaluateToken(ctx, address, price, ageMinutes)
	if err != nil {
		s.logger.Error().Err(err).Str("token", address).Msg("evaluation failed")
		return
	}
	s.classify(ctx, manager, address, result, ageMinutes)
}

// reevaluate re-scores a stored token and runs the lifecycle rules
// against the fresh evidence. The plain status upsert is the fallback
// when no rule matches.
func (s *server) reevaluate(ctx context.Context, orch *evaluator.Orchestrator, manager *lifecycle.Manager, record *domain.ClassificationRecord) {
	ageMinutes := time.Since(time.UnixMilli(record.FirstDetectedAt)).Minutes() + record.AgeMinutes
	result, err := orch.EvaluateToken(ctx, record.TokenAddress, 0, ageMinutes)
	if err != nil {
		s.logger.Error().Err(err).Str("token", record.TokenAddress).Msg("reevaluation failed")
		return
	}

	rc := lifecycle.ContextFromEvaluation(result, record, ageMinutes)
	transition, err := manager.Reclassify(ctx, record.TokenAddress, rc)
	if err != nil {
		s.logger.Error().Err(err).Str("token", record.TokenAddress).Msg("reclassification failed")
		return
	}
	if transition != nil {
		s.logger.Info().
			Str("token", record.TokenAddress).
			Str("rule", transition.Reason).
			Str("from", string(record.Status)).
			Str("to", string(transition.NewStatus)).
			Msg("token reclassified")
		return
	}

	s.classify(ctx, manager, record.TokenAddress, result, ageMinutes)
}

func (s *server) classify(ctx context.Context, manager *lifecycle.Manager, address string, result *domain.EvaluationResult, ageMinutes float64) {
	status := domain.StatusUnqualified
	switch {
	case result.Method == domain.MethodRiskVeto:
		status = domain.StatusRejected
	case result.IsQualified:
		status = domain.StatusFresh
	}

	if _, err := manager.UpdateClassification(ctx, address, lifecycle.Update{
		Status:     status,
		EdgeScore:  result.Confidence,
		AgeMinutes: ageMinutes,
	}); err != nil {
		s.logger.Error().Err(err).Str("token", address).Msg("classification update failed")
	}
}

// runRetentionLoop periodically purges long-rejected records.
func (s *server) runRetentionLoop(ctx context.Context, manager *lifecycle.Manager) error {
	ticker := time.NewTicker(s.retentionInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := manager.PurgeRejected(ctx); err != nil {
				s.logger.Error().Err(err).Msg("retention sweep failed")
			}
		}
	}
}

// createStore creates the classification store, running migrations when
// backed by PostgreSQL.
func createStore(ctx context.Context, postgresDSN string, useMemory bool, logger zerolog.Logger) (storage.ClassificationStore, func(), error) {
	if useMemory {
		return memory.NewClassificationStore(), func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info().Msg("postgres migrations applied")
	return pgstore.NewClassificationStore(pool), pool.Close, nil
}

// startHTTPServer serves health and Prometheus metrics endpoints.
func startHTTPServer(addr string, logger zerolog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", observability.Handler())

	logger.Info().Str("addr", addr).Msg("starting HTTP server")
	if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("HTTP server error")
	}
}

// resolvePrograms resolves program IDs from flags.
func resolvePrograms(programs, dex string) []string {
	result := make(map[string]bool)

	if programs != "" {
		for _, p := range strings.Split(programs, ",") {
			p = strings.TrimSpace(p)
			if p != "" {
				result[p] = true
			}
		}
	}

	if dex != "" {
		for _, alias := range strings.Split(dex, ",") {
			alias = strings.TrimSpace(strings.ToLower(alias))
			if programID, ok := dexAliases[alias]; ok {
				result[programID] = true
			}
		}
	}

	list := make([]string, 0, len(result))
	for p := range result {
		list = append(list, p)
	}
	return list
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stdout).Level(lvl).With().Timestamp().Logger()
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
