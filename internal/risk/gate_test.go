package risk

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"solana-token-qualifier/internal/config"
	"solana-token-qualifier/internal/domain"
	"solana-token-qualifier/internal/liquidity"
	"solana-token-qualifier/internal/solana"
	"solana-token-qualifier/internal/solana/stub"
)

func testRiskConfig() config.Risk {
	cfg := config.Default().Risk
	cfg.SignatureFetchTimeout = 100 * time.Millisecond
	cfg.TxFetchTimeout = 100 * time.Millisecond
	cfg.RetryStep = time.Millisecond
	return cfg
}

func newTestGate(client *stub.RPCClient, cache *liquidity.Cache, now time.Time) *Gate {
	gate := NewGate(client, NewThresholdPolicy(DefaultThresholdPolicyConfig()), cache, testRiskConfig(), zerolog.Nop())
	return gate.WithClock(func() time.Time { return now })
}

func blockTime(t int64) *int64 { return &t }

// transferTx builds a transaction whose largest balance delta is the given
// lamport amount.
func transferTx(lamports uint64) *solana.Transaction {
	return &solana.Transaction{
		Meta: &solana.TransactionMeta{
			PreBalances:  []uint64{5_000_000_000, 1_000_000_000},
			PostBalances: []uint64{5_000_000_000 - lamports, 1_000_000_000 + lamports},
		},
	}
}

func TestAssessFailsOpenOnProviderOutage(t *testing.T) {
	client := stub.NewRPCClient()
	client.FailSignatures = true
	client.FailTransactions = true
	client.FailProgramAccounts = true
	client.FailAccounts = true
	client.FailLargestAccounts = true
	client.FailSupplies = true

	gate := newTestGate(client, nil, time.Now())
	profile := gate.Assess(context.Background(), "DarkToken", 0.001, 5)

	// Every estimator falls back to a heuristic; only policy rejects.
	if profile.LiquidityUSD <= 0 {
		t.Errorf("liquidity fallback missing, got %f", profile.LiquidityUSD)
	}
	if !profile.LiquidityEstimated {
		t.Error("hash-seeded liquidity must be flagged as estimated")
	}
	if profile.HolderConcentration < fallbackConcentrationMin || profile.HolderConcentration > fallbackConcentrationMax {
		t.Errorf("concentration fallback %f outside seeded range", profile.HolderConcentration)
	}
	if profile.Volume24h <= 0 {
		t.Errorf("volume fallback missing, got %f", profile.Volume24h)
	}
}

func TestAssessIsDeterministicOnFallbacks(t *testing.T) {
	client := stub.NewRPCClient()
	client.FailSignatures = true
	now := time.Now()

	first := newTestGate(client, nil, now).Assess(context.Background(), "SeedToken", 0.001, 5)
	second := newTestGate(stub.NewRPCClient(), nil, now).Assess(context.Background(), "SeedToken", 0.001, 5)

	if first.LiquidityUSD != second.LiquidityUSD {
		t.Errorf("liquidity differs across runs: %f vs %f", first.LiquidityUSD, second.LiquidityUSD)
	}
	if first.HolderConcentration != second.HolderConcentration {
		t.Errorf("concentration differs across runs: %f vs %f", first.HolderConcentration, second.HolderConcentration)
	}
}

func TestFetchSignaturesRetries(t *testing.T) {
	client := stub.NewRPCClient()
	client.FailSignatures = true
	gate := newTestGate(client, nil, time.Now())

	sigs := gate.fetchSignatures(context.Background(), "AnyToken")
	if sigs != nil {
		t.Errorf("exhausted fetch should return nil, got %v", sigs)
	}
	want := 1 + gate.cfg.SignatureRetries
	if client.SignatureCalls != want {
		t.Errorf("SignatureCalls = %d, want %d", client.SignatureCalls, want)
	}
}

func TestEstimateVolumeFromSampledTransfers(t *testing.T) {
	now := time.Unix(1_750_000_000, 0)
	client := stub.NewRPCClient()
	client.Signatures["HotToken"] = []solana.SignatureInfo{
		{Signature: "sig1", BlockTime: blockTime(now.Unix() - 60)},
		{Signature: "sig2", BlockTime: blockTime(now.Unix() - 120)},
		{Signature: "ancient", BlockTime: blockTime(now.Unix() - 200_000)},
	}
	client.Transactions["sig1"] = transferTx(2_000_000_000) // 2 SOL
	client.Transactions["sig2"] = transferTx(4_000_000_000) // 4 SOL

	gate := newTestGate(client, nil, now)
	sigs := gate.fetchSignatures(context.Background(), "HotToken")
	volume := gate.estimateVolume(context.Background(), "HotToken", sigs)

	// avg 3 SOL * $150 * 2 recent signatures; the ancient one is outside
	// the 24h window.
	want := 3.0 * 150 * 2
	if volume != want {
		t.Errorf("volume = %f, want %f", volume, want)
	}
}

func TestEstimateVolumeFallbackPerSignature(t *testing.T) {
	now := time.Unix(1_750_000_000, 0)
	client := stub.NewRPCClient()
	client.FailTransactions = true
	sigs := make([]solana.SignatureInfo, 30)
	for i := range sigs {
		sigs[i] = solana.SignatureInfo{Signature: "s", BlockTime: blockTime(now.Unix() - 60)}
	}

	gate := newTestGate(client, nil, now)
	volume := gate.estimateVolume(context.Background(), "QuietToken", sigs)

	want := 30.0 * gate.cfg.VolumePerSignature
	if volume != want {
		t.Errorf("volume = %f, want %f", volume, want)
	}
}

// Signatures outside the 24h window are not volume evidence; a token whose
// entire history is stale gets the bare minimum, not a per-signature credit.
func TestEstimateVolumeIgnoresStaleSignatures(t *testing.T) {
	now := time.Unix(1_750_000_000, 0)
	client := stub.NewRPCClient()
	sigs := make([]solana.SignatureInfo, 100)
	for i := range sigs {
		sigs[i] = solana.SignatureInfo{Signature: "s", BlockTime: blockTime(now.Unix() - 100_000)}
	}

	gate := newTestGate(client, nil, now)
	volume := gate.estimateVolume(context.Background(), "StaleToken", sigs)
	if volume != gate.cfg.MinVolumeFallback {
		t.Errorf("volume = %f, want floor %f", volume, gate.cfg.MinVolumeFallback)
	}
}

func TestEstimateVolumeMinimumFloor(t *testing.T) {
	gate := newTestGate(stub.NewRPCClient(), nil, time.Now())
	volume := gate.estimateVolume(context.Background(), "DeadToken", nil)
	if volume != gate.cfg.MinVolumeFallback {
		t.Errorf("volume = %f, want floor %f", volume, gate.cfg.MinVolumeFallback)
	}
}

func TestEstimateLiquidityPrefersCache(t *testing.T) {
	cacheCfg := config.Default().Cache
	cache := liquidity.NewCache(cacheCfg, zerolog.Nop())
	cache.Store(domain.LiquidityEvent{
		TokenAddress: "PooledToken",
		DEX:          "raydium",
		PoolValueUSD: 42000,
		Timestamp:    time.Now().Unix(),
	})

	client := stub.NewRPCClient()
	client.FailProgramAccounts = true
	client.FailSupplies = true

	gate := newTestGate(client, cache, time.Now())
	value, estimated := gate.estimateLiquidity(context.Background(), "PooledToken", 0.001)
	if estimated {
		t.Error("cached pool value is authoritative")
	}
	if value != 42000 {
		t.Errorf("liquidity = %f, want 42000", value)
	}
}

func TestEstimateLiquidityFromSupply(t *testing.T) {
	client := stub.NewRPCClient()
	client.Supplies["SupplyToken"] = &solana.TokenSupply{Amount: 1_000_000_000}

	gate := newTestGate(client, nil, time.Now())
	value, estimated := gate.estimateLiquidity(context.Background(), "SupplyToken", 0.002)
	if estimated {
		t.Error("supply-based estimate is not the hash fallback")
	}
	want := 1_000_000_000 * gate.cfg.SupplyActivityRatio * 0.002
	if value != want {
		t.Errorf("liquidity = %f, want %f", value, want)
	}
}

func TestEstimateHolderConcentration(t *testing.T) {
	client := stub.NewRPCClient()
	client.LargestAccounts["ConcToken"] = []solana.TokenAccountBalance{
		{Amount: 400}, {Amount: 100}, {Amount: 100}, {Amount: 50},
	}
	client.Supplies["ConcToken"] = &solana.TokenSupply{Amount: 1000}

	gate := newTestGate(client, nil, time.Now())
	got := gate.estimateHolderConcentration(context.Background(), "ConcToken")

	// 0.7 * top(40%) + 0.3 * top3(60%)
	want := 0.7*40 + 0.3*60
	if got != want {
		t.Errorf("concentration = %f, want %f", got, want)
	}
}

func TestEstimateRealTxCountExtrapolates(t *testing.T) {
	client := stub.NewRPCClient()
	sigs := make([]solana.SignatureInfo, 20)
	for i := range sigs {
		sigs[i] = solana.SignatureInfo{Signature: sigName(i)}
	}
	// Half the sampled transactions carry a genuine transfer.
	for i := 0; i < 10; i += 2 {
		client.Transactions[sigName(i)] = transferTx(1_000_000)
	}

	gate := newTestGate(client, nil, time.Now())
	got := gate.estimateRealTxCount(context.Background(), sigs)

	// 5 hits out of 10 sampled, extrapolated over 20 signatures.
	if got != 10 {
		t.Errorf("tx count = %d, want 10", got)
	}
}

func sigName(i int) string {
	return "sig" + string(rune('A'+i))
}
