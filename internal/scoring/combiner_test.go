package scoring

import (
	"math"
	"testing"

	"solana-token-qualifier/internal/config"
	"solana-token-qualifier/internal/domain"
)

func newTestCombiner() *Combiner {
	cfg := config.Default()
	return NewCombiner(cfg.Scoring, cfg.Modules)
}

func outcome(confidence float64) *domain.SignalOutcome {
	return &domain.SignalOutcome{Success: true, Confidence: confidence}
}

func passingProfile() *domain.RiskProfile {
	return &domain.RiskProfile{
		Passed:       true,
		Volume24h:    50000,
		LiquidityUSD: 20000,
		MintDisabled: true,
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestCombine_WeightedBaseUsesFullDenominator(t *testing.T) {
	c := newTestCombiner()

	// Only smart-wallet reports; the other four scored categories are
	// missing but their weights still depress the base.
	outcomes := map[string]*domain.SignalOutcome{
		"smart-wallet": outcome(100),
	}
	profile := passingProfile()
	profile.ConfidencePenalty = 0

	result := c.Combine("tok", domain.TrackSlow, 20, profile, outcomes)

	// base = (1.0 * 0.6) / (0.6+0.25+0.1+0.05+0.05) = 0.6/1.05
	// volume 50000 normalized by age factor 1 -> mult 2.5; age 20 -> 1.0
	// 0.5714... * 2.5 = 1.428 -> capped at 0.95
	if !almostEqual(result.FinalScore, 0.95) {
		t.Errorf("final score = %v, want 0.95 (cap)", result.FinalScore)
	}
	if result.Confidence != result.FinalScore*100 {
		t.Errorf("confidence = %v, want %v", result.Confidence, result.FinalScore*100)
	}
}

func TestCombine_FailedModuleContributesZero(t *testing.T) {
	c := newTestCombiner()

	full := map[string]*domain.SignalOutcome{
		"smart-wallet":   outcome(80),
		"liquidity-pool": outcome(60),
	}
	withFailure := map[string]*domain.SignalOutcome{
		"smart-wallet":   outcome(80),
		"liquidity-pool": {Success: false, Confidence: 60, Error: "timeout"},
	}

	profile := passingProfile()
	profile.Volume24h = 0 // force floor multiplier to keep scores below the cap

	a := c.Combine("tok", domain.TrackSlow, 20, profile, full)
	b := c.Combine("tok", domain.TrackSlow, 20, profile, withFailure)
	if b.FinalScore >= a.FinalScore {
		t.Errorf("failed module must lower the score: %v >= %v", b.FinalScore, a.FinalScore)
	}
}

func TestCombine_SupplementarySignalsNotScored(t *testing.T) {
	c := newTestCombiner()
	profile := passingProfile()
	profile.Volume24h = 0

	base := c.Combine("tok", domain.TrackSlow, 20, profile, map[string]*domain.SignalOutcome{
		"smart-wallet": outcome(50),
	})
	withSupplementary := c.Combine("tok", domain.TrackSlow, 20, profile, map[string]*domain.SignalOutcome{
		"smart-wallet": outcome(50),
		"deep-holder":  outcome(100),
		"social":       outcome(100),
	})

	if base.FinalScore != withSupplementary.FinalScore {
		t.Errorf("supplementary categories must not change the score: %v != %v",
			base.FinalScore, withSupplementary.FinalScore)
	}
}

func TestCombine_QualificationThresholds(t *testing.T) {
	c := newTestCombiner()

	// Saturate the base so the pre-penalty score hits the 0.95 cap, then
	// use the risk penalty to land exactly on each track's threshold.
	saturated := map[string]*domain.SignalOutcome{}
	for _, cat := range directCategories {
		saturated[cat] = outcome(100)
	}

	tests := []struct {
		name    string
		track   domain.Track
		penalty float64
		want    bool
	}{
		{"fast at threshold", domain.TrackFast, 0.20, true},     // 0.95-0.20 = 0.75
		{"fast below threshold", domain.TrackFast, 0.21, false}, // 0.74
		{"slow at threshold", domain.TrackSlow, 0.25, true},     // 0.70
		{"slow below threshold", domain.TrackSlow, 0.26, false}, // 0.69
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile := passingProfile()
			profile.Volume24h = 200000
			profile.ConfidencePenalty = tt.penalty

			result := c.Combine("tok", tt.track, 20, profile, saturated)
			if result.IsQualified != tt.want {
				t.Errorf("score %v on %s: qualified = %v, want %v",
					result.FinalScore, tt.track, result.IsQualified, tt.want)
			}
		})
	}
}

func TestCombine_PenaltySubtractionFloorsAtZero(t *testing.T) {
	c := newTestCombiner()

	profile := passingProfile()
	profile.Volume24h = 0
	profile.ConfidencePenalty = 1.0

	result := c.Combine("tok", domain.TrackSlow, 20, profile, map[string]*domain.SignalOutcome{
		"smart-wallet": outcome(40),
	})
	if result.FinalScore != 0 {
		t.Errorf("score with full penalty = %v, want 0", result.FinalScore)
	}
	if result.IsQualified {
		t.Error("zero score must not qualify")
	}
}

func TestAgeNormalization(t *testing.T) {
	tests := []struct {
		age  float64
		want float64
	}{
		{0, 0.5},
		{5, 0.5},   // 5/15 = 0.33 floored at 0.5
		{7.5, 0.5}, // exactly the floor
		{9, 0.6},
		{15, 1},
		{60, 1},
	}
	for _, tt := range tests {
		if got := ageNormalization(tt.age); !almostEqual(got, tt.want) {
			t.Errorf("ageNormalization(%v) = %v, want %v", tt.age, got, tt.want)
		}
	}
}

func TestVolumeMultiplierTiers(t *testing.T) {
	c := newTestCombiner()
	tests := []struct {
		volume float64
		want   float64
	}{
		{150000, 3.0},
		{100000, 3.0},
		{50000, 2.5},
		{20000, 2.0},
		{10000, 1.5},
		{5000, 1.2},
		{2000, 1.0},
		{1000, 0.8},
		{500, 0.6},
		{499, 0.3},
		{0, 0.3},
	}
	for _, tt := range tests {
		if got := c.volumeMultiplier(tt.volume); got != tt.want {
			t.Errorf("volumeMultiplier(%v) = %v, want %v", tt.volume, got, tt.want)
		}
	}
}

func TestAgeMultiplierTiers(t *testing.T) {
	c := newTestCombiner()
	tests := []struct {
		age  float64
		want float64
	}{
		{1, 1.3},
		{2, 1.3},
		{5, 1.2},
		{10, 1.1},
		{30, 1.0},
		{60, 0.95},
		{61, 0.9},
		{1441, 0.9},
	}
	for _, tt := range tests {
		if got := c.ageMultiplier(tt.age); got != tt.want {
			t.Errorf("ageMultiplier(%v) = %v, want %v", tt.age, got, tt.want)
		}
	}
}

func TestExpectedReturnBuckets(t *testing.T) {
	c := newTestCombiner()
	tests := []struct {
		score float64
		want  float64
	}{
		{0.85, 5.2},
		{0.8, 5.2},
		{0.75, 4.5},
		{0.7, 4.0},
		{0.65, 3.2},
		{0.5, 2.0},
	}
	for _, tt := range tests {
		if got := c.expectedReturn(tt.score); got != tt.want {
			t.Errorf("expectedReturn(%v) = %v, want %v", tt.score, got, tt.want)
		}
	}
}

func TestRiskScorePenaltiesClamped(t *testing.T) {
	c := newTestCombiner()

	// Every penalty applies: fast track, thin liquidity, concentrated
	// holders, mint still enabled. 1-0.1+0.1+0.15+0.2+0.1 > 1 -> clamp.
	profile := &domain.RiskProfile{
		LiquidityUSD:        1000,
		HolderConcentration: 80,
		MintDisabled:        false,
	}
	if got := c.riskScore(0.1, domain.TrackFast, profile); got != 1 {
		t.Errorf("risk score = %v, want clamp at 1", got)
	}

	// No penalties apply on slow track with clean profile.
	clean := &domain.RiskProfile{
		LiquidityUSD:        10000,
		HolderConcentration: 20,
		MintDisabled:        true,
	}
	if got := c.riskScore(0.6, domain.TrackSlow, clean); !almostEqual(got, 0.4) {
		t.Errorf("risk score = %v, want 0.4", got)
	}
}

func TestKellyFractionClamped(t *testing.T) {
	c := newTestCombiner()

	// High score, high expected return: raw Kelly far above the cap.
	if got := c.kellyFraction(0.99, 5.2); got != 0.25 {
		t.Errorf("kelly = %v, want clamp at 0.25", got)
	}

	// Low score: raw Kelly goes negative, clamp at 0.
	if got := c.kellyFraction(0.05, 2.0); got != 0 {
		t.Errorf("kelly = %v, want 0", got)
	}

	// Mid-range passes through the formula.
	want := (0.6*4.0 - 0.4*0.8) / 4.0
	if got := c.kellyFraction(0.6, 4.0); !almostEqual(got, want) {
		t.Errorf("kelly = %v, want %v", got, want)
	}
}

func TestPrimarySignalAndDetectionPaths(t *testing.T) {
	c := newTestCombiner()
	profile := passingProfile()

	outcomes := map[string]*domain.SignalOutcome{
		"smart-wallet":      outcome(40),
		"liquidity-pool":    outcome(85),
		"holder-velocity":   outcome(51),
		"deep-holder":       outcome(70),
		"technical-pattern": {Success: false, Confidence: 99},
	}

	result := c.Combine("tok", domain.TrackSlow, 20, profile, outcomes)

	if result.PrimarySignal != "liquidity-pool" {
		t.Errorf("primary signal = %q, want liquidity-pool", result.PrimarySignal)
	}

	// Paths: confidence strictly above 50, failed outcomes excluded,
	// supplementary categories included.
	want := map[string]bool{"liquidity-pool": true, "holder-velocity": true, "deep-holder": true}
	if len(result.DetectionPaths) != len(want) {
		t.Fatalf("detection paths = %v, want %v", result.DetectionPaths, want)
	}
	for _, p := range result.DetectionPaths {
		if !want[p] {
			t.Errorf("unexpected detection path %q", p)
		}
	}
}

func TestCombine_ScoreCapAndBounds(t *testing.T) {
	c := newTestCombiner()

	profile := passingProfile()
	profile.Volume24h = 200000

	outcomes := map[string]*domain.SignalOutcome{}
	for _, cat := range directCategories {
		outcomes[cat] = outcome(100)
	}

	result := c.Combine("tok", domain.TrackFast, 1, profile, outcomes)
	if result.FinalScore != 0.95 {
		t.Errorf("final score = %v, want cap 0.95", result.FinalScore)
	}
	if !result.IsQualified {
		t.Error("capped score must still qualify on the fast track")
	}
}
