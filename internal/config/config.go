// Package config holds the tunable constants of the qualification engine.
// Values ship with defaults matching production calibration and can be
// overridden from a YAML file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// VolumeTier maps a normalized volume floor to a score multiplier.
type VolumeTier struct {
	MinVolume  float64 `yaml:"min_volume"`
	Multiplier float64 `yaml:"multiplier"`
}

// AgeTier maps a token age ceiling (minutes) to a score multiplier.
type AgeTier struct {
	MaxAgeMinutes float64 `yaml:"max_age_minutes"`
	Multiplier    float64 `yaml:"multiplier"`
}

// ReturnTier maps a score floor to an expected-return estimate.
type ReturnTier struct {
	MinScore       float64 `yaml:"min_score"`
	ExpectedReturn float64 `yaml:"expected_return"`
}

// ModuleConfig holds registration parameters for one default signal module.
type ModuleConfig struct {
	Name     string  `yaml:"name"`
	Weight   float64 `yaml:"weight"`
	Priority int     `yaml:"priority"`
}

// Scoring holds the score-combination constants.
type Scoring struct {
	// Volume tiers checked top-down, first floor that fits wins.
	VolumeTiers []VolumeTier `yaml:"volume_tiers"`
	// Fallback multiplier when volume is below every tier floor.
	VolumeFloorMultiplier float64 `yaml:"volume_floor_multiplier"`
	// Age bonus tiers checked top-down against max_age_minutes.
	AgeTiers []AgeTier `yaml:"age_tiers"`
	// Multiplier for ages past the last tier.
	AgeFloorMultiplier float64 `yaml:"age_floor_multiplier"`

	ScoreCap            float64 `yaml:"score_cap"`
	FastTrackThreshold  float64 `yaml:"fast_track_threshold"`
	SlowTrackThreshold  float64 `yaml:"slow_track_threshold"`
	DetectionPathCutoff float64 `yaml:"detection_path_cutoff"`

	ReturnTiers       []ReturnTier `yaml:"return_tiers"`
	ReturnFloor       float64      `yaml:"return_floor"`
	KellyAvgLoss      float64      `yaml:"kelly_avg_loss"`
	KellyMaxFraction  float64      `yaml:"kelly_max_fraction"`

	// Risk-score additive penalties.
	FastTrackPenalty     float64 `yaml:"fast_track_penalty"`
	ThinLiquidityUSD     float64 `yaml:"thin_liquidity_usd"`
	ThinLiquidityPenalty float64 `yaml:"thin_liquidity_penalty"`
	TopHolderMaxPct      float64 `yaml:"top_holder_max_pct"`
	TopHolderPenalty     float64 `yaml:"top_holder_penalty"`
	MintEnabledPenalty   float64 `yaml:"mint_enabled_penalty"`
}

// Risk holds risk-gate estimation tunables.
type Risk struct {
	SignatureLimit        int           `yaml:"signature_limit"`
	SignatureFetchTimeout time.Duration `yaml:"signature_fetch_timeout"`
	SignatureRetries      int           `yaml:"signature_retries"`
	RetryStep             time.Duration `yaml:"retry_step"`
	TxFetchTimeout        time.Duration `yaml:"tx_fetch_timeout"`

	VolumeWindowSeconds int64   `yaml:"volume_window_seconds"`
	VolumeSampleLimit   int     `yaml:"volume_sample_limit"`
	VolumeClampMin      float64 `yaml:"volume_clamp_min"`
	VolumeClampMax      float64 `yaml:"volume_clamp_max"`
	// Fallback volume when no transaction could be analyzed:
	// max(MinVolumeFallback, recentCount * VolumePerSignature).
	MinVolumeFallback  float64 `yaml:"min_volume_fallback"`
	VolumePerSignature float64 `yaml:"volume_per_signature"`

	SOLPriceUSD         float64 `yaml:"sol_price_usd"`
	SupplyActivityRatio float64 `yaml:"supply_activity_ratio"`

	ConcentrationMin float64 `yaml:"concentration_min"`
	ConcentrationMax float64 `yaml:"concentration_max"`

	TxCountSampleLimit   int     `yaml:"tx_count_sample_limit"`
	TxCountFallbackRatio float64 `yaml:"tx_count_fallback_ratio"`

	// FailOpenPenalty is applied when the whole gate fails unexpectedly.
	FailOpenPenalty float64 `yaml:"fail_open_penalty"`
}

// Cache holds liquidity-event cache tunables.
type Cache struct {
	TTL           time.Duration `yaml:"ttl"`
	WriteThrottle time.Duration `yaml:"write_throttle"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// Lifecycle holds classification lifecycle tunables.
type Lifecycle struct {
	SuppressionDefault time.Duration `yaml:"suppression_default"`
	RejectedRetention  time.Duration `yaml:"rejected_retention"`
	ReevaluationLimit  int           `yaml:"reevaluation_limit"`
}

// Execution holds the module execution timeouts.
type Execution struct {
	ModuleTimeout time.Duration `yaml:"module_timeout"`
	GroupTimeout  time.Duration `yaml:"group_timeout"`
}

// Config is the full tunable set for the engine.
type Config struct {
	Modules   []ModuleConfig `yaml:"modules"`
	Scoring   Scoring        `yaml:"scoring"`
	Risk      Risk           `yaml:"risk"`
	Cache     Cache          `yaml:"cache"`
	Lifecycle Lifecycle      `yaml:"lifecycle"`
	Execution Execution      `yaml:"execution"`
}

// Default returns the production-calibrated configuration.
func Default() *Config {
	return &Config{
		Modules: []ModuleConfig{
			{Name: "smart-wallet", Weight: 0.6, Priority: 100},
			{Name: "liquidity-pool", Weight: 0.25, Priority: 90},
			{Name: "holder-velocity", Weight: 0.1, Priority: 80},
			{Name: "transaction-pattern", Weight: 0.05, Priority: 70},
			{Name: "deep-holder", Weight: 0.15, Priority: 60},
			{Name: "social", Weight: 0.1, Priority: 50},
			{Name: "technical-pattern", Weight: 0.1, Priority: 40},
			{Name: "market-context", Weight: 0.05, Priority: 30},
		},
		Scoring: Scoring{
			VolumeTiers: []VolumeTier{
				{MinVolume: 100000, Multiplier: 3.0},
				{MinVolume: 50000, Multiplier: 2.5},
				{MinVolume: 20000, Multiplier: 2.0},
				{MinVolume: 10000, Multiplier: 1.5},
				{MinVolume: 5000, Multiplier: 1.2},
				{MinVolume: 2000, Multiplier: 1.0},
				{MinVolume: 1000, Multiplier: 0.8},
				{MinVolume: 500, Multiplier: 0.6},
			},
			VolumeFloorMultiplier: 0.3,
			AgeTiers: []AgeTier{
				{MaxAgeMinutes: 2, Multiplier: 1.3},
				{MaxAgeMinutes: 5, Multiplier: 1.2},
				{MaxAgeMinutes: 10, Multiplier: 1.1},
				{MaxAgeMinutes: 30, Multiplier: 1.0},
				{MaxAgeMinutes: 60, Multiplier: 0.95},
			},
			AgeFloorMultiplier:  0.9,
			ScoreCap:            0.95,
			FastTrackThreshold:  0.75,
			SlowTrackThreshold:  0.70,
			DetectionPathCutoff: 50,
			ReturnTiers: []ReturnTier{
				{MinScore: 0.8, ExpectedReturn: 5.2},
				{MinScore: 0.75, ExpectedReturn: 4.5},
				{MinScore: 0.7, ExpectedReturn: 4.0},
				{MinScore: 0.65, ExpectedReturn: 3.2},
			},
			ReturnFloor:          2.0,
			KellyAvgLoss:         0.8,
			KellyMaxFraction:     0.25,
			FastTrackPenalty:     0.1,
			ThinLiquidityUSD:     5000,
			ThinLiquidityPenalty: 0.15,
			TopHolderMaxPct:      50,
			TopHolderPenalty:     0.2,
			MintEnabledPenalty:   0.1,
		},
		Risk: Risk{
			SignatureLimit:        100,
			SignatureFetchTimeout: 30 * time.Second,
			SignatureRetries:      2,
			RetryStep:             2 * time.Second,
			TxFetchTimeout:        5 * time.Second,
			VolumeWindowSeconds:   86400,
			VolumeSampleLimit:     20,
			VolumeClampMin:        100,
			VolumeClampMax:        10_000_000,
			MinVolumeFallback:     500,
			VolumePerSignature:    50,
			SOLPriceUSD:           150,
			SupplyActivityRatio:   0.001,
			ConcentrationMin:      5,
			ConcentrationMax:      95,
			TxCountSampleLimit:    10,
			TxCountFallbackRatio:  0.3,
			FailOpenPenalty:       0.1,
		},
		Cache: Cache{
			TTL:           15 * time.Minute,
			WriteThrottle: 2 * time.Second,
			SweepInterval: 5 * time.Minute,
		},
		Lifecycle: Lifecycle{
			SuppressionDefault: 24 * time.Hour,
			RejectedRetention:  7 * 24 * time.Hour,
			ReevaluationLimit:  100,
		},
		Execution: Execution{
			ModuleTimeout: 60 * time.Second,
			GroupTimeout:  300 * time.Second,
		},
	}
}

// Load reads a YAML config file and overlays it on the defaults.
// Missing keys keep their default values.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks structural invariants of a loaded config.
func (c *Config) Validate() error {
	for _, m := range c.Modules {
		if m.Name == "" {
			return fmt.Errorf("module with empty name")
		}
		if m.Weight < 0 {
			return fmt.Errorf("module %s: negative weight %f", m.Name, m.Weight)
		}
	}
	if c.Scoring.ScoreCap <= 0 || c.Scoring.ScoreCap > 1 {
		return fmt.Errorf("score cap %f out of (0, 1]", c.Scoring.ScoreCap)
	}
	if c.Scoring.KellyMaxFraction <= 0 || c.Scoring.KellyMaxFraction > 1 {
		return fmt.Errorf("kelly max fraction %f out of (0, 1]", c.Scoring.KellyMaxFraction)
	}
	if c.Cache.TTL <= 0 || c.Cache.WriteThrottle < 0 {
		return fmt.Errorf("invalid cache timing")
	}
	return nil
}
