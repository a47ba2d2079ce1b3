package risk

import (
	"strings"
	"testing"

	"solana-token-qualifier/internal/domain"
)

func TestThresholdPolicyHardVetoes(t *testing.T) {
	policy := NewThresholdPolicy(DefaultThresholdPolicyConfig())

	tests := []struct {
		name        string
		profile     domain.RiskProfile
		wantPassed  bool
		wantReasons int
	}{
		{
			name: "all clear",
			profile: domain.RiskProfile{
				LiquidityUSD:        10000,
				TxCountEstimate:     20,
				HolderConcentration: 30,
				MetadataVerified:    true,
			},
			wantPassed: true,
		},
		{
			name: "thin liquidity vetoed",
			profile: domain.RiskProfile{
				LiquidityUSD:        200,
				TxCountEstimate:     20,
				HolderConcentration: 30,
			},
			wantPassed:  false,
			wantReasons: 1,
		},
		{
			name: "too few transactions vetoed",
			profile: domain.RiskProfile{
				LiquidityUSD:        10000,
				TxCountEstimate:     1,
				HolderConcentration: 30,
			},
			wantPassed:  false,
			wantReasons: 1,
		},
		{
			name: "concentrated holders vetoed",
			profile: domain.RiskProfile{
				LiquidityUSD:        10000,
				TxCountEstimate:     20,
				HolderConcentration: 95,
			},
			wantPassed:  false,
			wantReasons: 1,
		},
		{
			name:        "everything wrong accumulates all reasons",
			profile:     domain.RiskProfile{HolderConcentration: 99},
			wantPassed:  false,
			wantReasons: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := policy.Evaluate(&tt.profile)
			if d.Passed != tt.wantPassed {
				t.Errorf("Passed = %v, want %v (reasons: %v)", d.Passed, tt.wantPassed, d.RejectionReasons)
			}
			if len(d.RejectionReasons) != tt.wantReasons {
				t.Errorf("got %d reasons %v, want %d", len(d.RejectionReasons), d.RejectionReasons, tt.wantReasons)
			}
		})
	}
}

func TestThresholdPolicyRejectionOrder(t *testing.T) {
	policy := NewThresholdPolicy(DefaultThresholdPolicyConfig())
	d := policy.Evaluate(&domain.RiskProfile{HolderConcentration: 99})
	if len(d.RejectionReasons) != 3 {
		t.Fatalf("got %d reasons, want 3", len(d.RejectionReasons))
	}
	if !strings.Contains(d.RejectionReasons[0], "liquidity") {
		t.Errorf("first reason should be liquidity, got %q", d.RejectionReasons[0])
	}
	if !strings.Contains(d.RejectionReasons[2], "concentration") {
		t.Errorf("last reason should be concentration, got %q", d.RejectionReasons[2])
	}
}

func TestThresholdPolicySoftPenalties(t *testing.T) {
	policy := NewThresholdPolicy(DefaultThresholdPolicyConfig())

	// Passes the hard cutoffs but trips every soft concern.
	d := policy.Evaluate(&domain.RiskProfile{
		LiquidityUSD:        1000,
		TxCountEstimate:     10,
		HolderConcentration: 70,
		LiquidityEstimated:  true,
		MetadataVerified:    false,
	})
	if !d.Passed {
		t.Fatalf("profile should pass, reasons: %v", d.RejectionReasons)
	}
	if len(d.Warnings) != 4 {
		t.Errorf("got %d warnings %v, want 4", len(d.Warnings), d.Warnings)
	}
	want := 0.05 * 3 // unverified metadata warns without a penalty
	if d.ConfidencePenalty < want-1e-9 || d.ConfidencePenalty > want+1e-9 {
		t.Errorf("ConfidencePenalty = %f, want %f", d.ConfidencePenalty, want)
	}
}

func TestThresholdPolicyNoPenaltyWhenHealthy(t *testing.T) {
	policy := NewThresholdPolicy(DefaultThresholdPolicyConfig())
	d := policy.Evaluate(&domain.RiskProfile{
		LiquidityUSD:        50000,
		TxCountEstimate:     100,
		HolderConcentration: 20,
		MetadataVerified:    true,
	})
	if !d.Passed || d.ConfidencePenalty != 0 || len(d.Warnings) != 0 {
		t.Errorf("healthy profile should be clean: %+v", d)
	}
}

func TestHashSeededValue(t *testing.T) {
	a := hashSeededValue("TokenOne", 10, 50)
	b := hashSeededValue("TokenOne", 10, 50)
	if a != b {
		t.Errorf("same address must seed the same value: %f vs %f", a, b)
	}
	if a < 10 || a > 50 {
		t.Errorf("value %f outside [10, 50]", a)
	}
	c := hashSeededValue("TokenTwo", 10, 50)
	if a == c {
		t.Error("different addresses should almost surely differ")
	}
}
