package lifecycle

import (
	"testing"

	"solana-token-qualifier/internal/domain"
)

func TestApplyReclassificationLogic(t *testing.T) {
	tests := []struct {
		name         string
		status       domain.Status
		rc           domain.ReclassificationContext
		wantStatus   domain.Status
		wantRule     string
		wantSuppress bool
		wantNoMatch  bool
	}{
		{
			name:   "late blooming via smart wallet",
			status: domain.StatusUnqualified,
			rc: domain.ReclassificationContext{
				AgeMinutes:          20,
				SmartWalletActivity: true,
			},
			wantStatus: domain.StatusFresh,
			wantRule:   "late_blooming",
		},
		{
			name:   "late blooming via volume spike",
			status: domain.StatusUnqualified,
			rc: domain.ReclassificationContext{
				AgeMinutes:  30,
				VolumeSpike: true,
			},
			wantStatus: domain.StatusFresh,
			wantRule:   "late_blooming",
		},
		{
			name:   "maturing within first day",
			status: domain.StatusUnqualified,
			rc: domain.ReclassificationContext{
				AgeMinutes:   200,
				HolderGrowth: true,
			},
			wantStatus: domain.StatusEstablished,
			wantRule:   "maturing",
		},
		{
			name:   "delayed hot from dormant",
			status: domain.StatusDormant,
			rc: domain.ReclassificationContext{
				AgeMinutes:   2000,
				PatternSpike: true,
			},
			wantStatus: domain.StatusWatchlist,
			wantRule:   "delayed_hot",
		},
		{
			name:   "delayed hot does not fire for watchlist status",
			status: domain.StatusWatchlist,
			rc: domain.ReclassificationContext{
				AgeMinutes:   2000,
				PatternSpike: true,
			},
			wantNoMatch: true,
		},
		{
			name:   "early scam rejected with suppression",
			status: domain.StatusFresh,
			rc: domain.ReclassificationContext{
				AgeMinutes:  5,
				RugDetected: true,
			},
			wantStatus:   domain.StatusRejected,
			wantRule:     "early_scam",
			wantSuppress: true,
		},
		{
			name:   "reborn on any status",
			status: domain.StatusEstablished,
			rc: domain.ReclassificationContext{
				AgeMinutes: 500,
				MintReused: true,
			},
			wantStatus: domain.StatusWatchlist,
			wantRule:   "reborn",
		},
		{
			name:   "edge plateau",
			status: domain.StatusFresh,
			rc: domain.ReclassificationContext{
				AgeMinutes: 90,
				EdgeScore:  55,
			},
			wantStatus: domain.StatusDormant,
			wantRule:   "edge_plateau",
		},
		{
			name:   "edge plateau blocked by volume spike",
			status: domain.StatusFresh,
			rc: domain.ReclassificationContext{
				AgeMinutes:  90,
				EdgeScore:   55,
				VolumeSpike: true,
			},
			wantNoMatch: true,
		},
		{
			name:   "echo rejected with suppression",
			status: domain.StatusWatchlist,
			rc: domain.ReclassificationContext{
				AgeMinutes:         90,
				EdgeScore:          80,
				SimilarTokenExists: true,
			},
			wantStatus:   domain.StatusRejected,
			wantRule:     "echo",
			wantSuppress: true,
		},
		{
			name:   "sidecar",
			status: domain.StatusUnqualified,
			rc: domain.ReclassificationContext{
				AgeMinutes:      5000,
				PairedWithKnown: true,
			},
			wantStatus: domain.StatusWatchlist,
			wantRule:   "sidecar",
		},
		{
			name:   "reversal",
			status: domain.StatusRejected,
			rc: domain.ReclassificationContext{
				AgeMinutes:           3000,
				SmartWalletDumpRatio: 0.2,
				VolumeSpike:          true,
			},
			wantStatus: domain.StatusWatchlist,
			wantRule:   "reversal",
		},
		{
			name:   "no rule matches",
			status: domain.StatusEstablished,
			rc: domain.ReclassificationContext{
				AgeMinutes:           500,
				EdgeScore:            80,
				SmartWalletDumpRatio: 0.9,
			},
			wantNoMatch: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ApplyReclassificationLogic(tt.status, &tt.rc)
			if tt.wantNoMatch {
				if result != nil {
					t.Fatalf("expected no match, got rule %s", result.Flags.Rule)
				}
				return
			}
			if result == nil {
				t.Fatal("expected a rule to match")
			}
			if result.NewStatus != tt.wantStatus {
				t.Errorf("status = %s, want %s", result.NewStatus, tt.wantStatus)
			}
			if result.Flags.Rule != tt.wantRule {
				t.Errorf("rule = %s, want %s", result.Flags.Rule, tt.wantRule)
			}
			if result.SuppressAlerts != tt.wantSuppress {
				t.Errorf("suppress = %v, want %v", result.SuppressAlerts, tt.wantSuppress)
			}
			if result.Reason == "" {
				t.Error("matched rule must carry a reason")
			}
		})
	}
}

// A context matching both the late-blooming rule and the reborn rule must
// resolve to the earlier rule: first match wins.
func TestReclassificationRulePriority(t *testing.T) {
	rc := &domain.ReclassificationContext{
		AgeMinutes:          10,
		SmartWalletActivity: true,
		MintReused:          true,
	}

	result := ApplyReclassificationLogic(domain.StatusUnqualified, rc)
	if result == nil {
		t.Fatal("expected a rule to match")
	}
	if result.NewStatus != domain.StatusFresh {
		t.Errorf("status = %s, want %s (first rule wins)", result.NewStatus, domain.StatusFresh)
	}
	if result.Flags.Rule != "late_blooming" {
		t.Errorf("rule = %s, want late_blooming", result.Flags.Rule)
	}
}
