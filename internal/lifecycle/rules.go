package lifecycle

import (
	"solana-token-qualifier/internal/domain"
)

// rule guards one reclassification transition. match runs against the
// current status and the evidence context; apply builds the result.
type rule struct {
	name  string
	match func(status domain.Status, rc *domain.ReclassificationContext) bool
	apply func(rc *domain.ReclassificationContext) *domain.ReclassificationResult
}

// rules are evaluated in order; the first match wins and the rest are
// skipped. Order is part of the contract, do not re-sort.
var rules = []rule{
	{
		name: "late_blooming",
		match: func(status domain.Status, rc *domain.ReclassificationContext) bool {
			return rc.AgeMinutes <= 30 && status == domain.StatusUnqualified &&
				(rc.SmartWalletActivity || rc.VolumeSpike)
		},
		apply: func(rc *domain.ReclassificationContext) *domain.ReclassificationResult {
			return &domain.ReclassificationResult{
				NewStatus: domain.StatusFresh,
				Reason:    "late blooming: early activity on a previously unqualified token",
				Flags: domain.ReclassificationFlags{
					Rule:                "late_blooming",
					SmartWalletActivity: rc.SmartWalletActivity,
					VolumeSpike:         rc.VolumeSpike,
				},
			}
		},
	},
	{
		name: "maturing",
		match: func(status domain.Status, rc *domain.ReclassificationContext) bool {
			return rc.AgeMinutes > 30 && rc.AgeMinutes <= 1440 && status == domain.StatusUnqualified &&
				(rc.VolumeSpike || rc.MetadataChanged || rc.HolderGrowth)
		},
		apply: func(rc *domain.ReclassificationContext) *domain.ReclassificationResult {
			return &domain.ReclassificationResult{
				NewStatus: domain.StatusEstablished,
				Reason:    "sustained activity within the first day",
				Flags: domain.ReclassificationFlags{
					Rule:            "maturing",
					VolumeSpike:     rc.VolumeSpike,
					MetadataChanged: rc.MetadataChanged,
					HolderGrowth:    rc.HolderGrowth,
				},
			}
		},
	},
	{
		name: "delayed_hot",
		match: func(status domain.Status, rc *domain.ReclassificationContext) bool {
			if rc.AgeMinutes <= 1440 {
				return false
			}
			switch status {
			case domain.StatusUnqualified, domain.StatusRejected, domain.StatusDormant:
				return rc.SmartWalletActivity || rc.PatternSpike
			}
			return false
		},
		apply: func(rc *domain.ReclassificationContext) *domain.ReclassificationResult {
			return &domain.ReclassificationResult{
				NewStatus: domain.StatusWatchlist,
				Reason:    "delayed hot: renewed activity on an old token",
				Flags: domain.ReclassificationFlags{
					Rule:                "delayed_hot",
					SmartWalletActivity: rc.SmartWalletActivity,
					PatternSpike:        rc.PatternSpike,
				},
			}
		},
	},
	{
		name: "early_scam",
		match: func(status domain.Status, rc *domain.ReclassificationContext) bool {
			return rc.AgeMinutes <= 10 && status == domain.StatusFresh &&
				(rc.HoneypotDetected || rc.RugDetected)
		},
		apply: func(rc *domain.ReclassificationContext) *domain.ReclassificationResult {
			return &domain.ReclassificationResult{
				NewStatus:      domain.StatusRejected,
				Reason:         "honeypot or rug detected within minutes of launch",
				SuppressAlerts: true,
				Flags: domain.ReclassificationFlags{
					Rule:     "early_scam",
					Honeypot: rc.HoneypotDetected,
					Rug:      rc.RugDetected,
				},
			}
		},
	},
	{
		name: "reborn",
		match: func(_ domain.Status, rc *domain.ReclassificationContext) bool {
			return rc.MintReused
		},
		apply: func(_ *domain.ReclassificationContext) *domain.ReclassificationResult {
			return &domain.ReclassificationResult{
				NewStatus: domain.StatusWatchlist,
				Reason:    "reborn: mint address reused from an earlier token",
				Flags: domain.ReclassificationFlags{
					Rule:       "reborn",
					MintReused: true,
				},
			}
		},
	},
	{
		name: "edge_plateau",
		match: func(status domain.Status, rc *domain.ReclassificationContext) bool {
			return status == domain.StatusFresh && rc.EdgeScore < 70 &&
				rc.AgeMinutes > 60 && !rc.VolumeSpike
		},
		apply: func(_ *domain.ReclassificationContext) *domain.ReclassificationResult {
			return &domain.ReclassificationResult{
				NewStatus: domain.StatusDormant,
				Reason:    "edge plateau: fresh token stalled below conviction",
				Flags: domain.ReclassificationFlags{
					Rule: "edge_plateau",
				},
			}
		},
	},
	{
		name: "echo",
		match: func(_ domain.Status, rc *domain.ReclassificationContext) bool {
			return rc.SimilarTokenExists
		},
		apply: func(_ *domain.ReclassificationContext) *domain.ReclassificationResult {
			return &domain.ReclassificationResult{
				NewStatus:      domain.StatusRejected,
				Reason:         "echo: near-duplicate of an existing token",
				SuppressAlerts: true,
				Flags: domain.ReclassificationFlags{
					Rule:         "echo",
					SimilarToken: true,
				},
			}
		},
	},
	{
		name: "sidecar",
		match: func(status domain.Status, rc *domain.ReclassificationContext) bool {
			return rc.PairedWithKnown && status == domain.StatusUnqualified
		},
		apply: func(_ *domain.ReclassificationContext) *domain.ReclassificationResult {
			return &domain.ReclassificationResult{
				NewStatus: domain.StatusWatchlist,
				Reason:    "sidecar: paired with a known token",
				Flags: domain.ReclassificationFlags{
					Rule:            "sidecar",
					PairedWithKnown: true,
				},
			}
		},
	},
	{
		name: "reversal",
		match: func(status domain.Status, rc *domain.ReclassificationContext) bool {
			return rc.SmartWalletDumpRatio < 0.3 && rc.VolumeSpike &&
				status == domain.StatusRejected
		},
		apply: func(rc *domain.ReclassificationContext) *domain.ReclassificationResult {
			return &domain.ReclassificationResult{
				NewStatus: domain.StatusWatchlist,
				Reason:    "reversal: rejected token showing fresh demand without smart-wallet exits",
				Flags: domain.ReclassificationFlags{
					Rule:        "reversal",
					VolumeSpike: rc.VolumeSpike,
				},
			}
		},
	},
}

// ApplyReclassificationLogic evaluates the rules in priority order against
// the current status and evidence. Returns nil when no rule matches.
func ApplyReclassificationLogic(status domain.Status, rc *domain.ReclassificationContext) *domain.ReclassificationResult {
	for _, r := range rules {
		if r.match(status, rc) {
			return r.apply(rc)
		}
	}
	return nil
}
