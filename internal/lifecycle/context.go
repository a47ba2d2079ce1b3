package lifecycle

import (
	"solana-token-qualifier/internal/domain"
)

// edgeJumpAsSpike is the confidence-point jump over the stored edge score
// that reads as a fresh demand spike during reevaluation.
const edgeJumpAsSpike = 15

// ContextFromEvaluation derives reclassification evidence from a fresh
// evaluation of a stored token. Evidence the evaluation cannot speak to
// (honeypot forensics, mint reuse, token similarity) stays unset; rules
// guarded on it simply do not fire from this caller.
func ContextFromEvaluation(result *domain.EvaluationResult, record *domain.ClassificationRecord, ageMinutes float64) *domain.ReclassificationContext {
	rc := &domain.ReclassificationContext{
		AgeMinutes: ageMinutes,
		EdgeScore:  result.Confidence,
	}

	for _, path := range result.DetectionPaths {
		switch path {
		case "smart-wallet":
			rc.SmartWalletActivity = true
		case "technical-pattern":
			rc.PatternSpike = true
		}
	}

	if result.Confidence >= record.EdgeScore+edgeJumpAsSpike {
		rc.VolumeSpike = true
	}

	return rc
}
