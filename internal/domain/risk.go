package domain

// RiskProfile is the feature vector assembled by the risk assessment gate,
// plus the veto decision attached by the veto policy.
type RiskProfile struct {
	Address             string
	Volume24h           float64 // USD estimate
	LiquidityUSD        float64 // pool value estimate
	LiquidityEstimated  bool    // true when the value came from a non-authoritative fallback
	HolderConcentration float64 // top-holder share percentage, 5-95
	TxCountEstimate     int
	AgeMinutes          float64
	MintDisabled        bool
	MetadataVerified    bool

	Passed            bool
	RejectionReasons  []string
	Warnings          []string
	ConfidencePenalty float64 // 0-1, subtracted from the final score
}
