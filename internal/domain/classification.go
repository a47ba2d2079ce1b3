package domain

// Status represents a token's lifecycle classification.
type Status string

const (
	StatusFresh       Status = "fresh"
	StatusEstablished Status = "established"
	StatusRejected    Status = "rejected"
	StatusWatchlist   Status = "watchlist"
	StatusDormant     Status = "dormant"
	StatusUnqualified Status = "unqualified"
)

// String returns the string representation of Status.
func (s Status) String() string {
	return string(s)
}

// IsValid checks if the status is a valid value.
func (s Status) IsValid() bool {
	switch s {
	case StatusFresh, StatusEstablished, StatusRejected,
		StatusWatchlist, StatusDormant, StatusUnqualified:
		return true
	}
	return false
}

// ClassificationRecord tracks a token's lifecycle status.
// Corresponds to the token_classifications table in PostgreSQL.
type ClassificationRecord struct {
	TokenAddress       string // PRIMARY KEY
	Status             Status
	PreviousStatus     Status
	FirstDetectedAt    int64 // Unix timestamp in milliseconds
	UpdatedAt          int64
	LastReevaluatedAt  int64
	ReevaluationCount  int // +1 per accepted reclassification
	EdgeScore          float64
	AgeMinutes         float64
	TxCount            int
	HolderCount        int
	MetadataVerified   bool
	VolumeSpikes       int
	LiquidityEvents    int
	SmartWalletEntries int

	AlertsSuppressed     bool
	SuppressionReason    string
	SuppressionExpiresAt int64 // ms, zero when not suppressed
}

// ReclassificationContext carries the evidence signals a reclassification
// pass is evaluated against. Rules are guarded by context, not status alone.
type ReclassificationContext struct {
	AgeMinutes           float64
	EdgeScore            float64
	SmartWalletActivity  bool
	SmartWalletDumpRatio float64
	VolumeSpike          bool
	MetadataChanged      bool
	HolderGrowth         bool
	PatternSpike         bool
	HoneypotDetected     bool
	RugDetected          bool
	MintReused           bool
	SimilarTokenExists   bool
	PairedWithKnown      bool
}

// ReclassificationFlags records which evidence triggered a rule, for auditing.
type ReclassificationFlags struct {
	Rule                string
	SmartWalletActivity bool
	VolumeSpike         bool
	MetadataChanged     bool
	HolderGrowth        bool
	PatternSpike        bool
	Honeypot            bool
	Rug                 bool
	MintReused          bool
	SimilarToken        bool
	PairedWithKnown     bool
}

// ReclassificationResult is the outcome of a matched reclassification rule.
type ReclassificationResult struct {
	NewStatus      Status
	Reason         string
	SuppressAlerts bool
	Flags          ReclassificationFlags
}
