package domain

// SignalOutcome is the result of one signal module execution within a single
// evaluation. Not persisted beyond the call.
type SignalOutcome struct {
	Success    bool           // module completed without error
	DurationMs int64          // wall-clock execution time
	Confidence float64        // 0-100, meaningful only when Success
	Payload    map[string]any // module-specific details
	Error      string         // error message when failed
}

// ModuleStat records per-module execution timing for an evaluation.
type ModuleStat struct {
	Name       string
	DurationMs int64
	Success    bool
}

// EvaluationResult is the final output of one token evaluation.
type EvaluationResult struct {
	TokenAddress   string
	FinalScore     float64 // 0-0.95
	Confidence     float64 // FinalScore * 100
	Track          Track
	IsQualified    bool
	PrimarySignal  string
	DetectionPaths []string // categories with confidence > threshold
	Outcomes       map[string]*SignalOutcome
	ExpectedReturn float64
	RiskScore      float64 // 0-1
	PositionSize   float64 // Kelly fraction, 0-0.25
	Reasons        []string
	EvaluatedAt    int64 // Unix timestamp in milliseconds
	ModuleStats    []ModuleStat
	Method         string // "signals" | "risk_veto" | "fallback"
}

// Evaluation method constants
const (
	MethodSignals  = "signals"
	MethodRiskVeto = "risk_veto"
	MethodFallback = "fallback"
)
