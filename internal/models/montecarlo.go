package models

// Percentiles holds the simulated percentile bands, one point per forecast period
type Percentiles struct {
	P10 []TimePoint `json:"p10"`
	P25 []TimePoint `json:"p25"`
	P50 []TimePoint `json:"p50"`
	P75 []TimePoint `json:"p75"`
	P90 []TimePoint `json:"p90"`
}

// RiskMetrics summarizes the final-period return distribution
type RiskMetrics struct {
	ValueAtRisk95     float64 `json:"valueAtRisk95"`
	ExpectedShortfall float64 `json:"expectedShortfall"`
	MaxDrawdown       float64 `json:"maxDrawdown"`
	ProbabilityOfLoss float64 `json:"probabilityOfLoss"`
}

// Scenarios are named views over the percentile bands
type Scenarios struct {
	Optimistic  []TimePoint `json:"optimistic"`
	Realistic   []TimePoint `json:"realistic"`
	Pessimistic []TimePoint `json:"pessimistic"`
}

// MonteCarloResult represents the outcome of a GBM simulation over the forecast horizon
type MonteCarloResult struct {
	Simulations int         `json:"simulations"`
	Percentiles Percentiles `json:"percentiles"`
	RiskMetrics RiskMetrics `json:"riskMetrics"`
	Scenarios   Scenarios   `json:"scenarios"`
}
