package analysis

// AnalysisEngine turns computed metrics into breakdowns and written guidance.
// Every rule is deterministic, so identical subjects produce identical reports.
type AnalysisEngine struct{}

// NewAnalysisEngine creates a new instance of the engine.
func NewAnalysisEngine() *AnalysisEngine {
	return &AnalysisEngine{}
}

// Analyze runs every breakdown and rule set over one calculation.
func (e *AnalysisEngine) Analyze(s Subject) Report {
	return Report{
		RevenueBreakdown: RevenueBreakdown(s.Projections),
		ExpenseBreakdown: ExpenseBreakdown(s.Input, s.Projections),
		Insights:         Insights(s),
		Recommendations:  Recommendations(s),
		RiskFactors:      RiskFactors(s),
		Benchmarks:       Benchmarks(s.BusinessType),
	}
}
