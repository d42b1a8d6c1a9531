package models

// UnparsedAnalysisFact is placed in both fact fields when the completion output
// could not be decoded as JSON.
const UnparsedAnalysisFact = "Unable to parse analysis"

// AnalysisResult is the life-coaching summary produced for a batch of boards
type AnalysisResult struct {
	Fact1    string `json:"fact1" validate:"required"`
	Fact2    string `json:"fact2" validate:"required"`
	Analysis string `json:"analysis" validate:"required"`
}

// FallbackAnalysis wraps raw completion text that was not valid JSON
func FallbackAnalysis(raw string) AnalysisResult {
	return AnalysisResult{
		Fact1:    UnparsedAnalysisFact,
		Fact2:    UnparsedAnalysisFact,
		Analysis: raw,
	}
}
