package models

import "fmt"

// Kind identifies an analysis pipeline.
type Kind string

const (
	KindReview           Kind = "review"
	KindSecurityAudit    Kind = "security"
	KindPerformanceAudit Kind = "performance"
	KindExplanation      Kind = "explanation"
	KindGrowth           Kind = "growth"
	KindFix              Kind = "fix"
	KindChat             Kind = "chat"
)

// AnalysisKinds are the kinds with their own state machine, in display order.
var AnalysisKinds = []Kind{KindReview, KindSecurityAudit, KindPerformanceAudit, KindExplanation, KindGrowth}

// Recorded reports whether a successful run of the kind is written to history.
func (k Kind) Recorded() bool {
	return k == KindReview || k == KindSecurityAudit || k == KindPerformanceAudit
}

func (k Kind) IsAnalysis() bool {
	for _, a := range AnalysisKinds {
		if a == k {
			return true
		}
	}
	return false
}

// ParseKind accepts the kind names used on the command line.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if k.IsAnalysis() {
		return k, nil
	}
	return "", fmt.Errorf("unknown analysis kind '%s'", s)
}

// Result is the tagged union of analysis outputs. Exactly one payload matching Kind is set.
type Result struct {
	Kind        Kind               `json:"kind"`
	Review      *Review            `json:"review,omitempty"`
	Security    *SecurityAudit     `json:"security,omitempty"`
	Performance *PerformanceAudit  `json:"performance,omitempty"`
	Explanation *Explanation       `json:"explanation,omitempty"`
	Growth      *GrowthSuggestions `json:"growth,omitempty"`
}

// Score returns the headline score for the recorded kinds.
func (r Result) Score() (float64, bool) {
	switch {
	case r.Kind == KindReview && r.Review != nil:
		return r.Review.OverallScore, true
	case r.Kind == KindSecurityAudit && r.Security != nil:
		return r.Security.SecurityScore, true
	case r.Kind == KindPerformanceAudit && r.Performance != nil:
		return r.Performance.PerformanceScore, true
	}
	return 0, false
}

// Valid reports whether the payload matching Kind is present.
func (r Result) Valid() bool {
	switch r.Kind {
	case KindReview:
		return r.Review != nil
	case KindSecurityAudit:
		return r.Security != nil
	case KindPerformanceAudit:
		return r.Performance != nil
	case KindExplanation:
		return r.Explanation != nil
	case KindGrowth:
		return r.Growth != nil
	}
	return false
}
