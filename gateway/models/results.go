package models

// Review severities.
const (
	SeverityCritical   = "Critical"
	SeverityWarning    = "Warning"
	SeveritySuggestion = "Suggestion"
)

type Finding struct {
	LineReference string `json:"lineReference,omitempty"`
	Issue         string `json:"issue"`
	Description   string `json:"description"`
	SuggestedFix  string `json:"suggestedFix"`
	Severity      string `json:"severity"`
}

type Category struct {
	Score    float64   `json:"score"`
	Summary  string    `json:"summary"`
	Findings []Finding `json:"findings"`
}

type Categories struct {
	Security        Category `json:"security"`
	Bugs            Category `json:"bugs"`
	Performance     Category `json:"performance"`
	Quality         Category `json:"quality"`
	Maintainability Category `json:"maintainability"`
}

// Named returns the categories in display order.
func (c Categories) Named() []NamedCategory {
	return []NamedCategory{
		{"security", c.Security},
		{"bugs", c.Bugs},
		{"performance", c.Performance},
		{"quality", c.Quality},
		{"maintainability", c.Maintainability},
	}
}

type NamedCategory struct {
	Name string
	Category
}

type Review struct {
	OverallScore     float64    `json:"overallScore"`
	ExecutiveSummary string     `json:"executiveSummary"`
	Categories       Categories `json:"categories"`
}

type Vulnerability struct {
	Type         string `json:"type"`
	Severity     string `json:"severity"`
	CWE          string `json:"cwe,omitempty"`
	Description  string `json:"description"`
	AttackVector string `json:"attackVector"`
	Mitigation   string `json:"mitigation"`
}

type SecurityAudit struct {
	SecurityScore           float64         `json:"securityScore"`
	Vulnerabilities         []Vulnerability `json:"vulnerabilities"`
	DataSensitivityAnalysis string          `json:"dataSensitivityAnalysis"`
	ComplianceSummary       string          `json:"complianceSummary"`
}

type Bottleneck struct {
	Area          string `json:"area"`
	Impact        string `json:"impact"`
	Complexity    string `json:"complexity"`
	Bottleneck    string `json:"bottleneck"`
	Optimization  string `json:"optimization"`
	OptimizedCode string `json:"optimizedCode"`
}

type PerformanceAudit struct {
	PerformanceScore   float64      `json:"performanceScore"`
	Bottlenecks        []Bottleneck `json:"bottlenecks"`
	ResourceAnalysis   string       `json:"resourceAnalysis"`
	ScalabilityVerdict string       `json:"scalabilityVerdict"`
}

type KeyModule struct {
	Name           string `json:"name"`
	Responsibility string `json:"responsibility"`
}

type Explanation struct {
	Title               string      `json:"title"`
	BriefSummary        string      `json:"briefSummary"`
	TechStack           []string    `json:"techStack"`
	ArchitecturePattern string      `json:"architecturePattern"`
	CoreLogicFlow       string      `json:"coreLogicFlow"`
	KeyModules          []KeyModule `json:"keyModules"`
}

type Suggestion struct {
	Category      string `json:"category"`
	Title         string `json:"title"`
	Impact        string `json:"impact"`
	Complexity    string `json:"complexity"`
	Description   string `json:"description"`
	Reasoning     string `json:"reasoning"`
	SuggestedCode string `json:"suggestedCode"`
}

type GrowthSuggestions struct {
	VisionStatement string       `json:"visionStatement"`
	Suggestions     []Suggestion `json:"suggestions"`
}

type FixedFile struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// FixedContent mirrors the snapshot variant that produced the review:
// Code is set for raw code, Files for a file set.
type FixedContent struct {
	FileSet bool        `json:"fileSet"`
	Code    string      `json:"fixedCode,omitempty"`
	Files   []FixedFile `json:"fixedFiles,omitempty"`
}
