// Package analysis defines the canonical resume score report and the values
// shared by every stage of the analysis pipeline.
package analysis

import "strings"

// Method records which analyzer produced a report.
type Method string

const (
	MethodAI                  Method = "ai"
	MethodRuleBased           Method = "rule-based"
	MethodFailedBeforeAttempt Method = "failed_before_attempt"
)

// Request is the input of a single analysis.
type Request struct {
	ResumeText     string `json:"resumeText"`
	JobRole        string `json:"jobRole,omitempty"`
	JobDescription string `json:"jobDescription,omitempty"`
}

// Blank reports whether the resume text has no usable content.
func (r Request) Blank() bool {
	return strings.TrimSpace(r.ResumeText) == ""
}

// Category holds the findings of one rubric dimension.
type Category struct {
	Checks   []string `json:"checks"`
	Warnings []string `json:"warnings"`
}

// NewCategory returns a category with empty, non-nil finding lists.
func NewCategory() Category {
	return Category{Checks: []string{}, Warnings: []string{}}
}

// Check records a positive finding.
func (c *Category) Check(msg string) { c.Checks = append(c.Checks, msg) }

// Warn records a negative finding.
func (c *Category) Warn(msg string) { c.Warnings = append(c.Warnings, msg) }

// KeywordAnalysis is the keyword coverage breakdown of a report.
type KeywordAnalysis struct {
	MatchedKeywords []string `json:"matchedKeywords"`
	MissingKeywords []string `json:"missingKeywords"`
}

// Report is the canonical score report returned to callers.
type Report struct {
	Score          int `json:"score"`
	ATSScore       int `json:"atsScore"`
	ToneScore      int `json:"toneScore"`
	ContentScore   int `json:"contentScore"`
	StructureScore int `json:"structureScore"`
	SkillsScore    int `json:"skillsScore"`

	AnalysisSummary string `json:"analysisSummary"`

	ToneDetails      Category `json:"toneDetails"`
	ContentDetails   Category `json:"contentDetails"`
	StructureDetails Category `json:"structureDetails"`
	SkillsDetails    Category `json:"skillsDetails"`
	ATSDetails       Category `json:"atsDetails"`

	KeywordAnalysis           KeywordAnalysis `json:"keywordAnalysis"`
	ActionableRecommendations []string        `json:"actionableRecommendations"`

	DepthAnalysis *Depth `json:"depth_analysis,omitempty"`

	AnalysisMethod Method `json:"analysisMethod"`
}

// CandidateSkills returns the skill list used for depth enrichment.
func (r *Report) CandidateSkills() []string {
	if r == nil {
		return nil
	}
	skills := make([]string, 0, len(r.KeywordAnalysis.MatchedKeywords))
	for _, kw := range r.KeywordAnalysis.MatchedKeywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			skills = append(skills, kw)
		}
	}
	return skills
}
