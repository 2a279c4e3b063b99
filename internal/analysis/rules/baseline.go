package rules

import "github.com/spigell/resume-scorer/internal/analysis"

// Baseline returns the neutral report used when the analyzer fails
// unexpectedly. Its overall score is fixed at 65 rather than derived from the
// category scores.
func Baseline() *analysis.Report {
	placeholder := func(check, warning string) analysis.Category {
		return analysis.Category{Checks: []string{check}, Warnings: []string{warning}}
	}

	return &analysis.Report{
		Score:          65,
		StructureScore: 65,
		ContentScore:   65,
		SkillsScore:    60,
		ToneScore:      70,
		ATSScore:       60,

		AnalysisSummary: "Automated analysis could not be completed. Baseline scores were assigned.",

		StructureDetails: placeholder("Resume text received", "Structure could not be analyzed in detail"),
		ContentDetails:   placeholder("Resume content received", "Content could not be analyzed in detail"),
		SkillsDetails:    placeholder("Skills will be reviewed manually", "Skills could not be analyzed in detail"),
		ToneDetails:      placeholder("Tone will be reviewed manually", "Tone could not be analyzed in detail"),
		ATSDetails:       placeholder("Plain text input is ATS friendly", "ATS compatibility could not be analyzed in detail"),

		KeywordAnalysis: analysis.KeywordAnalysis{
			MatchedKeywords: []string{},
			MissingKeywords: []string{},
		},
		ActionableRecommendations: []string{"Review the resume manually or retry the analysis later"},
		AnalysisMethod:            analysis.MethodRuleBased,
	}
}
