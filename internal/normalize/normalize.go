// Package normalize turns whichever base analysis succeeded into the
// canonical, fully populated report.
package normalize

import (
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spigell/resume-scorer/internal/ai/decode"
	"github.com/spigell/resume-scorer/internal/analysis"
)

type looseCategory struct {
	Checks   []string `mapstructure:"checks"`
	Warnings []string `mapstructure:"warnings"`
}

type looseKeywords struct {
	MatchedKeywords []string `mapstructure:"matchedKeywords"`
	MissingKeywords []string `mapstructure:"missingKeywords"`
}

// looseReport mirrors analysis.Report with every field optional.
type looseReport struct {
	Score          *float64 `mapstructure:"score"`
	ATSScore       *float64 `mapstructure:"atsScore"`
	ToneScore      *float64 `mapstructure:"toneScore"`
	ContentScore   *float64 `mapstructure:"contentScore"`
	StructureScore *float64 `mapstructure:"structureScore"`
	SkillsScore    *float64 `mapstructure:"skillsScore"`

	AnalysisSummary string `mapstructure:"analysisSummary"`

	ToneDetails      *looseCategory `mapstructure:"toneDetails"`
	ContentDetails   *looseCategory `mapstructure:"contentDetails"`
	StructureDetails *looseCategory `mapstructure:"structureDetails"`
	SkillsDetails    *looseCategory `mapstructure:"skillsDetails"`
	ATSDetails       *looseCategory `mapstructure:"atsDetails"`

	KeywordAnalysis           *looseKeywords `mapstructure:"keywordAnalysis"`
	ActionableRecommendations []string       `mapstructure:"actionableRecommendations"`
}

// FromMap decodes a model analysis object into a report. Missing numbers
// default to 0 and the overall score is recomputed from the category scores
// whenever the model supplied any of them. A shape the decoder cannot map is
// reported as *decode.ValidationFailure.
func FromMap(doc map[string]any) (*analysis.Report, error) {
	if doc == nil {
		return nil, &decode.ValidationFailure{Problems: []string{"response is empty"}}
	}

	var loose looseReport
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &loose,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, fmt.Errorf("building decoder: %w", err)
	}

	if err := decoder.Decode(doc); err != nil {
		return nil, &decode.ValidationFailure{Problems: []string{err.Error()}}
	}

	report := &analysis.Report{
		Score:           score(loose.Score),
		ATSScore:        score(loose.ATSScore),
		ToneScore:       score(loose.ToneScore),
		ContentScore:    score(loose.ContentScore),
		StructureScore:  score(loose.StructureScore),
		SkillsScore:     score(loose.SkillsScore),
		AnalysisSummary: strings.TrimSpace(loose.AnalysisSummary),

		ToneDetails:      category(loose.ToneDetails),
		ContentDetails:   category(loose.ContentDetails),
		StructureDetails: category(loose.StructureDetails),
		SkillsDetails:    category(loose.SkillsDetails),
		ATSDetails:       category(loose.ATSDetails),

		ActionableRecommendations: clean(loose.ActionableRecommendations),
	}

	if loose.KeywordAnalysis != nil {
		report.KeywordAnalysis = analysis.KeywordAnalysis{
			MatchedKeywords: clean(loose.KeywordAnalysis.MatchedKeywords),
			MissingKeywords: clean(loose.KeywordAnalysis.MissingKeywords),
		}
	}

	if anySet(loose.ATSScore, loose.ToneScore, loose.ContentScore, loose.StructureScore, loose.SkillsScore) {
		report.Score = analysis.Overall(report.StructureScore, report.ContentScore, report.SkillsScore, report.ToneScore, report.ATSScore)
	}

	return report, nil
}

// Complete fills every gap left in report, records the method and attaches
// the depth sub-result. It never recomputes the overall score.
func Complete(report *analysis.Report, method analysis.Method, depth *analysis.Depth) *analysis.Report {
	if report == nil {
		report = &analysis.Report{}
	}

	report.Score = clampInt(report.Score)
	report.ATSScore = clampInt(report.ATSScore)
	report.ToneScore = clampInt(report.ToneScore)
	report.ContentScore = clampInt(report.ContentScore)
	report.StructureScore = clampInt(report.StructureScore)
	report.SkillsScore = clampInt(report.SkillsScore)

	for _, c := range []*analysis.Category{
		&report.ToneDetails,
		&report.ContentDetails,
		&report.StructureDetails,
		&report.SkillsDetails,
		&report.ATSDetails,
	} {
		c.Checks = nonNil(c.Checks)
		c.Warnings = nonNil(c.Warnings)
	}

	report.KeywordAnalysis.MatchedKeywords = nonNil(report.KeywordAnalysis.MatchedKeywords)
	report.KeywordAnalysis.MissingKeywords = nonNil(report.KeywordAnalysis.MissingKeywords)
	report.ActionableRecommendations = nonNil(report.ActionableRecommendations)

	if depth != nil {
		if depth.SkillProficiency == nil {
			depth.SkillProficiency = map[string]analysis.SkillLevel{}
		}
		if depth.InferredSoftSkills == nil {
			depth.InferredSoftSkills = map[string]analysis.SoftSkillEvidence{}
		}
	}
	report.DepthAnalysis = depth
	report.AnalysisMethod = method

	return report
}

func score(v *float64) int {
	if v == nil {
		return 0
	}
	return analysis.Clamp(*v)
}

func clampInt(v int) int {
	return analysis.Clamp(float64(v))
}

func anySet(values ...*float64) bool {
	for _, v := range values {
		if v != nil {
			return true
		}
	}
	return false
}

func category(c *looseCategory) analysis.Category {
	if c == nil {
		return analysis.NewCategory()
	}
	return analysis.Category{Checks: clean(c.Checks), Warnings: clean(c.Warnings)}
}

// clean trims entries and drops blanks, always returning a non-nil slice.
func clean(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
