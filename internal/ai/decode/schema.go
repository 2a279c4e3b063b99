package decode

import (
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// shapeSchema is the minimal contract a decoded analysis must satisfy.
const shapeSchema = `{
  "type": "object",
  "required": ["score", "keywordAnalysis"],
  "properties": {
    "score": {"type": "number"},
    "keywordAnalysis": {"type": "object"}
  }
}`

// ValidationFailure is returned when a decoded object misses required fields.
type ValidationFailure struct {
	Problems []string
}

func (e *ValidationFailure) Error() string {
	return fmt.Sprintf("model response failed validation: %s", strings.Join(e.Problems, "; "))
}

var loadSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(shapeSchema))
})

// Validate checks doc against the minimal analysis contract.
func Validate(doc map[string]any) error {
	if doc == nil {
		return &ValidationFailure{Problems: []string{"response is empty"}}
	}

	schema, err := loadSchema()
	if err != nil {
		return fmt.Errorf("load analysis schema: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return &ValidationFailure{Problems: []string{err.Error()}}
	}

	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		problems = append(problems, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
	}
	return &ValidationFailure{Problems: problems}
}

// aliases maps snake_case and alternative keys onto canonical report keys.
var aliases = map[string]string{
	"overall_score":              "score",
	"overallScore":               "score",
	"ats_score":                  "atsScore",
	"tone_score":                 "toneScore",
	"content_score":              "contentScore",
	"structure_score":            "structureScore",
	"skills_score":               "skillsScore",
	"analysis_summary":           "analysisSummary",
	"summary":                    "analysisSummary",
	"tone_details":               "toneDetails",
	"content_details":            "contentDetails",
	"structure_details":          "structureDetails",
	"skills_details":             "skillsDetails",
	"ats_details":                "atsDetails",
	"keyword_analysis":           "keywordAnalysis",
	"matched_keywords":           "matchedKeywords",
	"missing_keywords":           "missingKeywords",
	"actionable_recommendations": "actionableRecommendations",
	"recommendations":            "actionableRecommendations",
}

// Canonicalize renames aliased keys in place, recursing into nested objects.
// A canonical key already present is never overwritten.
func Canonicalize(doc map[string]any) map[string]any {
	for key, value := range doc {
		if nested, ok := value.(map[string]any); ok {
			Canonicalize(nested)
		}

		canonical, ok := aliases[key]
		if !ok {
			continue
		}
		if _, exists := doc[canonical]; !exists {
			doc[canonical] = value
		}
		delete(doc, key)
	}
	return doc
}
