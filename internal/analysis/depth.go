package analysis

const (
	// DepthDisabledWarning is the skip marker warning when enrichment is turned off.
	DepthDisabledWarning = "Depth analysis is disabled"
	// DepthInsufficientWarning is the skip marker warning when there is nothing to enrich.
	DepthInsufficientWarning = "Depth analysis skipped: resume text or skills list is empty"
)

// SkillLevel is the proficiency inferred for a single skill.
type SkillLevel struct {
	EstimatedLevel string   `json:"estimated_level" mapstructure:"estimated_level"`
	Evidence       []string `json:"evidence" mapstructure:"evidence"`
}

// SoftSkillEvidence lists the resume fragments supporting a soft skill.
type SoftSkillEvidence struct {
	Evidence []string `json:"evidence" mapstructure:"evidence"`
}

// Depth is the optional enrichment sub-result. At most one of Error and
// Warning is set.
type Depth struct {
	SkillProficiency   map[string]SkillLevel        `json:"skill_proficiency"`
	InferredSoftSkills map[string]SoftSkillEvidence `json:"inferred_soft_skills"`
	Error              string                       `json:"error,omitempty"`
	Warning            string                       `json:"warning,omitempty"`
}

// DepthSkipped returns the marker used when enrichment did not run.
func DepthSkipped(warning string) *Depth {
	return &Depth{
		SkillProficiency:   map[string]SkillLevel{},
		InferredSoftSkills: map[string]SoftSkillEvidence{},
		Warning:            warning,
	}
}

// DepthFailed returns the marker used when the enrichment call failed.
func DepthFailed(msg string) *Depth {
	return &Depth{
		SkillProficiency:   map[string]SkillLevel{},
		InferredSoftSkills: map[string]SoftSkillEvidence{},
		Error:              msg,
	}
}
