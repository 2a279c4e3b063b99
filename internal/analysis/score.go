package analysis

import "math"

// Category weights of the overall score.
const (
	WeightStructure = 0.25
	WeightContent   = 0.25
	WeightSkills    = 0.25
	WeightTone      = 0.15
	WeightATS       = 0.10
)

// Overall combines the five category scores into the overall score.
func Overall(structure, content, skills, tone, ats int) int {
	return Clamp(WeightStructure*float64(structure) +
		WeightContent*float64(content) +
		WeightSkills*float64(skills) +
		WeightTone*float64(tone) +
		WeightATS*float64(ats))
}

// Clamp rounds v half away from zero and bounds it to [0,100]. NaN maps to 0.
func Clamp(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	r := math.Round(v)
	switch {
	case r < 0:
		return 0
	case r > 100:
		return 100
	default:
		return int(r)
	}
}
