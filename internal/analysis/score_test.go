package analysis

import (
	"math"
	"testing"
)

func TestClamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  float64
		expect int
	}{
		{name: "rounds half up", input: 84.5, expect: 85},
		{name: "rounds down", input: 84.49, expect: 84},
		{name: "clamps negative", input: -12, expect: 0},
		{name: "clamps above range", input: 140.2, expect: 100},
		{name: "nan is zero", input: math.NaN(), expect: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Clamp(tt.input); got != tt.expect {
				t.Fatalf("expected %d, got %d", tt.expect, got)
			}
		})
	}
}

func TestOverall(t *testing.T) {
	// 0.25*80 + 0.25*90 + 0.25*70 + 0.15*75 + 0.10*65 = 77.75
	if got := Overall(80, 90, 70, 75, 65); got != 78 {
		t.Fatalf("expected 78, got %d", got)
	}

	if got := Overall(100, 100, 100, 100, 100); got != 100 {
		t.Fatalf("expected 100, got %d", got)
	}
}

func TestDepthMarkers(t *testing.T) {
	skipped := DepthSkipped(DepthDisabledWarning)
	if skipped.Error != "" || skipped.Warning != DepthDisabledWarning {
		t.Fatalf("unexpected skip marker: %+v", skipped)
	}
	if skipped.SkillProficiency == nil || skipped.InferredSoftSkills == nil {
		t.Fatalf("expected empty maps in skip marker")
	}

	failed := DepthFailed("boom")
	if failed.Warning != "" || failed.Error != "boom" {
		t.Fatalf("unexpected failure marker: %+v", failed)
	}
}

func TestCandidateSkills(t *testing.T) {
	r := &Report{KeywordAnalysis: KeywordAnalysis{MatchedKeywords: []string{"go", "  ", "sql "}}}
	got := r.CandidateSkills()
	if len(got) != 2 || got[0] != "go" || got[1] != "sql" {
		t.Fatalf("unexpected skills: %v", got)
	}

	var nilReport *Report
	if nilReport.CandidateSkills() != nil {
		t.Fatalf("expected nil for nil report")
	}
}
