package knowledge

import (
	"slices"
	"testing"
)

func mustLoad(t *testing.T) *Knowledgebase {
	t.Helper()
	kb, err := Load()
	if err != nil {
		t.Fatalf("loading embedded tables: %v", err)
	}
	return kb
}

func TestJobKeywordsExactRole(t *testing.T) {
	kb := mustLoad(t)

	got := kb.JobKeywords("software engineer")
	curated := kb.roles["software engineer"]

	for _, kw := range curated {
		if !slices.Contains(got, kw) {
			t.Fatalf("expected curated keyword %q in %v", kw, got)
		}
	}

	if extra := len(got) - len(curated); extra < 0 || extra > maxRoleSoftSkills {
		t.Fatalf("expected at most %d soft skills appended, got %d", maxRoleSoftSkills, extra)
	}

	seen := map[string]bool{}
	for _, kw := range got {
		if seen[kw] {
			t.Fatalf("duplicate keyword %q", kw)
		}
		seen[kw] = true
	}
}

func TestJobKeywordsSubstringAggregation(t *testing.T) {
	kb := mustLoad(t)

	got := kb.JobKeywords("  Senior Software Engineer II ")
	for _, kw := range kb.roles["software engineer"] {
		if !slices.Contains(got, kw) {
			t.Fatalf("expected %q from the software engineer list, got %v", kw, got)
		}
	}

	// "developer" is contained in several role keys.
	dev := kb.JobKeywords("developer")
	for _, role := range []string{"frontend developer", "backend developer", "mobile developer"} {
		for _, kw := range kb.roles[role] {
			if !slices.Contains(dev, kw) {
				t.Fatalf("expected %q from %q in aggregated list", kw, role)
			}
		}
	}
}

func TestJobKeywordsEmpty(t *testing.T) {
	kb := mustLoad(t)

	tests := []struct {
		name string
		role string
	}{
		{name: "blank role", role: "   "},
		{name: "unknown role", role: "astronaut"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := kb.JobKeywords(tt.role)
			if got == nil || len(got) != 0 {
				t.Fatalf("expected empty non-nil slice, got %#v", got)
			}
		})
	}
}

func TestIndustrySkills(t *testing.T) {
	kb := mustLoad(t)

	got := kb.IndustrySkills("We are a fast growing FINANCE company in healthcare")
	for _, kw := range kb.industries["finance"] {
		if !slices.Contains(got, kw) {
			t.Fatalf("expected finance skill %q in %v", kw, got)
		}
	}
	for _, kw := range kb.industries["healthcare"] {
		if !slices.Contains(got, kw) {
			t.Fatalf("expected healthcare skill %q in %v", kw, got)
		}
	}

	// compliance appears in both lists and must be reported once.
	count := 0
	for _, kw := range got {
		if kw == "compliance" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected compliance once, got %d", count)
	}

	if none := kb.IndustrySkills("nothing relevant here"); len(none) != 0 {
		t.Fatalf("expected no skills, got %v", none)
	}
}

func TestAccessorsReturnCopies(t *testing.T) {
	kb := mustLoad(t)

	soft := kb.SoftSkills()
	soft[0] = "mutated"

	if kb.SoftSkills()[0] == "mutated" {
		t.Fatalf("expected accessor to protect internal state")
	}
}

func TestParseRejectsEmptyTables(t *testing.T) {
	if _, err := Parse([]byte("soft_skills: []\nroles: {}\n")); err == nil {
		t.Fatalf("expected error for empty tables")
	}

	if _, err := Parse([]byte("::not yaml")); err == nil {
		t.Fatalf("expected parse error")
	}
}
