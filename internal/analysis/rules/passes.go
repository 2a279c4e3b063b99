package rules

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/spigell/resume-scorer/internal/analysis"
)

const (
	minWords = 300
	maxWords = 800

	minQuantifiers = 3
	minActionVerbs = 5

	excellentSkills = 12
	strongSkills    = 8
	goodSkills      = 4

	excellentSoftSkills = 5
	goodSoftSkills      = 3

	excellentRoleMatch = 0.7
	goodRoleMatch      = 0.5
	goodIndustryMatch  = 0.4

	minAdjectives     = 3
	maxFirstPerson    = 2
	maxPassiveRatio   = 0.3
	minSectionHeaders = 3
	minKeywordDensity = 0.05
)

var (
	emailPattern      = regexp.MustCompile(`[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}`)
	phonePattern      = regexp.MustCompile(`(?:\+?\d{1,3}[\s.\-]?)?\(?\d{3}\)?[\s.\-]?\d{3}[\s.\-]?\d{4}`)
	contactPattern    = regexp.MustCompile(`\b(contact|linkedin|phone|email)\b`)
	experiencePattern = regexp.MustCompile(`\b(experience|employment|work history)\b`)
	educationPattern  = regexp.MustCompile(`\b(education|academic|degree|university|college)\b`)
	skillsPattern     = regexp.MustCompile(`\b(skills|competencies|technologies|expertise)\b`)
	bulletPattern     = regexp.MustCompile(`(?m)^\s*[•●▪◦■\-\*–]\s+`)

	quantifierPattern = regexp.MustCompile(
		`\d+(?:\.\d+)?\s?%` +
			`|[$€£]\s?\d[\d,.]*(?:\s?(?:k|m|million|billion)\b)?` +
			`|\b\d+\+?\s*(?:years?|months?)\b` +
			`|\b(?:19|20)\d{2}\s*(?:-|–|to)\s*(?:(?:19|20)\d{2}|present|current)\b`,
	)
	yearsPattern = regexp.MustCompile(`\b\d+\+?\s*years?\b`)

	firstPersonPattern = regexp.MustCompile(`\b(i|me|my|mine|myself)\b`)
	passivePattern     = regexp.MustCompile(`\b(was|were|been|being)\b`)
	sentencePattern    = regexp.MustCompile(`[.!?]+`)
	spacingPattern     = regexp.MustCompile(`\t{2,}| {4,}`)
)

func percent(ratio float64) int {
	return int(math.Round(ratio * 100))
}

func (r *run) structure() analysis.Category {
	c := analysis.NewCategory()

	if emailPattern.MatchString(r.text) || phonePattern.MatchString(r.text) || contactPattern.MatchString(r.text) {
		c.Check("Contact information found")
	} else {
		r.warn(&c, "Missing contact information", "Add an email address, phone number or LinkedIn profile at the top")
	}

	if experiencePattern.MatchString(r.text) {
		c.Check("Experience section present")
	} else {
		r.warn(&c, "Missing experience section", "Add a clearly labelled work experience section")
	}

	if educationPattern.MatchString(r.text) {
		c.Check("Education section present")
	} else {
		r.warn(&c, "Missing education section", "Add an education section with degrees and institutions")
	}

	if skillsPattern.MatchString(r.text) {
		c.Check("Skills section present")
	} else {
		r.warn(&c, "Missing skills section", "Add a dedicated skills section")
	}

	switch {
	case r.words < minWords:
		r.warn(&c, fmt.Sprintf("Resume is too short (%d words)", r.words),
			fmt.Sprintf("Expand the resume to at least %d words with concrete achievements", minWords))
	case r.words > maxWords:
		r.warn(&c, fmt.Sprintf("Resume is too long (%d words)", r.words),
			fmt.Sprintf("Trim the resume to at most %d words", maxWords))
	default:
		c.Check(fmt.Sprintf("Appropriate length (%d words)", r.words))
	}

	// Presence only: a missing bullet list is not a warning.
	if bulletPattern.MatchString(r.text) {
		c.Check("Uses bullet points for readability")
	}

	return c
}

func (r *run) content() analysis.Category {
	c := analysis.NewCategory()

	quantifiers := len(quantifierPattern.FindAllString(r.text, -1))
	if quantifiers >= minQuantifiers {
		c.Check(fmt.Sprintf("Quantified achievements found (%d metrics)", quantifiers))
	} else {
		r.warn(&c, fmt.Sprintf("Few quantified achievements (%d found)", quantifiers),
			"Quantify achievements with percentages, amounts or time frames")
	}

	verbs := len(hits(r.text, r.verbs))
	if verbs >= minActionVerbs {
		c.Check(fmt.Sprintf("Strong action verbs used (%d)", verbs))
	} else {
		r.warn(&c, fmt.Sprintf("Limited use of action verbs (%d found)", verbs),
			"Start bullet points with action verbs such as led, built or improved")
	}

	if yearsPattern.MatchString(r.text) {
		c.Check("Years of experience stated")
	}

	if len(hits(r.text, r.projects)) > 0 {
		c.Check("Projects or portfolio mentioned")
	}

	return c
}

func (r *run) skills() analysis.Category {
	c := analysis.NewCategory()

	combined := union(r.technical, r.jobKeywords, r.industry)
	r.matched = hits(r.text, combined)

	switch n := len(r.matched); {
	case n >= excellentSkills:
		c.Check(fmt.Sprintf("Excellent skill alignment (%d relevant skills)", n))
	case n >= strongSkills:
		c.Check(fmt.Sprintf("Strong skill set (%d relevant skills)", n))
	case n >= goodSkills:
		c.Check(fmt.Sprintf("Good technical skills (%d relevant skills)", n))
	default:
		r.warn(&c, fmt.Sprintf("Few relevant skills found (%d)", n),
			"List more of the tools and technologies you have worked with")
	}

	switch n := len(r.softHits); {
	case n >= excellentSoftSkills:
		c.Check(fmt.Sprintf("Excellent soft skills coverage (%d)", n))
	case n >= goodSoftSkills:
		c.Check(fmt.Sprintf("Good soft skills coverage (%d)", n))
	default:
		r.warn(&c, fmt.Sprintf("Few soft skills mentioned (%d)", n),
			"Mention soft skills such as communication, leadership or teamwork")
	}

	if r.role != "" && len(r.jobKeywords) > 0 {
		ratio := float64(len(hits(r.text, r.jobKeywords))) / float64(len(r.jobKeywords))
		switch {
		case ratio >= excellentRoleMatch:
			c.Check(fmt.Sprintf("Excellent job role match (%d%% of role keywords)", percent(ratio)))
		case ratio >= goodRoleMatch:
			c.Check(fmt.Sprintf("Good job role match (%d%% of role keywords)", percent(ratio)))
		default:
			r.warn(&c, fmt.Sprintf("Low job role match (%d%% of role keywords)", percent(ratio)),
				fmt.Sprintf("Tailor the resume to the %s role using its key terms", r.role))
		}
	}

	if r.description != "" && len(r.industry) > 0 {
		ratio := float64(len(hits(r.text, r.industry))) / float64(len(r.industry))
		if ratio >= goodIndustryMatch {
			c.Check(fmt.Sprintf("Good industry skill coverage (%d%%)", percent(ratio)))
		} else {
			r.warn(&c, fmt.Sprintf("Low industry skill coverage (%d%%)", percent(ratio)),
				"Include industry-specific skills from the job description")
		}
	}

	return c
}

func (r *run) tone() analysis.Category {
	c := analysis.NewCategory()

	adjectives := len(hits(r.text, r.adjectives))
	if adjectives >= minAdjectives {
		c.Check(fmt.Sprintf("Professional descriptive language (%d terms)", adjectives))
	} else {
		r.warn(&c, fmt.Sprintf("Limited professional language (%d terms)", adjectives),
			"Use precise professional descriptors such as results-driven or analytical")
	}

	firstPerson := len(firstPersonPattern.FindAllString(r.text, -1))
	if firstPerson <= maxFirstPerson {
		c.Check("Avoids first-person pronouns")
	} else {
		r.warn(&c, fmt.Sprintf("Too many first-person pronouns (%d)", firstPerson),
			"Drop first-person pronouns and start sentences with verbs")
	}

	if ratio := r.passiveRatio(); ratio < maxPassiveRatio {
		c.Check("Mostly active voice")
	} else {
		r.warn(&c, fmt.Sprintf("Frequent passive voice (%d%% of sentences)", percent(ratio)),
			"Rewrite passive sentences in active voice")
	}

	return c
}

func (r *run) passiveRatio() float64 {
	segments := 0
	for _, s := range sentencePattern.Split(r.text, -1) {
		if strings.TrimSpace(s) != "" {
			segments++
		}
	}
	if segments == 0 {
		return 0
	}
	return float64(len(passivePattern.FindAllString(r.text, -1))) / float64(segments)
}

func (r *run) ats() analysis.Category {
	c := analysis.NewCategory()

	headers := len(hits(r.text, r.headers))
	if headers >= minSectionHeaders {
		c.Check(fmt.Sprintf("Standard section headers detected (%d)", headers))
	} else {
		r.warn(&c, fmt.Sprintf("Few standard section headers (%d)", headers),
			"Use standard headers like Experience, Education and Skills")
	}

	density := 0.0
	if r.words > 0 {
		density = float64(len(r.technicalHits)+len(r.softHits)) / float64(r.words)
	}
	if density >= minKeywordDensity {
		c.Check(fmt.Sprintf("Good keyword density (%.1f%%)", density*100))
	} else {
		r.warn(&c, fmt.Sprintf("Low keyword density (%.1f%%)", density*100),
			"Work more relevant keywords into your experience descriptions")
	}

	if spacingPattern.MatchString(r.text) {
		r.warn(&c, "Excessive tabs or spacing detected", "Replace tab and space alignment with simple formatting")
	}

	return c
}
