// Package rules implements the deterministic rule-based resume analyzer.
//
// The analyzer is lexical: it runs five independent heuristic passes over the
// lower-cased resume text, records checks and warnings per rubric category and
// turns their counts into scores. It holds no state between calls, so the
// same input always yields the same report.
package rules

import (
	"fmt"
	"strings"

	"github.com/spigell/resume-scorer/internal/analysis"
	"github.com/spigell/resume-scorer/internal/knowledge"
)

const (
	maxRecommendations = 8
	maxMissingKeywords = 15
)

// rubric holds the scoring constants of one category.
type rubric struct {
	neutral int
	base    float64
	spread  float64
}

var (
	structureRubric = rubric{neutral: 70, base: 60, spread: 35}
	contentRubric   = rubric{neutral: 70, base: 60, spread: 35}
	skillsRubric    = rubric{neutral: 60, base: 60, spread: 35}
	toneRubric      = rubric{neutral: 75, base: 65, spread: 30}
	atsRubric       = rubric{neutral: 65, base: 60, spread: 35}
)

func (r rubric) score(c analysis.Category) int {
	checks := float64(len(c.Checks))
	warnings := float64(len(c.Warnings))
	if checks == 0 && warnings == 0 {
		return r.neutral
	}
	return analysis.Clamp(r.base + r.spread*checks/(checks+warnings))
}

// Analyzer scores resumes against the keyword tables of a Knowledgebase.
type Analyzer struct {
	kb *knowledge.Knowledgebase

	technical  []string
	soft       []string
	verbs      []string
	adjectives []string
	headers    []string
	projects   []string
}

// New returns an Analyzer backed by kb.
func New(kb *knowledge.Knowledgebase) *Analyzer {
	return &Analyzer{
		kb:         kb,
		technical:  kb.TechnicalSkills(),
		soft:       kb.SoftSkills(),
		verbs:      kb.ActionVerbs(),
		adjectives: kb.ProfessionalAdjectives(),
		headers:    kb.SectionHeaders(),
		projects:   kb.ProjectMarkers(),
	}
}

// run carries the per-request state of one analysis.
type run struct {
	*Analyzer

	text  string
	words int

	role        string
	description string
	jobKeywords []string
	industry    []string

	technicalHits []string
	softHits      []string
	matched       []string

	advice []string
}

// Analyze scores the resume. It never returns nil.
func (a *Analyzer) Analyze(req analysis.Request) *analysis.Report {
	r := &run{
		Analyzer:    a,
		text:        strings.ToLower(req.ResumeText),
		role:        strings.TrimSpace(req.JobRole),
		description: strings.TrimSpace(req.JobDescription),
	}
	r.words = len(strings.Fields(r.text))
	r.jobKeywords = a.kb.JobKeywords(r.role)
	r.industry = a.kb.IndustrySkills(r.description)
	r.technicalHits = hits(r.text, a.technical)
	r.softHits = hits(r.text, a.soft)

	structure := r.structure()
	content := r.content()
	skills := r.skills()
	tone := r.tone()
	ats := r.ats()

	report := &analysis.Report{
		StructureScore:   structureRubric.score(structure),
		ContentScore:     contentRubric.score(content),
		SkillsScore:      skillsRubric.score(skills),
		ToneScore:        toneRubric.score(tone),
		ATSScore:         atsRubric.score(ats),
		StructureDetails: structure,
		ContentDetails:   content,
		SkillsDetails:    skills,
		ToneDetails:      tone,
		ATSDetails:       ats,
		KeywordAnalysis: analysis.KeywordAnalysis{
			MatchedKeywords: r.matched,
			MissingKeywords: r.missing(),
		},
		ActionableRecommendations: r.recommendations(),
		AnalysisMethod:            analysis.MethodRuleBased,
	}
	report.Score = analysis.Overall(
		report.StructureScore,
		report.ContentScore,
		report.SkillsScore,
		report.ToneScore,
		report.ATSScore,
	)
	report.AnalysisSummary = summarize(report)

	return report
}

// warn records a warning together with the advice shown to the candidate.
func (r *run) warn(c *analysis.Category, msg, advice string) {
	c.Warn(msg)
	if advice != "" {
		r.advice = append(r.advice, advice)
	}
}

func (r *run) missing() []string {
	if len(r.jobKeywords) == 0 && len(r.industry) == 0 {
		return []string{}
	}

	missing := []string{}
	for _, kw := range union(r.jobKeywords, r.industry) {
		if containsWord(r.text, kw) {
			continue
		}
		missing = append(missing, kw)
		if len(missing) == maxMissingKeywords {
			break
		}
	}
	return missing
}

func (r *run) recommendations() []string {
	recs := union(r.advice)
	if len(recs) > maxRecommendations {
		recs = recs[:maxRecommendations]
	}
	return recs
}

type categoryScore struct {
	name  string
	score int
}

func summarize(report *analysis.Report) string {
	categories := []categoryScore{
		{name: "structure", score: report.StructureScore},
		{name: "content", score: report.ContentScore},
		{name: "skills", score: report.SkillsScore},
		{name: "tone", score: report.ToneScore},
		{name: "ATS compatibility", score: report.ATSScore},
	}

	best, worst := categories[0], categories[0]
	for _, c := range categories[1:] {
		if c.score > best.score {
			best = c
		}
		if c.score < worst.score {
			worst = c
		}
	}

	if best.score == worst.score {
		return fmt.Sprintf("Overall resume score: %d/100. All categories scored %d.", report.Score, best.score)
	}

	return fmt.Sprintf("Overall resume score: %d/100. Strongest area: %s (%d). Needs the most work: %s (%d).",
		report.Score, best.name, best.score, worst.name, worst.score)
}
