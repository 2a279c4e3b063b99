// Package knowledge holds the static keyword tables used to score resumes:
// curated role and industry keyword lists, the universal soft-skill list and
// the lexicons consumed by the rule-based analyzer.
//
// A Knowledgebase is loaded once and never mutated afterwards, so a single
// instance is safe to share between concurrent requests.
package knowledge

import (
	_ "embed"
	"errors"
	"fmt"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// maxRoleSoftSkills is how many universal soft skills are appended to role keywords.
const maxRoleSoftSkills = 10

//go:embed keywords.yaml
var embeddedTables []byte

type tables struct {
	SoftSkills             []string            `yaml:"soft_skills"`
	TechnicalSkills        []string            `yaml:"technical_skills"`
	ActionVerbs            []string            `yaml:"action_verbs"`
	ProfessionalAdjectives []string            `yaml:"professional_adjectives"`
	SectionHeaders         []string            `yaml:"section_headers"`
	ProjectMarkers         []string            `yaml:"project_markers"`
	Roles                  map[string][]string `yaml:"roles"`
	Industries             map[string][]string `yaml:"industries"`
}

// Knowledgebase is an immutable set of keyword tables.
type Knowledgebase struct {
	softSkills             []string
	technicalSkills        []string
	actionVerbs            []string
	professionalAdjectives []string
	sectionHeaders         []string
	projectMarkers         []string

	roles        map[string][]string
	roleKeys     []string
	industries   map[string][]string
	industryKeys []string
}

// Load parses the tables embedded into the binary.
func Load() (*Knowledgebase, error) {
	return Parse(embeddedTables)
}

// Parse builds a Knowledgebase from YAML encoded tables.
func Parse(data []byte) (*Knowledgebase, error) {
	var t tables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse keyword tables: %w", err)
	}

	if len(t.SoftSkills) == 0 {
		return nil, errors.New("keyword tables: soft_skills must not be empty")
	}
	if len(t.Roles) == 0 {
		return nil, errors.New("keyword tables: roles must not be empty")
	}

	kb := &Knowledgebase{
		softSkills:             normalizeList(t.SoftSkills),
		technicalSkills:        normalizeList(t.TechnicalSkills),
		actionVerbs:            normalizeList(t.ActionVerbs),
		professionalAdjectives: normalizeList(t.ProfessionalAdjectives),
		sectionHeaders:         normalizeList(t.SectionHeaders),
		projectMarkers:         normalizeList(t.ProjectMarkers),
		roles:                  normalizeTable(t.Roles),
		industries:             normalizeTable(t.Industries),
	}
	kb.roleKeys = sortedKeys(kb.roles)
	kb.industryKeys = sortedKeys(kb.industries)

	return kb, nil
}

// JobKeywords returns the keywords relevant to a job role.
//
// An exact role key wins. Otherwise the lists of every role key that is a
// substring of role, or that contains role, are aggregated. The first ten
// universal soft skills are appended and the result is deduplicated. An empty
// slice is returned when role is blank or nothing matched.
func (k *Knowledgebase) JobKeywords(role string) []string {
	role = normalize(role)
	if role == "" {
		return []string{}
	}

	var matched []string
	if list, ok := k.roles[role]; ok {
		matched = append(matched, list...)
	} else {
		for _, key := range k.roleKeys {
			if strings.Contains(role, key) || strings.Contains(key, role) {
				matched = append(matched, k.roles[key]...)
			}
		}
	}

	if len(matched) == 0 {
		return []string{}
	}

	soft := k.softSkills
	if len(soft) > maxRoleSoftSkills {
		soft = soft[:maxRoleSoftSkills]
	}
	matched = append(matched, soft...)

	return dedupe(matched)
}

// IndustrySkills returns the skills of every known industry whose name
// occurs literally in text, deduplicated across industries.
func (k *Knowledgebase) IndustrySkills(text string) []string {
	text = strings.ToLower(text)
	if strings.TrimSpace(text) == "" {
		return []string{}
	}

	var matched []string
	for _, key := range k.industryKeys {
		if strings.Contains(text, key) {
			matched = append(matched, k.industries[key]...)
		}
	}

	return dedupe(matched)
}

// SoftSkills returns the universal soft-skill list.
func (k *Knowledgebase) SoftSkills() []string { return slices.Clone(k.softSkills) }

// TechnicalSkills returns the general technical lexicon.
func (k *Knowledgebase) TechnicalSkills() []string { return slices.Clone(k.technicalSkills) }

// ActionVerbs returns the action verb lexicon.
func (k *Knowledgebase) ActionVerbs() []string { return slices.Clone(k.actionVerbs) }

// ProfessionalAdjectives returns the professional adjective lexicon.
func (k *Knowledgebase) ProfessionalAdjectives() []string {
	return slices.Clone(k.professionalAdjectives)
}

// SectionHeaders returns the canonical section header lexicon.
func (k *Knowledgebase) SectionHeaders() []string { return slices.Clone(k.sectionHeaders) }

// ProjectMarkers returns the words that indicate projects or a portfolio.
func (k *Knowledgebase) ProjectMarkers() []string { return slices.Clone(k.projectMarkers) }

// Roles returns the curated role keys in sorted order.
func (k *Knowledgebase) Roles() []string { return slices.Clone(k.roleKeys) }

// Industries returns the known industry names in sorted order.
func (k *Knowledgebase) Industries() []string { return slices.Clone(k.industryKeys) }

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func normalizeList(list []string) []string {
	out := make([]string, 0, len(list))
	for _, item := range list {
		if item = normalize(item); item != "" {
			out = append(out, item)
		}
	}
	return dedupe(out)
}

func normalizeTable(table map[string][]string) map[string][]string {
	out := make(map[string][]string, len(table))
	for key, list := range table {
		key = normalize(key)
		if key == "" {
			continue
		}
		out[key] = dedupe(append(out[key], normalizeList(list)...))
	}
	return out
}

func sortedKeys(table map[string][]string) []string {
	keys := make([]string, 0, len(table))
	for key := range table {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

// dedupe keeps the first occurrence of every entry, preserving order.
func dedupe(list []string) []string {
	seen := make(map[string]struct{}, len(list))
	out := make([]string, 0, len(list))
	for _, item := range list {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
