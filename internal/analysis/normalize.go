package analysis

import (
	"fmt"
	"strings"

	"resumescan/internal/types"
)

// Section names used for fragment attribution
const (
	SectionPersonal       = "personal"
	SectionSummary        = "summary"
	SectionExperience     = "experience"
	SectionEducation      = "education"
	SectionSkills         = "skills"
	SectionProjects       = "projects"
	SectionCertifications = "certifications"
	SectionAdditional     = "additional"
)

// Normalized is the flattened view of a resume shared by all analyzers
type Normalized struct {
	// Text is every textual field, lowercased and joined by newlines.
	Text         string
	Fragments    []types.TextFragment
	WordCount    int
	SectionCount int
}

// Normalize flattens a resume. Nil records and nil nested fields are
// treated as empty. Fields are always visited in the same order.
func Normalize(r *types.ResumeRecord) Normalized {
	if r == nil {
		r = &types.ResumeRecord{}
	}

	n := &normalizer{}

	if p := r.Personal; p != nil {
		n.plain(SectionPersonal, p.Name)
		n.fragment(SectionPersonal, "title", p.Title)
		n.plain(SectionPersonal, p.Email, p.Phone, p.Address)
		n.plain(SectionPersonal, p.Links...)
	}

	n.fragment(SectionSummary, "summary", r.Summary)

	for i, exp := range r.Experience {
		n.fragment(SectionExperience, fmt.Sprintf("experience[%d].position", i), exp.Position)
		n.plain(SectionExperience, exp.Company)
		n.fragment(SectionExperience, fmt.Sprintf("experience[%d].description", i), exp.Description)
		n.fragment(SectionExperience, fmt.Sprintf("experience[%d].responsibilities", i), exp.Responsibilities)
	}

	for i, edu := range r.Education {
		n.plain(SectionEducation, edu.Institution, edu.Degree)
		n.fragment(SectionEducation, fmt.Sprintf("education[%d].field", i), edu.Field)
	}

	for _, skill := range r.Skills {
		n.plain(SectionSkills, skill.Name, skill.Category)
	}

	for i, proj := range r.Projects {
		n.plain(SectionProjects, proj.Name)
		n.fragment(SectionProjects, fmt.Sprintf("projects[%d].description", i), proj.Description)
		n.plain(SectionProjects, proj.Technologies...)
	}

	for _, cert := range r.Certifications {
		n.plain(SectionCertifications, cert.Name, cert.Issuer)
	}

	for i, info := range r.AdditionalInfo {
		n.plain(SectionAdditional, info.Title)
		n.fragment(SectionAdditional, fmt.Sprintf("additionalInfo[%d].content", i), info.Content)
	}

	text := strings.ToLower(strings.Join(n.parts, "\n"))
	return Normalized{
		Text:         text,
		Fragments:    n.fragments,
		WordCount:    len(wordPattern.FindAllStringIndex(text, -1)),
		SectionCount: len(n.sections),
	}
}

type normalizer struct {
	parts     []string
	fragments []types.TextFragment
	sections  map[string]struct{}
}

// plain adds values to the keyword text without making them fragments.
func (n *normalizer) plain(section string, values ...string) {
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		n.parts = append(n.parts, v)
		n.mark(section)
	}
}

// fragment adds free text to both the keyword text and the fragment list.
func (n *normalizer) fragment(section, field, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	n.parts = append(n.parts, value)
	n.fragments = append(n.fragments, types.TextFragment{
		Text:    value,
		Section: section,
		Field:   field,
	})
	n.mark(section)
}

func (n *normalizer) mark(section string) {
	if n.sections == nil {
		n.sections = make(map[string]struct{})
	}
	n.sections[section] = struct{}{}
}
