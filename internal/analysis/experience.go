package analysis

import (
	"fmt"
	"strings"

	"resumescan/internal/types"
)

// ScoreExperience scores work history on quantity and on quality signals
// (seniority, description depth, company size). Each half is capped.
func ScoreExperience(entries []types.Experience) SectionResult {
	if len(entries) == 0 {
		return SectionResult{
			Score:    0,
			Feedback: []string{"Add your work experience with position, company, dates and a description of your impact"},
		}
	}

	quantity := min(len(entries)*experiencePerEntry, experienceQuantityCap)

	var feedback []string
	quality := 0
	for i, exp := range entries {
		label := experienceLabel(exp, i)

		if matchesAny(seniorityKeywords, exp.Position) {
			quality += seniorityBonus
		}

		detail := len(strings.TrimSpace(exp.Description)) + len(strings.TrimSpace(exp.Responsibilities))
		switch {
		case detail >= detailedMinLength:
			quality += descriptionBonus + detailedBonus
		case detail >= descriptionMinLength:
			quality += descriptionBonus
		default:
			feedback = append(feedback, fmt.Sprintf("Expand the description for %s with responsibilities and measurable results", label))
		}

		if matchesAny(companyHints, exp.Company) {
			quality += companySizeBonus
		}

		if strings.TrimSpace(exp.StartDate) == "" || (strings.TrimSpace(exp.EndDate) == "" && !exp.Current) {
			feedback = append(feedback, fmt.Sprintf("Add start and end dates for %s", label))
		}
	}
	quality = min(quality, experienceQualityCap)

	if len(entries) < 3 {
		feedback = append(feedback, "Include additional relevant positions, internships or freelance work")
	}

	return SectionResult{
		Score:    clamp(quantity+quality, 0, 100),
		Feedback: feedback,
	}
}

func experienceLabel(exp types.Experience, i int) string {
	position := strings.TrimSpace(exp.Position)
	company := strings.TrimSpace(exp.Company)
	switch {
	case position != "" && company != "":
		return fmt.Sprintf("%s at %s", position, company)
	case position != "":
		return position
	case company != "":
		return company
	default:
		return fmt.Sprintf("experience entry %d", i+1)
	}
}
