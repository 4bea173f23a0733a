package analysis

import (
	"strings"
	"unicode"

	"resumescan/internal/types"
)

type formattingCheck struct {
	points   int
	ok       func(*types.ResumeRecord) bool
	feedback string
}

var formattingChecks = []formattingCheck{
	{pointsName, hasFullName, "Include your full name (first and last)"},
	{pointsEmail, hasValidEmail, "Add a valid professional email address"},
	{pointsPhone, hasPhone, "Add a phone number"},
	{pointsAddress, func(r *types.ResumeRecord) bool { return strings.TrimSpace(personal(r).Address) != "" }, "Add your location (city and state or country)"},
	{pointsTitle, func(r *types.ResumeRecord) bool { return strings.TrimSpace(personal(r).Title) != "" }, "Add a professional title under your name"},
	{pointsSummary, func(r *types.ResumeRecord) bool { return len(strings.TrimSpace(r.Summary)) >= summaryMinLength }, "Write a professional summary of at least a few sentences"},
	{pointsExperience, func(r *types.ResumeRecord) bool { return len(r.Experience) > 0 }, "Add a work experience section"},
	{pointsEducation, func(r *types.ResumeRecord) bool { return len(r.Education) > 0 }, "Add an education section"},
	{pointsSkills, func(r *types.ResumeRecord) bool { return len(r.Skills) > 0 }, "Add a skills section"},
	{pointsDetail, hasDetailedExperience, "Give every position a detailed description"},
}

// ScoreFormatting runs the completeness checklist over a resume
func ScoreFormatting(r *types.ResumeRecord) SectionResult {
	if r == nil {
		r = &types.ResumeRecord{}
	}
	total := 0
	var feedback []string
	for _, check := range formattingChecks {
		if check.ok(r) {
			total += check.points
			continue
		}
		feedback = append(feedback, check.feedback)
	}
	return SectionResult{Score: clamp(total, 0, 100), Feedback: feedback}
}

var emptyPersonal = &types.PersonalInfo{}

func personal(r *types.ResumeRecord) *types.PersonalInfo {
	if r.Personal == nil {
		return emptyPersonal
	}
	return r.Personal
}

func hasFullName(r *types.ResumeRecord) bool {
	return len(strings.Fields(personal(r).Name)) >= 2
}

func hasValidEmail(r *types.ResumeRecord) bool {
	return emailPattern.MatchString(strings.TrimSpace(personal(r).Email))
}

func hasPhone(r *types.ResumeRecord) bool {
	phone := strings.TrimSpace(personal(r).Phone)
	if !phonePattern.MatchString(phone) {
		return false
	}
	digits := 0
	for _, c := range phone {
		if unicode.IsDigit(c) {
			digits++
		}
	}
	return digits >= phoneMinDigits
}

func hasDetailedExperience(r *types.ResumeRecord) bool {
	if len(r.Experience) == 0 {
		return false
	}
	for _, exp := range r.Experience {
		if len(strings.TrimSpace(exp.Description))+len(strings.TrimSpace(exp.Responsibilities)) < detailMinLength {
			return false
		}
	}
	return true
}
