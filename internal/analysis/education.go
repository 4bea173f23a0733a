package analysis

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"resumescan/internal/types"
)

// ScoreEducation scores education entries by degree level, institution,
// GPA and recency. now anchors the recency window.
func ScoreEducation(entries []types.Education, now time.Time) SectionResult {
	if len(entries) == 0 {
		return SectionResult{
			Score:    0,
			Feedback: []string{"Add your education history, including degree, institution and graduation year"},
		}
	}

	var feedback []string
	total := 0
	for i, edu := range entries {
		label := educationLabel(edu, i)
		points := 0

		if lvl, ok := degreeLevelOf(edu.Degree); ok {
			points += lvl.Points
		} else {
			feedback = append(feedback, fmt.Sprintf("Specify the degree level for %s (e.g. Bachelor of Science)", label))
		}

		if matchesAny(prestigeInstitutions, edu.Institution) {
			points += prestigeBonus
		}
		if strings.TrimSpace(edu.Institution) == "" {
			feedback = append(feedback, fmt.Sprintf("Add the institution name for %s", label))
		}

		if gpa, ok := parseGPA(edu.GPA); ok && gpa >= gpaThreshold {
			points += gpaBonus
		}

		if year, ok := parseYear(edu.GraduationYear); ok {
			if age := now.Year() - year; age >= 0 && age <= recencyYears {
				points += recencyBonus
			}
		} else {
			feedback = append(feedback, fmt.Sprintf("Add a graduation year for %s", label))
		}

		total += points
	}

	score := clamp(total*100/(len(entries)*maxEducationPerEntry), 0, 100)
	if len(feedback) == 0 && score < 50 {
		feedback = append(feedback, "Highlight honors, relevant coursework or a strong GPA to strengthen your education section")
	}
	return SectionResult{Score: score, Feedback: feedback}
}

func degreeLevelOf(degree string) (degreeLevel, bool) {
	if strings.TrimSpace(degree) == "" {
		return degreeLevel{}, false
	}
	for _, lvl := range degreeLevels {
		if matchesAny(lvl.Patterns, degree) {
			return lvl, true
		}
	}
	return degreeLevel{}, false
}

// parseGPA reads the first number of a GPA string such as "3.8/4.0".
// Values outside the 4.0 scale are ignored.
func parseGPA(s string) (float64, bool) {
	m := gpaPattern.FindString(s)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil || v <= 0 || v > gpaScaleMax {
		return 0, false
	}
	return v, true
}

func parseYear(s string) (int, bool) {
	m := yearPattern.FindString(s)
	if m == "" {
		return 0, false
	}
	y, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return y, true
}

func educationLabel(edu types.Education, i int) string {
	if name := strings.TrimSpace(edu.Institution); name != "" {
		return name
	}
	return fmt.Sprintf("education entry %d", i+1)
}
