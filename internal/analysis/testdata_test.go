package analysis

import (
	"strings"

	"resumescan/internal/types"
)

func techResume() *types.ResumeRecord {
	var allTech []string
	for _, ind := range industries {
		if ind.Name == "technology" {
			allTech = ind.Keywords
		}
	}
	return &types.ResumeRecord{
		Personal: &types.PersonalInfo{
			Name:    "Ada Lovelace",
			Title:   "Senior Software Engineer",
			Email:   "ada@example.com",
			Phone:   "+1 (555) 010-2030",
			Address: "London, UK",
		},
		Summary: "Engineer working with " + strings.Join(allTech, ", ") + ".",
		Experience: []types.Experience{
			{
				Position:    "Senior Software Engineer",
				Company:     "Google LLC",
				StartDate:   "2019-01",
				Current:     true,
				Description: "Led migration of 40 microservices to kubernetes, reduced latency by 35% and saved $200k per year. Mentored six engineers and delivered a new ci/cd platform on aws.",
			},
			{
				Position:    "Software Engineer",
				Company:     "Acme Inc",
				StartDate:   "2016-06",
				EndDate:     "2018-12",
				Description: "Developed python and golang services, improved test coverage to 90% and launched an internal api gateway used by 12 teams across the company.",
			},
		},
		Education: []types.Education{
			{Institution: "Stanford University", Degree: "Master of Science", Field: "Computer Science", GPA: "3.8", GraduationYear: "2016"},
		},
		Skills: []types.Skill{
			{Name: "Go", Category: "language", Level: "expert"},
			{Name: "Kubernetes", Category: "platform", Level: "advanced"},
		},
	}
}

func sampleResume() *types.ResumeRecord {
	return &types.ResumeRecord{
		Personal: &types.PersonalInfo{Name: "Sam Doe", Email: "sam@example.com"},
		Summary:  "I recieve many accomplishements and I am a team player.",
		Experience: []types.Experience{
			{Position: "Sales Associate", Company: "Shop", Description: "Responsible for the the register."},
		},
	}
}
