package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyzeKeywords_TechnologySaturated(t *testing.T) {
	n := Normalize(techResume())

	result := AnalyzeKeywords(n.Text, "")

	assert.Equal(t, "technology", result.DetectedIndustry)
	assert.Equal(t, 100, result.IndustryMatch)
	assert.Empty(t, result.Missing)
	assert.Len(t, result.Found, len(industries[0].Keywords))
}

func TestAnalyzeKeywords_NoMatchFallsBack(t *testing.T) {
	result := AnalyzeKeywords("zzz qqq", "")

	assert.Equal(t, FallbackIndustry, result.DetectedIndustry)
	assert.Equal(t, 0, result.IndustryMatch)
	assert.Empty(t, result.Found)
	assert.Empty(t, result.Missing)
	assert.Equal(t, 0, result.ActionVerbScore)
	assert.Equal(t, 0, result.MetricsScore)
}

func TestAnalyzeKeywords_TieGoesToFirstDeclared(t *testing.T) {
	// one technology keyword and one marketing keyword
	result := AnalyzeKeywords("python and seo", "")
	assert.Equal(t, "technology", result.DetectedIndustry)
}

func TestAnalyzeKeywords_MissingCappedAndOrdered(t *testing.T) {
	result := AnalyzeKeywords("python", "")

	assert.Equal(t, "technology", result.DetectedIndustry)
	assert.Equal(t, 5, result.IndustryMatch) // 1 of 20
	assert.Len(t, result.Missing, missingKeywordCap)
	assert.Equal(t, "javascript", result.Missing[0])
}

func TestAnalyzeKeywords_ActionVerbsAndMetrics(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		wantVerbs   int
		wantMetrics int
	}{
		{"none", "worked at a place", 0, 0},
		{"some", "led a team, managed budgets, increased sales by 20%", 30, 20},
		{"saturated", strings.Join(actionVerbs, " ") + " % $ roi kpi million", 100, 100},
		{"verbs are whole words", "skilled enabled", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := AnalyzeKeywords(tt.text, "")
			assert.Equal(t, tt.wantVerbs, result.ActionVerbScore)
			assert.Equal(t, tt.wantMetrics, result.MetricsScore)
		})
	}
}

func TestAnalyzeKeywords_JobDescription(t *testing.T) {
	result := AnalyzeKeywords("python docker", "We need Python, Docker and Kubernetes experience")

	assert.Equal(t, []string{"python", "docker"}, result.JobKeywordsMatched)
	assert.Equal(t, []string{"kubernetes"}, result.JobKeywordsMissing)

	without := AnalyzeKeywords("python docker", "")
	assert.Equal(t, without.IndustryMatch, result.IndustryMatch, "job description must not affect industry match")
}

func TestRatioScore(t *testing.T) {
	assert.Equal(t, 0, ratioScore(3, 0))
	assert.Equal(t, 0, ratioScore(0, 10))
	assert.Equal(t, 50, ratioScore(5, 10))
	assert.Equal(t, 100, ratioScore(15, 10))
}
