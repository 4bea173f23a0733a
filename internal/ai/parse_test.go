package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnrichment(t *testing.T) {
	tests := []struct {
		name       string
		reply      string
		score      int
		strengths  []string
		weaknesses []string
		keywords   []string
	}{
		{
			name:       "plain json",
			reply:      `{"score": 72, "strengths": ["Clear impact"], "weaknesses": ["No summary"], "keywords": ["kubernetes"]}`,
			score:      72,
			strengths:  []string{"Clear impact"},
			weaknesses: []string{"No summary"},
			keywords:   []string{"kubernetes"},
		},
		{
			name:      "fenced json with string lists and float score",
			reply:     "Here you go:\n```json\n{\"score\": 80.6, \"strengths\": \"metrics; verbs\", \"keywords\": \"go, sql, go\"}\n```",
			score:     81,
			strengths: []string{"metrics", "verbs"},
			keywords:  []string{"go", "sql"},
		},
		{
			name:  "score clamped",
			reply: `{"score": 140}`,
			score: 100,
		},
		{
			name: "section layout",
			reply: `**SCORE:** 64/100
STRENGTHS:
- Quantified achievements
- Strong action verbs
WEAKNESSES:
1. Summary is generic
2) Missing certifications
KEYWORDS: terraform, aws, ci/cd`,
			score:      64,
			strengths:  []string{"Quantified achievements", "Strong action verbs"},
			weaknesses: []string{"Summary is generic", "Missing certifications"},
			keywords:   []string{"terraform", "aws", "ci/cd"},
		},
		{
			name:  "none items dropped",
			reply: "SCORE: 55\nWEAKNESSES: none",
			score: 55,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := parseEnrichment(tt.reply)
			require.NoError(t, err)
			assert.Equal(t, tt.score, e.Score)
			assert.ElementsMatch(t, tt.strengths, e.Strengths)
			assert.ElementsMatch(t, tt.weaknesses, e.Weaknesses)
			assert.ElementsMatch(t, tt.keywords, e.Keywords)
		})
	}
}

func TestParseEnrichmentRejectsReplyWithoutScore(t *testing.T) {
	for _, reply := range []string{
		"",
		"I cannot help with that.",
		`{"strengths": ["x"]}`,
		"STRENGTHS: good formatting",
		"{not json",
	} {
		_, err := parseEnrichment(reply)
		assert.Error(t, err, "reply %q", reply)
	}
}

func TestCleanItemsCaps(t *testing.T) {
	items := []string{"a", "b", "c", "d"}
	assert.Equal(t, []string{"a", "b"}, cleanItems(items, 2))
	assert.Equal(t, []string{"A"}, cleanItems([]string{" A ", "a", `"a"`, ""}, 5))
}

func TestRenderPrompt(t *testing.T) {
	assert.Equal(t, "resume: R, jd: J", renderPrompt("resume: %s, jd: %s", "R", "J"))
	assert.Equal(t, "Review this\n\nR", renderPrompt("Review this", "R", ""))
}
