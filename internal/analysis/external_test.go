package analysis

import (
	"strings"
	"testing"

	"resumescan/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExternalIssues(t *testing.T) {
	frags := []types.TextFragment{
		{Text: "He has went to every standup.", Section: SectionExperience, Field: "experience[0].description"},
	}
	response := `Here is my review.

SPELLING:
- recieve → receive
- "acheive" -> "achieve" (common typo)

GRAMMAR ERRORS: has went → has gone; their team => the team
PUNCTUATION: none found
STYLE:
1. utilize → use`

	issues := ParseExternalIssues(response, frags)
	require.Len(t, issues, 5)

	assert.Equal(t, types.CategorySpelling, issues[0].Category)
	assert.Equal(t, "recieve", issues[0].Text)
	assert.Equal(t, "receive", issues[0].Suggestion)
	assert.Equal(t, types.SeverityHigh, issues[0].Severity)
	assert.Equal(t, -1, issues[0].Offset)

	assert.Equal(t, "acheive", issues[1].Text)
	assert.Equal(t, "achieve", issues[1].Suggestion)

	assert.Equal(t, types.CategoryGrammar, issues[2].Category)
	assert.Equal(t, "has went", issues[2].Text)
	assert.Equal(t, "experience[0].description", issues[2].Field)
	assert.Equal(t, 3, issues[2].Offset)
	assert.Contains(t, issues[2].Context, "has went")

	assert.Equal(t, "their team", issues[3].Text)

	assert.Equal(t, types.CategoryStyle, issues[4].Category)
	assert.Equal(t, types.SeverityLow, issues[4].Severity)
	assert.Equal(t, "utilize", issues[4].Text)

	for _, issue := range issues {
		assert.Equal(t, types.SourceExternal, issue.Source)
	}
}

func TestParseExternalIssues_Malformed(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"empty", ""},
		{"prose only", "The resume reads well and has no obvious errors."},
		{"header without items", "SPELLING:\nGRAMMAR:\n"},
		{"dangling arrows", "→\n-> \nfoo →\n → bar"},
		{"same on both sides", "fine → fine"},
		{"json", `{"issues": [}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.Empty(t, ParseExternalIssues(tt.response, nil))
			})
		})
	}
}

func TestParseExternalIssues_DeduplicatesAndCaps(t *testing.T) {
	response := "teh → the\nteh → the\n"
	for i := 0; i < 100; i++ {
		response += "w" + string(rune('a'+i%26)) + string(rune('a'+i/26)) + " → fixed\n"
	}
	issues := ParseExternalIssues(response, nil)
	assert.Len(t, issues, maxExternalIssues)
	assert.Equal(t, "teh", issues[0].Text)
	assert.NotEqual(t, "teh", issues[1].Text)
}

func TestParseExternalIssues_OffsetsIntoOriginalText(t *testing.T) {
	// Ⱥ lowercases to a longer byte sequence, as does an invalid byte
	text := strings.Repeat("Ⱥ", 40) + "\xff Teh report"
	frags := []types.TextFragment{{Text: text, Section: SectionSummary, Field: "summary"}}

	issues := ParseExternalIssues("teh → the", frags)
	require.Len(t, issues, 1)

	assert.Equal(t, strings.Index(text, "Teh"), issues[0].Offset)
	assert.Equal(t, "summary", issues[0].Field)
	assert.Contains(t, issues[0].Context, "Teh report")
}

func TestMergeIssues(t *testing.T) {
	rule := []types.Issue{{Text: "recieve", Field: "summary", Source: types.SourceRule}}
	external := []types.Issue{
		{Text: "Recieve", Field: "summary", Source: types.SourceExternal},
		{Text: "has went", Field: "summary", Source: types.SourceExternal},
	}

	merged := MergeIssues(rule, external)
	require.Len(t, merged, 2)
	assert.Equal(t, types.SourceRule, merged[0].Source)
	assert.Equal(t, "has went", merged[1].Text)
	assert.Equal(t, types.SourceExternal, merged[1].Source)
}
