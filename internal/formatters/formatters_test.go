package formatters

import (
	"encoding/json"
	"strings"
	"testing"

	"resumescan/internal/types"
)

func sampleAnalysis() *types.AnalysisReport {
	return &types.AnalysisReport{
		OverallScore: 74,
		Tier:         types.TierGood,
		SubScores: map[string]int{
			types.ScoreKeywords:   80,
			types.ScoreExperience: 70,
			types.ScoreEducation:  60,
			types.ScoreFormatting: 90,
			types.ScoreEnrichment: 50,
		},
		DetectedIndustry: "technology",
		FoundKeywords:    []string{"python", "aws"},
		MissingKeywords:  []string{"kubernetes"},
		GrammarScore:     85,
		Issues: []types.Issue{
			{Category: types.CategorySpelling, Severity: types.SeverityHigh, Text: "recieve", Suggestion: "receive", Field: "summary"},
		},
		Suggestions: []string{"Add metrics", "Fix spelling"},
		Enrichment:  &types.Enrichment{Score: 66, Strengths: []string{"Clear"}, Provider: "gemini", Model: "m"},
	}
}

func sampleGrammar() *types.GrammarReport {
	return &types.GrammarReport{
		Score: 82,
		Issues: []types.Issue{
			{Category: types.CategoryPunctuation, Severity: types.SeverityLow, Text: "a|b", Suggestion: "a, b"},
		},
		BySeverity:  map[types.Severity]int{types.SeverityLow: 1},
		ByCategory:  map[types.IssueCategory]int{types.CategoryPunctuation: 1},
		Suggestions: []string{"Check punctuation"},
	}
}

func TestRegistryFormats(t *testing.T) {
	registry := NewFormatterRegistry()

	tests := []struct {
		name   string
		data   any
		format string
		want   []string
	}{
		{"analysis text", sampleAnalysis(), FormatText, []string{
			"=== RESUME ANALYSIS ===", "Overall Score: 74/100 (Good)", "Detected Industry: Technology",
			"Keywords missing: kubernetes", "1. Add metrics", `[high] spelling: "recieve" in summary`, "(gemini m)",
		}},
		{"analysis value markdown", *sampleAnalysis(), FormatMarkdown, []string{
			"# Resume Analysis", "| Keywords | 80 |", "| Enrichment | 50 |", "**Missing:** kubernetes", "## AI Review",
		}},
		{"grammar text", sampleGrammar(), FormatText, []string{
			"Score: 82/100", "Low: 1", "Punctuation: 1", "Suggestion: a, b",
		}},
		{"grammar markdown escapes pipes", sampleGrammar(), FormatMarkdown, []string{
			"# Grammar Check", `a\|b`,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := registry.Format(tt.data, tt.format)
			if err != nil {
				t.Fatalf("Format() error = %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
		})
	}
}

func TestSubScoresKeepDisplayOrder(t *testing.T) {
	out, err := NewFormatterRegistry().Format(sampleAnalysis(), FormatText)
	if err != nil {
		t.Fatal(err)
	}
	last := -1
	for _, name := range []string{"Keywords:", "Experience:", "Education:", "Formatting:", "Enrichment:"} {
		idx := strings.Index(out, name)
		if idx <= last {
			t.Fatalf("%s out of order in:\n%s", name, out)
		}
		last = idx
	}
}

func TestJSONFormatterRoundTrips(t *testing.T) {
	out, err := NewFormatterRegistry().Format(sampleAnalysis(), FormatJSON)
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	var decoded types.AnalysisReport
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.OverallScore != 74 || decoded.Tier != types.TierGood {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestGrammarWithoutIssues(t *testing.T) {
	registry := NewFormatterRegistry()
	report := &types.GrammarReport{Score: 100}

	text, _ := registry.Format(report, FormatText)
	if !strings.Contains(text, "No issues found.") {
		t.Errorf("text output = %q", text)
	}
	md, _ := registry.Format(report, FormatMarkdown)
	if !strings.Contains(md, "## No Issues Found") {
		t.Errorf("markdown output = %q", md)
	}
}

func TestFormatErrors(t *testing.T) {
	registry := NewFormatterRegistry()

	if _, err := registry.Format(sampleAnalysis(), "xml"); err == nil {
		t.Error("unknown format should fail")
	}
	if _, err := registry.Format("plain string", FormatText); err == nil {
		t.Error("text format has no formatter for arbitrary data")
	}
	if _, err := (&AnalysisTextFormatter{}).Format(sampleGrammar()); err == nil {
		t.Error("analysis formatter should reject grammar reports")
	}
	var nilReport *types.AnalysisReport
	if _, err := (&AnalysisMarkdownFormatter{}).Format(nilReport); err == nil {
		t.Error("nil report should be rejected")
	}

	got := registry.GetSupportedFormats()
	if strings.Join(got, ",") != "json,markdown,text" {
		t.Errorf("GetSupportedFormats() = %v", got)
	}
}
