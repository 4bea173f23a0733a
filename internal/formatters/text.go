package formatters

import (
	"fmt"
	"strings"

	"resumescan/internal/types"
)

// AnalysisTextFormatter handles text formatting for analysis reports
type AnalysisTextFormatter struct{}

func (atf *AnalysisTextFormatter) Format(data any) (string, error) {
	report, err := asAnalysisReport(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder

	output.WriteString("=== RESUME ANALYSIS ===\n\n")
	fmt.Fprintf(&output, "Overall Score: %d/100 (%s)\n", report.OverallScore, tierLabel(report.Tier))
	if report.DetectedIndustry != "" {
		fmt.Fprintf(&output, "Detected Industry: %s\n", titleCase(report.DetectedIndustry))
	}
	fmt.Fprintf(&output, "Grammar Score: %d/100\n\n", report.GrammarScore)

	output.WriteString("=== SCORES ===\n")
	for _, name := range subScoreOrder {
		if score, ok := report.SubScores[name]; ok {
			fmt.Fprintf(&output, "%-12s %3d/100\n", titleCase(name)+":", score)
		}
	}
	fmt.Fprintf(&output, "\nAction verbs: %d  Metrics: %d  Industry match: %d\n\n",
		report.Detail.ActionVerbs, report.Detail.Metrics, report.Detail.IndustryMatch)

	if len(report.FoundKeywords) > 0 {
		fmt.Fprintf(&output, "Keywords found: %s\n", strings.Join(report.FoundKeywords, ", "))
	}
	if len(report.MissingKeywords) > 0 {
		fmt.Fprintf(&output, "Keywords missing: %s\n", strings.Join(report.MissingKeywords, ", "))
	}
	if len(report.Detail.JobKeywordsMissing) > 0 {
		fmt.Fprintf(&output, "Job description keywords missing: %s\n", strings.Join(report.Detail.JobKeywordsMissing, ", "))
	}
	output.WriteString("\n")

	if len(report.Suggestions) > 0 {
		output.WriteString("=== TOP SUGGESTIONS ===\n")
		writeNumbered(&output, report.Suggestions)
		output.WriteString("\n")
	}

	if len(report.Issues) > 0 {
		output.WriteString("=== ISSUES ===\n")
		writeIssuesText(&output, report.Issues)
		output.WriteString("\n")
	}

	if e := report.Enrichment; e != nil {
		output.WriteString("=== AI REVIEW ===\n")
		fmt.Fprintf(&output, "Score: %d/100", e.Score)
		if e.Provider != "" {
			fmt.Fprintf(&output, " (%s %s)", e.Provider, e.Model)
		}
		output.WriteString("\n")
		if len(e.Strengths) > 0 {
			output.WriteString("Strengths:\n")
			writeList(&output, "- ", e.Strengths)
		}
		if len(e.Weaknesses) > 0 {
			output.WriteString("Weaknesses:\n")
			writeList(&output, "- ", e.Weaknesses)
		}
		output.WriteString("\n")
	}

	fmt.Fprintf(&output, "Words: %d  Sections: %d  Elapsed: %dms\n",
		report.Metrics.WordCount, report.Metrics.SectionCount, report.Metrics.ElapsedMs)

	return output.String(), nil
}

func (atf *AnalysisTextFormatter) SupportedType() string {
	return "AnalysisReport"
}

// GrammarTextFormatter handles text formatting for grammar reports
type GrammarTextFormatter struct{}

func (gtf *GrammarTextFormatter) Format(data any) (string, error) {
	report, err := asGrammarReport(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder

	output.WriteString("=== GRAMMAR CHECK ===\n\n")
	fmt.Fprintf(&output, "Score: %d/100\n", report.Score)
	if report.Enriched {
		output.WriteString("Includes AI review\n")
	}
	output.WriteString("\n")

	if len(report.Issues) == 0 {
		output.WriteString("No issues found.\n")
		return output.String(), nil
	}

	output.WriteString("=== SUMMARY ===\n")
	for _, sev := range sortedCounts(report.BySeverity) {
		fmt.Fprintf(&output, "%s: %d\n", titleCase(string(sev)), report.BySeverity[sev])
	}
	for _, cat := range sortedCounts(report.ByCategory) {
		fmt.Fprintf(&output, "%s: %d\n", titleCase(string(cat)), report.ByCategory[cat])
	}
	output.WriteString("\n")

	output.WriteString("=== ISSUES ===\n")
	writeIssuesText(&output, report.Issues)
	output.WriteString("\n")

	if len(report.Suggestions) > 0 {
		output.WriteString("=== SUGGESTIONS ===\n")
		writeNumbered(&output, report.Suggestions)
	}

	return output.String(), nil
}

func (gtf *GrammarTextFormatter) SupportedType() string {
	return "GrammarReport"
}

func writeIssuesText(b *strings.Builder, issues []types.Issue) {
	for i, issue := range issues {
		fmt.Fprintf(b, "%d. [%s] %s: %q", i+1, issue.Severity, issue.Category, issue.Text)
		if issue.Field != "" {
			fmt.Fprintf(b, " in %s", issue.Field)
		}
		b.WriteString("\n")
		if issue.Suggestion != "" {
			fmt.Fprintf(b, "   Suggestion: %s\n", issue.Suggestion)
		}
		if issue.Context != "" {
			fmt.Fprintf(b, "   Context: ...%s...\n", issue.Context)
		}
	}
}
