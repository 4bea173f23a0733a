package formatters

import (
	"fmt"
	"strings"

	"resumescan/internal/types"
)

// AnalysisMarkdownFormatter handles markdown formatting for analysis reports
type AnalysisMarkdownFormatter struct{}

func (amf *AnalysisMarkdownFormatter) Format(data any) (string, error) {
	report, err := asAnalysisReport(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder

	output.WriteString("# Resume Analysis\n\n")
	fmt.Fprintf(&output, "**Overall Score:** %d/100 (%s)\n\n", report.OverallScore, tierLabel(report.Tier))
	if report.DetectedIndustry != "" {
		fmt.Fprintf(&output, "**Detected Industry:** %s\n\n", titleCase(report.DetectedIndustry))
	}
	fmt.Fprintf(&output, "**Grammar Score:** %d/100\n\n", report.GrammarScore)

	output.WriteString("## Scores\n\n")
	output.WriteString("| Area | Score |\n|------|------:|\n")
	for _, name := range subScoreOrder {
		if score, ok := report.SubScores[name]; ok {
			fmt.Fprintf(&output, "| %s | %d |\n", titleCase(name), score)
		}
	}
	output.WriteString("\n")

	if len(report.FoundKeywords) > 0 || len(report.MissingKeywords) > 0 {
		output.WriteString("## Keywords\n\n")
		if len(report.FoundKeywords) > 0 {
			fmt.Fprintf(&output, "**Found:** %s\n\n", strings.Join(report.FoundKeywords, ", "))
		}
		if len(report.MissingKeywords) > 0 {
			fmt.Fprintf(&output, "**Missing:** %s\n\n", strings.Join(report.MissingKeywords, ", "))
		}
		if len(report.Detail.JobKeywordsMissing) > 0 {
			fmt.Fprintf(&output, "**Missing from job description:** %s\n\n", strings.Join(report.Detail.JobKeywordsMissing, ", "))
		}
	}

	if len(report.Suggestions) > 0 {
		output.WriteString("## Top Suggestions\n\n")
		writeNumbered(&output, report.Suggestions)
		output.WriteString("\n")
	}

	if len(report.Issues) > 0 {
		output.WriteString("## Issues\n\n")
		writeIssuesMarkdown(&output, report.Issues)
		output.WriteString("\n")
	}

	if e := report.Enrichment; e != nil {
		output.WriteString("## AI Review\n\n")
		fmt.Fprintf(&output, "**Score:** %d/100\n\n", e.Score)
		if len(e.Strengths) > 0 {
			output.WriteString("### Strengths\n")
			writeList(&output, "- ", e.Strengths)
			output.WriteString("\n")
		}
		if len(e.Weaknesses) > 0 {
			output.WriteString("### Weaknesses\n")
			writeList(&output, "- ", e.Weaknesses)
			output.WriteString("\n")
		}
	}

	fmt.Fprintf(&output, "_%d words, %d sections, analyzed in %dms_\n",
		report.Metrics.WordCount, report.Metrics.SectionCount, report.Metrics.ElapsedMs)

	return output.String(), nil
}

func (amf *AnalysisMarkdownFormatter) SupportedType() string {
	return "AnalysisReport"
}

// GrammarMarkdownFormatter handles markdown formatting for grammar reports
type GrammarMarkdownFormatter struct{}

func (gmf *GrammarMarkdownFormatter) Format(data any) (string, error) {
	report, err := asGrammarReport(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder

	output.WriteString("# Grammar Check\n\n")
	fmt.Fprintf(&output, "**Score:** %d/100\n\n", report.Score)

	if len(report.Issues) == 0 {
		output.WriteString("## No Issues Found\n")
		return output.String(), nil
	}

	output.WriteString("## Issues\n\n")
	writeIssuesMarkdown(&output, report.Issues)
	output.WriteString("\n")

	if len(report.Suggestions) > 0 {
		output.WriteString("## Suggestions\n\n")
		writeNumbered(&output, report.Suggestions)
	}

	return output.String(), nil
}

func (gmf *GrammarMarkdownFormatter) SupportedType() string {
	return "GrammarReport"
}

func writeIssuesMarkdown(b *strings.Builder, issues []types.Issue) {
	b.WriteString("| Severity | Category | Text | Suggestion | Field |\n")
	b.WriteString("|----------|----------|------|------------|-------|\n")
	for _, issue := range issues {
		fmt.Fprintf(b, "| %s | %s | %s | %s | %s |\n",
			issue.Severity, issue.Category,
			escapeCell(issue.Text), escapeCell(issue.Suggestion), issue.Field)
	}
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
