package analysis

import (
	"regexp"
	"strings"

	"resumescan/internal/types"
)

// maxExternalIssues bounds how much an enrichment response can add
const maxExternalIssues = 50

var (
	sectionHeader  = regexp.MustCompile(`(?i)^\s*[#*\-]*\s*(spelling|grammar|punctuation|style|resume)\b[^:]*:\s*(.*)$`)
	arrowSeparator = regexp.MustCompile(`\s*(?:→|->|=>)\s*`)
	itemTrim       = "-*•·\"'`“”‘’ \t"
	listNumber     = regexp.MustCompile(`^\d+[.)]\s*`)
	trailingNote   = regexp.MustCompile(`\s*\([^)]*\)\s*$`)
)

// ParseExternalIssues extracts "wrong → correct" pairs from a provider
// response. Pairs under a SPELLING/GRAMMAR/PUNCTUATION/STYLE/RESUME header
// take that category; pairs before any header are grammar. Anything that
// does not parse is skipped. Fragments are used to locate each finding.
func ParseExternalIssues(response string, fragments []types.TextFragment) []types.Issue {
	issues := []types.Issue{}
	category := types.CategoryGrammar
	seen := make(map[string]struct{})

	for _, line := range strings.Split(response, "\n") {
		if len(issues) >= maxExternalIssues {
			break
		}
		if m := sectionHeader.FindStringSubmatch(line); m != nil {
			category = types.IssueCategory(strings.ToLower(m[1]))
			line = m[2]
		}
		for _, item := range strings.Split(line, ";") {
			wrong, correct, ok := parsePair(item)
			if !ok {
				continue
			}
			key := string(category) + "\x00" + strings.ToLower(wrong) + "\x00" + strings.ToLower(correct)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			issues = append(issues, locateExternal(category, wrong, correct, fragments))
			if len(issues) >= maxExternalIssues {
				break
			}
		}
	}
	return issues
}

func parsePair(item string) (wrong, correct string, ok bool) {
	parts := arrowSeparator.Split(item, 2)
	if len(parts) != 2 {
		return "", "", false
	}
	wrong = strings.Trim(listNumber.ReplaceAllString(strings.Trim(parts[0], itemTrim), ""), itemTrim)
	correct = strings.Trim(trailingNote.ReplaceAllString(parts[1], ""), itemTrim)
	if wrong == "" || correct == "" || strings.EqualFold(wrong, correct) {
		return "", "", false
	}
	return wrong, correct, true
}

func locateExternal(category types.IssueCategory, wrong, correct string, fragments []types.TextFragment) types.Issue {
	issue := types.Issue{
		Category:   category,
		Severity:   SeverityFor(category),
		Text:       wrong,
		Suggestion: correct,
		Offset:     -1,
		Source:     types.SourceExternal,
	}
	// match in place so offsets index frag.Text, not a lowered copy
	needle := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(wrong))
	for _, frag := range fragments {
		loc := needle.FindStringIndex(frag.Text)
		if loc == nil {
			continue
		}
		issue.Section = frag.Section
		issue.Field = frag.Field
		issue.Offset = loc[0]
		issue.Context = contextWindow(frag.Text, loc[0], loc[1], DefaultContextWindow)
		break
	}
	return issue
}

// MergeIssues appends external findings to rule findings, dropping
// external ones that repeat a rule finding for the same text.
func MergeIssues(ruleIssues, external []types.Issue) []types.Issue {
	known := make(map[string]struct{}, len(ruleIssues))
	for _, issue := range ruleIssues {
		known[strings.ToLower(strings.TrimSpace(issue.Text))+"\x00"+issue.Field] = struct{}{}
	}
	merged := make([]types.Issue, 0, len(ruleIssues)+len(external))
	merged = append(merged, ruleIssues...)
	for _, issue := range external {
		if _, dup := known[strings.ToLower(strings.TrimSpace(issue.Text))+"\x00"+issue.Field]; dup {
			continue
		}
		merged = append(merged, issue)
	}
	return merged
}
