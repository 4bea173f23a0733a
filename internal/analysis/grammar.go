package analysis

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"resumescan/internal/types"
)

// DefaultContextWindow is the number of bytes kept on each side of a match
const DefaultContextWindow = 30

// Penalties are the per-issue deductions used by GrammarScore
type Penalties struct {
	High   int `mapstructure:"high" validate:"gte=0,lte=100"`
	Medium int `mapstructure:"medium" validate:"gte=0,lte=100"`
	Low    int `mapstructure:"low" validate:"gte=0,lte=100"`
	Floor  int `mapstructure:"floor" validate:"gte=0,lte=100"`
}

// DefaultPenalties returns the deductions applied when none are configured
func DefaultPenalties() Penalties {
	return Penalties{High: 15, Medium: 8, Low: 3, Floor: 20}
}

// CheckFragments runs every grammar rule over every fragment once and
// returns the findings ordered by fragment, rule, then position.
func CheckFragments(fragments []types.TextFragment) []types.Issue {
	return checkFragments(fragments, DefaultContextWindow)
}

func checkFragments(fragments []types.TextFragment, window int) []types.Issue {
	if window <= 0 {
		window = DefaultContextWindow
	}
	issues := []types.Issue{}
	for _, frag := range fragments {
		for i := range grammarRules {
			issues = append(issues, applyRule(&grammarRules[i], frag, window)...)
		}
	}
	return issues
}

func applyRule(rule *grammarRule, frag types.TextFragment, window int) []types.Issue {
	var issues []types.Issue
	var locs [][]int
	if rule.Find != nil {
		locs = rule.Find(frag.Text)
	} else {
		locs = rule.Pattern.FindAllStringSubmatchIndex(frag.Text, -1)
	}
	for _, loc := range locs {
		if rule.Accept != nil && !rule.Accept(submatches(frag.Text, loc)) {
			continue
		}
		start, end := loc[0], loc[1]
		if len(loc) >= 4 && loc[2] >= 0 {
			start, end = loc[2], loc[3]
		}
		matched := frag.Text[start:end]

		suggestion := rule.Advice
		if rule.Correction != "" {
			suggestion = matchCase(strings.TrimSpace(matched), rule.Correction)
		}

		issues = append(issues, types.Issue{
			Category:   rule.Category,
			Severity:   SeverityFor(rule.Category),
			Text:       matched,
			Suggestion: suggestion,
			Context:    contextWindow(frag.Text, start, end, window),
			Section:    frag.Section,
			Field:      frag.Field,
			Offset:     start,
			Source:     types.SourceRule,
		})
	}
	return issues
}

func submatches(s string, loc []int) []string {
	groups := make([]string, len(loc)/2)
	for i := range groups {
		if loc[2*i] >= 0 {
			groups[i] = s[loc[2*i]:loc[2*i+1]]
		}
	}
	return groups
}

// contextWindow returns up to window bytes either side of [start,end),
// clipped to the text and widened to rune boundaries.
func contextWindow(text string, start, end, window int) string {
	start = min(max(0, start), len(text))
	end = min(max(start, end), len(text))
	from := max(0, start-window)
	to := min(len(text), end+window)
	for from > 0 && !utf8.RuneStart(text[from]) {
		from--
	}
	for to < len(text) && !utf8.RuneStart(text[to]) {
		to++
	}
	return strings.TrimSpace(text[from:to])
}

// matchCase capitalizes replacement when original starts with an upper
// case letter.
func matchCase(original, replacement string) string {
	first, _ := utf8.DecodeRuneInString(original)
	if !unicode.IsUpper(first) {
		return replacement
	}
	r, size := utf8.DecodeRuneInString(replacement)
	return string(unicode.ToUpper(r)) + replacement[size:]
}

// GrammarScore starts at 100 and subtracts the configured penalty for
// every issue, never going below the floor.
func GrammarScore(issues []types.Issue, p Penalties) int {
	score := 100
	for _, issue := range issues {
		switch issue.Severity {
		case types.SeverityHigh:
			score -= p.High
		case types.SeverityMedium:
			score -= p.Medium
		default:
			score -= p.Low
		}
	}
	return clamp(score, p.Floor, 100)
}

// CountIssues tallies issues by severity and by category
func CountIssues(issues []types.Issue) (map[types.Severity]int, map[types.IssueCategory]int) {
	bySeverity := map[types.Severity]int{
		types.SeverityHigh:   0,
		types.SeverityMedium: 0,
		types.SeverityLow:    0,
	}
	byCategory := make(map[types.IssueCategory]int)
	for _, issue := range issues {
		bySeverity[issue.Severity]++
		byCategory[issue.Category]++
	}
	return bySeverity, byCategory
}
