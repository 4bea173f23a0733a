package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"resumescan/internal/types"
)

// NeutralEnrichmentScore stands in for the enrichment sub-score when no
// enrichment result is available.
const NeutralEnrichmentScore = 50

// DefaultSuggestionLimit bounds the suggestion list of a report
const DefaultSuggestionLimit = 8

const weightTolerance = 1e-6

// Weights is the fixed weight vector of the overall score. It must sum to 1.
type Weights struct {
	Keywords   float64 `mapstructure:"keywords" validate:"gte=0,lte=1"`
	Experience float64 `mapstructure:"experience" validate:"gte=0,lte=1"`
	Education  float64 `mapstructure:"education" validate:"gte=0,lte=1"`
	Formatting float64 `mapstructure:"formatting" validate:"gte=0,lte=1"`
	Enrichment float64 `mapstructure:"enrichment" validate:"gte=0,lte=1"`
}

// DefaultWeights returns keywords 0.25, experience 0.25, education 0.15,
// formatting 0.15 and enrichment 0.20.
func DefaultWeights() Weights {
	return Weights{
		Keywords:   0.25,
		Experience: 0.25,
		Education:  0.15,
		Formatting: 0.15,
		Enrichment: 0.20,
	}
}

// Validate checks that the weights sum to 1
func (w Weights) Validate() error {
	sum := w.Keywords + w.Experience + w.Education + w.Formatting + w.Enrichment
	if math.Abs(sum-1.0) > weightTolerance {
		return fmt.Errorf("score weights must sum to 1.0, got %.4f", sum)
	}
	return nil
}

// AggregateInput gathers every analyzer result for one resume
type AggregateInput struct {
	Keywords   KeywordResult
	Experience SectionResult
	Education  SectionResult
	Formatting SectionResult
	Issues     []types.Issue
	// Enrichment is nil when enrichment was disabled or failed.
	Enrichment *types.Enrichment
	// EnrichmentNote explains a failed enrichment to the reader.
	EnrichmentNote string
}

// AggregateResult is the combined score and ranked suggestions
type AggregateResult struct {
	OverallScore int
	Tier         types.Tier
	SubScores    map[string]int
	Suggestions  []string
}

// Aggregate combines analyzer results into an overall score, a tier and
// at most limit suggestions. It is deterministic for fixed input.
func Aggregate(in AggregateInput, w Weights, limit int) AggregateResult {
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}

	enrichment := NeutralEnrichmentScore
	if in.Enrichment != nil {
		enrichment = clamp(in.Enrichment.Score, 0, 100)
	}

	sub := map[string]int{
		types.ScoreKeywords:   clamp(in.Keywords.IndustryMatch, 0, 100),
		types.ScoreExperience: clamp(in.Experience.Score, 0, 100),
		types.ScoreEducation:  clamp(in.Education.Score, 0, 100),
		types.ScoreFormatting: clamp(in.Formatting.Score, 0, 100),
		types.ScoreEnrichment: enrichment,
	}

	overall := OverallScore(sub, w)
	tier := TierFor(overall)

	return AggregateResult{
		OverallScore: overall,
		Tier:         tier,
		SubScores:    sub,
		Suggestions:  buildSuggestions(in, sub, tier, limit),
	}
}

// OverallScore computes round(sum of weight times sub-score), clamped to [0,100].
// Terms are added in a fixed order so the result is reproducible.
func OverallScore(sub map[string]int, w Weights) int {
	sum := w.Keywords*float64(sub[types.ScoreKeywords]) +
		w.Experience*float64(sub[types.ScoreExperience]) +
		w.Education*float64(sub[types.ScoreEducation]) +
		w.Formatting*float64(sub[types.ScoreFormatting]) +
		w.Enrichment*float64(sub[types.ScoreEnrichment])
	return clamp(int(math.Round(sum)), 0, 100)
}

// TierFor maps an overall score to its qualitative tier
func TierFor(score int) types.Tier {
	switch {
	case score >= 80:
		return types.TierExcellent
	case score >= 60:
		return types.TierGood
	default:
		return types.TierCritical
	}
}

var leadSuggestion = map[types.Tier]string{
	types.TierCritical:  "Your resume needs significant work to pass ATS screening; start with the items below",
	types.TierGood:      "Your resume is solid; the changes below can move it into the top tier",
	types.TierExcellent: "Your resume is in excellent shape; only minor polish remains",
}

func buildSuggestions(in AggregateInput, sub map[string]int, tier types.Tier, limit int) []string {
	s := &suggestionList{limit: limit, seen: make(map[string]struct{})}

	s.add(leadSuggestion[tier])
	s.add(in.EnrichmentNote)

	for _, issue := range in.Issues {
		if issue.Severity == types.SeverityHigh {
			s.add(issueSuggestion(issue))
		}
	}

	// weakest sections speak first
	sections := []struct {
		key      string
		feedback []string
	}{
		{types.ScoreExperience, in.Experience.Feedback},
		{types.ScoreEducation, in.Education.Feedback},
		{types.ScoreFormatting, in.Formatting.Feedback},
	}
	sort.SliceStable(sections, func(i, j int) bool {
		return sub[sections[i].key] < sub[sections[j].key]
	})
	for _, sec := range sections {
		if len(sec.feedback) > 0 {
			s.add(sec.feedback[0])
		}
	}

	kw := in.Keywords
	if len(kw.JobKeywordsMissing) > 0 {
		s.add("Add keywords from the job description: " + strings.Join(firstN(kw.JobKeywordsMissing, 5), ", "))
	}
	if kw.IndustryMatch < 60 && len(kw.Missing) > 0 {
		s.add(fmt.Sprintf("Include more %s keywords such as %s", displayIndustry(kw.DetectedIndustry), strings.Join(firstN(kw.Missing, 5), ", ")))
	}
	if kw.ActionVerbScore < 50 {
		s.add("Start bullet points with strong action verbs such as led, delivered, optimized or launched")
	}
	if kw.MetricsScore < 50 {
		s.add("Quantify achievements with numbers, percentages or dollar amounts")
	}
	if in.Enrichment != nil {
		for _, weakness := range in.Enrichment.Weaknesses {
			s.add(weakness)
		}
	}

	for _, sec := range sections {
		for i := 1; i < len(sec.feedback); i++ {
			s.add(sec.feedback[i])
		}
	}
	for _, issue := range in.Issues {
		if issue.Severity == types.SeverityMedium {
			s.add(issueSuggestion(issue))
		}
	}

	return s.items
}

type suggestionList struct {
	items []string
	seen  map[string]struct{}
	limit int
}

func (s *suggestionList) add(text string) {
	text = strings.TrimSpace(text)
	if text == "" || len(s.items) >= s.limit {
		return
	}
	if _, dup := s.seen[text]; dup {
		return
	}
	s.seen[text] = struct{}{}
	s.items = append(s.items, text)
}

func issueSuggestion(issue types.Issue) string {
	where := issue.Section
	if issue.Field != "" {
		where = issue.Field
	}
	msg := fmt.Sprintf("Fix %s: %q", issue.Category, strings.TrimSpace(issue.Text))
	if issue.Suggestion != "" {
		msg = fmt.Sprintf("Fix %s: %q → %q", issue.Category, strings.TrimSpace(issue.Text), issue.Suggestion)
		if len(issue.Suggestion) > 30 {
			msg = fmt.Sprintf("Fix %s %q: %s", issue.Category, strings.TrimSpace(issue.Text), issue.Suggestion)
		}
	}
	if where != "" {
		msg += " (" + where + ")"
	}
	return msg
}

func displayIndustry(name string) string {
	if name == FallbackIndustry {
		return "industry"
	}
	return name
}

func firstN(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}
