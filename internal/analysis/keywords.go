package analysis

import (
	"strings"
)

// KeywordResult is the output of the keyword/industry analyzer
type KeywordResult struct {
	DetectedIndustry string
	IndustryMatch    int
	Found            []string
	Missing          []string
	ActionVerbScore  int
	MetricsScore     int

	// Set only when a job description was supplied.
	JobKeywordsMatched []string
	JobKeywordsMissing []string
}

// AnalyzeKeywords classifies normalized resume text into an industry and
// scores keyword coverage, action verbs and quantified metrics.
// jobDescription is optional and never changes IndustryMatch.
func AnalyzeKeywords(text, jobDescription string) KeywordResult {
	text = strings.ToLower(text)

	best := -1
	bestCount := 0
	var bestFound []string
	for i, ind := range industries {
		found := matchedKeywords(text, ind.Keywords)
		// strictly greater keeps the first-declared industry on ties
		if len(found) > bestCount {
			best, bestCount, bestFound = i, len(found), found
		}
	}

	result := KeywordResult{
		DetectedIndustry: FallbackIndustry,
		Found:            []string{},
		Missing:          []string{},
		ActionVerbScore:  ratioScore(countActionVerbs(text), actionVerbTarget),
		MetricsScore:     ratioScore(len(matchedKeywords(text, metricTokens)), metricTarget),
	}

	if best >= 0 {
		ind := industries[best]
		result.DetectedIndustry = ind.Name
		result.IndustryMatch = ratioScore(bestCount, len(ind.Keywords))
		result.Found = bestFound
		result.Missing = unmatchedKeywords(text, ind.Keywords, missingKeywordCap)
	}

	if jd := strings.ToLower(strings.TrimSpace(jobDescription)); jd != "" {
		result.JobKeywordsMatched, result.JobKeywordsMissing = jobKeywordCoverage(text, jd)
	}

	return result
}

func matchedKeywords(text string, keywords []string) []string {
	var found []string
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			found = append(found, kw)
		}
	}
	return found
}

func unmatchedKeywords(text string, keywords []string, limit int) []string {
	missing := []string{}
	for _, kw := range keywords {
		if len(missing) == limit {
			break
		}
		if !strings.Contains(text, kw) {
			missing = append(missing, kw)
		}
	}
	return missing
}

func countActionVerbs(text string) int {
	words := make(map[string]struct{})
	for _, w := range wordPattern.FindAllString(text, -1) {
		words[strings.TrimRight(w, ".")] = struct{}{}
	}
	n := 0
	for _, verb := range actionVerbs {
		if _, ok := words[verb]; ok {
			n++
		}
	}
	return n
}

// jobKeywordCoverage compares the table keywords named in a job
// description against the resume text. Order follows the tables.
func jobKeywordCoverage(text, jd string) (matched, missing []string) {
	seen := make(map[string]struct{})
	for _, ind := range industries {
		for _, kw := range ind.Keywords {
			if _, dup := seen[kw]; dup || !strings.Contains(jd, kw) {
				continue
			}
			seen[kw] = struct{}{}
			if strings.Contains(text, kw) {
				matched = append(matched, kw)
			} else {
				missing = append(missing, kw)
			}
		}
	}
	return matched, missing
}

// ratioScore returns min(100, n/target*100), rounded down. A zero target
// yields zero.
func ratioScore(n, target int) int {
	if target <= 0 || n <= 0 {
		return 0
	}
	return clamp(n*100/target, 0, 100)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
