package ai

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"resumescan/internal/errors"
	"resumescan/internal/types"
)

const (
	maxEnrichmentItems    = 10
	maxEnrichmentKeywords = 15
)

var (
	sectionLine = regexp.MustCompile(`(?i)^\s*[#*\s]*(score|strengths|weaknesses|keywords)[*\s]*:\s*(.*)$`)
	firstNumber = regexp.MustCompile(`\d+(?:\.\d+)?`)
	bulletLead  = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s*`)
)

// stringList accepts a JSON array of strings or a single delimited string
type stringList []string

func (l *stringList) UnmarshalJSON(data []byte) error {
	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		*l = arr
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*l = splitItems(s)
	return nil
}

type enrichmentReply struct {
	Score      json.Number `json:"score"`
	Strengths  stringList  `json:"strengths"`
	Weaknesses stringList  `json:"weaknesses"`
	Keywords   stringList  `json:"keywords"`
}

// parseEnrichment turns a provider reply into an Enrichment. It accepts a
// JSON object, optionally wrapped in prose or code fences, or a plain
// SCORE:/STRENGTHS:/WEAKNESSES:/KEYWORDS: layout.
func parseEnrichment(text string) (*types.Enrichment, error) {
	if e, ok := parseEnrichmentJSON(text); ok {
		return e, nil
	}
	if e, ok := parseEnrichmentSections(text); ok {
		return e, nil
	}
	return nil, errors.NewEnrichmentError(errors.ErrCodeEnrichmentParse,
		"AI reply contained no recognisable score", nil).
		WithContext("reply_length", len(text))
}

func parseEnrichmentJSON(text string) (*types.Enrichment, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, false
	}

	var reply enrichmentReply
	if err := json.Unmarshal([]byte(text[start:end+1]), &reply); err != nil {
		return nil, false
	}
	score, err := reply.Score.Float64()
	if err != nil {
		return nil, false
	}

	return &types.Enrichment{
		Score:      clampScore(score),
		Strengths:  cleanItems(reply.Strengths, maxEnrichmentItems),
		Weaknesses: cleanItems(reply.Weaknesses, maxEnrichmentItems),
		Keywords:   cleanItems(reply.Keywords, maxEnrichmentKeywords),
	}, true
}

func parseEnrichmentSections(text string) (*types.Enrichment, bool) {
	var (
		e        types.Enrichment
		hasScore bool
		current  string
	)
	lists := map[string]*[]string{
		"strengths":  &e.Strengths,
		"weaknesses": &e.Weaknesses,
		"keywords":   &e.Keywords,
	}

	for line := range strings.SplitSeq(text, "\n") {
		if m := sectionLine.FindStringSubmatch(line); m != nil {
			current = strings.ToLower(m[1])
			rest := strings.TrimSpace(m[2])
			if current == "score" {
				if n := firstNumber.FindString(rest); n != "" && !hasScore {
					if f, err := strconv.ParseFloat(n, 64); err == nil {
						e.Score = clampScore(f)
						hasScore = true
					}
				}
				continue
			}
			if rest != "" {
				*lists[current] = append(*lists[current], splitItems(rest)...)
			}
			continue
		}
		if list, ok := lists[current]; ok && strings.TrimSpace(line) != "" {
			*list = append(*list, strings.TrimSpace(bulletLead.ReplaceAllString(line, "")))
		}
	}

	if !hasScore {
		return nil, false
	}
	e.Strengths = cleanItems(e.Strengths, maxEnrichmentItems)
	e.Weaknesses = cleanItems(e.Weaknesses, maxEnrichmentItems)
	e.Keywords = cleanItems(e.Keywords, maxEnrichmentKeywords)
	return &e, true
}

func splitItems(s string) []string {
	sep := ","
	if strings.Contains(s, ";") {
		sep = ";"
	} else if strings.Contains(s, "\n") {
		sep = "\n"
	}
	var items []string
	for part := range strings.SplitSeq(s, sep) {
		items = append(items, bulletLead.ReplaceAllString(part, ""))
	}
	return items
}

// cleanItems trims, drops empties and duplicates, and caps the list
func cleanItems(items []string, limit int) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.Trim(strings.TrimSpace(item), `"'`)
		if item == "" || strings.EqualFold(item, "none") {
			continue
		}
		key := strings.ToLower(item)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
		if len(out) == limit {
			break
		}
	}
	return out
}

func clampScore(f float64) int {
	n := int(math.Round(f))
	return max(0, min(100, n))
}
