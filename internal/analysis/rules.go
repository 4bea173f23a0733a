package analysis

import (
	"regexp"
	"strings"

	"resumescan/internal/types"
)

// grammarRule is one entry of the rule table. When Pattern has a capture
// group, the first group is reported as the matched text.
type grammarRule struct {
	ID       string
	Category types.IssueCategory
	Pattern  *regexp.Regexp
	// Correction replaces the matched text, preserving its leading case.
	Correction string
	// Advice is used instead of Correction when no literal fix exists.
	Advice string
	// Accept filters matches the regexp engine cannot express.
	Accept func(groups []string) bool
	// Find replaces Pattern for rules that need overlapping matches. It
	// returns [start, end] pairs into the text.
	Find func(text string) [][]int
}

// misspellings maps common resume misspellings to their correction
var misspellings = [][2]string{
	{"recieve", "receive"},
	{"recieved", "received"},
	{"accomplishements", "accomplishments"},
	{"accomplishement", "accomplishment"},
	{"acheive", "achieve"},
	{"acheived", "achieved"},
	{"achievment", "achievement"},
	{"achievments", "achievements"},
	{"accomodate", "accommodate"},
	{"adress", "address"},
	{"buisness", "business"},
	{"calender", "calendar"},
	{"collegue", "colleague"},
	{"commited", "committed"},
	{"comunication", "communication"},
	{"definately", "definitely"},
	{"developement", "development"},
	{"enviroment", "environment"},
	{"experiance", "experience"},
	{"goverment", "government"},
	{"independant", "independent"},
	{"knowlege", "knowledge"},
	{"liason", "liaison"},
	{"maintainance", "maintenance"},
	{"managment", "management"},
	{"neccessary", "necessary"},
	{"noticable", "noticeable"},
	{"occured", "occurred"},
	{"profesional", "professional"},
	{"recomend", "recommend"},
	{"relevent", "relevant"},
	{"responsable", "responsible"},
	{"resposible", "responsible"},
	{"seperate", "separate"},
	{"strenght", "strength"},
	{"sucessful", "successful"},
	{"succesful", "successful"},
	{"supervisior", "supervisor"},
	{"teh", "the"},
	{"thier", "their"},
	{"truely", "truly"},
	{"untill", "until"},
	{"wich", "which"},
	{"alot", "a lot"},
}

var grammarRules = buildGrammarRules()

func buildGrammarRules() []grammarRule {
	rules := make([]grammarRule, 0, len(misspellings)+24)
	for _, pair := range misspellings {
		rules = append(rules, grammarRule{
			ID:         "spelling." + pair[0],
			Category:   types.CategorySpelling,
			Pattern:    regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(pair[0]) + `\b`),
			Correction: pair[1],
		})
	}

	rules = append(rules,
		grammarRule{
			ID:         "grammar.lowercase-i",
			Category:   types.CategoryGrammar,
			Pattern:    regexp.MustCompile(`(?:^|\s)(i)(?:\s|'m|'ve|$)`),
			Correction: "I",
		},
		grammarRule{
			ID:       "grammar.modal-of",
			Category: types.CategoryGrammar,
			Pattern:  regexp.MustCompile(`(?i)\b(?:could|should|would|must|might) of\b`),
			Advice:   "Use \"have\" instead of \"of\" after a modal verb (e.g. \"could have\")",
		},
		grammarRule{
			ID:         "grammar.article-an",
			Category:   types.CategoryGrammar,
			Pattern:    regexp.MustCompile(`\b(a) ((?i:[aio]|e[^u])\w*)`),
			Correction: "an",
			Accept: func(groups []string) bool {
				switch strings.ToLower(groups[2]) {
				case "one", "once", "ones":
					return false
				}
				return true
			},
		},
		grammarRule{
			ID:       "grammar.repeated-word",
			Category: types.CategoryGrammar,
			Find:     repeatedFunctionWords,
			Advice:   "Remove the repeated word",
		},
		grammarRule{
			ID:         "grammar.irregardless",
			Category:   types.CategoryGrammar,
			Pattern:    regexp.MustCompile(`(?i)\birregardless\b`),
			Correction: "regardless",
		},
		grammarRule{
			ID:         "grammar.less-countable",
			Category:   types.CategoryGrammar,
			Pattern:    regexp.MustCompile(`(?i)\b(less) (?:people|employees|clients|customers|projects|errors|bugs|incidents|tickets)\b`),
			Correction: "fewer",
		},
		grammarRule{
			ID:       "punctuation.space-before",
			Category: types.CategoryPunctuation,
			Pattern:  regexp.MustCompile(`\w(\s+[,;:!?])`),
			Advice:   "Remove the space before the punctuation mark",
		},
		grammarRule{
			ID:       "punctuation.repeated",
			Category: types.CategoryPunctuation,
			Pattern:  regexp.MustCompile(`[!?]{2,}|,{2,}|;{2,}`),
			Advice:   "Use a single punctuation mark",
		},
		grammarRule{
			ID:       "punctuation.missing-space",
			Category: types.CategoryPunctuation,
			Pattern:  regexp.MustCompile(`[a-z](,[A-Za-z])`),
			Advice:   "Add a space after the comma",
		},
		grammarRule{
			ID:       "style.weak-intensifier",
			Category: types.CategoryStyle,
			Pattern:  regexp.MustCompile(`(?i)\b(?:very|really|extremely|basically|actually|just)\b`),
			Advice:   "Remove weak intensifiers; let specific results carry the emphasis",
		},
		grammarRule{
			ID:       "style.utilize",
			Category: types.CategoryStyle,
			Pattern:  regexp.MustCompile(`(?i)\butiliz(?:e|ed|es|ing)\b`),
			Advice:   "Prefer \"use\" over \"utilize\"",
		},
		grammarRule{
			ID:         "style.in-order-to",
			Category:   types.CategoryStyle,
			Pattern:    regexp.MustCompile(`(?i)\bin order to\b`),
			Correction: "to",
		},
		grammarRule{
			ID:       "style.double-space",
			Category: types.CategoryStyle,
			Pattern:  regexp.MustCompile(`\S( {2,})\S`),
			Advice:   "Use a single space between words",
		},
		grammarRule{
			ID:       "resume.responsible-for",
			Category: types.CategoryResume,
			Pattern:  regexp.MustCompile(`(?i)\b(?:responsible for|duties included|tasks included)\b`),
			Advice:   "Replace with a strong action verb such as \"Led\", \"Managed\" or \"Delivered\"",
		},
		grammarRule{
			ID:       "resume.helped",
			Category: types.CategoryResume,
			Pattern:  regexp.MustCompile(`(?i)\b(?:helped|assisted with|worked on)\b`),
			Advice:   "Describe your specific contribution instead of \"helped\" or \"worked on\"",
		},
		grammarRule{
			ID:       "resume.first-person",
			Category: types.CategoryResume,
			Pattern:  regexp.MustCompile(`\b(?:I|[Mm]e|[Mm]y|I'm|I've)\b`),
			Advice:   "Omit first-person pronouns; start bullet points with a verb",
		},
		grammarRule{
			ID:       "resume.cliche",
			Category: types.CategoryResume,
			Pattern:  regexp.MustCompile(`(?i)\b(?:team player|hard worker|hard-working|detail[- ]oriented|go-getter|think outside the box|self-starter|results-driven)\b`),
			Advice:   "Replace cliches with concrete examples of the quality",
		},
		grammarRule{
			ID:       "resume.references",
			Category: types.CategoryResume,
			Pattern:  regexp.MustCompile(`(?i)\breferences (?:are )?available (?:up)?on request\b`),
			Advice:   "Remove this line; references are assumed to be available",
		},
	)
	return rules
}

var functionWord = regexp.MustCompile(`(?i)\b(?:the|a|an|and|to|of|in|for|with|is|on|at)\b`)

// repeatedFunctionWords finds function words immediately repeated, such
// as "the the". Each word is compared with its neighbour, so "in the the"
// still reports the second pair.
func repeatedFunctionWords(text string) [][]int {
	var locs [][]int
	words := functionWord.FindAllStringIndex(text, -1)
	for i := 1; i < len(words); i++ {
		prev, cur := words[i-1], words[i]
		gap := text[prev[1]:cur[0]]
		if gap == "" || strings.TrimSpace(gap) != "" {
			continue
		}
		if strings.EqualFold(text[prev[0]:prev[1]], text[cur[0]:cur[1]]) {
			locs = append(locs, []int{prev[0], cur[1]})
		}
	}
	return locs
}
