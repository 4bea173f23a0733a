package analysis

import (
	"regexp"

	"resumescan/internal/types"
)

// The tables in this file are built once at package init and never
// mutated afterwards; analyzers only read them.

// FallbackIndustry is reported when no industry keyword matches at all.
const FallbackIndustry = "general"

type industryProfile struct {
	Name     string
	Keywords []string
}

// industries is ordered: ties in match count resolve to the earlier entry.
var industries = []industryProfile{
	{
		Name: "technology",
		Keywords: []string{
			"javascript", "python", "java", "react", "node.js", "typescript", "sql",
			"aws", "docker", "kubernetes", "api", "cloud", "machine learning", "git",
			"agile", "devops", "microservices", "golang", "linux", "ci/cd",
		},
	},
	{
		Name: "marketing",
		Keywords: []string{
			"seo", "sem", "content marketing", "social media", "brand", "campaign",
			"analytics", "google ads", "email marketing", "conversion", "copywriting",
			"market research", "crm", "engagement",
		},
	},
	{
		Name: "finance",
		Keywords: []string{
			"financial analysis", "accounting", "budget", "forecasting", "excel", "gaap",
			"audit", "investment", "portfolio", "risk management", "valuation",
			"reconciliation", "tax", "compliance",
		},
	},
	{
		Name: "sales",
		Keywords: []string{
			"sales", "quota", "pipeline", "negotiation", "account management",
			"lead generation", "b2b", "cold calling", "revenue", "closing", "prospecting",
			"client relationship", "territory",
		},
	},
	{
		Name: "healthcare",
		Keywords: []string{
			"patient care", "clinical", "hipaa", "medical", "nursing", "ehr", "diagnosis",
			"treatment", "healthcare", "pharmacy", "emr", "vital signs",
		},
	},
	{
		Name: "education",
		Keywords: []string{
			"curriculum", "lesson planning", "classroom", "teaching", "student",
			"instruction", "assessment", "tutoring", "pedagogy", "e-learning",
		},
	},
	{
		Name: "design",
		Keywords: []string{
			"figma", "sketch", "adobe", "photoshop", "illustrator", "ui/ux", "wireframe",
			"prototype", "typography", "user research",
		},
	},
	{
		Name: "engineering",
		Keywords: []string{
			"autocad", "solidworks", "mechanical", "electrical", "civil engineering",
			"manufacturing", "six sigma", "lean", "quality control", "cad",
		},
	},
}

// actionVerbs are matched as whole words.
var actionVerbs = []string{
	"achieved", "improved", "led", "managed", "developed", "created", "implemented",
	"designed", "launched", "increased", "reduced", "delivered", "built", "optimized",
	"streamlined", "spearheaded", "negotiated", "mentored", "coordinated", "established",
	"automated", "migrated", "orchestrated", "resolved",
}

// metricTokens signal quantified achievements; matched as substrings.
var metricTokens = []string{
	"%", "$", "roi", "kpi", "percent", "million", "thousand", "revenue",
	"increased by", "reduced by", "saved", "x faster",
}

const (
	actionVerbTarget  = 10
	metricTarget      = 5
	missingKeywordCap = 10
)

type degreeLevel struct {
	Name     string
	Points   int
	Patterns []*regexp.Regexp
}

// degreeLevels is checked highest first; the first hit wins.
var degreeLevels = []degreeLevel{
	{Name: "doctorate", Points: 40, Patterns: wordPatterns("phd", "ph.d", "doctorate", "doctor of", "d.phil", "dphil", "edd")},
	{Name: "master", Points: 30, Patterns: wordPatterns("master", "masters", "msc", "m.sc", "mba", "m.s", "m.a", "ms", "ma", "mphil", "meng", "mfa")},
	{Name: "bachelor", Points: 20, Patterns: wordPatterns("bachelor", "bachelors", "bsc", "b.sc", "b.s", "b.a", "ba", "bs", "beng", "bfa")},
	{Name: "associate", Points: 10, Patterns: wordPatterns("associate", "associates", "a.a", "a.s", "aas")},
}

const (
	prestigeBonus        = 15
	gpaBonus             = 10
	gpaThreshold         = 3.5
	gpaScaleMax          = 4.0
	recencyBonus         = 5
	recencyYears         = 5
	maxEducationPerEntry = 40 + prestigeBonus + gpaBonus + recencyBonus
)

var prestigeInstitutions = wordPatterns(
	"harvard", "stanford", "mit", "massachusetts institute of technology", "oxford",
	"cambridge", "princeton", "yale", "caltech", "california institute of technology",
	"berkeley", "columbia", "university of chicago", "imperial college", "eth zurich",
	"carnegie mellon", "university of pennsylvania", "cornell", "johns hopkins",
)

const (
	experiencePerEntry    = 15
	experienceQuantityCap = 60
	experienceQualityCap  = 40
	seniorityBonus        = 5
	descriptionBonus      = 5
	descriptionMinLength  = 100
	detailedBonus         = 3
	detailedMinLength     = 200
	companySizeBonus      = 3
)

var seniorityKeywords = wordPatterns(
	"senior", "sr", "lead", "principal", "staff", "manager", "director", "head",
	"vp", "vice president", "chief", "architect",
)

var companyHints = wordPatterns(
	"google", "microsoft", "amazon", "apple", "meta", "facebook", "ibm", "oracle",
	"netflix", "salesforce", "intel", "cisco", "deloitte", "accenture", "mckinsey",
	"inc", "corp", "corporation", "ltd", "llc", "plc", "group", "global", "international",
)

// Formatting checklist points. They sum to 100.
const (
	pointsName       = 15
	pointsEmail      = 15
	pointsPhone      = 10
	pointsAddress    = 5
	pointsTitle      = 10
	pointsSummary    = 15
	pointsExperience = 10
	pointsEducation  = 5
	pointsSkills     = 10
	pointsDetail     = 5
	summaryMinLength = 50
	detailMinLength  = 50
	phoneMinDigits   = 7
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]{2,}$`)
	phonePattern = regexp.MustCompile(`^[+()\d\s.\-x]+$`)
	yearPattern  = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	gpaPattern   = regexp.MustCompile(`\d+(?:\.\d+)?`)
	wordPattern  = regexp.MustCompile(`[\p{L}\p{N}][\p{L}\p{N}'+#.-]*`)
)

// severityByCategory is fixed; rules never pick their own severity.
var severityByCategory = map[types.IssueCategory]types.Severity{
	types.CategorySpelling:    types.SeverityHigh,
	types.CategoryGrammar:     types.SeverityHigh,
	types.CategoryPunctuation: types.SeverityMedium,
	types.CategoryResume:      types.SeverityMedium,
	types.CategoryStyle:       types.SeverityLow,
}

// SeverityFor returns the severity assigned to a category. Unknown
// categories are treated as style.
func SeverityFor(category types.IssueCategory) types.Severity {
	if s, ok := severityByCategory[category]; ok {
		return s
	}
	return types.SeverityLow
}

// wordPatterns compiles case-insensitive whole-word matchers. A trailing
// "." in an abbreviation is optional.
func wordPatterns(words ...string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(words))
	for _, w := range words {
		patterns = append(patterns, regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}])`+regexp.QuoteMeta(w)+`\.?(?:$|[^\p{L}\p{N}])`))
	}
	return patterns
}

func matchesAny(patterns []*regexp.Regexp, s string) bool {
	for _, p := range patterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

func countMatches(patterns []*regexp.Regexp, s string) int {
	n := 0
	for _, p := range patterns {
		if p.MatchString(s) {
			n++
		}
	}
	return n
}
