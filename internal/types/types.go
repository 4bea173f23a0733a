package types

import "time"

// IssueCategory groups grammar findings
type IssueCategory string

const (
	CategorySpelling    IssueCategory = "spelling"
	CategoryGrammar     IssueCategory = "grammar"
	CategoryPunctuation IssueCategory = "punctuation"
	CategoryStyle       IssueCategory = "style"
	CategoryResume      IssueCategory = "resume"
)

// Severity is the coarse ranking used for display and score penalties
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// IssueSource records where a finding came from
type IssueSource string

const (
	SourceRule     IssueSource = "rule"
	SourceExternal IssueSource = "external"
)

// Tier is the qualitative band of an overall score
type Tier string

const (
	TierCritical  Tier = "critical"
	TierGood      Tier = "good"
	TierExcellent Tier = "excellent"
)

// Sub-score keys in AnalysisReport.SubScores
const (
	ScoreKeywords   = "keywords"
	ScoreExperience = "experience"
	ScoreEducation  = "education"
	ScoreFormatting = "formatting"
	ScoreEnrichment = "enrichment"
)

// Issue is a single located finding
type Issue struct {
	Category   IssueCategory `json:"category"`
	Severity   Severity      `json:"severity"`
	Text       string        `json:"text"`
	Suggestion string        `json:"suggestion"`
	Context    string        `json:"context,omitempty"`
	Section    string        `json:"section,omitempty"`
	Field      string        `json:"field,omitempty"`
	Offset     int           `json:"offset"`
	Source     IssueSource   `json:"source"`
}

// KeywordDetail carries the keyword analyzer's secondary scores
type KeywordDetail struct {
	IndustryMatch      int      `json:"industryMatch"`
	ActionVerbs        int      `json:"actionVerbs"`
	Metrics            int      `json:"metrics"`
	JobKeywordsMatched []string `json:"jobKeywordsMatched,omitempty"`
	JobKeywordsMissing []string `json:"jobKeywordsMissing,omitempty"`
}

// Enrichment is the externally sourced supplement to a report
type Enrichment struct {
	Score      int      `json:"score"`
	Strengths  []string `json:"strengths,omitempty"`
	Weaknesses []string `json:"weaknesses,omitempty"`
	Keywords   []string `json:"keywords,omitempty"`
	Provider   string   `json:"provider,omitempty"`
	Model      string   `json:"model,omitempty"`
	Cached     bool     `json:"cached,omitempty"`
}

// ReportMetrics describes the run that produced a report
type ReportMetrics struct {
	WordCount    int   `json:"wordCount"`
	ElapsedMs    int64 `json:"elapsedMs"`
	SectionCount int   `json:"sectionCount"`
}

// AnalysisReport is the result of a full resume analysis. It is a value
// object and is not modified after the engine returns it.
type AnalysisReport struct {
	ID               string         `json:"id,omitempty"`
	OverallScore     int            `json:"overallScore"`
	Tier             Tier           `json:"tier"`
	SubScores        map[string]int `json:"subScores"`
	Detail           KeywordDetail  `json:"detail"`
	DetectedIndustry string         `json:"detectedIndustry"`
	FoundKeywords    []string       `json:"foundKeywords"`
	MissingKeywords  []string       `json:"missingKeywords"`
	GrammarScore     int            `json:"grammarScore"`
	Issues           []Issue        `json:"issues"`
	Suggestions      []string       `json:"suggestions"`
	Enrichment       *Enrichment    `json:"enrichment,omitempty"`
	Metrics          ReportMetrics  `json:"metrics"`
	AnalyzedAt       time.Time      `json:"analyzedAt"`
}

// GrammarReport is the result of a grammar-only check
type GrammarReport struct {
	ID          string                `json:"id,omitempty"`
	Score       int                   `json:"score"`
	Issues      []Issue               `json:"issues"`
	BySeverity  map[Severity]int      `json:"bySeverity"`
	ByCategory  map[IssueCategory]int `json:"byCategory"`
	Suggestions []string              `json:"suggestions"`
	Enriched    bool                  `json:"enriched"`
	Metrics     ReportMetrics         `json:"metrics"`
	CheckedAt   time.Time             `json:"checkedAt"`
}

// AnalyzeRequest is the API/CLI input for a full analysis
type AnalyzeRequest struct {
	Resume         *ResumeRecord `json:"resume" validate:"required"`
	JobDescription string        `json:"jobDescription,omitempty" validate:"max=20000"`
	Enrich         *bool         `json:"enrich,omitempty"`
}

// GrammarRequest is the API/CLI input for a grammar check
type GrammarRequest struct {
	Resume *ResumeRecord `json:"resume" validate:"required"`
	Enrich *bool         `json:"enrich,omitempty"`
}
