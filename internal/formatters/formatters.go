package formatters

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"resumescan/internal/types"
)

// Output formats
const (
	FormatJSON     = "json"
	FormatText     = "text"
	FormatMarkdown = "markdown"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	registry.RegisterFormatter(FormatJSON, "any", &JSONFormatter{})
	registry.RegisterFormatter(FormatText, "AnalysisReport", &AnalysisTextFormatter{})
	registry.RegisterFormatter(FormatMarkdown, "AnalysisReport", &AnalysisMarkdownFormatter{})
	registry.RegisterFormatter(FormatText, "GrammarReport", &GrammarTextFormatter{})
	registry.RegisterFormatter(FormatMarkdown, "GrammarReport", &GrammarMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats, sorted
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	sort.Strings(formats)
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case types.AnalysisReport, *types.AnalysisReport:
		return "AnalysisReport"
	case types.GrammarReport, *types.GrammarReport:
		return "GrammarReport"
	default:
		return "any"
	}
}

func asAnalysisReport(data any) (*types.AnalysisReport, error) {
	switch r := data.(type) {
	case *types.AnalysisReport:
		if r != nil {
			return r, nil
		}
	case types.AnalysisReport:
		return &r, nil
	}
	return nil, fmt.Errorf("expected AnalysisReport, got %T", data)
}

func asGrammarReport(data any) (*types.GrammarReport, error) {
	switch r := data.(type) {
	case *types.GrammarReport:
		if r != nil {
			return r, nil
		}
	case types.GrammarReport:
		return &r, nil
	}
	return nil, fmt.Errorf("expected GrammarReport, got %T", data)
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// subScoreOrder is the display order of the sub-scores
var subScoreOrder = []string{
	types.ScoreKeywords,
	types.ScoreExperience,
	types.ScoreEducation,
	types.ScoreFormatting,
	types.ScoreEnrichment,
}

func tierLabel(tier types.Tier) string {
	switch tier {
	case types.TierExcellent:
		return "Excellent"
	case types.TierGood:
		return "Good"
	default:
		return "Needs work"
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func writeList(b *strings.Builder, prefix string, items []string) {
	for _, item := range items {
		fmt.Fprintf(b, "%s%s\n", prefix, item)
	}
}

func writeNumbered(b *strings.Builder, items []string) {
	for i, item := range items {
		fmt.Fprintf(b, "%d. %s\n", i+1, item)
	}
}

// sortedCounts returns map entries ordered by key for stable output
func sortedCounts[K ~string](m map[K]int) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// GlobalRegistry is the registry used by the CLI and the server
var GlobalRegistry = NewFormatterRegistry()
