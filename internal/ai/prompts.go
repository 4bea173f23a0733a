package ai

import (
	"fmt"
	"strings"

	"resumescan/internal/config"
)

// DefaultEnrichSystemPrompt is the system instruction for ATS enrichment
const DefaultEnrichSystemPrompt = `You are an applicant tracking system (ATS) analyst and experienced technical recruiter. Your core principles are:

- Judge only what is written in the resume; never assume unstated skills
- Be specific and actionable in every weakness you report
- Keep the score consistent: 90+ is exceptional, 70-89 is competitive, below 60 needs significant work`

// DefaultEnrichUserPrompt takes the resume text and an optional job description block
const DefaultEnrichUserPrompt = `Assess how well the following resume would perform in an ATS screening.

Respond with a single JSON object and nothing else:
{"score": <integer 0-100>, "strengths": [<string>], "weaknesses": [<string>], "keywords": [<important keywords missing from the resume>]}

List at most 5 strengths, 5 weaknesses and 10 keywords.

**Resume:**
-----
%s
-----
%s`

// DefaultGrammarSystemPrompt is the system instruction for grammar review
const DefaultGrammarSystemPrompt = `You are a meticulous copy editor who specialises in resumes. You report only genuine spelling, grammar, punctuation and style problems, and you never rewrite content that is already correct.`

// DefaultGrammarUserPrompt takes the numbered resume fragments
const DefaultGrammarUserPrompt = `Review the resume text below. Report each problem on its own line as:

wrong text → corrected text

Group the lines under the headers SPELLING:, GRAMMAR:, PUNCTUATION: and STYLE:. Omit empty groups. If there are no problems, reply with NONE.

**Resume text:**
-----
%s
-----`

const jobDescriptionBlock = `
**Target job description:**
-----
%s
-----`

// resolvePrompt selects the correct prompt string based on a clear priority order:
// 1. A prompt loaded from a file or set in the configuration.
// 2. A hardcoded default prompt.
func resolvePrompt(store *config.PromptStore, name, fromDefault string) string {
	if loaded := store.Get(name); loaded != "" {
		return loaded
	}
	return fromDefault
}

// renderPrompt fills a template's %s verbs. Custom templates without
// verbs get the arguments appended instead.
func renderPrompt(tmpl string, args ...string) string {
	if strings.Count(tmpl, "%s") == len(args) {
		values := make([]any, len(args))
		for i, a := range args {
			values[i] = a
		}
		return fmt.Sprintf(tmpl, values...)
	}
	var b strings.Builder
	b.WriteString(tmpl)
	for _, a := range args {
		if strings.TrimSpace(a) == "" {
			continue
		}
		b.WriteString("\n\n")
		b.WriteString(a)
	}
	return b.String()
}
