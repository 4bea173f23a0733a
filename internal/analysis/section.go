package analysis

// SectionResult is the output of a structural analyzer
type SectionResult struct {
	Score    int
	Feedback []string
}
