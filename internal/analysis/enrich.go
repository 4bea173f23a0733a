package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"resumescan/internal/types"
)

// ErrEnrichmentUnavailable is returned by enrichers that cannot serve a request
var ErrEnrichmentUnavailable = errors.New("enrichment unavailable")

// EnrichRequest is what an Enricher receives for a full analysis
type EnrichRequest struct {
	Resume         *types.ResumeRecord
	NormalizedText string
	JobDescription string
}

// Enricher supplies optional externally sourced findings. Implementations
// may block on network I/O; the engine bounds every call with a timeout
// and treats any error as "no enrichment".
type Enricher interface {
	// Enrich returns an ATS-style assessment of the resume.
	Enrich(ctx context.Context, req EnrichRequest) (*types.Enrichment, error)
	// ReviewGrammar returns free text listing "wrong → correct" pairs.
	ReviewGrammar(ctx context.Context, fragments []types.TextFragment) (string, error)
}

// EnricherFuncs adapts plain functions to Enricher. A nil function reports
// ErrEnrichmentUnavailable.
type EnricherFuncs struct {
	EnrichFunc  func(ctx context.Context, req EnrichRequest) (*types.Enrichment, error)
	GrammarFunc func(ctx context.Context, fragments []types.TextFragment) (string, error)
}

var _ Enricher = EnricherFuncs{}

func (f EnricherFuncs) Enrich(ctx context.Context, req EnrichRequest) (*types.Enrichment, error) {
	if f.EnrichFunc == nil {
		return nil, ErrEnrichmentUnavailable
	}
	return f.EnrichFunc(ctx, req)
}

func (f EnricherFuncs) ReviewGrammar(ctx context.Context, fragments []types.TextFragment) (string, error) {
	if f.GrammarFunc == nil {
		return "", ErrEnrichmentUnavailable
	}
	return f.GrammarFunc(ctx, fragments)
}

// callBounded runs fn under a timeout and returns when either fn finishes
// or the deadline passes, even if fn ignores its context.
func callBounded[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		val T
		err error
	}
	done := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				var zero T
				done <- result{zero, fmt.Errorf("enricher panic: %v", r)}
			}
		}()
		v, err := fn(ctx)
		done <- result{v, err}
	}()

	select {
	case r := <-done:
		return r.val, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
