package fusion

import "context"

// Pipeline stage names reported through ProgressFunc.
const (
	StageSearchingDocuments     = "searching_documents"
	StageSearchingKnowledgeBase = "searching_knowledge_base"
	StageSearchingWeb           = "searching_web"
	StageRefiningAnswer         = "refining_answer"
	StageComplete               = "complete"
)

// ProgressFunc receives stage names as the pipeline enters each phase.
// Callbacks run synchronously on the request path and must be fast.
type ProgressFunc func(stage string)

type progressKey struct{}

// WithProgress returns a context that delivers stage transitions to fn,
// in the manner of httptrace.WithClientTrace.
func WithProgress(ctx context.Context, fn ProgressFunc) context.Context {
	return context.WithValue(ctx, progressKey{}, fn)
}

func progressFrom(ctx context.Context) ProgressFunc {
	if fn, ok := ctx.Value(progressKey{}).(ProgressFunc); ok && fn != nil {
		return fn
	}
	return func(string) {}
}
