package service

import "context"

// Summarizer is the narrow boundary to an external text-generation
// capability. Implementations must restrict output to facts present in the
// supplied pack; callers treat any error as a signal to fall back to the
// deterministic template.
type Summarizer interface {
	Summarize(ctx context.Context, pack string) (string, error)
}
