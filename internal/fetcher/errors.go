package fetcher

import (
	"context"
	"errors"
	"fmt"
)

// FailureKind classifies an upstream fetch failure.
type FailureKind string

const (
	FailUnavailable FailureKind = "upstream_unavailable"
	FailMalformed   FailureKind = "upstream_malformed"
	FailTimeout     FailureKind = "timeout"
)

// FetchError is a typed per-source failure. Fetchers return it as data so
// the aggregator can apply per-source fallback without aborting a refresh.
type FetchError struct {
	Source string
	Kind   FailureKind
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %s: %v", e.Source, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func unavailable(source string, err error) *FetchError {
	if errors.Is(err, context.DeadlineExceeded) {
		return &FetchError{Source: source, Kind: FailTimeout, Err: err}
	}
	return &FetchError{Source: source, Kind: FailUnavailable, Err: err}
}

func malformed(source string, err error) *FetchError {
	return &FetchError{Source: source, Kind: FailMalformed, Err: err}
}

// KindOf extracts the failure kind, defaulting to unavailable for errors
// that did not come from a fetcher.
func KindOf(err error) FailureKind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return FailUnavailable
}
