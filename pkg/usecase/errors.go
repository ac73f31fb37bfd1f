package usecase

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors of the dispatch pipeline
var (
	// ErrInvalidPayload marks a malformed or incomplete inbound payload.
	// Always terminal for the current event, never retried.
	ErrInvalidPayload = goerr.New("invalid event payload")

	// ErrUnknownEventKind marks a dispatch request for an unregistered kind
	ErrUnknownEventKind = goerr.New("unknown event kind")
)
