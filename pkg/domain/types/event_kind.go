package types

import "github.com/m-mizutani/goerr/v2"

// EventKind is the discriminator of an inbound notification event
type EventKind string

const (
	EventComment          EventKind = "comment"
	EventApprove          EventKind = "approve"
	EventReviewRequested  EventKind = "review_requested"
	EventChangesRequested EventKind = "changes_requested"
	EventSchedule         EventKind = "schedule"
	EventDeploy           EventKind = "deploy"
	EventCI               EventKind = "ci"
)

// SupportedEventKinds returns all event kinds the dispatch pipeline handles
func SupportedEventKinds() []EventKind {
	return []EventKind{
		EventComment,
		EventApprove,
		EventReviewRequested,
		EventChangesRequested,
		EventSchedule,
		EventDeploy,
		EventCI,
	}
}

// Validate checks if the EventKind is supported
func (k EventKind) Validate() error {
	for _, kind := range SupportedEventKinds() {
		if k == kind {
			return nil
		}
	}
	return goerr.New("unsupported event kind",
		goerr.V("kind", k),
		goerr.V("supported", SupportedEventKinds()),
	)
}

// String returns the string representation of EventKind
func (k EventKind) String() string {
	return string(k)
}
