package mailing

import "fmt"

// Status is the lifecycle state of a Mail.
type Status string

const (
	// StatusDraft marks a mail persisted mid-assembly, before its body and
	// headers are final. Drafts are invisible to the dispatch engine.
	StatusDraft Status = "draft"

	// StatusPending marks a fully assembled mail awaiting its scheduled
	// time.
	StatusPending Status = "pending"

	// StatusSent marks successful delivery through the transport.
	StatusSent Status = "sent"

	// StatusCanceled is a terminal state set by operators, never by the
	// engine itself.
	StatusCanceled Status = "canceled"

	// StatusFailure marks a delivery failure. Failed mails are never
	// retried automatically; redelivery requires an explicit re-queue.
	StatusFailure Status = "failure"
)

// statusTransitions lists the moves the engine and operators may make.
// failure -> pending is deliberately absent: silently retrying a permanently
// invalid address risks sender-reputation damage.
var statusTransitions = map[Status][]Status{
	StatusDraft:   {StatusPending, StatusCanceled},
	StatusPending: {StatusSent, StatusFailure, StatusCanceled},
}

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPending, StatusSent, StatusCanceled, StatusFailure:
		return true
	}
	return false
}

// CanTransitionTo reports whether the lifecycle allows moving to next.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ParseStatus converts a string into a Status, for purge filters and
// operator tooling.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("%w: unknown status %q", ErrInvalidConfig, s)
	}
	return st, nil
}

// transition mutates the mail's status after checking the state machine.
func (m *Mail) transition(next Status) error {
	if !m.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, m.Status, next)
	}
	m.Status = next
	return nil
}
