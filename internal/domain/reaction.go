package domain

import (
	"context"
	"regexp"
)

// eventIDPattern matches the event id token embedded in announcement messages.
var eventIDPattern = regexp.MustCompile(`event_id:([0-9]+)`)

// ExtractEventID returns the digits following the first "event_id:" token in text.
// Later tokens in the same text are ignored.
func ExtractEventID(text string) (EventID, bool) {
	m := eventIDPattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return EventID(m[1]), true
}

// reactionStatuses maps reaction symbols to statuses. Matching is exact: skin tone
// and variation selector variants are not recognized.
var reactionStatuses = map[string]RSVPStatus{
	"✅": RSVPGoing,
	"❓": RSVPMaybe,
	"❌": RSVPDeclined,
}

// ClassifyReaction returns the status represented by a reaction symbol.
func ClassifyReaction(symbol string) (RSVPStatus, bool) {
	st, ok := reactionStatuses[symbol]
	return st, ok
}

// ReactionEvent is a reaction-added notification from the chat platform.
type ReactionEvent struct {
	MessageText  string
	ReactorID    string
	ReactorIsBot bool
	Symbol       string

	// Context for logging only.
	ChannelID   string
	MessageID   string
	ReactorName string
}

// ReconcileOutcome names the terminal state reached for one reaction.
type ReconcileOutcome string

const (
	OutcomeApplied              ReconcileOutcome = "applied"
	OutcomeSkippedBot           ReconcileOutcome = "skipped_bot"
	OutcomeSkippedNoEventID     ReconcileOutcome = "skipped_no_event_id"
	OutcomeSkippedUnregistered  ReconcileOutcome = "skipped_unregistered"
	OutcomeSkippedUnknownSymbol ReconcileOutcome = "skipped_unknown_symbol"
	OutcomeFailed               ReconcileOutcome = "failed"
)

// ReconcileResult describes what happened to a reaction. EventID, MemberID and
// Status are set as far as the pipeline got before terminating.
type ReconcileResult struct {
	Outcome  ReconcileOutcome `json:"outcome"`
	EventID  EventID          `json:"event_id,omitempty"`
	MemberID MemberID         `json:"member_id,omitempty"`
	Status   RSVPStatus       `json:"status,omitempty"`
}

// Reconciler turns a reaction into a stored RSVP.
type Reconciler interface {
	// Reconcile runs the pipeline once. No-op outcomes return a nil error;
	// resolver and store failures are returned.
	Reconcile(ctx context.Context, ev *ReactionEvent) (*ReconcileResult, error)
}

// ReconcileRecorder observes reconciliation results (e.g. metrics).
type ReconcileRecorder interface {
	Record(outcome ReconcileOutcome, seconds float64)
}
