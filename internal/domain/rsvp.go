package domain

import (
	"context"
	"time"
)

// EventID identifies an event owned by an external system. It is the digit run
// embedded in announcement messages as "event_id:<digits>".
type EventID string

// MemberID is the internal identifier of a registered member.
type MemberID string

// RSVPStatus is a member's declared attendance for an event.
type RSVPStatus string

const (
	RSVPGoing    RSVPStatus = "going"
	RSVPMaybe    RSVPStatus = "maybe"
	RSVPDeclined RSVPStatus = "declined"
)

// Valid reports whether s is one of the persisted statuses.
func (s RSVPStatus) Valid() bool {
	switch s {
	case RSVPGoing, RSVPMaybe, RSVPDeclined:
		return true
	}
	return false
}

// ParseRSVPStatus returns the status named by s or ErrInvalidInput.
func ParseRSVPStatus(s string) (RSVPStatus, error) {
	st := RSVPStatus(s)
	if !st.Valid() {
		return "", ErrInvalidInput
	}
	return st, nil
}

// RSVP is the stored status of one member for one event.
// At most one RSVP exists per (EventID, MemberID).
// swagger:model RSVP
type RSVP struct {
	EventID   EventID    `json:"event_id"`
	MemberID  MemberID   `json:"member_id"`
	Status    RSVPStatus `json:"status"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewRSVP returns an RSVP stamped with updatedAt.
func NewRSVP(eventID EventID, memberID MemberID, status RSVPStatus, updatedAt time.Time) *RSVP {
	return &RSVP{
		EventID:   eventID,
		MemberID:  memberID,
		Status:    status,
		UpdatedAt: updatedAt,
	}
}

// RSVPRepository defines storage operations for event RSVPs.
type RSVPRepository interface {
	// Upsert inserts the RSVP or replaces the status of the existing row for the same
	// (event, member). Applying the same RSVP twice leaves the same state as applying it once.
	Upsert(ctx context.Context, rsvp *RSVP) error
	GetByEventAndMember(ctx context.Context, eventID EventID, memberID MemberID) (*RSVP, error)
	// ListByEventID returns one page of RSVPs ordered by member id, and the total
	// number of RSVPs matching filter.
	ListByEventID(ctx context.Context, eventID EventID, filter RSVPFilter, params PaginationParams) ([]*RSVP, int, error)
	Delete(ctx context.Context, eventID EventID, memberID MemberID) error
}

// RSVPService defines operator-facing RSVP management used by the HTTP API.
type RSVPService interface {
	ListByEvent(ctx context.Context, eventID EventID, filter RSVPFilter, params PaginationParams) ([]*RSVP, int, error)
	Set(ctx context.Context, eventID EventID, memberID MemberID, status RSVPStatus) (*RSVP, error)
	Remove(ctx context.Context, eventID EventID, memberID MemberID) error
}
