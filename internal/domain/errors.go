package domain

import "errors"

// Sentinel errors shared by repositories and services.
var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrMemberNotFound = errors.New("member not found")
	// ErrRSVPConstraint is returned when the store rejects an RSVP write because of a
	// referential or shape violation (e.g. unknown event_id). Retrying will not help.
	ErrRSVPConstraint = errors.New("rsvp violates store constraint")
)
