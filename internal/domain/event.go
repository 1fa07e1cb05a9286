package domain

import (
	"context"
	"fmt"
	"time"
)

// ErrEventNotFound is returned when an event id has no row. It matches ErrNotFound.
var ErrEventNotFound = fmt.Errorf("event %w", ErrNotFound)

// Event is an announced event members can RSVP to. Events are created
// outside this service; it only reads them.
type Event struct {
	ID        EventID    `json:"id"`
	Title     string     `json:"title"`
	StartTime *time.Time `json:"start_time,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

type EventRepository interface {
	GetByID(ctx context.Context, id EventID) (*Event, error)
}
