package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"eventrsvp/internal/domain"
)

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

func (r *eventRepository) GetByID(ctx context.Context, id domain.EventID) (*domain.Event, error) {
	query := `
		SELECT id, title, start_time, created_at
		FROM events
		WHERE id = $1
	`
	var (
		rawID     string
		startNull sql.NullTime
	)
	e := &domain.Event{}
	err := r.DB.QueryRowContext(ctx, query, string(id)).Scan(&rawID, &e.Title, &startNull, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isOutOfRange(err) {
			return nil, domain.ErrEventNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	e.ID = domain.EventID(rawID)
	if startNull.Valid {
		e.StartTime = &startNull.Time
	}
	return e, nil
}
