package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"eventrsvp/internal/domain"
)

type rsvpService struct {
	eventRepo      domain.EventRepository
	rsvpRepo       domain.RSVPRepository
	contextTimeout time.Duration
}

// NewRSVPService returns the operator-facing RSVPService. Each call is bounded by timeout.
func NewRSVPService(eventRepo domain.EventRepository, rsvpRepo domain.RSVPRepository, timeout time.Duration) domain.RSVPService {
	return &rsvpService{
		eventRepo:      eventRepo,
		rsvpRepo:       rsvpRepo,
		contextTimeout: timeout,
	}
}

func (s *rsvpService) ListByEvent(ctx context.Context, eventID domain.EventID, filter domain.RSVPFilter, params domain.PaginationParams) ([]*domain.RSVP, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !isDigits(string(eventID)) {
		return nil, 0, fmt.Errorf("%w: event id must be numeric", domain.ErrInvalidInput)
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, fmt.Errorf("%w: status must be one of going, maybe, declined", domain.ErrInvalidInput)
	}
	// An unknown event is a 404, not an empty list.
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, 0, domain.ErrEventNotFound
		}
		return nil, 0, fmt.Errorf("get event: %w", err)
	}
	rsvps, total, err := s.rsvpRepo.ListByEventID(ctx, eventID, filter, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list rsvps: %w", err)
	}
	if rsvps == nil {
		rsvps = []*domain.RSVP{}
	}
	return rsvps, total, nil
}

// Set writes status through the same upsert the reaction pipeline uses.
func (s *rsvpService) Set(ctx context.Context, eventID domain.EventID, memberID domain.MemberID, status domain.RSVPStatus) (*domain.RSVP, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !isDigits(string(eventID)) || !isDigits(string(memberID)) {
		return nil, fmt.Errorf("%w: event id and member id must be numeric", domain.ErrInvalidInput)
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: status must be one of going, maybe, declined", domain.ErrInvalidInput)
	}
	rsvp := domain.NewRSVP(eventID, memberID, status, time.Now())
	if err := s.rsvpRepo.Upsert(ctx, rsvp); err != nil {
		return nil, fmt.Errorf("upsert rsvp: %w", err)
	}
	return rsvp, nil
}

func (s *rsvpService) Remove(ctx context.Context, eventID domain.EventID, memberID domain.MemberID) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !isDigits(string(eventID)) || !isDigits(string(memberID)) {
		return fmt.Errorf("%w: event id and member id must be numeric", domain.ErrInvalidInput)
	}
	if err := s.rsvpRepo.Delete(ctx, eventID, memberID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete rsvp: %w", err)
	}
	return nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	return strings.Trim(s, "0123456789") == ""
}
