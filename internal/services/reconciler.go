package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"eventrsvp/internal/domain"
)

type reconciler struct {
	logger     *slog.Logger
	memberRepo domain.MemberRepository
	rsvpRepo   domain.RSVPRepository
	now        func() time.Time
}

// NewReconciler returns a Reconciler that resolves members with memberRepo and
// stores statuses with rsvpRepo. It holds no per-reaction state and is safe for
// concurrent use.
func NewReconciler(logger *slog.Logger, memberRepo domain.MemberRepository, rsvpRepo domain.RSVPRepository) domain.Reconciler {
	return &reconciler{
		logger:     logger,
		memberRepo: memberRepo,
		rsvpRepo:   rsvpRepo,
		now:        time.Now,
	}
}

// Reconcile runs bot check, event id extraction, member resolution, reaction
// classification and the upsert, in that order, stopping at the first step that
// does not resolve. On error the returned result has OutcomeFailed and carries the
// values resolved so far.
func (r *reconciler) Reconcile(ctx context.Context, ev *domain.ReactionEvent) (*domain.ReconcileResult, error) {
	if ev.ReactorIsBot {
		return &domain.ReconcileResult{Outcome: domain.OutcomeSkippedBot}, nil
	}

	eventID, ok := domain.ExtractEventID(ev.MessageText)
	if !ok {
		return &domain.ReconcileResult{Outcome: domain.OutcomeSkippedNoEventID}, nil
	}

	memberID, err := r.memberRepo.GetIDByDiscordID(ctx, ev.ReactorID)
	if err != nil {
		if errors.Is(err, domain.ErrMemberNotFound) {
			r.logger.InfoContext(ctx, "member not found for discord id",
				"discord_id", ev.ReactorID,
				"event_id", eventID,
			)
			return &domain.ReconcileResult{Outcome: domain.OutcomeSkippedUnregistered, EventID: eventID}, nil
		}
		return &domain.ReconcileResult{Outcome: domain.OutcomeFailed, EventID: eventID},
			fmt.Errorf("resolve member: %w", err)
	}

	status, ok := domain.ClassifyReaction(ev.Symbol)
	if !ok {
		return &domain.ReconcileResult{
			Outcome:  domain.OutcomeSkippedUnknownSymbol,
			EventID:  eventID,
			MemberID: memberID,
		}, nil
	}

	result := &domain.ReconcileResult{
		Outcome:  domain.OutcomeApplied,
		EventID:  eventID,
		MemberID: memberID,
		Status:   status,
	}
	if err := r.rsvpRepo.Upsert(ctx, domain.NewRSVP(eventID, memberID, status, r.now())); err != nil {
		result.Outcome = domain.OutcomeFailed
		return result, fmt.Errorf("upsert rsvp: %w", err)
	}

	r.logger.InfoContext(ctx, "rsvp updated",
		"user", ev.ReactorName,
		"member_id", memberID,
		"event_id", eventID,
		"status", status,
	)
	return result, nil
}
