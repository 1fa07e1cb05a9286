package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"eventrsvp/internal/domain"
)

// Postgres error codes that mean the write can never succeed as given.
var constraintCodes = map[pq.ErrorCode]struct{}{
	"23502": {}, // not_null_violation
	"23503": {}, // foreign_key_violation
	"23514": {}, // check_violation
	"22P02": {}, // invalid_text_representation
	"22003": {}, // numeric_value_out_of_range, an id past BIGINT
}

type rsvpRepository struct {
	DB *sql.DB
}

func NewRSVPRepository(db *sql.DB) domain.RSVPRepository {
	return &rsvpRepository{
		DB: db,
	}
}

func (r *rsvpRepository) Upsert(ctx context.Context, rsvp *domain.RSVP) error {
	query := `
		INSERT INTO event_rsvps (event_id, member_id, status, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (event_id, member_id)
		DO UPDATE SET status = EXCLUDED.status, updated_at = EXCLUDED.updated_at
	`
	_, err := r.DB.ExecContext(ctx, query, string(rsvp.EventID), string(rsvp.MemberID), string(rsvp.Status), rsvp.UpdatedAt)
	if err != nil {
		return classifyError(err)
	}
	return nil
}

func (r *rsvpRepository) GetByEventAndMember(ctx context.Context, eventID domain.EventID, memberID domain.MemberID) (*domain.RSVP, error) {
	query := `
		SELECT event_id, member_id, status, updated_at
		FROM event_rsvps
		WHERE event_id = $1 AND member_id = $2
	`
	rsvp, err := scanRSVP(r.DB.QueryRowContext(ctx, query, string(eventID), string(memberID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isOutOfRange(err) {
			return nil, domain.ErrNotFound
		}
		return nil, classifyError(err)
	}
	return rsvp, nil
}

func (r *rsvpRepository) ListByEventID(ctx context.Context, eventID domain.EventID, filter domain.RSVPFilter, params domain.PaginationParams) ([]*domain.RSVP, int, error) {
	where := "WHERE event_id = $1"
	args := []any{string(eventID)}
	if filter.Status != "" {
		where += " AND status = $2"
		args = append(args, string(filter.Status))
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM event_rsvps " + where
	if err := r.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, classifyError(err)
	}

	query := fmt.Sprintf(`
		SELECT event_id, member_id, status, updated_at
		FROM event_rsvps
		%s
		ORDER BY member_id
		LIMIT $%d OFFSET $%d
	`, where, len(args)+1, len(args)+2)
	args = append(args, params.PageSize, params.Offset())
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, classifyError(err)
	}
	defer rows.Close()

	rsvps := make([]*domain.RSVP, 0)
	for rows.Next() {
		rsvp, err := scanRSVP(rows)
		if err != nil {
			return nil, 0, err
		}
		rsvps = append(rsvps, rsvp)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return rsvps, total, nil
}

func (r *rsvpRepository) Delete(ctx context.Context, eventID domain.EventID, memberID domain.MemberID) error {
	query := `DELETE FROM event_rsvps WHERE event_id = $1 AND member_id = $2`
	result, err := r.DB.ExecContext(ctx, query, string(eventID), string(memberID))
	if err != nil {
		if isOutOfRange(err) {
			return domain.ErrNotFound
		}
		return classifyError(err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanRSVP reads ids into plain strings; the columns are BIGINT and database/sql
// only converts integers into *string, not into named string types.
func scanRSVP(row rowScanner) (*domain.RSVP, error) {
	var eventID, memberID, status string
	rsvp := &domain.RSVP{}
	if err := row.Scan(&eventID, &memberID, &status, &rsvp.UpdatedAt); err != nil {
		return nil, err
	}
	rsvp.EventID = domain.EventID(eventID)
	rsvp.MemberID = domain.MemberID(memberID)
	rsvp.Status = domain.RSVPStatus(status)
	return rsvp, nil
}

// classifyError maps permanent rejections to domain.ErrRSVPConstraint and
// leaves everything else (connectivity, auth, timeouts) as the driver error.
func classifyError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if _, ok := constraintCodes[pqErr.Code]; ok {
			return fmt.Errorf("%w: %s", domain.ErrRSVPConstraint, pqErr.Message)
		}
	}
	return err
}

// isOutOfRange reports whether Postgres rejected an id too large for BIGINT.
// No row can have such an id, so lookups treat it as a miss.
func isOutOfRange(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "22003"
}
