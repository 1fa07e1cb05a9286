package postgres

import (
	"context"
	"database/sql"

	"eventrsvp/internal/domain"
)

type memberRepository struct {
	DB *sql.DB
}

func NewMemberRepository(db *sql.DB) domain.MemberRepository {
	return &memberRepository{DB: db}
}

func (r *memberRepository) GetIDByDiscordID(ctx context.Context, discordID string) (domain.MemberID, error) {
	// LIMIT 2 is enough to tell "exactly one" from "ambiguous".
	query := `
		SELECT id
		FROM members
		WHERE discord_id = $1
		LIMIT 2
	`
	rows, err := r.DB.QueryContext(ctx, query, discordID)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	if len(ids) != 1 {
		return "", domain.ErrMemberNotFound
	}
	return domain.MemberID(ids[0]), nil
}
