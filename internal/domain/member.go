package domain

import "context"

// MemberRepository resolves chat-platform identities to internal members.
type MemberRepository interface {
	// GetIDByDiscordID returns the member whose discord_id equals discordID.
	// It returns ErrMemberNotFound unless exactly one member matches.
	GetIDByDiscordID(ctx context.Context, discordID string) (MemberID, error)
}
