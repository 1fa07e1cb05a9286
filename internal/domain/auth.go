package domain

import "time"

// TokenIssuer issues bearer tokens for operators of the RSVP admin API.
type TokenIssuer interface {
	Issue(subject string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a bearer token and returns its subject.
type TokenVerifier interface {
	Verify(token string) (subject string, err error)
}
