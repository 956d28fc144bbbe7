package models

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken is the persisted record of one issued refresh token.
// ID equals the 'jti' claim of the signed token and acts as the revocation
// handle. Records are never deleted, only marked revoked.
type RefreshToken struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	CreatedAt time.Time
	ExpiresAt time.Time
	RevokedAt *time.Time // nil while the token is live
}

// Usable reports whether the record may still be exchanged at the given time.
// A token whose expiry equals 'now' counts as expired.
func (t RefreshToken) Usable(now time.Time) bool {
	return t.RevokedAt == nil && t.ExpiresAt.After(now)
}

type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}

// TokenPair issued by the token manager on login, register and refresh
type TokenPair struct {
	Access  IssuedToken
	Refresh IssuedToken
}
