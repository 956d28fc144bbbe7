package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/devadeboye/mini-jira/internal/apperrors"
	"github.com/devadeboye/mini-jira/internal/models"
)

type RefreshTokenRepo struct {
	DB DBTX
}

const saveToken = `-- name: SaveRefreshToken
INSERT INTO refresh_tokens (id, user_id, created_at, expires_at, revoked_at)
VALUES ($1, $2, $3, $4, $5)
RETURNING id`

func (r *RefreshTokenRepo) Save(ctx context.Context, token models.RefreshToken) error {
	rows, _ := r.DB.Query(ctx, saveToken, token.ID, token.UserID, token.CreatedAt, token.ExpiresAt, token.RevokedAt)
	_, err := pgx.CollectOneRow(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

const getToken = `-- name: GetRefreshToken
SELECT id, user_id, created_at, expires_at, revoked_at
FROM refresh_tokens
WHERE id = $1
`

// Get token record whatever its state (revoked and expired included)
func (r *RefreshTokenRepo) Get(ctx context.Context, tokenID uuid.UUID) (models.RefreshToken, error) {
	rows, _ := r.DB.Query(ctx, getToken, tokenID)
	token, err := pgx.CollectOneRow(rows, rowToRefreshToken)

	switch {
	case err == nil:
		return token, nil
	case errors.Is(err, pgx.ErrNoRows):
		return token, apperrors.ErrRefreshTokenNotFound
	default:
		return token, fmt.Errorf("db error: %w", err)
	}
}

const revokeIfUsable = `-- name: RevokeRefreshTokenIfUsable
UPDATE refresh_tokens
SET revoked_at = $2
WHERE id = $1 AND revoked_at IS NULL AND expires_at > $2
RETURNING id, user_id, created_at, expires_at, revoked_at
`

// Revoke the token only while it is still usable. The conditional update is
// what closes the rotation race: of two concurrent calls with the same id
// exactly one sees an affected row.
// Note 'expires_at > $2': a record expiring exactly at 'now' is expired.
func (r *RefreshTokenRepo) RevokeIfUsable(ctx context.Context, tokenID uuid.UUID, now time.Time) (models.RefreshToken, error) {
	rows, _ := r.DB.Query(ctx, revokeIfUsable, tokenID, now)
	token, err := pgx.CollectOneRow(rows, rowToRefreshToken)

	if err == nil {
		return token, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return token, fmt.Errorf("db error: %w", err)
	}

	// No row was updated. Look the record up once more to report why
	token, err = r.Get(ctx, tokenID)
	switch {
	case err != nil:
		return token, err
	case token.RevokedAt != nil:
		return token, apperrors.ErrRefreshTokenRevoked
	default:
		return token, apperrors.ErrRefreshTokenExpired
	}
}

const revokeAllForUser = `-- name: RevokeAllRefreshTokensForUser
UPDATE refresh_tokens
SET revoked_at = $2
WHERE user_id = $1 AND revoked_at IS NULL
`

func (r *RefreshTokenRepo) RevokeAllForUser(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error) {
	tag, err := r.DB.Exec(ctx, revokeAllForUser, userID, now)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return tag.RowsAffected(), nil
}

func rowToRefreshToken(row pgx.CollectableRow) (models.RefreshToken, error) {
	var t models.RefreshToken
	err := row.Scan(&t.ID, &t.UserID, &t.CreatedAt, &t.ExpiresAt, &t.RevokedAt)
	return t, err
}
