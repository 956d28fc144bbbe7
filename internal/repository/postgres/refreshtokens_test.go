package postgres

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devadeboye/mini-jira/internal/apperrors"
	"github.com/devadeboye/mini-jira/internal/models"
	"github.com/devadeboye/mini-jira/internal/testutil"
)

func Test_RefreshTokenRepo(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	newToken := func(userID uuid.UUID, expiresAt time.Time) models.RefreshToken {
		return models.RefreshToken{
			ID:        uuid.New(),
			UserID:    userID,
			CreatedAt: mustParseTime("2026-01-01 19:00:01Z"),
			ExpiresAt: expiresAt,
			RevokedAt: nil,
		}
	}

	farFuture := mustParseTime("2200-01-01 03:00:02Z")

	t.Run("save and get", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			user := createTestUser(t, tx, "tokenowner")
			repo := RefreshTokenRepo{DB: tx}
			token := newToken(user.ID, farFuture)

			require.NoError(t, repo.Save(t.Context(), token))

			got, err := repo.Get(t.Context(), token.ID)
			require.NoError(t, err)
			assert.Equal(t, token.ID, got.ID)
			assert.Equal(t, user.ID, got.UserID)
			assert.WithinDuration(t, token.CreatedAt, got.CreatedAt, 0)
			assert.WithinDuration(t, token.ExpiresAt, got.ExpiresAt, 0)
			assert.Nil(t, got.RevokedAt)
		})
	})

	t.Run("get not existed", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := RefreshTokenRepo{DB: tx}

			_, err := repo.Get(t.Context(), uuid.New())

			require.ErrorIs(t, err, apperrors.ErrRefreshTokenNotFound)
		})
	})

	t.Run("revoke usable token", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			user := createTestUser(t, tx, "revoker")
			repo := RefreshTokenRepo{DB: tx}
			token := newToken(user.ID, farFuture)
			require.NoError(t, repo.Save(t.Context(), token))

			now := time.Now().Truncate(time.Second)
			got, err := repo.RevokeIfUsable(t.Context(), token.ID, now)

			require.NoError(t, err)
			require.NotNil(t, got.RevokedAt, "token must come back revoked")
			assert.WithinDuration(t, now, *got.RevokedAt, 0)
			assert.Equal(t, user.ID, got.UserID)
		})
	})

	t.Run("revoke twice fails with revoked", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			user := createTestUser(t, tx, "twice")
			repo := RefreshTokenRepo{DB: tx}
			token := newToken(user.ID, farFuture)
			require.NoError(t, repo.Save(t.Context(), token))

			first, err := repo.RevokeIfUsable(t.Context(), token.ID, time.Now().Truncate(time.Second))
			require.NoError(t, err)

			second, err := repo.RevokeIfUsable(t.Context(), token.ID, time.Now().Truncate(time.Second))
			require.ErrorIs(t, err, apperrors.ErrRefreshTokenRevoked)
			assert.WithinDuration(t, *first.RevokedAt, *second.RevokedAt, 0, "revocation time must not move")
		})
	})

	t.Run("revoke not existed", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := RefreshTokenRepo{DB: tx}

			_, err := repo.RevokeIfUsable(t.Context(), uuid.New(), time.Now())

			require.ErrorIs(t, err, apperrors.ErrRefreshTokenNotFound)
		})
	})

	t.Run("revoke expired", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			user := createTestUser(t, tx, "expired")
			repo := RefreshTokenRepo{DB: tx}
			token := newToken(user.ID, mustParseTime("2026-01-02 19:00:01Z"))
			require.NoError(t, repo.Save(t.Context(), token))

			_, err := repo.RevokeIfUsable(t.Context(), token.ID, mustParseTime("2026-01-03 00:00:00Z"))

			require.ErrorIs(t, err, apperrors.ErrRefreshTokenExpired)
		})
	})

	t.Run("expiring exactly now counts as expired", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			user := createTestUser(t, tx, "boundary")
			repo := RefreshTokenRepo{DB: tx}
			expiresAt := mustParseTime("2026-01-02 19:00:01Z")
			token := newToken(user.ID, expiresAt)
			require.NoError(t, repo.Save(t.Context(), token))

			_, err := repo.RevokeIfUsable(t.Context(), token.ID, expiresAt)

			require.ErrorIs(t, err, apperrors.ErrRefreshTokenExpired)
		})
	})

	t.Run("an instant before expiry still usable", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			user := createTestUser(t, tx, "almostexpired")
			repo := RefreshTokenRepo{DB: tx}
			expiresAt := mustParseTime("2026-01-02 19:00:01Z")
			token := newToken(user.ID, expiresAt)
			require.NoError(t, repo.Save(t.Context(), token))

			got, err := repo.RevokeIfUsable(t.Context(), token.ID, expiresAt.Add(-time.Second))

			require.NoError(t, err)
			require.NotNil(t, got.RevokedAt)
			assert.WithinDuration(t, expiresAt.Add(-time.Second), *got.RevokedAt, 0)
		})
	})

	t.Run("revoke all for user", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			user := createTestUser(t, tx, "multi")
			other := createTestUser(t, tx, "bystander")
			repo := RefreshTokenRepo{DB: tx}

			live1 := newToken(user.ID, farFuture)
			live2 := newToken(user.ID, farFuture)
			otherToken := newToken(other.ID, farFuture)
			require.NoError(t, repo.Save(t.Context(), live1))
			require.NoError(t, repo.Save(t.Context(), live2))
			require.NoError(t, repo.Save(t.Context(), otherToken))

			// One token already revoked, must not be counted again
			_, err := repo.RevokeIfUsable(t.Context(), live1.ID, time.Now().Truncate(time.Second))
			require.NoError(t, err)

			revoked, err := repo.RevokeAllForUser(t.Context(), user.ID, time.Now().Truncate(time.Second))

			require.NoError(t, err)
			assert.EqualValues(t, 1, revoked, "only the remaining live token counts")

			got, err := repo.Get(t.Context(), otherToken.ID)
			require.NoError(t, err)
			assert.Nil(t, got.RevokedAt, "other users keep their sessions")
		})
	})

	t.Run("concurrent revocations pick exactly one winner", func(t *testing.T) {
		// The race needs two real connections, so the rows are committed
		// through the pool instead of the usual rollback transaction
		user := createTestUser(t, pg.Pool, "racer")
		repo := RefreshTokenRepo{DB: pg.Pool}
		token := newToken(user.ID, farFuture)
		require.NoError(t, repo.Save(t.Context(), token))

		t.Cleanup(func() {
			_, err := pg.Pool.Exec(context.Background(), "DELETE FROM refresh_tokens WHERE user_id = $1", user.ID)
			require.NoError(t, err)
			_, err = pg.Pool.Exec(context.Background(), "DELETE FROM users WHERE id = $1", user.ID)
			require.NoError(t, err)
		})

		start := make(chan struct{})
		results := make(chan error, 2)

		var wg sync.WaitGroup
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				_, err := repo.RevokeIfUsable(t.Context(), token.ID, time.Now().Truncate(time.Second))
				results <- err
			}()
		}

		close(start)
		wg.Wait()
		close(results)

		var wins, losses int
		for err := range results {
			switch {
			case err == nil:
				wins++
			case errors.Is(err, apperrors.ErrRefreshTokenRevoked):
				losses++
			default:
				t.Fatalf("unexpected revocation error: %v", err)
			}
		}

		assert.Equal(t, 1, wins, "exactly one caller may revoke the token")
		assert.Equal(t, 1, losses, "the other caller must see it already revoked")
	})
}
