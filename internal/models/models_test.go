package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_SprintStatusTransitions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		from    SprintStatus
		to      SprintStatus
		allowed bool
	}{
		{SprintPlanned, SprintActive, true},
		{SprintActive, SprintCompleted, true},
		{SprintPlanned, SprintCompleted, false},
		{SprintActive, SprintPlanned, false},
		{SprintCompleted, SprintActive, false},
		{SprintCompleted, SprintPlanned, false},
		{SprintPlanned, SprintPlanned, false},
		{SprintStatus("bogus"), SprintActive, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+" to "+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func Test_RefreshTokenUsable(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	revoked := now.Add(-time.Minute)

	tests := []struct {
		name   string
		token  RefreshToken
		usable bool
	}{
		{"live", RefreshToken{ExpiresAt: now.Add(time.Hour)}, true},
		{"revoked", RefreshToken{ExpiresAt: now.Add(time.Hour), RevokedAt: &revoked}, false},
		{"expired", RefreshToken{ExpiresAt: now.Add(-time.Second)}, false},
		{"expiring exactly now", RefreshToken{ExpiresAt: now}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.usable, tt.token.Usable(now))
		})
	}
}

func Test_UserPublic(t *testing.T) {
	t.Parallel()

	user := User{
		ID:           uuid.New(),
		Username:     "nk",
		Email:        "nk@example.com",
		PasswordHash: "super-secret-hash",
		Role:         RoleUser,
		Status:       StatusActive,
	}

	data, err := json.Marshal(user.Public())

	require.NoError(t, err)
	assert.NotContains(t, string(data), "super-secret-hash", "hash must never serialize")
	assert.Contains(t, string(data), `"username":"nk"`)
}

func Test_UserIsActive(t *testing.T) {
	t.Parallel()

	assert.True(t, User{Status: StatusActive}.IsActive())
	assert.False(t, User{Status: StatusInactive}.IsActive())
	assert.False(t, User{Status: StatusSuspended}.IsActive())
	assert.False(t, User{}.IsActive())
}
