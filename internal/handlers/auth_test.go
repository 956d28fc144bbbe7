package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devadeboye/mini-jira/internal/apperrors"
	"github.com/devadeboye/mini-jira/internal/models"
	"github.com/devadeboye/mini-jira/internal/service/auth"
)

// stubAuthService lets handler tests script the gateway outcome
type stubAuthService struct {
	refreshErr error
}

func (s *stubAuthService) Register(context.Context, auth.RegisterParams) (models.TokenPair, models.User, error) {
	return models.TokenPair{}, models.User{}, nil
}

func (s *stubAuthService) Login(context.Context, string, string) (models.TokenPair, models.User, error) {
	return models.TokenPair{}, models.User{}, nil
}

func (s *stubAuthService) Refresh(context.Context, string) (models.TokenPair, models.User, error) {
	return models.TokenPair{}, models.User{}, s.refreshErr
}

func (s *stubAuthService) Logout(context.Context, uuid.UUID) (int64, error) { return 0, nil }

func (s *stubAuthService) SetTokenPair(http.ResponseWriter, models.TokenPair) {}
func (s *stubAuthService) ClearRefreshCookie(http.ResponseWriter)            {}

func (s *stubAuthService) ReadRefresh(*http.Request) (string, error) {
	return "some-refresh-token", nil
}

func Test_AuthHandlerRefreshStatuses(t *testing.T) {
	t.Parallel()

	doRefresh := func(t *testing.T, serviceErr error) *httptest.ResponseRecorder {
		t.Helper()

		handler := NewAuth(&stubAuthService{refreshErr: serviceErr})
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodPost, "/auth/refresh", strings.NewReader("{}"))

		handler.Refresh(recorder, request)
		return recorder
	}

	t.Run("rejections stay uniform 401", func(t *testing.T) {
		rejections := []error{
			apperrors.ErrTokenInvalid,
			apperrors.ErrRefreshTokenNotFound,
			apperrors.ErrRefreshTokenRevoked,
			apperrors.ErrRefreshTokenExpired,
			apperrors.ErrUserNotFound,
			apperrors.ErrUserInactive,
		}

		for _, serviceErr := range rejections {
			recorder := doRefresh(t, serviceErr)

			require.Equal(t, http.StatusUnauthorized, recorder.Code, "error: %v", serviceErr)
			assert.JSONEq(t,
				`{"error": "service_error", "message": "Invalid or expired refresh token"}`,
				recorder.Body.String(),
			)
		}
	})

	t.Run("infrastructure failure is 500 and leaks nothing", func(t *testing.T) {
		recorder := doRefresh(t, errors.New("db error: connection reset"))

		require.Equal(t, http.StatusInternalServerError, recorder.Code)
		assert.JSONEq(t,
			`{"error": "service_error", "message": "Internal server error"}`,
			recorder.Body.String(),
		)
		assert.NotContains(t, recorder.Body.String(), "connection reset")
	})

	t.Run("wrapped rejection is still 401", func(t *testing.T) {
		wrapped := errors.Join(errors.New("can't use refresh token"), apperrors.ErrRefreshTokenRevoked)

		recorder := doRefresh(t, wrapped)

		require.Equal(t, http.StatusUnauthorized, recorder.Code)
	})
}
