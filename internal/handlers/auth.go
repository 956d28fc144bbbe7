package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/devadeboye/mini-jira/internal/apperrors"
	"github.com/devadeboye/mini-jira/internal/handlers/middleware"
	"github.com/devadeboye/mini-jira/internal/handlers/render"
	"github.com/devadeboye/mini-jira/internal/logger"
	"github.com/devadeboye/mini-jira/internal/models"
	"github.com/devadeboye/mini-jira/internal/service/auth"
)

// Auth gateway as the handler sees it
type authService interface {
	// Register new user
	// Has to return apperrors.ErrUserAlreadyExists if username or email is taken
	Register(ctx context.Context, params auth.RegisterParams) (models.TokenPair, models.User, error)

	// Login with credentials
	// Every authentication failure is apperrors.ErrInvalidCredentials
	Login(ctx context.Context, username string, password string) (models.TokenPair, models.User, error)

	// Rotate tokens using a live refresh token
	Refresh(ctx context.Context, refresh string) (models.TokenPair, models.User, error)

	// Revoke all outstanding refresh tokens of the user
	Logout(ctx context.Context, userID uuid.UUID) (int64, error)

	// Refresh cookie plumbing
	SetTokenPair(w http.ResponseWriter, pair models.TokenPair)
	ClearRefreshCookie(w http.ResponseWriter)
	ReadRefresh(r *http.Request) (string, error)
}

type AuthHandler struct {
	auth authService
}

func NewAuth(auth authService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Success body shared by register, login and refresh.
// The refresh token travels only in the httpOnly cookie.
type tokenResponse struct {
	AccessToken string            `json:"accessToken"`
	User        models.PublicUser `json:"user"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	type RegisterRequest struct {
		Username string `json:"username" validate:"required,min=3,max=50"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=6"`
		FullName string `json:"fullName" validate:"required,max=100"`
	}

	data, err := render.BindAndValidate[RegisterRequest](w, r)
	if err != nil {
		return
	}

	pair, user, err := h.auth.Register(r.Context(), auth.RegisterParams{
		Username: data.Username,
		Email:    data.Email,
		Password: data.Password,
		FullName: data.FullName,
	})
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrUserAlreadyExists):
			render.ServiceError(w, "Username or email already exists", http.StatusConflict)
		default:
			logger.FromRequest(r).Error().Err(err).Msg("register failed")
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	h.auth.SetTokenPair(w, pair)
	render.JSONWithStatus(w, tokenResponse{AccessToken: pair.Access.Value, User: user.Public()}, http.StatusCreated)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	type LoginRequest struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required,min=6"`
	}

	data, err := render.BindAndValidate[LoginRequest](w, r)
	if err != nil {
		return
	}

	pair, user, err := h.auth.Login(r.Context(), data.Username, data.Password)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrInvalidCredentials):
			render.ServiceError(w, "Invalid credentials", http.StatusUnauthorized)
		default:
			logger.FromRequest(r).Error().Err(err).Msg("login failed")
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	h.auth.SetTokenPair(w, pair)
	render.JSON(w, tokenResponse{AccessToken: pair.Access.Value, User: user.Public()})
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	refresh, err := h.auth.ReadRefresh(r)
	if err != nil {
		// Fall back to the body for clients that can't send cookies
		type RefreshRequest struct {
			RefreshToken string `json:"refreshToken" validate:"required"`
		}
		data, bindErr := render.BindAndValidate[RefreshRequest](w, r)
		if bindErr != nil {
			return
		}
		refresh = data.RefreshToken
	}

	pair, user, err := h.auth.Refresh(r.Context(), refresh)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrTokenInvalid),
			errors.Is(err, apperrors.ErrRefreshTokenNotFound),
			errors.Is(err, apperrors.ErrRefreshTokenRevoked),
			errors.Is(err, apperrors.ErrRefreshTokenExpired),
			errors.Is(err, apperrors.ErrUserNotFound),
			errors.Is(err, apperrors.ErrUserInactive):
			// Which check failed is deliberately not propagated
			logger.FromRequest(r).Info().Err(err).Msg("refresh rejected")
			render.ServiceError(w, "Invalid or expired refresh token", http.StatusUnauthorized)
		default:
			logger.FromRequest(r).Error().Err(err).Msg("refresh failed")
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	h.auth.SetTokenPair(w, pair)
	render.JSON(w, tokenResponse{AccessToken: pair.Access.Value, User: user.Public()})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	type LogoutResponse struct {
		Message         string `json:"message"`
		SessionsRevoked int64  `json:"sessionsRevoked"`
	}

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		render.ServiceError(w, "Invalid or expired token", http.StatusUnauthorized)
		return
	}

	revoked, err := h.auth.Logout(r.Context(), user.ID)
	if err != nil {
		logger.FromRequest(r).Error().Err(err).Msg("logout failed")
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.auth.ClearRefreshCookie(w)
	render.JSON(w, LogoutResponse{Message: "Logged out", SessionsRevoked: revoked})
}

// Me returns the authenticated user's public profile
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		render.ServiceError(w, "Invalid or expired token", http.StatusUnauthorized)
		return
	}

	render.JSON(w, user.Public())
}
