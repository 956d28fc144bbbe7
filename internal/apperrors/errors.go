package apperrors

import (
	"errors"
)

var (
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserInactive       = errors.New("user is not active")
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrTokenInvalid         = errors.New("token is invalid or expired")
	ErrRefreshTokenNotFound = errors.New("refresh token not found")
	ErrRefreshTokenRevoked  = errors.New("refresh token is revoked")
	ErrRefreshTokenExpired  = errors.New("refresh token is expired")

	ErrPermissionDenied = errors.New("permission denied")

	ErrProjectNotFound   = errors.New("project not found")
	ErrSprintNotFound    = errors.New("sprint not found")
	ErrWorkItemNotFound  = errors.New("work item not found")
	ErrInvalidTransition = errors.New("invalid sprint status transition")
	ErrInvalidItemState  = errors.New("invalid work item status")
)
