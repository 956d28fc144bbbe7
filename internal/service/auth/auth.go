package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/devadeboye/mini-jira/internal/apperrors"
	"github.com/devadeboye/mini-jira/internal/logger"
	"github.com/devadeboye/mini-jira/internal/models"
	"github.com/devadeboye/mini-jira/internal/repository"
)

const (
	defaultRefreshCookieName = "refresh_token"
	accessAuthScheme         = "Bearer"
)

// Hash of an arbitrary string. Compared against when the username is
// unknown so a login attempt costs the same either way.
const dummyPasswordHash = "$2a$10$N9qo8uLOickgx2ZMRZoMye1J1lwb4tUxOsWMZ.LSy/Ni1IV5sdVPi"

type Config struct {
	// Hasher used during registration or login
	// BcryptHasher is used if not set
	Hasher PasswordHasher

	// Name of the cookie carrying the refresh token
	RefreshCookieName string

	// Refresh cookies get the Secure attribute when true
	SecureCookies bool

	// Clock override for tests
	Now func() time.Time
}

// Service orchestrates the login, register, refresh and logout flows
// calling the hasher, the token manager and the repositories
type Service struct {
	tokens *TokenManager
	hasher PasswordHasher

	userRepo    repository.UserRepo
	refreshRepo repository.RefreshTokenRepo

	refreshCookieName string
	secureCookies     bool
	now               func() time.Time
}

type RegisterParams struct {
	Username string
	Email    string
	Password string
	FullName string
}

func NewService(cfg Config, tokens *TokenManager, userRepo repository.UserRepo, refreshRepo repository.RefreshTokenRepo) (*Service, error) {
	if tokens == nil {
		return nil, errors.New("token manager must not be nil")
	}
	if userRepo == nil || refreshRepo == nil {
		return nil, errors.New("repos must not be nil")
	}

	hasher := cfg.Hasher
	if hasher == nil {
		hasher = BcryptHasher{}
	}
	if cfg.RefreshCookieName == "" {
		cfg.RefreshCookieName = defaultRefreshCookieName
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Service{
		tokens:            tokens,
		hasher:            hasher,
		userRepo:          userRepo,
		refreshRepo:       refreshRepo,
		refreshCookieName: cfg.RefreshCookieName,
		secureCookies:     cfg.SecureCookies,
		now:               cfg.Now,
	}, nil
}

// Register creates a new active user and issues the first token pair.
// The pre-insert lookup checks both unique columns at once and is optimistic:
// the unique constraints on the users table enforce the invariant when two
// registrations race.
func (s *Service) Register(ctx context.Context, params RegisterParams) (models.TokenPair, models.User, error) {
	var user models.User

	taken, err := s.userRepo.UsernameOrEmailTaken(ctx, params.Username, params.Email)
	if err != nil {
		return models.TokenPair{}, user, fmt.Errorf("error while checking user uniqueness. Err: %w", err)
	}
	if taken {
		return models.TokenPair{}, user, apperrors.ErrUserAlreadyExists
	}

	hash, err := s.hasher.Hash(params.Password)
	if err != nil {
		return models.TokenPair{}, user, fmt.Errorf("can't use this as password, error=%w", err)
	}

	user, err = s.userRepo.Create(ctx, repository.CreateUserParams{
		Username:     params.Username,
		Email:        params.Email,
		PasswordHash: hash,
		FullName:     params.FullName,
		Role:         models.RoleUser,
		Status:       models.StatusActive,
	})
	if err != nil {
		return models.TokenPair{}, user, err
	}

	pair, err := s.tokens.GeneratePair(ctx, user)
	if err != nil {
		return models.TokenPair{}, user, fmt.Errorf("token could not generated, sorry. %w", err)
	}

	return pair, user, nil
}

// Login verifies credentials and issues a fresh token pair.
// Unknown username, wrong password and inactive account all collapse to the
// same error so the response can't be used to enumerate users.
func (s *Service) Login(ctx context.Context, username string, password string) (models.TokenPair, models.User, error) {
	user, err := s.userRepo.GetWithPassword(ctx, username)
	if err != nil {
		// Burn a compare anyway so the timing doesn't leak user existence
		_ = s.hasher.Compare(dummyPasswordHash, password)
		return models.TokenPair{}, user, apperrors.ErrInvalidCredentials
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return models.TokenPair{}, user, apperrors.ErrInvalidCredentials
	}

	if !user.IsActive() {
		return models.TokenPair{}, user, apperrors.ErrInvalidCredentials
	}

	if err := s.userRepo.TouchLastLogin(ctx, user.ID, s.now()); err != nil {
		return models.TokenPair{}, user, fmt.Errorf("error while updating last login. Err: %w", err)
	}

	pair, err := s.tokens.GeneratePair(ctx, user)
	if err != nil {
		return models.TokenPair{}, user, fmt.Errorf("token could not generated, sorry. %w", err)
	}

	user.PasswordHash = ""
	return pair, user, nil
}

// Refresh rotates the token pair: the presented refresh token is revoked
// atomically and a brand new pair is issued, so the old one can never be
// replayed
func (s *Service) Refresh(ctx context.Context, refresh string) (models.TokenPair, models.User, error) {
	token, err := s.tokens.UseRefresh(ctx, refresh)
	if err != nil {
		return models.TokenPair{}, models.User{}, err
	}

	user, err := s.userRepo.GetByID(ctx, token.UserID)
	if err != nil {
		return models.TokenPair{}, user, fmt.Errorf("%w: owner missing", apperrors.ErrTokenInvalid)
	}
	if !user.IsActive() {
		return models.TokenPair{}, user, apperrors.ErrUserInactive
	}

	pair, err := s.tokens.GeneratePair(ctx, user)
	if err != nil {
		return models.TokenPair{}, user, fmt.Errorf("token could not generated, sorry. %w", err)
	}

	return pair, user, nil
}

// Logout revokes every outstanding refresh token of the user, not just the
// current session. Already issued access tokens stay valid until expiry.
func (s *Service) Logout(ctx context.Context, userID uuid.UUID) (int64, error) {
	revoked, err := s.refreshRepo.RevokeAllForUser(ctx, userID, s.now())
	if err != nil {
		return 0, fmt.Errorf("error while revoking user tokens. Err: %w", err)
	}

	return revoked, nil
}

// Authenticate resolves the user behind the request's bearer token.
// Every failure mode (missing header, bad signature, expired token, unknown
// or inactive user) is reported as apperrors.ErrTokenInvalid.
func (s *Service) Authenticate(ctx context.Context, r *http.Request) (models.User, error) {
	var user models.User

	access, err := bearerToken(r)
	if err != nil {
		return user, err
	}

	claims, err := s.tokens.ParseAccess(access)
	if err != nil {
		return user, err
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return user, fmt.Errorf("%w: malformed subject", apperrors.ErrTokenInvalid)
	}

	user, err = s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return user, fmt.Errorf("%w: owner missing", apperrors.ErrTokenInvalid)
	}
	if !user.IsActive() {
		return models.User{}, fmt.Errorf("%w: %w", apperrors.ErrTokenInvalid, apperrors.ErrUserInactive)
	}

	// Best effort, a failed touch must not fail the request
	if err := s.userRepo.TouchLastActivity(ctx, user.ID, s.now()); err != nil {
		logger.FromContext(ctx).Warn().Err(err).Msg("can't touch last activity")
	}

	return user, nil
}

// Header must be exactly 'Bearer <token>'
func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", fmt.Errorf("%w: no authorization header", apperrors.ErrTokenInvalid)
	}

	scheme, token, found := strings.Cut(header, " ")
	if !found || scheme != accessAuthScheme || token == "" || strings.Contains(token, " ") {
		return "", fmt.Errorf("%w: malformed authorization header", apperrors.ErrTokenInvalid)
	}

	return token, nil
}

// SetTokenPair writes the refresh token as an httpOnly lax cookie on path /.
// The access token travels in the response body, that part is on the handler.
func (s *Service) SetTokenPair(w http.ResponseWriter, pair models.TokenPair) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.refreshCookieName,
		Value:    pair.Refresh.Value,
		Path:     "/",
		MaxAge:   int(time.Until(pair.Refresh.ExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearRefreshCookie drops the refresh cookie on logout
func (s *Service) ClearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.refreshCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// ReadRefresh returns the refresh token from the request cookie
func (s *Service) ReadRefresh(r *http.Request) (string, error) {
	cookie, err := r.Cookie(s.refreshCookieName)
	if err != nil || cookie.Value == "" {
		return "", apperrors.ErrRefreshTokenNotFound
	}

	return cookie.Value, nil
}
