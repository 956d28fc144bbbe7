package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/devadeboye/mini-jira/internal/apperrors"
	"github.com/devadeboye/mini-jira/internal/models"
	"github.com/devadeboye/mini-jira/internal/repository"
)

const (
	defaultAccessTokenTTL  = 15 * time.Minute
	defaultRefreshTokenTTL = 7 * 24 * time.Hour
	defaultSigningMethod   = "HS256"
	defaultIssuer          = "mini-jira"
)

// Claims of the short lived stateless access token.
// Validity is determined purely by signature and expiry, there is no
// revocation path before the token expires naturally.
type AccessTokenClaims struct {
	jwt.RegisteredClaims
	Username string      `json:"username"`
	Email    string      `json:"email"`
	Role     models.Role `json:"role"`
}

// Claims of the refresh token. ID (jti) references the persisted
// RefreshToken record which is the source of truth for revocation,
// the signed token itself is only proof of possession.
type RefreshTokenClaims struct {
	jwt.RegisteredClaims
}

// Token manager config with sensible defaults
type TokenConfig struct {
	// Secret key to sign tokens
	// Required to be set
	SecretKey string

	// JWT MAC (Message Authentication Code) algorithm
	// If not set than default is used
	Alg string

	// Issuer claim, default is used when empty
	Issuer string

	// Access and refresh token lifetimes
	// If not set than default is used
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// Clock override for tests
	Now func() time.Time
}

type TokenManager struct {
	// Secret key to sign tokens
	key string

	// JWT MAC (Message Authentication Code) algorithm
	alg jwt.SigningMethod

	issuer string

	// Access and refresh token lifetimes
	accessTTL  time.Duration
	refreshTTL time.Duration

	// Refresh token ledger
	refreshRepo repository.RefreshTokenRepo

	now func() time.Time
}

func NewTokenManager(cfg TokenConfig, refreshRepo repository.RefreshTokenRepo) (*TokenManager, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("secret key must not be empty")
	}

	if cfg.Alg == "" {
		cfg.Alg = defaultSigningMethod
	}
	if cfg.Issuer == "" {
		cfg.Issuer = defaultIssuer
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	setDefaultDuration := func(field *time.Duration, def time.Duration) {
		if *field == 0 {
			*field = def
		}
	}
	setDefaultDuration(&cfg.AccessTTL, defaultAccessTokenTTL)
	setDefaultDuration(&cfg.RefreshTTL, defaultRefreshTokenTTL)

	return &TokenManager{
		key:         cfg.SecretKey,
		alg:         jwt.GetSigningMethod(cfg.Alg),
		issuer:      cfg.Issuer,
		accessTTL:   cfg.AccessTTL,
		refreshTTL:  cfg.RefreshTTL,
		refreshRepo: refreshRepo,
		now:         cfg.Now,
	}, nil
}

// GeneratePair mints an access and a refresh token and persists the refresh
// token record keyed by its jti claim
func (m *TokenManager) GeneratePair(ctx context.Context, user models.User) (models.TokenPair, error) {
	var pair models.TokenPair
	now := m.now().Truncate(time.Second)
	accessExpiresAt := now.Add(m.accessTTL)
	refreshExpiresAt := now.Add(m.refreshTTL)

	accessToken := jwt.NewWithClaims(
		m.alg,
		AccessTokenClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        uuid.NewString(),
				Issuer:    m.issuer,
				Subject:   user.ID.String(),
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(accessExpiresAt),
			},
			Username: user.Username,
			Email:    user.Email,
			Role:     user.Role,
		},
	)
	access, err := accessToken.SignedString([]byte(m.key))
	if err != nil {
		return pair, fmt.Errorf("error while signing access token. Err: %w", err)
	}

	// Fresh record id doubles as the refresh token jti
	recordID := uuid.New()
	refreshToken := jwt.NewWithClaims(
		m.alg,
		RefreshTokenClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        recordID.String(),
				Issuer:    m.issuer,
				Subject:   user.ID.String(),
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(refreshExpiresAt),
			},
		},
	)
	refresh, err := refreshToken.SignedString([]byte(m.key))
	if err != nil {
		return pair, fmt.Errorf("error while signing refresh token. Err: %w", err)
	}

	err = m.refreshRepo.Save(ctx, models.RefreshToken{
		ID:        recordID,
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: refreshExpiresAt,
		RevokedAt: nil,
	})
	if err != nil {
		return pair, fmt.Errorf("error while saving refresh token. Err: %w", err)
	}

	return models.TokenPair{
		Access:  models.IssuedToken{Value: access, ExpiresAt: accessExpiresAt},
		Refresh: models.IssuedToken{Value: refresh, ExpiresAt: refreshExpiresAt},
	}, nil
}

// Parse and validate access token
// Any verification failure collapses to apperrors.ErrTokenInvalid so callers
// can't tell which check failed
func (m *TokenManager) ParseAccess(access string) (AccessTokenClaims, error) {
	claims := &AccessTokenClaims{}

	_, err := jwt.ParseWithClaims(
		access,
		claims,
		func(t *jwt.Token) (any, error) { return []byte(m.key), nil },
		jwt.WithValidMethods([]string{m.alg.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return AccessTokenClaims{}, fmt.Errorf("%w: %w", apperrors.ErrTokenInvalid, err)
	}

	return *claims, nil
}

// UseRefresh validates the signed refresh token and atomically revokes the
// backing record. Both the signed claims and the stored record must agree
// the token is live. Returns the revoked record on success: its UserID
// identifies whom to issue the new pair for.
func (m *TokenManager) UseRefresh(ctx context.Context, refresh string) (models.RefreshToken, error) {
	claims := &RefreshTokenClaims{}

	_, err := jwt.ParseWithClaims(
		refresh,
		claims,
		func(t *jwt.Token) (any, error) { return []byte(m.key), nil },
		jwt.WithValidMethods([]string{m.alg.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return models.RefreshToken{}, fmt.Errorf("%w: %w", apperrors.ErrTokenInvalid, err)
	}

	tokenID, err := uuid.Parse(claims.ID)
	if err != nil {
		return models.RefreshToken{}, fmt.Errorf("%w: malformed jti", apperrors.ErrTokenInvalid)
	}

	token, err := m.refreshRepo.RevokeIfUsable(ctx, tokenID, m.now())
	if err != nil {
		return token, fmt.Errorf("error while using refresh token. Err: %w", err)
	}

	return token, nil
}

func (m *TokenManager) RefreshTTL() time.Duration {
	return m.refreshTTL
}
