package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/config"
	"github.com/vidtube/backend/internal/models"
)

var (
	// ErrInvalidToken indicates a malformed, mis-signed or expired token.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrTokenReused indicates a refresh token that no longer matches the stored one.
	ErrTokenReused = errors.New("refresh token is expired or used")
)

// AccessClaims is the claim set carried by access tokens.
type AccessClaims struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	jwt.RegisteredClaims
}

// RefreshClaims is the claim set carried by refresh tokens. Subject holds the user id.
type RefreshClaims struct {
	jwt.RegisteredClaims
}

// TokenService signs and verifies access and refresh tokens with independent secrets.
type TokenService struct {
	accessSecret  []byte
	accessTTL     time.Duration
	refreshSecret []byte
	refreshTTL    time.Duration

	now func() time.Time
}

// NewTokenService constructs a TokenService from the auth configuration.
func NewTokenService(cfg config.AuthConfig) *TokenService {
	return &TokenService{
		accessSecret:  []byte(cfg.AccessSecret),
		accessTTL:     cfg.AccessTTL,
		refreshSecret: []byte(cfg.RefreshSecret),
		refreshTTL:    cfg.RefreshTTL,
		now:           time.Now,
	}
}

// IssueAccessToken encodes the user's identity with a short expiry.
func (s *TokenService) IssueAccessToken(user models.User) (string, time.Time, error) {
	now := s.now().UTC()
	expiresAt := now.Add(s.accessTTL)
	claims := AccessClaims{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		FullName: user.FullName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.accessSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign access token: %w", err)
	}
	return signed, expiresAt, nil
}

// SignRefreshToken encodes the user id with a long expiry. A random jti keeps
// tokens issued within the same second distinct.
func (s *TokenService) SignRefreshToken(userID string) (string, time.Time, error) {
	if userID == "" {
		return "", time.Time{}, errors.New("user id must be provided")
	}

	now := s.now().UTC()
	expiresAt := now.Add(s.refreshTTL)
	claims := RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.refreshSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign refresh token: %w", err)
	}
	return signed, expiresAt, nil
}

// VerifyAccessToken checks signature and expiry and returns the embedded claims.
func (s *TokenService) VerifyAccessToken(token string) (AccessClaims, error) {
	var claims AccessClaims
	if err := s.parse(token, &claims, s.accessSecret); err != nil {
		return AccessClaims{}, err
	}
	if claims.UserID == "" {
		return AccessClaims{}, ErrInvalidToken
	}
	return claims, nil
}

// ParseRefreshToken checks signature and expiry without consulting stored state.
func (s *TokenService) ParseRefreshToken(token string) (RefreshClaims, error) {
	var claims RefreshClaims
	if err := s.parse(token, &claims, s.refreshSecret); err != nil {
		return RefreshClaims{}, err
	}
	if claims.Subject == "" {
		return RefreshClaims{}, ErrInvalidToken
	}
	return claims, nil
}

// VerifyRefreshToken parses token and additionally requires it to equal the
// value currently stored for the user.
func (s *TokenService) VerifyRefreshToken(token, stored string) (RefreshClaims, error) {
	claims, err := s.ParseRefreshToken(token)
	if err != nil {
		return RefreshClaims{}, err
	}
	if stored == "" || subtle.ConstantTimeCompare([]byte(token), []byte(stored)) != 1 {
		return RefreshClaims{}, ErrTokenReused
	}
	return claims, nil
}

func (s *TokenService) parse(token string, claims jwt.Claims, secret []byte) error {
	if token == "" {
		return ErrInvalidToken
	}

	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return ErrInvalidToken
	}
	return nil
}
