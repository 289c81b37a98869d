package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/vidtube/backend/internal/models"
)

// ErrInactiveUser indicates the account behind a token has been deactivated.
var ErrInactiveUser = errors.New("user is deactivated")

// UserLookup resolves the user a refresh token was issued to.
type UserLookup interface {
	FindByID(ctx context.Context, id string) (models.User, error)
}

// RefreshTokenStore persists the single active refresh token of each user.
type RefreshTokenStore interface {
	// StoreRefreshToken overwrites whatever refresh token the user held.
	StoreRefreshToken(ctx context.Context, userID, token string) error
	// SwapRefreshToken replaces current with next only if current is still stored,
	// returning ErrTokenReused otherwise.
	SwapRefreshToken(ctx context.Context, userID, current, next string) error
	// ClearRefreshToken removes the stored refresh token.
	ClearRefreshToken(ctx context.Context, userID string) error
}

// Manager manages the lifecycle of issued session tokens backed by the credential store.
type Manager struct {
	tokens *TokenService
	users  UserLookup
	store  RefreshTokenStore
}

// NewManager constructs a Manager issuing tokens through the provided TokenService.
func NewManager(tokens *TokenService, users UserLookup, store RefreshTokenStore) *Manager {
	if tokens == nil || users == nil || store == nil {
		panic("auth: token service, user lookup and refresh store must not be nil")
	}
	return &Manager{tokens: tokens, users: users, store: store}
}

// Issue creates a new pair of access and refresh tokens for the user. The refresh
// token is persisted before it is returned; on a store failure no tokens are returned.
func (m *Manager) Issue(ctx context.Context, user models.User) (models.SessionTokens, error) {
	tokens, err := m.sign(user)
	if err != nil {
		return models.SessionTokens{}, err
	}

	if err := m.store.StoreRefreshToken(ctx, user.ID, tokens.RefreshToken); err != nil {
		return models.SessionTokens{}, fmt.Errorf("persist refresh token: %w", err)
	}

	return tokens, nil
}

// Refresh exchanges a refresh token for a new session token pair. The stored token
// is rotated with a conditional swap so that a concurrent refresh using the same
// token observes ErrTokenReused.
func (m *Manager) Refresh(ctx context.Context, refreshToken string) (models.SessionTokens, models.User, error) {
	claims, err := m.tokens.ParseRefreshToken(refreshToken)
	if err != nil {
		return models.SessionTokens{}, models.User{}, err
	}

	user, err := m.users.FindByID(ctx, claims.Subject)
	if err != nil {
		return models.SessionTokens{}, models.User{}, fmt.Errorf("load refresh token owner: %w", err)
	}

	if _, err := m.tokens.VerifyRefreshToken(refreshToken, user.RefreshToken); err != nil {
		return models.SessionTokens{}, models.User{}, err
	}

	if !user.IsActive {
		return models.SessionTokens{}, models.User{}, ErrInactiveUser
	}

	tokens, err := m.sign(user)
	if err != nil {
		return models.SessionTokens{}, models.User{}, err
	}

	if err := m.store.SwapRefreshToken(ctx, user.ID, refreshToken, tokens.RefreshToken); err != nil {
		return models.SessionTokens{}, models.User{}, err
	}

	user.RefreshToken = tokens.RefreshToken
	return tokens, user, nil
}

// Revoke clears the user's stored refresh token.
func (m *Manager) Revoke(ctx context.Context, userID string) error {
	if userID == "" {
		return nil
	}
	return m.store.ClearRefreshToken(ctx, userID)
}

// Authenticate verifies an access token and returns the identity it asserts.
func (m *Manager) Authenticate(accessToken string) (Identity, error) {
	claims, err := m.tokens.VerifyAccessToken(accessToken)
	if err != nil {
		return Identity{}, err
	}
	return Identity{
		UserID:   claims.UserID,
		Username: claims.Username,
		Email:    claims.Email,
		FullName: claims.FullName,
	}, nil
}

func (m *Manager) sign(user models.User) (models.SessionTokens, error) {
	if user.ID == "" {
		return models.SessionTokens{}, errors.New("user id must be provided")
	}

	accessToken, accessExpiresAt, err := m.tokens.IssueAccessToken(user)
	if err != nil {
		return models.SessionTokens{}, err
	}

	refreshToken, refreshExpiresAt, err := m.tokens.SignRefreshToken(user.ID)
	if err != nil {
		return models.SessionTokens{}, err
	}

	return models.SessionTokens{
		AccessToken:      accessToken,
		AccessExpiresAt:  accessExpiresAt,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: refreshExpiresAt,
	}, nil
}
