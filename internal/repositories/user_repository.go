package repositories

import (
	"context"

	"github.com/vidtube/backend/internal/models"
)

// UserRepository defines the data access contract for users, their session
// state and their watch history.
type UserRepository interface {
	Create(ctx context.Context, user models.User) error
	FindByID(ctx context.Context, id string) (models.User, error)
	// FindByLogin matches either the username or the email. Empty values never match.
	FindByLogin(ctx context.Context, username, email string) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
	Profiles(ctx context.Context, ids []string) (map[string]models.User, error)

	UpdateAccount(ctx context.Context, id, fullName, email string) (models.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateAvatar(ctx context.Context, id string, avatar models.Asset) (models.User, error)
	UpdateCoverImage(ctx context.Context, id string, cover models.Asset) (models.User, error)
	SetActive(ctx context.Context, id string, active bool) error

	StoreRefreshToken(ctx context.Context, userID, token string) error
	SwapRefreshToken(ctx context.Context, userID, current, next string) error
	ClearRefreshToken(ctx context.Context, userID string) error

	// AddToWatchHistory records a view, moving an already watched video to the front.
	AddToWatchHistory(ctx context.Context, userID, videoID string) error
	// WatchHistory returns watched video ids, most recent first.
	WatchHistory(ctx context.Context, userID string) ([]string, error)
}
