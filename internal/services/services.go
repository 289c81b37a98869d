// Package services holds the business logic behind each HTTP controller. Every
// exported method returns *apierrors.Error values for failures a caller should see.
package services

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/vidtube/backend/internal/apierrors"
	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/cache"
	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/projection"
	"github.com/vidtube/backend/internal/repositories"
)

// AssetStore uploads local files and deletes stored assets.
type AssetStore interface {
	// Upload stores the file at localPath and always removes the local file.
	Upload(ctx context.Context, localPath string) (models.Asset, error)
	Delete(ctx context.Context, assetID string) error
}

// AssetCleaner deletes replaced assets in the background.
type AssetCleaner interface {
	Enqueue(ctx context.Context, assetIDs ...string) error
}

// DurationProber measures the length of a media file in seconds.
type DurationProber interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// Deps aggregates the collaborators shared by the services.
type Deps struct {
	Users         repositories.UserRepository
	Videos        repositories.VideoRepository
	Tweets        repositories.TweetRepository
	Comments      repositories.CommentRepository
	Likes         repositories.LikeRepository
	Playlists     repositories.PlaylistRepository
	Subscriptions repositories.SubscriptionRepository

	Sessions *auth.Manager
	Assets   AssetStore
	Janitor  AssetCleaner
	Prober   DurationProber

	StatsTTL time.Duration
	Now      func() time.Time
}

// Services groups one service per resource.
type Services struct {
	Users         *UserService
	Videos        *VideoService
	Tweets        *TweetService
	Comments      *CommentService
	Likes         *LikeService
	Playlists     *PlaylistService
	Subscriptions *SubscriptionService
	Dashboard     *DashboardService
}

// New wires every service from deps.
func New(deps Deps) *Services {
	if deps.Now == nil {
		deps.Now = func() time.Time { return time.Now().UTC() }
	}

	assembler := projection.NewAssembler(repositories.ProjectionSource{
		Users:         deps.Users,
		Likes:         deps.Likes,
		Subscriptions: deps.Subscriptions,
	})
	// One stats cache is shared so that writers can drop a channel's entry.
	stats := cache.NewTTL[string, models.ChannelStats](deps.StatsTTL)

	return &Services{
		Users: &UserService{
			users:     deps.Users,
			videos:    deps.Videos,
			subs:      deps.Subscriptions,
			sessions:  deps.Sessions,
			assets:    deps.Assets,
			janitor:   deps.Janitor,
			assembler: assembler,
			now:       deps.Now,
		},
		Videos: &VideoService{
			videos:    deps.Videos,
			users:     deps.Users,
			assets:    deps.Assets,
			janitor:   deps.Janitor,
			prober:    deps.Prober,
			assembler: assembler,
			stats:     stats,
			now:       deps.Now,
		},
		Tweets: &TweetService{
			tweets:    deps.Tweets,
			users:     deps.Users,
			assembler: assembler,
			now:       deps.Now,
		},
		Comments: &CommentService{
			comments:  deps.Comments,
			videos:    deps.Videos,
			assembler: assembler,
			now:       deps.Now,
		},
		Likes: &LikeService{
			likes:     deps.Likes,
			videos:    deps.Videos,
			tweets:    deps.Tweets,
			comments:  deps.Comments,
			assembler: assembler,
			stats:     stats,
		},
		Playlists: &PlaylistService{
			playlists: deps.Playlists,
			videos:    deps.Videos,
			users:     deps.Users,
			assembler: assembler,
			now:       deps.Now,
		},
		Subscriptions: &SubscriptionService{
			subs:      deps.Subscriptions,
			users:     deps.Users,
			assembler: assembler,
			stats:     stats,
		},
		Dashboard: &DashboardService{
			videos:    deps.Videos,
			assembler: assembler,
			stats:     stats,
		},
	}
}

// storeError converts repository failures into API errors naming kind.
func storeError(kind string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return apierrors.NotFound(kind + " not found")
	case errors.Is(err, repositories.ErrConflict):
		return apierrors.Conflict(kind + " already exists")
	}
	var apiErr *apierrors.Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return apierrors.Internal("failed to access "+kind, err)
}

// discard removes staged upload files that never reached the asset store.
func discard(paths ...string) {
	for _, path := range paths {
		if path == "" {
			continue
		}
		_ = os.Remove(path)
	}
}

// cleanupTimeout bounds compensating deletes, which outlive request cancellation.
const cleanupTimeout = 10 * time.Second

// deleteAssets removes freshly uploaded assets after a failed write.
func deleteAssets(ctx context.Context, store AssetStore, assets ...models.Asset) {
	logger := logging.FromContext(ctx)
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()
	for _, asset := range assets {
		if asset.ID == "" {
			continue
		}
		if err := store.Delete(ctx, asset.ID); err != nil {
			logger.Warn("cleanup uploaded asset", "assetId", asset.ID, "error", err)
		}
	}
}

// retire hands replaced assets to the janitor. Enqueue never blocks, so a
// full queue only costs a logged warning.
func retire(ctx context.Context, janitor AssetCleaner, assets ...models.Asset) {
	if janitor == nil {
		return
	}
	ids := make([]string, 0, len(assets))
	for _, asset := range assets {
		if asset.ID != "" {
			ids = append(ids, asset.ID)
		}
	}
	if len(ids) == 0 {
		return
	}
	if err := janitor.Enqueue(ctx, ids...); err != nil {
		logging.FromContext(ctx).Warn("schedule asset cleanup", "assetIds", ids, "error", err)
	}
}

// orderedVisible returns the videos for ids in order, skipping missing and hidden ones.
func orderedVisible(ids []string, videos map[string]models.Video, viewerID string) []models.Video {
	out := make([]models.Video, 0, len(ids))
	for _, id := range ids {
		video, ok := videos[id]
		if !ok || !video.VisibleTo(viewerID) {
			continue
		}
		out = append(out, video)
	}
	return out
}
