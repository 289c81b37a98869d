package repositories

import (
	"context"

	"github.com/vidtube/backend/internal/models"
)

// VideoRepository exposes data access for uploaded videos.
type VideoRepository interface {
	Create(ctx context.Context, video models.Video) error
	FindByID(ctx context.Context, id string) (models.Video, error)
	FindByIDs(ctx context.Context, ids []string) (map[string]models.Video, error)
	// List returns one page of videos visible to filter.ViewerID and the total match count.
	List(ctx context.Context, filter models.VideoFilter) ([]models.Video, int64, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Video, error)
	Update(ctx context.Context, video models.Video) (models.Video, error)
	IncrementViews(ctx context.Context, id string) (models.Video, error)
	// Delete removes the video with its comments, likes, playlist entries and history entries.
	Delete(ctx context.Context, id string) error
	ChannelStats(ctx context.Context, ownerID string) (models.ChannelStats, error)
}
