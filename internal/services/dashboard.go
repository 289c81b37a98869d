package services

import (
	"context"

	"github.com/vidtube/backend/internal/apierrors"
	"github.com/vidtube/backend/internal/cache"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/projection"
	"github.com/vidtube/backend/internal/repositories"
)

// DashboardService reports on a channel's own content.
type DashboardService struct {
	videos    repositories.VideoRepository
	assembler *projection.Assembler
	stats     *cache.TTL[string, models.ChannelStats]
}

// Stats totals videos, views, subscribers and likes for channelID. Results are
// cached briefly per channel.
func (s *DashboardService) Stats(ctx context.Context, channelID string) (models.ChannelStats, error) {
	stats, err := s.stats.Get(ctx, channelID, func(ctx context.Context) (models.ChannelStats, error) {
		return s.videos.ChannelStats(ctx, channelID)
	})
	if err != nil {
		return models.ChannelStats{}, storeError("channel", err)
	}
	return stats, nil
}

// Videos lists every video of channelID with its like count, newest first.
func (s *DashboardService) Videos(ctx context.Context, channelID string) ([]models.DashboardVideo, error) {
	videos, err := s.videos.ListByOwner(ctx, channelID)
	if err != nil {
		return nil, storeError("video", err)
	}

	out, err := s.assembler.DashboardVideos(ctx, videos)
	if err != nil {
		return nil, apierrors.Internal("failed to load dashboard videos", err)
	}
	return out, nil
}
