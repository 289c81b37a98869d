package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/apierrors"
	"github.com/vidtube/backend/internal/cache"
	"github.com/vidtube/backend/internal/guard"
	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/projection"
	"github.com/vidtube/backend/internal/repositories"
)

// ListVideosInput selects a page of videos.
type ListVideosInput struct {
	Page     int
	Limit    int
	UserID   string `json:"userId" validate:"omitempty,uuid"`
	SortBy   string `json:"sortBy" validate:"omitempty,oneof=createdAt views"`
	SortType string `json:"sortType" validate:"omitempty,oneof=asc desc"`
}

// PublishVideoInput describes a new upload. The paths are staged local files
// owned by the service from the moment it is called.
type PublishVideoInput struct {
	Title         string `json:"title" validate:"required,max=200"`
	Description   string `json:"description" validate:"required,max=5000"`
	VideoPath     string `json:"videoFile" validate:"required"`
	ThumbnailPath string `json:"thumbnail" validate:"required"`
}

// UpdateVideoInput edits a video. ThumbnailPath is optional.
type UpdateVideoInput struct {
	Title         string `json:"title" validate:"required,max=200"`
	Description   string `json:"description" validate:"required,max=5000"`
	ThumbnailPath string `json:"thumbnail"`
}

// VideoService implements the video endpoints.
type VideoService struct {
	videos    repositories.VideoRepository
	users     repositories.UserRepository
	assets    AssetStore
	janitor   AssetCleaner
	prober    DurationProber
	assembler *projection.Assembler
	stats     *cache.TTL[string, models.ChannelStats]
	now       func() time.Time
}

// List returns one page of videos visible to viewerID.
func (s *VideoService) List(ctx context.Context, viewerID string, in ListVideosInput) (models.Page[models.VideoCard], error) {
	in.UserID = strings.TrimSpace(in.UserID)
	if err := validateInput(in); err != nil {
		return models.Page[models.VideoCard]{}, err
	}

	req := projection.NormalizePage(in.Page, in.Limit)
	filter := models.VideoFilter{
		OwnerID:   in.UserID,
		ViewerID:  viewerID,
		SortBy:    models.SortByCreatedAt,
		Ascending: in.SortType == "asc",
		Limit:     req.Limit,
		Offset:    req.Offset(),
	}
	if in.SortBy == string(models.SortByViews) {
		filter.SortBy = models.SortByViews
	}

	videos, total, err := s.videos.List(ctx, filter)
	if err != nil {
		return models.Page[models.VideoCard]{}, storeError("video", err)
	}

	cards, err := s.assembler.VideoCards(ctx, videos)
	if err != nil {
		return models.Page[models.VideoCard]{}, apierrors.Internal("failed to load videos", err)
	}
	return projection.NewPage(cards, req, total), nil
}

// Publish uploads the staged files and records a new video owned by ownerID.
func (s *VideoService) Publish(ctx context.Context, ownerID string, in PublishVideoInput) (models.Video, error) {
	ctx, span := logging.StartSpan(ctx, "videos.publish", "owner_id", ownerID)
	defer span.End()
	logger := logging.FromContext(ctx)

	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if err := validateInput(in); err != nil {
		discard(in.VideoPath, in.ThumbnailPath)
		return models.Video{}, err
	}

	var duration float64
	if s.prober != nil {
		seconds, err := s.prober.Duration(ctx, in.VideoPath)
		if err != nil {
			logger.Warn("probe video duration", "error", err)
		} else {
			duration = seconds
		}
	}

	videoFile, err := s.assets.Upload(ctx, in.VideoPath)
	if err != nil {
		discard(in.ThumbnailPath)
		return models.Video{}, apierrors.Internal("failed to upload video file", err)
	}

	thumbnail, err := s.assets.Upload(ctx, in.ThumbnailPath)
	if err != nil {
		deleteAssets(ctx, s.assets, videoFile)
		return models.Video{}, apierrors.Internal("failed to upload thumbnail", err)
	}

	now := s.now()
	video := models.Video{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		VideoFile:   videoFile,
		Thumbnail:   thumbnail,
		Title:       in.Title,
		Description: in.Description,
		Duration:    duration,
		IsPublic:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.videos.Create(ctx, video); err != nil {
		deleteAssets(ctx, s.assets, videoFile, thumbnail)
		return models.Video{}, storeError("video", err)
	}

	s.stats.Invalidate(ownerID)
	logger.Info("video published", "videoId", video.ID, "ownerId", ownerID)
	return video, nil
}

// Get returns the detail projection of videoID, counting the view and recording
// it in the viewer's watch history. Private videos are hidden from non-owners.
func (s *VideoService) Get(ctx context.Context, viewerID, videoID string) (models.VideoDetail, error) {
	video, err := guard.Load(ctx, "video", videoID, s.videos.FindByID)
	if err != nil {
		return models.VideoDetail{}, err
	}
	if !video.VisibleTo(viewerID) {
		return models.VideoDetail{}, apierrors.NotFound("video not found")
	}

	video, err = s.videos.IncrementViews(ctx, video.ID)
	if err != nil {
		return models.VideoDetail{}, storeError("video", err)
	}

	if viewerID != "" {
		if err := s.users.AddToWatchHistory(ctx, viewerID, video.ID); err != nil {
			return models.VideoDetail{}, storeError("watch history", err)
		}
	}

	detail, err := s.assembler.VideoDetail(ctx, viewerID, video)
	if err != nil {
		return models.VideoDetail{}, apierrors.Internal("failed to load video", err)
	}
	return detail, nil
}

// Update edits the title and description of videoID and optionally replaces its thumbnail.
func (s *VideoService) Update(ctx context.Context, actorID, videoID string, in UpdateVideoInput) (models.Video, error) {
	defer discard(in.ThumbnailPath)

	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if err := validateInput(in); err != nil {
		return models.Video{}, err
	}

	var replaced models.Asset
	updated, err := guard.Mutate(ctx, "video", videoID, actorID, s.videos.FindByID,
		func(ctx context.Context, current models.Video) (models.Video, error) {
			next := current
			next.Title = in.Title
			next.Description = in.Description

			if in.ThumbnailPath != "" {
				thumbnail, err := s.assets.Upload(ctx, in.ThumbnailPath)
				if err != nil {
					return models.Video{}, apierrors.Internal("failed to upload thumbnail", err)
				}
				next.Thumbnail = thumbnail
			}

			saved, err := s.videos.Update(ctx, next)
			if err != nil {
				if next.Thumbnail.ID != current.Thumbnail.ID {
					deleteAssets(ctx, s.assets, next.Thumbnail)
				}
				return models.Video{}, err
			}
			if next.Thumbnail.ID != current.Thumbnail.ID {
				replaced = current.Thumbnail
			}
			return saved, nil
		})
	if err != nil {
		return models.Video{}, err
	}

	retire(ctx, s.janitor, replaced)
	return updated, nil
}

// Delete removes videoID with its comments, likes and playlist entries, then
// schedules its assets for deletion.
func (s *VideoService) Delete(ctx context.Context, actorID, videoID string) (models.Video, error) {
	deleted, err := guard.Mutate(ctx, "video", videoID, actorID, s.videos.FindByID,
		func(ctx context.Context, current models.Video) (models.Video, error) {
			if err := s.videos.Delete(ctx, current.ID); err != nil {
				return models.Video{}, err
			}
			return current, nil
		})
	if err != nil {
		return models.Video{}, err
	}

	s.stats.Invalidate(deleted.OwnerID)
	retire(ctx, s.janitor, deleted.VideoFile, deleted.Thumbnail)
	logging.FromContext(ctx).Info("video deleted", "videoId", deleted.ID)
	return deleted, nil
}

// TogglePublish flips the visibility of videoID.
func (s *VideoService) TogglePublish(ctx context.Context, actorID, videoID string) (models.Video, error) {
	return guard.Mutate(ctx, "video", videoID, actorID, s.videos.FindByID,
		func(ctx context.Context, current models.Video) (models.Video, error) {
			current.IsPublic = !current.IsPublic
			return s.videos.Update(ctx, current)
		})
}
