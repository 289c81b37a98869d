package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/apierrors"
	"github.com/vidtube/backend/internal/guard"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/projection"
	"github.com/vidtube/backend/internal/repositories"
)

// PlaylistInput names and describes a playlist.
type PlaylistInput struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=1000"`
}

// PlaylistService implements the playlist endpoints.
type PlaylistService struct {
	playlists repositories.PlaylistRepository
	videos    repositories.VideoRepository
	users     repositories.UserRepository
	assembler *projection.Assembler
	now       func() time.Time
}

// Create makes an empty playlist owned by ownerID.
func (s *PlaylistService) Create(ctx context.Context, ownerID string, in PlaylistInput) (models.Playlist, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if err := validateInput(in); err != nil {
		return models.Playlist{}, err
	}

	now := s.now()
	playlist := models.Playlist{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Name:        in.Name,
		Description: in.Description,
		VideoIDs:    []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.playlists.Create(ctx, playlist); err != nil {
		return models.Playlist{}, storeError("playlist", err)
	}
	return playlist, nil
}

// Get returns playlistID with its owner and the videos viewerID may see.
func (s *PlaylistService) Get(ctx context.Context, viewerID, playlistID string) (models.PlaylistDetail, error) {
	playlist, err := guard.Load(ctx, "playlist", playlistID, s.playlists.FindByID)
	if err != nil {
		return models.PlaylistDetail{}, err
	}

	videos, err := s.videos.FindByIDs(ctx, playlist.VideoIDs)
	if err != nil {
		return models.PlaylistDetail{}, storeError("video", err)
	}

	detail, err := s.assembler.PlaylistDetail(ctx, viewerID, playlist, videos)
	if err != nil {
		return models.PlaylistDetail{}, apierrors.Internal("failed to load playlist", err)
	}
	return detail, nil
}

// ListByUser summarises the playlists of userID.
func (s *PlaylistService) ListByUser(ctx context.Context, viewerID, userID string) ([]models.PlaylistSummary, error) {
	if !guard.ValidID(userID) {
		return nil, apierrors.Invalid("invalid user id")
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, storeError("user", err)
	}

	playlists, err := s.playlists.ListByOwner(ctx, userID)
	if err != nil {
		return nil, storeError("playlist", err)
	}

	var ids []string
	for _, playlist := range playlists {
		ids = append(ids, playlist.VideoIDs...)
	}
	videos, err := s.videos.FindByIDs(ctx, ids)
	if err != nil {
		return nil, storeError("video", err)
	}

	summaries := make([]models.PlaylistSummary, 0, len(playlists))
	for _, playlist := range playlists {
		summaries = append(summaries, projection.PlaylistSummary(viewerID, playlist, videos))
	}
	return summaries, nil
}

// Update renames playlistID.
func (s *PlaylistService) Update(ctx context.Context, actorID, playlistID string, in PlaylistInput) (models.Playlist, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if err := validateInput(in); err != nil {
		return models.Playlist{}, err
	}

	return guard.Mutate(ctx, "playlist", playlistID, actorID, s.playlists.FindByID,
		func(ctx context.Context, current models.Playlist) (models.Playlist, error) {
			current.Name = in.Name
			current.Description = in.Description
			return s.playlists.Update(ctx, current)
		})
}

// Delete removes playlistID. The videos it referenced are untouched.
func (s *PlaylistService) Delete(ctx context.Context, actorID, playlistID string) (models.Playlist, error) {
	return guard.Mutate(ctx, "playlist", playlistID, actorID, s.playlists.FindByID,
		func(ctx context.Context, current models.Playlist) (models.Playlist, error) {
			return current, s.playlists.Delete(ctx, current.ID)
		})
}

// AddVideo appends videoID to playlistID. Adding a video already present is a no-op.
func (s *PlaylistService) AddVideo(ctx context.Context, actorID, playlistID, videoID string) (models.Playlist, error) {
	if !guard.ValidID(videoID) {
		return models.Playlist{}, apierrors.Invalid("invalid video id")
	}

	return guard.Mutate(ctx, "playlist", playlistID, actorID, s.playlists.FindByID,
		func(ctx context.Context, current models.Playlist) (models.Playlist, error) {
			video, err := s.videos.FindByID(ctx, videoID)
			if err != nil {
				return models.Playlist{}, storeError("video", err)
			}
			if !video.VisibleTo(actorID) {
				return models.Playlist{}, apierrors.NotFound("video not found")
			}
			if current.Contains(videoID) {
				return current, nil
			}
			return s.playlists.AddVideo(ctx, current.ID, videoID)
		})
}

// RemoveVideo drops videoID from playlistID.
func (s *PlaylistService) RemoveVideo(ctx context.Context, actorID, playlistID, videoID string) (models.Playlist, error) {
	if !guard.ValidID(videoID) {
		return models.Playlist{}, apierrors.Invalid("invalid video id")
	}

	return guard.Mutate(ctx, "playlist", playlistID, actorID, s.playlists.FindByID,
		func(ctx context.Context, current models.Playlist) (models.Playlist, error) {
			if !current.Contains(videoID) {
				return models.Playlist{}, apierrors.NotFound("video is not in the playlist")
			}
			return s.playlists.RemoveVideo(ctx, current.ID, videoID)
		})
}
