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

// CommentService implements the comment endpoints.
type CommentService struct {
	comments  repositories.CommentRepository
	videos    repositories.VideoRepository
	assembler *projection.Assembler
	now       func() time.Time
}

// List returns one page of the comments on videoID, newest first.
func (s *CommentService) List(ctx context.Context, viewerID, videoID string, page, limit int) (models.Page[models.CommentView], error) {
	if _, err := s.visibleVideo(ctx, viewerID, videoID); err != nil {
		return models.Page[models.CommentView]{}, err
	}

	req := projection.NormalizePage(page, limit)
	comments, total, err := s.comments.ListByVideo(ctx, videoID, req.Limit, req.Offset())
	if err != nil {
		return models.Page[models.CommentView]{}, storeError("comment", err)
	}

	views, err := s.assembler.Comments(ctx, viewerID, comments)
	if err != nil {
		return models.Page[models.CommentView]{}, apierrors.Internal("failed to load comments", err)
	}
	return projection.NewPage(views, req, total), nil
}

// Create adds a comment by ownerID to videoID.
func (s *CommentService) Create(ctx context.Context, ownerID, videoID string, in ContentInput) (models.Comment, error) {
	in.Content = strings.TrimSpace(in.Content)
	if err := validateInput(in); err != nil {
		return models.Comment{}, err
	}
	if _, err := s.visibleVideo(ctx, ownerID, videoID); err != nil {
		return models.Comment{}, err
	}

	now := s.now()
	comment := models.Comment{
		ID:        uuid.NewString(),
		VideoID:   videoID,
		OwnerID:   ownerID,
		Content:   in.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return models.Comment{}, storeError("comment", err)
	}
	return comment, nil
}

// Update replaces the content of commentID.
func (s *CommentService) Update(ctx context.Context, actorID, commentID string, in ContentInput) (models.Comment, error) {
	in.Content = strings.TrimSpace(in.Content)
	if err := validateInput(in); err != nil {
		return models.Comment{}, err
	}

	return guard.Mutate(ctx, "comment", commentID, actorID, s.comments.FindByID,
		func(ctx context.Context, current models.Comment) (models.Comment, error) {
			current.Content = in.Content
			return s.comments.Update(ctx, current)
		})
}

// Delete removes commentID and its likes.
func (s *CommentService) Delete(ctx context.Context, actorID, commentID string) (models.Comment, error) {
	return guard.Mutate(ctx, "comment", commentID, actorID, s.comments.FindByID,
		func(ctx context.Context, current models.Comment) (models.Comment, error) {
			return current, s.comments.Delete(ctx, current.ID)
		})
}

func (s *CommentService) visibleVideo(ctx context.Context, viewerID, videoID string) (models.Video, error) {
	video, err := guard.Load(ctx, "video", videoID, s.videos.FindByID)
	if err != nil {
		return models.Video{}, err
	}
	if !video.VisibleTo(viewerID) {
		return models.Video{}, apierrors.NotFound("video not found")
	}
	return video, nil
}
