package services

import (
	"context"

	"github.com/vidtube/backend/internal/apierrors"
	"github.com/vidtube/backend/internal/cache"
	"github.com/vidtube/backend/internal/guard"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/projection"
	"github.com/vidtube/backend/internal/repositories"
)

// LikeService implements the like toggles and the liked-videos listing.
type LikeService struct {
	likes     repositories.LikeRepository
	videos    repositories.VideoRepository
	tweets    repositories.TweetRepository
	comments  repositories.CommentRepository
	assembler *projection.Assembler
	stats     *cache.TTL[string, models.ChannelStats]
}

// Toggle flips the like of userID on the subject and reports the new state.
func (s *LikeService) Toggle(ctx context.Context, userID string, subject models.SubjectType, subjectID string) (bool, error) {
	if !subject.Valid() {
		return false, apierrors.Invalid("unknown like subject")
	}
	channelID, err := s.ensureSubject(ctx, userID, subject, subjectID)
	if err != nil {
		return false, err
	}

	liked, err := s.likes.Toggle(ctx, subject, subjectID, userID)
	if err != nil {
		return false, storeError(string(subject), err)
	}
	if channelID != "" {
		s.stats.Invalidate(channelID)
	}
	return liked, nil
}

// LikedVideos returns the videos userID liked, newest like first.
func (s *LikeService) LikedVideos(ctx context.Context, userID string) ([]models.VideoCard, error) {
	ids, err := s.likes.LikedVideoIDs(ctx, userID)
	if err != nil {
		return nil, storeError("like", err)
	}

	videos, err := s.videos.FindByIDs(ctx, ids)
	if err != nil {
		return nil, storeError("video", err)
	}

	cards, err := s.assembler.VideoCards(ctx, orderedVisible(ids, videos, userID))
	if err != nil {
		return nil, apierrors.Internal("failed to load liked videos", err)
	}
	return cards, nil
}

// ensureSubject returns the owning channel when the like counts towards its
// dashboard stats, which only video likes do.
func (s *LikeService) ensureSubject(ctx context.Context, userID string, subject models.SubjectType, subjectID string) (string, error) {
	kind := string(subject)
	switch subject {
	case models.SubjectVideo:
		video, err := guard.Load(ctx, kind, subjectID, s.videos.FindByID)
		if err != nil {
			return "", err
		}
		if !video.VisibleTo(userID) {
			return "", apierrors.NotFound("video not found")
		}
		return video.OwnerID, nil
	case models.SubjectTweet:
		if _, err := guard.Load(ctx, kind, subjectID, s.tweets.FindByID); err != nil {
			return "", err
		}
	case models.SubjectComment:
		if _, err := guard.Load(ctx, kind, subjectID, s.comments.FindByID); err != nil {
			return "", err
		}
	}
	return "", nil
}
