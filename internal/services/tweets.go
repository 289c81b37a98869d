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

// ContentInput carries the text body of a tweet or comment.
type ContentInput struct {
	Content string `json:"content" validate:"required,max=1000"`
}

// TweetService implements the tweet endpoints.
type TweetService struct {
	tweets    repositories.TweetRepository
	users     repositories.UserRepository
	assembler *projection.Assembler
	now       func() time.Time
}

// Create posts a tweet owned by ownerID.
func (s *TweetService) Create(ctx context.Context, ownerID string, in ContentInput) (models.Tweet, error) {
	in.Content = strings.TrimSpace(in.Content)
	if err := validateInput(in); err != nil {
		return models.Tweet{}, err
	}

	now := s.now()
	tweet := models.Tweet{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Content:   in.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.tweets.Create(ctx, tweet); err != nil {
		return models.Tweet{}, storeError("tweet", err)
	}
	return tweet, nil
}

// ListByUser returns the tweets of userID, newest first, with like state for viewerID.
func (s *TweetService) ListByUser(ctx context.Context, viewerID, userID string) ([]models.TweetView, error) {
	if !guard.ValidID(userID) {
		return nil, apierrors.Invalid("invalid user id")
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, storeError("user", err)
	}

	tweets, err := s.tweets.ListByOwner(ctx, userID)
	if err != nil {
		return nil, storeError("tweet", err)
	}

	views, err := s.assembler.Tweets(ctx, viewerID, tweets)
	if err != nil {
		return nil, apierrors.Internal("failed to load tweets", err)
	}
	return views, nil
}

// Update replaces the content of tweetID.
func (s *TweetService) Update(ctx context.Context, actorID, tweetID string, in ContentInput) (models.Tweet, error) {
	in.Content = strings.TrimSpace(in.Content)
	if err := validateInput(in); err != nil {
		return models.Tweet{}, err
	}

	return guard.Mutate(ctx, "tweet", tweetID, actorID, s.tweets.FindByID,
		func(ctx context.Context, current models.Tweet) (models.Tweet, error) {
			current.Content = in.Content
			return s.tweets.Update(ctx, current)
		})
}

// Delete removes tweetID and its likes.
func (s *TweetService) Delete(ctx context.Context, actorID, tweetID string) (models.Tweet, error) {
	return guard.Mutate(ctx, "tweet", tweetID, actorID, s.tweets.FindByID,
		func(ctx context.Context, current models.Tweet) (models.Tweet, error) {
			return current, s.tweets.Delete(ctx, current.ID)
		})
}
