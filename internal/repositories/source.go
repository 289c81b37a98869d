package repositories

import (
	"context"

	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/projection"
)

// ProjectionSource adapts the repositories to the projection layer.
type ProjectionSource struct {
	Users         UserRepository
	Likes         LikeRepository
	Subscriptions SubscriptionRepository
}

// Profiles implements projection.Source.
func (s ProjectionSource) Profiles(ctx context.Context, ids []string) (map[string]models.User, error) {
	return s.Users.Profiles(ctx, ids)
}

// Likers implements projection.Source.
func (s ProjectionSource) Likers(ctx context.Context, subject models.SubjectType, ids []string) (map[string][]string, error) {
	return s.Likes.Likers(ctx, subject, ids)
}

// Subscribers implements projection.Source.
func (s ProjectionSource) Subscribers(ctx context.Context, channelIDs []string) (map[string][]string, error) {
	return s.Subscriptions.Subscribers(ctx, channelIDs)
}

var _ projection.Source = ProjectionSource{}
