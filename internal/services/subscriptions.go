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

// SubscriptionService implements channel subscriptions.
type SubscriptionService struct {
	subs      repositories.SubscriptionRepository
	users     repositories.UserRepository
	assembler *projection.Assembler
	stats     *cache.TTL[string, models.ChannelStats]
}

// Toggle subscribes subscriberID to channelID, or unsubscribes when already subscribed.
func (s *SubscriptionService) Toggle(ctx context.Context, subscriberID, channelID string) (bool, error) {
	if !guard.ValidID(channelID) {
		return false, apierrors.Invalid("invalid channel id")
	}
	if subscriberID == channelID {
		return false, apierrors.Invalid("you cannot subscribe to your own channel")
	}

	subscribed, err := s.subs.Toggle(ctx, subscriberID, channelID)
	if err != nil {
		return false, storeError("channel", err)
	}
	s.stats.Invalidate(channelID)
	return subscribed, nil
}

// Subscribers lists the subscribers of channelID, newest first.
func (s *SubscriptionService) Subscribers(ctx context.Context, viewerID, channelID string) ([]models.ChannelSummary, error) {
	if !guard.ValidID(channelID) {
		return nil, apierrors.Invalid("invalid channel id")
	}
	if _, err := s.users.FindByID(ctx, channelID); err != nil {
		return nil, storeError("channel", err)
	}

	byChannel, err := s.subs.Subscribers(ctx, []string{channelID})
	if err != nil {
		return nil, storeError("subscription", err)
	}
	return s.channels(ctx, viewerID, byChannel[channelID])
}

// Channels lists the channels subscriberID follows, newest first.
func (s *SubscriptionService) Channels(ctx context.Context, viewerID, subscriberID string) ([]models.ChannelSummary, error) {
	if !guard.ValidID(subscriberID) {
		return nil, apierrors.Invalid("invalid subscriber id")
	}
	if _, err := s.users.FindByID(ctx, subscriberID); err != nil {
		return nil, storeError("user", err)
	}

	ids, err := s.subs.ChannelIDs(ctx, subscriberID)
	if err != nil {
		return nil, storeError("subscription", err)
	}
	return s.channels(ctx, viewerID, ids)
}

func (s *SubscriptionService) channels(ctx context.Context, viewerID string, ids []string) ([]models.ChannelSummary, error) {
	profiles, err := s.users.Profiles(ctx, ids)
	if err != nil {
		return nil, storeError("user", err)
	}

	users := make([]models.User, 0, len(ids))
	for _, id := range ids {
		if user, ok := profiles[id]; ok {
			users = append(users, user)
		}
	}

	channels, err := s.assembler.Channels(ctx, viewerID, users)
	if err != nil {
		return nil, apierrors.Internal("failed to load channels", err)
	}
	return channels, nil
}
