package repositories

import "context"

// SubscriptionRepository defines data access for channel subscriptions.
type SubscriptionRepository interface {
	// Toggle subscribes when absent and unsubscribes when present, reporting the new state.
	Toggle(ctx context.Context, subscriberID, channelID string) (bool, error)
	Subscribers(ctx context.Context, channelIDs []string) (map[string][]string, error)
	// ChannelIDs returns the channels a subscriber follows, newest first.
	ChannelIDs(ctx context.Context, subscriberID string) ([]string, error)
	CountSubscribedTo(ctx context.Context, subscriberID string) (int64, error)
}
