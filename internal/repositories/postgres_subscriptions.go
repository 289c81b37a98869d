package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/db"
)

// PostgresSubscriptionRepository provides PostgreSQL-backed persistence for subscriptions.
type PostgresSubscriptionRepository struct {
	pool db.Pool
}

// NewPostgresSubscriptionRepository constructs a subscription repository backed by PostgreSQL.
func NewPostgresSubscriptionRepository(pool db.Pool) *PostgresSubscriptionRepository {
	return &PostgresSubscriptionRepository{pool: pool}
}

// Toggle removes the subscription if present, otherwise creates it.
func (r *PostgresSubscriptionRepository) Toggle(ctx context.Context, subscriberID, channelID string) (bool, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        DELETE FROM subscriptions WHERE subscriber_id = $1 AND channel_id = $2
    `, subscriberID, channelID)
	if err != nil {
		return false, fmt.Errorf("delete subscription: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return false, nil
	}

	_, err = conn.Exec(ctx, `
        INSERT INTO subscriptions (id, subscriber_id, channel_id, created_at)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (subscriber_id, channel_id) DO NOTHING
    `, uuid.NewString(), subscriberID, channelID, time.Now().UTC())
	if err != nil {
		return false, translate("insert subscription", err)
	}
	return true, nil
}

// Subscribers returns the subscriber ids of each channel, newest first.
func (r *PostgresSubscriptionRepository) Subscribers(ctx context.Context, channelIDs []string) (map[string][]string, error) {
	if len(channelIDs) == 0 {
		return map[string][]string{}, nil
	}
	return queryGrouped(ctx, r.pool, "subscribers", `
        SELECT channel_id, subscriber_id FROM subscriptions
        WHERE channel_id = ANY($1)
        ORDER BY created_at DESC
    `, uuidArray(channelIDs))
}

// ChannelIDs returns the channels a subscriber follows, newest first.
func (r *PostgresSubscriptionRepository) ChannelIDs(ctx context.Context, subscriberID string) ([]string, error) {
	return queryIDs(ctx, r.pool, "subscribed channels", `
        SELECT channel_id FROM subscriptions
        WHERE subscriber_id = $1
        ORDER BY created_at DESC
    `, subscriberID)
}

// CountSubscribedTo counts the channels a subscriber follows.
func (r *PostgresSubscriptionRepository) CountSubscribedTo(ctx context.Context, subscriberID string) (int64, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var count int64
	if err := conn.QueryRow(ctx, `SELECT COUNT(*) FROM subscriptions WHERE subscriber_id = $1`, subscriberID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count subscriptions: %w", err)
	}
	return count, nil
}

var _ SubscriptionRepository = (*PostgresSubscriptionRepository)(nil)
