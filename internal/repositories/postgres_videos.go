package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/models"
)

const videoColumns = `id, owner_id, video_url, video_id, thumbnail_url, thumbnail_id,
        title, description, duration, views, is_public, created_at, updated_at`

// PostgresVideoRepository provides PostgreSQL-backed persistence for videos.
type PostgresVideoRepository struct {
	pool db.Pool
}

// NewPostgresVideoRepository constructs a video repository backed by PostgreSQL.
func NewPostgresVideoRepository(pool db.Pool) *PostgresVideoRepository {
	return &PostgresVideoRepository{pool: pool}
}

// Create stores a new video record.
func (r *PostgresVideoRepository) Create(ctx context.Context, video models.Video) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO videos (`+videoColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
    `, video.ID, video.OwnerID, video.VideoFile.URL, video.VideoFile.ID, video.Thumbnail.URL, video.Thumbnail.ID,
		video.Title, video.Description, video.Duration, video.Views, video.IsPublic, video.CreatedAt, video.UpdatedAt)
	if err != nil {
		return translate("insert video", err)
	}
	return nil
}

// FindByID fetches a video by identifier.
func (r *PostgresVideoRepository) FindByID(ctx context.Context, id string) (models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Video{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	video, err := scanVideo(conn.QueryRow(ctx, `SELECT `+videoColumns+` FROM videos WHERE id = $1`, id))
	if err != nil {
		return models.Video{}, translate("select video", err)
	}
	return video, nil
}

// FindByIDs fetches the videos with the given identifiers keyed by id.
func (r *PostgresVideoRepository) FindByIDs(ctx context.Context, ids []string) (map[string]models.Video, error) {
	out := make(map[string]models.Video, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	videos, err := r.query(ctx, "videos by id", `SELECT `+videoColumns+` FROM videos WHERE id = ANY($1)`, uuidArray(ids))
	if err != nil {
		return nil, err
	}
	for _, video := range videos {
		out[video.ID] = video
	}
	return out, nil
}

// List returns one page of videos visible to the viewer.
func (r *PostgresVideoRepository) List(ctx context.Context, filter models.VideoFilter) ([]models.Video, int64, error) {
	where := []string{"(is_public OR owner_id = $1)"}
	args := []any{filter.ViewerID}
	if filter.ViewerID == "" {
		where[0] = "is_public"
		args = args[:0]
	}
	if filter.OwnerID != "" {
		args = append(args, filter.OwnerID)
		where = append(where, fmt.Sprintf("owner_id = $%d", len(args)))
	}
	clause := strings.Join(where, " AND ")

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("acquire connection: %w", err)
	}
	var total int64
	err = conn.QueryRow(ctx, `SELECT COUNT(*) FROM videos WHERE `+clause, args...).Scan(&total)
	conn.Release()
	if err != nil {
		return nil, 0, fmt.Errorf("count videos: %w", err)
	}

	column := "created_at"
	if filter.SortBy == models.SortByViews {
		column = "views"
	}
	direction := "DESC"
	if filter.Ascending {
		direction = "ASC"
	}

	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM videos WHERE %s ORDER BY %s %s, id LIMIT $%d OFFSET $%d`,
		videoColumns, clause, column, direction, len(args)-1, len(args))

	videos, err := r.query(ctx, "video page", query, args...)
	if err != nil {
		return nil, 0, err
	}
	return videos, total, nil
}

// ListByOwner returns all of a channel's videos, newest first.
func (r *PostgresVideoRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Video, error) {
	return r.query(ctx, "videos by owner", `
        SELECT `+videoColumns+` FROM videos
        WHERE owner_id = $1
        ORDER BY created_at DESC
    `, ownerID)
}

// Update persists the mutable fields of a video.
func (r *PostgresVideoRepository) Update(ctx context.Context, video models.Video) (models.Video, error) {
	return r.updateOne(ctx, "update video", `
        UPDATE videos
        SET title = $2, description = $3, thumbnail_url = $4, thumbnail_id = $5, is_public = $6, updated_at = $7
        WHERE id = $1
        RETURNING `+videoColumns,
		video.ID, video.Title, video.Description, video.Thumbnail.URL, video.Thumbnail.ID, video.IsPublic, time.Now().UTC())
}

// IncrementViews atomically bumps the view counter.
func (r *PostgresVideoRepository) IncrementViews(ctx context.Context, id string) (models.Video, error) {
	return r.updateOne(ctx, "increment views", `
        UPDATE videos SET views = views + 1
        WHERE id = $1
        RETURNING `+videoColumns, id)
}

// Delete removes a video and everything hanging off it in one transaction.
// Comments, playlist entries and history entries cascade through foreign keys;
// likes are polymorphic and removed explicitly.
func (r *PostgresVideoRepository) Delete(ctx context.Context, id string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete video: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
        DELETE FROM likes
        WHERE (subject_type = 'video' AND subject_id = $1)
           OR (subject_type = 'comment' AND subject_id IN (SELECT id FROM comments WHERE video_id = $1))
    `, id); err != nil {
		return fmt.Errorf("delete video likes: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM videos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete video: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit delete video: %w", err)
	}
	return nil
}

// ChannelStats aggregates a channel's totals.
func (r *PostgresVideoRepository) ChannelStats(ctx context.Context, ownerID string) (models.ChannelStats, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.ChannelStats{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var stats models.ChannelStats
	err = conn.QueryRow(ctx, `
        SELECT
            (SELECT COUNT(*) FROM videos WHERE owner_id = $1),
            (SELECT COALESCE(SUM(views), 0)::BIGINT FROM videos WHERE owner_id = $1),
            (SELECT COUNT(*) FROM subscriptions WHERE channel_id = $1),
            (SELECT COUNT(*) FROM likes l JOIN videos v ON l.subject_id = v.id
                WHERE l.subject_type = 'video' AND v.owner_id = $1)
    `, ownerID).Scan(&stats.TotalVideos, &stats.TotalViews, &stats.TotalSubscribers, &stats.TotalLikes)
	if err != nil {
		return models.ChannelStats{}, fmt.Errorf("select channel stats: %w", err)
	}
	return stats, nil
}

func (r *PostgresVideoRepository) query(ctx context.Context, op, query string, args ...any) ([]models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", op, err)
	}
	defer rows.Close()

	videos := []models.Video{}
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", op, err)
		}
		videos = append(videos, video)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", op, err)
	}
	return videos, nil
}

func (r *PostgresVideoRepository) updateOne(ctx context.Context, op, query string, args ...any) (models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Video{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	video, err := scanVideo(conn.QueryRow(ctx, query, args...))
	if err != nil {
		return models.Video{}, translate(op, err)
	}
	return video, nil
}

func scanVideo(row pgx.Row) (models.Video, error) {
	var video models.Video
	err := row.Scan(&video.ID, &video.OwnerID, &video.VideoFile.URL, &video.VideoFile.ID, &video.Thumbnail.URL, &video.Thumbnail.ID,
		&video.Title, &video.Description, &video.Duration, &video.Views, &video.IsPublic, &video.CreatedAt, &video.UpdatedAt)
	return video, err
}

var _ VideoRepository = (*PostgresVideoRepository)(nil)
