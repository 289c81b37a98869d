package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/models"
)

// PostgresTweetRepository provides PostgreSQL-backed persistence for tweets.
type PostgresTweetRepository struct {
	pool db.Pool
}

// NewPostgresTweetRepository constructs a tweet repository backed by PostgreSQL.
func NewPostgresTweetRepository(pool db.Pool) *PostgresTweetRepository {
	return &PostgresTweetRepository{pool: pool}
}

// Create stores a new tweet.
func (r *PostgresTweetRepository) Create(ctx context.Context, tweet models.Tweet) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO tweets (id, owner_id, content, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5)
    `, tweet.ID, tweet.OwnerID, tweet.Content, tweet.CreatedAt, tweet.UpdatedAt)
	if err != nil {
		return translate("insert tweet", err)
	}
	return nil
}

// FindByID fetches a tweet by identifier.
func (r *PostgresTweetRepository) FindByID(ctx context.Context, id string) (models.Tweet, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Tweet{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var tweet models.Tweet
	err = conn.QueryRow(ctx, `
        SELECT id, owner_id, content, created_at, updated_at FROM tweets WHERE id = $1
    `, id).Scan(&tweet.ID, &tweet.OwnerID, &tweet.Content, &tweet.CreatedAt, &tweet.UpdatedAt)
	if err != nil {
		return models.Tweet{}, translate("select tweet", err)
	}
	return tweet, nil
}

// ListByOwner returns a user's tweets, newest first.
func (r *PostgresTweetRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Tweet, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT id, owner_id, content, created_at, updated_at
        FROM tweets
        WHERE owner_id = $1
        ORDER BY created_at DESC
    `, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query tweets: %w", err)
	}
	defer rows.Close()

	tweets := []models.Tweet{}
	for rows.Next() {
		var tweet models.Tweet
		if err := rows.Scan(&tweet.ID, &tweet.OwnerID, &tweet.Content, &tweet.CreatedAt, &tweet.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan tweet: %w", err)
		}
		tweets = append(tweets, tweet)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tweets: %w", err)
	}
	return tweets, nil
}

// Update persists new tweet content.
func (r *PostgresTweetRepository) Update(ctx context.Context, tweet models.Tweet) (models.Tweet, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Tweet{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var updated models.Tweet
	err = conn.QueryRow(ctx, `
        UPDATE tweets SET content = $2, updated_at = $3
        WHERE id = $1
        RETURNING id, owner_id, content, created_at, updated_at
    `, tweet.ID, tweet.Content, time.Now().UTC()).Scan(&updated.ID, &updated.OwnerID, &updated.Content, &updated.CreatedAt, &updated.UpdatedAt)
	if err != nil {
		return models.Tweet{}, translate("update tweet", err)
	}
	return updated, nil
}

// Delete removes a tweet and its likes.
func (r *PostgresTweetRepository) Delete(ctx context.Context, id string) error {
	return deleteWithLikes(ctx, r.pool, models.SubjectTweet, `DELETE FROM tweets WHERE id = $1`, id)
}

// PostgresCommentRepository provides PostgreSQL-backed persistence for comments.
type PostgresCommentRepository struct {
	pool db.Pool
}

// NewPostgresCommentRepository constructs a comment repository backed by PostgreSQL.
func NewPostgresCommentRepository(pool db.Pool) *PostgresCommentRepository {
	return &PostgresCommentRepository{pool: pool}
}

// Create stores a new comment. A missing video surfaces as ErrNotFound.
func (r *PostgresCommentRepository) Create(ctx context.Context, comment models.Comment) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO comments (id, video_id, owner_id, content, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `, comment.ID, comment.VideoID, comment.OwnerID, comment.Content, comment.CreatedAt, comment.UpdatedAt)
	if err != nil {
		return translate("insert comment", err)
	}
	return nil
}

// FindByID fetches a comment by identifier.
func (r *PostgresCommentRepository) FindByID(ctx context.Context, id string) (models.Comment, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Comment{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var comment models.Comment
	err = conn.QueryRow(ctx, `
        SELECT id, video_id, owner_id, content, created_at, updated_at FROM comments WHERE id = $1
    `, id).Scan(&comment.ID, &comment.VideoID, &comment.OwnerID, &comment.Content, &comment.CreatedAt, &comment.UpdatedAt)
	if err != nil {
		return models.Comment{}, translate("select comment", err)
	}
	return comment, nil
}

// ListByVideo returns one page of a video's comments, newest first.
func (r *PostgresCommentRepository) ListByVideo(ctx context.Context, videoID string, limit, offset int) ([]models.Comment, int64, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var total int64
	if err := conn.QueryRow(ctx, `SELECT COUNT(*) FROM comments WHERE video_id = $1`, videoID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count comments: %w", err)
	}

	rows, err := conn.Query(ctx, `
        SELECT id, video_id, owner_id, content, created_at, updated_at
        FROM comments
        WHERE video_id = $1
        ORDER BY created_at DESC, id
        LIMIT $2 OFFSET $3
    `, videoID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()

	comments := []models.Comment{}
	for rows.Next() {
		var comment models.Comment
		if err := rows.Scan(&comment.ID, &comment.VideoID, &comment.OwnerID, &comment.Content, &comment.CreatedAt, &comment.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate comments: %w", err)
	}
	return comments, total, nil
}

// Update persists new comment content.
func (r *PostgresCommentRepository) Update(ctx context.Context, comment models.Comment) (models.Comment, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Comment{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var updated models.Comment
	err = conn.QueryRow(ctx, `
        UPDATE comments SET content = $2, updated_at = $3
        WHERE id = $1
        RETURNING id, video_id, owner_id, content, created_at, updated_at
    `, comment.ID, comment.Content, time.Now().UTC()).Scan(&updated.ID, &updated.VideoID, &updated.OwnerID, &updated.Content, &updated.CreatedAt, &updated.UpdatedAt)
	if err != nil {
		return models.Comment{}, translate("update comment", err)
	}
	return updated, nil
}

// Delete removes a comment and its likes.
func (r *PostgresCommentRepository) Delete(ctx context.Context, id string) error {
	return deleteWithLikes(ctx, r.pool, models.SubjectComment, `DELETE FROM comments WHERE id = $1`, id)
}

// PostgresLikeRepository provides PostgreSQL-backed persistence for likes.
type PostgresLikeRepository struct {
	pool db.Pool
}

// NewPostgresLikeRepository constructs a like repository backed by PostgreSQL.
func NewPostgresLikeRepository(pool db.Pool) *PostgresLikeRepository {
	return &PostgresLikeRepository{pool: pool}
}

// Toggle deletes the (subject, user) like if present, otherwise inserts it. The
// unique (subject_id, liked_by) index keeps concurrent inserts from duplicating.
func (r *PostgresLikeRepository) Toggle(ctx context.Context, subject models.SubjectType, subjectID, userID string) (bool, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        DELETE FROM likes WHERE subject_id = $1 AND liked_by = $2
    `, subjectID, userID)
	if err != nil {
		return false, fmt.Errorf("delete like: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return false, nil
	}

	_, err = conn.Exec(ctx, `
        INSERT INTO likes (id, subject_type, subject_id, liked_by, created_at)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (subject_id, liked_by) DO NOTHING
    `, uuid.NewString(), string(subject), subjectID, userID, time.Now().UTC())
	if err != nil {
		return false, translate("insert like", err)
	}
	return true, nil
}

// Likers returns the users who liked each subject.
func (r *PostgresLikeRepository) Likers(ctx context.Context, subject models.SubjectType, subjectIDs []string) (map[string][]string, error) {
	if len(subjectIDs) == 0 {
		return map[string][]string{}, nil
	}
	return queryGrouped(ctx, r.pool, "likers", `
        SELECT subject_id, liked_by FROM likes
        WHERE subject_type = $1 AND subject_id = ANY($2)
    `, string(subject), uuidArray(subjectIDs))
}

// LikedVideoIDs returns the videos a user liked, newest like first.
func (r *PostgresLikeRepository) LikedVideoIDs(ctx context.Context, userID string) ([]string, error) {
	return queryIDs(ctx, r.pool, "liked videos", `
        SELECT subject_id FROM likes
        WHERE subject_type = 'video' AND liked_by = $1
        ORDER BY created_at DESC
    `, userID)
}

// PostgresPlaylistRepository provides PostgreSQL-backed persistence for playlists.
type PostgresPlaylistRepository struct {
	pool db.Pool
}

// NewPostgresPlaylistRepository constructs a playlist repository backed by PostgreSQL.
func NewPostgresPlaylistRepository(pool db.Pool) *PostgresPlaylistRepository {
	return &PostgresPlaylistRepository{pool: pool}
}

// Create stores a new, empty playlist.
func (r *PostgresPlaylistRepository) Create(ctx context.Context, playlist models.Playlist) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO playlists (id, owner_id, name, description, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `, playlist.ID, playlist.OwnerID, playlist.Name, playlist.Description, playlist.CreatedAt, playlist.UpdatedAt)
	if err != nil {
		return translate("insert playlist", err)
	}
	return nil
}

// FindByID fetches a playlist with its video ids in insertion order.
func (r *PostgresPlaylistRepository) FindByID(ctx context.Context, id string) (models.Playlist, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Playlist{}, fmt.Errorf("acquire connection: %w", err)
	}

	var playlist models.Playlist
	err = conn.QueryRow(ctx, `
        SELECT id, owner_id, name, description, created_at, updated_at FROM playlists WHERE id = $1
    `, id).Scan(&playlist.ID, &playlist.OwnerID, &playlist.Name, &playlist.Description, &playlist.CreatedAt, &playlist.UpdatedAt)
	conn.Release()
	if err != nil {
		return models.Playlist{}, translate("select playlist", err)
	}

	playlist.VideoIDs, err = queryIDs(ctx, r.pool, "playlist videos", `
        SELECT video_id FROM playlist_videos
        WHERE playlist_id = $1
        ORDER BY added_at, video_id
    `, id)
	if err != nil {
		return models.Playlist{}, err
	}
	return playlist, nil
}

// ListByOwner returns a user's playlists, newest first.
func (r *PostgresPlaylistRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Playlist, error) {
	ids, err := queryIDs(ctx, r.pool, "playlists", `
        SELECT id FROM playlists WHERE owner_id = $1 ORDER BY created_at DESC
    `, ownerID)
	if err != nil {
		return nil, err
	}

	playlists := make([]models.Playlist, 0, len(ids))
	for _, id := range ids {
		playlist, err := r.FindByID(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		playlists = append(playlists, playlist)
	}
	return playlists, nil
}

// Update persists the name and description.
func (r *PostgresPlaylistRepository) Update(ctx context.Context, playlist models.Playlist) (models.Playlist, error) {
	if err := r.exec(ctx, "update playlist", `
        UPDATE playlists SET name = $2, description = $3, updated_at = $4 WHERE id = $1
    `, playlist.ID, playlist.Name, playlist.Description, time.Now().UTC()); err != nil {
		return models.Playlist{}, err
	}
	return r.FindByID(ctx, playlist.ID)
}

// Delete removes the playlist; its entries cascade.
func (r *PostgresPlaylistRepository) Delete(ctx context.Context, id string) error {
	return r.exec(ctx, "delete playlist", `DELETE FROM playlists WHERE id = $1`, id)
}

// AddVideo appends a video to the playlist unless already present.
func (r *PostgresPlaylistRepository) AddVideo(ctx context.Context, playlistID, videoID string) (models.Playlist, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Playlist{}, fmt.Errorf("acquire connection: %w", err)
	}
	now := time.Now().UTC()
	_, err = conn.Exec(ctx, `
        INSERT INTO playlist_videos (playlist_id, video_id, added_at)
        VALUES ($1, $2, $3)
        ON CONFLICT (playlist_id, video_id) DO NOTHING
    `, playlistID, videoID, now)
	if err == nil {
		_, err = conn.Exec(ctx, `UPDATE playlists SET updated_at = $2 WHERE id = $1`, playlistID, now)
	}
	conn.Release()
	if err != nil {
		return models.Playlist{}, translate("add playlist video", err)
	}
	return r.FindByID(ctx, playlistID)
}

// RemoveVideo removes a video from the playlist if present.
func (r *PostgresPlaylistRepository) RemoveVideo(ctx context.Context, playlistID, videoID string) (models.Playlist, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Playlist{}, fmt.Errorf("acquire connection: %w", err)
	}
	_, err = conn.Exec(ctx, `
        DELETE FROM playlist_videos WHERE playlist_id = $1 AND video_id = $2
    `, playlistID, videoID)
	if err == nil {
		_, err = conn.Exec(ctx, `UPDATE playlists SET updated_at = $2 WHERE id = $1`, playlistID, time.Now().UTC())
	}
	conn.Release()
	if err != nil {
		return models.Playlist{}, fmt.Errorf("remove playlist video: %w", err)
	}
	return r.FindByID(ctx, playlistID)
}

func (r *PostgresPlaylistRepository) exec(ctx context.Context, op, query string, args ...any) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, query, args...)
	if err != nil {
		return translate(op, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// deleteWithLikes removes a likeable record and its likes in one transaction.
func deleteWithLikes(ctx context.Context, pool db.Pool, subject models.SubjectType, query, id string) error {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete %s: %w", subject, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM likes WHERE subject_type = $1 AND subject_id = $2`, string(subject), id); err != nil {
		return fmt.Errorf("delete %s likes: %w", subject, err)
	}

	tag, err := tx.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", subject, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit delete %s: %w", subject, err)
	}
	return nil
}

var _ TweetRepository = (*PostgresTweetRepository)(nil)
var _ CommentRepository = (*PostgresCommentRepository)(nil)
var _ LikeRepository = (*PostgresLikeRepository)(nil)
var _ PlaylistRepository = (*PostgresPlaylistRepository)(nil)
