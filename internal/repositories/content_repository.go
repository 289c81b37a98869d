package repositories

import (
	"context"

	"github.com/vidtube/backend/internal/models"
)

// TweetRepository exposes data access for tweets.
type TweetRepository interface {
	Create(ctx context.Context, tweet models.Tweet) error
	FindByID(ctx context.Context, id string) (models.Tweet, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Tweet, error)
	Update(ctx context.Context, tweet models.Tweet) (models.Tweet, error)
	// Delete removes the tweet and every like on it.
	Delete(ctx context.Context, id string) error
}

// CommentRepository exposes data access for video comments.
type CommentRepository interface {
	Create(ctx context.Context, comment models.Comment) error
	FindByID(ctx context.Context, id string) (models.Comment, error)
	// ListByVideo returns one page of a video's comments, newest first, and the total count.
	ListByVideo(ctx context.Context, videoID string, limit, offset int) ([]models.Comment, int64, error)
	Update(ctx context.Context, comment models.Comment) (models.Comment, error)
	// Delete removes the comment and every like on it.
	Delete(ctx context.Context, id string) error
}

// LikeRepository exposes data access for likes. The store enforces at most one
// like per (subject, user) pair.
type LikeRepository interface {
	// Toggle removes the like when present and creates it otherwise, reporting the new state.
	Toggle(ctx context.Context, subject models.SubjectType, subjectID, userID string) (bool, error)
	Likers(ctx context.Context, subject models.SubjectType, subjectIDs []string) (map[string][]string, error)
	// LikedVideoIDs returns the videos a user liked, newest like first.
	LikedVideoIDs(ctx context.Context, userID string) ([]string, error)
}

// PlaylistRepository exposes data access for playlists.
type PlaylistRepository interface {
	Create(ctx context.Context, playlist models.Playlist) error
	FindByID(ctx context.Context, id string) (models.Playlist, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Playlist, error)
	Update(ctx context.Context, playlist models.Playlist) (models.Playlist, error)
	Delete(ctx context.Context, id string) error
	// AddVideo appends the video unless already present.
	AddVideo(ctx context.Context, playlistID, videoID string) (models.Playlist, error)
	RemoveVideo(ctx context.Context, playlistID, videoID string) (models.Playlist, error)
}
