//go:build integration

package repositories

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/cockroachdb/cockroach-go/v2/testserver"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/models"
)

var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	server, err := testserver.NewTestServer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "start cockroach test server: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, server.PGURL().String())
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect to cockroach test server: %v\n", err)
		server.Stop()
		os.Exit(1)
	}

	if err := applyMigrations(ctx, pool); err != nil {
		fmt.Fprintf(os.Stderr, "apply migrations: %v\n", err)
		pool.Close()
		server.Stop()
		os.Exit(1)
	}

	testPool = pool

	code := m.Run()

	pool.Close()
	server.Stop()

	os.Exit(code)
}

func TestPostgresUserRepository_CreateFindAndUpdate(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	repo := NewPostgresUserRepository(testPool)
	user := createTestUser(t, repo, "alice")

	dup := newTestUser("alice")
	dup.Email = "fresh@example.com"
	if err := repo.Create(ctx, dup); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict when creating duplicate username, got %v", err)
	}

	fetched, err := repo.FindByLogin(ctx, "", user.Email)
	if err != nil {
		t.Fatalf("find by email: %v", err)
	}
	if fetched.ID != user.ID || fetched.PasswordHash != user.PasswordHash || !fetched.IsActive {
		t.Fatalf("unexpected user fetched: %+v", fetched)
	}

	updated, err := repo.UpdateAccount(ctx, user.ID, "Alice Updated", "updated@example.com")
	if err != nil {
		t.Fatalf("update account: %v", err)
	}
	if updated.Email != "updated@example.com" || updated.FullName != "Alice Updated" {
		t.Fatalf("expected updated fields to persist, got %+v", updated)
	}

	other := createTestUser(t, repo, "bob")
	if _, err := repo.UpdateAccount(ctx, other.ID, "Bob", "updated@example.com"); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict updating to a taken email, got %v", err)
	}

	if _, err := repo.UpdateAccount(ctx, uuid.NewString(), "ghost", "ghost@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound updating missing user, got %v", err)
	}

	profiles, err := repo.Profiles(ctx, []string{user.ID, other.ID, "not-a-uuid"})
	if err != nil {
		t.Fatalf("profiles: %v", err)
	}
	if len(profiles) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(profiles))
	}
}

func TestPostgresUserRepository_RefreshTokenSwap(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	repo := NewPostgresUserRepository(testPool)
	user := createTestUser(t, repo, "owner")

	if err := repo.StoreRefreshToken(ctx, user.ID, "first"); err != nil {
		t.Fatalf("store refresh token: %v", err)
	}
	if err := repo.SwapRefreshToken(ctx, user.ID, "first", "second"); err != nil {
		t.Fatalf("swap refresh token: %v", err)
	}
	if err := repo.SwapRefreshToken(ctx, user.ID, "first", "third"); !errors.Is(err, auth.ErrTokenReused) {
		t.Fatalf("expected ErrTokenReused swapping a stale token, got %v", err)
	}

	if err := repo.ClearRefreshToken(ctx, user.ID); err != nil {
		t.Fatalf("clear refresh token: %v", err)
	}
	if err := repo.SwapRefreshToken(ctx, user.ID, "", "fourth"); !errors.Is(err, auth.ErrTokenReused) {
		t.Fatalf("expected ErrTokenReused after logout, got %v", err)
	}
}

func TestPostgresLikeRepository_Toggle(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	users := NewPostgresUserRepository(testPool)
	videos := NewPostgresVideoRepository(testPool)
	likes := NewPostgresLikeRepository(testPool)

	owner := createTestUser(t, users, "owner")
	video := createTestVideo(t, videos, owner, true, time.Now().UTC())

	for i, want := range []bool{true, false, true} {
		liked, err := likes.Toggle(ctx, models.SubjectVideo, video.ID, owner.ID)
		if err != nil {
			t.Fatalf("toggle %d: %v", i, err)
		}
		if liked != want {
			t.Fatalf("toggle %d: expected liked=%v, got %v", i, want, liked)
		}
	}

	likers, err := likes.Likers(ctx, models.SubjectVideo, []string{video.ID})
	if err != nil {
		t.Fatalf("likers: %v", err)
	}
	if len(likers[video.ID]) != 1 {
		t.Fatalf("expected exactly one like, got %v", likers[video.ID])
	}

	stats, err := videos.ChannelStats(ctx, owner.ID)
	if err != nil {
		t.Fatalf("channel stats: %v", err)
	}
	if stats.TotalVideos != 1 || stats.TotalLikes != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestPostgresVideoRepository_ListAndCascadingDelete(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	users := NewPostgresUserRepository(testPool)
	videos := NewPostgresVideoRepository(testPool)
	comments := NewPostgresCommentRepository(testPool)
	likes := NewPostgresLikeRepository(testPool)
	playlists := NewPostgresPlaylistRepository(testPool)

	owner := createTestUser(t, users, "owner")
	viewer := createTestUser(t, users, "viewer")

	base := time.Now().UTC().Add(-time.Hour)
	older := createTestVideo(t, videos, owner, true, base)
	newer := createTestVideo(t, videos, owner, true, base.Add(time.Minute))
	private := createTestVideo(t, videos, owner, false, base.Add(2*time.Minute))

	page, total, err := videos.List(ctx, models.VideoFilter{ViewerID: viewer.ID, Limit: 10})
	if err != nil {
		t.Fatalf("list videos: %v", err)
	}
	if total != 2 || len(page) != 2 || page[0].ID != newer.ID || page[1].ID != older.ID {
		t.Fatalf("unexpected page for viewer: total=%d %+v", total, page)
	}

	page, total, err = videos.List(ctx, models.VideoFilter{ViewerID: owner.ID, Limit: 10, Offset: 990})
	if err != nil {
		t.Fatalf("list out of range: %v", err)
	}
	if total != 3 || len(page) != 0 {
		t.Fatalf("expected empty out-of-range page, got total=%d %+v", total, page)
	}

	comment := models.Comment{ID: uuid.NewString(), VideoID: newer.ID, OwnerID: viewer.ID, Content: "nice", CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC()}
	if err := comments.Create(ctx, comment); err != nil {
		t.Fatalf("create comment: %v", err)
	}
	if _, err := likes.Toggle(ctx, models.SubjectComment, comment.ID, owner.ID); err != nil {
		t.Fatalf("like comment: %v", err)
	}

	playlist := models.Playlist{ID: uuid.NewString(), OwnerID: viewer.ID, Name: "mix", CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC()}
	if err := playlists.Create(ctx, playlist); err != nil {
		t.Fatalf("create playlist: %v", err)
	}
	for _, id := range []string{newer.ID, private.ID, newer.ID} {
		if _, err := playlists.AddVideo(ctx, playlist.ID, id); err != nil {
			t.Fatalf("add playlist video: %v", err)
		}
	}

	if err := users.AddToWatchHistory(ctx, viewer.ID, newer.ID); err != nil {
		t.Fatalf("add to history: %v", err)
	}

	if err := videos.Delete(ctx, newer.ID); err != nil {
		t.Fatalf("delete video: %v", err)
	}

	if _, err := comments.FindByID(ctx, comment.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected comment to be removed, got %v", err)
	}
	likers, err := likes.Likers(ctx, models.SubjectComment, []string{comment.ID})
	if err != nil {
		t.Fatalf("likers: %v", err)
	}
	if len(likers) != 0 {
		t.Fatalf("expected comment likes to be removed, got %v", likers)
	}

	reloaded, err := playlists.FindByID(ctx, playlist.ID)
	if err != nil {
		t.Fatalf("reload playlist: %v", err)
	}
	if len(reloaded.VideoIDs) != 1 || reloaded.VideoIDs[0] != private.ID {
		t.Fatalf("unexpected playlist videos after delete: %v", reloaded.VideoIDs)
	}

	history, err := users.WatchHistory(ctx, viewer.ID)
	if err != nil {
		t.Fatalf("watch history: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("expected empty history, got %v", history)
	}

	if err := videos.Delete(ctx, newer.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound deleting twice, got %v", err)
	}
}

func TestPostgresSubscriptionRepository_Toggle(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	users := NewPostgresUserRepository(testPool)
	subs := NewPostgresSubscriptionRepository(testPool)

	channel := createTestUser(t, users, "channel")
	fan := createTestUser(t, users, "fan")

	subscribed, err := subs.Toggle(ctx, fan.ID, channel.ID)
	if err != nil || !subscribed {
		t.Fatalf("expected subscription, got %v %v", subscribed, err)
	}

	byChannel, err := subs.Subscribers(ctx, []string{channel.ID})
	if err != nil {
		t.Fatalf("subscribers: %v", err)
	}
	if len(byChannel[channel.ID]) != 1 || byChannel[channel.ID][0] != fan.ID {
		t.Fatalf("unexpected subscribers: %v", byChannel)
	}

	subscribed, err = subs.Toggle(ctx, fan.ID, channel.ID)
	if err != nil || subscribed {
		t.Fatalf("expected unsubscription, got %v %v", subscribed, err)
	}

	if _, err := subs.Toggle(ctx, fan.ID, uuid.NewString()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound subscribing to a missing channel, got %v", err)
	}
}

func applyMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	migrationsDir := filepath.Join("..", "..", "migrations")
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		contents, err := os.ReadFile(filepath.Join(migrationsDir, entry.Name()))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}

		if _, err := pool.Exec(ctx, string(contents)); err != nil {
			return fmt.Errorf("apply migration %s: %w", entry.Name(), err)
		}
	}

	return nil
}

func resetDatabase(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	conn, err := testPool.Acquire(ctx)
	if err != nil {
		t.Fatalf("acquire connection: %v", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "TRUNCATE TABLE likes, playlist_videos, playlists, comments, watch_history, subscriptions, tweets, videos, users CASCADE"); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}

func newTestUser(username string) models.User {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        username + "@example.com",
		FullName:     username,
		PasswordHash: "password-hash",
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func createTestUser(t *testing.T, repo *PostgresUserRepository, username string) models.User {
	t.Helper()
	user := newTestUser(username)
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("create test user: %v", err)
	}
	return user
}

func createTestVideo(t *testing.T, repo *PostgresVideoRepository, owner models.User, public bool, createdAt time.Time) models.Video {
	t.Helper()
	video := models.Video{
		ID:          uuid.NewString(),
		OwnerID:     owner.ID,
		VideoFile:   models.Asset{URL: "https://cdn.example.com/video.mp4", ID: "videos/" + uuid.NewString()},
		Thumbnail:   models.Asset{URL: "https://cdn.example.com/thumb.png", ID: "thumbs/" + uuid.NewString()},
		Title:       "Video",
		Description: "A video",
		Duration:    12.5,
		IsPublic:    public,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
	if err := repo.Create(context.Background(), video); err != nil {
		t.Fatalf("create test video: %v", err)
	}
	return video
}
