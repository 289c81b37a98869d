package services

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidtube/backend/internal/apierrors"
	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/config"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
	"github.com/vidtube/backend/internal/storage"
)

type janitorStub struct {
	mu  sync.Mutex
	ids []string
	err error
}

func (j *janitorStub) Enqueue(ctx context.Context, ids ...string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.err != nil {
		return j.err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	j.ids = append(j.ids, ids...)
	return nil
}

type proberStub struct{ seconds float64 }

func (p proberStub) Duration(context.Context, string) (float64, error) { return p.seconds, nil }

type harness struct {
	svc     *Services
	store   *repositories.MemoryStore
	assets  *storage.MemoryStorage
	janitor *janitorStub
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	store := repositories.NewMemoryStore()
	users := store.Users()
	tokens := auth.NewTokenService(config.AuthConfig{
		AccessSecret:  "access-secret",
		AccessTTL:     time.Minute,
		RefreshSecret: "refresh-secret",
		RefreshTTL:    time.Hour,
	})
	assets := storage.NewMemoryStorage("")
	janitor := &janitorStub{}

	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	now := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		clock = clock.Add(time.Second)
		return clock
	}

	svc := New(Deps{
		Users:         users,
		Videos:        store.Videos(),
		Tweets:        store.Tweets(),
		Comments:      store.Comments(),
		Likes:         store.Likes(),
		Playlists:     store.Playlists(),
		Subscriptions: store.Subscriptions(),
		Sessions:      auth.NewManager(tokens, users, users),
		Assets:        assets,
		Janitor:       janitor,
		Prober:        proberStub{seconds: 42},
		StatsTTL:      time.Minute,
		Now:           now,
	})

	return &harness{svc: svc, store: store, assets: assets, janitor: janitor}
}

func stage(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(name), 0o600))
	return path
}

func (h *harness) register(t *testing.T, username string) models.User {
	t.Helper()
	user, err := h.svc.Users.Register(context.Background(), RegisterInput{
		Username:   username,
		Email:      username + "@example.com",
		FullName:   "User " + username,
		Password:   "password123",
		AvatarPath: stage(t, username+"-avatar.png"),
	})
	require.NoError(t, err)
	return user
}

func (h *harness) likeCount(t *testing.T, subject models.SubjectType, subjectID string) int {
	t.Helper()
	likers, err := h.store.Likes().Likers(context.Background(), subject, []string{subjectID})
	require.NoError(t, err)
	return len(likers[subjectID])
}

func (h *harness) publish(t *testing.T, owner models.User, title string) models.Video {
	t.Helper()
	video, err := h.svc.Videos.Publish(context.Background(), owner.ID, PublishVideoInput{
		Title:         title,
		Description:   "about " + title,
		VideoPath:     stage(t, title+".mp4"),
		ThumbnailPath: stage(t, title+".jpg"),
	})
	require.NoError(t, err)
	return video
}

func requireStatus(t *testing.T, err error, status int) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, status, apierrors.As(err).Status, "error: %v", err)
}

func TestRegisterHashesPasswordAndRejectsDuplicates(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	user := h.register(t, "alice")
	stored, err := h.store.Users().FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "password123", stored.PasswordHash)
	assert.NotEmpty(t, stored.PasswordHash)
	assert.True(t, stored.IsActive)
	assert.True(t, h.assets.Has(stored.Avatar.ID))

	avatar := stage(t, "dup.png")
	_, err = h.svc.Users.Register(ctx, RegisterInput{
		Username:   "ALICE",
		Email:      "other@example.com",
		FullName:   "Other",
		Password:   "password123",
		AvatarPath: avatar,
	})
	requireStatus(t, err, http.StatusConflict)
	assert.Equal(t, 1, h.assets.Len(), "duplicate registration must not upload")
	_, statErr := os.Stat(avatar)
	assert.True(t, os.IsNotExist(statErr), "staged avatar should be removed")
}

func TestRegisterRequiresAvatar(t *testing.T) {
	h := newHarness(t)

	_, err := h.svc.Users.Register(context.Background(), RegisterInput{
		Username: "bob",
		Email:    "bob@example.com",
		FullName: "Bob",
		Password: "password123",
	})
	requireStatus(t, err, http.StatusBadRequest)

	var apiErr *apierrors.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Contains(t, apiErr.Details, "avatar is required")
}

func TestRegisterDuplicateEmailUploadsNothing(t *testing.T) {
	h := newHarness(t)
	h.register(t, "carol")
	before := h.assets.Len()

	_, err := h.svc.Users.Register(context.Background(), RegisterInput{
		Username:       "dave",
		Email:          "carol@example.com",
		FullName:       "Dave",
		Password:       "password123",
		AvatarPath:     stage(t, "dave.png"),
		CoverImagePath: stage(t, "dave-cover.png"),
	})
	requireStatus(t, err, http.StatusConflict)
	assert.Equal(t, before, h.assets.Len())
}

func TestRegisterDeletesAvatarWhenCoverUploadFails(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	failing := &flakyAssets{MemoryStorage: h.assets, failOn: 2}
	h.svc.Users.assets = failing

	_, err := h.svc.Users.Register(ctx, RegisterInput{
		Username:       "erin",
		Email:          "erin@example.com",
		FullName:       "Erin",
		Password:       "password123",
		AvatarPath:     stage(t, "erin.png"),
		CoverImagePath: stage(t, "erin-cover.png"),
	})
	requireStatus(t, err, http.StatusInternalServerError)
	assert.Equal(t, 0, h.assets.Len())

	_, err = h.store.Users().FindByUsername(ctx, "erin")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

type flakyAssets struct {
	*storage.MemoryStorage
	calls  int
	failOn int
}

func (f *flakyAssets) Upload(ctx context.Context, localPath string) (models.Asset, error) {
	f.calls++
	if f.calls == f.failOn {
		_ = os.Remove(localPath)
		return models.Asset{}, errors.New("upload failed")
	}
	return f.MemoryStorage.Upload(ctx, localPath)
}

func TestLoginPersistsReturnedRefreshToken(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user := h.register(t, "frank")

	loggedIn, tokens, err := h.svc.Users.Login(ctx, LoginInput{Email: "FRANK@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.NotEmpty(t, tokens.AccessToken)

	stored, err := h.store.Users().FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, tokens.RefreshToken, stored.RefreshToken)
}

func TestLoginFailures(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user := h.register(t, "grace")

	_, _, err := h.svc.Users.Login(ctx, LoginInput{Username: "nobody", Password: "password123"})
	requireStatus(t, err, http.StatusNotFound)

	_, _, err = h.svc.Users.Login(ctx, LoginInput{Username: "grace", Password: "wrong-password"})
	requireStatus(t, err, http.StatusUnauthorized)

	_, _, err = h.svc.Users.Login(ctx, LoginInput{Password: "password123"})
	requireStatus(t, err, http.StatusBadRequest)

	require.NoError(t, h.svc.Users.Deactivate(ctx, user.ID))
	_, _, err = h.svc.Users.Login(ctx, LoginInput{Username: "grace", Password: "password123"})
	requireStatus(t, err, http.StatusForbidden)

	reactivated, err := h.svc.Users.Reactivate(ctx, LoginInput{Username: "grace", Password: "password123"})
	require.NoError(t, err)
	assert.True(t, reactivated.IsActive)

	_, _, err = h.svc.Users.Login(ctx, LoginInput{Username: "grace", Password: "password123"})
	require.NoError(t, err)
}

func TestRefreshRejectsReusedToken(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.register(t, "heidi")

	_, original, err := h.svc.Users.Login(ctx, LoginInput{Username: "heidi", Password: "password123"})
	require.NoError(t, err)

	rotated, err := h.svc.Users.Refresh(ctx, original.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, original.RefreshToken, rotated.RefreshToken)

	_, err = h.svc.Users.Refresh(ctx, original.RefreshToken)
	requireStatus(t, err, http.StatusUnauthorized)

	_, err = h.svc.Users.Refresh(ctx, "")
	requireStatus(t, err, http.StatusUnauthorized)
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user := h.register(t, "ivan")

	_, tokens, err := h.svc.Users.Login(ctx, LoginInput{Username: "ivan", Password: "password123"})
	require.NoError(t, err)
	require.NoError(t, h.svc.Users.Logout(ctx, user.ID))

	_, err = h.svc.Users.Refresh(ctx, tokens.RefreshToken)
	requireStatus(t, err, http.StatusUnauthorized)
}

func TestChangePassword(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user := h.register(t, "judy")

	err := h.svc.Users.ChangePassword(ctx, user.ID, ChangePasswordInput{OldPassword: "nope", NewPassword: "new-password"})
	requireStatus(t, err, http.StatusUnauthorized)

	require.NoError(t, h.svc.Users.ChangePassword(ctx, user.ID, ChangePasswordInput{OldPassword: "password123", NewPassword: "new-password"}))
	_, _, err = h.svc.Users.Login(ctx, LoginInput{Username: "judy", Password: "new-password"})
	require.NoError(t, err)
}

func TestUpdateAvatarRetiresPreviousAsset(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user := h.register(t, "ken")

	updated, err := h.svc.Users.UpdateAvatar(ctx, user.ID, stage(t, "ken-new.png"))
	require.NoError(t, err)
	assert.NotEqual(t, user.Avatar.ID, updated.Avatar.ID)
	assert.Equal(t, []string{user.Avatar.ID}, h.janitor.ids)
}

func TestNonOwnerMutationsAreForbidden(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.register(t, "owner")
	other := h.register(t, "other")

	video := h.publish(t, owner, "clip")
	tweet, err := h.svc.Tweets.Create(ctx, owner.ID, ContentInput{Content: "hello"})
	require.NoError(t, err)
	comment, err := h.svc.Comments.Create(ctx, owner.ID, video.ID, ContentInput{Content: "first"})
	require.NoError(t, err)
	playlist, err := h.svc.Playlists.Create(ctx, owner.ID, PlaylistInput{Name: "mix"})
	require.NoError(t, err)

	cases := []struct {
		name string
		call func() error
	}{
		{"update video", func() error {
			_, err := h.svc.Videos.Update(ctx, other.ID, video.ID, UpdateVideoInput{Title: "x", Description: "y"})
			return err
		}},
		{"delete video", func() error { _, err := h.svc.Videos.Delete(ctx, other.ID, video.ID); return err }},
		{"toggle publish", func() error { _, err := h.svc.Videos.TogglePublish(ctx, other.ID, video.ID); return err }},
		{"update tweet", func() error {
			_, err := h.svc.Tweets.Update(ctx, other.ID, tweet.ID, ContentInput{Content: "x"})
			return err
		}},
		{"delete tweet", func() error { _, err := h.svc.Tweets.Delete(ctx, other.ID, tweet.ID); return err }},
		{"update comment", func() error {
			_, err := h.svc.Comments.Update(ctx, other.ID, comment.ID, ContentInput{Content: "x"})
			return err
		}},
		{"delete comment", func() error { _, err := h.svc.Comments.Delete(ctx, other.ID, comment.ID); return err }},
		{"update playlist", func() error {
			_, err := h.svc.Playlists.Update(ctx, other.ID, playlist.ID, PlaylistInput{Name: "x"})
			return err
		}},
		{"delete playlist", func() error { _, err := h.svc.Playlists.Delete(ctx, other.ID, playlist.ID); return err }},
		{"add to playlist", func() error {
			_, err := h.svc.Playlists.AddVideo(ctx, other.ID, playlist.ID, video.ID)
			return err
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			requireStatus(t, tc.call(), http.StatusForbidden)
		})
	}

	stored, err := h.store.Tweets().FindByID(ctx, tweet.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", stored.Content)
}

func TestGuardOrderingOnTweets(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.register(t, "olga")

	_, err := h.svc.Tweets.Update(ctx, owner.ID, "not-a-uuid", ContentInput{Content: "x"})
	requireStatus(t, err, http.StatusBadRequest)

	_, err = h.svc.Tweets.Update(ctx, owner.ID, "6f1f8a52-4c1c-4e3e-9b7a-7d2f9a1b2c3d", ContentInput{Content: "x"})
	requireStatus(t, err, http.StatusNotFound)

	tweet, err := h.svc.Tweets.Create(ctx, owner.ID, ContentInput{Content: "draft"})
	require.NoError(t, err)
	updated, err := h.svc.Tweets.Update(ctx, owner.ID, tweet.ID, ContentInput{Content: "final"})
	require.NoError(t, err)
	assert.Equal(t, "final", updated.Content)
}

func TestLikeToggleAlternates(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.register(t, "pat")
	fan := h.register(t, "quinn")
	tweet, err := h.svc.Tweets.Create(ctx, owner.ID, ContentInput{Content: "like me"})
	require.NoError(t, err)

	for i, want := range []bool{true, false, true} {
		liked, err := h.svc.Likes.Toggle(ctx, fan.ID, models.SubjectTweet, tweet.ID)
		require.NoError(t, err)
		assert.Equal(t, want, liked, "toggle %d", i)
		assert.LessOrEqual(t, h.likeCount(t, models.SubjectTweet, tweet.ID), 1)
	}

	views, err := h.svc.Tweets.ListByUser(ctx, fan.ID, owner.ID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, int64(1), views[0].LikeCount)
	assert.True(t, views[0].IsLiked)

	_, err = h.svc.Likes.Toggle(ctx, fan.ID, models.SubjectComment, tweet.ID)
	requireStatus(t, err, http.StatusNotFound)
	_, err = h.svc.Likes.Toggle(ctx, fan.ID, models.SubjectVideo, "bad")
	requireStatus(t, err, http.StatusBadRequest)
}

func TestCommentsOutOfRangePageIsEmpty(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.register(t, "rita")
	video := h.publish(t, owner, "talk")
	for _, text := range []string{"a", "b", "c"} {
		_, err := h.svc.Comments.Create(ctx, owner.ID, video.ID, ContentInput{Content: text})
		require.NoError(t, err)
	}

	page, err := h.svc.Comments.List(ctx, owner.ID, video.ID, 100, 10)
	require.NoError(t, err)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
	assert.Equal(t, int64(3), page.Total)
	assert.False(t, page.HasNextPage)

	first, err := h.svc.Comments.List(ctx, owner.ID, video.ID, 1, 2)
	require.NoError(t, err)
	require.Len(t, first.Items, 2)
	assert.Equal(t, "c", first.Items[0].Content)
	assert.True(t, first.HasNextPage)
}

func TestVideoDetailCountsViewsAndHistory(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.register(t, "sam")
	viewer := h.register(t, "tina")
	video := h.publish(t, owner, "demo")
	assert.Equal(t, 42.0, video.Duration)

	_, err := h.svc.Subscriptions.Toggle(ctx, viewer.ID, owner.ID)
	require.NoError(t, err)

	detail, err := h.svc.Videos.Get(ctx, viewer.ID, video.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), detail.Views)
	assert.True(t, detail.Owner.IsSubscribed)
	assert.Equal(t, int64(1), detail.Owner.SubscriberCount)

	history, err := h.svc.Users.WatchHistory(ctx, viewer.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, video.ID, history[0].ID)

	_, err = h.svc.Videos.TogglePublish(ctx, owner.ID, video.ID)
	require.NoError(t, err)
	_, err = h.svc.Videos.Get(ctx, viewer.ID, video.ID)
	requireStatus(t, err, http.StatusNotFound)
	_, err = h.svc.Videos.Get(ctx, owner.ID, video.ID)
	require.NoError(t, err)
}

func TestDeleteVideoCascadesAndRetiresAssets(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.register(t, "uma")
	video := h.publish(t, owner, "gone")
	comment, err := h.svc.Comments.Create(ctx, owner.ID, video.ID, ContentInput{Content: "bye"})
	require.NoError(t, err)
	_, err = h.svc.Likes.Toggle(ctx, owner.ID, models.SubjectVideo, video.ID)
	require.NoError(t, err)

	_, err = h.svc.Videos.Delete(ctx, owner.ID, video.ID)
	require.NoError(t, err)

	_, err = h.store.Comments().FindByID(ctx, comment.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	assert.Equal(t, 0, h.likeCount(t, models.SubjectVideo, video.ID))
	assert.ElementsMatch(t, []string{video.VideoFile.ID, video.Thumbnail.ID}, h.janitor.ids)
}

func TestPlaylistLifecycle(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.register(t, "victor")
	video := h.publish(t, owner, "song")

	playlist, err := h.svc.Playlists.Create(ctx, owner.ID, PlaylistInput{Name: "faves"})
	require.NoError(t, err)

	_, err = h.svc.Playlists.AddVideo(ctx, owner.ID, playlist.ID, "6f1f8a52-4c1c-4e3e-9b7a-7d2f9a1b2c3d")
	requireStatus(t, err, http.StatusNotFound)

	_, err = h.svc.Playlists.AddVideo(ctx, owner.ID, playlist.ID, video.ID)
	require.NoError(t, err)
	again, err := h.svc.Playlists.AddVideo(ctx, owner.ID, playlist.ID, video.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{video.ID}, again.VideoIDs)

	detail, err := h.svc.Playlists.Get(ctx, "", playlist.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), detail.TotalVideos)
	require.Len(t, detail.Videos, 1)

	summaries, err := h.svc.Playlists.ListByUser(ctx, "", owner.ID)
	require.NoError(t, err)
	require.Len(t, summaries, 1)

	removed, err := h.svc.Playlists.RemoveVideo(ctx, owner.ID, playlist.ID, video.ID)
	require.NoError(t, err)
	assert.Empty(t, removed.VideoIDs)
}

func TestSubscriptions(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	channel := h.register(t, "wendy")
	fan := h.register(t, "xavier")

	_, err := h.svc.Subscriptions.Toggle(ctx, channel.ID, channel.ID)
	requireStatus(t, err, http.StatusBadRequest)
	_, err = h.svc.Subscriptions.Toggle(ctx, fan.ID, "6f1f8a52-4c1c-4e3e-9b7a-7d2f9a1b2c3d")
	requireStatus(t, err, http.StatusNotFound)

	subscribed, err := h.svc.Subscriptions.Toggle(ctx, fan.ID, channel.ID)
	require.NoError(t, err)
	assert.True(t, subscribed)

	subscribers, err := h.svc.Subscriptions.Subscribers(ctx, channel.ID, channel.ID)
	require.NoError(t, err)
	require.Len(t, subscribers, 1)
	assert.Equal(t, fan.ID, subscribers[0].ID)

	channels, err := h.svc.Subscriptions.Channels(ctx, fan.ID, fan.ID)
	require.NoError(t, err)
	require.Len(t, channels, 1)
	assert.True(t, channels[0].IsSubscribed)

	profile, err := h.svc.Users.Channel(ctx, fan.ID, "wendy")
	require.NoError(t, err)
	assert.Equal(t, int64(1), profile.SubscriberCount)
	assert.True(t, profile.IsSubscribed)
}

func TestDashboard(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.register(t, "yara")
	fan := h.register(t, "zed")
	video := h.publish(t, owner, "stats")
	_, err := h.svc.Likes.Toggle(ctx, fan.ID, models.SubjectVideo, video.ID)
	require.NoError(t, err)

	stats, err := h.svc.Dashboard.Stats(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalVideos)
	assert.Equal(t, int64(1), stats.TotalLikes)

	videos, err := h.svc.Dashboard.Videos(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, videos, 1)
	assert.Equal(t, int64(1), videos[0].LikeCount)
}

func TestVideoDeleteSurvivesJanitorBackpressure(t *testing.T) {
	h := newHarness(t)
	owner := h.register(t, "wes")
	video := h.publish(t, owner, "doomed")
	h.janitor.err = errors.New("asset janitor queue full")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	deleted, err := h.svc.Videos.Delete(ctx, owner.ID, video.ID)
	require.NoError(t, err)
	assert.Equal(t, video.ID, deleted.ID)
	assert.Empty(t, h.janitor.ids)

	_, err = h.store.Videos().FindByID(context.Background(), video.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestDashboardStatsFollowWrites(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.register(t, "uma")
	fan := h.register(t, "vic")
	first := h.publish(t, owner, "first")

	stats, err := h.svc.Dashboard.Stats(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ChannelStats{TotalVideos: 1}, stats)

	_, err = h.svc.Likes.Toggle(ctx, fan.ID, models.SubjectVideo, first.ID)
	require.NoError(t, err)
	_, err = h.svc.Subscriptions.Toggle(ctx, fan.ID, owner.ID)
	require.NoError(t, err)
	second := h.publish(t, owner, "second")

	stats, err = h.svc.Dashboard.Stats(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalVideos)
	assert.Equal(t, int64(1), stats.TotalLikes)
	assert.Equal(t, int64(1), stats.TotalSubscribers)

	_, err = h.svc.Videos.Delete(ctx, owner.ID, first.ID)
	require.NoError(t, err)
	_, err = h.svc.Subscriptions.Toggle(ctx, fan.ID, owner.ID)
	require.NoError(t, err)

	stats, err = h.svc.Dashboard.Stats(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalVideos)
	assert.Zero(t, stats.TotalLikes)
	assert.Zero(t, stats.TotalSubscribers)

	_, err = h.svc.Likes.Toggle(ctx, fan.ID, models.SubjectVideo, second.ID)
	require.NoError(t, err)
	stats, err = h.svc.Dashboard.Stats(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalLikes)
}

func TestListVideosValidatesQuery(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.register(t, "amir")
	h.publish(t, owner, "one")
	h.publish(t, owner, "two")

	_, err := h.svc.Videos.List(ctx, "", ListVideosInput{SortBy: "title"})
	requireStatus(t, err, http.StatusBadRequest)

	page, err := h.svc.Videos.List(ctx, "", ListVideosInput{Page: 1, Limit: 1, UserID: owner.ID})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "two", page.Items[0].Title)
	assert.Equal(t, "amir", page.Items[0].Owner.Username)
	assert.Equal(t, 2, page.TotalPages)
}
