package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/models"
)

// MemoryStore keeps every collection in process memory behind one lock so that
// cascading deletes stay consistent. It backs tests and STORE=memory.
type MemoryStore struct {
	mu sync.RWMutex

	users         map[string]models.User
	history       map[string][]string
	videos        map[string]models.Video
	tweets        map[string]models.Tweet
	comments      map[string]models.Comment
	likes         map[likeKey]models.Like
	playlists     map[string]models.Playlist
	subscriptions map[subscriptionKey]models.Subscription

	now func() time.Time
	seq int64
}

type likeKey struct {
	subjectID string
	userID    string
}

type subscriptionKey struct {
	subscriberID string
	channelID    string
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:         make(map[string]models.User),
		history:       make(map[string][]string),
		videos:        make(map[string]models.Video),
		tweets:        make(map[string]models.Tweet),
		comments:      make(map[string]models.Comment),
		likes:         make(map[likeKey]models.Like),
		playlists:     make(map[string]models.Playlist),
		subscriptions: make(map[subscriptionKey]models.Subscription),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Users returns the user repository view of the store.
func (s *MemoryStore) Users() *MemoryUserRepository { return &MemoryUserRepository{s: s} }

// Videos returns the video repository view of the store.
func (s *MemoryStore) Videos() *MemoryVideoRepository { return &MemoryVideoRepository{s: s} }

// Tweets returns the tweet repository view of the store.
func (s *MemoryStore) Tweets() *MemoryTweetRepository { return &MemoryTweetRepository{s: s} }

// Comments returns the comment repository view of the store.
func (s *MemoryStore) Comments() *MemoryCommentRepository { return &MemoryCommentRepository{s: s} }

// Likes returns the like repository view of the store.
func (s *MemoryStore) Likes() *MemoryLikeRepository { return &MemoryLikeRepository{s: s} }

// Playlists returns the playlist repository view of the store.
func (s *MemoryStore) Playlists() *MemoryPlaylistRepository { return &MemoryPlaylistRepository{s: s} }

// Subscriptions returns the subscription repository view of the store.
func (s *MemoryStore) Subscriptions() *MemorySubscriptionRepository {
	return &MemorySubscriptionRepository{s: s}
}

// tick returns a strictly increasing timestamp so that ordering by creation time is stable.
func (s *MemoryStore) tick() time.Time {
	s.seq++
	return s.now().Add(time.Duration(s.seq) * time.Microsecond)
}

func (s *MemoryStore) deleteLikesLocked(subjectID string) {
	for key := range s.likes {
		if key.subjectID == subjectID {
			delete(s.likes, key)
		}
	}
}

// MemoryUserRepository implements UserRepository over a MemoryStore.
type MemoryUserRepository struct{ s *MemoryStore }

func (r *MemoryUserRepository) Create(_ context.Context, user models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return ErrConflict
		}
	}
	r.s.users[user.ID] = user
	return nil
}

func (r *MemoryUserRepository) FindByID(_ context.Context, id string) (models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	user, ok := r.s.users[id]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return user, nil
}

func (r *MemoryUserRepository) FindByLogin(_ context.Context, username, email string) (models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, user := range r.s.users {
		if (username != "" && user.Username == username) || (email != "" && user.Email == email) {
			return user, nil
		}
	}
	return models.User{}, ErrNotFound
}

func (r *MemoryUserRepository) FindByUsername(ctx context.Context, username string) (models.User, error) {
	if username == "" {
		return models.User{}, ErrNotFound
	}
	return r.FindByLogin(ctx, username, "")
}

func (r *MemoryUserRepository) Profiles(_ context.Context, ids []string) (map[string]models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make(map[string]models.User, len(ids))
	for _, id := range ids {
		if user, ok := r.s.users[id]; ok {
			out[id] = user
		}
	}
	return out, nil
}

func (r *MemoryUserRepository) UpdateAccount(_ context.Context, id, fullName, email string) (models.User, error) {
	return r.update(id, func(user *models.User) error {
		for otherID, other := range r.s.users {
			if otherID != id && other.Email == email {
				return ErrConflict
			}
		}
		user.FullName = fullName
		user.Email = email
		return nil
	})
}

func (r *MemoryUserRepository) UpdatePassword(_ context.Context, id, passwordHash string) error {
	_, err := r.update(id, func(user *models.User) error {
		user.PasswordHash = passwordHash
		return nil
	})
	return err
}

func (r *MemoryUserRepository) UpdateAvatar(_ context.Context, id string, avatar models.Asset) (models.User, error) {
	return r.update(id, func(user *models.User) error {
		user.Avatar = avatar
		return nil
	})
}

func (r *MemoryUserRepository) UpdateCoverImage(_ context.Context, id string, cover models.Asset) (models.User, error) {
	return r.update(id, func(user *models.User) error {
		user.CoverImage = cover
		return nil
	})
}

func (r *MemoryUserRepository) SetActive(_ context.Context, id string, active bool) error {
	_, err := r.update(id, func(user *models.User) error {
		user.IsActive = active
		if !active {
			user.RefreshToken = ""
		}
		return nil
	})
	return err
}

func (r *MemoryUserRepository) StoreRefreshToken(_ context.Context, userID, token string) error {
	_, err := r.update(userID, func(user *models.User) error {
		user.RefreshToken = token
		return nil
	})
	return err
}

func (r *MemoryUserRepository) SwapRefreshToken(_ context.Context, userID, current, next string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user, ok := r.s.users[userID]
	if !ok || user.RefreshToken == "" || user.RefreshToken != current {
		return auth.ErrTokenReused
	}
	user.RefreshToken = next
	r.s.users[userID] = user
	return nil
}

func (r *MemoryUserRepository) ClearRefreshToken(_ context.Context, userID string) error {
	_, err := r.update(userID, func(user *models.User) error {
		user.RefreshToken = ""
		return nil
	})
	return err
}

func (r *MemoryUserRepository) AddToWatchHistory(_ context.Context, userID, videoID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[userID]; !ok {
		return ErrNotFound
	}
	if _, ok := r.s.videos[videoID]; !ok {
		return ErrNotFound
	}
	history := []string{videoID}
	for _, id := range r.s.history[userID] {
		if id != videoID {
			history = append(history, id)
		}
	}
	r.s.history[userID] = history
	return nil
}

func (r *MemoryUserRepository) WatchHistory(_ context.Context, userID string) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return append([]string{}, r.s.history[userID]...), nil
}

func (r *MemoryUserRepository) update(id string, apply func(*models.User) error) (models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user, ok := r.s.users[id]
	if !ok {
		return models.User{}, ErrNotFound
	}
	if err := apply(&user); err != nil {
		return models.User{}, err
	}
	user.UpdatedAt = r.s.now()
	r.s.users[id] = user
	return user, nil
}

// MemoryVideoRepository implements VideoRepository over a MemoryStore.
type MemoryVideoRepository struct{ s *MemoryStore }

func (r *MemoryVideoRepository) Create(_ context.Context, video models.Video) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[video.OwnerID]; !ok {
		return ErrNotFound
	}
	if _, ok := r.s.videos[video.ID]; ok {
		return ErrConflict
	}
	if video.CreatedAt.IsZero() {
		video.CreatedAt = r.s.tick()
		video.UpdatedAt = video.CreatedAt
	}
	r.s.videos[video.ID] = video
	return nil
}

func (r *MemoryVideoRepository) FindByID(_ context.Context, id string) (models.Video, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	video, ok := r.s.videos[id]
	if !ok {
		return models.Video{}, ErrNotFound
	}
	return video, nil
}

func (r *MemoryVideoRepository) FindByIDs(_ context.Context, ids []string) (map[string]models.Video, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make(map[string]models.Video, len(ids))
	for _, id := range ids {
		if video, ok := r.s.videos[id]; ok {
			out[id] = video
		}
	}
	return out, nil
}

func (r *MemoryVideoRepository) List(_ context.Context, filter models.VideoFilter) ([]models.Video, int64, error) {
	r.s.mu.RLock()
	matched := make([]models.Video, 0, len(r.s.videos))
	for _, video := range r.s.videos {
		if !video.VisibleTo(filter.ViewerID) {
			continue
		}
		if filter.OwnerID != "" && video.OwnerID != filter.OwnerID {
			continue
		}
		matched = append(matched, video)
	}
	r.s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if filter.SortBy == models.SortByViews && a.Views != b.Views {
			if filter.Ascending {
				return a.Views < b.Views
			}
			return a.Views > b.Views
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			if filter.Ascending {
				return a.CreatedAt.Before(b.CreatedAt)
			}
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})

	return window(matched, filter.Limit, filter.Offset), int64(len(matched)), nil
}

func (r *MemoryVideoRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Video, error) {
	r.s.mu.RLock()
	videos := []models.Video{}
	for _, video := range r.s.videos {
		if video.OwnerID == ownerID {
			videos = append(videos, video)
		}
	}
	r.s.mu.RUnlock()
	sort.Slice(videos, func(i, j int) bool { return videos[i].CreatedAt.After(videos[j].CreatedAt) })
	return videos, nil
}

func (r *MemoryVideoRepository) Update(_ context.Context, video models.Video) (models.Video, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.videos[video.ID]
	if !ok {
		return models.Video{}, ErrNotFound
	}
	current.Title = video.Title
	current.Description = video.Description
	current.Thumbnail = video.Thumbnail
	current.IsPublic = video.IsPublic
	current.UpdatedAt = r.s.now()
	r.s.videos[video.ID] = current
	return current, nil
}

func (r *MemoryVideoRepository) IncrementViews(_ context.Context, id string) (models.Video, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	video, ok := r.s.videos[id]
	if !ok {
		return models.Video{}, ErrNotFound
	}
	video.Views++
	r.s.videos[id] = video
	return video, nil
}

func (r *MemoryVideoRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.videos[id]; !ok {
		return ErrNotFound
	}
	delete(r.s.videos, id)
	r.s.deleteLikesLocked(id)

	for commentID, comment := range r.s.comments {
		if comment.VideoID == id {
			delete(r.s.comments, commentID)
			r.s.deleteLikesLocked(commentID)
		}
	}
	for playlistID, playlist := range r.s.playlists {
		if playlist.Contains(id) {
			playlist.VideoIDs = without(playlist.VideoIDs, id)
			r.s.playlists[playlistID] = playlist
		}
	}
	for userID, history := range r.s.history {
		r.s.history[userID] = without(history, id)
	}
	return nil
}

func (r *MemoryVideoRepository) ChannelStats(_ context.Context, ownerID string) (models.ChannelStats, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var stats models.ChannelStats
	for _, video := range r.s.videos {
		if video.OwnerID != ownerID {
			continue
		}
		stats.TotalVideos++
		stats.TotalViews += video.Views
	}
	for key, like := range r.s.likes {
		if like.SubjectType != models.SubjectVideo {
			continue
		}
		if video, ok := r.s.videos[key.subjectID]; ok && video.OwnerID == ownerID {
			stats.TotalLikes++
		}
	}
	for key := range r.s.subscriptions {
		if key.channelID == ownerID {
			stats.TotalSubscribers++
		}
	}
	return stats, nil
}

// MemoryTweetRepository implements TweetRepository over a MemoryStore.
type MemoryTweetRepository struct{ s *MemoryStore }

func (r *MemoryTweetRepository) Create(_ context.Context, tweet models.Tweet) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[tweet.OwnerID]; !ok {
		return ErrNotFound
	}
	if tweet.CreatedAt.IsZero() {
		tweet.CreatedAt = r.s.tick()
		tweet.UpdatedAt = tweet.CreatedAt
	}
	r.s.tweets[tweet.ID] = tweet
	return nil
}

func (r *MemoryTweetRepository) FindByID(_ context.Context, id string) (models.Tweet, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	tweet, ok := r.s.tweets[id]
	if !ok {
		return models.Tweet{}, ErrNotFound
	}
	return tweet, nil
}

func (r *MemoryTweetRepository) ListByOwner(_ context.Context, ownerID string) ([]models.Tweet, error) {
	r.s.mu.RLock()
	tweets := []models.Tweet{}
	for _, tweet := range r.s.tweets {
		if tweet.OwnerID == ownerID {
			tweets = append(tweets, tweet)
		}
	}
	r.s.mu.RUnlock()
	sort.Slice(tweets, func(i, j int) bool { return tweets[i].CreatedAt.After(tweets[j].CreatedAt) })
	return tweets, nil
}

func (r *MemoryTweetRepository) Update(_ context.Context, tweet models.Tweet) (models.Tweet, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.tweets[tweet.ID]
	if !ok {
		return models.Tweet{}, ErrNotFound
	}
	current.Content = tweet.Content
	current.UpdatedAt = r.s.now()
	r.s.tweets[tweet.ID] = current
	return current, nil
}

func (r *MemoryTweetRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tweets[id]; !ok {
		return ErrNotFound
	}
	delete(r.s.tweets, id)
	r.s.deleteLikesLocked(id)
	return nil
}

// MemoryCommentRepository implements CommentRepository over a MemoryStore.
type MemoryCommentRepository struct{ s *MemoryStore }

func (r *MemoryCommentRepository) Create(_ context.Context, comment models.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.videos[comment.VideoID]; !ok {
		return ErrNotFound
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = r.s.tick()
		comment.UpdatedAt = comment.CreatedAt
	}
	r.s.comments[comment.ID] = comment
	return nil
}

func (r *MemoryCommentRepository) FindByID(_ context.Context, id string) (models.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	comment, ok := r.s.comments[id]
	if !ok {
		return models.Comment{}, ErrNotFound
	}
	return comment, nil
}

func (r *MemoryCommentRepository) ListByVideo(_ context.Context, videoID string, limit, offset int) ([]models.Comment, int64, error) {
	r.s.mu.RLock()
	comments := []models.Comment{}
	for _, comment := range r.s.comments {
		if comment.VideoID == videoID {
			comments = append(comments, comment)
		}
	}
	r.s.mu.RUnlock()
	sort.Slice(comments, func(i, j int) bool { return comments[i].CreatedAt.After(comments[j].CreatedAt) })

	return window(comments, limit, offset), int64(len(comments)), nil
}

// window returns at most limit items starting at offset. Offsets outside the
// slice yield an empty, non-nil page; a non-positive limit means no limit.
func window[T any](items []T, limit, offset int) []T {
	if offset < 0 || offset >= len(items) {
		return []T{}
	}
	rest := items[offset:]
	if limit > 0 && limit < len(rest) {
		rest = rest[:limit]
	}
	return rest
}

func (r *MemoryCommentRepository) Update(_ context.Context, comment models.Comment) (models.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.comments[comment.ID]
	if !ok {
		return models.Comment{}, ErrNotFound
	}
	current.Content = comment.Content
	current.UpdatedAt = r.s.now()
	r.s.comments[comment.ID] = current
	return current, nil
}

func (r *MemoryCommentRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.comments[id]; !ok {
		return ErrNotFound
	}
	delete(r.s.comments, id)
	r.s.deleteLikesLocked(id)
	return nil
}

// MemoryLikeRepository implements LikeRepository over a MemoryStore.
type MemoryLikeRepository struct{ s *MemoryStore }

func (r *MemoryLikeRepository) Toggle(_ context.Context, subject models.SubjectType, subjectID, userID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := likeKey{subjectID: subjectID, userID: userID}
	if _, ok := r.s.likes[key]; ok {
		delete(r.s.likes, key)
		return false, nil
	}
	r.s.likes[key] = models.Like{
		ID:          uuid.NewString(),
		SubjectType: subject,
		SubjectID:   subjectID,
		LikedBy:     userID,
		CreatedAt:   r.s.tick(),
	}
	return true, nil
}

func (r *MemoryLikeRepository) Likers(_ context.Context, subject models.SubjectType, subjectIDs []string) (map[string][]string, error) {
	wanted := make(map[string]struct{}, len(subjectIDs))
	for _, id := range subjectIDs {
		wanted[id] = struct{}{}
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make(map[string][]string)
	for key, like := range r.s.likes {
		if like.SubjectType != subject {
			continue
		}
		if _, ok := wanted[key.subjectID]; ok {
			out[key.subjectID] = append(out[key.subjectID], key.userID)
		}
	}
	return out, nil
}

func (r *MemoryLikeRepository) LikedVideoIDs(_ context.Context, userID string) ([]string, error) {
	r.s.mu.RLock()
	likes := []models.Like{}
	for _, like := range r.s.likes {
		if like.LikedBy == userID && like.SubjectType == models.SubjectVideo {
			likes = append(likes, like)
		}
	}
	r.s.mu.RUnlock()
	sort.Slice(likes, func(i, j int) bool { return likes[i].CreatedAt.After(likes[j].CreatedAt) })

	ids := make([]string, 0, len(likes))
	for _, like := range likes {
		ids = append(ids, like.SubjectID)
	}
	return ids, nil
}

// MemoryPlaylistRepository implements PlaylistRepository over a MemoryStore.
type MemoryPlaylistRepository struct{ s *MemoryStore }

func (r *MemoryPlaylistRepository) Create(_ context.Context, playlist models.Playlist) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[playlist.OwnerID]; !ok {
		return ErrNotFound
	}
	if playlist.CreatedAt.IsZero() {
		playlist.CreatedAt = r.s.tick()
		playlist.UpdatedAt = playlist.CreatedAt
	}
	playlist.VideoIDs = append([]string{}, playlist.VideoIDs...)
	r.s.playlists[playlist.ID] = playlist
	return nil
}

func (r *MemoryPlaylistRepository) FindByID(_ context.Context, id string) (models.Playlist, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	playlist, ok := r.s.playlists[id]
	if !ok {
		return models.Playlist{}, ErrNotFound
	}
	playlist.VideoIDs = append([]string{}, playlist.VideoIDs...)
	return playlist, nil
}

func (r *MemoryPlaylistRepository) ListByOwner(_ context.Context, ownerID string) ([]models.Playlist, error) {
	r.s.mu.RLock()
	playlists := []models.Playlist{}
	for _, playlist := range r.s.playlists {
		if playlist.OwnerID == ownerID {
			playlist.VideoIDs = append([]string{}, playlist.VideoIDs...)
			playlists = append(playlists, playlist)
		}
	}
	r.s.mu.RUnlock()
	sort.Slice(playlists, func(i, j int) bool { return playlists[i].CreatedAt.After(playlists[j].CreatedAt) })
	return playlists, nil
}

func (r *MemoryPlaylistRepository) Update(_ context.Context, playlist models.Playlist) (models.Playlist, error) {
	return r.update(playlist.ID, func(current *models.Playlist) error {
		current.Name = playlist.Name
		current.Description = playlist.Description
		return nil
	})
}

func (r *MemoryPlaylistRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.playlists[id]; !ok {
		return ErrNotFound
	}
	delete(r.s.playlists, id)
	return nil
}

func (r *MemoryPlaylistRepository) AddVideo(_ context.Context, playlistID, videoID string) (models.Playlist, error) {
	return r.update(playlistID, func(current *models.Playlist) error {
		if _, ok := r.s.videos[videoID]; !ok {
			return ErrNotFound
		}
		if !current.Contains(videoID) {
			current.VideoIDs = append(current.VideoIDs, videoID)
		}
		return nil
	})
}

func (r *MemoryPlaylistRepository) RemoveVideo(_ context.Context, playlistID, videoID string) (models.Playlist, error) {
	return r.update(playlistID, func(current *models.Playlist) error {
		current.VideoIDs = without(current.VideoIDs, videoID)
		return nil
	})
}

func (r *MemoryPlaylistRepository) update(id string, apply func(*models.Playlist) error) (models.Playlist, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	playlist, ok := r.s.playlists[id]
	if !ok {
		return models.Playlist{}, ErrNotFound
	}
	playlist.VideoIDs = append([]string{}, playlist.VideoIDs...)
	if err := apply(&playlist); err != nil {
		return models.Playlist{}, err
	}
	playlist.UpdatedAt = r.s.now()
	r.s.playlists[id] = playlist
	playlist.VideoIDs = append([]string{}, playlist.VideoIDs...)
	return playlist, nil
}

// MemorySubscriptionRepository implements SubscriptionRepository over a MemoryStore.
type MemorySubscriptionRepository struct{ s *MemoryStore }

func (r *MemorySubscriptionRepository) Toggle(_ context.Context, subscriberID, channelID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := subscriptionKey{subscriberID: subscriberID, channelID: channelID}
	if _, ok := r.s.subscriptions[key]; ok {
		delete(r.s.subscriptions, key)
		return false, nil
	}
	if _, ok := r.s.users[channelID]; !ok {
		return false, ErrNotFound
	}
	r.s.subscriptions[key] = models.Subscription{
		ID:           uuid.NewString(),
		SubscriberID: subscriberID,
		ChannelID:    channelID,
		CreatedAt:    r.s.tick(),
	}
	return true, nil
}

func (r *MemorySubscriptionRepository) Subscribers(_ context.Context, channelIDs []string) (map[string][]string, error) {
	wanted := make(map[string]struct{}, len(channelIDs))
	for _, id := range channelIDs {
		wanted[id] = struct{}{}
	}

	r.s.mu.RLock()
	subs := []models.Subscription{}
	for key, sub := range r.s.subscriptions {
		if _, ok := wanted[key.channelID]; ok {
			subs = append(subs, sub)
		}
	}
	r.s.mu.RUnlock()
	sort.Slice(subs, func(i, j int) bool { return subs[i].CreatedAt.After(subs[j].CreatedAt) })

	out := make(map[string][]string)
	for _, sub := range subs {
		out[sub.ChannelID] = append(out[sub.ChannelID], sub.SubscriberID)
	}
	return out, nil
}

func (r *MemorySubscriptionRepository) ChannelIDs(_ context.Context, subscriberID string) ([]string, error) {
	r.s.mu.RLock()
	subs := []models.Subscription{}
	for key, sub := range r.s.subscriptions {
		if key.subscriberID == subscriberID {
			subs = append(subs, sub)
		}
	}
	r.s.mu.RUnlock()
	sort.Slice(subs, func(i, j int) bool { return subs[i].CreatedAt.After(subs[j].CreatedAt) })

	ids := make([]string, 0, len(subs))
	for _, sub := range subs {
		ids = append(ids, sub.ChannelID)
	}
	return ids, nil
}

func (r *MemorySubscriptionRepository) CountSubscribedTo(ctx context.Context, subscriberID string) (int64, error) {
	ids, err := r.ChannelIDs(ctx, subscriberID)
	return int64(len(ids)), err
}

func without(ids []string, drop string) []string {
	out := ids[:0:0]
	for _, id := range ids {
		if id != drop {
			out = append(out, id)
		}
	}
	return out
}

var (
	_ UserRepository         = (*MemoryUserRepository)(nil)
	_ VideoRepository        = (*MemoryVideoRepository)(nil)
	_ TweetRepository        = (*MemoryTweetRepository)(nil)
	_ CommentRepository      = (*MemoryCommentRepository)(nil)
	_ LikeRepository         = (*MemoryLikeRepository)(nil)
	_ PlaylistRepository     = (*MemoryPlaylistRepository)(nil)
	_ SubscriptionRepository = (*MemorySubscriptionRepository)(nil)
)
