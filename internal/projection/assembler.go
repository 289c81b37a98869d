// Package projection joins resources with owner profiles, like counts and
// viewer-relative flags into response shapes.
package projection

import (
	"context"
	"fmt"

	"github.com/vidtube/backend/internal/models"
)

// Source provides the related records a projection needs, batched by id.
type Source interface {
	// Profiles returns the users with the given ids keyed by id. Unknown ids are omitted.
	Profiles(ctx context.Context, ids []string) (map[string]models.User, error)
	// Likers returns, per subject id, the ids of users who liked it.
	Likers(ctx context.Context, subject models.SubjectType, ids []string) (map[string][]string, error)
	// Subscribers returns, per channel id, the ids of its subscribers.
	Subscribers(ctx context.Context, channelIDs []string) (map[string][]string, error)
}

// Assembler builds read projections from a Source.
type Assembler struct {
	source Source
}

// NewAssembler constructs an Assembler.
func NewAssembler(source Source) *Assembler {
	return &Assembler{source: source}
}

// Summarize reduces a user to the owner fields embedded in projections.
func Summarize(user models.User) models.OwnerSummary {
	return models.OwnerSummary{
		ID:        user.ID,
		Username:  user.Username,
		FullName:  user.FullName,
		AvatarURL: user.Avatar.URL,
	}
}

// Tweets projects tweets with owner details, like counts and isLiked for viewerID.
func (a *Assembler) Tweets(ctx context.Context, viewerID string, tweets []models.Tweet) ([]models.TweetView, error) {
	ownerIDs := make([]string, 0, len(tweets))
	tweetIDs := make([]string, 0, len(tweets))
	for _, tweet := range tweets {
		ownerIDs = append(ownerIDs, tweet.OwnerID)
		tweetIDs = append(tweetIDs, tweet.ID)
	}

	owners, likers, err := a.ownersAndLikers(ctx, ownerIDs, models.SubjectTweet, tweetIDs)
	if err != nil {
		return nil, err
	}

	views := make([]models.TweetView, 0, len(tweets))
	for _, tweet := range tweets {
		count, liked := tally(likers[tweet.ID], viewerID)
		views = append(views, models.TweetView{
			ID:        tweet.ID,
			Content:   tweet.Content,
			Owner:     Summarize(owners[tweet.OwnerID]),
			LikeCount: count,
			IsLiked:   liked,
			CreatedAt: tweet.CreatedAt,
		})
	}
	return views, nil
}

// Comments projects comments with owner details, like counts and isLiked for viewerID.
func (a *Assembler) Comments(ctx context.Context, viewerID string, comments []models.Comment) ([]models.CommentView, error) {
	ownerIDs := make([]string, 0, len(comments))
	commentIDs := make([]string, 0, len(comments))
	for _, comment := range comments {
		ownerIDs = append(ownerIDs, comment.OwnerID)
		commentIDs = append(commentIDs, comment.ID)
	}

	owners, likers, err := a.ownersAndLikers(ctx, ownerIDs, models.SubjectComment, commentIDs)
	if err != nil {
		return nil, err
	}

	views := make([]models.CommentView, 0, len(comments))
	for _, comment := range comments {
		count, liked := tally(likers[comment.ID], viewerID)
		views = append(views, models.CommentView{
			ID:        comment.ID,
			Content:   comment.Content,
			Owner:     Summarize(owners[comment.OwnerID]),
			LikeCount: count,
			IsLiked:   liked,
			CreatedAt: comment.CreatedAt,
		})
	}
	return views, nil
}

// VideoCards projects videos for listings with their owner summary.
func (a *Assembler) VideoCards(ctx context.Context, videos []models.Video) ([]models.VideoCard, error) {
	ownerIDs := make([]string, 0, len(videos))
	for _, video := range videos {
		ownerIDs = append(ownerIDs, video.OwnerID)
	}

	owners, err := a.profiles(ctx, ownerIDs)
	if err != nil {
		return nil, err
	}

	cards := make([]models.VideoCard, 0, len(videos))
	for _, video := range videos {
		cards = append(cards, card(video, owners[video.OwnerID]))
	}
	return cards, nil
}

// VideoDetail projects a single video with its channel, like count and viewer flags.
func (a *Assembler) VideoDetail(ctx context.Context, viewerID string, video models.Video) (models.VideoDetail, error) {
	owners, likers, err := a.ownersAndLikers(ctx, []string{video.OwnerID}, models.SubjectVideo, []string{video.ID})
	if err != nil {
		return models.VideoDetail{}, err
	}

	channels, err := a.Channels(ctx, viewerID, []models.User{owners[video.OwnerID]})
	if err != nil {
		return models.VideoDetail{}, err
	}

	count, liked := tally(likers[video.ID], viewerID)
	return models.VideoDetail{
		ID:          video.ID,
		Title:       video.Title,
		Description: video.Description,
		VideoURL:    video.VideoFile.URL,
		Duration:    video.Duration,
		Views:       video.Views,
		IsPublic:    video.IsPublic,
		CreatedAt:   video.CreatedAt,
		Owner:       channels[0],
		LikeCount:   count,
		IsLiked:     liked,
	}, nil
}

// Channels projects users as channels with subscriber counts and isSubscribed for viewerID.
func (a *Assembler) Channels(ctx context.Context, viewerID string, users []models.User) ([]models.ChannelSummary, error) {
	ids := make([]string, 0, len(users))
	for _, user := range users {
		ids = append(ids, user.ID)
	}

	subscribers, err := a.source.Subscribers(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load subscribers: %w", err)
	}

	channels := make([]models.ChannelSummary, 0, len(users))
	for _, user := range users {
		count, subscribed := tally(subscribers[user.ID], viewerID)
		channels = append(channels, models.ChannelSummary{
			OwnerSummary:    Summarize(user),
			SubscriberCount: count,
			IsSubscribed:    subscribed,
		})
	}
	return channels, nil
}

// ChannelProfile projects a user's public channel page.
func (a *Assembler) ChannelProfile(ctx context.Context, viewerID string, user models.User, subscribedTo int64) (models.ChannelProfile, error) {
	subscribers, err := a.source.Subscribers(ctx, []string{user.ID})
	if err != nil {
		return models.ChannelProfile{}, fmt.Errorf("load subscribers: %w", err)
	}

	count, subscribed := tally(subscribers[user.ID], viewerID)
	return models.ChannelProfile{
		ID:                user.ID,
		Username:          user.Username,
		FullName:          user.FullName,
		AvatarURL:         user.Avatar.URL,
		CoverImageURL:     user.CoverImage.URL,
		SubscriberCount:   count,
		SubscribedToCount: subscribedTo,
		IsSubscribed:      subscribed,
	}, nil
}

// PlaylistSummary totals the videos of a playlist visible to viewerID.
func PlaylistSummary(viewerID string, playlist models.Playlist, videos map[string]models.Video) models.PlaylistSummary {
	summary := models.PlaylistSummary{
		ID:          playlist.ID,
		Name:        playlist.Name,
		Description: playlist.Description,
		CreatedAt:   playlist.CreatedAt,
		UpdatedAt:   playlist.UpdatedAt,
	}
	for _, id := range playlist.VideoIDs {
		video, ok := videos[id]
		if !ok || !video.VisibleTo(viewerID) {
			continue
		}
		summary.TotalVideos++
		summary.TotalViews += video.Views
	}
	return summary
}

// PlaylistDetail projects a playlist with its owner and visible videos in playlist order.
func (a *Assembler) PlaylistDetail(ctx context.Context, viewerID string, playlist models.Playlist, videos map[string]models.Video) (models.PlaylistDetail, error) {
	ownerIDs := []string{playlist.OwnerID}
	ordered := make([]models.Video, 0, len(playlist.VideoIDs))
	for _, id := range playlist.VideoIDs {
		video, ok := videos[id]
		if !ok || !video.VisibleTo(viewerID) {
			continue
		}
		ordered = append(ordered, video)
		ownerIDs = append(ownerIDs, video.OwnerID)
	}

	owners, err := a.profiles(ctx, ownerIDs)
	if err != nil {
		return models.PlaylistDetail{}, err
	}

	cards := make([]models.VideoCard, 0, len(ordered))
	for _, video := range ordered {
		cards = append(cards, card(video, owners[video.OwnerID]))
	}

	return models.PlaylistDetail{
		PlaylistSummary: PlaylistSummary(viewerID, playlist, videos),
		Owner:           Summarize(owners[playlist.OwnerID]),
		Videos:          cards,
	}, nil
}

// DashboardVideos projects a channel's own videos with their like counts.
func (a *Assembler) DashboardVideos(ctx context.Context, videos []models.Video) ([]models.DashboardVideo, error) {
	ids := make([]string, 0, len(videos))
	for _, video := range videos {
		ids = append(ids, video.ID)
	}

	likers, err := a.source.Likers(ctx, models.SubjectVideo, ids)
	if err != nil {
		return nil, fmt.Errorf("load likes: %w", err)
	}

	out := make([]models.DashboardVideo, 0, len(videos))
	for _, video := range videos {
		out = append(out, models.DashboardVideo{
			ID:           video.ID,
			Title:        video.Title,
			Description:  video.Description,
			VideoURL:     video.VideoFile.URL,
			ThumbnailURL: video.Thumbnail.URL,
			IsPublic:     video.IsPublic,
			Views:        video.Views,
			LikeCount:    int64(len(likers[video.ID])),
			CreatedAt:    video.CreatedAt,
		})
	}
	return out, nil
}

func (a *Assembler) ownersAndLikers(ctx context.Context, ownerIDs []string, subject models.SubjectType, subjectIDs []string) (map[string]models.User, map[string][]string, error) {
	owners, err := a.profiles(ctx, ownerIDs)
	if err != nil {
		return nil, nil, err
	}
	likers, err := a.source.Likers(ctx, subject, subjectIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("load likes: %w", err)
	}
	return owners, likers, nil
}

func (a *Assembler) profiles(ctx context.Context, ids []string) (map[string]models.User, error) {
	owners, err := a.source.Profiles(ctx, dedupe(ids))
	if err != nil {
		return nil, fmt.Errorf("load owners: %w", err)
	}
	return owners, nil
}

func card(video models.Video, owner models.User) models.VideoCard {
	return models.VideoCard{
		ID:           video.ID,
		Title:        video.Title,
		Description:  video.Description,
		VideoURL:     video.VideoFile.URL,
		ThumbnailURL: video.Thumbnail.URL,
		Duration:     video.Duration,
		Views:        video.Views,
		IsPublic:     video.IsPublic,
		CreatedAt:    video.CreatedAt,
		Owner:        Summarize(owner),
	}
}

// tally counts actors and reports whether viewerID is among them.
func tally(actors []string, viewerID string) (int64, bool) {
	member := false
	if viewerID != "" {
		for _, id := range actors {
			if id == viewerID {
				member = true
				break
			}
		}
	}
	return int64(len(actors)), member
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
