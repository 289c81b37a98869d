package models

import "time"

// OwnerSummary is the owner profile subset embedded in read projections.
type OwnerSummary struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FullName  string `json:"fullName"`
	AvatarURL string `json:"avatar"`
}

// ChannelSummary extends an owner summary with viewer-relative subscription state.
type ChannelSummary struct {
	OwnerSummary
	SubscriberCount int64 `json:"subscriberCount"`
	IsSubscribed    bool  `json:"isSubscribed"`
}

// TweetView is a tweet joined with its owner and likes.
type TweetView struct {
	ID        string       `json:"id"`
	Content   string       `json:"content"`
	Owner     OwnerSummary `json:"ownerDetails"`
	LikeCount int64        `json:"likeCount"`
	IsLiked   bool         `json:"isLiked"`
	CreatedAt time.Time    `json:"createdAt"`
}

// CommentView is a comment joined with its owner and likes.
type CommentView struct {
	ID        string       `json:"id"`
	Content   string       `json:"content"`
	Owner     OwnerSummary `json:"owner"`
	LikeCount int64        `json:"likeCount"`
	IsLiked   bool         `json:"isLiked"`
	CreatedAt time.Time    `json:"createdAt"`
}

// VideoCard is the compact video projection used by listings.
type VideoCard struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	VideoURL     string       `json:"videoFile"`
	ThumbnailURL string       `json:"thumbnail"`
	Duration     float64      `json:"duration"`
	Views        int64        `json:"views"`
	IsPublic     bool         `json:"isPublic"`
	CreatedAt    time.Time    `json:"createdAt"`
	Owner        OwnerSummary `json:"ownerDetails"`
}

// VideoDetail is the single-video projection with social context.
type VideoDetail struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	VideoURL    string         `json:"videoFile"`
	Duration    float64        `json:"duration"`
	Views       int64          `json:"views"`
	IsPublic    bool           `json:"isPublic"`
	CreatedAt   time.Time      `json:"createdAt"`
	Owner       ChannelSummary `json:"ownerDetails"`
	LikeCount   int64          `json:"likeCount"`
	IsLiked     bool           `json:"isLiked"`
}

// ChannelProfile is the public view of a user's channel.
type ChannelProfile struct {
	ID                string `json:"id"`
	Username          string `json:"username"`
	FullName          string `json:"fullName"`
	AvatarURL         string `json:"avatar"`
	CoverImageURL     string `json:"coverImage"`
	SubscriberCount   int64  `json:"subscribersCount"`
	SubscribedToCount int64  `json:"channelsSubscribedToCount"`
	IsSubscribed      bool   `json:"isSubscribed"`
}

// PlaylistSummary aggregates the videos of a playlist.
type PlaylistSummary struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	TotalVideos int64     `json:"totalVideos"`
	TotalViews  int64     `json:"totalViews"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// PlaylistDetail is a playlist with its owner and visible videos.
type PlaylistDetail struct {
	PlaylistSummary
	Owner  OwnerSummary `json:"owner"`
	Videos []VideoCard  `json:"videos"`
}

// ChannelStats summarises a channel for its dashboard.
type ChannelStats struct {
	TotalVideos      int64 `json:"totalVideos"`
	TotalViews       int64 `json:"totalViews"`
	TotalSubscribers int64 `json:"totalSubscribers"`
	TotalLikes       int64 `json:"totalLikes"`
}

// DashboardVideo is a channel's own video with its like count.
type DashboardVideo struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	VideoURL     string    `json:"videoFile"`
	ThumbnailURL string    `json:"thumbnail"`
	IsPublic     bool      `json:"isPublic"`
	Views        int64     `json:"views"`
	LikeCount    int64     `json:"likesCount"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Page is one page of a paginated listing.
type Page[T any] struct {
	Items       []T   `json:"docs"`
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	Total       int64 `json:"totalDocs"`
	TotalPages  int   `json:"totalPages"`
	HasNextPage bool  `json:"hasNextPage"`
}
