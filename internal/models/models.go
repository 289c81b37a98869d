package models

import "time"

// Asset references a media object held by the asset store.
type Asset struct {
	URL string `json:"url"`
	ID  string `json:"-"`
}

// IsZero reports whether the asset was never uploaded.
func (a Asset) IsZero() bool {
	return a.URL == "" && a.ID == ""
}

// User represents an account and its channel within vidtube.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FullName     string    `json:"fullName"`
	PasswordHash string    `json:"-"`
	RefreshToken string    `json:"-"`
	Avatar       Asset     `json:"avatar"`
	CoverImage   Asset     `json:"coverImage"`
	IsActive     bool      `json:"isActive"`
	IsAdmin      bool      `json:"isAdmin"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Video is an uploaded video owned by a channel.
type Video struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner"`
	VideoFile   Asset     `json:"videoFile"`
	Thumbnail   Asset     `json:"thumbnail"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Duration    float64   `json:"duration"`
	Views       int64     `json:"views"`
	IsPublic    bool      `json:"isPublic"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Owner returns the identifier of the channel that published the video.
func (v Video) Owner() string { return v.OwnerID }

// VisibleTo reports whether the viewer may see the video.
func (v Video) VisibleTo(viewerID string) bool {
	return v.IsPublic || v.OwnerID == viewerID
}

// Tweet is a short text post.
type Tweet struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (t Tweet) Owner() string { return t.OwnerID }

// Comment is a text reply attached to a video.
type Comment struct {
	ID        string    `json:"id"`
	VideoID   string    `json:"video"`
	OwnerID   string    `json:"owner"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (c Comment) Owner() string { return c.OwnerID }

// Playlist is an ordered set of videos curated by its owner.
type Playlist struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	VideoIDs    []string  `json:"videos"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (p Playlist) Owner() string { return p.OwnerID }

// Contains reports whether the playlist already holds the video.
func (p Playlist) Contains(videoID string) bool {
	for _, id := range p.VideoIDs {
		if id == videoID {
			return true
		}
	}
	return false
}

// SubjectType names the kind of record a Like points at.
type SubjectType string

const (
	SubjectVideo   SubjectType = "video"
	SubjectComment SubjectType = "comment"
	SubjectTweet   SubjectType = "tweet"
)

// Valid reports whether the subject type is one of the likeable kinds.
func (s SubjectType) Valid() bool {
	switch s {
	case SubjectVideo, SubjectComment, SubjectTweet:
		return true
	}
	return false
}

// Like joins a user to a liked subject. At most one exists per (subject, user).
type Like struct {
	ID          string      `json:"id"`
	SubjectType SubjectType `json:"subjectType"`
	SubjectID   string      `json:"subjectId"`
	LikedBy     string      `json:"likedBy"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// Subscription records that a subscriber follows a channel.
type Subscription struct {
	ID           string    `json:"id"`
	SubscriberID string    `json:"subscriber"`
	ChannelID    string    `json:"channel"`
	CreatedAt    time.Time `json:"createdAt"`
}

// SessionTokens groups the bearer credentials issued to authenticated users.
type SessionTokens struct {
	AccessToken      string    `json:"accessToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshToken     string    `json:"-"`
	RefreshExpiresAt time.Time `json:"-"`
}

// VideoSort selects the ordering column for video listings.
type VideoSort string

const (
	SortByCreatedAt VideoSort = "createdAt"
	SortByViews     VideoSort = "views"
)

// VideoFilter narrows a video listing.
type VideoFilter struct {
	OwnerID   string
	ViewerID  string
	SortBy    VideoSort
	Ascending bool
	Limit     int
	Offset    int
}
