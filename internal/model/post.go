package model

import (
	"errors"
	"time"
)

// MediaKind classifies a post's media.
const (
	MediaKindImage = "image"
	MediaKindVideo = "video"
)

// Post represents a feed entry with its media and interaction state.
type Post struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	Username  string    `db:"username" json:"username"`
	MediaURL  string    `db:"media_url" json:"media_url"`
	MediaKind string    `db:"media_kind" json:"media_kind"` // "image" or "video"
	Caption   string    `db:"caption" json:"caption"`
	Hashtags  []string  `db:"-" json:"hashtags"`
	Location  string    `db:"location" json:"location,omitempty"`
	LikeCount int       `db:"like_count" json:"like_count"`
	IsLiked   bool      `db:"is_liked" json:"is_liked"`
	Comments  []Comment `db:"-" json:"comments"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// CreatePostRequest carries the multipart fields accompanying the media file.
type CreatePostRequest struct {
	Caption  string
	Hashtags string // comma- or space-separated free text
	Location string
}

// FeedResponse is the full-feed listing response.
type FeedResponse struct {
	Posts []Post `json:"posts"`
}

// UserPostsResponse is the per-author listing response.
type UserPostsResponse struct {
	Posts      []Post `json:"posts"`
	TotalPosts int    `json:"totalPosts"`
}

// Post errors
var (
	ErrPostNotFound     = errors.New("post not found")
	ErrMissingMediaURL  = errors.New("post media url is required")
	ErrMissingMediaKind = errors.New("post media kind is required")
)

// IsValidMediaKind reports whether kind is one of the supported media kinds.
func IsValidMediaKind(kind string) bool {
	return kind == MediaKindImage || kind == MediaKindVideo
}
