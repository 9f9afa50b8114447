package model

import (
	"errors"
	"time"
)

// Comment is a single remark on a post. Comments are immutable once created
// and are always appended, so insertion order is display order.
type Comment struct {
	ID           int64     `db:"id" json:"id"`
	PostID       int64     `db:"post_id" json:"-"`
	AuthorHandle string    `db:"author_handle" json:"username"`
	Text         string    `db:"text" json:"text"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// CreateCommentRequest is the request body for commenting on a post.
type CreateCommentRequest struct {
	Text string `json:"text"`
}

// CommentListResponse is returned after a successful comment append.
type CommentListResponse struct {
	Comments []Comment `json:"comments"`
}

// ErrEmptyComment is returned when the comment text is empty after trimming.
var ErrEmptyComment = errors.New("comment text is required")
