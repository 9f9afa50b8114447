package repository

import (
	"context"

	"reelgram/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	Update(ctx context.Context, user *model.User) error
}

// PostRepository owns the canonical post and comment collection. All mutation
// goes through it; callers never hold live references into its state.
type PostRepository interface {
	// Append inserts the post at the head of the feed ordering (newest first).
	// Fails with model.ErrMissingMediaURL / ErrMissingMediaKind on incomplete media.
	Append(ctx context.Context, post *model.Post) error

	// ListAll returns a snapshot of every post in feed order. The whole
	// current set comes back in one call; there is no pagination cursor.
	ListAll(ctx context.Context) ([]model.Post, error)

	// ListByAuthor returns the author's posts sorted by createdAt descending,
	// ties broken by insertion order.
	ListByAuthor(ctx context.Context, userID int64) ([]model.Post, error)

	GetByID(ctx context.Context, postID int64) (*model.Post, error)

	// ToggleLike flips is_liked and moves like_count by exactly ±1. Each call
	// is a clean toggle, so two successive calls restore the original state.
	ToggleLike(ctx context.Context, postID int64) (*model.Post, error)

	// AppendComment validates the trimmed text, appends a comment with a fresh
	// id, and returns the updated comment sequence.
	AppendComment(ctx context.Context, postID int64, authorHandle, text string) ([]model.Comment, error)

	// Exists checks if a post is present. Used by the interaction engine's
	// stale-timer guard.
	Exists(ctx context.Context, postID int64) (bool, error)
}
