package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"reelgram/internal/model"
	"reelgram/internal/repository"
)

type postRepository struct {
	db *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) repository.PostRepository {
	return &postRepository{db: db}
}

// postRow mirrors the posts table; hashtags need pq.Array so they live
// outside the shared model struct's db mapping.
type postRow struct {
	model.Post
	HashtagsArr pq.StringArray `db:"hashtags"`
}

func (row *postRow) toPost() model.Post {
	p := row.Post
	p.Hashtags = []string(row.HashtagsArr)
	if p.Hashtags == nil {
		p.Hashtags = []string{}
	}
	if p.Comments == nil {
		p.Comments = []model.Comment{}
	}
	return p
}

// Append inserts a new post. Feed order is id descending, so the newest
// insert is the head of the feed by construction.
func (r *postRepository) Append(ctx context.Context, post *model.Post) error {
	if strings.TrimSpace(post.MediaURL) == "" {
		return model.ErrMissingMediaURL
	}
	if !model.IsValidMediaKind(post.MediaKind) {
		return model.ErrMissingMediaKind
	}

	query := `
		INSERT INTO posts (user_id, username, media_url, media_kind, caption, hashtags, location)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		post.UserID, post.Username, post.MediaURL, post.MediaKind,
		post.Caption, pq.Array(post.Hashtags), post.Location,
	).Scan(&post.ID, &post.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	if post.Comments == nil {
		post.Comments = []model.Comment{}
	}
	return nil
}

func (r *postRepository) ListAll(ctx context.Context) ([]model.Post, error) {
	query := `
		SELECT id, user_id, username, media_url, media_kind, caption, hashtags,
		       location, like_count, is_liked, created_at
		FROM posts
		ORDER BY id DESC
	`
	var rows []postRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return r.hydrate(ctx, rows)
}

func (r *postRepository) ListByAuthor(ctx context.Context, userID int64) ([]model.Post, error) {
	query := `
		SELECT id, user_id, username, media_url, media_kind, caption, hashtags,
		       location, like_count, is_liked, created_at
		FROM posts
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`
	var rows []postRow
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("list posts by author: %w", err)
	}
	return r.hydrate(ctx, rows)
}

func (r *postRepository) GetByID(ctx context.Context, postID int64) (*model.Post, error) {
	query := `
		SELECT id, user_id, username, media_url, media_kind, caption, hashtags,
		       location, like_count, is_liked, created_at
		FROM posts
		WHERE id = $1
	`
	var row postRow
	err := r.db.GetContext(ctx, &row, query, postID)
	if err == sql.ErrNoRows {
		return nil, model.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}

	posts, err := r.hydrate(ctx, []postRow{row})
	if err != nil {
		return nil, err
	}
	return &posts[0], nil
}

// ToggleLike flips is_liked and moves like_count in a single statement so the
// two can never diverge.
func (r *postRepository) ToggleLike(ctx context.Context, postID int64) (*model.Post, error) {
	query := `
		UPDATE posts
		SET is_liked = NOT is_liked,
		    like_count = like_count + CASE WHEN is_liked THEN -1 ELSE 1 END
		WHERE id = $1
		RETURNING id
	`
	var id int64
	err := r.db.QueryRowxContext(ctx, query, postID).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, model.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("toggle like: %w", err)
	}
	return r.GetByID(ctx, postID)
}

func (r *postRepository) AppendComment(ctx context.Context, postID int64, authorHandle, text string) ([]model.Comment, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, model.ErrEmptyComment
	}

	exists, err := r.Exists(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, model.ErrPostNotFound
	}

	query := `
		INSERT INTO comments (post_id, author_handle, text)
		VALUES ($1, $2, $3)
	`
	if _, err := r.db.ExecContext(ctx, query, postID, authorHandle, trimmed); err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}

	return r.getComments(ctx, postID)
}

func (r *postRepository) Exists(ctx context.Context, postID int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM posts WHERE id = $1)`, postID)
	if err != nil {
		return false, fmt.Errorf("check post exists: %w", err)
	}
	return exists, nil
}

// hydrate attaches comments to each post with one batched query.
func (r *postRepository) hydrate(ctx context.Context, rows []postRow) ([]model.Post, error) {
	posts := make([]model.Post, len(rows))
	ids := make([]int64, len(rows))
	for i := range rows {
		posts[i] = rows[i].toPost()
		ids[i] = posts[i].ID
	}
	if len(ids) == 0 {
		return posts, nil
	}

	query := `
		SELECT id, post_id, author_handle, text, created_at
		FROM comments
		WHERE post_id = ANY($1)
		ORDER BY post_id, id
	`
	var comments []model.Comment
	if err := r.db.SelectContext(ctx, &comments, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("get comments: %w", err)
	}

	byPost := make(map[int64][]model.Comment)
	for _, c := range comments {
		byPost[c.PostID] = append(byPost[c.PostID], c)
	}
	for i := range posts {
		if cs, ok := byPost[posts[i].ID]; ok {
			posts[i].Comments = cs
		}
	}
	return posts, nil
}

func (r *postRepository) getComments(ctx context.Context, postID int64) ([]model.Comment, error) {
	query := `
		SELECT id, post_id, author_handle, text, created_at
		FROM comments
		WHERE post_id = $1
		ORDER BY id
	`
	var comments []model.Comment
	if err := r.db.SelectContext(ctx, &comments, query, postID); err != nil {
		return nil, fmt.Errorf("get comments: %w", err)
	}
	return comments, nil
}
