package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"reelgram/internal/model"
	"reelgram/internal/repository"
)

// postRepository keeps the canonical post collection in an explicitly-locked
// map plus a feed-order index. It exists so tests and the default deployment
// run without external services; the Postgres implementation is its drop-in
// replacement.
type postRepository struct {
	mu            sync.RWMutex
	posts         map[int64]*model.Post
	feedOrder     []int64 // newest first
	nextID        int64
	nextCommentID int64
}

func NewPostRepository() repository.PostRepository {
	return &postRepository{
		posts:         make(map[int64]*model.Post),
		nextID:        1,
		nextCommentID: 1,
	}
}

// Append inserts at the head of the feed ordering.
func (r *postRepository) Append(_ context.Context, post *model.Post) error {
	if strings.TrimSpace(post.MediaURL) == "" {
		return model.ErrMissingMediaURL
	}
	if !model.IsValidMediaKind(post.MediaKind) {
		return model.ErrMissingMediaKind
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	post.ID = r.nextID
	r.nextID++
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now()
	}
	if post.Hashtags == nil {
		post.Hashtags = []string{}
	}
	if post.Comments == nil {
		post.Comments = []model.Comment{}
	}

	stored := clonePost(post)
	r.posts[post.ID] = &stored
	r.feedOrder = append([]int64{post.ID}, r.feedOrder...)
	return nil
}

// ListAll returns the entire current set in feed order.
func (r *postRepository) ListAll(_ context.Context) ([]model.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Post, 0, len(r.feedOrder))
	for _, id := range r.feedOrder {
		out = append(out, clonePost(r.posts[id]))
	}
	return out, nil
}

// ListByAuthor filters by author and sorts by createdAt descending. The
// stable sort preserves feed order (newest insertion first) for equal
// timestamps.
func (r *postRepository) ListByAuthor(_ context.Context, userID int64) ([]model.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []model.Post
	for _, id := range r.feedOrder {
		if p := r.posts[id]; p.UserID == userID {
			out = append(out, clonePost(p))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if out == nil {
		out = []model.Post{}
	}
	return out, nil
}

func (r *postRepository) GetByID(_ context.Context, postID int64) (*model.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.posts[postID]
	if !ok {
		return nil, model.ErrPostNotFound
	}
	out := clonePost(p)
	return &out, nil
}

// ToggleLike flips the liked flag and adjusts the count by ±1 under one lock,
// so the count can never drift from the flag.
func (r *postRepository) ToggleLike(_ context.Context, postID int64) (*model.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.posts[postID]
	if !ok {
		return nil, model.ErrPostNotFound
	}

	if p.IsLiked {
		p.IsLiked = false
		p.LikeCount--
	} else {
		p.IsLiked = true
		p.LikeCount++
	}

	out := clonePost(p)
	return &out, nil
}

func (r *postRepository) AppendComment(_ context.Context, postID int64, authorHandle, text string) ([]model.Comment, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, model.ErrEmptyComment
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.posts[postID]
	if !ok {
		return nil, model.ErrPostNotFound
	}

	comment := model.Comment{
		ID:           r.nextCommentID,
		PostID:       postID,
		AuthorHandle: authorHandle,
		Text:         trimmed,
		CreatedAt:    time.Now(),
	}
	r.nextCommentID++
	p.Comments = append(p.Comments, comment)

	out := make([]model.Comment, len(p.Comments))
	copy(out, p.Comments)
	return out, nil
}

func (r *postRepository) Exists(_ context.Context, postID int64) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.posts[postID]
	return ok, nil
}

// clonePost deep-copies the slices so callers never alias repository state.
func clonePost(p *model.Post) model.Post {
	out := *p
	out.Hashtags = make([]string, len(p.Hashtags))
	copy(out.Hashtags, p.Hashtags)
	out.Comments = make([]model.Comment, len(p.Comments))
	copy(out.Comments, p.Comments)
	return out
}
