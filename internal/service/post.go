package service

import (
	"context"
	"fmt"
	"log"
	"mime/multipart"
	"strings"

	"reelgram/internal/model"
	"reelgram/internal/repository"
)

// PostService orchestrates post creation and listing on top of the media
// store and the post repository.
type PostService struct {
	postRepo repository.PostRepository
	media    *MediaService
}

func NewPostService(postRepo repository.PostRepository, media *MediaService) *PostService {
	return &PostService{
		postRepo: postRepo,
		media:    media,
	}
}

// Create uploads the media, builds the post from the multipart fields, and
// appends it to the head of the feed.
func (s *PostService) Create(ctx context.Context, session *model.Session, file multipart.File, header *multipart.FileHeader, req model.CreatePostRequest) (*model.Post, error) {
	upload, err := s.media.Upload(ctx, file, header)
	if err != nil {
		return nil, err
	}

	post := &model.Post{
		UserID:    session.UserID,
		Username:  session.Username,
		MediaURL:  upload.URL,
		MediaKind: upload.Kind,
		Caption:   req.Caption,
		Hashtags:  ParseHashtags(req.Hashtags),
		Location:  req.Location,
	}

	if err := s.postRepo.Append(ctx, post); err != nil {
		return nil, err
	}

	log.Printf("[PostService] User %d created post %d (%s)", session.UserID, post.ID, post.MediaKind)
	return post, nil
}

// ListAll returns the entire feed, newest first.
func (s *PostService) ListAll(ctx context.Context) (*model.FeedResponse, error) {
	posts, err := s.postRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return &model.FeedResponse{Posts: posts}, nil
}

// ListByAuthor returns one author's posts plus the total count.
func (s *PostService) ListByAuthor(ctx context.Context, userID int64) (*model.UserPostsResponse, error) {
	posts, err := s.postRepo.ListByAuthor(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list posts by author: %w", err)
	}
	return &model.UserPostsResponse{Posts: posts, TotalPosts: len(posts)}, nil
}

// ToggleLike flips the like state of a post.
func (s *PostService) ToggleLike(ctx context.Context, postID int64) (*model.Post, error) {
	post, err := s.postRepo.ToggleLike(ctx, postID)
	if err != nil {
		return nil, err
	}
	log.Printf("[PostService] Post %d like toggled: liked=%t count=%d", postID, post.IsLiked, post.LikeCount)
	return post, nil
}

// AddComment appends a comment and returns the updated sequence.
func (s *PostService) AddComment(ctx context.Context, postID int64, authorHandle, text string) ([]model.Comment, error) {
	return s.postRepo.AppendComment(ctx, postID, authorHandle, text)
}

// ParseHashtags tokenizes comma- or space-separated free text into an
// ordered tag list, dropping empties.
func ParseHashtags(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	tags := make([]string, 0, len(fields))
	for _, f := range fields {
		if tag := strings.TrimSpace(f); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
