package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"reelgram/internal/httputil"
	"reelgram/internal/model"
	"reelgram/internal/service"
	"reelgram/internal/transport/http/middleware"
)

// PostHandler handles post creation, feeds, likes and comments.
type PostHandler struct {
	postService *service.PostService
}

func NewPostHandler(postService *service.PostService) *PostHandler {
	return &PostHandler{postService: postService}
}

// Create accepts a multipart upload with the media file and optional
// caption, hashtags and location fields, and returns the created post.
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Missing authentication token")
		return
	}

	// Slack on top of the media limit for the other form fields.
	r.Body = http.MaxBytesReader(w, r.Body, model.MaxUploadSizeBytes+1<<20)
	if err := r.ParseMultipartForm(model.MaxUploadSizeBytes); err != nil {
		httputil.WriteValidationError(w, "File too large or malformed form data")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.WriteValidationError(w, "No file uploaded")
		return
	}
	defer file.Close()

	req := model.CreatePostRequest{
		Caption:  r.FormValue("caption"),
		Hashtags: r.FormValue("hashtags"),
		Location: r.FormValue("location"),
	}

	post, err := h.postService.Create(r.Context(), session, file, header, req)
	if err != nil {
		h.writePostError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, map[string]*model.Post{"post": post})
}

// List returns the global feed, newest first.
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	feed, err := h.postService.ListAll(r.Context())
	if err != nil {
		h.writePostError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, feed)
}

// ListByUser returns a single author's posts with a total count.
func (h *PostHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userId"), 10, 64)
	if err != nil {
		httputil.WriteValidationError(w, "Invalid user ID")
		return
	}

	resp, err := h.postService.ListByAuthor(r.Context(), userID)
	if err != nil {
		h.writePostError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// ToggleLike flips the like state of a post and returns the updated post.
func (h *PostHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	postID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteValidationError(w, "Invalid post ID")
		return
	}

	post, err := h.postService.ToggleLike(r.Context(), postID)
	if err != nil {
		h.writePostError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]*model.Post{"post": post})
}

// AddComment appends a comment authored by the authenticated user and
// returns the post's full comment list.
func (h *PostHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Missing authentication token")
		return
	}

	postID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteValidationError(w, "Invalid post ID")
		return
	}

	var req model.CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteValidationError(w, "Invalid request body")
		return
	}

	comments, err := h.postService.AddComment(r.Context(), postID, session.Username, req.Text)
	if err != nil {
		h.writePostError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, model.CommentListResponse{Comments: comments})
}

func (h *PostHandler) writePostError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrPostNotFound):
		httputil.WriteNotFound(w, "Post not found")
	case errors.Is(err, model.ErrEmptyComment):
		httputil.WriteValidationError(w, "Comment text is required")
	case errors.Is(err, model.ErrFileTooLarge):
		httputil.WriteValidationError(w, "File exceeds the 10MB limit")
	case errors.Is(err, model.ErrInvalidMediaType):
		httputil.WriteValidationError(w, "Only image and video files are allowed")
	case errors.Is(err, model.ErrUndecodableImage):
		httputil.WriteValidationError(w, "Image file could not be decoded")
	case errors.Is(err, model.ErrMissingMediaURL), errors.Is(err, model.ErrMissingMediaKind):
		httputil.WriteValidationError(w, "Post is missing media")
	case errors.Is(err, model.ErrStorage):
		log.Printf("[PostHandler] Storage error: %v", err)
		httputil.WriteStorageError(w, "Failed to store media file")
	default:
		log.Printf("[PostHandler] Unexpected error: %v", err)
		httputil.WriteInternalError(w, "Something went wrong")
	}
}
