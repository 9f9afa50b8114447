package model

import (
	"errors"
	"strings"
)

const (
	// MaxUploadSizeBytes caps a single media upload.
	MaxUploadSizeBytes = 10 * 1024 * 1024 // 10MB

	// MaxImageWidth is the width oversized images are downscaled to.
	MaxImageWidth = 1080

	// UploadFolder is the object-key prefix (and URL namespace) for post media.
	UploadFolder = "uploads"
)

// Domain errors for media operations
var (
	ErrFileTooLarge     = errors.New("file too large")
	ErrInvalidMediaType = errors.New("invalid media type")
	ErrUndecodableImage = errors.New("image could not be decoded")

	// ErrStorage is the boundary error for upload/write failures. Media
	// persistence is blocking I/O and may fail independently of request
	// validity, so it surfaces as its own class, never a panic.
	ErrStorage = errors.New("media storage failure")
)

// UploadResult is the stored object's public location.
type UploadResult struct {
	URL  string `json:"url"`
	Key  string `json:"key"`
	Kind string `json:"kind"` // "image" or "video"
}

// ClassifyContentType maps an upload's content type to a media kind.
// Returns "" when the type is neither image/* nor video/*.
func ClassifyContentType(contentType string) string {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return MediaKindImage
	case strings.HasPrefix(contentType, "video/"):
		return MediaKindVideo
	default:
		return ""
	}
}
