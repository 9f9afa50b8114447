package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"reelgram/internal/model"
	"reelgram/internal/storage"
)

// MediaService validates uploads, classifies them as image or video, and
// hands the bytes to the configured object store.
type MediaService struct {
	store storage.ObjectStore
}

func NewMediaService(store storage.ObjectStore) *MediaService {
	return &MediaService{store: store}
}

// Upload enforces the size and type limits, downscales oversized images, and
// persists the media. Store failures surface as model.ErrStorage so the
// request fails cleanly instead of crashing.
func (s *MediaService) Upload(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*model.UploadResult, error) {
	data, contentType, err := readAndValidateUpload(file, header)
	if err != nil {
		return nil, err
	}

	kind := model.ClassifyContentType(contentType)
	ext := extensionFor(header.Filename, contentType)

	if kind == model.MediaKindImage {
		data, contentType, ext, err = normalizeImage(data, contentType, ext)
		if err != nil {
			return nil, err
		}
	}

	key := fmt.Sprintf("%s/%s%s", model.UploadFolder, uuid.NewString(), ext)

	url, err := s.store.Put(ctx, key, data, contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrStorage, err)
	}

	return &model.UploadResult{URL: url, Key: key, Kind: kind}, nil
}

// readAndValidateUpload loads the upload into memory with size and type checks.
func readAndValidateUpload(file multipart.File, header *multipart.FileHeader) ([]byte, string, error) {
	if header.Size > model.MaxUploadSizeBytes {
		return nil, "", model.ErrFileTooLarge
	}

	limitedReader := io.LimitReader(file, model.MaxUploadSizeBytes+1)
	data, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > model.MaxUploadSizeBytes {
		return nil, "", model.ErrFileTooLarge
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" && len(data) > 0 {
		contentType = http.DetectContentType(data[:min(len(data), 512)])
	}
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = strings.TrimSpace(contentType[:idx])
	}
	if model.ClassifyContentType(contentType) == "" {
		return nil, "", model.ErrInvalidMediaType
	}

	return data, contentType, nil
}

// normalizeImage verifies the image decodes and downscales anything wider
// than MaxImageWidth, re-encoding as JPEG. Images within bounds pass through
// untouched.
func normalizeImage(data []byte, contentType, ext string) ([]byte, string, string, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", "", model.ErrUndecodableImage
	}

	if img.Bounds().Dx() <= model.MaxImageWidth {
		return data, contentType, ext, nil
	}

	resized := imaging.Resize(img, model.MaxImageWidth, 0, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, "", "", fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return buf.Bytes(), "image/jpeg", ".jpg", nil
}

// extensionFor picks a file extension from the original name, falling back to
// one derived from the content type.
func extensionFor(filename, contentType string) string {
	if ext := strings.ToLower(filepath.Ext(filename)); ext != "" {
		return ext
	}
	if idx := strings.Index(contentType, "/"); idx != -1 && idx+1 < len(contentType) {
		return "." + contentType[idx+1:]
	}
	return ""
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
