package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/jpeg"
	"image/png"
	"mime/multipart"
	"net/textproto"
	"reflect"
	"strings"
	"testing"

	"reelgram/internal/model"
)

// =============================================================================
// MOCKS
// =============================================================================

type mockObjectStore struct {
	putFn func(ctx context.Context, key string, body []byte, contentType string) (string, error)

	putKeys []string
}

func (m *mockObjectStore) Put(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	m.putKeys = append(m.putKeys, key)
	if m.putFn != nil {
		return m.putFn(ctx, key, body, contentType)
	}
	return "/" + key, nil
}

func (m *mockObjectStore) Delete(ctx context.Context, key string) error { return nil }

type mockPostRepository struct {
	appendFn func(ctx context.Context, post *model.Post) error

	appended []*model.Post
}

func (m *mockPostRepository) Append(ctx context.Context, post *model.Post) error {
	m.appended = append(m.appended, post)
	if m.appendFn != nil {
		return m.appendFn(ctx, post)
	}
	post.ID = int64(len(m.appended))
	return nil
}

func (m *mockPostRepository) ListAll(ctx context.Context) ([]model.Post, error) { return nil, nil }
func (m *mockPostRepository) ListByAuthor(ctx context.Context, userID int64) ([]model.Post, error) {
	return nil, nil
}
func (m *mockPostRepository) GetByID(ctx context.Context, postID int64) (*model.Post, error) {
	return nil, model.ErrPostNotFound
}
func (m *mockPostRepository) ToggleLike(ctx context.Context, postID int64) (*model.Post, error) {
	return nil, model.ErrPostNotFound
}
func (m *mockPostRepository) AppendComment(ctx context.Context, postID int64, authorHandle, text string) ([]model.Comment, error) {
	return nil, model.ErrPostNotFound
}
func (m *mockPostRepository) Exists(ctx context.Context, postID int64) (bool, error) {
	return false, nil
}

// memFile adapts an in-memory byte slice to the multipart.File interface.
type memFile struct {
	*bytes.Reader
}

func (memFile) Close() error { return nil }

func uploadParts(t *testing.T, name, contentType string, data []byte) (multipart.File, *multipart.FileHeader) {
	t.Helper()
	header := &multipart.FileHeader{
		Filename: name,
		Size:     int64(len(data)),
		Header:   textproto.MIMEHeader{},
	}
	if contentType != "" {
		header.Header.Set("Content-Type", contentType)
	}
	return memFile{bytes.NewReader(data)}, header
}

func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, width, height))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// =============================================================================
// MEDIA UPLOAD TESTS
// =============================================================================

func TestMediaService_Upload_VideoPassthrough(t *testing.T) {
	store := &mockObjectStore{}
	svc := NewMediaService(store)

	data := []byte("fake mp4 payload")
	file, header := uploadParts(t, "clip.mp4", "video/mp4", data)

	result, err := svc.Upload(context.Background(), file, header)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if result.Kind != model.MediaKindVideo {
		t.Errorf("kind = %q, want video", result.Kind)
	}
	if !strings.HasPrefix(result.Key, model.UploadFolder+"/") {
		t.Errorf("key = %q, want under %s/", result.Key, model.UploadFolder)
	}
	if !strings.HasSuffix(result.Key, ".mp4") {
		t.Errorf("key = %q, want .mp4 extension", result.Key)
	}
	if result.URL == "" {
		t.Error("expected a public URL")
	}
}

func TestMediaService_Upload_SmallImageUntouched(t *testing.T) {
	var stored []byte
	store := &mockObjectStore{
		putFn: func(ctx context.Context, key string, body []byte, contentType string) (string, error) {
			stored = body
			return "/" + key, nil
		},
	}
	svc := NewMediaService(store)

	data := encodePNG(t, 640, 480)
	file, header := uploadParts(t, "photo.png", "image/png", data)

	result, err := svc.Upload(context.Background(), file, header)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if result.Kind != model.MediaKindImage {
		t.Errorf("kind = %q, want image", result.Kind)
	}
	// Within bounds, the original bytes pass through unchanged.
	if !bytes.Equal(stored, data) {
		t.Error("small image should be stored byte for byte")
	}
}

func TestMediaService_Upload_WideImageDownscaled(t *testing.T) {
	var stored []byte
	store := &mockObjectStore{
		putFn: func(ctx context.Context, key string, body []byte, contentType string) (string, error) {
			stored = body
			return "/" + key, nil
		},
	}
	svc := NewMediaService(store)

	data := encodePNG(t, 2160, 1200)
	file, header := uploadParts(t, "wide.png", "image/png", data)

	result, err := svc.Upload(context.Background(), file, header)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if !strings.HasSuffix(result.Key, ".jpg") {
		t.Errorf("key = %q, want re-encoded .jpg", result.Key)
	}

	img, err := jpeg.Decode(bytes.NewReader(stored))
	if err != nil {
		t.Fatalf("decode stored jpeg: %v", err)
	}
	if got := img.Bounds().Dx(); got != model.MaxImageWidth {
		t.Errorf("stored width = %d, want %d", got, model.MaxImageWidth)
	}
}

func TestMediaService_Upload_Rejections(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		contentType string
		data        []byte
		wantErr     error
	}{
		{
			name:        "oversized file",
			filename:    "huge.mp4",
			contentType: "video/mp4",
			data:        make([]byte, model.MaxUploadSizeBytes+1),
			wantErr:     model.ErrFileTooLarge,
		},
		{
			name:        "unsupported type",
			filename:    "notes.pdf",
			contentType: "application/pdf",
			data:        []byte("%PDF-1.4"),
			wantErr:     model.ErrInvalidMediaType,
		},
		{
			name:        "image that does not decode",
			filename:    "broken.png",
			contentType: "image/png",
			data:        []byte("not actually a png"),
			wantErr:     model.ErrUndecodableImage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mockObjectStore{}
			svc := NewMediaService(store)

			file, header := uploadParts(t, tt.filename, tt.contentType, tt.data)
			_, err := svc.Upload(context.Background(), file, header)

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
			if len(store.putKeys) != 0 {
				t.Errorf("put calls = %d, want 0 for a rejected upload", len(store.putKeys))
			}
		})
	}
}

func TestMediaService_Upload_StoreFailure(t *testing.T) {
	store := &mockObjectStore{
		putFn: func(ctx context.Context, key string, body []byte, contentType string) (string, error) {
			return "", errors.New("bucket unreachable")
		},
	}
	svc := NewMediaService(store)

	file, header := uploadParts(t, "clip.mp4", "video/mp4", []byte("payload"))
	_, err := svc.Upload(context.Background(), file, header)

	if !errors.Is(err, model.ErrStorage) {
		t.Errorf("err = %v, want ErrStorage", err)
	}
}

// =============================================================================
// POST CREATION TESTS
// =============================================================================

func TestPostService_Create(t *testing.T) {
	store := &mockObjectStore{}
	repo := &mockPostRepository{}
	svc := NewPostService(repo, NewMediaService(store))

	session := &model.Session{UserID: 3, Username: "alice"}
	file, header := uploadParts(t, "clip.mp4", "video/mp4", []byte("payload"))

	post, err := svc.Create(context.Background(), session, file, header, model.CreatePostRequest{
		Caption:  "golden hour",
		Hashtags: "sunset, beach",
		Location: "Lisbon",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if post.UserID != 3 || post.Username != "alice" {
		t.Errorf("author = %d/%q, want 3/alice", post.UserID, post.Username)
	}
	if post.MediaKind != model.MediaKindVideo || post.MediaURL == "" {
		t.Errorf("media = %q %q, want populated video", post.MediaKind, post.MediaURL)
	}
	if want := []string{"sunset", "beach"}; !reflect.DeepEqual(post.Hashtags, want) {
		t.Errorf("hashtags = %v, want %v", post.Hashtags, want)
	}
	if len(repo.appended) != 1 {
		t.Errorf("append calls = %d, want 1", len(repo.appended))
	}
}

func TestPostService_Create_RejectedUploadNeverReachesRepo(t *testing.T) {
	repo := &mockPostRepository{}
	svc := NewPostService(repo, NewMediaService(&mockObjectStore{}))

	session := &model.Session{UserID: 3, Username: "alice"}
	file, header := uploadParts(t, "notes.txt", "text/plain", []byte("hi"))

	_, err := svc.Create(context.Background(), session, file, header, model.CreatePostRequest{})
	if !errors.Is(err, model.ErrInvalidMediaType) {
		t.Fatalf("err = %v, want ErrInvalidMediaType", err)
	}
	if len(repo.appended) != 0 {
		t.Errorf("append calls = %d, want 0", len(repo.appended))
	}
}

// =============================================================================
// HASHTAG PARSING
// =============================================================================

func TestParseHashtags(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"empty", "", []string{}},
		{"single", "sunset", []string{"sunset"}},
		{"comma separated", "sunset,beach,surf", []string{"sunset", "beach", "surf"}},
		{"space separated", "sunset beach", []string{"sunset", "beach"}},
		{"mixed separators with padding", " sunset , beach\tsurf\n", []string{"sunset", "beach", "surf"}},
		{"only separators", " , ,, ", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseHashtags(tt.raw)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseHashtags(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}
