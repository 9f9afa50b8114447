package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"reelgram/internal/config"
	"reelgram/internal/handler"
	"reelgram/internal/model"
	"reelgram/internal/repository/memory"
	"reelgram/internal/service"
	"reelgram/internal/storage"
)

// ============================================================================
// Test Server
// ============================================================================
//
// The full stack on in-memory repositories and a temp-dir media store. No
// Redis client is wired, so the auth rate limiter passes everything through.

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store, err := storage.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("local store: %v", err)
	}

	authService := service.NewAuthService(&config.Config{
		JWTSecret:         "integration-secret",
		AccessTokenMaxAge: 3600,
	})
	userService := service.NewUserService(memory.NewUserRepository())
	postService := service.NewPostService(memory.NewPostRepository(), service.NewMediaService(store))

	router := NewRouter(RouterConfig{
		AuthHandler: handler.NewAuthHandler(userService, authService),
		PostHandler: handler.NewPostHandler(postService),
		Verifier:    authService,
		RateLimit:   100,
		RateWindow:  time.Minute,
		UploadDir:   store.Root(),
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

// ============================================================================
// HTTP Helpers
// ============================================================================

func postJSON(t *testing.T, url, token string, body interface{}) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	return resp
}

func getJSON(t *testing.T, url, token string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	return resp
}

func decodeInto(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func errorCode(t *testing.T, resp *http.Response) string {
	t.Helper()
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	decodeInto(t, resp, &envelope)
	return envelope.Error.Code
}

func signup(t *testing.T, baseURL, email, password, username string) (string, *model.User) {
	t.Helper()
	resp := postJSON(t, baseURL+"/api/auth/signup", "", model.SignupRequest{
		Email: email, Password: password, Username: username,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("signup status = %d, want 201", resp.StatusCode)
	}
	var auth model.AuthResponse
	decodeInto(t, resp, &auth)
	if auth.Token == "" || auth.User == nil {
		t.Fatalf("signup response = %+v, want token and user", auth)
	}
	return auth.Token, auth.User
}

func uploadPost(t *testing.T, baseURL, token, caption, hashtags string) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	partHeader := textproto.MIMEHeader{}
	partHeader.Set("Content-Disposition", `form-data; name="file"; filename="clip.mp4"`)
	partHeader.Set("Content-Type", "video/mp4")
	part, err := mw.CreatePart(partHeader)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write([]byte("fake mp4 payload")); err != nil {
		t.Fatalf("write part: %v", err)
	}
	mw.WriteField("caption", caption)
	mw.WriteField("hashtags", hashtags)
	mw.WriteField("location", "Lisbon")
	mw.Close()

	req, err := http.NewRequest(http.MethodPost, baseURL+"/api/posts/", &buf)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	return resp
}

// ============================================================================
// AUTH FLOW
// ============================================================================

func TestAPI_SignupLoginFlow(t *testing.T) {
	srv := newTestServer(t)

	token, user := signup(t, srv.URL, "alice@example.com", "secret123", "alice")
	if user.Username != "alice" {
		t.Errorf("username = %q, want alice", user.Username)
	}
	if token == "" {
		t.Fatal("expected a token")
	}

	// Duplicate email is a conflict, reported as 400 with a CONFLICT code.
	resp := postJSON(t, srv.URL+"/api/auth/signup", "", model.SignupRequest{
		Email: "alice@example.com", Password: "secret123", Username: "alice2",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("duplicate signup status = %d, want 400", resp.StatusCode)
	}
	if code := errorCode(t, resp); code != "CONFLICT" {
		t.Errorf("duplicate signup code = %q, want CONFLICT", code)
	}

	// Wrong password and unknown email produce identical responses.
	wrongPass := postJSON(t, srv.URL+"/api/auth/login", "", model.LoginRequest{
		Email: "alice@example.com", Password: "wrongpass",
	})
	unknown := postJSON(t, srv.URL+"/api/auth/login", "", model.LoginRequest{
		Email: "ghost@example.com", Password: "secret123",
	})
	if wrongPass.StatusCode != http.StatusUnauthorized || unknown.StatusCode != http.StatusUnauthorized {
		t.Errorf("login failures = %d / %d, want 401 / 401", wrongPass.StatusCode, unknown.StatusCode)
	}
	wrongBody, _ := io.ReadAll(wrongPass.Body)
	unknownBody, _ := io.ReadAll(unknown.Body)
	wrongPass.Body.Close()
	unknown.Body.Close()
	if !bytes.Equal(wrongBody, unknownBody) {
		t.Error("wrong-password and unknown-email responses must be indistinguishable")
	}

	// Correct login works.
	resp = postJSON(t, srv.URL+"/api/auth/login", "", model.LoginRequest{
		Email: "alice@example.com", Password: "secret123",
	})
	if resp.StatusCode != http.StatusOK {
		t.Errorf("login status = %d, want 200", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestAPI_AuthGate(t *testing.T) {
	srv := newTestServer(t)

	// No token at all: 401.
	resp := getJSON(t, srv.URL+"/api/posts/", "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("missing token status = %d, want 401", resp.StatusCode)
	}
	resp.Body.Close()

	// A token that is present but garbage: 403.
	resp = getJSON(t, srv.URL+"/api/posts/", "garbage.token.here")
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("invalid token status = %d, want 403", resp.StatusCode)
	}
	if code := errorCode(t, resp); code != model.CodeTokenInvalid {
		t.Errorf("invalid token code = %q, want %q", code, model.CodeTokenInvalid)
	}
}

func TestAPI_LogoutRevokesToken(t *testing.T) {
	srv := newTestServer(t)
	token, _ := signup(t, srv.URL, "alice@example.com", "secret123", "alice")

	resp := postJSON(t, srv.URL+"/api/auth/logout", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("logout status = %d, want 200", resp.StatusCode)
	}
	resp.Body.Close()

	resp = getJSON(t, srv.URL+"/api/posts/", token)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("revoked token status = %d, want 403", resp.StatusCode)
	}
	if code := errorCode(t, resp); code != model.CodeTokenRevoked {
		t.Errorf("revoked token code = %q, want %q", code, model.CodeTokenRevoked)
	}
}

func TestAPI_UpdateProfileReissuesToken(t *testing.T) {
	srv := newTestServer(t)
	token, _ := signup(t, srv.URL, "alice@example.com", "secret123", "alice")

	req, _ := http.NewRequest(http.MethodPut, srv.URL+"/api/auth/profile",
		bytes.NewReader([]byte(`{"username":"alice_renamed"}`)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update status = %d, want 200", resp.StatusCode)
	}
	var auth model.AuthResponse
	decodeInto(t, resp, &auth)
	if auth.User.Username != "alice_renamed" {
		t.Errorf("username = %q, want alice_renamed", auth.User.Username)
	}
	if auth.Token == "" || auth.Token == token {
		t.Error("expected a re-issued token carrying the new identity")
	}
}

// ============================================================================
// POST FLOW
// ============================================================================

func TestAPI_PostLifecycle(t *testing.T) {
	srv := newTestServer(t)
	token, user := signup(t, srv.URL, "alice@example.com", "secret123", "alice")

	// Create two posts; the newer one must lead the feed.
	resp := uploadPost(t, srv.URL, token, "first", "sunset,beach")
	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("create status = %d, want 201 (body: %s)", resp.StatusCode, body)
	}
	var created struct {
		Post model.Post `json:"post"`
	}
	decodeInto(t, resp, &created)
	if created.Post.ID == 0 || created.Post.MediaKind != model.MediaKindVideo {
		t.Fatalf("created post = %+v, want assigned video post", created.Post)
	}
	firstID := created.Post.ID

	resp = uploadPost(t, srv.URL, token, "second", "")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("second create status = %d, want 201", resp.StatusCode)
	}
	resp.Body.Close()

	var feed model.FeedResponse
	resp = getJSON(t, srv.URL+"/api/posts/", token)
	decodeInto(t, resp, &feed)
	if len(feed.Posts) != 2 {
		t.Fatalf("feed len = %d, want 2", len(feed.Posts))
	}
	if feed.Posts[0].Caption != "second" || feed.Posts[1].Caption != "first" {
		t.Errorf("feed order = [%q, %q], want newest first", feed.Posts[0].Caption, feed.Posts[1].Caption)
	}

	// Author listing with total count.
	var byUser model.UserPostsResponse
	resp = getJSON(t, fmt.Sprintf("%s/api/posts/user/%d", srv.URL, user.ID), token)
	decodeInto(t, resp, &byUser)
	if byUser.TotalPosts != 2 || len(byUser.Posts) != 2 {
		t.Errorf("user posts = %d items / total %d, want 2 / 2", len(byUser.Posts), byUser.TotalPosts)
	}

	// Like toggling round-trips through the repository.
	var liked struct {
		Post model.Post `json:"post"`
	}
	resp = postJSON(t, fmt.Sprintf("%s/api/posts/%d/like", srv.URL, firstID), token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("like status = %d, want 200", resp.StatusCode)
	}
	decodeInto(t, resp, &liked)
	if !liked.Post.IsLiked || liked.Post.LikeCount != 1 {
		t.Errorf("after like = %v / %d, want true / 1", liked.Post.IsLiked, liked.Post.LikeCount)
	}

	resp = postJSON(t, fmt.Sprintf("%s/api/posts/%d/like", srv.URL, firstID), token, nil)
	decodeInto(t, resp, &liked)
	if liked.Post.IsLiked || liked.Post.LikeCount != 0 {
		t.Errorf("after unlike = %v / %d, want false / 0", liked.Post.IsLiked, liked.Post.LikeCount)
	}

	// Comments carry the author's handle from the token, not the body.
	resp = postJSON(t, fmt.Sprintf("%s/api/posts/%d/comments", srv.URL, firstID), token,
		model.CreateCommentRequest{Text: "  lovely  "})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("comment status = %d, want 201", resp.StatusCode)
	}
	var comments model.CommentListResponse
	decodeInto(t, resp, &comments)
	if len(comments.Comments) != 1 {
		t.Fatalf("comments len = %d, want 1", len(comments.Comments))
	}
	if c := comments.Comments[0]; c.AuthorHandle != "alice" || c.Text != "lovely" {
		t.Errorf("comment = %+v, want trimmed text by alice", c)
	}

	// Whitespace-only comment text is a validation error.
	resp = postJSON(t, fmt.Sprintf("%s/api/posts/%d/comments", srv.URL, firstID), token,
		model.CreateCommentRequest{Text: "   "})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("empty comment status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()

	// Interacting with a missing post is a 404.
	resp = postJSON(t, srv.URL+"/api/posts/9999/like", token, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing post status = %d, want 404", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestAPI_CreatePostRejectsNonMedia(t *testing.T) {
	srv := newTestServer(t)
	token, _ := signup(t, srv.URL, "alice@example.com", "secret123", "alice")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	partHeader := textproto.MIMEHeader{}
	partHeader.Set("Content-Disposition", `form-data; name="file"; filename="notes.pdf"`)
	partHeader.Set("Content-Type", "application/pdf")
	part, _ := mw.CreatePart(partHeader)
	part.Write([]byte("%PDF-1.4"))
	mw.Close()

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/api/posts/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	if code := errorCode(t, resp); code != "VALIDATION_ERROR" {
		t.Errorf("code = %q, want VALIDATION_ERROR", code)
	}
}

func TestAPI_HealthAndStaticUploads(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("health status = %d, want 200", resp.StatusCode)
	}
	resp.Body.Close()

	// Uploaded media is served back under /uploads/.
	token, _ := signup(t, srv.URL, "alice@example.com", "secret123", "alice")
	upload := uploadPost(t, srv.URL, token, "clip", "")
	var created struct {
		Post model.Post `json:"post"`
	}
	decodeInto(t, upload, &created)

	resp, err = http.Get(srv.URL + created.Post.MediaURL)
	if err != nil {
		t.Fatalf("fetch media: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("media status = %d, want 200", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !bytes.Equal(body, []byte("fake mp4 payload")) {
		t.Error("served media does not match the uploaded bytes")
	}
}
