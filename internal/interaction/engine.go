package interaction

import (
	"context"
	"log"
	"sync"
	"time"

	"reelgram/internal/model"
)

const (
	// DoubleTapWindow is the maximum gap between two consecutive taps that
	// counts as a like gesture.
	DoubleTapWindow = 300 * time.Millisecond

	// HeartResetDelay is how long the heart overlay stays visible.
	HeartResetDelay = 1000 * time.Millisecond
)

// PostStore is the repository face the engine mutates through. The engine
// never duplicates canonical counts; it only derives transient UI state.
type PostStore interface {
	ToggleLike(ctx context.Context, postID int64) (*model.Post, error)
	AppendComment(ctx context.Context, postID int64, authorHandle, text string) ([]model.Comment, error)
	Exists(ctx context.Context, postID int64) (bool, error)
}

// HeartSink receives heart-overlay visual transitions. The feed renderer
// implements it; a post with no rendered handle simply drops the signal.
type HeartSink interface {
	TriggerHeart(postID int64)
	ResetHeart(postID int64)
}

// TapResult reports what a tap did.
type TapResult struct {
	DoubleTap        bool
	LikeToggled      bool
	AnimationStarted bool
	Post             *model.Post // state after the toggle; nil when nothing toggled
}

// Engine reconciles gestures against the repository. Per-post state machine:
//
//	Idle -> (second tap within 300ms) -> AnimatingHeart -> (1000ms) -> Idle
//
// The tap window is measured between consecutive taps, not from the first tap
// of a burst. A double-tap while the heart is already animating still toggles
// the like (double-tap is symmetric with the like control, so tapping a liked
// post unlikes it) but never restarts or queues the animation.
type Engine struct {
	posts  PostStore
	hearts HeartSink
	timers Timers
	now    func() time.Time

	mu          sync.Mutex
	lastTap     map[int64]time.Time
	animating   map[int64]bool
	activePanel *int64
	draft       string
}

func NewEngine(posts PostStore, hearts HeartSink, timers Timers) *Engine {
	return &Engine{
		posts:     posts,
		hearts:    hearts,
		timers:    timers,
		now:       time.Now,
		lastTap:   make(map[int64]time.Time),
		animating: make(map[int64]bool),
	}
}

// Tap records a tap on a post's media. On a detected double-tap it toggles
// the like exactly once and, if the post is not already animating, shows the
// heart and schedules its reset.
func (e *Engine) Tap(ctx context.Context, postID int64) (*TapResult, error) {
	e.mu.Lock()
	now := e.now()
	last, tapped := e.lastTap[postID]
	e.lastTap[postID] = now
	isDouble := tapped && now.Sub(last) < DoubleTapWindow

	startAnimation := false
	if isDouble && !e.animating[postID] {
		e.animating[postID] = true
		startAnimation = true
	}
	e.mu.Unlock()

	if !isDouble {
		return &TapResult{}, nil
	}

	post, err := e.posts.ToggleLike(ctx, postID)
	if err != nil {
		if startAnimation {
			e.mu.Lock()
			delete(e.animating, postID)
			e.mu.Unlock()
		}
		return nil, err
	}

	if startAnimation {
		e.hearts.TriggerHeart(postID)
		e.timers.AfterFunc(HeartResetDelay, func() {
			e.resetHeart(postID)
		})
	}

	return &TapResult{
		DoubleTap:        true,
		LikeToggled:      true,
		AnimationStarted: startAnimation,
		Post:             post,
	}, nil
}

// TapLikeControl is a single tap on the dedicated like button: a direct
// toggle, no timing window, no animation.
func (e *Engine) TapLikeControl(ctx context.Context, postID int64) (*model.Post, error) {
	return e.posts.ToggleLike(ctx, postID)
}

// resetHeart returns the post's machine to Idle. If the post left the
// repository while the timer was pending, the visual reset is a no-op.
func (e *Engine) resetHeart(postID int64) {
	e.mu.Lock()
	delete(e.animating, postID)
	e.mu.Unlock()

	exists, err := e.posts.Exists(context.Background(), postID)
	if err != nil {
		log.Printf("[Interaction] Stale-check failed for post %d: %v", postID, err)
		return
	}
	if !exists {
		return
	}
	e.hearts.ResetHeart(postID)
}

// Animating reports whether the post's heart overlay is currently showing.
func (e *Engine) Animating(postID int64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.animating[postID]
}

// ToggleCommentPanel opens the post's comment panel, closing whichever panel
// was open; toggling the already-open panel closes it. At most one panel is
// open per feed. The draft is cleared on every transition.
func (e *Engine) ToggleCommentPanel(postID int64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.draft = ""
	if e.activePanel != nil && *e.activePanel == postID {
		e.activePanel = nil
		return false
	}
	id := postID
	e.activePanel = &id
	return true
}

// ActiveCommentPanel returns the post whose panel is open, if any.
func (e *Engine) ActiveCommentPanel() (int64, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.activePanel == nil {
		return 0, false
	}
	return *e.activePanel, true
}

// SetCommentDraft stores the in-flight comment text.
func (e *Engine) SetCommentDraft(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.draft = text
}

// CommentDraft returns the in-flight comment text.
func (e *Engine) CommentDraft() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draft
}

// SubmitComment appends the current draft to the open panel's post. A
// whitespace-only draft, or no open panel, is a no-op that never reaches the
// repository. On success the draft is cleared and the panel closed.
func (e *Engine) SubmitComment(ctx context.Context, authorHandle string) ([]model.Comment, bool, error) {
	e.mu.Lock()
	if e.activePanel == nil {
		e.mu.Unlock()
		return nil, false, nil
	}
	postID := *e.activePanel
	draft := e.draft
	e.mu.Unlock()

	if !HasCommentText(draft) {
		return nil, false, nil
	}

	comments, err := e.posts.AppendComment(ctx, postID, authorHandle, draft)
	if err != nil {
		return nil, false, err
	}

	e.mu.Lock()
	e.draft = ""
	e.activePanel = nil
	e.mu.Unlock()

	return comments, true, nil
}

// HasCommentText reports whether the draft survives trimming.
func HasCommentText(text string) bool {
	for _, r := range text {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return true
		}
	}
	return false
}

// ForgetPost drops the per-post tap state once a post leaves the feed. The
// pending heart reset, if any, stays scheduled and no-ops on its own.
func (e *Engine) ForgetPost(postID int64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	delete(e.lastTap, postID)
	delete(e.animating, postID)
	if e.activePanel != nil && *e.activePanel == postID {
		e.activePanel = nil
		e.draft = ""
	}
}
