package feedview

import (
	"log"
	"sync"
)

// PlayThreshold is the visibility ratio at which a video starts playing.
const PlayThreshold = 0.6

// Handle is the capability a rendered feed item exposes. The renderer owns
// the postId -> handle mapping so nothing reaches for elements ambiently.
type Handle interface {
	Play() error
	Pause()
	ShowHeart()
	HideHeart()
}

// Renderer decides which feed items are active from visibility reports. Only
// items at or above the threshold are told to play; everything below is
// paused. Play and pause are idempotent per element, so overlapping
// "intersecting" reports during a fast scroll are harmless.
type Renderer struct {
	mu      sync.Mutex
	handles map[int64]Handle
	playing map[int64]bool
}

func NewRenderer() *Renderer {
	return &Renderer{
		handles: make(map[int64]Handle),
		playing: make(map[int64]bool),
	}
}

// Observe registers a rendered item's handle.
func (r *Renderer) Observe(postID int64, h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handles[postID] = h
}

// Unobserve drops an item that left the feed.
func (r *Renderer) Unobserve(postID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handles, postID)
	delete(r.playing, postID)
}

// ReportVisibility applies one visibility observation. Autoplay refusals are
// logged and swallowed; they are never user-visible errors.
func (r *Renderer) ReportVisibility(postID int64, ratio float64) {
	r.mu.Lock()
	h, ok := r.handles[postID]
	if !ok {
		r.mu.Unlock()
		return
	}

	visible := ratio >= PlayThreshold
	wasPlaying := r.playing[postID]
	if visible == wasPlaying {
		r.mu.Unlock()
		return
	}
	r.playing[postID] = visible
	r.mu.Unlock()

	if visible {
		if err := h.Play(); err != nil {
			log.Printf("[FeedView] Autoplay prevented for post %d: %v", postID, err)
		}
		return
	}
	h.Pause()
}

// Playing reports whether the item is currently told to play.
func (r *Renderer) Playing(postID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.playing[postID]
}

// TriggerHeart shows the heart overlay on an item. Implements the
// interaction engine's HeartSink.
func (r *Renderer) TriggerHeart(postID int64) {
	if h, ok := r.handle(postID); ok {
		h.ShowHeart()
	}
}

// ResetHeart hides the heart overlay on an item.
func (r *Renderer) ResetHeart(postID int64) {
	if h, ok := r.handle(postID); ok {
		h.HideHeart()
	}
}

func (r *Renderer) handle(postID int64) (Handle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.handles[postID]
	return h, ok
}
