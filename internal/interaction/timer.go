package interaction

import (
	"context"
	"sync"
	"time"
)

// Timers schedules deferred callbacks. The engine only needs AfterFunc; the
// interface exists so tests can fire timers deterministically.
type Timers interface {
	AfterFunc(d time.Duration, fn func())
}

// TimerQueue is a cooperative timer queue. Pending callbacks are tracked with
// a WaitGroup and cancelled as a group on Stop, so a shutdown never races a
// late animation reset.
type TimerQueue struct {
	mu      sync.Mutex
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
	stopped bool
}

func NewTimerQueue() *TimerQueue {
	ctx, cancel := context.WithCancel(context.Background())
	return &TimerQueue{ctx: ctx, cancel: cancel}
}

// AfterFunc runs fn after d unless the queue is stopped first.
func (q *TimerQueue) AfterFunc(d time.Duration, fn func()) {
	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		return
	}
	q.wg.Add(1)
	q.mu.Unlock()

	timer := time.NewTimer(d)
	go func() {
		defer q.wg.Done()
		select {
		case <-timer.C:
			fn()
		case <-q.ctx.Done():
			timer.Stop()
		}
	}()
}

// Stop cancels pending timers and waits for in-flight callbacks to finish.
func (q *TimerQueue) Stop() {
	q.mu.Lock()
	q.stopped = true
	q.mu.Unlock()

	q.cancel()
	q.wg.Wait()
}
