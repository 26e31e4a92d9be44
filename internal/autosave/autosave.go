// Package autosave implements the debounced save coalescer: any scene
// mutation schedules a save; the timer's expiry serializes the active
// canvas and pushes it through the Store. At most one save is in flight.
// Every mutation marks a save as owed, and only a save that actually
// snapshots the canvas clears the mark, so a Flush racing a timer expiry
// still persists the pending work. Failures retry with exponential
// backoff, then notify and leave the save owed.
package autosave

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/halvard/tavla/internal/models"
	"github.com/halvard/tavla/internal/store"
)

// Defaults.
const (
	DefaultDelay      = 500 * time.Millisecond
	DefaultMaxRetries = 3
	baseBackoff       = 250 * time.Millisecond
)

// Scheduler debounces and serializes autosaves for the active canvas.
type Scheduler struct {
	store      store.Store
	delay      time.Duration
	maxRetries int
	logger     *slog.Logger

	// snapshot serializes the active canvas at save time.
	snapshot func() *models.Canvas
	// onSaved receives the authoritative record returned by the store.
	onSaved func(*models.Canvas)
	// onError is notified after retries are exhausted.
	onError func(error)

	mu       sync.Mutex
	cond     *sync.Cond
	timer    *time.Timer
	inFlight bool
	// owed is set by Schedule and cleared only when a save claims the
	// work and snapshots the canvas.
	owed   bool
	closed bool
}

// New creates a scheduler. delay <= 0 uses DefaultDelay; maxRetries <= 0
// uses DefaultMaxRetries. onSaved and onError may be nil.
func New(st store.Store, delay time.Duration, maxRetries int, snapshot func() *models.Canvas, onSaved func(*models.Canvas), onError func(error), logger *slog.Logger) *Scheduler {
	if delay <= 0 {
		delay = DefaultDelay
	}
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Scheduler{
		store:      st,
		delay:      delay,
		maxRetries: maxRetries,
		snapshot:   snapshot,
		onSaved:    onSaved,
		onError:    onError,
		logger:     logger,
	}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Schedule starts or resets the debounce timer. Safe to call from any
// goroutine.
func (s *Scheduler) Schedule() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.owed = true
	if s.inFlight {
		return
	}
	if s.timer == nil {
		s.timer = time.AfterFunc(s.delay, s.fire)
	} else {
		s.timer.Reset(s.delay)
	}
}

// fire runs on timer expiry and launches one save, if the owed work has
// not already been claimed by a concurrent Flush.
func (s *Scheduler) fire() {
	s.mu.Lock()
	if s.closed || s.inFlight || !s.owed {
		s.mu.Unlock()
		return
	}
	s.owed = false
	s.inFlight = true
	s.mu.Unlock()

	go func() {
		err := s.save(context.Background())
		s.finish(err)
	}()
}

// finish clears the in-flight flag and reschedules when mutations landed
// during a successful save. A failed save leaves the save owed without
// rescheduling; the next mutation retries.
func (s *Scheduler) finish(err error) {
	s.mu.Lock()
	s.inFlight = false
	if err != nil {
		s.owed = true
	}
	redo := err == nil && s.owed && !s.closed
	s.cond.Broadcast()
	s.mu.Unlock()
	if redo {
		s.Schedule()
	}
}

// save serializes the canvas and writes it through the store, retrying
// transient failures with exponential backoff. Scene state is never
// touched on failure.
func (s *Scheduler) save(ctx context.Context) error {
	canvas := s.snapshot()
	if canvas == nil {
		return nil
	}
	var err error
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(baseBackoff << attempt):
			}
		}
		var saved *models.Canvas
		saved, err = s.store.SaveCanvas(ctx, canvas)
		if err == nil {
			s.logger.Debug("autosave: saved",
				slog.String("canvas", canvas.ID),
				slog.Int("elements", len(canvas.Elements)))
			if s.onSaved != nil {
				s.onSaved(saved)
			}
			return nil
		}
		s.logger.Warn("autosave: save failed",
			slog.String("canvas", canvas.ID),
			slog.Int("attempt", attempt+1),
			slog.String("error", err.Error()))
	}
	if s.onError != nil {
		s.onError(err)
	}
	return err
}

// Pending reports whether a save is in flight or owed.
func (s *Scheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight || s.owed
}

// Flush synchronously completes any pending work: it cancels the debounce
// timer, waits out an in-flight save, and performs a final save when one
// is still owed. A timer expiry that has not yet claimed the work loses
// the claim to Flush here, so the pre-Flush canvas is what gets
// persisted. Navigation calls this before switching canvases.
func (s *Scheduler) Flush(ctx context.Context) {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
	}
	for s.inFlight {
		s.cond.Wait()
	}
	if !s.owed {
		s.mu.Unlock()
		return
	}
	s.owed = false
	s.inFlight = true
	s.mu.Unlock()

	err := s.save(ctx)

	s.mu.Lock()
	s.inFlight = false
	if err != nil {
		s.owed = true
	}
	s.cond.Broadcast()
	s.mu.Unlock()
}

// Close stops the scheduler without saving.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
	}
}
