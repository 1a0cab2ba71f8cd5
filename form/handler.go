// Package form implements the greeting form's submission handler.
//
// The handler holds no DOM or HTTP state of its own. It is given a View that
// exposes the name field, the submit control and the display regions, and a
// greeter.Greeter to await. The same handler drives the WebAssembly page, the
// server-rendered fallback and the terminal command.
package form

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-barry/greetform/greeter"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var ErrSubmissionPending = errors.New("form: submission already pending")

// View is what the handler reads from and writes to.
type View interface {
	// Name returns the current value of the name field, unmodified.
	Name() string
	// SetPending disables the submit control while true.
	SetPending(pending bool)
	// SetGreeting replaces the display element's text.
	SetGreeting(text string)
	// SetError shows err in the status region; nil clears it.
	SetError(err error)
}

type Event interface {
	PreventDefault()
}

type EventFunc func()

func (f EventFunc) PreventDefault() {
	if f != nil {
		f()
	}
}

// NoEvent is used by callers whose submissions carry no default action.
var NoEvent Event = EventFunc(nil)

type Option func(*Handler)

func WithLogger(logger zerolog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithTimeout bounds each greet call. A zero or negative d leaves the call
// unbounded.
func WithTimeout(d time.Duration) Option {
	return func(h *Handler) {
		h.timeout = d
	}
}

type Handler struct {
	greeter greeter.Greeter
	view    View
	logger  zerolog.Logger
	timeout time.Duration
	pending atomic.Bool
}

func New(g greeter.Greeter, view View, opts ...Option) *Handler {
	h := &Handler{
		greeter: g,
		view:    view,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Pending reports whether a submission is awaiting its greet call.
func (h *Handler) Pending() bool {
	return h.pending.Load()
}

// Submit handles one submission event. The default action is suppressed, the
// submit control disabled and the name read before Submit returns; the greet
// call and the view updates after it run on their own goroutine.
func (h *Handler) Submit(ctx context.Context, ev Event) (*Submission, error) {
	if ev == nil {
		ev = NoEvent
	}
	ev.PreventDefault()

	if !h.pending.CompareAndSwap(false, true) {
		return nil, ErrSubmissionPending
	}
	h.view.SetPending(true)

	s := &Submission{
		ID:   uuid.New(),
		Name: h.view.Name(),
		done: make(chan struct{}),
	}

	h.logger.Debug().
		Str("submission", s.ID.String()).
		Int("name_len", len(s.Name)).
		Msg("form_submit")

	go h.run(ctx, s)
	return s, nil
}

// Handle submits and waits for the submission to settle.
func (h *Handler) Handle(ctx context.Context, ev Event) (string, error) {
	s, err := h.Submit(ctx, ev)
	if err != nil {
		return "", err
	}
	return s.Wait(ctx)
}

func (h *Handler) run(ctx context.Context, s *Submission) {
	start := time.Now()

	var once sync.Once
	release := func() {
		once.Do(func() {
			h.view.SetPending(false)
			h.pending.Store(false)
		})
	}
	defer close(s.done)
	defer release()

	greeting, err := h.call(ctx, s.Name)

	release()

	if err != nil {
		s.err = greeter.AsRemoteCallError("greet", err)
		h.view.SetError(s.err)
		h.logger.Warn().
			Str("submission", s.ID.String()).
			Dur("duration", time.Since(start)).
			Err(s.err).
			Msg("form_greet_failed")
		return
	}

	s.greeting = greeting
	h.view.SetGreeting(greeting)
	h.view.SetError(nil)
	h.logger.Debug().
		Str("submission", s.ID.String()).
		Dur("duration", time.Since(start)).
		Msg("form_greet_done")
}

func (h *Handler) call(ctx context.Context, name string) (string, error) {
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	type result struct {
		greeting string
		err      error
	}
	ch := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- result{err: fmt.Errorf("panic: %v", r)}
			}
		}()
		g, err := h.greeter.Greet(ctx, name)
		ch <- result{greeting: g, err: err}
	}()

	select {
	case r := <-ch:
		return r.greeting, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
