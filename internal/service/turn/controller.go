// Package turn runs the one-turn-at-a-time conversation protocol on top of a
// transcript and a mentor client.
//
// A Controller is Idle or Pending. An accepted submission appends the user
// turn, enters Pending and calls the mentor in the background; the call always
// ends with exactly one assistant turn (the reply or a fixed fallback notice)
// and a return to Idle. Empty submissions, and any submission while Pending,
// change nothing.
package turn

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/tawfi332/Fsociety-T/backend/internal/model/chat"
	"github.com/tawfi332/Fsociety-T/backend/internal/observe"
	"github.com/tawfi332/Fsociety-T/backend/internal/service/mentor"
	"github.com/tawfi332/Fsociety-T/backend/internal/service/transcript"
)

var (
	ErrEmptyInput  = errors.New("submission is empty")
	ErrTurnPending = errors.New("a turn is already pending")
)

// State is the controller's position in the turn protocol.
type State int

const (
	StateIdle State = iota
	StatePending
)

func (s State) String() string {
	if s == StatePending {
		return "pending"
	}
	return "idle"
}

// Snapshot is a consistent view of the transcript and the pending flag.
type Snapshot struct {
	Turns   []chat.Turn `json:"turns"`
	Pending bool        `json:"pending"`
}

// Option configures a Controller.
type Option func(*Controller)

// WithMetrics records turn outcomes on m.
func WithMetrics(m *observe.Metrics) Option {
	return func(c *Controller) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithTimeout bounds every mentor call. Zero leaves calls unbounded.
func WithTimeout(d time.Duration) Option {
	return func(c *Controller) {
		c.timeout = d
	}
}

// WithClock replaces time.Now for turn timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// Controller owns the pending gate for one transcript. It is safe for
// concurrent use.
type Controller struct {
	store   *transcript.Store
	mentor  mentor.Client
	metrics *observe.Metrics
	timeout time.Duration
	now     func() time.Time

	mu      sync.Mutex
	pending bool
	done    chan struct{}
	lastAt  time.Time
	subs    map[int]chan Event
	nextSub int
}

// New creates an Idle controller over store.
func New(store *transcript.Store, client mentor.Client, opts ...Option) *Controller {
	c := &Controller{
		store:   store,
		mentor:  client,
		metrics: observe.Noop(),
		now:     func() time.Time { return time.Now().UTC() },
		subs:    make(map[int]chan Event),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.lastAt = store.Last().CreatedAt()
	return c
}

// Submit offers text as the next user utterance. Surrounding whitespace is
// trimmed. On acceptance the user turn is already in the transcript when
// Submit returns and the mentor call runs in the background, detached from
// ctx's cancellation. ErrEmptyInput and ErrTurnPending report a rejected
// submission; neither changes the transcript or the state.
func (c *Controller) Submit(ctx context.Context, text string) error {
	utterance := strings.TrimSpace(text)
	if utterance == "" {
		c.metrics.RecordRejected(ctx, observe.RejectEmpty)
		return ErrEmptyInput
	}

	c.mu.Lock()
	if c.pending {
		c.mu.Unlock()
		c.metrics.RecordRejected(ctx, observe.RejectPending)
		return ErrTurnPending
	}

	history := c.store.All()
	user := chat.NewUserTurn(utterance, c.stamp())
	c.store.Append(user)
	c.pending = true
	c.done = make(chan struct{})
	c.publish(Event{Kind: EventTurn, Turn: user, Pending: true})
	c.publish(Event{Kind: EventStatus, Pending: true})
	c.mu.Unlock()

	c.metrics.Pending.Add(ctx, 1)
	log.Printf("[turn] accepted turn=%s, length=%d, history=%d", user.ID, len(utterance), len(history))

	go c.resolve(context.WithoutCancel(ctx), user.ID, utterance, history)
	return nil
}

// Transcript returns a snapshot of every turn in conversation order.
func (c *Controller) Transcript() []chat.Turn {
	return c.store.All()
}

// IsPending reports whether a turn is in flight.
func (c *Controller) IsPending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// State returns the current protocol state.
func (c *Controller) State() State {
	if c.IsPending() {
		return StatePending
	}
	return StateIdle
}

// Snapshot returns the transcript and pending flag observed at one instant.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{Turns: c.store.All(), Pending: c.pending}
}

// Wait blocks until no turn is in flight or ctx is done.
func (c *Controller) Wait(ctx context.Context) error {
	c.mu.Lock()
	pending, done := c.pending, c.done
	c.mu.Unlock()

	if !pending {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Controller) resolve(ctx context.Context, userTurnID, utterance string, history []chat.Turn) {
	callCtx, cancel := ctx, context.CancelFunc(func() {})
	if c.timeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, c.timeout)
	}

	started := time.Now()
	reply, err := c.requestTurn(callCtx, utterance, history)
	cancel()
	elapsed := time.Since(started).Seconds()

	outcome := observe.OutcomeSuccess
	if err != nil {
		outcome = classify(err)
		log.Printf("[turn] mentor call failed for turn=%s, kind=%s: %v", userTurnID, outcome, err)
	}
	// Recorded before the gate opens so Wait observes settled metrics.
	c.metrics.Pending.Add(ctx, -1)
	c.metrics.RecordTurn(ctx, outcome, elapsed)

	c.mu.Lock()
	var assistant chat.AssistantTurn
	if err != nil {
		assistant = chat.NewFallbackTurn(c.stamp())
	} else {
		assistant = chat.NewAssistantTurn(reply, c.stamp())
	}
	c.store.Append(assistant)
	c.pending = false
	close(c.done)
	c.publish(Event{Kind: EventTurn, Turn: assistant, Pending: false})
	c.publish(Event{Kind: EventStatus, Pending: false})
	c.mu.Unlock()

	log.Printf("[turn] resolved turn=%s, outcome=%s, corrections=%d, elapsed=%.2fs", userTurnID, outcome, len(assistant.Corrections), elapsed)
}

// requestTurn shields the controller from a panicking client so the gate is
// always released.
func (c *Controller) requestTurn(ctx context.Context, utterance string, history []chat.Turn) (reply chat.MentorReply, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("mentor client panic: %v", r)
		}
	}()
	return c.mentor.RequestTurn(ctx, utterance, history)
}

// stamp returns a timestamp no earlier than any previous one. Callers hold mu.
func (c *Controller) stamp() time.Time {
	at := c.now()
	if at.Before(c.lastAt) {
		at = c.lastAt
	}
	c.lastAt = at
	return at
}

func classify(err error) string {
	switch {
	case errors.Is(err, mentor.ErrMalformedReply):
		return observe.OutcomeMalformedReply
	case errors.Is(err, mentor.ErrServiceUnavailable), errors.Is(err, context.DeadlineExceeded):
		return observe.OutcomeServiceUnavailable
	default:
		return observe.OutcomeError
	}
}
