// Package mock provides a test double for the mentor.Client interface.
//
// Set Reply or Err before use. Gate, when non-nil, holds every RequestTurn
// call until a value is received from it, the channel is closed, or the
// call's context ends; this keeps a turn in flight for as long as a test
// needs.
//
//	c := &mock.Client{Reply: chat.MentorReply{MentorResponse: "Good attempt."}}
package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/tawfi332/Fsociety-T/backend/internal/model/chat"
	"github.com/tawfi332/Fsociety-T/backend/internal/service/mentor"
)

// Call records a single invocation of RequestTurn.
type Call struct {
	Ctx       context.Context
	Utterance string
	History   []chat.Turn
}

// Client is a mock implementation of mentor.Client.
type Client struct {
	mu sync.Mutex

	// Reply is returned when Err is nil.
	Reply chat.MentorReply

	// Err, if non-nil, is returned instead of Reply.
	Err error

	// Gate, if non-nil, blocks RequestTurn until released.
	Gate chan struct{}

	// Calls records every invocation in order.
	Calls []Call
}

// RequestTurn records the call, waits on Gate and returns Reply or Err.
// A context that ends while waiting yields mentor.ErrServiceUnavailable.
func (c *Client) RequestTurn(ctx context.Context, utterance string, history []chat.Turn) (chat.MentorReply, error) {
	c.mu.Lock()
	c.Calls = append(c.Calls, Call{Ctx: ctx, Utterance: utterance, History: history})
	gate := c.Gate
	c.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return chat.MentorReply{}, fmt.Errorf("%w: %w", mentor.ErrServiceUnavailable, ctx.Err())
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Reply, c.Err
}

// CallCount returns the number of recorded calls.
func (c *Client) CallCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.Calls)
}

// LastCall returns the most recent call. ok is false when there were none.
func (c *Client) LastCall() (call Call, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.Calls) == 0 {
		return Call{}, false
	}
	return c.Calls[len(c.Calls)-1], true
}

var _ mentor.Client = (*Client)(nil)
