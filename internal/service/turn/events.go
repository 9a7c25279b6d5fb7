package turn

import (
	"log"
	"sync"

	"github.com/tawfi332/Fsociety-T/backend/internal/model/chat"
)

// EventKind names a controller event.
type EventKind string

const (
	// EventTurn carries a turn that was just appended.
	EventTurn EventKind = "turn"
	// EventStatus carries a change of the pending flag.
	EventStatus EventKind = "status"
)

// Event is delivered to subscribers in mutation order.
type Event struct {
	Kind    EventKind `json:"type"`
	Turn    chat.Turn `json:"turn,omitempty"`
	Pending bool      `json:"pending"`
}

// Subscribe registers a listener and returns the state it starts from. Events
// on the channel describe every mutation after the snapshot. Delivery never
// blocks the controller: when the buffer is full the subscription is dropped
// and its channel closed, so a closed channel before cancel means events were
// missed and the subscriber must resync from Snapshot. cancel closes the
// channel and may be called more than once.
func (c *Controller) Subscribe(buffer int) (Snapshot, <-chan Event, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Event, buffer)

	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch
	snapshot := Snapshot{Turns: c.store.All(), Pending: c.pending}
	c.mu.Unlock()

	cancel := sync.OnceFunc(func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if sub, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(sub)
		}
	})
	return snapshot, ch, cancel
}

// publish fans ev out to subscribers. Callers hold mu.
func (c *Controller) publish(ev Event) {
	for id, ch := range c.subs {
		out := ev
		if ev.Turn != nil {
			out.Turn = chat.Clone(ev.Turn)
		}
		select {
		case ch <- out:
		default:
			delete(c.subs, id)
			close(ch)
			log.Printf("[turn] subscriber %d overflowed on %s event, closing subscription", id, ev.Kind)
		}
	}
}
