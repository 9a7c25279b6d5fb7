package transcript

import (
	"sync"
	"time"

	"github.com/tawfi332/Fsociety-T/backend/internal/model/chat"
)

// Store is the append-only, ordered log of turns for one session.
// Insertion order is conversation order; timestamps are informational only.
type Store struct {
	mu    sync.RWMutex
	turns []chat.Turn
}

// New creates a transcript seeded with the session banner.
func New() *Store {
	return NewWithBanner(chat.NewBannerTurn(time.Now().UTC()))
}

// NewWithBanner creates a transcript seeded with the given banner turn.
func NewWithBanner(banner chat.AssistantTurn) *Store {
	turns := make([]chat.Turn, 0, 16)
	turns = append(turns, banner)
	return &Store{turns: turns}
}

// Append adds a turn to the end of the transcript. The turn is visible to
// All as soon as Append returns.
func (s *Store) Append(turn chat.Turn) {
	turn = chat.Clone(turn)

	s.mu.Lock()
	s.turns = append(s.turns, turn)
	s.mu.Unlock()
}

// All returns a snapshot of every turn in insertion order. The snapshot
// shares no mutable state with the store.
func (s *Store) All() []chat.Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	copied := make([]chat.Turn, len(s.turns))
	for i, turn := range s.turns {
		copied[i] = chat.Clone(turn)
	}
	return copied
}

// Len reports the number of turns.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.turns)
}

// Last returns the most recent turn. A transcript is never empty.
func (s *Store) Last() chat.Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return chat.Clone(s.turns[len(s.turns)-1])
}
