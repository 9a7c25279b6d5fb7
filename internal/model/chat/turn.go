package chat

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Role identifies who authored a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in the transcript. It is either a UserTurn or an
// AssistantTurn; no other implementations exist.
type Turn interface {
	TurnID() string
	Role() Role
	Text() string
	CreatedAt() time.Time

	clone() Turn
}

// Correction is a single original→corrected language fix.
type Correction struct {
	Original    string `json:"original"`
	Corrected   string `json:"corrected"`
	Explanation string `json:"explanation"`
}

// UserTurn carries an accepted user utterance.
type UserTurn struct {
	ID        string
	Content   string
	Timestamp time.Time
}

// AssistantTurn carries a mentor reply, the session banner or a fallback notice.
type AssistantTurn struct {
	ID              string
	Content         string
	Corrections     []Correction
	OverallFeedback string
	Timestamp       time.Time
}

func (t UserTurn) TurnID() string       { return t.ID }
func (t UserTurn) Role() Role           { return RoleUser }
func (t UserTurn) Text() string         { return t.Content }
func (t UserTurn) CreatedAt() time.Time { return t.Timestamp }
func (t UserTurn) clone() Turn          { return t }

func (t AssistantTurn) TurnID() string       { return t.ID }
func (t AssistantTurn) Role() Role           { return RoleAssistant }
func (t AssistantTurn) Text() string         { return t.Content }
func (t AssistantTurn) CreatedAt() time.Time { return t.Timestamp }

func (t AssistantTurn) clone() Turn {
	t.Corrections = copyCorrections(t.Corrections)
	return t
}

// Clone returns a deep copy of turn that shares no mutable state with it.
func Clone(turn Turn) Turn {
	if turn == nil {
		return nil
	}
	return turn.clone()
}

// NewUserTurn creates a user turn with a fresh identifier.
func NewUserTurn(content string, at time.Time) UserTurn {
	return UserTurn{
		ID:        uuid.NewString(),
		Content:   content,
		Timestamp: at,
	}
}

// NewAssistantTurn builds an assistant turn from a mentor reply. The
// corrections are copied so the reply and the turn never share a backing array.
func NewAssistantTurn(reply MentorReply, at time.Time) AssistantTurn {
	return AssistantTurn{
		ID:              uuid.NewString(),
		Content:         reply.MentorResponse,
		Corrections:     copyCorrections(reply.Corrections),
		OverallFeedback: reply.OverallFeedback,
		Timestamp:       at,
	}
}

// NewFallbackTurn builds the generic notice appended when a mentor call fails.
func NewFallbackTurn(at time.Time) AssistantTurn {
	return AssistantTurn{
		ID:        uuid.NewString(),
		Content:   FallbackText,
		Timestamp: at,
	}
}

// NewBannerTurn builds the session banner every transcript starts with.
func NewBannerTurn(at time.Time) AssistantTurn {
	return AssistantTurn{
		ID:        uuid.NewString(),
		Content:   BannerText,
		Timestamp: at,
	}
}

func copyCorrections(in []Correction) []Correction {
	if len(in) == 0 {
		return nil
	}
	out := make([]Correction, len(in))
	copy(out, in)
	return out
}

// turnJSON is the wire shape shared by both turn kinds.
type turnJSON struct {
	ID              string       `json:"id"`
	Role            Role         `json:"role"`
	Content         string       `json:"content"`
	Corrections     []Correction `json:"corrections,omitempty"`
	OverallFeedback string       `json:"overallFeedback,omitempty"`
	Timestamp       time.Time    `json:"timestamp"`
}

// MarshalJSON renders the turn with its role tag.
func (t UserTurn) MarshalJSON() ([]byte, error) {
	return json.Marshal(turnJSON{
		ID:        t.ID,
		Role:      RoleUser,
		Content:   t.Content,
		Timestamp: t.Timestamp,
	})
}

// MarshalJSON renders the turn with its role tag.
func (t AssistantTurn) MarshalJSON() ([]byte, error) {
	return json.Marshal(turnJSON{
		ID:              t.ID,
		Role:            RoleAssistant,
		Content:         t.Content,
		Corrections:     t.Corrections,
		OverallFeedback: t.OverallFeedback,
		Timestamp:       t.Timestamp,
	})
}
