package chat

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestAssistantTurnCopiesCorrections(t *testing.T) {
	reply := MentorReply{
		MentorResponse: "Good attempt.",
		Corrections: []Correction{
			{Original: "I has", Corrected: "I have", Explanation: "subject-verb agreement"},
		},
	}

	turn := NewAssistantTurn(reply, time.Now())
	reply.Corrections[0].Corrected = "mutated"

	if turn.Corrections[0].Corrected != "I have" {
		t.Fatalf("turn shares corrections with reply: %+v", turn.Corrections)
	}
}

func TestCloneIsDeep(t *testing.T) {
	orig := AssistantTurn{ID: "a", Content: "x", Corrections: []Correction{{Original: "o"}}}
	cloned := Clone(orig).(AssistantTurn)
	cloned.Corrections[0].Original = "changed"

	if orig.Corrections[0].Original != "o" {
		t.Fatal("clone shares corrections with original")
	}
}

func TestUserTurnJSON(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	data, err := json.Marshal(UserTurn{ID: "u1", Content: "I has a apple", Timestamp: at})
	if err != nil {
		t.Fatalf("marshal err: %v", err)
	}

	got := string(data)
	if !strings.Contains(got, `"role":"user"`) {
		t.Fatalf("missing role: %s", got)
	}
	if strings.Contains(got, "corrections") || strings.Contains(got, "overallFeedback") {
		t.Fatalf("user turn leaked assistant fields: %s", got)
	}
}

func TestAssistantTurnJSON(t *testing.T) {
	turn := AssistantTurn{
		ID:              "a1",
		Content:         "Good attempt.",
		Corrections:     []Correction{{Original: "a apple", Corrected: "an apple", Explanation: "article"}},
		OverallFeedback: "Nice",
	}

	var decoded map[string]any
	data, err := json.Marshal(turn)
	if err != nil {
		t.Fatalf("marshal err: %v", err)
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal err: %v", err)
	}

	if decoded["role"] != "assistant" {
		t.Fatalf("unexpected role %v", decoded["role"])
	}
	if decoded["overallFeedback"] != "Nice" {
		t.Fatalf("unexpected feedback %v", decoded["overallFeedback"])
	}
	corrections, ok := decoded["corrections"].([]any)
	if !ok || len(corrections) != 1 {
		t.Fatalf("unexpected corrections %v", decoded["corrections"])
	}
}

func TestFallbackTurnHasNoExtras(t *testing.T) {
	turn := NewFallbackTurn(time.Now())
	if turn.Content != FallbackText {
		t.Fatalf("unexpected content %q", turn.Content)
	}
	if len(turn.Corrections) != 0 || turn.OverallFeedback != "" {
		t.Fatalf("fallback carries extras: %+v", turn)
	}
}

func TestHistoryLimit(t *testing.T) {
	turns := []Turn{
		NewBannerTurn(time.Now()),
		NewUserTurn("one", time.Now()),
		AssistantTurn{Content: "reply"},
		NewUserTurn("two", time.Now()),
	}

	all := History(turns, 0)
	if len(all) != 4 {
		t.Fatalf("expected full history, got %d", len(all))
	}
	if all[0].Role != RoleAssistant || all[1].Content != "one" {
		t.Fatalf("unexpected order: %+v", all)
	}

	last := History(turns, 2)
	if len(last) != 2 || last[0].Content != "reply" || last[1].Content != "two" {
		t.Fatalf("unexpected limited history: %+v", last)
	}
}
