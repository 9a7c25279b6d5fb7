package chat

// MentorReply is the structured answer returned by the mentor service.
// Corrections is empty and OverallFeedback is "" when the service omits them.
type MentorReply struct {
	MentorResponse  string       `json:"mentorResponse"`
	Corrections     []Correction `json:"corrections"`
	OverallFeedback string       `json:"overallFeedback,omitempty"`
}

// HistoryEntry is the role + content pair sent to the mentor service for
// every prior turn.
type HistoryEntry struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// History flattens turns into the role + content shape the mentor service
// expects, keeping at most the last limit entries. limit <= 0 keeps all.
func History(turns []Turn, limit int) []HistoryEntry {
	start := 0
	if limit > 0 && len(turns) > limit {
		start = len(turns) - limit
	}

	entries := make([]HistoryEntry, 0, len(turns)-start)
	for _, turn := range turns[start:] {
		entries = append(entries, HistoryEntry{Role: turn.Role(), Content: turn.Text()})
	}
	return entries
}
