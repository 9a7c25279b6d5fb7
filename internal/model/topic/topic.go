package topic

// DefaultID is used when no topic or an unknown topic is configured.
const DefaultID = "general"

// Topic describes a mentoring focus area the mentor steers conversation toward.
type Topic struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Focus      string `json:"focus"`
	PromptHint string `json:"promptHint"`
}

// Seed provides the built-in topic catalogue.
func Seed() []Topic {
	return []Topic{
		{
			ID:         "business",
			Name:       "Business",
			Focus:      "strategy, negotiation, sales and company building",
			PromptHint: "Use business vocabulary and push the user to phrase ideas the way they would in a pitch or a meeting.",
		},
		{
			ID:         "mindset",
			Name:       "Mindset",
			Focus:      "discipline, resilience and self-talk",
			PromptHint: "Challenge limiting beliefs directly and ask the user to restate goals in confident, precise English.",
		},
		{
			ID:         "leadership",
			Name:       "Leadership",
			Focus:      "leading teams, feedback and decision making",
			PromptHint: "Frame questions around situations where the user has to give direction or feedback to others.",
		},
		{
			ID:         "productivity",
			Name:       "Productivity",
			Focus:      "habits, planning and deep work",
			PromptHint: "Ask about concrete routines and make the user describe plans with clear time expressions.",
		},
		{
			ID:         DefaultID,
			Name:       "General",
			Focus:      "business and mindset strategy",
			PromptHint: "Keep the conversation open and follow whatever the user brings up.",
		},
	}
}
