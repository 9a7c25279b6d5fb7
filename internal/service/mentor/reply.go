package mentor

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tawfi332/Fsociety-T/backend/internal/model/chat"
)

// replyPayload is the JSON object the mentor model is instructed to return.
// Pointer fields distinguish a missing key from an empty value.
type replyPayload struct {
	MentorResponse  *string              `json:"mentorResponse"`
	Corrections     []*correctionPayload `json:"corrections"`
	OverallFeedback *string              `json:"overallFeedback"`
}

type correctionPayload struct {
	Original    string `json:"original"`
	Corrected   string `json:"corrected"`
	Explanation string `json:"explanation"`
}

func (c *correctionPayload) empty() bool {
	return c == nil || (c.Original == "" && c.Corrected == "" && c.Explanation == "")
}

// ParseReply decodes model output into a MentorReply. Markdown code fences
// and prose around the JSON object are tolerated, braces in that prose
// included. A missing mentorResponse or a field of the wrong type yields
// ErrMalformedReply. Null or blank correction entries are dropped.
func ParseReply(content string) (chat.MentorReply, error) {
	payload, err := decodePayload(stripMarkdown(content))
	if err != nil {
		return chat.MentorReply{}, fmt.Errorf("%w: %w", ErrMalformedReply, err)
	}

	reply := chat.MentorReply{
		MentorResponse: *payload.MentorResponse,
		Corrections:    make([]chat.Correction, 0, len(payload.Corrections)),
	}
	for _, c := range payload.Corrections {
		if c.empty() {
			continue
		}
		reply.Corrections = append(reply.Corrections, chat.Correction{
			Original:    c.Original,
			Corrected:   c.Corrected,
			Explanation: c.Explanation,
		})
	}
	if payload.OverallFeedback != nil {
		reply.OverallFeedback = *payload.OverallFeedback
	}
	return reply, nil
}

// decodePayload tries each '{' in order and decodes the first JSON value
// starting there; anything after that value is ignored. The first candidate
// carrying mentorResponse wins. Otherwise the error of the first candidate
// is returned.
func decodePayload(text string) (replyPayload, error) {
	var firstErr error
	for offset := 0; ; {
		idx := strings.IndexByte(text[offset:], '{')
		if idx == -1 {
			break
		}
		offset += idx

		var payload replyPayload
		err := json.NewDecoder(strings.NewReader(text[offset:])).Decode(&payload)
		if err == nil && payload.MentorResponse == nil {
			err = errors.New("missing mentorResponse")
		}
		if err == nil {
			return payload, nil
		}
		if firstErr == nil {
			firstErr = err
		}
		offset++
	}

	if firstErr == nil {
		firstErr = errors.New("missing json object")
	}
	return replyPayload{}, firstErr
}

// stripMarkdown removes ```json ... ``` fences some models wrap JSON in.
func stripMarkdown(s string) string {
	s = strings.TrimSpace(s)
	for _, prefix := range []string{"```json", "```"} {
		if after, ok := strings.CutPrefix(s, prefix); ok {
			s = after
			break
		}
	}
	if before, ok := strings.CutSuffix(s, "```"); ok {
		s = before
	}
	return strings.TrimSpace(s)
}
