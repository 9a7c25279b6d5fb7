package mentor

import (
	"context"
	"fmt"
	"log"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/tawfi332/Fsociety-T/backend/internal/model/chat"
	"github.com/tawfi332/Fsociety-T/backend/internal/model/topic"
)

// ChainClient asks an eino chat model for mentor turns through a
// system prompt + history + utterance chain.
type ChainClient struct {
	chain        compose.Runnable[map[string]any, *schema.Message]
	systemPrompt string
	historyLimit int
}

// NewChainClient compiles the mentor chain around chatModel.
func NewChainClient(ctx context.Context, chatModel model.ChatModel, t topic.Topic, opts ...Option) (*ChainClient, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("chat model is required")
	}
	o := buildOptions(opts)

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{utterance}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile mentor chain: %w", err)
	}

	return &ChainClient{
		chain:        runnable,
		systemPrompt: BuildSystemPrompt(t),
		historyLimit: o.historyLimit,
	}, nil
}

// RequestTurn implements Client.
func (c *ChainClient) RequestTurn(ctx context.Context, utterance string, history []chat.Turn) (chat.MentorReply, error) {
	input := map[string]any{
		"system":    c.systemPrompt,
		"history":   buildHistoryMessages(chat.History(history, c.historyLimit)),
		"utterance": utterance,
	}

	msg, err := c.chain.Invoke(ctx, input)
	if err != nil {
		return chat.MentorReply{}, unavailable("run mentor chain", err)
	}
	if msg == nil {
		return chat.MentorReply{}, fmt.Errorf("%w: empty model message", ErrMalformedReply)
	}

	reply, err := ParseReply(msg.Content)
	if err != nil {
		return chat.MentorReply{}, err
	}

	log.Printf("[mentor] chain reply: corrections=%d, length=%d", len(reply.Corrections), len(reply.MentorResponse))
	return reply, nil
}

func buildHistoryMessages(entries []chat.HistoryEntry) []*schema.Message {
	if len(entries) == 0 {
		return nil
	}

	history := make([]*schema.Message, 0, len(entries))
	for _, entry := range entries {
		switch entry.Role {
		case chat.RoleUser:
			history = append(history, schema.UserMessage(entry.Content))
		case chat.RoleAssistant:
			history = append(history, schema.AssistantMessage(entry.Content, nil))
		}
	}
	return history
}

var _ Client = (*ChainClient)(nil)
