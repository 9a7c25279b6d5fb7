package mentor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/url"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"

	"github.com/tawfi332/Fsociety-T/backend/internal/model/chat"
	"github.com/tawfi332/Fsociety-T/backend/internal/model/topic"
)

// OpenAIClient asks an OpenAI-compatible chat completion endpoint for
// mentor turns. SDK retries are disabled.
type OpenAIClient struct {
	client       oai.Client
	model        string
	systemPrompt string
	historyLimit int
	temperature  *float64
}

// NewOpenAIClient constructs an OpenAIClient.
func NewOpenAIClient(apiKey, model string, t topic.Topic, opts ...Option) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai: apiKey must not be empty")
	}
	if model == "" {
		return nil, fmt.Errorf("openai: model must not be empty")
	}
	o := buildOptions(opts)

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if o.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(o.baseURL))
	}

	return &OpenAIClient{
		client:       oai.NewClient(reqOpts...),
		model:        model,
		systemPrompt: BuildSystemPrompt(t),
		historyLimit: o.historyLimit,
		temperature:  o.temperature,
	}, nil
}

// RequestTurn implements Client.
func (c *OpenAIClient) RequestTurn(ctx context.Context, utterance string, history []chat.Turn) (chat.MentorReply, error) {
	params := c.buildParams(utterance, chat.History(history, c.historyLimit))

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return chat.MentorReply{}, classifyCompletionError(err)
	}
	if len(resp.Choices) == 0 {
		return chat.MentorReply{}, fmt.Errorf("%w: empty choices in response", ErrMalformedReply)
	}

	reply, err := ParseReply(resp.Choices[0].Message.Content)
	if err != nil {
		return chat.MentorReply{}, err
	}

	log.Printf("[mentor] openai reply: model=%s, corrections=%d, tokens=%d", c.model, len(reply.Corrections), resp.Usage.TotalTokens)
	return reply, nil
}

func (c *OpenAIClient) buildParams(utterance string, history []chat.HistoryEntry) oai.ChatCompletionNewParams {
	messages := make([]oai.ChatCompletionMessageParamUnion, 0, len(history)+2)
	messages = append(messages, oai.SystemMessage(c.systemPrompt))
	for _, entry := range history {
		messages = append(messages, convertEntry(entry))
	}
	messages = append(messages, oai.UserMessage(utterance))

	params := oai.ChatCompletionNewParams{
		Model:    shared.ChatModel(c.model),
		Messages: messages,
	}
	if c.temperature != nil {
		params.Temperature = param.NewOpt(*c.temperature)
	}
	return params
}

func convertEntry(entry chat.HistoryEntry) oai.ChatCompletionMessageParamUnion {
	if entry.Role == chat.RoleAssistant {
		asst := oai.ChatCompletionAssistantMessageParam{}
		asst.Content.OfString = oai.String(entry.Content)
		return oai.ChatCompletionMessageParamUnion{OfAssistant: &asst}
	}
	return oai.UserMessage(entry.Content)
}

// classifyCompletionError separates failures to reach the service from a
// 2xx answer whose body the SDK could not decode.
func classifyCompletionError(err error) error {
	var apiErr *oai.Error
	var urlErr *url.Error
	var netErr net.Error
	switch {
	case errors.As(err, &apiErr),
		errors.As(err, &urlErr),
		errors.As(err, &netErr),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return unavailable("openai chat completion", err)
	default:
		return fmt.Errorf("%w: decode chat completion: %w", ErrMalformedReply, err)
	}
}

var _ Client = (*OpenAIClient)(nil)
