// Package mentor talks to the remote language-mentor service. A Client turns
// one user utterance plus the prior transcript into a structured MentorReply:
// a conversational answer, itemised corrections and optional overall feedback.
//
// Clients never retry and never touch the transcript. Failures are reported
// as ErrServiceUnavailable (transport, timeouts, non-2xx answers) or
// ErrMalformedReply (the payload does not have the MentorReply shape); the
// underlying cause stays reachable through errors.Unwrap.
package mentor

import (
	"context"
	"errors"
	"fmt"

	"github.com/tawfi332/Fsociety-T/backend/internal/config"
	"github.com/tawfi332/Fsociety-T/backend/internal/model/chat"
	"github.com/tawfi332/Fsociety-T/backend/internal/model/topic"
)

var (
	ErrServiceUnavailable = errors.New("mentor service unavailable")
	ErrMalformedReply     = errors.New("malformed mentor reply")
)

// Client requests one mentor turn. RequestTurn blocks until the service
// answers or ctx is done; callers that must not block run it in a goroutine.
// history is the transcript before utterance was added.
type Client interface {
	RequestTurn(ctx context.Context, utterance string, history []chat.Turn) (chat.MentorReply, error)
}

type options struct {
	historyLimit int
	baseURL      string
	temperature  *float64
}

// Option configures a Client.
type Option func(*options)

// WithHistoryLimit caps the number of prior turns sent as context.
// Zero or negative sends the full transcript.
func WithHistoryLimit(n int) Option {
	return func(o *options) {
		o.historyLimit = n
	}
}

// WithBaseURL overrides the API endpoint. Only used by the OpenAI client.
func WithBaseURL(url string) Option {
	return func(o *options) {
		o.baseURL = url
	}
}

// WithTemperature sets the sampling temperature. Only used by the OpenAI
// client; the Ark model reads it from its own config.
func WithTemperature(temp float64) Option {
	return func(o *options) {
		o.temperature = &temp
	}
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// New builds the client for the configured provider.
func New(ctx context.Context, cfg config.MentorConfig, t topic.Topic) (Client, error) {
	opts := []Option{WithHistoryLimit(cfg.HistoryLimit)}

	switch cfg.Provider {
	case config.ProviderOpenAI:
		if cfg.OpenAI.BaseURL != "" {
			opts = append(opts, WithBaseURL(cfg.OpenAI.BaseURL))
		}
		if cfg.OpenAI.Temperature != nil {
			opts = append(opts, WithTemperature(*cfg.OpenAI.Temperature))
		}
		return NewOpenAIClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model, t, opts...)
	case config.ProviderArk, "":
		chatModel, err := cfg.Ark.NewChatModel(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create chat model: %w", err)
		}
		return NewChainClient(ctx, chatModel, t, opts...)
	default:
		return nil, fmt.Errorf("unknown mentor provider %q", cfg.Provider)
	}
}

func unavailable(stage string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrServiceUnavailable, stage, err)
}
