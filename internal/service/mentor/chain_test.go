package mentor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/tawfi332/Fsociety-T/backend/internal/model/chat"
	"github.com/tawfi332/Fsociety-T/backend/internal/model/topic"
)

type fakeChatModel struct {
	reply *schema.Message
	err   error
	input []*schema.Message
}

func (f *fakeChatModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	f.input = input
	if f.err != nil {
		return nil, f.err
	}
	return f.reply, nil
}

func (f *fakeChatModel) Stream(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	f.input = input
	if f.err != nil {
		return nil, f.err
	}
	return schema.StreamReaderFromArray([]*schema.Message{f.reply}), nil
}

func (f *fakeChatModel) BindTools(_ []*schema.ToolInfo) error {
	return nil
}

func newTestChainClient(t *testing.T, fake *fakeChatModel, opts ...Option) *ChainClient {
	t.Helper()
	general, _ := topic.NewMemoryStore(topic.Seed()).FindByID(topic.DefaultID)
	client, err := NewChainClient(context.Background(), fake, general, opts...)
	if err != nil {
		t.Fatalf("NewChainClient err: %v", err)
	}
	return client
}

func sampleHistory() []chat.Turn {
	now := time.Now()
	return []chat.Turn{
		chat.NewBannerTurn(now),
		chat.NewUserTurn("I want to grow my startup", now),
		chat.NewAssistantTurn(chat.MentorReply{MentorResponse: "What is your market?"}, now),
	}
}

func TestChainClientSendsHistoryAndUtterance(t *testing.T) {
	fake := &fakeChatModel{reply: schema.AssistantMessage(`{"mentorResponse":"Good attempt.","corrections":[{"original":"I has a apple","corrected":"I have an apple","explanation":"agreement"}]}`, nil)}
	client := newTestChainClient(t, fake)

	reply, err := client.RequestTurn(context.Background(), "I has a apple", sampleHistory())
	if err != nil {
		t.Fatalf("RequestTurn err: %v", err)
	}
	if reply.MentorResponse != "Good attempt." || len(reply.Corrections) != 1 {
		t.Fatalf("unexpected reply %+v", reply)
	}

	if len(fake.input) != 5 {
		t.Fatalf("expected system + 3 history + utterance, got %d messages", len(fake.input))
	}
	if fake.input[0].Role != schema.System {
		t.Fatalf("first message should be system, got %s", fake.input[0].Role)
	}
	if fake.input[1].Role != schema.Assistant || fake.input[1].Content != chat.BannerText {
		t.Fatalf("banner should lead history, got %+v", fake.input[1])
	}
	if fake.input[2].Role != schema.User || fake.input[3].Role != schema.Assistant {
		t.Fatalf("history roles out of order: %s, %s", fake.input[2].Role, fake.input[3].Role)
	}
	last := fake.input[4]
	if last.Role != schema.User || last.Content != "I has a apple" {
		t.Fatalf("unexpected final message %+v", last)
	}
}

func TestChainClientHistoryLimit(t *testing.T) {
	fake := &fakeChatModel{reply: schema.AssistantMessage(`{"mentorResponse":"ok"}`, nil)}
	client := newTestChainClient(t, fake, WithHistoryLimit(1))

	if _, err := client.RequestTurn(context.Background(), "next", sampleHistory()); err != nil {
		t.Fatalf("RequestTurn err: %v", err)
	}
	if len(fake.input) != 3 {
		t.Fatalf("expected system + 1 history + utterance, got %d", len(fake.input))
	}
	if fake.input[1].Content != "What is your market?" {
		t.Fatalf("expected latest history entry, got %q", fake.input[1].Content)
	}
}

func TestChainClientModelErrorIsUnavailable(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	client := newTestChainClient(t, &fakeChatModel{err: cause})

	_, err := client.RequestTurn(context.Background(), "hello", sampleHistory())
	if !errors.Is(err, ErrServiceUnavailable) {
		t.Fatalf("expected ErrServiceUnavailable, got %v", err)
	}
	if errors.Is(err, ErrMalformedReply) {
		t.Fatalf("transport failure reported as malformed: %v", err)
	}
}

func TestChainClientBadContentIsMalformed(t *testing.T) {
	client := newTestChainClient(t, &fakeChatModel{reply: schema.AssistantMessage("Sorry, I cannot help.", nil)})

	_, err := client.RequestTurn(context.Background(), "hello", sampleHistory())
	if !errors.Is(err, ErrMalformedReply) {
		t.Fatalf("expected ErrMalformedReply, got %v", err)
	}
}

func TestNewChainClientRequiresModel(t *testing.T) {
	if _, err := NewChainClient(context.Background(), nil, topic.Topic{}); err == nil {
		t.Fatal("expected error for nil chat model")
	}
}
