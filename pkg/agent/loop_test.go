package agent

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/dotsetgreg/helpline/pkg/bus"
	"github.com/dotsetgreg/helpline/pkg/config"
	"github.com/dotsetgreg/helpline/pkg/dialog"
	"github.com/dotsetgreg/helpline/pkg/providers"
	"github.com/dotsetgreg/helpline/pkg/risk"
)

type fakeProvider struct {
	mu    sync.Mutex
	calls [][]providers.Message
	reply string
	err   error
}

func (p *fakeProvider) Chat(ctx context.Context, messages []providers.Message, model string, options map[string]interface{}) (*providers.LLMResponse, error) {
	p.mu.Lock()
	recorded := make([]providers.Message, len(messages))
	copy(recorded, messages)
	p.calls = append(p.calls, recorded)
	p.mu.Unlock()

	if p.err != nil {
		return nil, p.err
	}
	return &providers.LLMResponse{Content: p.reply}, nil
}

func (p *fakeProvider) GetDefaultModel() string { return "fake-model" }

func (p *fakeProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

func newTestLoop(t *testing.T, provider providers.LLMProvider) *Loop {
	t.Helper()
	loop, err := NewLoop(config.DefaultConfig(), nil, provider, nil)
	if err != nil {
		t.Fatalf("NewLoop: %v", err)
	}
	return loop
}

func inbound(content string) bus.InboundMessage {
	return bus.InboundMessage{
		Channel:         "discord",
		SenderID:        "user-1",
		ChatID:          "chat-1",
		Content:         content,
		ConversationKey: "discord:chat-1",
	}
}

func TestLoop_CrisisShortCircuitsBackend(t *testing.T) {
	fp := &fakeProvider{reply: "should not be used"}
	loop := newTestLoop(t, fp)

	replies := loop.processMessage(context.Background(), inbound("я хочу умереть"))

	if fp.callCount() != 0 {
		t.Fatalf("crisis message must not reach the backend, got %d calls", fp.callCount())
	}
	if len(replies) != 2 {
		t.Fatalf("expected fixed payload + follow-up, got %d replies", len(replies))
	}

	want, err := loop.responder.Select(risk.HighRisk)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if replies[0].Content != want {
		t.Fatalf("first reply is not the fixed high-risk payload")
	}
	if !replies[0].PreFormatted {
		t.Fatalf("crisis payload must bypass transport escaping")
	}
	if replies[1].Content != risk.FollowUpQuestion {
		t.Fatalf("second reply = %q", replies[1].Content)
	}

	summary, ok := loop.store.TakePendingContext("discord:chat-1")
	if !ok {
		t.Fatalf("crisis message must stash a pending safety context")
	}
	if strings.Contains(summary, "хочу умереть") {
		t.Fatalf("pending summary leaks the flagged phrase: %q", summary)
	}
}

func TestLoop_PendingContextInjectedExactlyOnce(t *testing.T) {
	fp := &fakeProvider{reply: "Я рядом."}
	loop := newTestLoop(t, fp)
	ctx := context.Background()
	msgCrisis := inbound("я хочу умереть")
	msgBenign := inbound("мне просто очень грустно сегодня")

	loop.processMessage(ctx, msgCrisis)
	loop.processMessage(ctx, msgBenign)

	if fp.callCount() != 1 {
		t.Fatalf("expected 1 backend call, got %d", fp.callCount())
	}
	first := fp.calls[0]
	if len(first) != 3 {
		t.Fatalf("expected system prompt + safety context + user turn, got %d messages", len(first))
	}
	if first[0].Role != "system" || first[0].Content != systemPrompt {
		t.Fatalf("first turn must be the system prompt")
	}
	if first[1].Role != "system" || !strings.Contains(first[1].Content, "Служебная заметка") {
		t.Fatalf("second turn must be the injected safety context, got %+v", first[1])
	}
	if first[2].Role != "user" || first[2].Content != msgBenign.Content {
		t.Fatalf("user turn must be the raw benign message, got %+v", first[2])
	}

	// The slot is read-once: the next exchange carries no extra system turn.
	loop.processMessage(ctx, inbound("спасибо, стало немного легче"))

	second := fp.calls[1]
	systemTurns := 0
	for _, m := range second {
		if m.Role == "system" {
			systemTurns++
		}
	}
	if systemTurns != 2 {
		t.Fatalf("expected the same 2 system turns, got %d", systemTurns)
	}
	if _, ok := loop.store.TakePendingContext("discord:chat-1"); ok {
		t.Fatalf("pending context must be cleared after injection")
	}
}

func TestLoop_BackendFailureUsesFixedFallback(t *testing.T) {
	fp := &fakeProvider{err: &providers.BackendError{
		Provider: "gigachat",
		Kind:     providers.FailureTimeout,
		Reason:   "request timed out",
	}}
	loop := newTestLoop(t, fp)

	replies := loop.processMessage(context.Background(), inbound("расскажи, как справиться с тревогой"))

	if len(replies) != 1 {
		t.Fatalf("expected a single fallback reply, got %d", len(replies))
	}
	if replies[0].Content != fallbackReply {
		t.Fatalf("fallback must be emitted verbatim, got %q", replies[0].Content)
	}

	history := loop.store.History("discord:chat-1")
	last := history[len(history)-1]
	if last.Role != dialog.RoleAssistant || last.Content != fallbackReply {
		t.Fatalf("fallback must be appended as the assistant turn, got %+v", last)
	}
}

func TestLoop_ToxicAckThenBackendStillCalled(t *testing.T) {
	fp := &fakeProvider{reply: "Давай разберёмся, что тебя так задело."}
	loop := newTestLoop(t, fp)

	replies := loop.processMessage(context.Background(), inbound("все уроды, ненавижу всех"))

	if len(replies) != 2 {
		t.Fatalf("expected ack + generated reply, got %d replies", len(replies))
	}
	if replies[0].Content != toxicAck {
		t.Fatalf("first reply must be the de-escalation line, got %q", replies[0].Content)
	}
	if fp.callCount() != 1 {
		t.Fatalf("toxic messages still go to the backend, got %d calls", fp.callCount())
	}
	if !strings.Contains(replies[1].Content, fp.reply) {
		t.Fatalf("generated text missing from reply: %q", replies[1].Content)
	}
	if !strings.Contains(replies[1].Content, safetyFooter) {
		t.Fatalf("safety footer missing from reply: %q", replies[1].Content)
	}
}

func TestLoop_SuccessAppendsAnswerWithoutFooterToHistory(t *testing.T) {
	fp := &fakeProvider{reply: "Звучит непросто. Расскажи подробнее?"}
	loop := newTestLoop(t, fp)

	replies := loop.processMessage(context.Background(), inbound("на работе опять тяжёлый день"))

	if len(replies) != 1 {
		t.Fatalf("expected one reply, got %d", len(replies))
	}
	if !strings.HasPrefix(replies[0].Content, fp.reply) || !strings.Contains(replies[0].Content, safetyFooter) {
		t.Fatalf("outbound rendering must be answer + footer, got %q", replies[0].Content)
	}

	history := loop.store.History("discord:chat-1")
	last := history[len(history)-1]
	if last.Role != dialog.RoleAssistant || last.Content != fp.reply {
		t.Fatalf("history keeps the raw answer without the footer, got %+v", last)
	}
}

func TestLoop_Commands(t *testing.T) {
	fp := &fakeProvider{reply: "ответ"}
	loop := newTestLoop(t, fp)
	ctx := context.Background()

	replies := loop.processMessage(ctx, inbound("/resources"))
	if len(replies) != 1 || replies[0].Content != risk.ResourcesCard || !replies[0].PreFormatted {
		t.Fatalf("/resources must return the fixed resources card")
	}

	replies = loop.processMessage(ctx, inbound("/start"))
	if len(replies) != 1 || replies[0].Content != startReply {
		t.Fatalf("/start reply = %+v", replies)
	}

	replies = loop.processMessage(ctx, inbound("/help"))
	if len(replies) != 1 || replies[0].Content != helpReply {
		t.Fatalf("/help reply = %+v", replies)
	}

	if fp.callCount() != 0 {
		t.Fatalf("commands must not reach the backend")
	}

	// Unknown commands are treated as ordinary text.
	loop.processMessage(ctx, inbound("/unknown что это"))
	if fp.callCount() != 1 {
		t.Fatalf("unknown command should flow to the backend, got %d calls", fp.callCount())
	}
}

func TestLoop_EmptyMessageIsIgnored(t *testing.T) {
	fp := &fakeProvider{reply: "ответ"}
	loop := newTestLoop(t, fp)

	replies := loop.processMessage(context.Background(), inbound("   \n\t  "))

	if replies != nil {
		t.Fatalf("blank input should produce no replies, got %+v", replies)
	}
	if fp.callCount() != 0 {
		t.Fatalf("blank input must not reach the backend")
	}
}

func TestLoop_RunPublishesRepliesToBus(t *testing.T) {
	fp := &fakeProvider{reply: "Я слушаю."}
	messageBus := bus.NewMessageBus()
	loop, err := NewLoop(config.DefaultConfig(), messageBus, fp, nil)
	if err != nil {
		t.Fatalf("NewLoop: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = loop.Run(ctx)
	}()

	messageBus.PublishInbound(inbound("мне одиноко"))

	out, ok := messageBus.SubscribeOutbound(ctx)
	if !ok {
		t.Fatalf("no outbound message")
	}
	if out.Channel != "discord" || out.ChatID != "chat-1" {
		t.Fatalf("outbound routed to %s:%s", out.Channel, out.ChatID)
	}
	if !strings.Contains(out.Content, fp.reply) {
		t.Fatalf("outbound content = %q", out.Content)
	}

	loop.Stop()
	cancel()
	<-done
}
