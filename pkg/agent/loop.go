// Package agent runs the dialog loop: it consumes inbound messages, routes
// them through risk classification, and decides between the fixed crisis
// responses and the generative backend.
package agent

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dotsetgreg/helpline/pkg/audit"
	"github.com/dotsetgreg/helpline/pkg/bus"
	"github.com/dotsetgreg/helpline/pkg/config"
	"github.com/dotsetgreg/helpline/pkg/dialog"
	"github.com/dotsetgreg/helpline/pkg/logger"
	"github.com/dotsetgreg/helpline/pkg/providers"
	"github.com/dotsetgreg/helpline/pkg/risk"
)

const defaultRequestTimeout = 30 * time.Second

type Loop struct {
	bus            *bus.MessageBus
	provider       providers.LLMProvider
	store          *dialog.Store
	responder      *risk.Responder
	audit          *audit.Store // nil when auditing is disabled
	model          string
	temperature    float64
	requestTimeout time.Duration
	running        atomic.Bool
}

// Reply is one rendered outbound unit. PreFormatted marks pre-reviewed
// payloads that are already valid transport markup.
type Reply struct {
	Content      string
	PreFormatted bool
}

func NewLoop(cfg *config.Config, msgBus *bus.MessageBus, provider providers.LLMProvider, auditStore *audit.Store) (*Loop, error) {
	responder, err := risk.NewResponder()
	if err != nil {
		return nil, err
	}

	model := cfg.Providers.GigaChat.Model
	if model == "" {
		model = provider.GetDefaultModel()
	}

	timeout := time.Duration(cfg.Providers.GigaChat.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	return &Loop{
		bus:            msgBus,
		provider:       provider,
		store:          dialog.NewStore(cfg.Dialog.MaxTurns, systemPrompt),
		responder:      responder,
		audit:          auditStore,
		model:          model,
		temperature:    cfg.Providers.GigaChat.Temperature,
		requestTimeout: timeout,
	}, nil
}

func (l *Loop) Run(ctx context.Context) error {
	l.running.Store(true)

	for l.running.Load() {
		select {
		case <-ctx.Done():
			return nil
		default:
			msg, ok := l.bus.ConsumeInbound(ctx)
			if !ok {
				continue
			}

			for _, reply := range l.processMessage(ctx, msg) {
				l.bus.PublishOutbound(bus.OutboundMessage{
					Channel:      msg.Channel,
					ChatID:       msg.ChatID,
					Content:      reply.Content,
					PreFormatted: reply.PreFormatted,
				})
			}
		}
	}

	return nil
}

func (l *Loop) Stop() {
	l.running.Store(false)
}

// ProcessDirect handles one message outside the bus, for the local console
// session. The replies are returned instead of published.
func (l *Loop) ProcessDirect(ctx context.Context, content, conversationKey string) []Reply {
	return l.processMessage(ctx, bus.InboundMessage{
		Channel:         "cli",
		SenderID:        "local-user",
		ChatID:          "direct",
		Content:         content,
		ConversationKey: conversationKey,
	})
}

// processMessage runs the per-message state machine: command dispatch, then
// classification, then either the crisis short-circuit or the backend path.
func (l *Loop) processMessage(ctx context.Context, msg bus.InboundMessage) []Reply {
	content := strings.TrimSpace(msg.Content)
	if content == "" {
		return nil
	}

	key := msg.ConversationKey
	if key == "" {
		key = msg.Channel + ":" + msg.ChatID
	}

	logger.InfoCF("agent", "Processing message", map[string]interface{}{
		"channel":      msg.Channel,
		"chat_id":      msg.ChatID,
		"conversation": key,
	})

	if replies, handled := l.handleCommand(content); handled {
		return replies
	}

	result := risk.Classify(msg.Content)
	if result.Label != risk.Benign {
		logger.InfoCF("agent", "Risk label assigned", map[string]interface{}{
			"conversation": key,
			"label":        result.Label.String(),
		})
		l.recordAudit(ctx, key, result.Label)
	}

	if result.Label.IsCrisis() {
		return l.respondToCrisis(key, msg.Content, result.Label)
	}

	var replies []Reply
	if result.Label == risk.Toxic {
		replies = append(replies, Reply{Content: toxicAck})
	}

	return append(replies, l.generateReply(ctx, key, msg.Content))
}

// respondToCrisis is terminal for the message: the fixed payload goes out,
// a redacted summary is stashed for the next backend exchange, and the
// backend is never called. The raw message is not appended to history —
// the stashed summary is the only trace the backend will ever see.
func (l *Loop) respondToCrisis(key, content string, label risk.Label) []Reply {
	l.store.StashPendingContext(key, risk.SummarizeForBackend(content, label))

	payload, err := l.responder.Select(label)
	if err != nil {
		// Unreachable while the responder's construction check holds.
		logger.ErrorCF("agent", "No fixed response for crisis label", map[string]interface{}{
			"label": label.String(),
			"error": err.Error(),
		})
		payload = risk.ResourcesCard
	}

	return []Reply{
		{Content: payload, PreFormatted: true},
		{Content: risk.FollowUpQuestion},
	}
}

// generateReply runs the backend path: system prompt, one-shot pending
// safety context, the user turn, then a single bounded-timeout completion
// attempt. Any failure substitutes the fixed local fallback.
func (l *Loop) generateReply(ctx context.Context, key, content string) Reply {
	l.store.EnsureSystemPrompt(key)
	if pending, ok := l.store.TakePendingContext(key); ok {
		l.store.AppendTurn(key, dialog.RoleSystem, pending)
	}
	l.store.AppendTurn(key, dialog.RoleUser, content)

	history := l.store.History(key)
	messages := make([]providers.Message, 0, len(history))
	for _, turn := range history {
		messages = append(messages, providers.Message{
			Role:    string(turn.Role),
			Content: turn.Content,
		})
	}

	callCtx, cancel := context.WithTimeout(ctx, l.requestTimeout)
	defer cancel()

	resp, err := l.provider.Chat(callCtx, messages, l.model, map[string]interface{}{
		"temperature": l.temperature,
	})

	answer := ""
	if err == nil && resp != nil {
		answer = strings.TrimSpace(resp.Content)
	}

	if err != nil || answer == "" {
		if err != nil {
			logger.ErrorCF("agent", "Backend call failed, using local fallback", map[string]interface{}{
				"conversation": key,
				"error":        err.Error(),
			})
		} else {
			logger.WarnCF("agent", "Backend returned empty completion, using local fallback", map[string]interface{}{
				"conversation": key,
			})
		}
		l.store.AppendTurn(key, dialog.RoleAssistant, fallbackReply)
		return Reply{Content: fallbackReply, PreFormatted: true}
	}

	l.store.AppendTurn(key, dialog.RoleAssistant, answer)
	return Reply{Content: answer + "\n\n" + safetyFooter}
}

func (l *Loop) handleCommand(content string) ([]Reply, bool) {
	if !strings.HasPrefix(content, "/") {
		return nil, false
	}

	switch strings.ToLower(strings.Fields(content)[0]) {
	case "/start":
		return []Reply{{Content: startReply, PreFormatted: true}}, true
	case "/help":
		return []Reply{{Content: helpReply, PreFormatted: true}}, true
	case "/resources":
		return []Reply{{Content: risk.ResourcesCard, PreFormatted: true}}, true
	default:
		// Unknown commands flow to the normal path like any other text.
		return nil, false
	}
}

func (l *Loop) recordAudit(ctx context.Context, key string, label risk.Label) {
	if l.audit == nil {
		return
	}
	if err := l.audit.Record(ctx, key, label.String()); err != nil {
		logger.WarnCF("agent", "Failed to record audit event", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
