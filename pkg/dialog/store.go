// Package dialog keeps per-conversation state: the bounded rolling history
// of role-tagged turns and the one-shot pending safety context. State lives
// for the process lifetime only; nothing is persisted.
package dialog

import "sync"

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message unit in a conversation.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

const DefaultMaxTurns = 8

// Store owns the conversation map. It is injected into the dialog loop
// rather than living as ambient process state, and every read-modify-write
// of a conversation happens under that conversation's own lock: the
// read-once semantics of TakePendingContext is a check-then-act race
// otherwise.
type Store struct {
	maxTurns     int
	systemPrompt string
	mu           sync.Mutex
	conversations map[string]*conversation
}

type conversation struct {
	mu         sync.Mutex
	history    []Turn
	pending    string
	hasPending bool
}

func NewStore(maxTurns int, systemPrompt string) *Store {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	return &Store{
		maxTurns:      maxTurns,
		systemPrompt:  systemPrompt,
		conversations: make(map[string]*conversation),
	}
}

// historyLimit bounds a conversation at maxTurns user+assistant pairs plus
// up to two system slots.
func (s *Store) historyLimit() int {
	return 2*s.maxTurns + 2
}

func (s *Store) conversation(id string) *conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.conversations[id]
	if !ok {
		conv = &conversation{}
		s.conversations[id] = conv
	}
	return conv
}

// AppendTurn appends one turn and enforces the history bound, evicting the
// oldest turns first. The leading system prompt survives eviction so the
// backend always sees its instructions.
func (s *Store) AppendTurn(id string, role Role, content string) {
	conv := s.conversation(id)
	conv.mu.Lock()
	defer conv.mu.Unlock()

	conv.history = append(conv.history, Turn{Role: role, Content: content})
	limit := s.historyLimit()
	for len(conv.history) > limit {
		evict := 0
		if conv.history[0].Role == RoleSystem {
			evict = 1
		}
		conv.history = append(conv.history[:evict], conv.history[evict+1:]...)
	}
}

// EnsureSystemPrompt inserts the fixed system instruction turn when the
// conversation is still empty. Idempotent per conversation.
func (s *Store) EnsureSystemPrompt(id string) {
	conv := s.conversation(id)
	conv.mu.Lock()
	defer conv.mu.Unlock()

	if len(conv.history) == 0 && s.systemPrompt != "" {
		conv.history = append(conv.history, Turn{Role: RoleSystem, Content: s.systemPrompt})
	}
}

// StashPendingContext records a sanitized safety summary for the next
// backend exchange. A second stash before the first is consumed overwrites
// it: at most one pending context per conversation, last write wins.
func (s *Store) StashPendingContext(id, summary string) {
	conv := s.conversation(id)
	conv.mu.Lock()
	defer conv.mu.Unlock()

	conv.pending = summary
	conv.hasPending = true
}

// TakePendingContext returns and clears the pending summary. Read-once: a
// second call returns false until the next stash.
func (s *Store) TakePendingContext(id string) (string, bool) {
	conv := s.conversation(id)
	conv.mu.Lock()
	defer conv.mu.Unlock()

	if !conv.hasPending {
		return "", false
	}
	summary := conv.pending
	conv.pending = ""
	conv.hasPending = false
	return summary, true
}

// History returns a defensive copy of the conversation's turns in order.
func (s *Store) History(id string) []Turn {
	conv := s.conversation(id)
	conv.mu.Lock()
	defer conv.mu.Unlock()

	out := make([]Turn, len(conv.history))
	copy(out, conv.history)
	return out
}
