package bus

// InboundMessage is one user message delivered by a transport channel.
// ConversationKey is the stable per-dialog key ("channel:chat_id") the
// dialog store is bucketed by.
type InboundMessage struct {
	Channel         string
	SenderID        string
	ChatID          string
	Content         string
	ConversationKey string
	Metadata        map[string]string
}

// OutboundMessage is rendered text ready for transport delivery.
// PreFormatted marks pre-reviewed payloads (crisis cards, footers) that are
// already valid transport markup and must not be escaped again.
type OutboundMessage struct {
	Channel      string
	ChatID       string
	Content      string
	PreFormatted bool
}
