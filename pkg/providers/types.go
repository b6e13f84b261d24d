package providers

import (
	"context"
	"errors"
	"fmt"
)

// Message is one role-tagged turn sent to the generative backend.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// LLMResponse is a successful backend completion.
type LLMResponse struct {
	Content string
}

// LLMProvider is the capability the dialog loop needs from a generative
// backend: exchange a turn list for a completion. Credential handling and
// token refresh stay behind this interface.
type LLMProvider interface {
	Chat(ctx context.Context, messages []Message, model string, options map[string]interface{}) (*LLMResponse, error)
	GetDefaultModel() string
}

// ErrMissingCredential means the backend client cannot construct valid
// authorization material. It is a fatal startup error: the process must
// refuse to start rather than run without a working backend.
var ErrMissingCredential = errors.New("provider credential is not configured")

// Backend failure kinds. The dialog loop branches on these instead of
// inspecting error strings.
const (
	FailureTimeout = "timeout"
	FailureStatus  = "status"
	FailurePayload = "payload"
	FailureAuth    = "auth"
)

// BackendError is the tagged failure a backend call can produce. The raw
// reason is logged, never shown to the user.
type BackendError struct {
	Provider string
	Kind     string
	Status   int
	Reason   string
	Err      error
}

func (e *BackendError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s backend %s failure: status=%d %s", e.Provider, e.Kind, e.Status, e.Reason)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s backend %s failure: %v", e.Provider, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s backend %s failure: %s", e.Provider, e.Kind, e.Reason)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}
