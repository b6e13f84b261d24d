package providers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dotsetgreg/helpline/pkg/config"
	"github.com/google/uuid"
)

const (
	ProviderGigaChat = "gigachat"

	// Refresh the OAuth token slightly before the server-side expiry.
	tokenExpiryLeeway = 15 * time.Second
)

func init() {
	RegisterFactory(ProviderGigaChat, newGigaChatFromConfig, validateGigaChatConfig)
}

// resolveAuthKey returns the Basic auth material: either the ready
// Base64(client_id:client_secret) key, or one assembled from the pair.
func resolveAuthKey(cfg config.GigaChatConfig) (string, error) {
	if key := strings.TrimSpace(cfg.AuthKey); key != "" {
		return key, nil
	}
	cid := strings.TrimSpace(cfg.ClientID)
	csec := strings.TrimSpace(cfg.ClientSecret)
	if cid != "" && csec != "" {
		return base64.StdEncoding.EncodeToString([]byte(cid + ":" + csec)), nil
	}
	return "", fmt.Errorf("%w: set GIGACHAT_AUTH_KEY or GIGACHAT_CLIENT_ID + GIGACHAT_CLIENT_SECRET", ErrMissingCredential)
}

func validateGigaChatConfig(cfg *config.Config) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	_, err := resolveAuthKey(cfg.Providers.GigaChat)
	return err
}

// gigaChatTokenSource exchanges the Basic auth key for a short-lived access
// token and caches it until shortly before expiry.
type gigaChatTokenSource struct {
	authURL string
	authKey string
	scope   string
	client  *http.Client

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

func (s *gigaChatTokenSource) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && time.Now().Before(s.expiresAt.Add(-tokenExpiryLeeway)) {
		return s.token, nil
	}

	form := url.Values{"scope": {s.scope}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.authURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create oauth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("RqUID", uuid.NewString())
	req.Header.Set("Authorization", "Basic "+s.authKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send oauth request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read oauth response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("oauth status %d: %s", resp.StatusCode, extractAPIError(body))
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresAt   int64  `json:"expires_at"` // unix ms
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("parse oauth response: %w", err)
	}
	if payload.AccessToken == "" {
		return "", fmt.Errorf("oauth response carries no access token")
	}

	s.token = payload.AccessToken
	if payload.ExpiresAt > 0 {
		s.expiresAt = time.UnixMilli(payload.ExpiresAt)
	} else {
		s.expiresAt = time.Now().Add(25 * time.Minute)
	}
	return s.token, nil
}

func (s *gigaChatTokenSource) Source() string {
	return "gigachat_oauth"
}

type gigaChatProvider struct {
	apiBase      string
	defaultModel string
	temperature  float64
	auth         AuthStrategy
	httpClient   *http.Client
}

func newGigaChatFromConfig(cfg *config.Config) (LLMProvider, error) {
	gc := cfg.Providers.GigaChat

	authKey, err := resolveAuthKey(gc)
	if err != nil {
		return nil, err
	}

	apiBase := strings.TrimRight(strings.TrimSpace(gc.APIBase), "/")
	if apiBase == "" {
		return nil, fmt.Errorf("gigachat API base not configured")
	}
	authURL := strings.TrimSpace(gc.AuthURL)
	if authURL == "" {
		return nil, fmt.Errorf("gigachat auth URL not configured")
	}

	timeout := time.Duration(gc.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := &http.Client{Timeout: timeout}

	source := &gigaChatTokenSource{
		authURL: authURL,
		authKey: authKey,
		scope:   gc.Scope,
		client:  client,
	}

	return &gigaChatProvider{
		apiBase:      apiBase,
		defaultModel: strings.TrimSpace(gc.Model),
		temperature:  gc.Temperature,
		auth:         NewBearerTokenAuth(source),
		httpClient:   client,
	}, nil
}

func (p *gigaChatProvider) GetDefaultModel() string {
	if p == nil {
		return ""
	}
	return p.defaultModel
}

// Chat performs a single completion attempt. No retry: any failure maps to
// a BackendError and the caller falls back locally.
func (p *gigaChatProvider) Chat(ctx context.Context, messages []Message, model string, options map[string]interface{}) (*LLMResponse, error) {
	if p == nil {
		return nil, fmt.Errorf("provider not initialized")
	}

	model = strings.TrimSpace(model)
	if model == "" {
		model = p.defaultModel
	}
	temperature := p.temperature
	if t, ok := optionAsFloat(options, "temperature"); ok {
		temperature = t
	}

	requestBody := map[string]interface{}{
		"model":       model,
		"messages":    messages,
		"temperature": temperature,
		"stream":      false,
	}
	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return nil, &BackendError{Provider: ProviderGigaChat, Kind: FailurePayload, Err: err}
	}

	endpoint := p.apiBase + "/v1/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, &BackendError{Provider: ProviderGigaChat, Kind: FailurePayload, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if err := p.auth.Apply(ctx, req); err != nil {
		return nil, &BackendError{Provider: ProviderGigaChat, Kind: FailureAuth, Err: err}
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		kind := FailureStatus
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			kind = FailureTimeout
		}
		return nil, &BackendError{Provider: ProviderGigaChat, Kind: kind, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &BackendError{Provider: ProviderGigaChat, Kind: FailurePayload, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &BackendError{
			Provider: ProviderGigaChat,
			Kind:     FailureStatus,
			Status:   resp.StatusCode,
			Reason:   extractAPIError(body),
		}
	}

	var apiResponse struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &apiResponse); err != nil {
		return nil, &BackendError{Provider: ProviderGigaChat, Kind: FailurePayload, Err: err}
	}
	if len(apiResponse.Choices) == 0 {
		return nil, &BackendError{Provider: ProviderGigaChat, Kind: FailurePayload, Reason: "response carries no choices"}
	}

	return &LLMResponse{Content: apiResponse.Choices[0].Message.Content}, nil
}

func isTimeout(err error) bool {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return uerr.Timeout()
	}
	return false
}

func optionAsFloat(opts map[string]interface{}, key string) (float64, bool) {
	if len(opts) == 0 {
		return 0, false
	}
	v, ok := opts[key]
	if !ok || v == nil {
		return 0, false
	}
	switch vv := v.(type) {
	case float64:
		return vv, true
	case float32:
		return float64(vv), true
	case int:
		return float64(vv), true
	case int64:
		return float64(vv), true
	default:
		return 0, false
	}
}

func extractAPIError(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return "empty response body"
	}

	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if msg := strings.TrimSpace(payload.Error.Message); msg != "" {
			return msg
		}
		if msg := strings.TrimSpace(payload.Message); msg != "" {
			return msg
		}
	}

	if len(trimmed) > 2000 {
		return trimmed[:2000] + "..."
	}
	return trimmed
}
