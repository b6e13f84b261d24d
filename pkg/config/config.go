package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

// FlexibleStringSlice is a []string that also accepts JSON numbers,
// so allow_from can contain both "123" and 123.
type FlexibleStringSlice []string

func (f *FlexibleStringSlice) UnmarshalJSON(data []byte) error {
	var ss []string
	if err := json.Unmarshal(data, &ss); err == nil {
		*f = ss
		return nil
	}

	var raw []interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	result := make([]string, 0, len(raw))
	for _, v := range raw {
		switch val := v.(type) {
		case string:
			result = append(result, val)
		case float64:
			result = append(result, fmt.Sprintf("%.0f", val))
		default:
			result = append(result, fmt.Sprintf("%v", val))
		}
	}
	*f = result
	return nil
}

type Config struct {
	Channels  ChannelsConfig  `json:"channels"`
	Providers ProvidersConfig `json:"providers"`
	Dialog    DialogConfig    `json:"dialog"`
	Audit     AuditConfig     `json:"audit"`
}

type ChannelsConfig struct {
	Discord DiscordConfig `json:"discord"`
}

type DiscordConfig struct {
	Token     string              `json:"token" env:"HELPLINE_CHANNELS_DISCORD_TOKEN"`
	AllowFrom FlexibleStringSlice `json:"allow_from" env:"HELPLINE_CHANNELS_DISCORD_ALLOW_FROM"`
}

type ProvidersConfig struct {
	GigaChat GigaChatConfig `json:"gigachat"`
}

// GigaChatConfig carries backend credentials and request tuning. Either
// AuthKey (ready Base64(client_id:client_secret)) or the id/secret pair
// must be present; startup fails otherwise.
type GigaChatConfig struct {
	AuthKey        string  `json:"auth_key" env:"GIGACHAT_AUTH_KEY"`
	ClientID       string  `json:"client_id" env:"GIGACHAT_CLIENT_ID"`
	ClientSecret   string  `json:"client_secret" env:"GIGACHAT_CLIENT_SECRET"`
	Scope          string  `json:"scope" env:"GIGACHAT_SCOPE"`
	Model          string  `json:"model" env:"GIGACHAT_MODEL"`
	APIBase        string  `json:"api_base" env:"GIGACHAT_API_BASE"`
	AuthURL        string  `json:"auth_url" env:"GIGACHAT_AUTH_URL"`
	Temperature    float64 `json:"temperature" env:"HELPLINE_PROVIDERS_GIGACHAT_TEMPERATURE"`
	TimeoutSeconds int     `json:"timeout_seconds" env:"HELPLINE_PROVIDERS_GIGACHAT_TIMEOUT_SECONDS"`
}

type DialogConfig struct {
	MaxTurns int `json:"max_turns" env:"HELPLINE_DIALOG_MAX_TURNS"`
}

type AuditConfig struct {
	Enabled       bool   `json:"enabled" env:"HELPLINE_AUDIT_ENABLED"`
	Path          string `json:"path" env:"HELPLINE_AUDIT_PATH"`
	RetentionDays int    `json:"retention_days" env:"HELPLINE_AUDIT_RETENTION_DAYS"`
	SweepSchedule string `json:"sweep_schedule" env:"HELPLINE_AUDIT_SWEEP_SCHEDULE"`
}

func DefaultConfig() *Config {
	return &Config{
		Channels: ChannelsConfig{
			Discord: DiscordConfig{
				Token:     "",
				AllowFrom: FlexibleStringSlice{},
			},
		},
		Providers: ProvidersConfig{
			GigaChat: GigaChatConfig{
				Scope:          "GIGACHAT_API_PERS",
				Model:          "GigaChat-Pro",
				APIBase:        "https://gigachat.devices.sberbank.ru/api",
				AuthURL:        "https://ngw.devices.sberbank.ru:9443/api/v2/oauth",
				Temperature:    0.3,
				TimeoutSeconds: 30,
			},
		},
		Dialog: DialogConfig{
			MaxTurns: 8,
		},
		Audit: AuditConfig{
			Enabled:       true,
			Path:          "~/.helpline/audit.db",
			RetentionDays: 90,
			SweepSchedule: "0 3 * * *",
		},
	}
}

// LoadConfig reads the JSON config at path (missing file means defaults)
// and then applies environment variable overrides.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	} else if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func SaveConfig(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}
