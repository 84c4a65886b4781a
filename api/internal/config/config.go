package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"mediclick/api/internal/analysis"
)

const (
	TransportSDK  = "sdk"
	TransportREST = "rest"
)

type Config struct {
	Server   ServerConfig
	Gemini   GeminiConfig
	App      AppConfig
	Telegram TelegramConfig
	LogLevel string
}

type ServerConfig struct {
	Host      string
	Port      string
	StaticDir string
}

type GeminiConfig struct {
	APIKey    string
	Model     string
	Transport string
	BaseURL   string
	Timeout   time.Duration
}

type AppConfig struct {
	ServiceName    string
	ModelLabel     string
	ProviderLabel  string
	PromptTemplate string
	MaxUploadBytes int64
}

type TelegramConfig struct {
	BotToken string
}

func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}

// Load reads the environment, with an optional .env file in the working
// directory underneath it.
func Load() (*Config, error) {
	return LoadFile(".env")
}

func LoadFile(envFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("HOST", "0.0.0.0")
	v.SetDefault("PORT", "8000")
	v.SetDefault("STATIC_DIR", "web")
	v.SetDefault("GEMINI_MODEL", "gemini-1.5-flash")
	v.SetDefault("GEMINI_TRANSPORT", TransportSDK)
	v.SetDefault("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com")
	v.SetDefault("INFERENCE_TIMEOUT", "60s")
	v.SetDefault("MAX_UPLOAD_BYTES", "20971520") // 20MB
	v.SetDefault("PROMPT_TEMPLATE", analysis.DefaultPromptTemplate)
	v.SetDefault("SERVICE_NAME", "MediClick")
	v.SetDefault("MODEL_LABEL", "Gemini 1.5 Flash")
	v.SetDefault("PROVIDER_LABEL", "Google AI Studio")
	v.SetDefault("LOG_LEVEL", "info")

	if envFile != "" {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read %s: %w", envFile, err)
			}
		}
	}
	v.AutomaticEnv()

	apiKey := strings.TrimSpace(v.GetString("GOOGLE_API_KEY"))
	if apiKey == "" {
		apiKey = strings.TrimSpace(v.GetString("GEMINI_API_KEY"))
	}
	if apiKey == "" {
		return nil, errors.New("missing required env GOOGLE_API_KEY")
	}

	timeout, err := time.ParseDuration(strings.TrimSpace(v.GetString("INFERENCE_TIMEOUT")))
	if err != nil {
		return nil, fmt.Errorf("bad INFERENCE_TIMEOUT: %w", err)
	}
	if timeout < 0 {
		return nil, fmt.Errorf("bad INFERENCE_TIMEOUT: %s is negative", timeout)
	}

	maxUpload, err := strconv.ParseInt(strings.TrimSpace(v.GetString("MAX_UPLOAD_BYTES")), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("bad MAX_UPLOAD_BYTES: %w", err)
	}
	if maxUpload < 0 {
		return nil, fmt.Errorf("bad MAX_UPLOAD_BYTES: %d is negative", maxUpload)
	}

	transport := strings.ToLower(strings.TrimSpace(v.GetString("GEMINI_TRANSPORT")))
	if transport != TransportSDK && transport != TransportREST {
		return nil, fmt.Errorf("bad GEMINI_TRANSPORT %q: use %q or %q", transport, TransportSDK, TransportREST)
	}

	tmpl := v.GetString("PROMPT_TEMPLATE")
	if strings.Count(tmpl, "%s") != 1 {
		return nil, fmt.Errorf("bad PROMPT_TEMPLATE: must contain exactly one %%s")
	}

	return &Config{
		Server: ServerConfig{
			Host:      v.GetString("HOST"),
			Port:      v.GetString("PORT"),
			StaticDir: v.GetString("STATIC_DIR"),
		},
		Gemini: GeminiConfig{
			APIKey:    apiKey,
			Model:     strings.TrimSpace(v.GetString("GEMINI_MODEL")),
			Transport: transport,
			BaseURL:   strings.TrimRight(v.GetString("GEMINI_BASE_URL"), "/"),
			Timeout:   timeout,
		},
		App: AppConfig{
			ServiceName:    v.GetString("SERVICE_NAME"),
			ModelLabel:     v.GetString("MODEL_LABEL"),
			ProviderLabel:  v.GetString("PROVIDER_LABEL"),
			PromptTemplate: tmpl,
			MaxUploadBytes: maxUpload,
		},
		Telegram: TelegramConfig{
			BotToken: strings.TrimSpace(v.GetString("TELEGRAM_BOT_TOKEN")),
		},
		LogLevel: v.GetString("LOG_LEVEL"),
	}, nil
}
