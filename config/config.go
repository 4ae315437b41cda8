package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	ProviderGroq     = "groq"
	ProviderOpenAI   = "openai"
	ProviderDeepSeek = "deepseek"

	RateProviderExchangeRate = "exchangerate"
	RateProviderYahoo        = "yahoo"
)

type Config struct {
	ProjectDir string `json:"project_dir" envconfig:"PROJECT_DIR"`
	ResultsDir string `json:"results_dir" envconfig:"RESULTS_DIR"`
	DataDir    string `json:"data_dir" envconfig:"DATA_DIR"`

	LLMProvider          string  `json:"llm_provider" envconfig:"LLM_PROVIDER" default:"groq"`
	LLMModel             string  `json:"llm_model" envconfig:"LLM_MODEL"`
	LLMBaseURL           string  `json:"llm_base_url" envconfig:"LLM_BASE_URL"`
	LLMAPIKey            string  `json:"llm_api_key" envconfig:"LLM_API_KEY"`
	LLMMaxTokens         int     `json:"llm_max_tokens" envconfig:"LLM_MAX_TOKENS" default:"4096"`
	LLMRequestsPerMinute int     `json:"llm_requests_per_minute" envconfig:"LLM_REQUESTS_PER_MINUTE" default:"30"`
	AnalystTemperature   float32 `json:"analyst_temperature" envconfig:"ANALYST_TEMPERATURE" default:"0.3"`
	ReporterTemperature  float32 `json:"reporter_temperature" envconfig:"REPORTER_TEMPERATURE" default:"0.2"`

	// Market data API configuration
	RateProvider        string        `json:"rate_provider" envconfig:"RATE_PROVIDER" default:"exchangerate"`
	ExchangeRateAPIKey  string        `json:"exchange_rate_api_key" envconfig:"EXCHANGE_RATE_API_KEY"`
	ExchangeRateBaseURL string        `json:"exchange_rate_base_url" envconfig:"EXCHANGE_RATE_BASE_URL" default:"https://v6.exchangerate-api.com"`
	NewsAPIKey          string        `json:"news_api_key" envconfig:"NEWS_API_KEY"`
	NewsAPIBaseURL      string        `json:"news_api_base_url" envconfig:"NEWS_API_BASE_URL" default:"https://newsapi.org"`
	NewsPageSize        int           `json:"news_page_size" envconfig:"NEWS_PAGE_SIZE" default:"3"`
	HTTPTimeout         time.Duration `json:"http_timeout" envconfig:"HTTP_TIMEOUT" default:"30s"`

	HistoryEnabled bool   `json:"history_enabled" envconfig:"HISTORY_ENABLED" default:"true"`
	LogLevel       string `json:"log_level" envconfig:"LOG_LEVEL" default:"info"`
	LogFile        string `json:"log_file" envconfig:"LOG_FILE"`
	Debug          bool   `json:"debug" envconfig:"MONEYSCOPE_DEBUG"`

	// Eino Debug configuration
	EinoDebugEnabled bool `json:"eino_debug_enabled" envconfig:"EINO_DEBUG_ENABLED"`
	EinoDebugPort    int  `json:"eino_debug_port" envconfig:"EINO_DEBUG_PORT" default:"52538"`

	TelegramBotToken string `json:"telegram_bot_token" envconfig:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID   int64  `json:"telegram_chat_id" envconfig:"TELEGRAM_CHAT_ID"`
}

// Load builds the configuration from defaults, an optional .env file and the
// process environment, in that order.
func Load() (*Config, error) {
	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

// DefaultConfig is Load without the error; environment parse failures leave
// the affected fields at their defaults.
func DefaultConfig() *Config {
	cfg, err := Load()
	if err != nil {
		return DefaultConfigWithRoot("")
	}
	return cfg
}

// DefaultConfigWithRoot returns the built-in defaults rooted at dir, ignoring
// the environment.
func DefaultConfigWithRoot(dir string) *Config {
	cfg := &Config{
		ProjectDir:           dir,
		LLMProvider:          ProviderGroq,
		LLMMaxTokens:         4096,
		LLMRequestsPerMinute: 30,
		AnalystTemperature:   0.3,
		ReporterTemperature:  0.2,
		RateProvider:         RateProviderExchangeRate,
		ExchangeRateBaseURL:  "https://v6.exchangerate-api.com",
		NewsAPIBaseURL:       "https://newsapi.org",
		NewsPageSize:         3,
		HTTPTimeout:          30 * time.Second,
		HistoryEnabled:       true,
		LogLevel:             "info",
		EinoDebugPort:        52538,
	}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.ProjectDir == "" {
		c.ProjectDir, _ = os.Getwd()
	}
	if c.ResultsDir == "" {
		c.ResultsDir = filepath.Join(c.ProjectDir, "results")
	}
	if c.DataDir == "" {
		c.DataDir = filepath.Join(c.ProjectDir, "data")
	}

	c.LLMProvider = strings.ToLower(strings.TrimSpace(c.LLMProvider))
	switch c.LLMProvider {
	case ProviderGroq:
		if c.LLMBaseURL == "" {
			c.LLMBaseURL = "https://api.groq.com/openai/v1"
		}
		if c.LLMModel == "" {
			c.LLMModel = "llama3-70b-8192"
		}
		if c.LLMAPIKey == "" {
			c.LLMAPIKey = os.Getenv("GROQ_API_KEY")
		}
	case ProviderOpenAI:
		if c.LLMModel == "" {
			c.LLMModel = "gpt-4o-mini"
		}
		if c.LLMAPIKey == "" {
			c.LLMAPIKey = os.Getenv("OPENAI_API_KEY")
		}
	case ProviderDeepSeek:
		if c.LLMModel == "" {
			c.LLMModel = "deepseek-chat"
		}
		if c.LLMAPIKey == "" {
			c.LLMAPIKey = os.Getenv("DEEPSEEK_API_KEY")
		}
	}
}

// followProvider drops the endpoint, model and key carried over from prev
// when the LLM provider changed, so the new provider's defaults apply.
// Values that differ from prev were set on purpose and are kept.
func (c *Config) followProvider(prev Config) {
	c.LLMProvider = strings.ToLower(strings.TrimSpace(c.LLMProvider))
	if c.LLMProvider == prev.LLMProvider {
		return
	}
	if c.LLMBaseURL == prev.LLMBaseURL {
		c.LLMBaseURL = ""
	}
	if c.LLMModel == prev.LLMModel {
		c.LLMModel = ""
	}
	if c.LLMAPIKey == prev.LLMAPIKey {
		c.LLMAPIKey = ""
	}
	c.applyDefaults()
}

func (c *Config) Validate() error {
	var errs []error
	switch c.LLMProvider {
	case ProviderGroq, ProviderOpenAI, ProviderDeepSeek:
	default:
		errs = append(errs, fmt.Errorf("unsupported llm_provider %q", c.LLMProvider))
	}
	switch c.RateProvider {
	case RateProviderExchangeRate, RateProviderYahoo:
	default:
		errs = append(errs, fmt.Errorf("unsupported rate_provider %q", c.RateProvider))
	}
	if c.AnalystTemperature < 0 || c.AnalystTemperature > 2 {
		errs = append(errs, fmt.Errorf("analyst_temperature must be within [0, 2]"))
	}
	if c.ReporterTemperature < 0 || c.ReporterTemperature > 2 {
		errs = append(errs, fmt.Errorf("reporter_temperature must be within [0, 2]"))
	}
	if c.NewsPageSize <= 0 {
		errs = append(errs, fmt.Errorf("news_page_size must be positive"))
	}
	if c.LLMRequestsPerMinute <= 0 {
		errs = append(errs, fmt.Errorf("llm_requests_per_minute must be positive"))
	}
	if c.HTTPTimeout < 0 {
		errs = append(errs, fmt.Errorf("http_timeout must not be negative"))
	}
	if strings.TrimSpace(c.ResultsDir) == "" {
		errs = append(errs, fmt.Errorf("results_dir is required"))
	}
	return errors.Join(errs...)
}

// MissingKeys lists the credentials an analysis needs that are not set. The
// yahoo rate provider needs no exchange rate key.
func (c *Config) MissingKeys() []string {
	var missing []string
	if c.RateProvider != RateProviderYahoo && strings.TrimSpace(c.ExchangeRateAPIKey) == "" {
		missing = append(missing, "Exchange Rate API Key")
	}
	if strings.TrimSpace(c.NewsAPIKey) == "" {
		missing = append(missing, "News API Key")
	}
	if strings.TrimSpace(c.LLMAPIKey) == "" {
		missing = append(missing, "LLM API Key")
	}
	return missing
}

func (c *Config) HistoryDBPath() string {
	return filepath.Join(c.DataDir, "history.db")
}

func (c *Config) EnsureDirectories() error {
	dirs := []string{c.ResultsDir, c.DataDir}
	for _, dir := range dirs {
		path := strings.TrimSpace(dir)
		if path == "" {
			continue
		}
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", path, err)
		}
	}
	return nil
}
