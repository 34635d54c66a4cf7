// Package config loads the runtime configuration from defaults, an optional file and CREW_ prefixed env
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every env override, llm.model is read from CREW_LLM_MODEL
const EnvPrefix = "CREW"

const (
	OpenAIProvider    = "openai"
	AnthropicProvider = "anthropic"
	SerperProvider    = "serper"
	SearxngProvider   = "searxng"

	MemoryCache = "memory"
	RedisCache  = "redis"
	NoCache     = "none"
)

type Config struct {
	LLM      LLMConfig      `mapstructure:"llm"`
	Search   SearchConfig   `mapstructure:"search"`
	Currency CurrencyConfig `mapstructure:"currency"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Log      LogConfig      `mapstructure:"log"`
	Crew     CrewConfig     `mapstructure:"crew"`
}

type LLMConfig struct {
	Provider    string  `mapstructure:"provider" validate:"oneof=openai anthropic"`
	Model       string  `mapstructure:"model" validate:"required"`
	Temperature float32 `mapstructure:"temperature" validate:"gte=0,lte=2"`
	MaxTokens   int     `mapstructure:"max_tokens" validate:"gte=0"`
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
}

type SearchConfig struct {
	Provider string        `mapstructure:"provider" validate:"oneof=serper searxng"`
	Serper   SerperConfig  `mapstructure:"serper"`
	Searxng  SearxngConfig `mapstructure:"searxng"`
}

type SerperConfig struct {
	APIKey     string `mapstructure:"api_key"`
	BaseURL    string `mapstructure:"base_url"`
	MaxResults int    `mapstructure:"max_results" validate:"gte=0,lte=100"`
}

type SearxngConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	Language   string `mapstructure:"language"`
	MaxResults int    `mapstructure:"max_results" validate:"gte=0"`
}

type CurrencyConfig struct {
	APIKey    string        `mapstructure:"api_key"`
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	Cache     string        `mapstructure:"cache" validate:"oneof=memory redis none"`
	CacheTTL  time.Duration `mapstructure:"cache_ttl"`
	RateLimit float64       `mapstructure:"rate_limit"`
	RateBurst int           `mapstructure:"rate_burst" validate:"gte=0"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
}

type CrewConfig struct {
	// SpecsDir overrides the embedded agents.yaml and tasks.yaml
	SpecsDir  string `mapstructure:"specs_dir"`
	OutputDir string `mapstructure:"output_dir"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func setDefaults(v *viper.Viper) {
	v.SetDefault("llm.provider", OpenAIProvider)
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.max_tokens", 4096)
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("search.provider", SerperProvider)
	v.SetDefault("search.serper.api_key", "")
	v.SetDefault("search.serper.base_url", "https://google.serper.dev")
	v.SetDefault("search.serper.max_results", 10)
	v.SetDefault("search.searxng.base_url", "http://localhost:8080")
	v.SetDefault("search.searxng.language", "")
	v.SetDefault("search.searxng.max_results", 10)
	v.SetDefault("currency.api_key", "")
	v.SetDefault("currency.base_url", "https://v6.exchangerate-api.com/v6")
	v.SetDefault("currency.timeout", 10*time.Second)
	v.SetDefault("currency.cache", MemoryCache)
	v.SetDefault("currency.cache_ttl", time.Hour)
	v.SetDefault("currency.rate_limit", 5.0)
	v.SetDefault("currency.rate_burst", 1)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "research-crew:rates:")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("crew.specs_dir", "")
	v.SetDefault("crew.output_dir", "")
}

// Load reads the config file at path, if any, then applies env overrides.
// Provider api keys also fall back to their conventional env names.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, fallback := range map[string]string{
		"search.serper.api_key": "SERPER_API_KEY",
		"currency.api_key":      "EXCHANGE_RATE_API_KEY",
	} {
		if err := v.BindEnv(key, envKey(key), fallback); err != nil {
			return nil, err
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	cfg := new(Config)
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.LLM.resolveCredentials()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func envKey(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

func (c *LLMConfig) resolveCredentials() {
	switch c.Provider {
	case OpenAIProvider:
		if c.APIKey == "" {
			c.APIKey = os.Getenv("OPENAI_API_KEY")
		}
		if c.BaseURL == "" {
			c.BaseURL = os.Getenv("OPENAI_API_BASE_URL")
		}
	case AnthropicProvider:
		if c.APIKey == "" {
			c.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
	}
}
