package serper

import (
	"net/http"
	"time"

	"github.com/bububa/research-crew/tools"
)

const (
	DefaultBaseURL = "https://google.serper.dev"
	// APIKeyEnv is the environment variable holding the serper api key
	APIKeyEnv         = "SERPER_API_KEY"
	DefaultMaxResults = 10
	DefaultTimeout    = 15 * time.Second
)

type Option func(*Config)

func WithAPIKey(key string) Option {
	return func(c *Config) {
		c.apiKey = key
	}
}

func WithBaseURL(baseURL string) Option {
	return func(c *Config) {
		c.baseURL = baseURL
	}
}

func WithMaxResults(n int) Option {
	return func(c *Config) {
		c.maxResults = n
	}
}

// WithCountry sets the gl parameter
func WithCountry(country string) Option {
	return func(c *Config) {
		c.country = country
	}
}

// WithLocale sets the hl parameter
func WithLocale(locale string) Option {
	return func(c *Config) {
		c.locale = locale
	}
}

func WithHttpClient(clt *http.Client) Option {
	return func(c *Config) {
		c.httpClient = clt
	}
}

func WithToolOptions(opts ...tools.Option) Option {
	return func(c *Config) {
		for _, opt := range opts {
			opt(&c.Config)
		}
	}
}
