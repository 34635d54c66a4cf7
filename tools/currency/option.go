package currency

import (
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/bububa/research-crew/tools"
)

const (
	// DefaultBaseURL is the exchangerate-api v6 endpoint
	DefaultBaseURL = "https://v6.exchangerate-api.com/v6"
	// APIKeyEnv is the environment variable holding the api key
	APIKeyEnv      = "EXCHANGE_RATE_API_KEY"
	DefaultTimeout = 10 * time.Second
	// DefaultCacheTTL caps how long a rate table is reused
	DefaultCacheTTL = time.Hour
	// DefaultRateLimit is the number of outbound requests allowed per second
	DefaultRateLimit = 5
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

func WithHttpClient(clt *http.Client) Option {
	return func(c *Config) {
		c.httpClient = clt
	}
}

// WithTimeout bounds each conversion, retries included
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.timeout = timeout
	}
}

func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *Config) {
		c.retry = p
	}
}

// WithCache replaces the default in-memory cache, nil disables caching
func WithCache(cache Cache) Option {
	return func(c *Config) {
		c.cache = cache
		c.cacheSet = true
	}
}

func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Config) {
		c.cacheTTL = ttl
	}
}

// WithRateLimit sets outbound requests per second, a non positive limit disables limiting
func WithRateLimit(limit float64, burst int) Option {
	return func(c *Config) {
		if limit <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(limit), burst)
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Config) {
		c.logger = logger
	}
}

// WithToolOptions applies generic tool options such as title or hooks
func WithToolOptions(opts ...tools.Option) Option {
	return func(c *Config) {
		for _, opt := range opts {
			opt(&c.Config)
		}
	}
}
