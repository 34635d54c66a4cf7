package searxng

import (
	"net/http"

	"github.com/bububa/research-crew/tools"
)

const (
	DefaultMaxResults = 10
	DefaultEngines    = "bing,duckduckgo,google,startpage,yandex"
)

type Option func(*Config)

func WithBaseURL(baseURL string) Option {
	return func(c *Config) {
		c.baseURL = baseURL
	}
}

func WithLanguage(lang string) Option {
	return func(c *Config) {
		c.language = lang
	}
}

func WithEngines(engines string) Option {
	return func(c *Config) {
		c.engines = engines
	}
}

func WithMaxResults(n int) Option {
	return func(c *Config) {
		c.maxResults = n
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
