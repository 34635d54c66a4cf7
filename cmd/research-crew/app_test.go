package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bububa/research-crew/components/llm/anthropic"
	"github.com/bububa/research-crew/components/llm/openai"
	"github.com/bububa/research-crew/config"
	"github.com/bububa/research-crew/tools/searxng"
)

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	app := newApp()
	buf := new(bytes.Buffer)
	app.Writer = buf
	app.ErrWriter = new(bytes.Buffer)
	err := app.Run(append([]string{"research-crew", "--env-dir", t.TempDir()}, args...))
	return buf.String(), err
}

func TestConvertCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/test-key/latest/USD") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"result":"success","base_code":"USD","conversion_rates":{"USD":1,"EUR":0.92}}`))
	}))
	defer srv.Close()
	t.Setenv("EXCHANGE_RATE_API_KEY", "test-key")
	t.Setenv("CREW_CURRENCY_BASE_URL", srv.URL)
	t.Setenv("CREW_CURRENCY_CACHE", config.NoCache)
	t.Setenv("CREW_LOG_LEVEL", "error")

	out, err := runApp(t, "convert", "--amount", "100", "--from", "usd", "--to", "EUR")
	require.NoError(t, err)
	assert.Equal(t, "100 USD is equivalent to 92.00 EUR\n", out)

	out, err = runApp(t, "convert", "--amount", "50", "--from", "USD", "--to", "ZZZ")
	require.NoError(t, err)
	assert.Equal(t, "Invalid currency code: ZZZ\n", out)
}

func TestConvertCommandInvalidInput(t *testing.T) {
	t.Setenv("EXCHANGE_RATE_API_KEY", "test-key")
	t.Setenv("CREW_LOG_LEVEL", "error")
	_, err := runApp(t, "convert", "--amount", "-1", "--from", "USD", "--to", "EUR")
	assert.Error(t, err)
}

func TestRunCommandRequiresTopic(t *testing.T) {
	t.Setenv("CREW_LOG_LEVEL", "error")
	_, err := runApp(t, "run")
	assert.ErrorContains(t, err, "topic")
}

func TestNewLLMClient(t *testing.T) {
	clt, err := newLLMClient(config.LLMConfig{Provider: config.OpenAIProvider, APIKey: "k"})
	require.NoError(t, err)
	assert.IsType(t, &openai.Client{}, clt)

	clt, err = newLLMClient(config.LLMConfig{Provider: config.AnthropicProvider, APIKey: "k"})
	require.NoError(t, err)
	assert.IsType(t, &anthropic.Client{}, clt)

	_, err = newLLMClient(config.LLMConfig{Provider: config.OpenAIProvider})
	assert.ErrorContains(t, err, "no api key")
}

func TestNewSearchTool(t *testing.T) {
	logger := zap.NewNop()
	tool, err := newSearchTool(config.SearchConfig{Provider: config.SearxngProvider, Searxng: config.SearxngConfig{BaseURL: "http://searx.local"}}, logger)
	require.NoError(t, err)
	assert.IsType(t, &searxng.SearxngSearch{}, tool)

	t.Setenv("SERPER_API_KEY", "")
	_, err = newSearchTool(config.SearchConfig{Provider: config.SerperProvider}, logger)
	assert.Error(t, err)

	_, err = newSearchTool(config.SearchConfig{Provider: "bing"}, logger)
	assert.ErrorContains(t, err, "unsupported")
}

func TestNewResearchCrew(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "k")
	t.Setenv("EXCHANGE_RATE_API_KEY", "rate-key")
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Search.Provider = config.SearxngProvider
	rc, closeFn, err := newResearchCrew(cfg, zap.NewNop())
	require.NoError(t, err)
	defer closeFn()
	assert.Len(t, rc.Specs().TaskKeys(), 3)
}

func TestNewLogger(t *testing.T) {
	logger, err := newLogger(config.LogConfig{Level: "debug", Format: "json"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.DebugLevel))

	_, err = newLogger(config.LogConfig{Level: "loud", Format: "console"})
	assert.Error(t, err)
}
