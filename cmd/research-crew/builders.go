package main

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/bububa/research-crew/components"
	"github.com/bububa/research-crew/components/llm/anthropic"
	"github.com/bububa/research-crew/components/llm/openai"
	"github.com/bububa/research-crew/config"
	"github.com/bububa/research-crew/crew"
	"github.com/bububa/research-crew/tools"
	"github.com/bububa/research-crew/tools/currency"
	"github.com/bububa/research-crew/tools/searxng"
	"github.com/bububa/research-crew/tools/serper"
)

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	var zc zap.Config
	if cfg.Format == "json" {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	return zc.Build()
}

func newLLMClient(cfg config.LLMConfig) (components.LLMClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("no api key configured for llm provider %s", cfg.Provider)
	}
	switch cfg.Provider {
	case config.OpenAIProvider:
		return openai.New(cfg.APIKey, cfg.BaseURL), nil
	case config.AnthropicProvider:
		return anthropic.New(cfg.APIKey, cfg.BaseURL), nil
	}
	return nil, fmt.Errorf("unsupported llm provider %s", cfg.Provider)
}

// toolHooks logs every tool run at debug level
func toolHooks(logger *zap.Logger) []tools.Option {
	return []tools.Option{
		tools.WithHooks(tools.Hooks{
			Start: func(_ context.Context, t tools.AnonymousTool, input any) {
				logger.Debug("tool started", zap.String("tool", t.Title()), zap.Any("input", input))
			},
			Error: func(_ context.Context, t tools.AnonymousTool, _ any, err error) {
				logger.Warn("tool failed", zap.String("tool", t.Title()), zap.Error(err))
			},
		}),
	}
}

func newSearchTool(cfg config.SearchConfig, logger *zap.Logger) (tools.AnonymousTool, error) {
	switch cfg.Provider {
	case config.SerperProvider:
		return serper.New(
			serper.WithAPIKey(cfg.Serper.APIKey),
			serper.WithBaseURL(cfg.Serper.BaseURL),
			serper.WithMaxResults(cfg.Serper.MaxResults),
			serper.WithToolOptions(toolHooks(logger)...),
		)
	case config.SearxngProvider:
		return searxng.New(
			searxng.WithBaseURL(cfg.Searxng.BaseURL),
			searxng.WithLanguage(cfg.Searxng.Language),
			searxng.WithMaxResults(cfg.Searxng.MaxResults),
			searxng.WithToolOptions(toolHooks(logger)...),
		), nil
	}
	return nil, fmt.Errorf("unsupported search provider %s", cfg.Provider)
}

// newCurrencyTool builds the converter with the configured cache. The returned func releases the cache backend.
func newCurrencyTool(cfg *config.Config, logger *zap.Logger) (*currency.Tool, func(), error) {
	closeFn := func() {}
	opts := []currency.Option{
		currency.WithBaseURL(cfg.Currency.BaseURL),
		currency.WithTimeout(cfg.Currency.Timeout),
		currency.WithCacheTTL(cfg.Currency.CacheTTL),
		currency.WithRateLimit(cfg.Currency.RateLimit, cfg.Currency.RateBurst),
		currency.WithLogger(logger.Named("currency")),
		currency.WithToolOptions(toolHooks(logger)...),
	}
	if cfg.Currency.APIKey != "" {
		opts = append(opts, currency.WithAPIKey(cfg.Currency.APIKey))
	}
	switch cfg.Currency.Cache {
	case config.NoCache:
		opts = append(opts, currency.WithCache(nil))
	case config.RedisCache:
		rdb := redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs:    []string{cfg.Redis.Addr},
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		closeFn = func() { _ = rdb.Close() }
		opts = append(opts, currency.WithCache(currency.NewRedisCache(rdb, cfg.Redis.Prefix)))
	}
	tool, err := currency.New(opts...)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return tool, closeFn, nil
}

// newResearchCrew wires the crew from cfg. The returned func releases the converter cache backend.
func newResearchCrew(cfg *config.Config, logger *zap.Logger) (*crew.Crew, func(), error) {
	closeFn := func() {}
	clt, err := newLLMClient(cfg.LLM)
	if err != nil {
		return nil, closeFn, err
	}
	search, err := newSearchTool(cfg.Search, logger)
	if err != nil {
		return nil, closeFn, err
	}
	opts := []crew.Option{
		crew.WithModel(cfg.LLM.Model),
		crew.WithTemperature(cfg.LLM.Temperature),
		crew.WithMaxTokens(cfg.LLM.MaxTokens),
		crew.WithOutputDir(cfg.Crew.OutputDir),
		crew.WithLogger(logger.Named("crew")),
		crew.WithTaskEndHook(func(_ context.Context, out crew.TaskOutput) {
			fields := []zap.Field{zap.String("task", out.Name), zap.Int("chars", len(out.Raw))}
			if out.Usage != nil {
				fields = append(fields, zap.Int64("input_tokens", out.Usage.InputTokens), zap.Int64("output_tokens", out.Usage.OutputTokens))
			}
			logger.Info("task finished", fields...)
		}),
	}
	if dir := cfg.Crew.SpecsDir; dir != "" {
		specs, err := crew.LoadSpecsFromDir(dir)
		if err != nil {
			return nil, closeFn, err
		}
		opts = append(opts, crew.WithSpecs(specs))
	}
	// the converter is attached to the research task only when a key is configured
	if cfg.Currency.APIKey != "" {
		converter, release, err := newCurrencyTool(cfg, logger)
		if err != nil {
			return nil, closeFn, err
		}
		closeFn = release
		opts = append(opts, crew.WithTaskTools(crew.ResearchTask, converter))
	}
	rc, err := crew.NewResearchCrew(clt, search, opts...)
	if err != nil {
		closeFn()
		return nil, func() {}, err
	}
	return rc, closeFn, nil
}
