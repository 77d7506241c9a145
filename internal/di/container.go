package di

import (
	"context"
	"errors"
	"fmt"

	"intent-resolver/internal/application/port/output"
	"intent-resolver/internal/application/service"
	"intent-resolver/internal/infrastructure/browser/htmldoc"
	"intent-resolver/internal/infrastructure/browser/rod"
	"intent-resolver/internal/infrastructure/env"
	"intent-resolver/internal/infrastructure/llm/openrouter"
	"intent-resolver/internal/infrastructure/logger"
	"intent-resolver/internal/infrastructure/metrics"
	"intent-resolver/internal/usecase/executor"
	"intent-resolver/internal/usecase/nlparse"
	"intent-resolver/internal/usecase/search"
)

var ErrNoPageSource = errors.New("either an HTML file or a URL is required")

type Container struct {
	Config      env.ResolverConfig
	Logger      output.LoggerPort
	Metrics     *metrics.Prometheus
	Annotations *service.AnnotationRegistry
	Inventory   output.ElementInventory
	Backend     output.ActionBackend
	Screenshots output.ScreenshotPort
	Engine      *search.Engine
	Parser      *nlparse.Parser
	Executor    *executor.UseCase

	// DryRun is set when the page comes from an HTML file.
	DryRun  *htmldoc.DryRunBackend
	browser *rod.BrowserAdapter
}

type Config struct {
	// ConfigPath overrides RESOLVER_CONFIG.
	ConfigPath string
	HTMLPath   string
	URL        string
	Headless   bool

	LogLevel  string
	LogStderr bool
	// Quiet disables the log file entirely.
	Quiet bool
}

// NewContainer собирает зависимости: config → logger → inventory/backend →
// engine → parser → executor. Страница берётся из HTMLPath или URL.
func NewContainer(ctx context.Context, cfg Config, conf output.ConfigPort) (*Container, error) {
	if cfg.HTMLPath == "" && cfg.URL == "" {
		return nil, ErrNoPageSource
	}

	configPath := cfg.ConfigPath
	if configPath == "" {
		configPath = conf.Get(env.EnvConfigPath)
	}
	rc, err := env.LoadResolverConfig(configPath, conf)
	if err != nil {
		return nil, err
	}

	log, err := newLogger(cfg, conf)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	c := &Container{
		Config:      rc,
		Logger:      log,
		Metrics:     metrics.New(),
		Annotations: service.NewAnnotationRegistry(),
		Parser:      nlparse.New(),
	}
	c.Annotations.RegisterAll(rc.Annotations)

	if err := c.openPage(ctx, cfg); err != nil {
		c.Close()
		return nil, err
	}

	c.Engine = search.New(rc.Search, log, c.Annotations, c.Metrics)

	elements, err := c.Inventory.Elements(ctx)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to list page elements: %w", err)
	}
	c.Engine.UpdateElements(elements)

	c.Executor = executor.New(rc.Executor, executor.Deps{
		Parser:      c.Parser,
		Engine:      c.Engine,
		Backend:     c.Backend,
		Inventory:   c.Inventory,
		Screenshots: c.Screenshots,
		Rewriter:    newRewriter(conf, c.Inventory, log),
		Metrics:     c.Metrics,
		Logger:      log,
	})

	log.Info("Container ready", "elements", len(elements), "html", cfg.HTMLPath, "url", cfg.URL)
	return c, nil
}

func newLogger(cfg Config, conf output.ConfigPort) (output.LoggerPort, error) {
	if cfg.Quiet {
		return logger.NewNopLogger(), nil
	}
	opts := logger.DefaultOptions()
	opts.Level = conf.GetWithDefault(env.EnvLogLevel, opts.Level)
	if cfg.LogLevel != "" {
		opts.Level = cfg.LogLevel
	}
	opts.Stderr = cfg.LogStderr
	return logger.NewLoggerAdapter("resolver", opts)
}

func (c *Container) openPage(ctx context.Context, cfg Config) error {
	if cfg.HTMLPath != "" {
		doc, err := htmldoc.LoadFile(cfg.HTMLPath)
		if err != nil {
			return err
		}
		c.DryRun = htmldoc.NewDryRunBackend(doc)
		c.Inventory = doc
		c.Backend = c.DryRun
		return nil
	}

	browserCfg := rod.DefaultConfig()
	browserCfg.Headless = cfg.Headless
	browser, err := rod.NewBrowserAdapter(ctx, browserCfg)
	if err != nil {
		return fmt.Errorf("failed to create browser: %w", err)
	}
	c.browser = browser

	if err := browser.Navigate(ctx, cfg.URL); err != nil {
		return err
	}
	c.Inventory = browser
	c.Backend = browser
	c.Screenshots = browser
	return nil
}

// newRewriter returns nil unless an OpenRouter key is configured.
func newRewriter(conf output.ConfigPort, inventory output.ElementInventory, log output.LoggerPort) output.InstructionRewriter {
	apiKey := conf.Get(env.EnvOpenRouterKey)
	if apiKey == "" {
		return nil
	}
	llmCfg := openrouter.DefaultConfig(apiKey, conf.GetWithDefault(env.EnvOpenRouterModel, "openai/gpt-4o-mini"))
	llmCfg.Inventory = inventory
	llmCfg.Logger = log
	return openrouter.NewRewriter(llmCfg)
}

func (c *Container) Close() {
	if c.browser != nil {
		c.browser.Close()
	}
	if c.Logger != nil {
		c.Logger.Close()
	}
}
