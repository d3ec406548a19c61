package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/womenwealthwave/wealthwave/internal/config"
)

// Router sends requests to the primary provider and falls back through the
// remaining providers in order when it fails.
type Router struct {
	mu         sync.RWMutex
	providers  map[string]LLMProvider
	primary    string
	fallbacks  []string
	maxRetries int
	retryDelay time.Duration
	log        logrus.FieldLogger
}

// RouterOption configures the router.
type RouterOption func(*Router)

// WithFallbacks sets the fallback provider chain.
func WithFallbacks(providers ...string) RouterOption {
	return func(r *Router) { r.fallbacks = providers }
}

// WithMaxRetries sets how many times a failing provider is retried before
// moving on. The default is zero: a failure goes straight to the next
// provider.
func WithMaxRetries(n int) RouterOption {
	return func(r *Router) { r.maxRetries = n }
}

// WithRetryDelay sets the base delay between retries.
func WithRetryDelay(d time.Duration) RouterOption {
	return func(r *Router) { r.retryDelay = d }
}

// WithLogger sets the router's logger.
func WithLogger(log logrus.FieldLogger) RouterOption {
	return func(r *Router) {
		if log != nil {
			r.log = log
		}
	}
}

// NewRouter creates a new LLM router with the given primary provider.
func NewRouter(primary string, opts ...RouterOption) *Router {
	l := logrus.New()
	l.SetLevel(logrus.WarnLevel)
	r := &Router{
		providers:  make(map[string]LLMProvider),
		primary:    primary,
		retryDelay: time.Second,
		log:        l,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.WithField("component", "llm")
	return r
}

// RegisterProvider adds a provider to the router.
func (r *Router) RegisterProvider(provider LLMProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[provider.Name()] = provider
}

// GetProvider returns a registered provider by name.
func (r *Router) GetProvider(name string) (LLMProvider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[name]
	return p, ok
}

// Primary returns the primary provider.
func (r *Router) Primary() (LLMProvider, error) {
	p, ok := r.GetProvider(r.primary)
	if !ok {
		return nil, fmt.Errorf("%w: primary provider %q not registered", ErrNoProviders, r.primary)
	}
	return p, nil
}

// Chat routes a chat request through the provider chain with fallback.
func (r *Router) Chat(ctx context.Context, messages []Message, opts *ChatOptions) (*Response, error) {
	var lastErr error
	tried := 0
	for _, name := range r.providerChain() {
		provider, ok := r.GetProvider(name)
		if !ok {
			continue
		}
		tried++

		resp, err := r.chatWithRetry(ctx, provider, messages, opts)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		r.log.WithError(err).WithField("provider", name).Warn("provider failed, trying next")

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if isNonRetryable(err) {
			return nil, err
		}
	}

	if tried == 0 {
		return nil, ErrNoProviders
	}
	return nil, fmt.Errorf("llm/router: all providers failed, last error: %w", lastErr)
}

// HealthCheck pings all registered providers and returns their status.
func (r *Router) HealthCheck(ctx context.Context) map[string]error {
	r.mu.RLock()
	providers := make(map[string]LLMProvider, len(r.providers))
	for k, v := range r.providers {
		providers[k] = v
	}
	r.mu.RUnlock()

	results := make(map[string]error, len(providers))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for name, provider := range providers {
		wg.Add(1)
		go func(n string, p LLMProvider) {
			defer wg.Done()
			pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			err := p.Ping(pingCtx)
			mu.Lock()
			results[n] = err
			mu.Unlock()
		}(name, provider)
	}

	wg.Wait()
	return results
}

// Name returns the name of the primary provider (satisfies LLMProvider).
func (r *Router) Name() string {
	return "router/" + r.primary
}

// Models returns the union of models from all registered providers (satisfies LLMProvider).
func (r *Router) Models() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var all []string
	seen := make(map[string]bool)
	for _, name := range append([]string{r.primary}, r.fallbacks...) {
		p, ok := r.providers[name]
		if !ok {
			continue
		}
		for _, m := range p.Models() {
			if !seen[m] {
				seen[m] = true
				all = append(all, m)
			}
		}
	}
	return all
}

// Ping checks the primary provider's health (satisfies LLMProvider).
func (r *Router) Ping(ctx context.Context) error {
	p, err := r.Primary()
	if err != nil {
		return err
	}
	return p.Ping(ctx)
}

// ── Internal Helpers ──

func (r *Router) providerChain() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	chain := []string{r.primary}
	for _, fb := range r.fallbacks {
		if fb != r.primary {
			chain = append(chain, fb)
		}
	}
	return chain
}

func (r *Router) chatWithRetry(ctx context.Context, provider LLMProvider, messages []Message, opts *ChatOptions) (*Response, error) {
	var lastErr error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(r.retryDelay * time.Duration(attempt)):
			}
		}

		resp, err := provider.Chat(ctx, messages, opts)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if isNonRetryable(err) {
			return nil, err
		}
	}
	return nil, lastErr
}

// isNonRetryable reports errors that another attempt or provider cannot fix.
func isNonRetryable(err error) bool {
	return errors.Is(err, ErrContextLength)
}

// NewRouterFromConfig creates a Router from the application config. Ollama
// is always registered because it needs no key; OpenAI is registered when a
// key is configured. Whichever is not primary becomes the fallback.
func NewRouterFromConfig(cfg config.LLMConfig, log logrus.FieldLogger) (*Router, error) {
	router := NewRouter(cfg.Primary, WithLogger(log))

	modelFor := func(provider, fallback string) string {
		if cfg.Primary == provider {
			return cfg.Model
		}
		if cfg.FallbackModel != "" {
			return cfg.FallbackModel
		}
		return fallback
	}

	var fallbacks []string

	if cfg.OllamaURL != "" {
		router.RegisterProvider(NewOllamaProvider(cfg.OllamaURL,
			WithOllamaModel(modelFor(ProviderOllama, "qwen2:0.5b")),
			WithOllamaTimeout(cfg.Timeout()),
		))
		if cfg.Primary != ProviderOllama {
			fallbacks = append(fallbacks, ProviderOllama)
		}
	}

	if cfg.OpenAIKey != "" {
		p, err := NewOpenAIProvider(cfg.OpenAIKey,
			WithOpenAIBaseURL(cfg.OpenAIURL),
			WithOpenAIModel(modelFor(ProviderOpenAI, "gpt-4o-mini")),
			WithOpenAIHTTPClient(httpClient(cfg.Timeout())),
		)
		if err == nil {
			router.RegisterProvider(p)
			if cfg.Primary != ProviderOpenAI {
				fallbacks = append(fallbacks, ProviderOpenAI)
			}
		}
	}

	if _, ok := router.GetProvider(cfg.Primary); !ok {
		if len(fallbacks) == 0 {
			return nil, fmt.Errorf("%w: primary %q is not usable", ErrNoProviders, cfg.Primary)
		}
		router.log.WithField("primary", cfg.Primary).Warn("primary provider not configured, using fallback")
	}

	router.fallbacks = fallbacks
	return router, nil
}

func httpClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &http.Client{Timeout: timeout}
}
