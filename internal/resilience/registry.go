package resilience

import (
	"context"
	"fmt"

	"github.com/jonathan/nba-ingest/internal/metrics"
	"github.com/jonathan/nba-ingest/internal/ratelimit"
)

// SourceConfig bundles the per-source resilience settings.
type SourceConfig struct {
	Rate    ratelimit.SourceRate
	Breaker BreakerConfig
	Retry   RetryConfig
}

// Registry owns the limiter and one breaker per source. It is constructed
// once at startup and passed by handle to every call site, so there is no
// ambient global state.
type Registry struct {
	limiter  *ratelimit.Limiter
	breakers map[string]*Breaker
	retries  map[string]RetryConfig
	metrics  *metrics.Metrics
}

// NewRegistry builds the registry for the configured sources. m may be nil in
// tests.
func NewRegistry(sources map[string]SourceConfig, m *metrics.Metrics) *Registry {
	rates := make(map[string]ratelimit.SourceRate, len(sources))
	breakers := make(map[string]*Breaker, len(sources))
	retries := make(map[string]RetryConfig, len(sources))

	var onTransition TransitionFunc
	if m != nil {
		onTransition = func(source string, to State) {
			m.BreakerTransitions.WithLabelValues(source, string(to)).Inc()
		}
	}

	for name, cfg := range sources {
		rates[name] = cfg.Rate
		breakers[name] = NewBreaker(name, cfg.Breaker, onTransition)
		retries[name] = cfg.Retry
	}

	return &Registry{
		limiter:  ratelimit.NewLimiter(rates),
		breakers: breakers,
		retries:  retries,
		metrics:  m,
	}
}

// Limiter exposes the shared rate limiter, used by the CLI override flag.
func (r *Registry) Limiter() *ratelimit.Limiter {
	return r.limiter
}

// Breaker returns the breaker for a source, or nil if unknown.
func (r *Registry) Breaker(source string) *Breaker {
	return r.breakers[source]
}

// Do runs f for the named source with the full protection stack: every
// attempt first acquires a rate-limit slot, then passes the breaker gate. A
// breaker-open rejection is terminal and not retried; transient failures are
// retried per the source's retry config.
func (r *Registry) Do(ctx context.Context, source string, f func(ctx context.Context) error) error {
	breaker, ok := r.breakers[source]
	if !ok {
		return fmt.Errorf("resilience: unknown source %q", source)
	}
	retryCfg, ok := r.retries[source]
	if !ok {
		retryCfg = DefaultRetryConfig()
	}

	first := true
	return Retry(ctx, retryCfg, func() error {
		if !first {
			r.count(source, "retry")
		}
		first = false

		if err := r.limiter.Acquire(ctx, source); err != nil {
			return err
		}
		err := breaker.Call(func() error { return f(ctx) })
		r.observe(source, err)
		return err
	})
}

func (r *Registry) observe(source string, err error) {
	if r.metrics == nil {
		return
	}
	switch {
	case err == nil:
		r.metrics.FetchAttempts.WithLabelValues(source, "success").Inc()
	case IsBreakerOpen(err):
		r.metrics.FetchAttempts.WithLabelValues(source, "breaker_open").Inc()
	case IsTransient(err):
		r.metrics.FetchAttempts.WithLabelValues(source, "transient").Inc()
	default:
		r.metrics.FetchAttempts.WithLabelValues(source, "permanent").Inc()
	}
}

func (r *Registry) count(source, kind string) {
	if r.metrics == nil {
		return
	}
	if kind == "retry" {
		r.metrics.RetryAttempts.WithLabelValues(source).Inc()
	}
}
