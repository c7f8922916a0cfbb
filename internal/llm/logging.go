package llm

import (
	"context"
	"time"

	"github.com/lexloop/lexloop/internal/logger"
)

// LoggingProvider is a decorator that logs every LLM request with latency,
// token usage, and estimated cost.
type LoggingProvider struct {
	inner Provider
	log   *logger.Logger
}

// WithLogging wraps a Provider with structured request logging.
func WithLogging(p Provider, baseLog *logger.Logger) Provider {
	return &LoggingProvider{
		inner: p,
		log:   baseLog.With("component", "llm"),
	}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	purpose := PurposeFrom(ctx)

	resp, err := l.inner.Generate(ctx, req)

	latencyMs := time.Since(start).Milliseconds()

	if err != nil {
		l.log.Warn("llm request failed",
			"model", l.inner.ModelID(),
			"purpose", purpose,
			"latency_ms", latencyMs,
			"error", err)
		return resp, err
	}

	kv := []any{
		"model", resp.Model,
		"purpose", purpose,
		"latency_ms", latencyMs,
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens,
		"stop_reason", resp.StopReason,
	}
	if cost := LookupCost(resp.Model); cost != nil {
		kv = append(kv, "est_cost_usd", cost.Cost(resp.Usage.InputTokens, resp.Usage.OutputTokens))
	}
	l.log.Info("llm request", kv...)

	return resp, nil
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}
