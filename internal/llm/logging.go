package llm

import (
	"context"
	"time"

	"github.com/abhisek/rxdrill/internal/logger"
	"github.com/abhisek/rxdrill/internal/store"
)

// LoggingProvider records every request as an llm_request event and a
// debug log line carrying the estimated cost.
type LoggingProvider struct {
	inner    Provider
	provider string
	events   store.EventRepo
	log      *logger.Logger
	now      func() time.Time
}

// WithLogging wraps p. A nil repo skips persistence.
func WithLogging(p Provider, providerName string, events store.EventRepo, log *logger.Logger) Provider {
	return &LoggingProvider{
		inner:    p,
		provider: providerName,
		events:   events,
		log:      logger.OrNop(log),
		now:      time.Now,
	}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := l.now()
	resp, err := l.inner.Generate(ctx, req)
	latency := l.now().Sub(start)

	data := store.LLMRequestEventData{
		Provider:  l.provider,
		Model:     l.inner.ModelID(),
		Purpose:   PurposeFrom(ctx),
		LearnerID: LearnerFrom(ctx),
		LatencyMs: latency.Milliseconds(),
		Success:   err == nil,
	}
	if resp != nil {
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
		if resp.Model != "" {
			data.Model = resp.Model
		}
	}
	if err != nil {
		data.ErrorMessage = err.Error()
	}

	fields := []interface{}{
		"provider", data.Provider,
		"model", data.Model,
		"purpose", data.Purpose,
		"learner_id", data.LearnerID,
		"latency_ms", data.LatencyMs,
		"input_tokens", data.InputTokens,
		"output_tokens", data.OutputTokens,
	}
	if cost := LookupCost(data.Model); cost != nil {
		fields = append(fields, "cost_usd", cost.Cost(data.InputTokens, data.OutputTokens))
	}
	if err != nil {
		l.log.Warn("llm request failed", append(fields, "error", err)...)
	} else {
		l.log.Debug("llm request", fields...)
	}

	if l.events != nil {
		if logErr := l.events.AppendLLMRequest(ctx, data); logErr != nil {
			l.log.Warn("failed to record llm request event", "error", logErr)
		}
	}

	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}
