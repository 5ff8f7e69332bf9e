package outbox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/abhisek/rxdrill/internal/config"
	"github.com/abhisek/rxdrill/internal/logger"
	"github.com/abhisek/rxdrill/internal/retry"
)

// Transport delivers one event to the remote ledger.
type Transport interface {
	Deliver(ctx context.Context, ev Event) error
	Close() error
}

// NewTransport builds the transport selected by cfg. It returns nil
// when sync is disabled.
func NewTransport(cfg config.SyncConfig, log *logger.Logger) (Transport, error) {
	switch cfg.Transport {
	case "", "none":
		return nil, nil
	case "http":
		return NewHTTPTransport(cfg.URL, nil), nil
	case "redis":
		t, err := NewRedisTransport(cfg.RedisAddr, cfg.RedisStream, log)
		if err != nil {
			return nil, err
		}
		return t, nil
	case "amqp":
		t, err := NewAMQPTransport(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			return nil, err
		}
		return t, nil
	default:
		return nil, fmt.Errorf("unknown sync transport: %q", cfg.Transport)
	}
}

// HTTPTransport POSTs events as JSON. The event id travels in the
// Idempotency-Key header so the receiver can drop redeliveries.
type HTTPTransport struct {
	url    string
	client *http.Client
}

// NewHTTPTransport creates an HTTPTransport. A nil client gets a
// default with a 10s timeout.
func NewHTTPTransport(url string, client *http.Client) *HTTPTransport {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPTransport{url: url, client: client}
}

func (t *HTTPTransport) Deliver(ctx context.Context, ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", ev.EventID)

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("post event: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	// 409 means the ledger already has it.
	if resp.StatusCode/100 == 2 || resp.StatusCode == http.StatusConflict {
		return nil
	}
	err = &StatusError{Status: resp.StatusCode}
	if rejected(resp.StatusCode) {
		return retry.Permanent(err)
	}
	return err
}

func (t *HTTPTransport) Close() error { return nil }

// StatusError is a non-success reply from the ledger.
type StatusError struct {
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("post event: unexpected status %d", e.Status)
}

// rejected reports whether a status means the ledger will never take
// the event. Timeout and throttling replies stay retryable.
func rejected(status int) bool {
	switch status {
	case http.StatusRequestTimeout, http.StatusTooEarly, http.StatusTooManyRequests:
		return false
	}
	return status/100 == 4
}
