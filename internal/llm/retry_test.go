package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/rxdrill/internal/retry"
)

func retryConfig() retry.Policy {
	return retry.Policy{
		MaxAttempts: 3,
		InitialWait: time.Millisecond,
		MaxWait:     10 * time.Millisecond,
		Multiplier:  2.0,
	}
}

func TestRetry(t *testing.T) {
	ok := MockResponse{Content: json.RawMessage(`{"ok":true}`)}
	down := MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}}
	invalid := MockResponse{Err: &ErrInvalidResponse{Content: json.RawMessage(`bad`), Err: errors.New("bad")}}

	tests := []struct {
		name      string
		responses []MockResponse
		wantErr   bool
		wantCalls int
	}{
		{"first attempt", []MockResponse{ok}, false, 1},
		{"transient then success", []MockResponse{down, ok}, false, 2},
		{"all attempts fail", []MockResponse{down, down, down}, true, 3},
		{"max tokens not retried", []MockResponse{{Err: &ErrMaxTokensExceeded{}}, ok}, true, 1},
		{"rejected request not retried", []MockResponse{{Err: &ErrRequestRejected{Status: 401, Err: errors.New("bad key")}}, ok}, true, 1},
		{"invalid response retried once", []MockResponse{invalid, invalid, ok}, true, 2},
		{"rate limit waits then succeeds", []MockResponse{{Err: &ErrRateLimit{RetryAfter: time.Millisecond}}, ok}, false, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockProvider(tt.responses...)
			resp, err := WithRetry(mock, retryConfig()).Generate(context.Background(), Request{})
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.JSONEq(t, `{"ok":true}`, string(resp.Content))
			}
			assert.Equal(t, tt.wantCalls, mock.CallCount())
		})
	}
}

func TestRetry_KeepsProviderErrorType(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrRequestRejected{Status: 404, Err: errors.New("no such model")}},
	)
	_, err := WithRetry(mock, retryConfig()).Generate(context.Background(), Request{})
	var rejected *ErrRequestRejected
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, 404, rejected.Status)
}

func TestMapStatusError(t *testing.T) {
	cause := errors.New("api")
	tests := []struct {
		status    int
		permanent bool
	}{
		{429, false},
		{408, false},
		{500, false},
		{503, false},
		{400, true},
		{401, true},
		{404, true},
	}
	for _, tt := range tests {
		err := mapStatusError(tt.status, cause)
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, tt.permanent, !transient(err), "status %d", tt.status)
	}
	var rl *ErrRateLimit
	assert.ErrorAs(t, mapStatusError(429, cause), &rl)
}

func TestRetry_ContextCancelled(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}},
		MockResponse{Content: json.RawMessage(`{}`)},
	)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := WithRetry(mock, retryConfig()).Generate(ctx, Request{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, mock.CallCount())
}

func TestRetry_ModelIDDelegates(t *testing.T) {
	assert.Equal(t, "mock", WithRetry(NewMockProvider(), retryConfig()).ModelID())
}
