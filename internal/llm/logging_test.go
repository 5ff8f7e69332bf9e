package llm

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/rxdrill/internal/store"
)

func TestLoggingProvider_RecordsEvents(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "llm.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{}`), Usage: Usage{InputTokens: 120, OutputTokens: 30}},
		MockResponse{Err: errors.New("upstream down")},
	)
	p := WithLogging(mock, ProviderMock, st.EventRepo(), nil)
	ctx := WithLearner(WithPurpose(context.Background(), PurposeNote), "ada")

	_, err = p.Generate(ctx, Request{})
	require.NoError(t, err)
	_, err = p.Generate(ctx, Request{})
	require.Error(t, err)

	usage, err := st.EventRepo().LLMUsage(context.Background())
	require.NoError(t, err)
	require.Len(t, usage, 1)
	assert.Equal(t, "mock", usage[0].Model)
	assert.Equal(t, 2, usage[0].Requests)
	assert.Equal(t, 1, usage[0].Succeeded)
	assert.Equal(t, 120, usage[0].InputTokens)

	var purpose, learner string
	require.NoError(t, st.DB().QueryRow(`SELECT purpose, learner_id FROM llm_request_events LIMIT 1`).Scan(&purpose, &learner))
	assert.Equal(t, PurposeNote, purpose)
	assert.Equal(t, "ada", learner)
}

func TestLookupCost(t *testing.T) {
	c := LookupCost("gpt-4o-mini")
	require.NotNil(t, c)
	assert.InDelta(t, 0.15+0.6, c.Cost(1_000_000, 1_000_000), 1e-9)

	assert.NotNil(t, LookupCost("google/gemini-2.0-flash-001"))
	assert.Nil(t, LookupCost("mock"))
}
