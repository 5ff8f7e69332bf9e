package coach

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/rxdrill/internal/catalog"
	"github.com/abhisek/rxdrill/internal/llm"
	"github.com/abhisek/rxdrill/internal/progress"
)

var t0 = time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC)

const validNote = `{
	"headline": "Lisinopril is an ACE inhibitor, not a beta blocker",
	"explanation": "The -pril stem marks ACE inhibitors.",
	"mnemonic": "pril = pressure relief",
	"check": {"prompt": "Which class ends in -pril?", "answer": "ACE inhibitors"}
}`

func newTestService(responses ...llm.MockResponse) (*Service, *llm.MockProvider) {
	mock := llm.NewMockProvider(responses...)
	return NewService(mock, catalog.Default(), DefaultConfig(), nil), mock
}

func TestInputFor(t *testing.T) {
	svc, _ := newTestService()
	m := progress.Mistake{ItemID: "lisinopril", Kind: "class-of", OccurredAt: t0}
	queue := []progress.Mistake{m, {ItemID: "atenolol"}, {ItemID: "lisinopril"}}

	in, err := svc.InputFor(m, queue, 2)
	require.NoError(t, err)
	assert.Equal(t, "Lisinopril", in.Item.PrimaryName)
	assert.Equal(t, 2, in.Misses)
	assert.Equal(t, 2, in.MasteryLevel)
	assert.LessOrEqual(t, len(in.Peers), MaxPeers)
	for _, p := range in.Peers {
		assert.NotEqual(t, "lisinopril", p.ID)
	}

	_, err = svc.InputFor(progress.Mistake{ItemID: "unobtainium"}, nil, 0)
	assert.ErrorIs(t, err, ErrUnknownItem)
}

func TestNote(t *testing.T) {
	svc, mock := newTestService(llm.MockResponse{Content: json.RawMessage(validNote)})
	in, err := svc.InputFor(progress.Mistake{ItemID: "lisinopril", Kind: "class-of"}, nil, 1)
	require.NoError(t, err)

	note, err := svc.Note(llm.WithLearner(context.Background(), "ada"), in)
	require.NoError(t, err)
	assert.Equal(t, "lisinopril", note.ItemID)
	assert.Equal(t, "ACE inhibitors", note.Check.Answer)
	assert.NotEmpty(t, note.Mnemonic)

	require.Equal(t, 1, mock.CallCount())
	assert.Equal(t, []string{llm.PurposeNote}, mock.Purposes)
	assert.Equal(t, []string{"ada"}, mock.Learners)
	req := mock.Calls[0]
	assert.Equal(t, NoteSchema, req.Schema)
	prompt := req.Messages[0].Content
	assert.True(t, strings.Contains(prompt, "Lisinopril (Zestril)"))
	assert.True(t, strings.Contains(prompt, "class-of"))
	assert.True(t, strings.Contains(prompt, "Often confused with"))
}

func TestNote_Failures(t *testing.T) {
	tests := []struct {
		name string
		resp llm.MockResponse
	}{
		{"provider error", llm.MockResponse{Err: errors.New("boom")}},
		{"missing field", llm.MockResponse{Content: json.RawMessage(`{"headline":"x"}`)}},
		{"extra field", llm.MockResponse{Content: json.RawMessage(`{"headline":"x","explanation":"y","mnemonic":"","check":{"prompt":"p","answer":"a"},"dose":"10mg"}`)}},
		{"not json", llm.MockResponse{Content: json.RawMessage(`sure, here is a note`)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(tt.resp)
			in, err := svc.InputFor(progress.Mistake{ItemID: "warfarin", Kind: "use-of"}, nil, 0)
			require.NoError(t, err)
			_, err = svc.Note(context.Background(), in)
			assert.Error(t, err)
		})
	}
}

func TestRequestAndConsumeNote(t *testing.T) {
	svc, _ := newTestService(llm.MockResponse{Content: json.RawMessage(validNote)})
	in, err := svc.InputFor(progress.Mistake{ItemID: "lisinopril"}, nil, 0)
	require.NoError(t, err)

	_, ok := svc.ConsumeNote()
	assert.False(t, ok)

	svc.RequestNote(context.Background(), in)
	var note *Note
	assert.Eventually(t, func() bool {
		note, ok = svc.ConsumeNote()
		return ok
	}, time.Second, 5*time.Millisecond)
	require.NotNil(t, note)
	assert.Equal(t, "lisinopril", note.ItemID)

	// The slot is cleared after consumption.
	_, ok = svc.ConsumeNote()
	assert.False(t, ok)
}

// blockingProvider holds every request until its context ends.
type blockingProvider struct {
	started  chan struct{}
	returned chan error
}

func (p *blockingProvider) Generate(ctx context.Context, _ llm.Request) (*llm.Response, error) {
	p.started <- struct{}{}
	<-ctx.Done()
	p.returned <- ctx.Err()
	return nil, ctx.Err()
}

func (p *blockingProvider) ModelID() string { return "blocking" }

func TestClose_WaitsForInflightNote(t *testing.T) {
	p := &blockingProvider{started: make(chan struct{}, 1), returned: make(chan error, 1)}
	svc := NewService(p, catalog.Default(), DefaultConfig(), nil)
	in, err := svc.InputFor(progress.Mistake{ItemID: "lisinopril"}, nil, 0)
	require.NoError(t, err)

	svc.RequestNote(context.Background(), in)
	<-p.started
	svc.Close()

	// Close only returns after the provider call has ended.
	select {
	case err := <-p.returned:
		assert.ErrorIs(t, err, context.Canceled)
	default:
		t.Fatal("provider still running after Close")
	}
	_, ok := svc.ConsumeNote()
	assert.False(t, ok)

	svc.RequestNote(context.Background(), in)
	select {
	case <-p.started:
		t.Fatal("request accepted after Close")
	default:
	}
	svc.Close()
}

func TestDigest(t *testing.T) {
	svc, mock := newTestService(llm.MockResponse{
		Content: json.RawMessage(`{"summary":"Brand names of statins are shaky.","focus":["Statin"]}`),
	})

	_, err := svc.Digest(context.Background(), nil, t0)
	assert.ErrorIs(t, err, ErrNoMistakes)
	assert.Equal(t, 0, mock.CallCount())

	mistakes := []progress.Mistake{
		{ItemID: "atorvastatin", Kind: "generic-to-brand", OccurredAt: t0},
		{ItemID: "ghost", Kind: "use-of", OccurredAt: t0},
	}
	d, err := svc.Digest(context.Background(), mistakes, t0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Statin"}, d.Focus)
	assert.Equal(t, t0, d.GeneratedAt)

	prompt := mock.Calls[0].Messages[0].Content
	assert.Contains(t, prompt, "generic-to-brand on Atorvastatin (2025-03-12)")
	assert.Contains(t, prompt, "use-of on ghost")
}
