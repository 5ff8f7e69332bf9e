package coach

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/abhisek/rxdrill/internal/catalog"
	"github.com/abhisek/rxdrill/internal/llm"
	"github.com/abhisek/rxdrill/internal/logger"
	"github.com/abhisek/rxdrill/internal/progress"
)

var (
	ErrUnknownItem = errors.New("coach: item not in catalog")
	ErrNoMistakes  = errors.New("coach: no mistakes to summarise")
)

// Service generates notes and digests. At most one background note is
// pending at a time; a newer request replaces an older one.
type Service struct {
	provider llm.Provider
	cat      *catalog.Catalog
	cfg      Config
	log      *logger.Logger

	mu      sync.Mutex
	gen     uint64
	pending *Note
	ready   bool
	closed  bool
	cancels map[uint64]context.CancelFunc
	wg      sync.WaitGroup
}

func NewService(provider llm.Provider, cat *catalog.Catalog, cfg Config, log *logger.Logger) *Service {
	return &Service{
		provider: provider,
		cat:      cat,
		cfg:      cfg,
		log:      logger.OrNop(log),
		cancels:  make(map[uint64]context.CancelFunc),
	}
}

// InputFor builds the prompt input for m. queue is the learner's mistake
// queue and level the item's mastery level.
func (s *Service) InputFor(m progress.Mistake, queue []progress.Mistake, level int) (NoteInput, error) {
	it, ok := s.cat.Item(m.ItemID)
	if !ok {
		return NoteInput{}, fmt.Errorf("%w: %s", ErrUnknownItem, m.ItemID)
	}
	peers := s.cat.Similar(it)
	if len(peers) > MaxPeers {
		peers = peers[:MaxPeers]
	}
	misses := 0
	for _, q := range queue {
		if q.ItemID == m.ItemID {
			misses++
		}
	}
	return NoteInput{
		Item:         it,
		Kind:         m.Kind,
		Peers:        peers,
		MasteryLevel: level,
		Misses:       misses,
	}, nil
}

type noteOutput struct {
	Headline    string `json:"headline"`
	Explanation string `json:"explanation"`
	Mnemonic    string `json:"mnemonic"`
	Check       struct {
		Prompt string `json:"prompt"`
		Answer string `json:"answer"`
	} `json:"check"`
}

// Note generates a remediation note synchronously.
func (s *Service) Note(ctx context.Context, in NoteInput) (*Note, error) {
	ctx, cancel := s.withTimeout(llm.WithPurpose(ctx, llm.PurposeNote))
	defer cancel()

	var out noteOutput
	err := s.generate(ctx, llm.Request{
		System:      noteSystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: buildNoteUserMessage(in)}},
		Schema:      NoteSchema,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("note for %s: %w", in.Item.ID, err)
	}

	return &Note{
		ItemID:      in.Item.ID,
		Headline:    out.Headline,
		Explanation: out.Explanation,
		Mnemonic:    out.Mnemonic,
		Check:       CheckQuestion{Prompt: out.Check.Prompt, Answer: out.Check.Answer},
	}, nil
}

// RequestNote starts generating a note in the background. Collect it
// with ConsumeNote. Requests made after Close are ignored.
func (s *Service) RequestNote(ctx context.Context, in NoteInput) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.gen++
	gen := s.gen
	s.ready = false
	s.pending = nil
	ctx, cancel := context.WithCancel(ctx)
	s.cancels[gen] = cancel
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		defer cancel()
		note, err := s.Note(ctx, in)
		if err != nil {
			s.log.Warn("coach note failed", "item_id", in.Item.ID, "error", err)
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.cancels, gen)
		if gen != s.gen || s.closed {
			return
		}
		s.pending = note
		s.ready = true
	}()
}

// Close cancels in-flight notes and waits for them to return, so nothing
// touches the provider or its event log afterwards.
func (s *Service) Close() {
	s.mu.Lock()
	s.closed = true
	for _, cancel := range s.cancels {
		cancel()
	}
	s.mu.Unlock()
	s.wg.Wait()
}

// ConsumeNote returns the finished background note, if any, and clears
// the slot. A failed request reports (nil, false) once it finishes.
func (s *Service) ConsumeNote() (*Note, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return nil, false
	}
	note := s.pending
	s.pending = nil
	s.ready = false
	return note, note != nil
}

type digestOutput struct {
	Summary string   `json:"summary"`
	Focus   []string `json:"focus"`
}

// Digest summarises the learner's mistake queue.
func (s *Service) Digest(ctx context.Context, mistakes []progress.Mistake, now time.Time) (*Digest, error) {
	if len(mistakes) == 0 {
		return nil, ErrNoMistakes
	}
	names := make(map[string]string, len(mistakes))
	for _, m := range mistakes {
		if it, ok := s.cat.Item(m.ItemID); ok {
			names[m.ItemID] = it.PrimaryName
		}
	}

	ctx, cancel := s.withTimeout(llm.WithPurpose(ctx, llm.PurposeDigest))
	defer cancel()

	var out digestOutput
	err := s.generate(ctx, llm.Request{
		System:      digestSystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: buildDigestUserMessage(DigestInput{Mistakes: mistakes, Names: names})}},
		Schema:      DigestSchema,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("mistake digest: %w", err)
	}
	return &Digest{Summary: out.Summary, Focus: out.Focus, GeneratedAt: now}, nil
}

func (s *Service) generate(ctx context.Context, req llm.Request, out any) error {
	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		return err
	}
	if err := llm.ValidateResponse(req.Schema, resp.Content); err != nil {
		return err
	}
	if err := json.Unmarshal(resp.Content, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.cfg.Timeout)
}
