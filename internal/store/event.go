package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// sequenceCounter manages the global monotonic sequence number shared across
// all event tables. Per-table auto-increment IDs can't order answers against
// session or LLM events, so every append draws from this single counter.
//
// Uses raw SQL because the builder has no atomic counter primitive. The
// mutex serializes within the process; RETURNING makes the increment atomic
// at the database level.
type sequenceCounter struct {
	mu sync.Mutex
	db *sql.DB
}

// newSequenceCounter creates a counter and ensures the tracking table exists.
func newSequenceCounter(db *sql.DB) (*sequenceCounter, error) {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS global_sequence (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		next_val INTEGER NOT NULL DEFAULT 1
	)`)
	if err != nil {
		return nil, fmt.Errorf("create sequence table: %w", err)
	}

	_, err = db.Exec(`INSERT OR IGNORE INTO global_sequence (id, next_val) VALUES (1, 1)`)
	if err != nil {
		return nil, fmt.Errorf("seed sequence: %w", err)
	}

	return &sequenceCounter{db: db}, nil
}

// Next atomically returns the next sequence number and increments the counter.
func (sc *sequenceCounter) Next(ctx context.Context) (int64, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	var seq int64
	err := sc.db.QueryRowContext(ctx,
		`UPDATE global_sequence SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return seq, nil
}

// eventRepo implements EventRepo on the builder-backed tables.
type eventRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

func (r *eventRepo) AppendAnswerEvent(ctx context.Context, data AnswerEventData) error {
	seq, err := r.seq.Next(ctx)
	if err != nil {
		return err
	}
	query, args := builder().Insert(AnswerEventsTable.Name).
		Columns("sequence", "timestamp", "learner_id", "session_id", "item_id", "kind", "phase", "correct", "time_ms").
		Values(seq, time.Now().UTC(), data.LearnerID, data.SessionID, data.ItemID, data.Kind, data.Phase, data.Correct, data.TimeMs).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("append answer event: %w", err)
	}
	return nil
}

func (r *eventRepo) AppendSessionEvent(ctx context.Context, data SessionEventData) error {
	seq, err := r.seq.Next(ctx)
	if err != nil {
		return err
	}
	query, args := builder().Insert(SessionEventsTable.Name).
		Columns("sequence", "timestamp", "learner_id", "session_id", "mode", "action", "questions_served", "correct_answers", "duration_secs").
		Values(seq, time.Now().UTC(), data.LearnerID, data.SessionID, data.Mode, data.Action, data.QuestionsServed, data.CorrectAnswers, data.DurationSecs).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("append session event: %w", err)
	}
	return nil
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	seq, err := r.seq.Next(ctx)
	if err != nil {
		return err
	}
	var errMsg any
	if data.ErrorMessage != "" {
		errMsg = data.ErrorMessage
	}
	query, args := builder().Insert(LlmRequestEventsTable.Name).
		Columns("sequence", "timestamp", "provider", "model", "purpose", "learner_id", "input_tokens", "output_tokens", "latency_ms", "success", "error_message").
		Values(seq, time.Now().UTC(), data.Provider, data.Model, data.Purpose, data.LearnerID, data.InputTokens, data.OutputTokens, data.LatencyMs, data.Success, errMsg).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("append llm request event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryAnswers(ctx context.Context, learnerID string, opts QueryOpts) ([]AnswerEvent, error) {
	b := builder()
	sel := b.Select("sequence", "timestamp", "learner_id", "session_id", "item_id", "kind", "phase", "correct", "time_ms").
		From(b.Table(AnswerEventsTable.Name)).
		Where(entsql.And(
			entsql.EQ("learner_id", learnerID),
			entsql.GT("sequence", opts.After),
		)).
		OrderBy("sequence")
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}
	query, args := sel.Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query answers: %w", err)
	}
	defer rows.Close()

	var out []AnswerEvent
	for rows.Next() {
		var ev AnswerEvent
		if err := rows.Scan(&ev.Sequence, &ev.Timestamp, &ev.LearnerID, &ev.SessionID,
			&ev.ItemID, &ev.Kind, &ev.Phase, &ev.Correct, &ev.TimeMs); err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

func (r *eventRepo) AnswerTotals(ctx context.Context, learnerID string) (int, int, error) {
	b := builder()
	query, args := b.Select(entsql.Count("*"), entsql.Sum("correct")).
		From(b.Table(AnswerEventsTable.Name)).
		Where(entsql.EQ("learner_id", learnerID)).
		Query()

	var answered, correct sql.NullInt64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&answered, &correct); err != nil {
		return 0, 0, fmt.Errorf("answer totals: %w", err)
	}
	return int(answered.Int64), int(correct.Int64), nil
}

func (r *eventRepo) LLMUsage(ctx context.Context) ([]LLMUsage, error) {
	b := builder()
	query, args := b.Select("model", entsql.Count("*"), entsql.Sum("success"), entsql.Sum("input_tokens"), entsql.Sum("output_tokens")).
		From(b.Table(LlmRequestEventsTable.Name)).
		GroupBy("model").
		OrderBy("model").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("llm usage: %w", err)
	}
	defer rows.Close()

	var out []LLMUsage
	for rows.Next() {
		var u LLMUsage
		var ok, in, outTok sql.NullInt64
		if err := rows.Scan(&u.Model, &u.Requests, &ok, &in, &outTok); err != nil {
			return nil, fmt.Errorf("scan llm usage: %w", err)
		}
		u.Succeeded = int(ok.Int64)
		u.InputTokens = int(in.Int64)
		u.OutputTokens = int(outTok.Int64)
		out = append(out, u)
	}
	return out, rows.Err()
}
