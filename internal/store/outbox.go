package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// outboxRepo implements OutboxRepo.
type outboxRepo struct {
	db *sql.DB
}

func (r *outboxRepo) Append(ctx context.Context, ev OutboxEvent) error {
	if ev.NextAttemptAt.IsZero() {
		ev.NextAttemptAt = ev.CreatedAt
	}
	query, args := builder().Insert(OutboxEventsTable.Name).
		Columns("event_id", "learner_id", "amount", "source", "created_at", "attempts", "next_attempt_at").
		Values(ev.EventID, ev.LearnerID, ev.Amount, ev.Source, ev.CreatedAt.UTC(), ev.Attempts, ev.NextAttemptAt.UTC()).
		OnConflict(entsql.ConflictColumns("event_id"), entsql.DoNothing()).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("append outbox event: %w", err)
	}
	return nil
}

// Pending scans in insertion order and filters by due time in Go so
// timestamp encoding never affects the comparison.
func (r *outboxRepo) Pending(ctx context.Context, now time.Time, limit int) ([]OutboxEvent, error) {
	b := builder()
	query, args := b.Select("event_id", "learner_id", "amount", "source", "created_at", "attempts", "next_attempt_at", "last_error").
		From(b.Table(OutboxEventsTable.Name)).
		OrderBy("id").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query outbox: %w", err)
	}
	defer rows.Close()

	var out []OutboxEvent
	for rows.Next() {
		var (
			ev      OutboxEvent
			lastErr sql.NullString
		)
		if err := rows.Scan(&ev.EventID, &ev.LearnerID, &ev.Amount, &ev.Source,
			&ev.CreatedAt, &ev.Attempts, &ev.NextAttemptAt, &lastErr); err != nil {
			return nil, fmt.Errorf("scan outbox event: %w", err)
		}
		ev.LastError = lastErr.String
		if ev.NextAttemptAt.After(now) {
			continue
		}
		out = append(out, ev)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, rows.Err()
}

func (r *outboxRepo) Ack(ctx context.Context, eventID string) error {
	query, args := builder().Delete(OutboxEventsTable.Name).
		Where(entsql.EQ("event_id", eventID)).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("ack outbox event: %w", err)
	}
	return nil
}

func (r *outboxRepo) Fail(ctx context.Context, eventID string, next time.Time, reason string) error {
	query, args := builder().Update(OutboxEventsTable.Name).
		Add("attempts", 1).
		Set("next_attempt_at", next.UTC()).
		Set("last_error", reason).
		Where(entsql.EQ("event_id", eventID)).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("fail outbox event: %w", err)
	}
	return nil
}

func (r *outboxRepo) Count(ctx context.Context) (int, error) {
	b := builder()
	query, args := b.Select(entsql.Count("*")).
		From(b.Table(OutboxEventsTable.Name)).
		Query()
	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count outbox: %w", err)
	}
	return n, nil
}
