package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// ledgerRepo implements LedgerRepo.
type ledgerRepo struct {
	db *sql.DB
}

func (r *ledgerRepo) Record(ctx context.Context, e LedgerEntry) (bool, error) {
	if e.ReceivedAt.IsZero() {
		e.ReceivedAt = time.Now().UTC()
	}
	query, args := builder().Insert(LedgerEntriesTable.Name).
		Columns("event_id", "learner_id", "amount", "source", "created_at", "received_at").
		Values(e.EventID, e.LearnerID, e.Amount, e.Source, e.CreatedAt.UTC(), e.ReceivedAt.UTC()).
		OnConflict(entsql.ConflictColumns("event_id"), entsql.DoNothing()).
		Query()
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("record ledger entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("record ledger entry: %w", err)
	}
	return n > 0, nil
}

func (r *ledgerRepo) Balance(ctx context.Context, learnerID string) (int, error) {
	return r.sum(ctx, entsql.And(
		entsql.EQ("learner_id", learnerID),
		entsql.Not(entsql.HasPrefix("source", XPSourcePrefix)),
	))
}

func (r *ledgerRepo) XPTotal(ctx context.Context, learnerID string) (int, error) {
	return r.sum(ctx, entsql.And(
		entsql.EQ("learner_id", learnerID),
		entsql.HasPrefix("source", XPSourcePrefix),
	))
}

func (r *ledgerRepo) sum(ctx context.Context, where *entsql.Predicate) (int, error) {
	b := builder()
	query, args := b.Select(entsql.Sum("amount")).
		From(b.Table(LedgerEntriesTable.Name)).
		Where(where).
		Query()
	var total sql.NullInt64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("ledger sum: %w", err)
	}
	return int(total.Int64), nil
}

func (r *ledgerRepo) Entries(ctx context.Context, learnerID string, limit int) ([]LedgerEntry, error) {
	b := builder()
	sel := b.Select("event_id", "learner_id", "amount", "source", "created_at", "received_at").
		From(b.Table(LedgerEntriesTable.Name)).
		Where(entsql.EQ("learner_id", learnerID)).
		OrderBy(entsql.Desc("id"))
	if limit > 0 {
		sel.Limit(limit)
	}
	query, args := sel.Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query ledger: %w", err)
	}
	defer rows.Close()

	var out []LedgerEntry
	for rows.Next() {
		var e LedgerEntry
		if err := rows.Scan(&e.EventID, &e.LearnerID, &e.Amount, &e.Source, &e.CreatedAt, &e.ReceivedAt); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
