package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// snapshotRepo implements SnapshotRepo.
type snapshotRepo struct {
	db *sql.DB
}

func (r *snapshotRepo) Save(ctx context.Context, snap *Snapshot) error {
	if snap.Timestamp.IsZero() {
		snap.Timestamp = time.Now().UTC()
	}
	query, args := builder().Insert(SnapshotsTable.Name).
		Columns("learner_id", "sequence", "timestamp", "data").
		Values(snap.LearnerID, snap.Sequence, snap.Timestamp, string(snap.Data)).
		Query()
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		snap.ID = int(id)
	}
	return nil
}

func (r *snapshotRepo) Latest(ctx context.Context, learnerID string) (*Snapshot, error) {
	b := builder()
	query, args := b.Select("id", "learner_id", "sequence", "timestamp", "data").
		From(b.Table(SnapshotsTable.Name)).
		Where(entsql.EQ("learner_id", learnerID)).
		OrderBy(entsql.Desc("id")).
		Limit(1).
		Query()

	var (
		snap Snapshot
		data string
	)
	err := r.db.QueryRowContext(ctx, query, args...).
		Scan(&snap.ID, &snap.LearnerID, &snap.Sequence, &snap.Timestamp, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query latest snapshot: %w", err)
	}
	snap.Data = []byte(data)
	return &snap, nil
}

func (r *snapshotRepo) Prune(ctx context.Context, learnerID string, keep int) error {
	if keep < 0 {
		keep = 0
	}
	b := builder()
	query, args := b.Select("id").
		From(b.Table(SnapshotsTable.Name)).
		Where(entsql.EQ("learner_id", learnerID)).
		OrderBy(entsql.Desc("id")).
		Limit(1).
		Offset(keep).
		Query()

	var cutoff int
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&cutoff)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("find prune cutoff: %w", err)
	}

	query, args = builder().Delete(SnapshotsTable.Name).
		Where(entsql.And(
			entsql.EQ("learner_id", learnerID),
			entsql.LTE("id", cutoff),
		)).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("prune snapshots: %w", err)
	}
	return nil
}
