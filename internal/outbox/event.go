// Package outbox queues reward events durably and delivers them to a
// remote ledger at least once. An event carries either currency or, when
// its source starts with store.XPSourcePrefix, XP.
package outbox

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/rxdrill/internal/logger"
	"github.com/abhisek/rxdrill/internal/store"
)

// MaxAmount is the largest amount a single event may carry.
const MaxAmount = 99

// Event is a currency or XP grant awaiting delivery. The remote side
// deduplicates by EventID.
type Event struct {
	EventID   string    `json:"event_id"`
	LearnerID string    `json:"learner_id"`
	Amount    int       `json:"amount"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks the fields a receiver relies on.
func (e Event) Validate() error {
	if e.EventID == "" {
		return fmt.Errorf("event_id is required")
	}
	if e.LearnerID == "" {
		return fmt.Errorf("learner_id is required")
	}
	if e.Amount < 1 || e.Amount > MaxAmount {
		return fmt.Errorf("amount %d outside 1..%d", e.Amount, MaxAmount)
	}
	return nil
}

// Outbox appends events to the durable queue.
type Outbox struct {
	repo store.OutboxRepo
	log  *logger.Logger
}

// New creates an Outbox over repo.
func New(repo store.OutboxRepo, log *logger.Logger) *Outbox {
	return &Outbox{repo: repo, log: logger.OrNop(log)}
}

// Enqueue durably appends a grant. Amounts above MaxAmount are clamped;
// non-positive amounts are discarded with a warning and reported as
// not queued.
func (o *Outbox) Enqueue(ctx context.Context, learnerID string, amount int, source string, now time.Time) (Event, bool, error) {
	if amount <= 0 {
		o.log.Warn("discarding non-positive reward", "learner_id", learnerID, "amount", amount, "source", source)
		return Event{}, false, nil
	}
	if amount > MaxAmount {
		o.log.Warn("clamping reward amount", "learner_id", learnerID, "amount", amount, "max", MaxAmount)
		amount = MaxAmount
	}

	ev := Event{
		EventID:   uuid.NewString(),
		LearnerID: learnerID,
		Amount:    amount,
		Source:    source,
		CreatedAt: now.UTC(),
	}
	err := o.repo.Append(ctx, store.OutboxEvent{
		EventID:       ev.EventID,
		LearnerID:     ev.LearnerID,
		Amount:        ev.Amount,
		Source:        ev.Source,
		CreatedAt:     ev.CreatedAt,
		NextAttemptAt: ev.CreatedAt,
	})
	if err != nil {
		return Event{}, false, fmt.Errorf("enqueue reward: %w", err)
	}
	o.log.Debug("reward queued", "event_id", ev.EventID, "amount", ev.Amount, "source", source)
	return ev, true, nil
}

// Pending returns the number of queued events.
func (o *Outbox) Pending(ctx context.Context) (int, error) {
	return o.repo.Count(ctx)
}

func fromStore(ev store.OutboxEvent) Event {
	return Event{
		EventID:   ev.EventID,
		LearnerID: ev.LearnerID,
		Amount:    ev.Amount,
		Source:    ev.Source,
		CreatedAt: ev.CreatedAt,
	}
}
