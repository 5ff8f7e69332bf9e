package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit int   // max results (0 = unlimited)
	After int64 // sequence > After
}

// Snapshot is a point-in-time capture of one learner's state. Data is
// opaque JSON owned by the caller.
type Snapshot struct {
	ID        int
	LearnerID string
	Sequence  int64
	Timestamp time.Time
	Data      []byte
}

// SnapshotRepo manages per-learner state snapshots.
type SnapshotRepo interface {
	// Save stores a new snapshot for the learner.
	Save(ctx context.Context, snap *Snapshot) error

	// Latest returns the learner's most recent snapshot, or nil if none exist.
	Latest(ctx context.Context, learnerID string) (*Snapshot, error)

	// Prune deletes all but the learner's keep most recent snapshots.
	Prune(ctx context.Context, learnerID string, keep int) error
}

// AnswerEventData captures one graded answer.
type AnswerEventData struct {
	LearnerID string
	SessionID string
	ItemID    string
	Kind      string
	Phase     string
	Correct   bool
	TimeMs    int64
}

// AnswerEvent is a stored answer with its global sequence number.
type AnswerEvent struct {
	Sequence  int64
	Timestamp time.Time
	AnswerEventData
}

// SessionEventData captures a session start or end.
type SessionEventData struct {
	LearnerID       string
	SessionID       string
	Mode            string
	Action          string // "start" or "end"
	QuestionsServed int
	CorrectAnswers  int
	DurationSecs    int
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	LearnerID    string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
}

// LLMUsage aggregates recorded LLM requests for one model.
type LLMUsage struct {
	Model        string
	Requests     int
	Succeeded    int
	InputTokens  int
	OutputTokens int
}

// EventRepo provides append and query access to domain events. All
// events share one global sequence.
type EventRepo interface {
	AppendAnswerEvent(ctx context.Context, data AnswerEventData) error
	AppendSessionEvent(ctx context.Context, data SessionEventData) error
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryAnswers returns the learner's answers in sequence order.
	QueryAnswers(ctx context.Context, learnerID string, opts QueryOpts) ([]AnswerEvent, error)

	// AnswerTotals returns the learner's lifetime answered and correct counts.
	AnswerTotals(ctx context.Context, learnerID string) (answered, correct int, err error)

	// LLMUsage returns per-model request and token totals.
	LLMUsage(ctx context.Context) ([]LLMUsage, error)
}

// OutboxEvent is a queued reward event awaiting delivery.
type OutboxEvent struct {
	EventID       string
	LearnerID     string
	Amount        int
	Source        string
	CreatedAt     time.Time
	Attempts      int
	NextAttemptAt time.Time
	LastError     string
}

// OutboxRepo is the durable outbox queue.
type OutboxRepo interface {
	// Append queues an event. Appending an existing event id is a no-op.
	Append(ctx context.Context, ev OutboxEvent) error

	// Pending returns up to limit events due at now, oldest first.
	Pending(ctx context.Context, now time.Time, limit int) ([]OutboxEvent, error)

	// Ack removes an event from the queue once delivered or rejected.
	Ack(ctx context.Context, eventID string) error

	// Fail records a failed delivery and when to retry.
	Fail(ctx context.Context, eventID string, next time.Time, reason string) error

	// Count returns the number of queued events.
	Count(ctx context.Context) (int, error)
}

// XPSourcePrefix marks ledger and outbox events that carry XP rather
// than currency.
const XPSourcePrefix = "xp:"

// LedgerEntry is a reward event accepted by the ledger.
type LedgerEntry struct {
	EventID    string
	LearnerID  string
	Amount     int
	Source     string
	CreatedAt  time.Time
	ReceivedAt time.Time
}

// LedgerRepo stores accepted reward events, deduplicated by event id.
type LedgerRepo interface {
	// Record stores an entry. It returns false when the event id was
	// already recorded.
	Record(ctx context.Context, e LedgerEntry) (bool, error)

	// Balance returns the learner's credited currency. XP entries are
	// not counted.
	Balance(ctx context.Context, learnerID string) (int, error)

	// XPTotal returns the learner's credited XP.
	XPTotal(ctx context.Context, learnerID string) (int, error)

	// Entries returns the learner's most recent entries, newest first.
	Entries(ctx context.Context, learnerID string, limit int) ([]LedgerEntry, error)
}
