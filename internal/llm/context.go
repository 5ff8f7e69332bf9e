package llm

import "context"

type contextKey int

const (
	purposeKey contextKey = iota
	learnerKey
)

// Purposes the coach tags its requests with.
const (
	PurposeNote   = "coach-note"
	PurposeDigest = "coach-digest"
)

// WithPurpose attaches a purpose label to the context for event logging.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey, purpose)
}

// PurposeFrom extracts the purpose label from the context.
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey).(string); ok {
		return v
	}
	return "unknown"
}

// WithLearner attaches the learner a request is made for. It is stored
// with the request event and passed to providers that accept an opaque
// end-user id.
func WithLearner(ctx context.Context, learnerID string) context.Context {
	return context.WithValue(ctx, learnerKey, learnerID)
}

// LearnerFrom returns the learner id on ctx, or "".
func LearnerFrom(ctx context.Context) string {
	v, _ := ctx.Value(learnerKey).(string)
	return v
}
