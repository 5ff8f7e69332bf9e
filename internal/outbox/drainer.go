package outbox

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/abhisek/rxdrill/internal/logger"
	"github.com/abhisek/rxdrill/internal/retry"
	"github.com/abhisek/rxdrill/internal/store"
)

// DefaultBackoff returns the standard delivery backoff. Delivery waits
// are not jittered; one drainer runs per learner.
func DefaultBackoff() retry.Policy {
	return retry.Policy{
		InitialWait: 5 * time.Second,
		MaxWait:     30 * time.Minute,
		Multiplier:  2.0,
	}
}

// DrainResult summarizes one drain pass.
type DrainResult struct {
	Delivered int
	Failed    int
	// Rejected events were refused for good and dropped from the queue.
	Rejected int
}

// Drainer delivers queued events through a Transport. Drains happen on
// Kick, on every tick of the interval, and once at start.
type Drainer struct {
	repo      store.OutboxRepo
	transport Transport
	log       *logger.Logger
	interval  time.Duration
	backoff   retry.Policy
	batch     int
	now       func() time.Time

	kick chan struct{}
	mu   sync.Mutex // serializes drain passes
}

// DrainerOption configures a Drainer.
type DrainerOption func(*Drainer)

// WithBackoff overrides the retry backoff.
func WithBackoff(b retry.Policy) DrainerOption {
	return func(d *Drainer) { d.backoff = b }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) DrainerOption {
	return func(d *Drainer) { d.now = now }
}

// WithBatchSize limits events delivered per pass.
func WithBatchSize(n int) DrainerOption {
	return func(d *Drainer) { d.batch = n }
}

// NewDrainer creates a Drainer.
func NewDrainer(repo store.OutboxRepo, t Transport, interval time.Duration, log *logger.Logger, opts ...DrainerOption) *Drainer {
	d := &Drainer{
		repo:      repo,
		transport: t,
		log:       logger.OrNop(log).With("component", "outbox"),
		interval:  interval,
		backoff:   DefaultBackoff(),
		batch:     50,
		now:       time.Now,
		kick:      make(chan struct{}, 1),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Kick requests a drain without blocking. Multiple kicks before the
// loop wakes collapse into one.
func (d *Drainer) Kick() {
	select {
	case d.kick <- struct{}{}:
	default:
	}
}

// Run drains until ctx is cancelled.
func (d *Drainer) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	d.drainLogged(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			d.drainLogged(ctx)
		case <-d.kick:
			d.drainLogged(ctx)
		}
	}
}

func (d *Drainer) drainLogged(ctx context.Context) {
	res, err := d.Drain(ctx)
	if err != nil {
		d.log.Warn("outbox drain failed", "error", err)
		return
	}
	if res.Delivered > 0 || res.Failed > 0 || res.Rejected > 0 {
		d.log.Info("outbox drained", "delivered", res.Delivered, "failed", res.Failed, "rejected", res.Rejected)
	}
}

// Drain performs one pass over due events. A failed delivery is left
// queued with its attempt count bumped and next attempt pushed out. An
// event that is invalid, or that the transport marks permanent, is
// dropped and logged.
func (d *Drainer) Drain(ctx context.Context) (DrainResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var res DrainResult
	now := d.now()
	pending, err := d.repo.Pending(ctx, now, d.batch)
	if err != nil {
		return res, err
	}

	for _, ev := range pending {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		err := d.deliver(ctx, fromStore(ev))
		if retry.IsPermanent(err) {
			if aerr := d.repo.Ack(ctx, ev.EventID); aerr != nil {
				return res, fmt.Errorf("drop rejected event: %w", aerr)
			}
			d.log.Error("event rejected, dropped", "event_id", ev.EventID, "learner_id", ev.LearnerID,
				"amount", ev.Amount, "source", ev.Source, "error", err)
			res.Rejected++
			continue
		}
		if err != nil {
			next := now.Add(d.backoff.Delay(ev.Attempts + 1))
			if ferr := d.repo.Fail(ctx, ev.EventID, next, err.Error()); ferr != nil {
				return res, fmt.Errorf("record failed delivery: %w", ferr)
			}
			d.log.Debug("delivery failed", "event_id", ev.EventID, "attempts", ev.Attempts+1, "retry_at", next, "error", err)
			res.Failed++
			continue
		}
		if err := d.repo.Ack(ctx, ev.EventID); err != nil {
			return res, fmt.Errorf("ack delivered event: %w", err)
		}
		res.Delivered++
	}
	return res, nil
}

func (d *Drainer) deliver(ctx context.Context, ev Event) error {
	if err := ev.Validate(); err != nil {
		return retry.Permanent(err)
	}
	return d.transport.Deliver(ctx, ev)
}
