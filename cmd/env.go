package cmd

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/rxdrill/internal/catalog"
	"github.com/abhisek/rxdrill/internal/config"
	"github.com/abhisek/rxdrill/internal/learner"
	"github.com/abhisek/rxdrill/internal/logger"
	"github.com/abhisek/rxdrill/internal/outbox"
	"github.com/abhisek/rxdrill/internal/progress"
	"github.com/abhisek/rxdrill/internal/store"
	"github.com/abhisek/rxdrill/internal/ui/theme"
)

// env is what every command that touches learner data needs.
type env struct {
	cfg    config.Config
	log    *logger.Logger
	store  *store.Store
	cat    *catalog.Catalog
	rng    *rand.Rand
	outbox *outbox.Outbox
	out    io.Writer
}

// loadConfig reads .env and the environment, then applies flag overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	if v, _ := cmd.Flags().GetString("db"); v != "" {
		cfg.DBPath = v
	}
	if v, _ := cmd.Flags().GetString("catalog"); v != "" {
		cfg.CatalogPath = v
	}
	if v, _ := cmd.Flags().GetString("learner"); v != "" {
		cfg.LearnerID = v
	}
	return cfg, nil
}

// resolveDBPath returns the configured path, or the XDG default.
func resolveDBPath(cfg config.Config) (string, error) {
	if cfg.DBPath != "" {
		return cfg.DBPath, store.EnsureDir(cfg.DBPath)
	}
	return store.DefaultDBPath()
}

func loadCatalog(cfg config.Config) (*catalog.Catalog, error) {
	if cfg.CatalogPath == "" {
		return catalog.Default(), nil
	}
	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return cat, nil
}

func openEnv(cmd *cobra.Command) (*env, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, err
	}

	cat, err := loadCatalog(cfg)
	if err != nil {
		return nil, err
	}

	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	log.Debug("store opened", "path", dbPath, "learner_id", cfg.LearnerID)

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	return &env{
		cfg:    cfg,
		log:    log,
		store:  st,
		cat:    cat,
		rng:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		outbox: outbox.New(st.OutboxRepo(), log),
		out:    cmd.OutOrStdout(),
	}, nil
}

func (e *env) Close() {
	if err := e.store.Close(); err != nil {
		e.log.Warn("close store", "error", err)
	}
	e.log.Sync()
}

func (e *env) now() time.Time {
	return time.Now().In(e.cfg.Location)
}

// learner loads the configured learner and reports a tier rollover.
func (e *env) learner(ctx context.Context) (*learner.Service, error) {
	svc := learner.NewService(learner.Options{
		Catalog:   e.cat,
		Snapshots: e.store.SnapshotRepo(),
		Events:    e.store.EventRepo(),
		Outbox:    e.outbox,
		Rand:      e.rng,
		Location:  e.cfg.Location,
		Logger:    e.log,
	})
	rollover, err := svc.Load(ctx, e.cfg.LearnerID, e.now())
	if err != nil {
		return nil, fmt.Errorf("load learner: %w", err)
	}
	e.printRollover(rollover)
	return svc, nil
}

func (e *env) printRollover(r *progress.TierWeekResult) {
	if r == nil {
		return
	}
	msg := fmt.Sprintf("Week %s closed: rank %d with %d XP, %s %s → %s",
		r.WeekKey, r.Rank, r.XPEarned, r.Outcome, r.PreviousTier.DisplayName(), r.NewTier.DisplayName())
	fmt.Fprintln(e.out, theme.Warning.Render(msg))
}

// drainer builds the configured delivery loop. It returns nil when
// syncing is disabled.
func (e *env) drainer() (*outbox.Drainer, func(), error) {
	t, err := outbox.NewTransport(e.cfg.Sync, e.log)
	if err != nil {
		return nil, nil, err
	}
	if t == nil {
		return nil, func() {}, nil
	}
	d := outbox.NewDrainer(e.store.OutboxRepo(), t, e.cfg.Sync.Interval, e.log)
	return d, func() {
		if err := t.Close(); err != nil {
			e.log.Warn("close transport", "error", err)
		}
	}, nil
}
