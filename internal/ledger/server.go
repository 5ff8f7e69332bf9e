package ledger

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/abhisek/rxdrill/internal/logger"
	"github.com/abhisek/rxdrill/internal/store"
)

// NewRouter builds the full HTTP handler: API routes under /v1, a
// health check, and CORS.
func NewRouter(repo store.LedgerRepo, log *logger.Logger) http.Handler {
	r := mux.NewRouter()
	api := r.PathPrefix("/v1").Subrouter()
	NewHandler(repo, log).RegisterRoutes(api)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Idempotency-Key"},
	})
	return c.Handler(r)
}

// Serve listens on addr until ctx is cancelled, then shuts down.
func Serve(ctx context.Context, addr string, repo store.LedgerRepo, log *logger.Logger) error {
	log = logger.OrNop(log)
	srv := &http.Server{
		Addr:              addr,
		Handler:           NewRouter(repo, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("ledger listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
