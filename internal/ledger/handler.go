// Package ledger is a reference receiver for outbox reward events. It
// stores each event once, keyed by event id, and reports balances.
package ledger

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/abhisek/rxdrill/internal/logger"
	"github.com/abhisek/rxdrill/internal/outbox"
	"github.com/abhisek/rxdrill/internal/store"
)

// ErrorResponse is the JSON body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RecordResponse reports whether an event was new.
type RecordResponse struct {
	EventID   string `json:"event_id"`
	Duplicate bool   `json:"duplicate"`
}

// BalanceResponse is a learner's running totals. Balance counts
// currency only.
type BalanceResponse struct {
	LearnerID string `json:"learner_id"`
	Balance   int    `json:"balance"`
	XP        int    `json:"xp"`
}

// Handler serves the ledger endpoints.
type Handler struct {
	repo store.LedgerRepo
	log  *logger.Logger
}

// NewHandler creates a Handler over repo.
func NewHandler(repo store.LedgerRepo, log *logger.Logger) *Handler {
	return &Handler{repo: repo, log: logger.OrNop(log).With("component", "ledger")}
}

// RegisterRoutes registers the ledger endpoints on r.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/events", h.RecordEvent).Methods("POST")
	r.HandleFunc("/learners/{learnerID}/balance", h.GetBalance).Methods("GET")
	r.HandleFunc("/learners/{learnerID}/entries", h.GetEntries).Methods("GET")
}

func (h *Handler) RecordEvent(w http.ResponseWriter, r *http.Request) {
	var ev outbox.Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}
	// The header wins when a sender sets both.
	if key := r.Header.Get("Idempotency-Key"); key != "" {
		ev.EventID = key
	}
	if err := ev.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	inserted, err := h.repo.Record(r.Context(), store.LedgerEntry{
		EventID:   ev.EventID,
		LearnerID: ev.LearnerID,
		Amount:    ev.Amount,
		Source:    ev.Source,
		CreatedAt: ev.CreatedAt,
	})
	if err != nil {
		h.log.Error("record event failed", "event_id", ev.EventID, "error", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Failed to record event"})
		return
	}

	if !inserted {
		h.log.Debug("duplicate event", "event_id", ev.EventID)
		writeJSON(w, http.StatusOK, RecordResponse{EventID: ev.EventID, Duplicate: true})
		return
	}
	h.log.Info("event recorded", "event_id", ev.EventID, "learner_id", ev.LearnerID, "amount", ev.Amount)
	writeJSON(w, http.StatusCreated, RecordResponse{EventID: ev.EventID})
}

func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	learnerID := mux.Vars(r)["learnerID"]
	bal, err := h.repo.Balance(r.Context(), learnerID)
	if err != nil {
		h.log.Error("balance failed", "learner_id", learnerID, "error", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Failed to get balance"})
		return
	}
	xp, err := h.repo.XPTotal(r.Context(), learnerID)
	if err != nil {
		h.log.Error("xp total failed", "learner_id", learnerID, "error", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Failed to get balance"})
		return
	}
	writeJSON(w, http.StatusOK, BalanceResponse{LearnerID: learnerID, Balance: bal, XP: xp})
}

func (h *Handler) GetEntries(w http.ResponseWriter, r *http.Request) {
	learnerID := mux.Vars(r)["learnerID"]
	limit := intQueryParam(r.URL.Query(), "limit", 20)
	entries, err := h.repo.Entries(r.Context(), learnerID, limit)
	if err != nil {
		h.log.Error("entries failed", "learner_id", learnerID, "error", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Failed to get entries"})
		return
	}
	out := make([]outbox.Event, 0, len(entries))
	for _, e := range entries {
		out = append(out, outbox.Event{
			EventID:   e.EventID,
			LearnerID: e.LearnerID,
			Amount:    e.Amount,
			Source:    e.Source,
			CreatedAt: e.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func intQueryParam(query url.Values, key string, defaultVal int) int {
	s := query.Get(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 {
		return defaultVal
	}
	return v
}
