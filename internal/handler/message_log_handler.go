// internal/handler/message_log_handler.go
package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	appErrors "github.com/leadflow/crm-trigger-backend/internal/errors"
	"github.com/leadflow/crm-trigger-backend/internal/repository"
)

// MessageLogHandler serves the ledger endpoints consumed by an external
// dispatch poller, plus the audit/stats reads backing the CRM screens.
type MessageLogHandler struct {
	Repo repository.MessageLogRepositoryInterface
}

func NewMessageLogHandler(repo repository.MessageLogRepositoryInterface) *MessageLogHandler {
	return &MessageLogHandler{Repo: repo}
}

// ListDueHandler is the poller pull: pending entries due at `now`
// (query param, RFC3339, defaults to the current time).
func (h *MessageLogHandler) ListDueHandler(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()
	if nowStr := r.URL.Query().Get("now"); nowStr != "" {
		parsed, err := time.Parse(time.RFC3339, nowStr)
		if err != nil {
			http.Error(w, "invalid now, expected RFC3339", http.StatusBadRequest)
			return
		}
		now = parsed
	}

	logs, err := h.Repo.ListDuePending(now)
	if err != nil {
		http.Error(w, "failed to fetch due messages: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"data": logs,
	})
}

// MarkSentHandler is the poller report-back for a successful send.
func (h *MessageLogHandler) MarkSentHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body struct {
		SentAt *time.Time `json:"sent_at"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	sentAt := time.Now().UTC()
	if body.SentAt != nil {
		sentAt = *body.SentAt
	}

	if err := h.Repo.MarkSent(id, sentAt); err != nil {
		h.writeTransitionError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// MarkFailedHandler is the poller report-back for a failed send.
func (h *MessageLogHandler) MarkFailedHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body struct {
		ErrorMessage string `json:"error_message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if body.ErrorMessage == "" {
		body.ErrorMessage = "send failed"
	}

	if err := h.Repo.MarkFailed(id, body.ErrorMessage); err != nil {
		h.writeTransitionError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListTriggerMessagesHandler returns the audit trail for one trigger.
func (h *MessageLogHandler) ListTriggerMessagesHandler(w http.ResponseWriter, r *http.Request) {
	triggerID := chi.URLParam(r, "id")

	logs, err := h.Repo.ListByTrigger(triggerID)
	if err != nil {
		http.Error(w, "failed to fetch messages: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"data": logs,
	})
}

// StatsHandler returns per-status counts for the user's ledger.
func (h *MessageLogHandler) StatsHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}

	stats, err := h.Repo.StatsByUser(userID)
	if err != nil {
		log.Println("❌ Error fetching message stats:", err)
		http.Error(w, "failed to fetch stats: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"stats": stats,
	})
}

func (h *MessageLogHandler) writeTransitionError(w http.ResponseWriter, err error) {
	switch err.(type) {
	case *appErrors.ErrMessageLogNotFound:
		http.Error(w, err.Error(), http.StatusNotFound)
	case *appErrors.ErrInvalidState:
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
