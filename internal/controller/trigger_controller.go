// internal/controller/trigger_controller.go
package controller

import (
    "encoding/json"
    "net/http"

    "github.com/go-chi/chi/v5"

    appErrors "github.com/leadflow/crm-trigger-backend/internal/errors"
    "github.com/leadflow/crm-trigger-backend/internal/model"
    "github.com/leadflow/crm-trigger-backend/internal/service"
)

type TriggerController struct {
    TriggerService    *service.TriggerService
    ActivationService *service.ActivationService
}

// writeError maps domain errors to status codes.
func writeError(w http.ResponseWriter, err error) {
    switch err.(type) {
    case *appErrors.ErrValidation:
        http.Error(w, err.Error(), http.StatusBadRequest)
    case *appErrors.ErrTriggerNotFound, *appErrors.ErrMessageLogNotFound:
        http.Error(w, err.Error(), http.StatusNotFound)
    case *appErrors.ErrInvalidState:
        http.Error(w, err.Error(), http.StatusConflict)
    default:
        http.Error(w, err.Error(), http.StatusInternalServerError)
    }
}

func (c *TriggerController) CreateTrigger(w http.ResponseWriter, r *http.Request) {
    var body struct {
        UserID           string   `json:"user_id"`
        ColumnID         string   `json:"column_id"`
        MessageTitle     string   `json:"message_title"`
        MessageContent   string   `json:"message_content"`
        TriggerCondition string   `json:"trigger_condition"`
        DelayHours       *float64 `json:"delay_hours"`
        IsActive         *bool    `json:"is_active"`
    }
    if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
        http.Error(w, "invalid body", http.StatusBadRequest)
        return
    }

    trigger := &model.Trigger{
        UserID:           body.UserID,
        ColumnID:         body.ColumnID,
        MessageTitle:     body.MessageTitle,
        MessageContent:   body.MessageContent,
        TriggerCondition: body.TriggerCondition,
        DelayHours:       body.DelayHours,
        IsActive:         true,
    }
    if body.IsActive != nil {
        trigger.IsActive = *body.IsActive
    }

    created, err := c.TriggerService.CreateTrigger(trigger)
    if err != nil {
        writeError(w, err)
        return
    }

    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(http.StatusCreated)
    json.NewEncoder(w).Encode(created)
}

func (c *TriggerController) ListTriggers(w http.ResponseWriter, r *http.Request) {
    userID := r.URL.Query().Get("user_id")
    if userID == "" {
        http.Error(w, "user_id is required", http.StatusBadRequest)
        return
    }

    triggers, err := c.TriggerService.ListTriggers(userID)
    if err != nil {
        writeError(w, err)
        return
    }

    w.Header().Set("Content-Type", "application/json")
    json.NewEncoder(w).Encode(map[string]interface{}{
        "data": triggers,
    })
}

func (c *TriggerController) ListColumnTriggers(w http.ResponseWriter, r *http.Request) {
    columnID := chi.URLParam(r, "columnID")

    triggers, err := c.TriggerService.ListColumnTriggers(columnID)
    if err != nil {
        writeError(w, err)
        return
    }

    w.Header().Set("Content-Type", "application/json")
    json.NewEncoder(w).Encode(map[string]interface{}{
        "data": triggers,
    })
}

func (c *TriggerController) GetTrigger(w http.ResponseWriter, r *http.Request) {
    id := chi.URLParam(r, "id")

    trigger, err := c.TriggerService.GetTrigger(id)
    if err != nil {
        writeError(w, err)
        return
    }

    w.Header().Set("Content-Type", "application/json")
    json.NewEncoder(w).Encode(trigger)
}

func (c *TriggerController) UpdateTrigger(w http.ResponseWriter, r *http.Request) {
    id := chi.URLParam(r, "id")

    var fields model.TriggerUpdate
    if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
        http.Error(w, "invalid body", http.StatusBadRequest)
        return
    }

    updated, err := c.TriggerService.UpdateTrigger(id, fields)
    if err != nil {
        writeError(w, err)
        return
    }

    w.Header().Set("Content-Type", "application/json")
    json.NewEncoder(w).Encode(updated)
}

func (c *TriggerController) ToggleActive(w http.ResponseWriter, r *http.Request) {
    id := chi.URLParam(r, "id")

    var body struct {
        IsActive bool `json:"is_active"`
    }
    if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
        http.Error(w, "invalid body", http.StatusBadRequest)
        return
    }

    updated, err := c.TriggerService.ToggleActive(id, body.IsActive)
    if err != nil {
        writeError(w, err)
        return
    }

    w.Header().Set("Content-Type", "application/json")
    json.NewEncoder(w).Encode(updated)
}

func (c *TriggerController) DeleteTrigger(w http.ResponseWriter, r *http.Request) {
    id := chi.URLParam(r, "id")

    if err := c.TriggerService.DeleteTrigger(id); err != nil {
        writeError(w, err)
        return
    }
    w.WriteHeader(http.StatusNoContent)
}

// MoveLead runs trigger activation for one lead move. The response is always
// the activation summary; the move itself never fails because of trigger
// outcomes.
func (c *TriggerController) MoveLead(w http.ResponseWriter, r *http.Request) {
    var event model.LeadMoveEvent
    if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
        http.Error(w, "invalid body", http.StatusBadRequest)
        return
    }
    if event.LeadID == "" || event.ToColumnID == "" || event.UserID == "" {
        http.Error(w, "lead_id, to_column_id and user_id are required", http.StatusBadRequest)
        return
    }

    result, err := c.ActivationService.ActivateOnLeadMove(event)
    if err != nil {
        writeError(w, err)
        return
    }

    w.Header().Set("Content-Type", "application/json")
    json.NewEncoder(w).Encode(result)
}
