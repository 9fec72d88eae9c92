// internal/service/activation_service.go
package service

import (
    "log"
    "time"

    "github.com/leadflow/crm-trigger-backend/internal/model"
    "github.com/leadflow/crm-trigger-backend/internal/repository"
)

// ActivationService evaluates all matching triggers for one lead-move event
// and records a pending ledger entry per match.
type ActivationService struct {
    TriggerRepo    repository.TriggerRepositoryInterface
    MessageLogRepo repository.MessageLogRepositoryInterface
    ConnectionRepo repository.ConnectionRepositoryInterface

    // Now is injected for deterministic scheduling in tests.
    // Defaults to time.Now in UTC.
    Now func() time.Time
}

// ActivationResult summarizes one activation call. A lead move never fails
// because of trigger outcomes; the caller gets counts, not an abort.
type ActivationResult struct {
    Scheduled int      `json:"scheduled"`
    Skipped   int      `json:"skipped"`
    Failed    int      `json:"failed"`
    LogIDs    []string `json:"log_ids"`
}

func (s *ActivationService) now() time.Time {
    if s.Now != nil {
        return s.Now()
    }
    return time.Now().UTC()
}

// ActivateOnLeadMove collects the matching triggers for the move — on_enter
// (and on_both) on the destination column, on_exit (and on_both) on the
// source column when there is one — and processes each independently.
// One trigger failing never blocks the rest.
func (s *ActivationService) ActivateOnLeadMove(event model.LeadMoveEvent) (*ActivationResult, error) {
    enterSet, err := s.TriggerRepo.ListActiveByColumnAndCondition(event.ToColumnID, model.ConditionOnEnter)
    if err != nil {
        return nil, err
    }

    exitSet := []*model.Trigger{}
    if event.FromColumnID != "" {
        exitSet, err = s.TriggerRepo.ListActiveByColumnAndCondition(event.FromColumnID, model.ConditionOnExit)
        if err != nil {
            return nil, err
        }
    }

    // Deterministic worklist: enter matches first, then exit matches.
    worklist := append(enterSet, exitSet...)

    result := &ActivationResult{LogIDs: []string{}}
    for _, trigger := range worklist {
        entry, skipped, err := s.processTrigger(trigger, event)
        if err != nil {
            log.Printf("[ACTIVATION] - trigger %s failed for lead %s: %v", trigger.ID, event.LeadID, err)
            result.Failed++
            continue
        }
        if skipped {
            result.Skipped++
            continue
        }
        result.Scheduled++
        result.LogIDs = append(result.LogIDs, entry.ID)
    }

    return result, nil
}

// processTrigger handles a single matching trigger. A lead without a phone
// and a user without a connected instance are silent skips, not errors:
// there is no channel to send through.
func (s *ActivationService) processTrigger(trigger *model.Trigger, event model.LeadMoveEvent) (*model.MessageLog, bool, error) {
    if event.LeadPhone == "" {
        log.Printf("[ACTIVATION] - lead %s has no phone, skipping trigger %q", event.LeadID, trigger.MessageTitle)
        return nil, true, nil
    }

    connection, err := s.ConnectionRepo.FindConnected(event.UserID)
    if err != nil {
        return nil, false, err
    }
    if connection == nil {
        log.Printf("[ACTIVATION] - user %s has no connected instance, skipping trigger %q", event.UserID, trigger.MessageTitle)
        return nil, true, nil
    }

    rendered := RenderMessage(trigger.MessageContent, event.LeadName, event.LeadPhone)
    scheduledFor := ComputeSendTime(trigger.DelayHours, s.now())

    entry := &model.MessageLog{
        TriggerID:      trigger.ID,
        LeadID:         event.LeadID,
        UserID:         event.UserID,
        MessageContent: rendered,
        WhatsappNumber: event.LeadPhone,
        InstanceName:   connection.InstanceName,
        Status:         model.StatusPending,
        ScheduledFor:   scheduledFor,
        RetryCount:     0,
    }
    if err := s.MessageLogRepo.Create(entry); err != nil {
        return nil, false, err
    }
    return entry, false, nil
}
