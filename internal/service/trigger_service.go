// internal/service/trigger_service.go
package service

import (
    "strings"

    appErrors "github.com/leadflow/crm-trigger-backend/internal/errors"
    "github.com/leadflow/crm-trigger-backend/internal/model"
    "github.com/leadflow/crm-trigger-backend/internal/repository"
)

// TriggerService validates trigger definitions and delegates persistence to
// the repository. It does not check that the column belongs to the user;
// that authorization lives at the API boundary.
type TriggerService struct {
    TriggerRepo repository.TriggerRepositoryInterface
}

func validateDefinition(title, content, condition string, delayHours *float64) error {
    if strings.TrimSpace(title) == "" {
        return appErrors.NewValidation("message_title", "must not be empty")
    }
    if strings.TrimSpace(content) == "" {
        return appErrors.NewValidation("message_content", "must not be empty")
    }
    if !model.ValidCondition(condition) {
        return appErrors.NewValidation("trigger_condition", "must be on_enter, on_exit or on_both")
    }
    if delayHours != nil && *delayHours < 0 {
        return appErrors.NewValidation("delay_hours", "must not be negative")
    }
    return nil
}

func (s *TriggerService) CreateTrigger(t *model.Trigger) (*model.Trigger, error) {
    if err := validateDefinition(t.MessageTitle, t.MessageContent, t.TriggerCondition, t.DelayHours); err != nil {
        return nil, err
    }
    if err := s.TriggerRepo.Create(t); err != nil {
        return nil, err
    }
    return t, nil
}

func (s *TriggerService) UpdateTrigger(id string, fields model.TriggerUpdate) (*model.Trigger, error) {
    if fields.MessageTitle != nil && strings.TrimSpace(*fields.MessageTitle) == "" {
        return nil, appErrors.NewValidation("message_title", "must not be empty")
    }
    if fields.MessageContent != nil && strings.TrimSpace(*fields.MessageContent) == "" {
        return nil, appErrors.NewValidation("message_content", "must not be empty")
    }
    if fields.TriggerCondition != nil && !model.ValidCondition(*fields.TriggerCondition) {
        return nil, appErrors.NewValidation("trigger_condition", "must be on_enter, on_exit or on_both")
    }
    if fields.DelayHours != nil && *fields.DelayHours < 0 {
        return nil, appErrors.NewValidation("delay_hours", "must not be negative")
    }
    return s.TriggerRepo.Update(id, fields)
}

func (s *TriggerService) ToggleActive(id string, isActive bool) (*model.Trigger, error) {
    return s.TriggerRepo.ToggleActive(id, isActive)
}

func (s *TriggerService) GetTrigger(id string) (*model.Trigger, error) {
    return s.TriggerRepo.GetByID(id)
}

func (s *TriggerService) ListTriggers(userID string) ([]*model.Trigger, error) {
    return s.TriggerRepo.List(userID)
}

func (s *TriggerService) ListColumnTriggers(columnID string) ([]*model.Trigger, error) {
    return s.TriggerRepo.ListByColumn(columnID)
}

func (s *TriggerService) DeleteTrigger(id string) error {
    return s.TriggerRepo.Delete(id)
}
