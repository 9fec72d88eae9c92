package service_test

import (
	"testing"

	appErrors "github.com/leadflow/crm-trigger-backend/internal/errors"
	"github.com/leadflow/crm-trigger-backend/internal/model"
	"github.com/leadflow/crm-trigger-backend/internal/service"
)

func newTriggerService() (*service.TriggerService, *fakeTriggerRepo) {
	repo := &fakeTriggerRepo{}
	return &service.TriggerService{TriggerRepo: repo}, repo
}

func validTrigger() *model.Trigger {
	return &model.Trigger{
		UserID:           "user-1",
		ColumnID:         "col-1",
		MessageTitle:     "Bienvenida",
		MessageContent:   "Hola {{nombre}}",
		TriggerCondition: model.ConditionOnEnter,
		IsActive:         true,
	}
}

func assertValidation(t *testing.T, err error, field string) {
	t.Helper()
	if err == nil {
		t.Fatal("expected a validation error, got nil")
	}
	v, ok := err.(*appErrors.ErrValidation)
	if !ok {
		t.Fatalf("expected ErrValidation, got %T: %v", err, err)
	}
	if v.Field != field {
		t.Errorf("expected field %q, got %q", field, v.Field)
	}
}

func TestCreateTriggerValid(t *testing.T) {
	svc, repo := newTriggerService()

	created, err := svc.CreateTrigger(validTrigger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID == "" {
		t.Error("expected a generated id")
	}
	if len(repo.triggers) != 1 {
		t.Errorf("expected 1 stored trigger, got %d", len(repo.triggers))
	}
}

func TestCreateTriggerEmptyTitle(t *testing.T) {
	svc, _ := newTriggerService()
	trigger := validTrigger()
	trigger.MessageTitle = "   "

	_, err := svc.CreateTrigger(trigger)
	assertValidation(t, err, "message_title")
}

func TestCreateTriggerEmptyContent(t *testing.T) {
	svc, _ := newTriggerService()
	trigger := validTrigger()
	trigger.MessageContent = ""

	_, err := svc.CreateTrigger(trigger)
	assertValidation(t, err, "message_content")
}

func TestCreateTriggerNegativeDelay(t *testing.T) {
	svc, _ := newTriggerService()
	trigger := validTrigger()
	negative := -1.0
	trigger.DelayHours = &negative

	_, err := svc.CreateTrigger(trigger)
	assertValidation(t, err, "delay_hours")
}

func TestCreateTriggerUnknownCondition(t *testing.T) {
	svc, _ := newTriggerService()
	trigger := validTrigger()
	trigger.TriggerCondition = "on_hover"

	_, err := svc.CreateTrigger(trigger)
	assertValidation(t, err, "trigger_condition")
}

func TestUpdateTriggerRejectsBadFields(t *testing.T) {
	svc, _ := newTriggerService()
	created, err := svc.CreateTrigger(validTrigger())
	if err != nil {
		t.Fatal(err)
	}

	empty := ""
	if _, err := svc.UpdateTrigger(created.ID, model.TriggerUpdate{MessageTitle: &empty}); err == nil {
		t.Error("expected validation error for empty title")
	}

	negative := -0.5
	if _, err := svc.UpdateTrigger(created.ID, model.TriggerUpdate{DelayHours: &negative}); err == nil {
		t.Error("expected validation error for negative delay")
	}
}

func TestUpdateTriggerNotFound(t *testing.T) {
	svc, _ := newTriggerService()
	title := "Nuevo"

	_, err := svc.UpdateTrigger("missing-id", model.TriggerUpdate{MessageTitle: &title})
	if err == nil {
		t.Fatal("expected not-found error")
	}
	if _, ok := err.(*appErrors.ErrTriggerNotFound); !ok {
		t.Errorf("expected ErrTriggerNotFound, got %T", err)
	}
}

func TestToggleActive(t *testing.T) {
	svc, _ := newTriggerService()
	created, err := svc.CreateTrigger(validTrigger())
	if err != nil {
		t.Fatal(err)
	}

	updated, err := svc.ToggleActive(created.ID, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.IsActive {
		t.Error("expected trigger to be inactive")
	}
	if updated.MessageTitle != created.MessageTitle {
		t.Error("toggle must not touch other fields")
	}
}

func TestDeleteTriggerIsIdempotent(t *testing.T) {
	svc, repo := newTriggerService()
	created, err := svc.CreateTrigger(validTrigger())
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.DeleteTrigger(created.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.DeleteTrigger(created.ID); err != nil {
		t.Errorf("deleting an already-deleted trigger must be a no-op, got %v", err)
	}
	if len(repo.triggers) != 0 {
		t.Errorf("expected 0 triggers, got %d", len(repo.triggers))
	}
}
