package service_test

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	appErrors "github.com/leadflow/crm-trigger-backend/internal/errors"
	"github.com/leadflow/crm-trigger-backend/internal/model"
)

// In-memory fakes shared by the service tests. They mirror the SQL behavior
// that matters: the activation matching rule and the ledger's
// pending-only transition guard.

type fakeTriggerRepo struct {
	triggers []*model.Trigger
}

func (f *fakeTriggerRepo) List(userID string) ([]*model.Trigger, error) {
	out := []*model.Trigger{}
	for _, t := range f.triggers {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTriggerRepo) ListByColumn(columnID string) ([]*model.Trigger, error) {
	out := []*model.Trigger{}
	for _, t := range f.triggers {
		if t.ColumnID == columnID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTriggerRepo) ListActiveByColumnAndCondition(columnID, condition string) ([]*model.Trigger, error) {
	out := []*model.Trigger{}
	for _, t := range f.triggers {
		if t.ColumnID != columnID || !t.IsActive {
			continue
		}
		if t.TriggerCondition == condition || t.TriggerCondition == model.ConditionOnBoth {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTriggerRepo) GetByID(id string) (*model.Trigger, error) {
	for _, t := range f.triggers {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, appErrors.NewTriggerNotFound(id)
}

func (f *fakeTriggerRepo) Create(t *model.Trigger) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.CreatedAt = time.Now().UTC()
	f.triggers = append(f.triggers, t)
	return nil
}

func (f *fakeTriggerRepo) Update(id string, fields model.TriggerUpdate) (*model.Trigger, error) {
	t, err := f.GetByID(id)
	if err != nil {
		return nil, err
	}
	if fields.MessageTitle != nil {
		t.MessageTitle = *fields.MessageTitle
	}
	if fields.MessageContent != nil {
		t.MessageContent = *fields.MessageContent
	}
	if fields.TriggerCondition != nil {
		t.TriggerCondition = *fields.TriggerCondition
	}
	if fields.DelayHours != nil {
		t.DelayHours = fields.DelayHours
	}
	if fields.IsActive != nil {
		t.IsActive = *fields.IsActive
	}
	now := time.Now().UTC()
	t.UpdatedAt = &now
	return t, nil
}

func (f *fakeTriggerRepo) ToggleActive(id string, isActive bool) (*model.Trigger, error) {
	return f.Update(id, model.TriggerUpdate{IsActive: &isActive})
}

func (f *fakeTriggerRepo) Delete(id string) error {
	for i, t := range f.triggers {
		if t.ID == id {
			f.triggers = append(f.triggers[:i], f.triggers[i+1:]...)
			return nil
		}
	}
	return nil // silent no-op, matches the repository
}

type fakeLogRepo struct {
	mu   sync.Mutex
	logs map[string]*model.MessageLog

	// failCreateFor simulates a persistence failure when inserting an entry
	// for the given trigger id.
	failCreateFor string
}

func newFakeLogRepo() *fakeLogRepo {
	return &fakeLogRepo{logs: map[string]*model.MessageLog{}}
}

func (f *fakeLogRepo) Create(entry *model.MessageLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreateFor != "" && entry.TriggerID == f.failCreateFor {
		return appErrors.NewPersistence("message log create", fmt.Errorf("connection reset"))
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Status == "" {
		entry.Status = model.StatusPending
	}
	now := time.Now().UTC()
	entry.CreatedAt = now
	entry.UpdatedAt = now
	f.logs[entry.ID] = entry
	return nil
}

func (f *fakeLogRepo) GetByID(id string) (*model.MessageLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.logs[id]
	if !ok {
		return nil, appErrors.NewMessageLogNotFound(id)
	}
	copied := *entry
	return &copied, nil
}

func (f *fakeLogRepo) ListDuePending(now time.Time) ([]*model.MessageLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*model.MessageLog{}
	for _, entry := range f.logs {
		if entry.Status == model.StatusPending && !entry.ScheduledFor.After(now) {
			copied := *entry
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeLogRepo) ListByTrigger(triggerID string) ([]*model.MessageLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*model.MessageLog{}
	for _, entry := range f.logs {
		if entry.TriggerID == triggerID {
			copied := *entry
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeLogRepo) MarkSent(id string, sentAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.logs[id]
	if !ok {
		return appErrors.NewMessageLogNotFound(id)
	}
	if entry.Status != model.StatusPending {
		return appErrors.NewInvalidState(id, entry.Status)
	}
	entry.Status = model.StatusSent
	entry.SentAt = &sentAt
	return nil
}

func (f *fakeLogRepo) MarkFailed(id string, errorMessage string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.logs[id]
	if !ok {
		return appErrors.NewMessageLogNotFound(id)
	}
	if entry.Status != model.StatusPending {
		return appErrors.NewInvalidState(id, entry.Status)
	}
	entry.Status = model.StatusFailed
	entry.ErrorMessage = errorMessage
	return nil
}

func (f *fakeLogRepo) IncrementRetry(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.logs[id]
	if !ok {
		return appErrors.NewMessageLogNotFound(id)
	}
	if entry.Status != model.StatusPending {
		return nil
	}
	entry.RetryCount++
	return nil
}

func (f *fakeLogRepo) StatsByUser(userID string) (map[string]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := map[string]int{
		model.StatusPending: 0,
		model.StatusSent:    0,
		model.StatusFailed:  0,
	}
	for _, entry := range f.logs {
		if entry.UserID == userID {
			stats[entry.Status]++
		}
	}
	return stats, nil
}

func (f *fakeLogRepo) all() []*model.MessageLog {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*model.MessageLog{}
	for _, entry := range f.logs {
		copied := *entry
		out = append(out, &copied)
	}
	return out
}

type fakeConnectionRepo struct {
	connections []*model.WhatsappConnection
}

func (f *fakeConnectionRepo) FindConnected(userID string) (*model.WhatsappConnection, error) {
	for _, c := range f.connections {
		if c.UserID == userID && c.Status == model.ConnectionStatusConnected {
			return c, nil
		}
	}
	return nil, nil
}

// fakeSender records sends and fails on demand.
type fakeSender struct {
	mu    sync.Mutex
	sent  []string
	fail  bool
	errIs error
}

func (f *fakeSender) SendText(instanceName, phone, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		if f.errIs != nil {
			return f.errIs
		}
		return fmt.Errorf("gateway unavailable")
	}
	f.sent = append(f.sent, fmt.Sprintf("%s|%s|%s", instanceName, phone, text))
	return nil
}

// recordingQueue captures published jobs per topic without delivering them.
type recordingQueue struct {
	mu        sync.Mutex
	published map[string][]any
}

func newRecordingQueue() *recordingQueue {
	return &recordingQueue{published: map[string][]any{}}
}

func (q *recordingQueue) Publish(topic string, payload any) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.published[topic] = append(q.published[topic], payload)
	return nil
}

func (q *recordingQueue) Subscribe(topic string, handler func(payload any) error) error {
	return nil
}
