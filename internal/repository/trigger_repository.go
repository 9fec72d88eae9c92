package repository

import (
    "database/sql"
    "fmt"
    "strings"
    "time"

    "github.com/google/uuid"

    appErrors "github.com/leadflow/crm-trigger-backend/internal/errors"
    "github.com/leadflow/crm-trigger-backend/internal/model"
)

type TriggerRepositoryInterface interface {
    // Trigger CRUD
    List(userID string) ([]*model.Trigger, error)
    ListByColumn(columnID string) ([]*model.Trigger, error)
    ListActiveByColumnAndCondition(columnID, condition string) ([]*model.Trigger, error)
    GetByID(id string) (*model.Trigger, error)
    Create(t *model.Trigger) error
    Update(id string, fields model.TriggerUpdate) (*model.Trigger, error)
    ToggleActive(id string, isActive bool) (*model.Trigger, error)
    Delete(id string) error
}

type TriggerRepository struct {
    DB *sql.DB
}

const triggerColumns = `id, user_id, column_id, message_title, message_content, trigger_condition, delay_hours, is_active, created_at, updated_at`

func scanTrigger(row interface{ Scan(...interface{}) error }) (*model.Trigger, error) {
    var t model.Trigger
    err := row.Scan(&t.ID, &t.UserID, &t.ColumnID, &t.MessageTitle, &t.MessageContent,
        &t.TriggerCondition, &t.DelayHours, &t.IsActive, &t.CreatedAt, &t.UpdatedAt)
    if err != nil {
        return nil, err
    }
    return &t, nil
}

// ====================== Trigger CRUD ======================

func (r *TriggerRepository) Create(t *model.Trigger) error {
    if t.ID == "" {
        t.ID = uuid.NewString()
    }
    t.CreatedAt = time.Now().UTC()
    query := `
        INSERT INTO column_message_triggers
        (id, user_id, column_id, message_title, message_content, trigger_condition, delay_hours, is_active, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `
    _, err := r.DB.Exec(query, t.ID, t.UserID, t.ColumnID, t.MessageTitle, t.MessageContent,
        t.TriggerCondition, t.DelayHours, t.IsActive, t.CreatedAt)
    if err != nil {
        return appErrors.NewPersistence("trigger create", err)
    }
    return nil
}

func (r *TriggerRepository) GetByID(id string) (*model.Trigger, error) {
    query := fmt.Sprintf(`SELECT %s FROM column_message_triggers WHERE id=$1`, triggerColumns)
    t, err := scanTrigger(r.DB.QueryRow(query, id))
    if err != nil {
        if err == sql.ErrNoRows {
            return nil, appErrors.NewTriggerNotFound(id)
        }
        return nil, appErrors.NewPersistence("trigger get", err)
    }
    return t, nil
}

// List returns every trigger owned by the user, newest first.
// An empty result is a normal empty slice, never an error.
func (r *TriggerRepository) List(userID string) ([]*model.Trigger, error) {
    query := fmt.Sprintf(`SELECT %s FROM column_message_triggers WHERE user_id=$1 ORDER BY created_at DESC`, triggerColumns)
    return r.queryTriggers(query, userID)
}

// ListByColumn returns every trigger attached to the column, newest first.
// Column ownership is enforced by the caller; this query does not re-check it.
func (r *TriggerRepository) ListByColumn(columnID string) ([]*model.Trigger, error) {
    query := fmt.Sprintf(`SELECT %s FROM column_message_triggers WHERE column_id=$1 ORDER BY created_at DESC`, triggerColumns)
    return r.queryTriggers(query, columnID)
}

// ListActiveByColumnAndCondition is the activation matching rule: active
// triggers on the column whose condition is the queried one or on_both.
func (r *TriggerRepository) ListActiveByColumnAndCondition(columnID, condition string) ([]*model.Trigger, error) {
    query := fmt.Sprintf(`
        SELECT %s FROM column_message_triggers
        WHERE column_id=$1 AND is_active=true AND trigger_condition IN ($2, $3)
        ORDER BY created_at DESC
    `, triggerColumns)
    return r.queryTriggers(query, columnID, condition, model.ConditionOnBoth)
}

func (r *TriggerRepository) queryTriggers(query string, args ...interface{}) ([]*model.Trigger, error) {
    rows, err := r.DB.Query(query, args...)
    if err != nil {
        return nil, appErrors.NewPersistence("trigger list", err)
    }
    defer rows.Close()

    triggers := []*model.Trigger{}
    for rows.Next() {
        t, err := scanTrigger(rows)
        if err != nil {
            return nil, appErrors.NewPersistence("trigger scan", err)
        }
        triggers = append(triggers, t)
    }
    return triggers, nil
}

// Update merges the non-nil fields and stamps updated_at.
func (r *TriggerRepository) Update(id string, fields model.TriggerUpdate) (*model.Trigger, error) {
    sets := []string{}
    args := []interface{}{}
    argPos := 1

    add := func(column string, value interface{}) {
        sets = append(sets, fmt.Sprintf("%s=$%d", column, argPos))
        args = append(args, value)
        argPos++
    }

    if fields.MessageTitle != nil {
        add("message_title", *fields.MessageTitle)
    }
    if fields.MessageContent != nil {
        add("message_content", *fields.MessageContent)
    }
    if fields.TriggerCondition != nil {
        add("trigger_condition", *fields.TriggerCondition)
    }
    if fields.DelayHours != nil {
        add("delay_hours", *fields.DelayHours)
    }
    if fields.IsActive != nil {
        add("is_active", *fields.IsActive)
    }
    add("updated_at", time.Now().UTC())

    query := fmt.Sprintf(`UPDATE column_message_triggers SET %s WHERE id=$%d`,
        strings.Join(sets, ", "), argPos)
    args = append(args, id)

    res, err := r.DB.Exec(query, args...)
    if err != nil {
        return nil, appErrors.NewPersistence("trigger update", err)
    }
    affected, err := res.RowsAffected()
    if err != nil {
        return nil, appErrors.NewPersistence("trigger update", err)
    }
    if affected == 0 {
        return nil, appErrors.NewTriggerNotFound(id)
    }

    return r.GetByID(id)
}

// ToggleActive is a narrow update that only flips the active flag.
func (r *TriggerRepository) ToggleActive(id string, isActive bool) (*model.Trigger, error) {
    return r.Update(id, model.TriggerUpdate{IsActive: &isActive})
}

// Delete removes the trigger. Deleting an unknown id is a silent no-op,
// matching the update screens that fire delete without a prior fetch.
func (r *TriggerRepository) Delete(id string) error {
    _, err := r.DB.Exec(`DELETE FROM column_message_triggers WHERE id=$1`, id)
    if err != nil {
        return appErrors.NewPersistence("trigger delete", err)
    }
    return nil
}

var _ TriggerRepositoryInterface = (*TriggerRepository)(nil)
