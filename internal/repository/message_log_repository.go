package repository

import (
    "database/sql"
    "fmt"
    "time"

    "github.com/google/uuid"

    appErrors "github.com/leadflow/crm-trigger-backend/internal/errors"
    "github.com/leadflow/crm-trigger-backend/internal/model"
)

type MessageLogRepositoryInterface interface {
    Create(entry *model.MessageLog) error
    GetByID(id string) (*model.MessageLog, error)
    ListDuePending(now time.Time) ([]*model.MessageLog, error)
    ListByTrigger(triggerID string) ([]*model.MessageLog, error)
    MarkSent(id string, sentAt time.Time) error
    MarkFailed(id string, errorMessage string) error
    IncrementRetry(id string) error
    StatsByUser(userID string) (map[string]int, error)
}

// MessageLogRepository is the scheduled-message ledger. Entries are inserted
// as pending by activation and flipped to sent or failed exactly once by the
// dispatch worker; they are never deleted (audit trail).
type MessageLogRepository struct {
    DB *sql.DB
}

const messageLogColumns = `id, trigger_id, lead_id, user_id, message_content, whatsapp_number, instance_name, status, scheduled_for, sent_at, error_message, retry_count, created_at, updated_at`

func scanMessageLog(row interface{ Scan(...interface{}) error }) (*model.MessageLog, error) {
    var m model.MessageLog
    var errMsg sql.NullString
    err := row.Scan(&m.ID, &m.TriggerID, &m.LeadID, &m.UserID, &m.MessageContent,
        &m.WhatsappNumber, &m.InstanceName, &m.Status, &m.ScheduledFor, &m.SentAt,
        &errMsg, &m.RetryCount, &m.CreatedAt, &m.UpdatedAt)
    if err != nil {
        return nil, err
    }
    m.ErrorMessage = errMsg.String
    return &m, nil
}

// Create inserts a new pending ledger entry and fills in the generated id
// and timestamps.
func (r *MessageLogRepository) Create(entry *model.MessageLog) error {
    if entry.ID == "" {
        entry.ID = uuid.NewString()
    }
    if entry.Status == "" {
        entry.Status = model.StatusPending
    }
    now := time.Now().UTC()
    entry.CreatedAt = now
    entry.UpdatedAt = now

    query := `
        INSERT INTO automated_message_logs
        (id, trigger_id, lead_id, user_id, message_content, whatsapp_number, instance_name, status, scheduled_for, retry_count, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
    `
    _, err := r.DB.Exec(query, entry.ID, entry.TriggerID, entry.LeadID, entry.UserID,
        entry.MessageContent, entry.WhatsappNumber, entry.InstanceName, entry.Status,
        entry.ScheduledFor, entry.RetryCount, entry.CreatedAt, entry.UpdatedAt)
    if err != nil {
        return appErrors.NewPersistence("message log create", err)
    }
    return nil
}

func (r *MessageLogRepository) GetByID(id string) (*model.MessageLog, error) {
    query := fmt.Sprintf(`SELECT %s FROM automated_message_logs WHERE id=$1`, messageLogColumns)
    m, err := scanMessageLog(r.DB.QueryRow(query, id))
    if err != nil {
        if err == sql.ErrNoRows {
            return nil, appErrors.NewMessageLogNotFound(id)
        }
        return nil, appErrors.NewPersistence("message log get", err)
    }
    return m, nil
}

// ListDuePending is the dispatch poller's pull query: pending entries whose
// scheduled_for has passed, oldest due first. now is injected, never read
// from the ambient clock.
func (r *MessageLogRepository) ListDuePending(now time.Time) ([]*model.MessageLog, error) {
    query := fmt.Sprintf(`
        SELECT %s FROM automated_message_logs
        WHERE status=$1 AND scheduled_for <= $2
        ORDER BY scheduled_for ASC
    `, messageLogColumns)
    return r.queryLogs(query, model.StatusPending, now)
}

// ListByTrigger returns the audit trail for one trigger, newest first.
func (r *MessageLogRepository) ListByTrigger(triggerID string) ([]*model.MessageLog, error) {
    query := fmt.Sprintf(`
        SELECT %s FROM automated_message_logs
        WHERE trigger_id=$1
        ORDER BY created_at DESC
    `, messageLogColumns)
    return r.queryLogs(query, triggerID)
}

func (r *MessageLogRepository) queryLogs(query string, args ...interface{}) ([]*model.MessageLog, error) {
    rows, err := r.DB.Query(query, args...)
    if err != nil {
        return nil, appErrors.NewPersistence("message log list", err)
    }
    defer rows.Close()

    logs := []*model.MessageLog{}
    for rows.Next() {
        m, err := scanMessageLog(rows)
        if err != nil {
            return nil, appErrors.NewPersistence("message log scan", err)
        }
        logs = append(logs, m)
    }
    return logs, nil
}

// MarkSent flips pending -> sent. The WHERE status clause is the optimistic
// guard: a concurrent terminal transition leaves zero rows affected, reported
// as ErrInvalidState rather than silently re-sending.
func (r *MessageLogRepository) MarkSent(id string, sentAt time.Time) error {
    query := `
        UPDATE automated_message_logs
        SET status=$1, sent_at=$2, updated_at=NOW()
        WHERE id=$3 AND status=$4
    `
    return r.transition(id, query, model.StatusSent, sentAt, id, model.StatusPending)
}

// MarkFailed flips pending -> failed and records the error detail.
func (r *MessageLogRepository) MarkFailed(id string, errorMessage string) error {
    query := `
        UPDATE automated_message_logs
        SET status=$1, error_message=$2, updated_at=NOW()
        WHERE id=$3 AND status=$4
    `
    return r.transition(id, query, model.StatusFailed, errorMessage, id, model.StatusPending)
}

func (r *MessageLogRepository) transition(id, query string, args ...interface{}) error {
    res, err := r.DB.Exec(query, args...)
    if err != nil {
        return appErrors.NewPersistence("message log transition", err)
    }
    affected, err := res.RowsAffected()
    if err != nil {
        return appErrors.NewPersistence("message log transition", err)
    }
    if affected == 1 {
        return nil
    }

    // Zero rows: either the entry is already terminal or it never existed.
    existing, err := r.GetByID(id)
    if err != nil {
        return err
    }
    return appErrors.NewInvalidState(id, existing.Status)
}

// IncrementRetry bumps retry_count for a pending entry that is being requeued.
// Same conditional update as the status transitions: an entry that went
// terminal in between is left untouched, and that is not an error.
func (r *MessageLogRepository) IncrementRetry(id string) error {
    query := `UPDATE automated_message_logs SET retry_count=retry_count+1, updated_at=NOW() WHERE id=$1 AND status=$2`
    _, err := r.DB.Exec(query, id, model.StatusPending)
    if err != nil {
        return appErrors.NewPersistence("message log retry", err)
    }
    return nil
}

// StatsByUser counts the user's ledger entries per status.
func (r *MessageLogRepository) StatsByUser(userID string) (map[string]int, error) {
    query := `SELECT status, COUNT(*) FROM automated_message_logs WHERE user_id=$1 GROUP BY status`
    rows, err := r.DB.Query(query, userID)
    if err != nil {
        return nil, appErrors.NewPersistence("message log stats", err)
    }
    defer rows.Close()

    stats := map[string]int{
        model.StatusPending: 0,
        model.StatusSent:    0,
        model.StatusFailed:  0,
    }
    for rows.Next() {
        var status string
        var count int
        if err := rows.Scan(&status, &count); err != nil {
            return nil, appErrors.NewPersistence("message log stats", err)
        }
        stats[status] = count
    }
    return stats, nil
}

var _ MessageLogRepositoryInterface = (*MessageLogRepository)(nil)
