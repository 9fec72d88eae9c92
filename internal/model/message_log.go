// internal/model/message_log.go
package model

import "time"

// Message log statuses. pending is the initial state; sent and failed are terminal.
const (
	StatusPending = "pending"
	StatusSent    = "sent"
	StatusFailed  = "failed"
)

// MessageLog is one scheduled automated message, created by trigger activation
// and moved to a terminal state exactly once by the dispatch worker.
// ScheduledFor is when the message becomes due; SentAt is set only on success,
// ErrorMessage only on failure.
type MessageLog struct {
	ID             string     `db:"id" json:"id"`
	TriggerID      string     `db:"trigger_id" json:"trigger_id"`
	LeadID         string     `db:"lead_id" json:"lead_id"`
	UserID         string     `db:"user_id" json:"user_id"`
	MessageContent string     `db:"message_content" json:"message_content"`
	WhatsappNumber string     `db:"whatsapp_number" json:"whatsapp_number"`
	InstanceName   string     `db:"instance_name" json:"instance_name"`
	Status         string     `db:"status" json:"status"` // pending, sent, failed
	ScheduledFor   time.Time  `db:"scheduled_for" json:"scheduled_for"`
	SentAt         *time.Time `db:"sent_at" json:"sent_at,omitempty"`
	ErrorMessage   string     `db:"error_message,omitempty" json:"error_message,omitempty"`
	RetryCount     int        `db:"retry_count" json:"retry_count"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}
