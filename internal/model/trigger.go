// internal/model/trigger.go
package model

import "time"

// Trigger conditions. An on_both trigger matches both enter and exit queries.
const (
	ConditionOnEnter = "on_enter"
	ConditionOnExit  = "on_exit"
	ConditionOnBoth  = "on_both"
)

// ValidCondition reports whether c is one of the three enumerated conditions.
func ValidCondition(c string) bool {
	return c == ConditionOnEnter || c == ConditionOnExit || c == ConditionOnBoth
}

// Trigger is a per-column messaging rule: when a lead enters/exits the column,
// a personalized message is scheduled after DelayHours.
type Trigger struct {
	ID               string     `db:"id" json:"id"`
	UserID           string     `db:"user_id" json:"user_id"`
	ColumnID         string     `db:"column_id" json:"column_id"`
	MessageTitle     string     `db:"message_title" json:"message_title"`
	MessageContent   string     `db:"message_content" json:"message_content"`
	TriggerCondition string     `db:"trigger_condition" json:"trigger_condition"` // on_enter, on_exit, on_both
	DelayHours       *float64   `db:"delay_hours" json:"delay_hours,omitempty"`   // nil or 0 means immediate
	IsActive         bool       `db:"is_active" json:"is_active"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// TriggerUpdate carries the mutable fields for a partial update.
// Nil fields are left untouched.
type TriggerUpdate struct {
	MessageTitle     *string  `json:"message_title,omitempty"`
	MessageContent   *string  `json:"message_content,omitempty"`
	TriggerCondition *string  `json:"trigger_condition,omitempty"`
	DelayHours       *float64 `json:"delay_hours,omitempty"`
	IsActive         *bool    `json:"is_active,omitempty"`
}
