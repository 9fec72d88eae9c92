// internal/model/lead_move.go
package model

// LeadMoveEvent describes a lead changing kanban columns. FromColumnID is
// empty when the lead was created directly into ToColumnID. LeadPhone may be
// empty; activation skips such leads entirely.
// Not persisted by this service.
type LeadMoveEvent struct {
	LeadID       string `json:"lead_id"`
	LeadName     string `json:"lead_name"`
	LeadPhone    string `json:"lead_phone,omitempty"`
	FromColumnID string `json:"from_column_id,omitempty"`
	ToColumnID   string `json:"to_column_id"`
	UserID       string `json:"user_id"`
}
