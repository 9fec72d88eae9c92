// internal/model/connection.go
package model

import "time"

const ConnectionStatusConnected = "connected"

// WhatsappConnection is a user's WhatsApp instance. Only connected instances
// can be used as a send channel; this service reads them, it never writes.
type WhatsappConnection struct {
	ID           string    `db:"id" json:"id"`
	UserID       string    `db:"user_id" json:"user_id"`
	InstanceName string    `db:"instance_name" json:"instance_name"`
	Status       string    `db:"status" json:"status"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
