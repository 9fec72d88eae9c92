package repository

import (
    "database/sql"

    appErrors "github.com/leadflow/crm-trigger-backend/internal/errors"
    "github.com/leadflow/crm-trigger-backend/internal/model"
)

// ConnectionRepositoryInterface defines the read-only lookup used by activation
type ConnectionRepositoryInterface interface {
    FindConnected(userID string) (*model.WhatsappConnection, error)
}

// ConnectionRepository reads whatsapp_connections. This service never
// creates or mutates connections; pairing is owned by the CRM proper.
type ConnectionRepository struct {
    DB *sql.DB
}

// FindConnected returns the user's oldest connected instance, or nil when
// the user has no connected instance. Absence is not an error.
func (r *ConnectionRepository) FindConnected(userID string) (*model.WhatsappConnection, error) {
    query := `
        SELECT id, user_id, instance_name, status, created_at
        FROM whatsapp_connections
        WHERE user_id=$1 AND status=$2
        ORDER BY created_at ASC
        LIMIT 1
    `
    row := r.DB.QueryRow(query, userID, model.ConnectionStatusConnected)

    var c model.WhatsappConnection
    if err := row.Scan(&c.ID, &c.UserID, &c.InstanceName, &c.Status, &c.CreatedAt); err != nil {
        if err == sql.ErrNoRows {
            return nil, nil // no channel to send through
        }
        return nil, appErrors.NewPersistence("connection lookup", err)
    }
    return &c, nil
}

var _ ConnectionRepositoryInterface = (*ConnectionRepository)(nil)
