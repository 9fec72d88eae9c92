// internal/errors/errors.go
package appErrors

import "fmt"

// ErrTriggerNotFound is a sentinel error
type ErrTriggerNotFound struct {
	TriggerID string
}

func (e *ErrTriggerNotFound) Error() string {
	return fmt.Sprintf("trigger with ID %s not found", e.TriggerID)
}

// Helper constructor
func NewTriggerNotFound(id string) error {
	return &ErrTriggerNotFound{TriggerID: id}
}

// ErrMessageLogNotFound marks a ledger lookup miss
type ErrMessageLogNotFound struct {
	LogID string
}

func (e *ErrMessageLogNotFound) Error() string {
	return fmt.Sprintf("message log with ID %s not found", e.LogID)
}

func NewMessageLogNotFound(id string) error {
	return &ErrMessageLogNotFound{LogID: id}
}

// ErrValidation rejects a malformed trigger definition (empty title/content,
// negative delay, unknown condition). Never retried automatically.
type ErrValidation struct {
	Field  string
	Reason string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func NewValidation(field, reason string) error {
	return &ErrValidation{Field: field, Reason: reason}
}

// ErrInvalidState rejects a ledger transition from a non-pending status.
// A log entry moves pending -> sent or pending -> failed exactly once.
type ErrInvalidState struct {
	LogID  string
	Status string
}

func (e *ErrInvalidState) Error() string {
	return fmt.Sprintf("message log %s is %s, not pending", e.LogID, e.Status)
}

func NewInvalidState(id, status string) error {
	return &ErrInvalidState{LogID: id, Status: status}
}

// ErrPersistence wraps a store failure so callers can tell it apart from
// domain errors.
type ErrPersistence struct {
	Op  string
	Err error
}

func (e *ErrPersistence) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *ErrPersistence) Unwrap() error {
	return e.Err
}

func NewPersistence(op string, err error) error {
	return &ErrPersistence{Op: op, Err: err}
}
