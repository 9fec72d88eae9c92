// internal/service/dispatch_service.go
package service

import (
    "log"
    "time"

    appErrors "github.com/leadflow/crm-trigger-backend/internal/errors"
    "github.com/leadflow/crm-trigger-backend/internal/model"
    "github.com/leadflow/crm-trigger-backend/internal/queue"
    "github.com/leadflow/crm-trigger-backend/internal/repository"
    "github.com/leadflow/crm-trigger-backend/internal/sender"
)

const defaultMaxRetries = 3

// DispatchService performs the actual send for one due ledger entry and
// reports the outcome back through the ledger's terminal transitions.
// It is shared by the in-process queue subscriber and the RabbitMQ worker.
type DispatchService struct {
    MessageLogRepo repository.MessageLogRepositoryInterface
    Sender         sender.Sender

    // MaxRetries caps send attempts per entry before the terminal failed
    // transition. Zero means the default of 3.
    MaxRetries int

    Now func() time.Time
}

func (s *DispatchService) now() time.Time {
    if s.Now != nil {
        return s.Now()
    }
    return time.Now().UTC()
}

func (s *DispatchService) maxRetries() int {
    if s.MaxRetries > 0 {
        return s.MaxRetries
    }
    return defaultMaxRetries
}

// ListDue exposes the poller pull query.
func (s *DispatchService) ListDue(now time.Time) ([]*model.MessageLog, error) {
    return s.MessageLogRepo.ListDuePending(now)
}

// EnqueueDue publishes the id of every due pending entry to the dispatch
// topic. It is the in-process counterpart of the worker's RabbitMQ sweep,
// used by single-binary deployments.
func (s *DispatchService) EnqueueDue(q queue.Queue, now time.Time) (int, error) {
    due, err := s.MessageLogRepo.ListDuePending(now)
    if err != nil {
        return 0, err
    }

    queued := 0
    for _, entry := range due {
        if err := q.Publish(queue.DispatchTopic, entry.ID); err != nil {
            log.Printf("[DISPATCH] - failed to queue message %s: %v", entry.ID, err)
            continue
        }
        queued++
    }
    return queued, nil
}

// Process sends one ledger entry. On success it flips pending -> sent. On a
// send failure it bumps retry_count and leaves the entry pending so the next
// sweep retries it, until the retry cap forces the terminal failed state.
// An entry that already reached a terminal state (a concurrent worker got
// there first) is treated as handled, not retried.
func (s *DispatchService) Process(logID string) error {
    entry, err := s.MessageLogRepo.GetByID(logID)
    if err != nil {
        return err
    }
    if entry.Status != model.StatusPending {
        log.Printf("[DISPATCH] - message %s already %s, nothing to do", entry.ID, entry.Status)
        return nil
    }

    sendErr := s.Sender.SendText(entry.InstanceName, entry.WhatsappNumber, entry.MessageContent)
    if sendErr == nil {
        if err := s.MessageLogRepo.MarkSent(entry.ID, s.now()); err != nil {
            if _, raced := err.(*appErrors.ErrInvalidState); raced {
                return nil
            }
            return err
        }
        log.Printf("[DISPATCH] - message %s sent via %s", entry.ID, entry.InstanceName)
        return nil
    }

    log.Printf("[DISPATCH] - send failed for message %s (attempt %d): %v", entry.ID, entry.RetryCount+1, sendErr)

    if entry.RetryCount+1 < s.maxRetries() {
        if err := s.MessageLogRepo.IncrementRetry(entry.ID); err != nil {
            return err
        }
        return sendErr
    }

    if err := s.MessageLogRepo.MarkFailed(entry.ID, sendErr.Error()); err != nil {
        if _, raced := err.(*appErrors.ErrInvalidState); raced {
            return nil
        }
        return err
    }
    return sendErr
}
