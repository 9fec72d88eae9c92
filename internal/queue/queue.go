package queue

import (
	"fmt"
	"log"
	"sync"
	"time"
)

// DispatchTopic carries the ids of due ledger entries from the poller sweep
// to the dispatch subscribers.
const DispatchTopic = "message_dispatch"

// Queue interface
type Queue interface {
	Publish(topic string, payload any) error
	Subscribe(topic string, handler func(payload any) error) error
}

// InMemoryQueue fans each published job out to its topic subscribers with
// retry and backoff. Used for single-binary deployments and tests; the
// standalone worker consumes RabbitMQ instead.
type InMemoryQueue struct {
	mu       sync.Mutex
	handlers map[string][]func(payload any) error
}

func NewInMemoryQueue() *InMemoryQueue {
	return &InMemoryQueue{
		handlers: make(map[string][]func(payload any) error),
	}
}

// JobPayload wraps a message payload with retry info
type JobPayload struct {
	Payload    any
	RetryCount int
	MaxRetries int
}

// Publish sends a message to all subscribers
func (q *InMemoryQueue) Publish(topic string, payload any) error {
	q.mu.Lock()
	handlers := q.handlers[topic]
	q.mu.Unlock()

	if len(handlers) == 0 {
		return fmt.Errorf("no subscribers for topic %s", topic)
	}

	job := JobPayload{
		Payload:    payload,
		RetryCount: 0,
		MaxRetries: 3,
	}

	for _, handler := range handlers {
		go q.processJob(handler, job)
	}

	return nil
}

// processJob handles retries and errors
func (q *InMemoryQueue) processJob(handler func(payload any) error, job JobPayload) {
	for job.RetryCount <= job.MaxRetries {
		err := handler(job.Payload)
		if err == nil {
			return // ACK
		}

		job.RetryCount++
		log.Printf("Job failed (attempt %d/%d): %+v, error: %v\n", job.RetryCount, job.MaxRetries, job.Payload, err)

		if job.RetryCount > job.MaxRetries {
			log.Printf("Job permanently failed after %d attempts: %+v\n", job.MaxRetries, job.Payload)
			return // No requeue
		}

		// Backoff before retry
		time.Sleep(time.Duration(job.RetryCount*500) * time.Millisecond)
	}
}

// Subscribe adds a handler for a topic
func (q *InMemoryQueue) Subscribe(topic string, handler func(payload any) error) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.handlers[topic] = append(q.handlers[topic], handler)
	return nil
}

// Dispatcher is the slice of DispatchService the subscriber needs.
type Dispatcher interface {
	Process(logID string) error
}

// StartDispatchSubscriber wires a dispatcher to the dispatch topic so that
// published ledger-entry ids are sent in-process.
func StartDispatchSubscriber(q Queue, dispatcher Dispatcher) {
	err := q.Subscribe(DispatchTopic, func(payload any) error {
		logID, ok := payload.(string)
		if !ok {
			log.Println("⚠️ Invalid payload type, expected message log id string")
			return nil // not retryable
		}

		log.Println("📩 Processing queued message log ID:", logID)
		return dispatcher.Process(logID)
	})
	if err != nil {
		log.Println("⚠️ Failed to start subscriber for message_dispatch:", err)
	}
}
