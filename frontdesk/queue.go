/*
Package frontdesk holds the reception-side collaborators of the billing
engine: the walk-in queue and the patient directory.

Neither touches stock or the ledger. Checkout only ever sees a patient's
display label.
*/
package frontdesk

import (
	"errors"
	"strings"
	"sync"
)

var (
	// ErrEmptyQueue is returned when calling the next patient with nobody waiting.
	ErrEmptyQueue = errors.New("queue is empty")

	// ErrInvalidLabel is returned for a blank queue entry.
	ErrInvalidLabel = errors.New("queue label is required")
)

// =============================================================================
// QUEUE - Walk-in arrivals, first come first served
// =============================================================================

// QueueEntry is a waiting patient with its 1-based display position.
type QueueEntry struct {
	Position int    `json:"position"`
	Label    string `json:"label"`
}

type Queue struct {
	mu      sync.Mutex
	entries []string
}

func NewQueue() *Queue {
	return &Queue{}
}

// Enqueue appends label at the tail.
func (q *Queue) Enqueue(label string) error {
	label = strings.TrimSpace(label)
	if label == "" {
		return ErrInvalidLabel
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	q.entries = append(q.entries, label)
	return nil
}

// DequeueFront removes and returns the head of the queue.
func (q *Queue) DequeueFront() (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.entries) == 0 {
		return "", ErrEmptyQueue
	}
	head := q.entries[0]
	q.entries[0] = ""
	q.entries = q.entries[1:]
	return head, nil
}

// PeekAll returns the waiting patients in arrival order.
func (q *Queue) PeekAll() []QueueEntry {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]QueueEntry, len(q.entries))
	for i, label := range q.entries {
		out[i] = QueueEntry{Position: i + 1, Label: label}
	}
	return out
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}
