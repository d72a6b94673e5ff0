package worker

import (
	"time"

	"github.com/google/uuid"
)

// Priority levels for job scheduling.
type Priority int

const (
	PriorityLow      Priority = 0
	PriorityNormal   Priority = 1
	PriorityHigh     Priority = 2
	PriorityCritical Priority = 3
)

// JobType represents the type of a job.
type JobType = string

// Job types
const (
	// Email jobs
	JobEmailReceived JobType = "email.received"

	// Linking jobs
	JobBatchLink      = "linking.batch"
	JobShipmentResync = "shipment.resync"
)

type Message struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Payload   map[string]any `json:"payload"`
	Priority  Priority       `json:"priority"`
	CreatedAt time.Time      `json:"created_at"`
	Retries   int            `json:"retries"`
}

func NewMessage(jobType string, payload map[string]any) *Message {
	return &Message{
		ID:        uuid.New().String(),
		Type:      jobType,
		Payload:   payload,
		Priority:  PriorityNormal,
		CreatedAt: time.Now(),
		Retries:   0,
	}
}

// NewPriorityMessage creates a message with specific priority.
func NewPriorityMessage(jobType string, payload map[string]any, priority Priority) *Message {
	return &Message{
		ID:        uuid.New().String(),
		Type:      jobType,
		Payload:   payload,
		Priority:  priority,
		CreatedAt: time.Now(),
		Retries:   0,
	}
}

// IsPriority checks if message should go to priority queue.
func (m *Message) IsPriority() bool {
	return m.Priority >= PriorityHigh
}

// Email payloads
type EmailReceivedPayload struct {
	EmailID    string    `json:"email_id"` // uuid string, parsed by the processor
	ReceivedAt time.Time `json:"received_at"`
	UseAI      bool      `json:"use_ai"`
}

// Linking payloads
type BatchLinkPayload struct {
	PageSize int `json:"page_size"`
	MaxPages int `json:"max_pages"`
}

type ShipmentResyncPayload struct {
	ShipmentID string `json:"shipment_id"`
}
