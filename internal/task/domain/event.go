package domain

import "time"

type EventType string

const (
	EventTaskCreated       EventType = "task.created"
	EventTaskStatusChanged EventType = "task.status_changed"
)

// TaskEvent is published after a successful mutation of the task table.
type TaskEvent struct {
	Type           EventType `json:"type"`
	TaskID         string    `json:"task_id"`
	Name           string    `json:"name"`
	Category       Category  `json:"category,omitempty"`
	Status         Status    `json:"status"`
	PreviousStatus Status    `json:"previous_status,omitempty"`
	At             time.Time `json:"at"`
}
