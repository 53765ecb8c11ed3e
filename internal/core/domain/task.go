package domain

import (
	"errors"
	"time"
)

// TaskStatus is the stored status of a task. "overdue" is never written;
// it is derived at read time from the deadline.
type TaskStatus string

const (
	TaskPending TaskStatus = "pending"
	TaskDone    TaskStatus = "done"
)

// Valid reports whether s is a storable task status.
func (s TaskStatus) Valid() bool {
	return s == TaskPending || s == TaskDone
}

var ErrTaskNotFound = errors.New("task not found")

// Task is a unit of work attached to a client.
type Task struct {
	ID          string     `json:"id" bson:"id"`
	Title       string     `json:"title" bson:"title"`
	Description string     `json:"description,omitempty" bson:"description,omitempty"`
	ClientID    string     `json:"client_id" bson:"client_id"`
	AssignedTo  string     `json:"assigned_to" bson:"assigned_to"`
	CreatedBy   string     `json:"created_by" bson:"created_by"`
	Deadline    Deadline   `json:"deadline" bson:"deadline"`
	Status      TaskStatus `json:"status" bson:"status"`
	CreatedAt   time.Time  `json:"created_at" bson:"created_at"`
}
