package core

import (
	"time"
)

// Task priority levels
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// ValidPriority reports whether p is one of the known priority levels.
func ValidPriority(p string) bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// User is a registered account. The password hash never leaves the
// server; it is excluded from JSON output.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Task is a single to-do item owned by exactly one user. UserID is set
// at creation and never changes.
type Task struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	DueDate   time.Time `json:"dueDate"`
	Priority  string    `json:"priority"` // low, medium, high
	Tags      []string  `json:"tags"`
	Completed bool      `json:"completed"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Identity is the authenticated user, produced only by the
// authenticator's Validate. Handlers and services never construct one
// from raw request data.
type Identity struct {
	UserID   string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// TaskInput carries the client-supplied fields for creating or fully
// replacing a task. Tags is nil when the client omitted the field,
// which is a validation error; an empty list is allowed.
type TaskInput struct {
	Title    string
	DueDate  time.Time
	Priority string
	Tags     []string
}
