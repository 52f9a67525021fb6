package models

import "time"

// Task statuses. Cancelled is accepted and rendered but never assigned by
// default; pending is the creation default.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// ValidTaskStatuses enumerates the statuses accepted on create and update.
var ValidTaskStatuses = map[string]struct{}{
	StatusPending:   {},
	StatusCompleted: {},
	StatusCancelled: {},
}

// statusLabels maps statuses to their display form for exports.
var statusLabels = map[string]string{
	StatusPending:   "Pending",
	StatusCompleted: "Completed",
	StatusCancelled: "Cancelled",
}

// StatusLabel returns the display label for a status. Unmapped values pass
// through verbatim.
func StatusLabel(status string) string {
	if label, ok := statusLabels[status]; ok {
		return label
	}
	return status
}

// User is an account that owns tasks. The password hash never leaves the
// server.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Task is a single to-do item belonging to exactly one user.
type Task struct {
	ID          int64     `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateTaskInput carries the fields accepted when creating a task. Title is
// required; status defaults to pending when empty.
type CreateTaskInput struct {
	Title       string
	Description string
	Status      string
}

// UpdateTaskInput carries a partial update. Nil fields are left untouched.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Status      *string
}
