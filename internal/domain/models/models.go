package models

import "time"

const (
	StatusPending    = "pending"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"

	// Legacy spelling written by the old store default; read paths must
	// treat it as pending.
	StatusPendingLegacy = "Pending"
)

type User struct {
	ID        string    `json:"id" validate:"omitempty,uuid"`
	Name      string    `json:"name" validate:"required,min=1,max=100"`
	Email     string    `json:"email" validate:"required,email"`
	Password  string    `json:"password,omitempty" validate:"required,min=6,max=100"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
	LastLogin time.Time `json:"lastLogin,omitempty"`
	Tasks     []Task    `json:"tasks"`
	Notes     *Notes    `json:"notes,omitempty"`
}

type Task struct {
	ID          string    `json:"id" validate:"omitempty,uuid"`
	Description string    `json:"description" validate:"required,min=1,max=500"`
	Status      string    `json:"status"`
	Priority    string    `json:"priority"`
	DueDate     string    `json:"dueDate"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Notes struct {
	Content    string    `json:"content"`
	LastUpdate time.Time `json:"lastUpdate"`
}

type DashboardStats struct {
	TotalTasks      int `json:"totalTasks"`
	CompletedTasks  int `json:"completedTasks"`
	PendingTasks    int `json:"pendingTasks"`
	InProgressTasks int `json:"inProgressTasks"`
	OverdueTasks    int `json:"overdueTasks"`
	CompletionRate  int `json:"completionRate"`
}

// TaskView is the projection the dashboard returns: the title is the first
// 50 characters of the description and the status spelling is normalized.
type TaskView struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	DueDate     string `json:"dueDate"`
	CreatedAt   string `json:"createdAt"`
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=100"`
}

type LoginRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=6"`
	RememberMe bool   `json:"rememberMe"`
}

type CreateTaskRequest struct {
	Description string `json:"description" validate:"required"`
	Status      string `json:"status" validate:"omitempty,oneof=pending Pending in-progress completed"`
	Priority    string `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate     string `json:"dueDate"`
}

// UpdateTaskRequest keeps DueDate as a pointer: an explicit empty string
// clears the due date, an absent field leaves it untouched.
type UpdateTaskRequest struct {
	Description string  `json:"description" validate:"required"`
	Status      string  `json:"status" validate:"omitempty,oneof=pending Pending in-progress completed"`
	Priority    string  `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate     *string `json:"dueDate"`
}

type PatchStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending Pending in-progress completed"`
}

// SaveNotesRequest keeps Notes as a pointer so a present-but-empty string is
// accepted while a missing field is rejected.
type SaveNotesRequest struct {
	Notes *string `json:"notes" validate:"required"`
}

// NormalizeStatus maps the legacy "Pending" spelling to the canonical
// lowercase enumeration. Unknown values pass through unchanged.
func NormalizeStatus(status string) string {
	if status == StatusPendingLegacy {
		return StatusPending
	}
	return status
}

// IsPending reports whether a stored status string counts as the pending
// bucket. Anything that is neither completed nor in-progress lands here so
// that the three buckets always sum to the total.
func IsPending(status string) bool {
	return status != StatusCompleted && status != StatusInProgress
}
