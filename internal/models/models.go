package models

import "time"

// Role is the coarse capability class of a user.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// User is an account that can own, join and work on projects.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Member is the public projection of a user inside a project.
type Member struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UserRef is the minimal user projection attached to comments.
type UserRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Project groups tasks and the users allowed to work on them.
type Project struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	StartDate   string    `json:"start_date"`
	EndDate     string    `json:"end_date"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Members     []Member  `json:"members"`
}

// ProjectRef is the minimal project projection attached to tasks.
type ProjectRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Task is a unit of work inside a project.
type Task struct {
	ID           int64      `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	ProjectID    int64      `json:"project_id"`
	StatusID     StatusID   `json:"status_id"`
	AssignedToID *int64     `json:"assigned_to_id"`
	CreatedByID  int64      `json:"created_by_id"`
	DueDate      string     `json:"due_date"`
	CompletedAt  *time.Time `json:"completed_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// IsAssignee reports whether userID is the current assignee.
func (t Task) IsAssignee(userID int64) bool {
	return t.AssignedToID != nil && *t.AssignedToID == userID
}

// TaskDetail is a task with its related records loaded.
type TaskDetail struct {
	Task
	Project  ProjectRef `json:"project"`
	Status   TaskStatus `json:"status"`
	Assignee *Member    `json:"assignee"`
	Creator  *Member    `json:"creator"`
	Comments []Comment  `json:"comments"`
}

// Comment is a note left on a task.
type Comment struct {
	ID        int64     `json:"id"`
	TaskID    int64     `json:"task_id"`
	UserID    int64     `json:"user_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	User      *UserRef  `json:"user,omitempty"`
}

// Activity action types.
const (
	ActionCreated       = "created"
	ActionAssigned      = "assigned"
	ActionStatusChanged = "status_changed"
	ActionUpdated       = "updated"
)

// ActivityLog is an append-only audit record of a task change.
type ActivityLog struct {
	ID         int64     `json:"id"`
	TaskID     int64     `json:"task_id"`
	UserID     *int64    `json:"user_id"`
	ActionType string    `json:"action_type"`
	FieldName  string    `json:"field_name,omitempty"`
	OldValue   string    `json:"old_value,omitempty"`
	NewValue   string    `json:"new_value,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// TaskCounts holds task totals per status.
type TaskCounts struct {
	All        int64 `json:"all"`
	Completed  int64 `json:"completed"`
	Closed     int64 `json:"closed"`
	InProgress int64 `json:"in_progress"`
}

// Stats is the analytics snapshot.
type Stats struct {
	Tasks    TaskCounts `json:"tasks"`
	Projects int64      `json:"projects"`
	Users    int64      `json:"users"`
}

// DateLayout is the wire and storage format of calendar dates.
const DateLayout = "2006-01-02"
