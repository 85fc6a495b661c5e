package service

import "taskboard/internal/models"

// Commands are decoded by the transport and validated here before any
// service touches the store. Unknown JSON fields are ignored.

// CreateUser registers an account during administrative setup.
type CreateUser struct {
	Name  string `json:"name" validate:"required,max=255"`
	Email string `json:"email" validate:"required,email,max=255"`
	Role  string `json:"role" validate:"required,oneof=admin user"`
}

// CreateProject creates a project.
type CreateProject struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description"`
	StartDate   string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate     string `json:"end_date" validate:"required,datetime=2006-01-02"`
}

// UpdateProject changes any subset of a project's fields.
type UpdateProject struct {
	ID          int64   `json:"-" validate:"gt=0"`
	Name        *string `json:"name" validate:"omitnil,min=1,max=255"`
	Description *string `json:"description"`
	StartDate   *string `json:"start_date" validate:"omitnil,datetime=2006-01-02"`
	EndDate     *string `json:"end_date" validate:"omitnil,datetime=2006-01-02"`
}

// ChangeMembers adds or removes users from a project.
type ChangeMembers struct {
	ProjectID int64   `json:"-" validate:"gt=0"`
	UserIDs   []int64 `json:"user_ids" validate:"required,min=1,dive,gt=0"`
}

// ProjectFilter narrows a project listing.
type ProjectFilter struct {
	Search string
	Page   models.PageRequest
}

// CreateTask creates a task in the In Progress stage.
type CreateTask struct {
	Title        string `json:"title" validate:"required,max=255"`
	Description  string `json:"description"`
	ProjectID    int64  `json:"project_id" validate:"required,gt=0"`
	DueDate      string `json:"due_date" validate:"required,datetime=2006-01-02"`
	AssignedToID int64  `json:"assigned_to_id" validate:"required,gt=0"`
}

// UpdateTask edits any subset of a task's mutable fields.
type UpdateTask struct {
	ID           int64   `json:"-" validate:"gt=0"`
	Title        *string `json:"title" validate:"omitnil,min=1,max=255"`
	Description  *string `json:"description"`
	DueDate      *string `json:"due_date" validate:"omitnil,datetime=2006-01-02"`
	StatusID     *int64  `json:"status_id" validate:"omitnil,gt=0"`
	AssignedToID *int64  `json:"assigned_to_id" validate:"omitnil,gt=0"`
	ProjectID    *int64  `json:"project_id" validate:"omitnil,gt=0"`
}

// AssignTask delegates a task to a project member.
type AssignTask struct {
	TaskID  int64  `json:"task_id" validate:"required,gt=0"`
	UserID  int64  `json:"user_id" validate:"required,gt=0"`
	Comment string `json:"comment"`
}

// TaskFilter narrows a task listing.
type TaskFilter struct {
	AssignedOnly bool
	Search       string
	ProjectID    int64
	StatusID     int64
	Page         models.PageRequest
}

// CreateComment leaves a note on a task.
type CreateComment struct {
	TaskID int64  `json:"-" validate:"gt=0"`
	Body   string `json:"body" validate:"required"`
}

// UserFilter narrows a user listing.
type UserFilter struct {
	Search string
	Page   models.PageRequest
}
