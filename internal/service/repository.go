package service

import (
	"context"

	"taskboard/internal/models"
)

// UserRepository persists users.
type UserRepository interface {
	CreateUser(ctx context.Context, u models.User) (models.User, error)
	GetUser(ctx context.Context, id int64) (models.User, error)
	ListUsers(ctx context.Context, q models.UserQuery) ([]models.User, int64, error)
	// MissingUsers returns the ids among ids that have no user row.
	MissingUsers(ctx context.Context, ids []int64) ([]int64, error)
	// SharesProject reports whether both users are members of a common project.
	SharesProject(ctx context.Context, a, b int64) (bool, error)
	DeleteUser(ctx context.Context, id int64) error
}

// ProjectRepository persists projects and their member sets.
type ProjectRepository interface {
	ListProjects(ctx context.Context, q models.ProjectQuery) ([]models.Project, int64, error)
	GetProject(ctx context.Context, id int64) (models.Project, error)
	CreateProject(ctx context.Context, p models.Project) (models.Project, error)
	UpdateProject(ctx context.Context, p models.Project) (models.Project, error)
	DeleteProject(ctx context.Context, id int64) error
	ProjectMemberIDs(ctx context.Context, projectID int64) ([]int64, error)
	// AddMembers links users idempotently and returns the resulting member list.
	AddMembers(ctx context.Context, projectID int64, userIDs []int64) ([]models.Member, error)
	// RemoveMembers unlinks users and returns the resulting member list.
	RemoveMembers(ctx context.Context, projectID int64, userIDs []int64) ([]models.Member, error)
}

// TaskRepository persists tasks, their status catalog and audit trail.
type TaskRepository interface {
	GetStatus(ctx context.Context, id models.StatusID) (models.TaskStatus, error)
	ListStatuses(ctx context.Context) ([]models.TaskStatus, error)

	ListTasks(ctx context.Context, q models.TaskQuery) ([]models.Task, int64, error)
	GetTask(ctx context.Context, id int64) (models.Task, error)
	GetTaskDetail(ctx context.Context, id int64) (models.TaskDetail, error)
	CreateTask(ctx context.Context, t models.Task) (models.Task, error)
	// UpdateTask writes every mutable column of t and appends the activity
	// entries in the same transaction.
	UpdateTask(ctx context.Context, t models.Task, activity []models.ActivityLog) (models.Task, error)
	// AssignTask sets the assignee, optionally appends a comment and records
	// the change, all in one transaction.
	AssignTask(ctx context.Context, taskID, assigneeID int64, comment *models.Comment, entry models.ActivityLog) (models.Task, error)
	DeleteTask(ctx context.Context, id int64) error
	ListActivity(ctx context.Context, taskID int64) ([]models.ActivityLog, error)
}

// CommentRepository persists task comments.
type CommentRepository interface {
	ListComments(ctx context.Context, taskID int64) ([]models.Comment, error)
	CreateComment(ctx context.Context, c models.Comment) (models.Comment, error)
}

// StatsRepository computes live aggregates.
type StatsRepository interface {
	Stats(ctx context.Context) (models.Stats, error)
}

// Repository is everything the services need from the store. Implementations
// return apperr errors for missing rows and constraint violations.
type Repository interface {
	UserRepository
	ProjectRepository
	TaskRepository
	CommentRepository
	StatsRepository
}
