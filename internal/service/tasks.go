package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"taskboard/internal/apperr"
	"taskboard/internal/models"
	"taskboard/internal/policy"
)

// Tasks runs the task lifecycle: creation, delegation, completion, closing
// and direct edits.
type Tasks struct {
	*base
}

// List returns the tasks visible to the caller ordered by due date.
func (s *Tasks) List(ctx context.Context, caller policy.Caller, f TaskFilter) (models.Page[models.Task], error) {
	status := models.StatusID(f.StatusID)
	if f.StatusID != 0 && !status.Valid() {
		return models.Page[models.Task]{}, apperr.Validation("status_id", apperr.FieldIsInvalid("status_id"))
	}

	q := models.TaskQuery{
		Scope:     policy.ListScope(caller),
		Search:    strings.TrimSpace(f.Search),
		ProjectID: f.ProjectID,
		StatusID:  status,
		Page:      f.Page.Normalize(),
	}
	if f.AssignedOnly {
		q.AssigneeID = caller.ID
	}

	rows, total, err := s.repo.ListTasks(ctx, q)
	if err != nil {
		return models.Page[models.Task]{}, err
	}
	return listing(rows, total, q.Page), nil
}

// Statuses returns the lifecycle catalog in stage order.
func (s *Tasks) Statuses(ctx context.Context) ([]models.TaskStatus, error) {
	return s.repo.ListStatuses(ctx)
}

// Get returns the task with its relations if the caller may see it.
func (s *Tasks) Get(ctx context.Context, caller policy.Caller, id int64) (models.TaskDetail, error) {
	if _, _, err := s.authorize(ctx, caller, id); err != nil {
		return models.TaskDetail{}, err
	}
	return s.repo.GetTaskDetail(ctx, id)
}

// Create adds a task in the In Progress stage, created by the caller.
func (s *Tasks) Create(ctx context.Context, caller policy.Caller, cmd CreateTask) (models.Task, error) {
	if err := check(cmd); err != nil {
		return models.Task{}, err
	}
	if blank(cmd.Title) {
		return models.Task{}, apperr.Validation("title", apperr.FieldIsRequired("title"))
	}
	if err := s.requireProject(ctx, cmd.ProjectID); err != nil {
		return models.Task{}, err
	}
	if err := s.requireUser(ctx, "assigned_to_id", cmd.AssignedToID); err != nil {
		return models.Task{}, err
	}
	if err := s.requireStatus(ctx, models.StatusInProgress); err != nil {
		return models.Task{}, err
	}

	assignee := cmd.AssignedToID
	task, err := s.repo.CreateTask(ctx, models.Task{
		Title:        strings.TrimSpace(cmd.Title),
		Description:  strings.TrimSpace(cmd.Description),
		ProjectID:    cmd.ProjectID,
		StatusID:     models.StatusInProgress,
		AssignedToID: &assignee,
		CreatedByID:  caller.ID,
		DueDate:      cmd.DueDate,
	})
	if err != nil {
		return models.Task{}, err
	}
	s.logger.Info("task created", "task_id", task.ID, "project_id", task.ProjectID, "created_by", caller.ID)
	return task, nil
}

// Assign delegates the task to a member of its project. A non-blank
// comment is stored as a comment authored by the caller.
func (s *Tasks) Assign(ctx context.Context, caller policy.Caller, cmd AssignTask) (models.Task, error) {
	if err := check(cmd); err != nil {
		return models.Task{}, err
	}

	task, err := s.repo.GetTask(ctx, cmd.TaskID)
	if err != nil {
		return models.Task{}, err
	}
	roster, err := s.roster(ctx, task.ProjectID)
	if err != nil {
		return models.Task{}, err
	}
	if err := policy.CanAssign(caller, task, roster, cmd.UserID); err != nil {
		return models.Task{}, err
	}

	var comment *models.Comment
	if body := strings.TrimSpace(cmd.Comment); body != "" {
		comment = &models.Comment{TaskID: task.ID, UserID: caller.ID, Body: body}
	}
	entry := s.activity(caller, task.ID, models.ActionAssigned, "assigned_to_id", formatID(task.AssignedToID), strconv.FormatInt(cmd.UserID, 10))

	updated, err := s.repo.AssignTask(ctx, task.ID, cmd.UserID, comment, entry)
	if err != nil {
		return models.Task{}, err
	}
	s.logger.Info("task assigned", "task_id", task.ID, "assignee", cmd.UserID, "by", caller.ID)
	return updated, nil
}

// MarkComplete moves the task to Completed. Repeating the call is harmless
// and keeps the first completion time.
func (s *Tasks) MarkComplete(ctx context.Context, caller policy.Caller, id int64) (models.Task, error) {
	task, _, err := s.authorize(ctx, caller, id)
	if err != nil {
		return models.Task{}, err
	}
	if err := s.requireStatus(ctx, models.StatusCompleted); err != nil {
		return models.Task{}, err
	}
	return s.transition(ctx, caller, task, models.StatusCompleted)
}

// Close moves the task to Closed. Only administrators may close tasks; the
// transport enforces that before calling.
func (s *Tasks) Close(ctx context.Context, caller policy.Caller, id int64) (models.Task, error) {
	task, err := s.repo.GetTask(ctx, id)
	if err != nil {
		return models.Task{}, err
	}
	if err := s.requireStatus(ctx, models.StatusClosed); err != nil {
		return models.Task{}, err
	}
	return s.transition(ctx, caller, task, models.StatusClosed)
}

// Update applies a partial edit. Every field is validated before anything
// is written.
func (s *Tasks) Update(ctx context.Context, caller policy.Caller, cmd UpdateTask) (models.Task, error) {
	if err := check(cmd); err != nil {
		return models.Task{}, err
	}

	current, roster, err := s.authorize(ctx, caller, cmd.ID)
	if err != nil {
		return models.Task{}, err
	}

	next := current
	var entries []models.ActivityLog
	record := func(field, oldValue, newValue string) {
		if oldValue != newValue {
			entries = append(entries, s.activity(caller, current.ID, models.ActionUpdated, field, oldValue, newValue))
		}
	}

	if cmd.Title != nil {
		if blank(*cmd.Title) {
			return models.Task{}, apperr.Validation("title", apperr.FieldIsRequired("title"))
		}
		next.Title = strings.TrimSpace(*cmd.Title)
		record("title", current.Title, next.Title)
	}
	if cmd.Description != nil {
		next.Description = strings.TrimSpace(*cmd.Description)
		record("description", current.Description, next.Description)
	}
	if cmd.DueDate != nil {
		next.DueDate = *cmd.DueDate
		record("due_date", current.DueDate, next.DueDate)
	}

	if cmd.ProjectID != nil && *cmd.ProjectID != current.ProjectID {
		if err := s.requireProject(ctx, *cmd.ProjectID); err != nil {
			return models.Task{}, err
		}
		dest, err := s.roster(ctx, *cmd.ProjectID)
		if err != nil {
			return models.Task{}, err
		}
		if !policy.CanViewProject(caller, dest) {
			return models.Task{}, apperr.Forbidden("you are not a member of the destination project")
		}
		next.ProjectID = *cmd.ProjectID
		roster = dest
		record("project_id", strconv.FormatInt(current.ProjectID, 10), strconv.FormatInt(next.ProjectID, 10))
	}

	if cmd.AssignedToID != nil && !current.IsAssignee(*cmd.AssignedToID) {
		if err := s.requireUser(ctx, "assigned_to_id", *cmd.AssignedToID); err != nil {
			return models.Task{}, err
		}
		if !roster.Has(*cmd.AssignedToID) {
			return models.Task{}, apperr.InvalidAssignee()
		}
		assignee := *cmd.AssignedToID
		next.AssignedToID = &assignee
		record("assigned_to_id", formatID(current.AssignedToID), formatID(next.AssignedToID))
	}

	if cmd.StatusID != nil {
		status := models.StatusID(*cmd.StatusID)
		if !status.Valid() {
			return models.Task{}, apperr.Validation("status_id", apperr.NotExist("status"))
		}
		if err := s.requireStatus(ctx, status); err != nil {
			return models.Task{}, err
		}
		if !current.StatusID.CanMoveTo(status) {
			return models.Task{}, invalidTransition(current.StatusID, status)
		}
		next.StatusID = status
		if status == models.StatusCompleted && next.CompletedAt == nil {
			now := s.now().UTC()
			next.CompletedAt = &now
		}
		if status != current.StatusID {
			entries = append(entries, s.activity(caller, current.ID, models.ActionStatusChanged, "status_id", current.StatusID.String(), status.String()))
		}
	}

	if len(entries) == 0 {
		return current, nil
	}
	return s.repo.UpdateTask(ctx, next, entries)
}

// Delete removes a task with its comments and activity.
func (s *Tasks) Delete(ctx context.Context, id int64) error {
	if err := s.repo.DeleteTask(ctx, id); err != nil {
		return err
	}
	s.logger.Info("task deleted", "task_id", id)
	return nil
}

// Activity returns the audit trail of a task, oldest first.
func (s *Tasks) Activity(ctx context.Context, caller policy.Caller, id int64) ([]models.ActivityLog, error) {
	if _, _, err := s.authorize(ctx, caller, id); err != nil {
		return nil, err
	}
	return s.repo.ListActivity(ctx, id)
}

// authorize loads a task and its project roster and checks read access.
func (s *Tasks) authorize(ctx context.Context, caller policy.Caller, id int64) (models.Task, policy.Roster, error) {
	task, err := s.repo.GetTask(ctx, id)
	if err != nil {
		return models.Task{}, nil, err
	}
	roster, err := s.roster(ctx, task.ProjectID)
	if err != nil {
		return models.Task{}, nil, err
	}
	if !policy.CanViewTask(caller, task, roster) {
		return models.Task{}, nil, apperr.Forbidden("you are not authorized to access this task")
	}
	return task, roster, nil
}

func (s *Tasks) transition(ctx context.Context, caller policy.Caller, task models.Task, status models.StatusID) (models.Task, error) {
	if task.StatusID == status {
		return task, nil
	}
	if !task.StatusID.CanMoveTo(status) {
		return models.Task{}, invalidTransition(task.StatusID, status)
	}

	next := task
	next.StatusID = status
	if status == models.StatusCompleted && next.CompletedAt == nil {
		now := s.now().UTC()
		next.CompletedAt = &now
	}
	entry := s.activity(caller, task.ID, models.ActionStatusChanged, "status_id", task.StatusID.String(), status.String())

	updated, err := s.repo.UpdateTask(ctx, next, []models.ActivityLog{entry})
	if err != nil {
		return models.Task{}, err
	}
	s.logger.Info("task status changed", "task_id", task.ID, "from", task.StatusID.String(), "to", status.String(), "by", caller.ID)
	return updated, nil
}

// requireStatus fails when a seeded status row is missing from the store,
// which is a server misconfiguration rather than a caller error.
func (s *Tasks) requireStatus(ctx context.Context, id models.StatusID) error {
	_, err := s.repo.GetStatus(ctx, id)
	if apperr.IsKind(err, apperr.KindNotFound) {
		s.logger.Error("task status missing from store", "status_id", int64(id), "status", id.String())
		return apperr.Misconfigured(fmt.Sprintf("task status %q is not configured", id.String()))
	}
	return err
}

func (s *Tasks) requireProject(ctx context.Context, id int64) error {
	_, err := s.repo.GetProject(ctx, id)
	if apperr.IsKind(err, apperr.KindNotFound) {
		return apperr.Validation("project_id", apperr.NotExist("project"))
	}
	return err
}

func (s *Tasks) requireUser(ctx context.Context, field string, id int64) error {
	missing, err := s.repo.MissingUsers(ctx, []int64{id})
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return apperr.Validation(field, apperr.NotExist("user"))
	}
	return nil
}

func (s *Tasks) activity(caller policy.Caller, taskID int64, action, field, oldValue, newValue string) models.ActivityLog {
	actor := caller.ID
	return models.ActivityLog{
		TaskID:     taskID,
		UserID:     &actor,
		ActionType: action,
		FieldName:  field,
		OldValue:   oldValue,
		NewValue:   newValue,
	}
}

func invalidTransition(from, to models.StatusID) error {
	return apperr.Conflict(apperr.CodeInvalidTransition,
		fmt.Sprintf("a task cannot move from %s to %s", from.String(), to.String()))
}

func formatID(id *int64) string {
	if id == nil {
		return ""
	}
	return strconv.FormatInt(*id, 10)
}
