package service

import (
	"context"
	"strings"

	"taskboard/internal/apperr"
	"taskboard/internal/models"
	"taskboard/internal/policy"
)

// Comments manages notes on tasks. Anyone who can see a task may read and
// add comments.
type Comments struct {
	*base
}

// List returns the task's comments oldest first.
func (s *Comments) List(ctx context.Context, caller policy.Caller, taskID int64) ([]models.Comment, error) {
	if err := s.canView(ctx, caller, taskID); err != nil {
		return nil, err
	}
	return s.repo.ListComments(ctx, taskID)
}

// Create adds a comment authored by the caller.
func (s *Comments) Create(ctx context.Context, caller policy.Caller, cmd CreateComment) (models.Comment, error) {
	if err := check(cmd); err != nil {
		return models.Comment{}, err
	}
	if blank(cmd.Body) {
		return models.Comment{}, apperr.Validation("body", apperr.FieldIsRequired("body"))
	}
	if err := s.canView(ctx, caller, cmd.TaskID); err != nil {
		return models.Comment{}, err
	}

	return s.repo.CreateComment(ctx, models.Comment{
		TaskID: cmd.TaskID,
		UserID: caller.ID,
		Body:   strings.TrimSpace(cmd.Body),
	})
}

func (s *Comments) canView(ctx context.Context, caller policy.Caller, taskID int64) error {
	task, err := s.repo.GetTask(ctx, taskID)
	if err != nil {
		return err
	}
	roster, err := s.roster(ctx, task.ProjectID)
	if err != nil {
		return err
	}
	if !policy.CanViewTask(caller, task, roster) {
		return apperr.Forbidden("you are not authorized to access this task")
	}
	return nil
}
