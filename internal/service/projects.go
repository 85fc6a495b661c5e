package service

import (
	"context"
	"sort"
	"strings"

	"taskboard/internal/apperr"
	"taskboard/internal/models"
	"taskboard/internal/policy"
)

// Projects manages projects and their member sets.
type Projects struct {
	*base
}

// List returns the projects visible to the caller.
func (s *Projects) List(ctx context.Context, caller policy.Caller, f ProjectFilter) (models.Page[models.Project], error) {
	q := models.ProjectQuery{
		Scope:  policy.ListScope(caller),
		Search: strings.TrimSpace(f.Search),
		Page:   f.Page.Normalize(),
	}
	rows, total, err := s.repo.ListProjects(ctx, q)
	if err != nil {
		return models.Page[models.Project]{}, err
	}
	return listing(rows, total, q.Page), nil
}

// Get returns a project with its members if the caller may see it.
func (s *Projects) Get(ctx context.Context, caller policy.Caller, id int64) (models.Project, error) {
	project, err := s.repo.GetProject(ctx, id)
	if err != nil {
		return models.Project{}, err
	}
	roster := policy.NewRoster()
	for _, m := range project.Members {
		roster[m.ID] = struct{}{}
	}
	if !policy.CanViewProject(caller, roster) {
		return models.Project{}, apperr.Forbidden("you are not a member of this project")
	}
	return project, nil
}

// Create persists a new project.
func (s *Projects) Create(ctx context.Context, cmd CreateProject) (models.Project, error) {
	if err := check(cmd); err != nil {
		return models.Project{}, err
	}
	if blank(cmd.Name) {
		return models.Project{}, apperr.Validation("name", apperr.FieldIsRequired("name"))
	}
	if err := checkDateRange(cmd.StartDate, cmd.EndDate); err != nil {
		return models.Project{}, err
	}

	project, err := s.repo.CreateProject(ctx, models.Project{
		Name:        strings.TrimSpace(cmd.Name),
		Description: strings.TrimSpace(cmd.Description),
		StartDate:   cmd.StartDate,
		EndDate:     cmd.EndDate,
	})
	if err != nil {
		return models.Project{}, err
	}
	s.logger.Info("project created", "project_id", project.ID)
	return project, nil
}

// Update applies a partial change. The date range is checked against the
// merged result.
func (s *Projects) Update(ctx context.Context, cmd UpdateProject) (models.Project, error) {
	if err := check(cmd); err != nil {
		return models.Project{}, err
	}

	project, err := s.repo.GetProject(ctx, cmd.ID)
	if err != nil {
		return models.Project{}, err
	}

	if cmd.Name != nil {
		if blank(*cmd.Name) {
			return models.Project{}, apperr.Validation("name", apperr.FieldIsRequired("name"))
		}
		project.Name = strings.TrimSpace(*cmd.Name)
	}
	if cmd.Description != nil {
		project.Description = strings.TrimSpace(*cmd.Description)
	}
	if cmd.StartDate != nil {
		project.StartDate = *cmd.StartDate
	}
	if cmd.EndDate != nil {
		project.EndDate = *cmd.EndDate
	}
	if err := checkDateRange(project.StartDate, project.EndDate); err != nil {
		return models.Project{}, err
	}

	return s.repo.UpdateProject(ctx, project)
}

// Delete removes a project together with its tasks and memberships.
func (s *Projects) Delete(ctx context.Context, id int64) error {
	if err := s.repo.DeleteProject(ctx, id); err != nil {
		return err
	}
	s.logger.Info("project deleted", "project_id", id)
	return nil
}

// AddMembers links users to the project. Existing members are left as is.
func (s *Projects) AddMembers(ctx context.Context, cmd ChangeMembers) ([]models.Member, error) {
	ids, err := s.prepareMembers(ctx, cmd)
	if err != nil {
		return nil, err
	}
	members, err := s.repo.AddMembers(ctx, cmd.ProjectID, ids)
	if err != nil {
		return nil, err
	}
	s.logger.Info("project members added", "project_id", cmd.ProjectID, "user_ids", ids)
	return members, nil
}

// RemoveMembers unlinks users from the project. Non-members are ignored.
func (s *Projects) RemoveMembers(ctx context.Context, cmd ChangeMembers) ([]models.Member, error) {
	ids, err := s.prepareMembers(ctx, cmd)
	if err != nil {
		return nil, err
	}
	members, err := s.repo.RemoveMembers(ctx, cmd.ProjectID, ids)
	if err != nil {
		return nil, err
	}
	s.logger.Info("project members removed", "project_id", cmd.ProjectID, "user_ids", ids)
	return members, nil
}

// prepareMembers validates the command and returns the distinct user ids.
func (s *Projects) prepareMembers(ctx context.Context, cmd ChangeMembers) ([]int64, error) {
	if err := check(cmd); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetProject(ctx, cmd.ProjectID); err != nil {
		return nil, err
	}

	ids := uniqueIDs(cmd.UserIDs)
	missing, err := s.repo.MissingUsers(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		return nil, apperr.Validation("user_ids", apperr.NotExist("user"))
	}
	return ids, nil
}

func checkDateRange(start, end string) error {
	// Both values are YYYY-MM-DD, so lexical order is calendar order.
	if start != "" && end != "" && end < start {
		return apperr.Validation("end_date", "end_date must be a date after or equal to start_date")
	}
	return nil
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
