package service

import (
	"context"
	"strings"

	"taskboard/internal/apperr"
	"taskboard/internal/models"
	"taskboard/internal/policy"
)

// Users lists and administers accounts.
type Users struct {
	*base
}

// List returns the users visible to the caller: everyone for admins,
// otherwise the users sharing a project with the caller.
func (s *Users) List(ctx context.Context, caller policy.Caller, f UserFilter) (models.Page[models.User], error) {
	q := models.UserQuery{
		Scope:  policy.ListScope(caller),
		Search: strings.TrimSpace(f.Search),
		Page:   f.Page.Normalize(),
	}
	rows, total, err := s.repo.ListUsers(ctx, q)
	if err != nil {
		return models.Page[models.User]{}, err
	}
	return listing(rows, total, q.Page), nil
}

// Get returns a user the caller may see. Users outside the caller's
// projects are reported as missing.
func (s *Users) Get(ctx context.Context, caller policy.Caller, id int64) (models.User, error) {
	if !caller.IsAdmin() && caller.ID != id {
		shared, err := s.repo.SharesProject(ctx, caller.ID, id)
		if err != nil {
			return models.User{}, err
		}
		if !shared {
			return models.User{}, apperr.NotFound("user")
		}
	}
	return s.repo.GetUser(ctx, id)
}

// Me returns the caller's own record.
func (s *Users) Me(ctx context.Context, caller policy.Caller) (models.User, error) {
	return s.repo.GetUser(ctx, caller.ID)
}

// Create registers a new account.
func (s *Users) Create(ctx context.Context, cmd CreateUser) (models.User, error) {
	cmd.Email = strings.ToLower(strings.TrimSpace(cmd.Email))
	if err := check(cmd); err != nil {
		return models.User{}, err
	}
	if blank(cmd.Name) {
		return models.User{}, apperr.Validation("name", apperr.FieldIsRequired("name"))
	}

	user, err := s.repo.CreateUser(ctx, models.User{
		Name:  strings.TrimSpace(cmd.Name),
		Email: cmd.Email,
		Role:  models.Role(cmd.Role),
	})
	if err != nil {
		return models.User{}, err
	}
	s.logger.Info("user created", "user_id", user.ID, "role", string(user.Role))
	return user, nil
}

// Delete removes a user. Users who created tasks cannot be deleted.
func (s *Users) Delete(ctx context.Context, id int64) error {
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		return err
	}
	s.logger.Info("user deleted", "user_id", id)
	return nil
}
