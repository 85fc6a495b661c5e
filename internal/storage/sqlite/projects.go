package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"taskboard/internal/models"
)

const projectColumns = `p.id, p.name, p.description, p.start_date, p.end_date, p.created_at, p.updated_at`

func scanProject(row rowScanner) (models.Project, error) {
	var p models.Project
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.StartDate, &p.EndDate, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// ListProjects retrieves the projects in scope with their members attached.
func (s *Store) ListProjects(ctx context.Context, q models.ProjectQuery) ([]models.Project, int64, error) {
	var w where
	if !q.Scope.All {
		w.add(`p.id IN (SELECT project_id FROM project_members WHERE user_id = ?)`, q.Scope.UserID)
	}
	if q.Search != "" {
		p := likePattern(q.Search)
		w.add(`(p.name LIKE ? ESCAPE '\' OR p.description LIKE ? ESCAPE '\')`, p, p)
	}

	total, err := s.count(ctx, `SELECT COUNT(*) FROM projects p`+w.String(), w.args)
	if err != nil {
		return nil, 0, fmt.Errorf("count projects: %w", err)
	}

	query := `SELECT ` + projectColumns + ` FROM projects p` + w.String() + ` ORDER BY p.id ASC`
	args := w.args
	if q.Page.Enabled() {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, q.Page.PerPage, q.Page.Offset())
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	projects := []models.Project{}
	var ids []int64
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
		ids = append(ids, p.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	rows.Close()

	members, err := membersOf(ctx, s.db, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range projects {
		projects[i].Members = members[projects[i].ID]
		if projects[i].Members == nil {
			projects[i].Members = []models.Member{}
		}
	}
	return projects, total, nil
}

// GetProject fetches a single project with its members.
func (s *Store) GetProject(ctx context.Context, id int64) (models.Project, error) {
	p, err := scanProject(s.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects p WHERE p.id = ?`, id))
	if err != nil {
		return models.Project{}, notFound("project", "get project", err)
	}
	p.Members, err = projectMembers(ctx, s.db, id)
	if err != nil {
		return models.Project{}, err
	}
	return p, nil
}

// CreateProject persists a new project.
func (s *Store) CreateProject(ctx context.Context, p models.Project) (models.Project, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO projects(name, description, start_date, end_date) VALUES(?, ?, ?, ?)`,
		p.Name, p.Description, p.StartDate, p.EndDate)
	if err != nil {
		return models.Project{}, classify("insert project", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Project{}, fmt.Errorf("project id: %w", err)
	}
	return s.GetProject(ctx, id)
}

// UpdateProject overwrites the editable project columns.
func (s *Store) UpdateProject(ctx context.Context, p models.Project) (models.Project, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE projects SET name = ?, description = ?, start_date = ?, end_date = ? WHERE id = ?`,
		p.Name, p.Description, p.StartDate, p.EndDate, p.ID)
	if err != nil {
		return models.Project{}, classify("update project", err)
	}
	if err := expectAffected(res, "project"); err != nil {
		return models.Project{}, err
	}
	return s.GetProject(ctx, p.ID)
}

// DeleteProject removes a project along with its tasks and memberships.
func (s *Store) DeleteProject(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return classify("delete project", err)
	}
	return expectAffected(res, "project")
}

// ProjectMemberIDs returns the ids of the project's members.
func (s *Store) ProjectMemberIDs(ctx context.Context, projectID int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT user_id FROM project_members WHERE project_id = ?`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list member ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan member id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// AddMembers inserts the missing (project, user) pairs and re-reads the
// member list in the same transaction.
func (s *Store) AddMembers(ctx context.Context, projectID int64, userIDs []int64) ([]models.Member, error) {
	var members []models.Member
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		for _, userID := range userIDs {
			if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO project_members(project_id, user_id) VALUES(?, ?)`, projectID, userID); err != nil {
				return classify("add member", err)
			}
		}
		var err error
		members, err = projectMembers(ctx, tx, projectID)
		return err
	})
	return members, err
}

// RemoveMembers deletes the matching pairs and re-reads the member list in
// the same transaction.
func (s *Store) RemoveMembers(ctx context.Context, projectID int64, userIDs []int64) ([]models.Member, error) {
	var members []models.Member
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if len(userIDs) > 0 {
			marks, args := placeholders(userIDs)
			args = append([]any{projectID}, args...)
			if _, err := tx.ExecContext(ctx, `DELETE FROM project_members WHERE project_id = ? AND user_id IN (`+marks+`)`, args...); err != nil {
				return fmt.Errorf("remove members: %w", err)
			}
		}
		var err error
		members, err = projectMembers(ctx, tx, projectID)
		return err
	})
	return members, err
}

func projectMembers(ctx context.Context, q queryer, projectID int64) ([]models.Member, error) {
	byProject, err := membersOf(ctx, q, []int64{projectID})
	if err != nil {
		return nil, err
	}
	if members := byProject[projectID]; members != nil {
		return members, nil
	}
	return []models.Member{}, nil
}

// membersOf loads the members of several projects in one query.
func membersOf(ctx context.Context, q queryer, projectIDs []int64) (map[int64][]models.Member, error) {
	out := make(map[int64][]models.Member, len(projectIDs))
	if len(projectIDs) == 0 {
		return out, nil
	}

	marks, args := placeholders(projectIDs)
	rows, err := q.QueryContext(ctx, `SELECT pm.project_id, u.id, u.name, u.email
        FROM project_members pm JOIN users u ON u.id = pm.user_id
        WHERE pm.project_id IN (`+marks+`) ORDER BY pm.project_id, u.id`, args...)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var projectID int64
		var m models.Member
		if err := rows.Scan(&projectID, &m.ID, &m.Name, &m.Email); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		out[projectID] = append(out[projectID], m)
	}
	return out, rows.Err()
}
