package sqlite

import (
	"context"
	"fmt"

	"taskboard/internal/models"
)

const userColumns = `u.id, u.name, u.email, u.role, u.created_at, u.updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (models.User, error) {
	var u models.User
	var role string
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &role, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return models.User{}, err
	}
	u.Role = models.Role(role)
	return u, nil
}

// CreateUser inserts a user. A duplicate email is reported as a conflict.
func (s *Store) CreateUser(ctx context.Context, u models.User) (models.User, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO users(name, email, role) VALUES(?, ?, ?)`, u.Name, u.Email, string(u.Role))
	if err != nil {
		return models.User{}, classify("insert user", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.User{}, fmt.Errorf("user id: %w", err)
	}
	return s.GetUser(ctx, id)
}

// GetUser fetches a single user by id.
func (s *Store) GetUser(ctx context.Context, id int64) (models.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users u WHERE u.id = ?`, id))
	if err != nil {
		return models.User{}, notFound("user", "get user", err)
	}
	return u, nil
}

// ListUsers returns users in insertion order, scoped to those sharing a
// project with the scope's user.
func (s *Store) ListUsers(ctx context.Context, q models.UserQuery) ([]models.User, int64, error) {
	var w where
	if !q.Scope.All {
		w.add(`u.id IN (SELECT pm.user_id FROM project_members pm
            WHERE pm.project_id IN (SELECT project_id FROM project_members WHERE user_id = ?))`, q.Scope.UserID)
	}
	if q.Search != "" {
		p := likePattern(q.Search)
		w.add(`(u.name LIKE ? ESCAPE '\' OR u.email LIKE ? ESCAPE '\' OR u.role LIKE ? ESCAPE '\')`, p, p, p)
	}

	total, err := s.count(ctx, `SELECT COUNT(*) FROM users u`+w.String(), w.args)
	if err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	query := `SELECT ` + userColumns + ` FROM users u` + w.String() + ` ORDER BY u.id ASC`
	args := w.args
	if q.Page.Enabled() {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, q.Page.PerPage, q.Page.Offset())
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

// MissingUsers returns the ids that do not reference an existing user.
func (s *Store) MissingUsers(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	marks, args := placeholders(ids)
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM users WHERE id IN (`+marks+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("lookup users: %w", err)
	}
	defer rows.Close()

	found := make(map[int64]struct{}, len(ids))
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		found[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var missing []int64
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

// SharesProject reports whether users a and b are members of a common project.
func (s *Store) SharesProject(ctx context.Context, a, b int64) (bool, error) {
	var shared bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS(
            SELECT 1 FROM project_members pa
            JOIN project_members pb ON pb.project_id = pa.project_id
            WHERE pa.user_id = ? AND pb.user_id = ?)`, a, b).Scan(&shared)
	if err != nil {
		return false, fmt.Errorf("shared project: %w", err)
	}
	return shared, nil
}

// DeleteUser removes a user. Assigned tasks lose their assignee; users who
// created tasks are protected by the foreign key and yield a conflict.
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return classify("delete user", err)
	}
	return expectAffected(res, "user")
}

func (s *Store) count(ctx context.Context, query string, args []any) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
