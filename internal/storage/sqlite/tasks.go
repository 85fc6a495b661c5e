package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"taskboard/internal/models"
)

const taskColumns = `t.id, t.title, t.description, t.project_id, t.status_id, t.assigned_to_id,
        t.created_by_id, t.due_date, t.completed_at, t.created_at, t.updated_at`

func scanTask(row rowScanner, extra ...any) (models.Task, error) {
	var t models.Task
	var status int64
	var assignee sql.NullInt64
	var completed sql.NullTime
	dest := []any{&t.ID, &t.Title, &t.Description, &t.ProjectID, &status, &assignee,
		&t.CreatedByID, &t.DueDate, &completed, &t.CreatedAt, &t.UpdatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return models.Task{}, err
	}
	t.StatusID = models.StatusID(status)
	if assignee.Valid {
		id := assignee.Int64
		t.AssignedToID = &id
	}
	if completed.Valid {
		at := completed.Time
		t.CompletedAt = &at
	}
	return t, nil
}

// GetStatus fetches one row of the status catalog.
func (s *Store) GetStatus(ctx context.Context, id models.StatusID) (models.TaskStatus, error) {
	var st models.TaskStatus
	var statusID int64
	err := s.db.QueryRowContext(ctx, `SELECT id, name, sort_order FROM task_statuses WHERE id = ?`, int64(id)).
		Scan(&statusID, &st.Name, &st.SortOrder)
	if err != nil {
		return models.TaskStatus{}, notFound("task status", "get task status", err)
	}
	st.ID = models.StatusID(statusID)
	return st, nil
}

// ListStatuses returns the status catalog ordered by stage.
func (s *Store) ListStatuses(ctx context.Context) ([]models.TaskStatus, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, sort_order FROM task_statuses ORDER BY sort_order, id`)
	if err != nil {
		return nil, fmt.Errorf("list task statuses: %w", err)
	}
	defer rows.Close()

	statuses := []models.TaskStatus{}
	for rows.Next() {
		var st models.TaskStatus
		var statusID int64
		if err := rows.Scan(&statusID, &st.Name, &st.SortOrder); err != nil {
			return nil, fmt.Errorf("scan task status: %w", err)
		}
		st.ID = models.StatusID(statusID)
		statuses = append(statuses, st)
	}
	return statuses, rows.Err()
}

// ListTasks returns the tasks in scope ordered by due date. The scope
// condition is always the first one applied.
func (s *Store) ListTasks(ctx context.Context, q models.TaskQuery) ([]models.Task, int64, error) {
	var w where
	if !q.Scope.All {
		w.add(`(t.assigned_to_id = ? OR t.created_by_id = ?
            OR t.project_id IN (SELECT project_id FROM project_members WHERE user_id = ?))`,
			q.Scope.UserID, q.Scope.UserID, q.Scope.UserID)
	}
	if q.Search != "" {
		p := likePattern(q.Search)
		w.add(`(t.title LIKE ? ESCAPE '\' OR t.description LIKE ? ESCAPE '\')`, p, p)
	}
	if q.AssigneeID != 0 {
		w.add(`t.assigned_to_id = ?`, q.AssigneeID)
	}
	if q.ProjectID != 0 {
		w.add(`t.project_id = ?`, q.ProjectID)
	}
	if q.StatusID != 0 {
		w.add(`t.status_id = ?`, int64(q.StatusID))
	}

	total, err := s.count(ctx, `SELECT COUNT(*) FROM tasks t`+w.String(), w.args)
	if err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}

	query := `SELECT ` + taskColumns + ` FROM tasks t` + w.String() + ` ORDER BY t.due_date ASC, t.id ASC`
	args := w.args
	if q.Page.Enabled() {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, q.Page.PerPage, q.Page.Offset())
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, total, rows.Err()
}

// GetTask retrieves a task by id.
func (s *Store) GetTask(ctx context.Context, id int64) (models.Task, error) {
	return getTask(ctx, s.db, id)
}

func getTask(ctx context.Context, q queryer, id int64) (models.Task, error) {
	t, err := scanTask(q.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks t WHERE t.id = ?`, id))
	if err != nil {
		return models.Task{}, notFound("task", "get task", err)
	}
	return t, nil
}

// GetTaskDetail loads a task with its project, status, people and comments
// from one consistent snapshot.
func (s *Store) GetTaskDetail(ctx context.Context, id int64) (models.TaskDetail, error) {
	var d models.TaskDetail
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var statusID int64
		var assigneeID, creatorID sql.NullInt64
		var assigneeName, assigneeEmail, creatorName, creatorEmail sql.NullString

		t, err := scanTask(tx.QueryRowContext(ctx, `SELECT `+taskColumns+`,
                p.name, st.id, st.name, st.sort_order,
                a.id, a.name, a.email, c.id, c.name, c.email
            FROM tasks t
            JOIN projects p ON p.id = t.project_id
            JOIN task_statuses st ON st.id = t.status_id
            LEFT JOIN users a ON a.id = t.assigned_to_id
            LEFT JOIN users c ON c.id = t.created_by_id
            WHERE t.id = ?`, id),
			&d.Project.Name, &statusID, &d.Status.Name, &d.Status.SortOrder,
			&assigneeID, &assigneeName, &assigneeEmail, &creatorID, &creatorName, &creatorEmail)
		if err != nil {
			return notFound("task", "get task detail", err)
		}

		d.Task = t
		d.Project.ID = t.ProjectID
		d.Status.ID = models.StatusID(statusID)
		if assigneeID.Valid {
			d.Assignee = &models.Member{ID: assigneeID.Int64, Name: assigneeName.String, Email: assigneeEmail.String}
		}
		if creatorID.Valid {
			d.Creator = &models.Member{ID: creatorID.Int64, Name: creatorName.String, Email: creatorEmail.String}
		}

		d.Comments, err = listComments(ctx, tx, id)
		return err
	})
	if err != nil {
		return models.TaskDetail{}, err
	}
	return d, nil
}

// CreateTask inserts a new task and records its creation.
func (s *Store) CreateTask(ctx context.Context, t models.Task) (models.Task, error) {
	var created models.Task
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `INSERT INTO tasks(title, description, project_id, status_id, assigned_to_id, created_by_id, due_date)
            VALUES(?, ?, ?, ?, ?, ?, ?)`,
			t.Title, t.Description, t.ProjectID, int64(t.StatusID), nullableID(t.AssignedToID), t.CreatedByID, t.DueDate)
		if err != nil {
			return classify("insert task", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("task id: %w", err)
		}

		creator := t.CreatedByID
		if err := appendActivity(ctx, tx, models.ActivityLog{
			TaskID:     id,
			UserID:     &creator,
			ActionType: models.ActionCreated,
			NewValue:   strconv.FormatInt(id, 10),
		}); err != nil {
			return err
		}

		created, err = getTask(ctx, tx, id)
		return err
	})
	return created, err
}

// UpdateTask writes the mutable columns of t and appends activity entries
// atomically.
func (s *Store) UpdateTask(ctx context.Context, t models.Task, activity []models.ActivityLog) (models.Task, error) {
	var updated models.Task
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE tasks SET title = ?, description = ?, project_id = ?, status_id = ?,
                assigned_to_id = ?, due_date = ?, completed_at = ?
            WHERE id = ?`,
			t.Title, t.Description, t.ProjectID, int64(t.StatusID), nullableID(t.AssignedToID), t.DueDate, nullableTime(t), t.ID)
		if err != nil {
			return classify("update task", err)
		}
		if err := expectAffected(res, "task"); err != nil {
			return err
		}
		for _, entry := range activity {
			if err := appendActivity(ctx, tx, entry); err != nil {
				return err
			}
		}
		updated, err = getTask(ctx, tx, t.ID)
		return err
	})
	return updated, err
}

// AssignTask changes the assignee, stores the optional comment and records
// the change atomically.
func (s *Store) AssignTask(ctx context.Context, taskID, assigneeID int64, comment *models.Comment, entry models.ActivityLog) (models.Task, error) {
	var updated models.Task
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE tasks SET assigned_to_id = ? WHERE id = ?`, assigneeID, taskID)
		if err != nil {
			return classify("assign task", err)
		}
		if err := expectAffected(res, "task"); err != nil {
			return err
		}
		if comment != nil {
			if _, err := insertComment(ctx, tx, *comment); err != nil {
				return err
			}
		}
		if err := appendActivity(ctx, tx, entry); err != nil {
			return err
		}
		updated, err = getTask(ctx, tx, taskID)
		return err
	})
	return updated, err
}

// DeleteTask removes a task by id.
func (s *Store) DeleteTask(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return classify("delete task", err)
	}
	return expectAffected(res, "task")
}

// ListActivity returns a task's audit trail, oldest first.
func (s *Store) ListActivity(ctx context.Context, taskID int64) ([]models.ActivityLog, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, task_id, user_id, action_type, field_name, old_value, new_value, created_at
        FROM activity_logs WHERE task_id = ? ORDER BY created_at ASC, id ASC`, taskID)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	defer rows.Close()

	entries := []models.ActivityLog{}
	for rows.Next() {
		var a models.ActivityLog
		var userID sql.NullInt64
		var field, oldValue, newValue sql.NullString
		if err := rows.Scan(&a.ID, &a.TaskID, &userID, &a.ActionType, &field, &oldValue, &newValue, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		if userID.Valid {
			id := userID.Int64
			a.UserID = &id
		}
		a.FieldName, a.OldValue, a.NewValue = field.String, oldValue.String, newValue.String
		entries = append(entries, a)
	}
	return entries, rows.Err()
}

func appendActivity(ctx context.Context, q queryer, a models.ActivityLog) error {
	_, err := q.ExecContext(ctx, `INSERT INTO activity_logs(task_id, user_id, action_type, field_name, old_value, new_value)
        VALUES(?, ?, ?, ?, ?, ?)`,
		a.TaskID, nullableID(a.UserID), a.ActionType, nullableString(a.FieldName), nullableString(a.OldValue), nullableString(a.NewValue))
	if err != nil {
		return classify("insert activity", err)
	}
	return nil
}

func nullableID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

func nullableTime(t models.Task) sql.NullTime {
	if t.CompletedAt == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.CompletedAt.UTC(), Valid: true}
}

func nullableString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}
