package sqlite

import (
	"context"
	"fmt"

	"taskboard/internal/models"
)

// ListComments returns a task's comments oldest first with their authors.
func (s *Store) ListComments(ctx context.Context, taskID int64) ([]models.Comment, error) {
	return listComments(ctx, s.db, taskID)
}

// CreateComment stores a comment and returns it with its author.
func (s *Store) CreateComment(ctx context.Context, c models.Comment) (models.Comment, error) {
	id, err := insertComment(ctx, s.db, c)
	if err != nil {
		return models.Comment{}, err
	}
	return getComment(ctx, s.db, id)
}

func insertComment(ctx context.Context, q queryer, c models.Comment) (int64, error) {
	res, err := q.ExecContext(ctx, `INSERT INTO comments(task_id, user_id, body) VALUES(?, ?, ?)`, c.TaskID, c.UserID, c.Body)
	if err != nil {
		return 0, classify("insert comment", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("comment id: %w", err)
	}
	return id, nil
}

const commentQuery = `SELECT c.id, c.task_id, c.user_id, c.body, c.created_at, u.name
    FROM comments c JOIN users u ON u.id = c.user_id`

func scanComment(row rowScanner) (models.Comment, error) {
	var c models.Comment
	var name string
	if err := row.Scan(&c.ID, &c.TaskID, &c.UserID, &c.Body, &c.CreatedAt, &name); err != nil {
		return models.Comment{}, err
	}
	c.User = &models.UserRef{ID: c.UserID, Name: name}
	return c, nil
}

func getComment(ctx context.Context, q queryer, id int64) (models.Comment, error) {
	c, err := scanComment(q.QueryRowContext(ctx, commentQuery+` WHERE c.id = ?`, id))
	if err != nil {
		return models.Comment{}, notFound("comment", "get comment", err)
	}
	return c, nil
}

func listComments(ctx context.Context, q queryer, taskID int64) ([]models.Comment, error) {
	rows, err := q.QueryContext(ctx, commentQuery+` WHERE c.task_id = ? ORDER BY c.created_at ASC, c.id ASC`, taskID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	comments := []models.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
