package sqlite

import (
	"context"
	"fmt"

	"taskboard/internal/models"
)

// Stats counts tasks per status name plus projects and users, straight from
// the live tables.
func (s *Store) Stats(ctx context.Context) (models.Stats, error) {
	var st models.Stats
	err := s.db.QueryRowContext(ctx, `SELECT
            COUNT(t.id),
            COALESCE(SUM(CASE WHEN ts.name = 'Completed' THEN 1 ELSE 0 END), 0),
            COALESCE(SUM(CASE WHEN ts.name = 'Closed' THEN 1 ELSE 0 END), 0),
            COALESCE(SUM(CASE WHEN ts.name = 'In Progress' THEN 1 ELSE 0 END), 0),
            (SELECT COUNT(*) FROM projects),
            (SELECT COUNT(*) FROM users)
        FROM tasks t LEFT JOIN task_statuses ts ON ts.id = t.status_id`).
		Scan(&st.Tasks.All, &st.Tasks.Completed, &st.Tasks.Closed, &st.Tasks.InProgress, &st.Projects, &st.Users)
	if err != nil {
		return models.Stats{}, fmt.Errorf("stats: %w", err)
	}
	return st, nil
}
