package postgres

import (
	"context"
	"database/sql"
	"time"

	"taskboard/internal/domain"

	"github.com/lib/pq"
)

// TaskRepo implements task repository operations on DB.
type TaskRepo struct {
	db *DB
}

// NewTaskRepo wraps a DB as a TaskRepository.
func NewTaskRepo(db *DB) *TaskRepo {
	return &TaskRepo{db: db}
}

const taskColumns = "id, project_id, title, category, period, point, completed, comment, created_at, updated_at"

// Create inserts a task row and returns its id.
func (r *TaskRepo) Create(ctx context.Context, t *domain.Task) (int64, error) {
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now
	var id int64
	err := r.db.sql.QueryRowContext(ctx,
		`INSERT INTO tasks (project_id, title, category, period, point, completed, comment, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8) RETURNING id`,
		t.ProjectID, t.Title, t.Category, t.Period, t.Point, t.Completed, t.Comment, now,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// GetByID retrieves a task by ID.
func (r *TaskRepo) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	var t domain.Task
	err := r.db.sql.QueryRowContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE id = $1", id,
	).Scan(&t.ID, &t.ProjectID, &t.Title, &t.Category, &t.Period, &t.Point, &t.Completed, &t.Comment, &t.CreatedAt, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// List returns all tasks in creation order.
func (r *TaskRepo) List(ctx context.Context) ([]domain.Task, error) {
	rows, err := r.db.sql.QueryContext(ctx,
		"SELECT "+taskColumns+" FROM tasks ORDER BY created_at, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTasks(rows)
}

// ListByProject returns the project's tasks in creation order.
func (r *TaskRepo) ListByProject(ctx context.Context, projectID string) ([]domain.Task, error) {
	rows, err := r.db.sql.QueryContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE project_id = $1 ORDER BY created_at, id",
		projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTasks(rows)
}

// ListByProjects returns the tasks of many projects with one batched query.
func (r *TaskRepo) ListByProjects(ctx context.Context, projectIDs []string) ([]domain.Task, error) {
	rows, err := r.db.sql.QueryContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE project_id = ANY($1) ORDER BY created_at, id",
		pq.Array(projectIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTasks(rows)
}

// Update applies a partial mutation and returns the updated row.
func (r *TaskRepo) Update(ctx context.Context, id int64, upd domain.TaskUpdate) (*domain.Task, error) {
	var t domain.Task
	err := r.db.sql.QueryRowContext(ctx,
		`UPDATE tasks SET
			title = COALESCE($2, title),
			category = COALESCE($3, category),
			period = COALESCE($4, period),
			point = COALESCE($5, point),
			completed = COALESCE($6, completed),
			comment = COALESCE($7, comment),
			updated_at = $8
		WHERE id = $1
		RETURNING `+taskColumns,
		id, upd.Title, upd.Category, upd.Period, upd.Point, upd.Completed, upd.Comment, time.Now(),
	).Scan(&t.ID, &t.ProjectID, &t.Title, &t.Category, &t.Period, &t.Point, &t.Completed, &t.Comment, &t.CreatedAt, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Delete deletes a task by ID.
func (r *TaskRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.sql.ExecContext(ctx, "DELETE FROM tasks WHERE id = $1", id)
	return err
}

func scanTasks(rows *sql.Rows) ([]domain.Task, error) {
	var out []domain.Task
	for rows.Next() {
		var t domain.Task
		if err := rows.Scan(&t.ID, &t.ProjectID, &t.Title, &t.Category, &t.Period, &t.Point, &t.Completed, &t.Comment, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
