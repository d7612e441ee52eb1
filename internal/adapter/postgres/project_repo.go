package postgres

import (
	"context"
	"database/sql"
	"time"

	"taskboard/internal/domain"

	"github.com/lib/pq"
)

// ProjectRepo implements project and participant repository operations on DB.
type ProjectRepo struct {
	db *DB
}

// NewProjectRepo wraps a DB as a ProjectRepository.
func NewProjectRepo(db *DB) *ProjectRepo {
	return &ProjectRepo{db: db}
}

// Create inserts a project row. Participant rows are written separately.
func (r *ProjectRepo) Create(ctx context.Context, p *domain.Project) error {
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	_, err := r.db.sql.ExecContext(ctx,
		"INSERT INTO projects (id, name, description, deadline, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)",
		p.ID, p.Name, p.Description, p.Deadline, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

// GetByID retrieves a project row without its participants.
func (r *ProjectRepo) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	var p domain.Project
	err := r.db.sql.QueryRowContext(ctx,
		"SELECT id, name, description, deadline, created_at, updated_at FROM projects WHERE id = $1",
		id,
	).Scan(&p.ID, &p.Name, &p.Description, &p.Deadline, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns all project rows in creation order.
func (r *ProjectRepo) List(ctx context.Context) ([]domain.Project, error) {
	rows, err := r.db.sql.QueryContext(ctx,
		"SELECT id, name, description, deadline, created_at, updated_at FROM projects ORDER BY created_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProjects(rows)
}

// ListByIDs returns the projects matching ids with one batched query.
func (r *ProjectRepo) ListByIDs(ctx context.Context, ids []string) ([]domain.Project, error) {
	rows, err := r.db.sql.QueryContext(ctx,
		"SELECT id, name, description, deadline, created_at, updated_at FROM projects WHERE id = ANY($1) ORDER BY created_at",
		pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProjects(rows)
}

// Update applies a partial mutation and returns the updated row.
func (r *ProjectRepo) Update(ctx context.Context, id string, upd domain.ProjectUpdate) (*domain.Project, error) {
	var p domain.Project
	err := r.db.sql.QueryRowContext(ctx,
		`UPDATE projects SET
			name = COALESCE($2, name),
			description = COALESCE($3, description),
			deadline = COALESCE($4, deadline),
			updated_at = $5
		WHERE id = $1
		RETURNING id, name, description, deadline, created_at, updated_at`,
		id, upd.Name, upd.Description, upd.Deadline, time.Now(),
	).Scan(&p.ID, &p.Name, &p.Description, &p.Deadline, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// AddParticipants inserts a batch of participant join rows.
func (r *ProjectRepo) AddParticipants(ctx context.Context, projectID string, usernames []string) error {
	if len(usernames) == 0 {
		return nil
	}
	_, err := r.db.sql.ExecContext(ctx,
		`INSERT INTO project_participants (project_id, username, created_at)
		 SELECT $1, u, $3 FROM unnest($2::text[]) AS u
		 ON CONFLICT (project_id, username) DO NOTHING`,
		projectID, pq.Array(usernames), time.Now(),
	)
	return err
}

// RemoveParticipants deletes the whole participant set of the project.
func (r *ProjectRepo) RemoveParticipants(ctx context.Context, projectID string) error {
	_, err := r.db.sql.ExecContext(ctx,
		"DELETE FROM project_participants WHERE project_id = $1", projectID)
	return err
}

// ListParticipants returns the project's participant usernames.
func (r *ProjectRepo) ListParticipants(ctx context.Context, projectID string) ([]string, error) {
	rows, err := r.db.sql.QueryContext(ctx,
		"SELECT username FROM project_participants WHERE project_id = $1 ORDER BY created_at, id",
		projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// ParticipantsByProjects loads the participant sets of many projects with
// one batched query, keyed by project id.
func (r *ProjectRepo) ParticipantsByProjects(ctx context.Context, projectIDs []string) (map[string][]string, error) {
	rows, err := r.db.sql.QueryContext(ctx,
		"SELECT project_id, username FROM project_participants WHERE project_id = ANY($1) ORDER BY created_at, id",
		pq.Array(projectIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]string, len(projectIDs))
	for rows.Next() {
		var id, u string
		if err := rows.Scan(&id, &u); err != nil {
			return nil, err
		}
		out[id] = append(out[id], u)
	}
	return out, rows.Err()
}

// ProjectIDsByParticipant returns the ids of projects the user belongs to.
func (r *ProjectRepo) ProjectIDsByParticipant(ctx context.Context, username string) ([]string, error) {
	rows, err := r.db.sql.QueryContext(ctx,
		"SELECT project_id FROM project_participants WHERE username = $1 ORDER BY created_at, id",
		username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func scanProjects(rows *sql.Rows) ([]domain.Project, error) {
	var out []domain.Project
	for rows.Next() {
		var p domain.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Deadline, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
