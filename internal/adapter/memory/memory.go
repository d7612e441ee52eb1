// Package memory implements an in-memory repository for development and testing.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"taskboard/internal/domain"
)

// DB implements an in-memory database storage.
type DB struct {
	mu           sync.Mutex
	users        []*domain.User
	sessions     map[string]*domain.Session
	projects     map[string]*domain.Project
	participants map[string][]string // project id -> usernames
	tasks        []*domain.Task

	userIDCounter int64
	taskIDCounter int64
	projectOrder  []string
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{
		sessions:     make(map[string]*domain.Session),
		projects:     make(map[string]*domain.Project),
		participants: make(map[string][]string),
	}
}

// Ensure interfaces are met.
var _ domain.UserRepository = (*DB)(nil)
var _ domain.SessionRepository = (*SessionRepo)(nil)
var _ domain.ProjectRepository = (*ProjectRepo)(nil)
var _ domain.TaskRepository = (*TaskRepo)(nil)

// Ping always succeeds; the in-memory store is never unreachable.
func (db *DB) Ping(ctx context.Context) error {
	return nil
}

// --- UserRepository ---

// GetByUsername retrieves a user by exact username match.
func (db *DB) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

// GetByID retrieves a user by ID.
func (db *DB) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

// Create creates a new user.
func (db *DB) Create(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Username == username {
			return nil, errors.New("user already exists")
		}
	}

	db.userIDCounter++
	now := time.Now().UTC()
	u := &domain.User{
		ID:           db.userIDCounter,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	db.users = append(db.users, u)
	cp := *u
	return &cp, nil
}

// List returns all users in creation order.
func (db *DB) List(ctx context.Context) ([]domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	out := make([]domain.User, 0, len(db.users))
	for _, u := range db.users {
		out = append(out, *u)
	}
	return out, nil
}

// Count returns the total number of users.
func (db *DB) Count(ctx context.Context) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.users), nil
}

// --- SessionRepository ---

// SessionRepo implements session persistence.
type SessionRepo struct {
	db *DB
}

// NewSessionRepo creates a new session repository.
func (db *DB) NewSessionRepo() *SessionRepo {
	return &SessionRepo{db: db}
}

// Create creates a new session.
func (r *SessionRepo) Create(ctx context.Context, id string, userID int64, username string, expiresAt time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.sessions[id] = &domain.Session{
		ID:        id,
		UserID:    userID,
		Username:  username,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
	return nil
}

// GetByID retrieves a session by id.
func (r *SessionRepo) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if s, ok := r.db.sessions[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, nil
}

// Delete deletes a session.
func (r *SessionRepo) Delete(ctx context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.sessions, id)
	return nil
}

// DeleteByUser deletes every session belonging to the user.
func (r *SessionRepo) DeleteByUser(ctx context.Context, userID int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for k, v := range r.db.sessions {
		if v.UserID == userID {
			delete(r.db.sessions, k)
		}
	}
	return nil
}

// DeleteExpired deletes all expired sessions.
func (r *SessionRepo) DeleteExpired(ctx context.Context) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	now := time.Now()
	for k, v := range r.db.sessions {
		if now.After(v.ExpiresAt) {
			delete(r.db.sessions, k)
		}
	}
	return nil
}

// --- ProjectRepository ---

// ProjectRepo implements project and participant persistence.
type ProjectRepo struct {
	db *DB
}

// NewProjectRepo creates a new project repository.
func (db *DB) NewProjectRepo() *ProjectRepo {
	return &ProjectRepo{db: db}
}

// Create inserts a project.
func (r *ProjectRepo) Create(ctx context.Context, p *domain.Project) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.projects[p.ID]; ok {
		return errors.New("project already exists")
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	cp := *p
	cp.Participants = nil
	r.db.projects[p.ID] = &cp
	r.db.projectOrder = append(r.db.projectOrder, p.ID)
	return nil
}

// GetByID retrieves a project without its participants.
func (r *ProjectRepo) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if p, ok := r.db.projects[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

// List returns all projects in creation order.
func (r *ProjectRepo) List(ctx context.Context) ([]domain.Project, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	out := make([]domain.Project, 0, len(r.db.projectOrder))
	for _, id := range r.db.projectOrder {
		out = append(out, *r.db.projects[id])
	}
	return out, nil
}

// ListByIDs returns the projects matching ids in creation order.
func (r *ProjectRepo) ListByIDs(ctx context.Context, ids []string) ([]domain.Project, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	out := []domain.Project{}
	for _, id := range r.db.projectOrder {
		if want[id] {
			out = append(out, *r.db.projects[id])
		}
	}
	return out, nil
}

// Update applies a partial mutation.
func (r *ProjectRepo) Update(ctx context.Context, id string, upd domain.ProjectUpdate) (*domain.Project, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	p, ok := r.db.projects[id]
	if !ok {
		return nil, nil
	}
	if upd.Name != nil {
		p.Name = *upd.Name
	}
	if upd.Description != nil {
		p.Description = *upd.Description
	}
	if upd.Deadline != nil {
		p.Deadline = *upd.Deadline
	}
	p.UpdatedAt = time.Now().UTC()
	cp := *p
	return &cp, nil
}

// AddParticipants appends join rows, skipping duplicates.
func (r *ProjectRepo) AddParticipants(ctx context.Context, projectID string, usernames []string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	existing := r.db.participants[projectID]
	for _, u := range usernames {
		dup := false
		for _, e := range existing {
			if e == u {
				dup = true
				break
			}
		}
		if !dup {
			existing = append(existing, u)
		}
	}
	r.db.participants[projectID] = existing
	return nil
}

// RemoveParticipants deletes the whole participant set of the project.
func (r *ProjectRepo) RemoveParticipants(ctx context.Context, projectID string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.participants, projectID)
	return nil
}

// ListParticipants returns the project's participant usernames.
func (r *ProjectRepo) ListParticipants(ctx context.Context, projectID string) ([]string, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	out := make([]string, len(r.db.participants[projectID]))
	copy(out, r.db.participants[projectID])
	return out, nil
}

// ParticipantsByProjects returns the participant sets keyed by project id.
func (r *ProjectRepo) ParticipantsByProjects(ctx context.Context, projectIDs []string) (map[string][]string, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	out := make(map[string][]string, len(projectIDs))
	for _, id := range projectIDs {
		if members, ok := r.db.participants[id]; ok {
			cp := make([]string, len(members))
			copy(cp, members)
			out[id] = cp
		}
	}
	return out, nil
}

// ProjectIDsByParticipant returns ids of projects the user belongs to, in
// project creation order.
func (r *ProjectRepo) ProjectIDsByParticipant(ctx context.Context, username string) ([]string, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	out := []string{}
	for _, id := range r.db.projectOrder {
		for _, u := range r.db.participants[id] {
			if u == username {
				out = append(out, id)
				break
			}
		}
	}
	return out, nil
}

// --- TaskRepository ---

// TaskRepo implements task persistence.
type TaskRepo struct {
	db *DB
}

// NewTaskRepo creates a new task repository.
func (db *DB) NewTaskRepo() *TaskRepo {
	return &TaskRepo{db: db}
}

// Create inserts a task.
func (r *TaskRepo) Create(ctx context.Context, t *domain.Task) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.taskIDCounter++
	now := time.Now().UTC()
	cp := *t
	cp.ID = r.db.taskIDCounter
	cp.CreatedAt = now
	cp.UpdatedAt = now
	r.db.tasks = append(r.db.tasks, &cp)
	return cp.ID, nil
}

// GetByID retrieves a task by ID.
func (r *TaskRepo) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, t := range r.db.tasks {
		if t.ID == id {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

// List returns all tasks in creation order.
func (r *TaskRepo) List(ctx context.Context) ([]domain.Task, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.collect(func(*domain.Task) bool { return true }), nil
}

// ListByProject returns the project's tasks in creation order.
func (r *TaskRepo) ListByProject(ctx context.Context, projectID string) ([]domain.Task, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.collect(func(t *domain.Task) bool { return t.ProjectID == projectID }), nil
}

// ListByProjects returns the tasks of all listed projects in creation order.
func (r *TaskRepo) ListByProjects(ctx context.Context, projectIDs []string) ([]domain.Task, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	want := make(map[string]bool, len(projectIDs))
	for _, id := range projectIDs {
		want[id] = true
	}
	return r.collect(func(t *domain.Task) bool { return want[t.ProjectID] }), nil
}

// Update applies a partial mutation.
func (r *TaskRepo) Update(ctx context.Context, id int64, upd domain.TaskUpdate) (*domain.Task, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, t := range r.db.tasks {
		if t.ID != id {
			continue
		}
		if upd.Title != nil {
			t.Title = *upd.Title
		}
		if upd.Category != nil {
			t.Category = *upd.Category
		}
		if upd.Period != nil {
			t.Period = *upd.Period
		}
		if upd.Point != nil {
			t.Point = *upd.Point
		}
		if upd.Completed != nil {
			t.Completed = *upd.Completed
		}
		if upd.Comment != nil {
			t.Comment = *upd.Comment
		}
		t.UpdatedAt = time.Now().UTC()
		cp := *t
		return &cp, nil
	}
	return nil, nil
}

// Delete deletes a task by ID.
func (r *TaskRepo) Delete(ctx context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for i, t := range r.db.tasks {
		if t.ID == id {
			r.db.tasks = append(r.db.tasks[:i], r.db.tasks[i+1:]...)
			return nil
		}
	}
	return nil
}

// collect copies tasks matching keep, preserving insertion order. Callers
// must hold db.mu.
func (r *TaskRepo) collect(keep func(*domain.Task) bool) []domain.Task {
	out := []domain.Task{}
	for _, t := range r.db.tasks {
		if keep(t) {
			out = append(out, *t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
