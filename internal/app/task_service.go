package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskboard/internal/domain"
)

var (
	// ErrTaskNotFound indicates that the task does not exist.
	ErrTaskNotFound = errors.New("task not found")
	// ErrUnknownCategory indicates a category outside the enumerated set.
	ErrUnknownCategory = errors.New("unknown task category")
	// ErrNegativePoint indicates a negative task point value.
	ErrNegativePoint = errors.New("point must not be negative")
)

// TaskService encapsulates task use cases. All task access is scoped to
// the owning project's participant set.
type TaskService struct {
	projects domain.ProjectRepository
	tasks    domain.TaskRepository
}

// NewTaskService creates a TaskService backed by the given repositories.
func NewTaskService(projects domain.ProjectRepository, tasks domain.TaskRepository) *TaskService {
	return &TaskService{projects: projects, tasks: tasks}
}

// ProjectTasks is a project's task list with its derived view state,
// returned after reads and completion toggles.
type ProjectTasks struct {
	Tasks           []domain.Task `json:"tasks"`
	Progress        float64       `json:"progress"`
	CompletedPoints int           `json:"completedPoints"`
}

// Create validates and stores a new task under the project.
func (s *TaskService) Create(ctx context.Context, username, projectID, title, category, period string, point int, comment string) (*domain.Task, error) {
	if err := s.requireParticipant(ctx, projectID, username); err != nil {
		return nil, err
	}
	if title == "" || category == "" || period == "" {
		return nil, ErrMissingField
	}
	if !domain.KnownCategory(category) {
		return nil, ErrUnknownCategory
	}
	if _, err := time.Parse("2006-01-02", period); err != nil {
		return nil, fmt.Errorf("%w: period: %v", ErrInvalidDate, err)
	}
	if point < 0 {
		return nil, ErrNegativePoint
	}

	t := &domain.Task{
		ProjectID: projectID,
		Title:     title,
		Category:  category,
		Period:    period,
		Point:     point,
		Comment:   comment,
	}
	id, err := s.tasks.Create(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	t.ID = id
	return t, nil
}

// ListForProject returns the project's tasks with progress and completed
// points, for participants only.
func (s *TaskService) ListForProject(ctx context.Context, username, projectID string) (*ProjectTasks, error) {
	if err := s.requireParticipant(ctx, projectID, username); err != nil {
		return nil, err
	}
	return s.projectTasks(ctx, projectID)
}

// Update applies a partial mutation to a task.
func (s *TaskService) Update(ctx context.Context, username string, id int64, upd domain.TaskUpdate) (*domain.Task, error) {
	task, err := s.getForParticipant(ctx, username, id)
	if err != nil {
		return nil, err
	}
	if upd.Category != nil && !domain.KnownCategory(*upd.Category) {
		return nil, ErrUnknownCategory
	}
	if upd.Period != nil {
		if _, err := time.Parse("2006-01-02", *upd.Period); err != nil {
			return nil, fmt.Errorf("%w: period: %v", ErrInvalidDate, err)
		}
	}
	if upd.Point != nil && *upd.Point < 0 {
		return nil, ErrNegativePoint
	}
	return s.tasks.Update(ctx, task.ID, upd)
}

// SetCompleted toggles the completion flag of one task and re-fetches the
// owning project's task list so callers refresh their derived view state.
func (s *TaskService) SetCompleted(ctx context.Context, username string, id int64, completed bool) (*ProjectTasks, error) {
	task, err := s.getForParticipant(ctx, username, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.tasks.Update(ctx, task.ID, domain.TaskUpdate{Completed: &completed}); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return s.projectTasks(ctx, task.ProjectID)
}

// Delete removes a task.
func (s *TaskService) Delete(ctx context.Context, username string, id int64) error {
	task, err := s.getForParticipant(ctx, username, id)
	if err != nil {
		return err
	}
	return s.tasks.Delete(ctx, task.ID)
}

func (s *TaskService) projectTasks(ctx context.Context, projectID string) (*ProjectTasks, error) {
	tasks, err := s.tasks.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return &ProjectTasks{
		Tasks:           tasks,
		Progress:        domain.Progress(tasks),
		CompletedPoints: domain.CompletedPoints(tasks),
	}, nil
}

func (s *TaskService) getForParticipant(ctx context.Context, username string, id int64) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrTaskNotFound
	}
	if err := s.requireParticipant(ctx, task.ProjectID, username); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) requireParticipant(ctx context.Context, projectID, username string) error {
	participants, err := s.projects.ListParticipants(ctx, projectID)
	if err != nil {
		return err
	}
	for _, u := range participants {
		if u == username {
			return nil
		}
	}
	return ErrNotParticipant
}
