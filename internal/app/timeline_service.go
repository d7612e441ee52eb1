package app

import (
	"context"

	"taskboard/internal/domain"
)

// TimelineService backs the calendar/Gantt view: every task annotated with
// its project's name.
type TimelineService struct {
	projects domain.ProjectRepository
	tasks    domain.TaskRepository
}

// NewTimelineService creates a TimelineService backed by the given repositories.
func NewTimelineService(projects domain.ProjectRepository, tasks domain.TaskRepository) *TimelineService {
	return &TimelineService{projects: projects, tasks: tasks}
}

// TimelineEntry is a task joined with its project name.
type TimelineEntry struct {
	domain.Task
	ProjectName string `json:"projectName"`
}

// Entries returns all tasks in creation order with project names resolved
// from a single project fetch.
func (s *TimelineService) Entries(ctx context.Context) ([]TimelineEntry, error) {
	tasks, err := s.tasks.List(ctx)
	if err != nil {
		return nil, err
	}
	projects, err := s.projects.List(ctx)
	if err != nil {
		return nil, err
	}

	names := make(map[string]string, len(projects))
	for _, p := range projects {
		names[p.ID] = p.Name
	}

	entries := make([]TimelineEntry, 0, len(tasks))
	for _, t := range tasks {
		entries = append(entries, TimelineEntry{Task: t, ProjectName: names[t.ProjectID]})
	}
	return entries, nil
}
