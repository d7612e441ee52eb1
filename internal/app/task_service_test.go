package app

import (
	"context"
	"errors"
	"testing"

	"taskboard/internal/domain"
)

func participantRepo(members ...string) *mockProjectRepo {
	return &mockProjectRepo{
		listParticipantsFn: func(ctx context.Context, projectID string) ([]string, error) {
			return members, nil
		},
	}
}

func TestTaskService_Create(t *testing.T) {
	ctx := context.Background()

	var created *domain.Task
	tasks := &mockTaskRepo{
		createFn: func(ctx context.Context, task *domain.Task) (int64, error) {
			created = task
			return 42, nil
		},
	}
	svc := NewTaskService(participantRepo("alice"), tasks)

	task, err := svc.Create(ctx, "alice", "p1", "Draft report", domain.CategoryWork, "2025-11-01", 5, "first draft")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if task.ID != 42 {
		t.Errorf("expected id 42, got %d", task.ID)
	}
	if created == nil || created.ProjectID != "p1" || created.Point != 5 {
		t.Errorf("unexpected stored task: %+v", created)
	}
	if created.Completed {
		t.Error("new tasks must start incomplete")
	}
}

func TestTaskService_Create_Validation(t *testing.T) {
	ctx := context.Background()
	svc := NewTaskService(participantRepo("alice"), &mockTaskRepo{})

	cases := []struct {
		name     string
		title    string
		category string
		period   string
		point    int
		wantErr  error
	}{
		{"empty title", "", domain.CategoryWork, "2025-11-01", 1, ErrMissingField},
		{"empty category", "t", "", "2025-11-01", 1, ErrMissingField},
		{"empty period", "t", domain.CategoryWork, "", 1, ErrMissingField},
		{"unknown category", "t", "chores", "2025-11-01", 1, ErrUnknownCategory},
		{"bad period", "t", domain.CategoryWork, "Nov 1", 1, ErrInvalidDate},
		{"negative point", "t", domain.CategoryWork, "2025-11-01", -1, ErrNegativePoint},
	}
	for _, tc := range cases {
		_, err := svc.Create(ctx, "alice", "p1", tc.title, tc.category, tc.period, tc.point, "")
		if !errors.Is(err, tc.wantErr) {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.wantErr, err)
		}
	}
}

func TestTaskService_Create_DeniesNonParticipant(t *testing.T) {
	svc := NewTaskService(participantRepo("alice"), &mockTaskRepo{})

	_, err := svc.Create(context.Background(), "mallory", "p1", "t", domain.CategoryWork, "2025-11-01", 1, "")
	if !errors.Is(err, ErrNotParticipant) {
		t.Errorf("expected ErrNotParticipant, got %v", err)
	}
}

func TestTaskService_SetCompleted_RefreshesProjectView(t *testing.T) {
	ctx := context.Background()

	stored := []domain.Task{
		{ID: 1, ProjectID: "p1", Point: 5, Completed: false},
		{ID: 2, ProjectID: "p1", Point: 3, Completed: true},
	}
	tasks := &mockTaskRepo{
		getByIDFn: func(ctx context.Context, id int64) (*domain.Task, error) {
			for i := range stored {
				if stored[i].ID == id {
					cp := stored[i]
					return &cp, nil
				}
			}
			return nil, nil
		},
		updateFn: func(ctx context.Context, id int64, upd domain.TaskUpdate) (*domain.Task, error) {
			for i := range stored {
				if stored[i].ID == id {
					if upd.Completed != nil {
						stored[i].Completed = *upd.Completed
					}
					cp := stored[i]
					return &cp, nil
				}
			}
			return nil, nil
		},
		listByProjectFn: func(ctx context.Context, projectID string) ([]domain.Task, error) {
			out := make([]domain.Task, len(stored))
			copy(out, stored)
			return out, nil
		},
	}
	svc := NewTaskService(participantRepo("alice"), tasks)

	view, err := svc.SetCompleted(ctx, "alice", 1, true)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(view.Tasks) != 2 {
		t.Fatalf("expected refreshed task list, got %d tasks", len(view.Tasks))
	}
	if view.Progress != 100 {
		t.Errorf("expected 100%% progress, got %f", view.Progress)
	}
	if view.CompletedPoints != 8 {
		t.Errorf("expected 8 completed points, got %d", view.CompletedPoints)
	}
}

func TestTaskService_SetCompleted_NotFound(t *testing.T) {
	svc := NewTaskService(participantRepo("alice"), &mockTaskRepo{})

	_, err := svc.SetCompleted(context.Background(), "alice", 99, true)
	if !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestTaskService_Delete_ChecksParticipant(t *testing.T) {
	ctx := context.Background()

	deleted := int64(0)
	tasks := &mockTaskRepo{
		getByIDFn: func(ctx context.Context, id int64) (*domain.Task, error) {
			return &domain.Task{ID: id, ProjectID: "p1"}, nil
		},
		deleteFn: func(ctx context.Context, id int64) error {
			deleted = id
			return nil
		},
	}
	svc := NewTaskService(participantRepo("alice"), tasks)

	if err := svc.Delete(ctx, "mallory", 7); !errors.Is(err, ErrNotParticipant) {
		t.Errorf("expected ErrNotParticipant, got %v", err)
	}
	if deleted != 0 {
		t.Error("expected no delete for non-participant")
	}

	if err := svc.Delete(ctx, "alice", 7); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if deleted != 7 {
		t.Errorf("expected task 7 deleted, got %d", deleted)
	}
}
