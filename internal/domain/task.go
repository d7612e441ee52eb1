package domain

import (
	"context"
	"time"
)

// Task categories offered by the add-task form.
const (
	CategoryWork     = "work"
	CategoryPersonal = "personal"
	CategoryStudy    = "study"
	CategoryOther    = "other"
)

// KnownCategory reports whether c is one of the enumerated task categories.
func KnownCategory(c string) bool {
	switch c {
	case CategoryWork, CategoryPersonal, CategoryStudy, CategoryOther:
		return true
	}
	return false
}

// Task belongs to exactly one project. Period is the due date in
// YYYY-MM-DD form; Point is the integer weight summed into its owner's
// score once the task is completed.
type Task struct {
	ID        int64     `json:"id"`
	ProjectID string    `json:"projectId"`
	Title     string    `json:"title"`
	Category  string    `json:"category"`
	Period    string    `json:"period"`
	Point     int       `json:"point"`
	Completed bool      `json:"completed"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TaskUpdate carries a partial task mutation; nil fields are left untouched.
type TaskUpdate struct {
	Title     *string
	Category  *string
	Period    *string
	Point     *int
	Completed *bool
	Comment   *string
}

// CompletedPoints sums the point values of completed tasks.
func CompletedPoints(tasks []Task) int {
	total := 0
	for _, t := range tasks {
		if t.Completed {
			total += t.Point
		}
	}
	return total
}

// Progress returns the completion percentage of tasks, 0 for an empty list.
func Progress(tasks []Task) float64 {
	if len(tasks) == 0 {
		return 0
	}
	done := 0
	for _, t := range tasks {
		if t.Completed {
			done++
		}
	}
	return float64(done) / float64(len(tasks)) * 100
}

// TaskRepository is the port for task persistence.
type TaskRepository interface {
	Create(ctx context.Context, t *Task) (int64, error)
	GetByID(ctx context.Context, id int64) (*Task, error)
	List(ctx context.Context) ([]Task, error)
	ListByProject(ctx context.Context, projectID string) ([]Task, error)
	ListByProjects(ctx context.Context, projectIDs []string) ([]Task, error)
	Update(ctx context.Context, id int64, upd TaskUpdate) (*Task, error)
	Delete(ctx context.Context, id int64) error
}
