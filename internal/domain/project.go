package domain

import (
	"context"
	"time"
)

// Project groups tasks under a name, optional description and a deadline
// date. Access is granted through the participant set; the creator is
// always a participant. There is no project delete flow.
type Project struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Deadline     string    `json:"deadline"`
	Participants []string  `json:"participants"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// HasParticipant reports whether username is in the participant set.
func (p *Project) HasParticipant(username string) bool {
	for _, u := range p.Participants {
		if u == username {
			return true
		}
	}
	return false
}

// ProjectUpdate carries a partial project mutation. Nil fields are left
// untouched. A nil Participants slice leaves membership as is; a non-nil
// slice replaces the whole set.
type ProjectUpdate struct {
	Name         *string
	Description  *string
	Deadline     *string
	Participants []string
}

// ProjectRepository is the port for project and participant persistence.
// Projects returned by row-level reads do not carry participants; callers
// load them through the participant methods.
type ProjectRepository interface {
	Create(ctx context.Context, p *Project) error
	GetByID(ctx context.Context, id string) (*Project, error)
	List(ctx context.Context) ([]Project, error)
	ListByIDs(ctx context.Context, ids []string) ([]Project, error)
	Update(ctx context.Context, id string, upd ProjectUpdate) (*Project, error)

	AddParticipants(ctx context.Context, projectID string, usernames []string) error
	RemoveParticipants(ctx context.Context, projectID string) error
	ListParticipants(ctx context.Context, projectID string) ([]string, error)
	ParticipantsByProjects(ctx context.Context, projectIDs []string) (map[string][]string, error)
	ProjectIDsByParticipant(ctx context.Context, username string) ([]string, error)
}
