package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskboard/internal/domain"

	"github.com/google/uuid"
)

var (
	// ErrProjectNotFound indicates that the project does not exist.
	ErrProjectNotFound = errors.New("project not found")
	// ErrNotParticipant indicates that the user is not in the project's participant set.
	ErrNotParticipant = errors.New("user is not a project participant")
)

// ProjectService encapsulates project and participant use cases.
type ProjectService struct {
	projects domain.ProjectRepository
}

// NewProjectService creates a ProjectService backed by the given repository.
func NewProjectService(projects domain.ProjectRepository) *ProjectService {
	return &ProjectService{projects: projects}
}

// Create stores a new project and its participant rows. The creator is
// always included in the participant set.
func (s *ProjectService) Create(ctx context.Context, creator, name, description, deadline string, participants []string) (*domain.Project, error) {
	if name == "" || deadline == "" {
		return nil, ErrMissingField
	}
	if _, err := time.Parse("2006-01-02", deadline); err != nil {
		return nil, fmt.Errorf("%w: deadline: %v", ErrInvalidDate, err)
	}

	members := dedupe(append([]string{creator}, participants...))

	p := &domain.Project{
		ID:           uuid.NewString(),
		Name:         name,
		Description:  description,
		Deadline:     deadline,
		Participants: members,
	}
	if err := s.projects.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	if err := s.projects.AddParticipants(ctx, p.ID, members); err != nil {
		return nil, fmt.Errorf("add participants: %w", err)
	}
	return p, nil
}

// Get returns the project with its participant list. Access is denied
// unless username is a participant; the task view hangs off this check.
func (s *ProjectService) Get(ctx context.Context, id, username string) (*domain.Project, error) {
	p, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProjectNotFound
	}

	p.Participants, err = s.projects.ListParticipants(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	if !p.HasParticipant(username) {
		return nil, ErrNotParticipant
	}
	return p, nil
}

// ListForUser returns all projects the user participates in, each with its
// full participant list. Participants are batch-loaded in a single query
// rather than per project.
func (s *ProjectService) ListForUser(ctx context.Context, username string) ([]domain.Project, error) {
	ids, err := s.projects.ProjectIDsByParticipant(ctx, username)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []domain.Project{}, nil
	}

	projects, err := s.projects.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byProject, err := s.projects.ParticipantsByProjects(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	for i := range projects {
		projects[i].Participants = byProject[projects[i].ID]
	}
	return projects, nil
}

// Update applies a partial mutation to a project. When the update carries a
// participant list the whole set is replaced; a nil list leaves membership
// untouched. Only participants may update.
func (s *ProjectService) Update(ctx context.Context, id, username string, upd domain.ProjectUpdate) (*domain.Project, error) {
	current, err := s.Get(ctx, id, username)
	if err != nil {
		return nil, err
	}

	if upd.Deadline != nil {
		if _, err := time.Parse("2006-01-02", *upd.Deadline); err != nil {
			return nil, fmt.Errorf("%w: deadline: %v", ErrInvalidDate, err)
		}
	}
	if upd.Participants != nil {
		upd.Participants = dedupe(upd.Participants)
	}

	p, err := s.projects.Update(ctx, id, upd)
	if err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}

	if upd.Participants != nil {
		if err := s.projects.RemoveParticipants(ctx, id); err != nil {
			return nil, fmt.Errorf("replace participants: %w", err)
		}
		if err := s.projects.AddParticipants(ctx, id, upd.Participants); err != nil {
			return nil, fmt.Errorf("replace participants: %w", err)
		}
		p.Participants = upd.Participants
	} else {
		p.Participants = current.Participants
	}
	return p, nil
}

func dedupe(usernames []string) []string {
	seen := make(map[string]bool, len(usernames))
	out := make([]string, 0, len(usernames))
	for _, u := range usernames {
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}
