package adapthttp

import (
	"errors"
	"net/http"

	"taskboard/internal/app"
	"taskboard/internal/domain"
)

func (s *Server) handleProjects(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleProjectList(w, r)
	case http.MethodPost:
		s.handleProjectCreate(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleProjectList(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r)
	projects, err := s.projects.ListForUser(r.Context(), user.Username)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": projects})
}

func (s *Server) handleProjectCreate(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r)

	var body struct {
		Name         string   `json:"name"`
		Description  string   `json:"description"`
		Deadline     string   `json:"deadline"`
		Participants []string `json:"participants"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	project, err := s.projects.Create(r.Context(), user.Username, body.Name, body.Description, body.Deadline, body.Participants)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusCreated, project)
}

func (s *Server) handleProject(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleProjectDetail(w, r)
	case http.MethodPatch:
		s.handleProjectUpdate(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleProjectDetail(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r)
	id := r.PathValue("id")

	project, err := s.projects.Get(r.Context(), id, user.Username)
	if err != nil {
		writeProjectError(w, err)
		return
	}

	tasks, err := s.tasks.ListForProject(r.Context(), user.Username, id)
	if err != nil {
		writeProjectError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"project":         project,
		"tasks":           tasks.Tasks,
		"progress":        tasks.Progress,
		"completedPoints": tasks.CompletedPoints,
	})
}

func (s *Server) handleProjectUpdate(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r)
	id := r.PathValue("id")

	var body struct {
		Name         *string  `json:"name"`
		Description  *string  `json:"description"`
		Deadline     *string  `json:"deadline"`
		Participants []string `json:"participants"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	project, err := s.projects.Update(r.Context(), id, user.Username, domain.ProjectUpdate{
		Name:         body.Name,
		Description:  body.Description,
		Deadline:     body.Deadline,
		Participants: body.Participants,
	})
	if err != nil {
		writeProjectError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func writeProjectError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, app.ErrProjectNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, app.ErrNotParticipant):
		writeError(w, http.StatusForbidden, err)
	case errors.Is(err, app.ErrMissingField), errors.Is(err, app.ErrInvalidDate):
		writeError(w, http.StatusBadRequest, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}
