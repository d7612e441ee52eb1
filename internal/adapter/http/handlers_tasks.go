package adapthttp

import (
	"errors"
	"net/http"
	"strconv"

	"taskboard/internal/app"
	"taskboard/internal/domain"
)

func (s *Server) handleProjectTasks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleTaskList(w, r)
	case http.MethodPost:
		s.handleTaskCreate(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleTaskList(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r)
	projectID := r.PathValue("id")

	tasks, err := s.tasks.ListForProject(r.Context(), user.Username, projectID)
	if err != nil {
		writeTaskError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleTaskCreate(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r)
	projectID := r.PathValue("id")

	var body struct {
		Title    string `json:"title"`
		Category string `json:"category"`
		Period   string `json:"period"`
		Point    int    `json:"point"`
		Comment  string `json:"comment"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	task, err := s.tasks.Create(r.Context(), user.Username, projectID, body.Title, body.Category, body.Period, body.Point, body.Comment)
	if err != nil {
		writeTaskError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (s *Server) handleTask(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPatch:
		s.handleTaskUpdate(w, r)
	case http.MethodDelete:
		s.handleTaskDelete(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleTaskUpdate(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r)
	id, err := taskID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var body struct {
		Title     *string `json:"title"`
		Category  *string `json:"category"`
		Period    *string `json:"period"`
		Point     *int    `json:"point"`
		Completed *bool   `json:"completed"`
		Comment   *string `json:"comment"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	task, err := s.tasks.Update(r.Context(), user.Username, id, domain.TaskUpdate{
		Title:     body.Title,
		Category:  body.Category,
		Period:    body.Period,
		Point:     body.Point,
		Completed: body.Completed,
		Comment:   body.Comment,
	})
	if err != nil {
		writeTaskError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleTaskCompleted(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	user := userFromContext(r)
	id, err := taskID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var body struct {
		Completed bool `json:"completed"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	tasks, err := s.tasks.SetCompleted(r.Context(), user.Username, id, body.Completed)
	if err != nil {
		writeTaskError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleTaskDelete(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r)
	id, err := taskID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := s.tasks.Delete(r.Context(), user.Username, id); err != nil {
		writeTaskError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func taskID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

func writeTaskError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, app.ErrTaskNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, app.ErrNotParticipant):
		writeError(w, http.StatusForbidden, err)
	case errors.Is(err, app.ErrMissingField),
		errors.Is(err, app.ErrUnknownCategory),
		errors.Is(err, app.ErrInvalidDate),
		errors.Is(err, app.ErrNegativePoint):
		writeError(w, http.StatusBadRequest, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}
