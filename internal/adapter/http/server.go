package adapthttp

import (
	"context"
	"net/http"

	"taskboard/internal/app"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	auth     *app.AuthService
	projects *app.ProjectService
	tasks    *app.TaskService
	points   *app.PointsService
	timeline *app.TimelineService
	store    Pinger
	oidc     OIDCConfig
	webDir   string

	disableAuth bool
}

// New creates a Server wired to the given application services.
func New(auth *app.AuthService, projects *app.ProjectService, tasks *app.TaskService, points *app.PointsService, timeline *app.TimelineService, store Pinger, oidc OIDCConfig, webDir string) *Server {
	return &Server{
		auth:     auth,
		projects: projects,
		tasks:    tasks,
		points:   points,
		timeline: timeline,
		store:    store,
		oidc:     oidc,
		webDir:   webDir,
	}
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()

	api.HandleFunc("/health", s.handleHealth)
	api.HandleFunc("/config", s.handleConfig)

	api.HandleFunc("/auth/register", s.handleRegister)
	api.HandleFunc("/auth/login", s.handleLogin)
	api.HandleFunc("/auth/logout", s.handleLogout)
	api.HandleFunc("/auth/sso/login", s.handleSSOLogin)
	api.HandleFunc("/auth/sso/callback", s.handleSSOCallback)
	api.Handle("/auth/session", s.protected(s.handleSession))

	api.Handle("/projects", s.protected(s.handleProjects))
	api.Handle("/projects/{id}", s.protected(s.handleProject))
	api.Handle("/projects/{id}/tasks", s.protected(s.handleProjectTasks))
	api.Handle("/tasks/{id}", s.protected(s.handleTask))
	api.Handle("/tasks/{id}/completed", s.protected(s.handleTaskCompleted))
	api.Handle("/rankings", s.protected(s.handleRankings))
	api.Handle("/timeline", s.protected(s.handleTimeline))

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))
	root.Handle("/", spaFromDisk(s.webDir))

	return s.loggingMiddleware(withNoCache(root))
}

func (s *Server) protected(h http.HandlerFunc) http.Handler {
	return s.authMiddleware(h)
}
