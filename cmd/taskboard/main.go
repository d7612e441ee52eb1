package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"

	adapthttp "taskboard/internal/adapter/http"
	"taskboard/internal/adapter/postgres"
	"taskboard/internal/app"
)

func main() {
	addr := env("ADDR", ":8080")
	webDir := env("WEB_DIR", "web")

	connStr := os.Getenv("DATABASE_URL")
	if connStr == "" {
		log.Fatal("DATABASE_URL is required")
	}

	db, err := postgres.Open(connStr)
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	defer func() { _ = db.Close() }()

	sessionRepo := postgres.NewSessionRepo(db)
	projectRepo := postgres.NewProjectRepo(db)
	taskRepo := postgres.NewTaskRepo(db)

	authSvc := app.NewAuthService(db, sessionRepo)
	projectSvc := app.NewProjectService(projectRepo)
	taskSvc := app.NewTaskService(projectRepo, taskRepo)
	pointsSvc := app.NewPointsService(db, projectRepo, taskRepo)
	timelineSvc := app.NewTimelineService(projectRepo, taskRepo)

	oidcCfg, err := adapthttp.LoadOIDC(context.Background(),
		os.Getenv("OIDC_ISSUER"),
		os.Getenv("OIDC_CLIENT_ID"),
		os.Getenv("OIDC_CLIENT_SECRET"),
		os.Getenv("OIDC_REDIRECT_URL"),
	)
	if err != nil {
		log.Fatalf("oidc: %v", err)
	}
	if oidcCfg.Enabled {
		log.Printf("sso enabled via %s", os.Getenv("OIDC_ISSUER"))
	}

	h := adapthttp.New(authSvc, projectSvc, taskSvc, pointsSvc, timelineSvc, db, oidcCfg, webDir).Handler()
	log.Printf("listening on %s", addr)
	if err := http.ListenAndServe(addr, h); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
