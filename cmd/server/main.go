package main

import (
	"flag"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/upprop/internal/app"
	"github.com/shrimpsizemoose/upprop/internal/handlers"
)

func main() {
	var configPath = flag.String("config", "config.toml", "Path to config file")
	flag.Parse()

	service, err := app.NewService(*configPath)
	if err != nil {
		logger.Error.Fatalf("Failed to start service: %v", err)
	}
	defer service.Close()

	if err := service.Store.ApplyMigrations(service.Config.Database.MigrationsDir); err != nil {
		logger.Error.Fatalf("Failed to apply migrations: %v", err)
	}

	h := handlers.NewRosterHandler(service)

	http.HandleFunc("POST /api/v1/sessions", h.Instrument(h.HandleCreateSession))
	http.HandleFunc("GET /api/v1/sessions", h.Instrument(h.HandleListSessions))
	http.HandleFunc("POST /api/v1/sessions/{id}/close", h.Instrument(h.HandleCloseSession))
	http.HandleFunc("POST /api/v1/sessions/{id}/attendance", h.Instrument(h.HandleSaveAttendance))
	http.HandleFunc("GET /api/v1/sessions/{id}/attendance", h.Instrument(h.HandleAttendanceSheet))

	http.HandleFunc("GET /api/v1/summaries", h.Instrument(h.HandleSummaries))
	http.HandleFunc("GET /api/v1/me/summary", h.Instrument(h.HandleStudentSummary))

	http.HandleFunc("POST /api/v1/students", h.Instrument(h.HandleRegisterStudent))
	http.HandleFunc("GET /api/v1/students", h.Instrument(h.HandleListStudents))
	http.HandleFunc("PUT /api/v1/students/{id}", h.Instrument(h.HandleUpdateStudent))
	http.HandleFunc("DELETE /api/v1/students/{id}", h.Instrument(h.HandleDeleteStudent))
	http.HandleFunc("GET /api/v1/groups", h.Instrument(h.HandleListGroups))
	http.HandleFunc("POST /api/v1/teachers", h.Instrument(h.HandleRegisterTeacher))

	http.HandleFunc("POST /api/v1/justifications", h.Instrument(h.HandleSubmitJustification))
	http.HandleFunc("GET /api/v1/students/{id}/justifications", h.Instrument(h.HandleListJustifications))

	http.HandleFunc("POST /api/v1/tokens", h.Instrument(h.HandleIssueToken))
	http.HandleFunc("DELETE /api/v1/tokens", h.Instrument(h.HandleRevokeToken))

	http.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	http.Handle("/metrics", promhttp.Handler())

	logger.Info.Printf("Starting upprop server on %s", service.Config.Server.Port)
	logger.Debug.Println("Requiring headers:")
	for _, rh := range service.Config.API.RequiredHeaders {
		logger.Debug.Printf("  %s: %s", rh.Name, rh.Value)
	}
	if err := http.ListenAndServe(service.Config.Server.Port, nil); err != nil {
		logger.Error.Fatalf("Upprop server failed: %v", err)
	}
}
