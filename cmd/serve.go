package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/prospector/internal/job"
	"github.com/sells-group/prospector/internal/model"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API for job submission and polling",
	Long:  "Accepts job requests from the frontend and serves progress and results. Execution happens in the worker, not here.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		r := buildRouter(env)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		ln, err := net.Listen("tcp", srv.Addr)
		if err != nil {
			return eris.Wrap(err, "server listen")
		}

		zap.L().Info("starting server", zap.Int("port", port))
		return runServer(ctx, srv, ln)
	},
}

const shutdownTimeout = 10 * time.Second

// runServer serves until ctx is cancelled, then drains in-flight requests.
// The drain runs on a fresh timeout context; ctx itself is already
// cancelled at that point and would abort the drain immediately.
func runServer(ctx context.Context, srv *http.Server, ln net.Listener) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		zap.L().Info("shutting down server")
		drainCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(drainCtx)
	}()

	if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
		return eris.Wrap(err, "server serve")
	}
	<-done
	return nil
}

// buildRouter wires the HTTP API routes.
func buildRouter(env *env) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/jobs", func(r chi.Router) {
		r.Post("/", handleCreateJob(env))
		r.Get("/", handleListJobs(env))
		r.Get("/{jobID}", handleGetJob(env))
		r.Post("/{jobID}/cancel", handleCancelJob(env))
		r.Post("/{jobID}/retry", handleRetryJob(env))
	})

	return r
}

func handleCreateJob(env *env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID     string         `json:"user_id"`
			Query      string         `json:"query"`
			SearchType string         `json:"search_type"`
			Priority   int            `json:"priority"`
			Metadata   map[string]any `json:"metadata"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		j, err := env.Service.CreateJob(r.Context(), job.CreateJobRequest{
			UserID:     req.UserID,
			Query:      req.Query,
			SearchType: model.SearchType(req.SearchType),
			Source:     model.SourceFrontend,
			Priority:   req.Priority,
			Metadata:   req.Metadata,
		})
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		writeJSON(w, http.StatusAccepted, j)
	}
}

func handleListJobs(env *env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.URL.Query().Get("user_id")
		if userID == "" {
			writeError(w, http.StatusBadRequest, "user_id is required")
			return
		}

		limit := 50
		if raw := r.URL.Query().Get("limit"); raw != "" {
			if _, err := fmt.Sscanf(raw, "%d", &limit); err != nil {
				writeError(w, http.StatusBadRequest, "invalid limit")
				return
			}
		}

		jobs, err := env.Service.ListJobs(r.Context(), userID, limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"jobs": jobs})
	}
}

func handleGetJob(env *env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		j, err := env.Service.GetJob(r.Context(), chi.URLParam(r, "jobID"), r.URL.Query().Get("user_id"))
		if err != nil {
			writeError(w, http.StatusNotFound, "job not found")
			return
		}
		writeJSON(w, http.StatusOK, j)
	}
}

func handleCancelJob(env *env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := env.Service.CancelJob(r.Context(), chi.URLParam(r, "jobID"), r.URL.Query().Get("user_id"))
		if err != nil {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
	}
}

func handleRetryJob(env *env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := env.Service.RetryJob(r.Context(), chi.URLParam(r, "jobID"), r.URL.Query().Get("user_id"))
		if err != nil {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "pending"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
