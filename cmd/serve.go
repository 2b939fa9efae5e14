package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/contact-scout/internal/fetch"
	"github.com/sells-group/contact-scout/internal/model"
	"github.com/sells-group/contact-scout/internal/pipeline"
	"github.com/sells-group/contact-scout/internal/profile"
	"github.com/sells-group/contact-scout/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API for resolution requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		resolver, pageCache := initResolver(st)

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type"},
		}))

		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Post("/api/resolve", func(w http.ResponseWriter, req *http.Request) {
			var body struct {
				Handle string `json:"handle"`
			}
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
				return
			}
			if body.Handle == "" {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "handle is required"})
				return
			}

			run, err := st.CreateRun(req.Context(), body.Handle)
			if err != nil {
				zap.L().Error("create run failed", zap.String("handle", body.Handle), zap.Error(err))
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not create run"})
				return
			}

			// Resolution outlives the request; progress is tracked in the store.
			go runResolution(ctx, st, resolver, pageCache, run)

			writeJSON(w, http.StatusAccepted, map[string]string{
				"run_id": run.ID,
				"handle": run.Handle,
				"status": string(run.Status),
			})
		})

		r.Get("/api/runs", func(w http.ResponseWriter, req *http.Request) {
			filter := store.RunFilter{
				Status: model.RunStatus(req.URL.Query().Get("status")),
				Handle: req.URL.Query().Get("handle"),
			}
			if limit := req.URL.Query().Get("limit"); limit != "" {
				if n, err := strconv.Atoi(limit); err == nil {
					filter.Limit = n
				}
			}

			runs, err := st.ListRuns(req.Context(), filter)
			if err != nil {
				zap.L().Error("list runs failed", zap.Error(err))
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not list runs"})
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
		})

		r.Get("/api/runs/{id}", func(w http.ResponseWriter, req *http.Request) {
			run, err := st.GetRun(req.Context(), chi.URLParam(req, "id"))
			if err != nil {
				if eris.Is(err, store.ErrNotFound) {
					writeJSON(w, http.StatusNotFound, map[string]string{"error": "run not found"})
					return
				}
				zap.L().Error("get run failed", zap.Error(err))
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not get run"})
				return
			}
			writeJSON(w, http.StatusOK, run)
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx) //nolint:errcheck
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// runResolution drives one run end to end, recording progress and the
// terminal outcome in the store. A missing handle lands as not_found
// rather than failed so callers can tell the two apart.
func runResolution(ctx context.Context, st store.Store, resolver *pipeline.ProfileResolver, pageCache *fetch.CachingFetcher, run *model.Run) {
	if err := st.UpdateRunStatus(ctx, run.ID, model.RunStatusResolving); err != nil {
		zap.L().Warn("update run status failed", zap.String("run_id", run.ID), zap.Error(err))
	}
	defer func() {
		if err := pageCache.Flush(ctx); err != nil {
			zap.L().Warn("page cache flush failed", zap.String("run_id", run.ID), zap.Error(err))
		}
	}()

	result, err := resolver.ResolveWithProgress(ctx, run.Handle, func(status model.RunStatus) {
		if err := st.UpdateRunStatus(ctx, run.ID, status); err != nil {
			zap.L().Warn("update run status failed", zap.String("run_id", run.ID), zap.Error(err))
		}
	})
	if err != nil {
		status := model.RunStatusFailed
		if eris.Is(err, profile.ErrNotFound) {
			status = model.RunStatusNotFound
		}
		if failErr := st.FailRun(ctx, run.ID, status, err.Error()); failErr != nil {
			zap.L().Warn("record run failure failed", zap.String("run_id", run.ID), zap.Error(failErr))
		}
		zap.L().Error("resolution failed",
			zap.String("handle", run.Handle),
			zap.String("status", string(status)),
			zap.Error(err),
		)
		return
	}

	if err := st.UpdateRunResult(ctx, run.ID, result); err != nil {
		zap.L().Error("record run result failed", zap.String("run_id", run.ID), zap.Error(err))
		return
	}

	zap.L().Info("resolution complete",
		zap.String("handle", run.Handle),
		zap.String("run_id", run.ID),
		zap.String("primary_email", result.PrimaryEmail),
	)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
