package cli

// This file contains the serve command, which exposes the dashboard views
// as a JSON API for a browser frontend.

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/flinketl/etldash/api"
	"github.com/flinketl/etldash/dashboard"
	"github.com/flinketl/etldash/model"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/urfave/cli/v2"
)

const shutdownTimeout = 5 * time.Second

func (a *App) serve(ctx *cli.Context) error {
	addr := a.cfg.ListenAddr
	if ctx.IsSet("addr") {
		addr = ctx.String("addr")
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           newRouter(a.logger, a.service),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(ctx.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info().Str("addr", addr).Str("api_url", a.client.BaseURL()).Msg("Serving dashboard")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-sigCtx.Done():
	}

	a.logger.Info().Msg("Shutting down dashboard")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

type handlers struct {
	service *dashboard.Service
}

func newRouter(logger zerolog.Logger, service *dashboard.Service) http.Handler {
	h := &handlers{service: service}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(hlog.NewHandler(logger))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("Request")
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/runs", func(r chi.Router) {
		r.Get("/", h.listRuns)
		r.Post("/", h.createRun)
		r.Post("/refresh", h.refreshRuns)
		r.Get("/{id}", h.getRun)
	})

	return r
}

func (h *handlers) listRuns(w http.ResponseWriter, r *http.Request) {
	listing, err := h.service.Runs(r.Context())
	if err != nil {
		writeError(w, r, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

func (h *handlers) refreshRuns(w http.ResponseWriter, r *http.Request) {
	listing, err := h.service.Refresh(r.Context())
	if err != nil {
		writeError(w, r, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

func (h *handlers) getRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	detail, err := h.service.Run(r.Context(), id)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, api.ErrNotFound) {
			status = http.StatusNotFound
		}
		writeError(w, r, status, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// createRun takes its input from query parameters, the same shape the test
// service accepts.
func (h *handlers) createRun(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := model.CreateTestRequest{
		ImageTag: q.Get("image"),
		TestName: q.Get("testName"),
	}
	if v := q.Get("numberOfMessages"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "numberOfMessages must be an integer"})
			return
		}
		req.NumberOfMessages = n
	}

	run, err := h.service.Create(r.Context(), req)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, model.ErrValidation) {
			status = http.StatusBadRequest
		}
		writeError(w, r, status, err)
		return
	}
	writeJSON(w, http.StatusCreated, run)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	hlog.FromRequest(r).Warn().Err(err).Int("status", status).Msg("Request failed")
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
