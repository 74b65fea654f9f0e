package http

import (
	"context"
	"encoding/json"
	"errors"
	"hue-alerts/internal/domain/model"
	"hue-alerts/internal/domain/pattern"
	"hue-alerts/internal/domain/service"
	"hue-alerts/internal/ports"
	"log/slog"
	"net/http"
	"time"
)

const shutdownTimeout = 5 * time.Second

// Server exposes the monitor state and a manual trigger.
type Server struct {
	feed          ports.FeedStatus
	actuator      ports.Actuator
	defaultTarget string
	logger        *slog.Logger
}

func NewServer(feed ports.FeedStatus, actuator ports.Actuator, defaultTarget string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		feed:          feed,
		actuator:      actuator,
		defaultTarget: defaultTarget,
		logger:        logger.With("component", "http"),
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.HandleFunc("POST /flash", s.handleFlash)
	mux.HandleFunc("POST /flash/{target}", s.handleFlash)
	return mux
}

// ListenAndServe serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.logger.Info("status endpoint listening", "addr", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type statusResponse struct {
	Cursor   string   `json:"cursor"`
	State    string   `json:"state"`
	Failures int      `json:"consecutive_failures"`
	InFlight []string `json:"in_flight"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	inflight := s.actuator.InFlight()
	if inflight == nil {
		inflight = []string{}
	}
	writeJSON(w, http.StatusOK, statusResponse{
		Cursor:   s.feed.Cursor(),
		State:    s.feed.State(),
		Failures: s.feed.Failures(),
		InFlight: inflight,
	})
}

func (s *Server) handleFlash(w http.ResponseWriter, r *http.Request) {
	target := r.PathValue("target")
	if target == "" {
		target = s.defaultTarget
	}
	if _, err := model.ParseTarget(target); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	err := s.actuator.Trigger(r.Context(), model.ActuationRequest{TargetID: target, Pattern: model.PatternAlertFlash})
	switch {
	case err == nil:
		s.logger.Info("manual flash accepted", "target", target)
		writeJSON(w, http.StatusAccepted, map[string]string{"target": target})
	case errors.Is(err, service.ErrAlreadyInProgress):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrActuatorClosed):
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
	case errors.Is(err, pattern.ErrUnknownPattern):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		s.logger.Error("manual flash failed", "target", target, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
