package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"inactivity_notifier/internal/app"
	"inactivity_notifier/internal/infra/scheduler"

	"github.com/sirupsen/logrus"
)

type checkResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Report  app.CycleReport `json:"report"`
}

// Handler holds the dependencies of the ops endpoints.
type Handler struct {
	controller   app.CycleController
	cycleTimeout time.Duration
	logger       *logrus.Entry
	now          func() time.Time
}

func NewHandler(c app.CycleController, cycleTimeout time.Duration, logger *logrus.Entry) *Handler {
	return &Handler{
		controller:   c,
		cycleTimeout: cycleTimeout,
		logger:       logger,
		now:          time.Now,
	}
}

func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("Skill Up Academy inactivity notifier is running"))
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": h.now().UTC().Format(time.RFC3339Nano),
	})
}

// CheckInactivity runs a cycle synchronously and returns its report.
func (h *Handler) CheckInactivity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.cycleTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.cycleTimeout)
		defer cancel()
	}

	report, err := h.controller.RunNow(ctx)
	switch {
	case errors.Is(err, scheduler.ErrCycleInProgress):
		writeError(w, http.StatusConflict, "Inactivity check already running")
		return
	case errors.Is(err, scheduler.ErrStopped):
		writeError(w, http.StatusServiceUnavailable, "Service is shutting down")
		return
	case err != nil:
		h.logger.WithError(err).Error("Manual inactivity check failed")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	msg := "Inactivity check completed"
	if report.Cancelled {
		msg = "Inactivity check cancelled before all users were processed"
	}
	writeJSON(w, http.StatusOK, checkResponse{Success: true, Message: msg, Report: report})
}

func (h *Handler) LastReport(w http.ResponseWriter, r *http.Request) {
	st := h.controller.Status()
	if st.LastReport == nil {
		writeError(w, http.StatusNotFound, "No inactivity check has run yet")
		return
	}
	writeJSON(w, http.StatusOK, st)
}
