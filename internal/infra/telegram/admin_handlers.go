package telegram

import (
	"context"
	"errors"
	"time"

	"inactivity_notifier/internal/app"
	"inactivity_notifier/internal/infra/scheduler"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const msgNotAuthorized = "Error: you are not allowed to run this command."

// AdminHandlers serves the admin-only bot commands.
type AdminHandlers struct {
	adminService *app.AdminService
	location     *time.Location
	cycleTimeout time.Duration
	logger       *logrus.Entry
}

func NewAdminHandlers(adminService *app.AdminService, loc *time.Location, cycleTimeout time.Duration, baseLogger *logrus.Entry) *AdminHandlers {
	if loc == nil {
		loc = time.Local
	}
	return &AdminHandlers{
		adminService: adminService,
		location:     loc,
		cycleTimeout: cycleTimeout,
		logger:       baseLogger.WithField("handler_group", "admin"),
	}
}

// RegisterAdminHandlers registers handlers for admin commands.
func RegisterAdminHandlers(ctx context.Context, b *telebot.Bot, h *AdminHandlers) {
	b.Handle("/check_inactivity", func(c telebot.Context) error {
		// a manual cycle can take a while; acknowledge first
		if h.adminService.IsAdmin(c.Sender().ID) {
			_ = c.Send("Running inactivity check...")
		}
		return c.Send(h.checkInactivity(ctx, c.Sender().ID))
	})

	b.Handle("/status", func(c telebot.Context) error {
		return c.Send(h.status(c.Sender().ID))
	})
}

func (h *AdminHandlers) checkInactivity(ctx context.Context, senderID int64) string {
	handlerLogger := h.logger.WithFields(logrus.Fields{
		"handler":   "/check_inactivity",
		"sender_id": senderID,
	})
	handlerLogger.Info("Command received")

	if h.cycleTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.cycleTimeout)
		defer cancel()
	}

	report, err := h.adminService.TriggerInactivityCheck(ctx, senderID)
	if err != nil {
		logWithError := handlerLogger.WithError(err)
		switch {
		case errors.Is(err, app.ErrAdminNotAuthorized):
			logWithError.Warn("Unauthorized access attempt")
			return msgNotAuthorized
		case errors.Is(err, scheduler.ErrCycleInProgress):
			logWithError.Info("Cycle already running")
			return "An inactivity check is already running. Use /status to follow it."
		case errors.Is(err, scheduler.ErrStopped):
			return "The service is shutting down, try again later."
		default:
			logWithError.Error("Manual inactivity check failed")
			return "Inactivity check failed: " + err.Error()
		}
	}

	handlerLogger.WithField("sent", report.NotificationsSent).Info("Manual inactivity check completed")
	return formatReport("Inactivity check completed.", report)
}

func (h *AdminHandlers) status(senderID int64) string {
	handlerLogger := h.logger.WithFields(logrus.Fields{
		"handler":   "/status",
		"sender_id": senderID,
	})

	st, err := h.adminService.Status(senderID)
	if err != nil {
		handlerLogger.WithError(err).Warn("Unauthorized access attempt")
		return msgNotAuthorized
	}
	return formatStatus(st, h.location)
}
