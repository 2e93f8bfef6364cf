package app

import (
	"context"
	"fmt"
	"time"
)

var ErrAdminNotAuthorized = fmt.Errorf("performing user is not authorized as an admin")

// CycleStatus is a snapshot of the scheduler for operators.
type CycleStatus struct {
	Running     bool         `json:"running"`
	NextRun     time.Time    `json:"nextRun"`
	LastTrigger string       `json:"lastTrigger,omitempty"`
	LastReport  *CycleReport `json:"lastReport,omitempty"`
	LastError   string       `json:"lastError,omitempty"`
}

// CycleController runs cycles on demand and reports on them.
type CycleController interface {
	RunNow(ctx context.Context) (CycleReport, error)
	Status() CycleStatus
}

// AdminService guards manual operations behind the configured admin Telegram ID.
type AdminService struct {
	controller      CycleController
	adminTelegramID int64
}

func NewAdminService(c CycleController, adminID int64) *AdminService {
	return &AdminService{
		controller:      c,
		adminTelegramID: adminID,
	}
}

func (s *AdminService) IsAdmin(telegramID int64) bool {
	return s.adminTelegramID != 0 && telegramID == s.adminTelegramID
}

// TriggerInactivityCheck runs a full cycle synchronously on behalf of the admin.
func (s *AdminService) TriggerInactivityCheck(ctx context.Context, performingAdminID int64) (CycleReport, error) {
	if !s.IsAdmin(performingAdminID) {
		return CycleReport{}, ErrAdminNotAuthorized
	}
	report, err := s.controller.RunNow(ctx)
	if err != nil {
		return report, fmt.Errorf("manual inactivity check: %w", err)
	}
	return report, nil
}

func (s *AdminService) Status(performingAdminID int64) (CycleStatus, error) {
	if !s.IsAdmin(performingAdminID) {
		return CycleStatus{}, ErrAdminNotAuthorized
	}
	return s.controller.Status(), nil
}
