package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"inactivity_notifier/internal/app"
	"inactivity_notifier/internal/infra/logger"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

var (
	ErrCycleInProgress = errors.New("inactivity cycle already in progress")
	ErrStopped         = errors.New("scheduler stopped")
)

type Trigger string

const (
	TriggerScheduled Trigger = "scheduled"
	TriggerManual    Trigger = "manual"
)

// Run is the result of one finished cycle.
type Run struct {
	Trigger Trigger
	Report  app.CycleReport
	Err     error
}

// Observer is called after every cycle, in registration order.
type Observer func(Run)

var _ app.CycleController = (*InactivityScheduler)(nil)

type InactivityScheduler struct {
	cronEngine *cron.Cron
	runner     app.CampaignRunner
	cronSpec   string
	logger     *logrus.Entry

	running atomic.Bool // shared by scheduled ticks and manual runs

	mu        sync.Mutex
	entryID   cron.EntryID
	started   bool
	stopped   bool
	observers []Observer
	last      *Run

	inflight   sync.WaitGroup
	stopCtx    context.Context
	stopCancel context.CancelFunc
}

func NewInactivityScheduler(runner app.CampaignRunner, cronSpec string, loc *time.Location, log *logrus.Entry) *InactivityScheduler {
	if loc == nil {
		loc = time.Local
	}
	log = log.WithField("component", "scheduler")
	cl := logger.NewCronLogger(log)
	stopCtx, stopCancel := context.WithCancel(context.Background())
	return &InactivityScheduler{
		cronEngine: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		runner:     runner,
		cronSpec:   cronSpec,
		logger:     log,
		stopCtx:    stopCtx,
		stopCancel: stopCancel,
	}
}

// Subscribe registers an observer. Call before Start.
func (s *InactivityScheduler) Subscribe(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

func (s *InactivityScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return ErrStopped
	}
	if s.started {
		return nil
	}

	id, err := s.cronEngine.AddFunc(s.cronSpec, s.tick)
	if err != nil {
		return err
	}
	s.entryID = id
	s.started = true
	s.cronEngine.Start()
	s.logger.WithFields(logrus.Fields{
		"cron":     s.cronSpec,
		"timezone": s.cronEngine.Location().String(),
		"next_run": s.cronEngine.Entry(id).Next,
	}).Info("Inactivity scheduler started")
	return nil
}

func (s *InactivityScheduler) tick() {
	s.logger.Info("Cron job triggered for inactivity check")
	_, err := s.run(context.Background(), TriggerScheduled)
	if errors.Is(err, ErrCycleInProgress) {
		s.logger.Warn("Previous cycle still running, skipping tick")
	}
}

// RunNow runs a cycle immediately on the caller's goroutine.
// It returns ErrCycleInProgress if any cycle is already running.
func (s *InactivityScheduler) RunNow(ctx context.Context) (app.CycleReport, error) {
	return s.run(ctx, TriggerManual)
}

func (s *InactivityScheduler) run(ctx context.Context, trigger Trigger) (app.CycleReport, error) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return app.CycleReport{}, ErrStopped
	}
	if !s.running.CompareAndSwap(false, true) {
		s.mu.Unlock()
		return app.CycleReport{}, ErrCycleInProgress
	}
	s.inflight.Add(1)
	s.mu.Unlock()

	report, err := s.runCycle(ctx)
	if err != nil {
		s.logger.WithError(err).WithField("trigger", trigger).Error("Inactivity cycle failed")
	}
	s.notify(Run{Trigger: trigger, Report: report, Err: err})
	return report, err
}

// runCycle releases the lock even if the runner panics; the panic becomes the cycle error.
func (s *InactivityScheduler) runCycle(ctx context.Context) (report app.CycleReport, err error) {
	cycleCtx, cancel := context.WithCancel(ctx)
	unhook := context.AfterFunc(s.stopCtx, cancel)
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("inactivity cycle panicked: %v", p)
		}
		unhook()
		cancel()
		s.running.Store(false)
		s.inflight.Done()
	}()
	return s.runner.RunCycle(cycleCtx)
}

func (s *InactivityScheduler) notify(r Run) {
	s.mu.Lock()
	s.last = &r
	observers := append([]Observer(nil), s.observers...)
	s.mu.Unlock()

	for _, o := range observers {
		func() {
			defer func() {
				if p := recover(); p != nil {
					s.logger.WithField("panic", p).Error("Cycle observer panicked")
				}
			}()
			o(r)
		}()
	}
}

// LastRun returns the most recent finished cycle, if any.
func (s *InactivityScheduler) LastRun() (Run, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return Run{}, false
	}
	return *s.last, true
}

// NextRun is zero until Start succeeds.
func (s *InactivityScheduler) NextRun() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return time.Time{}
	}
	return s.cronEngine.Entry(s.entryID).Next
}

func (s *InactivityScheduler) Running() bool {
	return s.running.Load()
}

func (s *InactivityScheduler) Status() app.CycleStatus {
	st := app.CycleStatus{Running: s.Running(), NextRun: s.NextRun()}
	if last, ok := s.LastRun(); ok {
		report := last.Report
		st.LastTrigger = string(last.Trigger)
		st.LastReport = &report
		if last.Err != nil {
			st.LastError = last.Err.Error()
		}
	}
	return st
}

// Stop stops new ticks and waits for the in-flight cycle. If ctx expires first the cycle is
// cancelled before its next user and Stop still waits for it to return.
func (s *InactivityScheduler) Stop(ctx context.Context) error {
	s.logger.Info("Stopping inactivity scheduler...")
	s.mu.Lock()
	s.stopped = true
	started := s.started
	s.mu.Unlock()

	if started {
		s.cronEngine.Stop()
	}

	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warn("Shutdown deadline reached, cancelling running cycle")
		s.stopCancel()
		<-done
		err = ctx.Err()
	}
	s.stopCancel()
	s.logger.Info("Inactivity scheduler stopped")
	return err
}
