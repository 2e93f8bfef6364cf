package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"inactivity_notifier/internal/domain/activity"
	"inactivity_notifier/internal/domain/notification"

	"github.com/sirupsen/logrus"
)

type fakeActivityRepo struct {
	users   []*activity.User
	listErr error
	gotRole activity.Role
}

func (f *fakeActivityRepo) ListByRole(_ context.Context, role activity.Role) ([]*activity.User, error) {
	f.gotRole = role
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.users, nil
}

type memLog struct {
	mu        sync.Mutex
	entries   []*notification.LogEntry
	findErr   error
	appendErr error
	blockFind string // FindSent for this user waits for ctx to end
}

func (m *memLog) FindSent(ctx context.Context, userID string, category notification.Category, since time.Time) ([]*notification.LogEntry, error) {
	if userID != "" && userID == m.blockFind {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if m.findErr != nil {
		return nil, m.findErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*notification.LogEntry
	for _, e := range m.entries {
		if e.UserID == userID && e.Category == category && e.Status == notification.StatusSent && !e.SentAt.Before(since) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memLog) Append(_ context.Context, entry *notification.LogEntry) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

func (m *memLog) entriesFor(userID string) []*notification.LogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*notification.LogEntry
	for _, e := range m.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out
}

type fakeDispatcher struct {
	mu       sync.Mutex
	sent     []notification.Email
	SendFunc func(ctx context.Context, msg notification.Email) error
}

func (f *fakeDispatcher) Send(ctx context.Context, msg notification.Email) error {
	f.mu.Lock()
	f.sent = append(f.sent, msg)
	f.mu.Unlock()
	if f.SendFunc != nil {
		return f.SendFunc(ctx, msg)
	}
	return nil
}

func (f *fakeDispatcher) sentTo(email string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, m := range f.sent {
		if m.To == email {
			n++
		}
	}
	return n
}

type fakeRenderer struct {
	RenderFunc func(templateID string, vars notification.Variables) (notification.Content, error)
}

func (f *fakeRenderer) Render(templateID string, vars notification.Variables) (notification.Content, error) {
	if f.RenderFunc != nil {
		return f.RenderFunc(templateID, vars)
	}
	return notification.Content{
		Subject: fmt.Sprintf("%s: %d days", vars.Name, vars.DaysInactive),
		HTML:    "<p>" + templateID + "</p>",
		Text:    templateID,
	}, nil
}

var errDelivery = errors.New("provider returned 503")

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func student(id, email, name string, lastActivity *time.Time) *activity.User {
	u := &activity.User{ID: id, Email: email, FullName: name, Role: activity.RoleStudent}
	if lastActivity != nil {
		u.LastActivity.Time = *lastActivity
		u.LastActivity.Valid = true
	}
	return u
}

func daysAgo(now time.Time, days int) *time.Time {
	t := now.Add(-time.Duration(days)*24*time.Hour - 2*time.Hour)
	return &t
}
