package database

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"inactivity_notifier/internal/domain/activity"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

var profileColumns = []string{"id", "email", "full_name", "role", "last_login"}

func TestActivityListByRolePages(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	lastLogin := time.Date(2025, 6, 12, 7, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM profiles`).
		WithArgs("student", "", 2).
		WillReturnRows(sqlmock.NewRows(profileColumns).
			AddRow("a1", "alice@example.com", "Alice", "student", lastLogin).
			AddRow("b2", "bob@example.com", "Bob", "student", "2025-06-08T07:00:00Z"))
	mock.ExpectQuery(`FROM profiles`).
		WithArgs("student", "b2", 2).
		WillReturnRows(sqlmock.NewRows(profileColumns).
			AddRow("c3", "carol@example.com", "", "student", nil))

	repo := NewPostgresActivityRepository(db, 2, quietLogger())
	users, err := repo.ListByRole(context.Background(), activity.RoleStudent)
	require.NoError(t, err)
	require.Len(t, users, 3)

	assert.Equal(t, "a1", users[0].ID)
	assert.True(t, users[0].LastActivity.Valid)
	assert.True(t, lastLogin.Equal(users[0].LastActivity.Time))
	assert.True(t, users[1].LastActivity.Valid)
	assert.Equal(t, activity.RoleStudent, users[2].Role)
	assert.False(t, users[2].LastActivity.Valid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActivityListByRoleMalformedTimestamp(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM profiles`).
		WithArgs("student", "", 10).
		WillReturnRows(sqlmock.NewRows(profileColumns).
			AddRow("a1", "alice@example.com", "Alice", "student", "last tuesday"))

	repo := NewPostgresActivityRepository(db, 10, quietLogger())
	users, err := repo.ListByRole(context.Background(), activity.RoleStudent)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.False(t, users[0].HasActivity())
}

func TestActivityListByRoleQueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM profiles`).WillReturnError(errors.New("connection refused"))

	repo := NewPostgresActivityRepository(db, 10, quietLogger())
	_, err = repo.ListByRole(context.Background(), activity.RoleStudent)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}
