package database

import (
	"context"
	"database/sql"
	"fmt"

	"inactivity_notifier/internal/domain/activity"

	"github.com/sirupsen/logrus"
)

const defaultActivityPageSize = 500

// PostgresActivityRepository reads the profiles table owned by the main application.
type PostgresActivityRepository struct {
	db       *sql.DB
	pageSize int
	logger   *logrus.Entry
}

var _ activity.Repository = (*PostgresActivityRepository)(nil)

func NewPostgresActivityRepository(db *sql.DB, pageSize int, logger *logrus.Entry) *PostgresActivityRepository {
	if pageSize <= 0 {
		pageSize = defaultActivityPageSize
	}
	return &PostgresActivityRepository{db: db, pageSize: pageSize, logger: logger.WithField("component", "activity_repo")}
}

// ListByRole pages through profiles by id. Each row is a complete user, so page
// boundaries never split one user's data.
func (r *PostgresActivityRepository) ListByRole(ctx context.Context, role activity.Role) ([]*activity.User, error) {
	query := `SELECT id::text, COALESCE(email, ''), COALESCE(full_name, ''), role, last_login
               FROM profiles
               WHERE role = $1 AND id::text > $2
               ORDER BY id::text
               LIMIT $3`

	users := make([]*activity.User, 0)
	after := ""
	for {
		page, err := r.listPage(ctx, query, role, after)
		if err != nil {
			return nil, err
		}
		users = append(users, page...)
		if len(page) < r.pageSize {
			return users, nil
		}
		after = page[len(page)-1].ID
	}
}

func (r *PostgresActivityRepository) listPage(ctx context.Context, query string, role activity.Role, after string) ([]*activity.User, error) {
	rows, err := r.db.QueryContext(ctx, query, role, after, r.pageSize)
	if err != nil {
		return nil, fmt.Errorf("error listing users by role %s: %w", role, err)
	}
	defer rows.Close()

	users := make([]*activity.User, 0, r.pageSize)
	for rows.Next() {
		u := &activity.User{}
		var lastLogin sql.NullString
		if err := rows.Scan(&u.ID, &u.Email, &u.FullName, &u.Role, &lastLogin); err != nil {
			return nil, fmt.Errorf("error scanning user row: %w", err)
		}
		if lastLogin.Valid {
			if t, ok := activity.ParseActivityTimestamp(lastLogin.String); ok {
				u.LastActivity = sql.NullTime{Time: t, Valid: true}
			} else {
				r.logger.WithFields(logrus.Fields{"user_id": u.ID, "last_login": lastLogin.String}).
					Warn("Unparseable last_login, treating user as never active")
			}
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}
	return users, nil
}
