package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"reportnotifier/internal/types"
)

// UserRepository provides data access for the "user" table.
type UserRepository struct {
	db DBTX
}

// NewUserRepository creates a new UserRepository backed by the given
// database connection (pool, conn, or transaction).
func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// GetEmail retrieves a user's email address by id, optionally filtered by
// institution. A nil institutionID matches by id alone; a non-nil filter
// requires the user row to belong to that institution, which is how a
// membership resolved for the wrong tenant comes back as not-found.
//
// Returns ErrCodeNotFoundUser when no row matches and ErrCodeInternalDB on
// store failures.
func (r *UserRepository) GetEmail(ctx context.Context, userID int, institutionID *int) (string, error) {
	var (
		row pgx.Row
	)
	if institutionID != nil {
		row = r.db.QueryRow(ctx,
			`SELECT u.email FROM "user" u
			 WHERE u.id = $1 AND u.institution_id = $2`,
			userID,
			*institutionID,
		)
	} else {
		row = r.db.QueryRow(ctx,
			`SELECT u.email FROM "user" u
			 WHERE u.id = $1`,
			userID,
		)
	}

	var email string
	if err := row.Scan(&email); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", types.NewAppError(types.ErrCodeNotFoundUser, "user not found", nil)
		}
		return "", types.NewAppError(types.ErrCodeInternalDB, "failed to retrieve user email", err)
	}
	return email, nil
}
