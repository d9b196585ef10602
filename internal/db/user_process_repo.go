package db

import (
	"context"

	"reportnotifier/internal/types"
)

// UserProcessRepository provides data access for the user_process membership
// table linking users to the processes they receive notifications for.
type UserProcessRepository struct {
	db DBTX
}

// NewUserProcessRepository creates a new UserProcessRepository backed by the
// given database connection (pool, conn, or transaction).
func NewUserProcessRepository(db DBTX) *UserProcessRepository {
	return &UserProcessRepository{db: db}
}

// GetUserIDsForProcess returns the user ids of every membership row for the
// given process, in stable user_id order. The composite primary key on
// (user_id, process_id) guarantees no duplicates within one process.
//
// A process with no memberships returns an empty non-nil slice; only store
// failures return an error (ErrCodeInternalDB).
func (r *UserProcessRepository) GetUserIDsForProcess(ctx context.Context, processID int) ([]int, error) {
	rows, err := r.db.Query(ctx,
		`SELECT up.user_id FROM user_process up
		 WHERE up.process_id = $1
		 ORDER BY up.user_id`,
		processID,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to query process memberships", err)
	}
	defer rows.Close()

	userIDs := []int{}
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan membership row", err)
		}
		userIDs = append(userIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to read membership rows", err)
	}

	return userIDs, nil
}
