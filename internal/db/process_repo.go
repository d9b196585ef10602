package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"reportnotifier/internal/types"
)

// ProcessRepository provides data access for the process table.
type ProcessRepository struct {
	db DBTX
}

// NewProcessRepository creates a new ProcessRepository backed by the given
// database connection (pool, conn, or transaction).
func NewProcessRepository(db DBTX) *ProcessRepository {
	return &ProcessRepository{db: db}
}

// processColumns is the standard set of columns selected for process
// queries. Used consistently across query methods to avoid column drift.
const processColumns = `p.id, p.name, p.email_subject, p.email_body, p.email_addendum, p.container`

// scanProcess scans a single process row into a types.Process struct.
// email_addendum is nullable and scans into the pointer field directly.
func scanProcess(row pgx.Row) (*types.Process, error) {
	var p types.Process
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.EmailSubject,
		&p.EmailBody,
		&p.EmailAddendum,
		&p.Container,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByName retrieves a process definition by its lookup name.
//
// The schema does not enforce name uniqueness; LIMIT 1 makes the
// duplicate-name behavior an explicit "first row by index order" pick
// rather than driver-dependent.
//
// Returns ErrCodeNotFoundProcess when no row matches and ErrCodeInternalDB
// on store failures.
func (r *ProcessRepository) GetByName(ctx context.Context, name string) (*types.Process, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+processColumns+`
		 FROM process p
		 WHERE p.name = $1
		 LIMIT 1`,
		name,
	)

	p, err := scanProcess(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NewAppError(types.ErrCodeNotFoundProcess, "process not found", nil)
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to retrieve process", err)
	}
	return p, nil
}
