// Package db provides PostgreSQL-backed repository implementations for the
// notification schema. All repositories accept a DBTX interface that is
// satisfied by *pgxpool.Pool, *pgxpool.Conn, and pgx.Tx, so the same code
// works against the shared pool or a per-message acquired connection.
//
// The schema (process, "user", user_process) is owned by the external
// item-check services; every repository here is read-only.
package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the minimal interface shared by *pgxpool.Pool, *pgxpool.Conn, and
// pgx.Tx. Repositories accept this so the caller controls the unit of work.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}
