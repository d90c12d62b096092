package database

import (
	"context"
	"database/sql"
	"fmt"

	"buildfix/internal/database/migrations"
	"buildfix/internal/fix"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteDatabase implements the fix.Database interface using SQLite.
type SQLiteDatabase struct {
	db   *sql.DB
	path string
}

var _ fix.Database = (*SQLiteDatabase)(nil)

// NewSQLiteDatabase opens a SQLite database and runs pending migrations.
// path can be a file path or ":memory:" for an in-memory database.
func NewSQLiteDatabase(path string) (*SQLiteDatabase, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}

	return &SQLiteDatabase{
		db:   db,
		path: path,
	}, nil
}

// OpenConnection opens and configures a SQLite database connection with appropriate PRAGMAs.
// This is exported for use in tools and tests that need a properly configured SQLite connection.
// path can be a file path or ":memory:" for in-memory database.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign key constraints (SQLite default is OFF for backward compatibility)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// CreateFixOperation records the start of a mutating operation.
func (s *SQLiteDatabase) CreateFixOperation(operation string, parameters string) (*fix.FixOperation, error) {
	ctx := context.Background()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO fix_operations (operation, parameters, started_at, status)
		 VALUES (?, ?, CURRENT_TIMESTAMP, 'success')`,
		operation, parameters,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting fix operation: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading operation id: %w", err)
	}

	return s.findFixOperation(ctx, id)
}

// FinishFixOperation stamps the finish time and final status on an operation.
func (s *SQLiteDatabase) FinishFixOperation(id int64, status string) error {
	_, err := s.db.ExecContext(context.Background(),
		`UPDATE fix_operations SET finished_at = CURRENT_TIMESTAMP, status = ? WHERE id = ?`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("finishing fix operation: %w", err)
	}
	return nil
}

// ListFixOperations returns the most recent operations, newest first.
func (s *SQLiteDatabase) ListFixOperations(limit int) ([]*fix.FixOperation, error) {
	rows, err := s.db.QueryContext(context.Background(),
		`SELECT id, operation, parameters, started_at, finished_at, status
		 FROM fix_operations ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing fix operations: %w", err)
	}
	defer rows.Close()

	var ops []*fix.FixOperation
	for rows.Next() {
		var op fix.FixOperation
		if err := rows.Scan(&op.ID, &op.Operation, &op.Parameters, &op.StartedAt, &op.FinishedAt, &op.Status); err != nil {
			return nil, fmt.Errorf("scanning fix operation: %w", err)
		}
		ops = append(ops, &op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating fix operations: %w", err)
	}
	return ops, nil
}

// findFixOperation loads a single operation row by ID.
func (s *SQLiteDatabase) findFixOperation(ctx context.Context, id int64) (*fix.FixOperation, error) {
	var op fix.FixOperation
	err := s.db.QueryRowContext(ctx,
		`SELECT id, operation, parameters, started_at, finished_at, status
		 FROM fix_operations WHERE id = ?`,
		id,
	).Scan(&op.ID, &op.Operation, &op.Parameters, &op.StartedAt, &op.FinishedAt, &op.Status)
	if err != nil {
		return nil, fmt.Errorf("finding fix operation: %w", err)
	}
	return &op, nil
}

// Close closes the database connection.
func (s *SQLiteDatabase) Close() error {
	return s.db.Close()
}
