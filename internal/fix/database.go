package fix

import (
	"database/sql"
	"time"
)

// FixOperation is one row in the fix-run history: a single CLI invocation
// that may have mutated the project.
type FixOperation struct {
	ID         int64
	Operation  string
	Parameters string
	StartedAt  time.Time
	FinishedAt sql.NullTime
	Status     string // "success" or "error"
}

// Database provides an interface for fix-run history storage.
type Database interface {
	// CreateFixOperation records the start of a mutating operation and
	// returns it with its assigned ID.
	CreateFixOperation(operation string, parameters string) (*FixOperation, error)

	// FinishFixOperation stamps the finish time and final status on an operation.
	FinishFixOperation(id int64, status string) error

	// ListFixOperations returns the most recent operations, newest first.
	ListFixOperations(limit int) ([]*FixOperation, error)

	// Close closes the database connection.
	Close() error
}
