package app

// FixRun tracks a CLI invocation that may mutate project state.
// Runs are created in memory with ID=0. Only mutating commands persist
// them (giving them an auto-increment ID from the history database).
type FixRun struct {
	ID         int64
	Operation  string
	Parameters string
	Status     string // "success" or "error"
}

// NewFixRun creates a new in-memory fix run.
func NewFixRun(operation, parameters string) *FixRun {
	return &FixRun{
		Operation:  operation,
		Parameters: parameters,
		Status:     "success",
	}
}

// Persisted returns true if this run has been saved to the database.
func (r *FixRun) Persisted() bool {
	return r.ID != 0
}
