package fix

import (
	"time"

	"github.com/google/uuid"
)

// Clock abstracts time retrieval so business logic is deterministic in tests.
type Clock interface {
	Now() time.Time
}

// RealClock returns the actual current time.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// UUIDGenerator produces random run IDs for log correlation.
type UUIDGenerator struct{}

func (UUIDGenerator) New() string { return uuid.New().String() }
