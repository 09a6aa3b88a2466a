package focusflow

import (
	"context"
	"time"
)

// FocusJournal is the local append-only record of completed cycles and
// finished sessions, kept for offline history.
type FocusJournal interface {
	InsertCycle(context.Context, CycleRecord) (ExistingCycleRecord, error)
	ListCyclesSince(context.Context, time.Time) ([]ExistingCycleRecord, error)
	TotalFocusSeconds(context.Context, time.Time) (int, error)
}

type ExistingRecord[T ~string] struct {
	ID        T
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewExistingRecord[T ~string](id string) ExistingRecord[T] {
	now := time.Now()
	return ExistingRecord[T]{
		ID:        T(id),
		CreatedAt: now,
		UpdatedAt: now,
	}
}
