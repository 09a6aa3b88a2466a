package sqlite

import (
	"context"
	"database/sql"
	"testing"
	"time"

	txStdLib "github.com/Thiht/transactor/stdlib"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/focusflow/focusflow-go"
)

const testSchema = `
CREATE TABLE focus_cycles (
    id TEXT PRIMARY KEY,
    session_id TEXT NOT NULL,
    goal_label TEXT NOT NULL,
    cycle INTEGER NOT NULL,
    focus_seconds INTEGER NOT NULL,
    break_seconds INTEGER NOT NULL,
    abandoned INTEGER NOT NULL DEFAULT 0,
    completed_at INTEGER NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);`

func newTestRepo(t *testing.T) *journalRepo {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	db.SetMaxOpenConns(1)

	_, err = db.Exec(testSchema)
	require.NoError(t, err)

	_, dbGetter := txStdLib.NewTransactor(db, txStdLib.NestedTransactionsSavepoints)
	return NewJournalRepo(dbGetter, *log.Default())
}

func TestJournalRepo_InsertCycle(t *testing.T) {
	t.Parallel()

	repo := newTestRepo(t)

	record := focusflow.CycleRecord{
		SessionID:    "session-123",
		GoalLabel:    "write tests",
		Cycle:        1,
		FocusSeconds: 1500,
		BreakSeconds: 300,
		CompletedAt:  time.Now(),
	}
	inserted, err := repo.InsertCycle(context.Background(), record)
	require.NoError(t, err)
	assert.NotEmpty(t, inserted.ID)
	assert.Equal(t, record.SessionID, inserted.SessionID)

	got, err := repo.GetCycle(context.Background(), inserted.ID)
	require.NoError(t, err)
	assert.Equal(t, 1500, got.FocusSeconds)
	assert.Equal(t, "write tests", got.GoalLabel)
	assert.False(t, got.Abandoned)
}

func TestJournalRepo_InsertCycle_RequiresSessionID(t *testing.T) {
	t.Parallel()

	repo := newTestRepo(t)
	_, err := repo.InsertCycle(context.Background(), focusflow.CycleRecord{GoalLabel: "no id"})
	assert.Error(t, err)
}

func TestJournalRepo_GetCycle_NotFound(t *testing.T) {
	t.Parallel()

	repo := newTestRepo(t)
	_, err := repo.GetCycle(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestJournalRepo_ListCyclesSince(t *testing.T) {
	t.Parallel()

	repo := newTestRepo(t)
	now := time.Now()

	for i, completedAt := range []time.Time{
		now.Add(-48 * time.Hour),
		now.Add(-2 * time.Hour),
		now.Add(-time.Hour),
	} {
		_, err := repo.InsertCycle(context.Background(), focusflow.CycleRecord{
			SessionID:    "session-123",
			GoalLabel:    "write tests",
			Cycle:        i + 1,
			FocusSeconds: 1500,
			BreakSeconds: 300,
			CompletedAt:  completedAt,
		})
		require.NoError(t, err)
	}

	records, err := repo.ListCyclesSince(context.Background(), now.Add(-24*time.Hour))
	require.NoError(t, err)
	require.Len(t, records, 2)
	// ordered by completion time
	assert.Equal(t, 2, records[0].Cycle)
	assert.Equal(t, 3, records[1].Cycle)
}

func TestJournalRepo_TotalFocusSeconds(t *testing.T) {
	t.Parallel()

	repo := newTestRepo(t)
	now := time.Now()

	total, err := repo.TotalFocusSeconds(context.Background(), now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, total)

	for _, rec := range []focusflow.CycleRecord{
		{SessionID: "s-1", GoalLabel: "a", Cycle: 1, FocusSeconds: 1500, CompletedAt: now},
		{SessionID: "s-1", GoalLabel: "a", Cycle: 2, FocusSeconds: 900, CompletedAt: now, Abandoned: true},
		{SessionID: "s-2", GoalLabel: "b", Cycle: 1, FocusSeconds: 1500, CompletedAt: now.Add(-48 * time.Hour)},
	} {
		_, err := repo.InsertCycle(context.Background(), rec)
		require.NoError(t, err)
	}

	total, err = repo.TotalFocusSeconds(context.Background(), now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2400, total)
}
