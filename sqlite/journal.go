package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	txStdLib "github.com/Thiht/transactor/stdlib"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/focusflow/focusflow-go"
)

const SelectAllCycles = "SELECT id, session_id, goal_label, cycle, focus_seconds, break_seconds, abandoned, completed_at, created_at, updated_at FROM focus_cycles"

type cycleEntity struct {
	ID           string
	SessionID    string
	GoalLabel    string
	Cycle        int
	FocusSeconds int
	BreakSeconds int
	Abandoned    bool
	CompletedAt  int64
	CreatedAt    int64
	UpdatedAt    int64
}

type journalRepo struct {
	dbGetter txStdLib.DBGetter
	l        log.Logger
}

func NewJournalRepo(dbGetter txStdLib.DBGetter, logger log.Logger) *journalRepo {
	return &journalRepo{
		dbGetter: dbGetter,
		l:        logger,
	}
}

var _ focusflow.FocusJournal = (*journalRepo)(nil)

func (r *journalRepo) InsertCycle(ctx context.Context, record focusflow.CycleRecord) (focusflow.ExistingCycleRecord, error) {
	if record.SessionID == "" {
		return focusflow.ExistingCycleRecord{}, fmt.Errorf("provide required field 'SessionID'")
	}

	db := r.dbGetter(ctx)
	existingRecord := focusflow.ExistingCycleRecord{
		CycleRecord:    record,
		ExistingRecord: focusflow.NewExistingRecord[string](uuid.NewString()),
	}
	e := mapToCycleEntity(existingRecord)

	args := []any{
		e.ID,
		e.SessionID,
		e.GoalLabel,
		e.Cycle,
		e.FocusSeconds,
		e.BreakSeconds,
		e.Abandoned,
		e.CompletedAt,
		e.CreatedAt,
		e.UpdatedAt,
	}
	query := "INSERT INTO focus_cycles (id, session_id, goal_label, cycle, focus_seconds, break_seconds, abandoned, completed_at, created_at, updated_at) VALUES " + GenerateParameters(len(args))
	r.l.Debug("inserting cycle", "query", query, "args", args)
	_, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return focusflow.ExistingCycleRecord{}, err
	}

	return existingRecord, nil
}

func (r *journalRepo) GetCycle(ctx context.Context, id string) (focusflow.ExistingCycleRecord, error) {
	if id == "" {
		return focusflow.ExistingCycleRecord{}, fmt.Errorf("provide id")
	}

	db := r.dbGetter(ctx)
	row := db.QueryRowContext(ctx, fmt.Sprintf("%s WHERE id=?", SelectAllCycles), id)
	return extractCycle(row)
}

func (r *journalRepo) ListCyclesSince(ctx context.Context, since time.Time) ([]focusflow.ExistingCycleRecord, error) {
	db := r.dbGetter(ctx)
	query := fmt.Sprintf("%s WHERE completed_at >= ? ORDER BY completed_at", SelectAllCycles)
	r.l.Debug("listing cycles", "query", query, "since", since)
	rows, err := db.QueryContext(ctx, query, since.Unix())
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint

	var records []focusflow.ExistingCycleRecord
	for rows.Next() {
		record, err := extractCycle(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *journalRepo) TotalFocusSeconds(ctx context.Context, since time.Time) (int, error) {
	db := r.dbGetter(ctx)
	query := "SELECT COALESCE(SUM(focus_seconds), 0) FROM focus_cycles WHERE completed_at >= ?"
	var total int
	if err := db.QueryRowContext(ctx, query, since.Unix()).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func extractCycle(s Scannable) (focusflow.ExistingCycleRecord, error) {
	var e cycleEntity
	if err := s.Scan(&e.ID, &e.SessionID, &e.GoalLabel, &e.Cycle, &e.FocusSeconds, &e.BreakSeconds, &e.Abandoned, &e.CompletedAt, &e.CreatedAt, &e.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return focusflow.ExistingCycleRecord{}, ErrNotFound
		}
		return focusflow.ExistingCycleRecord{}, err
	}

	return mapToExistingCycleRecord(e), nil
}

func mapToCycleEntity(record focusflow.ExistingCycleRecord) cycleEntity {
	return cycleEntity{
		ID:           record.ID,
		SessionID:    string(record.SessionID),
		GoalLabel:    record.GoalLabel,
		Cycle:        record.Cycle,
		FocusSeconds: record.FocusSeconds,
		BreakSeconds: record.BreakSeconds,
		Abandoned:    record.Abandoned,
		CompletedAt:  record.CompletedAt.Unix(),
		CreatedAt:    record.CreatedAt.Unix(),
		UpdatedAt:    record.UpdatedAt.Unix(),
	}
}

func mapToExistingCycleRecord(e cycleEntity) focusflow.ExistingCycleRecord {
	return focusflow.ExistingCycleRecord{
		ExistingRecord: focusflow.ExistingRecord[string]{
			ID:        e.ID,
			CreatedAt: time.Unix(e.CreatedAt, 0),
			UpdatedAt: time.Unix(e.UpdatedAt, 0),
		},
		CycleRecord: focusflow.CycleRecord{
			SessionID:    focusflow.SessionID(e.SessionID),
			GoalLabel:    e.GoalLabel,
			Cycle:        e.Cycle,
			FocusSeconds: e.FocusSeconds,
			BreakSeconds: e.BreakSeconds,
			Abandoned:    e.Abandoned,
			CompletedAt:  time.Unix(e.CompletedAt, 0),
		},
	}
}
