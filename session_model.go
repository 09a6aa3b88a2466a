package focusflow

import "time"

type SessionStatus uint8

const (
	_ SessionStatus = iota
	SessionIdle
	SessionRunning
	SessionPaused
	SessionCycleComplete
	SessionFinished
)

func (s SessionStatus) String() string {
	switch s {
	case SessionIdle:
		return "Idle"
	case SessionRunning:
		return "Running"
	case SessionPaused:
		return "Paused"
	case SessionCycleComplete:
		return "Cycle Complete"
	case SessionFinished:
		return "Finished"
	default:
		panic("no matching enum for SessionStatus")
	}
}

type SessionPhase uint8

const (
	_ SessionPhase = iota
	FocusPhase
	BreakPhase
)

func (p SessionPhase) String() string {
	switch p {
	case FocusPhase:
		return "Focus"
	case BreakPhase:
		return "Break"
	default:
		panic("no matching enum for SessionPhase")
	}
}

type (
	SessionID string
	TaskID    string
)

// Session is the engine's local copy of one pomodoro run. The remote
// service owns the durable record; this copy is either its optimistic
// predecessor or gets overwritten by the authoritative response.
type Session struct {
	ID        SessionID
	GoalLabel string
	ColorTag  string

	//
	Phase            SessionPhase
	Status           SessionStatus
	RemainingSeconds int
	CycleCount       int
}

type SessionAction uint8

const (
	_ SessionAction = iota
	StartAction
	PauseAction
)

func (a SessionAction) String() string {
	switch a {
	case StartAction:
		return "start"
	case PauseAction:
		return "pause"
	default:
		panic("no matching enum for SessionAction")
	}
}

// SessionInfo is the authoritative session summary returned by the remote
// session service.
type SessionInfo struct {
	ID        SessionID
	GoalLabel string
	ColorTag  string
	Status    string
}

type CompletionResult struct {
	ID             SessionID
	CoinEarned     int
	CycleCompleted bool
	TotalFocusTime int
}

type TaskToggleResult struct {
	Task                   TaskRecord
	AllTasksCompletedToday bool
}

type TaskRecord struct {
	ID        TaskID
	Text      string
	Completed bool
}

type CoinBalance struct {
	NewBalance int
}

type RewardTrigger uint8

const (
	_ RewardTrigger = iota
	AllTasksCompletedToday
	CycleCompleted
)

func (t RewardTrigger) String() string {
	switch t {
	case AllTasksCompletedToday:
		return "all_tasks_completed_today"
	case CycleCompleted:
		return "cycle_completed"
	default:
		panic("no matching enum for RewardTrigger")
	}
}

// RewardEvent is the outcome of one reward evaluation. It is ephemeral and
// never persisted.
type RewardEvent struct {
	Trigger  RewardTrigger
	Eligible bool
	Granted  bool
	Coins    int
}

// CycleRecord is one completed cycle (or an abandoned-session summary)
// written to the local focus journal.
type CycleRecord struct {
	SessionID SessionID
	GoalLabel string

	//
	Cycle        int
	FocusSeconds int
	BreakSeconds int
	Abandoned    bool
	CompletedAt  time.Time
}

type ExistingCycleRecord struct {
	ExistingRecord[string]
	CycleRecord
}
