package focusflow

import "context"

type CreateSessionRequest struct {
	GoalLabel   string
	ColorTag    string
	Description string
}

// SessionService is the authoritative remote session record. The engine
// keeps an optimistic local copy and reconciles it through these calls.
type SessionService interface {
	CreateSession(context.Context, CreateSessionRequest) (SessionInfo, error)
	SetSessionStatus(context.Context, SessionID, SessionAction) (SessionInfo, error)
	CompleteSession(ctx context.Context, id SessionID, actualDurationSeconds int) (CompletionResult, error)
	ListSessions(context.Context) ([]SessionInfo, error)
}

type TaskService interface {
	ToggleTaskCompletion(context.Context, TaskID) (TaskToggleResult, error)
}

type RewardService interface {
	GrantCoins(ctx context.Context, amount int, reason string) (CoinBalance, error)
}
